package as5600

import (
	"context"
)

// AngleBehaviorFunc defines the function signature for angle behavior.
type AngleBehaviorFunc func(ctx context.Context) (float64, error)

// StatusBehaviorFunc defines the function signature for status behavior.
type StatusBehaviorFunc func(ctx context.Context) (Status, error)

// MockEncoder is a mock implementation of a rotary encoder that uses behavior functions
// to produce results without requiring any hardware.
//
// Example usage:
//
//	enc := NewMockEncoder(
//		func(ctx context.Context) (float64, error) { return 90, nil },
//		func(ctx context.Context) (Status, error) { return StatusMagnetDetected, nil },
//	)
type MockEncoder struct {
	angle  AngleBehaviorFunc
	status StatusBehaviorFunc
}

func NewMockEncoder(angle AngleBehaviorFunc, status StatusBehaviorFunc) *MockEncoder {
	return &MockEncoder{angle: angle, status: status}
}

func (m *MockEncoder) ReadAngle(ctx context.Context) (float64, error) {
	return m.angle(ctx)
}

func (m *MockEncoder) ReadStatus(ctx context.Context) (Status, error) {
	return m.status(ctx)
}

func (m *MockEncoder) IsMagnetDetected(ctx context.Context) (bool, error) {
	s, err := m.status(ctx)
	if err != nil {
		return false, err
	}
	return s.MagnetDetected(), nil
}

func (m *MockEncoder) IsMagnetTooWeak(ctx context.Context) (bool, error) {
	s, err := m.status(ctx)
	if err != nil {
		return false, err
	}
	return s.MagnetTooWeak(), nil
}

func (m *MockEncoder) IsMagnetTooStrong(ctx context.Context) (bool, error) {
	s, err := m.status(ctx)
	if err != nil {
		return false, err
	}
	return s.MagnetTooStrong(), nil
}

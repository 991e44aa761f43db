package as5600

import (
	"context"
	"errors"
	"fmt"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func staticStatus(s Status) StatusBehaviorFunc {
	return func(ctx context.Context) (Status, error) { return s, nil }
}

func staticAngle(deg float64) AngleBehaviorFunc {
	return func(ctx context.Context) (float64, error) { return deg, nil }
}

func TestCompassFor(t *testing.T) {
	tests := []struct {
		degrees  float64
		expected Compass
	}{
		{0, North},
		{22.4, North},
		{22.5, NorthEast},
		{90, East},
		{135, SouthEast},
		{180, South},
		{225, SouthWest},
		{270, West},
		{315, NorthWest},
		{337.6, North},
		{359.9, North},
	}
	for _, test := range tests {
		t.Run(fmt.Sprint(test.degrees), func(t *testing.T) {
			assert.Equal(t, test.expected, CompassFor(test.degrees))
		})
	}
}

func TestCompass_String(t *testing.T) {
	assert.Equal(t, "N", North.String())
	assert.Equal(t, "SW", SouthWest.String())
	assert.Equal(t, "Compass(9)", Compass(9).String())
}

func TestMonitor_Poll(t *testing.T) {
	tests := []struct {
		name      string
		status    Status
		condition Condition
		angle     float64
		compass   Compass
	}{
		{"ok", StatusMagnetDetected, ConditionOK, 92.3, East},
		{"no magnet", 0, ConditionNoMagnet, 0, North},
		{"too weak", StatusMagnetDetected | StatusMagnetTooWeak, ConditionTooWeak, 0, North},
		{"too strong", StatusMagnetTooStrong | StatusMagnetTooWeak, ConditionTooStrong, 0, North},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			angleCalls := 0
			enc := NewMockEncoder(func(ctx context.Context) (float64, error) {
				angleCalls++
				return 92.3, nil
			}, staticStatus(tt.status))

			reading, err := NewMonitor(enc).Poll(context.Background())

			require.NoError(t, err)
			assert.Equal(t, tt.condition, reading.Condition)
			assert.Equal(t, tt.angle, reading.Angle)
			assert.Equal(t, tt.compass, reading.Compass)
			assert.False(t, reading.Time.IsZero())
			if tt.condition == ConditionOK {
				assert.Equal(t, 1, angleCalls)
			} else {
				assert.Zero(t, angleCalls, "angle must not be read without a usable magnet")
			}
		})
	}
}

// flagEncoder only exposes the boolean queries.
type flagEncoder struct {
	status Status
	err    error
	calls  []string
}

func (f *flagEncoder) ReadAngle(ctx context.Context) (float64, error) {
	f.calls = append(f.calls, "angle")
	return 45, nil
}

func (f *flagEncoder) IsMagnetDetected(ctx context.Context) (bool, error) {
	f.calls = append(f.calls, "detected")
	return f.status.MagnetDetected(), f.err
}

func (f *flagEncoder) IsMagnetTooWeak(ctx context.Context) (bool, error) {
	f.calls = append(f.calls, "weak")
	return f.status.MagnetTooWeak(), f.err
}

func (f *flagEncoder) IsMagnetTooStrong(ctx context.Context) (bool, error) {
	f.calls = append(f.calls, "strong")
	return f.status.MagnetTooStrong(), f.err
}

func TestMonitor_PollFlagQueries(t *testing.T) {
	enc := &flagEncoder{status: StatusMagnetDetected}

	reading, err := NewMonitor(enc).Poll(context.Background())

	require.NoError(t, err)
	assert.Equal(t, ConditionOK, reading.Condition)
	assert.Equal(t, NorthEast, reading.Compass)
	assert.Equal(t, []string{"strong", "weak", "detected", "angle"}, enc.calls)

	enc = &flagEncoder{status: StatusMagnetTooStrong}
	reading, err = NewMonitor(enc).Poll(context.Background())
	require.NoError(t, err)
	assert.Equal(t, ConditionTooStrong, reading.Condition)
	assert.Equal(t, []string{"strong"}, enc.calls)
}

func TestMonitor_PollErrors(t *testing.T) {
	busErr := &BusError{Op: OpRead, Addr: Address, Register: RegStatus, Err: errors.New("nack")}

	enc := NewMockEncoder(staticAngle(10), func(ctx context.Context) (Status, error) {
		return 0, busErr
	})
	_, err := NewMonitor(enc).Poll(context.Background())
	var target *BusError
	assert.ErrorAs(t, err, &target)

	enc = NewMockEncoder(func(ctx context.Context) (float64, error) {
		return 0, busErr
	}, staticStatus(StatusMagnetDetected))
	reading, err := NewMonitor(enc).Poll(context.Background())
	assert.ErrorAs(t, err, &target)
	assert.Equal(t, ConditionOK, reading.Condition)

	flags := &flagEncoder{err: busErr}
	_, err = NewMonitor(flags).Poll(context.Background())
	assert.ErrorAs(t, err, &target)
}

func TestMonitor_Watch(t *testing.T) {
	count := 0
	enc := NewMockEncoder(func(ctx context.Context) (float64, error) {
		count++
		if count == 2 {
			return 0, errors.New("sensor malfunction")
		}
		return float64(count * 90), nil
	}, staticStatus(StatusMagnetDetected))
	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()

	var readings []Reading
	var errs []error
	err := NewMonitor(enc).Watch(ctx, time.Millisecond, func(r Reading, err error) {
		if err != nil {
			errs = append(errs, err)
		} else {
			readings = append(readings, r)
		}
		if len(readings)+len(errs) == 3 {
			cancel()
		}
	})

	assert.ErrorIs(t, err, context.Canceled)
	require.Len(t, readings, 2)
	require.Len(t, errs, 1)
	assert.Equal(t, East, readings[0].Compass)
	assert.Equal(t, West, readings[1].Compass)
}

func TestMonitor_WatchInvalidInterval(t *testing.T) {
	enc := NewMockEncoder(staticAngle(0), staticStatus(0))
	err := NewMonitor(enc).Watch(context.Background(), 0, func(Reading, error) {})
	assert.Error(t, err)
}

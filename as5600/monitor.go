package as5600

import (
	"context"
	"fmt"
	"math"
	"time"

	"github.com/mklimuk/rotary"
)

type Compass int

const (
	North Compass = iota
	NorthEast
	East
	SouthEast
	South
	SouthWest
	West
	NorthWest
)

var compassNames = [...]string{"N", "NE", "E", "SE", "S", "SW", "W", "NW"}

func (c Compass) String() string {
	if c < North || c > NorthWest {
		return fmt.Sprintf("Compass(%d)", int(c))
	}
	return compassNames[c]
}

// CompassFor maps an angle in degrees to the nearest of the 8 compass points.
func CompassFor(degrees float64) Compass {
	idx := int(math.Round(degrees/45)) % 8
	if idx < 0 {
		idx += 8
	}
	return Compass(idx)
}

// Reading is a single observation of the encoder. Angle and Compass are only
// meaningful when Condition is ConditionOK.
type Reading struct {
	Time      time.Time
	Condition Condition
	Angle     float64
	Compass   Compass
}

// statusReader is implemented by encoders able to report all magnet flags in one transaction.
type statusReader interface {
	ReadStatus(ctx context.Context) (Status, error)
}

// Monitor classifies the magnet state of an encoder and reads the angle once
// the magnet is placed correctly.
type Monitor struct {
	enc rotary.Encoder
	now func() time.Time
}

func NewMonitor(enc rotary.Encoder) *Monitor {
	return &Monitor{enc: enc, now: time.Now}
}

func (m *Monitor) Poll(ctx context.Context) (Reading, error) {
	reading := Reading{Time: m.now()}
	cond, err := m.condition(ctx)
	if err != nil {
		return reading, fmt.Errorf("could not read magnet status: %w", err)
	}
	reading.Condition = cond
	if cond != ConditionOK {
		return reading, nil
	}
	angle, err := m.enc.ReadAngle(ctx)
	if err != nil {
		return reading, fmt.Errorf("could not read angle: %w", err)
	}
	reading.Angle = angle
	reading.Compass = CompassFor(angle)
	return reading, nil
}

func (m *Monitor) condition(ctx context.Context) (Condition, error) {
	if sr, ok := m.enc.(statusReader); ok {
		status, err := sr.ReadStatus(ctx)
		if err != nil {
			return ConditionNoMagnet, err
		}
		return status.Condition(), nil
	}
	strong, err := m.enc.IsMagnetTooStrong(ctx)
	if err != nil {
		return ConditionNoMagnet, err
	}
	if strong {
		return ConditionTooStrong, nil
	}
	weak, err := m.enc.IsMagnetTooWeak(ctx)
	if err != nil {
		return ConditionNoMagnet, err
	}
	if weak {
		return ConditionTooWeak, nil
	}
	detected, err := m.enc.IsMagnetDetected(ctx)
	if err != nil {
		return ConditionNoMagnet, err
	}
	if detected {
		return ConditionOK, nil
	}
	return ConditionNoMagnet, nil
}

// Watch polls the encoder every interval and hands each result to fn until ctx
// is done. Poll errors are passed to fn; the loop does not stop on them.
func (m *Monitor) Watch(ctx context.Context, interval time.Duration, fn func(Reading, error)) error {
	if interval <= 0 {
		return fmt.Errorf("invalid watch interval: %s", interval)
	}
	ticker := time.NewTicker(interval)
	defer ticker.Stop()
	for {
		if err := ctx.Err(); err != nil {
			return err
		}
		fn(m.Poll(ctx))
		select {
		case <-ctx.Done():
			return ctx.Err()
		case <-ticker.C:
		}
	}
}

package as5600

import "strings"

// STATUS register bits. The remaining bits are reserved.
const (
	StatusMagnetDetected  Status = 0b00100000 // MD
	StatusMagnetTooWeak   Status = 0b00010000 // ML
	StatusMagnetTooStrong Status = 0b00001000 // MH
)

// Status is the raw content of the STATUS register.
type Status byte

func (s Status) MagnetDetected() bool {
	return s&StatusMagnetDetected != 0
}

func (s Status) MagnetTooWeak() bool {
	return s&StatusMagnetTooWeak != 0
}

func (s Status) MagnetTooStrong() bool {
	return s&StatusMagnetTooStrong != 0
}

// Condition classifies the magnet placement. Field strength problems take
// precedence over detection, too strong before too weak.
func (s Status) Condition() Condition {
	switch {
	case s.MagnetTooStrong():
		return ConditionTooStrong
	case s.MagnetTooWeak():
		return ConditionTooWeak
	case s.MagnetDetected():
		return ConditionOK
	default:
		return ConditionNoMagnet
	}
}

func (s Status) String() string {
	var flags []string
	if s.MagnetDetected() {
		flags = append(flags, "MD")
	}
	if s.MagnetTooWeak() {
		flags = append(flags, "ML")
	}
	if s.MagnetTooStrong() {
		flags = append(flags, "MH")
	}
	if len(flags) == 0 {
		return "none"
	}
	return strings.Join(flags, "|")
}

type Condition int

const (
	ConditionNoMagnet Condition = iota
	ConditionOK
	ConditionTooWeak
	ConditionTooStrong
)

func (c Condition) String() string {
	switch c {
	case ConditionOK:
		return "ok"
	case ConditionTooWeak:
		return "magnet too weak"
	case ConditionTooStrong:
		return "magnet too strong"
	default:
		return "no magnet"
	}
}

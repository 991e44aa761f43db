package as5600

import "log/slog"

const (
	angleMask  = 0x0FFF
	resolution = 4096
)

// DecodeAngle combines the high and low register bytes into a 12-bit value.
// Bits above the 12-bit range are masked off.
func DecodeAngle(hi, lo byte) uint16 {
	raw := uint16(hi)<<8 | uint16(lo)
	if raw&^angleMask != 0 {
		slog.Debug("as5600: masking stray angle bits", "raw", raw)
	}
	return raw & angleMask
}

// Degrees converts a 12-bit angle to degrees in [0, 360).
func Degrees(raw uint16) float64 {
	return float64(raw&angleMask) * 360.0 / resolution
}

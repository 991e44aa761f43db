package as5600

import (
	"context"
	"fmt"
	"sync"
	"time"

	"github.com/mklimuk/rotary"
)

// Address is the fixed 7-bit I2C address of the AS5600.
const Address = 0x36

// Register map. Multi-byte values are big-endian and the device auto-increments
// its register pointer, so one read starting at the high byte returns the pair.
const (
	RegStatus   byte = 0x0B
	RegRawAngle byte = 0x0C
	RegAngle    byte = 0x0E
)

var _ rotary.Encoder = &AS5600{}

type AS5600Opts struct {
	TxDelay time.Duration
}

type AS5600Opt func(*AS5600Opts)

// WithTxDelay inserts a guard delay between the register select write and the read.
func WithTxDelay(delay time.Duration) AS5600Opt {
	return func(o *AS5600Opts) {
		o.TxDelay = delay
	}
}

// AS5600 represents ams AS5600 12-bit magnetic rotary position sensor.
// See: https://ams.com/documents/20143/36005/AS5600_DS000365_5-00.pdf
//
// Typical usage:
//
//	s := NewAS5600(bus)
//	deg, err := s.ReadAngle(ctx)
//
// Every call performs a fresh register select + read transaction on the bus.
// Nothing is cached between calls.
type AS5600 struct {
	// held for the whole select+read pair so the register pointer cannot move
	mx sync.Mutex

	config    AS5600Opts
	transport rotary.I2CBus
	addr      byte
}

func NewAS5600(transport rotary.I2CBus, opts ...AS5600Opt) *AS5600 {
	var config AS5600Opts
	for _, opt := range opts {
		opt(&config)
	}
	return &AS5600{
		config:    config,
		transport: transport,
		addr:      Address,
	}
}

// ReadAngle returns the scaled output angle in degrees, in [0, 360).
func (s *AS5600) ReadAngle(ctx context.Context) (float64, error) {
	raw, err := s.ReadRawAngle(ctx)
	if err != nil {
		return 0, err
	}
	return Degrees(raw), nil
}

// ReadRawAngle returns the 12-bit value of the ANGLE register pair (0x0E/0x0F).
func (s *AS5600) ReadRawAngle(ctx context.Context) (uint16, error) {
	return s.readAngleRegister(ctx, RegAngle)
}

// ReadRawAngleRegister returns the 12-bit value of the unscaled RAW ANGLE
// register pair (0x0C/0x0D). It equals ReadRawAngle on a device whose start
// and stop positions were never programmed.
func (s *AS5600) ReadRawAngleRegister(ctx context.Context) (uint16, error) {
	return s.readAngleRegister(ctx, RegRawAngle)
}

func (s *AS5600) readAngleRegister(ctx context.Context, reg byte) (uint16, error) {
	buf := make([]byte, 2)
	if err := s.tx(ctx, reg, buf); err != nil {
		return 0, err
	}
	return DecodeAngle(buf[0], buf[1]), nil
}

// ReadStatus reads the STATUS register once. Use it to obtain all three magnet
// flags from a single transaction.
func (s *AS5600) ReadStatus(ctx context.Context) (Status, error) {
	buf := make([]byte, 1)
	if err := s.tx(ctx, RegStatus, buf); err != nil {
		return 0, err
	}
	return Status(buf[0]), nil
}

// IsMagnetDetected reports the MD bit; it performs its own status transaction.
func (s *AS5600) IsMagnetDetected(ctx context.Context) (bool, error) {
	status, err := s.ReadStatus(ctx)
	if err != nil {
		return false, err
	}
	return status.MagnetDetected(), nil
}

// IsMagnetTooWeak reports the ML bit; it performs its own status transaction.
func (s *AS5600) IsMagnetTooWeak(ctx context.Context) (bool, error) {
	status, err := s.ReadStatus(ctx)
	if err != nil {
		return false, err
	}
	return status.MagnetTooWeak(), nil
}

// IsMagnetTooStrong reports the MH bit; it performs its own status transaction.
func (s *AS5600) IsMagnetTooStrong(ctx context.Context) (bool, error) {
	status, err := s.ReadStatus(ctx)
	if err != nil {
		return false, err
	}
	return status.MagnetTooStrong(), nil
}

// Ping checks that the device acknowledges a status transaction.
func (s *AS5600) Ping(ctx context.Context) error {
	_, err := s.ReadStatus(ctx)
	return err
}

// tx selects reg with a single byte write and reads len(buf) bytes back.
func (s *AS5600) tx(ctx context.Context, reg byte, buf []byte) error {
	s.mx.Lock()
	defer s.mx.Unlock()

	err := s.transport.WriteToAddr(ctx, s.addr, []byte{reg})
	if err != nil {
		return &BusError{Op: OpSelect, Addr: s.addr, Register: reg, Err: err}
	}
	if s.config.TxDelay > 0 {
		timer := time.NewTimer(s.config.TxDelay)
		defer timer.Stop()
		select {
		case <-timer.C:
		case <-ctx.Done():
			return &BusError{Op: OpRead, Addr: s.addr, Register: reg, Err: ctx.Err()}
		}
	}
	err = s.transport.ReadFromAddr(ctx, s.addr, buf)
	if err != nil {
		return &BusError{Op: OpRead, Addr: s.addr, Register: reg, Err: err}
	}
	return nil
}

const (
	OpSelect = "select"
	OpRead   = "read"
)

// BusError reports a failed step of a register transaction.
type BusError struct {
	Op       string
	Addr     byte
	Register byte
	Err      error
}

func (e *BusError) Error() string {
	return fmt.Sprintf("as5600: %s register %#02x at %#02x failed: %v", e.Op, e.Register, e.Addr, e.Err)
}

func (e *BusError) Unwrap() error {
	return e.Err
}

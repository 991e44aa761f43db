package rotary

import (
	"context"
	"fmt"
)

var ErrBusBusy = fmt.Errorf("I2C engine is busy (command not completed)")

// ErrShortRead is returned by transports when the device delivered fewer bytes than requested.
var ErrShortRead = fmt.Errorf("short read")

// ErrShortWrite is returned by transports when not every byte of the buffer was acknowledged.
var ErrShortWrite = fmt.Errorf("short write")

type AddressableReader interface {
	ReadFromAddr(ctx context.Context, address byte, buffer []byte) error
}

type AddressableWriter interface {
	WriteToAddr(ctx context.Context, address byte, buffer []byte) error
	Release(ctx context.Context) error
}

type I2CBus interface {
	AddressableReader
	AddressableWriter
}

// Encoder is an absolute rotary position sensor with magnet field diagnostics.
type Encoder interface {
	ReadAngle(ctx context.Context) (float64, error)
	IsMagnetDetected(ctx context.Context) (bool, error)
	IsMagnetTooWeak(ctx context.Context) (bool, error)
	IsMagnetTooStrong(ctx context.Context) (bool, error)
}

package as5600

import (
	"context"
	"errors"
	"sync"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/mock"
	"github.com/stretchr/testify/require"

	"github.com/mklimuk/rotary"
)

// MockI2CBus is a mock implementation of rotary.I2CBus using testify/mock.
// It also records the order of bus operations.
type MockI2CBus struct {
	mock.Mock
	mu  sync.Mutex
	ops []string
}

func (m *MockI2CBus) WriteToAddr(ctx context.Context, address byte, buffer []byte) error {
	m.record("W")
	args := m.Called(ctx, address, buffer)
	return args.Error(0)
}

func (m *MockI2CBus) ReadFromAddr(ctx context.Context, address byte, buffer []byte) error {
	m.record("R")
	args := m.Called(ctx, address, buffer)
	if data, ok := args.Get(0).([]byte); ok && len(data) <= len(buffer) {
		copy(buffer, data)
	}
	return args.Error(1)
}

func (m *MockI2CBus) Release(ctx context.Context) error {
	args := m.Called(ctx)
	return args.Error(0)
}

func (m *MockI2CBus) record(op string) {
	m.mu.Lock()
	m.ops = append(m.ops, op)
	m.mu.Unlock()
}

func bufLen(n int) interface{} {
	return mock.MatchedBy(func(b []byte) bool { return len(b) == n })
}

func expectTx(bus *MockI2CBus, reg byte, resp []byte) {
	bus.On("WriteToAddr", mock.Anything, byte(Address), []byte{reg}).Return(nil).Once()
	bus.On("ReadFromAddr", mock.Anything, byte(Address), bufLen(len(resp))).Return(resp, nil).Once()
}

func TestAS5600_ReadAngle(t *testing.T) {
	tests := []struct {
		name     string
		resp     []byte
		expected float64
	}{
		{"zero", []byte{0x00, 0x00}, 0.0},
		{"max", []byte{0x0F, 0xFF}, 359.912109375},
		{"half turn", []byte{0x08, 0x00}, 180.0},
		{"quarter turn", []byte{0x04, 0x00}, 90.0},
		{"stray high bits masked", []byte{0xF4, 0x00}, 90.0},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			bus := new(MockI2CBus)
			expectTx(bus, RegAngle, tt.resp)

			deg, err := NewAS5600(bus).ReadAngle(context.Background())

			require.NoError(t, err)
			assert.InDelta(t, tt.expected, deg, 1e-9)
			assert.Equal(t, []string{"W", "R"}, bus.ops)
			bus.AssertExpectations(t)
		})
	}
}

func TestAS5600_ReadRawAngle(t *testing.T) {
	bus := new(MockI2CBus)
	expectTx(bus, RegAngle, []byte{0x0A, 0xBC})

	raw, err := NewAS5600(bus).ReadRawAngle(context.Background())

	require.NoError(t, err)
	assert.Equal(t, uint16(0x0ABC), raw)
	bus.AssertExpectations(t)
}

func TestAS5600_ReadRawAngleRegister(t *testing.T) {
	bus := new(MockI2CBus)
	expectTx(bus, RegRawAngle, []byte{0x01, 0x02})

	raw, err := NewAS5600(bus).ReadRawAngleRegister(context.Background())

	require.NoError(t, err)
	assert.Equal(t, uint16(0x0102), raw)
	bus.AssertExpectations(t)
}

func TestAS5600_MagnetFlags(t *testing.T) {
	tests := []struct {
		name     string
		status   byte
		detected bool
		weak     bool
		strong   bool
	}{
		{"none", 0x00, false, false, false},
		{"detected", 0x20, true, false, false},
		{"weak and strong", 0x18, false, true, true},
		{"all", 0x38, true, true, true},
		{"reserved bits ignored", 0xC7, false, false, false},
		{"detected too weak", 0x30, true, true, false},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			bus := new(MockI2CBus)
			// each flag query is its own transaction
			expectTx(bus, RegStatus, []byte{tt.status})
			expectTx(bus, RegStatus, []byte{tt.status})
			expectTx(bus, RegStatus, []byte{tt.status})
			s := NewAS5600(bus)
			ctx := context.Background()

			detected, err := s.IsMagnetDetected(ctx)
			require.NoError(t, err)
			weak, err := s.IsMagnetTooWeak(ctx)
			require.NoError(t, err)
			strong, err := s.IsMagnetTooStrong(ctx)
			require.NoError(t, err)

			assert.Equal(t, tt.detected, detected)
			assert.Equal(t, tt.weak, weak)
			assert.Equal(t, tt.strong, strong)
			assert.Equal(t, []string{"W", "R", "W", "R", "W", "R"}, bus.ops)
			bus.AssertExpectations(t)
		})
	}
}

func TestAS5600_ReadStatus(t *testing.T) {
	bus := new(MockI2CBus)
	expectTx(bus, RegStatus, []byte{0x28})

	status, err := NewAS5600(bus).ReadStatus(context.Background())

	require.NoError(t, err)
	assert.Equal(t, Status(0x28), status)
	assert.True(t, status.MagnetDetected())
	assert.False(t, status.MagnetTooWeak())
	assert.True(t, status.MagnetTooStrong())
	bus.AssertNumberOfCalls(t, "WriteToAddr", 1)
	bus.AssertNumberOfCalls(t, "ReadFromAddr", 1)
}

func TestAS5600_SelectFailure(t *testing.T) {
	nack := errors.New("no ack")
	ops := map[string]func(s *AS5600, ctx context.Context) error{
		"angle": func(s *AS5600, ctx context.Context) error {
			_, err := s.ReadAngle(ctx)
			return err
		},
		"detected": func(s *AS5600, ctx context.Context) error {
			_, err := s.IsMagnetDetected(ctx)
			return err
		},
		"weak": func(s *AS5600, ctx context.Context) error {
			_, err := s.IsMagnetTooWeak(ctx)
			return err
		},
		"strong": func(s *AS5600, ctx context.Context) error {
			_, err := s.IsMagnetTooStrong(ctx)
			return err
		},
		"ping": func(s *AS5600, ctx context.Context) error {
			return s.Ping(ctx)
		},
	}
	for name, op := range ops {
		t.Run(name, func(t *testing.T) {
			bus := new(MockI2CBus)
			bus.On("WriteToAddr", mock.Anything, byte(Address), mock.Anything).Return(nack).Once()

			err := op(NewAS5600(bus), context.Background())

			var busErr *BusError
			require.ErrorAs(t, err, &busErr)
			assert.Equal(t, OpSelect, busErr.Op)
			assert.Equal(t, byte(Address), busErr.Addr)
			assert.ErrorIs(t, err, nack)
			bus.AssertNotCalled(t, "ReadFromAddr", mock.Anything, mock.Anything, mock.Anything)
		})
	}
}

func TestAS5600_ReadFailure(t *testing.T) {
	tests := []struct {
		name string
		err  error
	}{
		{"short read", rotary.ErrShortRead},
		{"busy", rotary.ErrBusBusy},
		{"timeout", context.DeadlineExceeded},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			bus := new(MockI2CBus)
			bus.On("WriteToAddr", mock.Anything, byte(Address), []byte{RegAngle}).Return(nil).Once()
			bus.On("ReadFromAddr", mock.Anything, byte(Address), bufLen(2)).Return(nil, tt.err).Once()

			deg, err := NewAS5600(bus).ReadAngle(context.Background())

			var busErr *BusError
			require.ErrorAs(t, err, &busErr)
			assert.Equal(t, OpRead, busErr.Op)
			assert.Equal(t, RegAngle, busErr.Register)
			assert.ErrorIs(t, err, tt.err)
			assert.Zero(t, deg)
			bus.AssertExpectations(t)
		})
	}
}

func TestAS5600_StatusReadFailure(t *testing.T) {
	bus := new(MockI2CBus)
	bus.On("WriteToAddr", mock.Anything, byte(Address), []byte{RegStatus}).Return(nil).Once()
	bus.On("ReadFromAddr", mock.Anything, byte(Address), bufLen(1)).Return(nil, rotary.ErrShortRead).Once()

	detected, err := NewAS5600(bus).IsMagnetDetected(context.Background())

	var busErr *BusError
	require.ErrorAs(t, err, &busErr)
	assert.ErrorIs(t, err, rotary.ErrShortRead)
	assert.False(t, detected)
	assert.Equal(t, OpRead, busErr.Op)
	assert.Equal(t, byte(RegStatus), busErr.Register)
	assert.Contains(t, err.Error(), "read register 0x0b at 0x36")
}

func TestAS5600_TxDelayCancelled(t *testing.T) {
	bus := new(MockI2CBus)
	bus.On("WriteToAddr", mock.Anything, byte(Address), []byte{RegAngle}).Return(nil).Once()
	ctx, cancel := context.WithCancel(context.Background())
	cancel()

	_, err := NewAS5600(bus, WithTxDelay(time.Hour)).ReadAngle(ctx)

	assert.ErrorIs(t, err, context.Canceled)
	bus.AssertNotCalled(t, "ReadFromAddr", mock.Anything, mock.Anything, mock.Anything)
}

func TestAS5600_TxDelay(t *testing.T) {
	bus := new(MockI2CBus)
	expectTx(bus, RegStatus, []byte{0x20})
	delay := 20 * time.Millisecond

	start := time.Now()
	_, err := NewAS5600(bus, WithTxDelay(delay)).ReadStatus(context.Background())

	require.NoError(t, err)
	assert.GreaterOrEqual(t, time.Since(start), delay)
}

func TestAS5600_SerializesTransactions(t *testing.T) {
	bus := new(MockI2CBus)
	const numOps = 8
	bus.On("WriteToAddr", mock.Anything, byte(Address), mock.Anything).Return(nil).Times(numOps)
	bus.On("ReadFromAddr", mock.Anything, byte(Address), mock.Anything).Return([]byte{0x20, 0x00}, nil).Times(numOps)
	s := NewAS5600(bus)
	ctx := context.Background()

	var wg sync.WaitGroup
	wg.Add(numOps)
	for i := 0; i < numOps; i++ {
		go func(i int) {
			defer wg.Done()
			var err error
			if i%2 == 0 {
				_, err = s.ReadAngle(ctx)
			} else {
				_, err = s.IsMagnetDetected(ctx)
			}
			assert.NoError(t, err)
		}(i)
	}
	wg.Wait()

	require.Len(t, bus.ops, 2*numOps)
	for i := 0; i < len(bus.ops); i += 2 {
		assert.Equal(t, "W", bus.ops[i], "op %d", i)
		assert.Equal(t, "R", bus.ops[i+1], "op %d", i+1)
	}
	bus.AssertExpectations(t)
}

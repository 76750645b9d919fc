package link

import (
	"errors"
	"sync"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.bug.st/serial"
)

type fakePort struct {
	serial.Port

	mu      sync.Mutex
	written []byte
	drains  int
	rx      []byte
	timeout time.Duration
	closed  bool
}

func (p *fakePort) Write(b []byte) (int, error) {
	p.mu.Lock()
	defer p.mu.Unlock()
	p.written = append(p.written, b...)
	return len(b), nil
}

func (p *fakePort) Drain() error {
	p.mu.Lock()
	defer p.mu.Unlock()
	p.drains++
	return nil
}

func (p *fakePort) Read(b []byte) (int, error) {
	p.mu.Lock()
	defer p.mu.Unlock()
	n := copy(b, p.rx)
	p.rx = p.rx[n:]
	return n, nil
}

func (p *fakePort) SetReadTimeout(t time.Duration) error {
	p.timeout = t
	return nil
}

func (p *fakePort) Close() error {
	p.closed = true
	return nil
}

func newFakeSerial(port *fakePort) (*Serial, *serial.Mode) {
	s := NewSerial("/dev/ttyFAKE", 0)
	var mode serial.Mode
	s.open = func(name string, m *serial.Mode) (serial.Port, error) {
		mode = *m
		return port, nil
	}
	return s, &mode
}

func TestSerialConnect(t *testing.T) {
	port := &fakePort{}
	s, mode := newFakeSerial(port)

	assert.False(t, s.IsConnected())
	require.NoError(t, s.Connect())
	assert.True(t, s.IsConnected())
	assert.Equal(t, DefaultBaudRate, mode.BaudRate)
	assert.Equal(t, readTimeout, port.timeout)

	assert.Error(t, s.Connect(), "second connect should fail")

	require.NoError(t, s.Close())
	assert.True(t, port.closed)
	assert.False(t, s.IsConnected())
	assert.NoError(t, s.Close())
}

func TestSerialConnectError(t *testing.T) {
	s := NewSerial("/dev/missing", 9600)
	s.open = func(string, *serial.Mode) (serial.Port, error) {
		return nil, errors.New("no such device")
	}
	err := s.Connect()
	require.Error(t, err)
	assert.Contains(t, err.Error(), "/dev/missing")
	assert.False(t, s.IsConnected())
}

func TestSerialWriteByte(t *testing.T) {
	port := &fakePort{}
	s, _ := newFakeSerial(port)

	assert.ErrorIs(t, s.WriteByte('7'), ErrNotConnected)

	require.NoError(t, s.Connect())
	for _, c := range []byte("72.3\r\n") {
		require.NoError(t, s.WriteByte(c))
	}
	assert.Equal(t, "72.3\r\n", string(port.written))
	assert.Equal(t, 6, port.drains, "every byte waits for the transmitter")
}

func TestSerialRead(t *testing.T) {
	port := &fakePort{rx: []byte("ping")}
	s, _ := newFakeSerial(port)

	_, err := s.Read(make([]byte, 4))
	assert.ErrorIs(t, err, ErrNotConnected)

	require.NoError(t, s.Connect())
	buf := make([]byte, 8)
	n, err := s.Read(buf)
	require.NoError(t, err)
	assert.Equal(t, "ping", string(buf[:n]))
}

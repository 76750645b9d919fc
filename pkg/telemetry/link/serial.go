// Package link carries telemetry lines off the host: a serial port,
// its receive drain and an MQTT mirror.
package link

import (
	"errors"
	"fmt"
	"log"
	"sync"
	"time"

	"github.com/itohio/gothermo/pkg/telemetry"
	"go.bug.st/serial"
)

const (
	// DefaultBaudRate is the line speed of the appliance.
	DefaultBaudRate = 9600
	// readTimeout bounds a single receive so that the drain loop can
	// notice cancellation.
	readTimeout = 100 * time.Millisecond
)

// ErrNotConnected is returned when the port is used before Connect.
var ErrNotConnected = errors.New("link: not connected")

// Port represents a serial port.
type Port struct {
	Name        string
	Description string
}

// Serial is the serial port of the appliance.
type Serial struct {
	port     string
	baudRate int
	open     func(name string, mode *serial.Mode) (serial.Port, error)

	mu        sync.RWMutex
	conn      serial.Port
	connected bool
}

// Ensure Serial implements Link.
var _ telemetry.Link = (*Serial)(nil)

// NewSerial creates a new Serial instance with the specified port and baud rate.
func NewSerial(port string, baudRate int) *Serial {
	if baudRate == 0 {
		baudRate = DefaultBaudRate
	}

	return &Serial{
		port:     port,
		baudRate: baudRate,
		open:     serial.Open,
	}
}

// Ports returns a list of available serial ports.
func Ports() ([]Port, error) {
	ports, err := serial.GetPortsList()
	if err != nil {
		return nil, fmt.Errorf("failed to list serial ports: %w", err)
	}

	result := make([]Port, 0, len(ports))
	for _, name := range ports {
		result = append(result, Port{
			Name:        name,
			Description: name,
		})
	}

	return result, nil
}

// Connect opens the serial port.
func (s *Serial) Connect() error {
	s.mu.Lock()
	defer s.mu.Unlock()

	if s.connected {
		return fmt.Errorf("already connected")
	}

	mode := &serial.Mode{
		BaudRate: s.baudRate,
	}

	port, err := s.open(s.port, mode)
	if err != nil {
		return fmt.Errorf("failed to open serial port %s: %w", s.port, err)
	}
	if err := port.SetReadTimeout(readTimeout); err != nil {
		port.Close()
		return fmt.Errorf("failed to set read timeout on %s: %w", s.port, err)
	}

	s.conn = port
	s.connected = true

	return nil
}

// Close closes the serial port.
func (s *Serial) Close() error {
	s.mu.Lock()
	defer s.mu.Unlock()

	if !s.connected {
		return nil
	}

	if s.conn != nil {
		if err := s.conn.Close(); err != nil {
			log.Printf("Error closing serial port: %v", err)
		}
		s.conn = nil
	}

	s.connected = false

	return nil
}

// IsConnected returns whether the port is currently open.
func (s *Serial) IsConnected() bool {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return s.connected
}

// WriteByte transmits c and waits until it has left the output buffer.
func (s *Serial) WriteByte(c byte) error {
	s.mu.RLock()
	defer s.mu.RUnlock()

	if !s.connected {
		return ErrNotConnected
	}

	if _, err := s.conn.Write([]byte{c}); err != nil {
		return fmt.Errorf("failed to write: %w", err)
	}
	if err := s.conn.Drain(); err != nil {
		return fmt.Errorf("failed to drain: %w", err)
	}
	return nil
}

// Read reads received bytes. It returns 0, nil when nothing arrived within
// the read timeout.
func (s *Serial) Read(p []byte) (int, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	if !s.connected {
		return 0, ErrNotConnected
	}
	return s.conn.Read(p)
}

// Package hardware provides the RateSensor and Motor implementations:
// a serial bridge to the IMU/motor-driver microcontroller and a simulated
// plant for bench runs and tests.
package hardware

import (
	"bufio"
	"fmt"
	"strconv"
	"strings"
	"sync"

	"go.bug.st/serial"

	"github.com/astraios/go-aocs/pkg/aocs"
)

// SerialBridge talks to the microcontroller that owns the MPU-9250 and
// the H-bridge over a line-oriented serial protocol:
//
//	-> "G\n"                request a gyro sample
//	<- "x,y,z\n"            rates in deg/s
//	-> "M,<dir>,<speed>\n"  motor command, dir -1/0/1, speed 0-100
//	<- "OK\n"
//
// One bridge instance owns the port; calls are serialized internally.
type SerialBridge struct {
	mu     sync.Mutex
	port   serial.Port
	reader *bufio.Reader

	// last commanded state, so direction and speed writes compose into
	// one wire command each
	lastDir   int
	lastSpeed float64
}

// OpenSerialBridge opens the serial port. Failure here is fatal for the
// control loop; retries belong to the caller's bring-up procedure.
func OpenSerialBridge(device string, baud int) (*SerialBridge, error) {
	mode := &serial.Mode{BaudRate: baud}
	port, err := serial.Open(device, mode)
	if err != nil {
		return nil, fmt.Errorf("open serial %s: %w", device, err)
	}
	return &SerialBridge{
		port:   port,
		reader: bufio.NewReader(port),
	}, nil
}

// ReadRate requests one gyro sample. Implements aocs.RateSensor.
func (b *SerialBridge) ReadRate() (aocs.RateReading, error) {
	b.mu.Lock()
	defer b.mu.Unlock()

	if _, err := b.port.Write([]byte("G\n")); err != nil {
		return aocs.RateReading{}, fmt.Errorf("gyro request: %w", err)
	}

	line, err := b.reader.ReadString('\n')
	if err != nil {
		return aocs.RateReading{}, fmt.Errorf("gyro response: %w", err)
	}

	parts := strings.Split(strings.TrimSpace(line), ",")
	if len(parts) != 3 {
		return aocs.RateReading{}, fmt.Errorf("gyro response malformed: %q", line)
	}

	var vals [3]float64
	for i, p := range parts {
		v, err := strconv.ParseFloat(strings.TrimSpace(p), 64)
		if err != nil {
			return aocs.RateReading{}, fmt.Errorf("gyro response malformed: %q", line)
		}
		vals[i] = v
	}
	return aocs.RateReading{X: vals[0], Y: vals[1], Z: vals[2]}, nil
}

// SetDirection sets the motor direction. Implements aocs.Motor.
func (b *SerialBridge) SetDirection(dir int) error {
	b.mu.Lock()
	defer b.mu.Unlock()
	b.lastDir = dir
	return b.sendMotor(dir, b.lastSpeed)
}

// SetSpeed sets the motor duty cycle in percent.
func (b *SerialBridge) SetSpeed(pct float64) error {
	b.mu.Lock()
	defer b.mu.Unlock()
	if pct < 0 {
		pct = 0
	}
	if pct > 100 {
		pct = 100
	}
	b.lastSpeed = pct
	return b.sendMotor(b.lastDir, pct)
}

// Stop drops direction and duty cycle together.
func (b *SerialBridge) Stop() error {
	b.mu.Lock()
	defer b.mu.Unlock()
	b.lastDir = 0
	b.lastSpeed = 0
	return b.sendMotor(0, 0)
}

// sendMotor writes one motor command and waits for the acknowledgement.
// Caller must hold b.mu.
func (b *SerialBridge) sendMotor(dir int, speed float64) error {
	cmd := fmt.Sprintf("M,%d,%.1f\n", dir, speed)
	if _, err := b.port.Write([]byte(cmd)); err != nil {
		return fmt.Errorf("motor command: %w", err)
	}
	line, err := b.reader.ReadString('\n')
	if err != nil {
		return fmt.Errorf("motor ack: %w", err)
	}
	if strings.TrimSpace(line) != "OK" {
		return fmt.Errorf("motor nack: %q", line)
	}
	return nil
}

// Close releases the serial port, stopping the motor first.
func (b *SerialBridge) Close() error {
	_ = b.Stop()
	return b.port.Close()
}

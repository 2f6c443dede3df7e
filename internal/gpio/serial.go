package gpio

import (
	"bufio"
	"fmt"
	"strconv"
	"strings"
	"sync/atomic"

	"github.com/tarm/serial"
)

// SerialEdgePin is an EdgePin backed by an MCU front end that timestamps
// logic transitions in hardware and streams them over a serial port, one
// edge per line in the form "<micros> <0|1>". It lets the capture pipeline
// run on a host while the microsecond-critical work stays on the MCU.
type SerialEdgePin struct {
	config *serial.Config

	port     *serial.Port
	watching atomic.Bool
}

// NewSerialEdgePin creates a pin reading edges from the named serial port.
func NewSerialEdgePin(name string, baud int) *SerialEdgePin {
	return &SerialEdgePin{
		config: &serial.Config{Name: name, Baud: baud},
	}
}

func (p *SerialEdgePin) Watch(fn EdgeFunc) error {
	if !p.watching.CompareAndSwap(false, true) {
		return ErrWatchActive
	}

	port, err := serial.OpenPort(p.config)
	if err != nil {
		p.watching.Store(false)
		return fmt.Errorf("opening serial port %s: %w", p.config.Name, err)
	}
	p.port = port

	go p.scan(port, fn)
	return nil
}

// Unwatch closes the serial port, which terminates the reader goroutine.
func (p *SerialEdgePin) Unwatch() {
	if !p.watching.CompareAndSwap(true, false) {
		return
	}
	if p.port != nil {
		p.port.Close()
		p.port = nil
	}
}

func (p *SerialEdgePin) scan(port *serial.Port, fn EdgeFunc) {
	scanner := bufio.NewScanner(port)
	for scanner.Scan() {
		if !p.watching.Load() {
			return
		}

		t, high, err := parseEdgeLine(scanner.Text())
		if err != nil {
			continue // noise on the line, next edge resynchronises
		}

		fn(t, high)
	}
}

func parseEdgeLine(line string) (timeMicros int64, high bool, err error) {
	line = strings.TrimSpace(line)
	fields := strings.Fields(line)
	if len(fields) != 2 {
		return 0, false, fmt.Errorf("malformed edge line %q", line)
	}

	if timeMicros, err = strconv.ParseInt(fields[0], 10, 64); err != nil {
		return 0, false, fmt.Errorf("malformed edge timestamp %q: %w", fields[0], err)
	}

	switch fields[1] {
	case "0":
	case "1":
		high = true
	default:
		return 0, false, fmt.Errorf("malformed edge level %q", fields[1])
	}

	return timeMicros, high, nil
}

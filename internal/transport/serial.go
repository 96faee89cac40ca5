package transport

import (
	"fmt"

	"github.com/pkg/term"
)

// busBaud is the fixed line rate the plensor bus runs at.
const busBaud = 921600

// OpenSerial opens device at the fixed bus rate, requests the named GPIO
// line as the DE/RE direction control, and returns a ready Transport.
// Callers must Close it on shutdown to release both the port and the
// line.
func OpenSerial(device string, gpioChip string, gpioOffset int) (*Transport, error) {
	fd, err := term.Open(device, term.RawMode)
	if err != nil {
		return nil, fmt.Errorf("transport: open %s: %w", device, err)
	}
	if err := fd.SetSpeed(busBaud); err != nil {
		fd.Close()
		return nil, fmt.Errorf("transport: set speed on %s: %w", device, err)
	}

	dir, err := openDirLine(gpioChip, gpioOffset)
	if err != nil {
		fd.Close()
		return nil, fmt.Errorf("transport: direction line %s:%d: %w", gpioChip, gpioOffset, err)
	}

	return New(fd, dir), nil
}

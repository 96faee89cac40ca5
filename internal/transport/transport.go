// Package transport owns the RS-485 serial line and its direction-control
// GPIO line, and implements the single exchange operation the scheduler
// uses to talk to the bus.
package transport

import (
	"context"
	"io"
	"sync"
	"time"
)

// quietInterval is how long the line must go silent before a reply is
// considered complete.
const quietInterval = 10 * time.Millisecond

// txSettle is how long to wait after writing before releasing the
// direction-control line, to let the UART's shift register finish
// draining onto the wire.
const txSettle = 50 * time.Millisecond

// pollInterval is how often Exchange checks the termination condition
// between incoming chunks.
const pollInterval = time.Millisecond

// DirLine is the direction-control (DE/RE) output the half-duplex
// transceiver needs asserted while transmitting and deasserted while
// receiving.
type DirLine interface {
	SetValue(v int) error
	Close() error
}

// Port is the serial line itself.
type Port interface {
	io.ReadWriteCloser
}

// Transport serializes every frame exchange over one RS-485 bus. It is
// the only component permitted to read or write the port; the scheduler
// task is its only caller.
type Transport struct {
	port Port
	dir  DirLine

	writeMu sync.Mutex

	rx        chan []byte
	readerErr chan error
	closeOnce sync.Once
	closed    chan struct{}
}

// New wraps an already-open port and direction line. Production callers
// use OpenSerial; tests construct Port/DirLine fakes directly.
func New(port Port, dir DirLine) *Transport {
	t := &Transport{
		port:      port,
		dir:       dir,
		rx:        make(chan []byte, 64),
		readerErr: make(chan error, 1),
		closed:    make(chan struct{}),
	}
	go t.readLoop()
	return t
}

func (t *Transport) readLoop() {
	buf := make([]byte, 256)
	for {
		n, err := t.port.Read(buf)
		if n > 0 {
			chunk := append([]byte(nil), buf[:n]...)
			select {
			case t.rx <- chunk:
			case <-t.closed:
				return
			}
		}
		if err != nil {
			select {
			case t.readerErr <- err:
			default:
			}
			return
		}
	}
}

// Exchange asserts the direction line, writes frame, waits for the
// shift register to drain, deasserts the direction line, then polls for
// a reply until the line has been quiet for quietInterval AND timeout has
// elapsed since the direction line was deasserted — whichever of those
// becomes true last. It
// returns whatever bytes arrived, or nil if the device never replied.
//
// Exchange is the only serialization point with the bus: invariant, at
// most one frame is ever in flight.
func (t *Transport) Exchange(ctx context.Context, frame []byte, timeout time.Duration) ([]byte, error) {
	t.writeMu.Lock()
	defer t.writeMu.Unlock()

	if err := t.dir.SetValue(1); err != nil {
		return nil, err
	}
	if _, err := t.port.Write(frame); err != nil {
		t.dir.SetValue(0)
		return nil, err
	}
	time.Sleep(txSettle)
	if err := t.dir.SetValue(0); err != nil {
		return nil, err
	}

	start := time.Now()
	lastByte := start
	var acc []byte
	ticker := time.NewTicker(pollInterval)
	defer ticker.Stop()
	for {
		select {
		case chunk := <-t.rx:
			acc = append(acc, chunk...)
			lastByte = time.Now()
		case err := <-t.readerErr:
			return acc, err
		case now := <-ticker.C:
			if now.Sub(lastByte) > quietInterval && now.Sub(start) > timeout {
				return acc, nil
			}
		case <-ctx.Done():
			return acc, ctx.Err()
		}
	}
}

// Close releases the port and the direction-control line, setting the
// direction line low first as the shutdown sequence requires.
func (t *Transport) Close() error {
	var err error
	t.closeOnce.Do(func() {
		t.dir.SetValue(0)
		close(t.closed)
		err = t.port.Close()
		if dErr := t.dir.Close(); err == nil {
			err = dErr
		}
	})
	return err
}

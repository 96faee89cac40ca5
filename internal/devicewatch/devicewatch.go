// Package devicewatch logs RS-485 USB-adapter attach/detach events. It
// is purely diagnostic: the transport's serial device path is fixed at
// startup and never re-opened automatically, so this package never
// triggers a reconnect — it just tells the operator why the bus went
// quiet.
package devicewatch

import (
	"context"

	"github.com/charmbracelet/log"
	"github.com/jochenvg/go-udev"
)

// Watch subscribes to udev "tty" subsystem events and logs each one
// until ctx is canceled.
func Watch(ctx context.Context, logger *log.Logger) error {
	u := udev.Udev{}
	mon := u.NewMonitorFromNetlink("udev")
	if err := mon.FilterAddMatchSubsystem("tty"); err != nil {
		return err
	}

	devices, errs := mon.DeviceChan(ctx)
	go func() {
		for {
			select {
			case <-ctx.Done():
				return
			case d, ok := <-devices:
				if !ok {
					return
				}
				logger.Info("device event", "action", d.Action(), "devpath", d.Devpath())
			case err, ok := <-errs:
				if !ok {
					continue
				}
				if err != nil {
					logger.Error("udev monitor error", "err", err)
				}
			}
		}
	}()
	return nil
}

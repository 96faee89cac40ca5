// Command plensor-gatewayd runs the RS-485 plensor gateway: it probes,
// calibrates, and measures every sensor in the plan document on a
// cadence, writes results under the data root, and watches the metadata
// directory for interrupts, plan reloads, and sensor-set changes.
package main

import (
	"context"
	"errors"
	"fmt"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/charmbracelet/log"
	"github.com/plense/plensor-gateway/internal/artifact"
	"github.com/plense/plensor-gateway/internal/discovery"
	"github.com/plense/plensor-gateway/internal/devicewatch"
	"github.com/plense/plensor-gateway/internal/plan"
	"github.com/plense/plensor-gateway/internal/queue"
	"github.com/plense/plensor-gateway/internal/rotatelog"
	"github.com/plense/plensor-gateway/internal/scheduler"
	"github.com/plense/plensor-gateway/internal/transport"
	"github.com/spf13/pflag"
	"github.com/thlib/go-timezone-local/tzlocal"
)

func main() {
	var (
		device       = pflag.StringP("device", "D", "/dev/ttyUSB0", "RS-485 serial device.")
		gpioChip     = pflag.StringP("gpio-chip", "c", "gpiochip0", "GPIO chip holding the DE/RE direction line.")
		gpioOffset   = pflag.IntP("gpio-offset", "o", 0, "GPIO line offset for the DE/RE direction line.")
		planPath     = pflag.StringP("plan", "p", "plan.yaml", "Measurement plan document.")
		dataDir      = pflag.StringP("data-dir", "d", "./data", "Root directory for audio/environment/TOF artifacts.")
		metadataDir  = pflag.StringP("metadata-dir", "m", "", "Directory watched for interrupt/reload sentinels. Disabled if empty.")
		logDir       = pflag.StringP("log-dir", "l", "", "Directory for daily-rotating log files. Logs to stderr if empty.")
		logLevel     = pflag.StringP("log-level", "L", "info", "Log level: debug, info, warn, error.")
		serviceName  = pflag.StringP("service-name", "n", "plensor-gateway", "mDNS instance name advertised on the LAN.")
		mdnsPort     = pflag.IntP("mdns-port", "P", 0, "Port advertised over mDNS. Disabled if 0.")
		once         = pflag.BoolP("once", "1", false, "Run the scheduler for a fixed two-second window, then exit, instead of running the cadence loop.")
		help         = pflag.BoolP("help", "h", false, "Display help text.")
	)

	pflag.Usage = func() {
		fmt.Fprintf(os.Stderr, "plensor-gatewayd - RS-485 plensor sensor gateway.\n\n")
		fmt.Fprintf(os.Stderr, "Usage: plensor-gatewayd [options]\n\n")
		pflag.PrintDefaults()
	}
	pflag.Parse()

	if *help {
		pflag.Usage()
		os.Exit(0)
	}

	logger, closeLog := buildLogger(*logDir, *logLevel)
	defer closeLog()

	doc, err := plan.Load(*planPath)
	if err != nil {
		if errors.Is(err, os.ErrNotExist) {
			logger.Error("plan file missing", "path", *planPath, "err", err)
			os.Exit(1)
		}
		// Present but unparseable: spec.md §7's ConfigInvalid. No prior
		// sensor set exists yet at cold start, so the fallback plan runs
		// with no sensors until a corrected document is dropped in.
		logger.Error("plan load failed, falling back to compiled-in default plan", "path", *planPath, "err", err)
		doc = plan.FallbackDocument(nil)
	}

	tz := resolveTimezone(logger)

	bus, err := transport.OpenSerial(*device, *gpioChip, *gpioOffset)
	if err != nil {
		logger.Error("transport open failed", "err", err)
		os.Exit(1)
	}
	defer bus.Close()

	q := queue.New()
	artifacts := artifact.Root{Dir: *dataDir}
	consumer := artifact.LoggingConsumer{Logger: logger}

	sched := scheduler.New(scheduler.Config{
		Bus:         bus,
		Queue:       q,
		Artifacts:   artifacts,
		Consumer:    consumer,
		Logger:      logger,
		TZ:          tz,
		PlanPath:    *planPath,
		MetadataDir: *metadataDir,
		Doc:         doc,
	})

	ctx, cancel := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer cancel()

	if err := devicewatch.Watch(ctx, logger); err != nil {
		logger.Warn("device watch disabled", "err", err)
	}

	if *mdnsPort > 0 {
		if err := discovery.Advertise(ctx, *serviceName, *mdnsPort); err != nil {
			logger.Warn("mdns advertise disabled", "err", err)
		}
	}

	if *once {
		runOnce(ctx, sched, logger)
		return
	}

	logger.Info("gateway starting", "device", *device, "sensors", len(doc.Sensors), "plan", *planPath)
	sched.Run(ctx)
	logger.Info("gateway stopped")
}

// runOnce runs the scheduler, whose first pass seeds the default sequence
// for every responsive sensor, for a fixed two-second window and then
// stops it, for scripted/provisioning invocations. It does not wait for
// the queue to drain: messages still queued when the window closes are
// not processed, and an exchange still in flight is cut short.
func runOnce(ctx context.Context, sched *scheduler.Scheduler, logger *log.Logger) {
	done := make(chan struct{})
	onceCtx, cancel := context.WithCancel(ctx)
	go func() {
		sched.Run(onceCtx)
		close(done)
	}()

	// stop the scheduler after a fixed window, drained or not.
	select {
	case <-time.After(2 * time.Second):
	case <-ctx.Done():
	}
	cancel()
	<-done
	logger.Info("one-shot run complete")
}

func buildLogger(logDir, level string) (*log.Logger, func()) {
	opts := log.Options{ReportTimestamp: true}
	var logger *log.Logger
	closeFn := func() {}

	if logDir != "" {
		w, err := rotatelog.New(logDir, rotatelog.DefaultRetentionDays)
		if err != nil {
			logger = log.NewWithOptions(os.Stderr, opts)
			logger.Error("rotating log disabled, falling back to stderr", "err", err)
		} else {
			logger = log.NewWithOptions(w, opts)
			closeFn = func() { w.Close() }
		}
	} else {
		logger = log.NewWithOptions(os.Stderr, opts)
	}

	switch level {
	case "debug":
		logger.SetLevel(log.DebugLevel)
	case "warn":
		logger.SetLevel(log.WarnLevel)
	case "error":
		logger.SetLevel(log.ErrorLevel)
	default:
		logger.SetLevel(log.InfoLevel)
	}
	return logger, closeFn
}

// resolveTimezone finds the host's local IANA timezone for the
// scheduler's midnight sweep, falling back to UTC if detection fails —
// matching mains.Frequency's fallback-on-error shape for the same
// tzlocal dependency.
func resolveTimezone(logger *log.Logger) *time.Location {
	name, err := tzlocal.RuntimeTZ()
	if err != nil {
		logger.Warn("timezone detection failed, defaulting to UTC", "err", err)
		return time.UTC
	}
	loc, err := time.LoadLocation(name)
	if err != nil {
		logger.Warn("unknown local timezone, defaulting to UTC", "timezone", name, "err", err)
		return time.UTC
	}
	return loc
}

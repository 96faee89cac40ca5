package scheduler

import (
	"context"
	"time"

	"github.com/plense/plensor-gateway/internal/plan"
)

// sentinelPollInterval is how often the interrupt-watch task re-scans
// the metadata directory. Short enough that S5's "next pop yields that
// Probe" reads as immediate to an operator.
const sentinelPollInterval = 500 * time.Millisecond

// watchMetadata is the interrupt-watch task from spec.md §5: it polls
// the metadata directory and pushes interrupt messages to the queue's
// head, and relays the two flag sentinels to the scheduler loop over
// reloadCh/metadataCh for the scheduler goroutine (the sole owner of
// doc and the sensor map) to act on.
func (s *Scheduler) watchMetadata(ctx context.Context, reloadCh, metadataCh chan<- struct{}) {
	ticker := time.NewTicker(sentinelPollInterval)
	defer ticker.Stop()
	for {
		select {
		case <-ctx.Done():
			return
		case <-ticker.C:
			s.pollSentinels(reloadCh, metadataCh)
		}
	}
}

func (s *Scheduler) pollSentinels(reloadCh, metadataCh chan<- struct{}) {
	if s.metadataDir == "" {
		return
	}

	msgs, err := plan.ConsumeInterrupts(s.metadataDir)
	if err != nil {
		s.logger.Error("interrupt scan failed", "err", err)
	}
	for _, m := range msgs {
		qm, err := m.ToQueueMessage(s.currentDoc())
		if err != nil {
			s.logger.Error("bad interrupt message", "sensor", m.SensorID, "err", err)
			continue
		}
		s.q.PushFront(qm)
	}

	if present, err := plan.ConsumeFlag(s.metadataDir, plan.SentinelNewSettings); err != nil {
		s.logger.Error("settings flag scan failed", "err", err)
	} else if present {
		notify(reloadCh)
	}

	if present, err := plan.ConsumeFlag(s.metadataDir, plan.SentinelNewMetadata); err != nil {
		s.logger.Error("metadata flag scan failed", "err", err)
	} else if present {
		notify(metadataCh)
	}
}

func notify(ch chan<- struct{}) {
	select {
	case ch <- struct{}{}:
	default:
	}
}

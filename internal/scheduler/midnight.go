package scheduler

import (
	"time"

	"github.com/plense/plensor-gateway/internal/protocol"
	"github.com/plense/plensor-gateway/internal/queue"
)

func nowIn(tz *time.Location) time.Time {
	if tz == nil {
		tz = time.UTC
	}
	return time.Now().In(tz)
}

// maybeMidnightSweep checks whether the local date has advanced since
// the last sweep and, if so, pushes a probe+calibrate pair per active
// sensor in stable order ahead of the periodic seed about to follow, per
// spec.md §4.5/§8 testable property 8.
func (s *Scheduler) maybeMidnightSweep() {
	today := nowIn(s.tz).Format("2006-01-02")
	if today == s.lastMidnight {
		return
	}
	first := s.lastMidnight != ""
	s.lastMidnight = today
	if !first {
		// first run of the process: no prior day to have swept past.
		return
	}

	// push in reverse so the most-recent PushFront (the last sensor
	// pushed) pops first, leaving sensorOrder's own order on the queue.
	for i := len(s.sensorOrder) - 1; i >= 0; i-- {
		id := s.sensorOrder[i]
		sn, ok := s.sensors[id]
		if !ok {
			continue
		}
		s.q.PushFront(queue.Message{
			Target:         id,
			Origin:         queue.OriginRecovery,
			Command:        protocol.Command{Kind: protocol.KindProbe, Target: id, Variant: sn.Variant},
			CalibrateAfter: true,
		})
	}
}

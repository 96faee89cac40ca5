package scheduler

import (
	"context"
	"time"

	"github.com/plense/plensor-gateway/internal/plan"
	"github.com/plense/plensor-gateway/internal/protocol"
	"github.com/plense/plensor-gateway/internal/queue"
)

// defaultIntervalS is used when a plan document leaves
// measurement_interval unset or non-positive.
const defaultIntervalS = 300

// Run is the scheduler's main loop. It owns s.sensors and s.docPtr for
// its lifetime: every mutation of either happens on this goroutine. The
// interrupt-watch goroutine (watchMetadata) only ever reads s.currentDoc()
// and pushes onto the queue, which is safe for concurrent use.
//
// The loop maps spec.md §4.5's Idle/Draining/Reseed diagram onto a single
// queue.Pop call bounded by a deadline for the next reseed (see DESIGN.md
// Open Question (d)): a message arriving before the deadline is drained
// and dispatched immediately; the deadline elapsing with nothing queued
// is the tick into Reseed.
func (s *Scheduler) Run(ctx context.Context) {
	reloadCh := make(chan struct{}, 1)
	metadataCh := make(chan struct{}, 1)
	go s.watchMetadata(ctx, reloadCh, metadataCh)

	nextDefault := time.Now()
	nextSubPlan := map[string]time.Time{}
	for name := range s.currentDoc().MeasurementPlans {
		nextSubPlan[name] = time.Now()
	}

	for {
		select {
		case <-ctx.Done():
			return
		case <-reloadCh:
			s.reloadPlan()
			nextDefault = time.Now()
			nextSubPlan = map[string]time.Time{}
			for name := range s.currentDoc().MeasurementPlans {
				nextSubPlan[name] = time.Now()
			}
			continue
		case <-metadataCh:
			s.reloadMetadata()
			continue
		default:
		}

		deadline := nextDefault
		for _, t := range nextSubPlan {
			if t.Before(deadline) {
				deadline = t
			}
		}

		popCtx, cancel := context.WithDeadline(ctx, deadline)
		msg, ok := s.q.Pop(popCtx)
		cancel()
		if !ok {
			if ctx.Err() != nil {
				return
			}
			// popCtx's deadline elapsed with the queue empty: reseed.
			now := time.Now()
			s.maybeMidnightSweep()
			if !now.Before(nextDefault) {
				s.reseedDefault()
				interval := s.currentDoc().MeasurementIntervalS
				if interval <= 0 {
					interval = defaultIntervalS
				}
				nextDefault = now.Add(time.Duration(interval) * time.Second)
			}
			doc := s.currentDoc()
			for name, due := range nextSubPlan {
				if now.Before(due) {
					continue
				}
				sub, ok := doc.MeasurementPlans[name]
				if !ok {
					delete(nextSubPlan, name)
					continue
				}
				s.reseedSubPlan(sub)
				interval := sub.IntervalS
				if interval <= 0 {
					interval = defaultIntervalS
				}
				nextSubPlan[name] = now.Add(time.Duration(interval) * time.Second)
			}
			continue
		}
		s.dispatch(ctx, msg)
	}
}

func (s *Scheduler) reseedDefault() {
	doc := s.currentDoc()
	msgs, err := plan.SeedDefault(doc, s.responsiveIDs())
	if err != nil {
		s.logger.Error("seed default plan failed", "err", err)
		return
	}
	for _, m := range msgs {
		s.q.PushBack(m)
	}
}

func (s *Scheduler) reseedSubPlan(sub plan.SubPlan) {
	doc := s.currentDoc()
	msgs, err := plan.SeedSubPlan(doc, sub, s.responsiveIDs())
	if err != nil {
		s.logger.Error("seed sub-plan failed", "err", err)
		return
	}
	for _, m := range msgs {
		s.q.PushBack(m)
	}
}

// reloadPlan handles the new_measure_settings_flag sentinel: re-read the
// plan document from disk, rebuild the sensor actor set to match, and
// clear any still-pending periodic work so the next reseed starts from
// the new document. An in-flight exchange is never affected — Clear
// only touches messages still waiting in the queue.
//
// A missing or unparseable document is spec.md §7's ConfigInvalid: fall
// back to the compiled-in default plan over the sensors already known,
// rather than leaving the gateway running the stale document silently.
func (s *Scheduler) reloadPlan() {
	if s.planPath == "" {
		return
	}
	doc, err := plan.Load(s.planPath)
	if err != nil {
		s.logger.Error("plan reload failed, falling back to compiled-in default plan", "path", s.planPath, "err", err)
		doc = plan.FallbackDocument(s.currentDoc().Sensors)
	}
	s.setDoc(doc)
	s.rebuildSensors(doc)
	s.q.Clear()
	s.logger.Info("plan reloaded", "path", s.planPath, "sensors", len(doc.Sensors))
}

// reloadMetadata handles the new_metadata_flag sentinel: it re-reads the
// plan document and refreshes the active sensor set in place — unlike
// reloadPlan, it never clears the queue. Sensors newly present in the
// document get a push_front probe+calibrate to bring them online;
// sensors no longer present simply lose their actor (rebuildSensors).
// A reload failure here just logs and keeps the current document and
// sensor set — a metadata-only sentinel isn't a declaration that the
// measurement plan itself is broken, so no fallback substitution.
func (s *Scheduler) reloadMetadata() {
	if s.planPath == "" {
		return
	}
	doc, err := plan.Load(s.planPath)
	if err != nil {
		s.logger.Error("metadata reload failed", "path", s.planPath, "err", err)
		return
	}

	existing := make(map[protocol.SensorId]bool, len(s.sensorOrder))
	for _, id := range s.sensorOrder {
		existing[id] = true
	}

	s.setDoc(doc)
	s.rebuildSensors(doc)

	for _, id := range s.sensorOrder {
		if existing[id] {
			continue
		}
		sn := s.sensors[id]
		s.q.PushFront(queue.Message{
			Target:         id,
			Origin:         queue.OriginRecovery,
			Command:        protocol.Command{Kind: protocol.KindProbe, Target: id, Variant: sn.Variant},
			CalibrateAfter: true,
		})
	}
	s.logger.Info("sensor set refreshed", "path", s.planPath, "sensors", len(doc.Sensors))
}

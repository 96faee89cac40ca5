package scheduler

import (
	"context"
	"time"

	"github.com/plense/plensor-gateway/internal/artifact"
	"github.com/plense/plensor-gateway/internal/protocol"
	"github.com/plense/plensor-gateway/internal/queue"
	"github.com/plense/plensor-gateway/internal/sensor"
)

// dispatch runs msg against its target sensor and applies the dispatch
// rules from spec.md §4.5: self-heal chains on failure, calibrate/test-
// measure chains on recovery success, and handing results to C7 on
// measurement success.
func (s *Scheduler) dispatch(ctx context.Context, msg queue.Message) {
	sn, ok := s.sensors[msg.Target]
	if !ok {
		s.logger.Warn("dispatch: unknown sensor", "sensor", msg.Target)
		return
	}

	switch msg.Command.Kind {
	case protocol.KindProbe:
		s.dispatchProbe(ctx, sn, msg)
	case protocol.KindCalibrate:
		s.dispatchCalibrate(ctx, sn, msg)
	case protocol.KindReset:
		outcome, err := sn.Reset(ctx, s.bus)
		s.logVerb(sn.ID, "reset", outcome, err)
	case protocol.KindSetID:
		outcome, err := sn.SetID(ctx, s.bus, msg.Command.NewID)
		s.logVerb(sn.ID, "set_id", outcome, err)
	case protocol.KindSetDamping:
		outcome, err := sn.SetDamping(ctx, s.bus, msg.Command.Params.Damping)
		s.logVerb(sn.ID, "set_damping", outcome, err)
	case protocol.KindMeasureBlock:
		s.dispatchAudio(ctx, sn, msg, sn.MeasureBlock, artifact.AudioBlock)
	case protocol.KindMeasureSine:
		s.dispatchAudio(ctx, sn, msg, sn.MeasureSine, artifact.AudioSine)
	case protocol.KindMeasureEnv:
		s.dispatchEnv(ctx, sn, msg)
	case protocol.KindMeasureTofImpulse:
		s.dispatchTof(ctx, sn, msg, sn.MeasureTofImpulse, true)
	case protocol.KindMeasureTofBlock:
		s.dispatchTof(ctx, sn, msg, sn.MeasureTofBlock, false)
	default:
		s.logger.Warn("dispatch: unhandled command kind", "kind", msg.Command.Kind.String())
	}
}

func (s *Scheduler) dispatchProbe(ctx context.Context, sn *sensor.Sensor, msg queue.Message) {
	outcome, err := sn.Probe(ctx, s.bus)
	s.logVerb(sn.ID, "probe", outcome, err)
	if err != nil {
		return
	}
	if outcome == sensor.VerbOK {
		sn.Responsive = true
		if msg.CalibrateAfter {
			s.q.PushFront(queue.Message{
				Target:       sn.ID,
				Origin:       queue.OriginRecovery,
				Command:      protocol.Command{Kind: protocol.KindCalibrate, Target: sn.ID, Variant: sn.Variant},
				MeasureAfter: true,
			})
		}
		return
	}
	sn.Responsive = false
}

func (s *Scheduler) dispatchCalibrate(ctx context.Context, sn *sensor.Sensor, msg queue.Message) {
	outcome, err := sn.Calibrate(ctx, s.bus)
	s.logVerb(sn.ID, "calibrate", outcome, err)
	if err != nil {
		return
	}
	if outcome == sensor.VerbOK {
		if msg.MeasureAfter {
			s.q.PushFront(queue.Message{
				Target:    sn.ID,
				Origin:    queue.OriginRecovery,
				Command:   protocol.Command{Kind: protocol.KindMeasureBlock, Target: sn.ID, Variant: sn.Variant, Params: testMeasureParams},
				Ephemeral: true,
			})
		}
		return
	}
	sn.Responsive = false
}

// recoveryProbe enqueues the self-heal chain's first link after a
// measurement failure: a Probe that, on success, chains a Calibrate.
func (s *Scheduler) recoveryProbe(id protocol.SensorId, variant protocol.FirmwareVariant) {
	s.q.PushFront(queue.Message{
		Target:         id,
		Origin:         queue.OriginRecovery,
		Command:        protocol.Command{Kind: protocol.KindProbe, Target: id, Variant: variant},
		CalibrateAfter: true,
	})
}

// setDampingBeforeMeasure sets sn's damping level ahead of a block/sine/
// tof measurement, mirroring message_handler.py's handle_block_sine_msg/
// handle_tof_msg/handle_tof_block_msg, each of which calls
// set_damping_byte and only measures `if damping_success`. A failed
// set-damping skips the paired measurement outright.
func (s *Scheduler) setDampingBeforeMeasure(ctx context.Context, sn *sensor.Sensor, level int) bool {
	outcome, err := sn.SetDamping(ctx, s.bus, level)
	s.logVerb(sn.ID, "set_damping", outcome, err)
	return err == nil && outcome == sensor.VerbOK
}

type audioVerb func(ctx context.Context, bus sensor.Bus, p protocol.Params) (sensor.AudioResult, error)

func (s *Scheduler) dispatchAudio(ctx context.Context, sn *sensor.Sensor, msg queue.Message, verb audioVerb, cmdTag artifact.AudioCommand) {
	if !s.setDampingBeforeMeasure(ctx, sn, msg.Command.Params.Damping) {
		s.logger.Warn("measurement skipped: set-damping failed", "sensor", sn.ID)
		return
	}
	res, err := verb(ctx, s.bus, msg.Command.Params)
	if err != nil {
		s.logger.Error("measure failed", "sensor", sn.ID, "err", err)
		return
	}
	if res.Status == sensor.MeasureFailed || res.Status == sensor.MeasurePartial {
		s.logger.Warn("measurement degraded", "sensor", sn.ID, "status", res.Status.String())
		if msg.Origin != queue.OriginRecovery {
			s.recoveryProbe(sn.ID, sn.Variant)
		}
	}
	if res.Status == sensor.MeasureFailed {
		return
	}
	// synthetic post-calibrate test measurements are never persisted.
	if msg.Ephemeral {
		return
	}
	meta := artifact.AudioMeta{
		Command:     cmdTag,
		StartFreqHz: msg.Command.Params.StartFreqHz,
		StopFreqHz:  msg.Command.Params.StopFreqHz,
		Damping:     sn.Damping,
		DurationUS:  msg.Command.Params.DurationUS,
		Repetitions: msg.Command.Params.Repetitions,
		SensorID:    sn.ID,
		Timestamp:   time.Now(),
	}
	name, err := s.artifacts.WriteAudio(meta, res)
	if err != nil {
		s.logger.Error("write audio artifact failed", "sensor", sn.ID, "err", err)
		return
	}
	s.consumer.ConsumeAudio(meta, res, name)
}

func (s *Scheduler) dispatchEnv(ctx context.Context, sn *sensor.Sensor, msg queue.Message) {
	res, err := sn.MeasureEnv(ctx, s.bus)
	if err != nil {
		s.logger.Error("measure_env bad payload", "sensor", sn.ID, "err", err)
		if msg.Origin != queue.OriginRecovery {
			s.recoveryProbe(sn.ID, sn.Variant)
		}
		return
	}
	if res.Status != sensor.MeasureOK {
		s.logger.Warn("measure_env failed", "sensor", sn.ID)
		if msg.Origin != queue.OriginRecovery {
			s.recoveryProbe(sn.ID, sn.Variant)
		}
		return
	}
	ts := time.Now()
	name, err := s.artifacts.WriteEnv(sn.ID, ts, res.Reading, s.currentDoc().Metadata)
	if err != nil {
		s.logger.Error("write env artifact failed", "sensor", sn.ID, "err", err)
		return
	}
	s.consumer.ConsumeEnv(sn.ID, ts, res.Reading, name)
}

type tofVerb func(ctx context.Context, bus sensor.Bus, p protocol.Params) (sensor.TofResult, error)

func (s *Scheduler) dispatchTof(ctx context.Context, sn *sensor.Sensor, msg queue.Message, verb tofVerb, impulse bool) {
	p := msg.Command.Params
	if !s.setDampingBeforeMeasure(ctx, sn, p.Damping) {
		s.logger.Warn("tof measurement skipped: set-damping failed", "sensor", sn.ID)
		return
	}
	res, err := verb(ctx, s.bus, p)
	if err != nil {
		s.logger.Error("tof measure failed", "sensor", sn.ID, "err", err)
		return
	}
	if res.Status != sensor.MeasureOK {
		s.logger.Warn("tof measurement degraded", "sensor", sn.ID, "status", res.Status.String())
		if msg.Origin != queue.OriginRecovery {
			s.recoveryProbe(sn.ID, sn.Variant)
		}
		if res.Status == sensor.MeasureFailed {
			return
		}
	}
	ts := time.Now()
	var name string
	meta := s.currentDoc().Metadata
	if impulse {
		name, err = s.artifacts.WriteTofImpulse(p.Repetitions, sn.ID, ts, res.NS, meta)
	} else {
		name, err = s.artifacts.WriteTofBlock(p.HalfPeriods, p.Repetitions, sn.Damping, sn.ID, ts, res.NS, meta)
	}
	if err != nil {
		s.logger.Error("write tof artifact failed", "sensor", sn.ID, "err", err)
		return
	}
	s.consumer.ConsumeTof(sn.ID, ts, res.NS, name)
}

func (s *Scheduler) logVerb(id protocol.SensorId, verb string, outcome sensor.VerbOutcome, err error) {
	if err != nil {
		s.logger.Error(verb, "sensor", id, "err", err)
		return
	}
	s.logger.Info(verb, "sensor", id, "outcome", outcome.String())
}

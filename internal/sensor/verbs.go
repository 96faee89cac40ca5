package sensor

import (
	"context"
	"errors"
	"time"

	"github.com/plense/plensor-gateway/internal/protocol"
)

// measureRetryBudget is the number of extra attempts a whole measurement
// batch gets (not per repetition) before giving up. See DESIGN.md's Open
// Question decision: this is preserved from the original implementation's
// per-batch retry policy, not reinterpreted as per-repetition.
const measureRetryBudget = 3

// exchange encodes cmd, performs one bus exchange, and classifies the
// result. A malformed frame or an empty reply are both reported as
// ErrNoResponse, matching the error taxonomy where both are retried
// identically.
func (s *Sensor) exchange(ctx context.Context, bus Bus, cmd protocol.Command, timeout time.Duration) (protocol.AckKind, []byte, error) {
	payload, err := protocol.EncodePayload(cmd)
	if err != nil {
		return 0, nil, err
	}
	wire := protocol.Encode(cmd.Target, payload)
	resp, err := bus.Exchange(ctx, wire, timeout)
	if err != nil {
		return 0, nil, err
	}
	if len(resp) == 0 {
		return 0, nil, ErrNoResponse
	}
	frame, err := protocol.Decode(resp)
	if err != nil {
		return 0, nil, ErrNoResponse
	}
	ack, data, err := protocol.DecodeResponse(frame.Payload)
	if err != nil {
		return 0, nil, ErrNoResponse
	}
	return ack, data, nil
}

// verbOutcome maps an exchange's result to the simple three-way outcome
// the non-measurement verbs report.
func verbOutcome(ack protocol.AckKind, err error) (VerbOutcome, error) {
	if err != nil {
		if errors.Is(err, ErrNoResponse) {
			return VerbNoResponse, nil
		}
		return VerbNoResponse, err
	}
	if ack == protocol.Nak {
		return VerbNak, nil
	}
	return VerbOK, nil
}

// Probe issues a get-id command. Timeout 1s.
func (s *Sensor) Probe(ctx context.Context, bus Bus) (VerbOutcome, error) {
	cmd := protocol.Command{Kind: protocol.KindProbe, Target: s.ID, Variant: s.Variant}
	ack, _, err := s.exchange(ctx, bus, cmd, time.Second)
	return verbOutcome(ack, err)
}

// Calibrate issues a calibrate command. Timeout 15s: calibration sweeps
// take far longer than any other verb.
func (s *Sensor) Calibrate(ctx context.Context, bus Bus) (VerbOutcome, error) {
	cmd := protocol.Command{Kind: protocol.KindCalibrate, Target: s.ID, Variant: s.Variant}
	ack, _, err := s.exchange(ctx, bus, cmd, 15*time.Second)
	return verbOutcome(ack, err)
}

// SetDamping issues a set-damping command encoded for s.Variant. On
// success, s.Damping is updated to the clamped value actually sent —
// invariant: Damping always reflects the last value the device accepted.
// Timeout 100ms.
func (s *Sensor) SetDamping(ctx context.Context, bus Bus, level int) (VerbOutcome, error) {
	cmd := protocol.Command{
		Kind:    protocol.KindSetDamping,
		Target:  s.ID,
		Variant: s.Variant,
		Params:  protocol.Params{Damping: level},
	}
	ack, _, err := s.exchange(ctx, bus, cmd, 100*time.Millisecond)
	outcome, err := verbOutcome(ack, err)
	if err == nil && outcome == VerbOK {
		s.Damping = protocol.ClampDamping(s.Variant, level)
	}
	return outcome, err
}

// Reset issues a reset command. Timeout 1s.
func (s *Sensor) Reset(ctx context.Context, bus Bus) (VerbOutcome, error) {
	cmd := protocol.Command{Kind: protocol.KindReset, Target: s.ID, Variant: s.Variant}
	ack, _, err := s.exchange(ctx, bus, cmd, time.Second)
	return verbOutcome(ack, err)
}

// SetID issues a set-id command addressed to the broadcast id, used only
// from provisioning flows on an unconfigured device.
func (s *Sensor) SetID(ctx context.Context, bus Bus, newID protocol.SensorId) (VerbOutcome, error) {
	cmd := protocol.Command{Kind: protocol.KindSetID, Target: protocol.Broadcast, NewID: newID, Variant: s.Variant}
	ack, _, err := s.exchange(ctx, bus, cmd, time.Second)
	return verbOutcome(ack, err)
}

// MeasureEnv issues a measure-env command and decodes its 8-byte reply.
// Timeout 1s.
func (s *Sensor) MeasureEnv(ctx context.Context, bus Bus) (EnvResult, error) {
	cmd := protocol.Command{Kind: protocol.KindMeasureEnv, Target: s.ID, Variant: s.Variant}
	ack, data, err := s.exchange(ctx, bus, cmd, time.Second)
	if err != nil {
		if errors.Is(err, ErrNoResponse) {
			return EnvResult{Status: MeasureFailed}, nil
		}
		return EnvResult{}, err
	}
	if ack == protocol.Nak {
		return EnvResult{Status: MeasureFailed}, nil
	}
	reading, err := protocol.DecodeEnv(data)
	if err != nil {
		return EnvResult{Status: MeasureFailed}, ErrBadPayload
	}
	return EnvResult{Status: MeasureOK, Reading: reading}, nil
}

// MeasureBlock issues p.Repetitions block-wave measurements and
// aggregates their samples. See measureAudio for the retry policy.
func (s *Sensor) MeasureBlock(ctx context.Context, bus Bus, p protocol.Params) (AudioResult, error) {
	return s.measureAudio(ctx, bus, protocol.KindMeasureBlock, p)
}

// MeasureSine issues p.Repetitions sine-wave measurements and aggregates
// their samples. See measureAudio for the retry policy.
func (s *Sensor) MeasureSine(ctx context.Context, bus Bus, p protocol.Params) (AudioResult, error) {
	return s.measureAudio(ctx, bus, protocol.KindMeasureSine, p)
}

// measureAudio repeats p.Repetitions times, each with a
// 1.2*duration_us timeout. A repetition that fails (NAK, no response, or
// a malformed audio payload) consumes one of measureRetryBudget retries
// shared across the whole batch; exceeding the budget returns whatever
// samples were collected as Partial, or Failed if none were collected.
func (s *Sensor) measureAudio(ctx context.Context, bus Bus, kind protocol.Kind, p protocol.Params) (AudioResult, error) {
	perRepTimeout := time.Duration(float64(p.DurationUS)*1.2) * time.Microsecond
	var samples []int16
	retriesLeft := measureRetryBudget
	reps := p.Repetitions
	completed := 0
	for completed < reps {
		cmd := protocol.Command{Kind: kind, Target: s.ID, Variant: s.Variant, Params: p}
		ack, data, err := s.exchange(ctx, bus, cmd, perRepTimeout)
		ok := err == nil && ack == protocol.Ack
		var repSamples []int16
		if ok {
			repSamples, err = protocol.DecodeAudio(data)
			ok = err == nil
		}
		if ok {
			samples = append(samples, repSamples...)
			completed++
			continue
		}
		if retriesLeft == 0 {
			break
		}
		retriesLeft--
	}
	status := MeasureOK
	switch {
	case completed == 0:
		status = MeasureFailed
	case completed < reps:
		status = MeasurePartial
	}
	return AudioResult{Status: status, Samples: samples, RateHz: AudioRateHz}, nil
}

// MeasureTofImpulse issues p.Repetitions tof-impulse measurements. See
// measureTof for the retry policy.
func (s *Sensor) MeasureTofImpulse(ctx context.Context, bus Bus, p protocol.Params) (TofResult, error) {
	return s.measureTof(ctx, bus, protocol.KindMeasureTofImpulse, p)
}

// MeasureTofBlock issues p.Repetitions tof-block measurements. See
// measureTof for the retry policy.
func (s *Sensor) MeasureTofBlock(ctx context.Context, bus Bus, p protocol.Params) (TofResult, error) {
	return s.measureTof(ctx, bus, protocol.KindMeasureTofBlock, p)
}

// measureTof mirrors measureAudio's per-batch retry policy, with a
// per-repetition timeout of 2*timeout_us.
func (s *Sensor) measureTof(ctx context.Context, bus Bus, kind protocol.Kind, p protocol.Params) (TofResult, error) {
	perRepTimeout := 2 * time.Duration(p.TimeoutUS) * time.Microsecond
	var values []uint32
	retriesLeft := measureRetryBudget
	reps := p.Repetitions
	for rep := 0; rep < reps; {
		cmd := protocol.Command{Kind: kind, Target: s.ID, Variant: s.Variant, Params: p}
		ack, data, err := s.exchange(ctx, bus, cmd, perRepTimeout)
		ok := err == nil && ack == protocol.Ack
		var ns uint32
		if ok {
			ns, err = protocol.DecodeTOF(data)
			ok = err == nil
		}
		if ok {
			values = append(values, ns)
			rep++
			continue
		}
		if retriesLeft == 0 {
			break
		}
		retriesLeft--
	}
	status := MeasureOK
	if len(values) == 0 {
		status = MeasureFailed
	} else if len(values) < reps {
		status = MeasurePartial
	}
	return TofResult{Status: status, NS: values}, nil
}

package client

import "lagcomp/pkg/core"

// InputLog is the ordered, append-only record of pointer samples that the
// server has not acknowledged yet. Samples are never mutated once appended;
// the reconciler only trims from the front.
type InputLog struct {
	samples []core.InputSample
	nextSeq uint32
	dropped int
}

func NewInputLog() *InputLog {
	return &InputLog{samples: make([]core.InputSample, 0, 64)}
}

// Append assigns the next sequence number and records the sample.
func (l *InputLog) Append(x, y, sensitivity float64) core.InputSample {
	l.nextSeq++
	s := core.InputSample{
		Sequence:    l.nextSeq,
		PointerX:    x,
		PointerY:    y,
		Sensitivity: sensitivity,
	}
	l.samples = append(l.samples, s)
	if len(l.samples) > MaxInputLog {
		// the server has stopped acknowledging; keep the newest window
		n := len(l.samples) - MaxInputLog
		l.samples = append(l.samples[:0], l.samples[n:]...)
		l.dropped += n
	}
	return s
}

// Latest returns the most recent sample.
func (l *InputLog) Latest() (core.InputSample, bool) {
	if len(l.samples) == 0 {
		return core.InputSample{}, false
	}
	return l.samples[len(l.samples)-1], true
}

// LastSequence is the highest sequence number handed out so far.
func (l *InputLog) LastSequence() uint32 { return l.nextSeq }

func (l *InputLog) Len() int { return len(l.samples) }

// Dropped counts samples discarded because the log hit MaxInputLog.
func (l *InputLog) Dropped() int { return l.dropped }

// Samples returns a copy of the pending samples in ascending sequence order.
func (l *InputLog) Samples() []core.InputSample {
	out := make([]core.InputSample, len(l.samples))
	copy(out, l.samples)
	return out
}

// TrimBefore drops every sample with a sequence number below seq and
// reports how many were removed.
func (l *InputLog) TrimBefore(seq uint32) int {
	i := 0
	for i < len(l.samples) && l.samples[i].Sequence < seq {
		i++
	}
	if i == 0 {
		return 0
	}
	l.samples = append(l.samples[:0], l.samples[i:]...)
	return i
}

// Sampler turns pointer callbacks into sequenced samples and predicts each
// one locally the instant it is taken.
type Sampler struct {
	log         *InputLog
	predictor   *Predictor
	sensitivity float64
}

func NewSampler(log *InputLog, predictor *Predictor, sensitivity float64) *Sampler {
	if sensitivity <= 0 {
		sensitivity = core.DefaultSensitivity
	}
	return &Sampler{log: log, predictor: predictor, sensitivity: sensitivity}
}

// Sample records an absolute pointer position and returns the new sample.
func (s *Sampler) Sample(x, y float64) core.InputSample {
	sample := s.log.Append(x, y, s.sensitivity)
	s.predictor.Apply(sample)
	return sample
}

func (s *Sampler) Sensitivity() float64 { return s.sensitivity }

func (s *Sampler) SetSensitivity(v float64) {
	if v > 0 {
		s.sensitivity = v
	}
}

package generate

// phase is the position of the generation loop in its state machine.
type phase uint8

const (
	phaseWarmup phase = iota
	phaseRecording
	phaseDone
)

func (p phase) String() string {
	switch p {
	case phaseWarmup:
		return "warmup"
	case phaseRecording:
		return "recording"
	case phaseDone:
		return "done"
	default:
		return "unknown"
	}
}

// state is the full state of one generation call: the step index and the buffer.
// The result only accumulates values produced while recording.
type state struct {
	step       int
	windowSize int
	length     int
	phase      phase
	buffer     []float64
	result     []float64
}

func newState(buffer []float64, length int) *state {
	s := &state{
		windowSize: len(buffer),
		length:     length,
		buffer:     buffer,
		result:     make([]float64, 0, length),
	}
	s.phase = s.phaseAt(0)

	return s
}

// phaseAt returns the phase of the given step.
func (s *state) phaseAt(step int) phase {
	switch {
	case step >= s.length+s.windowSize:
		return phaseDone
	case step >= s.windowSize:
		return phaseRecording
	default:
		return phaseWarmup
	}
}

// advance shifts value into the buffer, records it when the current step is recording,
// and moves to the next step.
func (s *state) advance(value float64) {
	copy(s.buffer, s.buffer[1:])
	s.buffer[len(s.buffer)-1] = value

	if s.phase == phaseRecording {
		s.result = append(s.result, value)
	}

	s.step++
	s.phase = s.phaseAt(s.step)
}

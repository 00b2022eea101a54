package symbol

import (
	"fmt"
	"math"
	"strconv"
	"strings"

	"github.com/arloliu/sarada/errs"
)

const (
	durationSeparator = ":"
	restToken         = "rest"
)

func isRestToken(s string) bool {
	return strings.EqualFold(s, restToken) || strings.EqualFold(s, "r")
}

// String returns the text form of s: "C4", "C4:1.5", "C4.E4.G4:0.5", "rest:1".
func (s Symbol) String() string {
	var head string
	switch s.kind {
	case KindNote, KindChord:
		head = s.pitch
	case KindRest:
		head = restToken
	default:
		return fmt.Sprintf("<invalid kind %d>", s.kind)
	}

	if s.duration == 0 {
		return head
	}

	return head + durationSeparator + strconv.FormatFloat(s.duration, 'g', -1, 64)
}

// Parse reads the text form of a single symbol.
//
// The token is "<head>[:<duration>]" where head is a pitch, several pitches joined with
// PitchSeparator, or "rest" / "r". Parse(s.String()) == s for every valid s.
func Parse(token string) (Symbol, error) {
	head, durText, hasDur := strings.Cut(strings.TrimSpace(token), durationSeparator)

	var duration float64
	if hasDur {
		d, err := strconv.ParseFloat(durText, 64)
		if err != nil {
			return Symbol{}, fmt.Errorf("%w: duration of %q: %v", errs.ErrInvalidSymbol, token, err)
		}
		if math.IsNaN(d) || math.IsInf(d, 0) || d < 0 {
			return Symbol{}, fmt.Errorf("%w: duration of %q must be a finite non-negative number", errs.ErrInvalidSymbol, token)
		}
		duration = d
	}

	var s Symbol
	switch {
	case head == "":
		return Symbol{}, fmt.Errorf("%w: empty token %q", errs.ErrInvalidSymbol, token)
	case isRestToken(head):
		s = Rest(duration)
	case strings.Contains(head, PitchSeparator):
		s = Chord(strings.Split(head, PitchSeparator), duration)
	default:
		s = Note(head, duration)
	}

	if err := s.Validate(); err != nil {
		return Symbol{}, err
	}

	return s, nil
}

// MustParse is like Parse but panics on error. Intended for tests and literals.
func MustParse(token string) Symbol {
	s, err := Parse(token)
	if err != nil {
		panic(err)
	}

	return s
}

// ParseSequence parses whitespace-separated tokens into a sequence.
func ParseSequence(line string) ([]Symbol, error) {
	fields := strings.Fields(line)
	seq := make([]Symbol, 0, len(fields))
	for _, f := range fields {
		s, err := Parse(f)
		if err != nil {
			return nil, err
		}
		seq = append(seq, s)
	}

	return seq, nil
}

// MarshalText implements encoding.TextMarshaler.
func (s Symbol) MarshalText() ([]byte, error) {
	if err := s.Validate(); err != nil {
		return nil, err
	}

	return []byte(s.String()), nil
}

// UnmarshalText implements encoding.TextUnmarshaler.
func (s *Symbol) UnmarshalText(text []byte) error {
	parsed, err := Parse(string(text))
	if err != nil {
		return err
	}
	*s = parsed

	return nil
}

// Package symbol defines the musical event token consumed by the codec.
//
// A Symbol is a closed tagged variant: a note (one pitch), a chord (several pitches) or
// a rest, each optionally carrying a duration in quarter lengths. Symbols are plain
// comparable values and can be used as map keys, which is all the codec requires.
//
// Conversion between Symbol and the outside world happens here and only here: the text
// form used by corpus files (Parse / String) and the binary form used by snapshots
// (AppendBinary / ReadBinary).
package symbol

import (
	"fmt"
	"math"
	"strings"

	"github.com/arloliu/sarada/errs"
)

// Kind identifies the variant held by a Symbol.
type Kind uint8

const (
	KindNote  Kind = 0x1
	KindChord Kind = 0x2
	KindRest  Kind = 0x3
)

// PitchSeparator joins the pitches of a chord in both the text form and Pitch().
const PitchSeparator = "."

func (k Kind) String() string {
	switch k {
	case KindNote:
		return "note"
	case KindChord:
		return "chord"
	case KindRest:
		return "rest"
	default:
		return "unknown"
	}
}

// Symbol is one musical event. The zero value is invalid.
type Symbol struct {
	kind     Kind
	pitch    string
	duration float64
}

// Note creates a single-pitch symbol. A zero duration means "unspecified".
func Note(pitch string, duration float64) Symbol {
	return Symbol{kind: KindNote, pitch: pitch, duration: canonicalDuration(duration)}
}

// Chord creates a symbol holding several pitches, kept in the given order.
func Chord(pitches []string, duration float64) Symbol {
	return Symbol{kind: KindChord, pitch: strings.Join(pitches, PitchSeparator), duration: canonicalDuration(duration)}
}

// Rest creates a silent symbol.
func Rest(duration float64) Symbol {
	return Symbol{kind: KindRest, duration: canonicalDuration(duration)}
}

// canonicalDuration folds -0 into +0. Both compare equal as map keys but differ in
// their binary form, which would split one symbol into two fingerprints.
func canonicalDuration(d float64) float64 {
	if d == 0 {
		return 0
	}

	return d
}

// Kind returns the variant of s.
func (s Symbol) Kind() Kind {
	return s.kind
}

// Pitch returns the pitch of a note, the separator-joined pitches of a chord, or "" for a rest.
func (s Symbol) Pitch() string {
	return s.pitch
}

// Pitches returns the individual pitches of s. A rest has none.
func (s Symbol) Pitches() []string {
	switch s.kind {
	case KindNote:
		return []string{s.pitch}
	case KindChord:
		return strings.Split(s.pitch, PitchSeparator)
	default:
		return nil
	}
}

// Duration returns the duration in quarter lengths; 0 means unspecified.
func (s Symbol) Duration() float64 {
	return s.duration
}

// Validate reports whether s can be written and read back unchanged.
func (s Symbol) Validate() error {
	if math.IsNaN(s.duration) || math.IsInf(s.duration, 0) || s.duration < 0 {
		return fmt.Errorf("%w: duration %v must be a finite non-negative number", errs.ErrInvalidSymbol, s.duration)
	}

	switch s.kind {
	case KindNote:
		if strings.Contains(s.pitch, PitchSeparator) {
			return fmt.Errorf("%w: note pitch %q contains %q", errs.ErrInvalidSymbol, s.pitch, PitchSeparator)
		}

		return validatePitch(s.pitch)
	case KindChord:
		pitches := strings.Split(s.pitch, PitchSeparator)
		if len(pitches) < 2 {
			return fmt.Errorf("%w: chord %q needs at least two pitches", errs.ErrInvalidSymbol, s.pitch)
		}
		for _, p := range pitches {
			if err := validatePitch(p); err != nil {
				return fmt.Errorf("chord %q: %w", s.pitch, err)
			}
		}

		return nil
	case KindRest:
		if s.pitch != "" {
			return fmt.Errorf("%w: rest carries pitch %q", errs.ErrInvalidSymbol, s.pitch)
		}

		return nil
	default:
		return fmt.Errorf("%w: unknown kind %d", errs.ErrInvalidSymbol, s.kind)
	}
}

func validatePitch(p string) error {
	if p == "" {
		return fmt.Errorf("%w: empty pitch", errs.ErrInvalidSymbol)
	}
	if isRestToken(p) {
		return fmt.Errorf("%w: pitch %q is reserved for rests", errs.ErrInvalidSymbol, p)
	}
	if strings.ContainsAny(p, " \t\r\n"+durationSeparator) {
		return fmt.Errorf("%w: pitch %q contains whitespace or %q", errs.ErrInvalidSymbol, p, durationSeparator)
	}

	return nil
}

// Package corpus reads symbol sequences from text files and writes generated
// sequences back in the same form.
//
// The text form holds one sequence (a voice) per line as whitespace-separated symbol
// tokens (see symbol.Parse). Blank lines and lines starting with '#' are ignored.
// Input is normalized to Unicode NFC first, so composed and decomposed spellings of
// the same pitch name produce the same symbol.
package corpus

import (
	"bufio"
	"fmt"
	"io"
	"strings"

	"golang.org/x/text/unicode/norm"

	"github.com/arloliu/sarada/symbol"
)

const (
	commentPrefix = "#"
	maxLineSize   = 16 * 1024 * 1024
)

// Parse reads every sequence of a text stream.
//
// Returns:
//   - [][]symbol.Symbol: One sequence per non-empty, non-comment line
//   - error: ErrInvalidSymbol (wrapped with the line number) or the read error
func Parse(r io.Reader) ([][]symbol.Symbol, error) {
	scanner := bufio.NewScanner(norm.NFC.Reader(r))
	scanner.Buffer(make([]byte, 0, 64*1024), maxLineSize)

	var sequences [][]symbol.Symbol
	line := 0
	for scanner.Scan() {
		line++

		text := strings.TrimSpace(scanner.Text())
		if text == "" || strings.HasPrefix(text, commentPrefix) {
			continue
		}

		seq, err := symbol.ParseSequence(text)
		if err != nil {
			return nil, fmt.Errorf("line %d: %w", line, err)
		}
		sequences = append(sequences, seq)
	}
	if err := scanner.Err(); err != nil {
		return nil, fmt.Errorf("read corpus: %w", err)
	}

	return sequences, nil
}

// Write renders seq as a single line of tokens.
//
// Every symbol is validated first, so whatever Write produces Parse reads back.
func Write(w io.Writer, seq []symbol.Symbol) error {
	var sb strings.Builder
	for i, s := range seq {
		text, err := s.MarshalText()
		if err != nil {
			return fmt.Errorf("position %d: %w", i, err)
		}
		if i > 0 {
			sb.WriteByte(' ')
		}
		sb.Write(text)
	}
	sb.WriteByte('\n')

	_, err := io.WriteString(w, sb.String())

	return err
}

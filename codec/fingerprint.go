package codec

import (
	"encoding"
	"fmt"
	"reflect"

	"github.com/arloliu/sarada/internal/hash"
)

// defaultFingerprinter picks the byte form of T used for fingerprinting: its binary
// form when T implements encoding.BinaryAppender, the raw string for string kinds,
// and the fmt %v rendering otherwise.
func defaultFingerprinter[T comparable]() func(dst []byte, s T) []byte {
	var zero T
	if _, ok := any(zero).(encoding.BinaryAppender); ok {
		return func(dst []byte, s T) []byte {
			out, err := any(s).(encoding.BinaryAppender).AppendBinary(dst)
			if err != nil {
				return fmt.Appendf(dst, "%v", s)
			}

			return out
		}
	}

	if reflect.TypeFor[T]().Kind() == reflect.String {
		return func(dst []byte, s T) []byte {
			return append(dst, reflect.ValueOf(s).String()...)
		}
	}

	return func(dst []byte, s T) []byte {
		return fmt.Appendf(dst, "%v", s)
	}
}

// fingerprintCorpus hashes the corpus traversal: sequence boundaries and symbol bytes.
func fingerprintCorpus[T comparable](corpus [][]T, appendSymbol func([]byte, T) []byte) uint64 {
	fp := hash.NewFingerprint()

	var scratch []byte
	for _, seq := range corpus {
		fp.BeginSequence(len(seq))
		for _, s := range seq {
			scratch = appendSymbol(scratch[:0], s)
			fp.WriteSymbol(scratch)
		}
	}

	return fp.Sum64()
}

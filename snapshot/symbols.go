package snapshot

import (
	"github.com/arloliu/sarada/internal/varint"
	"github.com/arloliu/sarada/symbol"
)

// SymbolCodec writes and reads the symbols of a snapshot's symbol table.
//
// Read reports the number of bytes it consumed so the table can be walked without
// per-symbol length prefixes.
type SymbolCodec[T comparable] interface {
	Append(dst []byte, s T) ([]byte, error)
	Read(src []byte) (T, int, error)
}

// StringSymbols stores string symbols as length-prefixed UTF-8.
type StringSymbols struct{}

var _ SymbolCodec[string] = StringSymbols{}

// Append implements SymbolCodec.
func (StringSymbols) Append(dst []byte, s string) ([]byte, error) {
	return varint.AppendString(dst, s), nil
}

// Read implements SymbolCodec.
func (StringSymbols) Read(src []byte) (string, int, error) {
	return varint.ReadString(src)
}

// MusicalSymbols stores symbol.Symbol values in their binary form.
type MusicalSymbols struct{}

var _ SymbolCodec[symbol.Symbol] = MusicalSymbols{}

// Append implements SymbolCodec.
func (MusicalSymbols) Append(dst []byte, s symbol.Symbol) ([]byte, error) {
	return s.AppendBinary(dst)
}

// Read implements SymbolCodec.
func (MusicalSymbols) Read(src []byte) (symbol.Symbol, int, error) {
	return symbol.ReadBinary(src)
}

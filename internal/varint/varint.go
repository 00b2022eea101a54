// Package varint provides the length-prefixed primitives shared by the snapshot,
// model and symbol binary forms.
//
// Strings are encoded as [length:uvarint][bytes:UTF-8]. Every reader reports the number
// of bytes consumed so callers can walk a payload without intermediate allocations.
package varint

import (
	"encoding/binary"
	"fmt"

	"github.com/arloliu/sarada/errs"
)

// AppendString appends s with a uvarint length prefix.
func AppendString(dst []byte, s string) []byte {
	dst = binary.AppendUvarint(dst, uint64(len(s)))
	return append(dst, s...)
}

// ReadUvarint decodes a uvarint from the start of src.
//
// Returns:
//   - uint64: The decoded value
//   - int: Number of bytes consumed
//   - error: ErrInvalidPayload if src is truncated or the value overflows 64 bits
func ReadUvarint(src []byte) (uint64, int, error) {
	v, n := binary.Uvarint(src)
	if n == 0 {
		return 0, 0, fmt.Errorf("%w: truncated uvarint (have %d bytes)", errs.ErrInvalidPayload, len(src))
	}
	if n < 0 {
		return 0, 0, fmt.Errorf("%w: uvarint overflows 64 bits", errs.ErrInvalidPayload)
	}

	return v, n, nil
}

// ReadInt decodes a uvarint that must fit into [0, limit].
func ReadInt(src []byte, limit int) (int, int, error) {
	v, n, err := ReadUvarint(src)
	if err != nil {
		return 0, 0, err
	}
	if v > uint64(limit) { //nolint:gosec
		return 0, 0, fmt.Errorf("%w: value %d exceeds limit %d", errs.ErrInvalidPayload, v, limit)
	}

	return int(v), n, nil //nolint:gosec
}

// ReadString decodes a length-prefixed string from the start of src.
//
// Returns:
//   - string: The decoded string (a copy of the underlying bytes)
//   - int: Number of bytes consumed including the prefix
//   - error: ErrInvalidPayload if the prefix or the string bytes are truncated
func ReadString(src []byte) (string, int, error) {
	length, n, err := ReadInt(src, len(src))
	if err != nil {
		return "", 0, err
	}
	if len(src) < n+length {
		return "", 0, fmt.Errorf("%w: string needs %d bytes at offset %d, have %d total",
			errs.ErrInvalidPayload, length, n, len(src))
	}

	return string(src[n : n+length]), n + length, nil
}

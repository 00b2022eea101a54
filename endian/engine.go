// Package endian provides the byte order engine used by sarada's binary headers.
//
// EndianEngine combines binary.ByteOrder and binary.AppendByteOrder so header code can
// both patch fixed offsets and append fields with a single value. Snapshots and model
// files record which engine wrote them in a header flag.
//
// All functions and engines in this package are safe for concurrent use.
package endian

import "encoding/binary"

// EndianEngine combines ByteOrder and AppendByteOrder from encoding/binary.
//
// It is satisfied by binary.LittleEndian and binary.BigEndian.
type EndianEngine interface {
	binary.ByteOrder
	binary.AppendByteOrder
}

// GetLittleEndianEngine returns the little-endian engine, the default for sarada files.
func GetLittleEndianEngine() EndianEngine {
	return binary.LittleEndian
}

// GetBigEndianEngine returns the big-endian engine.
func GetBigEndianEngine() EndianEngine {
	return binary.BigEndian
}

// EngineFor returns the big-endian engine when bigEndian is set, little-endian otherwise.
func EngineFor(bigEndian bool) EndianEngine {
	if bigEndian {
		return binary.BigEndian
	}

	return binary.LittleEndian
}

// IsBigEndian reports whether engine writes the most significant byte first.
func IsBigEndian(engine EndianEngine) bool {
	return engine == binary.BigEndian
}

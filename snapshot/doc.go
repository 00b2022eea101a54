// Package snapshot persists a corpus, and with it the exact Codec built from it,
// across process runs.
//
// Ids only mean something relative to the Codec that assigned them, so a model fitted
// in one process can only be driven in another if the same Codec is rebuilt there.
// A snapshot stores the symbol table and the corpus as ids; Decode rebuilds the Codec
// with codec.Build and verifies that it reproduces the stored symbol table and corpus
// fingerprint.
//
// # Layout
//
//	┌──────────────────────────── Header (32 bytes) ─────────────────────────────┐
//	│ magic u16 │ flags u8 │ compression u8 │ symbols u32 │ sequences u32 │      │
//	│ window u32 │ fingerprint u64 │ payload length u32 │ reserved u32          │
//	└────────────────────────────────────────────────────────────────────────────┘
//	┌──────────────────────── Payload (optionally compressed) ───────────────────┐
//	│ symbol table: SymbolCodec encoding of every symbol in id order            │
//	│ sequences:    uvarint length, then one uvarint id per symbol              │
//	└────────────────────────────────────────────────────────────────────────────┘
//
// The magic number is little-endian; the remaining header fields follow the
// endianness flag. Payload integers are uvarints and carry no byte order.
package snapshot

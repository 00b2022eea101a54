// Package errs defines the sentinel errors returned across sarada.
//
// Call sites wrap these values with context (the offending value, the expected and
// actual shapes) using fmt.Errorf and the %w verb, so callers match them with errors.Is.
// None of them describe transient conditions: they signal configuration or data
// mismatches and are never retried internally.
package errs

import "errors"

// Dataset and configuration errors.
var (
	// ErrEmptyDataset is returned when a corpus contains no symbols at all.
	ErrEmptyDataset = errors.New("dataset contains no symbols")
	// ErrInvalidConfig is returned for invalid parameters such as a non-positive window size.
	ErrInvalidConfig = errors.New("invalid configuration")
)

// Codec errors.
var (
	// ErrUnknownSymbol is returned when a symbol was never observed while building the codec.
	ErrUnknownSymbol = errors.New("unknown symbol")
	// ErrDecode is returned when a value or vector resolves to an id outside the codec.
	ErrDecode = errors.New("decode failed")
	// ErrInvalidSymbol is returned when a symbol or its text form is malformed.
	ErrInvalidSymbol = errors.New("invalid symbol")
)

// Generation errors.
var (
	// ErrModelShapeMismatch is returned when a model's declared shapes disagree with the codec.
	ErrModelShapeMismatch = errors.New("model shape mismatch")
	// ErrModelNotFitted is returned when a model is queried before it has seen any data.
	ErrModelNotFitted = errors.New("model not fitted")
)

// Snapshot errors.
var (
	ErrInvalidHeaderSize   = errors.New("invalid header size")
	ErrInvalidMagicNumber  = errors.New("invalid magic number")
	ErrInvalidHeaderFlags  = errors.New("invalid header flags")
	ErrInvalidPayload      = errors.New("invalid payload")
	ErrFingerprintMismatch = errors.New("fingerprint mismatch")
)

// Project errors.
var (
	ErrProjectExists   = errors.New("project already exists")
	ErrProjectNotFound = errors.New("project not found")
	ErrProjectLocked   = errors.New("project is locked by another process")
)

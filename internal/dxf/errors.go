package dxf

import "errors"

// ============================================================================
// DXF EXTRACTOR ERROR DEFINITIONS
// ============================================================================

var (
	// ErrInvalidCAD indicates the byte stream is not well-formed DXF
	// group-code data. Fatal, aborts the request.
	ErrInvalidCAD = errors.New("invalid or corrupted DXF file")

	// ErrEmptyFile indicates a zero-length input buffer.
	ErrEmptyFile = errors.New("empty DXF input")

	// ErrMaxBlockDepth indicates INSERT explosion recursed past the
	// configured depth limit.
	ErrMaxBlockDepth = errors.New("block reference recursion exceeded maximum depth")
)

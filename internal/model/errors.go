package model

import "errors"

// ============================================================================
// CORE ERROR TAXONOMY
// ============================================================================

var (
	// ErrInvalidCAD means the input file could not be parsed at all.
	// Fatal; aborts the request.
	ErrInvalidCAD = errors.New("invalid or corrupted CAD file")

	// ErrTimeout means a stage exceeded its cooperative deadline.
	ErrTimeout = errors.New("analysis deadline exceeded")

	// ErrCancelled means the analysis was cooperatively cancelled
	// between stage boundaries.
	ErrCancelled = errors.New("analysis cancelled")
)

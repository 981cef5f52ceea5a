// Package config defines the pipeline's tunable Options and their
// defaults.
package config

// HintUnit is a user-supplied unit hint consulted only when the DXF
// header declares a unitless drawing.
type HintUnit string

const (
	HintNone HintUnit = ""
	HintMM   HintUnit = "mm"
	HintCM   HintUnit = "cm"
	HintM    HintUnit = "m"
	HintIn   HintUnit = "in"
	HintFt   HintUnit = "ft"
)

// Options carries every tunable the analyze entry point accepts.
type Options struct {
	HintUnit            HintUnit
	SnapTolerance       float64 // meters
	MaxGap              float64 // meters
	MergeCollinear      bool
	CloseGaps           bool
	UndershootTolerance float64 // meters
	MinArea             float64 // m²
	MaxArea             float64 // m²
	MaxSegments         int
	TextMatchThreshold  float64
	SpatialSearchRadius float64 // meters
	DefaultWallHeight   float64 // meters
	UseLLMFallback      bool
	MinConfidence       float64 // semantic classifier arg-max threshold
	MaxTextDistance     float64 // meters, text associator cutoff
	FallbackRadius      float64 // meters, fallback estimator search radius
}

// Default returns the documented defaults for every option.
func Default() Options {
	return Options{
		HintUnit:            HintNone,
		SnapTolerance:       0.01,
		MaxGap:              0.05,
		MergeCollinear:      true,
		CloseGaps:           true,
		UndershootTolerance: 0.15,
		MinArea:             0.5,
		MaxArea:             1_000_000,
		MaxSegments:         200_000,
		TextMatchThreshold:  0.5,
		SpatialSearchRadius: 2.0,
		DefaultWallHeight:   2.4,
		UseLLMFallback:      false,
		MinConfidence:       0.3,
		MaxTextDistance:     5.0,
		FallbackRadius:      5.0,
	}
}

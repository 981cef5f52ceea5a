package sanity

import (
	"math"

	"github.com/arxos/boqtakeoff/internal/model"
)

// Factors is the confidence scorer's weighted-sum input: one
// normalized 0..1 signal per evidence channel.
type Factors struct {
	TextMatch         float64
	SpatialMatch      float64
	GeometryQuality   float64
	ExpectedMatch     float64
	SourceReliability float64
}

const (
	weightTextMatch     = 0.20
	weightSpatialMatch  = 0.25
	weightGeometry      = 0.20
	weightExpectedMatch = 0.25
	weightSource        = 0.10

	sanityErrorPenalty   = 0.5
	sanityWarningPenalty = 0.9

	// reviewThreshold is the soft "requires human review" band: matches
	// below it are still returned, just tagged.
	reviewThreshold = 0.5
)

// TextMatchFactor buckets a raw 0..1 text similarity score into its
// confidence contribution: exact and near-exact matches are trusted
// fully, weak matches are discounted heavily.
func TextMatchFactor(score float64) float64 {
	switch {
	case score >= 0.9:
		return 1.0
	case score >= 0.7:
		return 0.8
	case score >= 0.5:
		return 0.6
	default:
		return 0.3
	}
}

// SpatialMatchFactor maps a resolved spatial strategy to its
// confidence contribution.
func SpatialMatchFactor(strategy model.SpatialStrategy, spatialScore float64) float64 {
	switch strategy {
	case model.StrategyInsideZone:
		return 1.0
	case model.StrategyProximity:
		return 0.8
	case model.StrategyFallback:
		return 0.6
	case model.StrategyNearest:
		return math.Max(0.3, spatialScore)
	default:
		return 0.3
	}
}

// GeometryQualityFactor scores how trustworthy the region's shape is:
// base 0.5, +convexity·0.3 (area / convex-hull area), +0.2 if the
// region's area falls in a reasonable range.
func GeometryQualityFactor(region *model.Region) float64 {
	if region == nil {
		return 0
	}
	score := 0.5
	if hull := model.ConvexHullArea(region.Ring); hull > 0 {
		convexity := region.Area / hull
		if convexity > 1 {
			convexity = 1
		}
		score += convexity * 0.3
	} else {
		score += 0.1
	}
	switch {
	case region.Area >= 1 && region.Area <= 200:
		score += 0.2
	case region.Area >= 0.5 && region.Area <= 500:
		score += 0.1
	}
	if score > 1 {
		score = 1
	}
	return score
}

// ExpectedMatchFactor rewards agreement with the caller's expected
// quantity: 1.0 within ±10%, decaying as the ratio drifts further
// from 1, neutral 0.5 if no expected quantity was supplied.
func ExpectedMatchFactor(calculated float64, expected *float64) float64 {
	if expected == nil || *expected <= 0 {
		return 0.5
	}
	ratio := calculated / *expected
	switch {
	case ratio >= 0.9 && ratio <= 1.1:
		return 1.0
	case ratio >= 0.8 && ratio <= 1.2:
		return 0.9
	case ratio >= 0.7 && ratio <= 1.4:
		return 0.7
	case ratio >= 0.5 && ratio <= 2.0:
		return 0.4
	default:
		return 0.1
	}
}

// Score computes the final confidence: the weighted sum of factors,
// then a multiplicative sanity penalty — halved if match
// carries a SanityError, else 0.9 per SanityWarning (bounded at 0 by
// the final clamp).
func Score(factors Factors, match *model.Match) float64 {
	score := factors.TextMatch*weightTextMatch +
		factors.SpatialMatch*weightSpatialMatch +
		factors.GeometryQuality*weightGeometry +
		factors.ExpectedMatch*weightExpectedMatch +
		factors.SourceReliability*weightSource

	if HasError(match) {
		score *= sanityErrorPenalty
	} else if n := WarningCount(match); n > 0 {
		score *= math.Pow(sanityWarningPenalty, float64(n))
	}

	if score < 0 {
		score = 0
	}
	if score > 1 {
		score = 1
	}
	return score
}

// RequiresReview reports whether a resolved match's confidence falls
// below the soft review band, or it already carries a sanity error —
// either way it is still returned (not dropped), tagged for a human to
// double-check it.
func RequiresReview(confidence float64, match *model.Match) bool {
	if confidence < reviewThreshold {
		return true
	}
	return HasError(match)
}

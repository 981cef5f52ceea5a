// Package sanity runs a fixed battery of range/deviation checks
// against each Match and combines the evidence into a single weighted
// confidence score. Each named rule returns an optional note; the
// notes are collected onto the Match and then folded into the score
// as multiplicative penalties.
package sanity

import (
	"fmt"
	"math"

	"github.com/arxos/boqtakeoff/internal/model"
)

// unitRange is the coarse/typical bound pair for one unit family.
type unitRange struct {
	absMin, absMax         float64
	typicalMin, typicalMax float64
}

var unitRanges = map[model.UnitFamily]unitRange{
	model.UnitFamilyArea:    {0.1, 2000, 1, 500},
	model.UnitFamilyLinear:  {0.1, 1000, 0.5, 200},
	model.UnitFamilyCount:   {1, 1000, 1, 100},
	model.UnitFamilyUnknown: {0.1, 100, 1, 10},
}

// Context carries the information the rules need beyond the Match
// itself: which unit family the BOQItem resolved to, its expected
// quantity (if any), and the drawing's total area for the hatch
// false-positive check.
type Context struct {
	Unit         model.UnitFamily
	ExpectedQty  *float64
	DrawingArea  float64 // m², 0 if unknown
	ParentArea   float64 // m², 0 if no parent region to compare against
}

// Check runs every sanity rule against match and appends the
// resulting SanityNotes, mutating match.SanityNotes and
// match.Warnings in place.
func Check(match *model.Match, ctx Context) {
	qty := match.QtyCalculated

	if note := absoluteRange(qty, ctx.Unit); note != nil {
		add(match, *note)
	}
	if note := typicalRange(qty, ctx.Unit); note != nil {
		add(match, *note)
	}
	if note := expectedMatch(qty, ctx.ExpectedQty); note != nil {
		add(match, *note)
	}
	if note := hatchFalsePositive(qty, ctx.DrawingArea, match.Regions); note != nil {
		add(match, *note)
	}
	if note := regionVsParent(qty, ctx.ParentArea); note != nil {
		add(match, *note)
	}
}

func add(match *model.Match, note model.SanityNote) {
	match.SanityNotes = append(match.SanityNotes, note)
	if note.Level != model.SanityInfo {
		match.Warnings = append(match.Warnings, note.Message)
	}
}

// absoluteRange requires qty within the coarse bounds for the unit
// family, else a SanityError.
func absoluteRange(qty float64, unit model.UnitFamily) *model.SanityNote {
	r := rangeFor(unit)
	if qty < r.absMin {
		return &model.SanityNote{Rule: "absolute_range", Level: model.SanityError,
			Message: fmt.Sprintf("quantity %.2f is below the absolute minimum (%.2f)", qty, r.absMin)}
	}
	if qty > r.absMax {
		return &model.SanityNote{Rule: "absolute_range", Level: model.SanityError,
			Message: fmt.Sprintf("quantity %.2f exceeds the absolute maximum (%.2f)", qty, r.absMax)}
	}
	return nil
}

// typicalRange checks the narrower per-unit bounds: warning only.
func typicalRange(qty float64, unit model.UnitFamily) *model.SanityNote {
	r := rangeFor(unit)
	if qty < r.typicalMin {
		return &model.SanityNote{Rule: "typical_range", Level: model.SanityWarning,
			Message: fmt.Sprintf("quantity %.2f is unusually low (typical ≥ %.2f)", qty, r.typicalMin)}
	}
	if qty > r.typicalMax {
		return &model.SanityNote{Rule: "typical_range", Level: model.SanityWarning,
			Message: fmt.Sprintf("quantity %.2f is unusually high (typical ≤ %.2f)", qty, r.typicalMax)}
	}
	return nil
}

// expectedMatch compares qty against the caller's expectation:
// warning if the deviation exceeds 20%, error if it exceeds 50%.
func expectedMatch(qty float64, expected *float64) *model.SanityNote {
	if expected == nil || *expected <= 0 {
		return nil
	}
	ratio := qty / *expected
	deviation := math.Abs(ratio - 1)
	if deviation <= 0.2 {
		return nil
	}
	level := model.SanityWarning
	if deviation > 0.5 {
		level = model.SanityError
	}
	return &model.SanityNote{Rule: "expected_match", Level: level,
		Message: fmt.Sprintf("quantity %.2f differs from expected %.2f by %.0f%%", qty, *expected, deviation*100)}
}

// hatchFalsePositive: a hatch-sourced quantity covering most of the
// drawing is very likely a background hatch caught by accident, not
// a real quantity.
func hatchFalsePositive(qty, drawingArea float64, regions []*model.Region) *model.SanityNote {
	if drawingArea <= 0 {
		return nil
	}
	isHatch := false
	for _, r := range regions {
		if r.Kind == model.RegionHatch {
			isHatch = true
			break
		}
	}
	if !isHatch {
		return nil
	}
	if qty > 0.8*drawingArea {
		return &model.SanityNote{Rule: "hatch_false_positive", Level: model.SanityError,
			Message: fmt.Sprintf("hatch covers %.0f%% of the drawing — likely a false positive", (qty/drawingArea)*100)}
	}
	return nil
}

// regionVsParent: qty must not exceed 1.1x the parent region's area.
func regionVsParent(qty, parentArea float64) *model.SanityNote {
	if parentArea <= 0 {
		return nil
	}
	if qty > 1.1*parentArea {
		return &model.SanityNote{Rule: "region_vs_parent", Level: model.SanityWarning,
			Message: fmt.Sprintf("quantity %.2f exceeds parent region area %.2f", qty, parentArea)}
	}
	return nil
}

func rangeFor(unit model.UnitFamily) unitRange {
	if r, ok := unitRanges[unit]; ok {
		return r
	}
	return unitRanges[model.UnitFamilyUnknown]
}

// HasError reports whether match carries at least one SanityError
// note, used by the confidence scorer's 0.5x penalty.
func HasError(match *model.Match) bool {
	for _, n := range match.SanityNotes {
		if n.Level == model.SanityError {
			return true
		}
	}
	return false
}

// WarningCount returns the number of SanityWarning notes attached to
// match, used by the confidence scorer's per-warning 0.9x penalty.
func WarningCount(match *model.Match) int {
	n := 0
	for _, note := range match.SanityNotes {
		if note.Level == model.SanityWarning {
			n++
		}
	}
	return n
}

package dxf

import (
	"strconv"

	"github.com/arxos/boqtakeoff/internal/config"
	"github.com/arxos/boqtakeoff/internal/model"
)

// insUnitFactor maps a DXF $INSUNITS code to its meters-conversion
// factor, for the codes trusted at high confidence.
var insUnitFactor = map[int]struct {
	factor float64
	name   string
}{
	1: {0.0254, "Inches"},
	2: {0.3048, "Feet"},
	4: {0.001, "Millimeters"},
	5: {0.01, "Centimeters"},
	6: {1.0, "Meters"},
}

var hintFactor = map[config.HintUnit]struct {
	factor float64
	name   string
}{
	config.HintMM: {0.001, "Millimeters"},
	config.HintCM: {0.01, "Centimeters"},
	config.HintM:  {1.0, "Meters"},
	config.HintIn: {0.0254, "Inches"},
	config.HintFt: {0.3048, "Feet"},
}

// unitResult is the outcome of unit inference.
type unitResult struct {
	Factor     float64
	Detected   string
	Confidence model.UnitConfidence
}

// inferUnit runs the three-tier unit inference:
// 1. header $INSUNITS code if recognized,
// 2. else a user hint if present, used only when the header declares a
// unitless drawing (code 0, or no $INSUNITS at all),
// 3. else a heuristic off the raw (pre-conversion) drawing extents.
func inferUnit(header map[string][]groupCode, hint config.HintUnit, rawBounds model.Bounds) unitResult {
	code, hasCode := insUnitsCode(header)
	if hasCode {
		if u, ok := insUnitFactor[code]; ok {
			return unitResult{Factor: u.factor, Detected: u.name, Confidence: model.UnitConfidenceHigh}
		}
	}

	if hint != config.HintNone && (!hasCode || code == 0) {
		if u, ok := hintFactor[hint]; ok {
			return unitResult{Factor: u.factor, Detected: u.name, Confidence: model.UnitConfidenceMedium}
		}
	}

	maxExtent := rawBounds.Width()
	if rawBounds.Height() > maxExtent {
		maxExtent = rawBounds.Height()
	}
	switch {
	case maxExtent > 5000:
		return unitResult{Factor: 0.001, Detected: "Millimeters (Inferred)", Confidence: model.UnitConfidenceMedium}
	case maxExtent < 2000:
		return unitResult{Factor: 1.0, Detected: "Meters (Inferred)", Confidence: model.UnitConfidenceMedium}
	default:
		return unitResult{Factor: 1.0, Detected: "Meters (Default)", Confidence: model.UnitConfidenceLow}
	}
}

func insUnitsCode(header map[string][]groupCode) (int, bool) {
	codes, ok := header["$INSUNITS"]
	if !ok {
		return 0, false
	}
	for _, g := range codes {
		if g.Code == 70 {
			n, err := strconv.Atoi(g.Value)
			if err != nil {
				return 0, false
			}
			return n, true
		}
	}
	return 0, false
}

func headerExtents(header map[string][]groupCode) model.Bounds {
	minPt := readPoint(header["$EXTMIN"])
	maxPt := readPoint(header["$EXTMAX"])
	if minPt == (model.Point{}) && maxPt == (model.Point{}) {
		return model.Bounds{}
	}
	return model.Bounds{MinX: minPt.X, MinY: minPt.Y, MaxX: maxPt.X, MaxY: maxPt.Y}
}

func readPoint(codes []groupCode) model.Point {
	var x, y float64
	for _, g := range codes {
		switch g.Code {
		case 10:
			x, _ = strconv.ParseFloat(g.Value, 64)
		case 20:
			y, _ = strconv.ParseFloat(g.Value, 64)
		}
	}
	return model.Point{X: x, Y: y}
}

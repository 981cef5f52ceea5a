package matching

import (
	"regexp"
	"strconv"
	"strings"

	"github.com/arxos/boqtakeoff/internal/model"
)

var detectedHeightRE = regexp.MustCompile(`(?i)H\s*=\s*(\d+[.,]?\d*)`)

// horizontalKeywords drives the linear->area split: a degenerate area
// region described with one of these words is a horizontal surface
// (floor/ceiling), otherwise it's a vertical one.
var horizontalKeywords = []string{"cielo", "pisos", "pavimento", "losa", "radier", "sobrelosa", "vitrina"}

// Quantity applies the per-unit-family quantity rule, including the
// linear<->area disambiguation for a region whose area collapsed to
// near zero (a polygonized line, not a surface).
func Quantity(unit model.UnitFamily, description string, region *model.Region, texts []model.TextBlock, defaultHeight float64) float64 {
	switch unit {
	case model.UnitFamilyCount:
		return 1
	case model.UnitFamilyLinear:
		return region.Perimeter
	case model.UnitFamilyArea:
		if region.Area < 0.01 && region.Perimeter > 0 {
			return linearToArea(description, region, texts, defaultHeight)
		}
		return region.Area
	default:
		return region.Area
	}
}

func linearToArea(description string, region *model.Region, texts []model.TextBlock, defaultHeight float64) float64 {
	if isHorizontal(description) {
		return model.ConvexHullArea(region.Ring)
	}
	height := detectedHeight(region, texts, defaultHeight)
	return region.Perimeter * height
}

func isHorizontal(description string) bool {
	lower := strings.ToLower(description)
	for _, kw := range horizontalKeywords {
		if strings.Contains(lower, kw) {
			return true
		}
	}
	return false
}

// detectedHeight parses an "H = <value>" annotation from any nearby
// text, falling back to defaultHeight.
func detectedHeight(region *model.Region, texts []model.TextBlock, defaultHeight float64) float64 {
	const searchRadius = 2.0
	for _, t := range texts {
		if t.Anchor.Distance(region.Centroid) > searchRadius {
			continue
		}
		if m := detectedHeightRE.FindStringSubmatch(t.Content); m != nil {
			v := strings.ReplaceAll(m[1], ",", ".")
			if h, err := strconv.ParseFloat(v, 64); err == nil && h > 0 {
				return h
			}
		}
	}
	return defaultHeight
}

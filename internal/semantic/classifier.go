// Package semantic classifies regions into architectural categories:
// each region is scored against a fixed category set from geometry,
// layer name, and associated-text signals, accumulating weighted
// evidence per candidate and assigning the arg-max category if it
// clears a confidence floor.
package semantic

import (
	"regexp"
	"strings"

	"github.com/arxos/boqtakeoff/internal/model"
)

const (
	layerPrefixScore    = 0.35
	layerSubstringScore = 0.25
	textWordScore       = 0.25
	textSubstringScore  = 0.15
	textSignalCap       = 0.4
	areaSignalScore     = 0.3
	aspectSignalScore   = 0.2
)

type category struct {
	class    model.SemanticClass
	keywords []string
}

// categories holds the per-class keyword sets. Order matters only for
// deterministic tie-breaking (earlier category wins a tie).
var categories = []category{
	{model.ClassFloor, []string{"losa", "piso", "pavimento", "slab", "radier", "floor", "suelo"}},
	{model.ClassWall, []string{"muro", "tabique", "wall", "partition", "tabiques"}},
	{model.ClassCeiling, []string{"cielo", "ceiling", "raso", "volcanita"}},
	{model.ClassFixture, []string{"puerta", "ventana", "mobiliario", "door", "window", "furniture"}},
	{model.ClassAnnotation, []string{"text", "dim", "cota", "nota", "annotation"}},
}

// Classify scores region against every category and returns the
// arg-max class, its score, and the evidence strings that contributed
// (diagnostics only; callers are free to discard them).
func Classify(region *model.Region, minConfidence float64) (model.SemanticClass, float64, []string) {
	bestClass := model.ClassUnknown
	bestScore := -1.0
	var bestEvidence []string

	for _, cat := range categories {
		score, evidence := scoreCategory(region, cat)
		if score > bestScore {
			bestScore = score
			bestClass = cat.class
			bestEvidence = evidence
		}
	}

	if bestScore < minConfidence {
		return model.ClassUnknown, bestScore, bestEvidence
	}
	return bestClass, bestScore, bestEvidence
}

// ClassifyAll classifies every region in place, setting Class and
// ClassConfidence (the pipeline's semantic-classification stage).
func ClassifyAll(regions []*model.Region, minConfidence float64) {
	for _, r := range regions {
		class, score, _ := Classify(r, minConfidence)
		r.Class = class
		r.ClassConfidence = score
	}
}

func scoreCategory(region *model.Region, cat category) (float64, []string) {
	var score float64
	var evidence []string

	if s, ev := geometryScore(region, cat.class); s > 0 {
		score += s
		evidence = append(evidence, ev)
	}
	if s, ev := layerNameScore(region.Layer, cat.keywords); s > 0 {
		score += s
		evidence = append(evidence, ev)
	}
	if s, ev := textScore(region.Texts, cat.keywords); s > 0 {
		score += s
		evidence = append(evidence, ev...)
	}
	return score, evidence
}

// geometryScore scores the geometry signal: area (large/small/none)
// and aspect-ratio range. A Z-level proxy would also count here, but
// Region carries no Z information, so that signal never contributes
// a bonus.
func geometryScore(region *model.Region, class model.SemanticClass) (float64, string) {
	area := region.Area
	aspect := aspectRatio(region.Ring)

	switch class {
	case model.ClassFloor, model.ClassCeiling:
		var score float64
		if area >= 5 {
			score += areaSignalScore
		}
		if aspect <= 3 {
			score += aspectSignalScore
		}
		if score > 0 {
			return score, "geometry: large, roughly rectangular footprint"
		}
	case model.ClassWall:
		if aspect >= 4 {
			return aspectSignalScore, "geometry: elongated, wall-like aspect ratio"
		}
	case model.ClassFixture:
		var score float64
		if area > 0 && area < 2 {
			score += areaSignalScore
		}
		if aspect <= 2.5 {
			score += aspectSignalScore
		}
		if score > 0 {
			return score, "geometry: small footprint"
		}
	case model.ClassAnnotation:
		// No geometry signal for annotations.
	}
	return 0, ""
}

// aspectRatio is the bounding-box width/height ratio, always ≥ 1.
func aspectRatio(ring []model.Point) float64 {
	b := model.BoundsOf(ring)
	w, h := b.Width(), b.Height()
	if w <= 0 || h <= 0 {
		return 1
	}
	if w < h {
		w, h = h, w
	}
	return w / h
}

// layerNameScore scores the layer-name signal: a prefix match scores
// higher than a bare substring match. Only the strongest
// single keyword hit counts, not a sum over every keyword that matches.
func layerNameScore(layer string, keywords []string) (float64, string) {
	lower := strings.ToLower(layer)
	best := 0.0
	var bestKeyword string
	for _, kw := range keywords {
		if strings.HasPrefix(lower, kw) {
			if layerPrefixScore > best {
				best = layerPrefixScore
				bestKeyword = kw
			}
		} else if strings.Contains(lower, kw) {
			if layerSubstringScore > best {
				best = layerSubstringScore
				bestKeyword = kw
			}
		}
	}
	if best == 0 {
		return 0, ""
	}
	return best, "layer name matches \"" + bestKeyword + "\""
}

// textScore scores the associated-text signal: accumulate up to two
// keyword hits, word-boundary hits worth more than bare
// substring hits, the total capped at 0.4.
func textScore(texts []model.AssociatedText, keywords []string) (float64, []string) {
	var total float64
	var evidence []string
	hits := 0
	for _, t := range texts {
		if hits >= 2 {
			break
		}
		content := strings.ToLower(t.Content)
		if kw, ok := wordBoundaryHit(content, keywords); ok {
			total += textWordScore
			evidence = append(evidence, "text \""+t.Content+"\" matches word \""+kw+"\"")
			hits++
			continue
		}
		if kw, ok := substringHit(content, keywords); ok {
			total += textSubstringScore
			evidence = append(evidence, "text \""+t.Content+"\" contains \""+kw+"\"")
			hits++
		}
	}
	if total > textSignalCap {
		total = textSignalCap
	}
	return total, evidence
}

func wordBoundaryHit(content string, keywords []string) (string, bool) {
	for _, kw := range keywords {
		re := regexp.MustCompile(`\b` + regexp.QuoteMeta(kw) + `\b`)
		if re.MatchString(content) {
			return kw, true
		}
	}
	return "", false
}

func substringHit(content string, keywords []string) (string, bool) {
	for _, kw := range keywords {
		if strings.Contains(content, kw) {
			return kw, true
		}
	}
	return "", false
}

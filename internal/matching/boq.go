package matching

import (
	"fmt"
	"math"
	"strings"

	"github.com/arxos/boqtakeoff/internal/config"
	"github.com/arxos/boqtakeoff/internal/model"
	"github.com/arxos/boqtakeoff/internal/spatialindex"
)

const combinedScoreThreshold = 0.6

// MatchBOQ resolves each BOQItem (description length ≥ 3) against the
// region set, combining text and spatial evidence, then applies the
// per-unit quantity rule.
func MatchBOQ(items []model.BOQItem, texts []model.TextBlock, index spatialindex.Index, segIndex *SegmentIndex, cfg config.Options, llm LLMFallback) []model.Match {
	var out []model.Match
	for _, item := range items {
		if len(strings.TrimSpace(item.Description)) < 3 {
			continue
		}
		out = append(out, matchOne(item, texts, index, segIndex, cfg, llm))
	}
	return out
}

type candidateHit struct {
	region       *model.Region
	strategy     model.SpatialStrategy
	combined     float64
	textScore    float64
	spatialScore float64
	qty          float64
	reason       string
}

func matchOne(item model.BOQItem, texts []model.TextBlock, index spatialindex.Index, segIndex *SegmentIndex, cfg config.Options, llm LLMFallback) model.Match {
	unit := model.ClassifyUnit(item.Unit)
	threshold := cfg.TextMatchThreshold
	if threshold <= 0 {
		threshold = defaultThresh
	}
	normDesc := Normalize(item.Description)

	scoreFor := make(map[int]float64, len(texts))
	matchedAny := false
	for i, t := range texts {
		score := scoreLabel(normDesc, Normalize(t.Content))
		if score >= threshold {
			scoreFor[i] = score
			matchedAny = true
		}
	}

	// The optional LLM fallback fires only when every deterministic
	// strategy fell below threshold, and its answer must name one of
	// the candidate labels.
	if !matchedAny && cfg.UseLLMFallback && llm != nil {
		labels := make([]string, len(texts))
		for i, t := range texts {
			labels[i] = t.Content
		}
		if label, ok := llm(item.Description, labels); ok {
			for i, t := range texts {
				if t.Content == label {
					scoreFor[i] = threshold
					matchedAny = true
					break
				}
			}
		}
	}

	var hits []candidateHit
	for i, t := range texts {
		textScore, ok := scoreFor[i]
		if !ok {
			continue
		}

		region, strategy, spatialScore, ok := resolveRegion(t.Anchor, index, segIndex, cfg)
		if !ok {
			continue
		}

		qty := Quantity(unit, item.Description, region, texts, cfg.DefaultWallHeight)
		combined := 0.6*textScore + 0.4*spatialScore
		if item.ExpectedQty != nil && *item.ExpectedQty > 0 {
			ratio := qty / *item.ExpectedQty
			if ratio >= 0.8 && ratio <= 1.2 {
				combined += 0.2
				if combined > 1.0 {
					combined = 1.0
				}
			}
		}
		if combined < combinedScoreThreshold {
			continue
		}
		hits = append(hits, candidateHit{
			region:       region,
			strategy:     strategy,
			combined:     combined,
			textScore:    textScore,
			spatialScore: spatialScore,
			qty:          qty,
			reason:       fmt.Sprintf("matched %q via %s", t.Content, strategy),
		})
	}

	if len(hits) == 0 {
		m := model.Match{BOQItemID: item.ID, Strategy: model.StrategyNone, MatchReason: "No spatial match found"}
		if matchedAny {
			m.Warnings = append(m.Warnings, "candidate labels found but no spatial resolution cleared the combined-score threshold")
		}
		return m
	}
	return aggregateHits(item.ID, hits)
}

// aggregateHits dedups hits by region id (keeping each region's
// highest-combined-score hit), sums quantities across the distinct
// regions, and records an aggregation reason when more than one region
// survives for the same item.
func aggregateHits(itemID string, hits []candidateHit) model.Match {
	byRegion := map[string]*candidateHit{}
	var order []string
	for i := range hits {
		h := hits[i]
		id := h.region.ID
		if existing, ok := byRegion[id]; ok {
			if h.combined > existing.combined {
				*existing = h
			}
			continue
		}
		cp := h
		byRegion[id] = &cp
		order = append(order, id)
	}

	var regions []*model.Region
	var totalQty, bestCombined, bestTextScore, bestSpatialScore float64
	var bestStrategy model.SpatialStrategy
	for _, id := range order {
		h := byRegion[id]
		regions = append(regions, h.region)
		totalQty += h.qty
		if h.combined > bestCombined {
			bestCombined = h.combined
			bestStrategy = h.strategy
			bestTextScore = h.textScore
			bestSpatialScore = h.spatialScore
		}
	}

	reason := byRegion[order[0]].reason
	if len(order) > 1 {
		reason = fmt.Sprintf("aggregated %d regions", len(order))
	}

	return model.Match{
		BOQItemID:     itemID,
		Regions:       regions,
		QtyCalculated: totalQty,
		Confidence:    bestCombined,
		Strategy:      bestStrategy,
		MatchReason:   reason,
		TextScore:     bestTextScore,
		SpatialScore:  bestSpatialScore,
	}
}

const proximityRadius = 0.5

// resolveRegion tries the spatial strategies in priority order —
// inside_zone, proximity, fallback_estimator, nearest_neighbor — and
// the first one that resolves a region wins.
func resolveRegion(p model.Point, index spatialindex.Index, segIndex *SegmentIndex, cfg config.Options) (*model.Region, model.SpatialStrategy, float64, bool) {
	if r := index.Contains(p); r != nil {
		return r, model.StrategyInsideZone, 1.0, true
	}
	if r := index.Nearest(p, proximityRadius); r != nil {
		return r, model.StrategyProximity, 0.8, true
	}
	if segIndex != nil {
		radius := cfg.FallbackRadius
		if radius <= 0 {
			radius = 5.0
		}
		if r, ok := segIndex.Estimate(p, radius); ok {
			return r, model.StrategyFallback, 1.0, true
		}
	}
	searchRadius := cfg.SpatialSearchRadius
	if searchRadius <= 0 {
		searchRadius = 2.0
	}
	if r := index.Nearest(p, searchRadius); r != nil {
		d := distanceToRegion(p, r)
		score := 1.0 - 0.5*(d/searchRadius)
		score = math.Max(0.5, math.Min(1.0, score))
		return r, model.StrategyNearest, score, true
	}
	return nil, model.StrategyNone, 0, false
}

func distanceToRegion(p model.Point, region *model.Region) float64 {
	if pointInRegionRing(p, region.Ring) {
		return 0
	}
	best := math.Inf(1)
	n := len(region.Ring)
	for i := 0; i < n; i++ {
		j := (i + 1) % n
		d := distanceToSegmentPoint(p, region.Ring[i], region.Ring[j])
		if d < best {
			best = d
		}
	}
	return best
}

func pointInRegionRing(p model.Point, ring []model.Point) bool {
	inside := false
	n := len(ring)
	if n < 3 {
		return false
	}
	for i, j := 0, n-1; i < n; j, i = i, i+1 {
		pi, pj := ring[i], ring[j]
		if ((pi.Y > p.Y) != (pj.Y > p.Y)) &&
			(p.X < (pj.X-pi.X)*(p.Y-pi.Y)/(pj.Y-pi.Y)+pi.X) {
			inside = !inside
		}
	}
	return inside
}

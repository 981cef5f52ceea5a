// Package textassoc attaches the most relevant nearby text labels to
// each region: try progressively looser spatial tests, convert
// distance to a bounded relevance score, rank and keep the top N.
package textassoc

import (
	"math"
	"sort"

	"github.com/arxos/boqtakeoff/internal/model"
	"github.com/paulmach/orb"
	"github.com/paulmach/orb/planar"
)

const maxTextsPerRegion = 10

// Associate labels every region: find all texts within maxDistance,
// rank by relevance = 1/(1+d), and keep the top 10.
func Associate(regions []*model.Region, texts []model.TextBlock, maxDistance float64) {
	for _, r := range regions {
		r.Texts = associateOne(r, texts, maxDistance)
	}
}

func associateOne(region *model.Region, texts []model.TextBlock, maxDistance float64) []model.AssociatedText {
	var found []model.AssociatedText
	for _, t := range texts {
		d, rel, ok := distanceAndRelation(region, t.Anchor, maxDistance)
		if !ok {
			continue
		}
		found = append(found, model.AssociatedText{
			Content:      t.Content,
			Distance:     d,
			Relevance:    1 / (1 + d),
			Relationship: rel,
		})
	}
	sort.SliceStable(found, func(i, j int) bool {
		return found[i].Relevance > found[j].Relevance
	})
	if len(found) > maxTextsPerRegion {
		found = found[:maxTextsPerRegion]
	}
	return found
}

// distanceAndRelation tries, in order: containment (distance 0),
// distance-to-centroid, distance-to-boundary — the first test that
// clears maxDistance wins.
func distanceAndRelation(region *model.Region, p model.Point, maxDistance float64) (float64, model.TextRelationship, bool) {
	if pointInRing(p, region.Ring) {
		return 0, model.RelationInside, true
	}
	if d := planarDistance(p, region.Centroid); d <= maxDistance {
		return d, model.RelationNearCentroid, true
	}
	if d := distanceToRing(p, region.Ring); d <= maxDistance {
		return d, model.RelationNearBoundary, true
	}
	return 0, "", false
}

func planarDistance(a, b model.Point) float64 {
	return planar.Distance(orb.Point{a.X, a.Y}, orb.Point{b.X, b.Y})
}

func pointInRing(p model.Point, ring []model.Point) bool {
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

func distanceToRing(p model.Point, ring []model.Point) float64 {
	best := math.Inf(1)
	n := len(ring)
	for i := 0; i < n; i++ {
		j := (i + 1) % n
		d := distanceToSegment(p, ring[i], ring[j])
		if d < best {
			best = d
		}
	}
	return best
}

func distanceToSegment(p, a, b model.Point) float64 {
	vx, vy := b.X-a.X, b.Y-a.Y
	wx, wy := p.X-a.X, p.Y-a.Y
	lenSq := vx*vx + vy*vy
	if lenSq == 0 {
		return p.Distance(a)
	}
	t := (wx*vx + wy*vy) / lenSq
	if t < 0 {
		t = 0
	} else if t > 1 {
		t = 1
	}
	proj := model.Point{X: a.X + t*vx, Y: a.Y + t*vy}
	return p.Distance(proj)
}

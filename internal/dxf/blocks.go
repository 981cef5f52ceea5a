package dxf

import (
	"math"

	"github.com/arxos/boqtakeoff/internal/model"
)

// blockMetadata computes bounding box and closed-geometry area for
// each non-anonymous block definition, emitting a BlockMetadata entry
// when area exceeds 1e-4 m².
func blockMetadata(blocks map[string]*rawEntity, unitFactor float64) []model.BlockMetadata {
	var out []model.BlockMetadata
	for name, block := range blocks {
		if name == "" || (len(name) > 0 && name[0] == '*') {
			continue // anonymous block (DXF convention: name starts with '*')
		}
		localExtracted := newExtracted()
		convertEntities(block.Sub, blocks, identityTransform(), 0, localExtracted)
		if len(localExtracted.Segments) == 0 && len(localExtracted.Hatches) == 0 {
			continue
		}

		area, source := blockArea(localExtracted)
		area *= unitFactor * unitFactor
		if area <= 1e-4 {
			continue
		}

		pts := make([]model.Point, 0, len(localExtracted.Segments)*2)
		for _, s := range localExtracted.Segments {
			pts = append(pts, s.A, s.B)
		}
		for _, h := range localExtracted.Hatches {
			pts = append(pts, h.Ring...)
		}
		b := model.BoundsOf(pts)

		out = append(out, model.BlockMetadata{
			Name:   name,
			Area:   area,
			Width:  b.Width() * unitFactor,
			Height: b.Height() * unitFactor,
			Source: source,
		})
	}
	return out
}

// blockArea accumulates closed-geometry area (shoelace over closed
// polylines, hatch area where available) else falls back to bbox area.
func blockArea(e *extracted) (float64, model.BlockMetadataSource) {
	total := 0.0
	found := false
	for _, h := range e.Hatches {
		total += h.Area
		found = true
	}
	// Re-derive closed polyline loops among segments by chaining shared
	// endpoints; a simple heuristic sufficient for block-area reporting
	// (full region extraction happens later in the pipeline).
	if ring, ok := closedRingFromSegments(e.Segments); ok {
		total += math.Abs(shoelace(ring))
		found = true
	}
	if found && total > 0 {
		return total, model.BlockAreaFromGeometry
	}

	var pts []model.Point
	for _, s := range e.Segments {
		pts = append(pts, s.A, s.B)
	}
	b := model.BoundsOf(pts)
	return b.Width() * b.Height(), model.BlockAreaFromBBox
}

// closedRingFromSegments attempts to chain segments end-to-end into a
// single closed ring. Returns ok=false if the segment set does not form
// exactly one simple closed chain.
func closedRingFromSegments(segs []model.Segment) ([]model.Point, bool) {
	if len(segs) < 3 {
		return nil, false
	}
	adjacency := map[model.Point][]model.Point{}
	for _, s := range segs {
		adjacency[s.A] = append(adjacency[s.A], s.B)
		adjacency[s.B] = append(adjacency[s.B], s.A)
	}
	for _, nbrs := range adjacency {
		if len(nbrs) != 2 {
			return nil, false
		}
	}
	start := segs[0].A
	ring := []model.Point{start}
	visited := map[model.Point]bool{start: true}
	prev := model.Point{}
	cur := start
	for i := 0; i < len(segs); i++ {
		nbrs := adjacency[cur]
		var next model.Point
		picked := false
		for _, n := range nbrs {
			if n != prev {
				next = n
				picked = true
				break
			}
		}
		if !picked {
			return nil, false
		}
		if next == start {
			break
		}
		if visited[next] {
			return nil, false
		}
		visited[next] = true
		ring = append(ring, next)
		prev, cur = cur, next
	}
	if len(ring) < 3 || len(ring) != len(segs) {
		return nil, false
	}
	return ring, true
}

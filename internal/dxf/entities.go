package dxf

import (
	"math"
	"strconv"
	"strings"

	"github.com/arxos/boqtakeoff/internal/model"
)

// maxBlockDepth bounds INSERT recursion.
const maxBlockDepth = 10

// extracted accumulates the flattened output of converting one DXF
// document's entities, in raw drawing units (scaled to meters later by
// the caller once the unit factor is known).
type extracted struct {
	Segments    []model.Segment
	Texts       []model.TextBlock
	BlockRefs   []model.BlockReference
	Hatches     []model.HatchRegion
	Layers      map[string]bool
	Warnings    []string
	// Orientation holds per-layer horizontal/vertical/unknown entity
	// tallies, keyed the same way Layers is.
	Orientation map[string]*orientTally
}

// orientTally counts per-entity orientation classifications
// (classifyOrientation) within one layer.
type orientTally struct {
	horizontal, vertical, unknown, total int
}

func newExtracted() *extracted {
	return &extracted{Layers: map[string]bool{}, Orientation: map[string]*orientTally{}}
}

func (e *extracted) tallyOrientation(layer, orientation string) {
	if layer == "" {
		layer = "0"
	}
	t, ok := e.Orientation[layer]
	if !ok {
		t = &orientTally{}
		e.Orientation[layer] = t
	}
	t.total++
	switch orientation {
	case "horizontal":
		t.horizontal++
	case "vertical":
		t.vertical++
	default:
		t.unknown++
	}
}

func (e *extracted) noteLayer(layer string) {
	if layer == "" {
		layer = "0"
	}
	e.Layers[layer] = true
}

// convertEntities walks a flat entity list (top-level ENTITIES, or an
// exploded BLOCK's members) applying t to every coordinate, recursing
// into INSERT up to maxBlockDepth.
func convertEntities(ents []*rawEntity, blocks map[string]*rawEntity, t transform2D, depth int, out *extracted) {
	for _, ent := range ents {
		layer := ent.first(8)
		switch ent.Type {
		case "LINE":
			convertLine(ent, t, layer, out)
		case "LWPOLYLINE":
			convertLWPolyline(ent, t, layer, out)
		case "POLYLINE":
			convertPolyline(ent, t, layer, out)
		case "ARC":
			convertArc(ent, t, layer, out)
		case "CIRCLE":
			convertCircle(ent, t, layer, out)
		case "TEXT", "MTEXT":
			convertText(ent, t, layer, out)
		case "HATCH":
			convertHatch(ent, t, layer, out)
		case "INSERT":
			convertInsert(ent, blocks, t, depth, out)
		default:
			// unsupported entity type: skipped
		}
		out.noteLayer(layer)
		if ent.Type != "INSERT" {
			// INSERT contributes no geometry of its own; its exploded
			// members are tallied individually during the recursion above.
			out.tallyOrientation(layer, classifyOrientation(ent))
		}
	}
}

// classifyOrientation derives the per-entity orientation signal: LINE
// is vertical if its endpoints' raw Z differ by more than 0.01
// drawing units, HATCH is always horizontal, 3DFACE is vertical
// unless its four corners are coplanar in XY, and everything this
// extractor carries no Z/extrusion signal for (LWPOLYLINE, ARC,
// CIRCLE, TEXT) is unknown.
func classifyOrientation(ent *rawEntity) string {
	switch ent.Type {
	case "LINE":
		z1, z2 := ent.float(30, 0), ent.float(31, 0)
		if math.Abs(z1-z2) > 0.01 {
			return "vertical"
		}
		return "unknown"
	case "HATCH":
		return "horizontal"
	case "3DFACE":
		zs := []float64{ent.float(30, 0), ent.float(31, 0), ent.float(32, 0), ent.float(33, 0)}
		minZ, maxZ := zs[0], zs[0]
		for _, z := range zs {
			if z < minZ {
				minZ = z
			}
			if z > maxZ {
				maxZ = z
			}
		}
		if maxZ-minZ > 0.01 {
			return "vertical"
		}
		return "horizontal"
	default:
		return "unknown"
	}
}

func txPoint(t transform2D, x, y float64) model.Point {
	rx, ry := t.Apply(x, y)
	return model.NewPoint(rx, ry)
}

func addSeg(out *extracted, a, b model.Point, layer string, typ model.EntityType) {
	if a == b {
		return // zero-length segments are invalid everywhere
	}
	out.Segments = append(out.Segments, model.Segment{A: a, B: b, Layer: layer, Type: typ})
}

func convertLine(ent *rawEntity, t transform2D, layer string, out *extracted) {
	x1, y1 := ent.float(10, 0), ent.float(20, 0)
	x2, y2 := ent.float(11, 0), ent.float(21, 0)
	a := txPoint(t, x1, y1)
	b := txPoint(t, x2, y2)
	addSeg(out, a, b, layer, model.EntityLine)
}

func convertLWPolyline(ent *rawEntity, t transform2D, layer string, out *extracted) {
	xs := ent.floats(10)
	ys := ent.floats(20)
	bulges := ent.floats(42)
	closed := ent.int(70, 0)&1 == 1
	n := len(xs)
	if n > len(ys) {
		n = len(ys)
	}
	if n < 2 {
		return
	}
	polylineChain(xs[:n], ys[:n], bulges, closed, t, layer, model.EntityLWPolyline, out)
}

func convertPolyline(ent *rawEntity, t transform2D, layer string, out *extracted) {
	var xs, ys, bulges []float64
	for _, sub := range ent.Sub {
		if sub.Type != "VERTEX" {
			continue
		}
		xs = append(xs, sub.float(10, 0))
		ys = append(ys, sub.float(20, 0))
		bulges = append(bulges, sub.float(42, 0))
	}
	closed := ent.int(70, 0)&1 == 1
	if len(xs) < 2 {
		return
	}
	polylineChain(xs, ys, bulges, closed, t, layer, model.EntityLWPolyline, out)
}

// polylineChain emits N-1 segments between consecutive vertices (plus
// a closing segment if closed), densifying bulge arcs between
// vertices.
func polylineChain(xs, ys, bulges []float64, closed bool, t transform2D, layer string, typ model.EntityType, out *extracted) {
	n := len(xs)
	emit := func(i, j int) {
		bulge := 0.0
		if i < len(bulges) {
			bulge = bulges[i]
		}
		pts := []point2{{X: xs[i], Y: ys[i]}}
		if bulge != 0 {
			pts = append(pts, bulgeToChords(xs[i], ys[i], xs[j], ys[j], bulge)...)
		}
		pts = append(pts, point2{X: xs[j], Y: ys[j]})
		for k := 0; k+1 < len(pts); k++ {
			a := txPoint(t, pts[k].X, pts[k].Y)
			b := txPoint(t, pts[k+1].X, pts[k+1].Y)
			addSeg(out, a, b, layer, typ)
		}
	}
	for i := 0; i+1 < n; i++ {
		emit(i, i+1)
	}
	if closed {
		emit(n-1, 0)
	}
}

func convertArc(ent *rawEntity, t transform2D, layer string, out *extracted) {
	cx, cy := ent.float(10, 0), ent.float(20, 0)
	r := ent.float(40, 0)
	startDeg := ent.float(50, 0)
	endDeg := ent.float(51, 0)
	if r <= 0 {
		return
	}
	start := startDeg * math.Pi / 180
	end := endDeg * math.Pi / 180
	for end < start {
		end += 2 * math.Pi
	}
	arcLen := r * (end - start)
	n := chordCountForArc(arcLen, 8)
	var prev model.Point
	for i := 0; i <= n; i++ {
		theta := start + (end-start)*float64(i)/float64(n)
		p := txPoint(t, cx+r*math.Cos(theta), cy+r*math.Sin(theta))
		if i > 0 {
			addSeg(out, prev, p, layer, model.EntityArc)
		}
		prev = p
	}
}

func convertCircle(ent *rawEntity, t transform2D, layer string, out *extracted) {
	cx, cy := ent.float(10, 0), ent.float(20, 0)
	r := ent.float(40, 0)
	if r <= 0 {
		return
	}
	n := chordCountForArc(2*math.Pi*r, 16)
	var first, prev model.Point
	for i := 0; i < n; i++ {
		theta := 2 * math.Pi * float64(i) / float64(n)
		p := txPoint(t, cx+r*math.Cos(theta), cy+r*math.Sin(theta))
		if i == 0 {
			first = p
		} else {
			addSeg(out, prev, p, layer, model.EntityCircle)
		}
		prev = p
	}
	addSeg(out, prev, first, layer, model.EntityCircle)
}

func convertText(ent *rawEntity, t transform2D, layer string, out *extracted) {
	content := ent.first(1)
	if content == "" {
		content = ent.first(3) // MTEXT continuation fallback
	}
	if content == "" {
		return
	}
	x, y := ent.float(10, 0), ent.float(20, 0)
	height := ent.float(40, 0.1)
	out.Texts = append(out.Texts, model.TextBlock{
		Content:    flattenMText(content),
		Anchor:     txPoint(t, x, y),
		Layer:      layer,
		TextHeight: height,
	})
}

// flattenMText strips the common MTEXT formatting codes (\P paragraph
// break, \W/\H/\C property scopes) down to plain content.
func flattenMText(s string) string {
	out := make([]byte, 0, len(s))
	for i := 0; i < len(s); i++ {
		c := s[i]
		if c == '\\' && i+1 < len(s) && (s[i+1] == 'P' || s[i+1] == 'p') {
			out = append(out, ' ')
			i++
			continue
		}
		if c == '\\' && i+1 < len(s) && (s[i+1] == 'W' || s[i+1] == 'H' || s[i+1] == 'C') {
			if end := strings.IndexByte(s[i:], ';'); end >= 0 {
				i += end
				continue
			}
		}
		if c == '{' || c == '}' {
			continue
		}
		out = append(out, c)
	}
	return string(out)
}

func convertInsert(ent *rawEntity, blocks map[string]*rawEntity, t transform2D, depth int, out *extracted) {
	name := ent.first(2)
	x, y := ent.float(10, 0), ent.float(20, 0)
	sx := ent.float(41, 1)
	sy := ent.float(42, 1)
	rot := ent.float(50, 0) * math.Pi / 180
	layer := ent.first(8)

	out.BlockRefs = append(out.BlockRefs, model.BlockReference{
		BlockName: name,
		Insertion: txPoint(t, x, y),
		Layer:     layer,
		Rotation:  rot,
		ScaleX:    sx,
		ScaleY:    sy,
	})

	if depth >= maxBlockDepth {
		out.Warnings = append(out.Warnings, "block reference recursion truncated at depth "+strconv.Itoa(maxBlockDepth)+" for block "+name)
		return
	}
	block, ok := blocks[name]
	if !ok {
		return
	}
	inner := newSRT(sx, sy, rot, x, y)
	composed := inner.Then(t)
	convertEntities(block.Sub, blocks, composed, depth+1, out)
}

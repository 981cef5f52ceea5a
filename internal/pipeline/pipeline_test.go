package pipeline

import (
	"context"
	"fmt"
	"strings"
	"testing"
	"time"

	"github.com/arxos/boqtakeoff/internal/config"
	"github.com/arxos/boqtakeoff/internal/model"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func dxfLines(pairs ...string) []byte {
	return []byte(strings.Join(pairs, "\n") + "\n")
}

// minimalRoomDXF is a 10x10 m² closed LWPolyline on an architectural
// layer plus a text label at its centroid.
const minimalRoomDXF = `0
SECTION
2
HEADER
9
$INSUNITS
70
6
0
ENDSEC
0
SECTION
2
ENTITIES
0
LWPOLYLINE
8
mb-auxiliar
90
4
70
1
10
0.0
20
0.0
10
10.0
20
0.0
10
10.0
20
10.0
10
0.0
20
10.0
0
TEXT
8
ANNOT
10
5.0
20
5.0
40
0.3
1
SALA DE VENTAS
0
ENDSEC
0
EOF
`

func floatPtr(v float64) *float64 { return &v }

func TestAnalyzeMinimalRoomMatchesInsideZone(t *testing.T) {
	items := []model.BOQItem{
		{ID: "1", Description: "Pavimento Sala de Ventas", Unit: "m2", ExpectedQty: floatPtr(100)},
	}
	result, err := Analyze(context.Background(), []byte(minimalRoomDXF), items, config.Default(), nil, nil)
	require.NoError(t, err)
	require.Len(t, result.Matches, 1)

	m := result.Matches[0]
	assert.Equal(t, "1", m.BOQItemID)
	assert.Equal(t, model.StrategyInsideZone, m.Strategy)
	assert.InDelta(t, 100.0, m.QtyCalculated, 1.0)
	assert.Greater(t, m.Confidence, 0.0)
	assert.Empty(t, result.Unmatched)
}

func TestAnalyzeShortDescriptionItemIsUnmatched(t *testing.T) {
	items := []model.BOQItem{{ID: "x", Description: "ab", Unit: "m2"}}
	result, err := Analyze(context.Background(), []byte(minimalRoomDXF), items, config.Default(), nil, nil)
	require.NoError(t, err)
	assert.Empty(t, result.Matches)
	require.Len(t, result.Unmatched, 1)
	assert.Equal(t, "x", result.Unmatched[0].ID)
}

func TestAnalyzeEmptyDrawingReturnsCleanly(t *testing.T) {
	empty := []byte("0\nSECTION\n2\nENTITIES\n0\nENDSEC\n0\nEOF\n")
	items := []model.BOQItem{{ID: "1", Description: "Pavimento inexistente", Unit: "m2"}}
	result, err := Analyze(context.Background(), empty, items, config.Default(), nil, nil)
	require.NoError(t, err)
	require.Len(t, result.Matches, 1)
	assert.Equal(t, model.StrategyNone, result.Matches[0].Strategy)
	assert.Equal(t, 0.0, result.Matches[0].Confidence)
	assert.Contains(t, result.Matches[0].MatchReason, "No spatial match")
}

func TestAnalyzeInvalidCADReturnsError(t *testing.T) {
	_, err := Analyze(context.Background(), []byte("not a dxf file"), nil, config.Default(), nil, nil)
	assert.ErrorIs(t, err, model.ErrInvalidCAD)
}

func TestAnalyzeCancelledContextAbortsBetweenStages(t *testing.T) {
	ctx, cancel := context.WithCancel(context.Background())
	cancel()
	result, err := Analyze(ctx, []byte(minimalRoomDXF), nil, config.Default(), nil, nil)
	require.Error(t, err)
	assert.ErrorIs(t, err, model.ErrCancelled)
	assert.NotNil(t, result)
}

func TestAnalyzeDeterministicAcrossRuns(t *testing.T) {
	items := []model.BOQItem{
		{ID: "1", Description: "Pavimento Sala de Ventas", Unit: "m2", ExpectedQty: floatPtr(100)},
	}
	fixedClock := func() time.Time { return time.Unix(0, 0) }

	r1, err := Analyze(context.Background(), []byte(minimalRoomDXF), items, config.Default(), nil, fixedClock)
	require.NoError(t, err)
	r2, err := Analyze(context.Background(), []byte(minimalRoomDXF), items, config.Default(), nil, fixedClock)
	require.NoError(t, err)

	require.Len(t, r1.Matches, 1)
	require.Len(t, r2.Matches, 1)
	assert.Equal(t, r1.Matches[0].QtyCalculated, r2.Matches[0].QtyCalculated)
	assert.Equal(t, r1.Matches[0].Strategy, r2.Matches[0].Strategy)
	assert.Equal(t, r1.Matches[0].Confidence, r2.Matches[0].Confidence)
}

// TestAnalyzeOutsideLabelIsUnmatched: a label text far outside any
// region still scores a text match (exact description/label text),
// but no spatial strategy resolves it, so the
// item surfaces with strategy none and a "No spatial match" reason
// rather than being silently dropped.
func TestAnalyzeOutsideLabelIsUnmatched(t *testing.T) {
	dxf := minimalRoomDXF[:len(minimalRoomDXF)-len("0\nENDSEC\n0\nEOF\n")] + `0
TEXT
8
ANNOT
10
15.0
20
15.0
40
0.3
1
REJA PERIMETRAL
0
ENDSEC
0
EOF
`
	items := []model.BOQItem{
		{ID: "1", Description: "Pavimento Sala de Ventas", Unit: "m2", ExpectedQty: floatPtr(100)},
		{ID: "2", Description: "Reja perimetral", Unit: "m2"},
	}
	result, err := Analyze(context.Background(), []byte(dxf), items, config.Default(), nil, nil)
	require.NoError(t, err)
	require.Len(t, result.Matches, 2)

	var outside model.Match
	for _, m := range result.Matches {
		if m.BOQItemID == "2" {
			outside = m
		}
	}
	assert.Equal(t, model.StrategyNone, outside.Strategy)
	assert.Empty(t, outside.Regions)
	assert.Equal(t, 0.0, outside.QtyCalculated)
	assert.Equal(t, 0.0, outside.Confidence)
	assert.Contains(t, outside.MatchReason, "No spatial match")
}

// TestAnalyzeLinearWallFallsBackToHeightConversion: a wall drawn as
// open architectural lines (no closed room) with a nearby "H=..."
// height label converts its m2 quantity
// via perimeter × detected height rather than a polygon area, since no
// closed face exists for this drawing's fallback-estimator envelope to
// sit inside of.
func TestAnalyzeLinearWallFallsBackToHeightConversion(t *testing.T) {
	data := dxfLines(
		"0", "SECTION", "2", "HEADER",
		"9", "$INSUNITS", "70", "6",
		"0", "ENDSEC",
		"0", "SECTION", "2", "ENTITIES",
		"0", "LINE", "8", "a-arq-tabiques", "10", "0", "20", "0", "11", "10", "21", "0",
		"0", "LINE", "8", "a-arq-tabiques", "10", "0", "20", "0.4", "11", "10", "21", "0.4",
		"0", "LINE", "8", "a-arq-tabiques", "10", "5", "20", "0", "11", "5", "21", "0.4",
		"0", "TEXT", "8", "ANNOT", "10", "5.0", "20", "0.2", "40", "0.3", "1", "TABIQUE",
		"0", "TEXT", "8", "ANNOT", "10", "5.0", "20", "0.2", "40", "0.3", "1", "H=2.5m",
		"0", "ENDSEC",
		"0", "EOF",
	)
	items := []model.BOQItem{{ID: "1", Description: "tabique", Unit: "m2"}}
	result, err := Analyze(context.Background(), data, items, config.Default(), nil, nil)
	require.NoError(t, err)
	require.Len(t, result.Matches, 1)

	m := result.Matches[0]
	assert.Equal(t, model.StrategyFallback, m.Strategy)
	// perimeter of the fallback envelope (10 x 0.4) is 20.8m; at the
	// detected 2.5m height that's 52.0 m2.
	assert.InDelta(t, 52.0, m.QtyCalculated, 0.1)
	assert.Contains(t, m.MatchReason, "fallback_estimator")
}

// TestAnalyzeHatchFirstClassMatch: a HATCH boundary is promoted
// directly to a Region (bypassing polygonization), so a BOQItem
// naming it matches via inside_zone with
// high confidence and an id prefixed "hatch_".
func TestAnalyzeHatchFirstClassMatch(t *testing.T) {
	data := dxfLines(
		"0", "SECTION", "2", "HEADER",
		"9", "$INSUNITS", "70", "6",
		"0", "ENDSEC",
		"0", "SECTION", "2", "ENTITIES",
		"0", "HATCH", "8", "FA_0.20",
		"10", "0", "20", "0",
		"10", "10.095", "20", "0",
		"10", "10.095", "20", "6",
		"10", "0", "20", "6",
		"0", "TEXT", "8", "ANNOT", "10", "5.0475", "20", "3.0", "40", "0.3", "1", "Sobrelosa de 8cm",
		// Extends the drawing's overall bounds well past the hatch
		// itself, so the hatch isn't mistaken for a background fill
		// covering most of the drawing (hatch_false_positive sanity rule).
		"0", "LINE", "8", "0", "10", "-50", "20", "-50", "11", "100", "21", "100",
		"0", "ENDSEC",
		"0", "EOF",
	)
	items := []model.BOQItem{
		{ID: "1", Description: "Sobrelosa de 8cm", Unit: "m2", ExpectedQty: floatPtr(60.57)},
	}
	result, err := Analyze(context.Background(), data, items, config.Default(), nil, nil)
	require.NoError(t, err)
	require.Len(t, result.Matches, 1)

	m := result.Matches[0]
	assert.Equal(t, model.StrategyInsideZone, m.Strategy)
	require.Len(t, m.Regions, 1)
	assert.Equal(t, model.RegionHatch, m.Regions[0].Kind)
	assert.Contains(t, m.Regions[0].ID, "hatch_")
	assert.InDelta(t, 60.57, m.QtyCalculated, 0.6) // within ~1%
	assert.GreaterOrEqual(t, m.Confidence, 0.8)
}

// TestAnalyzeMillimeterExtentsInferredEndToEnd: a header with no
// usable $INSUNITS code, but raw extents
// far beyond any plausible meters-scale drawing, infers millimeters
// and scales every downstream coordinate by the resulting 1e-3 factor.
func TestAnalyzeMillimeterExtentsInferredEndToEnd(t *testing.T) {
	data := dxfLines(
		"0", "SECTION", "2", "HEADER",
		"9", "$INSUNITS", "70", "0",
		"0", "ENDSEC",
		"0", "SECTION", "2", "ENTITIES",
		"0", "LINE", "8", "a-arq-muro", "10", "0", "20", "0", "11", "25000", "21", "0",
		"0", "LINE", "8", "a-arq-muro", "10", "0", "20", "0", "11", "0", "21", "18000",
		"0", "ENDSEC",
		"0", "EOF",
	)
	result, err := Analyze(context.Background(), data, nil, config.Default(), nil, nil)
	require.NoError(t, err)
	assert.Contains(t, result.DetectedUnit, "Millimeters (Inferred)")
	assert.Equal(t, model.UnitConfidenceMedium, result.UnitConfidence)
	assert.Equal(t, 0.001, result.UnitFactor)
}

// TestAnalyzeSegmentCapSubsamplesAndStillMatches: a whitelisted
// segment count far past MaxSegments still
// completes (rather than erroring or stalling), subsampling down to
// the cap and recording a warning, while a room built from segments
// that land on the subsampling stride still resolves to a region.
//
// The drawing uses a scaled-down segment count rather than a literal
// 600,000/200,000 to keep this test's construction
// and execution cheap; the cap-enforcement mechanism exercised is
// identical (layerfilter.Filter's uniform-step subsampling).
func TestAnalyzeSegmentCapSubsamplesAndStillMatches(t *testing.T) {
	const maxSegments = 200
	const total = 800 // step = ceil(800/200) = 4

	lines := []string{
		"0", "SECTION", "2", "HEADER",
		"9", "$INSUNITS", "70", "6",
		"0", "ENDSEC",
		"0", "SECTION", "2", "ENTITIES",
	}
	// Room walls at indices 0, 4, 8, 12 land exactly on the step-4
	// subsampling stride, so all four survive the cap.
	room := [][2][2]float64{
		{{0, 0}, {10, 0}},
		{{10, 0}, {10, 10}},
		{{10, 10}, {0, 10}},
		{{0, 10}, {0, 0}},
	}
	roomAt := map[int]int{0: 0, 4: 1, 8: 2, 12: 3}
	for i := 0; i < total; i++ {
		var a, b [2]float64
		if idx, ok := roomAt[i]; ok {
			a, b = room[idx][0], room[idx][1]
		} else {
			x := float64(1000 + i)
			a, b = [2]float64{x, 1000}, [2]float64{x + 1, 1000}
		}
		lines = append(lines, "0", "LINE", "8", "a-arq-muro",
			"10", fmt.Sprintf("%v", a[0]), "20", fmt.Sprintf("%v", a[1]),
			"11", fmt.Sprintf("%v", b[0]), "21", fmt.Sprintf("%v", b[1]))
	}
	lines = append(lines,
		"0", "TEXT", "8", "ANNOT", "10", "5.0", "20", "5.0", "40", "0.3", "1", "SALA DE VENTAS",
		"0", "ENDSEC",
		"0", "EOF",
	)

	opts := config.Default()
	opts.MaxSegments = maxSegments
	items := []model.BOQItem{{ID: "1", Description: "Pavimento Sala de Ventas", Unit: "m2"}}

	result, err := Analyze(context.Background(), dxfLines(lines...), items, opts, nil, nil)
	require.NoError(t, err)

	found := false
	for _, w := range result.Warnings {
		if strings.Contains(w, "subsampl") {
			found = true
		}
	}
	assert.True(t, found, "expected a subsampling warning, got %v", result.Warnings)

	require.Len(t, result.Matches, 1)
	assert.Equal(t, model.StrategyInsideZone, result.Matches[0].Strategy)
}

package matching

import (
	"testing"

	"github.com/arxos/boqtakeoff/internal/model"
	"github.com/stretchr/testify/assert"
)

func regionWith(area, perimeter float64) *model.Region {
	return &model.Region{
		Ring: []model.Point{
			{X: 0, Y: 0}, {X: 10, Y: 0}, {X: 10, Y: 0.4}, {X: 0, Y: 0.4},
		},
		Area:      area,
		Perimeter: perimeter,
		Centroid:  model.Point{X: 5, Y: 0.2},
	}
}

func TestQuantityCountUnitIsOnePerRegion(t *testing.T) {
	r := regionWith(4, 20.8)
	assert.Equal(t, 1.0, Quantity(model.UnitFamilyCount, "puerta", r, nil, 2.4))
}

func TestQuantityLinearUnitIsPerimeter(t *testing.T) {
	r := regionWith(4, 20.8)
	assert.Equal(t, 20.8, Quantity(model.UnitFamilyLinear, "cornisa", r, nil, 2.4))
}

func TestQuantityAreaUnitIsArea(t *testing.T) {
	r := regionWith(4, 20.8)
	assert.Equal(t, 4.0, Quantity(model.UnitFamilyArea, "pintura", r, nil, 2.4))
}

func TestQuantityDegenerateAreaVerticalUsesWallHeight(t *testing.T) {
	r := regionWith(0.001, 20)
	texts := []model.TextBlock{
		{Content: "H=2.5m", Anchor: model.Point{X: 5, Y: 0.5}},
	}
	qty := Quantity(model.UnitFamilyArea, "Pintura tabique", r, texts, 2.4)
	assert.InDelta(t, 50.0, qty, 1e-9) // 20m perimeter x detected 2.5m
}

func TestQuantityDegenerateAreaVerticalDefaultsHeight(t *testing.T) {
	r := regionWith(0.001, 20)
	qty := Quantity(model.UnitFamilyArea, "Pintura tabique", r, nil, 2.4)
	assert.InDelta(t, 48.0, qty, 1e-9)
}

func TestQuantityDegenerateAreaHorizontalUsesHullArea(t *testing.T) {
	r := regionWith(0.001, 20.8)
	qty := Quantity(model.UnitFamilyArea, "Sobrelosa de pasillo", r, nil, 2.4)
	assert.InDelta(t, 4.0, qty, 1e-9) // convex hull of the 10 x 0.4 ring
}

func TestDetectedHeightIgnoresFarLabels(t *testing.T) {
	r := regionWith(0.001, 20)
	texts := []model.TextBlock{
		{Content: "H=3.0m", Anchor: model.Point{X: 50, Y: 50}},
	}
	qty := Quantity(model.UnitFamilyArea, "tabique", r, texts, 2.4)
	assert.InDelta(t, 48.0, qty, 1e-9) // far label: default height wins
}

func TestDetectedHeightParsesCommaDecimal(t *testing.T) {
	r := regionWith(0.001, 10)
	texts := []model.TextBlock{
		{Content: "Tabique H = 2,6", Anchor: model.Point{X: 5, Y: 0.2}},
	}
	qty := Quantity(model.UnitFamilyArea, "tabique", r, texts, 2.4)
	assert.InDelta(t, 26.0, qty, 1e-9)
}

// Raising the text-match threshold can only shrink the candidate set,
// never grow it.
func TestMatchLabelsThresholdMonotonicity(t *testing.T) {
	labels := []string{"Sala de Ventas", "Patio Exterior", "Bodega"}
	desc := "Pavimento Sala de Ventas"
	prev := len(MatchLabels(desc, labels, 0.3, nil))
	for _, threshold := range []float64{0.5, 0.7, 0.9} {
		n := len(MatchLabels(desc, labels, threshold, nil))
		assert.LessOrEqual(t, n, prev)
		prev = n
	}
}

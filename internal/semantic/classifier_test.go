package semantic

import (
	"testing"

	"github.com/arxos/boqtakeoff/internal/model"
	"github.com/stretchr/testify/assert"
)

func square(size float64) []model.Point {
	return []model.Point{
		{X: 0, Y: 0}, {X: size, Y: 0}, {X: size, Y: size}, {X: 0, Y: size},
	}
}

func strip(length float64) []model.Point {
	return []model.Point{
		{X: 0, Y: 0}, {X: length, Y: 0}, {X: length, Y: 0.2}, {X: 0, Y: 0.2},
	}
}

func TestClassifyFloorByLayerAndGeometry(t *testing.T) {
	r := &model.Region{Ring: square(5), Area: 25, Layer: "LOSA_PISO_1"}
	class, score, _ := Classify(r, 0.3)
	assert.Equal(t, model.ClassFloor, class)
	assert.GreaterOrEqual(t, score, 0.3)
}

func TestClassifyWallByAspectRatioAndLayer(t *testing.T) {
	r := &model.Region{Ring: strip(10), Area: 2, Layer: "MUROS_EXT"}
	class, _, _ := Classify(r, 0.3)
	assert.Equal(t, model.ClassWall, class)
}

func TestClassifyFallsBackToUnknownBelowThreshold(t *testing.T) {
	r := &model.Region{Ring: square(2), Area: 4, Layer: "CAPA_GENERICA"}
	class, score, _ := Classify(r, 0.3)
	assert.Equal(t, model.ClassUnknown, class)
	assert.Less(t, score, 0.3)
}

func TestClassifyUsesAssociatedTextSignal(t *testing.T) {
	r := &model.Region{
		Ring:  square(0.5),
		Area:  0.25,
		Layer: "EQUIPAMIENTO",
		Texts: []model.AssociatedText{{Content: "puerta principal"}},
	}
	class, _, evidence := Classify(r, 0.3)
	assert.Equal(t, model.ClassFixture, class)
	assert.NotEmpty(t, evidence)
}

func TestClassifyAllSetsFieldsInPlace(t *testing.T) {
	regions := []*model.Region{
		{Ring: square(5), Area: 25, Layer: "LOSA"},
	}
	ClassifyAll(regions, 0.3)
	assert.Equal(t, model.ClassFloor, regions[0].Class)
	assert.Greater(t, regions[0].ClassConfidence, 0.0)
}

package cleanup

import (
	"testing"

	"github.com/arxos/boqtakeoff/internal/model"
	"github.com/stretchr/testify/assert"
)

func TestUndershootSnapsUndershootingEndpoint(t *testing.T) {
	// A wall segment whose end stops 10cm short of a perpendicular wall.
	segs := []model.Segment{
		{A: model.Point{X: 0, Y: 0}, B: model.Point{X: 4.9, Y: 0}, Layer: "muro"},
		{A: model.Point{X: 5, Y: -5}, B: model.Point{X: 5, Y: 5}, Layer: "muro"},
	}
	out := Undershoot(segs, 0.15)
	assert.InDelta(t, 5.0, out[0].B.X, 1e-6)
	assert.InDelta(t, 0.0, out[0].B.Y, 1e-6)
}

func TestUndershootIgnoresGapsBeyondTolerance(t *testing.T) {
	segs := []model.Segment{
		{A: model.Point{X: 0, Y: 0}, B: model.Point{X: 4.5, Y: 0}, Layer: "muro"},
		{A: model.Point{X: 5, Y: -5}, B: model.Point{X: 5, Y: 5}, Layer: "muro"},
	}
	out := Undershoot(segs, 0.15)
	assert.InDelta(t, 4.5, out[0].B.X, 1e-6) // 0.5m gap exceeds tolerance: untouched
}

func TestUndershootNoopOnAlreadyConnectedGeometry(t *testing.T) {
	segs := []model.Segment{
		{A: model.Point{X: 0, Y: 0}, B: model.Point{X: 5, Y: 0}, Layer: "muro"},
		{A: model.Point{X: 5, Y: 0}, B: model.Point{X: 5, Y: 5}, Layer: "muro"},
	}
	out := Undershoot(segs, 0.15)
	assert.Equal(t, segs, out)
}

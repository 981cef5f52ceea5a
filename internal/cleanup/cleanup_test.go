package cleanup

import (
	"testing"

	"github.com/arxos/boqtakeoff/internal/config"
	"github.com/arxos/boqtakeoff/internal/logging"
	"github.com/arxos/boqtakeoff/internal/model"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestRunClosesAnOpenRoomIntoAClosedLoop(t *testing.T) {
	segs := []model.Segment{
		{A: model.Point{X: 0, Y: 0}, B: model.Point{X: 10, Y: 0.002}, Layer: "muro"},
		{A: model.Point{X: 10, Y: 0}, B: model.Point{X: 10, Y: 10}, Layer: "muro"},
		{A: model.Point{X: 10, Y: 10}, B: model.Point{X: 0, Y: 10}, Layer: "muro"},
		{A: model.Point{X: 0, Y: 10}, B: model.Point{X: 0, Y: 0.03}, Layer: "muro"},
	}
	opts := config.Default()
	res := Run(segs, opts, logging.Discard())
	require.NotEmpty(t, res.Segments)

	degree := map[model.Point]int{}
	for _, s := range res.Segments {
		degree[s.A]++
		degree[s.B]++
	}
	for p, d := range degree {
		assert.Equal(t, 2, d, "expected closed loop, dangling point at %v", p)
	}
}

func TestRunSkipsDisabledPasses(t *testing.T) {
	segs := []model.Segment{
		{A: model.Point{X: 0, Y: 0}, B: model.Point{X: 10, Y: 0.002}, Layer: "muro"},
	}
	opts := config.Default()
	opts.SnapTolerance = 0
	opts.MergeCollinear = false
	opts.CloseGaps = false
	opts.UndershootTolerance = 0
	res := Run(segs, opts, logging.Discard())
	assert.Equal(t, segs, res.Segments)
}

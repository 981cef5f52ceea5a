package config

import (
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestDefaultOptions(t *testing.T) {
	o := Default()

	assert.Equal(t, 0.01, o.SnapTolerance)
	assert.Equal(t, 0.05, o.MaxGap)
	assert.True(t, o.MergeCollinear)
	assert.True(t, o.CloseGaps)
	assert.Equal(t, 0.15, o.UndershootTolerance)
	assert.Equal(t, 0.5, o.MinArea)
	assert.Equal(t, 1_000_000.0, o.MaxArea)
	assert.Equal(t, 200_000, o.MaxSegments)
	assert.Equal(t, 0.5, o.TextMatchThreshold)
	assert.Equal(t, 2.0, o.SpatialSearchRadius)
	assert.Equal(t, 2.4, o.DefaultWallHeight)
	assert.False(t, o.UseLLMFallback)
	assert.Equal(t, HintNone, o.HintUnit)
}

package textassoc

import (
	"testing"

	"github.com/arxos/boqtakeoff/internal/model"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func testRegion() *model.Region {
	return &model.Region{
		ID:       "r1",
		Ring:     []model.Point{{X: 0, Y: 0}, {X: 10, Y: 0}, {X: 10, Y: 10}, {X: 0, Y: 10}},
		Centroid: model.Point{X: 5, Y: 5},
	}
}

func TestAssociateInsideTextGetsZeroDistance(t *testing.T) {
	region := testRegion()
	texts := []model.TextBlock{{Content: "Classroom 1", Anchor: model.Point{X: 5, Y: 5}}}
	Associate([]*model.Region{region}, texts, 5)
	require.Len(t, region.Texts, 1)
	assert.Equal(t, 0.0, region.Texts[0].Distance)
	assert.Equal(t, model.RelationInside, region.Texts[0].Relationship)
	assert.Equal(t, 1.0, region.Texts[0].Relevance)
}

func TestAssociateRejectsBeyondMaxDistance(t *testing.T) {
	region := testRegion()
	texts := []model.TextBlock{{Content: "far away", Anchor: model.Point{X: 100, Y: 100}}}
	Associate([]*model.Region{region}, texts, 5)
	assert.Empty(t, region.Texts)
}

func TestAssociateOrdersByRelevanceDescending(t *testing.T) {
	region := testRegion()
	texts := []model.TextBlock{
		{Content: "near", Anchor: model.Point{X: 11, Y: 5}},
		{Content: "farther", Anchor: model.Point{X: 14, Y: 5}},
	}
	Associate([]*model.Region{region}, texts, 10)
	require.Len(t, region.Texts, 2)
	assert.Equal(t, "near", region.Texts[0].Content)
	assert.GreaterOrEqual(t, region.Texts[0].Relevance, region.Texts[1].Relevance)
}

func TestAssociateCapsAtTenTexts(t *testing.T) {
	region := testRegion()
	var texts []model.TextBlock
	for i := 0; i < 15; i++ {
		texts = append(texts, model.TextBlock{Content: "label", Anchor: model.Point{X: 5, Y: 5}})
	}
	Associate([]*model.Region{region}, texts, 5)
	assert.Len(t, region.Texts, 10)
}

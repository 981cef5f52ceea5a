package dxf

import "github.com/arxos/boqtakeoff/internal/model"

// layerStats accumulates the per-entity-type histogram alongside the
// orientation tally produced by classifyOrientation during
// conversion.
type layerStats struct {
	entityTypes map[model.EntityType]int
}

// computeLayerMetadata classifies each layer's orientation from its
// entities' signals: a layer is VERTICAL if any vertical entity is
// present, HORIZONTAL if at least 80% of its entities are horizontal,
// else MIXED.
func computeLayerMetadata(e *extracted) []model.LayerMetadata {
	stats := map[string]*layerStats{}
	get := func(layer string) *layerStats {
		if layer == "" {
			layer = "0"
		}
		s, ok := stats[layer]
		if !ok {
			s = &layerStats{entityTypes: map[model.EntityType]int{}}
			stats[layer] = s
		}
		return s
	}
	for _, s := range e.Segments {
		get(s.Layer).entityTypes[s.Type]++
	}

	var out []model.LayerMetadata
	for layer := range e.Layers {
		st := get(layer)
		out = append(out, model.LayerMetadata{
			Name:         layer,
			Orientation:  classifyLayerOrientation(e.Orientation[layer]),
			EntityCounts: st.entityTypes,
		})
	}
	return out
}

func classifyLayerOrientation(t *orientTally) model.Orientation {
	if t == nil || t.total == 0 {
		return model.OrientationUnknown
	}
	switch {
	case t.vertical > 0:
		return model.OrientationVertical
	case float64(t.horizontal) >= 0.8*float64(t.total):
		return model.OrientationHorizontal
	default:
		return model.OrientationMixed
	}
}

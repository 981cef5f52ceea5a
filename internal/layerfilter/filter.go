// Package layerfilter drops segments on non-architectural layers and
// enforces a hard segment cap by uniform subsampling.
package layerfilter

import (
	"strconv"
	"strings"

	"github.com/arxos/boqtakeoff/internal/model"
)

// architecturalKeywords is the recognized case-insensitive substring
// whitelist.
var architecturalKeywords = []string{
	"arq", "mb", "mu", "tab", "pu", "ven", "muro", "wall", "door",
	"window", "partition", "room", "space", "boundary",
}

// IsArchitecturalLayer reports whether layer matches the whitelist.
func IsArchitecturalLayer(layer string) bool {
	lower := strings.ToLower(layer)
	for _, kw := range architecturalKeywords {
		if strings.Contains(lower, kw) {
			return true
		}
	}
	return false
}

// Result is the filtered segment set plus any subsampling warning.
type Result struct {
	Segments []model.Segment
	Warnings []string
}

// Filter drops segments on non-matching layers, then enforces
// maxSegments via uniform-step subsampling. Filtering is
// lossless with respect to the reported layer set: callers should
// continue to report the full layer list from the extractor output,
// not the post-filter set.
func Filter(segments []model.Segment, maxSegments int) Result {
	whitelisted := make([]model.Segment, 0, len(segments))
	for _, s := range segments {
		if IsArchitecturalLayer(s.Layer) {
			whitelisted = append(whitelisted, s)
		}
	}

	if maxSegments <= 0 || len(whitelisted) <= maxSegments {
		return Result{Segments: whitelisted}
	}

	step := (len(whitelisted) + maxSegments - 1) / maxSegments // ceil(N/MAX_SEGMENTS)
	subsampled := make([]model.Segment, 0, maxSegments)
	for i := 0; i < len(whitelisted); i += step {
		subsampled = append(subsampled, whitelisted[i])
	}
	return Result{
		Segments: subsampled,
		Warnings: []string{"segment count exceeded max_segments; uniformly subsampled with step " + strconv.Itoa(step)},
	}
}

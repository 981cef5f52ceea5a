// Package pipeline wires every takeoff stage into the single core
// entry point Analyze: a fixed stage sequence with a cooperative
// context.Context deadline checked at stage boundaries, returning
// partial results on timeout rather than a raised error. Data flows
// strictly forward — each stage consumes and releases its input, and
// the raw extractor output is dropped once cleanup segments exist to
// bound peak memory.
package pipeline

import (
	"context"
	"sort"

	"github.com/arxos/boqtakeoff/internal/cleanup"
	"github.com/arxos/boqtakeoff/internal/config"
	"github.com/arxos/boqtakeoff/internal/dxf"
	"github.com/arxos/boqtakeoff/internal/layerfilter"
	"github.com/arxos/boqtakeoff/internal/logging"
	"github.com/arxos/boqtakeoff/internal/matching"
	"github.com/arxos/boqtakeoff/internal/model"
	"github.com/arxos/boqtakeoff/internal/region"
	"github.com/arxos/boqtakeoff/internal/sanity"
	"github.com/arxos/boqtakeoff/internal/semantic"
	"github.com/arxos/boqtakeoff/internal/spatialindex"
	"github.com/arxos/boqtakeoff/internal/textassoc"
)

// Analyze runs the full takeoff pipeline over dxfBytes and boqItems
// and returns the AnalysisResult. It is the only exported entry point
// external front-ends (HTTP upload handlers, PDF rasterizers, vision
// label suppliers) call into.
//
// ctx carries the cooperative deadline/cancellation contract, checked
// between stages, never mid-stage. A cancelled context aborts with
// model.ErrCancelled; a deadline exceeded between stages returns the
// partial result gathered so far tagged with a "timeout" warning
// rather than an error.
func Analyze(ctx context.Context, dxfBytes []byte, boqItems []model.BOQItem, opts config.Options, log *logging.Logger, clock model.Clock) (*model.AnalysisResult, error) {
	if log == nil {
		log = logging.Discard()
	}
	if clock == nil {
		clock = model.SystemClock
	}
	start := clock()

	result := &model.AnalysisResult{}

	extracted, err := dxf.Extract(dxfBytes, opts.HintUnit, log.Stage("dxf"))
	if err != nil {
		return nil, err
	}
	result.DetectedUnit = extracted.DetectedUnit
	result.UnitConfidence = extracted.UnitConfidence
	result.UnitFactor = extracted.UnitFactor
	result.LayerMetadata = extracted.LayerMetadata
	result.BlockMetadata = extracted.BlockMetadata
	result.Warnings = append(result.Warnings, extracted.Warnings...)

	if stopped, err := checkDeadline(ctx, result, "dxf_extraction"); stopped {
		return result, err
	}

	filtered := layerfilter.Filter(extracted.Segments, effectiveMaxSegments(opts))
	result.Warnings = append(result.Warnings, filtered.Warnings...)

	if stopped, err := checkDeadline(ctx, result, "layer_filter"); stopped {
		return result, err
	}

	cleaned := cleanup.Run(filtered.Segments, opts, log.Stage("cleanup"))
	result.Warnings = append(result.Warnings, cleaned.Warnings...)

	texts := extracted.Texts
	hatches := extracted.HatchRegions
	drawingBounds := extracted.Bounds
	// The raw extractor output is no longer needed once cleanup segments
	// and texts/hatches have been pulled out of it; dropping it here caps
	// peak memory before the heavy geometric work starts.
	extracted = nil

	if stopped, err := checkDeadline(ctx, result, "cleanup"); stopped {
		return result, err
	}

	regions, regionWarnings := region.Run(cleaned.Segments, hatches, effectiveMinArea(opts), effectiveMaxArea(opts))
	result.Warnings = append(result.Warnings, regionWarnings...)
	sortRegionsDeterministic(regions)

	if stopped, err := checkDeadline(ctx, result, "region_extraction"); stopped {
		return result, err
	}

	index := spatialindex.Build(regions)
	segIndex := matching.BuildSegmentIndex(cleaned.Segments)

	semantic.ClassifyAll(regions, effectiveMinConfidence(opts))
	textassoc.Associate(regions, texts, effectiveMaxTextDistance(opts))

	if stopped, err := checkDeadline(ctx, result, "classification"); stopped {
		return result, err
	}

	// The LLM fallback is optional and non-deterministic; this entry
	// point wires no default supplier for it even when
	// opts.UseLLMFallback is set, so MatchBOQ always falls through to the
	// deterministic exact/synonym/fuzzy strategies.
	var llm matching.LLMFallback

	matches := matching.MatchBOQ(boqItems, texts, index, segIndex, opts, llm)

	itemByID := make(map[string]model.BOQItem, len(boqItems))
	for _, item := range boqItems {
		itemByID[item.ID] = item
	}
	drawingArea := drawingBounds.Width() * drawingBounds.Height()

	for i := range matches {
		m := &matches[i]
		finalizeConfidence(m, itemByID[m.BOQItemID], drawingArea)
	}

	sort.Slice(matches, func(i, j int) bool { return matches[i].BOQItemID < matches[j].BOQItemID })
	result.Matches = matches

	matchedIDs := make(map[string]bool, len(matches))
	for _, m := range matches {
		matchedIDs[m.BOQItemID] = true
	}
	for _, item := range boqItems {
		if !matchedIDs[item.ID] {
			result.Unmatched = append(result.Unmatched, item)
		}
	}

	result.ProcessingTimeMS = clock().Sub(start).Milliseconds()
	return result, nil
}

// finalizeConfidence computes the weighted confidence score for a
// resolved match (Strategy != StrategyNone); unresolved matches keep
// confidence 0.
func finalizeConfidence(m *model.Match, item model.BOQItem, drawingArea float64) {
	if m.Strategy == model.StrategyNone || len(m.Regions) == 0 {
		return
	}

	unit := model.ClassifyUnit(item.Unit)
	sanity.Check(m, sanity.Context{
		Unit:        unit,
		ExpectedQty: item.ExpectedQty,
		DrawingArea: drawingArea,
	})

	primary := m.Regions[0]
	factors := sanity.Factors{
		TextMatch:         sanity.TextMatchFactor(m.TextScore),
		SpatialMatch:      sanity.SpatialMatchFactor(m.Strategy, m.SpatialScore),
		GeometryQuality:   sanity.GeometryQualityFactor(primary),
		ExpectedMatch:     sanity.ExpectedMatchFactor(m.QtyCalculated, item.ExpectedQty),
		SourceReliability: sourceReliability(primary),
	}
	m.Confidence = sanity.Score(factors, m)

	if sanity.RequiresReview(m.Confidence, m) {
		m.Warnings = append(m.Warnings, "low_confidence")
	}
}

// sourceReliability feeds the confidence scorer's source factor. No
// caller-supplied reliability channel exists in this entry point, so
// the 0.5 default is used uniformly except for virtual
// (fallback-estimator) regions, which are inherently less reliable
// than a real closed face.
func sourceReliability(r *model.Region) float64 {
	if r == nil {
		return 0.5
	}
	if r.IsVirtual {
		return 0.3
	}
	return 0.5
}

// checkDeadline is the cooperative deadline check run at stage
// boundaries only. A cancelled context returns
// model.ErrCancelled; a deadline exceeded returns the partial result
// tagged with a warning, not an error.
func checkDeadline(ctx context.Context, result *model.AnalysisResult, stage string) (bool, error) {
	if ctx == nil {
		return false, nil
	}
	select {
	case <-ctx.Done():
		if ctx.Err() == context.DeadlineExceeded {
			result.Warnings = append(result.Warnings, "timeout: deadline exceeded after stage "+stage)
			return true, nil
		}
		return true, model.ErrCancelled
	default:
		return false, nil
	}
}

// sortRegionsDeterministic orders regions by (layer, id) so that every
// later stage (and the final match list) is deterministic across runs
// given identical input.
func sortRegionsDeterministic(regions []*model.Region) {
	sort.Slice(regions, func(i, j int) bool {
		if regions[i].Layer != regions[j].Layer {
			return regions[i].Layer < regions[j].Layer
		}
		return regions[i].ID < regions[j].ID
	})
}

func effectiveMinArea(opts config.Options) float64 {
	if opts.MinArea <= 0 {
		return config.Default().MinArea
	}
	return opts.MinArea
}

func effectiveMaxArea(opts config.Options) float64 {
	if opts.MaxArea <= 0 {
		return config.Default().MaxArea
	}
	return opts.MaxArea
}

func effectiveMaxSegments(opts config.Options) int {
	if opts.MaxSegments <= 0 {
		return config.Default().MaxSegments
	}
	return opts.MaxSegments
}

func effectiveMinConfidence(opts config.Options) float64 {
	if opts.MinConfidence <= 0 {
		return config.Default().MinConfidence
	}
	return opts.MinConfidence
}

func effectiveMaxTextDistance(opts config.Options) float64 {
	if opts.MaxTextDistance <= 0 {
		return config.Default().MaxTextDistance
	}
	return opts.MaxTextDistance
}

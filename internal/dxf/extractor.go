package dxf

import (
	"github.com/arxos/boqtakeoff/internal/config"
	"github.com/arxos/boqtakeoff/internal/logging"
	"github.com/arxos/boqtakeoff/internal/model"
)

// Output is everything the DXF extractor hands to later stages.
type Output struct {
	Segments       []model.Segment
	Texts          []model.TextBlock
	BlockRefs      []model.BlockReference
	HatchRegions   []model.HatchRegion
	LayerSet       []string
	Bounds         model.Bounds
	LayerMetadata  []model.LayerMetadata
	BlockMetadata  []model.BlockMetadata
	UnitFactor     float64
	DetectedUnit   string
	UnitConfidence model.UnitConfidence
	Warnings       []string
}

// Extract parses data as an ASCII DXF buffer and flattens it to
// primitive records, exploding block references with composed
// transforms and inferring the meters-conversion factor. Returns
// model.ErrInvalidCAD on parse failure.
func Extract(data []byte, hint config.HintUnit, log *logging.Logger) (*Output, error) {
	if log == nil {
		log = logging.Discard()
	}
	log = log.Stage("dxf_extract")

	codes, err := scan(data)
	if err != nil {
		log.WithError(err).Warn("dxf scan failed")
		return nil, model.ErrInvalidCAD
	}
	sections, err := parseSections(codes)
	if err != nil {
		log.WithError(err).Warn("dxf section parse failed")
		return nil, model.ErrInvalidCAD
	}

	var header map[string][]groupCode
	blocks := map[string]*rawEntity{}
	var topEntities []*rawEntity
	for _, sec := range sections {
		switch sec.Name {
		case "HEADER":
			header = sec.Header
		case "BLOCKS":
			for _, ent := range sec.Entities {
				if ent.Type == "BLOCK" {
					name := ent.first(2)
					blocks[name] = ent
				}
			}
		case "ENTITIES":
			topEntities = sec.Entities
		}
	}
	if header == nil {
		header = map[string][]groupCode{}
	}

	out := newExtracted()
	convertEntities(topEntities, blocks, identityTransform(), 0, out)

	rawBounds := rawBoundsOf(out)
	u := inferUnit(header, hint, rawBounds)

	scaled := scaleExtracted(out, u.Factor)
	blockMeta := blockMetadata(blocks, u.Factor)
	layerMeta := computeLayerMetadata(out)

	bounds := model.BoundsOf(allPoints(scaled))

	layers := make([]string, 0, len(scaled.Layers))
	for l := range scaled.Layers {
		layers = append(layers, l)
	}

	log.WithField("segments", len(scaled.Segments)).
		WithField("unit_factor", u.Factor).
		WithField("unit_confidence", u.Confidence).
		Info("dxf extraction complete")

	return &Output{
		Segments:       scaled.Segments,
		Texts:          scaled.Texts,
		BlockRefs:      scaled.BlockRefs,
		HatchRegions:   scaled.Hatches,
		LayerSet:       layers,
		Bounds:         bounds,
		LayerMetadata:  layerMeta,
		BlockMetadata:  blockMeta,
		UnitFactor:     u.Factor,
		DetectedUnit:   u.Detected,
		UnitConfidence: u.Confidence,
		Warnings:       scaled.Warnings,
	}, nil
}

func rawBoundsOf(e *extracted) model.Bounds {
	return model.BoundsOf(allPoints(e))
}

func allPoints(e *extracted) []model.Point {
	var pts []model.Point
	for _, s := range e.Segments {
		pts = append(pts, s.A, s.B)
	}
	for _, t := range e.Texts {
		pts = append(pts, t.Anchor)
	}
	for _, h := range e.Hatches {
		pts = append(pts, h.Ring...)
	}
	return pts
}

// scaleExtracted converts every coordinate from raw drawing units to
// meters by unitFactor.
func scaleExtracted(e *extracted, unitFactor float64) *extracted {
	out := newExtracted()
	out.Warnings = e.Warnings
	scalePt := func(p model.Point) model.Point {
		return model.NewPoint(p.X*unitFactor, p.Y*unitFactor)
	}
	for _, s := range e.Segments {
		a, b := scalePt(s.A), scalePt(s.B)
		if a == b {
			continue
		}
		out.Segments = append(out.Segments, model.Segment{A: a, B: b, Layer: s.Layer, Type: s.Type})
	}
	for _, txt := range e.Texts {
		out.Texts = append(out.Texts, model.TextBlock{
			Content:    txt.Content,
			Anchor:     scalePt(txt.Anchor),
			Layer:      txt.Layer,
			TextHeight: txt.TextHeight * unitFactor,
		})
	}
	for _, br := range e.BlockRefs {
		out.BlockRefs = append(out.BlockRefs, model.BlockReference{
			BlockName: br.BlockName,
			Insertion: scalePt(br.Insertion),
			Layer:     br.Layer,
			Rotation:  br.Rotation,
			ScaleX:    br.ScaleX,
			ScaleY:    br.ScaleY,
		})
	}
	for _, h := range e.Hatches {
		ring := make([]model.Point, len(h.Ring))
		for i, p := range h.Ring {
			ring[i] = scalePt(p)
		}
		out.Hatches = append(out.Hatches, model.HatchRegion{
			Ring:    ring,
			Layer:   h.Layer,
			Area:    h.Area * unitFactor * unitFactor,
			IsHatch: true,
		})
	}
	out.Layers = e.Layers
	return out
}

package model

// TextBlock is a CAD text/mtext entity flattened to plain content.
type TextBlock struct {
	Content    string
	Anchor     Point
	Layer      string
	TextHeight float64 // meters
}

// BlockReference records an unexploded INSERT, kept alongside the
// exploded primitives it produced.
type BlockReference struct {
	BlockName string
	Insertion Point
	Layer     string
	Rotation  float64 // radians
	ScaleX    float64
	ScaleY    float64
}

// HatchRegion is a filled boundary read directly off a HATCH entity; it
// is promoted to a first-class Region by the region extractor without
// going through polygonization.
type HatchRegion struct {
	Ring    []Point
	Layer   string
	Area    float64
	IsHatch bool
}

// Orientation classifies a layer's entities by their Z-behavior.
type Orientation string

const (
	OrientationHorizontal Orientation = "HORIZONTAL"
	OrientationVertical   Orientation = "VERTICAL"
	OrientationMixed      Orientation = "MIXED"
	OrientationUnknown    Orientation = "UNKNOWN"
)

// LayerMetadata summarizes one layer's geometry for diagnostics. The
// semantic classifier's layer-name signal reads Region.Layer, not this.
type LayerMetadata struct {
	Name        string
	Orientation Orientation
	// EntityCounts is a per-entity-type histogram kept for diagnostics;
	// nothing in the matching path consumes it.
	EntityCounts map[EntityType]int
}

// BlockMetadataSource records how a block's area was computed.
type BlockMetadataSource string

const (
	BlockAreaFromGeometry BlockMetadataSource = "geometry"
	BlockAreaFromBBox     BlockMetadataSource = "bbox"
)

// BlockMetadata is emitted per non-anonymous block definition whose
// geometry area exceeds 1e-4 m².
type BlockMetadata struct {
	Name   string
	Area   float64
	Width  float64
	Height float64
	Source BlockMetadataSource
}

// UnitConfidence reflects how the meters-conversion factor was derived.
type UnitConfidence string

const (
	UnitConfidenceHigh   UnitConfidence = "High"
	UnitConfidenceMedium UnitConfidence = "Medium"
	UnitConfidenceLow    UnitConfidence = "Low"
)

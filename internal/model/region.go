package model

// Resolution tags which multi-resolution pass produced a region.
type Resolution string

const (
	ResolutionCoarse Resolution = "coarse"
	ResolutionMedium Resolution = "medium"
	ResolutionFine   Resolution = "fine"
)

// SemanticClass is the region's rule-based architectural category.
type SemanticClass string

const (
	ClassFloor      SemanticClass = "FLOOR"
	ClassWall       SemanticClass = "WALL"
	ClassCeiling    SemanticClass = "CEILING"
	ClassFixture    SemanticClass = "FIXTURE"
	ClassAnnotation SemanticClass = "ANNOTATION"
	ClassUnknown    SemanticClass = "UNKNOWN"
)

// TextRelationship describes how an associated text relates spatially
// to a region.
type TextRelationship string

const (
	RelationInside       TextRelationship = "inside"
	RelationNearCentroid TextRelationship = "near_centroid"
	RelationNearBoundary TextRelationship = "near_boundary"
)

// AssociatedText is one text label attached to a Region by the Text
// Associator, ranked by relevance.
type AssociatedText struct {
	Content      string
	Distance     float64
	Relevance    float64
	Relationship TextRelationship
}

// RegionKind tags how a Region came into being. Regions flow
// polymorphically through later stages (matcher, quantifier) but carry
// an explicit tag so consumers never have to sniff for it.
type RegionKind string

const (
	RegionExtracted RegionKind = "extracted" // planar-graph face
	RegionHatch     RegionKind = "hatch"     // first-class HatchRegion
	RegionVirtual   RegionKind = "virtual"   // fallback-estimator bbox
)

// Region is a closed, simple polygon with architectural metadata.
// Region area is in [min_area, max_area] by construction (see
// internal/region); perimeter, centroid and area are pre-computed
// rather than recomputed by every consumer.
type Region struct {
	ID              string
	Kind            RegionKind
	Ring            []Point // explicit exterior ring, no holes
	Area            float64
	Perimeter       float64
	Centroid        Point
	Layer           string // "Unknown" if no layer could be assigned
	Resolution      Resolution
	Class           SemanticClass
	ClassConfidence float64
	Texts           []AssociatedText

	IsVirtual bool // mirrors Kind == RegionVirtual
}

package model

// EntityType tags the CAD origin (or cleanup origin) of a Segment.
type EntityType string

const (
	EntityLine       EntityType = "LINE"
	EntityLWPolyline EntityType = "LWPOLYLINE"
	EntityArc        EntityType = "ARC-approx"
	EntityCircle     EntityType = "CIRCLE-approx"
	EntityMerged     EntityType = "MERGED"
	EntityGapClose   EntityType = "GAP_CLOSE"
	EntityBridge     EntityType = "BRIDGE"
	EntityAutoClose  EntityType = "AUTO_CLOSE"
)

// Segment is an ordered pair of points with a layer and entity-type tag.
// Endpoints may be mutated in place by the cleanup passes only; once
// handed to the region extractor a Segment is frozen.
type Segment struct {
	A, B  Point
	Layer string
	Type  EntityType

	// ContributorLayers lists the layers merged into this segment by the
	// collinear-merge pass, each distinct layer once (not a multiset), so
	// the region layer-assignment vote counts every layer of a merged
	// segment rather than only the first chain segment's.
	ContributorLayers []string
}

// IsZeroLength reports whether the segment has coincident endpoints and
// must be discarded; zero-length segments are invalid at every stage.
func (s Segment) IsZeroLength() bool {
	return s.A == s.B
}

// Length returns the Euclidean length of the segment.
func (s Segment) Length() float64 {
	return s.A.Distance(s.B)
}

// Layers returns the layers to vote with: ContributorLayers if
// present (post-merge), otherwise the single Layer.
func (s Segment) Layers() []string {
	if len(s.ContributorLayers) > 0 {
		return s.ContributorLayers
	}
	return []string{s.Layer}
}

package geometry

import (
	"math"
	"sort"

	"github.com/aukilabs/go-tooling/pkg/errors"
	"github.com/df07/go-progressive-pathtracer/pkg/core"
)

const (
	// ErrTypeNaNBoundingBox is the error type returned when primitives cannot be
	// ordered because a bounding box coordinate is NaN.
	ErrTypeNaNBoundingBox = "nan-bounding-box"

	// ErrTypeEmptyScene is the error type returned when a hierarchy is built from
	// zero primitives.
	ErrTypeEmptyScene = "empty-scene"
)

// BVHNode is either a leaf holding one primitive or an internal node with two children
type BVHNode struct {
	BoundingBox core.AABB
	Left        *BVHNode
	Right       *BVHNode
	Primitive   *Primitive // Set for leaf nodes only
}

// IsLeaf reports whether the node holds a primitive
func (n *BVHNode) IsLeaf() bool {
	return n.Primitive != nil
}

// BVH is an immutable bounding volume hierarchy. It is safe for concurrent
// queries once built.
type BVH struct {
	Root  *BVHNode
	Time0 float64
	Time1 float64
}

// BuildBVH constructs a hierarchy over the primitives for the shutter interval
// [time0, time1]. The sampler picks the split axis at every level, so a fixed
// seed yields a fixed tree shape.
func BuildBVH(primitives []Primitive, time0, time1 float64, sampler core.Sampler) (*BVH, error) {
	if len(primitives) == 0 {
		return nil, errors.New("cannot build bvh without primitives").
			WithType(ErrTypeEmptyScene)
	}

	// Copy so sorting never reorders the caller's slice
	prims := make([]Primitive, len(primitives))
	copy(prims, primitives)

	root, err := buildNode(prims, time0, time1, sampler)
	if err != nil {
		return nil, err
	}

	return &BVH{
		Root:  root,
		Time0: time0,
		Time1: time1,
	}, nil
}

func buildNode(prims []Primitive, time0, time1 float64, sampler core.Sampler) (*BVHNode, error) {
	axis := int(sampler.Get1D() * 3)
	if err := sortByAxis(prims, axis, time0, time1); err != nil {
		return nil, err
	}

	switch len(prims) {
	case 1:
		return newLeaf(&prims[0], time0, time1), nil

	case 2:
		left := newLeaf(&prims[0], time0, time1)
		right := newLeaf(&prims[1], time0, time1)
		return newInternal(left, right), nil
	}

	mid := len(prims) / 2
	left, err := buildNode(prims[:mid], time0, time1, sampler)
	if err != nil {
		return nil, err
	}
	right, err := buildNode(prims[mid:], time0, time1, sampler)
	if err != nil {
		return nil, err
	}
	return newInternal(left, right), nil
}

func newLeaf(p *Primitive, time0, time1 float64) *BVHNode {
	return &BVHNode{
		BoundingBox: p.BoundingBox(time0, time1),
		Primitive:   p,
	}
}

func newInternal(left, right *BVHNode) *BVHNode {
	return &BVHNode{
		BoundingBox: left.BoundingBox.Union(right.BoundingBox),
		Left:        left,
		Right:       right,
	}
}

// sortByAxis stably orders primitives by the minimum corner of their bounding
// box on the given axis. Any NaN key makes the order undefined and is an error.
func sortByAxis(prims []Primitive, axis int, time0, time1 float64) error {
	if len(prims) < 2 {
		return nil
	}

	keys := make([]float64, len(prims))
	for i := range prims {
		keys[i] = prims[i].BoundingBox(time0, time1).Min.Axis(axis)
		if math.IsNaN(keys[i]) {
			return errors.New("bounding box has no ordering").
				WithType(ErrTypeNaNBoundingBox).
				WithTag("axis", axis).
				WithTag("index", i).
				WithTag("material_id", prims[i].MaterialID)
		}
	}

	sort.Stable(byKey{prims: prims, keys: keys})
	return nil
}

type byKey struct {
	prims []Primitive
	keys  []float64
}

func (s byKey) Len() int           { return len(s.prims) }
func (s byKey) Less(i, j int) bool { return s.keys[i] < s.keys[j] }
func (s byKey) Swap(i, j int) {
	s.prims[i], s.prims[j] = s.prims[j], s.prims[i]
	s.keys[i], s.keys[j] = s.keys[j], s.keys[i]
}

// Hit returns the nearest intersection in (tMin, tMax)
func (bvh *BVH) Hit(ray core.Ray, tMin, tMax float64) (core.HitRecord, bool) {
	if bvh.Root == nil {
		return core.HitRecord{}, false
	}
	return hitNode(bvh.Root, ray, tMin, tMax)
}

// hitNode queries both children over the same window and keeps the nearer hit
func hitNode(node *BVHNode, ray core.Ray, tMin, tMax float64) (core.HitRecord, bool) {
	if !node.BoundingBox.Hit(ray, tMin, tMax) {
		return core.HitRecord{}, false
	}

	if node.IsLeaf() {
		return node.Primitive.Hit(ray, tMin, tMax)
	}

	leftHit, leftOK := hitNode(node.Left, ray, tMin, tMax)
	rightHit, rightOK := hitNode(node.Right, ray, tMin, tMax)

	switch {
	case leftOK && rightOK:
		// Equal distances resolve to the right child
		if leftHit.T < rightHit.T {
			return leftHit, true
		}
		return rightHit, true
	case leftOK:
		return leftHit, true
	case rightOK:
		return rightHit, true
	default:
		return core.HitRecord{}, false
	}
}

// BoundingBox returns the box enclosing the whole hierarchy
func (bvh *BVH) BoundingBox() core.AABB {
	if bvh.Root == nil {
		return core.AABB{}
	}
	return bvh.Root.BoundingBox
}

// BVHStats describes the shape of a built hierarchy
type BVHStats struct {
	TotalNodes int
	LeafNodes  int
	MaxDepth   int
	AvgDepth   float64
}

// Stats walks the hierarchy and reports its shape
func (bvh *BVH) Stats() BVHStats {
	if bvh.Root == nil {
		return BVHStats{}
	}

	stats := BVHStats{}
	collectStats(bvh.Root, 0, &stats)

	if stats.LeafNodes > 0 {
		stats.AvgDepth = stats.AvgDepth / float64(stats.LeafNodes)
	}
	return stats
}

func collectStats(node *BVHNode, depth int, stats *BVHStats) {
	stats.TotalNodes++
	if depth > stats.MaxDepth {
		stats.MaxDepth = depth
	}

	if node.IsLeaf() {
		stats.LeafNodes++
		stats.AvgDepth += float64(depth) // Summed here, divided in Stats
		return
	}

	collectStats(node.Left, depth+1, stats)
	collectStats(node.Right, depth+1, stats)
}

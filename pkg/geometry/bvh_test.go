package geometry

import (
	"math"
	"testing"

	"github.com/aukilabs/go-tooling/pkg/errors"
	"github.com/df07/go-progressive-pathtracer/pkg/core"
	"github.com/stretchr/testify/require"
)

func randomPrimitives(n int, seed uint64) []Primitive {
	sampler := core.NewSeededSampler(seed, 0)
	prims := make([]Primitive, 0, n)
	for i := 0; i < n; i++ {
		center := sampler.Get3D().Multiply(20).Subtract(core.NewVec3(10, 10, 10))
		radius := 0.2 + sampler.Get1D()
		if i%4 == 0 {
			end := center.Add(core.NewVec3(0, sampler.Get1D(), 0))
			prims = append(prims, NewMovingSphere(center, end, 0, 1, radius, i))
			continue
		}
		prims = append(prims, NewSphere(center, radius, i))
	}
	return prims
}

func TestBVH_MatchesLinearScan(t *testing.T) {
	counts := []int{1, 2, 3, 4, 7, 150}

	for _, n := range counts {
		prims := randomPrimitives(n, uint64(n))
		bvh, err := BuildBVH(prims, 0, 1, core.NewSeededSampler(99, 0))
		require.NoError(t, err)

		list := List(prims)
		rays := core.NewSeededSampler(1234, uint64(n))
		hits := 0

		for i := 0; i < 2000; i++ {
			origin := rays.Get3D().Multiply(40).Subtract(core.NewVec3(20, 20, 20))
			dir := core.RandomInUnitSphere(rays)
			ray := core.NewRay(origin, dir, rays.Get1D())

			expected, expectedOK := list.Hit(ray, 0.001, math.Inf(1))
			got, gotOK := bvh.Hit(ray, 0.001, math.Inf(1))

			require.Equal(t, expectedOK, gotOK, "n=%d ray=%d", n, i)
			if !expectedOK {
				continue
			}
			hits++
			require.Equal(t, expected.MaterialID, got.MaterialID, "n=%d ray=%d", n, i)
			require.InDelta(t, expected.T, got.T, 1e-9, "n=%d ray=%d", n, i)
		}

		if n >= 100 {
			require.NotZero(t, hits, "expected some rays to hit %d primitives", n)
		}
	}
}

func TestBVH_Shape(t *testing.T) {
	t.Run("single primitive is a leaf", func(t *testing.T) {
		bvh, err := BuildBVH(randomPrimitives(1, 1), 0, 1, core.NewSeededSampler(1, 0))
		require.NoError(t, err)
		require.True(t, bvh.Root.IsLeaf())
	})

	t.Run("two primitives share one node", func(t *testing.T) {
		bvh, err := BuildBVH(randomPrimitives(2, 2), 0, 1, core.NewSeededSampler(1, 0))
		require.NoError(t, err)
		require.False(t, bvh.Root.IsLeaf())
		require.True(t, bvh.Root.Left.IsLeaf())
		require.True(t, bvh.Root.Right.IsLeaf())
	})

	t.Run("every primitive lands in exactly one leaf", func(t *testing.T) {
		prims := randomPrimitives(37, 5)
		bvh, err := BuildBVH(prims, 0, 1, core.NewSeededSampler(1, 0))
		require.NoError(t, err)

		stats := bvh.Stats()
		require.Equal(t, 37, stats.LeafNodes)
		require.Equal(t, 2*37-1, stats.TotalNodes)

		seen := map[int]bool{}
		var walk func(n *BVHNode)
		walk = func(n *BVHNode) {
			if n.IsLeaf() {
				require.False(t, seen[n.Primitive.MaterialID])
				seen[n.Primitive.MaterialID] = true
				return
			}
			require.Equal(t, n.Left.BoundingBox.Union(n.Right.BoundingBox), n.BoundingBox)
			walk(n.Left)
			walk(n.Right)
		}
		walk(bvh.Root)
		require.Len(t, seen, 37)
	})
}

func TestBVH_DoesNotReorderInput(t *testing.T) {
	prims := randomPrimitives(20, 8)
	before := make([]Primitive, len(prims))
	copy(before, prims)

	_, err := BuildBVH(prims, 0, 1, core.NewSeededSampler(3, 0))
	require.NoError(t, err)
	require.Equal(t, before, prims)
}

func TestBVH_SameSeedSameTree(t *testing.T) {
	prims := randomPrimitives(64, 4)

	a, err := BuildBVH(prims, 0, 1, core.NewSeededSampler(21, 0))
	require.NoError(t, err)
	b, err := BuildBVH(prims, 0, 1, core.NewSeededSampler(21, 0))
	require.NoError(t, err)

	require.Equal(t, a.Root, b.Root)
}

func TestBVH_EqualDistancePrefersRightChild(t *testing.T) {
	prims := []Primitive{
		NewSphere(core.NewVec3(0, 0, -5), 1, 0),
		NewSphere(core.NewVec3(0, 0, -5), 1, 1),
	}
	bvh, err := BuildBVH(prims, 0, 1, core.NewSeededSampler(3, 0))
	require.NoError(t, err)
	require.Equal(t, 0, bvh.Root.Left.Primitive.MaterialID)
	require.Equal(t, 1, bvh.Root.Right.Primitive.MaterialID)

	hit, ok := bvh.Hit(core.NewRay(core.Zero(), core.NewVec3(0, 0, -1), 0), 0.001, math.Inf(1))
	require.True(t, ok)
	require.InDelta(t, 4.0, hit.T, 1e-9)
	require.Equal(t, 1, hit.MaterialID)
}

func TestBVH_BuildErrors(t *testing.T) {
	t.Run("empty", func(t *testing.T) {
		_, err := BuildBVH(nil, 0, 1, core.NewSeededSampler(1, 0))
		require.Error(t, err)
		require.Equal(t, ErrTypeEmptyScene, errors.Type(err))
	})

	t.Run("nan bounding box", func(t *testing.T) {
		prims := []Primitive{
			NewSphere(core.NewVec3(0, 0, 0), 1, 0),
			NewSphere(core.NewVec3(math.NaN(), math.NaN(), math.NaN()), 1, 1),
		}
		_, err := BuildBVH(prims, 0, 1, core.NewSeededSampler(1, 0))
		require.Error(t, err)
		require.Equal(t, ErrTypeNaNBoundingBox, errors.Type(err))
	})

	t.Run("single nan primitive is never compared", func(t *testing.T) {
		prims := []Primitive{NewSphere(core.NewVec3(math.NaN(), 0, 0), 1, 0)}
		_, err := BuildBVH(prims, 0, 1, core.NewSeededSampler(1, 0))
		require.NoError(t, err)
	})
}

func TestList_Hit(t *testing.T) {
	list := List{
		NewSphere(core.NewVec3(0, 0, -10), 1, 0),
		NewSphere(core.NewVec3(0, 0, -5), 1, 1),
	}
	ray := core.NewRay(core.NewVec3(0, 0, 0), core.NewVec3(0, 0, -1), 0)

	hit, ok := list.Hit(ray, 0.001, math.Inf(1))
	require.True(t, ok)
	require.Equal(t, 1, hit.MaterialID)
	require.InDelta(t, 4.0, hit.T, 1e-9)

	_, ok = List{}.Hit(ray, 0.001, math.Inf(1))
	require.False(t, ok)
}

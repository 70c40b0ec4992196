package dualmesh

import (
	"testing"

	"github.com/golang/geo/r3"
	"github.com/google/go-cmp/cmp"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func centerPipeline(t *testing.T) *FacePipeline {
	t.Helper()
	tri, err := NewTriangulation(squarePlusCenterSites())
	require.NoError(t, err)
	pipeline, err := tri.BuildDualFaces(Voronoi, 100, false)
	require.NoError(t, err)
	return pipeline
}

func TestFilterPartition(t *testing.T) {
	p := centerPipeline(t)

	all := p.ToList()
	require.Len(t, all, 5)
	hull := p.OnBounds().ToList()
	interior := p.InsideHull().ToList()

	assert.Len(t, hull, 4)
	assert.Len(t, interior, 1)
	assert.Equal(t, len(all), len(hull)+len(interior))
}

func TestFiniteIsIdempotent(t *testing.T) {
	p := centerPipeline(t)

	once := summarize(p.Finite().ToList())
	twice := summarize(p.Finite().Finite().ToList())
	assert.Empty(t, cmp.Diff(once, twice))
}

func TestAtInfinityAndFinite(t *testing.T) {
	p := centerPipeline(t)

	assert.Len(t, p.AtInfinity().ToList(), 4)
	assert.Len(t, p.Finite().ToList(), 1)
	// Hull cells of this configuration are never finite.
	assert.Empty(t, p.FiniteBounds().ToList())
}

func TestCenterCloseTo(t *testing.T) {
	p := centerPipeline(t)
	mid := r3.Vector{X: 0.5, Y: 0.5}

	assert.Len(t, p.CenterCloseTo(mid, 0.01).ToList(), 1)
	assert.Len(t, p.CenterCloseTo(mid, 10).ToList(), 5)
	assert.Empty(t, p.CenterCloseTo(r3.Vector{X: 50, Y: 50}, 1).ToList())
}

func TestCloseToChecksEveryCorner(t *testing.T) {
	p := centerPipeline(t)
	mid := r3.Vector{X: 0.5, Y: 0.5}

	// Only the interior diamond has all corners near the middle, the
	// hull cells drag their direction points along.
	faces := p.CloseTo(mid, 1).ToList()
	require.Len(t, faces, 1)
	assert.False(t, faces[0].OnBounds)
}

func TestInsideBox(t *testing.T) {
	p := centerPipeline(t)

	faces := p.Inside(r3.Vector{X: 0.5, Y: 0.5}, r3.Vector{X: 1, Y: 1, Z: 1}).ToList()
	require.Len(t, faces, 1)
	assert.False(t, faces[0].OnBounds)

	wide := p.Inside(r3.Vector{X: 0.5, Y: 0.5}, r3.Vector{X: 200, Y: 200, Z: 200}).ToList()
	assert.Len(t, wide, 5)
}

func TestForEachTransforms(t *testing.T) {
	p := centerPipeline(t)

	var centers []r3.Vector
	faces := p.ForEach(func(f Face) Face {
		centers = append(centers, f.Center())
		return f
	}).ToList()

	assert.Len(t, faces, 5)
	assert.Len(t, centers, 5)
}

func TestPipelineBranchingIsPure(t *testing.T) {
	p := centerPipeline(t)

	onlyHull := p.OnBounds()
	onlyInterior := p.InsideHull()

	// Deriving filtered pipelines leaves the parent untouched.
	assert.Len(t, p.ToList(), 5)
	assert.Len(t, onlyHull.ToList(), 4)
	assert.Len(t, onlyInterior.ToList(), 1)
}

func TestToArrayMatchesToList(t *testing.T) {
	p := centerPipeline(t)
	assert.Empty(t, cmp.Diff(summarize(p.ToList()), summarize(p.ToArray())))
}

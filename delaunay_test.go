package dualmesh

import (
	"math/rand"
	"testing"

	"github.com/golang/geo/r3"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func unitSquareSites() []r3.Vector {
	return []r3.Vector{
		{X: 1, Y: 1},
		{X: 0, Y: 0},
		{X: 1, Y: 0},
		{X: 0, Y: 1},
	}
}

func squarePlusCenterSites() []r3.Vector {
	return append(unitSquareSites(), r3.Vector{X: 0.5, Y: 0.5})
}

func randomSites(n int, seed int64) []r3.Vector {
	rnd := rand.New(rand.NewSource(seed))
	sites := make([]r3.Vector, n)
	for i := range sites {
		sites[i] = r3.Vector{X: rnd.Float64() * 100, Y: rnd.Float64() * 100}
	}
	return sites
}

// circleDet is the raw in-circle determinant, exposed for tolerance
// based checks over random inputs.
func circleDet(a, b, c, d r3.Vector) float64 {
	return (a.X*a.X+a.Y*a.Y)*triArea(b, c, d) -
		(b.X*b.X+b.Y*b.Y)*triArea(a, c, d) +
		(c.X*c.X+c.Y*c.Y)*triArea(a, b, d) -
		(d.X*d.X+d.Y*d.Y)*triArea(a, b, c)
}

func TestNewTriangulationSquare(t *testing.T) {
	tri, err := NewTriangulation(unitSquareSites())
	require.NoError(t, err)
	require.NoError(t, tri.Verify())

	hull := tri.ConvexHull()
	require.Len(t, hull, 4)
	for i := range hull {
		b := hull[(i+1)%len(hull)]
		c := hull[(i+2)%len(hull)]
		assert.True(t, triArea(hull[i], b, c) >= 0, "hull is not counter-clockwise convex")
	}
}

func TestNewTriangulationRejectsDegenerateInput(t *testing.T) {
	_, err := NewTriangulation([]r3.Vector{{X: 0, Y: 0}, {X: 1, Y: 1}})
	assert.Error(t, err)

	_, err = NewTriangulation([]r3.Vector{{X: 0, Y: 0}, {X: 1, Y: 1}, {X: 2, Y: 2}, {X: 3, Y: 3}})
	require.Error(t, err)
	assert.Contains(t, err.Error(), "collinear")

	// Duplicates collapse below three distinct sites.
	_, err = NewTriangulation([]r3.Vector{{X: 0, Y: 0}, {X: 0, Y: 0}, {X: 1, Y: 1}})
	assert.Error(t, err)
}

func TestNewTriangulationCollinearPrefix(t *testing.T) {
	// Three collinear sites first, then one off the line.
	tri, err := NewTriangulation([]r3.Vector{
		{X: 0, Y: 0},
		{X: 1, Y: 0},
		{X: 2, Y: 0},
		{X: 1, Y: 2},
	})
	require.NoError(t, err)
	require.NoError(t, tri.Verify())
	assert.Len(t, tri.ConvexHull(), 4)
}

func TestInsideConvexHull(t *testing.T) {
	tri, err := NewTriangulation(unitSquareSites())
	require.NoError(t, err)

	assert.True(t, tri.InsideConvexHull(r3.Vector{X: 0.5, Y: 0.5}))
	assert.True(t, tri.InsideConvexHull(r3.Vector{X: 0, Y: 0}))
	assert.True(t, tri.InsideConvexHull(r3.Vector{X: 0.5, Y: 0}))
	assert.False(t, tri.InsideConvexHull(r3.Vector{X: 2, Y: 2}))
	assert.False(t, tri.InsideConvexHull(r3.Vector{X: -0.1, Y: 0.5}))
}

func TestLocate(t *testing.T) {
	tri, err := NewTriangulation(unitSquareSites())
	require.NoError(t, err)
	g := tri.Mesh()

	p := r3.Vector{X: 0.25, Y: 0.25}
	e, err := tri.Locate(p, EmptyEdge, false)
	require.NoError(t, err)
	require.True(t, e.Valid())
	// The walk stops at an edge p does not lie right of.
	assert.False(t, rightOf(p, g.Pos(g.Origin(e)), g.Pos(g.Dest(e))))

	// Locating a site lands on one of its edges.
	e, err = tri.Locate(r3.Vector{X: 1, Y: 1}, EmptyEdge, false)
	require.NoError(t, err)
	one := r3.Vector{X: 1, Y: 1}
	assert.True(t, equal2D(one, g.Pos(g.Origin(e))) || equal2D(one, g.Pos(g.Dest(e))))
}

func TestLocateSafeOutsideHull(t *testing.T) {
	tri, err := NewTriangulation(unitSquareSites())
	require.NoError(t, err)

	_, err = tri.Locate(r3.Vector{X: 5, Y: 5}, EmptyEdge, true)
	require.Error(t, err)
	assert.Contains(t, err.Error(), "outside the convex hull")
}

func TestInsertInterior(t *testing.T) {
	tri, err := NewTriangulation(unitSquareSites())
	require.NoError(t, err)

	ok, err := tri.Insert(r3.Vector{X: 0.3, Y: 0.4}, EmptyEdge, true)
	require.NoError(t, err)
	assert.True(t, ok)
	require.NoError(t, tri.Verify())
	assert.Len(t, tri.ConvexHull(), 4)
}

func TestInsertOnInteriorEdge(t *testing.T) {
	tri, err := NewTriangulation(unitSquareSites())
	require.NoError(t, err)

	// The square center lies exactly on the diagonal.
	ok, err := tri.Insert(r3.Vector{X: 0.5, Y: 0.5}, EmptyEdge, true)
	require.NoError(t, err)
	assert.True(t, ok)
	require.NoError(t, tri.Verify())

	live := 0
	g := tri.Mesh()
	for base := 0; base < len(g.Edges); base += 4 {
		if !g.IsDeleted(EdgeIndex(base)) {
			live++
		}
	}
	// Four hull edges plus four spokes to the center.
	assert.Equal(t, 8, live)
}

func TestInsertDuplicateSite(t *testing.T) {
	tri, err := NewTriangulation(unitSquareSites())
	require.NoError(t, err)

	ok, err := tri.Insert(r3.Vector{X: 1, Y: 1}, EmptyEdge, true)
	require.NoError(t, err)
	assert.False(t, ok)
}

func TestInsertOnHullEdgeFails(t *testing.T) {
	tri, err := NewTriangulation(unitSquareSites())
	require.NoError(t, err)

	_, err = tri.Insert(r3.Vector{X: 0.5, Y: 0}, EmptyEdge, true)
	require.Error(t, err)
	assert.Contains(t, err.Error(), "hull boundary edge")
}

func TestInsertSafeOutsideHull(t *testing.T) {
	tri, err := NewTriangulation(unitSquareSites())
	require.NoError(t, err)

	_, err = tri.Insert(r3.Vector{X: 5, Y: 5}, EmptyEdge, true)
	require.Error(t, err)
	assert.Contains(t, err.Error(), "outside the convex hull")
}

func TestClosestBoundingEdge(t *testing.T) {
	tri, err := NewTriangulation(unitSquareSites())
	require.NoError(t, err)
	g := tri.Mesh()

	e := tri.ClosestBoundingEdge(r3.Vector{X: 0.5, Y: -1})
	require.True(t, e.Valid())
	ends := map[float64]bool{g.Pos(g.Origin(e)).Y: true, g.Pos(g.Dest(e)).Y: true}
	assert.True(t, ends[0.0] && len(ends) == 1, "closest edge should be the bottom hull edge")
}

func TestRandomTriangulationIsDelaunay(t *testing.T) {
	tri, err := NewTriangulation(randomSites(100, 7))
	require.NoError(t, err)
	require.NoError(t, tri.Verify())
	g := tri.Mesh()

	for base := 0; base < len(g.Edges); base += 4 {
		e := EdgeIndex(base)
		if g.IsDeleted(e) {
			continue
		}
		org := g.Pos(g.Origin(e))
		dest := g.Pos(g.Dest(e))
		left := g.Pos(g.Dest(g.Lnext(e)))
		right := g.Pos(g.Dest(g.Oprev(e)))
		if !ccw(org, dest, left) || !ccw(dest, org, right) {
			// One side is the unbounded face.
			continue
		}
		assert.LessOrEqual(t, circleDet(org, dest, left, right), 1e-2,
			"edge %d violates the empty-circle property", e)
	}
}

func TestGrowingTriangulationByInsertion(t *testing.T) {
	tri, err := NewTriangulation(randomSites(40, 11))
	require.NoError(t, err)

	rnd := rand.New(rand.NewSource(13))
	inserted := 0
	for i := 0; i < 40; i++ {
		p := r3.Vector{X: 10 + rnd.Float64()*80, Y: 10 + rnd.Float64()*80}
		if !tri.InsideConvexHull(p) {
			continue
		}
		ok, err := tri.Insert(p, EmptyEdge, true)
		if err != nil {
			// Landed on a hull boundary edge, skip it.
			continue
		}
		if ok {
			inserted++
		}
	}
	assert.Greater(t, inserted, 0)
	require.NoError(t, tri.Verify())
}

func TestGraphString(t *testing.T) {
	tri, err := NewTriangulation(unitSquareSites())
	require.NoError(t, err)

	s := tri.Mesh().String()
	assert.Contains(t, s, "Vertices")
	assert.Contains(t, s, "Edges")
}

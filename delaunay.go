// Package dualmesh builds planar Delaunay triangulations over a
// quad-edge arena and extracts their dual (Voronoi-style) faces lazily,
// with synthesized direction points closing the unbounded cells.
package dualmesh

import (
	"math"
	"math/rand"

	"github.com/golang/geo/r2"
	"github.com/golang/geo/r3"
	"github.com/pkg/errors"
)

type Triangulation struct {
	mesh *Graph

	// Canonical hull edge. The unbounded face lies on its left and
	// following Lnext walks the hull clockwise.
	hullEdge EdgeIndex

	// Vertices below this index are sites, everything above is a cached
	// dual vertex.
	siteCount int

	// Bumped on every successful insertion, invalidates the dual cache.
	revision uint64

	dualBuilt    bool
	dualKind     StrategyKind
	dualUseZ     bool
	dualRadius   float64
	dualRevision uint64
}

type ConvexHull []r3.Vector

// Custom and short quicksort from Stackoverflow... https://stackoverflow.com/questions/23276417/golang-custom-sort-is-faster-than-native-sort
func qsortPositions(a []r3.Vector) []r3.Vector {
	if len(a) < 2 {
		return a
	}

	left, right := 0, len(a)-1

	// Pick a pivot
	pivotIndex := rand.Int() % len(a)

	// Move the pivot to the right
	a[pivotIndex], a[right] = a[right], a[pivotIndex]

	// Pile elements smaller than the pivot on the left
	for i := range a {
		if lexSmaller(&a[i], &a[right]) {
			a[i], a[left] = a[left], a[i]
			left++
		}
	}

	// Place the pivot after the last smaller element
	a[left], a[right] = a[right], a[left]

	// Go down the rabbit hole
	qsortPositions(a[:left])
	qsortPositions(a[left+1:])

	return a
}

func lexSmaller(a, b *r3.Vector) bool {
	if math.Abs(a.X-b.X) >= EPS {
		return a.X < b.X
	}
	return a.Y < b.Y
}

// NewTriangulation triangulates the given sites. Points are handled in
// lexicographic order, so every site is added outside the hull built so
// far and only the hull has to be extended. Duplicate sites collapse to
// one, fully collinear input has no triangle and is rejected.
func NewTriangulation(points []r3.Vector) (*Triangulation, error) {
	if len(points) < 3 {
		return nil, errors.Errorf("need at least three points, got %d", len(points))
	}

	pts := make([]r3.Vector, len(points))
	copy(pts, points)
	qsortPositions(pts)

	unique := pts[:1]
	for _, p := range pts[1:] {
		if !equal2D(p, unique[len(unique)-1]) {
			unique = append(unique, p)
		}
	}
	if len(unique) < 3 {
		return nil, errors.Errorf("need at least three distinct points, got %d", len(unique))
	}

	g := &Graph{
		Edges:    make([]QEdge, 0, 12*len(unique)),
		Vertices: make([]Vertex, 0, 4*len(unique)),
	}
	t := &Triangulation{mesh: g}

	v0 := g.CreateVertex(unique[0], false)
	v1 := g.CreateVertex(unique[1], false)
	e := g.MakeEdge()
	g.SetOrigin(e, v0)
	g.SetOrigin(e.Sym(), v1)
	t.hullEdge = e

	chain := true
	chainLast := e
	for _, p := range unique[2:] {
		if chain && math.Abs(triArea(unique[0], unique[1], p)) <= EPS {
			// Still collinear with the seed edge, grow the chain.
			vp := g.CreateVertex(p, false)
			ne := g.MakeEdge()
			g.SetOrigin(ne, g.Dest(chainLast))
			g.SetOrigin(ne.Sym(), vp)
			g.Splice(ne, chainLast.Sym())
			chainLast = ne
			continue
		}
		chain = false
		t.extendHull(p)
	}
	if chain {
		return nil, errors.New("all input points are collinear")
	}

	t.siteCount = len(g.Vertices)
	return t, nil
}

// extendHull adds a site lying outside the current hull: connect it to
// every hull vertex it can see and restore the Delaunay property along
// the swallowed boundary chain.
func (t *Triangulation) extendHull(p r3.Vector) {
	g := t.mesh

	visible := func(h EdgeIndex) bool {
		return triArea(g.Pos(g.Origin(h)), g.Pos(g.Dest(h)), p) > EPS
	}

	h := t.hullEdge
	for guard := 0; !visible(h); guard++ {
		h = g.Lnext(h)
		if guard > len(g.Edges) {
			panic("dualmesh: no hull edge visible from new site")
		}
	}
	first, last := h, h
	for visible(g.Lprev(first)) {
		first = g.Lprev(first)
	}
	for visible(g.Lnext(last)) {
		last = g.Lnext(last)
	}

	vp := g.CreateVertex(p, false)
	base := g.MakeEdge()
	g.SetOrigin(base, g.Origin(first))
	g.SetOrigin(base.Sym(), vp)
	g.Splice(base, first)
	start := base

	e := first
	for {
		base = g.Connect(e, base.Sym())
		if e == last {
			break
		}
		e = g.Oprev(base)
	}
	t.hullEdge = base.Sym()

	t.legalize(last, start, p)
}

// legalize runs the swap loop over the link edges opposite the freshly
// connected site, starting at e and ending once the fan around start is
// exhausted.
func (t *Triangulation) legalize(e, start EdgeIndex, p r3.Vector) {
	g := t.mesh
	for {
		x := g.Oprev(e)
		far := g.Pos(g.Dest(x))
		if rightOf(far, g.Pos(g.Origin(e)), g.Pos(g.Dest(e))) &&
			inCircle(g.Pos(g.Origin(e)), far, g.Pos(g.Dest(e)), p) {
			g.Swap(e)
			e = g.Oprev(e)
		} else if g.Onext(e) == start {
			return
		} else {
			e = g.Lprev(g.Onext(e))
		}
	}
}

func rightOf(x, org, dest r3.Vector) bool {
	return ccw(x, dest, org)
}

// Locate finds an edge of the triangle containing p, or an edge p lies
// on, using the Guibas-Stolfi walking search. With safe=false a position
// outside the convex hull makes the walk loop forever; passing safe=true
// trades a hull check for a proper error instead.
func (t *Triangulation) Locate(p r3.Vector, start EdgeIndex, safe bool) (EdgeIndex, error) {
	if safe && !t.InsideConvexHull(p) {
		return EmptyEdge, errors.Errorf("position (%v, %v) lies outside the convex hull", p.X, p.Y)
	}
	g := t.mesh
	e := start
	if !e.Valid() {
		e = t.hullEdge.Sym()
	}
	for {
		if equal2D(p, g.Pos(g.Origin(e))) || equal2D(p, g.Pos(g.Dest(e))) {
			return e, nil
		}
		if rightOf(p, g.Pos(g.Origin(e)), g.Pos(g.Dest(e))) {
			e = e.Sym()
		} else if !rightOf(p, g.Pos(g.Origin(g.Onext(e))), g.Pos(g.Dest(g.Onext(e)))) {
			e = g.Onext(e)
		} else if !rightOf(p, g.Pos(g.Origin(g.Dprev(e))), g.Pos(g.Dest(g.Dprev(e)))) {
			e = g.Dprev(e)
		} else {
			return e, nil
		}
	}
}

// rightFaceIsOuter reports whether the face right of e is the unbounded
// face, by orienting e against the apex reached through Oprev.
func (t *Triangulation) rightFaceIsOuter(e EdgeIndex) bool {
	g := t.mesh
	return triArea(g.Pos(g.Origin(e)), g.Pos(g.Dest(e)), g.Pos(g.Dest(g.Oprev(e)))) >= 0
}

func (t *Triangulation) isHullEdge(e EdgeIndex) bool {
	return t.rightFaceIsOuter(e) || t.rightFaceIsOuter(e.Sym())
}

// Insert adds one interior site to an existing triangulation. It returns
// false without error when the site already exists. Sites on a hull
// boundary edge are rejected, removing such an edge would tear the hull
// open. The safe flag has the same meaning as for Locate.
func (t *Triangulation) Insert(p r3.Vector, start EdgeIndex, safe bool) (bool, error) {
	g := t.mesh
	if safe && !t.InsideConvexHull(p) {
		return false, errors.Errorf("position (%v, %v) lies outside the convex hull", p.X, p.Y)
	}
	e, err := t.Locate(p, start, false)
	if err != nil {
		return false, err
	}
	if equal2D(p, g.Pos(g.Origin(e))) || equal2D(p, g.Pos(g.Dest(e))) {
		return false, nil
	}
	if onEdge(p, g.Pos(g.Origin(e)), g.Pos(g.Dest(e))) {
		if t.isHullEdge(e) {
			return false, errors.Errorf("position (%v, %v) lies on a hull boundary edge", p.X, p.Y)
		}
		e = g.Oprev(e)
		g.DeleteEdge(g.Onext(e))
	}

	t.resetDualCache()
	vp := g.CreateVertex(p, false)
	t.siteCount = len(g.Vertices)

	base := g.MakeEdge()
	g.SetOrigin(base, g.Origin(e))
	g.SetOrigin(base.Sym(), vp)
	g.Splice(base, e)
	startE := base
	for {
		base = g.Connect(e, base.Sym())
		e = g.Oprev(base)
		if g.Lnext(e) == startE {
			break
		}
	}
	t.legalize(e, startE, p)

	t.revision++
	return true, nil
}

// InsideConvexHull reports whether p lies inside or on the hull boundary.
func (t *Triangulation) InsideConvexHull(p r3.Vector) bool {
	g := t.mesh
	ring := g.LeftEdges(t.hullEdge)
	for h, ok := ring.Next(); ok; h, ok = ring.Next() {
		if triArea(g.Pos(g.Origin(h)), g.Pos(g.Dest(h)), p) > EPS {
			return false
		}
	}
	return true
}

// ClosestBoundingEdge returns the hull edge closest to p, or EmptyEdge
// for an empty graph.
func (t *Triangulation) ClosestBoundingEdge(p r3.Vector) EdgeIndex {
	g := t.mesh
	if len(g.Edges) == 0 {
		return EmptyEdge
	}
	best := EmptyEdge
	bestDist := math.Inf(1)
	ring := g.LeftEdges(t.hullEdge)
	for h, ok := ring.Next(); ok; h, ok = ring.Next() {
		d := segmentDistance2D(p, g.Pos(g.Origin(h)), g.Pos(g.Dest(h)))
		if d < bestDist {
			bestDist = d
			best = h
		}
	}
	return best
}

func segmentDistance2D(p, a, b r3.Vector) float64 {
	pa := r2.Point{X: p.X - a.X, Y: p.Y - a.Y}
	ba := r2.Point{X: b.X - a.X, Y: b.Y - a.Y}
	l2 := ba.Dot(ba)
	if l2 < EPS {
		return pa.Norm()
	}
	f := pa.Dot(ba) / l2
	if f < 0 {
		f = 0
	} else if f > 1 {
		f = 1
	}
	return pa.Sub(ba.Mul(f)).Norm()
}

// ConvexHull returns the hull sites in counter-clockwise order.
func (t *Triangulation) ConvexHull() ConvexHull {
	g := t.mesh
	var hull ConvexHull
	ring := g.LeftEdges(t.hullEdge)
	for h, ok := ring.Next(); ok; h, ok = ring.Next() {
		hull = append(hull, g.Pos(g.Origin(h)))
	}
	// The walk along the unbounded face is clockwise.
	for i, j := 0, len(hull)-1; i < j; i, j = i+1, j-1 {
		hull[i], hull[j] = hull[j], hull[i]
	}
	return hull
}

// Mesh exposes the underlying quad-edge graph.
func (t *Triangulation) Mesh() *Graph {
	return t.mesh
}

// Verify checks the arena invariants plus the hull ring.
func (t *Triangulation) Verify() error {
	if err := t.mesh.Verify(); err != nil {
		return err
	}
	g := t.mesh
	count := 0
	ring := g.LeftEdges(t.hullEdge)
	for h, ok := ring.Next(); ok; h, ok = ring.Next() {
		if !t.rightFaceIsOuter(h.Sym()) {
			return errors.Errorf("hull ring edge %d does not border the unbounded face", h)
		}
		if count++; count > len(g.Edges) {
			return errors.New("hull ring does not close")
		}
	}
	return nil
}

// resetDualCache drops every cached dual vertex: the dual slot of each
// live bundle is cleared and the vertex arena is truncated back to the
// sites.
func (t *Triangulation) resetDualCache() {
	g := t.mesh
	for base := 0; base < len(g.Edges); base += 4 {
		if g.Edges[base].ENext == EmptyEdge {
			continue
		}
		g.Edges[base+1].VOrigin = EmptyVertex
		g.Edges[base+3].VOrigin = EmptyVertex
	}
	g.Vertices = g.Vertices[:t.siteCount]
	t.dualBuilt = false
}

package dualmesh

import (
	"fmt"

	"github.com/golang/geo/r2"
	"github.com/golang/geo/r3"
)

// Face is one dual cell, identified by a representative boundary edge
// whose origin is the generating site. It is a value wrapper around the
// graph, no positions are copied.
type Face struct {
	t    *Triangulation
	Edge EdgeIndex

	// The cell belongs to a convex-hull site.
	OnBounds bool
	// The cell touches the unbounded region and carries at least one
	// synthesized direction point.
	Reconstructed bool
}

// Center returns the position of the generating site.
func (f Face) Center() r3.Vector {
	return f.t.mesh.Pos(f.t.mesh.Origin(f.Edge))
}

// Bounds returns the cell polygon in counter-clockwise order. For every
// spoke around the site the dual vertex of its right face is appended;
// hull spokes additionally contribute their own direction point, closing
// the unbounded cell.
func (f Face) Bounds() []r3.Vector {
	g := f.t.mesh
	var out []r3.Vector
	x := f.Edge
	for {
		if v := g.Edges[x.Rot()].VOrigin; v.Valid() {
			out = append(out, g.Vertices[v].Pos)
		}
		if v := g.Edges[x.InvRot()].VOrigin; v.Valid() && g.Vertices[v].AtInfinity {
			out = append(out, g.Vertices[v].Pos)
		}
		x = g.Onext(x)
		if x == f.Edge {
			break
		}
	}
	return out
}

func (f Face) String() string {
	c := f.Center()
	return fmt.Sprintf("(center: (%.2f, %.2f), bounds: %v, rec: %v)", c.X, c.Y, f.OnBounds, f.Reconstructed)
}

// BuildDualFaces assembles the dual faces of the triangulation under the
// selected center strategy. The radius must be large enough that the
// synthesized direction points land outside every finite dual vertex;
// this is not validated. An unknown selector fails before any traversal.
func (t *Triangulation) BuildDualFaces(kind StrategyKind, radius float64, useZCoordinate bool) (*FacePipeline, error) {
	strategy, err := NewCenterStrategy(kind, useZCoordinate)
	if err != nil {
		return nil, err
	}
	if !t.dualBuilt || t.dualKind != kind || t.dualUseZ != useZCoordinate ||
		t.dualRadius != radius || t.dualRevision != t.revision {
		t.resetDualCache()
		t.dualBuilt = true
		t.dualKind = kind
		t.dualUseZ = useZCoordinate
		t.dualRadius = radius
		t.dualRevision = t.revision
	}
	return t.newFacePipeline(strategy, radius), nil
}

// BuildDualFacesWith is the raw variant taking a caller-supplied
// strategy. Previously cached dual vertices are always dropped, there is
// no way to tell two custom strategies apart.
func (t *Triangulation) BuildDualFacesWith(strategy CenterStrategy, radius float64) *FacePipeline {
	t.resetDualCache()
	return t.newFacePipeline(strategy, radius)
}

func (t *Triangulation) newFacePipeline(strategy CenterStrategy, radius float64) *FacePipeline {
	return &FacePipeline{
		source: func() *dualIterator {
			return newDualIterator(t, strategy, radius)
		},
	}
}

// dualIterator produces the dual faces one pull at a time: first the
// hull cells along the unbounded face, then the interior cells in BFS
// order over the FIFO frontier. Dual vertices are computed lazily the
// first time a cell touching them is pulled and shared through origin
// ring propagation, so co-located corners are bit-for-bit identical.
//
// Visitation runs one epoch above the graph's committed generation.
// Draining the iterator commits the epoch; abandoning it half-way leaves
// the epoch uncommitted and a second traversal before that is undefined,
// as is mutating the triangulation while the iterator is open.
type dualIterator struct {
	t        *Triangulation
	g        *Graph
	strategy CenterStrategy
	radius   float64
	gen      uint32

	hullStart EdgeIndex
	hullCur   EdgeIndex
	hullDone  bool
	queue     *EdgeQueue
	// Twin edges enqueued off a hull-site ring.
	onBounds map[EdgeIndex]bool
	finished bool
}

func newDualIterator(t *Triangulation, strategy CenterStrategy, radius float64) *dualIterator {
	return &dualIterator{
		t:         t,
		g:         t.mesh,
		strategy:  strategy,
		radius:    radius,
		gen:       t.mesh.generation + 1,
		hullStart: t.hullEdge,
		hullCur:   t.hullEdge,
		queue:     NewEdgeQueue(64),
		onBounds:  make(map[EdgeIndex]bool),
	}
}

// Next advances the traversal by exactly one cell.
func (it *dualIterator) Next() (Face, bool) {
	if it.finished {
		return Face{}, false
	}
	if !it.hullDone {
		h := it.hullCur
		it.processHullEdge(h)
		it.hullCur = it.g.Lnext(h)
		if it.hullCur == it.hullStart {
			it.hullDone = true
		}
		return Face{t: it.t, Edge: h, OnBounds: true, Reconstructed: true}, true
	}
	for {
		x, ok := it.queue.Pop()
		if !ok {
			// Commit the epoch so the next traversal starts clean.
			it.g.generation = it.gen
			it.finished = true
			return Face{}, false
		}
		if it.g.visited(x, it.gen) {
			continue
		}
		it.processRing(x, false)
		return Face{t: it.t, Edge: x, OnBounds: it.onBounds[x], Reconstructed: false}, true
	}
}

// processHullEdge completes the cell of the hull edge's origin site. The
// direction point off the hull edge itself sits in the dual-destination
// slot and is deliberately not ring propagated: the ring of that slot is
// the whole unbounded face, which must not collapse to one position.
func (it *dualIterator) processHullEdge(h EdgeIndex) {
	g := it.g
	if !g.Edges[h.InvRot()].VOrigin.Valid() {
		v := g.CreateVertex(it.constructAtInfinity(h.Sym()), true)
		g.setOriginLocal(h.InvRot(), v)
	}
	it.processRing(h, true)
}

// processRing walks the origin ring of start clockwise, fills in every
// missing dual origin, enqueues unvisited twins and flips the tags.
func (it *dualIterator) processRing(start EdgeIndex, hullPass bool) {
	g := it.g
	x := start
	for {
		if !g.Edges[x.Rot()].VOrigin.Valid() {
			if hullPass && it.t.rightFaceIsOuter(x) {
				// Boundary spoke, its right face is unbounded.
				v := g.CreateVertex(it.constructAtInfinity(x), true)
				g.setOriginLocal(x.Rot(), v)
			} else {
				a := g.Pos(g.Origin(x))
				b := g.Pos(g.Dest(x))
				c := g.Pos(g.Dest(g.Oprev(x)))
				v := g.CreateVertex(it.strategy.Compute(a, b, c), false)
				g.SetOrigin(x.Rot(), v)
			}
		}
		s := x.Sym()
		if !g.visited(s, it.gen) {
			it.queue.Push(s)
			if hullPass && (x == start || it.t.rightFaceIsOuter(x)) {
				it.onBounds[s] = true
			}
		}
		g.markVisited(x, it.gen)
		x = g.Oprev(x)
		if x == start {
			return
		}
	}
}

// constructAtInfinity synthesizes the direction point for a boundary
// edge p whose right face is unbounded. The anchor is the finite dual
// vertex of the triangle left of p, computed on demand; the point sits
// at distance radius from the anchor along the hull's outward normal,
// strictly right of p.
func (it *dualIterator) constructAtInfinity(p EdgeIndex) r3.Vector {
	g := it.g
	anchor := p.InvRot()
	if !g.Edges[anchor].VOrigin.Valid() {
		a := g.Pos(g.Origin(p))
		b := g.Pos(g.Dest(p))
		c := g.Pos(g.Dest(g.Onext(p)))
		v := g.CreateVertex(it.strategy.Compute(a, b, c), false)
		g.SetOrigin(anchor, v)
	}
	cc := g.Pos(g.Edges[anchor].VOrigin)

	org := g.Pos(g.Origin(p))
	dst := g.Pos(g.Dest(p))
	tangent := r2.Point{X: dst.X - org.X, Y: dst.Y - org.Y}
	off := tangent.Normalize().Mul(it.radius).Ortho()

	cand := r3.Vector{X: cc.X + off.X, Y: cc.Y + off.Y, Z: cc.Z}
	if !rightOf(cand, org, dst) {
		cand = r3.Vector{X: cc.X - off.X, Y: cc.Y - off.Y, Z: cc.Z}
	}
	return cand
}

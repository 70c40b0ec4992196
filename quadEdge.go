package dualmesh

import (
	"fmt"

	"github.com/golang/geo/r3"
	"github.com/pkg/errors"
)

// Just to make the code more readable.
type EdgeIndex int
type VertexIndex int

var EmptyEdge = EdgeIndex(-1)
var EmptyVertex = VertexIndex(-1)

/**
 * All edges and vertices are kept in flat, append-only slices.
 * References between them are indices into the corresponding slices.
 *
 * A quad-edge bundle occupies four consecutive edge slots: the directed
 * edge, its rotated dual, the reversed edge and the reversed dual.
 * Rot/Sym/InvRot therefore reduce to index arithmetic within the bundle
 * and edge identity is plain integer equality.
 */

type Vertex struct {
	Pos r3.Vector
	// Synthesized direction marker for unbounded dual cells.
	AtInfinity bool
}

type QEdge struct {
	// Next edge counter-clockwise around the origin. EmptyEdge marks a
	// deleted bundle slot.
	ENext   EdgeIndex
	VOrigin VertexIndex
	// Visitation epoch, see Graph.generation.
	Gen uint32
}

type Graph struct {
	Edges    []QEdge
	Vertices []Vertex

	// Epoch of the last completed traversal. An edge counts as visited
	// when its Gen equals the epoch of the running traversal.
	generation uint32
}

func (v VertexIndex) Valid() bool {
	return v != EmptyVertex
}

func (e EdgeIndex) Valid() bool {
	return e != EmptyEdge
}

// Rot rotates 90 degrees counter-clockwise onto the dual edge. Its origin
// is the dual vertex of the face right of e.
func (e EdgeIndex) Rot() EdgeIndex {
	return e&^3 | (e+1)&3
}

// Sym is the same edge in the opposite direction.
func (e EdgeIndex) Sym() EdgeIndex {
	return e&^3 | (e+2)&3
}

// InvRot undoes Rot. Its origin is the dual vertex of the face left of e.
func (e EdgeIndex) InvRot() EdgeIndex {
	return e&^3 | (e+3)&3
}

func (g *Graph) Onext(e EdgeIndex) EdgeIndex {
	return g.Edges[e].ENext
}

func (g *Graph) Oprev(e EdgeIndex) EdgeIndex {
	return g.Edges[e.Rot()].ENext.Rot()
}

// Lnext walks the boundary of the face left of e.
func (g *Graph) Lnext(e EdgeIndex) EdgeIndex {
	return g.Edges[e.InvRot()].ENext.Rot()
}

func (g *Graph) Lprev(e EdgeIndex) EdgeIndex {
	return g.Edges[e].ENext.Sym()
}

func (g *Graph) Dprev(e EdgeIndex) EdgeIndex {
	return g.Edges[e.InvRot()].ENext.InvRot()
}

func (g *Graph) Origin(e EdgeIndex) VertexIndex {
	return g.Edges[e].VOrigin
}

func (g *Graph) Dest(e EdgeIndex) VertexIndex {
	return g.Edges[e.Sym()].VOrigin
}

func (g *Graph) Pos(v VertexIndex) r3.Vector {
	return g.Vertices[v].Pos
}

func (g *Graph) CreateVertex(pos r3.Vector, atInfinity bool) VertexIndex {
	g.Vertices = append(g.Vertices, Vertex{Pos: pos, AtInfinity: atInfinity})
	return VertexIndex(len(g.Vertices) - 1)
}

// MakeEdge appends a fresh, isolated quad-edge bundle and returns its
// canonical directed edge. The origin rings are initialized so that the
// primal edge is alone in its ring and the two dual slots form a two-cycle.
func (g *Graph) MakeEdge() EdgeIndex {
	base := EdgeIndex(len(g.Edges))
	g.Edges = append(g.Edges,
		QEdge{ENext: base, VOrigin: EmptyVertex},
		QEdge{ENext: base + 3, VOrigin: EmptyVertex},
		QEdge{ENext: base + 2, VOrigin: EmptyVertex},
		QEdge{ENext: base + 1, VOrigin: EmptyVertex},
	)
	return base
}

// Splice is the single topological operator of Guibas and Stolfi: it
// splits or joins the two origin rings at a and b and, through the dual
// slots, the corresponding face rings.
func (g *Graph) Splice(a, b EdgeIndex) {
	alpha := g.Onext(a).Rot()
	beta := g.Onext(b).Rot()
	g.Edges[a].ENext, g.Edges[b].ENext = g.Onext(b), g.Onext(a)
	g.Edges[alpha].ENext, g.Edges[beta].ENext = g.Onext(beta), g.Onext(alpha)
}

// SetOrigin assigns the origin vertex of e and propagates it around the
// whole origin ring, so every edge sharing the ring refers to the
// identical vertex slot.
func (g *Graph) SetOrigin(e EdgeIndex, v VertexIndex) {
	g.Edges[e].VOrigin = v
	for x := g.Onext(e); x != e; x = g.Onext(x) {
		g.Edges[x].VOrigin = v
	}
}

// setOriginLocal assigns only the one edge slot. Needed for synthesized
// at-infinity vertices, whose ring (the unbounded face) must not share a
// single position.
func (g *Graph) setOriginLocal(e EdgeIndex, v VertexIndex) {
	g.Edges[e].VOrigin = v
}

// Connect adds an edge from Dest(a) to Origin(b) such that a, the new
// edge and b share the same left face.
func (g *Graph) Connect(a, b EdgeIndex) EdgeIndex {
	e := g.MakeEdge()
	g.SetOrigin(e, g.Dest(a))
	g.SetOrigin(e.Sym(), g.Origin(b))
	g.Splice(e, g.Lnext(a))
	g.Splice(e.Sym(), b)
	return e
}

// DeleteEdge disconnects e from the graph and marks its bundle dead.
func (g *Graph) DeleteEdge(e EdgeIndex) {
	g.Splice(e, g.Oprev(e))
	g.Splice(e.Sym(), g.Oprev(e.Sym()))
	base := e &^ 3
	for k := EdgeIndex(0); k < 4; k++ {
		g.Edges[base+k] = QEdge{ENext: EmptyEdge, VOrigin: EmptyVertex}
	}
}

func (g *Graph) IsDeleted(e EdgeIndex) bool {
	return g.Edges[e].ENext == EmptyEdge
}

// Swap rotates e inside its enclosing quadrilateral, replacing one
// diagonal with the other.
func (g *Graph) Swap(e EdgeIndex) {
	a := g.Oprev(e)
	b := g.Oprev(e.Sym())
	g.Splice(e, a)
	g.Splice(e.Sym(), b)
	g.Splice(e, g.Lnext(a))
	g.Splice(e.Sym(), g.Lnext(b))
	g.SetOrigin(e, g.Dest(a))
	g.SetOrigin(e.Sym(), g.Dest(b))
}

// EdgeRing walks a closed ring of edges, one step per Next call.
type EdgeRing struct {
	step    func(EdgeIndex) EdgeIndex
	start   EdgeIndex
	cur     EdgeIndex
	started bool
}

func (r *EdgeRing) Next() (EdgeIndex, bool) {
	if r.started && r.cur == r.start {
		return EmptyEdge, false
	}
	e := r.cur
	r.started = true
	r.cur = r.step(e)
	return e, true
}

// EdgesFrom iterates the edges sharing the origin of e, counter-clockwise
// by default or clockwise when reversed.
func (g *Graph) EdgesFrom(e EdgeIndex, clockwise bool) *EdgeRing {
	step := g.Onext
	if clockwise {
		step = g.Oprev
	}
	return &EdgeRing{step: step, start: e, cur: e}
}

// LeftEdges iterates the boundary of the face left of e.
func (g *Graph) LeftEdges(e EdgeIndex) *EdgeRing {
	return &EdgeRing{step: g.Lnext, start: e, cur: e}
}

// Verify checks the structural invariants of the arena: bundle slots are
// live or dead as a whole, Onext references stay inside the arena and are
// invertible, and every primal origin ring agrees on one vertex.
func (g *Graph) Verify() error {
	for base := 0; base < len(g.Edges); base += 4 {
		if g.Edges[base].ENext == EmptyEdge {
			for k := 1; k < 4; k++ {
				if g.Edges[base+k].ENext != EmptyEdge {
					return errors.Errorf("bundle %d is deleted but slot %d is still live", base, base+k)
				}
			}
			continue
		}
		for k := 0; k < 4; k++ {
			e := EdgeIndex(base + k)
			next := g.Edges[e].ENext
			if next < 0 || int(next) >= len(g.Edges) {
				return errors.Errorf("edge %d has out-of-range next edge %d", e, next)
			}
			if g.Edges[next].ENext == EmptyEdge {
				return errors.Errorf("edge %d points at deleted edge %d", e, next)
			}
			if g.Oprev(next) != e {
				return errors.Errorf("edge %d is not the oprev of its onext %d", e, next)
			}
		}
		for _, e := range []EdgeIndex{EdgeIndex(base), EdgeIndex(base + 2)} {
			v := g.Edges[e].VOrigin
			if v == EmptyVertex {
				return errors.Errorf("primal edge %d has no origin vertex", e)
			}
			if int(v) >= len(g.Vertices) {
				return errors.Errorf("primal edge %d has out-of-range origin %d", e, v)
			}
			count := 0
			for x := g.Onext(e); x != e; x = g.Onext(x) {
				if g.Edges[x].VOrigin != v {
					return errors.Errorf("origin ring of edge %d disagrees: edge %d has origin %d, want %d", e, x, g.Edges[x].VOrigin, v)
				}
				if count++; count > len(g.Edges) {
					return errors.Errorf("origin ring of edge %d does not close", e)
				}
			}
		}
	}
	return nil
}

func (g *Graph) visited(e EdgeIndex, gen uint32) bool {
	return g.Edges[e].Gen == gen
}

func (g *Graph) markVisited(e EdgeIndex, gen uint32) {
	g.Edges[e].Gen = gen
}

func (v Vertex) String() string {
	if v.AtInfinity {
		return fmt.Sprintf("(%.2f, %.2f, inf)", v.Pos.X, v.Pos.Y)
	}
	return fmt.Sprintf("(%.2f, %.2f)", v.Pos.X, v.Pos.Y)
}

func (e QEdge) String() string {
	return fmt.Sprintf("(o: %3d, n: %3d)", e.VOrigin, e.ENext)
}

func (g *Graph) String() string {
	s := "Vertices: \n"
	for i, v := range g.Vertices {
		s += fmt.Sprintf("    %2d: %v\n", i, v)
	}
	s += "\nEdges: \n"
	for i, e := range g.Edges {
		if e.ENext != EmptyEdge {
			s += fmt.Sprintf("    %2d: %v\n", i, e)
		}
	}
	return s
}

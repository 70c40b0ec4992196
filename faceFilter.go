package dualmesh

import (
	"math"

	"github.com/golang/geo/r3"
)

// FacePipeline is a fluent, pure chain of transforms and predicate
// filters over the lazily produced dual faces. Every chaining call
// returns a new pipeline with a copied stage list, so pipelines can be
// branched and re-used freely. Terminal operations restart the face
// source, nothing is mutated on the graph beyond the lazy dual-vertex
// computation of the traversal itself.
type FacePipeline struct {
	source func() *dualIterator
	stages []func(Face) (Face, bool)
}

func (p *FacePipeline) with(stage func(Face) (Face, bool)) *FacePipeline {
	stages := make([]func(Face) (Face, bool), len(p.stages), len(p.stages)+1)
	copy(stages, p.stages)
	return &FacePipeline{source: p.source, stages: append(stages, stage)}
}

func (p *FacePipeline) filter(pred func(Face) bool) *FacePipeline {
	return p.with(func(f Face) (Face, bool) {
		return f, pred(f)
	})
}

// ForEach applies transform to every face passing the stages so far.
func (p *FacePipeline) ForEach(transform func(Face) Face) *FacePipeline {
	return p.with(func(f Face) (Face, bool) {
		return transform(f), true
	})
}

// AtInfinity keeps the faces touching the unbounded region.
func (p *FacePipeline) AtInfinity() *FacePipeline {
	return p.filter(func(f Face) bool {
		return f.Reconstructed
	})
}

// OnBounds keeps the faces of convex-hull sites.
func (p *FacePipeline) OnBounds() *FacePipeline {
	return p.filter(func(f Face) bool {
		return f.OnBounds
	})
}

// FiniteBounds keeps hull-site faces that are nonetheless fully finite.
func (p *FacePipeline) FiniteBounds() *FacePipeline {
	return p.filter(func(f Face) bool {
		return f.OnBounds && !f.Reconstructed
	})
}

// Finite keeps the fully finite faces.
func (p *FacePipeline) Finite() *FacePipeline {
	return p.filter(func(f Face) bool {
		return !f.Reconstructed
	})
}

// InsideHull keeps the faces of strictly interior sites.
func (p *FacePipeline) InsideHull() *FacePipeline {
	return p.filter(func(f Face) bool {
		return !f.OnBounds
	})
}

// CenterCloseTo keeps faces whose generating site lies within radius of
// origin.
func (p *FacePipeline) CenterCloseTo(origin r3.Vector, radius float64) *FacePipeline {
	return p.filter(func(f Face) bool {
		return f.Center().Distance(origin) <= radius
	})
}

// CloseTo keeps faces whose every boundary vertex lies within radius of
// origin.
func (p *FacePipeline) CloseTo(origin r3.Vector, radius float64) *FacePipeline {
	return p.filter(func(f Face) bool {
		for _, b := range f.Bounds() {
			if b.Distance(origin) > radius {
				return false
			}
		}
		return true
	})
}

// Inside keeps faces whose every boundary vertex lies within the
// axis-aligned box spanned by origin ± extents.
func (p *FacePipeline) Inside(origin, extents r3.Vector) *FacePipeline {
	return p.filter(func(f Face) bool {
		for _, b := range f.Bounds() {
			if math.Abs(b.X-origin.X) > extents.X ||
				math.Abs(b.Y-origin.Y) > extents.Y ||
				math.Abs(b.Z-origin.Z) > extents.Z {
				return false
			}
		}
		return true
	})
}

// ToList materializes the pipeline into an ordered slice.
func (p *FacePipeline) ToList() []Face {
	it := p.source()
	var out []Face
next:
	for {
		f, ok := it.Next()
		if !ok {
			return out
		}
		for _, stage := range p.stages {
			var keep bool
			if f, keep = stage(f); !keep {
				continue next
			}
		}
		out = append(out, f)
	}
}

// ToArray materializes the pipeline, same as ToList.
func (p *FacePipeline) ToArray() []Face {
	return p.ToList()
}

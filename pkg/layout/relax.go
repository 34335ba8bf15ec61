package layout

import (
	"math"

	"gonum.org/v1/gonum/spatial/r2"
)

// Relax spreads out crowded nodes on each ring of p.
//
// Every pass pushes each pair of same-ring nodes closer than cfg.Threshold
// apart by cfg.Repulsion/distance², both nodes moving the full amount in
// opposite directions. After all rings are processed each node is rescaled
// back onto its ring. Relax does nothing for graphs of one node or fewer.
func Relax(p *Placement, cfg Config) {
	if len(p.Pos) <= 1 {
		return
	}
	for range cfg.Iterations {
		for d := 1; d < len(p.Levels); d++ {
			repel(p.Pos, p.Levels[d], cfg)
		}
		for d := 1; d < len(p.Levels); d++ {
			for _, id := range p.Levels[d] {
				p.Pos[id] = onRing(p.Pos[id], cfg.Radius(d))
			}
		}
	}
}

func repel(pos map[int64]r2.Vec, ids []int64, cfg Config) {
	for a := 0; a < len(ids); a++ {
		for b := a + 1; b < len(ids); b++ {
			pa, pb := pos[ids[a]], pos[ids[b]]
			delta := r2.Sub(pb, pa)
			dist2 := r2.Norm2(delta)
			dist := math.Sqrt(dist2)
			if dist >= cfg.Threshold {
				continue
			}

			var dir r2.Vec
			if dist == 0 {
				dist2 = cfg.MinDistance * cfg.MinDistance
				dir = tangent(pa)
			} else {
				dir = r2.Scale(1/dist, delta)
			}

			f := r2.Scale(cfg.Repulsion/dist2, dir)
			pos[ids[a]] = r2.Sub(pa, f)
			pos[ids[b]] = r2.Add(pb, f)
		}
	}
}

// tangent returns the counter-clockwise unit tangent of the circle through
// p, or the x axis for the origin.
func tangent(p r2.Vec) r2.Vec {
	n := r2.Norm(p)
	if n == 0 {
		return r2.Vec{X: 1}
	}
	return r2.Vec{X: -p.Y / n, Y: p.X / n}
}

// onRing scales p to length radius. The origin maps to angle 0.
func onRing(p r2.Vec, radius float64) r2.Vec {
	n := r2.Norm(p)
	if n == 0 {
		return r2.Vec{X: radius}
	}
	return r2.Scale(radius/n, p)
}

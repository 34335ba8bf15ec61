package layout

import "gonum.org/v1/gonum/spatial/r2"

type r2vec = r2.Vec

func dist(a, b r2vec) float64 { return r2.Norm(r2.Sub(a, b)) }

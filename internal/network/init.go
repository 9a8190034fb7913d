package network

import (
	"math/rand/v2"

	"gonum.org/v1/gonum/stat/distuv"
)

// Weight bounds used at construction. Draws fall in [WeightMin, WeightMax).
const (
	WeightMin = 0.0
	WeightMax = 1.0
)

// newWeightDist returns the uniform distribution new edge weights are drawn
// from. A nil src falls back to the process-wide generator, which makes the
// resulting weights non-reproducible.
func newWeightDist(src rand.Source) distuv.Uniform {
	return distuv.Uniform{Min: WeightMin, Max: WeightMax, Src: src}
}

package crossover

import (
	"math"

	"chromos/internal/codon"
	"chromos/internal/genome"
)

// mutationProbability is the per-codon chance for a gene with the given
// mutability weight copied from a parent with the given chance parameter.
func (p Params) mutationProbability(weight, chance byte) float64 {
	return p.BaseMutationRate * float64(weight) / 256 * float64(chance) / 256
}

// exponent maps the degree parameter onto [1, MaxExponent]; degree 255 gives a
// near-linear mask distribution.
func (p Params) exponent(degree byte) float64 {
	return 1 + float64(255-degree)/255*(p.MaxExponent-1)
}

// mask draws a non-zero XOR mask. Small masks dominate as the exponent grows.
func (r *Recombiner) mask(degree byte) byte {
	m := byte(256 * math.Pow(r.Rand.Float64(), r.Params.exponent(degree)))
	if m == 0 {
		m = 1
	}
	return m
}

// mutatePayload applies per-codon mutation to out[from:]. The header and flags
// bytes before from are never touched. A mutation that would spell a record
// token is dropped so gene boundaries stay where the parent had them.
func (r *Recombiner) mutatePayload(out []byte, from int, h genome.GeneHeader, parent Parent) int {
	if !h.Flags.Has(genome.FlagMutable) || parent.Chance == 0 || h.Mutability == 0 {
		return 0
	}
	prob := r.Params.mutationProbability(h.Mutability, parent.Chance)
	if prob <= 0 {
		return 0
	}
	n := 0
	for i := from; i < len(out); i++ {
		if r.Rand.Float64() >= prob {
			continue
		}
		v := out[i] ^ r.mask(parent.Degree)
		if formsBoundary(out, i, v) {
			continue
		}
		out[i] = v
		n++
	}
	return n
}

// formsBoundary reports whether writing v at out[i] would complete a record
// token in any window covering i.
func formsBoundary(out []byte, i int, v byte) bool {
	old := out[i]
	out[i] = v
	defer func() { out[i] = old }()
	for j := i - codon.TokenSize + 1; j <= i; j++ {
		if j < 0 || j+codon.TokenSize > len(out) {
			continue
		}
		if codon.IsBoundary(codon.TokenAt(out, j)) {
			return true
		}
	}
	return false
}

package codon

// Wrap folds v into [min,max]. Values already in range are returned as they
// are; anything else wraps by modulo. Mutation routinely produces out-of-range
// codons so this never fails. A reversed range is treated as [max,min].
func Wrap(v, min, max byte) byte {
	if min > max {
		min, max = max, min
	}
	if v >= min && v <= max {
		return v
	}
	span := int(max) - int(min) + 1
	return byte(int(min) + int(v)%span)
}

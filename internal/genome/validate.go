package genome

import "chromos/internal/codon"

// Validate checks that buf is a well-formed record stream: genes of legal
// length, one end sentinel, nothing after it.
func Validate(buf []byte, maxGeneLength int) error {
	if len(buf) < codon.TokenSize || codon.TokenAt(buf, len(buf)-codon.TokenSize) != codon.EndOfGenome {
		return NewFormatError(KeyMissingSentinel, NoGeneID, len(buf), len(buf))
	}
	if maxGeneLength <= 0 {
		maxGeneLength = DefaultMaxGeneLength
	}
	c := NewCursor(buf)
	for c.AdvanceToNextGene() {
		start := c.GeneStart()
		end := c.nextBoundary(start + codon.TokenSize)
		length := end - start
		if length < minGeneLen {
			return NewFormatError(KeyTruncatedGene, NoGeneID, start, length)
		}
		if length > maxGeneLength {
			return NewFormatError(KeyGeneTooLong, c.CurrentGeneIdentity(), start, length)
		}
		c.pos = end
	}
	if c.Offset() != len(buf)-codon.TokenSize {
		return NewFormatError(KeyTrailingData, NoGeneID, c.Offset(), len(buf)-c.Offset())
	}
	return nil
}

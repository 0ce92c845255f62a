package genome

import "chromos/internal/codon"

// Mark selects one of the two bookmark slots of a Cursor.
type Mark int

const (
	MarkPrimary Mark = iota
	MarkSecondary

	numMarks
)

type cursorState struct {
	pos       int
	geneStart int
	atEnd     bool
}

// Cursor walks a genome buffer. Between public calls it rests on a gene
// start marker, just past one, inside the payload of the current gene, or on
// the end sentinel. Each concurrent reader needs its own Cursor.
type Cursor struct {
	buf []byte
	cursorState
	marks [numMarks]cursorState
}

func NewCursor(buf []byte) *Cursor {
	c := &Cursor{buf: buf}
	c.Reset()
	return c
}

// Reset moves the cursor to the start of the buffer and clears the end flag.
func (c *Cursor) Reset() {
	c.cursorState = cursorState{geneStart: -1}
}

func (c *Cursor) Bookmark(m Mark) { c.marks[m] = c.cursorState }
func (c *Cursor) Restore(m Mark)  { c.cursorState = c.marks[m] }

func (c *Cursor) Offset() int { return c.pos }
func (c *Cursor) Len() int    { return len(c.buf) }
func (c *Cursor) AtEnd() bool { return c.atEnd }

// GeneStart is the offset of the current gene's start marker, or -1 before the
// first gene has been reached.
func (c *Cursor) GeneStart() int { return c.geneStart }

// PayloadStart is the offset of the first payload byte of the current gene.
func (c *Cursor) PayloadStart() int {
	return c.geneStart + codon.TokenSize + HeaderLen
}

// GeneEnd is the offset of the boundary token that terminates the current gene.
func (c *Cursor) GeneEnd() int {
	if c.geneStart < 0 {
		return c.pos
	}
	return c.nextBoundary(c.geneStart + codon.TokenSize)
}

// AdvanceToNextGene scans forward for the next start marker and leaves the
// cursor on the type field behind it. It returns false once the end sentinel
// is reached; the cursor then stays on the sentinel.
func (c *Cursor) AdvanceToNextGene() bool {
	if c.atEnd {
		return false
	}
	for {
		c.need(c.pos, codon.TokenSize)
		switch codon.TokenAt(c.buf, c.pos) {
		case codon.GeneStart:
			c.geneStart = c.pos
			c.pos += codon.TokenSize
			return true
		case codon.EndOfGenome:
			c.atEnd = true
			return false
		}
		c.pos++
	}
}

// SeekGene moves to off and scans forward from there for a gene.
func (c *Cursor) SeekGene(off int) bool {
	c.cursorState = cursorState{pos: off, geneStart: -1}
	return c.AdvanceToNextGene()
}

// SkipGene moves past the current gene to the next one.
func (c *Cursor) SkipGene() bool {
	if c.geneStart >= 0 {
		c.pos = c.GeneEnd()
	}
	return c.AdvanceToNextGene()
}

// RewindGene puts the cursor back on the current gene's start marker so the
// next AdvanceToNextGene finds the same gene again.
func (c *Cursor) RewindGene() {
	if c.geneStart >= 0 {
		c.pos = c.geneStart
		c.atEnd = false
	}
}

// SkipHeader moves to the first payload byte of the current gene.
func (c *Cursor) SkipHeader() {
	c.need(c.geneStart+codon.TokenSize, HeaderLen)
	c.pos = c.PayloadStart()
}

// Header decodes the current gene's header without moving the cursor.
func (c *Cursor) Header() GeneHeader {
	off := c.geneStart + codon.TokenSize
	c.need(off, HeaderLen)
	return decodeHeader(c.buf[off : off+HeaderLen])
}

// CurrentGeneIdentity returns the identity of the current gene without
// consuming anything.
func (c *Cursor) CurrentGeneIdentity() GeneID {
	if c.geneStart < 0 || c.atEnd {
		return NoGeneID
	}
	off := c.geneStart + codon.TokenSize
	c.need(off, offID+1)
	return MakeGeneID(c.buf[off+offType], c.buf[off+offSubtype], c.buf[off+offID])
}

// NextByte reads one unconstrained codon.
func (c *Cursor) NextByte() byte {
	c.need(c.pos, 1)
	b := c.buf[c.pos]
	c.pos++
	return b
}

// ReadCodon reads one codon and wraps it into [min,max].
func (c *Cursor) ReadCodon(min, max byte) byte {
	return codon.Wrap(c.NextByte(), min, max)
}

// ReadToken reads four bytes verbatim.
func (c *Cursor) ReadToken() codon.Token {
	c.need(c.pos, codon.TokenSize)
	t := codon.TokenAt(c.buf, c.pos)
	c.pos += codon.TokenSize
	return t
}

// ReadBytes returns a copy of the next n bytes.
func (c *Cursor) ReadBytes(n int) []byte {
	c.need(c.pos, n)
	out := append([]byte(nil), c.buf[c.pos:c.pos+n]...)
	c.pos += n
	return out
}

func (c *Cursor) Skip(n int) {
	c.need(c.pos, n)
	c.pos += n
}

func (c *Cursor) nextBoundary(from int) int {
	for off := from; ; off++ {
		c.need(off, codon.TokenSize)
		if codon.IsBoundary(codon.TokenAt(c.buf, off)) {
			return off
		}
	}
}

func (c *Cursor) need(off, n int) {
	if off < 0 || n < 0 || off+n > len(c.buf) {
		panic(&BoundsError{Offset: off, Want: n, Len: len(c.buf)})
	}
}

// GeneHeader is the fixed-width part of a gene record.
type GeneHeader struct {
	Type       byte
	Subtype    byte
	ID         byte
	Generation byte
	SwitchOn   byte
	Flags      Flags
	Mutability byte
	Variant    byte
}

func (h GeneHeader) Identity() GeneID { return MakeGeneID(h.Type, h.Subtype, h.ID) }

func decodeHeader(b []byte) GeneHeader {
	return GeneHeader{
		Type:       b[offType],
		Subtype:    b[offSubtype],
		ID:         b[offID],
		Generation: b[offGeneration],
		SwitchOn:   b[offSwitchOn],
		Flags:      Flags(b[offFlags]),
		Mutability: b[offMutability],
		Variant:    b[offVariant],
	}
}

func (h GeneHeader) appendTo(buf []byte) []byte {
	return append(buf, h.Type, h.Subtype, h.ID, h.Generation, h.SwitchOn, byte(h.Flags), h.Mutability, h.Variant)
}

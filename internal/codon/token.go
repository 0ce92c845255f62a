// Package codon holds the byte-level primitives of the genome format: 4-byte
// tokens that delimit records and single-byte codons constrained to a range.
package codon

import "encoding/binary"

// TokenSize is the width of every token in bytes.
const TokenSize = 4

// Token is a 4-byte tag stored little-endian over its ASCII spelling, so the
// token "gene" appears in a buffer as the bytes 'g','e','n','e'.
type Token uint32

var (
	GeneStart    = MakeToken("gene")
	EndOfGenome  = MakeToken("gend")
	Extension    = MakeToken("genx")
	FormatMarker = MakeToken("dna3")
)

// MakeToken packs the first four bytes of tag. Shorter tags are zero padded.
func MakeToken(tag string) Token {
	var b [TokenSize]byte
	copy(b[:], tag)
	return Token(binary.LittleEndian.Uint32(b[:]))
}

// TokenAt reads the token starting at off. The caller guarantees
// off+TokenSize <= len(buf).
func TokenAt(buf []byte, off int) Token {
	return Token(binary.LittleEndian.Uint32(buf[off : off+TokenSize]))
}

// PutToken writes t at off.
func PutToken(buf []byte, off int, t Token) {
	binary.LittleEndian.PutUint32(buf[off:off+TokenSize], uint32(t))
}

// AppendToken appends the four bytes of t to buf.
func AppendToken(buf []byte, t Token) []byte {
	return binary.LittleEndian.AppendUint32(buf, uint32(t))
}

func (t Token) Bytes() [TokenSize]byte {
	var b [TokenSize]byte
	binary.LittleEndian.PutUint32(b[:], uint32(t))
	return b
}

func (t Token) String() string {
	b := t.Bytes()
	return string(b[:])
}

// IsBoundary reports whether t terminates a gene payload.
func IsBoundary(t Token) bool {
	return t == GeneStart || t == EndOfGenome || t == Extension
}

// Package genome implements the binary chromosome format: a stream of
// variable-length gene records closed by an end sentinel, the cursor that walks
// it, the query engine used for trait expression, and the container that owns
// one organism's buffer.
package genome

import (
	"bytes"
	"context"

	"chromos/internal/codon"
)

// ResourceReader is the storage collaborator used by Load.
type ResourceReader interface {
	ReadAll(ctx context.Context, name string) ([]byte, error)
}

// ResourceWriter is the storage collaborator used by Save.
type ResourceWriter interface {
	WriteAll(ctx context.Context, name string, data []byte) error
}

// Genome owns one organism's gene buffer together with the identity its
// queries are evaluated against. A Genome is not safe for concurrent mutation;
// concurrent readers should each take their own NewCursor.
type Genome struct {
	buf    []byte
	who    Identity
	cursor *Cursor
}

// New returns an empty genome holding only the end sentinel.
func New() *Genome {
	g := &Genome{buf: codon.AppendToken(nil, codon.EndOfGenome)}
	g.cursor = NewCursor(g.buf)
	return g
}

// FromBytes validates buf and returns a genome owning a copy of it.
func FromBytes(buf []byte, who Identity) (*Genome, error) {
	return FromBytesLimit(buf, who, DefaultMaxGeneLength)
}

// FromBytesLimit is FromBytes with an explicit gene length ceiling.
func FromBytesLimit(buf []byte, who Identity, maxGeneLength int) (*Genome, error) {
	if err := Validate(buf, maxGeneLength); err != nil {
		return nil, err
	}
	owned := append([]byte(nil), buf...)
	return &Genome{buf: owned, who: who, cursor: NewCursor(owned)}, nil
}

// Read loads a new genome from a named resource.
func Read(ctx context.Context, r ResourceReader, name string, who Identity) (*Genome, error) {
	g := New()
	if err := g.Load(ctx, r, name, who); err != nil {
		return nil, err
	}
	return g, nil
}

// Load replaces the genome with the contents of a named resource. The resource
// must start with the format marker. On failure g is left as it was.
func (g *Genome) Load(ctx context.Context, r ResourceReader, name string, who Identity) error {
	data, err := r.ReadAll(ctx, name)
	if err != nil {
		return ioError(KeyResourceUnavailable, name, err)
	}
	if len(data) < codon.TokenSize || codon.TokenAt(data, 0) != codon.FormatMarker {
		e := NewFormatError(KeyBadMarker, NoGeneID, 0, 0)
		e.Resource = name
		return e
	}
	body := append([]byte(nil), data[codon.TokenSize:]...)
	if err := Validate(body, DefaultMaxGeneLength); err != nil {
		if e, ok := err.(*Error); ok {
			e.Resource = name
		}
		return err
	}
	g.buf = body
	g.who = who
	g.cursor = NewCursor(g.buf)
	return nil
}

// Save writes the format marker followed by the buffer to a named resource.
func (g *Genome) Save(ctx context.Context, w ResourceWriter, name string) error {
	data := make([]byte, 0, codon.TokenSize+len(g.buf))
	data = codon.AppendToken(data, codon.FormatMarker)
	data = append(data, g.buf...)
	if err := w.WriteAll(ctx, name, data); err != nil {
		return ioError(KeyWriteFailed, name, err)
	}
	return nil
}

// Bytes returns a copy of the gene buffer, without the format marker.
func (g *Genome) Bytes() []byte { return append([]byte(nil), g.buf...) }

func (g *Genome) Len() int { return len(g.buf) }

func (g *Genome) Equal(other *Genome) bool {
	return other != nil && bytes.Equal(g.buf, other.buf)
}

func (g *Genome) Identity() Identity       { return g.who }
func (g *Genome) SetIdentity(who Identity) { g.who = who }
func (g *Genome) Sex() Sex                 { return g.who.Sex }
func (g *Genome) Age() byte                { return g.who.Age }
func (g *Genome) Variant() byte            { return g.who.Variant }
func (g *Genome) SetAge(age byte)          { g.who.Age = age }

// Cursor is the genome's own cursor, shared by FindNextGene and the caller's
// codon reads.
func (g *Genome) Cursor() *Cursor { return g.cursor }

// NewCursor returns an independent cursor over the buffer.
func (g *Genome) NewCursor() *Cursor { return NewCursor(g.buf) }

func (g *Genome) Reset() { g.cursor.Reset() }

func (g *Genome) CountGenesOfType(typ, subtype byte, numSubtypes int) int {
	return CountGenesOfType(g.cursor, typ, subtype, numSubtypes)
}

func (g *Genome) FindNextGene(q Query) bool {
	return FindNextGene(g.cursor, q, g.who)
}

func (g *Genome) GeneCount() int { return len(Genes(g.buf)) }

// headerGene locates the header gene, which must be the first record.
func (g *Genome) headerGene() (GeneHeader, int, error) {
	c := NewCursor(g.buf)
	if !c.AdvanceToNextGene() {
		return GeneHeader{}, 0, NewFormatError(KeyMissingHeader, NoGeneID, 0, 0)
	}
	h := c.Header()
	if h.Type != TypeCreature || h.Subtype != CreatureGenus {
		return GeneHeader{}, 0, NewFormatError(KeyMissingHeader, h.Identity(), c.GeneStart(), 0)
	}
	payload := c.PayloadStart()
	if c.GeneEnd()-payload < headerPayload {
		return GeneHeader{}, 0, NewFormatError(KeyTruncatedGene, h.Identity(), c.GeneStart(), c.GeneEnd()-c.GeneStart())
	}
	return h, payload, nil
}

// HasHeader reports whether the first record is a complete header gene.
func (g *Genome) HasHeader() bool {
	_, _, err := g.headerGene()
	return err == nil
}

// Generation is the header gene's generation field.
func (g *Genome) Generation() byte {
	h, _, err := g.headerGene()
	if err != nil {
		return 0
	}
	return h.Generation
}

// Genus is the species codon of the header gene.
func (g *Genome) Genus() byte {
	_, off, err := g.headerGene()
	if err != nil {
		return 0
	}
	return g.buf[off+headerGenusOff]
}

func (g *Genome) MotherMoniker() string { return g.moniker(headerMotherOff) }
func (g *Genome) FatherMoniker() string { return g.moniker(headerFatherOff) }

func (g *Genome) moniker(field int) string {
	_, off, err := g.headerGene()
	if err != nil {
		return ""
	}
	raw := g.buf[off+field : off+field+MonikerLen]
	if i := bytes.IndexByte(raw, 0); i >= 0 {
		raw = raw[:i]
	}
	return string(raw)
}

// SetParents records the parents' monikers in the header gene. Monikers longer
// than MonikerLen are truncated; shorter ones are zero filled. A moniker that
// would spell a record token inside the header is rejected.
func (g *Genome) SetParents(mother, father string) error {
	h, off, err := g.headerGene()
	if err != nil {
		return err
	}
	field := g.buf[off+headerMotherOff : off+headerPayload]
	saved := append([]byte(nil), field...)
	before := g.headerEnd()
	putMoniker(field[:MonikerLen], mother)
	putMoniker(field[MonikerLen:], father)
	if g.headerEnd() != before {
		copy(field, saved)
		return NewFormatError(KeyBadMoniker, h.Identity(), off, 0)
	}
	return nil
}

func (g *Genome) headerEnd() int {
	c := NewCursor(g.buf)
	c.AdvanceToNextGene()
	return c.GeneEnd()
}

// DeclareUnverifiedParents wipes both lineage monikers.
func (g *Genome) DeclareUnverifiedParents() error {
	return g.SetParents("", "")
}

func putMoniker(dst []byte, moniker string) {
	n := copy(dst, moniker)
	clear(dst[n:])
}

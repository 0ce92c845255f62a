package genome

import "chromos/internal/codon"

// Gene is a decoded gene record: its header plus payload codons.
type Gene struct {
	GeneHeader
	Payload []byte
}

// Builder assembles a gene buffer record by record.
type Builder struct {
	buf []byte
}

func NewBuilder() *Builder {
	return &Builder{}
}

// Header appends the header gene carrying the genus codon and the parents'
// monikers. It should be the first record.
func (b *Builder) Header(genus byte, mother, father string) *Builder {
	payload := make([]byte, headerPayload)
	payload[headerGenusOff] = genus
	putMoniker(payload[headerMotherOff:headerMotherOff+MonikerLen], mother)
	putMoniker(payload[headerFatherOff:headerFatherOff+MonikerLen], father)
	return b.Add(Gene{
		GeneHeader: GeneHeader{Type: TypeCreature, Subtype: CreatureGenus},
		Payload:    payload,
	})
}

// Add appends one gene record.
func (b *Builder) Add(g Gene) *Builder {
	b.buf = codon.AppendToken(b.buf, codon.GeneStart)
	b.buf = g.GeneHeader.appendTo(b.buf)
	b.buf = append(b.buf, g.Payload...)
	return b
}

// Extension appends a metadata block that belongs to no gene.
func (b *Builder) Extension(data []byte) *Builder {
	b.buf = codon.AppendToken(b.buf, codon.Extension)
	b.buf = append(b.buf, data...)
	return b
}

// Bytes returns the records built so far closed by the end sentinel.
func (b *Builder) Bytes() []byte {
	out := make([]byte, 0, len(b.buf)+codon.TokenSize)
	out = append(out, b.buf...)
	return codon.AppendToken(out, codon.EndOfGenome)
}

// Build validates the records and returns them as a Genome.
func (b *Builder) Build(who Identity) (*Genome, error) {
	return FromBytes(b.Bytes(), who)
}

// DecodeGenes returns every gene record of buf with its payload.
func DecodeGenes(buf []byte) []Gene {
	infos := Genes(buf)
	out := make([]Gene, 0, len(infos))
	for _, info := range infos {
		start := info.Offset + codon.TokenSize + HeaderLen
		end := info.Offset + info.Length
		var payload []byte
		if end > start {
			payload = append([]byte(nil), buf[start:end]...)
		}
		out = append(out, Gene{GeneHeader: info.GeneHeader, Payload: payload})
	}
	return out
}

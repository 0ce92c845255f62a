package chromos

import (
	"context"
	"encoding/hex"
	"fmt"
	"strings"

	"gopkg.in/yaml.v3"

	"chromos/internal/genome"
)

// Description is the YAML form of a hand-written genome.
type Description struct {
	Genus  byte       `yaml:"genus"`
	Mother string     `yaml:"mother"`
	Father string     `yaml:"father"`
	Genes  []GeneSpec `yaml:"genes"`
}

type GeneSpec struct {
	Type       byte     `yaml:"type"`
	Subtype    byte     `yaml:"subtype"`
	ID         byte     `yaml:"id"`
	Generation byte     `yaml:"generation"`
	SwitchOn   byte     `yaml:"switch_on"`
	Flags      []string `yaml:"flags"`
	Mutability byte     `yaml:"mutability"`
	Variant    byte     `yaml:"variant"`
	// Payload is hex encoded; whitespace is ignored.
	Payload string `yaml:"payload"`
}

type ComposeRequest struct {
	Moniker     string
	Description Description
}

type ComposeResult struct {
	Moniker     string
	Length      int
	Genes       int
	Fingerprint string
}

var flagNames = map[string]genome.Flags{
	"mutable":    genome.FlagMutable,
	"duplicable": genome.FlagDuplicable,
	"cuttable":   genome.FlagCuttable,
	"male":       genome.FlagMaleOnly,
	"female":     genome.FlagFemaleOnly,
	"any-sex":    genome.FlagIgnoreSex,
}

func ParseDescription(data []byte) (Description, error) {
	var d Description
	if err := yaml.Unmarshal(data, &d); err != nil {
		return Description{}, fmt.Errorf("parsing genome description: %w", err)
	}
	return d, nil
}

// Build assembles the described genome, header gene first.
func (d Description) Build() (*genome.Genome, error) {
	b := genome.NewBuilder().Header(d.Genus, d.Mother, d.Father)
	for i, spec := range d.Genes {
		g, err := spec.gene()
		if err != nil {
			return nil, fmt.Errorf("gene %d: %w", i, err)
		}
		b.Add(g)
	}
	g, err := b.Build(genome.Identity{})
	if err != nil {
		return nil, err
	}
	if n := g.GeneCount(); n != len(d.Genes)+1 {
		return nil, fmt.Errorf("description spells a record marker: built %d genes from %d", n, len(d.Genes)+1)
	}
	return g, nil
}

func (s GeneSpec) gene() (genome.Gene, error) {
	var flags genome.Flags
	for _, name := range s.Flags {
		f, ok := flagNames[strings.ToLower(name)]
		if !ok {
			return genome.Gene{}, fmt.Errorf("unknown flag %q", name)
		}
		flags |= f
	}
	payload, err := hex.DecodeString(strings.Join(strings.Fields(s.Payload), ""))
	if err != nil {
		return genome.Gene{}, fmt.Errorf("payload: %w", err)
	}
	return genome.Gene{
		GeneHeader: genome.GeneHeader{
			Type:       s.Type,
			Subtype:    s.Subtype,
			ID:         s.ID,
			Generation: s.Generation,
			SwitchOn:   s.SwitchOn,
			Flags:      flags,
			Mutability: s.Mutability,
			Variant:    s.Variant,
		},
		Payload: payload,
	}, nil
}

// Compose builds a genome from a description and stores it under req.Moniker.
func (c *Client) Compose(ctx context.Context, req ComposeRequest) (ComposeResult, error) {
	if err := checkMoniker(req.Moniker); err != nil {
		return ComposeResult{}, err
	}
	g, err := req.Description.Build()
	if err != nil {
		return ComposeResult{}, err
	}
	if err := g.Save(ctx, c.store, GenomeResource(req.Moniker)); err != nil {
		return ComposeResult{}, err
	}
	return ComposeResult{
		Moniker:     req.Moniker,
		Length:      g.Len(),
		Genes:       g.GeneCount(),
		Fingerprint: genome.ComputeSignature(g.Bytes()).Fingerprint,
	}, nil
}

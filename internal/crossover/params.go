// Package crossover produces a child genome from two parents: alternating
// runs of linked genes with crossover at synchronised points, per-codon
// mutation, and occasional cut and duplication errors.
package crossover

import (
	"errors"
	"fmt"

	"chromos/internal/codon"
	"chromos/internal/genome"
)

// Params tunes recombination. The zero value is not usable; start from
// DefaultParams.
type Params struct {
	// Linkage is the mean number of genes copied between crossover points.
	Linkage int `yaml:"linkage" json:"linkage"`
	// MinRun is the shortest run drawn.
	MinRun int `yaml:"min_run" json:"min_run"`
	// BaseMutationRate is the per-codon mutation probability of a maximally
	// mutable gene from a parent with maximal mutation chance.
	BaseMutationRate float64 `yaml:"base_mutation_rate" json:"base_mutation_rate"`
	// MaxExponent is the power-law exponent used at mutation degree 0.
	MaxExponent float64 `yaml:"max_exponent" json:"max_exponent"`
	// CutChance and DuplicationChance are drawn once per crossover.
	CutChance         float64 `yaml:"cut_chance" json:"cut_chance"`
	DuplicationChance float64 `yaml:"duplication_chance" json:"duplication_chance"`
	// MaxGeneLength is longer than any real gene, marker included.
	MaxGeneLength int `yaml:"max_gene_length" json:"max_gene_length"`
}

func DefaultParams() Params {
	return Params{
		Linkage:           50,
		MinRun:            1,
		BaseMutationRate:  1.0 / 4800,
		MaxExponent:       16,
		CutChance:         1.0 / 80,
		DuplicationChance: 1.0 / 80,
		MaxGeneLength:     genome.DefaultMaxGeneLength,
	}
}

// Slack is the room a child may take beyond both parents' lengths: the end
// sentinel plus one worst-case gene.
func (p Params) Slack() int {
	return p.MaxGeneLength + codon.TokenSize
}

func (p Params) Validate() error {
	var errs []error
	if p.Linkage < 1 {
		errs = append(errs, fmt.Errorf("linkage must be >= 1, got %d", p.Linkage))
	}
	if p.MinRun < 1 || p.MinRun > p.Linkage {
		errs = append(errs, fmt.Errorf("min run must be in [1,linkage], got %d", p.MinRun))
	}
	if p.BaseMutationRate < 0 || p.BaseMutationRate > 1 {
		errs = append(errs, fmt.Errorf("base mutation rate must be in [0,1], got %g", p.BaseMutationRate))
	}
	if p.MaxExponent < 1 {
		errs = append(errs, fmt.Errorf("max exponent must be >= 1, got %g", p.MaxExponent))
	}
	if p.CutChance < 0 || p.DuplicationChance < 0 || p.CutChance+p.DuplicationChance > 1 {
		errs = append(errs, fmt.Errorf("cut and duplication chances must be non-negative and sum to <= 1"))
	}
	if p.MaxGeneLength < codon.TokenSize+genome.HeaderLen {
		errs = append(errs, fmt.Errorf("max gene length too small: %d", p.MaxGeneLength))
	}
	return errors.Join(errs...)
}

// Parent is one side of a cross.
type Parent struct {
	Genome  *genome.Genome
	Moniker string
	// Chance scales how often codons mutate; 0 disables mutation.
	Chance byte
	// Degree flattens the mutation magnitude distribution; 0 favours single
	// bit flips, 255 spreads masks almost uniformly.
	Degree byte
}

// Stats counts what one Cross did. A swap that lands the new strand on its
// end sentinel copies nothing and is not counted as a crossover.
type Stats struct {
	Crossovers      int  `json:"crossovers"`
	Mutations       int  `json:"mutations"`
	Cuts            int  `json:"cuts"`
	Duplications    int  `json:"duplications"`
	GenesCopied     int  `json:"genes_copied"`
	StartedOnMother bool `json:"started_on_mother"`
	Truncated       bool `json:"truncated"`
}

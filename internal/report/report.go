// Package report renders genome dumps and breeding statistics.
package report

import (
	"encoding/hex"
	"encoding/json"
	"fmt"
	"io"
	"math"
	"strings"

	"github.com/gocarina/gocsv"
	"gonum.org/v1/gonum/floats"
	"gonum.org/v1/gonum/stat"

	"chromos/internal/codon"
	"chromos/internal/crossover"
	"chromos/internal/genome"
	"chromos/internal/model"
)

// GeneRows lists every gene record of buf as a dump row.
func GeneRows(buf []byte) []model.GeneRow {
	infos := genome.Genes(buf)
	rows := make([]model.GeneRow, 0, len(infos))
	for _, info := range infos {
		start := info.Offset + codon.TokenSize + genome.HeaderLen
		end := info.Offset + info.Length
		rows = append(rows, model.GeneRow{
			Index:      info.Index,
			Offset:     info.Offset,
			Length:     info.Length,
			Type:       int(info.Type),
			TypeName:   genome.TypeName(info.Type),
			Subtype:    int(info.Subtype),
			ID:         int(info.ID),
			Generation: int(info.Generation),
			SwitchOn:   int(info.SwitchOn),
			Flags:      FlagNames(info.Flags),
			Mutability: int(info.Mutability),
			Variant:    int(info.Variant),
			Payload:    hex.EncodeToString(buf[start:end]),
		})
	}
	return rows
}

// FlagNames spells a flag byte as a "|" separated list.
func FlagNames(f genome.Flags) string {
	names := []struct {
		flag genome.Flags
		name string
	}{
		{genome.FlagMutable, "mutable"},
		{genome.FlagDuplicable, "duplicable"},
		{genome.FlagCuttable, "cuttable"},
		{genome.FlagMaleOnly, "male"},
		{genome.FlagFemaleOnly, "female"},
		{genome.FlagIgnoreSex, "any-sex"},
	}
	var parts []string
	for _, n := range names {
		if f.Has(n.flag) {
			parts = append(parts, n.name)
		}
	}
	return strings.Join(parts, "|")
}

// WriteGeneCSV writes rows with a header line.
func WriteGeneCSV(w io.Writer, rows []model.GeneRow) error {
	if len(rows) == 0 {
		return nil
	}
	if err := gocsv.Marshal(rows, w); err != nil {
		return fmt.Errorf("writing gene csv: %w", err)
	}
	return nil
}

// Metric describes one counter across trials.
type Metric struct {
	Mean   float64 `json:"mean"`
	StdDev float64 `json:"stddev"`
	Min    float64 `json:"min"`
	Max    float64 `json:"max"`
}

// BreedSummary aggregates the stats of repeated crosses of the same parents.
type BreedSummary struct {
	Trials          int     `json:"trials"`
	Crossovers      Metric  `json:"crossovers"`
	Mutations       Metric  `json:"mutations"`
	Cuts            Metric  `json:"cuts"`
	Duplications    Metric  `json:"duplications"`
	GenesCopied     Metric  `json:"genes_copied"`
	MotherFirstRate float64 `json:"mother_first_rate"`
	Truncated       int     `json:"truncated"`
}

func Summarize(trials []crossover.Stats) BreedSummary {
	summary := BreedSummary{Trials: len(trials)}
	if len(trials) == 0 {
		return summary
	}
	column := func(pick func(crossover.Stats) int) Metric {
		xs := make([]float64, len(trials))
		for i, s := range trials {
			xs[i] = float64(pick(s))
		}
		return metric(xs)
	}
	summary.Crossovers = column(func(s crossover.Stats) int { return s.Crossovers })
	summary.Mutations = column(func(s crossover.Stats) int { return s.Mutations })
	summary.Cuts = column(func(s crossover.Stats) int { return s.Cuts })
	summary.Duplications = column(func(s crossover.Stats) int { return s.Duplications })
	summary.GenesCopied = column(func(s crossover.Stats) int { return s.GenesCopied })

	motherFirst := 0
	for _, s := range trials {
		if s.StartedOnMother {
			motherFirst++
		}
		if s.Truncated {
			summary.Truncated++
		}
	}
	summary.MotherFirstRate = float64(motherFirst) / float64(len(trials))
	return summary
}

func metric(xs []float64) Metric {
	mean, std := stat.MeanStdDev(xs, nil)
	if len(xs) < 2 || math.IsNaN(std) {
		std = 0
	}
	return Metric{Mean: mean, StdDev: std, Min: floats.Min(xs), Max: floats.Max(xs)}
}

func WriteSummaryJSON(w io.Writer, summary BreedSummary) error {
	enc := json.NewEncoder(w)
	enc.SetIndent("", "  ")
	return enc.Encode(summary)
}

package main

import (
	"encoding/hex"
	"encoding/json"
	"fmt"
	"io"
	"os"
	"sort"
	"strings"

	"github.com/dustin/go-humanize"
	"github.com/spf13/cobra"

	"chromos/internal/genome"
	"chromos/internal/report"
	"chromos/pkg/chromos"
)

func (a *app) composeCmd() *cobra.Command {
	var file string
	cmd := &cobra.Command{
		Use:   "compose <moniker>",
		Short: "Build a genome from a YAML description",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			data, err := readInput(cmd, file)
			if err != nil {
				return err
			}
			desc, err := chromos.ParseDescription(data)
			if err != nil {
				return err
			}
			client, err := a.open(cmd)
			if err != nil {
				return err
			}
			defer client.Close()

			res, err := client.Compose(cmd.Context(), chromos.ComposeRequest{Moniker: args[0], Description: desc})
			if err != nil {
				return err
			}
			a.printf("composed moniker=%s genes=%d size=%s fingerprint=%s\n",
				res.Moniker, res.Genes, humanize.Bytes(uint64(res.Length)), res.Fingerprint)
			return nil
		},
	}
	cmd.Flags().StringVarP(&file, "file", "f", "-", "description file, - for stdin")
	return cmd
}

func readInput(cmd *cobra.Command, file string) ([]byte, error) {
	if file == "-" {
		return io.ReadAll(cmd.InOrStdin())
	}
	return os.ReadFile(file)
}

func (a *app) inspectCmd() *cobra.Command {
	var asJSON bool
	cmd := &cobra.Command{
		Use:   "inspect <moniker>",
		Short: "Show a genome's header and gene statistics",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			client, err := a.open(cmd)
			if err != nil {
				return err
			}
			defer client.Close()

			info, err := client.Inspect(cmd.Context(), args[0])
			if err != nil {
				return err
			}
			if asJSON {
				enc := json.NewEncoder(a.out)
				enc.SetIndent("", "  ")
				return enc.Encode(info)
			}
			s := info.Signature.Summary
			a.printf("moniker=%s size=%s genes=%s genus=%d generation=%d\n",
				info.Moniker, humanize.Bytes(uint64(info.Length)), humanize.Comma(int64(s.Genes)), info.Genus, info.Generation)
			a.printf("mother=%q father=%q\n", info.Mother, info.Father)
			a.printf("mutable=%d duplicable=%d cuttable=%d clones=%d\n", s.Mutable, s.Duplicable, s.Cuttable, s.Clones)
			for _, name := range sortedKeys(s.ByType) {
				a.printf("type=%s genes=%d\n", name, s.ByType[name])
			}
			a.printf("fingerprint=%s\n", info.Signature.Fingerprint)
			return nil
		},
	}
	cmd.Flags().BoolVar(&asJSON, "json", false, "print the full inspection as JSON")
	return cmd
}

func sortedKeys(m map[string]int) []string {
	keys := make([]string, 0, len(m))
	for k := range m {
		keys = append(keys, k)
	}
	sort.Strings(keys)
	return keys
}

func (a *app) dumpCmd() *cobra.Command {
	var outPath string
	cmd := &cobra.Command{
		Use:   "dump <moniker>",
		Short: "Write every gene record as CSV",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			client, err := a.open(cmd)
			if err != nil {
				return err
			}
			defer client.Close()

			info, err := client.Inspect(cmd.Context(), args[0])
			if err != nil {
				return err
			}
			if outPath == "" {
				return report.WriteGeneCSV(a.out, info.Rows)
			}
			f, err := os.Create(outPath)
			if err != nil {
				return err
			}
			if err := report.WriteGeneCSV(f, info.Rows); err != nil {
				_ = f.Close()
				return err
			}
			if err := f.Close(); err != nil {
				return err
			}
			a.printf("dumped moniker=%s genes=%d out=%s\n", info.Moniker, len(info.Rows), outPath)
			return nil
		},
	}
	cmd.Flags().StringVarP(&outPath, "out", "o", "", "output file (default stdout)")
	return cmd
}

// geneSelector holds the type filter flags shared by count and find.
type geneSelector struct {
	typ         uint8
	subtype     uint8
	numSubtypes int
}

func (s *geneSelector) register(cmd *cobra.Command) {
	cmd.Flags().Uint8Var(&s.typ, "type", 0, "gene type")
	cmd.Flags().Uint8Var(&s.subtype, "subtype", 0, "gene subtype")
	cmd.Flags().IntVar(&s.numSubtypes, "subtypes", 0, "number of subtypes of the type; stored subtypes wrap into range when > 0")
}

func (a *app) countCmd() *cobra.Command {
	var sel geneSelector
	cmd := &cobra.Command{
		Use:   "count <moniker>",
		Short: "Count genes of a type and subtype, ignoring age, sex and variant",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			client, err := a.open(cmd)
			if err != nil {
				return err
			}
			defer client.Close()

			n, err := client.Count(cmd.Context(), chromos.CountRequest{
				Moniker:     args[0],
				Type:        sel.typ,
				Subtype:     sel.subtype,
				NumSubtypes: sel.numSubtypes,
			})
			if err != nil {
				return err
			}
			a.printf("count=%d\n", n)
			return nil
		},
	}
	sel.register(cmd)
	return cmd
}

func parseSex(s string) (genome.Sex, error) {
	switch strings.ToLower(s) {
	case "", "none", "undetermined":
		return genome.SexUndetermined, nil
	case "male", "m":
		return genome.SexMale, nil
	case "female", "f":
		return genome.SexFemale, nil
	default:
		return 0, fmt.Errorf("unknown sex: %q", s)
	}
}

func (a *app) findCmd() *cobra.Command {
	var (
		sel     geneSelector
		mode    string
		sex     string
		age     uint8
		variant uint8
		codons  int
	)
	cmd := &cobra.Command{
		Use:   "find <moniker>",
		Short: "List the genes an organism of the given sex, age and variant expresses",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			m, err := genome.ParseSwitchMode(mode)
			if err != nil {
				return err
			}
			s, err := parseSex(sex)
			if err != nil {
				return err
			}
			client, err := a.open(cmd)
			if err != nil {
				return err
			}
			defer client.Close()

			items, err := client.Find(cmd.Context(), chromos.FindRequest{
				Moniker:     args[0],
				Type:        sel.typ,
				Subtype:     sel.subtype,
				NumSubtypes: sel.numSubtypes,
				Mode:        m,
				Identity:    genome.Identity{Sex: s, Age: age, Variant: variant},
				Codons:      codons,
			})
			if err != nil {
				return err
			}
			for _, item := range items {
				h := item.Header
				a.printf("offset=%d gene=%d/%d/%d generation=%d switch_on=%d flags=%s codons=%s\n",
					item.Offset, h.Type, h.Subtype, h.ID, h.Generation, h.SwitchOn, report.FlagNames(h.Flags), hex.EncodeToString(item.Codons))
			}
			a.printf("matches=%d\n", len(items))
			return nil
		},
	}
	sel.register(cmd)
	cmd.Flags().StringVar(&mode, "mode", genome.SwitchExactAge.String(), "switch mode: exact|always|embryo|up-to-age|unconditional")
	cmd.Flags().StringVar(&sex, "sex", "", "male|female")
	cmd.Flags().Uint8Var(&age, "age", 0, "age 0 (embryo) to 7 (senile)")
	cmd.Flags().Uint8Var(&variant, "variant", 0, "variant; 0 expresses only variant-neutral genes")
	cmd.Flags().IntVar(&codons, "codons", 4, "payload codons to show per match")
	return cmd
}

func (a *app) breedCmd() *cobra.Command {
	var (
		req          chromos.BreedRequest
		asJSON       bool
		artifactsDir string
	)
	cmd := &cobra.Command{
		Use:   "breed <mother> <father>",
		Short: "Cross two stored genomes into a child",
		Args:  cobra.ExactArgs(2),
		RunE: func(cmd *cobra.Command, args []string) error {
			client, err := a.open(cmd)
			if err != nil {
				return err
			}
			defer client.Close()

			req.Mother.Moniker, req.Father.Moniker = args[0], args[1]
			res, err := client.Breed(cmd.Context(), req)
			if err != nil {
				return err
			}
			a.printf("bred child=%s seed=%d size=%s genes=%d\n",
				res.Child, res.Seed, humanize.Bytes(uint64(res.Length)), res.Genes)
			a.printf("crossovers=%d mutations=%d cuts=%d duplications=%d\n",
				res.Stats.Crossovers, res.Stats.Mutations, res.Stats.Cuts, res.Stats.Duplications)
			if artifactsDir != "" {
				dir, err := a.writeBreedArtifacts(cmd, client, artifactsDir, req, res)
				if err != nil {
					return err
				}
				a.printf("artifacts_dir=%s\n", dir)
			}
			if res.Summary != nil {
				if asJSON {
					return report.WriteSummaryJSON(a.out, *res.Summary)
				}
				s := res.Summary
				a.printf("trials=%d crossovers_mean=%.2f crossovers_sd=%.2f mutations_mean=%.2f mutations_sd=%.2f mother_first=%.2f truncated=%d\n",
					s.Trials, s.Crossovers.Mean, s.Crossovers.StdDev, s.Mutations.Mean, s.Mutations.StdDev, s.MotherFirstRate, s.Truncated)
			}
			return nil
		},
	}
	f := cmd.Flags()
	f.StringVar(&req.Child, "child", "", "child moniker (default random)")
	f.Uint64Var(&req.Seed, "seed", 0, "random seed (default from config, else fresh)")
	f.IntVar(&req.Trials, "trials", 1, "cross repeatedly and summarise; only the last child is kept")
	f.Uint8Var(&req.Mother.Chance, "mother-chance", 128, "mother's mutation chance 0-255")
	f.Uint8Var(&req.Mother.Degree, "mother-degree", 128, "mother's mutation degree 0-255")
	f.Uint8Var(&req.Father.Chance, "father-chance", 128, "father's mutation chance 0-255")
	f.Uint8Var(&req.Father.Degree, "father-degree", 128, "father's mutation degree 0-255")
	f.BoolVar(&asJSON, "json", false, "print the trial summary as JSON")
	f.StringVar(&artifactsDir, "artifacts", "", "also write config, stats, lineage and genes under this directory")
	return cmd
}

func (a *app) writeBreedArtifacts(cmd *cobra.Command, client *chromos.Client, baseDir string, req chromos.BreedRequest, res chromos.BreedResult) (string, error) {
	ctx := cmd.Context()
	lineage, err := client.Lineage(ctx, res.Child)
	if err != nil {
		return "", err
	}
	info, err := client.Inspect(ctx, res.Child)
	if err != nil {
		return "", err
	}
	trials := max(req.Trials, 1)
	dir, err := report.WriteBreedArtifacts(baseDir, report.BreedArtifacts{
		Config: report.BreedConfig{
			Child:   res.Child,
			Mother:  req.Mother.Moniker,
			Father:  req.Father.Moniker,
			Seed:    res.Seed,
			RNG:     client.RNG(),
			Trials:  trials,
			Params:  client.Params(),
			Chances: [2]byte{req.Mother.Chance, req.Father.Chance},
			Degrees: [2]byte{req.Mother.Degree, req.Father.Degree},
		},
		Stats:   res.Stats,
		Summary: res.Summary,
		Lineage: lineage,
		Genes:   info.Rows,
	})
	if err != nil {
		return "", err
	}
	created := ""
	if len(lineage) > 0 {
		created = lineage[0].CreatedAtUTC
	}
	err = report.AppendBreedIndex(baseDir, report.BreedIndexEntry{
		Child:        res.Child,
		Mother:       req.Mother.Moniker,
		Father:       req.Father.Moniker,
		Seed:         res.Seed,
		Trials:       trials,
		Fingerprint:  res.Fingerprint,
		CreatedAtUTC: created,
	})
	return dir, err
}

func (a *app) breedsCmd() *cobra.Command {
	var artifactsDir string
	cmd := &cobra.Command{
		Use:   "breeds",
		Short: "List breeds recorded in an artifacts directory, newest first",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			entries, err := report.ListBreedIndex(artifactsDir)
			if err != nil {
				return err
			}
			for _, e := range entries {
				a.printf("child=%s mother=%s father=%s seed=%d trials=%d fingerprint=%s created=%s\n",
					e.Child, e.Mother, e.Father, e.Seed, e.Trials, e.Fingerprint, e.CreatedAtUTC)
			}
			return nil
		},
	}
	cmd.Flags().StringVar(&artifactsDir, "artifacts", "artifacts", "artifacts directory")
	return cmd
}

func (a *app) wipeParentsCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "wipe-parents <moniker>",
		Short: "Clear the parent monikers recorded in a genome",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			client, err := a.open(cmd)
			if err != nil {
				return err
			}
			defer client.Close()

			if err := client.WipeParents(cmd.Context(), args[0]); err != nil {
				return err
			}
			a.printf("wiped parents moniker=%s\n", args[0])
			return nil
		},
	}
}

func (a *app) lineageCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "lineage <moniker>",
		Short: "Show the recorded breeding history of a genome",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			client, err := a.open(cmd)
			if err != nil {
				return err
			}
			defer client.Close()

			records, err := client.Lineage(cmd.Context(), args[0])
			if err != nil {
				return err
			}
			for _, r := range records {
				a.printf("child=%s mother=%s father=%s seed=%d rng=%s crossovers=%d mutations=%d cuts=%d duplications=%d size=%s created=%s\n",
					r.Child, r.Mother, r.Father, r.Seed, r.RNG, r.Crossovers, r.Mutations, r.Cuts, r.Duplications,
					humanize.Bytes(uint64(r.ChildLength)), r.CreatedAtUTC)
			}
			if len(records) == 0 {
				a.printf("no lineage recorded for %s\n", args[0])
			}
			return nil
		},
	}
}

func (a *app) listCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "list",
		Short: "List stored genomes",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			client, err := a.open(cmd)
			if err != nil {
				return err
			}
			defer client.Close()

			names, err := client.Genomes(cmd.Context())
			if err != nil {
				return err
			}
			for _, name := range names {
				a.printf("%s\n", name)
			}
			return nil
		},
	}
}

func (a *app) deleteCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "delete <moniker>",
		Short: "Remove a genome and its lineage record",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			client, err := a.open(cmd)
			if err != nil {
				return err
			}
			defer client.Close()

			if err := client.Delete(cmd.Context(), args[0]); err != nil {
				return err
			}
			a.printf("deleted moniker=%s\n", args[0])
			return nil
		},
	}
}

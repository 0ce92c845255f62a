package chromos

import (
	"context"
	"errors"
	"fmt"
	"strings"
	"time"

	"github.com/google/uuid"
	"go.uber.org/zap"
	"golang.org/x/sync/errgroup"

	"chromos/internal/codon"
	"chromos/internal/config"
	"chromos/internal/crossover"
	"chromos/internal/genome"
	"chromos/internal/model"
	"chromos/internal/report"
	"chromos/internal/rng"
	"chromos/internal/storage"
)

const (
	genomeSuffix  = ".gen"
	lineagePrefix = "lineage/"
	lineageSuffix = ".json"

	defaultPath = "genomes"
	maxAncestry = 64
)

var ErrBadMoniker = errors.New("invalid moniker")

type Options struct {
	StoreKind string
	Path      string
	// Params defaults to crossover.DefaultParams when nil.
	Params *crossover.Params
	RNG    string
	// Seed is the base seed used when a breed request carries none. Zero
	// draws a fresh seed per breed.
	Seed   uint64
	Logger *zap.Logger
}

// OptionsFromConfig maps loaded settings onto client options.
func OptionsFromConfig(cfg *config.Config, logger *zap.Logger) Options {
	params := cfg.Crossover
	return Options{
		StoreKind: cfg.Store.Kind,
		Path:      cfg.Store.Path,
		Params:    &params,
		RNG:       cfg.Seed.RNG,
		Seed:      cfg.BaseSeed(),
		Logger:    logger,
	}
}

type Client struct {
	store   storage.Store
	params  crossover.Params
	rngKind string
	seed    uint64
	logger  *zap.Logger
	now     func() time.Time
}

type Parent struct {
	Moniker string
	Chance  byte
	Degree  byte
}

type BreedRequest struct {
	Mother Parent
	Father Parent
	// Child defaults to a random moniker.
	Child string
	Seed  uint64
	// Trials > 1 repeats the cross with derived seeds; only the last child is
	// kept.
	Trials int
}

type BreedResult struct {
	Child       string
	Seed        uint64
	Stats       crossover.Stats
	Length      int
	Genes       int
	Fingerprint string
	Summary     *report.BreedSummary
}

type Inspection struct {
	Moniker    string
	Length     int
	Generation byte
	Genus      byte
	Mother     string
	Father     string
	Signature  genome.Signature
	Rows       []model.GeneRow
}

type CountRequest struct {
	Moniker     string
	Type        byte
	Subtype     byte
	NumSubtypes int
}

type FindRequest struct {
	Moniker     string
	Type        byte
	Subtype     byte
	NumSubtypes int
	Mode        genome.SwitchMode
	Identity    genome.Identity
	// Codons is how many payload codons to read from each match.
	Codons int
}

type FindItem struct {
	Offset int
	Header genome.GeneHeader
	Codons []byte
}

func Open(ctx context.Context, opts Options) (*Client, error) {
	kind := opts.StoreKind
	if kind == "" {
		kind = storage.DefaultStoreKind()
	}
	path := opts.Path
	if path == "" && kind != storage.KindMemory {
		path = defaultPath
	}
	params := crossover.DefaultParams()
	if opts.Params != nil {
		params = *opts.Params
	}
	if err := params.Validate(); err != nil {
		return nil, err
	}
	if opts.RNG == "" {
		opts.RNG = rng.KindPCG
	}
	if _, err := rng.New(opts.RNG, 0); err != nil {
		return nil, err
	}
	logger := opts.Logger
	if logger == nil {
		logger = zap.NewNop()
	}

	store, err := storage.NewStore(kind, path)
	if err != nil {
		return nil, err
	}
	if err := store.Init(ctx); err != nil {
		_ = storage.CloseIfSupported(store)
		return nil, err
	}
	return &Client{
		store:   store,
		params:  params,
		rngKind: opts.RNG,
		seed:    opts.Seed,
		logger:  logger,
		now:     time.Now,
	}, nil
}

func (c *Client) Close() error {
	return storage.CloseIfSupported(c.store)
}

// Params returns the recombination parameters the client breeds with.
func (c *Client) Params() crossover.Params { return c.params }

// RNG names the random source kind the client breeds with.
func (c *Client) RNG() string { return c.rngKind }

// GenomeResource is the store name of a genome moniker.
func GenomeResource(moniker string) string { return moniker + genomeSuffix }

func lineageResource(moniker string) string { return lineagePrefix + moniker + lineageSuffix }

func checkMoniker(moniker string) error {
	switch {
	case moniker == "":
		return fmt.Errorf("%w: empty", ErrBadMoniker)
	case len(moniker) > genome.MonikerLen:
		return fmt.Errorf("%w: %q longer than %d bytes", ErrBadMoniker, moniker, genome.MonikerLen)
	case strings.ContainsAny(moniker, "/\\\x00"):
		return fmt.Errorf("%w: %q", ErrBadMoniker, moniker)
	}
	for _, tok := range []codon.Token{codon.GeneStart, codon.EndOfGenome, codon.Extension} {
		if strings.Contains(moniker, tok.String()) {
			return fmt.Errorf("%w: %q contains %q", ErrBadMoniker, moniker, tok.String())
		}
	}
	return nil
}

func (c *Client) load(ctx context.Context, moniker string, who genome.Identity) (*genome.Genome, error) {
	if err := checkMoniker(moniker); err != nil {
		return nil, err
	}
	return genome.Read(ctx, c.store, GenomeResource(moniker), who)
}

// Genomes lists the stored genome monikers.
func (c *Client) Genomes(ctx context.Context) ([]string, error) {
	names, err := c.store.List(ctx, "")
	if err != nil {
		return nil, err
	}
	out := make([]string, 0, len(names))
	for _, name := range names {
		if strings.HasSuffix(name, genomeSuffix) && !strings.Contains(name, "/") {
			out = append(out, strings.TrimSuffix(name, genomeSuffix))
		}
	}
	return out, nil
}

func (c *Client) Breed(ctx context.Context, req BreedRequest) (BreedResult, error) {
	if req.Trials <= 0 {
		req.Trials = 1
	}
	if req.Child == "" {
		req.Child = strings.ReplaceAll(uuid.NewString(), "-", "")
	}
	if err := checkMoniker(req.Child); err != nil {
		return BreedResult{}, err
	}
	var mother, father *genome.Genome
	group, gctx := errgroup.WithContext(ctx)
	group.Go(func() (err error) {
		mother, err = c.load(gctx, req.Mother.Moniker, genome.Identity{})
		return err
	})
	group.Go(func() (err error) {
		father, err = c.load(gctx, req.Father.Moniker, genome.Identity{})
		return err
	})
	if err := group.Wait(); err != nil {
		return BreedResult{}, err
	}

	base := req.Seed
	if base == 0 {
		base = c.seed
	}
	if base == 0 {
		base = rng.Entropy()
	}

	m := crossover.Parent{Genome: mother, Moniker: req.Mother.Moniker, Chance: req.Mother.Chance, Degree: req.Mother.Degree}
	f := crossover.Parent{Genome: father, Moniker: req.Father.Moniker, Chance: req.Father.Chance, Degree: req.Father.Degree}

	var (
		child   *genome.Genome
		stats   crossover.Stats
		seed    uint64
		history = make([]crossover.Stats, 0, req.Trials)
	)
	for i := 0; i < req.Trials; i++ {
		if err := ctx.Err(); err != nil {
			return BreedResult{}, err
		}
		seed = base
		if req.Trials > 1 {
			seed = rng.Derive(base, i)
		}
		src, err := rng.New(c.rngKind, seed)
		if err != nil {
			return BreedResult{}, err
		}
		child, stats, err = crossover.New(c.params, src, c.logger).Cross(m, f, req.Child)
		if err != nil {
			return BreedResult{}, err
		}
		history = append(history, stats)
	}

	if err := child.Save(ctx, c.store, GenomeResource(req.Child)); err != nil {
		return BreedResult{}, err
	}
	sig := genome.ComputeSignature(child.Bytes())
	record := model.LineageRecord{
		VersionedRecord: storage.Versioned(),
		Child:           req.Child,
		Mother:          req.Mother.Moniker,
		Father:          req.Father.Moniker,
		Seed:            seed,
		RNG:             c.rngKind,
		Crossovers:      stats.Crossovers,
		Mutations:       stats.Mutations,
		Cuts:            stats.Cuts,
		Duplications:    stats.Duplications,
		ChildLength:     child.Len(),
		Fingerprint:     sig.Fingerprint,
		CreatedAtUTC:    c.now().UTC().Format(time.RFC3339),
	}
	data, err := storage.EncodeLineage(record)
	if err != nil {
		return BreedResult{}, err
	}
	if err := c.store.WriteAll(ctx, lineageResource(req.Child), data); err != nil {
		return BreedResult{}, err
	}
	c.logger.Info("bred genome",
		zap.String("child", req.Child),
		zap.String("mother", req.Mother.Moniker),
		zap.String("father", req.Father.Moniker),
		zap.Uint64("seed", seed),
		zap.Int("trials", req.Trials))

	result := BreedResult{
		Child:       req.Child,
		Seed:        seed,
		Stats:       stats,
		Length:      child.Len(),
		Genes:       child.GeneCount(),
		Fingerprint: sig.Fingerprint,
	}
	if req.Trials > 1 {
		summary := report.Summarize(history)
		result.Summary = &summary
	}
	return result, nil
}

func (c *Client) Inspect(ctx context.Context, moniker string) (Inspection, error) {
	g, err := c.load(ctx, moniker, genome.Identity{})
	if err != nil {
		return Inspection{}, err
	}
	buf := g.Bytes()
	return Inspection{
		Moniker:    moniker,
		Length:     g.Len(),
		Generation: g.Generation(),
		Genus:      g.Genus(),
		Mother:     g.MotherMoniker(),
		Father:     g.FatherMoniker(),
		Signature:  genome.ComputeSignature(buf),
		Rows:       report.GeneRows(buf),
	}, nil
}

func (c *Client) Count(ctx context.Context, req CountRequest) (int, error) {
	g, err := c.load(ctx, req.Moniker, genome.Identity{})
	if err != nil {
		return 0, err
	}
	return g.CountGenesOfType(req.Type, req.Subtype, req.NumSubtypes), nil
}

// Find lists the genes a trait consumer with req.Identity would express.
func (c *Client) Find(ctx context.Context, req FindRequest) ([]FindItem, error) {
	g, err := c.load(ctx, req.Moniker, req.Identity)
	if err != nil {
		return nil, err
	}
	q := genome.NewQuery(req.Type, req.Subtype, req.NumSubtypes, req.Mode)
	cur := g.Cursor()
	var items []FindItem
	for g.FindNextGene(q) {
		item := FindItem{Offset: cur.GeneStart(), Header: cur.Header()}
		n := min(req.Codons, cur.GeneEnd()-cur.Offset())
		if n > 0 {
			item.Codons = cur.ReadBytes(n)
		}
		items = append(items, item)
	}
	return items, nil
}

// WipeParents clears the lineage monikers of a stored genome.
func (c *Client) WipeParents(ctx context.Context, moniker string) error {
	g, err := c.load(ctx, moniker, genome.Identity{})
	if err != nil {
		return err
	}
	if err := g.DeclareUnverifiedParents(); err != nil {
		return err
	}
	return g.Save(ctx, c.store, GenomeResource(moniker))
}

// Lineage returns the lineage records of moniker and its recorded ancestors,
// nearest first. Genomes without a record end their branch.
func (c *Client) Lineage(ctx context.Context, moniker string) ([]model.LineageRecord, error) {
	if err := checkMoniker(moniker); err != nil {
		return nil, err
	}
	var out []model.LineageRecord
	seen := map[string]bool{}
	queue := []string{moniker}
	for len(queue) > 0 && len(out) < maxAncestry {
		name := queue[0]
		queue = queue[1:]
		if name == "" || seen[name] {
			continue
		}
		seen[name] = true
		data, err := c.store.ReadAll(ctx, lineageResource(name))
		if errors.Is(err, storage.ErrNotFound) {
			continue
		}
		if err != nil {
			return nil, err
		}
		record, err := storage.DecodeLineage(data)
		if err != nil {
			return nil, fmt.Errorf("lineage of %s: %w", name, err)
		}
		out = append(out, record)
		queue = append(queue, record.Mother, record.Father)
	}
	return out, nil
}

// Delete removes a genome and its lineage record.
func (c *Client) Delete(ctx context.Context, moniker string) error {
	if err := checkMoniker(moniker); err != nil {
		return err
	}
	if err := c.store.Delete(ctx, GenomeResource(moniker)); err != nil {
		return err
	}
	err := c.store.Delete(ctx, lineageResource(moniker))
	if err != nil && !errors.Is(err, storage.ErrNotFound) {
		return err
	}
	return nil
}

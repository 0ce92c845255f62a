package crossover

import (
	"errors"

	"go.uber.org/zap"

	"chromos/internal/codon"
	"chromos/internal/genome"
	"chromos/internal/rng"
)

var (
	ErrNoParent = errors.New("both parents are required")
	ErrNoRand   = errors.New("random source is required")
)

// Recombiner crosses genomes. It is not safe for concurrent use because it
// draws from a single random source.
type Recombiner struct {
	Params Params
	Rand   rng.Source
	Logger *zap.Logger
}

func New(params Params, src rng.Source, logger *zap.Logger) *Recombiner {
	return &Recombiner{Params: params, Rand: src, Logger: logger}
}

type strand struct {
	parent    Parent
	name      string
	buf       []byte
	cur       *genome.Cursor
	lastStart int
}

func newStrand(p Parent, name string) *strand {
	buf := p.Genome.Bytes()
	s := &strand{parent: p, name: name, buf: buf, cur: genome.NewCursor(buf), lastStart: -1}
	s.cur.AdvanceToNextGene()
	return s
}

// crossing is the state of one Cross call.
type crossing struct {
	r     *Recombiner
	out   []byte
	limit int
	stats Stats

	prevCopied genome.GeneID
	lastCopied genome.GeneID
}

// Cross builds a child from mother and father. The child ends with a single
// end sentinel, its length never exceeds both parents' lengths plus
// Params.Slack, and its header gene records both parents' monikers.
func (r *Recombiner) Cross(mother, father Parent, child string) (*genome.Genome, Stats, error) {
	if mother.Genome == nil || father.Genome == nil {
		return nil, Stats{}, ErrNoParent
	}
	if r.Rand == nil {
		return nil, Stats{}, ErrNoRand
	}
	if err := r.Params.Validate(); err != nil {
		return nil, Stats{}, err
	}
	for _, p := range []Parent{mother, father} {
		if !p.Genome.HasHeader() {
			e := genome.NewFormatError(genome.KeyMissingHeader, genome.NoGeneID, 0, 0)
			e.Resource = p.Moniker
			return nil, Stats{}, e
		}
	}

	limit := mother.Genome.Len() + father.Genome.Len()
	x := &crossing{
		r:          r,
		out:        make([]byte, 0, limit+r.Params.Slack()),
		limit:      limit,
		prevCopied: genome.NoGeneID,
		lastCopied: genome.NoGeneID,
	}
	strands := [2]*strand{newStrand(mother, "mother"), newStrand(father, "father")}

	act := r.Rand.IntN(2)
	alt := 1 - act
	x.stats.StartedOnMother = act == 0

	if err := x.run(&strands, act, alt); err != nil {
		r.logger().Debug("cross aborted", zap.String("child", child), zap.Error(err))
		return nil, Stats{}, err
	}
	x.out = codon.AppendToken(x.out, codon.EndOfGenome)

	g, err := genome.FromBytesLimit(x.out, genome.Identity{}, r.Params.MaxGeneLength)
	if err != nil {
		return nil, Stats{}, err
	}
	if err := g.SetParents(mother.Moniker, father.Moniker); err != nil {
		return nil, Stats{}, err
	}

	r.logger().Debug("crossed genomes",
		zap.String("child", child),
		zap.String("mother", mother.Moniker),
		zap.String("father", father.Moniker),
		zap.Int("length", g.Len()),
		zap.Int("genes", x.stats.GenesCopied),
		zap.Int("crossovers", x.stats.Crossovers),
		zap.Int("mutations", x.stats.Mutations),
		zap.Int("cuts", x.stats.Cuts),
		zap.Int("duplications", x.stats.Duplications))
	return g, x.stats, nil
}

func (x *crossing) run(strands *[2]*strand, act, alt int) error {
	r := x.r
	for !strands[act].cur.AtEnd() {
		run := r.drawRun()
		for {
			src := strands[act]
			ok, err := x.copyGene(src, false)
			if err != nil {
				return err
			}
			if !ok {
				x.stats.Truncated = true
				return nil
			}
			if !src.cur.SkipGene() {
				return nil
			}
			if run--; run > 0 {
				continue
			}
			// Never split a run of same-identity genes, and only cross where
			// the other strand can pick up after the same gene.
			if x.prevCopied == x.lastCopied {
				continue
			}
			if !seek(strands[alt], x.lastCopied) {
				continue
			}
			break
		}

		act, alt = alt, act
		if !strands[act].cur.AtEnd() {
			x.stats.Crossovers++
		}
		if err := x.injectError(strands[act], strands[alt]); err != nil {
			return err
		}
	}
	return nil
}

// injectError occasionally damages the join: a cut drops the next gene of the
// new active strand, a duplication repeats the gene just copied from the
// strand being left, marked as a clone.
func (x *crossing) injectError(active, left *strand) error {
	r := x.r
	roll := r.Rand.Float64()
	switch {
	case roll < r.Params.CutChance:
		if active.cur.AtEnd() || !active.cur.Header().Flags.Has(genome.FlagCuttable) {
			return nil
		}
		active.cur.SkipGene()
		x.stats.Cuts++
	case roll < r.Params.CutChance+r.Params.DuplicationChance:
		if left.lastStart < 0 {
			return nil
		}
		left.cur.Bookmark(genome.MarkSecondary)
		defer left.cur.Restore(genome.MarkSecondary)
		if !left.cur.SeekGene(left.lastStart) || !left.cur.Header().Flags.Has(genome.FlagDuplicable) {
			return nil
		}
		ok, err := x.copyGene(left, true)
		if err != nil {
			return err
		}
		if ok {
			x.stats.Duplications++
		}
	}
	return nil
}

// copyGene appends the current gene of s to the child. It reports false when
// the child has no room left for it.
func (x *crossing) copyGene(s *strand, clone bool) (bool, error) {
	start := s.cur.GeneStart()
	end := s.cur.GeneEnd()
	length := end - start
	if length > x.r.Params.MaxGeneLength {
		e := genome.NewFormatError(genome.KeyGeneTooLong, s.cur.CurrentGeneIdentity(), start, length)
		e.Resource = s.parent.Moniker
		return false, e
	}
	if len(x.out)+length > x.limit {
		return false, nil
	}

	h := s.cur.Header()
	base := len(x.out)
	x.out = append(x.out, s.buf[start:end]...)
	if clone && h.Generation < 255 {
		at := base + codon.TokenSize + genome.GenerationOffset
		if next := x.out[at] + 1; !formsBoundary(x.out, at, next) {
			x.out[at] = next
		}
	}
	x.stats.Mutations += x.r.mutatePayload(x.out, base+codon.TokenSize+genome.HeaderLen, h, s.parent)

	s.lastStart = start
	x.prevCopied, x.lastCopied = x.lastCopied, h.Identity()
	x.stats.GenesCopied++
	return true, nil
}

// seek looks forward on s for a gene with identity id and, if found, leaves the
// cursor on the gene after it. Otherwise the cursor is left untouched.
func seek(s *strand, id genome.GeneID) bool {
	s.cur.Bookmark(genome.MarkPrimary)
	for !s.cur.AtEnd() {
		if s.cur.CurrentGeneIdentity() == id {
			s.cur.SkipGene()
			return true
		}
		if !s.cur.SkipGene() {
			break
		}
	}
	s.cur.Restore(genome.MarkPrimary)
	return false
}

// drawRun draws a run length centred on Linkage, never below MinRun.
func (r *Recombiner) drawRun() int {
	spread := 2 * (r.Params.Linkage - r.Params.MinRun)
	if spread <= 0 {
		return r.Params.MinRun
	}
	return r.Params.MinRun + r.Rand.IntN(spread+1)
}

func (r *Recombiner) logger() *zap.Logger {
	if r.Logger == nil {
		return zap.NewNop()
	}
	return r.Logger
}

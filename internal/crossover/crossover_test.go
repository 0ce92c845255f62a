package crossover

import (
	"bytes"
	"errors"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap/zaptest"

	"chromos/internal/codon"
	"chromos/internal/genome"
	"chromos/internal/rng"
)

type fixedSource struct {
	n int
	f float64
}

func (s fixedSource) IntN(n int) int   { return s.n % n }
func (s fixedSource) Float64() float64 { return s.f }

func testGene(typ, subtype, id byte, flags genome.Flags, payload ...byte) genome.Gene {
	return genome.Gene{
		GeneHeader: genome.GeneHeader{Type: typ, Subtype: subtype, ID: id, Flags: flags, Mutability: 255},
		Payload:    payload,
	}
}

func buildParent(t *testing.T, moniker string, genes ...genome.Gene) Parent {
	t.Helper()
	b := genome.NewBuilder().Header(1, "", "")
	for _, g := range genes {
		b.Add(g)
	}
	g, err := b.Build(genome.Identity{})
	require.NoError(t, err)
	return Parent{Genome: g, Moniker: moniker}
}

func chain(n int, flags genome.Flags, fill byte) []genome.Gene {
	genes := make([]genome.Gene, n)
	for i := range genes {
		genes[i] = testGene(genome.TypeBiochemistry, byte(i%3), byte(i), flags, fill, fill+1, byte(i))
	}
	return genes
}

func noErrors() Params {
	p := DefaultParams()
	p.CutChance = 0
	p.DuplicationChance = 0
	return p
}

func TestCrossWithoutMutationCopiesOneParent(t *testing.T) {
	params := noErrors()
	params.MinRun = params.Linkage

	for seed := uint64(0); seed < 8; seed++ {
		mother := buildParent(t, "mum", testGene(1, 0, 0, genome.FlagMutable, 0xAA, 0xAB))
		father := buildParent(t, "dad", testGene(1, 0, 0, genome.FlagMutable, 0xBB, 0xBC))

		child, stats, err := New(params, rng.NewPCG(seed), zaptest.NewLogger(t)).Cross(mother, father, "kid")
		require.NoError(t, err)

		genes := genome.DecodeGenes(child.Bytes())
		require.Len(t, genes, 2)
		want := []byte{0xBB, 0xBC}
		if stats.StartedOnMother {
			want = []byte{0xAA, 0xAB}
		}
		assert.Equal(t, want, genes[1].Payload)
		assert.Zero(t, stats.Mutations)
		assert.Zero(t, stats.Crossovers)
		assert.Equal(t, "mum", child.MotherMoniker())
		assert.Equal(t, "dad", child.FatherMoniker())
		assert.Equal(t, 1, child.CountGenesOfType(1, 0, 0))
	}
}

func TestCrossPicksEitherParentForSingleGene(t *testing.T) {
	params := noErrors()
	params.Linkage, params.MinRun = 1, 1

	seen := map[byte]bool{}
	for seed := uint64(0); seed < 32; seed++ {
		mother := buildParent(t, "mum", testGene(1, 0, 0, genome.FlagMutable, 0xAA))
		father := buildParent(t, "dad", testGene(1, 0, 0, genome.FlagMutable, 0xBB))
		child, _, err := New(params, rng.NewPCG(seed), nil).Cross(mother, father, "kid")
		require.NoError(t, err)
		genes := genome.DecodeGenes(child.Bytes())
		require.Len(t, genes, 2)
		seen[genes[1].Payload[0]] = true
	}
	assert.True(t, seen[0xAA], "mother's gene never inherited")
	assert.True(t, seen[0xBB], "father's gene never inherited")
}

func TestCrossChildEndsWithSingleSentinel(t *testing.T) {
	params := DefaultParams()
	params.Linkage = 3
	params.CutChance, params.DuplicationChance = 0.2, 0.2
	params.BaseMutationRate = 0.5

	for seed := uint64(0); seed < 40; seed++ {
		mother := buildParent(t, "mum", chain(30, genome.FlagMutable|genome.FlagCuttable|genome.FlagDuplicable, 'g')...)
		father := buildParent(t, "dad", chain(25, genome.FlagMutable|genome.FlagCuttable|genome.FlagDuplicable, 'e')...)
		mother.Chance, father.Chance = 255, 255

		child, _, err := New(params, rng.NewPCG(seed), nil).Cross(mother, father, "kid")
		require.NoError(t, err)

		buf := child.Bytes()
		end := codon.AppendToken(nil, codon.EndOfGenome)
		assert.True(t, bytes.HasSuffix(buf, end))
		assert.Equal(t, 1, bytes.Count(buf, end), "seed %d", seed)
		assert.NoError(t, genome.Validate(buf, params.MaxGeneLength))
		assert.LessOrEqual(t, child.Len(), mother.Genome.Len()+father.Genome.Len()+params.Slack())
	}
}

func TestCrossLengthBoundHoldsUnderDuplication(t *testing.T) {
	params := noErrors()
	params.Linkage = 1
	params.DuplicationChance = 1

	mother := buildParent(t, "mum", chain(40, genome.FlagDuplicable, 1)...)
	father := buildParent(t, "dad", chain(40, genome.FlagDuplicable, 2)...)
	for seed := uint64(0); seed < 10; seed++ {
		child, stats, err := New(params, rng.NewPCG(seed), nil).Cross(mother, father, "kid")
		require.NoError(t, err)
		assert.Positive(t, stats.Duplications)
		assert.LessOrEqual(t, child.Len(), mother.Genome.Len()+father.Genome.Len()+params.Slack())
	}
}

func TestCrossPreservesStructureUnderHeavyMutation(t *testing.T) {
	params := noErrors()
	params.BaseMutationRate = 1
	params.MinRun = params.Linkage

	genes := chain(12, genome.FlagMutable, 0)
	mother := buildParent(t, "mum", genes...)
	father := buildParent(t, "dad", genes...)
	mother.Chance, father.Chance = 255, 255
	mother.Degree, father.Degree = 128, 128

	child, stats, err := New(params, rng.NewPCG(7), nil).Cross(mother, father, "kid")
	require.NoError(t, err)
	assert.Positive(t, stats.Mutations)

	want := genome.DecodeGenes(mother.Genome.Bytes())
	got := genome.DecodeGenes(child.Bytes())
	require.Len(t, got, len(want))
	for i := range want {
		assert.Equal(t, want[i].GeneHeader, got[i].GeneHeader, "header of gene %d", i)
		assert.Len(t, got[i].Payload, len(want[i].Payload))
	}
	// The header gene is not mutable, so only monikers differ there.
	assert.Equal(t, want[0].Payload[0], got[0].Payload[0])
}

func TestCrossZeroChanceNeverMutates(t *testing.T) {
	params := noErrors()
	params.BaseMutationRate = 1
	mother := buildParent(t, "mum", chain(10, genome.FlagMutable, 3)...)
	father := buildParent(t, "dad", chain(10, genome.FlagMutable, 3)...)

	child, stats, err := New(params, rng.NewPCG(1), nil).Cross(mother, father, "kid")
	require.NoError(t, err)
	assert.Zero(t, stats.Mutations)
	got := genome.DecodeGenes(child.Bytes())
	want := genome.DecodeGenes(mother.Genome.Bytes())
	for i := 1; i < len(got); i++ {
		assert.Equal(t, want[i].Payload, got[i].Payload)
	}
}

func TestCrossCutsDropGenes(t *testing.T) {
	params := noErrors()
	params.Linkage = 1
	params.CutChance = 1

	mother := buildParent(t, "mum", chain(20, genome.FlagCuttable, 1)...)
	father := buildParent(t, "dad", chain(20, genome.FlagCuttable, 2)...)
	child, stats, err := New(params, rng.NewPCG(3), nil).Cross(mother, father, "kid")
	require.NoError(t, err)

	assert.Positive(t, stats.Cuts)
	assert.Equal(t, stats.GenesCopied, child.GeneCount())
	assert.Less(t, child.GeneCount(), mother.Genome.GeneCount())
	assert.True(t, child.HasHeader(), "the header gene is never cut")
}

func TestCrossDuplicatesMarkClones(t *testing.T) {
	params := noErrors()
	params.Linkage = 1
	params.DuplicationChance = 1

	mother := buildParent(t, "mum", chain(6, genome.FlagDuplicable, 1)...)
	father := buildParent(t, "dad", chain(6, genome.FlagDuplicable, 2)...)
	child, stats, err := New(params, rng.NewPCG(5), nil).Cross(mother, father, "kid")
	require.NoError(t, err)
	require.Positive(t, stats.Duplications)

	genes := genome.DecodeGenes(child.Bytes())
	clones := 0
	for i := 1; i < len(genes); i++ {
		if genes[i].Generation == 0 {
			continue
		}
		clones++
		assert.Equal(t, byte(1), genes[i].Generation)
		assert.Equal(t, genes[i-1].Identity(), genes[i].Identity(), "clone follows its original")
		assert.Equal(t, genes[i-1].Payload, genes[i].Payload)
	}
	assert.Equal(t, stats.Duplications, clones)
}

func TestCrossCloneGenerationSaturates(t *testing.T) {
	params := noErrors()
	params.Linkage = 1
	params.DuplicationChance = 1

	old := testGene(1, 0, 0, genome.FlagDuplicable, 9)
	old.Generation = 255
	mother := buildParent(t, "mum", old, testGene(1, 0, 1, 0, 1))
	father := buildParent(t, "dad", old, testGene(1, 0, 1, 0, 2))
	child, _, err := New(params, rng.NewPCG(2), nil).Cross(mother, father, "kid")
	require.NoError(t, err)
	for _, g := range genome.DecodeGenes(child.Bytes())[1:] {
		if g.ID == 0 {
			assert.Equal(t, byte(255), g.Generation)
		}
	}
}

func TestCrossRejectsOverlongGene(t *testing.T) {
	params := noErrors()
	params.MaxGeneLength = 100
	mother := buildParent(t, "mum", testGene(1, 0, 0, 0, make([]byte, 200)...))
	father := buildParent(t, "dad", testGene(1, 0, 0, 0, make([]byte, 200)...))

	_, _, err := New(params, rng.NewPCG(1), nil).Cross(mother, father, "kid")
	require.Error(t, err)
	assert.ErrorIs(t, err, genome.ErrFormat)
	var ge *genome.Error
	require.ErrorAs(t, err, &ge)
	assert.Equal(t, genome.KeyGeneTooLong, ge.Key)
	assert.Equal(t, genome.MakeGeneID(1, 0, 0), ge.Gene)
}

func TestCrossInputErrors(t *testing.T) {
	parent := buildParent(t, "mum", testGene(1, 0, 0, 0, 1))
	headless, err := genome.NewBuilder().Add(testGene(1, 0, 0, 0, 1)).Build(genome.Identity{})
	require.NoError(t, err)

	r := New(DefaultParams(), rng.NewPCG(1), nil)
	_, _, err = r.Cross(parent, Parent{Moniker: "nobody"}, "kid")
	assert.ErrorIs(t, err, ErrNoParent)

	_, _, err = New(DefaultParams(), nil, nil).Cross(parent, parent, "kid")
	assert.ErrorIs(t, err, ErrNoRand)

	_, _, err = r.Cross(parent, Parent{Genome: headless, Moniker: "dad"}, "kid")
	var ge *genome.Error
	require.True(t, errors.As(err, &ge))
	assert.Equal(t, genome.KeyMissingHeader, ge.Key)
	assert.Equal(t, "dad", ge.Resource)

	bad := DefaultParams()
	bad.Linkage = 0
	_, _, err = New(bad, rng.NewPCG(1), nil).Cross(parent, parent, "kid")
	assert.Error(t, err)
}

func TestCrossIsDeterministicPerSeed(t *testing.T) {
	params := DefaultParams()
	params.Linkage = 4
	mother := buildParent(t, "mum", chain(30, genome.FlagMutable|genome.FlagCuttable|genome.FlagDuplicable, 1)...)
	father := buildParent(t, "dad", chain(30, genome.FlagMutable|genome.FlagCuttable|genome.FlagDuplicable, 2)...)
	mother.Chance, father.Chance = 200, 200

	for _, kind := range []string{rng.KindPCG, rng.KindChaCha} {
		a, err := rng.New(kind, 99)
		require.NoError(t, err)
		b, err := rng.New(kind, 99)
		require.NoError(t, err)
		first, s1, err := New(params, a, nil).Cross(mother, father, "kid")
		require.NoError(t, err)
		second, s2, err := New(params, b, nil).Cross(mother, father, "kid")
		require.NoError(t, err)
		assert.True(t, first.Equal(second), kind)
		assert.Equal(t, s1, s2, kind)
	}
}

func TestParamsValidate(t *testing.T) {
	require.NoError(t, DefaultParams().Validate())

	p := DefaultParams()
	p.MinRun = p.Linkage + 1
	p.CutChance = 0.7
	p.DuplicationChance = 0.7
	p.MaxGeneLength = 4
	err := p.Validate()
	require.Error(t, err)
	assert.Contains(t, err.Error(), "min run")
	assert.Contains(t, err.Error(), "cut and duplication")
	assert.Contains(t, err.Error(), "max gene length")
	assert.Equal(t, DefaultParams().MaxGeneLength+codon.TokenSize, DefaultParams().Slack())
}

func idsGenes(fill byte, ids ...byte) []genome.Gene {
	genes := make([]genome.Gene, len(ids))
	for i, id := range ids {
		genes[i] = testGene(1, 0, id, 0, fill, id)
	}
	return genes
}

type origin struct {
	ID   byte
	Fill byte
}

func origins(g *genome.Genome) []origin {
	var out []origin
	for _, gene := range genome.DecodeGenes(g.Bytes())[1:] {
		out = append(out, origin{ID: gene.ID, Fill: gene.Payload[0]})
	}
	return out
}

func TestCrossOnlyAtSyncPoints(t *testing.T) {
	const mum, dad = 10, 20
	params := noErrors()
	params.Linkage = 1

	mother := buildParent(t, "mum", idsGenes(mum, 0, 1, 2, 3, 4, 5, 6, 7, 8, 9)...)
	father := buildParent(t, "dad", idsGenes(dad, 0, 1, 2, 3, 4, 6, 7, 8, 9)...)

	tests := []struct {
		name       string
		start      int
		mother     Parent
		father     Parent
		want       []origin
		crossovers int
	}{
		{
			name:   "missing gene keeps the mother strand",
			start:  0,
			mother: mother,
			father: father,
			want: []origin{
				{0, dad}, {1, mum}, {2, dad}, {3, mum}, {4, dad},
				{5, mum}, {6, mum}, {7, dad}, {8, mum}, {9, dad},
			},
			crossovers: 9,
		},
		{
			name:   "father strand skips the missing gene",
			start:  1,
			mother: mother,
			father: father,
			want: []origin{
				{0, mum}, {1, dad}, {2, mum}, {3, dad}, {4, mum},
				{6, dad}, {7, mum}, {8, dad}, {9, mum},
			},
			crossovers: 9,
		},
		{
			name:   "same-identity run is not split",
			start:  0,
			mother: buildParent(t, "mum", idsGenes(mum, 0, 1, 1, 1, 1, 2, 3)...),
			father: buildParent(t, "dad", idsGenes(dad, 0, 1, 1, 1, 1, 2, 3)...),
			want: []origin{
				{0, dad}, {1, mum}, {1, dad}, {1, dad}, {1, dad}, {2, dad}, {3, mum},
			},
			crossovers: 4,
		},
	}
	for _, tc := range tests {
		t.Run(tc.name, func(t *testing.T) {
			src := fixedSource{n: tc.start, f: 0.99}
			child, stats, err := New(params, src, nil).Cross(tc.mother, tc.father, "kid")
			require.NoError(t, err)
			assert.Equal(t, tc.want, origins(child))
			assert.Equal(t, tc.crossovers, stats.Crossovers)
			assert.Equal(t, len(tc.want)+1, stats.GenesCopied)
		})
	}
}

func TestCrossKeepsGeneOrderWithMismatchedParents(t *testing.T) {
	params := noErrors()
	params.Linkage = 1
	mother := buildParent(t, "mum", idsGenes(1, 0, 1, 2, 3, 4, 5, 6, 7, 8, 9)...)
	father := buildParent(t, "dad", idsGenes(2, 0, 1, 2, 3, 4, 6, 7, 8, 9)...)

	for seed := uint64(0); seed < 64; seed++ {
		child, _, err := New(params, rng.NewPCG(seed), nil).Cross(mother, father, "kid")
		require.NoError(t, err)
		got := origins(child)
		for i := 1; i < len(got); i++ {
			require.Less(t, got[i-1].ID, got[i].ID, "seed %d: %v", seed, got)
			if got[i-1].ID == 5 {
				require.Equal(t, byte(1), got[i].Fill, "seed %d crossed after a gene the father lacks", seed)
			}
		}
	}
}

func TestSeekMissLeavesCursorInPlace(t *testing.T) {
	s := newStrand(buildParent(t, "dad", idsGenes(2, 0, 1, 2, 3)...), "father")
	header := s.cur.CurrentGeneIdentity()
	require.True(t, s.cur.SkipGene())
	require.True(t, s.cur.SkipGene())
	at := s.cur.GeneStart()

	assert.False(t, seek(s, genome.MakeGeneID(1, 0, 9)), "absent gene")
	assert.Equal(t, at, s.cur.GeneStart())
	assert.False(t, seek(s, header), "gene behind the cursor")
	assert.Equal(t, at, s.cur.GeneStart())
	assert.Equal(t, genome.MakeGeneID(1, 0, 1), s.cur.CurrentGeneIdentity())

	require.True(t, seek(s, genome.MakeGeneID(1, 0, 2)))
	assert.Equal(t, genome.MakeGeneID(1, 0, 3), s.cur.CurrentGeneIdentity())
}

func TestCloneGenerationNeverFormsToken(t *testing.T) {
	params := noErrors()
	params.Linkage = 1
	params.DuplicationChance = 1

	odd := testGene('g', 'e', 'n', genome.FlagDuplicable, 7)
	odd.Generation = 'c'
	mother := buildParent(t, "mum", odd, testGene(1, 0, 1, 0, 1))
	father := buildParent(t, "dad", odd, testGene(1, 0, 1, 0, 2))

	child, stats, err := New(params, fixedSource{n: 0, f: 0}, nil).Cross(mother, father, "kid")
	require.NoError(t, err)
	require.Positive(t, stats.Duplications)
	require.NoError(t, genome.Validate(child.Bytes(), params.MaxGeneLength))
	seen := 0
	for _, g := range genome.DecodeGenes(child.Bytes()) {
		if g.Type == 'g' {
			seen++
			assert.Equal(t, byte('c'), g.Generation)
		}
	}
	assert.Equal(t, 1+stats.Duplications, seen)
}

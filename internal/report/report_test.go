package report

import (
	"bytes"
	"encoding/json"
	"strings"
	"testing"

	"github.com/google/go-cmp/cmp"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"chromos/internal/crossover"
	"chromos/internal/genome"
	"chromos/internal/model"
)

func sampleBuffer() []byte {
	return genome.NewBuilder().
		Header(2, "m", "f").
		Add(genome.Gene{
			GeneHeader: genome.GeneHeader{Type: 1, Subtype: 4, ID: 9, Generation: 1, SwitchOn: 3, Flags: genome.FlagMutable | genome.FlagFemaleOnly, Mutability: 200, Variant: 2},
			Payload:    []byte{0xde, 0xad},
		}).
		Bytes()
}

func TestGeneRows(t *testing.T) {
	rows := GeneRows(sampleBuffer())
	require.Len(t, rows, 2)

	want := model.GeneRow{
		Index:      1,
		Offset:     rows[0].Length,
		Length:     14,
		Type:       1,
		TypeName:   "biochemistry",
		Subtype:    4,
		ID:         9,
		Generation: 1,
		SwitchOn:   3,
		Flags:      "mutable|female",
		Mutability: 200,
		Variant:    2,
		Payload:    "dead",
	}
	if diff := cmp.Diff(want, rows[1]); diff != "" {
		t.Fatalf("row mismatch (-want +got):\n%s", diff)
	}
	assert.Equal(t, "creature", rows[0].TypeName)
	assert.Equal(t, "", rows[0].Flags)
}

func TestWriteGeneCSV(t *testing.T) {
	var buf bytes.Buffer
	require.NoError(t, WriteGeneCSV(&buf, GeneRows(sampleBuffer())))

	lines := strings.Split(strings.TrimSpace(buf.String()), "\n")
	require.Len(t, lines, 3)
	assert.True(t, strings.HasPrefix(lines[0], "index,offset,length,type,type_name"))
	assert.Contains(t, lines[2], "mutable|female")
	assert.True(t, strings.HasSuffix(lines[2], ",dead"))

	buf.Reset()
	require.NoError(t, WriteGeneCSV(&buf, nil))
	assert.Zero(t, buf.Len())
}

func TestSummarize(t *testing.T) {
	summary := Summarize([]crossover.Stats{
		{Crossovers: 2, Mutations: 10, GenesCopied: 5, StartedOnMother: true},
		{Crossovers: 4, Mutations: 20, GenesCopied: 5, Cuts: 1, Truncated: true},
	})
	assert.Equal(t, 2, summary.Trials)
	assert.Equal(t, 3.0, summary.Crossovers.Mean)
	assert.InDelta(t, 1.41421356, summary.Crossovers.StdDev, 1e-6)
	assert.Equal(t, 10.0, summary.Mutations.Min)
	assert.Equal(t, 20.0, summary.Mutations.Max)
	assert.Equal(t, 0.0, summary.GenesCopied.StdDev)
	assert.Equal(t, 0.5, summary.Cuts.Mean)
	assert.Equal(t, 0.5, summary.MotherFirstRate)
	assert.Equal(t, 1, summary.Truncated)
}

func TestSummarizeSingleTrialHasNoSpread(t *testing.T) {
	summary := Summarize([]crossover.Stats{{Crossovers: 3}})
	assert.Equal(t, 3.0, summary.Crossovers.Mean)
	assert.Zero(t, summary.Crossovers.StdDev)

	var buf bytes.Buffer
	require.NoError(t, WriteSummaryJSON(&buf, summary))
	var decoded BreedSummary
	require.NoError(t, json.Unmarshal(buf.Bytes(), &decoded))
	assert.Equal(t, summary, decoded)
}

func TestSummarizeEmpty(t *testing.T) {
	assert.Equal(t, BreedSummary{}, Summarize(nil))
}

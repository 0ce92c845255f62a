package config

import (
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"chromos/internal/crossover"
)

func TestDefaultsMatchCrossoverDefaults(t *testing.T) {
	cfg := Default()
	want := crossover.DefaultParams()

	assert.Equal(t, "file", cfg.Store.Kind)
	assert.Equal(t, "genomes", cfg.Store.Path)
	assert.Equal(t, "info", cfg.Log.Level)
	assert.Equal(t, "pcg", cfg.Seed.RNG)
	assert.Equal(t, want.Linkage, cfg.Crossover.Linkage)
	assert.Equal(t, want.MinRun, cfg.Crossover.MinRun)
	assert.InDelta(t, want.BaseMutationRate, cfg.Crossover.BaseMutationRate, 1e-15)
	assert.Equal(t, want.MaxExponent, cfg.Crossover.MaxExponent)
	assert.InDelta(t, want.CutChance, cfg.Crossover.CutChance, 1e-15)
	assert.InDelta(t, want.DuplicationChance, cfg.Crossover.DuplicationChance, 1e-15)
	assert.Equal(t, want.MaxGeneLength, cfg.Crossover.MaxGeneLength)
	require.NoError(t, cfg.Validate())
}

func TestLoadOverlaysUserFile(t *testing.T) {
	path := filepath.Join(t.TempDir(), "chromos.yaml")
	require.NoError(t, os.WriteFile(path, []byte("store:\n  kind: badger\ncrossover:\n  linkage: 8\nseed:\n  rng: chacha\n"), 0o644))

	cfg, err := Load(path)
	require.NoError(t, err)
	assert.Equal(t, "badger", cfg.Store.Kind)
	assert.Equal(t, "genomes", cfg.Store.Path, "keys absent from the file keep their defaults")
	assert.Equal(t, 8, cfg.Crossover.Linkage)
	assert.Equal(t, 1, cfg.Crossover.MinRun)
	assert.Equal(t, "chacha", cfg.Seed.RNG)
}

func TestLoadWithoutPathReturnsDefaults(t *testing.T) {
	cfg, err := Load("")
	require.NoError(t, err)
	assert.Equal(t, Default(), cfg)
}

func TestLoadRejectsInvalidValues(t *testing.T) {
	cases := map[string]string{
		"store":     "store:\n  kind: tape\n",
		"rng":       "seed:\n  rng: dice\n",
		"crossover": "crossover:\n  linkage: 0\n",
		"syntax":    "store: [\n",
	}
	for name, body := range cases {
		t.Run(name, func(t *testing.T) {
			path := filepath.Join(t.TempDir(), "bad.yaml")
			require.NoError(t, os.WriteFile(path, []byte(body), 0o644))
			_, err := Load(path)
			assert.Error(t, err)
		})
	}

	_, err := Load(filepath.Join(t.TempDir(), "missing.yaml"))
	assert.Error(t, err)
}

func TestBaseSeed(t *testing.T) {
	cfg := Default()
	assert.Zero(t, cfg.BaseSeed())

	cfg.Seed.Phrase = "albia"
	phrase := cfg.BaseSeed()
	assert.NotZero(t, phrase)
	assert.Equal(t, phrase, cfg.BaseSeed())

	cfg.Seed.Value = 42
	assert.Equal(t, uint64(42), cfg.BaseSeed())
}

func TestWriteYAMLRoundTrip(t *testing.T) {
	cfg := Default()
	cfg.Store.Kind = "memory"
	cfg.Crossover.Linkage = 12
	path := filepath.Join(t.TempDir(), "out.yaml")
	require.NoError(t, cfg.WriteYAML(path))

	loaded, err := Load(path)
	require.NoError(t, err)
	assert.Equal(t, cfg, loaded)
}

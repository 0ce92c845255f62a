package report

import (
	"encoding/json"
	"fmt"
	"os"
	"path/filepath"
	"sort"

	"chromos/internal/crossover"
	"chromos/internal/model"
)

const breedIndexFile = "breed_index.json"

// BreedConfig records what a breed was asked to do.
type BreedConfig struct {
	Child   string           `json:"child"`
	Mother  string           `json:"mother"`
	Father  string           `json:"father"`
	Seed    uint64           `json:"seed"`
	RNG     string           `json:"rng"`
	Trials  int              `json:"trials"`
	Params  crossover.Params `json:"params"`
	Chances [2]byte          `json:"chances"`
	Degrees [2]byte          `json:"degrees"`
}

// BreedArtifacts is everything written for one breed.
type BreedArtifacts struct {
	Config  BreedConfig
	Stats   crossover.Stats
	Summary *BreedSummary
	Lineage []model.LineageRecord
	Genes   []model.GeneRow
}

type BreedIndexEntry struct {
	Child        string `json:"child"`
	Mother       string `json:"mother"`
	Father       string `json:"father"`
	Seed         uint64 `json:"seed"`
	Trials       int    `json:"trials"`
	Fingerprint  string `json:"fingerprint"`
	CreatedAtUTC string `json:"created_at_utc"`
}

// WriteBreedArtifacts writes the artifacts into baseDir/<child> and returns
// that directory.
func WriteBreedArtifacts(baseDir string, artifacts BreedArtifacts) (string, error) {
	if artifacts.Config.Child == "" {
		return "", fmt.Errorf("child moniker is required")
	}
	dir := filepath.Join(baseDir, artifacts.Config.Child)
	if err := os.MkdirAll(dir, 0o755); err != nil {
		return "", err
	}

	if err := writeJSON(filepath.Join(dir, "config.json"), artifacts.Config); err != nil {
		return "", err
	}
	if err := writeJSON(filepath.Join(dir, "stats.json"), artifacts.Stats); err != nil {
		return "", err
	}
	if artifacts.Summary != nil {
		if err := writeJSON(filepath.Join(dir, "summary.json"), artifacts.Summary); err != nil {
			return "", err
		}
	}
	if err := writeJSON(filepath.Join(dir, "lineage.json"), artifacts.Lineage); err != nil {
		return "", err
	}

	f, err := os.Create(filepath.Join(dir, "genes.csv"))
	if err != nil {
		return "", err
	}
	if err := WriteGeneCSV(f, artifacts.Genes); err != nil {
		_ = f.Close()
		return "", err
	}
	if err := f.Close(); err != nil {
		return "", err
	}
	return dir, nil
}

// AppendBreedIndex records entry in baseDir's index, replacing an earlier entry
// for the same child.
func AppendBreedIndex(baseDir string, entry BreedIndexEntry) error {
	if entry.Child == "" {
		return fmt.Errorf("child moniker is required")
	}
	if err := os.MkdirAll(baseDir, 0o755); err != nil {
		return err
	}
	index, err := ListBreedIndex(baseDir)
	if err != nil {
		return err
	}
	for i := range index {
		if index[i].Child == entry.Child {
			index[i] = entry
			return writeJSON(filepath.Join(baseDir, breedIndexFile), index)
		}
	}
	index = append(index, entry)
	return writeJSON(filepath.Join(baseDir, breedIndexFile), index)
}

// ListBreedIndex returns the index newest first.
func ListBreedIndex(baseDir string) ([]BreedIndexEntry, error) {
	data, err := os.ReadFile(filepath.Join(baseDir, breedIndexFile))
	if err != nil {
		if os.IsNotExist(err) {
			return []BreedIndexEntry{}, nil
		}
		return nil, err
	}
	var entries []BreedIndexEntry
	if err := json.Unmarshal(data, &entries); err != nil {
		return nil, err
	}
	// Later appends win ties on equal timestamps.
	order := make(map[string]int, len(entries))
	for i, e := range entries {
		order[e.Child] = i
	}
	sort.SliceStable(entries, func(i, j int) bool {
		if entries[i].CreatedAtUTC == entries[j].CreatedAtUTC {
			return order[entries[i].Child] > order[entries[j].Child]
		}
		return entries[i].CreatedAtUTC > entries[j].CreatedAtUTC
	})
	return entries, nil
}

func writeJSON(path string, v any) error {
	data, err := json.MarshalIndent(v, "", "  ")
	if err != nil {
		return err
	}
	return os.WriteFile(path, append(data, '\n'), 0o644)
}

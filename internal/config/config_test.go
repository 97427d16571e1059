package config

import (
	"os"
	"path/filepath"
	"testing"
)

func TestLoadMissingFileReturnsDefaults(t *testing.T) {
	got, err := Load(filepath.Join(t.TempDir(), "does-not-exist.yaml"))
	if err != nil {
		t.Fatalf("Load: %v", err)
	}
	if got != Default() {
		t.Fatalf("got %+v, want defaults %+v", got, Default())
	}
}

func TestLoadOverlaysDefaults(t *testing.T) {
	path := filepath.Join(t.TempDir(), "thresholds.yaml")
	if err := os.WriteFile(path, []byte("viterbi_cost_good: 60\n"), 0o644); err != nil {
		t.Fatal(err)
	}

	got, err := Load(path)
	if err != nil {
		t.Fatalf("Load: %v", err)
	}
	if got.ViterbiGood != 60 {
		t.Fatalf("ViterbiGood = %d, want 60", got.ViterbiGood)
	}
	if got.ViterbiBad != Default().ViterbiBad {
		t.Fatalf("ViterbiBad = %d, want unchanged default %d", got.ViterbiBad, Default().ViterbiBad)
	}
}

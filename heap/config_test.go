package heap

import (
	"os"
	"path/filepath"
	"testing"
)

func TestDefaultConfigMatchesOriginalConstants(t *testing.T) {
	cfg := DefaultConfig()
	if cfg.InitialSemispaceCapacity != 8*1024*1024 {
		t.Errorf("InitialSemispaceCapacity = %d, want 8MiB", cfg.InitialSemispaceCapacity)
	}
	if cfg.MaxSemispaceCapacity != 128*1024*1024 {
		t.Errorf("MaxSemispaceCapacity = %d, want 128MiB", cfg.MaxSemispaceCapacity)
	}
	if cfg.HandlesCapacity != 8 {
		t.Errorf("HandlesCapacity = %d, want 8", cfg.HandlesCapacity)
	}
}

func TestLoadConfigOverlaysDefaults(t *testing.T) {
	dir := t.TempDir()
	path := filepath.Join(dir, "heap.toml")
	contents := "debug = true\ninitial_semispace_capacity = 4096\n"
	if err := os.WriteFile(path, []byte(contents), 0o644); err != nil {
		t.Fatalf("WriteFile: %v", err)
	}

	cfg, err := LoadConfig(path)
	if err != nil {
		t.Fatalf("LoadConfig: %v", err)
	}
	if !cfg.Debug {
		t.Error("Debug = false, want true (from file)")
	}
	if cfg.InitialSemispaceCapacity != 4096 {
		t.Errorf("InitialSemispaceCapacity = %d, want 4096 (from file)", cfg.InitialSemispaceCapacity)
	}
	if cfg.MaxSemispaceCapacity != 128*1024*1024 {
		t.Errorf("MaxSemispaceCapacity = %d, want default (untouched by file)", cfg.MaxSemispaceCapacity)
	}
}

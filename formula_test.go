package formula

import (
	"os"
	"path/filepath"
	"testing"
)

func TestChainReturnsNewInstances(t *testing.T) {
	base := Open("paper.pdf")
	tuned := base.DPI(200).MinScore(0.4).SpansFrom("spans.jsonl").WithOCR()

	if base == tuned {
		t.Fatal("chain returned the same instance")
	}
	if base.options.dpi != defaultOptions().dpi {
		t.Error("base pipeline mutated by chain")
	}
	if tuned.options.dpi != 200 || tuned.options.minScore != 0.4 {
		t.Errorf("options not applied: %+v", tuned.options)
	}
	if tuned.options.spanFile != "spans.jsonl" || !tuned.options.ocr {
		t.Errorf("span sources not applied: %+v", tuned.options)
	}
}

func TestInvalidDPIFailsFast(t *testing.T) {
	if _, err := Open("paper.pdf").DPI(0).PageCount(); err == nil {
		t.Error("expected error for dpi 0")
	}
	if _, err := Open("paper.pdf").DPI(-72).Candidates(); err == nil {
		t.Error("expected error for negative dpi")
	}
}

func TestMissingDocumentErrors(t *testing.T) {
	if _, err := Open(filepath.Join(t.TempDir(), "absent.pdf")).PageCount(); err == nil {
		t.Error("expected error for missing document")
	}
	if _, err := Open("").Candidates(); err == nil {
		t.Error("expected error for empty filename")
	}
}

func TestSpanSourceRequired(t *testing.T) {
	p := Open("paper.pdf")
	if _, _, err := p.spanSource(); err == nil {
		t.Error("expected error when no span source configured")
	}
}

func TestMustPanicsOnError(t *testing.T) {
	defer func() {
		if recover() == nil {
			t.Error("Must did not panic")
		}
	}()
	Must(Open(filepath.Join(t.TempDir(), "absent.pdf")).PageCount())
}

func TestDefaultConfig(t *testing.T) {
	cfg := DefaultConfig()
	if cfg.MinScore != 0.6 {
		t.Errorf("MinScore = %v, want 0.6", cfg.MinScore)
	}
	if cfg.Detect.BinSize != 3.0 {
		t.Errorf("Detect.BinSize = %v, want 3", cfg.Detect.BinSize)
	}
	if cfg.Tile.TileSize != 1024 || cfg.Tile.Stride != 512 {
		t.Errorf("tile defaults wrong: %+v", cfg.Tile)
	}
}

func TestLoadConfigOverridesDefaults(t *testing.T) {
	path := filepath.Join(t.TempDir(), "formula.yaml")
	body := "dpi: 200\ntile:\n  tile_size: 512\n"
	if err := os.WriteFile(path, []byte(body), 0o644); err != nil {
		t.Fatal(err)
	}

	cfg, err := LoadConfig(path)
	if err != nil {
		t.Fatalf("LoadConfig: %v", err)
	}
	if cfg.DPI != 200 {
		t.Errorf("DPI = %d, want 200", cfg.DPI)
	}
	if cfg.Tile.TileSize != 512 {
		t.Errorf("Tile.TileSize = %d, want 512", cfg.Tile.TileSize)
	}
	// Untouched values keep their defaults.
	if cfg.MinScore != 0.6 {
		t.Errorf("MinScore = %v, want default 0.6", cfg.MinScore)
	}
	if cfg.Tile.Stride != 512 {
		t.Errorf("Tile.Stride = %d, want default 512", cfg.Tile.Stride)
	}
}

func TestLoadConfigMissingFile(t *testing.T) {
	if _, err := LoadConfig(filepath.Join(t.TempDir(), "absent.yaml")); err == nil {
		t.Error("expected error for missing config file")
	}
}

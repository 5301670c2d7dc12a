package config

import (
	"os"
	"path/filepath"
	"testing"
)

func TestDefaultConfig(t *testing.T) {
	cfg := DefaultConfig()

	if cfg.Output != "yaml" {
		t.Errorf("expected default output yaml, got %s", cfg.Output)
	}
	if cfg.Extract.WordGapFactor != 0.4 {
		t.Errorf("expected word gap factor 0.4, got %v", cfg.Extract.WordGapFactor)
	}
	if cfg.Layout.GapThreshold != 50.0 {
		t.Errorf("expected gap threshold 50, got %v", cfg.Layout.GapThreshold)
	}
	if cfg.Builder.AbsTolerance != 0.01 {
		t.Errorf("expected abs tolerance 0.01, got %v", cfg.Builder.AbsTolerance)
	}
	if len(cfg.Decoration.KnownHeaders) == 0 {
		t.Error("expected default known headers")
	}
}

func TestConfig_Conversions(t *testing.T) {
	cfg := DefaultConfig()

	t.Run("band config round-trips defaults", func(t *testing.T) {
		band := cfg.BandConfig()
		if band.MinBandWidth != 150.0 {
			t.Errorf("expected min band width 150, got %v", band.MinBandWidth)
		}
		if band.MaxBands != 6 {
			t.Errorf("expected max bands 6, got %d", band.MaxBands)
		}
	})

	t.Run("classifier config round-trips defaults", func(t *testing.T) {
		cls := cfg.ClassifierConfig()
		if cls.MinCodeLength != 5 {
			t.Errorf("expected min code length 5, got %d", cls.MinCodeLength)
		}
		if cls.TableHeaderMinMatches != 3 {
			t.Errorf("expected table header min matches 3, got %d", cls.TableHeaderMinMatches)
		}
	})

	t.Run("builder config round-trips defaults", func(t *testing.T) {
		bld := cfg.BuilderConfig()
		if bld.ArithTolerance != 0.05 {
			t.Errorf("expected arith tolerance 0.05, got %v", bld.ArithTolerance)
		}
	})

	t.Run("extractor config round-trips defaults", func(t *testing.T) {
		ext := cfg.ExtractorConfig()
		if ext.RowTolerance != 2.0 {
			t.Errorf("expected row tolerance 2.0, got %v", ext.RowTolerance)
		}
	})
}

func TestNewManager(t *testing.T) {
	t.Run("loads from config file", func(t *testing.T) {
		tmpDir := t.TempDir()
		configFile := filepath.Join(tmpDir, "config.yaml")

		configContent := `
output: json
builder:
  abs_tolerance: 0.5
`
		if err := os.WriteFile(configFile, []byte(configContent), 0644); err != nil {
			t.Fatalf("failed to write config file: %v", err)
		}

		mgr, err := NewManager(configFile)
		if err != nil {
			t.Fatalf("failed to create manager: %v", err)
		}

		cfg := mgr.Get()
		if cfg.Output != "json" {
			t.Errorf("expected output json, got %s", cfg.Output)
		}
		if cfg.Builder.AbsTolerance != 0.5 {
			t.Errorf("expected abs tolerance 0.5, got %v", cfg.Builder.AbsTolerance)
		}
		// Untouched sections keep defaults
		if cfg.Classifier.MinCodeLength != 5 {
			t.Errorf("expected default min code length 5, got %d", cfg.Classifier.MinCodeLength)
		}
	})
}

func TestWriteDefault(t *testing.T) {
	tmpDir := t.TempDir()
	path := filepath.Join(tmpDir, "config.yaml")

	if err := WriteDefault(path); err != nil {
		t.Fatalf("failed to write default config: %v", err)
	}

	data, err := os.ReadFile(path)
	if err != nil {
		t.Fatalf("failed to read written config: %v", err)
	}
	if len(data) == 0 {
		t.Error("expected non-empty config file")
	}
}

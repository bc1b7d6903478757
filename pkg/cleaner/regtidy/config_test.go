package regtidy

import (
	"testing"
)

func TestDefaultConfig(t *testing.T) {
	cfg := DefaultConfig()

	if cfg == nil {
		t.Fatal("expected non-nil config")
	}
	if cfg.Mode != ModeRelaxed {
		t.Errorf("expected relaxed mode, got %q", cfg.Mode)
	}
	if cfg.SkipPrettier {
		t.Error("expected prettier to be on by default")
	}

	tests := []struct {
		name     string
		got      int
		expected int
	}{
		{"ArticleNameMaxLength", cfg.Thresholds.ArticleNameMaxLength, 90},
		{"ChapterNameMaxLength", cfg.Thresholds.ChapterNameMaxLength, 90},
		{"SubchapterNameMaxLength", cfg.Thresholds.SubchapterNameMaxLength, 60},
		{"SignatoryMaxLength", cfg.Thresholds.SignatoryMaxLength, 60},
		{"MinImageDimension", cfg.Thresholds.MinImageDimension, 3},
		{"TabWidth", cfg.Thresholds.TabWidth, 8},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if tt.got != tt.expected {
				t.Errorf("expected %d, got %d", tt.expected, tt.got)
			}
		})
	}

	if err := cfg.Validate(); err != nil {
		t.Errorf("default config should validate: %v", err)
	}
}

func TestDefaultConfigAllowsLegacyClasses(t *testing.T) {
	cfg := DefaultConfig()
	allowed := make(map[string]bool)
	for _, c := range cfg.ExtraAllowedClasses {
		allowed[c] = true
	}
	for _, c := range []string{"Grein", "Kafli"} {
		if !allowed[c] {
			t.Errorf("expected %q to be tolerated by default", c)
		}
	}
}

func TestConfigValidate(t *testing.T) {
	tests := []struct {
		name    string
		mutate  func(*Config)
		wantErr bool
	}{
		{"default", func(*Config) {}, false},
		{"strict mode", func(c *Config) { c.Mode = ModeStrict }, false},
		{"unknown mode", func(c *Config) { c.Mode = "lenient" }, true},
		{"file server host", func(c *Config) { c.FileServerHost = "https://files.example.is" }, false},
		{"bad file server host", func(c *Config) { c.FileServerHost = "not a url" }, true},
		{"relative prefix", func(c *Config) { c.FilePathPrefixes = []string{"files/"} }, true},
		{"zero threshold", func(c *Config) { c.Thresholds.ArticleNameMaxLength = 0 }, true},
		{"inverted years", func(c *Config) { c.Thresholds.MaxSigningYear = 1700 }, true},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			cfg := DefaultConfig()
			tt.mutate(cfg)
			err := cfg.Validate()
			if (err != nil) != tt.wantErr {
				t.Errorf("Validate() error = %v, wantErr %v", err, tt.wantErr)
			}
		})
	}
}

func TestConfigMerge(t *testing.T) {
	base := DefaultConfig()

	t.Run("nil leaves config unchanged", func(t *testing.T) {
		if base.Merge(nil) != base {
			t.Error("expected same config back")
		}
	})

	t.Run("applies non-zero values", func(t *testing.T) {
		merged := base.Merge(&Config{
			Mode:                ModeStrict,
			SkipPrettier:        true,
			ExtraAllowedClasses: []string{"Grein", "Custom"},
			Thresholds:          Thresholds{ArticleNameMaxLength: 120},
		})

		if merged.Mode != ModeStrict {
			t.Errorf("expected strict mode, got %q", merged.Mode)
		}
		if !merged.SkipPrettier {
			t.Error("expected SkipPrettier")
		}
		if merged.Thresholds.ArticleNameMaxLength != 120 {
			t.Errorf("expected 120, got %d", merged.Thresholds.ArticleNameMaxLength)
		}
		if merged.Thresholds.ChapterNameMaxLength != DefaultChapterNameMaxLength {
			t.Error("unset thresholds must keep their defaults")
		}
		if len(merged.ExtraAllowedClasses) != len(LegacyClasses)+1 {
			t.Errorf("expected classes deduplicated, got %v", merged.ExtraAllowedClasses)
		}
	})

	t.Run("does not mutate the base", func(t *testing.T) {
		before := len(base.ExtraAllowedClasses)
		base.Merge(&Config{ExtraAllowedClasses: []string{"Another"}})
		if len(base.ExtraAllowedClasses) != before {
			t.Error("merge must copy the class list")
		}
	})
}

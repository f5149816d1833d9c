package main

import (
	"os"
	"path/filepath"
	"testing"
	"time"

	"github.com/alaa-eddine/tokenloom"
)

func TestLoadCLIConfigDefaults(t *testing.T) {
	cfg, err := loadCLIConfig("")
	if err != nil {
		t.Fatalf("loadCLIConfig: %v", err)
	}
	if cfg.EmitUnit != "token" {
		t.Errorf("EmitUnit = %q, want %q", cfg.EmitUnit, "token")
	}
	if cfg.BufferLength != tokenloom.DefaultBufferLength {
		t.Errorf("BufferLength = %d, want %d", cfg.BufferLength, tokenloom.DefaultBufferLength)
	}
}

func TestLoadCLIConfigFromFile(t *testing.T) {
	dir := t.TempDir()
	path := filepath.Join(dir, "tokenloom.yaml")
	contents := "emit_unit: word\ntags:\n  - a\n  - b\nbuffer_length: 4096\nhighlight: true\n"
	if err := os.WriteFile(path, []byte(contents), 0o644); err != nil {
		t.Fatalf("write config file: %v", err)
	}

	cfg, err := loadCLIConfig(path)
	if err != nil {
		t.Fatalf("loadCLIConfig: %v", err)
	}
	if cfg.EmitUnit != "word" {
		t.Errorf("EmitUnit = %q, want %q", cfg.EmitUnit, "word")
	}
	if len(cfg.Tags) != 2 || cfg.Tags[0] != "a" || cfg.Tags[1] != "b" {
		t.Errorf("Tags = %v, want [a b]", cfg.Tags)
	}
	if cfg.BufferLength != 4096 {
		t.Errorf("BufferLength = %d, want 4096", cfg.BufferLength)
	}
	if !cfg.Highlight {
		t.Error("Highlight = false, want true")
	}
}

func TestLoadCLIConfigEnvOverridesFile(t *testing.T) {
	dir := t.TempDir()
	path := filepath.Join(dir, "tokenloom.yaml")
	if err := os.WriteFile(path, []byte("emit_unit: token\n"), 0o644); err != nil {
		t.Fatalf("write config file: %v", err)
	}

	t.Setenv("TOKENLOOM_EMIT_UNIT", "grapheme")
	t.Setenv("TOKENLOOM_TAGS", "x,y,z")

	cfg, err := loadCLIConfig(path)
	if err != nil {
		t.Fatalf("loadCLIConfig: %v", err)
	}
	if cfg.EmitUnit != "grapheme" {
		t.Errorf("EmitUnit = %q, want %q (env should win over file)", cfg.EmitUnit, "grapheme")
	}
	if len(cfg.Tags) != 3 || cfg.Tags[2] != "z" {
		t.Errorf("Tags = %v, want [x y z]", cfg.Tags)
	}
}

func TestToParserConfig(t *testing.T) {
	tt := []struct {
		unit    string
		want    tokenloom.EmitUnit
		wantErr bool
	}{
		{unit: "", want: tokenloom.UnitToken},
		{unit: "token", want: tokenloom.UnitToken},
		{unit: "word", want: tokenloom.UnitWord},
		{unit: "grapheme", want: tokenloom.UnitGrapheme},
		{unit: "bogus", wantErr: true},
	}

	for _, tc := range tt {
		cli := defaultCLIConfig()
		cli.EmitUnit = tc.unit
		cli.Tags = []string{"a"}
		pc, err := cli.toParserConfig()
		if tc.wantErr {
			if err == nil {
				t.Errorf("unit %q: expected error, got nil", tc.unit)
			}
			continue
		}
		if err != nil {
			t.Fatalf("unit %q: toParserConfig: %v", tc.unit, err)
		}
		if pc.EmitUnit != tc.want {
			t.Errorf("unit %q: EmitUnit = %v, want %v", tc.unit, pc.EmitUnit, tc.want)
		}
	}
}

func TestToParserConfigAppliesEmitDelay(t *testing.T) {
	cli := defaultCLIConfig()
	cli.Tags = []string{"a"}
	cli.EmitDelay = 5 * time.Millisecond
	pc, err := cli.toParserConfig()
	if err != nil {
		t.Fatalf("toParserConfig: %v", err)
	}
	if pc.EmitDelay != 5*time.Millisecond {
		t.Errorf("EmitDelay = %v, want 5ms", pc.EmitDelay)
	}
}

package config

import (
	"os"
	"path/filepath"
	"testing"
)

func TestLoad_MissingFileReturnsDefaults(t *testing.T) {
	dir := t.TempDir()

	cfg, err := Load(dir)
	if err != nil {
		t.Fatalf("Load: %v", err)
	}

	if cfg.SrcDir != "src" {
		t.Errorf("SrcDir = %q, want %q", cfg.SrcDir, "src")
	}
	if cfg.OutDir != "dist" {
		t.Errorf("OutDir = %q, want %q", cfg.OutDir, "dist")
	}
	if cfg.Runtime != "@pulse/runtime" {
		t.Errorf("Runtime = %q, want %q", cfg.Runtime, "@pulse/runtime")
	}
	if !cfg.Scoped() {
		t.Error("Scoped() = false, want true by default")
	}
	if cfg.Dev == nil || cfg.Dev.Port != 5173 {
		t.Errorf("Dev = %+v, want port 5173", cfg.Dev)
	}
}

func TestLoad_PartialFileGetsDefaults(t *testing.T) {
	dir := t.TempDir()
	yml := "srcDir: components\ndev:\n  port: 3000\n"
	if err := os.WriteFile(filepath.Join(dir, "pulse.yml"), []byte(yml), 0644); err != nil {
		t.Fatal(err)
	}

	cfg, err := Load(dir)
	if err != nil {
		t.Fatalf("Load: %v", err)
	}

	if cfg.SrcDir != "components" {
		t.Errorf("SrcDir = %q, want %q", cfg.SrcDir, "components")
	}
	if cfg.OutDir != "dist" {
		t.Errorf("OutDir = %q, want default %q", cfg.OutDir, "dist")
	}
	if cfg.Dev.Port != 3000 {
		t.Errorf("Dev.Port = %d, want 3000", cfg.Dev.Port)
	}
	if cfg.Dev.Host != "localhost" {
		t.Errorf("Dev.Host = %q, want default %q", cfg.Dev.Host, "localhost")
	}
}

func TestLoad_ScopeStylesDisabled(t *testing.T) {
	dir := t.TempDir()
	yml := "scopeStyles: false\n"
	if err := os.WriteFile(filepath.Join(dir, "pulse.yml"), []byte(yml), 0644); err != nil {
		t.Fatal(err)
	}

	cfg, err := Load(dir)
	if err != nil {
		t.Fatalf("Load: %v", err)
	}
	if cfg.Scoped() {
		t.Error("Scoped() = true, want false when scopeStyles: false")
	}
}

func TestSaveRoundTrip(t *testing.T) {
	dir := t.TempDir()

	in := DefaultConfig()
	in.SrcDir = "ui"
	in.SourceMap = true
	if err := Save(in, dir); err != nil {
		t.Fatalf("Save: %v", err)
	}

	out, err := Load(dir)
	if err != nil {
		t.Fatalf("Load: %v", err)
	}
	if out.SrcDir != "ui" {
		t.Errorf("SrcDir = %q, want %q", out.SrcDir, "ui")
	}
	if !out.SourceMap {
		t.Error("SourceMap = false, want true")
	}
}

func TestLoad_MalformedYAML(t *testing.T) {
	dir := t.TempDir()
	if err := os.WriteFile(filepath.Join(dir, "pulse.yml"), []byte("srcDir: [\n"), 0644); err != nil {
		t.Fatal(err)
	}

	if _, err := Load(dir); err == nil {
		t.Error("Load succeeded on malformed YAML, want error")
	}
}

package main

import (
	"os"
	"path/filepath"
	"testing"
)

func writeManifest(t *testing.T, dir, text string) string {
	t.Helper()
	path := filepath.Join(dir, "mustuse.toml")
	if err := os.WriteFile(path, []byte(text), 0o644); err != nil {
		t.Fatalf("write manifest: %v", err)
	}
	return path
}

func TestFindMustuseTomlWalksUpward(t *testing.T) {
	root := t.TempDir()
	writeManifest(t, root, "[package]\nname = \"demo\"\n")
	nested := filepath.Join(root, "a", "b")
	if err := os.MkdirAll(nested, 0o755); err != nil {
		t.Fatalf("mkdir: %v", err)
	}

	found, ok, err := findMustuseToml(nested)
	if err != nil {
		t.Fatalf("find: %v", err)
	}
	if !ok {
		t.Fatalf("manifest not found from nested dir")
	}
	if filepath.Dir(found) != root {
		t.Fatalf("found %s, want manifest in %s", found, root)
	}
}

func TestFindMustuseTomlMissing(t *testing.T) {
	_, ok, err := findMustuseToml(t.TempDir())
	if err != nil {
		t.Fatalf("find: %v", err)
	}
	if ok {
		t.Fatalf("unexpected manifest in empty temp dir")
	}
}

func TestLoadProjectConfigRequiresPackageName(t *testing.T) {
	dir := t.TempDir()
	path := writeManifest(t, dir, "[package]\n")

	if _, err := loadProjectConfig(path); err == nil {
		t.Fatalf("expected error for missing package name")
	}
}

func TestLoadProjectConfigCheckSection(t *testing.T) {
	dir := t.TempDir()
	path := writeManifest(t, dir, `
[package]
name = "demo"

[check]
inputs = ["dumps"]
jobs = 4
max_diagnostics = 200
warnings_as_errors = true
`)

	cfg, err := loadProjectConfig(path)
	if err != nil {
		t.Fatalf("load: %v", err)
	}
	if cfg.Package.Name != "demo" {
		t.Fatalf("name = %q", cfg.Package.Name)
	}
	check := cfg.Check
	if len(check.Inputs) != 1 || check.Inputs[0] != "dumps" {
		t.Fatalf("inputs = %v", check.Inputs)
	}
	if check.Jobs != 4 || check.MaxDiagnostics != 200 || !check.WarningsAsErrors {
		t.Fatalf("check = %+v", check)
	}
}

func TestResolveManifestInputs(t *testing.T) {
	root := t.TempDir()
	if err := os.MkdirAll(filepath.Join(root, "dumps"), 0o755); err != nil {
		t.Fatalf("mkdir: %v", err)
	}
	manifest := &projectManifest{
		Path: filepath.Join(root, "mustuse.toml"),
		Root: root,
		Config: projectConfig{
			Package: packageConfig{Name: "demo"},
			Check:   checkConfig{Inputs: []string{"dumps"}},
		},
	}

	paths, err := resolveManifestInputs(manifest)
	if err != nil {
		t.Fatalf("resolve: %v", err)
	}
	if len(paths) != 1 || paths[0] != filepath.Join(root, "dumps") {
		t.Fatalf("paths = %v", paths)
	}

	manifest.Config.Check.Inputs = []string{"missing"}
	if _, err := resolveManifestInputs(manifest); err == nil {
		t.Fatalf("expected error for missing input path")
	}
}

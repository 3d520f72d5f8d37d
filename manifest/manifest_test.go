package manifest

import (
	"errors"
	"os"
	"path/filepath"
	"testing"
)

func TestLoadManifest(t *testing.T) {
	// Create a temporary directory with a cbgen.toml
	dir := t.TempDir()
	tomlContent := `
[project]
name = "arena"
version = "0.1.0"
prefix = "ar_"

[source]
dirs = ["src", "lib"]

[entity]
tag = "arena_mob"

[labels]
pointer = "ip"

[memory]
base = 4096
size = 64

[variables]
hp = "health"

[args.color]
red = "12"

[output]
format = "table"
store = "out/artifacts.db"

[resolve]
strict = true
`
	if err := os.WriteFile(filepath.Join(dir, FileName), []byte(tomlContent), 0644); err != nil {
		t.Fatal(err)
	}

	m, err := Load(dir)
	if err != nil {
		t.Fatalf("Load failed: %v", err)
	}

	if m.Project.Name != "arena" {
		t.Errorf("project name = %q, want arena", m.Project.Name)
	}
	if m.Project.Prefix != "ar_" {
		t.Errorf("project prefix = %q, want ar_", m.Project.Prefix)
	}
	if len(m.Source.Dirs) != 2 {
		t.Errorf("source dirs count = %d, want 2", len(m.Source.Dirs))
	}
	if m.Entity.Tag != "arena_mob" {
		t.Errorf("entity tag = %q, want arena_mob", m.Entity.Tag)
	}
	if m.Labels.Pointer != "ip" {
		t.Errorf("labels pointer = %q, want ip", m.Labels.Pointer)
	}
	if m.Memory.Base != 4096 || m.Memory.Size != 64 {
		t.Errorf("memory = %+v, want base 4096 size 64", m.Memory)
	}
	if m.Variables["hp"] != "health" {
		t.Errorf("variables.hp = %q, want health", m.Variables["hp"])
	}
	if m.Args["color"]["red"] != "12" {
		t.Errorf("args.color.red = %q, want 12", m.Args["color"]["red"])
	}
	if m.Output.Format != FormatTable {
		t.Errorf("output format = %q, want table", m.Output.Format)
	}
	if !m.Resolve.Strict {
		t.Error("resolve strict = false, want true")
	}
	if want := filepath.Join(m.Dir, "out", "artifacts.db"); m.StorePath() != want {
		t.Errorf("store path = %q, want %q", m.StorePath(), want)
	}
}

func TestLoadManifestDefaults(t *testing.T) {
	dir := t.TempDir()
	tomlContent := `
[project]
name = "minimal"
`
	if err := os.WriteFile(filepath.Join(dir, FileName), []byte(tomlContent), 0644); err != nil {
		t.Fatal(err)
	}

	m, err := Load(dir)
	if err != nil {
		t.Fatalf("Load failed: %v", err)
	}

	if len(m.Source.Dirs) != 1 || m.Source.Dirs[0] != "programs" {
		t.Errorf("default source dirs = %v, want [programs]", m.Source.Dirs)
	}
	if m.Labels.Pointer != "func_pointer" {
		t.Errorf("default pointer = %q, want func_pointer", m.Labels.Pointer)
	}
	if m.Memory.Size != 256 {
		t.Errorf("default memory size = %d, want 256", m.Memory.Size)
	}
	if m.Output.Format != FormatText {
		t.Errorf("default format = %q, want text", m.Output.Format)
	}
	if m.StorePath() != "" {
		t.Errorf("default store path = %q, want empty", m.StorePath())
	}
}

func TestParseInvalid(t *testing.T) {
	tests := []struct {
		name string
		toml string
	}{
		{"memory past limit", "[memory]\nbase = 65500\nsize = 100\n"},
		{"negative base", "[memory]\nbase = -1\n"},
		{"unknown format", "[output]\nformat = \"yaml\"\n"},
		{"objective too long", "[variables]\nx = \"a_very_long_objective_name\"\n"},
		{"objective chars", "[variables]\nx = \"has space\"\n"},
		{"collides with pointer", "[variables]\nx = \"func_pointer\"\n"},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			_, err := Parse([]byte(tt.toml))
			if !errors.Is(err, ErrInvalid) {
				t.Errorf("err = %v, want ErrInvalid", err)
			}
		})
	}

	if _, err := Parse([]byte("[project\n")); err == nil {
		t.Error("malformed TOML parsed")
	}
}

func TestFindAndLoad(t *testing.T) {
	// Create nested directory structure
	dir := t.TempDir()
	subDir := filepath.Join(dir, "a", "b", "c")
	if err := os.MkdirAll(subDir, 0755); err != nil {
		t.Fatal(err)
	}

	tomlContent := `[project]
name = "found-project"
`
	if err := os.WriteFile(filepath.Join(dir, FileName), []byte(tomlContent), 0644); err != nil {
		t.Fatal(err)
	}

	// Should find manifest when starting from a deep subdirectory
	m, err := FindAndLoad(subDir)
	if err != nil {
		t.Fatalf("FindAndLoad failed: %v", err)
	}
	if m == nil {
		t.Fatal("FindAndLoad returned nil")
	}
	if m.Project.Name != "found-project" {
		t.Errorf("project name = %q, want found-project", m.Project.Name)
	}
}

func TestFindAndLoadNotFound(t *testing.T) {
	dir := t.TempDir()
	m, err := FindAndLoad(dir)
	if err != nil {
		t.Fatalf("FindAndLoad error: %v", err)
	}
	if m != nil {
		t.Error("expected nil manifest when no cbgen.toml exists")
	}
}

func TestSourceDirPaths(t *testing.T) {
	m := &Manifest{
		Dir: "/app",
		Source: Source{
			Dirs: []string{"src", "lib"},
		},
	}

	paths := m.SourceDirPaths()
	if len(paths) != 2 {
		t.Fatalf("expected 2 paths, got %d", len(paths))
	}
	if paths[0] != "/app/src" {
		t.Errorf("paths[0] = %q, want /app/src", paths[0])
	}
	if paths[1] != "/app/lib" {
		t.Errorf("paths[1] = %q, want /app/lib", paths[1])
	}
}

func TestLockFileRoundTrip(t *testing.T) {
	dir := t.TempDir()
	lockPath := filepath.Join(dir, ".cbgen", "lock.toml")

	lf := &LockFile{}
	lf.Record(LockedArtifact{Program: "b.toml", Hash: "h2", ID: "id-2"})
	lf.Record(LockedArtifact{Program: "a.toml", Hash: "h1", ID: "id-1"})
	lf.Record(LockedArtifact{Program: "b.toml", Hash: "h3", ID: "id-3"})

	if err := WriteLock(lockPath, lf); err != nil {
		t.Fatalf("WriteLock failed: %v", err)
	}

	loaded, err := ReadLock(lockPath)
	if err != nil {
		t.Fatalf("ReadLock failed: %v", err)
	}

	if len(loaded.Artifacts) != 2 {
		t.Fatalf("expected 2 artifacts, got %d", len(loaded.Artifacts))
	}
	if loaded.Artifacts[0].Program != "a.toml" {
		t.Errorf("artifact[0].Program = %q, want a.toml", loaded.Artifacts[0].Program)
	}

	found := loaded.FindArtifact("b.toml")
	if found == nil || found.ID != "id-3" || found.Hash != "h3" {
		t.Errorf("FindArtifact(b.toml) = %v, want id-3/h3", found)
	}

	if notFound := loaded.FindArtifact("nonexistent"); notFound != nil {
		t.Errorf("FindArtifact(nonexistent) = %v, want nil", notFound)
	}
}

func TestReadLockNotFound(t *testing.T) {
	lf, err := ReadLock("/nonexistent/path/lock.toml")
	if err != nil {
		t.Errorf("ReadLock should return nil,nil for missing file, got err: %v", err)
	}
	if lf != nil {
		t.Errorf("ReadLock should return nil for missing file, got %v", lf)
	}
	if lf.FindArtifact("x") != nil {
		t.Error("FindArtifact on nil lock file should return nil")
	}
}

package main

import (
	"bytes"
	"errors"
	"os"
	"path/filepath"
	"strings"
	"testing"

	"github.com/chazu/cbgen/manifest"
)

func run(t *testing.T, args ...string) (string, string, error) {
	t.Helper()
	var out, errOut bytes.Buffer
	cmd := newRootCmd()
	cmd.SetOut(&out)
	cmd.SetErr(&errOut)
	cmd.SetArgs(args)
	err := cmd.Execute()
	return out.String(), errOut.String(), err
}

func project(t *testing.T) string {
	t.Helper()
	dir := t.TempDir()
	files := map[string]string{
		manifest.FileName: "[entity]\ntag = \"E\"\n\n[output]\nstore = \"artifacts.db\"\n",
		"programs/hello.toml": "[[sequence]]\nname = \"main\"\n\n" +
			"[[sequence.block]]\ncommand = { kind = \"raw\", text = \"say hello\" }\n",
	}
	for name, content := range files {
		path := filepath.Join(dir, name)
		if err := os.MkdirAll(filepath.Dir(path), 0o755); err != nil {
			t.Fatal(err)
		}
		if err := os.WriteFile(path, []byte(content), 0o644); err != nil {
			t.Fatal(err)
		}
	}
	return dir
}

func TestGenListShow(t *testing.T) {
	dir := project(t)

	out, status, err := run(t, "gen", "-C", dir)
	if err != nil {
		t.Fatalf("gen: %v", err)
	}
	if out != "# main\nsay hello\n" {
		t.Errorf("gen output = %q", out)
	}
	fields := strings.Fields(status)
	if len(fields) != 3 || fields[0] != "hello:" || fields[1] != "stored" {
		t.Fatalf("gen status = %q", status)
	}
	id := fields[2]

	_, status, err = run(t, "gen", "-C", dir)
	if err != nil {
		t.Fatal(err)
	}
	if !strings.Contains(status, "unchanged "+id) {
		t.Errorf("second gen status = %q", status)
	}

	out, _, err = run(t, "list", "-C", dir)
	if err != nil {
		t.Fatalf("list: %v", err)
	}
	if !strings.Contains(out, id) || !strings.Contains(out, "hello") {
		t.Errorf("list output = %q", out)
	}

	out, _, err = run(t, "show", id, "-C", dir, "--format", "table")
	if err != nil {
		t.Fatalf("show: %v", err)
	}
	if !strings.Contains(out, "say hello") || !strings.Contains(out, "CHAIN") {
		t.Errorf("show output = %q", out)
	}

	if _, _, err := run(t, "show", "missing", "-C", dir); err == nil {
		t.Error("expected error for unknown artifact")
	}
}

func TestGenOutFile(t *testing.T) {
	dir := project(t)
	outPath := filepath.Join(t.TempDir(), "hello.txt")
	if _, _, err := run(t, "gen", "-C", dir, "--store", filepath.Join(dir, "other.db"), "-o", outPath); err != nil {
		t.Fatal(err)
	}
	data, err := os.ReadFile(outPath)
	if err != nil {
		t.Fatal(err)
	}
	if string(data) != "# main\nsay hello\n" {
		t.Errorf("file content = %q", data)
	}
}

func TestLabel(t *testing.T) {
	dir := project(t)
	out, _, err := run(t, "label", "2", "-C", dir)
	if err != nil {
		t.Fatal(err)
	}
	want := "# label_2 (label 2)\n" +
		"execute @e[tag=E,score_func_pointer_min=2,score_func_pointer=2] ~ ~ ~ " +
		"scoreboard players set @e[tag=E] func_pointer -1\n"
	if out != want {
		t.Errorf("label output = %q, want %q", out, want)
	}

	if _, _, err := run(t, "label", "two", "-C", dir); err == nil {
		t.Error("expected error for non-numeric label")
	}
}

func TestBadFormat(t *testing.T) {
	dir := project(t)
	if _, _, err := run(t, "label", "1", "-C", dir, "--format", "yaml"); err == nil {
		t.Error("expected error for unknown format")
	}
}

func TestListWithoutStore(t *testing.T) {
	if _, _, err := run(t, "list", "-C", t.TempDir()); err == nil {
		t.Error("expected error when no store is configured")
	}
}

func TestCloseIntoReportsCloseError(t *testing.T) {
	errClose := errors.New("disk full")
	failing := func() error { return errClose }

	var err error
	closeInto(&err, failing, "out.txt")
	if !errors.Is(err, errClose) {
		t.Errorf("err = %v, want close error", err)
	}

	earlier := errors.New("render failed")
	err = earlier
	closeInto(&err, failing, "out.txt")
	if err != earlier {
		t.Errorf("err = %v, want earlier error kept", err)
	}

	err = nil
	closeInto(&err, func() error { return nil }, "out.txt")
	if err != nil {
		t.Errorf("err = %v, want nil", err)
	}
}

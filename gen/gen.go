// Package gen drives generation: programs are decoded, resolved against the
// project scope and handed to the renderers, the wire encoder and the store.
package gen

import (
	"context"
	"errors"
	"fmt"
	"io"
	"os"
	"path/filepath"
	"sort"
	"strings"

	"github.com/tliron/commonlog"

	"github.com/chazu/cbgen/ir"
	"github.com/chazu/cbgen/manifest"
	"github.com/chazu/cbgen/program"
	"github.com/chazu/cbgen/render"
	"github.com/chazu/cbgen/scope"
	"github.com/chazu/cbgen/store"
	"github.com/chazu/cbgen/wire"
)

var log = commonlog.GetLogger("cbgen.gen")

var (
	// ErrNoPrograms is returned by Sources when no program file is found.
	ErrNoPrograms = errors.New("no program files found")
	// ErrDuplicateProgram is returned by BuildAll when two files map to one
	// program name, since they would share a lock entry.
	ErrDuplicateProgram = errors.New("duplicate program name")
)

// Generator resolves programs for one project.
type Generator struct {
	m     *manifest.Manifest
	scope *scope.Scope
}

// New returns a generator for the given manifest.
func New(m *manifest.Manifest) *Generator {
	return &Generator{m: m, scope: scope.New(m)}
}

// Manifest returns the project manifest.
func (g *Generator) Manifest() *manifest.Manifest { return g.m }

// Scope returns the resolution context used for every program.
func (g *Generator) Scope() *scope.Scope { return g.scope }

// Sources lists the *.toml program files under the manifest's source dirs,
// sorted by path. Missing directories are skipped.
func (g *Generator) Sources() ([]string, error) {
	var files []string
	for _, dir := range g.m.SourceDirPaths() {
		err := filepath.WalkDir(dir, func(path string, d os.DirEntry, err error) error {
			if err != nil {
				if errors.Is(err, os.ErrNotExist) {
					return filepath.SkipDir
				}
				return err
			}
			if !d.IsDir() && filepath.Ext(path) == ".toml" {
				files = append(files, path)
			}
			return nil
		})
		if err != nil {
			return nil, err
		}
	}
	if len(files) == 0 {
		return nil, ErrNoPrograms
	}
	sort.Strings(files)
	return files, nil
}

// BuildFile decodes and resolves one program file. The program is named by
// ProgramName.
func (g *Generator) BuildFile(path string) (*wire.Bundle, error) {
	p, err := program.Load(path, program.Options{Pointer: g.scope.Pointer()})
	if err != nil {
		return nil, err
	}
	p.Name = g.ProgramName(path)
	return g.Build(p)
}

// ProgramName names a program file by its slash-separated path, without
// extension, relative to the source dir holding it: programs/a/x.toml is
// "a/x". Files outside every source dir are named relative to the manifest
// dir, or by their absolute path when outside it too.
func (g *Generator) ProgramName(path string) string {
	abs, err := filepath.Abs(path)
	if err != nil {
		abs = path
	}
	abs = strings.TrimSuffix(abs, filepath.Ext(abs))
	roots := append(g.m.SourceDirPaths(), g.m.Dir)
	for _, root := range roots {
		if root == "" {
			continue
		}
		if r, err := filepath.Abs(root); err == nil {
			root = r
		}
		rel, err := filepath.Rel(root, abs)
		if err == nil && rel != "." && !strings.HasPrefix(rel, ".."+string(filepath.Separator)) && rel != ".." {
			return filepath.ToSlash(rel)
		}
	}
	return filepath.ToSlash(abs)
}

// Build resolves every sequence of a decoded program.
func (g *Generator) Build(p *program.Program) (*wire.Bundle, error) {
	b := &wire.Bundle{Program: p.Name, Listings: make([]wire.Listing, 0, len(p.Sequences))}
	for _, seq := range p.Sequences {
		entries, err := seq.Sequence.Resolve(g.scope)
		if err != nil {
			return nil, fmt.Errorf("%s: sequence %q: %w", p.Name, seq.Name, err)
		}
		b.Listings = append(b.Listings, wire.NewListing(seq.Name, seq.Label, entries))
	}
	log.Debugf("resolved %s: %d sequences, %d lines", p.Name, len(b.Listings), b.Lines())
	return b, nil
}

// BuildAll resolves each file in order, stopping at the first error or when
// ctx is cancelled.
func (g *Generator) BuildAll(ctx context.Context, paths []string) ([]*wire.Bundle, error) {
	out := make([]*wire.Bundle, 0, len(paths))
	seen := map[string]string{}
	for _, path := range paths {
		if err := ctx.Err(); err != nil {
			return nil, err
		}
		b, err := g.BuildFile(path)
		if err != nil {
			return nil, err
		}
		if prev, ok := seen[b.Program]; ok {
			return nil, fmt.Errorf("%w: %s and %s are both named %q", ErrDuplicateProgram, prev, path, b.Program)
		}
		seen[b.Program] = path
		out = append(out, b)
	}
	return out, nil
}

// Label resolves the guard block for a labelled sequence.
func (g *Generator) Label(label int) (*wire.Bundle, error) {
	ls, err := ir.NewLabelledSequence(label, ir.WithPointer(g.scope.Pointer()))
	if err != nil {
		return nil, err
	}
	entries, err := ls.Resolve(g.scope)
	if err != nil {
		return nil, err
	}
	name := fmt.Sprintf("label_%d", label)
	return &wire.Bundle{
		Program:  name,
		Listings: []wire.Listing{wire.NewListing(name, &label, entries)},
	}, nil
}

// Emit writes b to w in the given format. An empty format uses the
// manifest's output format.
func (g *Generator) Emit(w io.Writer, b *wire.Bundle, format string) error {
	if format == "" {
		format = g.m.Output.Format
	}
	switch format {
	case manifest.FormatText:
		return render.Text(w, b)
	case manifest.FormatTable:
		return render.Table(w, b)
	case manifest.FormatCBOR:
		data, err := wire.MarshalBundle(b)
		if err != nil {
			return err
		}
		_, err = w.Write(data)
		return err
	}
	return fmt.Errorf("unknown output format %q", format)
}

// Persist stores b unless the lock file shows an identical bundle already
// stored for the same program. It returns the artifact ID and whether a new
// artifact was written.
func (g *Generator) Persist(st *store.Store, b *wire.Bundle) (string, bool, error) {
	hash, err := wire.Hash(b)
	if err != nil {
		return "", false, err
	}

	log.Debugf("persisting %s (%s) to %s", b.Program, hash, st.Path())
	lockPath := g.m.LockFilePath()
	lf, err := manifest.ReadLock(lockPath)
	if err != nil {
		return "", false, err
	}
	if lf == nil {
		lf = &manifest.LockFile{}
	}

	if locked := lf.FindArtifact(b.Program); locked != nil && locked.Hash == hash {
		if _, err := st.Load(locked.ID); err == nil {
			log.Infof("%s unchanged, artifact %s", b.Program, locked.ID)
			return locked.ID, false, nil
		} else if !errors.Is(err, store.ErrArtifactNotFound) {
			return "", false, err
		}
	}

	id, err := st.Save(b)
	if err != nil {
		return "", false, err
	}
	lf.Record(manifest.LockedArtifact{Program: b.Program, Hash: hash, ID: id})
	if err := manifest.WriteLock(lockPath, lf); err != nil {
		return "", false, fmt.Errorf("writing lock file: %w", err)
	}
	return id, true, nil
}

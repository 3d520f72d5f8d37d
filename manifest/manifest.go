// Package manifest handles cbgen.toml project configuration.
package manifest

import (
	"errors"
	"fmt"
	"os"
	"path/filepath"

	"github.com/BurntSushi/toml"
)

// FileName is the project configuration file looked up by Load.
const FileName = "cbgen.toml"

// ErrInvalid is wrapped by every validation failure.
var ErrInvalid = errors.New("invalid manifest")

// Manifest represents a cbgen.toml project configuration.
type Manifest struct {
	Project   Project                      `toml:"project"`
	Source    Source                       `toml:"source"`
	Entity    Entity                       `toml:"entity"`
	Labels    Labels                       `toml:"labels"`
	Memory    Memory                       `toml:"memory"`
	Variables map[string]string            `toml:"variables"`
	Args      map[string]map[string]string `toml:"args"`
	Output    Output                       `toml:"output"`
	Resolve   Resolve                      `toml:"resolve"`

	// Dir is the directory containing the cbgen.toml file (set at load time).
	Dir string `toml:"-"`
}

// Project contains project metadata.
type Project struct {
	Name    string `toml:"name"`
	Version string `toml:"version"`
	// Prefix is prepended to every derived objective name.
	Prefix string `toml:"prefix"`
}

// Source configures where program files live.
type Source struct {
	Dirs []string `toml:"dirs"`
}

// Entity configures the actor set commands address implicitly.
type Entity struct {
	Tag string `toml:"tag"`
}

// Labels configures jump-target dispatch.
type Labels struct {
	Pointer string `toml:"pointer"`
}

// Memory configures the address window handed out for memory locations.
// Location n maps to Base+n and must be below Size.
type Memory struct {
	Base int `toml:"base"`
	Size int `toml:"size"`
}

// Resolve configures name lookup.
type Resolve struct {
	// Strict restricts variables to those declared in [variables] plus the
	// label pointer.
	Strict bool `toml:"strict"`
}

// Output configures what the generator writes.
type Output struct {
	Format string `toml:"format"`
	Store  string `toml:"store"`
}

// Output formats.
const (
	FormatText  = "text"
	FormatTable = "table"
	FormatCBOR  = "cbor"
)

const (
	defaultPointer    = "func_pointer"
	defaultMemorySize = 256
	maxAddress        = 0xffff
)

// Load parses a cbgen.toml file from the given directory.
func Load(dir string) (*Manifest, error) {
	path := filepath.Join(dir, FileName)
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("cannot read %s: %w", path, err)
	}

	m, err := Parse(data)
	if err != nil {
		return nil, fmt.Errorf("%s: %w", path, err)
	}

	m.Dir, err = filepath.Abs(dir)
	if err != nil {
		return nil, fmt.Errorf("cannot resolve path %s: %w", dir, err)
	}
	return m, nil
}

// Parse decodes manifest TOML, fills defaults and validates the result.
func Parse(data []byte) (*Manifest, error) {
	var m Manifest
	if err := toml.Unmarshal(data, &m); err != nil {
		return nil, fmt.Errorf("parse error: %w", err)
	}
	m.setDefaults()
	if err := m.Validate(); err != nil {
		return nil, err
	}
	return &m, nil
}

// Default returns a manifest with every default filled in, for use when a
// project has no cbgen.toml.
func Default() *Manifest {
	m := &Manifest{}
	m.setDefaults()
	return m
}

func (m *Manifest) setDefaults() {
	if len(m.Source.Dirs) == 0 {
		m.Source.Dirs = []string{"programs"}
	}
	if m.Labels.Pointer == "" {
		m.Labels.Pointer = defaultPointer
	}
	if m.Memory.Size == 0 {
		m.Memory.Size = defaultMemorySize
	}
	if m.Output.Format == "" {
		m.Output.Format = FormatText
	}
	if m.Variables == nil {
		m.Variables = map[string]string{}
	}
	if m.Args == nil {
		m.Args = map[string]map[string]string{}
	}
}

// Validate checks the memory window, output format and objective names.
func (m *Manifest) Validate() error {
	if m.Memory.Base < 0 || m.Memory.Size < 0 {
		return fmt.Errorf("%w: memory base and size must not be negative", ErrInvalid)
	}
	if m.Memory.Base+m.Memory.Size-1 > maxAddress {
		return fmt.Errorf("%w: memory window %#x+%d exceeds %#x",
			ErrInvalid, m.Memory.Base, m.Memory.Size, maxAddress)
	}
	switch m.Output.Format {
	case FormatText, FormatTable, FormatCBOR:
	default:
		return fmt.Errorf("%w: unknown output format %q", ErrInvalid, m.Output.Format)
	}
	for name, obj := range m.Variables {
		if err := ValidateObjective(obj); err != nil {
			return fmt.Errorf("%w: variables.%s: %w", ErrInvalid, name, err)
		}
	}
	ptr, err := m.Objective(m.Labels.Pointer, nil)
	if err != nil {
		return fmt.Errorf("%w: labels.pointer: %w", ErrInvalid, err)
	}
	for name, obj := range m.Variables {
		if name != m.Labels.Pointer && obj == ptr {
			return fmt.Errorf("%w: variables.%s: objective %q is the label pointer", ErrInvalid, name, obj)
		}
	}
	return nil
}

// FindAndLoad walks up from startDir to find a cbgen.toml file,
// then loads and returns the manifest. Returns nil if no manifest is found.
func FindAndLoad(startDir string) (*Manifest, error) {
	dir, err := filepath.Abs(startDir)
	if err != nil {
		return nil, err
	}

	for {
		path := filepath.Join(dir, FileName)
		if _, err := os.Stat(path); err == nil {
			return Load(dir)
		}

		parent := filepath.Dir(dir)
		if parent == dir {
			// Reached root
			return nil, nil
		}
		dir = parent
	}
}

// SourceDirPaths returns absolute paths for the configured program directories.
func (m *Manifest) SourceDirPaths() []string {
	var paths []string
	for _, d := range m.Source.Dirs {
		paths = append(paths, filepath.Join(m.Dir, d))
	}
	return paths
}

// StorePath returns the artifact database path, relative paths being
// resolved against the manifest directory. Empty when no store is configured.
func (m *Manifest) StorePath() string {
	if m.Output.Store == "" || filepath.IsAbs(m.Output.Store) {
		return m.Output.Store
	}
	return filepath.Join(m.Dir, m.Output.Store)
}

// LockFilePath returns the path to .cbgen/lock.toml.
func (m *Manifest) LockFilePath() string {
	return filepath.Join(m.Dir, ".cbgen", "lock.toml")
}

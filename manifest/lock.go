package manifest

import (
	"bytes"
	"fmt"
	"os"
	"path/filepath"
	"sort"

	"github.com/BurntSushi/toml"
)

// LockFile records the last artifact stored for each program, so unchanged
// programs are not stored again.
type LockFile struct {
	Artifacts []LockedArtifact `toml:"artifact"`
}

// LockedArtifact ties a program to the artifact generated from it.
type LockedArtifact struct {
	Program string `toml:"program"`
	Hash    string `toml:"hash"`
	ID      string `toml:"id"`
}

// ReadLock reads a lock file. A missing file yields nil, nil.
func ReadLock(path string) (*LockFile, error) {
	data, err := os.ReadFile(path)
	if os.IsNotExist(err) {
		return nil, nil
	}
	if err != nil {
		return nil, fmt.Errorf("cannot read %s: %w", path, err)
	}
	var lf LockFile
	if err := toml.Unmarshal(data, &lf); err != nil {
		return nil, fmt.Errorf("parse error in %s: %w", path, err)
	}
	return &lf, nil
}

// WriteLock writes lf to path, sorted by program, creating parent dirs.
func WriteLock(path string, lf *LockFile) error {
	sort.Slice(lf.Artifacts, func(i, j int) bool {
		return lf.Artifacts[i].Program < lf.Artifacts[j].Program
	})
	var buf bytes.Buffer
	if err := toml.NewEncoder(&buf).Encode(lf); err != nil {
		return fmt.Errorf("encoding lock file: %w", err)
	}
	if err := os.MkdirAll(filepath.Dir(path), 0755); err != nil {
		return err
	}
	return os.WriteFile(path, buf.Bytes(), 0644)
}

// FindArtifact returns the locked entry for program, or nil.
func (lf *LockFile) FindArtifact(program string) *LockedArtifact {
	if lf == nil {
		return nil
	}
	for i := range lf.Artifacts {
		if lf.Artifacts[i].Program == program {
			return &lf.Artifacts[i]
		}
	}
	return nil
}

// Record sets the entry for a program, replacing any previous one.
func (lf *LockFile) Record(a LockedArtifact) {
	if existing := lf.FindArtifact(a.Program); existing != nil {
		*existing = a
		return
	}
	lf.Artifacts = append(lf.Artifacts, a)
}

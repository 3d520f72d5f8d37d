// Package scope implements the resolution context the ir package resolves
// against, backed by a project manifest.
package scope

import (
	"errors"
	"fmt"
	"strconv"

	"github.com/chazu/cbgen/ir"
	"github.com/chazu/cbgen/manifest"
)

// Lookup errors. They reach callers of ir Resolve methods unchanged.
var (
	ErrUnknownVariable = errors.New("unknown variable")
	ErrUnknownLocation = errors.New("unknown memory location")
	ErrUnknownArg      = errors.New("unknown command argument")
)

// Placeholder parameters understood by CmdArg before falling back to the
// manifest's [args] tables.
const (
	ArgEntityLocal = "entity_local"
	ArgVar         = "var"
	ArgMem         = "mem"
	ArgPointer     = "pointer"
)

// Scope is read-only after construction and safe for concurrent use.
type Scope struct {
	m   *manifest.Manifest
	tag string
}

var _ ir.Context = (*Scope)(nil)

// New returns a scope addressing the manifest's entity tag.
func New(m *manifest.Manifest) *Scope {
	return &Scope{m: m, tag: m.Entity.Tag}
}

// WithEntityTag returns a copy of s addressing a different actor set.
func (s *Scope) WithEntityTag(tag string) *Scope {
	c := *s
	c.tag = tag
	return &c
}

func (s *Scope) EntityTag() string { return s.tag }

// Pointer returns the label dispatch variable name.
func (s *Scope) Pointer() string { return s.m.Labels.Pointer }

func (s *Scope) Variable(name string, args []string) (string, error) {
	if s.m.Resolve.Strict && name != s.m.Labels.Pointer {
		if _, ok := s.m.Variables[name]; !ok {
			return "", fmt.Errorf("%w: %s (not declared)", ErrUnknownVariable, name)
		}
	}
	obj, err := s.m.Objective(name, args)
	if err != nil {
		return "", fmt.Errorf("%w: %s: %w", ErrUnknownVariable, name, err)
	}
	return obj, nil
}

// Memory maps a location into the manifest's memory window.
func (s *Scope) Memory(loc int) (int, error) {
	if loc < 0 || loc >= s.m.Memory.Size {
		return 0, fmt.Errorf("%w: %d (window holds %d)", ErrUnknownLocation, loc, s.m.Memory.Size)
	}
	return s.m.Memory.Base + loc, nil
}

// CmdArg resolves $param:value$. Variable parameters share objective naming
// with Variable, so objective administration commands and structured
// commands agree on names.
func (s *Scope) CmdArg(param, value string) (string, error) {
	switch param {
	case ArgEntityLocal, ArgVar:
		return s.Variable(value, nil)
	case ArgPointer:
		return s.Variable(s.m.Labels.Pointer, nil)
	case ArgMem:
		loc, err := strconv.Atoi(value)
		if err != nil {
			return "", fmt.Errorf("%w: mem:%s: %w", ErrUnknownArg, value, err)
		}
		return ir.Mem(loc).Resolve(s)
	}
	if tok, ok := s.m.Args[param][value]; ok {
		return tok, nil
	}
	return "", fmt.Errorf("%w: %s:%s", ErrUnknownArg, param, value)
}

package ir

import (
	"fmt"
	"slices"
	"strings"
)

// Mode tells the block scheduler how a block is triggered.
type Mode int

const (
	// Chain runs the block right after its predecessor in the layout.
	Chain Mode = iota
	// Repeat re-evaluates the block every tick.
	Repeat
)

func (m Mode) String() string {
	switch m {
	case Chain:
		return "CHAIN"
	case Repeat:
		return "REPEAT"
	}
	return fmt.Sprintf("Mode(%d)", int(m))
}

// ParseMode accepts CHAIN or REPEAT in any case.
func ParseMode(s string) (Mode, error) {
	switch strings.ToUpper(s) {
	case "CHAIN":
		return Chain, nil
	case "REPEAT":
		return Repeat, nil
	}
	return 0, fmt.Errorf("ir: unknown block mode %q", s)
}

// Block packages a command with the metadata the block scheduler consumes.
// This package never interprets Conditional, Mode or Auto.
type Block struct {
	Command     Command
	Conditional bool
	Mode        Mode
	Auto        bool
}

// NewBlock returns a conditional, automatic chain block.
func NewBlock(cmd Command) Block {
	return Block{Command: cmd, Conditional: true, Mode: Chain, Auto: true}
}

func (b Block) Resolve(ctx Context) (string, error) {
	if b.Command == nil {
		return "", ErrNilCommand
	}
	return b.Command.Resolve(ctx)
}

// ResolvedBlock pairs a block with its resolved text.
type ResolvedBlock struct {
	Block Block
	Text  string
}

// ResolvedEntry is one decision point of a resolved sequence.
type ResolvedEntry struct {
	Main     ResolvedBlock
	Branches []ResolvedBlock
}

type entry struct {
	main     Block
	branches []Block
}

// Sequence is an ordered list of mainline blocks, each with zero or more
// alternate branches. It is append-only.
type Sequence struct {
	entries []entry
}

func (s *Sequence) AddBlock(b Block) {
	s.entries = append(s.entries, entry{main: b})
}

// AddBranch appends a decision point. The branch slice is copied.
func (s *Sequence) AddBranch(main Block, branches []Block) {
	s.entries = append(s.entries, entry{main: main, branches: slices.Clone(branches)})
}

// Len returns the number of mainline entries.
func (s *Sequence) Len() int {
	return len(s.entries)
}

// Resolve resolves every block in insertion order, mainline before its
// branches. The result is fully materialized.
func (s *Sequence) Resolve(ctx Context) ([]ResolvedEntry, error) {
	out := make([]ResolvedEntry, 0, len(s.entries))
	for _, e := range s.entries {
		main, err := resolveBlock(ctx, e.main)
		if err != nil {
			return nil, err
		}
		branches := make([]ResolvedBlock, 0, len(e.branches))
		for _, b := range e.branches {
			rb, err := resolveBlock(ctx, b)
			if err != nil {
				return nil, err
			}
			branches = append(branches, rb)
		}
		out = append(out, ResolvedEntry{Main: main, Branches: branches})
	}
	return out, nil
}

func resolveBlock(ctx Context, b Block) (ResolvedBlock, error) {
	text, err := b.Resolve(ctx)
	if err != nil {
		return ResolvedBlock{}, err
	}
	return ResolvedBlock{Block: b, Text: text}, nil
}

// DefaultPointer is the counter used for label dispatch.
const DefaultPointer = "func_pointer"

// ClearedPointer is the pointer value after a label has been claimed.
// It can never be a label.
const ClearedPointer = -1

// LabelledSequence is a jump target. It starts with a repeating guard that
// fires once the pointer equals the label and clears the pointer, so the
// label is claimed exactly once.
type LabelledSequence struct {
	Sequence
	label   int
	pointer string
}

// LabelOption customizes a LabelledSequence.
type LabelOption func(*LabelledSequence)

// WithPointer sets the dispatch variable name.
func WithPointer(name string) LabelOption {
	return func(s *LabelledSequence) {
		s.pointer = name
	}
}

func NewLabelledSequence(label int, opts ...LabelOption) (*LabelledSequence, error) {
	if label == ClearedPointer {
		return nil, ErrReservedLabel
	}
	s := &LabelledSequence{label: label, pointer: DefaultPointer}
	for _, opt := range opts {
		opt(s)
	}
	ptr := Var(s.pointer)
	cond, err := SelEquals(ptr, label)
	if err != nil {
		return nil, err
	}
	reset, err := SetConst(ptr, ClearedPointer)
	if err != nil {
		return nil, err
	}
	guard, err := Execute(cond, reset)
	if err != nil {
		return nil, err
	}
	s.AddBlock(Block{Command: guard, Conditional: false, Mode: Repeat, Auto: true})
	return s, nil
}

func (s *LabelledSequence) Label() int { return s.label }

func (s *LabelledSequence) Pointer() string { return s.pointer }

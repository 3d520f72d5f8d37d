// Package program decodes program files: TOML descriptions of command
// sequences, turned into ir values ready for resolution.
//
//	[[sequence]]
//	name = "spawn"
//	label = 3
//
//	[[sequence.block]]
//	command = { kind = "set", var = "hp", value = 20 }
//
//	[[sequence.block]]
//	builtin = "add_tag_this_entity"
//	args = [{ string = "alive" }]
package program

import (
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"strings"

	"github.com/BurntSushi/toml"

	"github.com/chazu/cbgen/builtins"
	"github.com/chazu/cbgen/ir"
)

// ErrProgram is wrapped by every decoding error.
var ErrProgram = errors.New("invalid program")

// Options controls decoding.
type Options struct {
	// Pointer is the label dispatch variable. Empty means ir.DefaultPointer.
	Pointer string
}

// Program is a decoded program file.
type Program struct {
	Name      string
	Sequences []Sequence
}

// Sequence is one named sequence of a program. Label is nil for plain
// sequences.
type Sequence struct {
	Name     string
	Label    *int
	Sequence *ir.Sequence
}

type fileSpec struct {
	Sequences []sequenceSpec `toml:"sequence"`
}

type sequenceSpec struct {
	Name    string      `toml:"name"`
	Label   *int        `toml:"label"`
	Pointer string      `toml:"pointer"`
	Blocks  []blockSpec `toml:"block"`
}

type blockSpec struct {
	Command     *commandSpec `toml:"command"`
	Builtin     string       `toml:"builtin"`
	Args        []argSpec    `toml:"args"`
	Conditional *bool        `toml:"conditional"`
	Mode        string       `toml:"mode"`
	Auto        *bool        `toml:"auto"`
	Branches    []blockSpec  `toml:"branch"`
}

type argSpec struct {
	Ident string  `toml:"ident"`
	Str   *string `toml:"string"`
}

// Load reads and decodes a program file. The program is named after the
// file without its extension.
func Load(path string, opts Options) (*Program, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("cannot read %s: %w", path, err)
	}
	name := strings.TrimSuffix(filepath.Base(path), filepath.Ext(path))
	p, err := Parse(name, data, opts)
	if err != nil {
		return nil, fmt.Errorf("%s: %w", path, err)
	}
	return p, nil
}

// Parse decodes program TOML.
func Parse(name string, data []byte, opts Options) (*Program, error) {
	var spec fileSpec
	md, err := toml.Decode(string(data), &spec)
	if err != nil {
		return nil, fmt.Errorf("%w: %w", ErrProgram, err)
	}
	if undecoded := md.Undecoded(); len(undecoded) > 0 {
		return nil, fmt.Errorf("%w: unknown key %s", ErrProgram, undecoded[0])
	}
	if opts.Pointer == "" {
		opts.Pointer = ir.DefaultPointer
	}

	p := &Program{Name: name}
	seen := map[string]bool{}
	for i, ss := range spec.Sequences {
		if ss.Name == "" {
			ss.Name = fmt.Sprintf("seq%d", i)
		}
		if seen[ss.Name] {
			return nil, fmt.Errorf("%w: duplicate sequence %q", ErrProgram, ss.Name)
		}
		seen[ss.Name] = true

		seq, err := ss.build(opts)
		if err != nil {
			return nil, fmt.Errorf("%w: sequence %q: %w", ErrProgram, ss.Name, err)
		}
		p.Sequences = append(p.Sequences, seq)
	}
	return p, nil
}

func (ss sequenceSpec) build(opts Options) (Sequence, error) {
	out := Sequence{Name: ss.Name, Label: ss.Label}
	if ss.Label != nil {
		ptr := ss.Pointer
		if ptr == "" {
			ptr = opts.Pointer
		}
		ls, err := ir.NewLabelledSequence(*ss.Label, ir.WithPointer(ptr))
		if err != nil {
			return Sequence{}, err
		}
		out.Sequence = &ls.Sequence
	} else {
		out.Sequence = &ir.Sequence{}
	}

	for i, bs := range ss.Blocks {
		mains, err := bs.build()
		if err != nil {
			return Sequence{}, fmt.Errorf("block %d: %w", i, err)
		}
		if len(bs.Branches) == 0 {
			for _, b := range mains {
				out.Sequence.AddBlock(b)
			}
			continue
		}
		if len(mains) != 1 {
			return Sequence{}, fmt.Errorf("block %d: a builtin block cannot have branches", i)
		}
		var branches []ir.Block
		for j, br := range bs.Branches {
			if len(br.Branches) > 0 {
				return Sequence{}, fmt.Errorf("block %d branch %d: branches do not nest", i, j)
			}
			blocks, err := br.build()
			if err != nil {
				return Sequence{}, fmt.Errorf("block %d branch %d: %w", i, j, err)
			}
			branches = append(branches, blocks...)
		}
		out.Sequence.AddBranch(mains[0], branches)
	}
	return out, nil
}

// build returns one block for a command, or one block per raw line for a
// builtin. Metadata applies to every returned block.
func (bs blockSpec) build() ([]ir.Block, error) {
	var blocks []ir.Block
	switch {
	case bs.Command != nil && bs.Builtin != "":
		return nil, errors.New("command and builtin are exclusive")
	case bs.Command != nil:
		cmd, err := bs.Command.build()
		if err != nil {
			return nil, err
		}
		blocks = []ir.Block{ir.NewBlock(cmd)}
	case bs.Builtin != "":
		args := make([]builtins.Arg, len(bs.Args))
		for i, a := range bs.Args {
			arg, err := a.arg()
			if err != nil {
				return nil, fmt.Errorf("argument %d: %w", i+1, err)
			}
			args[i] = arg
		}
		asm, err := builtins.Call(bs.Builtin, args)
		if err != nil {
			return nil, err
		}
		if blocks, err = asm.Blocks(); err != nil {
			return nil, err
		}
	default:
		return nil, errors.New("block needs a command or a builtin")
	}

	mode := ir.Chain
	if bs.Mode != "" {
		m, err := ir.ParseMode(bs.Mode)
		if err != nil {
			return nil, err
		}
		mode = m
	}
	for i := range blocks {
		blocks[i].Mode = mode
		if bs.Conditional != nil {
			blocks[i].Conditional = *bs.Conditional
		}
		if bs.Auto != nil {
			blocks[i].Auto = *bs.Auto
		}
	}
	return blocks, nil
}

func (a argSpec) arg() (builtins.Arg, error) {
	switch {
	case a.Ident != "" && a.Str != nil:
		return builtins.Arg{}, errors.New("ident and string are exclusive")
	case a.Ident != "":
		return builtins.IdentArg(a.Ident), nil
	case a.Str != nil:
		return builtins.StringArg(*a.Str), nil
	}
	return builtins.Arg{}, errors.New("argument needs ident or string")
}

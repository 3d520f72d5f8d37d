// Package builtins emits raw command text for fixed-shape builtins,
// bypassing the structured ir commands.
package builtins

import (
	"errors"
	"fmt"
	"sort"
	"strings"

	"github.com/chazu/cbgen/ir"
	"github.com/chazu/cbgen/scope"
)

// Prefix marks a raw command line.
const Prefix = "CMD "

// ErrBuiltinArgs is returned when a builtin gets the wrong number or kind
// of arguments.
var ErrBuiltinArgs = errors.New("bad builtin arguments")

// ErrUnknownBuiltin is returned by Call for names not in the registry.
var ErrUnknownBuiltin = errors.New("unknown builtin")

// ArgKind distinguishes identifiers from string literals.
type ArgKind int

const (
	Ident ArgKind = iota
	String
)

func (k ArgKind) String() string {
	if k == String {
		return "string"
	}
	return "identifier"
}

// Arg is a builtin argument as handed over by the front end.
type Arg struct {
	Kind  ArgKind
	Value string
}

func IdentArg(name string) Arg { return Arg{Kind: Ident, Value: name} }

func StringArg(s string) Arg { return Arg{Kind: String, Value: s} }

// Asm is an ordered list of raw command lines, each starting with Prefix.
type Asm []string

// Raw wraps a literal command as an Asm line.
func Raw(cmd string) string {
	return Prefix + cmd
}

// Commands converts the lines to ir commands. Placeholders in the text use
// the same $param:value$ grammar as any other command template.
func (a Asm) Commands() ([]ir.RawCmd, error) {
	out := make([]ir.RawCmd, 0, len(a))
	for i, line := range a {
		body, ok := strings.CutPrefix(line, Prefix)
		if !ok {
			return nil, fmt.Errorf("asm line %d: missing %q prefix: %q", i, Prefix, line)
		}
		out = append(out, ir.Cmd(body))
	}
	return out, nil
}

// Blocks converts the lines to chained blocks.
func (a Asm) Blocks() ([]ir.Block, error) {
	cmds, err := a.Commands()
	if err != nil {
		return nil, err
	}
	blocks := make([]ir.Block, len(cmds))
	for i, c := range cmds {
		blocks[i] = ir.NewBlock(c)
	}
	return blocks, nil
}

// Builtin turns front-end arguments into raw command lines.
type Builtin func(args []Arg) (Asm, error)

var registry = map[string]Builtin{
	"add_tag_this_entity":     AddTag,
	"remove_tag_this_entity":  RemoveTag,
	"set_scoreboard_tracking": SetTracking,
}

// Names returns the registered builtin names, sorted.
func Names() []string {
	names := make([]string, 0, len(registry))
	for name := range registry {
		names = append(names, name)
	}
	sort.Strings(names)
	return names
}

// Lookup returns the builtin registered under name.
func Lookup(name string) (Builtin, bool) {
	b, ok := registry[name]
	return b, ok
}

// Call runs the named builtin.
func Call(name string, args []Arg) (Asm, error) {
	b, ok := Lookup(name)
	if !ok {
		return nil, fmt.Errorf("%w: %s (known: %s)", ErrUnknownBuiltin, name, strings.Join(Names(), ", "))
	}
	asm, err := b(args)
	if err != nil {
		return nil, fmt.Errorf("%s: %w", name, err)
	}
	return asm, nil
}

func expect(args []Arg, kinds ...ArgKind) error {
	if len(args) != len(kinds) {
		return fmt.Errorf("%w: takes %d argument(s), got %d", ErrBuiltinArgs, len(kinds), len(args))
	}
	for i, k := range kinds {
		if args[i].Kind != k {
			return fmt.Errorf("%w: argument %d must be a %s", ErrBuiltinArgs, i+1, k)
		}
	}
	return nil
}

// AddTag tags the acting entity: add_tag_this_entity("name").
func AddTag(args []Arg) (Asm, error) {
	if err := expect(args, String); err != nil {
		return nil, err
	}
	return Asm{Raw("tag @s add " + args[0].Value)}, nil
}

// RemoveTag untags the acting entity: remove_tag_this_entity("name").
func RemoveTag(args []Arg) (Asm, error) {
	if err := expect(args, String); err != nil {
		return nil, err
	}
	return Asm{Raw("tag @s remove " + args[0].Value)}, nil
}

// SetTracking recreates the objective behind an entity-local variable with
// a new criterion: set_scoreboard_tracking(var, "criterion").
func SetTracking(args []Arg) (Asm, error) {
	if err := expect(args, Ident, String); err != nil {
		return nil, err
	}
	obj := fmt.Sprintf("$%s:%s$", scope.ArgEntityLocal, args[0].Value)
	return Asm{
		Raw("scoreboard objectives remove " + obj),
		Raw("scoreboard objectives add " + obj + " " + args[1].Value),
	}, nil
}

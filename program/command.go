package program

import (
	"errors"
	"fmt"

	"github.com/chazu/cbgen/ir"
)

type refSpec struct {
	Var  string   `toml:"var"`
	Args []string `toml:"args"`
	Mem  *int     `toml:"mem"`
}

func (r refSpec) ref() (ir.Ref, error) {
	switch {
	case r.Var != "" && r.Mem != nil:
		return nil, errors.New("var and mem are exclusive")
	case r.Var != "":
		return ir.Var(r.Var, r.Args...), nil
	case r.Mem != nil:
		if len(r.Args) > 0 {
			return nil, errors.New("args only apply to var")
		}
		return ir.Mem(*r.Mem), nil
	}
	return nil, errors.New("reference needs var or mem")
}

type filterSpec struct {
	Var  string   `toml:"var"`
	Args []string `toml:"args"`
	Mem  *int     `toml:"mem"`
	Min  *int     `toml:"min"`
	Max  *int     `toml:"max"`
	Eq   *int     `toml:"eq"`
}

func (f filterSpec) selector() (ir.Selector, error) {
	ref, err := refSpec{Var: f.Var, Args: f.Args, Mem: f.Mem}.ref()
	if err != nil {
		return nil, err
	}
	if f.Eq != nil {
		if f.Min != nil || f.Max != nil {
			return nil, errors.New("eq excludes min and max")
		}
		return ir.SelEquals(ref, *f.Eq)
	}
	return ir.SelRange(ref, f.Min, f.Max)
}

type commandSpec struct {
	Kind string `toml:"kind"`

	// raw
	Text string `toml:"text"`

	// set, add, remove, test
	Var   string   `toml:"var"`
	Args  []string `toml:"args"`
	Mem   *int     `toml:"mem"`
	Value *int     `toml:"value"`
	Min   *int     `toml:"min"`
	Max   *int     `toml:"max"`

	// tag: name and add/remove; op: operator symbol
	Tag   string   `toml:"tag"`
	Op    string   `toml:"op"`
	Left  *refSpec `toml:"left"`
	Right *refSpec `toml:"right"`

	// execute
	If   *filterSpec  `toml:"if"`
	Then *commandSpec `toml:"then"`

	Where []filterSpec `toml:"where"`
}

var constOps = map[string]ir.ConstOp{
	"set":    ir.OpSet,
	"add":    ir.OpAddConst,
	"remove": ir.OpRemoveConst,
}

func (c *commandSpec) ref() (ir.Ref, error) {
	return refSpec{Var: c.Var, Args: c.Args, Mem: c.Mem}.ref()
}

func (c *commandSpec) build() (ir.Command, error) {
	cmd, err := c.buildBase()
	if err != nil {
		return nil, fmt.Errorf("%s command: %w", c.Kind, err)
	}
	if len(c.Where) == 0 {
		return cmd, nil
	}
	sel, ok := cmd.(ir.Selecting)
	if !ok {
		return nil, fmt.Errorf("%s command does not take where filters", c.Kind)
	}
	for i, f := range c.Where {
		s, err := f.selector()
		if err != nil {
			return nil, fmt.Errorf("%s command: where %d: %w", c.Kind, i, err)
		}
		sel = sel.WithFilter(s)
	}
	return sel, nil
}

func (c *commandSpec) buildBase() (ir.Command, error) {
	switch c.Kind {
	case "raw":
		if c.Text == "" {
			return nil, errors.New("missing text")
		}
		return ir.Cmd(c.Text), nil

	case "set", "add", "remove":
		ref, err := c.ref()
		if err != nil {
			return nil, err
		}
		if c.Value == nil {
			return nil, errors.New("missing value")
		}
		return ir.Const(constOps[c.Kind], ref, *c.Value)

	case "test":
		ref, err := c.ref()
		if err != nil {
			return nil, err
		}
		if c.Min == nil {
			return nil, errors.New("missing min")
		}
		return ir.InRange(ref, *c.Min, c.Max)

	case "tag":
		op := ir.TagAdd
		switch c.Op {
		case "", "add":
		case "remove":
			op = ir.TagRemove
		default:
			return nil, fmt.Errorf("%w: %q", ir.ErrUnknownOp, c.Op)
		}
		return ir.Tag(c.Tag, op)

	case "op":
		kind, err := ir.ParseOpKind(c.Op)
		if err != nil {
			return nil, err
		}
		if c.Left == nil || c.Right == nil {
			return nil, errors.New("needs left and right")
		}
		left, err := c.Left.ref()
		if err != nil {
			return nil, fmt.Errorf("left: %w", err)
		}
		right, err := c.Right.ref()
		if err != nil {
			return nil, fmt.Errorf("right: %w", err)
		}
		return ir.Op(kind, left, right)

	case "execute":
		if c.If == nil || c.Then == nil {
			return nil, errors.New("needs if and then")
		}
		where, err := c.If.selector()
		if err != nil {
			return nil, fmt.Errorf("if: %w", err)
		}
		inner, err := c.Then.build()
		if err != nil {
			return nil, fmt.Errorf("then: %w", err)
		}
		return ir.Execute(where, inner)

	case "":
		return nil, errors.New("missing kind")
	}
	return nil, fmt.Errorf("unknown kind %q", c.Kind)
}

package ir

import (
	"fmt"
	"slices"
	"strconv"
)

// ConstOp selects the counter mutation a ScoreCmd performs.
type ConstOp int

const (
	OpSet ConstOp = iota
	OpAddConst
	OpRemoveConst
)

var constOpNames = map[ConstOp]string{
	OpSet:         "set",
	OpAddConst:    "add",
	OpRemoveConst: "remove",
}

func (op ConstOp) String() string {
	if s, ok := constOpNames[op]; ok {
		return s
	}
	return fmt.Sprintf("ConstOp(%d)", int(op))
}

// ScoreCmd sets, increments or decrements a counter by a constant on the
// selected actors.
type ScoreCmd struct {
	op      ConstOp
	ref     Ref
	value   int
	filters filters
}

// Const builds a counter mutation with an explicit operator.
func Const(op ConstOp, ref Ref, value int) (ScoreCmd, error) {
	if _, ok := constOpNames[op]; !ok {
		return ScoreCmd{}, fmt.Errorf("%w: %v", ErrUnknownOp, op)
	}
	if ref == nil {
		return ScoreCmd{}, ErrNilRef
	}
	return ScoreCmd{op: op, ref: ref, value: value}, nil
}

func SetConst(ref Ref, value int) (ScoreCmd, error) { return Const(OpSet, ref, value) }

func AddConst(ref Ref, value int) (ScoreCmd, error) { return Const(OpAddConst, ref, value) }

func RemConst(ref Ref, value int) (ScoreCmd, error) { return Const(OpRemoveConst, ref, value) }

func (c ScoreCmd) Op() ConstOp { return c.op }

func (c ScoreCmd) Ref() Ref { return c.ref }

func (c ScoreCmd) Value() int { return c.value }

func (c ScoreCmd) Filters() []Selector { return slices.Clone(c.filters) }

func (c ScoreCmd) Where(sel Selector) ScoreCmd {
	c.filters = c.filters.with(sel)
	return c
}

func (c ScoreCmd) WithFilter(sel Selector) Selecting { return c.Where(sel) }

func (c ScoreCmd) Resolve(ctx Context) (string, error) {
	if c.ref == nil {
		return "", ErrNilRef
	}
	sel, err := c.filters.clause(ctx)
	if err != nil {
		return "", err
	}
	tok, err := c.ref.Resolve(ctx)
	if err != nil {
		return "", err
	}
	return "scoreboard players " + c.op.String() + " " + sel + " " + tok + " " + strconv.Itoa(c.value), nil
}

// TestCmd tests a counter against [min, max], or against min alone when no
// max is given. There is no form bounded only from above.
type TestCmd struct {
	ref     Ref
	min     int
	max     int
	hasMax  bool
	filters filters
}

// InRange builds a counter test. A nil max leaves the range open upward.
func InRange(ref Ref, min int, max *int) (TestCmd, error) {
	if ref == nil {
		return TestCmd{}, ErrNilRef
	}
	t := TestCmd{ref: ref, min: min}
	if max != nil {
		t.max, t.hasMax = *max, true
	}
	return t, nil
}

func (c TestCmd) Ref() Ref { return c.ref }

func (c TestCmd) Min() int { return c.min }

func (c TestCmd) Max() (int, bool) { return c.max, c.hasMax }

func (c TestCmd) Filters() []Selector { return slices.Clone(c.filters) }

func (c TestCmd) Where(sel Selector) TestCmd {
	c.filters = c.filters.with(sel)
	return c
}

func (c TestCmd) WithFilter(sel Selector) Selecting { return c.Where(sel) }

func (c TestCmd) Resolve(ctx Context) (string, error) {
	if c.ref == nil {
		return "", ErrNilRef
	}
	sel, err := c.filters.clause(ctx)
	if err != nil {
		return "", err
	}
	tok, err := c.ref.Resolve(ctx)
	if err != nil {
		return "", err
	}
	out := "scoreboard players test " + sel + " " + tok + " " + strconv.Itoa(c.min)
	if c.hasMax {
		out += " " + strconv.Itoa(c.max)
	}
	return out, nil
}

// TagOp is the direction of a tag change. The zero value adds.
type TagOp int

const (
	TagAdd TagOp = iota
	TagRemove
)

func (op TagOp) String() string {
	switch op {
	case TagAdd:
		return "add"
	case TagRemove:
		return "remove"
	}
	return fmt.Sprintf("TagOp(%d)", int(op))
}

// TagCmd adds or removes a tag on the selected actors.
type TagCmd struct {
	name    string
	op      TagOp
	filters filters
}

func Tag(name string, op TagOp) (TagCmd, error) {
	if name == "" {
		return TagCmd{}, ErrEmptyTag
	}
	if op != TagAdd && op != TagRemove {
		return TagCmd{}, fmt.Errorf("%w: %v", ErrUnknownOp, op)
	}
	return TagCmd{name: name, op: op}, nil
}

func (c TagCmd) Name() string { return c.name }

func (c TagCmd) Op() TagOp { return c.op }

func (c TagCmd) Filters() []Selector { return slices.Clone(c.filters) }

func (c TagCmd) Where(sel Selector) TagCmd {
	c.filters = c.filters.with(sel)
	return c
}

func (c TagCmd) WithFilter(sel Selector) Selecting { return c.Where(sel) }

func (c TagCmd) Resolve(ctx Context) (string, error) {
	sel, err := c.filters.clause(ctx)
	if err != nil {
		return "", err
	}
	return "scoreboard players tag " + sel + " " + c.op.String() + " " + c.name, nil
}

package ir

import (
	"fmt"
	"slices"
)

// OpKind is a binary counter operation.
type OpKind int

const (
	OpAssign OpKind = iota
	OpAdd
	OpSub
	OpMul
	OpDiv
	OpMod
	OpSwap
	OpIfLt
	OpIfGt
)

var opSymbols = map[OpKind]string{
	OpAssign: "=",
	OpAdd:    "+=",
	OpSub:    "-=",
	OpMul:    "*=",
	OpDiv:    "/=",
	OpMod:    "%=",
	OpSwap:   "><",
	OpIfLt:   "<",
	OpIfGt:   ">",
}

// Symbol returns the operator as written in the operation command.
func (k OpKind) Symbol() string {
	return opSymbols[k]
}

func (k OpKind) String() string {
	if s, ok := opSymbols[k]; ok {
		return s
	}
	return fmt.Sprintf("OpKind(%d)", int(k))
}

// ParseOpKind maps an operator symbol back to its kind.
func ParseOpKind(symbol string) (OpKind, error) {
	for k, s := range opSymbols {
		if s == symbol {
			return k, nil
		}
	}
	return 0, fmt.Errorf("%w: %q", ErrUnknownOp, symbol)
}

// OperationCmd combines two counters of the same actor set. The right
// operand is read from the same selection as the left one.
type OperationCmd struct {
	kind    OpKind
	left    Ref
	right   Ref
	filters filters
}

func Op(kind OpKind, left, right Ref) (OperationCmd, error) {
	if _, ok := opSymbols[kind]; !ok {
		return OperationCmd{}, fmt.Errorf("%w: %v", ErrUnknownOp, kind)
	}
	if left == nil || right == nil {
		return OperationCmd{}, ErrNilRef
	}
	return OperationCmd{kind: kind, left: left, right: right}, nil
}

func (c OperationCmd) Kind() OpKind { return c.kind }

func (c OperationCmd) Left() Ref { return c.left }

func (c OperationCmd) Right() Ref { return c.right }

func (c OperationCmd) Filters() []Selector { return slices.Clone(c.filters) }

func (c OperationCmd) Where(sel Selector) OperationCmd {
	c.filters = c.filters.with(sel)
	return c
}

func (c OperationCmd) WithFilter(sel Selector) Selecting { return c.Where(sel) }

func (c OperationCmd) Resolve(ctx Context) (string, error) {
	if c.left == nil || c.right == nil {
		return "", ErrNilRef
	}
	sel, err := c.filters.clause(ctx)
	if err != nil {
		return "", err
	}
	left, err := c.left.Resolve(ctx)
	if err != nil {
		return "", err
	}
	right, err := c.right.Resolve(ctx)
	if err != nil {
		return "", err
	}
	return fmt.Sprintf("scoreboard players operation %s %s %s %s %s",
		sel, left, c.kind.Symbol(), sel, right), nil
}

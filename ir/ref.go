package ir

import (
	"fmt"
	"slices"
)

// MaxAddress is the largest address a MemRef can render.
const MaxAddress = 0xffff

// Ref is a value reference resolved to an operand token.
type Ref interface {
	Resolve(ctx Context) (string, error)
	Equal(other Ref) bool
}

// VarRef names a variable; it resolves through Context.Variable.
type VarRef struct {
	name string
	args []string
}

// Var returns a reference to the named variable. Args are forwarded to the
// context untouched.
func Var(name string, args ...string) VarRef {
	return VarRef{name: name, args: slices.Clone(args)}
}

func (v VarRef) Name() string { return v.name }

func (v VarRef) Args() []string { return slices.Clone(v.args) }

func (v VarRef) Resolve(ctx Context) (string, error) {
	return ctx.Variable(v.name, slices.Clone(v.args))
}

func (v VarRef) Equal(other Ref) bool {
	o, ok := other.(VarRef)
	return ok && o.name == v.name && slices.Equal(o.args, v.args)
}

func (v VarRef) String() string {
	if len(v.args) == 0 {
		return v.name
	}
	return fmt.Sprintf("%s%v", v.name, v.args)
}

// MemRef is a fixed memory location. It resolves to a 0x-prefixed,
// lowercase, four digit hex literal of the address the context assigns.
type MemRef struct {
	loc int
}

func Mem(loc int) MemRef {
	return MemRef{loc: loc}
}

func (m MemRef) Loc() int { return m.loc }

func (m MemRef) Resolve(ctx Context) (string, error) {
	addr, err := ctx.Memory(m.loc)
	if err != nil {
		return "", err
	}
	if addr < 0 || addr > MaxAddress {
		return "", fmt.Errorf("%w: location %d maps to %d", ErrAddressRange, m.loc, addr)
	}
	return fmt.Sprintf("0x%04x", addr), nil
}

func (m MemRef) Equal(other Ref) bool {
	o, ok := other.(MemRef)
	return ok && o.loc == m.loc
}

func (m MemRef) String() string {
	return fmt.Sprintf("mem[%d]", m.loc)
}

package ir

import (
	"slices"
	"strings"
)

// Command resolves to exactly one line of runtime text.
type Command interface {
	Resolve(ctx Context) (string, error)
}

// Selecting is implemented by commands that address an actor set and can
// accumulate selector filters.
type Selecting interface {
	Command
	Filters() []Selector
	WithFilter(sel Selector) Selecting
}

// baseSelector is the selector symbol all commands address.
const baseSelector = "e"

// filters is the accumulated filter list of a selecting command. It is never
// modified in place; with returns a fresh slice.
type filters []Selector

func (f filters) with(sel Selector) filters {
	out := make(filters, len(f), len(f)+1)
	copy(out, f)
	return append(out, sel)
}

// clause builds the selector clause: the entity tag first, then the
// command's own predicates, then the accumulated filters. The tag pair is
// always present; an empty tag selects untagged actors only.
func (f filters) clause(ctx Context, own ...Selector) (string, error) {
	pairs := Pairs{{Key: "tag", Value: ctx.EntityTag()}}
	for _, group := range [][]Selector{own, f} {
		for _, sel := range group {
			if sel == nil {
				return "", ErrNilSelector
			}
			p, err := sel.Resolve(ctx)
			if err != nil {
				return "", err
			}
			pairs = pairs.Merge(p)
		}
	}
	return pairs.Clause(baseSelector), nil
}

// RawCmd is a literal command template. Placeholders have the form
// $param:value$ and are replaced by Context.CmdArg.
type RawCmd struct {
	template string
}

func Cmd(template string) RawCmd {
	return RawCmd{template: template}
}

func (c RawCmd) Template() string { return c.template }

// Resolve substitutes placeholders in a single left-to-right pass.
// Substituted text is not scanned again. Scanning stops at the first
// placeholder missing its ':' or closing '$'; the remainder is copied as is.
func (c RawCmd) Resolve(ctx Context) (string, error) {
	var sb strings.Builder
	rest := c.template
	for {
		open := strings.IndexByte(rest, '$')
		if open < 0 {
			break
		}
		colon := strings.IndexByte(rest[open:], ':')
		if colon < 0 {
			break
		}
		colon += open
		end := strings.IndexByte(rest[colon:], '$')
		if end < 0 {
			break
		}
		end += colon
		tok, err := ctx.CmdArg(rest[open+1:colon], rest[colon+1:end])
		if err != nil {
			return "", err
		}
		sb.WriteString(rest[:open])
		sb.WriteString(tok)
		rest = rest[end+1:]
	}
	sb.WriteString(rest)
	return sb.String(), nil
}

// ExecuteCmd runs an inner command as every actor matched by its condition.
type ExecuteCmd struct {
	where   Selector
	inner   Command
	filters filters
}

// Execute conditions inner on where. The condition only applies to this
// command's clause; it is not added to the accumulated filters.
func Execute(where Selector, inner Command) (ExecuteCmd, error) {
	if where == nil {
		return ExecuteCmd{}, ErrNilSelector
	}
	if inner == nil {
		return ExecuteCmd{}, ErrNilCommand
	}
	return ExecuteCmd{where: where, inner: inner}, nil
}

func (e ExecuteCmd) Condition() Selector { return e.where }

func (e ExecuteCmd) Inner() Command { return e.inner }

func (e ExecuteCmd) Filters() []Selector { return slices.Clone(e.filters) }

// Where returns a copy of e with sel appended to its filters.
func (e ExecuteCmd) Where(sel Selector) ExecuteCmd {
	e.filters = e.filters.with(sel)
	return e
}

func (e ExecuteCmd) WithFilter(sel Selector) Selecting { return e.Where(sel) }

func (e ExecuteCmd) Resolve(ctx Context) (string, error) {
	if e.inner == nil {
		return "", ErrNilCommand
	}
	sel, err := e.filters.clause(ctx, e.where)
	if err != nil {
		return "", err
	}
	inner, err := e.inner.Resolve(ctx)
	if err != nil {
		return "", err
	}
	return "execute " + sel + " ~ ~ ~ " + inner, nil
}

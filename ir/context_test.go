package ir

import (
	"errors"
	"fmt"
	"strings"
)

var errLookup = errors.New("lookup failed")

// fakeContext maps variables to obj_<name> and memory locations to
// location*16, unless overridden.
type fakeContext struct {
	tag      string
	vars     map[string]string
	memory   map[int]int
	args     map[string]string
	argCalls []string
}

func newFakeContext() *fakeContext {
	return &fakeContext{
		tag:    "E",
		vars:   map[string]string{},
		memory: map[int]int{},
		args:   map[string]string{},
	}
}

func (c *fakeContext) Variable(name string, args []string) (string, error) {
	if name == "missing" {
		return "", fmt.Errorf("%w: variable %s", errLookup, name)
	}
	if tok, ok := c.vars[name]; ok {
		return tok, nil
	}
	tok := "obj_" + name
	if len(args) > 0 {
		tok += "_" + strings.Join(args, "_")
	}
	return tok, nil
}

func (c *fakeContext) Memory(loc int) (int, error) {
	if loc < 0 {
		return 0, fmt.Errorf("%w: location %d", errLookup, loc)
	}
	if addr, ok := c.memory[loc]; ok {
		return addr, nil
	}
	return loc * 16, nil
}

func (c *fakeContext) CmdArg(param, value string) (string, error) {
	c.argCalls = append(c.argCalls, param+":"+value)
	if param == "bad" {
		return "", fmt.Errorf("%w: arg %s", errLookup, param)
	}
	if tok, ok := c.args[param+":"+value]; ok {
		return tok, nil
	}
	return "<" + param + "=" + value + ">", nil
}

func (c *fakeContext) EntityTag() string { return c.tag }

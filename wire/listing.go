// Package wire is the hand-off format between the generator and the block
// scheduler: resolved sequences flattened to lines with their metadata,
// encoded as canonical CBOR.
package wire

import "github.com/chazu/cbgen/ir"

// Mode mirrors ir.Mode on the wire.
type Mode uint8

const (
	ModeChain  Mode = 0
	ModeRepeat Mode = 1
)

func (m Mode) String() string {
	if m == ModeRepeat {
		return ir.Repeat.String()
	}
	return ir.Chain.String()
}

// Line is one resolved command and its scheduling metadata.
type Line struct {
	Text        string `cbor:"1,keyasint"`
	Conditional bool   `cbor:"2,keyasint"`
	Mode        Mode   `cbor:"3,keyasint"`
	Auto        bool   `cbor:"4,keyasint"`
	Kind        string `cbor:"5,keyasint,omitempty"`
}

// Entry is a mainline line plus its branch lines.
type Entry struct {
	Main     Line   `cbor:"1,keyasint"`
	Branches []Line `cbor:"2,keyasint,omitempty"`
}

// Listing is one resolved sequence.
type Listing struct {
	Sequence string  `cbor:"1,keyasint"`
	Label    *int    `cbor:"2,keyasint,omitempty"`
	Entries  []Entry `cbor:"3,keyasint"`
}

// Bundle is every listing generated from one program.
type Bundle struct {
	Program  string    `cbor:"1,keyasint"`
	Listings []Listing `cbor:"2,keyasint"`
}

// Lines returns the number of lines in the bundle, branches included.
func (b *Bundle) Lines() int {
	n := 0
	for _, l := range b.Listings {
		for _, e := range l.Entries {
			n += 1 + len(e.Branches)
		}
	}
	return n
}

// NewListing flattens resolved entries.
func NewListing(sequence string, label *int, entries []ir.ResolvedEntry) Listing {
	l := Listing{Sequence: sequence, Entries: make([]Entry, 0, len(entries))}
	if label != nil {
		v := *label
		l.Label = &v
	}
	for _, e := range entries {
		entry := Entry{Main: lineOf(e.Main)}
		for _, b := range e.Branches {
			entry.Branches = append(entry.Branches, lineOf(b))
		}
		l.Entries = append(l.Entries, entry)
	}
	return l
}

func lineOf(rb ir.ResolvedBlock) Line {
	mode := ModeChain
	if rb.Block.Mode == ir.Repeat {
		mode = ModeRepeat
	}
	return Line{
		Text:        rb.Text,
		Conditional: rb.Block.Conditional,
		Mode:        mode,
		Auto:        rb.Block.Auto,
		Kind:        KindOf(rb.Block.Command),
	}
}

// KindOf names the command variant behind a line.
func KindOf(cmd ir.Command) string {
	switch c := cmd.(type) {
	case ir.RawCmd:
		return "raw"
	case ir.ExecuteCmd:
		return "execute"
	case ir.ScoreCmd:
		return c.Op().String()
	case ir.TestCmd:
		return "test"
	case ir.TagCmd:
		return "tag"
	case ir.OperationCmd:
		return "op"
	}
	return ""
}

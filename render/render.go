// Package render prints generated bundles for people: plain command text or
// a table with each line's block metadata.
package render

import (
	"fmt"
	"io"
	"strings"
	"time"

	"github.com/jedib0t/go-pretty/v6/table"

	"github.com/chazu/cbgen/store"
	"github.com/chazu/cbgen/wire"
)

const branchIndent = "  "

// Text writes one command per line. Each listing starts with a "# name"
// header and branch lines are indented under their mainline line.
func Text(w io.Writer, b *wire.Bundle) error {
	var sb strings.Builder
	for i, l := range b.Listings {
		if i > 0 {
			sb.WriteByte('\n')
		}
		sb.WriteString("# " + heading(l) + "\n")
		for _, e := range l.Entries {
			sb.WriteString(e.Main.Text + "\n")
			for _, br := range e.Branches {
				sb.WriteString(branchIndent + br.Text + "\n")
			}
		}
	}
	_, err := io.WriteString(w, sb.String())
	return err
}

// Table writes one go-pretty table per listing.
func Table(w io.Writer, b *wire.Bundle) error {
	for i, l := range b.Listings {
		t := table.NewWriter()
		t.SetTitle(heading(l))
		t.AppendHeader(table.Row{"#", "Kind", "Mode", "Cond", "Auto", "Text"})
		for n, e := range l.Entries {
			pos := fmt.Sprintf("%d", n+1)
			t.AppendRow(row(pos, e.Main))
			for k, br := range e.Branches {
				t.AppendRow(row(fmt.Sprintf("%s.%d", pos, k+1), br))
			}
		}
		if i > 0 {
			if _, err := io.WriteString(w, "\n"); err != nil {
				return err
			}
		}
		if _, err := io.WriteString(w, t.Render()+"\n"); err != nil {
			return err
		}
	}
	return nil
}

// Artifacts writes the store index as a table.
func Artifacts(w io.Writer, arts []store.Artifact) error {
	t := table.NewWriter()
	t.AppendHeader(table.Row{"ID", "Program", "Lines", "Hash", "Created"})
	for _, a := range arts {
		t.AppendRow(table.Row{a.ID, a.Program, a.Lines, shortHash(a.Hash), a.Created.Format(time.RFC3339)})
	}
	_, err := io.WriteString(w, t.Render()+"\n")
	return err
}

func row(pos string, l wire.Line) table.Row {
	return table.Row{pos, l.Kind, l.Mode.String(), flag(l.Conditional), flag(l.Auto), l.Text}
}

func heading(l wire.Listing) string {
	if l.Label != nil {
		return fmt.Sprintf("%s (label %d)", l.Sequence, *l.Label)
	}
	return l.Sequence
}

func flag(b bool) string {
	if b {
		return "yes"
	}
	return "no"
}

func shortHash(h string) string {
	if len(h) > 12 {
		return h[:12]
	}
	return h
}

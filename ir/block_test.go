package ir

import (
	"errors"
	"testing"

	"github.com/google/go-cmp/cmp"
)

func texts(blocks []ResolvedBlock) []string {
	out := make([]string, len(blocks))
	for i, b := range blocks {
		out[i] = b.Text
	}
	return out
}

func TestNewBlockDefaults(t *testing.T) {
	b := NewBlock(Cmd("say"))
	if !b.Conditional || b.Mode != Chain || !b.Auto {
		t.Errorf("defaults = %+v, want conditional chain auto", b)
	}
}

func TestBlockNilCommand(t *testing.T) {
	if _, err := (Block{}).Resolve(newFakeContext()); !errors.Is(err, ErrNilCommand) {
		t.Errorf("err = %v, want ErrNilCommand", err)
	}
}

func TestParseMode(t *testing.T) {
	for in, want := range map[string]Mode{"CHAIN": Chain, "chain": Chain, "Repeat": Repeat} {
		got, err := ParseMode(in)
		if err != nil || got != want {
			t.Errorf("ParseMode(%q) = %v, %v; want %v", in, got, err, want)
		}
	}
	if _, err := ParseMode("impulse"); err == nil {
		t.Error("ParseMode(impulse) succeeded")
	}
	if Repeat.String() != "REPEAT" || Chain.String() != "CHAIN" {
		t.Errorf("mode names = %s, %s", Chain, Repeat)
	}
}

func TestSequenceResolve(t *testing.T) {
	ctx := newFakeContext()
	var seq Sequence
	seq.AddBlock(NewBlock(Cmd("say one")))
	seq.AddBranch(NewBlock(Must(InRange(Var("x"), 0, Int(3)))), []Block{
		NewBlock(Cmd("say low")),
		{Command: Cmd("say high"), Mode: Repeat},
	})
	seq.AddBranch(NewBlock(Cmd("say three")), nil)

	got, err := seq.Resolve(ctx)
	if err != nil {
		t.Fatal(err)
	}
	if len(got) != seq.Len() || len(got) != 3 {
		t.Fatalf("entries = %d, want 3", len(got))
	}

	wantMain := []string{"say one", "scoreboard players test @e[tag=E] obj_x 0 3", "say three"}
	wantBranches := [][]string{{}, {"say low", "say high"}, {}}
	for i, e := range got {
		if e.Main.Text != wantMain[i] {
			t.Errorf("entry %d main = %q, want %q", i, e.Main.Text, wantMain[i])
		}
		// Branch results are a plain slice: walk them twice.
		for pass := 0; pass < 2; pass++ {
			if diff := cmp.Diff(wantBranches[i], texts(e.Branches)); diff != "" {
				t.Errorf("entry %d pass %d branches (-want +got):\n%s", i, pass, diff)
			}
		}
	}
	if got[1].Branches[1].Block.Mode != Repeat {
		t.Error("branch block metadata not carried through")
	}
}

func TestSequenceCopiesBranches(t *testing.T) {
	branches := []Block{NewBlock(Cmd("a"))}
	var seq Sequence
	seq.AddBranch(NewBlock(Cmd("main")), branches)
	branches[0] = NewBlock(Cmd("b"))

	got, err := seq.Resolve(newFakeContext())
	if err != nil {
		t.Fatal(err)
	}
	if got[0].Branches[0].Text != "a" {
		t.Errorf("branch = %q, want a", got[0].Branches[0].Text)
	}
}

func TestSequenceErrorStopsResolution(t *testing.T) {
	var seq Sequence
	seq.AddBlock(NewBlock(Cmd("ok")))
	seq.AddBranch(NewBlock(Cmd("ok")), []Block{NewBlock(Must(SetConst(Var("missing"), 1)))})

	if _, err := seq.Resolve(newFakeContext()); !errors.Is(err, errLookup) {
		t.Errorf("err = %v, want lookup error", err)
	}
}

func TestLabelledSequence(t *testing.T) {
	ctx := newFakeContext()
	ctx.vars[DefaultPointer] = DefaultPointer

	seq, err := NewLabelledSequence(5)
	if err != nil {
		t.Fatal(err)
	}
	if seq.Label() != 5 || seq.Pointer() != DefaultPointer {
		t.Errorf("label/pointer = %d/%s", seq.Label(), seq.Pointer())
	}

	got, err := seq.Resolve(ctx)
	if err != nil {
		t.Fatal(err)
	}
	if len(got) != 1 {
		t.Fatalf("entries = %d, want 1", len(got))
	}
	guard := got[0].Main
	if guard.Block.Conditional || guard.Block.Mode != Repeat || !guard.Block.Auto {
		t.Errorf("guard metadata = %+v, want unconditional repeat auto", guard.Block)
	}
	want := "execute @e[tag=E,score_func_pointer_min=5,score_func_pointer=5] ~ ~ ~ " +
		"scoreboard players set @e[tag=E] func_pointer -1"
	if guard.Text != want {
		t.Errorf("guard = %q, want %q", guard.Text, want)
	}
	if len(got[0].Branches) != 0 {
		t.Errorf("guard has %d branches", len(got[0].Branches))
	}
}

func TestLabelledSequenceAppends(t *testing.T) {
	seq, err := NewLabelledSequence(0, WithPointer("ip"))
	if err != nil {
		t.Fatal(err)
	}
	seq.AddBlock(NewBlock(Cmd("say after")))

	got, err := seq.Resolve(newFakeContext())
	if err != nil {
		t.Fatal(err)
	}
	if diff := cmp.Diff([]string{
		"execute @e[tag=E,score_obj_ip_min=0,score_obj_ip=0] ~ ~ ~ scoreboard players set @e[tag=E] obj_ip -1",
		"say after",
	}, []string{got[0].Main.Text, got[1].Main.Text}); diff != "" {
		t.Errorf("texts (-want +got):\n%s", diff)
	}
}

func TestLabelledSequenceRejectsClearedValue(t *testing.T) {
	if _, err := NewLabelledSequence(ClearedPointer); !errors.Is(err, ErrReservedLabel) {
		t.Errorf("err = %v, want ErrReservedLabel", err)
	}
}

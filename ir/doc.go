// Package ir is the intermediate representation of the command generator.
//
// Values (Ref), selector predicates (Selector) and commands (Command) are
// immutable once built. Each of them resolves against a Context to the exact
// text the target runtime expects; the Context is passed to every Resolve call
// and never retained. Commands are grouped into Blocks carrying scheduling
// metadata, and Blocks into Sequences of mainline/branch pairs.
//
// A typical guard, the one LabelledSequence builds for jump targets:
//
//	ptr := ir.Var("func_pointer")
//	guard := ir.Must(ir.Execute(
//		ir.Must(ir.SelEquals(ptr, 5)),
//		ir.Must(ir.SetConst(ptr, -1)),
//	))
//	text, err := guard.Resolve(ctx)
//	// execute @e[tag=E,score_fp_min=5,score_fp=5] ~ ~ ~ scoreboard players set @e[tag=E] fp -1
package ir

package backend_test

import (
	"bytes"
	"errors"
	"testing"

	"github.com/vegaluisjose/backend-playground/backend"
	"github.com/vegaluisjose/backend-playground/ir"
	"github.com/vegaluisjose/backend-playground/isel"
	"github.com/vegaluisjose/backend-playground/regalloc"
	"github.com/vegaluisjose/backend-playground/x86real"
)

func addChain() ir.Node {
	return ir.NewOp("add", ir.NewOp("sub", ir.NewConst(0), ir.NewConst(6)), ir.NewConst(2))
}

func TestGet(t *testing.T) {
	x86, err := backend.Get(x86real.TargetName)
	if err != nil {
		t.Fatalf("Get(%q) failed: %v.", x86real.TargetName, err)
	}
	if x86.Name() != x86real.TargetName {
		t.Errorf("Name() = %q, wanted %q.", x86.Name(), x86real.TargetName)
	}

	if _, err := backend.Get("pdp11"); err == nil {
		t.Error("Get() of an unregistered target succeeded.")
	}
}

func TestCompile(t *testing.T) {
	x86, err := backend.Get(x86real.TargetName)
	if err != nil {
		t.Fatalf("Get() failed: %v.", err)
	}

	// The doubled subtree is materialised twice; no CSE.
	tree := ir.NewOp("sub", addChain(), addChain())
	res, err := backend.Compile(tree, x86)
	if err != nil {
		t.Fatalf("Compile() failed: %v.", err)
	}

	if res.Block.Len() != 12 {
		t.Errorf("Got %d cells, wanted 12.", res.Block.Len())
	}
	if res.Block.NumVRegs() != 7 {
		t.Errorf("Got %d vregs, wanted 7.", res.Block.NumVRegs())
	}
	if _, ok := res.Colors[res.Dst.UID()]; !ok {
		t.Errorf("Result %v has no register.", res.Dst)
	}

	// Every vreg colored, no interfering pair sharing a register.
	g := regalloc.BuildGraph(res.Block)
	for _, u := range g.UIDs() {
		if _, ok := res.Colors[u]; !ok {
			t.Errorf("vreg%d left uncolored.", u)
		}
		for _, v := range g.UIDs() {
			if g.Interferes(u, v) && res.Colors[u] == res.Colors[v] {
				t.Errorf("Interfering vreg%d and vreg%d share %q.", u, v, res.Colors[u])
			}
		}
	}

	var buf bytes.Buffer
	if err := res.Render(x86, &buf); err != nil {
		t.Fatalf("Render() failed: %v.", err)
	}
	if buf.Len() == 0 {
		t.Error("Render() produced nothing.")
	}
}

func TestCompileNoCoveringTile(t *testing.T) {
	x86, err := backend.Get(x86real.TargetName)
	if err != nil {
		t.Fatalf("Get() failed: %v.", err)
	}

	_, cerr := backend.Compile(ir.NewOp("mul", ir.NewConst(1), ir.NewConst(2)), x86)

	var nct *isel.NoCoveringTileError
	if !errors.As(cerr, &nct) {
		t.Fatalf("Got %v, wanted a NoCoveringTileError.", cerr)
	}
	if nct.Node != "mul(1, 2)" {
		t.Errorf("Offending node %q, wanted %q.", nct.Node, "mul(1, 2)")
	}
}

func TestCompileSpillRequired(t *testing.T) {
	x86, err := backend.Get(x86real.TargetName)
	if err != nil {
		t.Fatalf("Get() failed: %v.", err)
	}

	// Each add(Any, Any) keeps its left result live while the right
	// subtree is emitted; nesting five units deep exceeds the four
	// registers.
	unit := func(k int) ir.Node {
		return ir.NewOp("sub", ir.NewConst(0), ir.NewConst(k))
	}
	tree := unit(5)
	for k := 4; k >= 1; k-- {
		tree = ir.NewOp("add", unit(k), tree)
	}

	_, cerr := backend.Compile(tree, x86)
	var spill *regalloc.SpillRequiredError
	if !errors.As(cerr, &spill) {
		t.Fatalf("Got %v, wanted a SpillRequiredError.", cerr)
	}
	if len(spill.Remaining) == 0 {
		t.Error("SpillRequiredError carries no residual vregs.")
	}
}

func TestCompileIndependentBlocks(t *testing.T) {
	x86, err := backend.Get(x86real.TargetName)
	if err != nil {
		t.Fatalf("Get() failed: %v.", err)
	}

	// Two compilations must mint identical uids for identical trees.
	first, err := backend.Compile(addChain(), x86)
	if err != nil {
		t.Fatalf("Compile() failed: %v.", err)
	}
	second, err := backend.Compile(addChain(), x86)
	if err != nil {
		t.Fatalf("Compile() failed: %v.", err)
	}
	if first.Dst.UID() != second.Dst.UID() {
		t.Errorf("Result uids diverged: %d vs %d.", first.Dst.UID(), second.Dst.UID())
	}
}

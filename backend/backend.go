// Package backend ties the pipeline together: a registry of targets
// and the select -> emit -> allocate compile path over one expression
// tree. Phases run to completion in order; each compilation owns its
// block and graph, so callers may compile independent trees in
// parallel.
package backend

import (
	"fmt"
	"io"

	"github.com/golang/glog"
	"github.com/pkg/errors"

	"github.com/vegaluisjose/backend-playground/block"
	"github.com/vegaluisjose/backend-playground/ir"
	"github.com/vegaluisjose/backend-playground/isel"
	"github.com/vegaluisjose/backend-playground/regalloc"
)

// Target is a machine the back end can compile for.
type Target interface {
	Name() string
	// Registers is the physical register file, in allocation order.
	Registers() []string
	// Tiles is the instruction-selection table, in priority order.
	Tiles() []isel.Tile
	// Render prints the block as assembly using the coloring.
	Render(w io.Writer, blk *block.Block, colors regalloc.Colors) error
}

// A global registry of targets, keyed by name.
var allTargets map[string]Target = map[string]Target{}

// RegisterTarget adds a target to the registry; targets call it from
// their init().
func RegisterTarget(t Target) {
	if ot, ok := allTargets[t.Name()]; ok {
		panic(fmt.Sprintf("can't re-register target %q (%T)", t.Name(), ot))
	}
	allTargets[t.Name()] = t
}

// Get returns the target with the given name or an error if we don't
// have one registered.
func Get(name string) (Target, error) {
	t, ok := allTargets[name]
	if !ok {
		return nil, errors.Errorf("unknown target %q", name)
	}
	return t, nil
}

// Result is one compiled block with its register assignment. Dst is
// the vreg holding the tree's value.
type Result struct {
	Block  *block.Block
	Dst    *block.VReg
	Colors regalloc.Colors
}

// Compile covers tree with t's tiles, emits the block and colors every
// vreg. On failure the typed cause (isel.NoCoveringTileError or
// regalloc.SpillRequiredError) stays reachable through errors.As.
func Compile(tree ir.Node, t Target) (*Result, error) {
	blk := block.New()

	dst, err := isel.Select(tree, t.Tiles(), blk)
	if err != nil {
		return nil, errors.Wrapf(err, "selecting %v for %s", tree, t.Name())
	}
	glog.V(1).Infof("%s: %v selected into %d cells, %d vregs", t.Name(), tree, blk.Len(), blk.NumVRegs())

	colors, err := regalloc.Alloc(blk, t.Registers())
	if err != nil {
		return nil, errors.Wrapf(err, "allocating %d vregs over %d registers", blk.NumVRegs(), len(t.Registers()))
	}

	return &Result{Block: blk, Dst: dst, Colors: colors}, nil
}

// Render prints the result as assembly for the target that produced it.
func (r *Result) Render(t Target, w io.Writer) error {
	return t.Render(w, r.Block, r.Colors)
}

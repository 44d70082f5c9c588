package isel

import (
	"fmt"

	"github.com/golang/glog"

	"github.com/vegaluisjose/backend-playground/block"
	"github.com/vegaluisjose/backend-playground/ir"
)

// A Tile pairs a pattern with its base cost and the procedure emitting
// machine code for a matched node. Targets provide the table; the
// selector never mutates it.
type Tile struct {
	Pat  Pattern
	Base int
	Emit EmitFunc
}

// EmitFunc appends cells for the matched node to e's block and returns
// the virtual register holding the result. It calls e.Gen for any
// operand subtree its pattern left uncovered; operands the pattern
// consumed (an Int operand, say) are read straight from the IR.
type EmitFunc func(e *Emitter, n ir.Node) *block.VReg

type choice struct {
	cost int
	tile *Tile
}

// Selector annotates each IR node with its minimum-cost tile. The
// annotation lives in a side table keyed by node identity, so the IR
// itself stays immutable.
type Selector struct {
	tiles  []Tile
	chosen map[ir.Node]choice
}

func NewSelector(tiles []Tile) *Selector {
	return &Selector{tiles: tiles, chosen: make(map[ir.Node]choice)}
}

// TileCost implements Coster over the side table.
func (s *Selector) TileCost(n ir.Node) int {
	if ch, ok := s.chosen[n]; ok {
		return ch.cost
	}
	return Inf
}

// Choose runs the bottom-up dynamic program: postorder visits operands
// before their parents, so every operand already carries its optimal
// tile when a parent is priced. Ties keep the earlier tile in the
// table (strict < test).
func (s *Selector) Choose(root ir.Node) error {
	for _, n := range root.Postorder(nil) {
		best := Inf
		for i := range s.tiles {
			t := &s.tiles[i]
			if !t.Pat.Match(n) {
				continue
			}
			if cost := t.Pat.Estimate(s, n, t.Base); cost < best {
				best = cost
				s.chosen[n] = choice{cost: cost, tile: t}
			}
		}
		if _, ok := s.chosen[n]; !ok {
			return &NoCoveringTileError{Node: n.String()}
		}
		glog.V(2).Infof("tiled %v at cost %d", n, best)
	}
	return nil
}

// Emitter walks the chosen tiles top-down, appending cells to Block.
// It carries the selector so emit procedures can recurse through it
// without any global state.
type Emitter struct {
	sel   *Selector
	Block *block.Block
}

// Gen emits the code for n's chosen tile and returns the result vreg.
func (e *Emitter) Gen(n ir.Node) *block.VReg {
	return e.sel.chosen[n].tile.Emit(e, n)
}

// Select covers root with tiles and emits it into blk, returning the
// virtual register holding the tree's value.
func Select(root ir.Node, tiles []Tile, blk *block.Block) (*block.VReg, error) {
	sel := NewSelector(tiles)
	if err := sel.Choose(root); err != nil {
		return nil, err
	}
	e := &Emitter{sel: sel, Block: blk}
	return e.Gen(root), nil
}

// NoCoveringTileError reports an IR node that no tile in the table
// matched at finite cost. Selection aborts without emitting anything.
type NoCoveringTileError struct {
	Node string // description of the offending node
}

func (e *NoCoveringTileError) Error() string {
	return fmt.Sprintf("no covering tile for %s", e.Node)
}

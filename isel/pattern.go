// Package isel implements instruction selection by dynamic-programming
// tree tiling and the emitter that drives the chosen tiles. A target
// supplies a table of tiles; the selector covers the IR tree with the
// minimum-cost set of them, then the emitter appends cells for each.
package isel

import (
	"math"

	"github.com/vegaluisjose/backend-playground/ir"
)

// Inf is the cost of a node no tile has covered yet. It is kept well
// below the integer ceiling so summing child costs cannot overflow.
const Inf = math.MaxInt32

// A Coster reports the cost of a node's currently chosen tile, or Inf
// if it has none. The selector implements it; patterns use it to price
// the operand subtrees they leave uncovered.
type Coster interface {
	TileCost(n ir.Node) int
}

// A Pattern matches a shape of IR nodes. Patterns are built from the
// primitives below; matching is purely structural and recursive.
type Pattern interface {
	Match(n ir.Node) bool
	// Estimate prices covering n with this pattern: the tile's base
	// cost plus the chosen-tile costs of the operands the pattern
	// leaves to be covered separately.
	Estimate(c Coster, n ir.Node, base int) int

	// tileEstimate prices n when this pattern appears as an operand of
	// an enclosing Op pattern.
	tileEstimate(c Coster, n ir.Node) int
}

type funcPattern struct {
	pred func(ir.Node) bool
	// literal marks an operand the emit procedure reads straight from
	// the IR; it adds nothing to the enclosing pattern's cost.
	literal bool
}

func (p *funcPattern) Match(n ir.Node) bool {
	return p.pred(n)
}

func (p *funcPattern) Estimate(c Coster, n ir.Node, base int) int {
	return base
}

func (p *funcPattern) tileEstimate(c Coster, n ir.Node) int {
	if p.literal {
		return 0
	}
	return c.TileCost(n)
}

// Any matches every node.
var Any Pattern = &funcPattern{pred: func(ir.Node) bool { return true }}

// Int matches any integer constant. As an operand of an Op pattern it
// is consumed: the value is read from the IR, so it costs nothing.
var Int Pattern = &funcPattern{literal: true, pred: func(n ir.Node) bool {
	_, ok := n.(*ir.Const)
	return ok
}}

type constPattern struct {
	value int
}

// Const matches a constant with exactly the given value.
func Const(v int) Pattern {
	return &constPattern{value: v}
}

func (p *constPattern) Match(n ir.Node) bool {
	c, ok := n.(*ir.Const)
	return ok && c.Value == p.value
}

func (p *constPattern) Estimate(c Coster, n ir.Node, base int) int {
	return base
}

func (p *constPattern) tileEstimate(c Coster, n ir.Node) int {
	return c.TileCost(n)
}

type opPattern struct {
	name     string
	operands []Pattern
}

// Op matches an operation with the given name, the same arity as the
// operand patterns, and every operand matching positionally.
func Op(name string, operands ...Pattern) Pattern {
	return &opPattern{name: name, operands: operands}
}

func (p *opPattern) Match(n ir.Node) bool {
	op, ok := n.(*ir.Op)
	if !ok || op.Name != p.name || op.Len() != len(p.operands) {
		return false
	}
	for i, sub := range p.operands {
		if !sub.Match(op.Operand(i)) {
			return false
		}
	}
	return true
}

func (p *opPattern) Estimate(c Coster, n ir.Node, base int) int {
	op := n.(*ir.Op)
	cost := base
	for i, sub := range p.operands {
		est := sub.tileEstimate(c, op.Operand(i))
		if est >= Inf {
			return Inf
		}
		cost += est
	}
	return cost
}

// An Op pattern used as an operand prices the subtree structurally,
// not through the covered node's own chosen tile.
func (p *opPattern) tileEstimate(c Coster, n ir.Node) int {
	return p.Estimate(c, n, 0)
}

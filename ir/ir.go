// Package ir defines the expression-tree intermediate representation
// the back end consumes: integer constants and named operations with
// ordered operands. The tree is finite, has no sharing and no cycles.
package ir

import (
	"strconv"
	"strings"
)

// A Node is one vertex of the expression tree.
type Node interface {
	// Postorder appends the subtree's nodes to prefix, operands before
	// their parents, and returns the extended slice.
	Postorder(prefix []Node) []Node
	String() string
}

// Const is an integer leaf. Class optionally hints a register class.
type Const struct {
	Value int
	Class string
}

func NewConst(v int) *Const {
	return &Const{Value: v}
}

func (c *Const) Postorder(prefix []Node) []Node {
	return append(prefix, c)
}

func (c *Const) String() string {
	return strconv.Itoa(c.Value)
}

// Op is an interior node: an opcode name applied to ordered operands.
// Operand order is significant.
type Op struct {
	Name     string
	Operands []Node
	Class    string
}

func NewOp(name string, operands ...Node) *Op {
	return &Op{Name: name, Operands: operands}
}

// Len returns the number of operands.
func (o *Op) Len() int {
	return len(o.Operands)
}

// Operand returns the i-th operand.
func (o *Op) Operand(i int) Node {
	return o.Operands[i]
}

func (o *Op) Postorder(prefix []Node) []Node {
	for _, operand := range o.Operands {
		prefix = operand.Postorder(prefix)
	}
	return append(prefix, o)
}

func (o *Op) String() string {
	args := make([]string, len(o.Operands))
	for i, operand := range o.Operands {
		args[i] = operand.String()
	}
	return o.Name + "(" + strings.Join(args, ", ") + ")"
}

// Package block models the linear instruction sequence produced by
// instruction selection: virtual registers, Code and Motion cells with
// their def/use sets, and the block that collects them in emission
// order. The register allocator consumes the block verbatim; cell
// order is the execution order.
package block

import (
	"fmt"
	"sort"
	"strings"
)

// VReg is a virtual register awaiting a physical register. Identity is
// the uid, which is unique within the block that created it.
type VReg struct {
	uid   int
	Class string // optional register-class hint
}

// UID returns the block-unique identifier.
func (v *VReg) UID() int {
	return v.uid
}

func (v *VReg) String() string {
	return fmt.Sprintf("vreg%d", v.uid)
}

// RegSet is a set of virtual registers.
type RegSet map[*VReg]bool

// Regs builds a set from the given registers.
func Regs(vregs ...*VReg) RegSet {
	s := make(RegSet, len(vregs))
	for _, v := range vregs {
		s[v] = true
	}
	return s
}

// Contains reports whether v is in the set. Safe on a nil set.
func (s RegSet) Contains(v *VReg) bool {
	return s[v]
}

// Slice returns the members ordered by uid.
func (s RegSet) Slice() []*VReg {
	vregs := make([]*VReg, 0, len(s))
	for v := range s {
		vregs = append(vregs, v)
	}
	sort.Slice(vregs, func(i, j int) bool { return vregs[i].uid < vregs[j].uid })
	return vregs
}

func (s RegSet) String() string {
	names := []string{}
	for _, v := range s.Slice() {
		names = append(names, v.String())
	}
	return strings.Join(names, ", ")
}

// A Cell is one entry of the instruction block.
type Cell interface {
	Defs() RegSet
	Uses() RegSet
	String() string
}

// Code is a machine instruction held as a format template plus its
// operands. Args holds *VReg values and immediates; the template's
// verbs are %v, one per arg, so a renderer can substitute physical
// register names for the virtual ones.
type Code struct {
	Form string
	Args []any

	uses RegSet
	defs RegSet
}

// NewCode builds a Code cell. uses and defs may be nil.
func NewCode(form string, args []any, uses, defs RegSet) *Code {
	return &Code{Form: form, Args: args, uses: uses, defs: defs}
}

func (c *Code) Defs() RegSet {
	return c.defs
}

func (c *Code) Uses() RegSet {
	return c.uses
}

// String renders the instruction with its virtual registers, padded
// with the def/use annotation for listings.
func (c *Code) String() string {
	line := fmt.Sprintf(c.Form, c.Args...)
	if len(c.defs) > 0 {
		line = pad(line, 25) + fmt.Sprintf(" def[%s]", c.defs)
	}
	if len(c.uses) > 0 {
		line = pad(line, 40) + fmt.Sprintf(" use[%s]", c.uses)
	}
	return line
}

func pad(s string, width int) string {
	if len(s) >= width {
		return s
	}
	return s + strings.Repeat(" ", width-len(s))
}

// Motion is a virtual copy dst = src. It is kept distinct from Code so
// the allocator can record it as a coalescing hint and a renderer can
// elide it when both sides receive the same register.
type Motion struct {
	Dst *VReg
	Src *VReg
}

func NewMotion(dst, src *VReg) *Motion {
	return &Motion{Dst: dst, Src: src}
}

func (m *Motion) Defs() RegSet {
	return Regs(m.Dst)
}

func (m *Motion) Uses() RegSet {
	return Regs(m.Src)
}

func (m *Motion) String() string {
	return fmt.Sprintf("%v = %v", m.Dst, m.Src)
}

// Block is an ordered sequence of cells plus the vreg counter for the
// compilation it belongs to. Counters are per block, so independent
// compilations can run in parallel and produce reproducible uids.
type Block struct {
	cells   []Cell
	nextUID int
}

func New() *Block {
	return &Block{nextUID: 1}
}

// NewVReg mints a fresh virtual register, uids starting at 1.
func (b *Block) NewVReg(class string) *VReg {
	v := &VReg{uid: b.nextUID, Class: class}
	b.nextUID++
	return v
}

// Append adds a cell at the end of the block.
func (b *Block) Append(c Cell) {
	b.cells = append(b.cells, c)
}

// Cells returns the cells in emission order.
func (b *Block) Cells() []Cell {
	return b.cells
}

// Len returns the number of cells.
func (b *Block) Len() int {
	return len(b.cells)
}

// NumVRegs returns how many virtual registers the block has minted.
func (b *Block) NumVRegs() int {
	return b.nextUID - 1
}

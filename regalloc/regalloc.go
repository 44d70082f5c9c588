// Package regalloc assigns physical registers to virtual registers by
// Chaitin-Briggs graph coloring over one straight-line block: a
// reverse liveness walk builds the interference graph, simplify pushes
// low-degree vregs onto a stack, select pops and colors them. There is
// no spilling; a graph that cannot simplify surfaces as a typed error.
package regalloc

import (
	"fmt"
	"sort"

	"github.com/bits-and-blooms/bitset"
	"github.com/golang/glog"
	"github.com/pkg/errors"

	"github.com/vegaluisjose/backend-playground/block"
)

// Colors maps a VReg uid to the name of its physical register.
type Colors map[int]string

// SpillRequiredError reports that simplification stalled: every
// remaining vreg interferes with at least K others. The caller gets
// the residual uids so a future spilling pass can restart from them.
type SpillRequiredError struct {
	Remaining []int
}

func (e *SpillRequiredError) Error() string {
	return fmt.Sprintf("spill required: %d vregs left with no trivially colorable node", len(e.Remaining))
}

type gnode struct {
	vreg      *block.VReg
	interfere *bitset.BitSet
	coalesce  *bitset.BitSet
}

// Graph holds interference and coalesce adjacency per vreg, keyed by
// uid. Uids are dense and small, so the adjacency sets are bitsets.
type Graph struct {
	nodes  map[int]*gnode
	active []*bitset.BitSet // live set annotated at each cell
}

func (g *Graph) node(v *block.VReg) *gnode {
	if n, ok := g.nodes[v.UID()]; ok {
		return n
	}
	n := &gnode{
		vreg:      v,
		interfere: bitset.New(0),
		coalesce:  bitset.New(0),
	}
	g.nodes[v.UID()] = n
	return n
}

// UIDs returns the uids currently in the graph, ascending.
func (g *Graph) UIDs() []int {
	uids := make([]int, 0, len(g.nodes))
	for uid := range g.nodes {
		uids = append(uids, uid)
	}
	sort.Ints(uids)
	return uids
}

// Interferes reports whether u and v were live at the same point.
func (g *Graph) Interferes(u, v int) bool {
	n, ok := g.nodes[u]
	return ok && n.interfere.Test(uint(v))
}

// Coalesced reports whether u and v are related by a Motion.
func (g *Graph) Coalesced(u, v int) bool {
	n, ok := g.nodes[u]
	return ok && n.coalesce.Test(uint(v))
}

// LiveAt returns the uids live at cell i, ascending.
func (g *Graph) LiveAt(i int) []int {
	return uids(g.active[i])
}

// BuildGraph walks blk in reverse, annotating each cell's live set
// with the rule active := (active XOR defs) | uses, and records
// pairwise interference among the live vregs plus coalesce hints for
// Motions. The XOR deliberately resurrects a dead def at its own cell
// so it still claims a register there.
func BuildGraph(blk *block.Block) *Graph {
	g := &Graph{
		nodes:  make(map[int]*gnode),
		active: make([]*bitset.BitSet, blk.Len()),
	}

	byUID := make(map[int]*block.VReg)
	note := func(s block.RegSet) *bitset.BitSet {
		b := bitset.New(0)
		for _, v := range s.Slice() {
			b.Set(uint(v.UID()))
			byUID[v.UID()] = v
		}
		return b
	}

	cells := blk.Cells()
	active := bitset.New(0)
	for i := len(cells) - 1; i >= 0; i-- {
		cell := cells[i]
		active = active.SymmetricDifference(note(cell.Defs())).Union(note(cell.Uses()))
		g.active[i] = active

		for _, uid := range uids(active) {
			n := g.node(byUID[uid])
			n.interfere.InPlaceUnion(active)
			n.interfere.Clear(uint(uid))
		}

		if m, ok := cell.(*block.Motion); ok {
			g.node(m.Src).coalesce.Set(uint(m.Dst.UID()))
			g.node(m.Dst).coalesce.Set(uint(m.Src.UID()))
		}
	}
	return g
}

type stacked struct {
	uid       int
	vreg      *block.VReg
	interfere *bitset.BitSet // neighbourhood at the moment of removal
	coalesce  *bitset.BitSet
}

// Color runs simplify and select over the graph, consuming it, and
// returns a register name for every vreg. Simplify always removes the
// lowest-uid trivially colorable node, so results are reproducible.
func (g *Graph) Color(registers []string) (Colors, error) {
	k := uint(len(registers))

	var stack []stacked
	for len(g.nodes) > 0 {
		uid := -1
		for _, cand := range g.UIDs() {
			if g.nodes[cand].interfere.Count() < k {
				uid = cand
				break
			}
		}
		if uid < 0 {
			return nil, &SpillRequiredError{Remaining: g.UIDs()}
		}

		n := g.nodes[uid]
		for _, w := range uids(n.interfere) {
			if other, ok := g.nodes[w]; ok {
				other.interfere.Clear(uint(uid))
			}
		}
		stack = append(stack, stacked{uid: uid, vreg: n.vreg, interfere: n.interfere, coalesce: n.coalesce})
		delete(g.nodes, uid)
	}

	colors := make(Colors, len(stack))
	for i := len(stack) - 1; i >= 0; i-- {
		e := stack[i]

		filled := make(map[string]bool)
		for _, w := range uids(e.interfere) {
			if name, ok := colors[w]; ok {
				filled[name] = true
			}
		}

		// Prefer a colored coalesce partner; motions between the two
		// then render as nothing.
		name := ""
		for _, w := range uids(e.coalesce) {
			if c, ok := colors[w]; ok && !filled[c] {
				name = c
				break
			}
		}
		if name == "" {
			for _, r := range registers {
				if !filled[r] {
					name = r
					break
				}
			}
		}
		if name == "" {
			// Simplify guaranteed degree < K here; an empty pool means
			// the graph was corrupted upstream.
			return nil, errors.Errorf("no register left for %v", e.vreg)
		}
		colors[e.uid] = name
		glog.V(2).Infof("colored %v with %s", e.vreg, name)
	}
	return colors, nil
}

// Alloc builds the interference graph for blk and colors it with the
// given register file.
func Alloc(blk *block.Block, registers []string) (Colors, error) {
	return BuildGraph(blk).Color(registers)
}

func uids(b *bitset.BitSet) []int {
	out := make([]int, 0, b.Count())
	for i, ok := b.NextSet(0); ok; i, ok = b.NextSet(i + 1) {
		out = append(out, int(i))
	}
	return out
}

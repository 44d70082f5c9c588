// Package x86real implements the 16-bit x86 real-mode target: its
// tile table, its register file and the assembly renderer.
package x86real

import (
	"fmt"
	"io"

	"github.com/pkg/errors"

	"github.com/vegaluisjose/backend-playground/backend"
	"github.com/vegaluisjose/backend-playground/block"
	"github.com/vegaluisjose/backend-playground/regalloc"
)

const TargetName = "x86real"

func init() {
	backend.RegisterTarget(&target{})
}

type target struct{}

func (t *target) Name() string {
	return TargetName
}

func (t *target) Registers() []string {
	return []string{"ax", "bx", "cx", "dx"}
}

// Render walks the block in order, substituting register names for
// vregs. Motions whose sides share a register are elided; the
// allocator does not merge vregs, but it gives a vreg its coalesce
// partner's register when that one is free, so this is common.
func (t *target) Render(w io.Writer, blk *block.Block, colors regalloc.Colors) error {
	fmt.Fprintln(w, "use16")
	fmt.Fprintln(w, "org 0x0")
	for _, cell := range blk.Cells() {
		switch c := cell.(type) {
		case *block.Code:
			args := make([]any, len(c.Args))
			for i, a := range c.Args {
				v, ok := a.(*block.VReg)
				if !ok {
					args[i] = a
					continue
				}
				name, ok := colors[v.UID()]
				if !ok {
					return errors.Errorf("no register assigned to %v", v)
				}
				args[i] = name
			}
			fmt.Fprintf(w, "    "+c.Form+"\n", args...)
		case *block.Motion:
			if colors[c.Dst.UID()] != colors[c.Src.UID()] {
				fmt.Fprintf(w, "    mov %s, %s\n", colors[c.Dst.UID()], colors[c.Src.UID()])
			}
		default:
			return errors.Errorf("unknown cell type %T", cell)
		}
	}
	return nil
}

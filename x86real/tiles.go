package x86real

import (
	"github.com/vegaluisjose/backend-playground/block"
	"github.com/vegaluisjose/backend-playground/ir"
	"github.com/vegaluisjose/backend-playground/isel"
)

// Tiles returns the selection table, cheapest idioms first so ties
// resolve toward them.
func (t *target) Tiles() []isel.Tile {
	return []isel.Tile{
		{Pat: isel.Const(0), Base: 10, Emit: emitZero},
		{Pat: isel.Int, Base: 10, Emit: emitImm},
		{Pat: isel.Op("add", isel.Any, isel.Int), Base: 15, Emit: binImm("add")},
		{Pat: isel.Op("add", isel.Any, isel.Any), Base: 20, Emit: binReg("add")},
		{Pat: isel.Op("sub", isel.Any, isel.Int), Base: 15, Emit: binImm("sub")},
		{Pat: isel.Op("sub", isel.Any, isel.Any), Base: 20, Emit: binReg("sub")},
	}
}

// xor-zero idiom for constant 0.
func emitZero(e *isel.Emitter, n ir.Node) *block.VReg {
	dst := e.Block.NewVReg(n.(*ir.Const).Class)
	e.Block.Append(block.NewCode("xor %v, %v", []any{dst, dst}, nil, block.Regs(dst)))
	return dst
}

// load immediate.
func emitImm(e *isel.Emitter, n ir.Node) *block.VReg {
	c := n.(*ir.Const)
	dst := e.Block.NewVReg(c.Class)
	e.Block.Append(block.NewCode("mov %v, %v", []any{dst, c.Value}, nil, block.Regs(dst)))
	return dst
}

// binImm covers op(Any, Int): move the left operand's result into a
// fresh vreg, then fold the constant in as an immediate. The Int
// operand is consumed by the pattern, so it is read from the IR
// rather than emitted.
func binImm(mnemonic string) isel.EmitFunc {
	return func(e *isel.Emitter, n ir.Node) *block.VReg {
		op := n.(*ir.Op)
		src1 := e.Gen(op.Operand(0))
		src2 := op.Operand(1).(*ir.Const).Value
		dst := e.Block.NewVReg(op.Class)
		e.Block.Append(block.NewMotion(dst, src1))
		e.Block.Append(block.NewCode(mnemonic+" %v, %v", []any{dst, src2}, block.Regs(dst), block.Regs(dst)))
		return dst
	}
}

// binReg covers op(Any, Any): both operands are emitted recursively.
func binReg(mnemonic string) isel.EmitFunc {
	return func(e *isel.Emitter, n ir.Node) *block.VReg {
		op := n.(*ir.Op)
		src1 := e.Gen(op.Operand(0))
		src2 := e.Gen(op.Operand(1))
		dst := e.Block.NewVReg(op.Class)
		e.Block.Append(block.NewMotion(dst, src1))
		e.Block.Append(block.NewCode(mnemonic+" %v, %v", []any{dst, src2}, block.Regs(dst, src2), block.Regs(dst)))
		return dst
	}
}

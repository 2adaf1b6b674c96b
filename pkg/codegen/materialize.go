package codegen

import (
	"fmt"

	"github.com/obriematt/CS322/pkg/ir"
	"github.com/obriematt/CS322/pkg/x86"
)

// materialize loads src into reg. Named operands are sign-extended from
// their slot; string literals yield the address of their pool entry.
// reg is only valid until the next instruction is translated.
func (c *funcContext) materialize(src ir.Src, reg x86.MReg) error {
	switch s := src.(type) {
	case ir.Id, ir.Temp:
		slot, err := c.frame.Slot(s.String())
		if err != nil {
			return err
		}
		c.emit(x86.MOVSLQ{Src: slot, Dst: x86.Q(reg)})
	case ir.IntLit:
		c.emit(x86.MOVQ{Src: x86.Imm{Val: int64(s.Val)}, Dst: x86.Q(reg)})
	case ir.BoolLit:
		c.emit(x86.MOVQ{Src: x86.Imm{Val: boolValue(s.Val)}, Dst: x86.Q(reg)})
	case ir.StrLit:
		lab := c.prog.pool.Add(s.Val)
		c.emit(x86.LEAQ{Src: x86.AddrName{Sym: lab}, Dst: x86.Q(reg)})
	default:
		return fmt.Errorf("%w: operand %T", ErrUnsupported, src)
	}
	return nil
}

// address loads the base of a into reg and returns the memory operand
func (c *funcContext) address(a ir.Addr, reg x86.MReg) (x86.Mem, error) {
	if err := c.materialize(a.Base, reg); err != nil {
		return x86.Mem{}, err
	}
	return x86.Mem{Base: reg, Disp: int64(a.Offset)}, nil
}

// boolValue is the only boolean encoding: 1 for true, 0 for false
func boolValue(b bool) int64 {
	if b {
		return 1
	}
	return 0
}

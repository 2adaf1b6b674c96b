package codegen

import (
	"fmt"

	"github.com/obriematt/CS322/pkg/ir"
	"github.com/obriematt/CS322/pkg/x86"
)

// SysV integer argument registers, in order
var ArgRegs = []x86.MReg{x86.RDI, x86.RSI, x86.RDX, x86.RCX, x86.R8, x86.R9}

// RetReg carries return values
const RetReg = x86.RAX

// checkArgCount fails with sentinel when n values cannot all be passed in
// registers
func checkArgCount(n int, sentinel error) error {
	if n > len(ArgRegs) {
		return fmt.Errorf("%w: %d (at most %d)", sentinel, n, len(ArgRegs))
	}
	return nil
}

// storeParams copies the incoming argument registers into the parameter
// slots, truncated to 32 bits
func (c *funcContext) storeParams(fn *ir.Func) error {
	for i, name := range fn.Params {
		slot, err := c.frame.Slot(name)
		if err != nil {
			return err
		}
		c.emit(x86.MOVL{Src: x86.L(ArgRegs[i]), Dst: slot})
	}
	return nil
}

// selectCall binds the arguments, emits the call and saves the result
func (c *funcContext) selectCall(i ir.Call) error {
	if err := checkArgCount(len(i.Args), ErrTooManyArgs); err != nil {
		return err
	}
	for n, arg := range i.Args {
		if err := c.materialize(arg, ArgRegs[n]); err != nil {
			return err
		}
	}
	c.emit(x86.CALL{Target: x86.Label(i.Name)})
	if i.Rdst != nil {
		slot := c.frame.Define(i.Rdst.String())
		c.emit(x86.MOVL{Src: x86.L(RetReg), Dst: slot})
	}
	return nil
}

// selectReturn leaves the value (if any) in the return register and pops
// the frame
func (c *funcContext) selectReturn(i ir.Return) error {
	if i.Val != nil {
		if err := c.materialize(i.Val, RetReg); err != nil {
			return err
		}
	}
	c.emit(
		x86.ADDQ{Src: x86.Imm{Val: c.frame.Size()}, Dst: x86.Q(x86.RSP)},
		x86.RET{},
	)
	return nil
}

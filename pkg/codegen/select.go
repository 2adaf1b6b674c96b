package codegen

import (
	"fmt"

	"github.com/obriematt/CS322/pkg/ir"
	"github.com/obriematt/CS322/pkg/x86"
)

// Scratch registers. Neither holds a value past the IR instruction being
// translated.
const (
	scratch1 = x86.R10
	scratch2 = x86.R11
)

// relConds gives the condition under which "a op b" holds after a compare
// of a against b
var relConds = map[ir.BinOp]x86.CondCode{
	ir.Eq: x86.CondE,
	ir.Ne: x86.CondNE,
	ir.Lt: x86.CondL,
	ir.Le: x86.CondLE,
	ir.Gt: x86.CondG,
	ir.Ge: x86.CondGE,
}

// selectInst translates one IR1 instruction
func (c *funcContext) selectInst(inst ir.Inst) error {
	switch i := inst.(type) {
	case ir.Binop:
		return c.selectBinop(i)
	case ir.Unop:
		return c.selectUnop(i)
	case ir.Move:
		return c.selectMove(i)
	case ir.Load:
		return c.selectLoad(i)
	case ir.Store:
		return c.selectStore(i)
	case ir.LabelDec:
		c.out.AppendLabel(c.label(i.Lab))
		return nil
	case ir.CJump:
		return c.selectCJump(i)
	case ir.Jump:
		c.emit(x86.JMP{Target: c.label(i.Lab)})
		return nil
	case ir.Call:
		return c.selectCall(i)
	case ir.Return:
		return c.selectReturn(i)
	default:
		return fmt.Errorf("%w: instruction %T", ErrUnsupported, inst)
	}
}

// label mangles a function-local label into the program-wide namespace
func (c *funcContext) label(l ir.Label) x86.Label {
	return x86.Label(c.name + "_" + string(l))
}

// storeResult truncates reg to 32 bits into dst's slot
func (c *funcContext) storeResult(reg x86.MReg, dst ir.Dest) {
	slot := c.frame.Define(dst.String())
	c.emit(x86.MOVL{Src: x86.L(reg), Dst: slot})
}

// operands loads src1 and src2 into the two scratch registers
func (c *funcContext) operands(src1, src2 ir.Src) error {
	if err := c.materialize(src1, scratch1); err != nil {
		return err
	}
	return c.materialize(src2, scratch2)
}

func (c *funcContext) selectBinop(i ir.Binop) error {
	switch {
	case i.Op == ir.Div:
		return c.selectDiv(i)
	case i.Op.IsArith(), i.Op.IsLogical():
		return c.selectArith(i)
	case i.Op.IsRelational():
		return c.selectRelational(i)
	}
	return fmt.Errorf("%w: binary operator %d", ErrUnsupported, int(i.Op))
}

// selectArith handles + - * and the bitwise forms of && and || on the 0/1
// boolean encoding
func (c *funcContext) selectArith(i ir.Binop) error {
	if err := c.operands(i.Src1, i.Src2); err != nil {
		return err
	}
	src, dst := x86.Q(scratch2), x86.Q(scratch1)
	switch i.Op {
	case ir.Add:
		c.emit(x86.ADDQ{Src: src, Dst: dst})
	case ir.Sub:
		c.emit(x86.SUBQ{Src: src, Dst: dst})
	case ir.Mul:
		c.emit(x86.IMULQ{Src: src, Dst: dst})
	case ir.And:
		c.emit(x86.ANDQ{Src: src, Dst: dst})
	case ir.Or:
		c.emit(x86.ORQ{Src: src, Dst: dst})
	default:
		return fmt.Errorf("%w: binary operator %s", ErrUnsupported, i.Op)
	}
	c.storeResult(scratch1, i.Dst)
	return nil
}

// selectDiv divides %rdx:%rax by the divisor. A zero divisor or overflow
// faults at run time; nothing is checked here.
func (c *funcContext) selectDiv(i ir.Binop) error {
	if err := c.materialize(i.Src1, x86.RAX); err != nil {
		return err
	}
	c.emit(x86.CQTO{})
	if err := c.materialize(i.Src2, scratch2); err != nil {
		return err
	}
	c.emit(x86.IDIVQ{Src: x86.Q(scratch2)})
	c.storeResult(x86.RAX, i.Dst)
	return nil
}

// selectRelational compares src1 with src2 and stores 0 or 1.
// AT&T cmpq takes its operands in reverse, so "cmpq src1,src2" sets the
// flags for src2 - src1 and the condition is swapped to match.
func (c *funcContext) selectRelational(i ir.Binop) error {
	cond, ok := relConds[i.Op]
	if !ok {
		return fmt.Errorf("%w: relational operator %s", ErrUnsupported, i.Op)
	}
	if err := c.operands(i.Src1, i.Src2); err != nil {
		return err
	}
	c.emit(
		x86.CMPQ{Src: x86.Q(scratch1), Dst: x86.Q(scratch2)},
		x86.SETcc{Cond: cond.Swap(), Dst: x86.B(scratch1)},
		x86.MOVZBL{Src: x86.B(scratch1), Dst: x86.L(scratch1)},
	)
	c.storeResult(scratch1, i.Dst)
	return nil
}

func (c *funcContext) selectUnop(i ir.Unop) error {
	if err := c.materialize(i.Src, scratch1); err != nil {
		return err
	}
	switch i.Op {
	case ir.Neg:
		c.emit(x86.NEGQ{Dst: x86.Q(scratch1)})
	case ir.Not:
		// flips the low bit only, keeping the 0/1 encoding
		c.emit(x86.XORQ{Src: x86.Imm{Val: 1}, Dst: x86.Q(scratch1)})
	default:
		return fmt.Errorf("%w: unary operator %d", ErrUnsupported, int(i.Op))
	}
	c.storeResult(scratch1, i.Dst)
	return nil
}

func (c *funcContext) selectMove(i ir.Move) error {
	if err := c.materialize(i.Src, scratch1); err != nil {
		return err
	}
	c.storeResult(scratch1, i.Dst)
	return nil
}

func (c *funcContext) selectLoad(i ir.Load) error {
	mem, err := c.address(i.Addr, scratch1)
	if err != nil {
		return err
	}
	c.emit(x86.MOVSLQ{Src: mem, Dst: x86.Q(scratch2)})
	c.storeResult(scratch2, i.Dst)
	return nil
}

func (c *funcContext) selectStore(i ir.Store) error {
	if err := c.materialize(i.Src, scratch1); err != nil {
		return err
	}
	mem, err := c.address(i.Addr, scratch2)
	if err != nil {
		return err
	}
	c.emit(x86.MOVL{Src: x86.L(scratch1), Dst: mem})
	return nil
}

// selectCJump branches when src1 equals src2. The IR generator reduces every
// condition to an equality test against a boolean, so only == is accepted.
func (c *funcContext) selectCJump(i ir.CJump) error {
	if i.Op != ir.Eq {
		return fmt.Errorf("%w: conditional jump on %s", ErrUnsupported, i.Op)
	}
	if err := c.operands(i.Src1, i.Src2); err != nil {
		return err
	}
	c.emit(
		x86.CMPQ{Src: x86.Q(scratch1), Dst: x86.Q(scratch2)},
		x86.Jcc{Cond: relConds[i.Op].Swap(), Target: c.label(i.Lab)},
	)
	return nil
}

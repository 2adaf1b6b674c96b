package x86

import (
	"fmt"
	"io"
)

// Printer outputs x86-64 assembly in GNU as AT&T syntax
type Printer struct {
	w io.Writer
}

// NewPrinter creates a new assembly printer
func NewPrinter(w io.Writer) *Printer {
	return &Printer{w: w}
}

// PrintProgram outputs the text section, the string literal pool and the
// trailing instruction count
func (p *Printer) PrintProgram(prog *Program) {
	fmt.Fprintf(p.w, "\t.text\n")
	for _, f := range prog.Functions {
		p.printFunction(f)
	}
	for i, s := range prog.Strings {
		fmt.Fprintf(p.w, "%s:\n", StringLabel(i))
		fmt.Fprintf(p.w, "\t.asciz %s\n", quoteAsm(s))
	}
	fmt.Fprintf(p.w, "\t# Total inst cnt: %d\n", prog.InstCount())
}

func (p *Printer) printFunction(f Function) {
	if f.Header != "" {
		fmt.Fprintf(p.w, "\t# %s\n", f.Header)
	}
	fmt.Fprintf(p.w, "\t.p2align 4,0x90\n")
	fmt.Fprintf(p.w, "\t.globl %s\n", f.Name)
	fmt.Fprintf(p.w, "%s:\n", f.Name)

	for _, inst := range f.Code {
		p.printInstruction(inst)
	}
}

func (p *Printer) op0(mnemonic string) {
	fmt.Fprintf(p.w, "\t%s\n", mnemonic)
}

func (p *Printer) op1(mnemonic string, a fmt.Stringer) {
	fmt.Fprintf(p.w, "\t%s %s\n", mnemonic, a)
}

func (p *Printer) op2(mnemonic string, src, dst fmt.Stringer) {
	fmt.Fprintf(p.w, "\t%s %s,%s\n", mnemonic, src, dst)
}

func (p *Printer) printInstruction(inst Instruction) {
	switch i := inst.(type) {
	// Listing entries
	case LabelDef:
		fmt.Fprintf(p.w, "%s:\n", i.Name)
	case Comment:
		fmt.Fprintf(p.w, "\t# %s\n", i.Text)

	// Arithmetic and logic
	case ADDQ:
		p.op2("addq", i.Src, i.Dst)
	case SUBQ:
		p.op2("subq", i.Src, i.Dst)
	case IMULQ:
		p.op2("imulq", i.Src, i.Dst)
	case ANDQ:
		p.op2("andq", i.Src, i.Dst)
	case ORQ:
		p.op2("orq", i.Src, i.Dst)
	case XORQ:
		p.op2("xorq", i.Src, i.Dst)
	case NEGQ:
		p.op1("negq", i.Dst)
	case NOTQ:
		p.op1("notq", i.Dst)
	case CQTO:
		p.op0("cqto")
	case IDIVQ:
		p.op1("idivq", i.Src)
	case CMPQ:
		p.op2("cmpq", i.Src, i.Dst)
	case SETcc:
		p.op1("set"+i.Cond.String(), i.Dst)

	// Data movement
	case MOVQ:
		p.op2("movq", i.Src, i.Dst)
	case MOVL:
		p.op2("movl", i.Src, i.Dst)
	case MOVSLQ:
		p.op2("movslq", i.Src, i.Dst)
	case MOVZBL:
		p.op2("movzbl", i.Src, i.Dst)
	case LEAQ:
		p.op2("leaq", i.Src, i.Dst)

	// Control flow
	case JMP:
		fmt.Fprintf(p.w, "\tjmp %s\n", i.Target)
	case Jcc:
		fmt.Fprintf(p.w, "\tj%s %s\n", i.Cond, i.Target)
	case CALL:
		fmt.Fprintf(p.w, "\tcall %s\n", i.Target)
	case RET:
		p.op0("ret")

	default:
		fmt.Fprintf(p.w, "\t# unknown instruction %T\n", inst)
	}
}

// quoteAsm renders s as a GNU as string constant
func quoteAsm(s string) string {
	buf := make([]byte, 0, len(s)+2)
	buf = append(buf, '"')
	for i := 0; i < len(s); i++ {
		c := s[i]
		switch {
		case c == '"' || c == '\\':
			buf = append(buf, '\\', c)
		case c == '\n':
			buf = append(buf, '\\', 'n')
		case c == '\t':
			buf = append(buf, '\\', 't')
		case c < 0x20 || c >= 0x7f:
			buf = append(buf, fmt.Sprintf("\\%03o", c)...)
		default:
			buf = append(buf, c)
		}
	}
	buf = append(buf, '"')
	return string(buf)
}

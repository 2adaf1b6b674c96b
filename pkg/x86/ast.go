// Package x86 defines the x86-64 assembly representation emitted by the
// backend and prints it in GNU as (AT&T) syntax.
package x86

import "fmt"

// MReg is a 64-bit general purpose machine register
type MReg int

const (
	RAX MReg = iota
	RBX
	RCX
	RDX
	RSI
	RDI
	RBP
	RSP
	R8
	R9
	R10
	R11
	R12
	R13
	R14
	R15
)

// Size selects which view of a register an operand uses
type Size int

const (
	SizeQ Size = iota // 64-bit
	SizeL             // 32-bit
	SizeB             // 8-bit
)

var regNames = map[Size][]string{
	SizeQ: {"rax", "rbx", "rcx", "rdx", "rsi", "rdi", "rbp", "rsp",
		"r8", "r9", "r10", "r11", "r12", "r13", "r14", "r15"},
	SizeL: {"eax", "ebx", "ecx", "edx", "esi", "edi", "ebp", "esp",
		"r8d", "r9d", "r10d", "r11d", "r12d", "r13d", "r14d", "r15d"},
	SizeB: {"al", "bl", "cl", "dl", "sil", "dil", "bpl", "spl",
		"r8b", "r9b", "r10b", "r11b", "r12b", "r13b", "r14b", "r15b"},
}

// Name returns the register's name at the given size, without the % prefix
func (r MReg) Name(sz Size) string {
	names := regNames[sz]
	if int(r) < 0 || int(r) >= len(names) {
		return "?"
	}
	return names[r]
}

// --- Operands ---

// Operand is the interface for instruction operands
type Operand interface {
	implOperand()
	String() string
}

// Reg is a register viewed at a particular size
type Reg struct {
	R    MReg
	Size Size
}

// Q returns the 64-bit view of r
func Q(r MReg) Reg { return Reg{R: r, Size: SizeQ} }

// L returns the 32-bit view of r
func L(r MReg) Reg { return Reg{R: r, Size: SizeL} }

// B returns the 8-bit view of r
func B(r MReg) Reg { return Reg{R: r, Size: SizeB} }

// Resize returns the same register at another size
func (r Reg) Resize(sz Size) Reg { return Reg{R: r.R, Size: sz} }

// Mem is a base-plus-displacement memory operand
type Mem struct {
	Base MReg
	Disp int64
}

// Imm is an immediate constant
type Imm struct {
	Val int64
}

// AddrName is the rip-relative address of a symbol
type AddrName struct {
	Sym Label
}

func (Reg) implOperand()      {}
func (Mem) implOperand()      {}
func (Imm) implOperand()      {}
func (AddrName) implOperand() {}

func (r Reg) String() string { return "%" + r.R.Name(r.Size) }

func (m Mem) String() string {
	if m.Disp == 0 {
		return fmt.Sprintf("(%%%s)", m.Base.Name(SizeQ))
	}
	return fmt.Sprintf("%d(%%%s)", m.Disp, m.Base.Name(SizeQ))
}

func (i Imm) String() string { return fmt.Sprintf("$%d", i.Val) }

func (a AddrName) String() string { return fmt.Sprintf("%s(%%rip)", a.Sym) }

// Label is an assembler symbol
type Label string

// CondCode is an x86 condition code suffix
type CondCode int

const (
	CondE  CondCode = iota // equal
	CondNE                 // not equal
	CondL                  // signed less
	CondLE                 // signed less or equal
	CondG                  // signed greater
	CondGE                 // signed greater or equal
)

func (c CondCode) String() string {
	names := []string{"e", "ne", "l", "le", "g", "ge"}
	if int(c) < len(names) {
		return names[c]
	}
	return "?"
}

// Swap returns the condition that holds after exchanging the two operands
// of the compare that set the flags (l <-> g, le <-> ge).
func (c CondCode) Swap() CondCode {
	switch c {
	case CondL:
		return CondG
	case CondLE:
		return CondGE
	case CondG:
		return CondL
	case CondGE:
		return CondLE
	}
	return c
}

// --- Instruction Interface ---

// Instruction is the interface for x86-64 instructions and listing entries
type Instruction interface {
	implInstruction()
}

// --- Arithmetic and logic (src, dst) ---

// ADDQ - dst += src
type ADDQ struct{ Src, Dst Operand }

// SUBQ - dst -= src
type SUBQ struct{ Src, Dst Operand }

// IMULQ - dst *= src (signed)
type IMULQ struct{ Src, Dst Operand }

// ANDQ - dst &= src
type ANDQ struct{ Src, Dst Operand }

// ORQ - dst |= src
type ORQ struct{ Src, Dst Operand }

// XORQ - dst ^= src
type XORQ struct{ Src, Dst Operand }

// NEGQ - dst = -dst
type NEGQ struct{ Dst Operand }

// NOTQ - dst = ^dst
type NOTQ struct{ Dst Operand }

// CQTO - sign-extend %rax into %rdx:%rax
type CQTO struct{}

// IDIVQ - signed divide %rdx:%rax by src; quotient in %rax
type IDIVQ struct{ Src Operand }

// CMPQ - set flags from dst - src
type CMPQ struct{ Src, Dst Operand }

// SETcc - set byte register to 1 when Cond holds, else 0
type SETcc struct {
	Cond CondCode
	Dst  Reg
}

// --- Data movement ---

// MOVQ - 64-bit move
type MOVQ struct{ Src, Dst Operand }

// MOVL - 32-bit move
type MOVL struct{ Src, Dst Operand }

// MOVSLQ - sign-extending 32 -> 64 load
type MOVSLQ struct {
	Src Operand
	Dst Reg
}

// MOVZBL - zero-extending 8 -> 32 move
type MOVZBL struct {
	Src Operand
	Dst Reg
}

// LEAQ - load effective address
type LEAQ struct {
	Src Operand
	Dst Reg
}

// --- Control flow ---

// JMP - unconditional jump
type JMP struct{ Target Label }

// Jcc - conditional jump
type Jcc struct {
	Cond   CondCode
	Target Label
}

// CALL - call a global function
type CALL struct{ Target Label }

// RET - return
type RET struct{}

// --- Listing entries (not machine instructions) ---

// LabelDef defines a label
type LabelDef struct {
	Name Label
}

// Comment is an assembler comment line
type Comment struct {
	Text string
}

// --- Marker methods for Instruction interface ---

func (ADDQ) implInstruction()     {}
func (SUBQ) implInstruction()     {}
func (IMULQ) implInstruction()    {}
func (ANDQ) implInstruction()     {}
func (ORQ) implInstruction()      {}
func (XORQ) implInstruction()     {}
func (NEGQ) implInstruction()     {}
func (NOTQ) implInstruction()     {}
func (CQTO) implInstruction()     {}
func (IDIVQ) implInstruction()    {}
func (CMPQ) implInstruction()     {}
func (SETcc) implInstruction()    {}
func (MOVQ) implInstruction()     {}
func (MOVL) implInstruction()     {}
func (MOVSLQ) implInstruction()   {}
func (MOVZBL) implInstruction()   {}
func (LEAQ) implInstruction()     {}
func (JMP) implInstruction()      {}
func (Jcc) implInstruction()      {}
func (CALL) implInstruction()     {}
func (RET) implInstruction()      {}
func (LabelDef) implInstruction() {}
func (Comment) implInstruction()  {}

// IsMachine reports whether inst is a real machine instruction rather than
// a label or comment
func IsMachine(inst Instruction) bool {
	switch inst.(type) {
	case LabelDef, Comment:
		return false
	}
	return true
}

// --- Function and Program ---

// Function represents an assembly function
type Function struct {
	Name   string
	Header string // optional comment printed before the function
	Code   []Instruction
}

// Program represents a complete assembly listing
type Program struct {
	Functions []Function
	Strings   []string // string literal i is emitted under label _S<i>
}

// NewFunction creates a new assembly function
func NewFunction(name string) *Function {
	return &Function{
		Name: name,
		Code: make([]Instruction, 0),
	}
}

// Append adds instructions to the function
func (f *Function) Append(inst ...Instruction) {
	f.Code = append(f.Code, inst...)
}

// AppendLabel adds a label definition
func (f *Function) AppendLabel(name Label) {
	f.Code = append(f.Code, LabelDef{Name: name})
}

// StringLabel returns the label of string literal i
func StringLabel(i int) Label {
	return Label(fmt.Sprintf("_S%d", i))
}

// InstCount returns the number of machine instructions in the program
func (p *Program) InstCount() int {
	n := 0
	for _, f := range p.Functions {
		for _, inst := range f.Code {
			if IsMachine(inst) {
				n++
			}
		}
	}
	return n
}

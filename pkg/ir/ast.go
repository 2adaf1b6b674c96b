// Package ir defines IR1, the three-address intermediate representation
// consumed by the x86-64 backend.
// Programs are lists of functions; each function owns its parameters,
// declared locals and a flat instruction list with symbolic labels.
package ir

import (
	"fmt"
	"strings"

	"github.com/samber/lo"
)

// --- Operands ---

// Src is the interface for instruction operands
type Src interface {
	implSrc()
	String() string
}

// Dest is the interface for operands that name a storage location
type Dest interface {
	Src
	implDest()
}

// Id is a named parameter or local variable
type Id struct {
	Name string
}

// Temp is a compiler-generated temporary
type Temp struct {
	Num int
}

// IntLit is a 32-bit integer constant
type IntLit struct {
	Val int32
}

// BoolLit is a boolean constant
type BoolLit struct {
	Val bool
}

// StrLit is a string constant; it only ever denotes an address
type StrLit struct {
	Val string
}

func (Id) implSrc()      {}
func (Temp) implSrc()    {}
func (IntLit) implSrc()  {}
func (BoolLit) implSrc() {}
func (StrLit) implSrc()  {}

func (Id) implDest()   {}
func (Temp) implDest() {}

func (i Id) String() string   { return i.Name }
func (t Temp) String() string { return fmt.Sprintf("t%d", t.Num) }
func (i IntLit) String() string {
	return fmt.Sprintf("%d", i.Val)
}
func (b BoolLit) String() string {
	if b.Val {
		return "true"
	}
	return "false"
}
func (s StrLit) String() string { return Quote(s.Val) }

// Common boolean constants
var (
	True  = BoolLit{Val: true}
	False = BoolLit{Val: false}
)

// Addr is a memory address: a base operand plus a constant byte offset
type Addr struct {
	Base   Src
	Offset int
}

func (a Addr) String() string {
	return fmt.Sprintf("%d[%s]", a.Offset, a.Base)
}

// --- Operators ---

// BinOp is a binary operator
type BinOp int

const (
	Add BinOp = iota // +
	Sub              // -
	Mul              // *
	Div              // /
	And              // &&
	Or               // ||
	Eq               // ==
	Ne               // !=
	Lt               // <
	Le               // <=
	Gt               // >
	Ge               // >=
)

var binOpNames = map[BinOp]string{
	Add: "+", Sub: "-", Mul: "*", Div: "/",
	And: "&&", Or: "||",
	Eq: "==", Ne: "!=", Lt: "<", Le: "<=", Gt: ">", Ge: ">=",
}

func (op BinOp) String() string {
	if s, ok := binOpNames[op]; ok {
		return s
	}
	return "?"
}

// IsArith reports whether op is one of + - * /
func (op BinOp) IsArith() bool {
	return op >= Add && op <= Div
}

// IsLogical reports whether op is && or ||
func (op BinOp) IsLogical() bool {
	return op == And || op == Or
}

// IsRelational reports whether op is a comparison
func (op BinOp) IsRelational() bool {
	return op >= Eq && op <= Ge
}

// UnOp is a unary operator
type UnOp int

const (
	Neg UnOp = iota // -
	Not             // !
)

func (op UnOp) String() string {
	switch op {
	case Neg:
		return "-"
	case Not:
		return "!"
	}
	return "?"
}

// Label is a function-local branch target name
type Label string

// --- Instructions ---

// Inst is the interface for IR1 instructions
type Inst interface {
	implInst()
	String() string
}

// Binop computes Dst = Src1 Op Src2
type Binop struct {
	Op   BinOp
	Dst  Dest
	Src1 Src
	Src2 Src
}

// Unop computes Dst = Op Src
type Unop struct {
	Op  UnOp
	Dst Dest
	Src Src
}

// Move copies Src into Dst
type Move struct {
	Dst Dest
	Src Src
}

// Load reads a 32-bit word from memory
type Load struct {
	Dst  Dest
	Addr Addr
}

// Store writes a 32-bit word to memory
type Store struct {
	Addr Addr
	Src  Src
}

// LabelDec marks a branch target
type LabelDec struct {
	Lab Label
}

// CJump branches to Lab when Src1 Op Src2 holds
type CJump struct {
	Op   BinOp
	Src1 Src
	Src2 Src
	Lab  Label
}

// Jump branches unconditionally
type Jump struct {
	Lab Label
}

// Call invokes a global function. Rdst is nil when no result is kept.
type Call struct {
	Name string
	Args []Src
	Rdst Dest
}

// Return leaves the function. Val is nil for a void return.
type Return struct {
	Val Src
}

func (Binop) implInst()    {}
func (Unop) implInst()     {}
func (Move) implInst()     {}
func (Load) implInst()     {}
func (Store) implInst()    {}
func (LabelDec) implInst() {}
func (CJump) implInst()    {}
func (Jump) implInst()     {}
func (Call) implInst()     {}
func (Return) implInst()   {}

func (i Binop) String() string {
	return fmt.Sprintf("%s = %s %s %s", i.Dst, i.Src1, i.Op, i.Src2)
}

func (i Unop) String() string {
	return fmt.Sprintf("%s = %s%s", i.Dst, i.Op, i.Src)
}

func (i Move) String() string  { return fmt.Sprintf("%s = %s", i.Dst, i.Src) }
func (i Load) String() string  { return fmt.Sprintf("%s = %s", i.Dst, i.Addr) }
func (i Store) String() string { return fmt.Sprintf("%s = %s", i.Addr, i.Src) }

func (i LabelDec) String() string { return fmt.Sprintf("%s:", i.Lab) }

func (i CJump) String() string {
	return fmt.Sprintf("if %s %s %s goto %s", i.Src1, i.Op, i.Src2, i.Lab)
}

func (i Jump) String() string { return fmt.Sprintf("goto %s", i.Lab) }

func (i Call) String() string {
	args := strings.Join(lo.Map(i.Args, func(a Src, _ int) string { return a.String() }), ", ")
	if i.Rdst != nil {
		return fmt.Sprintf("%s = call %s(%s)", i.Rdst, i.Name, args)
	}
	return fmt.Sprintf("call %s(%s)", i.Name, args)
}

func (i Return) String() string {
	if i.Val != nil {
		return fmt.Sprintf("return %s", i.Val)
	}
	return "return"
}

// --- Functions and Programs ---

// Func is an IR1 function
type Func struct {
	Name   string
	Params []string
	Locals []string
	Code   []Inst
}

// NewFunc creates an empty function
func NewFunc(name string, params, locals []string) *Func {
	return &Func{
		Name:   name,
		Params: params,
		Locals: locals,
		Code:   make([]Inst, 0),
	}
}

// Append adds an instruction to the function body
func (f *Func) Append(inst ...Inst) {
	f.Code = append(f.Code, inst...)
}

// Header renders the function signature line, e.g. "_f (a, b)"
func (f *Func) Header() string {
	return fmt.Sprintf("%s (%s)", f.Name, strings.Join(f.Params, ", "))
}

// Program is a complete IR1 program
type Program struct {
	Funcs []*Func
}

// Quote renders s as an IR1 string literal
func Quote(s string) string {
	var b strings.Builder
	b.WriteByte('"')
	for i := 0; i < len(s); i++ {
		switch c := s[i]; c {
		case '"':
			b.WriteString(`\"`)
		case '\\':
			b.WriteString(`\\`)
		case '\n':
			b.WriteString(`\n`)
		case '\t':
			b.WriteString(`\t`)
		default:
			b.WriteByte(c)
		}
	}
	b.WriteByte('"')
	return b.String()
}

package ir

import (
	"fmt"
	"io"
	"strings"
)

// Printer outputs IR1 programs in the textual form read by package irparse
type Printer struct {
	w io.Writer
}

// NewPrinter creates a new IR1 printer
func NewPrinter(w io.Writer) *Printer {
	return &Printer{w: w}
}

// PrintProgram prints every function of the program
func (p *Printer) PrintProgram(prog *Program) {
	for i, fn := range prog.Funcs {
		p.PrintFunc(fn)
		if i < len(prog.Funcs)-1 {
			fmt.Fprintln(p.w)
		}
	}
}

// PrintFunc prints a single function
func (p *Printer) PrintFunc(fn *Func) {
	fmt.Fprintln(p.w, fn.Header())
	fmt.Fprintf(p.w, "(%s)\n", strings.Join(fn.Locals, ", "))
	fmt.Fprintln(p.w, "{")
	for _, inst := range fn.Code {
		p.printInst(inst)
	}
	fmt.Fprintln(p.w, "}")
}

func (p *Printer) printInst(inst Inst) {
	// Labels are printed without indentation
	if _, ok := inst.(LabelDec); ok {
		fmt.Fprintf(p.w, "%s\n", inst)
		return
	}
	fmt.Fprintf(p.w, " %s\n", inst)
}

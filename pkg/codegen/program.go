// Package codegen translates IR1 programs into x86-64 assembly.
//
// There is no register allocation: every parameter, local and temporary
// lives in a 4-byte stack slot, and %r10/%r11 carry values only within the
// translation of a single IR instruction.
package codegen

import (
	"errors"
	"fmt"

	"github.com/obriematt/CS322/pkg/ir"
	"github.com/obriematt/CS322/pkg/x86"
)

var (
	// ErrTooManyParams is returned for a function with more parameters
	// than argument registers
	ErrTooManyParams = errors.New("too many parameters")
	// ErrTooManyArgs is returned for a call site with more arguments than
	// argument registers
	ErrTooManyArgs = errors.New("too many arguments")
	// ErrUnknownName is returned when an operand names no slot
	ErrUnknownName = errors.New("unknown name")
	// ErrUnsupported is returned for an instruction or operand the selector
	// has no translation for
	ErrUnsupported = errors.New("unsupported")
)

// Options controls the shape of the listing
type Options struct {
	// Annotate echoes the function header and each IR instruction as a
	// comment before its translation
	Annotate bool
}

// DefaultOptions returns the options used by the CLI
func DefaultOptions() Options {
	return Options{Annotate: true}
}

// Context holds the state shared by every function of one program
// translation: the options and the string literal pool.
type Context struct {
	opts Options
	pool *StringPool
}

// NewContext creates a translation context with an empty string pool
func NewContext(opts Options) *Context {
	return &Context{opts: opts, pool: NewStringPool()}
}

// Pool returns the program's string literal pool
func (ctx *Context) Pool() *StringPool {
	return ctx.pool
}

// funcContext is the per-function state. A fresh one is built for every
// function so that slots never leak from one function into the next.
type funcContext struct {
	prog  *Context
	name  string
	frame *Frame
	out   *x86.Function
}

func (c *funcContext) emit(inst ...x86.Instruction) {
	c.out.Append(inst...)
}

// TranslateFunc translates one function. String literals go to the
// context's pool.
func (ctx *Context) TranslateFunc(fn *ir.Func) (*x86.Function, error) {
	frame, err := NewFrame(fn)
	if err != nil {
		return nil, fmt.Errorf("%s: %w", fn.Name, err)
	}
	c := &funcContext{
		prog:  ctx,
		name:  fn.Name,
		frame: frame,
		out:   x86.NewFunction(fn.Name),
	}
	if ctx.opts.Annotate {
		c.out.Header = fn.Header()
	}

	c.emit(x86.SUBQ{Src: x86.Imm{Val: frame.Size()}, Dst: x86.Q(x86.RSP)})
	if err := c.storeParams(fn); err != nil {
		return nil, fmt.Errorf("%s: %w", fn.Name, err)
	}
	for _, inst := range fn.Code {
		if ctx.opts.Annotate && inst != nil {
			c.emit(x86.Comment{Text: inst.String()})
		}
		if err := c.selectInst(inst); err != nil {
			return nil, fmt.Errorf("%s: %s: %w", fn.Name, instText(inst), err)
		}
	}
	return c.out, nil
}

// Layout returns fn's complete slot table, temporaries included, by
// translating fn into a throwaway context
func Layout(fn *ir.Func) (*Frame, error) {
	frame, err := NewFrame(fn)
	if err != nil {
		return nil, fmt.Errorf("%s: %w", fn.Name, err)
	}
	c := &funcContext{
		prog:  NewContext(Options{}),
		name:  fn.Name,
		frame: frame,
		out:   x86.NewFunction(fn.Name),
	}
	for _, inst := range fn.Code {
		if err := c.selectInst(inst); err != nil {
			return nil, fmt.Errorf("%s: %s: %w", fn.Name, instText(inst), err)
		}
	}
	return frame, nil
}

func instText(inst ir.Inst) string {
	if inst == nil {
		return "<nil>"
	}
	return inst.String()
}

// Translate translates a whole program. Any error aborts the run and no
// listing is returned.
func Translate(prog *ir.Program, opts Options) (*x86.Program, error) {
	ctx := NewContext(opts)
	out := &x86.Program{}
	for _, fn := range prog.Funcs {
		f, err := ctx.TranslateFunc(fn)
		if err != nil {
			return nil, err
		}
		out.Functions = append(out.Functions, *f)
	}
	out.Strings = ctx.pool.Strings()
	return out, nil
}

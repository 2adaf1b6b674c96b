package codegen

import (
	"fmt"

	"github.com/obriematt/CS322/pkg/ir"
	"github.com/obriematt/CS322/pkg/x86"
)

const (
	slotSize       = 4  // every IR1 value is a 32-bit word
	stackAlignment = 16 // SysV requires %rsp to be 16-byte aligned at a call
	returnAddrSize = 8  // pushed by the caller's call instruction
)

// x86-64 frame layout (after the prologue's subq):
//
//	+---------------------------+  <- %rsp + Size()
//	| return address            |
//	+---------------------------+
//	| padding                   |
//	| temporaries (lazily)      |
//	| locals                    |
//	| parameters                |  slot i at i*4(%rsp)
//	+---------------------------+  <- %rsp (16-byte aligned)

// Frame is the slot table of one function. Parameters come first, then
// locals in declaration order, then temporaries in order of first
// definition. A name keeps its slot for the whole function.
type Frame struct {
	slots []string
	index map[string]int
	size  int64
}

// NewFrame seeds the slot table with fn's parameters and locals and fixes
// the frame size. It fails when fn has more parameters than argument
// registers.
func NewFrame(fn *ir.Func) (*Frame, error) {
	if err := checkArgCount(len(fn.Params), ErrTooManyParams); err != nil {
		return nil, err
	}
	f := &Frame{
		index: make(map[string]int),
		size:  FrameSize(len(fn.Params), len(fn.Locals), len(fn.Code)),
	}
	for _, name := range fn.Params {
		f.Define(name)
	}
	for _, name := range fn.Locals {
		f.Define(name)
	}
	return f, nil
}

// FrameSize estimates the frame from the parameter, local and instruction
// counts (each instruction defines at most one temporary) and pads it so
// that %rsp stays 16-byte aligned once the return address is on the stack.
func FrameSize(params, locals, insts int) int64 {
	raw := int64(params+locals+insts) * slotSize
	return alignUp(raw+returnAddrSize, stackAlignment) - returnAddrSize
}

// Size returns the number of bytes the prologue reserves
func (f *Frame) Size() int64 {
	return f.size
}

// Len returns the number of names assigned so far
func (f *Frame) Len() int {
	return len(f.slots)
}

// Names returns the slot table in slot order
func (f *Frame) Names() []string {
	return append([]string(nil), f.slots...)
}

// Offset returns the byte offset of name's slot
func (f *Frame) Offset(name string) (int64, bool) {
	idx, ok := f.index[name]
	if !ok {
		return 0, false
	}
	return int64(idx) * slotSize, true
}

// Slot returns the stack operand of an existing name
func (f *Frame) Slot(name string) (x86.Mem, error) {
	ofs, ok := f.Offset(name)
	if !ok {
		return x86.Mem{}, fmt.Errorf("%w: %s", ErrUnknownName, name)
	}
	return x86.Mem{Base: x86.RSP, Disp: ofs}, nil
}

// Define returns name's slot, appending a new one on first sight
func (f *Frame) Define(name string) x86.Mem {
	if _, ok := f.index[name]; !ok {
		f.index[name] = len(f.slots)
		f.slots = append(f.slots, name)
	}
	ofs, _ := f.Offset(name)
	return x86.Mem{Base: x86.RSP, Disp: ofs}
}

// alignUp rounds n up to the nearest multiple of align
func alignUp(n, align int64) int64 {
	if align == 0 {
		return n
	}
	return ((n + align - 1) / align) * align
}

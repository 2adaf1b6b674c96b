package codegen

import (
	"bytes"
	"errors"
	"regexp"
	"strings"
	"testing"

	"github.com/google/go-cmp/cmp"

	"github.com/obriematt/CS322/pkg/ir"
	"github.com/obriematt/CS322/pkg/irparse"
	"github.com/obriematt/CS322/pkg/x86"
)

func mustParse(t *testing.T, src string) *ir.Program {
	t.Helper()
	prog, err := irparse.Parse(src)
	if err != nil {
		t.Fatalf("parse error: %v", err)
	}
	return prog
}

func listing(t *testing.T, src string, opts Options) string {
	t.Helper()
	out, err := Translate(mustParse(t, src), opts)
	if err != nil {
		t.Fatalf("Translate: %v", err)
	}
	var buf bytes.Buffer
	x86.NewPrinter(&buf).PrintProgram(out)
	return buf.String()
}

var stringLabelLine = regexp.MustCompile(`^_S\d+:$`)

// body returns the lines of function name's code, without annotations
func body(t *testing.T, src, name string) []string {
	t.Helper()
	lines := strings.Split(listing(t, src, Options{}), "\n")
	start := -1
	for i, line := range lines {
		if line == name+":" {
			start = i + 1
			break
		}
	}
	if start < 0 {
		t.Fatalf("function %s not found in listing", name)
	}
	var out []string
	for _, line := range lines[start:] {
		if line == "\t.p2align 4,0x90" || strings.HasPrefix(line, "\t# Total") ||
			stringLabelLine.MatchString(line) {
			break
		}
		out = append(out, line)
	}
	return out
}

func TestTranslateAddAndPrint(t *testing.T) {
	src := `
_main ()
(x)
{
 x = 3 + 4
 call _printInt(x)
 return
}
`
	want := strings.Join([]string{
		"\t.text",
		"\t.p2align 4,0x90",
		"\t.globl _main",
		"_main:",
		"\tsubq $24,%rsp",
		"\tmovq $3,%r10",
		"\tmovq $4,%r11",
		"\taddq %r11,%r10",
		"\tmovl %r10d,(%rsp)",
		"\tmovslq (%rsp),%rdi",
		"\tcall _printInt",
		"\taddq $24,%rsp",
		"\tret",
		"\t# Total inst cnt: 9",
		"",
	}, "\n")

	got := listing(t, src, Options{})
	if diff := cmp.Diff(want, got); diff != "" {
		t.Errorf("listing mismatch (-want +got):\n%s", diff)
	}
}

func TestTranslateAnnotated(t *testing.T) {
	src := `
_f (a)
()
{
 t1 = a + 1
 return t1
}
`
	got := listing(t, src, DefaultOptions())

	order := []string{
		"\t# _f (a)\n",
		"\t.globl _f\n",
		"\tmovl %edi,(%rsp)\n",
		"\t# t1 = a + 1\n",
		"\taddq %r11,%r10\n",
		"\t# return t1\n",
		"\tret\n",
	}
	pos := 0
	for _, s := range order {
		idx := strings.Index(got[pos:], s)
		if idx < 0 {
			t.Fatalf("expected %q after offset %d in:\n%s", s, pos, got)
		}
		pos += idx + len(s)
	}

	plain := listing(t, src, Options{})
	if strings.Contains(plain, "\t# t1") || strings.Contains(plain, "\t# _f") {
		t.Errorf("unannotated listing has IR comments:\n%s", plain)
	}
	cnt := "\t# Total inst cnt: 9\n"
	if !strings.HasSuffix(got, cnt) || !strings.HasSuffix(plain, cnt) {
		t.Errorf("both listings should end with %q\nannotated:\n%s\nplain:\n%s", cnt, got, plain)
	}
}

func TestTranslateStringPoolFlushedLast(t *testing.T) {
	src := `
_main ()
()
{
 call _printStr("a\tb\n")
 return
}
`
	got := listing(t, src, Options{})
	want := "\tret\n_S0:\n\t.asciz \"a\\tb\\n\"\n\t# Total inst cnt: 5\n"
	if !strings.HasSuffix(got, want) {
		t.Errorf("listing should end with %q, got:\n%s", want, got)
	}
	if !strings.Contains(got, "\tleaq _S0(%rip),%rdi\n") {
		t.Errorf("missing string address load:\n%s", got)
	}
}

func TestTranslateErrors(t *testing.T) {
	tests := []struct {
		name    string
		src     string
		wantErr error
	}{
		{
			name:    "too many params",
			src:     "_f (a, b, c, d, e, f, g)\n()\n{\n return\n}\n",
			wantErr: ErrTooManyParams,
		},
		{
			name:    "too many args",
			src:     "_f ()\n()\n{\n call _g(1, 2, 3, 4, 5, 6, 7)\n return\n}\n",
			wantErr: ErrTooManyArgs,
		},
		{
			name:    "undeclared source",
			src:     "_f ()\n(x)\n{\n x = y\n return\n}\n",
			wantErr: ErrUnknownName,
		},
		{
			name:    "temp used before definition",
			src:     "_f ()\n()\n{\n t1 = t1 + 1\n return\n}\n",
			wantErr: ErrUnknownName,
		},
		{
			name:    "temps do not leak between functions",
			src:     "_f ()\n()\n{\n t1 = 1\n return\n}\n\n_g ()\n()\n{\n return t1\n}\n",
			wantErr: ErrUnknownName,
		},
		{
			name:    "relational conditional jump",
			src:     "_f (a)\n()\n{\n if a < 1 goto L0\n L0:\n return\n}\n",
			wantErr: ErrUnsupported,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			out, err := Translate(mustParse(t, tt.src), Options{})
			if !errors.Is(err, tt.wantErr) {
				t.Fatalf("err = %v, want %v", err, tt.wantErr)
			}
			if out != nil {
				t.Error("a failed translation must not return a listing")
			}
		})
	}
}

func TestTranslateFuncStopsBeforeEmitting(t *testing.T) {
	fn := ir.NewFunc("_f", []string{"a", "b", "c", "d", "e", "f", "g"}, nil)
	fn.Append(ir.Return{})
	out, err := NewContext(Options{}).TranslateFunc(fn)
	if !errors.Is(err, ErrTooManyParams) {
		t.Fatalf("err = %v, want ErrTooManyParams", err)
	}
	if out != nil {
		t.Errorf("got %d instructions for a rejected function", len(out.Code))
	}
	if !strings.Contains(err.Error(), "_f") {
		t.Errorf("error should name the function: %v", err)
	}
}

func TestTranslateUnsupported(t *testing.T) {
	tests := []struct {
		name string
		inst ir.Inst
	}{
		{"nil instruction", nil},
		{"unknown binary operator", ir.Binop{Op: ir.BinOp(99), Dst: ir.Temp{Num: 1}, Src1: ir.IntLit{Val: 1}, Src2: ir.IntLit{Val: 2}}},
		{"unknown unary operator", ir.Unop{Op: ir.UnOp(99), Dst: ir.Temp{Num: 1}, Src: ir.IntLit{Val: 1}}},
		{"nil operand", ir.Move{Dst: ir.Temp{Num: 1}}},
		{"conditional jump on >=", ir.CJump{Op: ir.Ge, Src1: ir.IntLit{Val: 1}, Src2: ir.IntLit{Val: 2}, Lab: "L0"}},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			fn := ir.NewFunc("_f", nil, nil)
			fn.Append(tt.inst, ir.Return{})
			_, err := NewContext(DefaultOptions()).TranslateFunc(fn)
			if !errors.Is(err, ErrUnsupported) {
				t.Errorf("err = %v, want ErrUnsupported", err)
			}
		})
	}
}

func TestLayoutDefinesTempsLazily(t *testing.T) {
	prog := mustParse(t, `
_f (a)
(x)
{
 t2 = a + 1
 t1 = t2 * 2
 t2 = t1
 x = call _g(t1, "unused")
 return x
}
`)
	frame, err := Layout(prog.Funcs[0])
	if err != nil {
		t.Fatalf("Layout: %v", err)
	}
	if diff := cmp.Diff([]string{"a", "x", "t2", "t1"}, frame.Names()); diff != "" {
		t.Errorf("slot table mismatch (-want +got):\n%s", diff)
	}
	if frame.Size() != FrameSize(1, 1, 5) {
		t.Errorf("Size() = %d, want %d", frame.Size(), FrameSize(1, 1, 5))
	}
}

func TestContextPoolAccumulates(t *testing.T) {
	prog := mustParse(t, `
_f ()
()
{
 call _printStr("one")
 return
}

_g ()
()
{
 call _printStr("two")
 return
}
`)
	ctx := NewContext(Options{})
	for _, fn := range prog.Funcs {
		if _, err := ctx.TranslateFunc(fn); err != nil {
			t.Fatal(err)
		}
	}
	if diff := cmp.Diff([]string{"one", "two"}, ctx.Pool().Strings()); diff != "" {
		t.Errorf("pool mismatch (-want +got):\n%s", diff)
	}
}

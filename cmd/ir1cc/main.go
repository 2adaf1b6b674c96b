package main

import (
	"bytes"
	"errors"
	"fmt"
	"io"
	"os"

	"github.com/spf13/cobra"
	"github.com/spf13/pflag"
	"golang.org/x/term"

	"github.com/obriematt/CS322/pkg/codegen"
	"github.com/obriematt/CS322/pkg/ir"
	"github.com/obriematt/CS322/pkg/irparse"
	"github.com/obriematt/CS322/pkg/x86"
)

var version = "0.1.0"

// Command line flags
var (
	outputFile string
	dumpIR     bool
	dumpFrames bool
	noAnnotate bool
)

// ErrMissingInput is returned when no IR file is named
var ErrMissingInput = errors.New("no input file")

const (
	cBoldRed = "\x1b[1;31m"
	cReset   = "\x1b[0m"
)

func main() {
	os.Exit(run())
}

func run() int {
	rootCmd := newRootCmd(os.Stdout, os.Stderr)
	rootCmd.SetArgs(os.Args[1:])
	if err := rootCmd.Execute(); err != nil {
		return 1
	}
	return 0
}

func newRootCmd(out, errOut io.Writer) *cobra.Command {
	rootCmd := &cobra.Command{
		Use:   "ir1cc [flags] <file.ir>",
		Short: "ir1cc translates IR1 programs to x86-64 assembly",
		Long: `ir1cc reads a program in the IR1 three-address form and writes
an x86-64 assembly listing in GNU as (AT&T) syntax. Every value lives
in a stack slot; there is no register allocation.`,
		Version:       version,
		Args:          cobra.MaximumNArgs(1),
		SilenceUsage:  true,
		SilenceErrors: true,
		RunE: func(cmd *cobra.Command, args []string) error {
			if len(args) == 0 {
				fmt.Fprint(errOut, cmd.UsageString())
				return ErrMissingInput
			}
			filename := args[0]

			prog, err := parseFile(filename, errOut)
			if err != nil {
				return err
			}

			switch {
			case dumpIR:
				return writeOutput(out, errOut, func(w io.Writer) error {
					ir.NewPrinter(w).PrintProgram(prog)
					return nil
				})
			case dumpFrames:
				return writeOutput(out, errOut, func(w io.Writer) error {
					return printFrames(w, prog)
				})
			}
			return compile(prog, out, errOut)
		},
	}
	rootCmd.SetOut(out)
	rootCmd.SetErr(errOut)

	addFlags(rootCmd.Flags())

	return rootCmd
}

func addFlags(fs *pflag.FlagSet) {
	fs.StringVarP(&outputFile, "output", "o", "", "Write the listing to `file` instead of stdout")
	fs.BoolVar(&dumpIR, "dir", false, "Dump the parsed IR1 program and stop")
	fs.BoolVar(&dumpFrames, "dframes", false, "Dump each function's stack slots and stop")
	fs.BoolVar(&noAnnotate, "no-annotate", false, "Omit IR comments from the listing")
}

// errorf reports a diagnostic on errOut, highlighted when errOut is a
// terminal
func errorf(errOut io.Writer, format string, args ...any) {
	label := "error:"
	if isTerminal(errOut) {
		label = cBoldRed + label + cReset
	}
	fmt.Fprintf(errOut, "ir1cc: %s %s\n", label, fmt.Sprintf(format, args...))
}

func isTerminal(w io.Writer) bool {
	f, ok := w.(*os.File)
	return ok && term.IsTerminal(int(f.Fd()))
}

// parseFile reads and parses an IR1 file
func parseFile(filename string, errOut io.Writer) (*ir.Program, error) {
	content, err := os.ReadFile(filename)
	if err != nil {
		errorf(errOut, "%v", err)
		return nil, err
	}

	p := irparse.New(irparse.NewLexer(string(content)))
	prog := p.ParseProgram()
	if errs := p.Errors(); len(errs) > 0 {
		for _, e := range errs {
			errorf(errOut, "%s:%s", filename, e)
		}
		return nil, fmt.Errorf("%s: %d parse errors", filename, len(errs))
	}
	return prog, nil
}

// compile translates prog and writes the listing. Nothing is written when
// translation fails.
func compile(prog *ir.Program, out, errOut io.Writer) error {
	opts := codegen.DefaultOptions()
	opts.Annotate = !noAnnotate

	asmProg, err := codegen.Translate(prog, opts)
	if err != nil {
		errorf(errOut, "%v", err)
		return err
	}
	return writeOutput(out, errOut, func(w io.Writer) error {
		x86.NewPrinter(w).PrintProgram(asmProg)
		return nil
	})
}

// printFrames writes the slot table of every function
func printFrames(w io.Writer, prog *ir.Program) error {
	for _, fn := range prog.Funcs {
		frame, err := codegen.Layout(fn)
		if err != nil {
			return err
		}
		fmt.Fprintf(w, "%s: frame %d bytes\n", fn.Name, frame.Size())
		for _, name := range frame.Names() {
			ofs, _ := frame.Offset(name)
			fmt.Fprintf(w, "  %4d  %s\n", ofs, name)
		}
	}
	return nil
}

// writeOutput renders into a buffer first so that a failure never leaves a
// partial file behind, then writes to -o or out
func writeOutput(out, errOut io.Writer, render func(io.Writer) error) error {
	var buf bytes.Buffer
	if err := render(&buf); err != nil {
		errorf(errOut, "%v", err)
		return err
	}
	if outputFile == "" {
		_, err := out.Write(buf.Bytes())
		return err
	}
	if err := os.WriteFile(outputFile, buf.Bytes(), 0644); err != nil {
		errorf(errOut, "writing %s: %v", outputFile, err)
		return err
	}
	return nil
}

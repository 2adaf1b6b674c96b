package main

import (
	"os"
	"os/exec"
	"path/filepath"
	"runtime"
	"strings"
	"testing"

	"gopkg.in/yaml.v3"
)

// E2EAsmTestSpec represents a single listing test case
type E2EAsmTestSpec struct {
	Name         string   `yaml:"name"`
	Input        string   `yaml:"input"`
	Flags        []string `yaml:"flags"`
	Expect       []string `yaml:"expect"`        // Strings that must appear in output
	ExpectOrder  []string `yaml:"expect_order"`  // Strings that must appear in this order
	ExpectUnique []string `yaml:"expect_unique"` // Strings that must appear exactly once
	ExpectNot    []string `yaml:"expect_not"`    // Strings that must NOT appear in output
	Skip         string   `yaml:"skip,omitempty"`
}

// E2EAsmTestFile represents the e2e_asm.yaml file structure
type E2EAsmTestFile struct {
	Tests []E2EAsmTestSpec `yaml:"tests"`
}

// E2ERuntimeTestSpec represents a program that is compiled, linked and run
type E2ERuntimeTestSpec struct {
	Name           string `yaml:"name"`
	Input          string `yaml:"input"`
	ExpectedOutput string `yaml:"expected_output"`
	Skip           string `yaml:"skip,omitempty"`
}

// E2ERuntimeTestFile represents the e2e_runtime.yaml file structure
type E2ERuntimeTestFile struct {
	Tests []E2ERuntimeTestSpec `yaml:"tests"`
}

func loadYAML(t *testing.T, path string, v any) {
	t.Helper()
	data, err := os.ReadFile(path)
	if err != nil {
		t.Fatalf("%s not found: %v", path, err)
	}
	if err := yaml.Unmarshal(data, v); err != nil {
		t.Fatalf("failed to parse %s: %v", path, err)
	}
}

func TestE2EAsmYAML(t *testing.T) {
	var testFile E2EAsmTestFile
	loadYAML(t, "../../testdata/e2e_asm.yaml", &testFile)

	for _, tc := range testFile.Tests {
		t.Run(tc.Name, func(t *testing.T) {
			if tc.Skip != "" {
				t.Skip(tc.Skip)
			}

			args := append(append([]string{}, tc.Flags...), writeIR(t, tc.Input))
			output, errOut, err := execute(args...)
			if err != nil {
				t.Fatalf("ir1cc failed: %v\nStderr: %s", err, errOut)
			}

			for _, exp := range tc.Expect {
				if !strings.Contains(output, exp) {
					t.Errorf("expected output to contain %q\nGot:\n%s", exp, output)
				}
			}

			if len(tc.ExpectOrder) > 0 {
				pos := 0
				for _, exp := range tc.ExpectOrder {
					idx := strings.Index(output[pos:], exp)
					if idx == -1 {
						t.Errorf("expected %q after position %d\nGot:\n%s", exp, pos, output)
						break
					}
					pos += idx + len(exp)
				}
			}

			for _, exp := range tc.ExpectUnique {
				if count := strings.Count(output, exp); count != 1 {
					t.Errorf("expected %q to appear exactly once, found %d times\nGot:\n%s", exp, count, output)
				}
			}

			for _, exp := range tc.ExpectNot {
				if strings.Contains(output, exp) {
					t.Errorf("expected output NOT to contain %q\nGot:\n%s", exp, output)
				}
			}
		})
	}
}

// TestE2ERuntimeYAML assembles each listing with the system C compiler,
// links it against testdata/runtime.c and compares what it prints
func TestE2ERuntimeYAML(t *testing.T) {
	if runtime.GOOS != "linux" || runtime.GOARCH != "amd64" {
		t.Skipf("listings target linux/amd64, host is %s/%s", runtime.GOOS, runtime.GOARCH)
	}
	cc, err := exec.LookPath("cc")
	if err != nil {
		t.Skip("C compiler 'cc' not found in PATH")
	}
	runtimeC, err := filepath.Abs("../../testdata/runtime.c")
	if err != nil {
		t.Fatal(err)
	}

	var testFile E2ERuntimeTestFile
	loadYAML(t, "../../testdata/e2e_runtime.yaml", &testFile)

	for _, tc := range testFile.Tests {
		t.Run(tc.Name, func(t *testing.T) {
			if tc.Skip != "" {
				t.Skip(tc.Skip)
			}

			tmpDir := t.TempDir()
			testSFile := filepath.Join(tmpDir, "test.s")
			testExe := filepath.Join(tmpDir, "test")

			// Step 1: translate IR1 to assembly
			_, errOut, err := execute("-o", testSFile, writeIR(t, tc.Input))
			if err != nil {
				t.Fatalf("ir1cc failed: %v\nStderr: %s", err, errOut)
			}
			asmContent, _ := os.ReadFile(testSFile)

			// Step 2: assemble and link; slots hold 32-bit pointers, so the
			// image must not be position independent
			ccCmd := exec.Command(cc, "-no-pie", "-o", testExe, testSFile, runtimeC)
			if output, err := ccCmd.CombinedOutput(); err != nil {
				t.Fatalf("cc failed: %v\nOutput: %s\nAssembly:\n%s", err, output, asmContent)
			}

			// Step 3: run and compare stdout
			output, err := exec.Command(testExe).Output()
			if err != nil {
				t.Fatalf("program failed: %v\nAssembly:\n%s", err, asmContent)
			}
			if string(output) != tc.ExpectedOutput {
				t.Errorf("expected output %q, got %q\nAssembly:\n%s", tc.ExpectedOutput, output, asmContent)
			}
		})
	}
}

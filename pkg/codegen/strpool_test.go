package codegen

import (
	"testing"

	"github.com/google/go-cmp/cmp"

	"github.com/obriematt/CS322/pkg/x86"
)

func TestStringPoolLabels(t *testing.T) {
	p := NewStringPool()

	got := []x86.Label{
		p.Add("hello"),
		p.Add("world"),
		p.Add("hello"),
		p.Add(""),
	}
	want := []x86.Label{"_S0", "_S1", "_S0", "_S2"}

	if diff := cmp.Diff(want, got); diff != "" {
		t.Errorf("labels mismatch (-want +got):\n%s", diff)
	}
	if p.Len() != 3 {
		t.Errorf("Len() = %d, want 3", p.Len())
	}
	if diff := cmp.Diff([]string{"hello", "world", ""}, p.Strings()); diff != "" {
		t.Errorf("Strings() mismatch (-want +got):\n%s", diff)
	}
}

func TestStringPoolStringsIsACopy(t *testing.T) {
	p := NewStringPool()
	p.Add("a")
	strs := p.Strings()
	strs[0] = "b"
	if got := p.Strings()[0]; got != "a" {
		t.Errorf("pool modified through Strings(): %q", got)
	}
}

func TestStringPoolSharedAcrossFunctions(t *testing.T) {
	prog := mustParse(t, `
_f ()
()
{
 call _printStr("hi")
 return
}

_g ()
()
{
 call _printStr("bye")
 call _printStr("hi")
 return
}
`)
	out, err := Translate(prog, Options{})
	if err != nil {
		t.Fatalf("Translate: %v", err)
	}
	if diff := cmp.Diff([]string{"hi", "bye"}, out.Strings); diff != "" {
		t.Errorf("pool mismatch (-want +got):\n%s", diff)
	}
}

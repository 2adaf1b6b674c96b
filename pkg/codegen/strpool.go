package codegen

import (
	"github.com/cespare/xxhash/v2"

	"github.com/obriematt/CS322/pkg/x86"
)

// StringPool collects the string literals of a whole program. Literal i is
// emitted under label _S<i>; equal texts share one entry.
type StringPool struct {
	strs  []string
	index map[uint64][]int // content hash -> candidate indices
}

// NewStringPool creates an empty pool
func NewStringPool() *StringPool {
	return &StringPool{index: make(map[uint64][]int)}
}

// Add interns s and returns the label of its entry
func (p *StringPool) Add(s string) x86.Label {
	h := xxhash.Sum64String(s)
	for _, i := range p.index[h] {
		if p.strs[i] == s {
			return x86.StringLabel(i)
		}
	}
	i := len(p.strs)
	p.strs = append(p.strs, s)
	p.index[h] = append(p.index[h], i)
	return x86.StringLabel(i)
}

// Len returns the number of pooled literals
func (p *StringPool) Len() int {
	return len(p.strs)
}

// Strings returns the pooled literals in label order
func (p *StringPool) Strings() []string {
	return append([]string(nil), p.strs...)
}

// Package bitset marks members of a fixed, indexed set, such as the pairs a
// route search has already visited.
package bitset

import "math/bits"

// BitSet is a fixed-size set of small non-negative integers.
type BitSet []uint64

// New returns an empty set able to hold indexes [0, n).
func New(n int) BitSet {
	return make(BitSet, (n+63)/64)
}

func (b BitSet) IsSet(i int) bool {
	return b[i/64]&(1<<(uint(i)%64)) != 0
}

func (b BitSet) Set(i int) {
	b[i/64] |= 1 << (uint(i) % 64)
}

func (b BitSet) Unset(i int) {
	b[i/64] &^= 1 << (uint(i) % 64)
}

// Count returns the number of members.
func (b BitSet) Count() int {
	n := 0
	for _, w := range b {
		n += bits.OnesCount64(w)
	}
	return n
}

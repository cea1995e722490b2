// Package huffman builds, serializes, and reads the canonical Huffman
// codes used by the VP8L entropy layer: histogram-driven tree
// construction, the "simple"/"full" wire encodings, and a two-level
// lookup table for fast symbol decode.
package huffman

import (
	"container/heap"
	"errors"
	"sort"
)

// MaxCodeLength is the maximum depth a VP8L Huffman code may have.
const MaxCodeLength = 15

// Code is a single canonical Huffman codeword: Depth bits long, value
// Bits (not yet bit-reversed — reversal happens at emission time).
type Code struct {
	Depth int
	Bits  uint16
}

// Tree holds one canonical code per symbol in an alphabet, indexed by
// symbol value. Single marks the degenerate one-symbol-alphabet case: the
// decode table built from this tree's depths returns that symbol for zero
// consumed bits (see BuildTable), so writers must emit nothing for it too,
// rather than trusting the symbol's nominal Code.Depth.
type Tree struct {
	Codes  []Code
	Single bool
}

// treeNode is a leaf or internal node used while building a Huffman tree
// from symbol frequencies.
type treeNode struct {
	weight uint32
	symbol int // >= 0 for leaves, -1 for internal nodes
	left   int
	right  int
}

type nodeHeap struct {
	pool    []treeNode
	indices []int
}

func (h *nodeHeap) Len() int { return len(h.indices) }
func (h *nodeHeap) Less(i, j int) bool {
	a, b := h.pool[h.indices[i]], h.pool[h.indices[j]]
	if a.weight != b.weight {
		return a.weight < b.weight
	}
	return h.indices[i] < h.indices[j]
}
func (h *nodeHeap) Swap(i, j int) { h.indices[i], h.indices[j] = h.indices[j], h.indices[i] }
func (h *nodeHeap) Push(x any)    { h.indices = append(h.indices, x.(int)) }
func (h *nodeHeap) Pop() any {
	old := h.indices
	n := len(old)
	v := old[n-1]
	h.indices = old[:n-1]
	return v
}

// ErrEmptyHistogram names the case of a histogram with no non-zero
// entries. BuildTree does not return it: it returns an all-absent Tree
// for that case, which callers treat as "nothing to encode".
var ErrEmptyHistogram = errors.New("huffman: histogram has no non-zero entries")

// BuildTree constructs canonical code depths from a symbol histogram,
// applying a floor of sum>>(maxDepth-2) (at least 1) to every leaf weight
// before merging (biasing against pathological depths) and, while any
// depth exceeds maxDepth, doubling the floor and rebuilding, in the
// manner of the VP8L reference encoder's GenerateOptimalTree.
//
// Zero non-zero entries yields an all-absent Tree (every Depth 0).
// Exactly one non-zero entry yields a single-symbol Tree: that symbol
// gets Depth 1 so it round-trips through BuildTable's own single-symbol
// fast path, which decodes it for zero bits. WriteCode describes such a
// tree with the simple wire form when the symbol is below 256 and with
// the full form otherwise.
func BuildTree(hist []uint32, maxDepth int) *Tree {
	n := len(hist)
	t := &Tree{Codes: make([]Code, n)}

	nonZero := 0
	var only int
	for sym, c := range hist {
		if c > 0 {
			nonZero++
			only = sym
		}
	}
	switch nonZero {
	case 0:
		return t
	case 1:
		t.Codes[only] = Code{Depth: 1}
		t.Single = true
		return t
	}

	var sum uint32
	for _, c := range hist {
		sum += c
	}
	floor := sum >> uint(maxDepth-2)
	if floor < 1 {
		floor = 1
	}

	depths := make([]int, n)
	for countMin := floor; ; countMin *= 2 {
		for i := range depths {
			depths[i] = 0
		}
		h := &nodeHeap{}
		for sym, c := range hist {
			if c == 0 {
				continue
			}
			w := c
			if w < countMin {
				w = countMin
			}
			idx := len(h.pool)
			h.pool = append(h.pool, treeNode{weight: w, symbol: sym, left: -1, right: -1})
			h.indices = append(h.indices, idx)
		}
		heap.Init(h)
		for h.Len() > 1 {
			li := heap.Pop(h).(int)
			ri := heap.Pop(h).(int)
			parent := len(h.pool)
			h.pool = append(h.pool, treeNode{
				weight: h.pool[li].weight + h.pool[ri].weight,
				symbol: -1, left: li, right: ri,
			})
			heap.Push(h, parent)
		}
		assignDepths(h.pool, h.indices[0], 0, depths)

		max := 0
		for _, d := range depths {
			if d > max {
				max = d
			}
		}
		if max <= maxDepth {
			break
		}
	}

	assignCanonicalCodes(t, depths)
	return t
}

func assignDepths(pool []treeNode, idx, depth int, depths []int) {
	n := &pool[idx]
	if n.symbol >= 0 {
		depths[n.symbol] = depth
		return
	}
	if n.left >= 0 {
		assignDepths(pool, n.left, depth+1, depths)
	}
	if n.right >= 0 {
		assignDepths(pool, n.right, depth+1, depths)
	}
}

// assignCanonicalCodes sorts symbols by (depth, symbol) ascending and
// assigns sequential bit patterns, per §4.4.1 step 5.
func assignCanonicalCodes(t *Tree, depths []int) {
	type entry struct {
		symbol int
		depth  int
	}
	var symbols []entry
	for sym, d := range depths {
		if d > 0 {
			symbols = append(symbols, entry{sym, d})
		}
	}
	sort.SliceStable(symbols, func(i, j int) bool {
		if symbols[i].depth != symbols[j].depth {
			return symbols[i].depth < symbols[j].depth
		}
		return symbols[i].symbol < symbols[j].symbol
	})

	code := uint32(0)
	prev := 0
	for _, s := range symbols {
		if s.depth > prev {
			code <<= uint(s.depth - prev)
			prev = s.depth
		}
		t.Codes[s.symbol] = Code{Depth: s.depth, Bits: uint16(code)}
		code++
	}
}

// ReverseBits reverses the low n bits of v, used to emit canonical codes
// bit-reversed as the VP8L wire format requires.
func ReverseBits(v uint16, n int) uint16 {
	var out uint16
	for i := 0; i < n; i++ {
		out = (out << 1) | (v & 1)
		v >>= 1
	}
	return out
}

package huffman

import "github.com/andiray/webplossless/internal/bitio"

// Wire constants for the code-length alphabet (§4.4.2/4.4.3): 16 literal
// depths (0..15) plus three run-length operators.
const (
	numCodeLengthCodes = 19
	repeatPrev         = 16
	repeatZerosShort   = 17
	repeatZerosLong    = 18
	codeLengthMaxDepth = 7
)

// codeLengthOrder is the fixed transmission order of the 19 code-length
// symbols.
var codeLengthOrder = [numCodeLengthCodes]int{
	17, 18, 0, 1, 2, 3, 4, 5, 16, 6, 7, 8, 9, 10, 11, 12, 13, 14, 15,
}

// repeatExtraBits/repeatOffset give, for codes 16/17/18 (index 0/1/2),
// the number of extra bits read and the minimum repeat count they encode.
var repeatExtraBits = [3]int{2, 3, 7}
var repeatOffset = [3]int{3, 3, 11}

// WriteCode serializes a Tree over depths directly — symbols with
// Depth 0 are absent. It chooses the simple wire form when at most two
// symbols are present (none at all included) and all are under 256, and
// the full meta-Huffman form otherwise, per §4.4.2. The encoder never trims the alphabet (the
// use_length bit is always written as 0, covering every symbol); decoders
// must still accept a trimmed stream, see ReadCode.
func WriteCode(w *bitio.Writer, t *Tree) {
	var present []int
	for sym, c := range t.Codes {
		if c.Depth > 0 {
			present = append(present, sym)
		}
	}

	if len(present) <= 2 {
		allFit := true
		for _, s := range present {
			if s >= 256 {
				allFit = false
				break
			}
		}
		if allFit {
			writeSimple(w, present)
			return
		}
	}
	writeFull(w, t)
}

func writeSimple(w *bitio.Writer, symbols []int) {
	w.WriteBits(1, 1) // flag: simple code
	if len(symbols) == 0 {
		w.WriteBits(0, 1)
		w.WriteBits(0, 1)
		w.WriteBits(0, 1)
		return
	}
	if len(symbols) == 1 {
		w.WriteBits(0, 1) // num_symbols - 1 = 0
		writeSimpleSymbol(w, symbols[0])
		return
	}
	s0, s1 := symbols[0], symbols[1]
	if s0 > s1 {
		s0, s1 = s1, s0
	}
	w.WriteBits(1, 1) // num_symbols - 1 = 1
	writeSimpleSymbol(w, s0)
	w.WriteBits(uint32(s1), 8) // second symbol is always 8 bits
}

func writeSimpleSymbol(w *bitio.Writer, sym int) {
	if sym <= 1 {
		w.WriteBits(0, 1)
		w.WriteBits(uint32(sym), 1)
	} else {
		w.WriteBits(1, 1)
		w.WriteBits(uint32(sym), 8)
	}
}

// codeLenToken is one entry of the RLE-compressed code-length sequence.
type codeLenToken struct {
	code  uint8
	extra uint8
}

func writeFull(w *bitio.Writer, t *Tree) {
	w.WriteBits(0, 1) // flag: full code

	depths := make([]uint8, len(t.Codes))
	for i, c := range t.Codes {
		depths[i] = uint8(c.Depth)
	}
	tokens := tokenizeDepths(depths)

	var hist [numCodeLengthCodes]uint32
	for _, tok := range tokens {
		hist[tok.code]++
	}
	clTree := BuildTree(hist[:], codeLengthMaxDepth)
	clDepths := make([]uint8, numCodeLengthCodes)
	for i, c := range clTree.Codes {
		clDepths[i] = uint8(c.Depth)
	}
	writeCodeLengthTreeHeader(w, clDepths)
	clearIfSingleSymbol(clTree, clDepths)

	w.WriteBits(0, 1) // use_length = 0: cover the whole alphabet
	writeTokens(w, tokens, clTree)
}

func writeCodeLengthTreeHeader(w *bitio.Writer, depths []uint8) {
	numCodes := 4
	for i := numCodeLengthCodes - 1; i >= 4; i-- {
		if depths[codeLengthOrder[i]] != 0 {
			numCodes = i + 1
			break
		}
	}
	w.WriteBits(uint32(numCodes-4), 4)
	for i := 0; i < numCodes; i++ {
		w.WriteBits(uint32(depths[codeLengthOrder[i]]), 3)
	}
}

func writeTokens(w *bitio.Writer, tokens []codeLenToken, clTree *Tree) {
	for _, tok := range tokens {
		c := clTree.Codes[tok.code]
		w.WriteCode(ReverseBits(c.Bits, c.Depth), c.Depth)
		switch tok.code {
		case repeatPrev:
			w.WriteBits(uint32(tok.extra), repeatExtraBits[0])
		case repeatZerosShort:
			w.WriteBits(uint32(tok.extra), repeatExtraBits[1])
		case repeatZerosLong:
			w.WriteBits(uint32(tok.extra), repeatExtraBits[2])
		}
	}
}

// clearIfSingleSymbol zeroes the code-length tree's codes and depths when
// it has at most one present symbol. It runs after the header has recorded
// that symbol's depth: the decoder's table for a one-symbol code returns it
// for zero bits, so the cleared codes make writeTokens emit nothing for
// each token's code (its repeat extra bits are still written).
func clearIfSingleSymbol(t *Tree, depths []uint8) {
	count := 0
	for _, d := range depths {
		if d != 0 {
			count++
		}
	}
	if count > 1 {
		return
	}
	for i := range t.Codes {
		t.Codes[i] = Code{}
	}
	for i := range depths {
		depths[i] = 0
	}
}

// tokenizeDepths compresses a sequence of per-symbol code depths into
// code-length tokens using the 16/17/18 run-length operators.
func tokenizeDepths(depths []uint8) []codeLenToken {
	var tokens []codeLenToken
	prev := uint8(8) // matches the reference's initial "previous length"
	i := 0
	for i < len(depths) {
		v := depths[i]
		k := i + 1
		for k < len(depths) && depths[k] == v {
			k++
		}
		run := k - i
		i = k
		if v == 0 {
			tokens = encodeZeroRun(tokens, run)
		} else {
			tokens = encodeValueRun(tokens, run, v, prev)
			prev = v
		}
	}
	return tokens
}

func encodeZeroRun(tokens []codeLenToken, n int) []codeLenToken {
	for n >= 1 {
		switch {
		case n < 3:
			for i := 0; i < n; i++ {
				tokens = append(tokens, codeLenToken{code: 0})
			}
			return tokens
		case n < 11:
			tokens = append(tokens, codeLenToken{code: repeatZerosShort, extra: uint8(n - 3)})
			return tokens
		case n < 139:
			tokens = append(tokens, codeLenToken{code: repeatZerosLong, extra: uint8(n - 11)})
			return tokens
		default:
			tokens = append(tokens, codeLenToken{code: repeatZerosLong, extra: 0x7f})
			n -= 138
		}
	}
	return tokens
}

func encodeValueRun(tokens []codeLenToken, n int, value, prev uint8) []codeLenToken {
	if value != prev {
		tokens = append(tokens, codeLenToken{code: value})
		n--
	}
	for n >= 1 {
		switch {
		case n < 3:
			for i := 0; i < n; i++ {
				tokens = append(tokens, codeLenToken{code: value})
			}
			return tokens
		case n < 7:
			tokens = append(tokens, codeLenToken{code: repeatPrev, extra: uint8(n - 3)})
			return tokens
		default:
			tokens = append(tokens, codeLenToken{code: repeatPrev, extra: 3})
			n -= 6
		}
	}
	return tokens
}

package vp8l

import (
	"github.com/andiray/webplossless/internal/bitio"
	"github.com/andiray/webplossless/internal/huffman"
)

// buildHistograms tallies every symbol a token stream will emit across the
// five VP8L alphabets: green carries literal green bytes, length-prefix
// codes, and color-cache codes in one combined alphabet; red/blue/alpha
// are literal-only; distance carries length's paired prefix code.
func buildHistograms(tokens []token, colorCacheBits, xsize int) [numHuffmanCodes][]uint32 {
	var hist [numHuffmanCodes][]uint32
	for i := huffIndex(0); i < numHuffmanCodes; i++ {
		hist[i] = make([]uint32, alphabetSize(i, colorCacheBits))
	}

	for _, t := range tokens {
		switch t.kind {
		case tokenLiteral:
			hist[huffGreen][(t.argb>>8)&0xff]++
			hist[huffRed][(t.argb>>16)&0xff]++
			hist[huffBlue][t.argb&0xff]++
			hist[huffAlpha][(t.argb>>24)&0xff]++
		case tokenCache:
			hist[huffGreen][numLiteralCodes+numLengthCodes+t.cacheIdx]++
		case tokenCopy:
			lengthCode, _, _ := prefixEncode(t.length)
			hist[huffGreen][numLiteralCodes+lengthCode]++
			planeCode := distanceToPlaneCode(xsize, t.distance)
			distCode, _, _ := prefixEncode(planeCode)
			hist[huffDist][distCode]++
		}
	}
	return hist
}

// writeHuffmanGroup builds a canonical tree per alphabet from hist, writes
// each tree's wire representation, and returns the trees for use by
// writeTokens.
func writeHuffmanGroup(w *bitio.Writer, hist [numHuffmanCodes][]uint32) [numHuffmanCodes]*huffman.Tree {
	var trees [numHuffmanCodes]*huffman.Tree
	for i := range hist {
		t := huffman.BuildTree(hist[i], huffman.MaxCodeLength)
		trees[i] = t
		huffman.WriteCode(w, t)
	}
	return trees
}

// writeSymbol emits symbol's code under t. A single-symbol alphabet is
// free: the matching decode table returns it for zero consumed bits (see
// huffman.BuildTable), so nothing is written here either.
func writeSymbol(w *bitio.Writer, t *huffman.Tree, symbol int) {
	if t.Single {
		return
	}
	c := t.Codes[symbol]
	w.WriteCode(huffman.ReverseBits(c.Bits, c.Depth), c.Depth)
}

// writeTokens emits the entropy-coded stream: each token's green-alphabet
// symbol (literal green byte, length-prefix code, or cache code) followed
// by whatever companion symbols/extra bits that token kind requires.
func writeTokens(w *bitio.Writer, tokens []token, trees [numHuffmanCodes]*huffman.Tree, xsize int) {
	for _, t := range tokens {
		switch t.kind {
		case tokenLiteral:
			writeSymbol(w, trees[huffGreen], int((t.argb>>8)&0xff))
			writeSymbol(w, trees[huffRed], int((t.argb>>16)&0xff))
			writeSymbol(w, trees[huffBlue], int(t.argb&0xff))
			writeSymbol(w, trees[huffAlpha], int((t.argb>>24)&0xff))

		case tokenCache:
			writeSymbol(w, trees[huffGreen], numLiteralCodes+numLengthCodes+t.cacheIdx)

		case tokenCopy:
			lengthCode, lengthExtraBits, lengthExtraVal := prefixEncode(t.length)
			writeSymbol(w, trees[huffGreen], numLiteralCodes+lengthCode)
			w.WriteBits(uint32(lengthExtraVal), lengthExtraBits)

			planeCode := distanceToPlaneCode(xsize, t.distance)
			distCode, distExtraBits, distExtraVal := prefixEncode(planeCode)
			writeSymbol(w, trees[huffDist], distCode)
			w.WriteBits(uint32(distExtraVal), distExtraBits)
		}
	}
}

package vp8l

import (
	"image"

	"github.com/andiray/webplossless/internal/bitio"
)

// EncodeNRGBA is a convenience wrapper returning the VP8L payload bytes
// for an *image.NRGBA (the bytes that follow the "VP8L" chunk's FourCC
// and length in a RIFF container).
func EncodeNRGBA(img *image.NRGBA) ([]byte, error) {
	pix, w, h := nrgbaToARGB(img)
	return Encode(pix, w, h)
}

// Encode compresses a row-major ARGB pixel buffer into a complete VP8L
// bitstream.
//
// Transform selection follows a fixed, reasonable-default policy: the
// color-indexing transform is used whenever the image has 256 or fewer
// unique colors; otherwise subtract-green followed by the spatial
// predictor is used. The cross-color transform is never emitted — it is
// an optional encoder-side optimization that does not affect decoder
// compatibility, and this encoder favors a simpler, single transform
// pipeline over chasing the extra compression it buys.
func Encode(pix []uint32, width, height int) ([]byte, error) {
	if width <= 0 || height <= 0 || width > 1<<imageSizeBits || height > 1<<imageSizeBits {
		return nil, ErrDimensions
	}

	w := bitio.NewWriter(len(pix) * 2)
	writeHeader(w, width, height, hasAlpha(pix))

	work := make([]uint32, len(pix))
	copy(work, pix)

	var transforms []pendingTransform
	workWidth := width

	if colors, ok := uniqueColors(work); ok {
		packed, packedWidth, meta := buildColorIndexTransform(work, width, height, colors)
		transforms = append(transforms, pendingTransform{
			kind: colorIndexingTransform,
			bits: paletteBitsFor(len(colors)),
			meta: meta,
			mw:   len(colors),
			mh:   1,
		})
		work = packed
		workWidth = packedWidth
	} else {
		subtractGreenForward(work)
		transforms = append(transforms, pendingTransform{kind: subtractGreenTransform})

		residual, modes := buildPredictorTransform(work, width, height)
		transforms = append(transforms, pendingTransform{
			kind: predictorTransform,
			bits: predictorTileBits,
			meta: modes,
			mw:   subsampleSize(width, predictorTileBits),
			mh:   subsampleSize(height, predictorTileBits),
		})
		work = residual
	}

	// Transforms are read by the decoder in the order written here and
	// then undone latest-first, so they must be written in forward
	// application order (the order they were applied above).
	for i := 0; i < len(transforms); i++ {
		writeTransform(w, transforms[i], width, height)
	}
	w.WriteBits(0, 1) // transform-prelude terminator

	colorCacheBits := 0
	if workWidth*height >= 16 {
		colorCacheBits = 8
	}
	writeImageStream(w, work, workWidth, height, colorCacheBits, true)

	w.AlignByte()
	return w.Bytes(), nil
}

func hasAlpha(pix []uint32) bool {
	for _, v := range pix {
		if v>>24 != 0xff {
			return true
		}
	}
	return false
}

func writeHeader(w *bitio.Writer, width, height int, alpha bool) {
	w.WriteBits(uint32(magicByte), 8)
	w.WriteBits(uint32(width-1), imageSizeBits)
	w.WriteBits(uint32(height-1), imageSizeBits)
	if alpha {
		w.WriteBits(1, 1)
	} else {
		w.WriteBits(0, 1)
	}
	w.WriteBits(version, versionBits)
}

// pendingTransform captures one forward transform's wire parameters ahead
// of emission, in the order each was applied to the working pixel buffer.
type pendingTransform struct {
	kind transformType
	bits int
	meta []uint32
	mw, mh int
}

func writeTransform(w *bitio.Writer, t pendingTransform, xsize, ysize int) {
	w.WriteBits(1, 1)
	w.WriteBits(uint32(t.kind), 2)

	switch t.kind {
	case predictorTransform, crossColorTransform:
		w.WriteBits(uint32(t.bits-minTransformBits), numTransformBits)
		writeImageStream(w, t.meta, t.mw, t.mh, 0, false)

	case colorIndexingTransform:
		w.WriteBits(uint32(t.mw-1), 8)
		writeImageStream(w, t.meta, t.mw, 1, 0, false)

	case subtractGreenTransform:
		// No auxiliary data.
	}
}

// writeImageStream emits one self-contained image-data block: an optional
// cache-bits header, the (level0-only) Huffman meta-image presence bit,
// the five Huffman code tables for a single tree group, and the entropy
// stream itself.
func writeImageStream(w *bitio.Writer, pix []uint32, width, height, colorCacheBits int, level0 bool) {
	if colorCacheBits > 0 {
		w.WriteBits(1, 1)
		w.WriteBits(uint32(colorCacheBits), 4)
	} else {
		w.WriteBits(0, 1)
	}

	if level0 {
		w.WriteBits(0, 1) // no Huffman meta-image: a single tree group
	}

	var cache *colorCache
	if colorCacheBits > 0 {
		cache = newColorCache(colorCacheBits)
	}
	tokens := generateTokens(pix, cache)

	hist := buildHistograms(tokens, colorCacheBits, width)
	trees := writeHuffmanGroup(w, hist)
	writeTokens(w, tokens, trees, width)
}

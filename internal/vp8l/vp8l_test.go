package vp8l

import (
	"math/rand"
	"testing"

	"github.com/andiray/webplossless/internal/bitio"
	"github.com/andiray/webplossless/internal/huffman"
)

func pixelsEqual(a, b []uint32) bool {
	if len(a) != len(b) {
		return false
	}
	for i := range a {
		if a[i] != b[i] {
			return false
		}
	}
	return true
}

func TestEncodeDecodeCheckerboard(t *testing.T) {
	const w, h = 16, 16
	pix := make([]uint32, w*h)
	for y := 0; y < h; y++ {
		for x := 0; x < w; x++ {
			if (x+y)%2 == 0 {
				pix[y*w+x] = 0xff000000
			} else {
				pix[y*w+x] = 0xffffffff
			}
		}
	}

	data, err := Encode(pix, w, h)
	if err != nil {
		t.Fatalf("Encode: %v", err)
	}
	got, gw, gh, err := Decode(data)
	if err != nil {
		t.Fatalf("Decode: %v", err)
	}
	if gw != w || gh != h {
		t.Fatalf("dimensions = %dx%d, want %dx%d", gw, gh, w, h)
	}
	if !pixelsEqual(got, pix) {
		t.Fatalf("round trip mismatch for checkerboard")
	}
}

func TestEncodeDecodeGradient(t *testing.T) {
	const w, h = 24, 24
	pix := make([]uint32, w*h)
	for y := 0; y < h; y++ {
		for x := 0; x < w; x++ {
			r := uint32(x * 255 / (w - 1))
			g := uint32(y * 255 / (h - 1))
			b := uint32((x + y) * 255 / (w + h - 2))
			pix[y*w+x] = 0xff000000 | r<<16 | g<<8 | b
		}
	}

	data, err := Encode(pix, w, h)
	if err != nil {
		t.Fatalf("Encode: %v", err)
	}
	got, _, _, err := Decode(data)
	if err != nil {
		t.Fatalf("Decode: %v", err)
	}
	if !pixelsEqual(got, pix) {
		t.Fatalf("round trip mismatch for gradient")
	}
}

func TestEncodeDecodeRandomNoise(t *testing.T) {
	const w, h = 20, 13
	rng := rand.New(rand.NewSource(1))
	pix := make([]uint32, w*h)
	for i := range pix {
		pix[i] = 0xff000000 | uint32(rng.Intn(1<<24))
	}

	data, err := Encode(pix, w, h)
	if err != nil {
		t.Fatalf("Encode: %v", err)
	}
	got, _, _, err := Decode(data)
	if err != nil {
		t.Fatalf("Decode: %v", err)
	}
	if !pixelsEqual(got, pix) {
		t.Fatalf("round trip mismatch for random noise")
	}
}

func TestEncodeDecodeWithAlpha(t *testing.T) {
	const w, h = 10, 10
	pix := make([]uint32, w*h)
	for y := 0; y < h; y++ {
		for x := 0; x < w; x++ {
			a := uint32(128)
			if x == y {
				a = 255
			}
			pix[y*w+x] = a<<24 | 0x00112233
		}
	}

	data, err := Encode(pix, w, h)
	if err != nil {
		t.Fatalf("Encode: %v", err)
	}
	got, _, _, err := Decode(data)
	if err != nil {
		t.Fatalf("Decode: %v", err)
	}
	if !pixelsEqual(got, pix) {
		t.Fatalf("round trip mismatch with alpha")
	}
}

func TestEncodeDecodeSolidColor(t *testing.T) {
	const w, h = 8, 8
	pix := make([]uint32, w*h)
	for i := range pix {
		pix[i] = 0xff336699
	}

	data, err := Encode(pix, w, h)
	if err != nil {
		t.Fatalf("Encode: %v", err)
	}
	got, _, _, err := Decode(data)
	if err != nil {
		t.Fatalf("Decode: %v", err)
	}
	if !pixelsEqual(got, pix) {
		t.Fatalf("round trip mismatch for solid color")
	}
}

func TestEncodeDecodeLargePalette(t *testing.T) {
	const w, h = 18, 18
	pix := make([]uint32, w*h)
	for y := 0; y < h; y++ {
		for x := 0; x < w; x++ {
			c := uint32((x*7 + y*13) % 200)
			pix[y*w+x] = 0xff000000 | c<<16 | c<<8 | c
		}
	}

	data, err := Encode(pix, w, h)
	if err != nil {
		t.Fatalf("Encode: %v", err)
	}
	got, _, _, err := Decode(data)
	if err != nil {
		t.Fatalf("Decode: %v", err)
	}
	if !pixelsEqual(got, pix) {
		t.Fatalf("round trip mismatch for large palette")
	}
}

func TestPredictorModesInvertible(t *testing.T) {
	left := uint32(0xff102030)
	top := uint32(0xff203040)
	topLeft := uint32(0xff304050)
	topRight := uint32(0xff102040)

	for mode := 0; mode < 14; mode++ {
		pred := predict(mode, left, top, topLeft, topRight)
		original := uint32(0xffaabbcc)
		residual := subPixels(original, pred)
		restored := addPixels(residual, pred)
		if restored != original {
			t.Errorf("mode %d: restored = %#x, want %#x", mode, restored, original)
		}
	}
}

func TestDistancePlaneCodeRoundTrip(t *testing.T) {
	xsize := 40
	for _, dist := range []int{1, 2, 3, 8, 40, 41, 79, 200, 1000} {
		code := distanceToPlaneCode(xsize, dist)
		got := planeCodeToDistance(xsize, code)
		if got != dist {
			t.Errorf("distance %d: round trip via code %d gave %d", dist, code, got)
		}
	}
}

// TestColorCacheIndexOverflowWithoutCache hand-assembles a 1x1 stream
// whose green alphabet is sized for a color-cache extension (per
// alphabetSize's unconditional 1<<colorCacheBits) but whose color-cache
// flag is off, so the only symbol that Huffman tree can produce — the
// first cache slot — has no cache to resolve against.
func TestColorCacheIndexOverflowWithoutCache(t *testing.T) {
	w := bitio.NewWriter(64)

	w.WriteBits(0, imageSizeBits) // width - 1 = 0
	w.WriteBits(0, imageSizeBits) // height - 1 = 0
	w.WriteBits(0, 1)             // no alpha hint
	w.WriteBits(version, versionBits)

	w.WriteBits(0, 1) // no transform
	w.WriteBits(0, 1) // no color cache
	w.WriteBits(0, 1) // no Huffman meta-image

	greenHist := make([]uint32, alphabetSize(huffGreen, 0))
	greenHist[numLiteralCodes+numLengthCodes] = 1 // first cache-slot symbol
	huffman.WriteCode(w, huffman.BuildTree(greenHist, huffman.MaxCodeLength))

	for _, idx := range []huffIndex{huffRed, huffBlue, huffAlpha, huffDist} {
		hist := make([]uint32, alphabetSize(idx, 0))
		hist[0] = 1
		huffman.WriteCode(w, huffman.BuildTree(hist, huffman.MaxCodeLength))
	}
	w.AlignByte()

	data := append([]byte{magicByte}, w.Bytes()...)
	data = append(data, make([]byte, 8)...) // trailing padding for the bit reader's prefetch

	if _, _, _, err := Decode(data); err != ErrBitstream {
		t.Fatalf("Decode: got %v, want ErrBitstream", err)
	}
}

func TestCopyCountRoundTrip(t *testing.T) {
	for _, length := range []int{1, 2, 3, 4, 5, 10, 100, 1000, 4095} {
		code, extraBits, extraVal := prefixEncode(length)
		symbol := code
		offset := 0
		if symbol >= 4 {
			eb := (symbol - 2) >> 1
			if eb != extraBits {
				t.Errorf("length %d: extraBits mismatch %d vs %d", length, eb, extraBits)
			}
			offset = (2 + (symbol & 1)) << uint(eb)
		}
		got := offset + extraVal + 1
		if symbol < 4 {
			got = symbol + 1
		}
		if got != length {
			t.Errorf("length %d round trip gave %d", length, got)
		}
	}
}

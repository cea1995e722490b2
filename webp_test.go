package webplossless

import (
	"bytes"
	"errors"
	"image"
	"image/color"
	"testing"

	"github.com/andiray/webplossless/internal/riff"
)

func solidImage(w, h int, c color.NRGBA) *image.NRGBA {
	img := image.NewNRGBA(image.Rect(0, 0, w, h))
	for y := 0; y < h; y++ {
		for x := 0; x < w; x++ {
			img.SetNRGBA(x, y, c)
		}
	}
	return img
}

// S1: solid red 4x4, lossless round trip.
func TestSolidRedRoundTrip(t *testing.T) {
	src := solidImage(4, 4, color.NRGBA{R: 255, G: 0, B: 0, A: 255})

	var buf bytes.Buffer
	if err := Encode(&buf, src, nil); err != nil {
		t.Fatalf("Encode: %v", err)
	}
	if !bytes.HasPrefix(buf.Bytes(), []byte("RIFF")) {
		t.Fatalf("output does not start with RIFF")
	}
	if buf.Len()%2 != 0 {
		t.Fatalf("RIFF container length must be even")
	}

	img, err := Decode(bytes.NewReader(buf.Bytes()))
	if err != nil {
		t.Fatalf("Decode: %v", err)
	}
	nrgba := img.(*image.NRGBA)
	got := nrgba.NRGBAAt(0, 0)
	want := color.NRGBA{R: 255, G: 0, B: 0, A: 255}
	if got != want {
		t.Fatalf("pixel(0,0) = %+v, want %+v", got, want)
	}
}

// S2: two-color checkerboard, palette path.
func TestCheckerboardRoundTrip(t *testing.T) {
	src := image.NewNRGBA(image.Rect(0, 0, 8, 8))
	for y := 0; y < 8; y++ {
		for x := 0; x < 8; x++ {
			if (x+y)%2 == 0 {
				src.SetNRGBA(x, y, color.NRGBA{A: 255})
			} else {
				src.SetNRGBA(x, y, color.NRGBA{R: 255, G: 255, B: 255, A: 255})
			}
		}
	}

	var buf bytes.Buffer
	if err := Encode(&buf, src, nil); err != nil {
		t.Fatalf("Encode: %v", err)
	}
	img, err := Decode(bytes.NewReader(buf.Bytes()))
	if err != nil {
		t.Fatalf("Decode: %v", err)
	}
	got := img.(*image.NRGBA)
	for y := 0; y < 8; y++ {
		for x := 0; x < 8; x++ {
			if got.NRGBAAt(x, y) != src.NRGBAAt(x, y) {
				t.Fatalf("pixel(%d,%d) mismatch", x, y)
			}
		}
	}
}

// S3: 16x16 gradient. It has exactly 256 unique colors, so the encoder
// takes the color-indexing (palette) path.
func TestGradientRoundTrip(t *testing.T) {
	src := image.NewNRGBA(image.Rect(0, 0, 16, 16))
	for y := 0; y < 16; y++ {
		for x := 0; x < 16; x++ {
			src.SetNRGBA(x, y, color.NRGBA{R: uint8(x * 16), G: uint8(y * 16), B: 0, A: 255})
		}
	}

	var buf bytes.Buffer
	if err := Encode(&buf, src, nil); err != nil {
		t.Fatalf("Encode: %v", err)
	}
	img, err := Decode(bytes.NewReader(buf.Bytes()))
	if err != nil {
		t.Fatalf("Decode: %v", err)
	}
	got := img.(*image.NRGBA)
	for y := 0; y < 16; y++ {
		for x := 0; x < 16; x++ {
			if got.NRGBAAt(x, y) != src.NRGBAAt(x, y) {
				t.Fatalf("pixel(%d,%d) mismatch", x, y)
			}
		}
	}
}

// S4: semi-transparent pixel preserved exactly.
func TestSemiTransparentPixelPreserved(t *testing.T) {
	src := image.NewNRGBA(image.Rect(0, 0, 2, 2))
	src.SetNRGBA(0, 0, color.NRGBA{R: 255, G: 0, B: 0, A: 128})
	src.SetNRGBA(1, 0, color.NRGBA{A: 255})
	src.SetNRGBA(0, 1, color.NRGBA{A: 255})
	src.SetNRGBA(1, 1, color.NRGBA{A: 255})

	var buf bytes.Buffer
	if err := Encode(&buf, src, nil); err != nil {
		t.Fatalf("Encode: %v", err)
	}
	img, err := Decode(bytes.NewReader(buf.Bytes()))
	if err != nil {
		t.Fatalf("Decode: %v", err)
	}
	got := img.(*image.NRGBA).NRGBAAt(0, 0)
	if got.A != 128 {
		t.Fatalf("alpha = %d, want 128", got.A)
	}
}

// S5: malformed RIFF header.
func TestMalformedRIFFHeader(t *testing.T) {
	_, err := Decode(bytes.NewReader([]byte("INVALID DATA HERE......")))
	if !errors.Is(err, ErrMissingRIFFHeader) {
		t.Fatalf("err = %v, want ErrMissingRIFFHeader", err)
	}
}

// S6: VP8 lossy input is rejected distinctly, not treated as a format error.
func TestLossyChunkRejected(t *testing.T) {
	data := []byte("RIFF\x14\x00\x00\x00WEBPVP8 \x08\x00\x00\x00aaaaaaaa")
	_, err := Decode(bytes.NewReader(data))
	if !errors.Is(err, ErrLossyUnsupported) {
		t.Fatalf("err = %v, want ErrLossyUnsupported", err)
	}
}

// S7: known 8x8 opaque header bytes.
func TestKnownHeaderBytes(t *testing.T) {
	src := image.NewNRGBA(image.Rect(0, 0, 8, 8))
	for y := 0; y < 8; y++ {
		for x := 0; x < 8; x++ {
			src.SetNRGBA(x, y, color.NRGBA{R: 10, G: 20, B: 30, A: 255})
		}
	}

	var buf bytes.Buffer
	if err := Encode(&buf, src, nil); err != nil {
		t.Fatalf("Encode: %v", err)
	}

	data := buf.Bytes()
	vp8lOff := bytes.Index(data, []byte("VP8L"))
	if vp8lOff < 0 {
		t.Fatalf("no VP8L chunk found")
	}
	header := data[vp8lOff+8 : vp8lOff+13]
	want := []byte{0x2f, 0x07, 0xc0, 0x01, 0x00}
	if !bytes.Equal(header, want) {
		t.Fatalf("header = % x, want % x", header, want)
	}
}

func TestDecodeConfig(t *testing.T) {
	src := solidImage(5, 7, color.NRGBA{R: 1, G: 2, B: 3, A: 255})
	var buf bytes.Buffer
	if err := Encode(&buf, src, nil); err != nil {
		t.Fatalf("Encode: %v", err)
	}
	cfg, err := DecodeConfig(bytes.NewReader(buf.Bytes()))
	if err != nil {
		t.Fatalf("DecodeConfig: %v", err)
	}
	if cfg.Width != 5 || cfg.Height != 7 {
		t.Fatalf("config = %dx%d, want 5x7", cfg.Width, cfg.Height)
	}
}

// S8: a VP8X+ALPH+VP8L container composites the ALPH plane's alpha onto
// the VP8L-decoded (opaque) RGB, rather than trusting VP8L's own alpha.
func TestAlphaChunkCompositedOntoVP8L(t *testing.T) {
	const w, h = 4, 4
	src := image.NewNRGBA(image.Rect(0, 0, w, h))
	for y := 0; y < h; y++ {
		for x := 0; x < w; x++ {
			src.SetNRGBA(x, y, color.NRGBA{R: uint8(x * 50), G: uint8(y * 50), B: 7, A: 255})
		}
	}

	var plain bytes.Buffer
	if err := Encode(&plain, src, nil); err != nil {
		t.Fatalf("Encode: %v", err)
	}
	data := plain.Bytes()
	vp8lOff := bytes.Index(data, []byte("VP8L"))
	if vp8lOff < 0 {
		t.Fatalf("no VP8L chunk found")
	}
	length := uint32(data[vp8lOff+4]) | uint32(data[vp8lOff+5])<<8 | uint32(data[vp8lOff+6])<<16 | uint32(data[vp8lOff+7])<<24
	vp8lPayload := data[vp8lOff+8 : vp8lOff+8+int(length)]

	alphaPayload := make([]byte, 1+w*h) // method=none, filter=none
	for i := 0; i < w*h; i++ {
		alphaPayload[1+i] = uint8(i * 16)
	}

	container := riff.Write([]riff.ChunkPayload{
		{FourCC: "VP8X", Data: encodeVP8X(w, h, true)},
		{FourCC: "ALPH", Data: alphaPayload},
		{FourCC: "VP8L", Data: vp8lPayload},
	})

	img, err := Decode(bytes.NewReader(container))
	if err != nil {
		t.Fatalf("Decode: %v", err)
	}
	got := img.(*image.NRGBA)
	for y := 0; y < h; y++ {
		for x := 0; x < w; x++ {
			wantRGB := src.NRGBAAt(x, y)
			wantA := uint8((y*w + x) * 16)
			gotPix := got.NRGBAAt(x, y)
			if gotPix.R != wantRGB.R || gotPix.G != wantRGB.G || gotPix.B != wantRGB.B {
				t.Fatalf("pixel(%d,%d) rgb = %+v, want %+v", x, y, gotPix, wantRGB)
			}
			if gotPix.A != wantA {
				t.Fatalf("pixel(%d,%d) alpha = %d, want %d", x, y, gotPix.A, wantA)
			}
		}
	}
}

func TestGetFeaturesExtendedFormat(t *testing.T) {
	src := solidImage(3, 3, color.NRGBA{R: 1, G: 2, B: 3, A: 255})
	var buf bytes.Buffer
	if err := Encode(&buf, src, &EncoderOptions{UseExtendedFormat: true}); err != nil {
		t.Fatalf("Encode: %v", err)
	}
	feat, err := GetFeatures(bytes.NewReader(buf.Bytes()))
	if err != nil {
		t.Fatalf("GetFeatures: %v", err)
	}
	if feat.Format != "extended" {
		t.Fatalf("format = %q, want extended", feat.Format)
	}
	if feat.Width != 3 || feat.Height != 3 {
		t.Fatalf("dimensions = %dx%d, want 3x3", feat.Width, feat.Height)
	}
}

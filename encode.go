package webplossless

import (
	"fmt"
	"image"
	"io"

	"github.com/andiray/webplossless/internal/riff"
	"github.com/andiray/webplossless/internal/vp8l"
)

// EncoderOptions controls lossless WebP encoding. UseExtendedFormat is the
// only recognized option: when set, a VP8X chunk precedes the VP8L chunk,
// recording the alpha-used flag and canvas dimensions explicitly.
type EncoderOptions struct {
	UseExtendedFormat bool
}

// DefaultOptions returns the default encoder configuration: no VP8X chunk.
func DefaultOptions() *EncoderOptions {
	return &EncoderOptions{}
}

// Encode writes img to w as a lossless WebP file.
func Encode(w io.Writer, img image.Image, opts *EncoderOptions) error {
	if opts == nil {
		opts = DefaultOptions()
	}

	nrgba := toNRGBA(img)
	b := nrgba.Bounds()
	width, height := b.Dx(), b.Dy()

	pix := make([]uint32, width*height)
	hasAlpha := false
	for y := 0; y < height; y++ {
		for x := 0; x < width; x++ {
			c := nrgba.NRGBAAt(b.Min.X+x, b.Min.Y+y)
			pix[y*width+x] = uint32(c.A)<<24 | uint32(c.R)<<16 | uint32(c.G)<<8 | uint32(c.B)
			if c.A != 255 {
				hasAlpha = true
			}
		}
	}

	payload, err := vp8l.Encode(pix, width, height)
	if err != nil {
		return fmt.Errorf("webp: %w", err)
	}

	var chunkList []riff.ChunkPayload
	if opts.UseExtendedFormat {
		chunkList = append(chunkList, riff.ChunkPayload{FourCC: "VP8X", Data: encodeVP8X(width, height, hasAlpha)})
	}
	chunkList = append(chunkList, riff.ChunkPayload{FourCC: "VP8L", Data: payload})

	_, err = w.Write(riff.Write(chunkList))
	return err
}

// toNRGBA converts any image.Image to *image.NRGBA, copying only when img
// isn't already one.
func toNRGBA(img image.Image) *image.NRGBA {
	if n, ok := img.(*image.NRGBA); ok {
		return n
	}
	b := img.Bounds()
	out := image.NewNRGBA(image.Rect(0, 0, b.Dx(), b.Dy()))
	for y := b.Min.Y; y < b.Max.Y; y++ {
		for x := b.Min.X; x < b.Max.X; x++ {
			out.Set(x-b.Min.X, y-b.Min.Y, img.At(x, y))
		}
	}
	return out
}

func encodeVP8X(width, height int, hasAlpha bool) []byte {
	buf := make([]byte, 10)
	if hasAlpha {
		buf[0] |= 0x10
	}
	w, h := uint32(width-1), uint32(height-1)
	buf[4], buf[5], buf[6] = byte(w), byte(w>>8), byte(w>>16)
	buf[7], buf[8], buf[9] = byte(h), byte(h>>8), byte(h>>16)
	return buf
}

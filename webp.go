package webplossless

import (
	"bytes"
	"errors"
	"fmt"
	"image"
	"image/color"
	"io"

	"github.com/andiray/webplossless/internal/riff"
	"github.com/andiray/webplossless/internal/vp8l"
)

// Features describes a WebP file's properties, as returned by GetFeatures.
type Features struct {
	Width    int
	Height   int
	HasAlpha bool
	Format   string // "lossless" or "extended"; lossy files fail with ErrLossyUnsupported
}

func readAll(r io.Reader) ([]byte, error) {
	if br, ok := r.(interface{ Len() int }); ok {
		n := br.Len()
		if n > 0 {
			buf := make([]byte, n)
			_, err := io.ReadFull(r, buf)
			return buf, err
		}
	}
	return io.ReadAll(r)
}

// Decode reads a WebP image from r and returns it as an *image.NRGBA.
// Only the lossless (VP8L) codec path is implemented; a "VP8 " (lossy)
// chunk fails with ErrLossyUnsupported.
func Decode(r io.Reader) (image.Image, error) {
	data, err := readAll(r)
	if err != nil {
		return nil, fmt.Errorf("webp: %w", ErrUnexpectedEOF)
	}
	return decodeBytes(data)
}

// DecodeConfig returns the color model and dimensions of a WebP image
// without decoding pixel data.
func DecodeConfig(r io.Reader) (image.Config, error) {
	data, err := readAll(r)
	if err != nil {
		return image.Config{}, fmt.Errorf("webp: %w", ErrUnexpectedEOF)
	}
	feat, err := parseFeatures(data)
	if err != nil {
		return image.Config{}, err
	}
	return image.Config{ColorModel: color.NRGBAModel, Width: feat.Width, Height: feat.Height}, nil
}

// GetFeatures reads a WebP file's dimensions, alpha flag, and container
// format without decoding its pixel data.
func GetFeatures(r io.Reader) (*Features, error) {
	data, err := readAll(r)
	if err != nil {
		return nil, fmt.Errorf("webp: %w", ErrUnexpectedEOF)
	}
	return parseFeatures(data)
}

// chunks holds the pieces of a parsed WEBP form relevant to this package:
// an optional VP8X canvas header, at most one ALPH payload, and at most
// one of a VP8L payload or a "VP8 " (lossy, unsupported) marker.
type chunks struct {
	sawVP8X    bool
	canvasW    int
	canvasH    int
	vp8xAlpha  bool
	alphaData  []byte
	vp8lData   []byte
	sawLossy   bool
}

func readChunks(data []byte) (chunks, error) {
	var c chunks

	form, rr, err := riff.Open(bytes.NewReader(data))
	if err != nil {
		return c, err
	}
	if form != "WEBP" {
		return c, ErrNotAWEBPFile
	}

	for {
		chunk, err := rr.Next()
		if errors.Is(err, io.EOF) {
			break
		}
		if err != nil {
			return c, err
		}

		switch chunk.FourCC.String() {
		case "VP8X":
			if c.sawVP8X {
				return c, ErrDuplicateVP8XChunk
			}
			c.sawVP8X = true
			buf, err := io.ReadAll(chunk.Payload)
			if err != nil || len(buf) < 10 {
				return c, ErrInvalidVP8XChunkSize
			}
			c.vp8xAlpha = buf[0]&0x10 != 0
			c.canvasW = (int(buf[4]) | int(buf[5])<<8 | int(buf[6])<<16) + 1
			c.canvasH = (int(buf[7]) | int(buf[8])<<8 | int(buf[9])<<16) + 1

		case "ALPH":
			if !c.sawVP8X || !c.vp8xAlpha {
				return c, ErrUnexpectedALPHChunk
			}
			if c.alphaData != nil || c.vp8lData != nil || c.sawLossy {
				return c, ErrUnexpectedALPHChunk
			}
			buf, err := io.ReadAll(chunk.Payload)
			if err != nil {
				return c, ErrInvalidALPHChunk
			}
			c.alphaData = buf

		case "VP8L":
			if c.vp8lData != nil || c.sawLossy {
				return c, ErrInvalidVP8LHeader
			}
			buf, err := io.ReadAll(chunk.Payload)
			if err != nil {
				return c, ErrShortChunkData
			}
			c.vp8lData = buf

		case "VP8 ":
			if c.vp8lData != nil || c.sawLossy {
				return c, ErrLossyUnsupported
			}
			c.sawLossy = true

		default:
			// Unknown chunks are skipped; Next() discards the unread
			// payload (and pad byte) before the following header read.
		}
	}

	return c, nil
}

func parseFeatures(data []byte) (*Features, error) {
	c, err := readChunks(data)
	if err != nil {
		return nil, err
	}
	if c.sawLossy {
		return nil, ErrLossyUnsupported
	}
	if c.vp8lData == nil {
		return nil, ErrInvalidVP8LHeader
	}

	w, h, alpha, err := vp8l.PeekHeader(c.vp8lData)
	if err != nil {
		return nil, mapVP8LError(err)
	}
	format := "lossless"
	if c.sawVP8X {
		format = "extended"
		w, h = c.canvasW, c.canvasH
	}
	return &Features{Width: w, Height: h, HasAlpha: alpha, Format: format}, nil
}

func decodeBytes(data []byte) (image.Image, error) {
	c, err := readChunks(data)
	if err != nil {
		return nil, err
	}
	if c.sawLossy {
		return nil, ErrLossyUnsupported
	}
	if c.vp8lData == nil {
		return nil, ErrInvalidVP8LHeader
	}

	img, err := vp8l.DecodeNRGBA(c.vp8lData)
	if err != nil {
		return nil, mapVP8LError(err)
	}

	if c.alphaData != nil {
		b := img.Bounds()
		plane, err := DecodeAlpha(c.alphaData, b.Dx(), b.Dy())
		if err != nil {
			return nil, err
		}
		for y := 0; y < b.Dy(); y++ {
			row := img.Pix[y*img.Stride : y*img.Stride+b.Dx()*4]
			alphaRow := plane[y*b.Dx() : (y+1)*b.Dx()]
			for x := 0; x < b.Dx(); x++ {
				row[x*4+3] = alphaRow[x]
			}
		}
	}

	return img, nil
}

func mapVP8LError(err error) error {
	switch {
	case errors.Is(err, vp8l.ErrBadSignature):
		return ErrInvalidVP8LHeader
	case errors.Is(err, vp8l.ErrBadVersion):
		return ErrInvalidVP8LVersion
	case errors.Is(err, vp8l.ErrDimensions):
		return ErrDimensionsOutOfRange
	case errors.Is(err, vp8l.ErrBitstream):
		return ErrInvalidHuffmanTree
	default:
		return err
	}
}

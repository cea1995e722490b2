package vp8l

import (
	"errors"
	"image"

	"github.com/andiray/webplossless/internal/bitio"
)

var (
	ErrBadSignature = errors.New("vp8l: bad signature byte")
	ErrBadVersion   = errors.New("vp8l: unsupported version")
	ErrBitstream    = errors.New("vp8l: bitstream error")
	ErrDimensions   = errors.New("vp8l: invalid image dimensions")
)

// decoder holds the working state of a single VP8L decode call.
type decoder struct {
	br *bitio.Reader

	width, height int
	hasAlpha      bool

	// transformWidth is the working width after all transforms have been
	// read; color-indexing can pack several pixels per output word,
	// shrinking it relative to width.
	transformWidth int

	transforms     [numTransforms]transform
	nextTransform  int
	transformsSeen uint32

	colorCacheBits int
	cache          *colorCache

	huffmanImage         []uint32
	huffmanSubsampleBits int
	huffmanXSize         int
	huffmanMask          int
	groups               []htreeGroup
}

// Decode reads a complete VP8L payload (the bytes following the "VP8L"
// chunk's FourCC and length) and returns the decoded image as ARGB words
// in row-major order together with its dimensions.
func Decode(data []byte) (pix []uint32, width, height int, err error) {
	dec := &decoder{}
	if err := dec.decodeHeader(data); err != nil {
		return nil, 0, 0, err
	}
	if err := dec.decodeImageStream(dec.width, dec.height, true); err != nil {
		return nil, 0, 0, err
	}

	tw := dec.transformWidth
	if tw == 0 {
		tw = dec.width
	}
	raw := make([]uint32, tw*dec.height)
	if err := dec.decodeImageData(raw, tw, dec.height); err != nil {
		return nil, 0, 0, err
	}

	out := dec.applyInverseTransforms(raw, dec.width*dec.height)
	return out, dec.width, dec.height, nil
}

// PeekHeader reads just the 5-byte VP8L header and returns the image's
// dimensions and alpha hint without decoding any pixel data.
func PeekHeader(data []byte) (width, height int, hasAlpha bool, err error) {
	dec := &decoder{}
	if err := dec.decodeHeader(data); err != nil {
		return 0, 0, false, err
	}
	return dec.width, dec.height, dec.hasAlpha, nil
}

// DecodeNRGBA is a convenience wrapper returning an *image.NRGBA directly.
func DecodeNRGBA(data []byte) (*image.NRGBA, error) {
	pix, w, h, err := Decode(data)
	if err != nil {
		return nil, err
	}
	return argbToNRGBA(pix, w, h), nil
}

func (dec *decoder) decodeHeader(data []byte) error {
	if len(data) < headerSize {
		return ErrBadSignature
	}
	if data[0] != magicByte {
		return ErrBadSignature
	}
	dec.br = bitio.NewReader(data[1:])
	dec.br.FillBitWindow()
	dec.width = int(dec.br.ReadBits(imageSizeBits)) + 1
	dec.br.FillBitWindow()
	dec.height = int(dec.br.ReadBits(imageSizeBits)) + 1
	dec.hasAlpha = dec.br.ReadBits(1) != 0
	ver := dec.br.ReadBits(versionBits)
	if ver != version {
		return ErrBadVersion
	}
	if dec.br.IsEndOfStream() {
		return ErrBitstream
	}
	return nil
}

// decodeImageStream reads the transform prelude (level-0 only), the
// color-cache flag, and the Huffman code groups for one image level.
func (dec *decoder) decodeImageStream(xsize, ysize int, level0 bool) error {
	txsize, tysize := xsize, ysize

	if level0 {
		for dec.br.ReadBits(1) == 1 {
			var err error
			txsize, err = dec.readTransform(txsize, tysize)
			if err != nil {
				return err
			}
		}
	}

	colorCacheBits := 0
	if dec.br.ReadBits(1) == 1 {
		colorCacheBits = int(dec.br.ReadBits(4))
		if colorCacheBits < 1 || colorCacheBits > maxCacheBits {
			return ErrBitstream
		}
	}

	if err := dec.readHuffmanCodes(txsize, tysize, colorCacheBits, level0); err != nil {
		return err
	}

	dec.colorCacheBits = colorCacheBits
	if colorCacheBits > 0 {
		dec.cache = newColorCache(colorCacheBits)
	} else {
		dec.cache = nil
	}

	dec.updateWorkingWidth(txsize)
	return nil
}

// decodeSubImage decodes a fully self-contained nested image (used for
// transform metadata and the Huffman meta-image), recursing through
// decodeImageStream with recursion disallowed for the nested level.
func (dec *decoder) decodeSubImage(xsize, ysize int) ([]uint32, error) {
	saved := *dec
	dec.huffmanImage = nil
	dec.groups = nil
	dec.cache = nil

	if err := dec.decodeImageStream(xsize, ysize, false); err != nil {
		*dec = saved
		return nil, err
	}
	data := make([]uint32, xsize*ysize)
	if err := dec.decodeImageData(data, xsize, ysize); err != nil {
		*dec = saved
		return nil, err
	}
	*dec = saved
	return data, nil
}

func (dec *decoder) updateWorkingWidth(width int) {
	dec.transformWidth = width
	bits := dec.huffmanSubsampleBits
	dec.huffmanXSize = subsampleSize(width, bits)
	if bits == 0 {
		dec.huffmanMask = ^0
	} else {
		dec.huffmanMask = (1 << bits) - 1
	}
}

// argbToNRGBA converts a row-major ARGB buffer (alpha in bits 31..24, red
// 23..16, green 15..8, blue 7..0) to a standard-library NRGBA image.
func argbToNRGBA(pixels []uint32, width, height int) *image.NRGBA {
	img := image.NewNRGBA(image.Rect(0, 0, width, height))
	stride := img.Stride
	for y := 0; y < height; y++ {
		row := pixels[y*width : (y+1)*width]
		dst := img.Pix[y*stride : y*stride+width*4]
		for x, argb := range row {
			off := x * 4
			dst[off+0] = uint8(argb >> 16)
			dst[off+1] = uint8(argb >> 8)
			dst[off+2] = uint8(argb)
			dst[off+3] = uint8(argb >> 24)
		}
	}
	return img
}

// nrgbaToARGB converts a standard-library NRGBA image back into a
// row-major ARGB buffer for encoding.
func nrgbaToARGB(img *image.NRGBA) ([]uint32, int, int) {
	b := img.Bounds()
	w, h := b.Dx(), b.Dy()
	pix := make([]uint32, w*h)
	for y := 0; y < h; y++ {
		for x := 0; x < w; x++ {
			c := img.NRGBAAt(b.Min.X+x, b.Min.Y+y)
			pix[y*w+x] = uint32(c.A)<<24 | uint32(c.R)<<16 | uint32(c.G)<<8 | uint32(c.B)
		}
	}
	return pix, w, h
}

package webplossless

import "github.com/andiray/webplossless/internal/vp8l"

// Alpha compression methods, the low two bits of an ALPH chunk's first byte.
const (
	alphaCompressionNone = 0
	alphaCompressionVP8L = 1
)

// Alpha filter methods, bits 2-3 of an ALPH chunk's first byte.
const (
	alphaFilterNone = iota
	alphaFilterHorizontal
	alphaFilterVertical
	alphaFilterGradient
)

// DecodeAlpha decodes an ALPH chunk's payload into a width*height single-
// channel alpha plane, reversing whatever row filter the encoder applied.
// A synthetic-VP8L-compressed payload is decoded through the ordinary
// VP8L path, using the outer canvas dimensions for the synthetic header
// the adapter constructs; only the green channel of the result carries
// the alpha value.
func DecodeAlpha(payload []byte, width, height int) ([]byte, error) {
	if len(payload) < 1 {
		return nil, ErrInvalidALPHChunk
	}
	method := payload[0] & 0x03
	filter := (payload[0] >> 2) & 0x03
	body := payload[1:]

	var plane []byte
	switch method {
	case alphaCompressionNone:
		if len(body) < width*height {
			return nil, ErrInvalidAlphaDimensions
		}
		plane = make([]byte, width*height)
		copy(plane, body)

	case alphaCompressionVP8L:
		header := syntheticVP8LHeader(width, height)
		pix, w, h, err := vp8l.Decode(append(header, body...))
		if err != nil {
			return nil, mapVP8LError(err)
		}
		if w != width || h != height {
			return nil, ErrInvalidAlphaDimensions
		}
		plane = make([]byte, width*height)
		for i, argb := range pix {
			plane[i] = byte(argb >> 8) // green channel carries alpha
		}

	default:
		return nil, ErrInvalidAlphaCompression
	}

	reverseAlphaFilter(plane, width, height, filter)
	return plane, nil
}

// syntheticVP8LHeader builds a 5-byte VP8L header (magic byte, width-1,
// height-1, alpha hint, version) around the outer canvas dimensions, the
// same header shape the real codec would have produced had the alpha
// plane been stored as an ordinary single-channel lossless image.
func syntheticVP8LHeader(width, height int) []byte {
	bits := uint32(width-1) | uint32(height-1)<<14
	return []byte{
		0x2f,
		byte(bits),
		byte(bits >> 8),
		byte(bits >> 16),
		byte(bits >> 24), // high height-1 bits; alpha-hint=0, version=0 share this byte
	}
}

// reverseAlphaFilter undoes the row-prediction filter the encoder applied
// to an alpha plane, in place.
func reverseAlphaFilter(plane []byte, width, height int, filter byte) {
	switch filter {
	case alphaFilterNone:
		return
	case alphaFilterHorizontal:
		for y := 0; y < height; y++ {
			row := plane[y*width : (y+1)*width]
			if y > 0 {
				row[0] += plane[(y-1)*width]
			}
			for x := 1; x < width; x++ {
				row[x] += row[x-1]
			}
		}
	case alphaFilterVertical:
		row0 := plane[:width]
		for x := 1; x < width; x++ {
			row0[x] += row0[x-1]
		}
		for y := 1; y < height; y++ {
			row := plane[y*width : (y+1)*width]
			prev := plane[(y-1)*width : y*width]
			for x := 0; x < width; x++ {
				row[x] += prev[x]
			}
		}
	case alphaFilterGradient:
		for y := 0; y < height; y++ {
			row := plane[y*width : (y+1)*width]
			for x := 0; x < width; x++ {
				var left, top, topLeft int
				if x > 0 {
					left = int(row[x-1])
				}
				if y > 0 {
					top = int(plane[(y-1)*width+x])
				}
				if x > 0 && y > 0 {
					topLeft = int(plane[(y-1)*width+x-1])
				}
				pred := left + top - topLeft
				if pred < 0 {
					pred = 0
				} else if pred > 255 {
					pred = 255
				}
				row[x] += byte(pred)
			}
		}
	}
}

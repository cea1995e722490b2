// Package vp8l implements the VP8L (WebP lossless) bitstream: header
// parsing, the four image-wide transforms, and the Huffman/LZ77/color-cache
// entropy layer, in both decode and encode directions.
package vp8l

const (
	magicByte     = 0x2f
	versionBits   = 3
	version       = 0
	imageSizeBits = 14
	headerSize    = 5

	numLiteralCodes  = 256
	numLengthCodes   = 24
	numDistanceCodes = 40
	numHuffmanCodes  = 5 // green+length, red, blue, alpha, distance

	maxCacheBits = 11

	minHuffmanBits   = 2
	numHuffmanBits   = 3
	minTransformBits = 2
	numTransformBits = 3

	numTransforms = 4

	argbBlack = 0xff000000
)

// huffIndex enumerates the five Huffman trees making up one meta-code group.
type huffIndex int

const (
	huffGreen huffIndex = iota
	huffRed
	huffBlue
	huffAlpha
	huffDist
)

// baseAlphabetSize gives each tree's alphabet size before the green tree's
// color-cache extension is added.
var baseAlphabetSize = [numHuffmanCodes]int{
	numLiteralCodes + numLengthCodes,
	numLiteralCodes,
	numLiteralCodes,
	numLiteralCodes,
	numDistanceCodes,
}

func alphabetSize(idx huffIndex, colorCacheBits int) int {
	size := baseAlphabetSize[idx]
	if idx == huffGreen {
		size += 1 << colorCacheBits
	}
	return size
}

// codeToPlane maps a 1-based distance code to a packed (yoffset, xoffset)
// byte: yoffset = value>>4, xoffset = 8-(value&0xf). The 120 closest
// (dx, dy) offsets are special-cased this way; farther distances are coded
// as a plain pixel count.
const codeToPlaneCodesCount = 120

var codeToPlane = [codeToPlaneCodesCount]uint8{
	0x18, 0x07, 0x17, 0x19, 0x28, 0x06, 0x27, 0x29, 0x16, 0x1a,
	0x26, 0x2a, 0x38, 0x05, 0x37, 0x39, 0x15, 0x1b, 0x36, 0x3a,
	0x25, 0x2b, 0x48, 0x04, 0x47, 0x49, 0x14, 0x1c, 0x35, 0x3b,
	0x46, 0x4a, 0x24, 0x2c, 0x58, 0x45, 0x4b, 0x34, 0x3c, 0x03,
	0x57, 0x59, 0x13, 0x1d, 0x56, 0x5a, 0x23, 0x2d, 0x44, 0x4c,
	0x55, 0x5b, 0x33, 0x3d, 0x68, 0x02, 0x67, 0x69, 0x12, 0x1e,
	0x66, 0x6a, 0x22, 0x2e, 0x54, 0x5c, 0x43, 0x4d, 0x65, 0x6b,
	0x32, 0x3e, 0x78, 0x01, 0x77, 0x79, 0x53, 0x5d, 0x11, 0x1f,
	0x64, 0x6c, 0x42, 0x4e, 0x76, 0x7a, 0x21, 0x2f, 0x75, 0x7b,
	0x31, 0x3f, 0x63, 0x6d, 0x52, 0x5e, 0x00, 0x74, 0x7c, 0x41,
	0x4f, 0x10, 0x20, 0x62, 0x6e, 0x30, 0x73, 0x7d, 0x51, 0x5f,
	0x40, 0x72, 0x7e, 0x61, 0x6f, 0x50, 0x71, 0x7f, 0x60, 0x70,
}

// planeCodeToDistance converts a VP8L distance code to an actual pixel
// distance, given the image width.
func planeCodeToDistance(xsize, planeCode int) int {
	if planeCode <= 0 {
		return 1
	}
	if planeCode > codeToPlaneCodesCount {
		return planeCode - codeToPlaneCodesCount
	}
	packed := codeToPlane[planeCode-1]
	yoffset := int(packed >> 4)
	xoffset := 8 - int(packed&0xf)
	dist := yoffset*xsize + xoffset
	if dist < 1 {
		return 1
	}
	return dist
}

// distanceToPlaneCode is the encoder-side inverse of planeCodeToDistance:
// it finds the 1-based plane code for a pixel distance at the given width,
// falling back to a raw pixel-count code for offsets outside the 120-entry
// table.
func distanceToPlaneCode(xsize, dist int) int {
	for code := 1; code <= codeToPlaneCodesCount; code++ {
		if planeCodeToDistance(xsize, code) == dist {
			packed := codeToPlane[code-1]
			yoffset := int(packed >> 4)
			xoffset := 8 - int(packed&0xf)
			if yoffset*xsize+xoffset == dist {
				return code
			}
		}
	}
	return dist + codeToPlaneCodesCount
}

// prefixEncode computes the VP8L prefix code, extra-bit count, and extra
// bits value for a 1-based length or distance. Symbols 0..3 encode values
// 1..4 directly; larger values are split into a log2 "bucket" (code) plus
// extraBits of linear offset within the bucket.
func prefixEncode(value int) (code, extraBits, extraBitsValue int) {
	value-- // 0-based
	if value < 4 {
		return value, 0, 0
	}
	highestBit := log2Floor(value)
	secondBit := (value >> (highestBit - 1)) & 1
	extraBits = highestBit - 1
	extraBitsValue = value & ((1 << extraBits) - 1)
	code = 2*highestBit + secondBit
	return code, extraBits, extraBitsValue
}

func log2Floor(n int) int {
	log := 0
	for n > 1 {
		log++
		n >>= 1
	}
	return log
}

// subsampleSize returns ceil(size / 2^bits).
func subsampleSize(size, bits int) int {
	return (size + (1 << bits) - 1) >> bits
}

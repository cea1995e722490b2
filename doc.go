// Package webplossless implements the lossless corner of the WebP image
// format: RIFF container framing, the VP8L bitstream (entropy coding,
// LZ77 backward references, a color cache, and the four image-wide
// transforms), and the ALPH chunk used to carry a lossy image's alpha
// plane. It registers itself with the standard library's image package
// so that image.Decode can transparently read lossless and alpha-bearing
// WebP files; lossy (VP8) color planes are not decoded.
package webplossless

import "image"

func init() {
	image.RegisterFormat("webp", "RIFF????WEBP", Decode, DecodeConfig)
}

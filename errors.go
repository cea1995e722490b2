package webplossless

import (
	"errors"

	"github.com/andiray/webplossless/internal/riff"
)

// Format errors: the input is malformed at some identifiable layer of the
// container or bitstream. All are caller-recoverable — no pixel surface is
// produced, and the caller observes a single typed failure.
//
// The RIFF-framing errors are the internal riff package's own sentinels,
// re-exported so callers never need to import an internal package to
// match them with errors.Is.
var (
	ErrMissingRIFFHeader       = riff.ErrMissingRIFFHeader
	ErrNotAWEBPFile            = riff.ErrNotAWEBPFile
	ErrShortChunkHeader        = riff.ErrShortChunkHeader
	ErrShortChunkData          = riff.ErrShortChunkData
	ErrMissingPaddingByte      = riff.ErrMissingPaddingByte
	ErrListSubchunkTooLong     = riff.ErrListSubchunkTooLong
	ErrDuplicateVP8XChunk      = errors.New("webp: duplicate VP8X chunk")
	ErrInvalidVP8XChunkSize    = errors.New("webp: invalid VP8X chunk size")
	ErrInvalidALPHChunk        = errors.New("webp: invalid ALPH chunk")
	ErrInvalidAlphaCompression = errors.New("webp: invalid alpha compression method")
	ErrInvalidAlphaDimensions  = errors.New("webp: invalid alpha dimensions")
	ErrUnexpectedALPHChunk     = errors.New("webp: unexpected ALPH chunk")
	ErrInvalidVP8LHeader       = errors.New("webp: invalid VP8L header")
	ErrInvalidVP8LVersion      = errors.New("webp: invalid VP8L version")
	ErrInvalidHuffmanTree      = errors.New("webp: invalid Huffman tree")
	ErrInvalidColorCacheParams = errors.New("webp: invalid color cache parameters")
	ErrInvalidColorCacheIndex  = errors.New("webp: invalid color cache index")
	ErrInvalidTransformType    = errors.New("webp: invalid transform type")
	ErrInvalidLZ77Parameters   = errors.New("webp: invalid LZ77 parameters")
	ErrPixelBufferOverflow     = errors.New("webp: pixel buffer overflow")
	ErrDimensionsOutOfRange    = errors.New("webp: dimensions out of range")
)

// Capability errors: the input is well-formed but describes something this
// package does not implement.
var (
	ErrLossyUnsupported  = errors.New("webp: VP8 lossy WebP decoding is not yet supported")
	ErrPaletteExceeds256 = errors.New("webp: palette exceeds 256 colors")
)

// I/O errors: the underlying stream failed, as opposed to the bytes it
// produced being malformed.
var (
	ErrUnexpectedEOF = errors.New("webp: unexpected end of file")
)

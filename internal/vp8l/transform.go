package vp8l

// transformType enumerates the VP8L image-wide transform kinds. Each may
// appear at most once per stream, in any order, and is applied (forward)
// or undone (inverse) over the whole image before/after entropy coding.
type transformType int

const (
	predictorTransform     transformType = 0
	crossColorTransform    transformType = 1
	subtractGreenTransform transformType = 2
	colorIndexingTransform transformType = 3
)

// transform holds one transform's metadata and its per-tile (or, for
// color-indexing, per-palette-entry) auxiliary data.
type transform struct {
	kind  transformType
	bits  int // subsampling bits defining the tile window (predictor/cross-color)
	xsize int // transform window width
	ysize int
	data  []uint32
}

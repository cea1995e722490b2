package vp8l

// subtractGreenForward applies the inverse of addGreenToBlueAndRed in
// place: red -= green; blue -= green (mod 256).
func subtractGreenForward(pix []uint32) {
	for i, argb := range pix {
		green := (argb >> 8) & 0xff
		rb := argb & 0x00ff00ff
		rb = 0xff00ff00 + rb - ((green << 16) | green)
		rb &= 0x00ff00ff
		pix[i] = (argb & 0xff00ff00) | rb
	}
}

// predictorTileBits is the fixed tile size used by the encoder's predictor
// transform. A mid-sized tile (16x16) balances per-tile mode-selection
// overhead against meta-image size for the common photographic case.
const predictorTileBits = 4

// buildPredictorTransform scores all 14 predictor modes per tile against
// the formula, picks the lowest-entropy mode per tile, and returns the
// residual pixel buffer plus the per-tile mode metadata.
func buildPredictorTransform(pix []uint32, width, height int) (residual []uint32, modes []uint32) {
	bits := predictorTileBits
	tilesX := subsampleSize(width, bits)
	tilesY := subsampleSize(height, bits)
	modes = make([]uint32, tilesX*tilesY)
	residual = make([]uint32, len(pix))

	tileWidth := 1 << uint(bits)

	for ty := 0; ty < tilesY; ty++ {
		y0 := ty * tileWidth
		y1 := y0 + tileWidth
		if y1 > height {
			y1 = height
		}
		for tx := 0; tx < tilesX; tx++ {
			x0 := tx * tileWidth
			x1 := x0 + tileWidth
			if x1 > width {
				x1 = width
			}
			best, bestScore := 0, -1.0
			for mode := 0; mode < 14; mode++ {
				score := scorePredictorMode(pix, width, height, x0, y0, x1, y1, mode)
				if bestScore < 0 || score < bestScore {
					bestScore, best = score, mode
				}
			}
			modes[ty*tilesX+tx] = uint32(best) << 8
		}
	}

	for y := 0; y < height; y++ {
		ty := y >> uint(bits)
		for x := 0; x < width; x++ {
			tx := x >> uint(bits)
			mode := int((modes[ty*tilesX+tx] >> 8) & 0xf)
			var pred uint32
			switch {
			case x == 0 && y == 0:
				pred = argbBlack
			case y == 0:
				pred = pix[x-1]
			case x == 0:
				pred = pix[(y-1)*width]
			default:
				left := pix[y*width+x-1]
				top := pix[(y-1)*width+x]
				topLeft := pix[(y-1)*width+x-1]
				var topRight uint32
				if x < width-1 {
					topRight = pix[(y-1)*width+x+1]
				} else {
					topRight = pix[y*width]
				}
				pred = predict(mode, left, top, topLeft, topRight)
			}
			residual[y*width+x] = subPixels(pix[y*width+x], pred)
		}
	}
	return residual, modes
}

func subPixels(a, b uint32) uint32 {
	ag := 0x00ff00ff + (a & 0xff00ff00) - (b & 0xff00ff00)
	rb := 0xff00ff00 + (a & 0x00ff00ff) - (b & 0x00ff00ff)
	return (ag & 0xff00ff00) | (rb & 0x00ff00ff)
}

// scorePredictorMode implements the cost formula: sum over the four
// channels of (1 - sum(h_i^2) / sum(h_i)^2), using the residuals that
// mode would produce over the tile. Smaller is better.
func scorePredictorMode(pix []uint32, width, height, x0, y0, x1, y1, mode int) float64 {
	var hist [4][256]int
	for y := y0; y < y1; y++ {
		for x := x0; x < x1; x++ {
			var pred uint32
			switch {
			case x == 0 && y == 0:
				pred = argbBlack
			case y == 0:
				pred = pix[x-1]
			case x == 0:
				pred = pix[(y-1)*width]
			default:
				left := pix[y*width+x-1]
				top := pix[(y-1)*width+x]
				topLeft := pix[(y-1)*width+x-1]
				var topRight uint32
				if x < width-1 {
					topRight = pix[(y-1)*width+x+1]
				} else {
					topRight = pix[y*width]
				}
				pred = predict(mode, left, top, topLeft, topRight)
			}
			res := subPixels(pix[y*width+x], pred)
			hist[0][(res>>24)&0xff]++
			hist[1][(res>>16)&0xff]++
			hist[2][(res>>8)&0xff]++
			hist[3][res&0xff]++
		}
	}

	n := (x1 - x0) * (y1 - y0)
	if n == 0 {
		return 0
	}
	total := float64(n * n)
	score := 0.0
	for c := 0; c < 4; c++ {
		sumSq := 0.0
		for _, v := range hist[c] {
			sumSq += float64(v) * float64(v)
		}
		score += 1 - sumSq/total
	}
	return score
}

// uniqueColors reports the set of distinct ARGB values in pix, failing
// when more than 256 are found (the color-indexing transform's limit).
func uniqueColors(pix []uint32) (colors []uint32, ok bool) {
	seen := make(map[uint32]bool, 256)
	for _, v := range pix {
		if !seen[v] {
			if len(seen) >= 256 {
				return nil, false
			}
			seen[v] = true
			colors = append(colors, v)
		}
	}
	return colors, true
}

// paletteBitsFor returns the color-indexing transform's packing width for
// a palette of the given size.
func paletteBitsFor(numColors int) int {
	switch {
	case numColors > 16:
		return 0
	case numColors > 4:
		return 1
	case numColors > 2:
		return 2
	default:
		return 3
	}
}

// buildColorIndexTransform packs pix through the palette built from its
// unique colors, returning the packed (possibly narrower) pixel buffer,
// its width, and the delta-encoded palette metadata.
func buildColorIndexTransform(pix []uint32, width, height int, palette []uint32) (packed []uint32, packedWidth int, meta []uint32) {
	index := make(map[uint32]int, len(palette))
	for i, c := range palette {
		index[c] = i
	}

	bits := paletteBitsFor(len(palette))
	pixelsPerByte := 1 << uint(bits)
	packedWidth = subsampleSize(width, bits)
	packed = make([]uint32, packedWidth*height)

	for y := 0; y < height; y++ {
		for x := 0; x < width; x++ {
			idx := uint32(index[pix[y*width+x]])
			dx := x >> uint(bits)
			shift := uint(x&(pixelsPerByte-1)) * uint(8>>uint(bits))
			packed[y*packedWidth+dx] |= (idx & 0xff) << (8 + shift)
		}
	}

	meta = make([]uint32, len(palette))
	prevBytes := [4]uint8{0, 0, 0, 0}
	for i, c := range palette {
		b := [4]uint8{uint8(c), uint8(c >> 8), uint8(c >> 16), uint8(c >> 24)}
		var delta [4]uint8
		for k := 0; k < 4; k++ {
			delta[k] = b[k] - prevBytes[k]
		}
		meta[i] = uint32(delta[0]) | uint32(delta[1])<<8 | uint32(delta[2])<<16 | uint32(delta[3])<<24
		prevBytes = b
	}
	return packed, packedWidth, meta
}

package vp8l

// readTransform reads one transform from the bitstream prelude and
// returns the (possibly reduced) working width for subsequent transforms.
func (dec *decoder) readTransform(xsize, ysize int) (int, error) {
	kind := transformType(dec.br.ReadBits(2))
	if dec.transformsSeen&(1<<uint(kind)) != 0 {
		return 0, ErrBitstream
	}
	dec.transformsSeen |= 1 << uint(kind)

	t := &dec.transforms[dec.nextTransform]
	t.kind = kind
	t.xsize = xsize
	t.ysize = ysize
	t.data = nil
	dec.nextTransform++

	switch kind {
	case predictorTransform, crossColorTransform:
		t.bits = minTransformBits + int(dec.br.ReadBits(numTransformBits))
		subW := subsampleSize(t.xsize, t.bits)
		subH := subsampleSize(t.ysize, t.bits)
		data, err := dec.decodeSubImage(subW, subH)
		if err != nil {
			return 0, err
		}
		t.data = data

	case colorIndexingTransform:
		numColors := int(dec.br.ReadBits(8)) + 1
		var bits int
		switch {
		case numColors > 16:
			bits = 0
		case numColors > 4:
			bits = 1
		case numColors > 2:
			bits = 2
		default:
			bits = 3
		}
		t.bits = bits

		palette, err := dec.decodeSubImage(numColors, 1)
		if err != nil {
			return 0, err
		}
		t.data = expandColorMap(numColors, bits, palette)
		xsize = subsampleSize(t.xsize, bits)

	case subtractGreenTransform:
		// No auxiliary data.
	}

	return xsize, nil
}

// expandColorMap turns the decoded palette sub-image into a full lookup
// table, undoing the per-byte delta coding the encoder applies to each
// successive palette entry.
func expandColorMap(numColors, bits int, palette []uint32) []uint32 {
	final := 1 << uint(8>>uint(bits))
	newMap := make([]uint32, final)
	if len(palette) > 0 {
		newMap[0] = palette[0]
	}

	oldBytes := argbToBytes(palette)
	newBytes := argbToBytes(newMap)
	for i := 4; i < 4*numColors; i++ {
		newBytes[i] = (oldBytes[i] + newBytes[i-4]) & 0xff
	}
	bytesToARGB(newBytes, newMap)
	return newMap
}

func argbToBytes(s []uint32) []uint8 {
	b := make([]uint8, len(s)*4)
	for i, v := range s {
		b[i*4+0] = uint8(v)
		b[i*4+1] = uint8(v >> 8)
		b[i*4+2] = uint8(v >> 16)
		b[i*4+3] = uint8(v >> 24)
	}
	return b
}

func bytesToARGB(b []uint8, s []uint32) {
	for i := range s {
		s[i] = uint32(b[i*4+0]) | uint32(b[i*4+1])<<8 | uint32(b[i*4+2])<<16 | uint32(b[i*4+3])<<24
	}
}

// applyInverseTransforms undoes every recorded transform, latest first,
// and returns the final full-size pixel buffer.
func (dec *decoder) applyInverseTransforms(pixels []uint32, numPixOrig int) []uint32 {
	if dec.nextTransform == 0 {
		return pixels
	}
	rows := make([]uint32, numPixOrig)
	copy(rows, pixels)
	out := make([]uint32, numPixOrig)
	for n := dec.nextTransform - 1; n >= 0; n-- {
		t := &dec.transforms[n]
		inverseTransform(t, rows, out)
		rows, out = out, rows
	}
	return rows
}

func inverseTransform(t *transform, in, out []uint32) {
	switch t.kind {
	case subtractGreenTransform:
		addGreenToBlueAndRed(in, t.xsize*t.ysize, out)
	case predictorTransform:
		predictorInverse(t, in, out)
	case crossColorTransform:
		crossColorInverse(t, in, out)
	case colorIndexingTransform:
		colorIndexInverse(t, in, out)
	}
}

func addGreenToBlueAndRed(src []uint32, n int, dst []uint32) {
	for i := 0; i < n; i++ {
		argb := src[i]
		green := (argb >> 8) & 0xff
		rb := argb & 0x00ff00ff
		rb += (green << 16) | green
		rb &= 0x00ff00ff
		dst[i] = (argb & 0xff00ff00) | rb
	}
}

// predictorInverse undoes the spatial predictor transform: each pixel was
// stored as (actual - predicted) mod 256 per channel; this adds the
// prediction (computed from already-restored neighbors) back.
func predictorInverse(t *transform, in, out []uint32) {
	width := t.xsize
	inOff, outOff := 0, 0

	out[0] = addPixels(in[0], argbBlack)
	for x := 1; x < width; x++ {
		out[x] = addPixels(in[x], out[x-1])
	}
	inOff += width
	outOff += width

	tileWidth := 1 << uint(t.bits)
	tileMask := tileWidth - 1
	tilesPerRow := subsampleSize(width, t.bits)

	for y := 1; y < t.ysize; y++ {
		predRow := (y >> uint(t.bits)) * tilesPerRow
		out[outOff] = addPixels(in[inOff], out[outOff-width])

		x := 1
		for x < width {
			mode := int((t.data[predRow+(x>>uint(t.bits))] >> 8) & 0xf)
			xEnd := (x &^ tileMask) + tileWidth
			if xEnd > width {
				xEnd = width
			}
			for ; x < xEnd; x++ {
				var topRight uint32
				if x < width-1 {
					topRight = out[outOff+x+1-width]
				} else {
					topRight = out[outOff]
				}
				pred := predict(mode, out[outOff+x-1], out[outOff+x-width], out[outOff+x-1-width], topRight)
				out[outOff+x] = addPixels(in[inOff+x], pred)
			}
		}
		inOff += width
		outOff += width
	}
}

func predict(mode int, left, top, topLeft, topRight uint32) uint32 {
	switch mode {
	case 0:
		return argbBlack
	case 1:
		return left
	case 2:
		return top
	case 3:
		return topRight
	case 4:
		return topLeft
	case 5:
		return average2(average2(left, topRight), top)
	case 6:
		return average2(left, topLeft)
	case 7:
		return average2(left, top)
	case 8:
		return average2(topLeft, top)
	case 9:
		return average2(top, topRight)
	case 10:
		return average2(average2(left, topLeft), average2(top, topRight))
	case 11:
		return selectPredictor(left, top, topLeft)
	case 12:
		return clampedAddSubtractFull(left, top, topLeft)
	case 13:
		return clampedAddSubtractHalf(average2(left, top), topLeft)
	default:
		return argbBlack
	}
}

func addPixels(a, b uint32) uint32 {
	ag := (a & 0xff00ff00) + (b & 0xff00ff00)
	rb := (a & 0x00ff00ff) + (b & 0x00ff00ff)
	return (ag & 0xff00ff00) | (rb & 0x00ff00ff)
}

func average2(a, b uint32) uint32 {
	return (((a ^ b) & 0xfefefefe) >> 1) + (a & b)
}

func selectPredictor(left, top, topLeft uint32) uint32 {
	pa := int32(0)
	for shift := uint(0); shift < 32; shift += 8 {
		ac := int32((top>>shift)&0xff) - int32((topLeft>>shift)&0xff)
		bc := int32((left>>shift)&0xff) - int32((topLeft>>shift)&0xff)
		if ac < 0 {
			ac = -ac
		}
		if bc < 0 {
			bc = -bc
		}
		pa += ac - bc
	}
	if pa < 0 {
		return left
	}
	return top
}

func clampedAddSubtractFull(a, b, c uint32) uint32 {
	var result uint32
	for shift := uint(0); shift < 32; shift += 8 {
		v := int32((a>>shift)&0xff) + int32((b>>shift)&0xff) - int32((c>>shift)&0xff)
		result |= uint32(clamp8(v)) << shift
	}
	return result
}

func clampedAddSubtractHalf(avg, c uint32) uint32 {
	var result uint32
	for shift := uint(0); shift < 32; shift += 8 {
		va := int32((avg >> shift) & 0xff)
		vc := int32((c >> shift) & 0xff)
		v := va + (va-vc)/2
		result |= uint32(clamp8(v)) << shift
	}
	return result
}

func clamp8(v int32) int32 {
	if v < 0 {
		return 0
	}
	if v > 255 {
		return 255
	}
	return v
}

// crossColorInverse undoes the cross-color (chroma decorrelation)
// transform, in which red and blue were stored as residuals predicted
// from green (and, for blue, from the restored red) via per-tile signed
// 8-bit multipliers.
func crossColorInverse(t *transform, src, dst []uint32) {
	width := t.xsize
	tileWidth := 1 << uint(t.bits)
	tileMask := tileWidth - 1
	safeWidth := width &^ tileMask
	tilesPerRow := subsampleSize(width, t.bits)

	for y := 0; y < t.ysize; y++ {
		predRow := (y >> uint(t.bits)) * tilesPerRow
		predIdx := 0
		rowOff := y * width

		x := 0
		for x < safeWidth {
			m := colorCodeToMultipliers(t.data[predRow+predIdx])
			predIdx++
			for i := 0; i < tileWidth; i++ {
				dst[rowOff+x+i] = colorTransformInverse(m, src[rowOff+x+i])
			}
			x += tileWidth
		}
		if x < width {
			m := colorCodeToMultipliers(t.data[predRow+predIdx])
			for i := 0; x+i < width; i++ {
				dst[rowOff+x+i] = colorTransformInverse(m, src[rowOff+x+i])
			}
		}
	}
}

type colorMultipliers struct {
	greenToRed, greenToBlue, redToBlue uint8
}

func colorCodeToMultipliers(code uint32) colorMultipliers {
	return colorMultipliers{
		greenToRed:  uint8(code),
		greenToBlue: uint8(code >> 8),
		redToBlue:   uint8(code >> 16),
	}
}

func colorTransformDelta(mult, color int8) int32 {
	return (int32(mult) * int32(color)) >> 5
}

func colorTransformInverse(m colorMultipliers, argb uint32) uint32 {
	green := int8(argb >> 8)
	red := int32(argb>>16) & 0xff
	blue := int32(argb) & 0xff

	newRed := (red + colorTransformDelta(int8(m.greenToRed), green)) & 0xff
	newBlue := blue + colorTransformDelta(int8(m.greenToBlue), green)
	newBlue += colorTransformDelta(int8(m.redToBlue), int8(newRed))
	newBlue &= 0xff

	return (argb & 0xff00ff00) | (uint32(newRed) << 16) | uint32(newBlue)
}

// colorIndexInverse undoes the palette transform, unpacking sub-byte
// pixel indices back to full ARGB values via the expanded color map.
func colorIndexInverse(t *transform, src, dst []uint32) {
	width := t.xsize
	colorMap := t.data
	bitsPerPixel := 8 >> uint(t.bits)

	if bitsPerPixel < 8 {
		pixelsPerByte := 1 << uint(t.bits)
		countMask := pixelsPerByte - 1
		bitMask := uint32((1 << uint(bitsPerPixel)) - 1)

		srcOff, dstOff := 0, 0
		for y := 0; y < t.ysize; y++ {
			var packed uint32
			for x := 0; x < width; x++ {
				if x&countMask == 0 {
					packed = (src[srcOff] >> 8) & 0xff
					srcOff++
				}
				idx := packed & bitMask
				if int(idx) < len(colorMap) {
					dst[dstOff] = colorMap[idx]
				}
				dstOff++
				packed >>= uint(bitsPerPixel)
			}
		}
		return
	}

	srcOff, dstOff := 0, 0
	for y := 0; y < t.ysize; y++ {
		for x := 0; x < width; x++ {
			idx := (src[srcOff] >> 8) & 0xff
			srcOff++
			if int(idx) < len(colorMap) {
				dst[dstOff] = colorMap[idx]
			}
			dstOff++
		}
	}
}

package huffman

import (
	"errors"

	"github.com/andiray/webplossless/internal/bitio"
)

// ErrCorruptCode is returned when a code-length stream is malformed: a
// symbol outside the alphabet, a repeat operator that runs past the end of
// the alphabet, a duplicated simple-code symbol, or an undecodable
// code-length symbol. A table that fails to build returns BuildTable's own
// error instead.
var ErrCorruptCode = errors.New("huffman: corrupt code-length stream")

// ReadCode reads one Huffman code description — simple or full form — for
// an alphabet of the given size, and returns a ready-to-use two-level
// decode table built with TableBits root width.
func ReadCode(r *bitio.Reader, alphabetSize int) ([]Entry, error) {
	r.FillBitWindow()
	simple := r.ReadBits(1) == 1
	if simple {
		depths, err := readSimple(r, alphabetSize)
		if err != nil {
			return nil, err
		}
		return BuildTable(TableBits, depths)
	}
	depths, err := readFull(r, alphabetSize)
	if err != nil {
		return nil, err
	}
	return BuildTable(TableBits, depths)
}

func readSimple(r *bitio.Reader, alphabetSize int) ([]int, error) {
	depths := make([]int, alphabetSize)
	numSymbols := int(r.ReadBits(1)) + 1

	firstSym, err := readSimpleSymbol(r, alphabetSize)
	if err != nil {
		return nil, err
	}
	if numSymbols == 1 {
		depths[firstSym] = 1
		return depths, nil
	}

	r.FillBitWindow()
	secondSym := int(r.ReadBits(8))
	if secondSym >= alphabetSize || secondSym == firstSym {
		return nil, ErrCorruptCode
	}
	depths[firstSym] = 1
	depths[secondSym] = 1
	return depths, nil
}

func readSimpleSymbol(r *bitio.Reader, alphabetSize int) (int, error) {
	r.FillBitWindow()
	wide := r.ReadBits(1) == 1
	var sym int
	if wide {
		sym = int(r.ReadBits(8))
	} else {
		sym = int(r.ReadBits(1))
	}
	if sym >= alphabetSize {
		return 0, ErrCorruptCode
	}
	return sym, nil
}

func readFull(r *bitio.Reader, alphabetSize int) ([]int, error) {
	r.FillBitWindow()
	numCodes := int(r.ReadBits(4)) + 4
	if numCodes > numCodeLengthCodes {
		return nil, ErrCorruptCode
	}

	clDepths := make([]int, numCodeLengthCodes)
	for i := 0; i < numCodes; i++ {
		r.FillBitWindow()
		clDepths[codeLengthOrder[i]] = int(r.ReadBits(3))
	}
	clTable, err := BuildTable(TableBits, clDepths)
	if err != nil {
		return nil, err
	}

	r.FillBitWindow()
	maxSymbol := alphabetSize
	if r.ReadBits(1) == 1 {
		lengthBits := 2 + 2*int(r.ReadBits(3))
		r.FillBitWindow()
		maxSymbol = 2 + int(r.ReadBits(lengthBits))
	}

	depths := make([]int, alphabetSize)
	symbol := 0
	prev := 8
	for symbol < alphabetSize {
		if maxSymbol == 0 {
			break
		}
		r.FillBitWindow()
		sym, bits := ReadSymbol(clTable, r.Peek())
		if bits < 0 {
			return nil, ErrCorruptCode
		}
		r.Consume(bits)
		maxSymbol--
		code := int(sym)

		switch code {
		case repeatPrev, repeatZerosShort, repeatZerosLong:
			r.FillBitWindow()
			var repeat, value int
			switch code {
			case repeatPrev:
				repeat = repeatOffset[0] + int(r.ReadBits(repeatExtraBits[0]))
				value = prev
			case repeatZerosShort:
				repeat = repeatOffset[1] + int(r.ReadBits(repeatExtraBits[1]))
				value = 0
			case repeatZerosLong:
				repeat = repeatOffset[2] + int(r.ReadBits(repeatExtraBits[2]))
				value = 0
			}
			if symbol+repeat > alphabetSize {
				return nil, ErrCorruptCode
			}
			for i := 0; i < repeat; i++ {
				depths[symbol] = value
				symbol++
			}
		default:
			depths[symbol] = code
			symbol++
			if code != 0 {
				prev = code
			}
		}
	}
	return depths, nil
}

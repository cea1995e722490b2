package riff

import "encoding/binary"

// ChunkPayload is one chunk to be emitted: a 4-character FourCC tag and
// its raw payload bytes (unpadded — padding is added by Write).
type ChunkPayload struct {
	FourCC string
	Data   []byte
}

// Write assembles chunks into a complete "RIFF <size> WEBP <chunks>"
// container. The outer size equals 4 (the "WEBP" form tag) plus, for each
// chunk, 8 header bytes + its payload length + one pad byte if that
// length is odd.
func Write(chunks []ChunkPayload) []byte {
	size := uint32(tagSize)
	for _, c := range chunks {
		size += chunkHeaderSize + uint32(len(c.Data)) + uint32(len(c.Data)&1)
	}

	buf := make([]byte, 0, riffHeaderSize+int(size)-tagSize)
	buf = append(buf, 'R', 'I', 'F', 'F')
	var sizeBytes [4]byte
	binary.LittleEndian.PutUint32(sizeBytes[:], size)
	buf = append(buf, sizeBytes[:]...)
	buf = append(buf, 'W', 'E', 'B', 'P')

	for _, c := range chunks {
		buf = append(buf, c.FourCC[0], c.FourCC[1], c.FourCC[2], c.FourCC[3])
		var lenBytes [4]byte
		binary.LittleEndian.PutUint32(lenBytes[:], uint32(len(c.Data)))
		buf = append(buf, lenBytes[:]...)
		buf = append(buf, c.Data...)
		if len(c.Data)&1 == 1 {
			buf = append(buf, 0)
		}
	}
	return buf
}

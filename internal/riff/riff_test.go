package riff

import (
	"bytes"
	"io"
	"testing"
)

func TestOpenAndIterateChunks(t *testing.T) {
	data := Write([]ChunkPayload{
		{FourCC: "VP8L", Data: []byte{1, 2, 3}}, // odd length, needs pad
		{FourCC: "EXIF", Data: []byte{9, 9, 9, 9}},
	})

	form, r, err := Open(bytes.NewReader(data))
	if err != nil {
		t.Fatalf("Open: %v", err)
	}
	if form != "WEBP" {
		t.Fatalf("form = %q, want WEBP", form)
	}

	c1, err := r.Next()
	if err != nil {
		t.Fatalf("Next #1: %v", err)
	}
	if c1.FourCC.String() != "VP8L" || c1.Len != 3 {
		t.Fatalf("chunk #1 = %+v", c1)
	}
	payload1, _ := io.ReadAll(c1.Payload)
	if !bytes.Equal(payload1, []byte{1, 2, 3}) {
		t.Fatalf("payload #1 = %v", payload1)
	}

	c2, err := r.Next()
	if err != nil {
		t.Fatalf("Next #2: %v", err)
	}
	if c2.FourCC.String() != "EXIF" || c2.Len != 4 {
		t.Fatalf("chunk #2 = %+v", c2)
	}

	if _, err := r.Next(); err != io.EOF {
		t.Fatalf("expected io.EOF, got %v", err)
	}
}

func TestNextDiscardsUnreadPayload(t *testing.T) {
	data := Write([]ChunkPayload{
		{FourCC: "AAAA", Data: []byte{1, 2, 3, 4, 5, 6}},
		{FourCC: "BBBB", Data: []byte{7, 8}},
	})

	_, r, err := Open(bytes.NewReader(data))
	if err != nil {
		t.Fatalf("Open: %v", err)
	}

	if _, err := r.Next(); err != nil {
		t.Fatalf("Next #1: %v", err)
	}
	// Deliberately do not read chunk #1's payload.

	c2, err := r.Next()
	if err != nil {
		t.Fatalf("Next #2: %v", err)
	}
	payload2, _ := io.ReadAll(c2.Payload)
	if !bytes.Equal(payload2, []byte{7, 8}) {
		t.Fatalf("payload #2 = %v, want [7 8]", payload2)
	}
}

func TestOpenRejectsBadHeader(t *testing.T) {
	if _, _, err := Open(bytes.NewReader([]byte("INVALID_DATA"))); err != ErrMissingRIFFHeader {
		t.Fatalf("err = %v, want ErrMissingRIFFHeader", err)
	}

	bad := Write(nil)
	copy(bad[8:12], "WAVE")
	if _, _, err := Open(bytes.NewReader(bad)); err != ErrNotAWEBPFile {
		t.Fatalf("err = %v, want ErrNotAWEBPFile", err)
	}
}

func TestShortChunkHeaderAtEOF(t *testing.T) {
	data := Write([]ChunkPayload{{FourCC: "VP8L", Data: []byte{1, 2, 3, 4}}})
	truncated := data[:len(data)-6] // chop into the chunk header
	_, r, err := Open(bytes.NewReader(truncated))
	if err != nil {
		t.Fatalf("Open: %v", err)
	}
	if _, err := r.Next(); err == nil {
		t.Fatal("expected an error reading a truncated chunk header")
	}
}

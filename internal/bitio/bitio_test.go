package bitio

import "testing"

func TestWriteReadRoundTrip(t *testing.T) {
	cases := []struct {
		value uint32
		n     int
	}{
		{0, 1}, {1, 1}, {0, 24}, {1, 24},
		{0xabc, 12}, {0xffffff, 24}, {7, 3}, {0, 0},
	}

	w := NewWriter(64)
	for _, c := range cases {
		w.WriteBits(c.value, c.n)
	}
	w.AlignByte()
	data := w.Bytes()

	r := NewReader(data)
	for _, c := range cases {
		got := r.ReadBits(c.n)
		if got != c.value {
			t.Errorf("ReadBits(%d) = %#x, want %#x", c.n, got, c.value)
		}
	}
	if r.IsEndOfStream() {
		t.Error("unexpected end of stream before padding was consumed")
	}
}

func TestReaderEndOfStream(t *testing.T) {
	r := NewReader([]byte{0xff})
	for i := 0; i < 20; i++ {
		r.ReadBits(24)
	}
	if !r.IsEndOfStream() {
		t.Error("expected end-of-stream after reading past buffer")
	}
}

// TestWriterPendingBitsStayBounded checks that 1-bit writes never leave
// more than flushBits+7 bits pending: the register is flushed 32 bits at a
// time, so up to flushBits bits can be pending before the next write.
func TestWriterPendingBitsStayBounded(t *testing.T) {
	w := NewWriter(64)
	for i := 0; i < 100; i++ {
		w.WriteBits(uint32(i&1), 1)
		if w.used > flushBits+7 {
			t.Fatalf("writer accumulator grew unexpectedly: used=%d", w.used)
		}
	}
}

package protocol

import (
	"bytes"
	"errors"
	"io"
	"testing"
)

func TestVarintRoundTrip(t *testing.T) {
	values := []uint64{0, 1, 127, 128, 300, 16383, 16384, 1<<32 - 1, 1<<64 - 1}
	for _, v := range values {
		e := NewEncoder()
		e.WriteUvarint(v)
		d := NewDecoder(e.Bytes())
		got, err := d.ReadUvarint()
		if err != nil {
			t.Fatalf("ReadUvarint(%d): %v", v, err)
		}
		if got != v {
			t.Errorf("round trip %d = %d", v, got)
		}
		if !d.EOF() {
			t.Errorf("%d: %d bytes left over", v, d.Remaining())
		}
	}
}

func TestSvarintRoundTrip(t *testing.T) {
	values := []int64{0, 1, -1, 63, -64, 64, -65, 1<<62 - 1, -(1 << 62)}
	for _, v := range values {
		e := NewEncoder()
		e.WriteSvarint(v)
		got, err := NewDecoder(e.Bytes()).ReadSvarint()
		if err != nil {
			t.Fatalf("ReadSvarint(%d): %v", v, err)
		}
		if got != v {
			t.Errorf("round trip %d = %d", v, got)
		}
	}
}

func TestSmallNegativeEncodesCompact(t *testing.T) {
	e := NewEncoder()
	e.WriteSvarint(-1)
	if e.Len() != 1 {
		t.Errorf("-1 encoded to %d bytes, want 1", e.Len())
	}
}

func TestStringRoundTrip(t *testing.T) {
	e := NewEncoder()
	e.WriteString("")
	e.WriteString("héllo <b>")
	d := NewDecoder(e.Bytes())
	if s, err := d.ReadString(); err != nil || s != "" {
		t.Errorf("empty string = %q, %v", s, err)
	}
	if s, err := d.ReadString(); err != nil || s != "héllo <b>" {
		t.Errorf("string = %q, %v", s, err)
	}
}

func TestStringTruncated(t *testing.T) {
	e := NewEncoder()
	e.WriteString("abcdef")
	_, err := NewDecoder(e.Bytes()[:4]).ReadString()
	if !errors.Is(err, io.ErrUnexpectedEOF) {
		t.Errorf("err = %v, want unexpected EOF", err)
	}
}

func TestStringAllocationLimit(t *testing.T) {
	e := NewEncoder()
	e.WriteUvarint(MaxAllocation + 1)
	_, err := NewDecoder(e.Bytes()).ReadString()
	if !errors.Is(err, ErrAllocationTooLarge) {
		t.Errorf("err = %v, want ErrAllocationTooLarge", err)
	}
}

func TestVarintOverflow(t *testing.T) {
	buf := bytes.Repeat([]byte{0xFF}, 11)
	_, err := NewDecoder(buf).ReadUvarint()
	if !errors.Is(err, ErrVarintOverflow) {
		t.Errorf("err = %v, want ErrVarintOverflow", err)
	}
}

func TestBoolRoundTrip(t *testing.T) {
	e := NewEncoder()
	e.WriteBool(true)
	e.WriteBool(false)
	d := NewDecoder(e.Bytes())
	if v, _ := d.ReadBool(); !v {
		t.Error("first bool = false")
	}
	if v, _ := d.ReadBool(); v {
		t.Error("second bool = true")
	}
	if _, err := NewDecoder([]byte{0x07}).ReadBool(); !errors.Is(err, ErrInvalidBool) {
		t.Errorf("err = %v, want ErrInvalidBool", err)
	}
}

func TestEncoderReset(t *testing.T) {
	e := NewEncoder()
	e.WriteString("something")
	e.Reset()
	if e.Len() != 0 {
		t.Errorf("Len after Reset = %d", e.Len())
	}
}

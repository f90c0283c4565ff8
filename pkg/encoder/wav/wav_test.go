package wav

import (
	"bytes"
	"encoding/binary"
	"os"
	"path/filepath"
	"testing"
)

func TestStream(t *testing.T) {
	path := filepath.Join(t.TempDir(), "audio.wav")
	w, err := New(path, 44100, 2)
	if err != nil {
		t.Fatal(err)
	}
	pcm := []byte{1, 0, 2, 0, 3, 0, 4, 0}
	if err := w.Write(pcm); err != nil {
		t.Fatal(err)
	}
	if err := w.WriteSilence(3); err != nil {
		t.Fatal(err)
	}
	if w.Frames() != 5 {
		t.Errorf("wrong frames count %v", w.Frames())
	}
	if err := w.Close(); err != nil {
		t.Fatal(err)
	}
	if err := w.Close(); err != nil {
		t.Errorf("second close should be a no-op, %v", err)
	}
	if err := w.Write(pcm); err == nil {
		t.Errorf("write after close should fail")
	}

	data, err := os.ReadFile(path)
	if err != nil {
		t.Fatal(err)
	}
	if len(data) != HeaderSize+8+12 {
		t.Fatalf("wrong file size %v", len(data))
	}
	if !bytes.Equal(data[0:4], []byte("RIFF")) || !bytes.Equal(data[36:40], []byte("data")) {
		t.Errorf("wrong header %v", data[:HeaderSize])
	}
	if ch := binary.LittleEndian.Uint16(data[22:]); ch != 2 {
		t.Errorf("wrong channels %v", ch)
	}
	if rate := binary.LittleEndian.Uint32(data[24:]); rate != 44100 {
		t.Errorf("wrong rate %v", rate)
	}
	if size := binary.LittleEndian.Uint32(data[40:]); size != 20 {
		t.Errorf("wrong data size %v", size)
	}
	if !bytes.Equal(data[HeaderSize:HeaderSize+8], pcm) {
		t.Errorf("wrong pcm data")
	}
}

func TestHeader(t *testing.T) {
	h := Header(HeaderSize+1000, 48000, 1)
	if binary.LittleEndian.Uint32(h[4:]) != 1036 {
		t.Errorf("wrong chunk size")
	}
	if binary.LittleEndian.Uint32(h[28:]) != 96000 {
		t.Errorf("wrong byte rate")
	}
	if binary.LittleEndian.Uint16(h[32:]) != 2 {
		t.Errorf("wrong block align")
	}
}

func TestBadFormat(t *testing.T) {
	if _, err := New(filepath.Join(t.TempDir(), "a.wav"), 0, 2); err == nil {
		t.Errorf("expected an error")
	}
}

package frames

import (
	"archive/zip"
	"image"
	"image/color"
	"image/png"
	"math/rand"
	"os"
	"path/filepath"
	"strings"
	"testing"

	"github.com/giongto35/vexport/pkg/encoder"
	"github.com/giongto35/vexport/pkg/encoder/wav"
	"github.com/giongto35/vexport/pkg/logger"
)

func TestEncode(t *testing.T) {
	dir := filepath.Join(t.TempDir(), "rec")
	e, err := New(encoder.Options{Path: dir, Width: 16, Height: 8, FrameRate: 10, AudioSampleRate: 100}, logger.Default())
	if err != nil {
		t.Fatal(err)
	}
	if err := e.Prepare(); err != nil {
		t.Fatal(err)
	}

	img := genFrame(16, 8)
	first := img.RGBAAt(0, 0)
	pcm := make([]byte, 10*2*2)
	for i := 0; i < 5; i++ {
		ts := float64(i) / 10
		if err := e.EncodeFrame(img, ts); err != nil {
			t.Fatal(err)
		}
		// the frame is copied
		img.SetRGBA(0, 0, color.RGBA{R: uint8(i)})
		if i > 2 {
			if err := e.EncodeAudio(pcm, ts); err != nil {
				t.Fatal(err)
			}
		}
	}
	if err := e.FinishWriting(); err != nil {
		t.Fatal(err)
	}
	if err := e.Dispose(); err != nil {
		t.Fatal(err)
	}

	f, err := os.Open(filepath.Join(dir, "f0000001.png"))
	if err != nil {
		t.Fatal(err)
	}
	defer func() { _ = f.Close() }()
	saved, err := png.Decode(f)
	if err != nil {
		t.Fatal(err)
	}
	if color.RGBAModel.Convert(saved.At(0, 0)) != first {
		t.Errorf("the first frame was changed after the encode call")
	}

	for i := 1; i <= 5; i++ {
		if _, err := os.Stat(filepath.Join(dir, "f000000"+string(rune('0'+i))+".png")); err != nil {
			t.Errorf("no frame %v: %v", i, err)
		}
	}

	// 5 frames at 10 fps of 100 Hz stereo
	fi, err := os.Stat(filepath.Join(dir, audioFile))
	if err != nil {
		t.Fatal(err)
	}
	if fi.Size() != wav.HeaderSize+50*2*2 {
		t.Errorf("wrong audio size %v", fi.Size())
	}

	demux, err := os.ReadFile(filepath.Join(dir, demuxFile))
	if err != nil {
		t.Fatal(err)
	}
	if c := strings.Count(string(demux), "duration 0.100000"); c != 5 {
		t.Errorf("wrong durations %v in\n%s", c, demux)
	}
}

func TestNoAudio(t *testing.T) {
	dir := filepath.Join(t.TempDir(), "rec")
	e, err := New(encoder.Options{Path: dir, Width: 4, Height: 4, FrameRate: 30, Zip: true}, logger.Default())
	if err != nil {
		t.Fatal(err)
	}
	if err := e.Prepare(); err != nil {
		t.Fatal(err)
	}
	if err := e.EncodeFrame(genFrame(4, 4), 0); err != nil {
		t.Fatal(err)
	}
	if err := e.FinishWriting(); err != nil {
		t.Fatal(err)
	}
	if err := e.Dispose(); err != nil {
		t.Fatal(err)
	}

	if _, err := os.Stat(dir); !os.IsNotExist(err) {
		t.Errorf("the directory should be removed after compression")
	}
	z, err := zip.OpenReader(dir + ".zip")
	if err != nil {
		t.Fatal(err)
	}
	defer func() { _ = z.Close() }()
	names := map[string]bool{}
	for _, f := range z.File {
		names[f.Name] = true
	}
	for _, n := range []string{"rec/", "rec/f0000001.png", "rec/input.txt"} {
		if !names[n] {
			t.Errorf("no %v in %v", n, names)
		}
	}
	if names["rec/audio.wav"] {
		t.Errorf("unexpected audio track")
	}
}

func TestNonMonotonic(t *testing.T) {
	e, err := New(encoder.Options{Path: t.TempDir(), Width: 4, Height: 4, FrameRate: 30}, logger.Default())
	if err != nil {
		t.Fatal(err)
	}
	if err := e.Prepare(); err != nil {
		t.Fatal(err)
	}
	defer func() { _ = e.Dispose() }()
	if err := e.EncodeFrame(genFrame(4, 4), 0.5); err != nil {
		t.Fatal(err)
	}
	if err := e.EncodeFrame(genFrame(4, 4), 0.5); err == nil {
		t.Errorf("expected an error")
	}
	if err := e.EncodeFrame(genFrame(2, 2), 1); err == nil {
		t.Errorf("expected a size error")
	}
}

func TestFrameDuration(t *testing.T) {
	times := []float64{0, 0.1, 0.3}
	for i, want := range []float64{0.1, 0.2, 0.5} {
		if d := frameDuration(times, i, 2); d != want && (d-want > 1e-9 || want-d > 1e-9) {
			t.Errorf("frameDuration(%v) = %v, want %v", i, d, want)
		}
	}
}

func BenchmarkEncode320x240(b *testing.B) {
	e, err := New(encoder.Options{Path: b.TempDir(), Width: 320, Height: 240, FrameRate: 60}, logger.Default())
	if err != nil {
		b.Fatal(err)
	}
	if err := e.Prepare(); err != nil {
		b.Fatal(err)
	}
	frame := genFrame(320, 240)
	b.SetBytes(int64(len(frame.Pix)))
	b.ResetTimer()
	for i := 0; i < b.N; i++ {
		if err := e.EncodeFrame(frame, float64(i)/60); err != nil {
			b.Fatal(err)
		}
	}
	if err := e.FinishWriting(); err != nil {
		b.Fatal(err)
	}
	_ = e.Dispose()
}

func genFrame(w, h int) *image.RGBA {
	img := image.NewRGBA(image.Rect(0, 0, w, h))
	for x := 0; x < w; x++ {
		for y := 0; y < h; y++ {
			img.Set(x, y, randomColor())
		}
	}
	return img
}

func randomColor() color.RGBA {
	return color.RGBA{
		R: uint8(rand.Intn(256)),
		G: uint8(rand.Intn(256)),
		B: uint8(rand.Intn(256)),
		A: 255,
	}
}

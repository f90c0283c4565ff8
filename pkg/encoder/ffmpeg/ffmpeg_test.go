package ffmpeg

import (
	"errors"
	"image"
	"os"
	"os/exec"
	"path/filepath"
	"reflect"
	"testing"

	"github.com/giongto35/vexport/pkg/encoder"
	"github.com/giongto35/vexport/pkg/logger"
)

func TestMuxArgs(t *testing.T) {
	o := encoder.Options{Path: "out.mp4", AudioBitRate: 96000, AudioSampleRate: 48000, AudioChannelCount: 1}
	args := muxArgs("v.mp4", "a.wav", o)
	want := []string{"-y", "-hide_banner", "-loglevel", "error", "-i", "v.mp4", "-i", "a.wav",
		"-map", "0:v:0", "-map", "1:a:0", "-c:v", "copy", "-c:a", "aac",
		"-b:a", "96000", "-ar", "48000", "-ac", "1", "out.mp4"}
	if !reflect.DeepEqual(args, want) {
		t.Errorf("muxArgs() = %v", args)
	}
}

func TestNewValidates(t *testing.T) {
	if _, err := New(encoder.Options{Path: "a.mp4"}, logger.Default()); err == nil {
		t.Errorf("expected an error for the empty frame size")
	}
}

func TestNotReady(t *testing.T) {
	e, err := New(encoder.Options{Path: "a.mp4", Width: 2, Height: 2, FrameRate: 30}, logger.Default())
	if err != nil {
		t.Fatal(err)
	}
	if e.EncodeFrame(image.NewRGBA(image.Rect(0, 0, 2, 2)), 0) == nil {
		t.Errorf("expected an error before Prepare")
	}
	if e.FinishWriting() == nil {
		t.Errorf("expected an error before Prepare")
	}
	if err := e.Dispose(); err != nil {
		t.Errorf("dispose of unprepared encoder: %v", err)
	}
	if e.Dispose() == nil {
		t.Errorf("expected an error on the second dispose")
	}
}

func TestPixels(t *testing.T) {
	e := &Encoder{opts: encoder.Options{Width: 2, Height: 2}, buf: make([]byte, 16)}

	tight := image.NewRGBA(image.Rect(0, 0, 2, 2))
	p, err := e.pixels(tight)
	if err != nil {
		t.Fatal(err)
	}
	if &p[0] != &tight.Pix[0] {
		t.Errorf("tight frame should not be copied")
	}

	big := image.NewRGBA(image.Rect(0, 0, 3, 3))
	for i := range big.Pix {
		big.Pix[i] = byte(i)
	}
	sub := big.SubImage(image.Rect(1, 1, 3, 3)).(*image.RGBA)
	p, err = e.pixels(sub)
	if err != nil {
		t.Fatal(err)
	}
	want := append(append([]byte{}, big.Pix[16:24]...), big.Pix[28:36]...)
	if !reflect.DeepEqual(p, want) {
		t.Errorf("pixels() = %v, want %v", p, want)
	}

	if _, err := e.pixels(big); err == nil {
		t.Errorf("expected size error")
	}
}

func TestEncode(t *testing.T) {
	if _, err := exec.LookPath("ffmpeg"); err != nil {
		t.Skip("no ffmpeg")
	}
	dir := t.TempDir()
	out := filepath.Join(dir, "out.mp4")
	e, err := New(encoder.Options{Path: out, Width: 32, Height: 16, FrameRate: 10}, logger.Default())
	if err != nil {
		t.Fatal(err)
	}
	if err := e.Prepare(); err != nil {
		t.Fatal(err)
	}
	img := image.NewRGBA(image.Rect(0, 0, 32, 16))
	pcm := make([]byte, 4410*2*2)
	for i := 0; i < 10; i++ {
		ts := float64(i) / 10
		if err := e.EncodeFrame(img, ts); err != nil {
			t.Fatalf("frame %v: %v", i, err)
		}
		if i >= 5 {
			if err := e.EncodeAudio(pcm, ts); err != nil {
				t.Fatalf("audio %v: %v", i, err)
			}
		}
	}
	if err := e.FinishWriting(); err != nil {
		t.Fatal(err)
	}
	if err := e.Dispose(); err != nil {
		t.Fatal(err)
	}
	if fi, err := os.Stat(out); err != nil || fi.Size() == 0 {
		t.Errorf("no output: %v", err)
	}
	if e.Frames() != 10 {
		t.Errorf("wrong frame count %v", e.Frames())
	}
}

func TestNoFrames(t *testing.T) {
	if _, err := exec.LookPath("ffmpeg"); err != nil {
		t.Skip("no ffmpeg")
	}
	out := filepath.Join(t.TempDir(), "out.mp4")
	e, err := New(encoder.Options{Path: out, Width: 32, Height: 16, FrameRate: 10}, logger.Default())
	if err != nil {
		t.Fatal(err)
	}
	if err := e.Prepare(); err != nil {
		t.Fatal(err)
	}
	if err := e.FinishWriting(); !errors.Is(err, ErrNoFrames) {
		t.Errorf("expected ErrNoFrames, got %v", err)
	}
	if err := e.Dispose(); err != nil {
		t.Fatal(err)
	}
	if _, err := os.Stat(out); !os.IsNotExist(err) {
		t.Errorf("unexpected output: %v", err)
	}
}

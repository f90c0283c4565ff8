package extractor

import (
	"context"
	"errors"
	"fmt"
	"image"
	"io"
	"os/exec"
	"strconv"

	vidio "github.com/AlexEidt/Vidio"
	"github.com/giongto35/vexport/pkg/frameclock"
)

// vidioSource reads the video frames of a file sequentially.
type vidioSource struct {
	v     *vidio.Video
	fps   float64
	frame *image.RGBA
	index int
	eof   bool
}

func newVidioSource(path string) (*vidioSource, error) {
	v, err := vidio.NewVideo(path)
	if err != nil {
		return nil, err
	}
	frame := image.NewRGBA(image.Rect(0, 0, v.Width(), v.Height()))
	if err := v.SetFrameBuffer(frame.Pix); err != nil {
		v.Close()
		return nil, err
	}
	fps := v.FPS()
	if fps <= 0 {
		v.Close()
		return nil, fmt.Errorf("bad source frame rate %v", fps)
	}
	return &vidioSource{v: v, fps: fps, frame: frame, index: -1}, nil
}

// Frame reads up to the frame presented at t.
// The last frame is kept after the end of the stream.
func (s *vidioSource) Frame(t float64) (*image.RGBA, error) {
	want := frameclock.Index(t, s.fps)
	for s.index < want && !s.eof {
		if !s.v.Read() {
			s.eof = true
			break
		}
		s.index++
	}
	if s.index < 0 {
		return nil, nil
	}
	return s.frame, nil
}

// HasAudio reports any extra streams, files without an audio stream
// end up as silence.
func (s *vidioSource) HasAudio() bool { return s.v.HasStreams() }

func (s *vidioSource) Close() error {
	s.v.Close()
	return nil
}

// pcmSource is an ffmpeg process decoding the audio of a file into
// raw PCM on its stdout.
type pcmSource struct {
	cmd    *exec.Cmd
	out    io.ReadCloser
	eof    bool
	closed bool
}

func newPCMSource(ctx context.Context, ffmpeg, path string, start float64, rate, channels int) (*pcmSource, error) {
	cmd := exec.CommandContext(ctx, ffmpeg, pcmArgs(path, start, rate, channels)...) //nolint:gosec
	out, err := cmd.StdoutPipe()
	if err != nil {
		return nil, err
	}
	if err := cmd.Start(); err != nil {
		return nil, err
	}
	return &pcmSource{cmd: cmd, out: out}, nil
}

func pcmArgs(path string, start float64, rate, channels int) []string {
	return []string{
		"-hide_banner",
		"-loglevel", "error",
		"-ss", strconv.FormatFloat(start, 'f', -1, 64),
		"-i", path,
		"-vn",
		"-f", "s16le",
		"-acodec", "pcm_s16le",
		"-ar", strconv.Itoa(rate),
		"-ac", strconv.Itoa(channels),
		"-",
	}
}

func (s *pcmSource) Read(buf []byte) error {
	if s.eof {
		clear(buf)
		return nil
	}
	n, err := io.ReadFull(s.out, buf)
	if errors.Is(err, io.EOF) || errors.Is(err, io.ErrUnexpectedEOF) {
		s.eof = true
		clear(buf[n:])
		return nil
	}
	return err
}

// Close stops the process if it's still running.
func (s *pcmSource) Close() error {
	if s.closed {
		return nil
	}
	s.closed = true
	if !s.eof && s.cmd.Process != nil {
		_ = s.cmd.Process.Kill()
	}
	err := s.cmd.Wait()
	var exit *exec.ExitError
	if errors.As(err, &exit) || errors.Is(err, context.Canceled) {
		// killed or failed after all the needed data was read
		return nil
	}
	return err
}

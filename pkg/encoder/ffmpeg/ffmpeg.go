// Package ffmpeg encodes the exported frames and audio into a single video
// file with the ffmpeg binary.
//
// Frames are piped into ffmpeg through a Vidio writer while the audio is
// kept in a WAV file next to it. When the writing is finished both
// streams are muxed into the output file with the audio encoded as AAC.
package ffmpeg

import (
	"context"
	"errors"
	"fmt"
	"image"
	"os"
	"os/exec"
	"path/filepath"
	"strconv"
	"strings"

	vidio "github.com/AlexEidt/Vidio"
	"github.com/giongto35/vexport/pkg/encoder"
	"github.com/giongto35/vexport/pkg/encoder/wav"
	"github.com/giongto35/vexport/pkg/frameclock"
	"github.com/giongto35/vexport/pkg/logger"
	oss "github.com/giongto35/vexport/pkg/os"
)

const (
	videoFile = "video"
	audioFile = "audio.wav"
	// macro keeps the frame size even for yuv420p without rescaling
	macro = 2
)

// ErrNoFrames is returned on finish when no frame was written,
// a video file can't be empty.
var ErrNoFrames = errors.New("ffmpeg: no frames were written")

type Encoder struct {
	opts encoder.Options
	log  *logger.Logger

	dir   string
	vPath string
	video *vidio.VideoWriter
	audio *wav.Stream
	buf   []byte

	vSeq, aSeq encoder.Sequence
	frames     int
	hasAudio   bool

	prepared, videoClosed, disposed bool

	// run executes an external command, replaced in tests.
	run func(name string, args ...string) error
}

// New returns an encoder writing into opts.Path.
func New(opts encoder.Options, log *logger.Logger) (*Encoder, error) {
	opts = opts.WithDefaults()
	if err := opts.Validate(); err != nil {
		return nil, fmt.Errorf("ffmpeg: %w", err)
	}
	return &Encoder{
		opts: opts,
		log:  log,
		vSeq: encoder.NewSequence(true),
		aSeq: encoder.NewSequence(false),
		run:  run,
	}, nil
}

// Prepare starts the video writer and opens the audio track.
func (e *Encoder) Prepare() error {
	if e.prepared {
		return errors.New("ffmpeg: already prepared")
	}
	bin, err := encoder.UseBinary(e.opts.FFmpeg)
	if err != nil {
		return fmt.Errorf("ffmpeg: %w", err)
	}
	e.opts.FFmpeg = bin
	if e.opts.Path, err = oss.OutputPath(e.opts.Path, false); err != nil {
		return err
	}
	if err = oss.CheckCreateDir(e.opts.TempDir); err != nil {
		return err
	}
	dir, err := os.MkdirTemp(e.opts.TempDir, ".vexport-*")
	if err != nil {
		return err
	}
	e.dir = dir
	e.vPath = filepath.Join(dir, videoFile+ext(e.opts.Path))

	video, err := vidio.NewVideoWriter(e.vPath, e.opts.Width, e.opts.Height, &vidio.Options{
		FPS:     e.opts.FrameRate,
		Bitrate: e.opts.BitRate,
		Codec:   e.opts.Codec,
		Macro:   macro,
	})
	if err != nil {
		return fmt.Errorf("ffmpeg: video writer: %w", err)
	}
	e.video = video

	audio, err := wav.New(filepath.Join(dir, audioFile), e.opts.AudioSampleRate, e.opts.AudioChannelCount)
	if err != nil {
		return fmt.Errorf("ffmpeg: audio track: %w", err)
	}
	e.audio = audio
	e.buf = make([]byte, e.opts.Width*e.opts.Height*4)
	e.prepared = true
	e.log.Debug().Msgf("ffmpeg: %vx%v@%v %v -> %v", e.opts.Width, e.opts.Height, e.opts.FrameRate, e.opts.Codec, e.opts.Path)
	return nil
}

// EncodeFrame writes the RGBA frame presented at t seconds.
func (e *Encoder) EncodeFrame(img *image.RGBA, t float64) error {
	if !e.prepared || e.videoClosed {
		return errors.New("ffmpeg: encoder is not ready")
	}
	if err := e.vSeq.Next(t); err != nil {
		return err
	}
	pix, err := e.pixels(img)
	if err != nil {
		return err
	}
	if err := e.video.Write(pix); err != nil {
		return fmt.Errorf("ffmpeg: frame %v: %w", e.frames, err)
	}
	e.frames++
	return nil
}

// pixels returns tightly packed RGBA bytes of the frame.
func (e *Encoder) pixels(img *image.RGBA) ([]byte, error) {
	b := img.Bounds()
	if b.Dx() != e.opts.Width || b.Dy() != e.opts.Height {
		return nil, fmt.Errorf("ffmpeg: frame size %vx%v != %vx%v", b.Dx(), b.Dy(), e.opts.Width, e.opts.Height)
	}
	row := e.opts.Width * 4
	if img.Stride == row && b.Min == (image.Point{}) {
		return img.Pix[:row*e.opts.Height], nil
	}
	for y := 0; y < e.opts.Height; y++ {
		i := img.PixOffset(b.Min.X, b.Min.Y+y)
		copy(e.buf[y*row:(y+1)*row], img.Pix[i:i+row])
	}
	return e.buf, nil
}

// EncodeAudio appends s16le PCM in the configured layout presented at t.
// Gaps before t are filled with silence.
func (e *Encoder) EncodeAudio(pcm []byte, t float64) error {
	if !e.prepared || e.videoClosed {
		return errors.New("ffmpeg: encoder is not ready")
	}
	if err := e.aSeq.Next(t); err != nil {
		return err
	}
	if gap := encoder.SamplePosition(t, e.opts.AudioSampleRate) - e.audio.Frames(); gap > 0 {
		if err := e.audio.WriteSilence(int(gap)); err != nil {
			return err
		}
	}
	if err := e.audio.Write(pcm); err != nil {
		return fmt.Errorf("ffmpeg: audio: %w", err)
	}
	e.hasAudio = true
	return nil
}

// FinishWriting flushes the streams and writes the output file.
func (e *Encoder) FinishWriting() error {
	if !e.prepared || e.videoClosed {
		return errors.New("ffmpeg: encoder is not ready")
	}
	e.video.Close()
	e.videoClosed = true
	// ffmpeg starts with the first frame, there is no video file before
	if e.frames == 0 {
		return ErrNoFrames
	}

	if !e.hasAudio {
		if err := e.audio.Close(); err != nil {
			return err
		}
		return os.Rename(e.vPath, e.opts.Path)
	}

	// the audio track covers the whole video
	end := encoder.SamplePosition(frameclock.Timestamp(e.frames, e.opts.FrameRate), e.opts.AudioSampleRate)
	if gap := end - e.audio.Frames(); gap > 0 {
		if err := e.audio.WriteSilence(int(gap)); err != nil {
			return err
		}
	}
	if err := e.audio.Close(); err != nil {
		return err
	}
	if err := e.run(e.opts.FFmpeg, muxArgs(e.vPath, e.audio.Path(), e.opts)...); err != nil {
		_ = os.Remove(e.opts.Path)
		return fmt.Errorf("ffmpeg: mux: %w", err)
	}
	return nil
}

// Dispose releases everything that is still open and removes
// the intermediate files. It can be called after a failed Prepare.
func (e *Encoder) Dispose() (err error) {
	if e.disposed {
		return errors.New("ffmpeg: already disposed")
	}
	e.disposed = true
	if e.video != nil && !e.videoClosed {
		e.video.Close()
		e.videoClosed = true
	}
	if e.audio != nil {
		err = errors.Join(err, e.audio.Close())
	}
	if e.dir != "" {
		err = errors.Join(err, os.RemoveAll(e.dir))
	}
	return err
}

// Frames returns the number of written frames.
func (e *Encoder) Frames() int { return e.frames }

// muxArgs makes ffmpeg arguments that copy the video stream and
// encode the WAV track into AAC.
func muxArgs(video, audio string, opts encoder.Options) []string {
	return []string{
		"-y",
		"-hide_banner",
		"-loglevel", "error",
		"-i", video,
		"-i", audio,
		"-map", "0:v:0",
		"-map", "1:a:0",
		"-c:v", "copy",
		"-c:a", "aac",
		"-b:a", strconv.Itoa(opts.AudioBitRate),
		"-ar", strconv.Itoa(opts.AudioSampleRate),
		"-ac", strconv.Itoa(opts.AudioChannelCount),
		opts.Path,
	}
}

func ext(path string) string {
	if e := filepath.Ext(path); e != "" {
		return e
	}
	return ".mp4"
}

func run(name string, args ...string) error {
	cmd := exec.CommandContext(context.Background(), name, args...) //nolint:gosec
	if output, err := cmd.CombinedOutput(); err != nil {
		return fmt.Errorf("%w: %s", err, strings.TrimSpace(string(output)))
	}
	return nil
}

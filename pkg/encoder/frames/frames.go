// Package frames writes an export as an image sequence.
//
// The output directory gets one PNG file per frame, the audio track in
// audio.wav and an ffconcat demuxer file that plays the frames with their
// durations, so the result can be converted later with:
//
//	ffmpeg -f concat -i input.txt -i audio.wav -pix_fmt yuv420p out.mp4
package frames

import (
	"errors"
	"fmt"
	"image"
	"os"
	"path/filepath"

	"github.com/giongto35/vexport/pkg/encoder"
	"github.com/giongto35/vexport/pkg/encoder/wav"
	"github.com/giongto35/vexport/pkg/frameclock"
	"github.com/giongto35/vexport/pkg/logger"
	oss "github.com/giongto35/vexport/pkg/os"
)

const audioFile = "audio.wav"

type Encoder struct {
	opts encoder.Options
	log  *logger.Logger

	video *pngStream
	audio *wav.Stream
	times []float64

	vSeq, aSeq encoder.Sequence
	hasAudio   bool

	prepared, finished, disposed bool
}

// New returns an encoder writing into the opts.Path directory.
func New(opts encoder.Options, log *logger.Logger) (*Encoder, error) {
	opts = opts.WithDefaults()
	if err := opts.Validate(); err != nil {
		return nil, fmt.Errorf("frames: %w", err)
	}
	return &Encoder{
		opts: opts,
		log:  log,
		vSeq: encoder.NewSequence(true),
		aSeq: encoder.NewSequence(false),
	}, nil
}

func (e *Encoder) Prepare() error {
	if e.prepared {
		return errors.New("frames: already prepared")
	}
	path, err := oss.OutputPath(e.opts.Path, true)
	if err != nil {
		return err
	}
	e.opts.Path = path
	e.log.Info().Msgf("[frames] path will be [%v]", path)

	e.video = newPngStream(path, e.opts.CompressionLevel)
	audio, err := wav.New(filepath.Join(path, audioFile), e.opts.AudioSampleRate, e.opts.AudioChannelCount)
	if err != nil {
		return err
	}
	e.audio = audio
	e.prepared = true
	return nil
}

// EncodeFrame saves a copy of the frame, the image can be reused
// as soon as the call returns.
func (e *Encoder) EncodeFrame(img *image.RGBA, t float64) error {
	if !e.prepared || e.finished {
		return errors.New("frames: encoder is not ready")
	}
	b := img.Bounds()
	if b.Dx() != e.opts.Width || b.Dy() != e.opts.Height {
		return fmt.Errorf("frames: frame size %vx%v != %vx%v", b.Dx(), b.Dy(), e.opts.Width, e.opts.Height)
	}
	if err := e.vSeq.Next(t); err != nil {
		return err
	}
	if err := e.video.Write(img); err != nil {
		return err
	}
	e.times = append(e.times, t)
	return nil
}

func (e *Encoder) EncodeAudio(pcm []byte, t float64) error {
	if !e.prepared || e.finished {
		return errors.New("frames: encoder is not ready")
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
		return err
	}
	e.hasAudio = true
	return nil
}

// FinishWriting waits for all the frames to be saved and writes
// the demuxer file, then optionally compresses the directory.
func (e *Encoder) FinishWriting() error {
	if !e.prepared || e.finished {
		return errors.New("frames: encoder is not ready")
	}
	e.finished = true

	if err := e.video.Close(); err != nil {
		return err
	}
	if e.hasAudio {
		end := encoder.SamplePosition(frameclock.Timestamp(len(e.times), e.opts.FrameRate), e.opts.AudioSampleRate)
		if gap := end - e.audio.Frames(); gap > 0 {
			if err := e.audio.WriteSilence(int(gap)); err != nil {
				return err
			}
		}
	}
	if err := e.audio.Close(); err != nil {
		return err
	}
	if !e.hasAudio {
		if err := os.Remove(e.audio.Path()); err != nil {
			return err
		}
	}
	if err := writeDemuxFile(e.opts.Path, e.video.Names(), e.times, e.hasAudio, e.opts); err != nil {
		return err
	}

	if e.opts.Zip {
		if err := compress(e.opts.Path, e.opts.Path); err != nil {
			return fmt.Errorf("frames: compress: %w", err)
		}
		if err := os.RemoveAll(e.opts.Path); err != nil {
			return err
		}
		e.log.Debug().Msgf("[frames] compressed into %v.zip", e.opts.Path)
	}
	return nil
}

func (e *Encoder) Dispose() (err error) {
	if e.disposed {
		return errors.New("frames: already disposed")
	}
	e.disposed = true
	if e.video != nil && !e.finished {
		err = errors.Join(err, e.video.Close())
	}
	if e.audio != nil {
		err = errors.Join(err, e.audio.Close())
	}
	return err
}

// Frames returns the number of accepted frames.
func (e *Encoder) Frames() int { return len(e.times) }

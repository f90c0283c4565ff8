// Package encoder holds the configuration shared by the output encoders.
// The encoders themselves are in the subpackages:
//
//   - ffmpeg writes a single video file (H.264 + AAC by default),
//   - frames writes an image sequence with a WAV track and an ffconcat file.
package encoder

import (
	"errors"
	"fmt"
	"math"
	"path/filepath"
)

type Backend string

const (
	FFmpeg Backend = "ffmpeg"
	Frames Backend = "frames"
)

const (
	DefaultAudioSampleRate   = 44100
	DefaultAudioBitRate      = 128000
	DefaultAudioChannelCount = 2
	// DefaultIFrameInterval is the key frame interval in seconds.
	DefaultIFrameInterval = 1
	DefaultCodec          = "libx264"
	DefaultBinary         = "ffmpeg"
)

type Options struct {
	Backend Backend

	// Path is the output file (or directory for the frames backend).
	Path          string
	Width, Height int
	FrameRate     float64
	// BitRate of the video, zero to let the codec decide.
	BitRate int
	Codec   string

	AudioSampleRate   int
	AudioBitRate      int
	AudioChannelCount int

	// FFmpeg is the ffmpeg binary name or path.
	FFmpeg string
	// TempDir keeps intermediate files, the output directory if empty.
	TempDir string

	// frames backend
	CompressionLevel int
	Zip              bool
}

// WithDefaults fills the unset values.
func (o Options) WithDefaults() Options {
	if o.AudioSampleRate == 0 {
		o.AudioSampleRate = DefaultAudioSampleRate
	}
	if o.AudioBitRate == 0 {
		o.AudioBitRate = DefaultAudioBitRate
	}
	if o.AudioChannelCount == 0 {
		o.AudioChannelCount = DefaultAudioChannelCount
	}
	if o.Codec == "" {
		o.Codec = DefaultCodec
	}
	if o.FFmpeg == "" {
		o.FFmpeg = DefaultBinary
	}
	if o.Backend == "" {
		o.Backend = FFmpeg
	}
	if o.TempDir == "" && o.Path != "" {
		o.TempDir = filepath.Dir(o.Path)
	}
	return o
}

func (o Options) Validate() error {
	var err error
	if o.Path == "" {
		err = errors.Join(err, errors.New("no output path"))
	}
	if o.Width <= 0 || o.Height <= 0 {
		err = errors.Join(err, fmt.Errorf("bad frame size %vx%v", o.Width, o.Height))
	}
	if o.FrameRate <= 0 || math.IsInf(o.FrameRate, 0) || math.IsNaN(o.FrameRate) {
		err = errors.Join(err, fmt.Errorf("bad frame rate %v", o.FrameRate))
	}
	if o.AudioSampleRate <= 0 || o.AudioChannelCount <= 0 || o.AudioBitRate <= 0 {
		err = errors.Join(err, fmt.Errorf("bad audio format %vHz x%v %vbps",
			o.AudioSampleRate, o.AudioChannelCount, o.AudioBitRate))
	}
	return err
}

// GOP returns the key frame interval in frames.
func (o Options) GOP() int {
	g := int(math.Round(o.FrameRate * DefaultIFrameInterval))
	if g < 1 {
		g = 1
	}
	return g
}

// ErrNonMonotonic is returned when a frame or audio timestamp goes back.
var ErrNonMonotonic = errors.New("non-monotonic timestamp")

// Sequence checks that the timestamps of a stream only grow.
type Sequence struct {
	last    float64
	started bool
	strict  bool
}

// NewSequence returns a checker. Strict sequences reject equal timestamps.
func NewSequence(strict bool) Sequence { return Sequence{strict: strict} }

func (s *Sequence) Next(t float64) error {
	if s.started && (t < s.last || (s.strict && t == s.last)) {
		return fmt.Errorf("%w: %v after %v", ErrNonMonotonic, t, s.last)
	}
	s.last, s.started = t, true
	return nil
}

// SamplePosition returns the sample frame index of the presentation time t.
func SamplePosition(t float64, rate int) int64 { return int64(math.Round(t * float64(rate))) }

package export

import (
	"github.com/giongto35/vexport/pkg/encoder"
	"github.com/giongto35/vexport/pkg/extractor"
)

type Options struct {
	Width, Height int
	FrameRate     float64

	AudioSampleRate   int
	AudioBitRate      int
	AudioChannelCount int

	// Output is the path of the result.
	Output       string
	VideoBitRate int
	Codec        string
	Backend      encoder.Backend
	FFmpeg       string
	TempDir      string

	CompressionLevel int
	Zip              bool
}

// WithAudioDefaults fills the unset audio settings
// with 44100 Hz, 128000 bps and 2 channels.
func (o Options) WithAudioDefaults() Options {
	if o.AudioSampleRate <= 0 {
		o.AudioSampleRate = encoder.DefaultAudioSampleRate
	}
	if o.AudioBitRate <= 0 {
		o.AudioBitRate = encoder.DefaultAudioBitRate
	}
	if o.AudioChannelCount <= 0 {
		o.AudioChannelCount = encoder.DefaultAudioChannelCount
	}
	return o
}

func (o Options) encoder() encoder.Options {
	return encoder.Options{
		Backend:           o.Backend,
		Path:              o.Output,
		Width:             o.Width,
		Height:            o.Height,
		FrameRate:         o.FrameRate,
		BitRate:           o.VideoBitRate,
		Codec:             o.Codec,
		AudioSampleRate:   o.AudioSampleRate,
		AudioBitRate:      o.AudioBitRate,
		AudioChannelCount: o.AudioChannelCount,
		FFmpeg:            o.FFmpeg,
		TempDir:           o.TempDir,
		CompressionLevel:  o.CompressionLevel,
		Zip:               o.Zip,
	}
}

func (o Options) extractor() extractor.Options {
	return extractor.Options{
		FrameRate:  o.FrameRate,
		SampleRate: o.AudioSampleRate,
		Channels:   o.AudioChannelCount,
		FFmpeg:     o.FFmpeg,
	}
}

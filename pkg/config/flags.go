package config

import (
	"github.com/spf13/pflag"
)

// Flags are the runtime params that are not part of the config.
type Flags struct {
	Config      string
	Composition string
	Upload      bool
}

// ConfigPath finds the --config flag value before the config is loaded.
func ConfigPath(args []string) string {
	fs := pflag.NewFlagSet("config", pflag.ContinueOnError)
	fs.ParseErrorsWhitelist.UnknownFlags = true
	fs.Usage = func() {}
	path := fs.StringP("config", "c", "", "")
	_ = fs.Parse(args)
	return *path
}

// AddFlags defines own flags with default value set to the current config param.
// Don't forget to call Parse().
func (c *Config) AddFlags(fs *pflag.FlagSet) *Flags {
	f := &Flags{}
	fs.StringVarP(&f.Config, "config", "c", "", "Set custom configuration file path")
	fs.StringVarP(&f.Composition, "composition", "i", "", "Composition YAML file")
	fs.BoolVar(&f.Upload, "upload", false, "Upload the result into the configured storage")

	fs.StringVarP(&c.Export.Output, "output", "o", c.Export.Output, "Output file")
	fs.IntVar(&c.Export.Width, "width", c.Export.Width, "Output width")
	fs.IntVar(&c.Export.Height, "height", c.Export.Height, "Output height")
	fs.Float64Var(&c.Export.FrameRate, "fps", c.Export.FrameRate, "Output frame rate")
	fs.BoolVar(&c.Export.Label, "label", c.Export.Label, "Draw the timecode")

	fs.StringVar(&c.Encoder.Backend, "backend", c.Encoder.Backend, "Encoder backend (ffmpeg, frames)")
	fs.StringVar(&c.Encoder.Codec, "codec", c.Encoder.Codec, "Video codec")
	fs.IntVar(&c.Encoder.BitRate, "bitrate", c.Encoder.BitRate, "Video bit rate, 0 for the codec default")
	fs.IntVar(&c.Encoder.Audio.SampleRate, "audio.rate", c.Encoder.Audio.SampleRate, "Audio sample rate")
	fs.IntVar(&c.Encoder.Audio.BitRate, "audio.bitrate", c.Encoder.Audio.BitRate, "Audio bit rate")
	fs.IntVar(&c.Encoder.Audio.Channels, "audio.channels", c.Encoder.Audio.Channels, "Audio channel count")
	fs.StringVar(&c.Encoder.FFmpeg, "ffmpeg", c.Encoder.FFmpeg, "ffmpeg binary")

	fs.StringVar(&c.Surface.Interpolation, "interpolation", c.Surface.Interpolation, "Image scaling (nearest, bilinear, catmullrom)")
	fs.IntVar(&c.Monitoring.Port, "monitoring.port", c.Monitoring.Port, "Monitoring server port")
	fs.BoolVar(&c.Log.Debug, "debug", c.Log.Debug, "Debug logs")
	return f
}

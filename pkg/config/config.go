// Package config holds the settings of the exporter.
// The values are read from config.yaml (see LoadConfig),
// then the environment (VEXPORT_*), then the runtime flags.
package config

import (
	"fmt"
	"time"

	"github.com/giongto35/vexport/pkg/os"
)

type Config struct {
	Export     Export
	Encoder    Encoder
	Surface    Surface
	Sources    Sources
	Storage    Storage
	Monitoring Monitoring
	Log        Log
}

type Export struct {
	Width     int     `default:"1280"`
	Height    int     `default:"720"`
	FrameRate float64 `fig:"frame_rate" default:"30"`
	Output    string  `default:"out.mp4"`
	// Label draws the timecode over the frames.
	Label bool
}

type Encoder struct {
	// Backend is ffmpeg or frames.
	Backend string `default:"ffmpeg"`
	Codec   string `default:"libx264"`
	BitRate int    `fig:"bit_rate"`
	Audio   struct {
		SampleRate int `fig:"sample_rate" default:"44100"`
		BitRate    int `fig:"bit_rate" default:"128000"`
		Channels   int `default:"2"`
	}
	FFmpeg  string `fig:"ffmpeg" default:"ffmpeg"`
	TempDir string `fig:"temp_dir"`
	Frames  struct {
		CompressionLevel int `fig:"compression_level"`
		Zip              bool
	}
}

type Surface struct {
	// Interpolation of the scaled images: nearest, bilinear, catmullrom.
	Interpolation string `default:"bilinear"`
	// Platform selects the settle profile, the current OS if empty.
	Platform string
	// FirstFlushSettle overrides the platform settle delay.
	FirstFlushSettle time.Duration `fig:"first_flush_settle"`
}

type Sources struct {
	// CacheDir keeps the downloaded sources, {user} is the home directory.
	CacheDir    string `fig:"cache_dir" default:"{user}/.vexport/cache"`
	Concurrency int    `default:"4"`
}

type Storage struct {
	// Provider is none, google or oracle.
	Provider string `default:"none"`
	// Bucket of the google storage.
	Bucket string
	// AccessURL is the oracle pre-authenticated request URL.
	AccessURL string `fig:"access_url"`
	// Prefix of the uploaded file names.
	Prefix string
}

type Monitoring struct {
	Port             int
	URLPrefix        string `fig:"url_prefix"`
	MetricEnabled    bool   `fig:"metric_enabled"`
	ProfilingEnabled bool   `fig:"profiling_enabled"`
}

func (c *Monitoring) IsEnabled() bool { return c.MetricEnabled || c.ProfilingEnabled }

type Log struct {
	Debug bool
	// JSON switches the console output to JSON lines.
	JSON    bool `fig:"json"`
	NoColor bool `fig:"no_color"`
}

// NewConfig loads the config from the path or the default locations.
func NewConfig(path string) (conf Config, err error) {
	if err = LoadConfig(&conf, path); err != nil {
		return conf, err
	}
	err = conf.expandSpecialTags()
	return
}

// expandSpecialTags replaces all the special tags in the config.
func (c *Config) expandSpecialTags() error {
	for _, dir := range []*string{&c.Sources.CacheDir, &c.Encoder.TempDir, &c.Export.Output} {
		path, err := os.ExpandUser(*dir)
		if err != nil {
			return fmt.Errorf("couldn't read user home directory, %w", err)
		}
		*dir = path
	}
	return nil
}

// Redacted returns a copy of the config safe for logging.
// The access URL of the storage is a secret.
func (c Config) Redacted() Config {
	if c.Storage.AccessURL != "" {
		c.Storage.AccessURL = "[redacted]"
	}
	return c
}

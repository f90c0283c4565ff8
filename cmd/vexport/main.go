package main

import (
	"context"
	"errors"
	"fmt"
	"io/fs"
	"os"
	"path/filepath"
	"time"

	"github.com/giongto35/vexport/pkg/composition"
	"github.com/giongto35/vexport/pkg/config"
	"github.com/giongto35/vexport/pkg/downloader"
	"github.com/giongto35/vexport/pkg/encoder"
	"github.com/giongto35/vexport/pkg/export"
	"github.com/giongto35/vexport/pkg/frameclock"
	"github.com/giongto35/vexport/pkg/logger"
	"github.com/giongto35/vexport/pkg/monitoring"
	oss "github.com/giongto35/vexport/pkg/os"
	"github.com/giongto35/vexport/pkg/storage"
	"github.com/giongto35/vexport/pkg/thread"
	"github.com/prometheus/client_golang/prometheus"
	flag "github.com/spf13/pflag"
)

var Version = "?"

func run() int {
	conf, err := config.NewConfig(config.ConfigPath(os.Args[1:]))
	if err != nil {
		_, _ = fmt.Fprintf(os.Stderr, "config: %v\n", err)
		return 2
	}
	flags := conf.AddFlags(flag.CommandLine)
	flag.Parse()

	var log *logger.Logger
	if conf.Log.JSON {
		log = logger.New(conf.Log.Debug)
	} else {
		log = logger.NewConsole(conf.Log.Debug, "vexport", conf.Log.NoColor)
	}
	log.Info().Msgf("version %v", Version)
	log.Debug().Msgf("config: %+v", conf.Redacted())

	if flags.Composition == "" {
		log.Error().Msg("no composition, use -i file.yaml")
		flag.Usage()
		return 2
	}
	comp, err := composition.Load(flags.Composition)
	if err != nil {
		log.Error().Err(err).Msg("bad composition")
		return 1
	}
	if urls := comp.Remote(); len(urls) > 0 {
		log.Info().Msgf("[sources] fetching %v files into [%v]", len(urls), conf.Sources.CacheDir)
		files, err := downloader.New(conf.Sources.Concurrency, log).Download(conf.Sources.CacheDir, urls...)
		if err != nil {
			log.Error().Err(err).Msg("[sources] download failed")
			return 1
		}
		if comp, err = comp.Resolve(files); err != nil {
			log.Error().Err(err).Send()
			return 1
		}
	}

	lock, err := oss.NewFileLock(conf.Export.Output + ".lock")
	if err != nil {
		log.Error().Err(err).Msg("no lock")
		return 1
	}
	if err = lock.TryLock(); err != nil {
		log.Error().Err(err).Msgf("output [%v] is busy", conf.Export.Output)
		return 1
	}
	defer func() {
		if err := lock.Unlock(); err != nil {
			log.Warn().Err(err).Msg("unlock")
		}
	}()

	reg := prometheus.NewRegistry()
	metrics := monitoring.NewMetrics(reg)
	if conf.Monitoring.IsEnabled() {
		mon := monitoring.New(conf.Monitoring, reg, "vexport", log)
		if err := mon.Run(); err != nil {
			log.Error().Err(err).Msg("monitoring")
			return 1
		}
		defer func() {
			ctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
			defer cancel()
			_ = mon.Shutdown(ctx)
		}()
	}

	profile := settleProfile(conf.Surface.Platform, conf.Surface.FirstFlushSettle)
	pipe := export.New(export.DefaultCollaborators(profile, conf.Surface.Interpolation, log), log, metrics)
	opts := export.Options{
		Width:             conf.Export.Width,
		Height:            conf.Export.Height,
		FrameRate:         conf.Export.FrameRate,
		AudioSampleRate:   conf.Encoder.Audio.SampleRate,
		AudioBitRate:      conf.Encoder.Audio.BitRate,
		AudioChannelCount: conf.Encoder.Audio.Channels,
		Output:            conf.Export.Output,
		VideoBitRate:      conf.Encoder.BitRate,
		Codec:             conf.Encoder.Codec,
		Backend:           encoder.Backend(conf.Encoder.Backend),
		FFmpeg:            conf.Encoder.FFmpeg,
		TempDir:           conf.Encoder.TempDir,
		CompressionLevel:  conf.Encoder.Frames.CompressionLevel,
		Zip:               conf.Encoder.Frames.Zip,
	}
	st := newStats()
	hooks := export.Hooks[frameStat]{
		BeforeDrawFrame: st.before,
		AfterDrawFrame:  st.after,
		Mix:             volumeMixer(comp.Gains()),
	}

	started := time.Now()
	job := export.Start(pipe, comp, fitDrawer(conf.Export.Label, conf.Export.FrameRate), opts, hooks)
	log.Info().Str("export", job.ID).Msgf("[export] %v -> %v", flags.Composition, conf.Export.Output)

	// the export can't be stopped midway, so a signal ends the process
	go func() {
		sig := <-oss.ExpectTermination()
		log.Warn().Msgf("interrupted [%v]", sig)
		_ = lock.Unlock()
		os.Exit(130)
	}()

	pr := newProgress(os.Stderr, log)
	err = job.Wait(pr.update)
	pr.done()
	if err != nil {
		var ee *export.Error
		if errors.As(err, &ee) && ee.Frame >= 0 {
			log.Error().Err(ee.Err).Str("kind", ee.Kind.Error()).Int("frame", ee.Frame).Msg("[export] failed")
		} else {
			log.Error().Err(err).Msg("[export] failed")
		}
		return 1
	}

	result := resultPath(opts)
	s := summary{
		Output:   result,
		Size:     sizeOf(result),
		Frames:   frameclock.TotalFrames(comp.Duration, opts.FrameRate),
		Width:    opts.Width,
		Height:   opts.Height,
		FPS:      opts.FrameRate,
		Audio:    fmt.Sprintf("%v Hz x%v", opts.AudioSampleRate, opts.AudioChannelCount),
		Took:     time.Since(started),
		AvgFrame: st.Average(),
	}

	if flags.Upload {
		name, err := upload(conf.Storage, result)
		if err != nil {
			log.Error().Err(err).Msg("[storage] upload failed")
			return 1
		}
		s.Uploaded = name
	}
	fmt.Println(s.Render())
	return 0
}

// resultPath is the file or the directory made by the encoder.
func resultPath(o export.Options) string {
	if o.Backend == encoder.Frames && o.Zip {
		return o.Output + ".zip"
	}
	return o.Output
}

func sizeOf(path string) (n int64) {
	_ = filepath.WalkDir(path, func(_ string, d fs.DirEntry, err error) error {
		if err != nil || d.IsDir() {
			return nil
		}
		if fi, err := d.Info(); err == nil {
			n += fi.Size()
		}
		return nil
	})
	return
}

func upload(conf config.Storage, path string) (string, error) {
	if fi, err := os.Stat(path); err != nil {
		return "", err
	} else if fi.IsDir() {
		return "", fmt.Errorf("%v is a directory, enable the frames zip", path)
	}
	st, err := storage.New(conf)
	if err != nil {
		return "", err
	}
	name := storage.Name(conf.Prefix, path)
	if err = st.Save(name, path); err != nil {
		return "", err
	}
	return name, nil
}

func main() {
	code := 0
	thread.MainWrapMaybe(func() { code = run() })
	os.Exit(code)
}

// Package export renders a composition frame by frame into an encoded file.
//
// For every output frame the pipeline decodes the frame slice of the
// composition, lets the caller draw it onto an offscreen canvas, encodes
// the canvas and the mixed audio of the slice. The work runs on its own
// worker thread (see Start), the caller only receives the events.
package export

import (
	"fmt"
	"time"

	"github.com/giongto35/vexport/pkg/composition"
	"github.com/giongto35/vexport/pkg/frameclock"
	"github.com/giongto35/vexport/pkg/logger"
	"github.com/giongto35/vexport/pkg/media"
	"github.com/giongto35/vexport/pkg/surface"
	"github.com/gofrs/uuid"
)

type (
	// DrawInput is everything a drawer gets for one frame.
	DrawInput[T any] struct {
		Context     T
		Canvas      *surface.Canvas
		Composition *composition.Composition
		CurrentTime float64
		// Frames are the decoded video frames by item ID,
		// valid only during the call.
		Frames        map[string]media.VideoFrame
		Width, Height int
		Frame         int
	}
	Drawer[T any] func(in DrawInput[T]) error

	MixInput[T any] struct {
		AudioSamples map[string]media.AudioSample
		Context      T
		CurrentTime  float64
		Composition  *composition.Composition
	}
	// Mixer makes the audio of one frame, nil means no audio.
	Mixer[T any] func(in MixInput[T]) ([]byte, error)

	Progress struct {
		FramesCompleted int
		TotalFrames     int
	}

	// Hooks are optional callbacks of an export.
	// T is the render context of one frame made by BeforeDrawFrame.
	Hooks[T any] struct {
		BeforeDrawFrame func() (T, error)
		AfterDrawFrame  func(T) error
		// Mix replaces the default mixer (media.Mix).
		Mix        Mixer[T]
		OnProgress func(Progress)
	}
)

type Pipeline struct {
	c       Collaborators
	log     *logger.Logger
	metrics Metrics
	sleep   func(time.Duration)
}

func New(c Collaborators, log *logger.Logger, metrics Metrics) *Pipeline {
	if metrics == nil {
		metrics = noMetrics{}
	}
	return &Pipeline{c: c, log: log, metrics: metrics, sleep: time.Sleep}
}

// Run exports the composition on the calling goroutine.
// The error is always *Error.
func Run[T any](p *Pipeline, comp *composition.Composition, draw Drawer[T], opts Options, hooks Hooks[T]) error {
	return run(p, newID(), comp, draw, opts, hooks)
}

func newID() string { return uuid.Must(uuid.NewV4()).String() }

func run[T any](p *Pipeline, id string, comp *composition.Composition, draw Drawer[T], opts Options, hooks Hooks[T]) (err error) {
	log := p.log.Extend(p.log.With().Str("export", id))
	start := time.Now()
	opts = opts.WithAudioDefaults()
	log.Info().Msgf("%vx%v@%v %vHz x%v -> %v", opts.Width, opts.Height, opts.FrameRate,
		opts.AudioSampleRate, opts.AudioChannelCount, opts.Output)

	var enc Encoder
	defer func() {
		if enc != nil {
			if err == nil {
				if er := enc.FinishWriting(); er != nil {
					err = fail(ErrFinalizeFailed, -1, er)
				}
			}
			p.release(log, "encoder", enc.Dispose)
		}
		took := time.Since(start)
		p.metrics.ExportDone(err, took.Seconds())
		if err != nil {
			log.Error().Err(err).Msgf("export has failed after %v", took)
			return
		}
		log.Info().Msgf("export has finished in %v", took)
	}()

	srf, er := p.c.NewSurface(opts.Width, opts.Height)
	if er != nil {
		return fail(ErrSurfaceCreationFailed, -1, er)
	}
	defer p.release(log, "surface", srf.Dispose)

	if enc, er = p.c.NewEncoder(opts.encoder()); er != nil {
		return fail(ErrEncoderPrepareFailed, -1, er)
	}
	if er = enc.Prepare(); er != nil {
		return fail(ErrEncoderPrepareFailed, -1, er)
	}

	ext, er := p.c.NewExtractor(comp, opts.extractor())
	if er != nil {
		return fail(ErrExtractorStartFailed, -1, er)
	}
	defer p.release(log, "extractor", ext.Dispose)
	if er = ext.Start(); er != nil {
		return fail(ErrExtractorStartFailed, -1, er)
	}

	total := frameclock.TotalFrames(comp.Duration, opts.FrameRate)
	log.Debug().Msgf("frames: %v", total)

	for i := 0; i < total; i++ {
		if err = frame(p, i, total, comp, srf, ext, enc, draw, opts, hooks); err != nil {
			return err
		}
		p.metrics.FrameDone()
	}
	return nil
}

// frame makes the frame i.
func frame[T any](p *Pipeline, i, total int, comp *composition.Composition, srf Surface, ext Extractor, enc Encoder,
	draw Drawer[T], opts Options, hooks Hooks[T]) error {
	t := frameclock.Timestamp(i, opts.FrameRate)

	frames, err := ext.DecodeVideo(t)
	if err != nil {
		return fail(ErrFrameDecodeFailed, i, err)
	}
	samples, err := ext.DecodeAudio(t)
	if err != nil {
		return fail(ErrFrameDecodeFailed, i, err)
	}

	canvas := srf.Canvas()
	canvas.Clear(surface.Transparent)

	var ctx T
	if hooks.BeforeDrawFrame != nil {
		if err = protect(func() (er error) { ctx, er = hooks.BeforeDrawFrame(); return }); err != nil {
			return fail(ErrDrawCallbackFailed, i, err)
		}
	}
	if draw != nil {
		in := DrawInput[T]{
			Context:     ctx,
			Canvas:      canvas,
			Composition: comp,
			CurrentTime: t,
			Frames:      frames,
			Width:       opts.Width,
			Height:      opts.Height,
			Frame:       i,
		}
		if err = protect(func() error { return draw(in) }); err != nil {
			return fail(ErrDrawCallbackFailed, i, err)
		}
	}

	if err = srf.Flush(); err != nil {
		return fail(ErrEncodeFailed, i, fmt.Errorf("flush: %w", err))
	}
	if i == 0 {
		if err = p.settle(srf); err != nil {
			return fail(ErrEncodeFailed, i, fmt.Errorf("flush: %w", err))
		}
	}
	if err = enc.EncodeFrame(srf.Texture(), t); err != nil {
		return fail(ErrEncodeFailed, i, err)
	}

	var pcm []byte
	if hooks.Mix != nil {
		in := MixInput[T]{AudioSamples: samples, Context: ctx, CurrentTime: t, Composition: comp}
		if err = protect(func() (er error) { pcm, er = hooks.Mix(in); return }); err != nil {
			return fail(ErrDrawCallbackFailed, i, err)
		}
	} else {
		pcm = media.Mix(samples)
	}
	if len(pcm) > 0 {
		if err = enc.EncodeAudio(pcm, t); err != nil {
			return fail(ErrEncodeFailed, i, err)
		}
	}

	if hooks.AfterDrawFrame != nil {
		if err = protect(func() error { return hooks.AfterDrawFrame(ctx) }); err != nil {
			return fail(ErrDrawCallbackFailed, i, err)
		}
	}
	if hooks.OnProgress != nil {
		report := Progress{FramesCompleted: i + 1, TotalFrames: total}
		if err = protect(func() error { hooks.OnProgress(report); return nil }); err != nil {
			return fail(ErrDrawCallbackFailed, i, err)
		}
	}
	return nil
}

// settle waits until the first flush is visible in the texture.
func (p *Pipeline) settle(srf Surface) error {
	if w, ok := srf.(flushWaiter); ok {
		return w.WaitFlushed()
	}
	if d := srf.Profile().FirstFlushSettle; d > 0 {
		p.sleep(d)
	}
	return nil
}

// release disposes a resource, its error is only logged.
func (p *Pipeline) release(log *logger.Logger, name string, dispose func() error) {
	if err := dispose(); err != nil {
		p.metrics.CleanupFailed()
		log.Warn().Err(err).Msgf("%v dispose", name)
	}
}

// Package extractor decodes the items of a composition frame by frame.
//
// Video frames of every item are read sequentially with Vidio, the audio
// of an item is decoded by an ffmpeg child process into interleaved s16le
// PCM of the export format and consumed in slices of exactly one output
// frame. Timestamps must grow with every call, there is no seeking back.
package extractor

import (
	"context"
	"errors"
	"fmt"
	"image"
	"math"
	"path/filepath"
	"strings"
	"sync"

	"github.com/giongto35/vexport/pkg/composition"
	"github.com/giongto35/vexport/pkg/encoder"
	"github.com/giongto35/vexport/pkg/frameclock"
	"github.com/giongto35/vexport/pkg/logger"
	"github.com/giongto35/vexport/pkg/media"
	"golang.org/x/sync/errgroup"
)

// ErrNonMonotonic is returned when a decode call goes back in time.
var ErrNonMonotonic = errors.New("extractor: non-monotonic timestamp")

const eps = 1e-9

type Options struct {
	FrameRate  float64
	SampleRate int
	Channels   int
	// FFmpeg is the ffmpeg binary name or path.
	FFmpeg string
}

func (o Options) validate() error {
	if o.FrameRate <= 0 || math.IsInf(o.FrameRate, 0) || math.IsNaN(o.FrameRate) {
		return fmt.Errorf("extractor: bad frame rate %v", o.FrameRate)
	}
	if o.SampleRate <= 0 || o.Channels <= 0 {
		return fmt.Errorf("extractor: bad audio format %vHz x%v", o.SampleRate, o.Channels)
	}
	return nil
}

type (
	videoSource interface {
		// Frame returns the source frame presented at t seconds of the source,
		// the last one after the end, or nil when there are no frames.
		Frame(t float64) (*image.RGBA, error)
		// HasAudio tells if the source has an audio stream.
		HasAudio() bool
		Close() error
	}
	audioSource interface {
		// Read fills the buffer with PCM, the part past the end is silence.
		Read(buf []byte) error
		Close() error
	}
)

type track struct {
	item  composition.Item
	video videoSource
	audio audioSource
}

type Extractor struct {
	comp *composition.Composition
	opts Options
	log  *logger.Logger

	tracks []*track

	ctx    context.Context
	cancel context.CancelFunc

	lastVideo, lastAudio float64
	videoStarted         bool
	audioStarted         bool

	started, disposed bool

	openVideo func(path string) (videoSource, error)
	openAudio func(ctx context.Context, path string, start float64) (audioSource, error)
}

// New makes an extractor of the composition, nothing is opened until Start.
func New(comp *composition.Composition, opts Options, log *logger.Logger) (*Extractor, error) {
	if comp == nil {
		return nil, errors.New("extractor: no composition")
	}
	if err := opts.validate(); err != nil {
		return nil, err
	}
	if opts.FFmpeg == "" {
		opts.FFmpeg = "ffmpeg"
	}
	e := &Extractor{comp: comp, opts: opts, log: log}
	// Vidio probes with the ffmpeg found on PATH
	bin := sync.OnceValues(func() (string, error) { return encoder.UseBinary(opts.FFmpeg) })
	e.openVideo = func(path string) (videoSource, error) {
		if _, err := bin(); err != nil {
			return nil, err
		}
		return newVidioSource(path)
	}
	e.openAudio = func(ctx context.Context, path string, start float64) (audioSource, error) {
		b, err := bin()
		if err != nil {
			return nil, err
		}
		return newPCMSource(ctx, b, path, start, opts.SampleRate, opts.Channels)
	}
	return e, nil
}

// Start opens the sources of all the items.
func (e *Extractor) Start() error {
	if e.started {
		return errors.New("extractor: already started")
	}
	if e.disposed {
		return errors.New("extractor: disposed")
	}
	e.started = true
	e.ctx, e.cancel = context.WithCancel(context.Background())

	e.tracks = make([]*track, len(e.comp.Items))
	g := errgroup.Group{}
	for i, it := range e.comp.Items {
		i, it := i, it
		g.Go(func() error {
			t, err := e.open(it)
			e.tracks[i] = t
			return err
		})
	}
	if err := g.Wait(); err != nil {
		return err
	}
	e.log.Debug().Msgf("extractor: %v items @%vfps %vHz x%v", len(e.tracks), e.opts.FrameRate, e.opts.SampleRate, e.opts.Channels)
	return nil
}

func (e *Extractor) open(it composition.Item) (*track, error) {
	t := &track{item: it}
	if !isAudioOnly(it.Path) {
		v, err := e.openVideo(it.Path)
		if err != nil {
			return t, fmt.Errorf("extractor: item %q video: %w", it.ID, err)
		}
		t.video = v
		if !v.HasAudio() {
			return t, nil
		}
	}
	if it.Muted {
		return t, nil
	}
	a, err := e.openAudio(e.ctx, it.Path, audioStart(it, e.opts.FrameRate))
	if err != nil {
		return t, fmt.Errorf("extractor: item %q audio: %w", it.ID, err)
	}
	t.audio = a
	return t, nil
}

// DecodeVideo returns the frames of the items active at t.
// The images stay valid until the next call.
func (e *Extractor) DecodeVideo(t float64) (map[string]media.VideoFrame, error) {
	if err := e.ready(); err != nil {
		return nil, err
	}
	if e.videoStarted && t <= e.lastVideo {
		return nil, fmt.Errorf("%w: video %v after %v", ErrNonMonotonic, t, e.lastVideo)
	}
	e.lastVideo, e.videoStarted = t, true

	frames := make(map[string]media.VideoFrame)
	for _, tr := range e.tracks {
		if tr.video == nil || !e.comp.Active(tr.item, t) {
			continue
		}
		local := tr.item.LocalTime(t)
		img, err := tr.video.Frame(local)
		if err != nil {
			return nil, fmt.Errorf("extractor: item %q at %v: %w", tr.item.ID, t, err)
		}
		if img == nil {
			continue
		}
		frames[tr.item.ID] = media.VideoFrame{Image: img, Time: local}
	}
	return frames, nil
}

// DecodeAudio returns one frame long PCM slices of the active items at t.
func (e *Extractor) DecodeAudio(t float64) (map[string]media.AudioSample, error) {
	if err := e.ready(); err != nil {
		return nil, err
	}
	if e.audioStarted && t <= e.lastAudio {
		return nil, fmt.Errorf("%w: audio %v after %v", ErrNonMonotonic, t, e.lastAudio)
	}
	e.lastAudio, e.audioStarted = t, true

	frame := frameclock.Index(t, e.opts.FrameRate)
	n := SliceFrames(frame, e.opts.SampleRate, e.opts.FrameRate)
	samples := make(map[string]media.AudioSample)
	for _, tr := range e.tracks {
		if tr.audio == nil || !e.comp.Active(tr.item, t) {
			continue
		}
		buf := make([]byte, media.SliceBytes(n, e.opts.Channels))
		if err := tr.audio.Read(buf); err != nil {
			return nil, fmt.Errorf("extractor: item %q audio at %v: %w", tr.item.ID, t, err)
		}
		samples[tr.item.ID] = media.AudioSample{
			Buffer:           buf,
			PresentationTime: t,
			Duration:         float64(n) / float64(e.opts.SampleRate),
			SampleRate:       e.opts.SampleRate,
			Channels:         e.opts.Channels,
		}
	}
	return samples, nil
}

func (e *Extractor) ready() error {
	if e.disposed {
		return errors.New("extractor: disposed")
	}
	if !e.started {
		return errors.New("extractor: not started")
	}
	return nil
}

// Dispose stops the decoders and closes all the sources.
// It's safe to call it after a failed Start.
func (e *Extractor) Dispose() error {
	if e.disposed {
		return errors.New("extractor: already disposed")
	}
	e.disposed = true
	if e.cancel != nil {
		e.cancel()
	}
	var (
		mu  sync.Mutex
		err error
	)
	wg := sync.WaitGroup{}
	for _, tr := range e.tracks {
		if tr == nil {
			continue
		}
		for _, c := range []interface{ Close() error }{tr.video, tr.audio} {
			if c == nil {
				continue
			}
			c := c
			wg.Add(1)
			go func() {
				defer wg.Done()
				if er := c.Close(); er != nil {
					mu.Lock()
					err = errors.Join(err, er)
					mu.Unlock()
				}
			}()
		}
	}
	wg.Wait()
	return err
}

// SliceFrames returns the number of sample frames of the output frame i:
// floor((i+1)*rate/fps) - floor(i*rate/fps).
func SliceFrames(i, rate int, fps float64) int {
	r := float64(rate) / fps
	return int(math.Floor(float64(i+1)*r+eps)) - int(math.Floor(float64(i)*r+eps))
}

// audioStart returns the source time of the first output frame of the item.
func audioStart(it composition.Item, fps float64) float64 {
	first := math.Ceil(it.CompositionStartTime*fps - eps)
	skew := math.Max(0, first/fps-it.CompositionStartTime)
	return it.StartTime + skew
}

var audioExt = map[string]bool{
	".aac": true, ".flac": true, ".m4a": true, ".mp3": true, ".oga": true,
	".ogg": true, ".opus": true, ".wav": true, ".wma": true,
}

func isAudioOnly(path string) bool { return audioExt[strings.ToLower(filepath.Ext(path))] }

package export

import (
	"image"

	"github.com/giongto35/vexport/pkg/composition"
	"github.com/giongto35/vexport/pkg/encoder"
	"github.com/giongto35/vexport/pkg/extractor"
	"github.com/giongto35/vexport/pkg/media"
	"github.com/giongto35/vexport/pkg/surface"
)

type (
	// Surface is an offscreen render target.
	Surface interface {
		Canvas() *surface.Canvas
		// Flush finishes the pending drawing.
		Flush() error
		// Texture is the rendered frame.
		Texture() *image.RGBA
		Profile() surface.Profile
		Dispose() error
	}

	// Extractor decodes the frame slices of a composition.
	// It's called with strictly increasing timestamps.
	Extractor interface {
		Start() error
		DecodeVideo(t float64) (map[string]media.VideoFrame, error)
		DecodeAudio(t float64) (map[string]media.AudioSample, error)
		Dispose() error
	}

	Encoder interface {
		Prepare() error
		EncodeFrame(img *image.RGBA, t float64) error
		EncodeAudio(pcm []byte, t float64) error
		FinishWriting() error
		Dispose() error
	}

	// flushWaiter is a surface that knows when its flush is complete.
	flushWaiter interface {
		WaitFlushed() error
	}
)

type (
	SurfaceFactory   func(w, h int) (Surface, error)
	ExtractorFactory func(c *composition.Composition, opts extractor.Options) (Extractor, error)
	EncoderFactory   func(opts encoder.Options) (Encoder, error)
)

// Collaborators make the resources of each export.
type Collaborators struct {
	NewSurface   SurfaceFactory
	NewExtractor ExtractorFactory
	NewEncoder   EncoderFactory
}

// Metrics observes the exports.
type Metrics interface {
	FrameDone()
	CleanupFailed()
	ExportDone(err error, seconds float64)
}

type noMetrics struct{}

func (noMetrics) FrameDone()                {}
func (noMetrics) CleanupFailed()            {}
func (noMetrics) ExportDone(error, float64) {}

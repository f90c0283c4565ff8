package export

import (
	"fmt"

	"github.com/giongto35/vexport/pkg/composition"
	"github.com/giongto35/vexport/pkg/encoder"
	"github.com/giongto35/vexport/pkg/encoder/ffmpeg"
	"github.com/giongto35/vexport/pkg/encoder/frames"
	"github.com/giongto35/vexport/pkg/extractor"
	"github.com/giongto35/vexport/pkg/logger"
	"github.com/giongto35/vexport/pkg/surface"
)

// DefaultCollaborators makes CPU surfaces with the given settle profile,
// the Vidio/ffmpeg extractor and the encoder of the selected backend.
func DefaultCollaborators(profile surface.Profile, interpolation string, log *logger.Logger) Collaborators {
	return Collaborators{
		NewSurface: func(w, h int) (Surface, error) {
			s, err := surface.New(w, h, profile, surface.WithInterpolation(interpolation))
			if err != nil {
				return nil, err
			}
			return s, nil
		},
		NewExtractor: func(c *composition.Composition, opts extractor.Options) (Extractor, error) {
			e, err := extractor.New(c, opts, log)
			if err != nil {
				return nil, err
			}
			return e, nil
		},
		NewEncoder: func(opts encoder.Options) (Encoder, error) {
			switch opts.Backend {
			case encoder.FFmpeg, "":
				e, err := ffmpeg.New(opts, log)
				if err != nil {
					return nil, err
				}
				return e, nil
			case encoder.Frames:
				e, err := frames.New(opts, log)
				if err != nil {
					return nil, err
				}
				return e, nil
			}
			return nil, fmt.Errorf("unknown encoder backend %q", opts.Backend)
		},
	}
}

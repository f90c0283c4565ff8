package main

import (
	"fmt"
	"math"
	"time"

	"github.com/giongto35/vexport/pkg/export"
	"github.com/giongto35/vexport/pkg/media"
	"github.com/giongto35/vexport/pkg/surface"
)

// frameStat is the render context of one frame.
type frameStat struct {
	start time.Time
}

// stats keep the draw time of the frames.
type stats struct {
	frames int
	draw   time.Duration
	now    func() time.Time
}

func newStats() *stats { return &stats{now: time.Now} }

func (s *stats) before() (frameStat, error) { return frameStat{start: s.now()}, nil }

func (s *stats) after(f frameStat) error {
	s.frames++
	s.draw += s.now().Sub(f.start)
	return nil
}

// Average returns the mean time from the frame decode to its encode.
func (s *stats) Average() time.Duration {
	if s.frames == 0 {
		return 0
	}
	return s.draw / time.Duration(s.frames)
}

// fitDrawer draws the video frames of the items in the composition order
// (the last item is on top), each fitted into the whole canvas.
func fitDrawer(label bool, fps float64) export.Drawer[frameStat] {
	return func(in export.DrawInput[frameStat]) error {
		dst := in.Canvas.Bounds()
		for _, it := range in.Composition.Items {
			f, ok := in.Frames[it.ID]
			if !ok || f.Image == nil {
				continue
			}
			in.Canvas.DrawImageFit(dst, f.Image)
		}
		if label {
			in.Canvas.DrawLabel(dst.Min.X+4, dst.Max.Y-16, timecode(in.CurrentTime, fps))
		}
		return nil
	}
}

// timecode formats the time as HH:MM:SS:FF.
func timecode(t, fps float64) string {
	sec := int(math.Floor(t + 1e-9))
	ff := int(math.Floor((t-float64(sec))*fps + 1e-9))
	return fmt.Sprintf("%02d:%02d:%02d:%02d", sec/3600, sec/60%60, sec%60, ff)
}

// volumeMixer keeps the uniform 1/N mix of the default mixer
// and scales each source by its item volume.
func volumeMixer(gains map[string]float64) export.Mixer[frameStat] {
	return func(in export.MixInput[frameStat]) ([]byte, error) {
		if len(gains) == 0 {
			return media.Mix(in.AudioSamples), nil
		}
		n := float64(len(in.AudioSamples))
		g := make(map[string]float64, len(in.AudioSamples))
		for id := range in.AudioSamples {
			v, ok := gains[id]
			if !ok {
				v = 1
			}
			g[id] = v / n
		}
		return media.MixGain(in.AudioSamples, g), nil
	}
}

func settleProfile(platform string, override time.Duration) surface.Profile {
	p := surface.CurrentProfile()
	if platform != "" {
		p = surface.PlatformProfile(platform)
	}
	if override > 0 {
		p.FirstFlushSettle = override
	}
	return p
}

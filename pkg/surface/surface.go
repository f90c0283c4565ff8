// Package surface provides the offscreen drawing target of an export.
package surface

import (
	"fmt"
	"image"
	"image/color"
	"runtime"
	"time"
)

// Profile describes platform quirks of a surface.
type Profile struct {
	// FirstFlushSettle is the pause after the first flush before the
	// pixels can be read back.
	FirstFlushSettle time.Duration
}

// PlatformProfile returns the known profile for the OS name (GOOS).
// Apple GPU surfaces finish the first flush asynchronously.
func PlatformProfile(goos string) Profile {
	switch goos {
	case "darwin", "ios":
		return Profile{FirstFlushSettle: time.Millisecond}
	}
	return Profile{}
}

// CurrentProfile returns the profile of the running platform.
func CurrentProfile() Profile { return PlatformProfile(runtime.GOOS) }

// Offscreen is a CPU raster surface.
type Offscreen struct {
	img     *image.RGBA
	canvas  *Canvas
	profile Profile
}

// New creates new offscreen surface of w x h pixels.
func New(w, h int, profile Profile, opts ...Option) (*Offscreen, error) {
	if w <= 0 || h <= 0 {
		return nil, fmt.Errorf("surface: bad size %vx%v", w, h)
	}
	img := image.NewRGBA(image.Rect(0, 0, w, h))
	return &Offscreen{img: img, canvas: newCanvas(img, opts...), profile: profile}, nil
}

func (s *Offscreen) Canvas() *Canvas  { return s.canvas }
func (s *Offscreen) Profile() Profile { return s.profile }

// Flush finalizes the pixels of the current frame.
func (s *Offscreen) Flush() error {
	if s.img == nil {
		return errDisposed
	}
	return nil
}

// Texture returns the backing pixels. The image is reused for every frame.
func (s *Offscreen) Texture() *image.RGBA { return s.img }

func (s *Offscreen) Dispose() error {
	if s.img == nil {
		return errDisposed
	}
	s.img, s.canvas.dst = nil, nil
	return nil
}

var errDisposed = fmt.Errorf("surface: disposed")

// Transparent is the clear color.
var Transparent = color.RGBA{}

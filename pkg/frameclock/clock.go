// Package frameclock maps output frame indices to presentation timestamps.
package frameclock

import (
	"math"
	"time"
)

// eps absorbs float products like 0.29*100 = 28.999999999999996.
const eps = 1e-9

// TotalFrames returns the number of frames of a constant frame rate output
// covering the duration, i.e. floor(duration * frameRate).
func TotalFrames(duration, frameRate float64) int {
	if duration <= 0 || frameRate <= 0 {
		return 0
	}
	return int(math.Floor(duration*frameRate + eps))
}

// Timestamp returns the presentation time of the frame in seconds.
func Timestamp(frame int, frameRate float64) float64 { return float64(frame) / frameRate }

// Duration returns the presentation time of the frame.
func Duration(frame int, frameRate float64) time.Duration {
	return time.Duration(math.Round(Timestamp(frame, frameRate) * float64(time.Second)))
}

// Index is the inverse of Timestamp: the frame presented at t.
func Index(t, frameRate float64) int { return int(math.Floor(t*frameRate + eps)) }

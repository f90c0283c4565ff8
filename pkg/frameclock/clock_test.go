package frameclock

import (
	"testing"
	"time"
)

func TestTotalFrames(t *testing.T) {
	tests := []struct {
		name     string
		duration float64
		fps      float64
		want     int
	}{
		{name: "2s@30", duration: 2, fps: 30, want: 60},
		{name: "truncated", duration: 1.99, fps: 30, want: 59},
		{name: "float product", duration: 0.29, fps: 100, want: 29},
		{name: "ntsc", duration: 10, fps: 29.97, want: 299},
		{name: "zero", duration: 0, fps: 30, want: 0},
		{name: "negative", duration: -1, fps: 30, want: 0},
		{name: "no rate", duration: 1, fps: 0, want: 0},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if got := TotalFrames(tt.duration, tt.fps); got != tt.want {
				t.Errorf("TotalFrames() = %v, want %v", got, tt.want)
			}
		})
	}
}

func TestTimestamps(t *testing.T) {
	fps := 30.0
	prev := -1.0
	for i := 0; i < TotalFrames(2, fps); i++ {
		ts := Timestamp(i, fps)
		if ts != float64(i)/30 {
			t.Fatalf("frame %v has %v", i, ts)
		}
		if ts <= prev {
			t.Fatalf("timestamps are not increasing at %v", i)
		}
		if Index(ts, fps) != i {
			t.Fatalf("index of %v is %v, want %v", ts, Index(ts, fps), i)
		}
		prev = ts
	}
	if d := Duration(59, fps); d != 1966666667*time.Nanosecond {
		t.Errorf("wrong duration %v", d)
	}
}

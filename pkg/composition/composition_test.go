package composition

import (
	"os"
	"path/filepath"
	"strings"
	"testing"
)

const sampleYaml = `
duration: 4.5
items:
  - id: intro
    path: /media/intro.mp4
    duration: 2
  - id: main
    path: https://example.com/main.mp4
    start_time: 10
    composition_start_time: 2
    volume: 0.5
  - id: music
    path: /media/music.m4a
    muted: false
`

func TestParse(t *testing.T) {
	c, err := Parse([]byte(sampleYaml))
	if err != nil {
		t.Fatal(err)
	}
	if c.Duration != 4.5 || len(c.Items) != 3 {
		t.Fatalf("wrong composition %+v", c)
	}
	main := c.Items[1]
	if main.StartTime != 10 || main.CompositionStartTime != 2 || main.Gain() != 0.5 {
		t.Errorf("wrong item %+v", main)
	}
	if c.Items[0].Gain() != 1 {
		t.Errorf("default gain should be 1")
	}
	if g := c.Gains(); len(g) != 1 || g["main"] != 0.5 {
		t.Errorf("wrong gains %v", g)
	}
}

func TestLoad(t *testing.T) {
	path := filepath.Join(t.TempDir(), "comp.yaml")
	if err := os.WriteFile(path, []byte(sampleYaml), 0644); err != nil {
		t.Fatal(err)
	}
	c, err := Load(path)
	if err != nil {
		t.Fatal(err)
	}
	if c.Items[2].ID != "music" {
		t.Errorf("wrong item %v", c.Items[2].ID)
	}
	if _, err := Load(filepath.Join(t.TempDir(), "none.yaml")); err == nil {
		t.Errorf("expected an error for a missing file")
	}
}

func TestValidate(t *testing.T) {
	tests := []struct {
		name string
		yaml string
		err  string
	}{
		{name: "no id", yaml: "duration: 1\nitems:\n  - path: a.mp4\n", err: "has no id"},
		{name: "dup", yaml: "duration: 1\nitems:\n  - {id: a, path: a.mp4}\n  - {id: a, path: b.mp4}\n", err: "duplicate"},
		{name: "no path", yaml: "duration: 1\nitems:\n  - id: a\n", err: "has no path"},
		{name: "negative", yaml: "duration: -1\n", err: "negative duration"},
		{name: "timing", yaml: "duration: 1\nitems:\n  - {id: a, path: a.mp4, start_time: -2}\n", err: "negative timing"},
		{name: "volume", yaml: "duration: 1\nitems:\n  - {id: a, path: a.mp4, volume: -2}\n", err: "negative volume"},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			_, err := Parse([]byte(tt.yaml))
			if err == nil || !strings.Contains(err.Error(), tt.err) {
				t.Errorf("expected %q error, got %v", tt.err, err)
			}
		})
	}
}

func TestWindow(t *testing.T) {
	c, err := Parse([]byte(sampleYaml))
	if err != nil {
		t.Fatal(err)
	}
	intro, main := c.Items[0], c.Items[1]
	tests := []struct {
		it     Item
		t      float64
		active bool
	}{
		{intro, 0, true},
		{intro, 1.99, true},
		{intro, 2, false},
		{main, 1.99, false},
		{main, 2, true},
		{main, 4.49, true},
		{main, 4.5, false},
	}
	for _, tt := range tests {
		if got := c.Active(tt.it, tt.t); got != tt.active {
			t.Errorf("%v at %v: active = %v", tt.it.ID, tt.t, got)
		}
	}
	if lt := main.LocalTime(3); lt != 11 {
		t.Errorf("wrong local time %v", lt)
	}
}

func TestResolve(t *testing.T) {
	c, err := Parse([]byte(sampleYaml))
	if err != nil {
		t.Fatal(err)
	}
	remote := c.Remote()
	if len(remote) != 1 || remote[0] != "https://example.com/main.mp4" {
		t.Fatalf("wrong remote list %v", remote)
	}
	if _, err := c.Resolve(nil); err == nil {
		t.Errorf("expected an error for a missing download")
	}
	r, err := c.Resolve(map[string]string{remote[0]: "/cache/main.mp4"})
	if err != nil {
		t.Fatal(err)
	}
	if r.Items[1].Path != "/cache/main.mp4" || r.Items[0].Path != "/media/intro.mp4" {
		t.Errorf("wrong resolved paths %+v", r.Items)
	}
	if c.Items[1].Path != remote[0] {
		t.Errorf("original composition was changed")
	}
}

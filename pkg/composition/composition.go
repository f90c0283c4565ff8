// Package composition describes the timeline to export: a duration and
// the media items placed on it.
package composition

import (
	"errors"
	"fmt"
	"net/url"
	"os"
	"strings"

	"gopkg.in/yaml.v3"
)

type (
	Composition struct {
		// Duration of the timeline in seconds.
		Duration float64 `yaml:"duration"`
		Items    []Item  `yaml:"items"`
	}

	// Item is one media source placed on the timeline.
	Item struct {
		ID   string `yaml:"id"`
		Path string `yaml:"path"`
		// StartTime is the offset inside the source in seconds.
		StartTime float64 `yaml:"start_time"`
		// CompositionStartTime is the placement on the timeline in seconds.
		CompositionStartTime float64 `yaml:"composition_start_time"`
		// Duration is the length on the timeline in seconds,
		// zero means until the end of the composition.
		Duration float64  `yaml:"duration"`
		Muted    bool     `yaml:"muted"`
		Volume   *float64 `yaml:"volume,omitempty"`
	}
)

// Load reads a composition from a YAML file.
func Load(path string) (*Composition, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, err
	}
	return Parse(data)
}

func Parse(data []byte) (*Composition, error) {
	var c Composition
	if err := yaml.Unmarshal(data, &c); err != nil {
		return nil, fmt.Errorf("composition: %w", err)
	}
	if err := c.Validate(); err != nil {
		return nil, err
	}
	return &c, nil
}

// Validate checks the composition for errors that would otherwise only show
// up in the middle of an export.
func (c *Composition) Validate() error {
	if c.Duration < 0 {
		return fmt.Errorf("composition: negative duration %v", c.Duration)
	}
	seen := make(map[string]struct{}, len(c.Items))
	var err error
	for i, it := range c.Items {
		if it.ID == "" {
			err = errors.Join(err, fmt.Errorf("composition: item %d has no id", i))
		}
		if _, ok := seen[it.ID]; ok {
			err = errors.Join(err, fmt.Errorf("composition: duplicate item id %q", it.ID))
		}
		seen[it.ID] = struct{}{}
		if it.Path == "" {
			err = errors.Join(err, fmt.Errorf("composition: item %q has no path", it.ID))
		}
		if it.StartTime < 0 || it.CompositionStartTime < 0 || it.Duration < 0 {
			err = errors.Join(err, fmt.Errorf("composition: item %q has negative timing", it.ID))
		}
		if it.Volume != nil && *it.Volume < 0 {
			err = errors.Join(err, fmt.Errorf("composition: item %q has negative volume", it.ID))
		}
	}
	return err
}

// End returns the timeline time in seconds where the item stops.
func (c *Composition) End(it Item) float64 {
	if it.Duration > 0 {
		return it.CompositionStartTime + it.Duration
	}
	return c.Duration
}

// Active tells if the item is on the timeline at t.
func (c *Composition) Active(it Item, t float64) bool {
	return t >= it.CompositionStartTime && t < c.End(it)
}

// LocalTime converts the timeline time into the item source time.
func (it Item) LocalTime(t float64) float64 { return it.StartTime + (t - it.CompositionStartTime) }

// Gain returns the item audio gain.
func (it Item) Gain() float64 {
	if it.Volume == nil {
		return 1
	}
	return *it.Volume
}

// Gains returns audio gains of all the items with a non-default volume.
func (c *Composition) Gains() map[string]float64 {
	g := make(map[string]float64)
	for _, it := range c.Items {
		if it.Volume != nil {
			g[it.ID] = *it.Volume
		}
	}
	return g
}

// IsRemote tells if the path should be downloaded first.
func IsRemote(path string) bool {
	u, err := url.Parse(path)
	if err != nil {
		return false
	}
	s := strings.ToLower(u.Scheme)
	return s == "http" || s == "https"
}

// Remote returns the list of item paths that are URLs.
func (c *Composition) Remote() (urls []string) {
	for _, it := range c.Items {
		if IsRemote(it.Path) {
			urls = append(urls, it.Path)
		}
	}
	return
}

// Resolve returns a copy of the composition with the paths replaced
// by the given mapping. The receiver stays unchanged.
func (c *Composition) Resolve(paths map[string]string) (*Composition, error) {
	out := Composition{Duration: c.Duration, Items: make([]Item, len(c.Items))}
	for i, it := range c.Items {
		if IsRemote(it.Path) {
			local, ok := paths[it.Path]
			if !ok {
				return nil, fmt.Errorf("composition: source of %q was not fetched: %v", it.ID, it.Path)
			}
			it.Path = local
		}
		out.Items[i] = it
	}
	return &out, nil
}

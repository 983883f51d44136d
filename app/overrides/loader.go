package overrides

import (
	"fmt"
	"log/slog"
	"os"

	"gopkg.in/yaml.v3"
)

type file struct {
	Defaults Defaults       `yaml:"defaults"`
	Feeds    []FeedOverride `yaml:"feeds"`
}

// Load reads a YAML overrides file. Every feed entry must carry a URL;
// timeouts must be non-negative.
func Load(path string) (*Set, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("read overrides file: %w", err)
	}

	var f file
	if err := yaml.Unmarshal(data, &f); err != nil {
		return nil, fmt.Errorf("parse overrides file: %w", err)
	}

	if err := validate(&f); err != nil {
		return nil, fmt.Errorf("invalid overrides file %s: %w", path, err)
	}

	set := &Set{
		defaults: f.Defaults,
		byURL:    make(map[string]FeedOverride, len(f.Feeds)),
	}
	for _, o := range f.Feeds {
		set.byURL[o.URL] = o
	}

	slog.Debug("Loaded feed overrides", "path", path, "feeds", len(f.Feeds))
	return set, nil
}

func validate(f *file) error {
	if f.Defaults.Timeout < 0 {
		return fmt.Errorf("default timeout must be non-negative")
	}
	for i, o := range f.Feeds {
		if o.URL == "" {
			return fmt.Errorf("feed override at index %d is missing a url", i)
		}
		if o.Timeout < 0 {
			return fmt.Errorf("feed override %s: timeout must be non-negative", o.URL)
		}
	}
	return nil
}

package overrides

import (
	"os"
	"path/filepath"
	"testing"
	"time"
)

func writeTempOverrides(t *testing.T, content string) string {
	t.Helper()
	path := filepath.Join(t.TempDir(), "overrides.yml")
	if err := os.WriteFile(path, []byte(content), 0o644); err != nil {
		t.Fatalf("Failed to write overrides file: %v", err)
	}
	return path
}

func TestLoad(t *testing.T) {
	path := writeTempOverrides(t, `
defaults:
  timeout: 20
feeds:
  - url: https://example.com/slow.xml
    timeout: 60
  - url: https://example.com/off.xml
    disabled: true
`)

	set, err := Load(path)
	if err != nil {
		t.Fatalf("Expected no error, got: %v", err)
	}

	if !set.Disabled("https://example.com/off.xml") {
		t.Error("Expected off.xml to be disabled")
	}
	if set.Disabled("https://example.com/slow.xml") {
		t.Error("Expected slow.xml to be enabled")
	}

	if got := set.TimeoutFor("https://example.com/slow.xml", 10*time.Second); got != 60*time.Second {
		t.Errorf("Expected per-feed timeout 60s, got: %v", got)
	}
	if got := set.TimeoutFor("https://example.com/other.xml", 10*time.Second); got != 20*time.Second {
		t.Errorf("Expected default timeout 20s, got: %v", got)
	}
}

func TestLoadNoDefaults(t *testing.T) {
	path := writeTempOverrides(t, `
feeds:
  - url: https://example.com/a.xml
`)

	set, err := Load(path)
	if err != nil {
		t.Fatalf("Expected no error, got: %v", err)
	}
	if got := set.TimeoutFor("https://example.com/a.xml", 10*time.Second); got != 10*time.Second {
		t.Errorf("Expected fallback timeout, got: %v", got)
	}
}

func TestLoadMissingURL(t *testing.T) {
	path := writeTempOverrides(t, `
feeds:
  - disabled: true
`)

	if _, err := Load(path); err == nil {
		t.Error("Expected an error for a feed override without a url")
	}
}

func TestLoadInvalidYAML(t *testing.T) {
	path := writeTempOverrides(t, "feeds: [unclosed")

	if _, err := Load(path); err == nil {
		t.Error("Expected an error for invalid YAML")
	}
}

func TestLoadMissingFile(t *testing.T) {
	if _, err := Load(filepath.Join(t.TempDir(), "missing.yml")); err == nil {
		t.Error("Expected an error for a missing file")
	}
}

func TestNilSet(t *testing.T) {
	var set *Set

	if set.Disabled("https://example.com/rss") {
		t.Error("A nil set must not disable anything")
	}
	if got := set.TimeoutFor("https://example.com/rss", 10*time.Second); got != 10*time.Second {
		t.Errorf("A nil set must return the fallback timeout, got: %v", got)
	}
}

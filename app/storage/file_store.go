package storage

import (
	"encoding/json"
	"fmt"
	"os"
	"path/filepath"
)

// FileStore writes one JSON document per feed under a single directory.
// Concurrent writes target distinct filenames under normal operation; two
// sources sanitizing to the same name resolve as last-writer-wins.
type FileStore struct {
	dir string
}

func NewFileStore(dir string) *FileStore {
	return &FileStore{dir: dir}
}

func (s *FileStore) Dir() string {
	return s.dir
}

// Ensure creates the output directory if it is missing.
func (s *FileStore) Ensure() error {
	if err := os.MkdirAll(s.dir, 0o755); err != nil {
		return fmt.Errorf("create output directory %s: %w", s.dir, err)
	}
	return nil
}

// Write persists doc as <dir>/<name>.json and returns the full path.
func (s *FileStore) Write(name string, doc *Document) (string, error) {
	path := filepath.Join(s.dir, name+".json")

	data, err := json.MarshalIndent(doc, "", "  ")
	if err != nil {
		return "", fmt.Errorf("encode document: %w", err)
	}
	if err := os.WriteFile(path, data, 0o644); err != nil {
		return "", fmt.Errorf("write %s: %w", path, err)
	}
	return path, nil
}

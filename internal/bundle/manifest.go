package bundle

import (
	"fmt"
	"os"
	"path/filepath"
	"strings"

	"gopkg.in/yaml.v3"
)

const manifestName = "manifest.yml"

// Manifest describes one packageable plugin directory.
type Manifest struct {
	ID          string   `yaml:"id"`
	Name        string   `yaml:"name"`
	Description string   `yaml:"description"`
	Requires    []string `yaml:"requires,omitempty"`
}

// Metadata carries the free-form fields of an index entry.
type Metadata struct {
	Description string `yaml:"description"`
}

// Entry is one record of the distribution index.
type Entry struct {
	ID       string   `yaml:"id"`
	Name     string   `yaml:"name"`
	Metadata Metadata `yaml:"metadata"`
	Version  string   `yaml:"version"`
	Date     string   `yaml:"date"`
	Path     string   `yaml:"path"`
	SHA256   string   `yaml:"sha256"`
	Requires []string `yaml:"requires,omitempty"`
}

func loadManifest(dir string) (*Manifest, error) {
	data, err := os.ReadFile(filepath.Join(dir, manifestName))
	if err != nil {
		return nil, err
	}
	var manifest Manifest
	if err := yaml.Unmarshal(data, &manifest); err != nil {
		return nil, fmt.Errorf("parse %s: %w", manifestName, err)
	}
	if strings.TrimSpace(manifest.ID) == "" {
		return nil, fmt.Errorf("%s: missing id", manifestName)
	}
	if strings.TrimSpace(manifest.Name) == "" {
		manifest.Name = manifest.ID
	}
	return &manifest, nil
}

// LoadIndex reads a previously written index file.
func LoadIndex(path string) ([]Entry, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, err
	}
	var entries []Entry
	if err := yaml.Unmarshal(data, &entries); err != nil {
		return nil, fmt.Errorf("parse index: %w", err)
	}
	return entries, nil
}

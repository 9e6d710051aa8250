// Package manifest handles stax.toml project configuration.
package manifest

import (
	"fmt"
	"os"
	"path/filepath"

	"github.com/BurntSushi/toml"
)

// ManifestFile is the file name looked up in a project directory.
const ManifestFile = "stax.toml"

// Manifest represents a stax.toml project configuration.
type Manifest struct {
	Project Project   `toml:"project"`
	Source  Source    `toml:"source"`
	Run     RunConfig `toml:"run"`

	// Dir is the directory containing the stax.toml file (set at load time).
	Dir string `toml:"-"`
}

// Project contains project metadata.
type Project struct {
	Name    string `toml:"name"`
	Version string `toml:"version"`
}

// Source configures the source file to execute.
type Source struct {
	Entry string `toml:"entry"`
}

// RunConfig configures execution options.
type RunConfig struct {
	Entry string `toml:"entry"` // entry function, defaults to main
	Check bool   `toml:"check"` // run the stack-safety pre-check first
	Trace bool   `toml:"trace"` // per-instruction execution trace
}

// Load parses a stax.toml file from the given directory.
func Load(dir string) (*Manifest, error) {
	path := filepath.Join(dir, ManifestFile)
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("cannot read %s: %w", path, err)
	}

	var m Manifest
	if err := toml.Unmarshal(data, &m); err != nil {
		return nil, fmt.Errorf("parse error in %s: %w", path, err)
	}

	m.Dir, err = filepath.Abs(dir)
	if err != nil {
		return nil, fmt.Errorf("cannot resolve path %s: %w", dir, err)
	}

	// Defaults
	if m.Source.Entry == "" {
		m.Source.Entry = "main.stax"
	}
	if m.Run.Entry == "" {
		m.Run.Entry = "main"
	}

	return &m, nil
}

// FindAndLoad walks up from startDir to find a stax.toml file,
// then loads and returns the manifest. Returns nil if no manifest is found.
func FindAndLoad(startDir string) (*Manifest, error) {
	dir, err := filepath.Abs(startDir)
	if err != nil {
		return nil, err
	}

	for {
		path := filepath.Join(dir, ManifestFile)
		if _, err := os.Stat(path); err == nil {
			return Load(dir)
		}

		parent := filepath.Dir(dir)
		if parent == dir {
			// Reached root
			return nil, nil
		}
		dir = parent
	}
}

// EntryPath returns the absolute path of the configured entry source file.
func (m *Manifest) EntryPath() string {
	return filepath.Join(m.Dir, m.Source.Entry)
}

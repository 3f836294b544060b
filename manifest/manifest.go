// Package manifest handles lace.toml project configuration.
package manifest

import (
	"fmt"
	"os"
	"path/filepath"
	"strings"

	"github.com/BurntSushi/toml"
)

// FileName is the name of the manifest file in a project directory.
const FileName = "lace.toml"

// Manifest represents a lace.toml project configuration.
type Manifest struct {
	Project Project `toml:"project"`
	Build   Build   `toml:"build"`
	Run     Run     `toml:"run"`

	// Dir is the directory containing the lace.toml file (set at load time).
	Dir string `toml:"-"`
}

// Project contains project metadata.
type Project struct {
	Name    string `toml:"name"`
	Version string `toml:"version"`
}

// Build configures compilation.
type Build struct {
	// Entry is the main program, relative to the project directory.
	Entry string `toml:"entry"`

	// Output is the object file written by "lace build".
	Output string `toml:"output"`

	// Sources are library files whose top level functions are made
	// available to the entry program.
	Sources []string `toml:"sources"`
}

// Run configures execution.
type Run struct {
	MaxFrameDepth int  `toml:"max-frame-depth"`
	Strict        bool `toml:"strict"`
}

// Load parses a lace.toml file from the given directory.
func Load(dir string) (*Manifest, error) {
	path := filepath.Join(dir, FileName)
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("cannot read %s: %w", path, err)
	}
	m, err := Parse(data)
	if err != nil {
		return nil, fmt.Errorf("parse error in %s: %w", path, err)
	}
	m.Dir, err = filepath.Abs(dir)
	if err != nil {
		return nil, fmt.Errorf("cannot resolve path %s: %w", dir, err)
	}
	return m, nil
}

// Parse decodes manifest data and applies defaults. Unknown keys are an
// error.
func Parse(data []byte) (*Manifest, error) {
	var m Manifest
	md, err := toml.Decode(string(data), &m)
	if err != nil {
		return nil, err
	}
	if undecoded := md.Undecoded(); len(undecoded) > 0 {
		keys := make([]string, len(undecoded))
		for i, key := range undecoded {
			keys[i] = key.String()
		}
		return nil, fmt.Errorf("unknown keys: %s", strings.Join(keys, ", "))
	}
	if m.Build.Entry == "" {
		m.Build.Entry = "main.lace"
	}
	if m.Build.Output == "" {
		m.Build.Output = strings.TrimSuffix(filepath.Base(m.Build.Entry), filepath.Ext(m.Build.Entry)) + ".lo"
	}
	if m.Run.MaxFrameDepth < 0 {
		return nil, fmt.Errorf("run.max-frame-depth must not be negative (got %d)", m.Run.MaxFrameDepth)
	}
	return &m, nil
}

// FindAndLoad walks up from startDir to find a lace.toml file, then loads
// and returns the manifest. Returns nil if no manifest is found.
func FindAndLoad(startDir string) (*Manifest, error) {
	dir, err := filepath.Abs(startDir)
	if err != nil {
		return nil, err
	}
	for {
		if _, err := os.Stat(filepath.Join(dir, FileName)); err == nil {
			return Load(dir)
		}
		parent := filepath.Dir(dir)
		if parent == dir {
			return nil, nil
		}
		dir = parent
	}
}

// EntryPath returns the absolute path of the entry program.
func (m *Manifest) EntryPath() string {
	return m.resolve(m.Build.Entry)
}

// OutputPath returns the absolute path of the build output.
func (m *Manifest) OutputPath() string {
	return m.resolve(m.Build.Output)
}

// SourcePaths returns absolute paths for the library sources.
func (m *Manifest) SourcePaths() []string {
	paths := make([]string, 0, len(m.Build.Sources))
	for _, src := range m.Build.Sources {
		paths = append(paths, m.resolve(src))
	}
	return paths
}

func (m *Manifest) resolve(path string) string {
	if filepath.IsAbs(path) {
		return path
	}
	return filepath.Join(m.Dir, path)
}

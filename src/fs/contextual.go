package fs

import (
	"encoding/json"
	"fmt"
	"os"
	"path/filepath"
	"sort"

	"github.com/spf13/afero"
)

// ContextualFs is an afero.Fs that resolves relative paths against a base directory
type ContextualFs struct {
	afero.Fs
	baseDir string
}

// NewContextualFs creates a new ContextualFs rooted at baseDir
func NewContextualFs(baseFs afero.Fs, baseDir string) *ContextualFs {
	return &ContextualFs{
		Fs:      baseFs,
		baseDir: baseDir,
	}
}

// NewOsFs is a ContextualFs over the host filesystem
func NewOsFs(baseDir string) *ContextualFs {
	return NewContextualFs(afero.NewOsFs(), baseDir)
}

// resolvePath resolves a path relative to the base directory if it's not absolute
func (c *ContextualFs) resolvePath(path string) string {
	if path == "" {
		if c.baseDir == "" {
			return "."
		}
		return c.baseDir
	}
	if filepath.IsAbs(path) || c.baseDir == "" {
		return path
	}
	return filepath.Join(c.baseDir, path)
}

func (c *ContextualFs) Open(name string) (afero.File, error) {
	return c.Fs.Open(c.resolvePath(name))
}

func (c *ContextualFs) OpenFile(name string, flag int, perm os.FileMode) (afero.File, error) {
	return c.Fs.OpenFile(c.resolvePath(name), flag, perm)
}

func (c *ContextualFs) Stat(name string) (os.FileInfo, error) {
	return c.Fs.Stat(c.resolvePath(name))
}

func (c *ContextualFs) Create(name string) (afero.File, error) {
	return c.Fs.Create(c.resolvePath(name))
}

func (c *ContextualFs) MkdirAll(path string, perm os.FileMode) error {
	return c.Fs.MkdirAll(c.resolvePath(path), perm)
}

// BaseDir returns the directory relative paths resolve against
func (c *ContextualFs) BaseDir() string {
	return c.baseDir
}

// Exists reports whether name exists
func (c *ContextualFs) Exists(name string) (bool, error) {
	return afero.Exists(c.Fs, c.resolvePath(name))
}

// ReadJSON decodes the JSON file name into v
func (c *ContextualFs) ReadJSON(name string, v interface{}) error {
	data, err := afero.ReadFile(c.Fs, c.resolvePath(name))
	if err != nil {
		return err
	}
	if err := json.Unmarshal(data, v); err != nil {
		return fmt.Errorf("failed to parse %s: %w", name, err)
	}
	return nil
}

// WriteJSON writes v as indented JSON, creating parent directories
func (c *ContextualFs) WriteJSON(name string, v interface{}) error {
	data, err := json.MarshalIndent(v, "", "  ")
	if err != nil {
		return err
	}
	path := c.resolvePath(name)
	if err := c.Fs.MkdirAll(filepath.Dir(path), 0755); err != nil {
		return fmt.Errorf("failed to create directory: %w", err)
	}
	return afero.WriteFile(c.Fs, path, append(data, '\n'), 0644)
}

// Glob returns the names matching pattern, relative to the base directory, sorted
func (c *ContextualFs) Glob(pattern string) ([]string, error) {
	matches, err := afero.Glob(c.Fs, c.resolvePath(pattern))
	if err != nil {
		return nil, err
	}
	for i, m := range matches {
		if rel, err := filepath.Rel(c.resolvePath(""), m); err == nil {
			matches[i] = rel
		}
	}
	sort.Strings(matches)
	return matches, nil
}

package note

import (
	"errors"
	"fmt"
	"io/fs"
	"os"
	"path"
	"path/filepath"
	"sort"
	"strings"
)

// FS is a Store backed by a vault directory on disk.
type FS struct {
	root string // absolute path to vault directory
}

// NewFS creates a store rooted at root. The directory must already exist.
func NewFS(root string) (*FS, error) {
	abs, err := filepath.Abs(root)
	if err != nil {
		return nil, fmt.Errorf("vault: resolve root: %w", err)
	}
	info, err := os.Stat(abs)
	if err != nil {
		return nil, fmt.Errorf("vault: stat root: %w", err)
	}
	if !info.IsDir() {
		return nil, fmt.Errorf("vault: root is not a directory: %s", abs)
	}
	return &FS{root: abs}, nil
}

// Root returns the absolute vault directory.
func (f *FS) Root() string {
	return f.root
}

// safePath resolves a vault path against the root and rejects any result
// that escapes it.
func (f *FS) safePath(rel string) (string, error) {
	if rel == "" || rel == "/" {
		return f.root, nil
	}
	cleaned := filepath.Clean(filepath.FromSlash(strings.TrimPrefix(rel, "/")))
	joined := filepath.Join(f.root, cleaned)
	abs, err := filepath.Abs(joined)
	if err != nil {
		return "", fmt.Errorf("vault: resolve path: %w", err)
	}
	if !strings.HasPrefix(abs, f.root+string(os.PathSeparator)) && abs != f.root {
		return "", fmt.Errorf("vault: path escapes vault root: %s", rel)
	}
	return abs, nil
}

// Abs maps a vault path to its location on disk.
func (f *FS) Abs(rel string) (string, error) {
	return f.safePath(rel)
}

func (f *FS) stat(rel string) (os.FileInfo, bool) {
	abs, err := f.safePath(rel)
	if err != nil {
		return nil, false
	}
	info, err := os.Stat(abs)
	if err != nil {
		return nil, false
	}
	return info, true
}

// Exists reports whether a file or directory exists at path.
func (f *FS) Exists(rel string) bool {
	_, ok := f.stat(rel)
	return ok
}

// IsDir reports whether path is an existing directory.
func (f *FS) IsDir(rel string) bool {
	info, ok := f.stat(rel)
	return ok && info.IsDir()
}

// Read returns the content of the note at path.
func (f *FS) Read(rel string) (string, error) {
	abs, err := f.safePath(rel)
	if err != nil {
		return "", err
	}
	data, err := os.ReadFile(abs)
	if err != nil {
		return "", fmt.Errorf("vault: read %s: %w", rel, err)
	}
	return string(data), nil
}

// GetByPath returns the note at path, or nil when there is none.
func (f *FS) GetByPath(rel string) (*Document, error) {
	info, ok := f.stat(rel)
	if !ok {
		return nil, nil
	}
	if info.IsDir() {
		return nil, fmt.Errorf("vault: %s is a directory", rel)
	}
	content, err := f.Read(rel)
	if err != nil {
		return nil, err
	}
	return &Document{Path: rel, Content: content}, nil
}

// Create writes a new note. The path must not exist yet.
func (f *FS) Create(rel, content string) error {
	if f.Exists(rel) {
		return fmt.Errorf("vault: create %s: %w", rel, ErrExists)
	}
	return f.write(rel, []byte(content))
}

// Modify replaces the content of an existing note.
func (f *FS) Modify(rel, content string) error {
	if !f.Exists(rel) {
		return fmt.Errorf("vault: modify %s: %w", rel, ErrNotExist)
	}
	return f.write(rel, []byte(content))
}

// WriteBinary writes data to path, replacing anything already there.
func (f *FS) WriteBinary(rel string, data []byte) error {
	return f.write(rel, data)
}

// Remove deletes the file at path.
func (f *FS) Remove(rel string) error {
	abs, err := f.safePath(rel)
	if err != nil {
		return err
	}
	if err := os.Remove(abs); err != nil {
		return fmt.Errorf("vault: remove %s: %w", rel, err)
	}
	return nil
}

// List returns the vault paths of the .md files directly inside dir, sorted.
func (f *FS) List(dir string) ([]string, error) {
	base, err := f.safePath(dir)
	if err != nil {
		return nil, err
	}
	entries, err := os.ReadDir(base)
	if err != nil {
		return nil, fmt.Errorf("vault: list %s: %w", dir, err)
	}

	var out []string
	for _, e := range entries {
		if e.IsDir() || !strings.EqualFold(filepath.Ext(e.Name()), ".md") {
			continue
		}
		if e.Type()&fs.ModeSymlink != 0 {
			continue
		}
		out = append(out, path.Join(filepath.ToSlash(strings.TrimPrefix(dir, "/")), e.Name()))
	}
	sort.Strings(out)
	return out, nil
}

// write atomically writes content: tmp file, fsync, rename.
func (f *FS) write(rel string, content []byte) error {
	abs, err := f.safePath(rel)
	if err != nil {
		return err
	}
	if abs == f.root {
		return errors.New("vault: cannot write to the vault root")
	}
	dir := filepath.Dir(abs)
	if err := os.MkdirAll(dir, 0o755); err != nil {
		return fmt.Errorf("vault: mkdir: %w", err)
	}

	tmp, err := os.CreateTemp(dir, ".moviegrabber-tmp-*")
	if err != nil {
		return fmt.Errorf("vault: create temp: %w", err)
	}
	tmpName := tmp.Name()

	success := false
	defer func() {
		if !success {
			_ = tmp.Close()
			_ = os.Remove(tmpName)
		}
	}()

	if _, err := tmp.Write(content); err != nil {
		return fmt.Errorf("vault: write temp: %w", err)
	}
	if err := tmp.Chmod(0o644); err != nil {
		return fmt.Errorf("vault: chmod temp: %w", err)
	}
	if err := tmp.Sync(); err != nil {
		return fmt.Errorf("vault: fsync: %w", err)
	}
	if err := tmp.Close(); err != nil {
		return fmt.Errorf("vault: close temp: %w", err)
	}
	if err := os.Rename(tmpName, abs); err != nil {
		return fmt.Errorf("vault: rename: %w", err)
	}
	success = true
	return nil
}

// Package note persists generated notes into the vault.
package note

import (
	"errors"
)

// Delimiter marks the part of an existing note that survives an overwrite.
// Everything from the marker to the end of the note is kept verbatim.
const Delimiter = "%%==MOVIEGRABBER_KEEP==%%"

var (
	// ErrExists is returned by Create when the path is already taken.
	ErrExists = errors.New("note already exists")
	// ErrNotExist is returned by Modify when there is nothing to modify.
	ErrNotExist = errors.New("note does not exist")
)

// Document is a note stored in the vault.
type Document struct {
	// Path is relative to the vault root and uses forward slashes.
	Path    string
	Content string
}

// Store is the document store notes are written to. Paths are relative to
// the vault root.
type Store interface {
	Exists(path string) bool
	IsDir(path string) bool
	Read(path string) (string, error)
	Create(path, content string) error
	Modify(path, content string) error
	// GetByPath returns nil with no error when nothing exists at path.
	GetByPath(path string) (*Document, error)
	WriteBinary(path string, data []byte) error
	Remove(path string) error
	// List returns the .md files directly inside dir.
	List(dir string) ([]string, error)
	// Abs maps a vault path to its location on disk.
	Abs(path string) (string, error)
}

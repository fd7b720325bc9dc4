package note

import (
	"fmt"
	"strings"
)

// Preserved returns the tail of content starting at Delimiter, or "" when
// the marker is absent.
func Preserved(content string) string {
	idx := strings.Index(content, Delimiter)
	if idx < 0 {
		return ""
	}
	return content[idx:]
}

// Merge builds the overwrite content: the fresh content, then the preserved
// tail of old separated by one newline.
func Merge(content, old string) string {
	tail := Preserved(old)
	if tail == "" {
		return content
	}
	return content + "\n" + tail
}

// Materialize writes content to path. With no existing document the note is
// created verbatim. Otherwise the existing note is overwritten and its
// preserved tail is kept; callers must have confirmed the overwrite.
func Materialize(store Store, path, content string, existing *Document) (*Document, error) {
	if existing == nil {
		if err := store.Create(path, content); err != nil {
			return nil, fmt.Errorf("create note: %w", err)
		}
		return &Document{Path: path, Content: content}, nil
	}

	old, err := store.Read(existing.Path)
	if err != nil {
		return nil, fmt.Errorf("read existing note: %w", err)
	}
	merged := Merge(content, old)
	if err := store.Modify(existing.Path, merged); err != nil {
		return nil, fmt.Errorf("overwrite note: %w", err)
	}
	return &Document{Path: existing.Path, Content: merged}, nil
}

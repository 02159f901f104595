package configstore

import (
	"encoding/json"
	"io/fs"
	"os"

	"github.com/thoreinstein/mcpfed/internal/errors"
	"github.com/thoreinstein/mcpfed/pkg/fileutil"
)

// DefaultFilePerm applies when the document is created for the first time.
const DefaultFilePerm fs.FileMode = 0o644

// Store reads and writes the document at a fixed path. It holds no cached
// copy; every Read goes to disk.
type Store struct {
	path string
}

// NewStore creates a Store for the document at path.
func NewStore(path string) *Store {
	return &Store{path: path}
}

// Path returns the document path.
func (s *Store) Path() string {
	return s.path
}

// Read loads the document.
//
// Returns an error marked [errors.ErrNotFound] if the file is absent (callers
// treat this as an empty document), [errors.ErrCorrupt] if the bytes do not
// parse, or [errors.ErrIO] for other read failures.
func (s *Store) Read() (*Document, error) {
	if s.path == "" {
		return nil, errors.Mark(errors.New("host config path not configured"), errors.ErrIO)
	}

	data, err := fileutil.ReadFileWithLimit(s.path)
	if err != nil {
		return nil, errors.Wrap(err, "reading host config")
	}

	var doc Document
	if err := json.Unmarshal(data, &doc); err != nil {
		return nil, errors.NewCorruptError(s.path, err)
	}

	return &doc, nil
}

// ReadOrEmpty loads the document, substituting an empty one if the file is
// absent. existed reports whether the file was found.
func (s *Store) ReadOrEmpty() (doc *Document, existed bool, err error) {
	doc, err = s.Read()
	if err != nil {
		if errors.Is(err, errors.ErrNotFound) {
			return NewDocument(), false, nil
		}
		return nil, false, err
	}
	return doc, true, nil
}

// Write replaces the document atomically, creating the parent directory if
// needed. An existing file keeps its permission bits. Failures are marked
// [errors.ErrWriteFailed].
func (s *Store) Write(doc *Document) error {
	if s.path == "" {
		return errors.Mark(errors.New("host config path not configured"), errors.ErrWriteFailed)
	}

	perm := DefaultFilePerm
	if info, err := os.Stat(s.path); err == nil {
		perm = info.Mode().Perm()
	}

	if err := fileutil.AtomicWriteJSONWithPerm(s.path, doc, perm); err != nil {
		return errors.Mark(errors.Wrapf(err, "writing %s", s.path), errors.ErrWriteFailed)
	}
	return nil
}

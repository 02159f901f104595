package fileutil

import (
	"io"
	"os"

	"github.com/thoreinstein/mcpfed/internal/errors"
)

// MaxFileSize is the maximum file size we'll read (16MB).
// Host configuration files accumulate unrelated state, so the limit is generous.
const MaxFileSize = 16 * 1024 * 1024

// ErrFileTooLarge indicates that a file exceeded MaxFileSize.
var ErrFileTooLarge = errors.Newf("file exceeds maximum size of %d bytes", MaxFileSize)

// ReadFileWithLimit reads a file up to MaxFileSize.
//
// A missing file yields an error marked [errors.ErrNotFound]. Any other
// failure, including an oversized file, is marked [errors.ErrIO].
func ReadFileWithLimit(path string) ([]byte, error) {
	f, err := os.Open(path)
	if err != nil {
		if os.IsNotExist(err) {
			return nil, errors.Mark(errors.Wrapf(err, "opening %s", path), errors.ErrNotFound)
		}
		return nil, errors.Mark(errors.Wrapf(err, "opening %s", path), errors.ErrIO)
	}
	defer f.Close()

	// Fail fast if size is already too large
	info, err := f.Stat()
	if err == nil {
		if info.IsDir() {
			return nil, errors.Mark(errors.Newf("%s is a directory", path), errors.ErrIO)
		}
		if info.Size() > MaxFileSize {
			return nil, errors.Mark(ErrFileTooLarge, errors.ErrIO)
		}
	}

	r := io.LimitReader(f, MaxFileSize+1)
	data, err := io.ReadAll(r)
	if err != nil {
		return nil, errors.Mark(errors.Wrapf(err, "reading %s", path), errors.ErrIO)
	}

	if len(data) > MaxFileSize {
		return nil, errors.Mark(ErrFileTooLarge, errors.ErrIO)
	}

	return data, nil
}

// Exists reports whether path exists. Errors other than absence count as existing
// so callers go on to surface them from the subsequent read.
func Exists(path string) bool {
	_, err := os.Stat(path)
	return err == nil || !os.IsNotExist(err)
}

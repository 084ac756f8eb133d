package filesystem

import (
	"errors"
	"fmt"
	"io/fs"
	"os"
	"path/filepath"

	"github.com/go-git/go-billy/v5"
	"github.com/go-git/go-billy/v5/osfs"
)

// FilePerm is applied to the written document.
const FilePerm os.FileMode = 0o644

// ErrIsDirectory indicates the target path names a directory.
var ErrIsDirectory = errors.New("path is a directory")

// FileSystemError reports a failure to write an output file.
type FileSystemError struct {
	Op   string
	Path string
	Err  error
}

func (e *FileSystemError) Error() string {
	return fmt.Sprintf("filesystem: %s %s: %v", e.Op, e.Path, e.Err)
}

func (e *FileSystemError) Unwrap() error {
	return e.Err
}

// RootFunc opens the filesystem rooted at an existing directory.
type RootFunc func(dir string) billy.Filesystem

// Writer replaces files atomically: data lands in a sibling temp file that is renamed over the target.
type Writer struct {
	root RootFunc
}

// NewWriter constructs a writer backed by the host filesystem.
func NewWriter() *Writer {
	return &Writer{root: func(dir string) billy.Filesystem { return osfs.New(dir, osfs.WithBoundOS()) }}
}

// NewWriterWithRoot constructs a writer using a custom filesystem factory.
// The returned filesystem must implement billy.Change.
func NewWriterWithRoot(root RootFunc) *Writer {
	return &Writer{root: root}
}

// WriteFile creates or replaces path with data. The parent directory must already exist.
// A symlinked path is written through to its target.
// On failure the previous content of path is left untouched and a *FileSystemError is returned.
func (w *Writer) WriteFile(path string, data []byte) error {
	abs, err := filepath.Abs(path)
	if err != nil {
		return &FileSystemError{Op: "resolve", Path: path, Err: err}
	}
	if resolved, err := filepath.EvalSymlinks(abs); err == nil {
		abs = resolved
	}

	dir, base := filepath.Split(abs)
	dir = filepath.Clean(dir)

	// stat the parent before opening the root; creating a temp file would otherwise create it
	parent, err := os.Stat(dir)
	if err != nil {
		return &FileSystemError{Op: "stat", Path: dir, Err: err}
	}
	if !parent.IsDir() {
		return &FileSystemError{Op: "stat", Path: dir, Err: fmt.Errorf("%w: not a directory", fs.ErrInvalid)}
	}

	root := w.root(dir)
	change, ok := root.(billy.Change)
	if !ok {
		return &FileSystemError{Op: "chmod", Path: abs, Err: billy.ErrNotSupported}
	}

	if info, err := root.Stat(base); err == nil && info.IsDir() {
		return &FileSystemError{Op: "write", Path: abs, Err: ErrIsDirectory}
	} else if err != nil && !errors.Is(err, fs.ErrNotExist) {
		return &FileSystemError{Op: "stat", Path: abs, Err: err}
	}

	tmp, err := root.TempFile(".", "."+base+".tmp-")
	if err != nil {
		return &FileSystemError{Op: "create", Path: abs, Err: err}
	}
	// bound filesystems report absolute names; operate on the root-relative one
	tmpName := filepath.Base(tmp.Name())

	if _, err := tmp.Write(data); err != nil {
		_ = tmp.Close()
		_ = root.Remove(tmpName)
		return &FileSystemError{Op: "write", Path: abs, Err: err}
	}

	if err := tmp.Close(); err != nil {
		_ = root.Remove(tmpName)
		return &FileSystemError{Op: "close", Path: abs, Err: err}
	}

	if err := change.Chmod(tmpName, FilePerm); err != nil {
		_ = root.Remove(tmpName)
		return &FileSystemError{Op: "chmod", Path: abs, Err: err}
	}

	if err := root.Rename(tmpName, base); err != nil {
		_ = root.Remove(tmpName)
		return &FileSystemError{Op: "rename", Path: abs, Err: err}
	}

	return nil
}

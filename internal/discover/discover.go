package discover

import (
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"strings"
)

// ErrNotFound is returned when the input path does not exist. It also
// matches os.ErrNotExist under errors.Is.
var ErrNotFound error = notFoundError{}

// ErrIsDir is returned when the input path names a directory.
var ErrIsDir = errors.New("input path is a directory")

type notFoundError struct{}

func (notFoundError) Error() string { return "file does not exist" }

func (notFoundError) Is(target error) bool { return target == os.ErrNotExist }

// Input describes the file to be split and where its chunks belong.
type Input struct {
	// Path is absolute.
	Path string
	Dir  string
	// Stem is the base name without its final extension.
	Stem string
	Ext  string
	Size int64
}

// Discover resolves path and checks that it names a regular, readable file.
func Discover(path string) (Input, error) {
	path = strings.TrimSpace(path)
	if path == "" {
		return Input{}, fmt.Errorf("%w: empty path", ErrNotFound)
	}

	absPath, err := filepath.Abs(path)
	if err != nil {
		return Input{}, err
	}

	info, err := os.Stat(absPath)
	if err != nil {
		if errors.Is(err, os.ErrNotExist) {
			return Input{}, fmt.Errorf("%w: %s", ErrNotFound, path)
		}
		return Input{}, err
	}
	if info.IsDir() {
		return Input{}, fmt.Errorf("%w: %s", ErrIsDir, path)
	}

	base := filepath.Base(absPath)
	ext := filepath.Ext(base)
	stem := strings.TrimSuffix(base, ext)
	// Leading dots belong to the stem: ".data" has no extension.
	if strings.TrimLeft(stem, ".") == "" {
		stem, ext = base, ""
	}
	return Input{
		Path: absPath,
		Dir:  filepath.Dir(absPath),
		Stem: stem,
		Ext:  ext,
		Size: info.Size(),
	}, nil
}

// ChunkPath returns the path of the seq-th chunk written into dir. An empty
// dir means the input's own directory.
func (in Input) ChunkPath(dir string, seq int, ext string) string {
	if dir == "" {
		dir = in.Dir
	}
	return filepath.Join(dir, fmt.Sprintf("%s_%d%s", in.Stem, seq, ext))
}

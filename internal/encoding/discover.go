package encoding

import (
	"errors"
	"io/fs"
	"iter"
	"os"
	"path/filepath"
	"slices"
	"strings"

	"transcode/internal/services"
)

// Discover returns the files a run processes. A file input is yielded as is,
// whatever its extension. A directory is walked recursively and files whose
// lower-cased extension belongs to kind are yielded in lexical order. The
// sequence is lazy; each range walks the tree again. Walk errors are yielded
// with the offending path and the walk continues.
func Discover(inputPath string, kind Kind) (iter.Seq2[string, error], error) {
	exts, err := kind.Extensions()
	if err != nil {
		return nil, err
	}
	info, err := os.Stat(inputPath)
	if err != nil {
		if errors.Is(err, fs.ErrNotExist) {
			return nil, services.Wrap(services.ErrPathNotFound, "discover", "", inputPath, nil)
		}
		return nil, services.Wrap(services.ErrPathNotFound, "discover", "stat", inputPath, err)
	}

	switch {
	case info.Mode().IsRegular():
		return func(yield func(string, error) bool) {
			yield(inputPath, nil)
		}, nil
	case info.IsDir():
		return walkFiltered(inputPath, exts), nil
	default:
		return nil, services.Wrap(services.ErrPathNotFound, "discover", "", inputPath+" is neither a file nor a directory", nil)
	}
}

func walkFiltered(root string, exts []string) iter.Seq2[string, error] {
	return func(yield func(string, error) bool) {
		stop := errors.New("stop")
		err := filepath.WalkDir(root, func(path string, d fs.DirEntry, err error) error {
			if err != nil {
				if !yield(path, err) {
					return stop
				}
				if d != nil && d.IsDir() {
					return fs.SkipDir
				}
				return nil
			}
			if !d.Type().IsRegular() {
				return nil
			}
			if !slices.Contains(exts, strings.ToLower(filepath.Ext(path))) {
				return nil
			}
			if !yield(path, nil) {
				return stop
			}
			return nil
		})
		if err != nil && !errors.Is(err, stop) {
			yield(root, err)
		}
	}
}

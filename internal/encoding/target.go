package encoding

import (
	"os"
	"path/filepath"
	"strings"
)

// ResolveTarget computes where file is written. When outputRoot has an
// extension it names the output file directly; otherwise it is a directory
// and file's path relative to inputRoot is recreated beneath it. Either way
// the extension is replaced with newExt.
func ResolveTarget(file, inputRoot, outputRoot, newExt string) string {
	if filepath.Ext(outputRoot) != "" {
		return replaceExt(outputRoot, newExt)
	}
	rel := relativeTo(file, inputRoot)
	return replaceExt(filepath.Join(outputRoot, rel), newExt)
}

func relativeTo(file, inputRoot string) string {
	if info, err := os.Stat(inputRoot); err == nil && !info.IsDir() {
		return filepath.Base(file)
	}
	rel, err := filepath.Rel(inputRoot, file)
	if err != nil || rel == "." || strings.HasPrefix(rel, ".."+string(filepath.Separator)) || rel == ".." {
		return filepath.Base(file)
	}
	return rel
}

func replaceExt(path, ext string) string {
	return strings.TrimSuffix(path, filepath.Ext(path)) + ext
}

// ShouldSkip reports whether source needs no work: the target already exists,
// or force is off and the source is already in the target format.
func ShouldSkip(source, target string, force bool) bool {
	if _, err := os.Stat(target); err == nil {
		return true
	}
	if force {
		return false
	}
	return strings.EqualFold(filepath.Ext(source), filepath.Ext(target))
}

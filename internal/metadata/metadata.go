// Package metadata reads and writes the JSON sidecar that carries container
// tags for a video: <stem>.json beside the media file.
package metadata

import (
	"encoding/json"
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"strings"

	"transcode/internal/fileutil"
)

// Record holds the tags written into the output container.
type Record struct {
	Title       string `json:"title,omitempty"`
	Description string `json:"description,omitempty"`
}

// Empty reports whether the record carries no tags.
func (r Record) Empty() bool {
	return strings.TrimSpace(r.Title) == "" && strings.TrimSpace(r.Description) == ""
}

// Flags returns ffmpeg -metadata flags for the non-empty fields.
func (r Record) Flags() []string {
	var flags []string
	if title := strings.TrimSpace(r.Title); title != "" {
		flags = append(flags, "-metadata", "title="+title)
	}
	if desc := strings.TrimSpace(r.Description); desc != "" {
		flags = append(flags, "-metadata", "description="+desc)
	}
	return flags
}

// SidecarPath returns the sidecar location for mediaPath.
func SidecarPath(mediaPath string) string {
	return strings.TrimSuffix(mediaPath, filepath.Ext(mediaPath)) + ".json"
}

// Load reads the sidecar for mediaPath. The boolean is false when no sidecar
// exists.
func Load(mediaPath string) (Record, bool, error) {
	path := SidecarPath(mediaPath)
	data, err := os.ReadFile(path)
	if errors.Is(err, os.ErrNotExist) {
		return Record{}, false, nil
	}
	if err != nil {
		return Record{}, false, fmt.Errorf("read metadata %q: %w", path, err)
	}
	var rec Record
	if err := json.Unmarshal(data, &rec); err != nil {
		return Record{}, false, fmt.Errorf("parse metadata %q: %w", path, err)
	}
	return rec, true, nil
}

// Save writes rec as the sidecar for mediaPath, replacing any existing one.
func Save(mediaPath string, rec Record) (string, error) {
	path := SidecarPath(mediaPath)
	data, err := json.MarshalIndent(rec, "", "  ")
	if err != nil {
		return "", fmt.Errorf("encode metadata: %w", err)
	}
	data = append(data, '\n')
	if err := fileutil.WriteFileAtomic(path, data, 0o644); err != nil {
		return "", fmt.Errorf("write metadata %q: %w", path, err)
	}
	return path, nil
}

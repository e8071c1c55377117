package ffprobe

import (
	"bufio"
	"bytes"
	"cmp"
	"regexp"
	"slices"
	"strconv"
	"strings"
)

const (
	// Candidates below this share of sampled frames are treated as a
	// varying aspect ratio and not applied.
	cropAutoApplyThresholdPercent = 80.0

	sdrCropLimit = 16
	hdrCropLimit = 100

	cropSampleSeconds = 60
)

var cropLinePattern = regexp.MustCompile(`crop=(\d+):(\d+):(\d+):(\d+)`)

// CropCandidate is one distinct rectangle reported by cropdetect.
type CropCandidate struct {
	Crop    string
	Count   int
	Percent float64
}

// cropArgs builds the ffmpeg arguments for a cropdetect sampling run.
func cropArgs(path string, offsetSeconds float64, hdr bool) []string {
	limit := sdrCropLimit
	if hdr {
		limit = hdrCropLimit
	}
	return []string{
		"-hide_banner", "-nostats",
		"-ss", strconv.FormatFloat(offsetSeconds, 'f', 0, 64),
		"-i", path,
		"-t", strconv.Itoa(cropSampleSeconds),
		"-vf", "cropdetect=limit=" + strconv.Itoa(limit) + ":round=2:reset=0",
		"-an", "-sn",
		"-f", "null", "-",
	}
}

// parseCropCandidates tallies crop rectangles from cropdetect stderr output,
// most frequent first.
func parseCropCandidates(output []byte) []CropCandidate {
	counts := map[string]int{}
	total := 0
	scanner := bufio.NewScanner(bytes.NewReader(output))
	for scanner.Scan() {
		line := scanner.Text()
		if !strings.Contains(line, "cropdetect") {
			continue
		}
		match := cropLinePattern.FindStringSubmatch(line)
		if match == nil {
			continue
		}
		rect := strings.Join(match[1:], ":")
		counts[rect]++
		total++
	}
	if total == 0 {
		return nil
	}
	candidates := make([]CropCandidate, 0, len(counts))
	for rect, count := range counts {
		candidates = append(candidates, CropCandidate{
			Crop:    rect,
			Count:   count,
			Percent: float64(count) * 100 / float64(total),
		})
	}
	slices.SortFunc(candidates, func(a, b CropCandidate) int {
		if c := cmp.Compare(b.Count, a.Count); c != 0 {
			return c
		}
		return strings.Compare(a.Crop, b.Crop)
	})
	return candidates
}

// chooseCrop returns the dominant rectangle when it removes something from a
// width x height frame and is stable enough to apply.
func chooseCrop(candidates []CropCandidate, width, height int) string {
	if len(candidates) == 0 {
		return ""
	}
	top := candidates[0]
	if top.Percent < cropAutoApplyThresholdPercent {
		return ""
	}
	w, h, ok := parseCropDimensions(top.Crop)
	if !ok || w <= 0 || h <= 0 {
		return ""
	}
	if width > 0 && height > 0 && w >= width && h >= height {
		return ""
	}
	return top.Crop
}

func parseCropDimensions(rect string) (int, int, bool) {
	parts := strings.Split(strings.TrimPrefix(strings.TrimSpace(rect), "crop="), ":")
	if len(parts) < 2 {
		return 0, 0, false
	}
	w, err := strconv.Atoi(parts[0])
	if err != nil {
		return 0, 0, false
	}
	h, err := strconv.Atoi(parts[1])
	if err != nil {
		return 0, 0, false
	}
	return w, h, true
}

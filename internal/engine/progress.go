package engine

import (
	"bufio"
	"io"
	"strconv"
	"strings"
	"time"
)

// scanProgress reads ffmpeg "-progress" key=value blocks and reports one
// Progress per block. Each block ends with a progress=continue|end line.
func scanProgress(r io.Reader, label string, fn func(Progress)) {
	scanner := bufio.NewScanner(r)
	current := Progress{Label: label}
	for scanner.Scan() {
		key, value, ok := strings.Cut(strings.TrimSpace(scanner.Text()), "=")
		if !ok {
			continue
		}
		switch key {
		case "out_time_us", "out_time_ms":
			// out_time_ms is misnamed by ffmpeg and also carries microseconds.
			if us, err := strconv.ParseInt(value, 10, 64); err == nil && us >= 0 {
				current.OutTime = time.Duration(us) * time.Microsecond
			}
		case "speed":
			value = strings.TrimSuffix(strings.TrimSpace(value), "x")
			if speed, err := strconv.ParseFloat(value, 64); err == nil {
				current.Speed = speed
			}
		case "progress":
			current.Done = value == "end"
			if fn != nil {
				fn(current)
			}
			current = Progress{Label: label, OutTime: current.OutTime}
		}
	}
	// Drain anything left so ffmpeg never blocks on a full pipe.
	_, _ = io.Copy(io.Discard, r)
}

package engine

import (
	"context"
	"errors"
	"fmt"
	"image"
	"image/color"
	"os"
	"os/exec"
	"path/filepath"
	"strings"
	"sync"
	"testing"
	"time"

	"github.com/disintegration/imaging"

	"transcode/internal/services"
)

type capture struct {
	mu    sync.Mutex
	name  string
	args  []string
	calls int
}

func setHelperCommand(t *testing.T, mode string) *capture {
	t.Helper()
	c := &capture{}
	original := commandContext
	commandContext = func(ctx context.Context, name string, args ...string) *exec.Cmd {
		c.mu.Lock()
		c.name = name
		c.args = append([]string(nil), args...)
		c.calls++
		c.mu.Unlock()
		helperArgs := append([]string{"-test.run=TestHelperProcess", "--"}, args...)
		cmd := exec.CommandContext(ctx, os.Args[0], helperArgs...)
		cmd.Env = append(os.Environ(), "GO_WANT_HELPER_PROCESS=1", "ENGINE_HELPER_MODE="+mode)
		return cmd
	}
	t.Cleanup(func() {
		commandContext = original
	})
	return c
}

func findArg(args []string, target string) int {
	for i, arg := range args {
		if arg == target {
			return i
		}
	}
	return -1
}

func TestFFmpegRunBuildsArguments(t *testing.T) {
	captured := setHelperCommand(t, "success")
	ff := NewFFmpeg(WithBinary("/opt/ffmpeg"))
	output := filepath.Join(t.TempDir(), "out.mkv")

	flags := []string{"-c:v", "libx264", "-crf", "28"}
	if err := ff.Run(context.Background(), "/in/movie.mp4", output, flags); err != nil {
		t.Fatalf("Run returned error: %v", err)
	}
	if captured.name != "/opt/ffmpeg" {
		t.Fatalf("expected binary override, got %q", captured.name)
	}
	inputIdx := findArg(captured.args, "-i")
	if inputIdx < 0 || captured.args[inputIdx+1] != "/in/movie.mp4" {
		t.Fatalf("expected -i input, got %v", captured.args)
	}
	if findArg(captured.args, "-y") < 0 || findArg(captured.args, "-nostdin") < 0 {
		t.Fatalf("expected overwrite and nostdin flags, got %v", captured.args)
	}
	if crf := findArg(captured.args, "-crf"); crf < inputIdx {
		t.Fatalf("expected output flags after the input, got %v", captured.args)
	}
	if captured.args[len(captured.args)-1] != output {
		t.Fatalf("expected output last, got %v", captured.args)
	}
	if findArg(captured.args, "-progress") >= 0 {
		t.Fatalf("progress pipe must only be requested with a callback, got %v", captured.args)
	}
}

func TestFFmpegRunReportsProgress(t *testing.T) {
	captured := setHelperCommand(t, "progress")
	ff := NewFFmpeg()
	output := filepath.Join(t.TempDir(), "out.mkv")

	var updates []Progress
	err := ff.Run(context.Background(), "/in/movie.mkv", output, nil,
		WithLabel("pass 2"),
		WithProgress(func(p Progress) { updates = append(updates, p) }),
	)
	if err != nil {
		t.Fatalf("Run returned error: %v", err)
	}
	if idx := findArg(captured.args, "-progress"); idx < 0 || captured.args[idx+1] != "pipe:1" {
		t.Fatalf("expected progress pipe, got %v", captured.args)
	}
	if len(updates) != 2 {
		t.Fatalf("expected 2 progress updates, got %d", len(updates))
	}
	if updates[0].OutTime != 30*time.Second || updates[0].Speed != 2.5 || updates[0].Done {
		t.Fatalf("unexpected first update: %+v", updates[0])
	}
	if !updates[1].Done || updates[1].OutTime != 60*time.Second || updates[1].Label != "pass 2" {
		t.Fatalf("unexpected final update: %+v", updates[1])
	}
}

func TestFFmpegRunFailureRemovesOutput(t *testing.T) {
	setHelperCommand(t, "failure")
	ff := NewFFmpeg()
	output := filepath.Join(t.TempDir(), "out.mkv")

	err := ff.Run(context.Background(), "/in/movie.mkv", output, nil)
	if !errors.Is(err, services.ErrEngineFailure) {
		t.Fatalf("expected engine failure, got %v", err)
	}
	if !strings.Contains(err.Error(), "Unknown encoder") {
		t.Fatalf("expected stderr tail in error, got %v", err)
	}
	if _, statErr := os.Stat(output); !os.IsNotExist(statErr) {
		t.Fatalf("expected partial output removed, stat err=%v", statErr)
	}
}

func TestFFmpegRunCancellationKillsProcess(t *testing.T) {
	setHelperCommand(t, "hang")
	ff := NewFFmpeg()
	output := filepath.Join(t.TempDir(), "out.mkv")

	ctx, cancel := context.WithTimeout(context.Background(), 500*time.Millisecond)
	defer cancel()
	start := time.Now()
	err := ff.Run(ctx, "/in/movie.mkv", output, nil)
	if !errors.Is(err, context.DeadlineExceeded) {
		t.Fatalf("expected context error, got %v", err)
	}
	if elapsed := time.Since(start); elapsed > 10*time.Second {
		t.Fatalf("expected prompt termination, took %s", elapsed)
	}
	if _, statErr := os.Stat(output); !os.IsNotExist(statErr) {
		t.Fatalf("expected partial output removed after cancellation, stat err=%v", statErr)
	}
}

func TestFFmpegRunNeverRemovesNullSink(t *testing.T) {
	setHelperCommand(t, "failure")
	err := NewFFmpeg().Run(context.Background(), "/in/movie.mkv", os.DevNull, []string{"-f", "null"})
	if err == nil {
		t.Fatal("expected failure")
	}
	if _, statErr := os.Stat(os.DevNull); statErr != nil {
		t.Fatalf("null device must survive: %v", statErr)
	}
}

func TestRunRequiresPaths(t *testing.T) {
	err := NewFFmpeg().Run(context.Background(), "", "/out.mkv", nil)
	if !errors.Is(err, services.ErrInvalidConfiguration) {
		t.Fatalf("expected invalid configuration, got %v", err)
	}
	err = NewMagick().Convert(context.Background(), "/in.png", " ", 90)
	if !errors.Is(err, services.ErrInvalidConfiguration) {
		t.Fatalf("expected invalid configuration, got %v", err)
	}
}

func TestMagickConvertArguments(t *testing.T) {
	captured := setHelperCommand(t, "success")
	output := filepath.Join(t.TempDir(), "photo.webp")
	if err := NewMagick(WithBinary("/usr/bin/magick")).Convert(context.Background(), "/in/photo.heic", output, 85); err != nil {
		t.Fatalf("Convert returned error: %v", err)
	}
	want := []string{"/in/photo.heic", "-auto-orient", "-quality", "85", output}
	if strings.Join(captured.args, " ") != strings.Join(want, " ") {
		t.Fatalf("unexpected args %v", captured.args)
	}
	if captured.name != "/usr/bin/magick" {
		t.Fatalf("unexpected binary %q", captured.name)
	}
}

func writeTestImage(t *testing.T, path string) {
	t.Helper()
	img := image.NewNRGBA(image.Rect(0, 0, 8, 6))
	for x := range 8 {
		for y := range 6 {
			img.Set(x, y, color.NRGBA{R: uint8(x * 30), G: uint8(y * 40), B: 128, A: 255})
		}
	}
	if err := imaging.Save(img, path); err != nil {
		t.Fatalf("save test image: %v", err)
	}
}

func TestNativeConvertJPEGToPNG(t *testing.T) {
	dir := t.TempDir()
	input := filepath.Join(dir, "in.jpg")
	output := filepath.Join(dir, "out.png")
	writeTestImage(t, input)

	if err := NewNative().Convert(context.Background(), input, output, 95); err != nil {
		t.Fatalf("Convert returned error: %v", err)
	}
	img, err := imaging.Open(output)
	if err != nil {
		t.Fatalf("open converted image: %v", err)
	}
	if b := img.Bounds(); b.Dx() != 8 || b.Dy() != 6 {
		t.Fatalf("unexpected bounds %v", b)
	}
}

func TestNativeConvertRejectsWebPOutput(t *testing.T) {
	dir := t.TempDir()
	input := filepath.Join(dir, "in.png")
	writeTestImage(t, input)
	err := NewNative().Convert(context.Background(), input, filepath.Join(dir, "out.webp"), 85)
	if !errors.Is(err, services.ErrInvalidConfiguration) {
		t.Fatalf("expected invalid configuration, got %v", err)
	}
}

func TestNativeConvertDecodeFailure(t *testing.T) {
	dir := t.TempDir()
	input := filepath.Join(dir, "broken.jpg")
	if err := os.WriteFile(input, []byte("not an image"), 0o644); err != nil {
		t.Fatalf("write: %v", err)
	}
	output := filepath.Join(dir, "out.jpg")
	err := NewNative().Convert(context.Background(), input, output, 85)
	if !errors.Is(err, services.ErrEngineFailure) {
		t.Fatalf("expected engine failure, got %v", err)
	}
	if _, statErr := os.Stat(output); !os.IsNotExist(statErr) {
		t.Fatal("expected no output after decode failure")
	}
}

func TestTailBufferKeepsLastLines(t *testing.T) {
	tail := newTailBuffer(2)
	fmt.Fprint(tail, "one\ntwo\n")
	fmt.Fprint(tail, "three\nfo")
	fmt.Fprint(tail, "ur")
	if got := tail.String(); got != "three\nfour" {
		t.Fatalf("unexpected tail %q", got)
	}
}

func TestScanProgressCarriesOutTime(t *testing.T) {
	input := strings.NewReader("frame=10\nout_time_us=1000000\nspeed=N/A\nprogress=continue\nframe=20\nprogress=end\n")
	var updates []Progress
	scanProgress(input, "encode", func(p Progress) { updates = append(updates, p) })
	if len(updates) != 2 {
		t.Fatalf("expected 2 updates, got %d", len(updates))
	}
	if updates[1].OutTime != time.Second || !updates[1].Done {
		t.Fatalf("expected out time carried into final block, got %+v", updates[1])
	}
}

func TestHelperProcess(t *testing.T) {
	if os.Getenv("GO_WANT_HELPER_PROCESS") != "1" {
		return
	}
	args := os.Args
	for i, arg := range args {
		if arg == "--" {
			args = args[i+1:]
			break
		}
	}
	output := args[len(args)-1]

	switch os.Getenv("ENGINE_HELPER_MODE") {
	case "success":
		_ = os.WriteFile(output, []byte("encoded"), 0o644)
		os.Exit(0)
	case "progress":
		fmt.Println("frame=100")
		fmt.Println("out_time_us=30000000")
		fmt.Println("speed=2.5x")
		fmt.Println("progress=continue")
		fmt.Println("out_time_ms=60000000")
		fmt.Println("progress=end")
		_ = os.WriteFile(output, []byte("encoded"), 0o644)
		os.Exit(0)
	case "failure":
		if output != os.DevNull {
			_ = os.WriteFile(output, []byte("partial"), 0o644)
		}
		fmt.Fprintln(os.Stderr, "Unknown encoder 'libfoo'")
		os.Exit(1)
	case "hang":
		_ = os.WriteFile(output, []byte("partial"), 0o644)
		time.Sleep(60 * time.Second)
		os.Exit(0)
	default:
		os.Exit(0)
	}
}

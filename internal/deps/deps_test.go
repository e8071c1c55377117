package deps

import (
	"context"
	"os"
	"path/filepath"
	"testing"

	"transcode/internal/config"
	"transcode/internal/testsupport"
)

func writeScript(t *testing.T, path, body string) {
	t.Helper()
	if err := os.WriteFile(path, []byte("#!/bin/sh\n"+body+"\n"), 0o755); err != nil {
		t.Fatalf("write stub: %v", err)
	}
}

func TestCheckResolvesAndReadsVersions(t *testing.T) {
	binDir := t.TempDir()
	ffmpeg := filepath.Join(binDir, "ffmpeg")
	magick := filepath.Join(binDir, "magick")
	writeScript(t, ffmpeg, `echo "ffmpeg version 7.1-static Copyright (c) 2000-2024 the FFmpeg developers"; echo "built with gcc"`)
	writeScript(t, magick, `echo "Version: ImageMagick 7.1.1-29 Q16-HDRI x86_64 https://imagemagick.org"`)

	statuses := Check(context.Background(), []Engine{
		{Name: "FFmpeg", Binary: ffmpeg},
		{Name: "ImageMagick", Binary: magick},
		{Name: "FFprobe", Binary: "clearly-not-present-binary"},
		{Name: "Blank", Binary: " ", Optional: true},
	})
	if len(statuses) != 4 {
		t.Fatalf("expected 4 statuses, got %d", len(statuses))
	}
	if !statuses[0].Available() || statuses[0].Version != "ffmpeg version 7.1-static" {
		t.Fatalf("ffmpeg status = %#v", statuses[0])
	}
	if statuses[1].Version != "ImageMagick 7.1.1-29 Q16-HDRI x86_64" {
		t.Fatalf("magick version = %q", statuses[1].Version)
	}
	if statuses[2].Available() || statuses[2].Problem == "" {
		t.Fatalf("expected missing binary with a problem, got %#v", statuses[2])
	}
	if statuses[3].Problem != "binary not configured" {
		t.Fatalf("unexpected problem for blank binary: %q", statuses[3].Problem)
	}

	missing := Missing(statuses)
	if len(missing) != 1 || missing[0].Name != "FFprobe" {
		t.Fatalf("expected only the required missing binary, got %#v", missing)
	}
}

func TestCheckFailingVersionStillAvailable(t *testing.T) {
	broken := filepath.Join(t.TempDir(), "ffprobe")
	writeScript(t, broken, "exit 3")
	statuses := Check(context.Background(), []Engine{{Name: "FFprobe", Binary: broken}})
	if !statuses[0].Available() || statuses[0].Version != "" {
		t.Fatalf("status = %#v", statuses[0])
	}
}

func TestEnginesFollowImageEngine(t *testing.T) {
	cfg := config.Default()
	engines := Engines(&cfg)
	if len(engines) != 3 {
		t.Fatalf("expected 3 engines, got %d", len(engines))
	}
	if engines[2].Optional {
		t.Fatal("magick must be required for the magick image engine")
	}

	cfg.Engines.ImageEngine = config.ImageEngineNative
	if !Engines(&cfg)[2].Optional {
		t.Fatal("magick must be optional for the native image engine")
	}
}

func TestConfiguredEnginesAvailable(t *testing.T) {
	cfg := testsupport.NewConfig(t, testsupport.WithStubbedBinaries())
	statuses := Check(context.Background(), Engines(cfg))
	if missing := Missing(statuses); len(missing) != 0 {
		t.Fatalf("expected stubbed engines to resolve, missing %#v", missing)
	}
	for _, s := range statuses {
		if s.Path != filepath.Join(testsupport.BaseDir(cfg), "bin", filepath.Base(s.Binary)) {
			t.Fatalf("unexpected resolved path %q", s.Path)
		}
	}
}

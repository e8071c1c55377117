package encoding

import (
	"errors"
	"testing"

	"transcode/internal/services"
)

func TestResolveQualityTable(t *testing.T) {
	tests := []struct {
		preset  Preset
		codec   VideoCodec
		speed   int
		factor  int
		bitrate int
	}{
		{PresetQuality, VideoAV1, 6, 27, 128000},
		{PresetQuality, VideoVP9, 6, 27, 128000},
		{PresetQuality, VideoAVC, 6, 22, 128000},
		{PresetQuality, VideoHEVC, 6, 22, 128000},
		{PresetNormal, VideoAV1, 10, 33, 96000},
		{PresetNormal, VideoVP9, 10, 33, 96000},
		{PresetNormal, VideoAVC, 10, 28, 96000},
		{PresetNormal, VideoHEVC, 10, 28, 96000},
	}
	for _, tc := range tests {
		got, err := ResolveQuality(tc.preset, tc.codec)
		if err != nil {
			t.Fatalf("ResolveQuality(%s, %s) returned error: %v", tc.preset, tc.codec, err)
		}
		want := QualityProfile{SpeedLevel: tc.speed, QualityFactor: tc.factor, AudioBitrate: tc.bitrate}
		if got != want {
			t.Fatalf("ResolveQuality(%s, %s) = %+v, want %+v", tc.preset, tc.codec, got, want)
		}
	}
}

func TestResolveQualityRejectsUnknownPreset(t *testing.T) {
	_, err := ResolveQuality(Preset("fastest"), VideoAV1)
	if !errors.Is(err, ErrInvalidPreset) {
		t.Fatalf("expected ErrInvalidPreset, got %v", err)
	}
	if !errors.Is(err, services.ErrInvalidConfiguration) {
		t.Fatalf("expected invalid configuration marker, got %v", err)
	}
}

func TestImageQuality(t *testing.T) {
	for preset, want := range map[Preset]int{PresetQuality: 95, PresetNormal: 85} {
		got, err := ImageQuality(preset)
		if err != nil || got != want {
			t.Fatalf("ImageQuality(%s) = %d, %v; want %d", preset, got, err, want)
		}
	}
}

func TestBoostBitrate(t *testing.T) {
	tests := []struct {
		channels int
		want     int
	}{
		{0, 96000},
		{1, 96000},
		{2, 96000},
		{5, 192000},
		{6, 192000},
		{7, 240000},
		{8, 240000},
	}
	for _, tc := range tests {
		if got := BoostBitrate(96000, tc.channels); got != tc.want {
			t.Fatalf("BoostBitrate(96000, %d) = %d, want %d", tc.channels, got, tc.want)
		}
	}
}

func TestParseNamesCaseInsensitively(t *testing.T) {
	if p, err := ParsePreset("  Quality "); err != nil || p != PresetQuality {
		t.Fatalf("ParsePreset = %q, %v", p, err)
	}
	if c, err := ParseVideoCodec("HEVC"); err != nil || c != VideoHEVC {
		t.Fatalf("ParseVideoCodec = %q, %v", c, err)
	}
	if c, err := ParseContainer("WebM"); err != nil || c != ContainerWebM {
		t.Fatalf("ParseContainer = %q, %v", c, err)
	}
	if _, err := ParseAudioCodec("flac"); !errors.Is(err, services.ErrInvalidConfiguration) {
		t.Fatalf("expected invalid configuration for flac, got %v", err)
	}
	if _, err := ParseKind("document"); err == nil {
		t.Fatal("expected error for unknown kind")
	}
}

func TestJobValidate(t *testing.T) {
	job := Job{
		Input:         "/in",
		Output:        "/out",
		Preset:        PresetNormal,
		VideoCodec:    VideoAV1,
		AudioCodec:    AudioOpus,
		SubtitleCodec: SubtitleCopy,
		ImageCodec:    ImageWebP,
		Container:     ContainerMKV,
	}
	for _, kind := range AllKinds() {
		if err := job.Validate(kind); err != nil {
			t.Fatalf("Validate(%s) returned error: %v", kind, err)
		}
	}

	bad := job
	bad.Container = Container("avi")
	if err := bad.Validate(KindVideo); !errors.Is(err, services.ErrInvalidConfiguration) {
		t.Fatalf("expected invalid container to fail, got %v", err)
	}
	if err := bad.Validate(KindAudio); err != nil {
		t.Fatalf("audio runs ignore the container, got %v", err)
	}

	bad = job
	bad.Output = " "
	if err := bad.Validate(KindImage); !errors.Is(err, services.ErrInvalidConfiguration) {
		t.Fatalf("expected missing output to fail, got %v", err)
	}
}

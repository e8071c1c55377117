package encoding

import (
	"os"
	"path/filepath"
	"slices"
	"testing"
)

func TestEffectiveSubtitle(t *testing.T) {
	tests := []struct {
		source    string
		container Container
		requested SubtitleCodec
		want      SubtitleCodec
	}{
		{"in.mp4", ContainerMKV, SubtitleCopy, SubtitleSRT},
		{"in.mkv", ContainerMP4, SubtitleCopy, SubtitleMovText},
		{"in.mkv", ContainerMKV, SubtitleCopy, SubtitleCopy},
		{"in.mp4", ContainerMP4, SubtitleCopy, SubtitleCopy},
		{"in.mkv", ContainerMKV, SubtitleASS, SubtitleASS},
		{"in.mkv", ContainerWebM, SubtitleCopy, SubtitleWebVTT},
		{"in.mp4", ContainerWebM, SubtitleSRT, SubtitleWebVTT},
	}
	for _, tc := range tests {
		if got := effectiveSubtitle(tc.source, tc.container, tc.requested); got != tc.want {
			t.Fatalf("effectiveSubtitle(%s, %s, %s) = %s, want %s", tc.source, tc.container, tc.requested, got, tc.want)
		}
	}
}

func TestEffectiveCodecsForWebM(t *testing.T) {
	v, a, overridden := effectiveCodecs(ContainerWebM, VideoAV1, AudioAAC)
	if v != VideoVP9 || a != AudioOpus || !overridden {
		t.Fatalf("webm = %s/%s overridden=%v", v, a, overridden)
	}
	v, a, overridden = effectiveCodecs(ContainerWebM, VideoVP9, AudioOpus)
	if v != VideoVP9 || a != AudioOpus || overridden {
		t.Fatalf("webm already compliant = %s/%s overridden=%v", v, a, overridden)
	}
	v, a, overridden = effectiveCodecs(ContainerMKV, VideoHEVC, AudioAAC)
	if v != VideoHEVC || a != AudioAAC || overridden {
		t.Fatalf("mkv = %s/%s overridden=%v", v, a, overridden)
	}
}

func TestVideoQualityFlags(t *testing.T) {
	normal := QualityProfile{SpeedLevel: 10, QualityFactor: 28}
	tests := []struct {
		codec VideoCodec
		q     QualityProfile
		want  []string
	}{
		{VideoAVC, normal, []string{"-c:v", "libx264", "-preset", "fast", "-crf", "28"}},
		{VideoHEVC, QualityProfile{SpeedLevel: 6, QualityFactor: 22}, []string{"-c:v", "libx265", "-preset", "slow", "-crf", "22"}},
		{VideoAV1, QualityProfile{SpeedLevel: 6, QualityFactor: 27}, []string{"-c:v", "libsvtav1", "-preset", "6", "-crf", "27"}},
		{VideoVP9, QualityProfile{SpeedLevel: 10, QualityFactor: 33}, []string{
			"-c:v", "libvpx-vp9", "-b:v", "0", "-crf", "33", "-deadline", "good", "-cpu-used", "5", "-row-mt", "1",
		}},
	}
	for _, tc := range tests {
		got, err := videoQualityFlags(tc.codec, tc.q)
		if err != nil {
			t.Fatalf("videoQualityFlags(%s) returned error: %v", tc.codec, err)
		}
		if !slices.Equal(got, tc.want) {
			t.Fatalf("videoQualityFlags(%s) = %q, want %q", tc.codec, got, tc.want)
		}
	}
}

func TestAudioFlagsOpusNormalizesLayout(t *testing.T) {
	got, err := audioFlags(AudioOpus, 192000)
	if err != nil {
		t.Fatalf("audioFlags returned error: %v", err)
	}
	want := []string{"-c:a", "libopus", "-b:a", "192000", "-af", opusLayoutFilter}
	if !slices.Equal(got, want) {
		t.Fatalf("audioFlags = %q, want %q", got, want)
	}
	got, _ = audioFlags(AudioCopy, 192000)
	if !slices.Equal(got, []string{"-c:a", "copy"}) {
		t.Fatalf("copy flags = %q", got)
	}
}

func TestSinglePassInvocation(t *testing.T) {
	plan := videoPlan{
		source:   "/in/a.mp4",
		target:   "/out/a.mkv",
		video:    VideoAVC,
		audio:    AudioAAC,
		subtitle: SubtitleSRT,
		quality:  QualityProfile{SpeedLevel: 10, QualityFactor: 28},
		bitrate:  96000,
		crop:     "1920:800:0:140",
		metadata: []string{"-metadata", "title=A"},
	}
	invs, err := plan.invocations()
	if err != nil {
		t.Fatalf("invocations returned error: %v", err)
	}
	if len(invs) != 1 {
		t.Fatalf("expected one invocation, got %d", len(invs))
	}
	want := []string{
		"-map", "0:v:0", "-map", "0:a?", "-map", "0:s?",
		"-c:v", "libx264", "-preset", "fast", "-crf", "28",
		"-vf", "crop=1920:800:0:140",
		"-c:a", "aac", "-b:a", "96000",
		"-c:s", "srt",
		"-metadata", "title=A",
	}
	if !slices.Equal(invs[0].Flags, want) {
		t.Fatalf("flags = %q\nwant %q", invs[0].Flags, want)
	}
	if invs[0].Input != plan.source || invs[0].Output != plan.target {
		t.Fatalf("paths = %s -> %s", invs[0].Input, invs[0].Output)
	}
}

func TestTwoPassInvocations(t *testing.T) {
	plan := videoPlan{
		source:     "/in/a.mkv",
		target:     "/out/a.webm",
		video:      VideoVP9,
		audio:      AudioOpus,
		subtitle:   SubtitleWebVTT,
		quality:    QualityProfile{SpeedLevel: 6, QualityFactor: 27},
		bitrate:    128000,
		passLogDir: "/tmp/work",
		passLogID:  "abc",
	}
	invs, err := plan.invocations()
	if err != nil {
		t.Fatalf("invocations returned error: %v", err)
	}
	if len(invs) != 2 {
		t.Fatalf("expected two invocations, got %d", len(invs))
	}
	prefix := filepath.Join("/tmp/work", "transcode-2pass-abc")

	first := invs[0]
	if first.Output != os.DevNull {
		t.Fatalf("first pass output = %q, want %q", first.Output, os.DevNull)
	}
	for _, flag := range []string{"-an", "-pass", "1", prefix, "null"} {
		if !slices.Contains(first.Flags, flag) {
			t.Fatalf("first pass missing %q: %q", flag, first.Flags)
		}
	}
	if slices.Contains(first.Flags, "-c:a") {
		t.Fatalf("first pass must not encode audio: %q", first.Flags)
	}

	second := invs[1]
	if second.Output != plan.target {
		t.Fatalf("second pass output = %q", second.Output)
	}
	tail := second.Flags[len(second.Flags)-4:]
	if !slices.Equal(tail, []string{"-pass", "2", "-passlogfile", prefix}) {
		t.Fatalf("second pass tail = %q", tail)
	}
	if !slices.Contains(second.Flags, "libopus") || !slices.Contains(second.Flags, "webvtt") {
		t.Fatalf("second pass flags = %q", second.Flags)
	}
}

func TestStreamCopyFlags(t *testing.T) {
	if got := streamCopyFlags(true); !slices.Equal(got, []string{"-map", "0", "-map", "-0:a", "-c", "copy"}) {
		t.Fatalf("strip audio flags = %q", got)
	}
	if got := streamCopyFlags(false); !slices.Equal(got, []string{"-map", "0", "-c", "copy"}) {
		t.Fatalf("copy flags = %q", got)
	}
}

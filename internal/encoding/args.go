package encoding

import (
	"os"
	"path/filepath"
	"slices"
	"strconv"
	"strings"

	"transcode/internal/workdir"
)

// opusLayoutFilter normalizes channel layouts before libopus, which rejects
// some layouts ffmpeg reports for 5.1(side) and similar inputs.
const opusLayoutFilter = "aformat=channel_layouts=7.1|5.1|stereo"

// Invocation is one engine call: flags placed between input and output.
type Invocation struct {
	Label  string
	Input  string
	Output string
	Flags  []string
}

// audioFlags returns the audio encoder flags for codec at bitrate.
func audioFlags(codec AudioCodec, bitrate int) ([]string, error) {
	encoder, err := codec.Encoder()
	if err != nil {
		return nil, err
	}
	if codec == AudioCopy {
		return []string{"-c:a", "copy"}, nil
	}
	flags := []string{"-c:a", encoder, "-b:a", strconv.Itoa(bitrate)}
	if codec == AudioOpus {
		flags = append(flags, "-af", opusLayoutFilter)
	}
	return flags, nil
}

// x26xPresets maps the 0-13 speed scale onto x264/x265 preset names.
var x26xPresets = [...]string{
	"placebo", "veryslow", "veryslow", "slower", "slower", "slow", "slow",
	"medium", "medium", "fast", "fast", "faster", "veryfast", "ultrafast",
}

// videoQualityFlags returns the encoder and rate-control flags for codec.
func videoQualityFlags(codec VideoCodec, quality QualityProfile) ([]string, error) {
	encoder, err := codec.Encoder()
	if err != nil {
		return nil, err
	}
	level := min(max(quality.SpeedLevel, 0), len(x26xPresets)-1)
	crf := strconv.Itoa(quality.QualityFactor)

	flags := []string{"-c:v", encoder}
	switch codec {
	case VideoAV1:
		flags = append(flags, "-preset", strconv.Itoa(level), "-crf", crf)
	case VideoVP9:
		// libvpx-vp9 only honours -crf as constant quality with -b:v 0.
		flags = append(flags, "-b:v", "0", "-crf", crf,
			"-deadline", "good", "-cpu-used", strconv.Itoa(min(level/2, 5)), "-row-mt", "1")
	case VideoAVC, VideoHEVC:
		flags = append(flags, "-preset", x26xPresets[level], "-crf", crf)
	}
	return flags, nil
}

// videoPlan is every per-file decision needed to build the video invocations.
type videoPlan struct {
	source     string
	target     string
	video      VideoCodec
	audio      AudioCodec
	subtitle   SubtitleCodec
	quality    QualityProfile
	bitrate    int
	crop       string
	metadata   []string
	passLogDir string
	passLogID  string
}

// passLogPrefix is the -passlogfile value for a two-pass encode.
func (p videoPlan) passLogPrefix() string {
	return filepath.Join(p.passLogDir, workdir.PassLogPrefix+p.passLogID)
}

func (p videoPlan) videoFilterFlags() []string {
	if strings.TrimSpace(p.crop) == "" {
		return nil
	}
	return []string{"-vf", "crop=" + p.crop}
}

// invocations returns one invocation for single-pass codecs and two for
// VP9. The first VP9 pass drops audio and writes to the null device.
func (p videoPlan) invocations() ([]Invocation, error) {
	videoFlags, err := videoQualityFlags(p.video, p.quality)
	if err != nil {
		return nil, err
	}
	audio, err := audioFlags(p.audio, p.bitrate)
	if err != nil {
		return nil, err
	}
	subtitle, err := p.subtitle.Encoder()
	if err != nil {
		return nil, err
	}

	main := []string{"-map", "0:v:0", "-map", "0:a?", "-map", "0:s?"}
	main = append(main, videoFlags...)
	main = append(main, p.videoFilterFlags()...)
	main = append(main, audio...)
	main = append(main, "-c:s", subtitle)
	main = append(main, p.metadata...)

	if !p.video.TwoPass() {
		return []Invocation{{Label: "encode", Input: p.source, Output: p.target, Flags: main}}, nil
	}

	prefix := p.passLogPrefix()
	first := []string{"-map", "0:v:0"}
	first = append(first, videoFlags...)
	first = append(first, p.videoFilterFlags()...)
	first = append(first, "-pass", "1", "-passlogfile", prefix, "-an", "-f", "null")

	second := slices.Concat(main, []string{"-pass", "2", "-passlogfile", prefix})

	return []Invocation{
		{Label: "pass 1", Input: p.source, Output: os.DevNull, Flags: first},
		{Label: "pass 2", Input: p.source, Output: p.target, Flags: second},
	}, nil
}

// effectiveSubtitle returns the subtitle codec for one file. Passthrough is
// replaced where the source subtitle format cannot be muxed into the target
// container; WebM only accepts WebVTT.
func effectiveSubtitle(source string, container Container, requested SubtitleCodec) SubtitleCodec {
	sourceIsMP4 := strings.EqualFold(filepath.Ext(source), ".mp4")
	switch {
	case container == ContainerWebM && requested != SubtitleWebVTT:
		return SubtitleWebVTT
	case requested != SubtitleCopy:
		return requested
	case sourceIsMP4 && container != ContainerMP4:
		return SubtitleSRT
	case !sourceIsMP4 && container == ContainerMP4:
		return SubtitleMovText
	default:
		return requested
	}
}

// effectiveCodecs applies container restrictions: WebM carries only VP9 video
// and Opus audio.
func effectiveCodecs(container Container, video VideoCodec, audio AudioCodec) (VideoCodec, AudioCodec, bool) {
	if container != ContainerWebM {
		return video, audio, false
	}
	overridden := video != VideoVP9 || audio != AudioOpus
	return VideoVP9, AudioOpus, overridden
}

// streamCopyFlags keeps every stream except audio when stripAudio is set.
func streamCopyFlags(stripAudio bool) []string {
	if stripAudio {
		return []string{"-map", "0", "-map", "-0:a", "-c", "copy"}
	}
	return []string{"-map", "0", "-c", "copy"}
}

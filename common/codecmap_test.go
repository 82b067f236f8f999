package common

import (
	"strings"
	"testing"
	"time"
)

const sampleEncoderOutput = `Encoders:
 V..... = Video
 A..... = Audio
 S..... = Subtitle
 .F.... = Frame-level multithreading
 ------
 V....D libopenh264          OpenH264 H.264 / AVC / MPEG-4 AVC / MPEG-4 part 10 (codec h264)
 V....D mpeg4                MPEG-4 part 2
 V..X.. h264_vaapi           H.264/AVC (VAAPI) (codec h264)
 A....D aac                  AAC (Advanced Audio Coding)
 S..... srt                  SubRip subtitle
`

func TestParseEncoderList(t *testing.T) {
	codecs := parseEncoderList(sampleEncoderOutput)

	for _, want := range []string{"libopenh264", "mpeg4", "h264_vaapi", "aac"} {
		if !codecs[want] {
			t.Errorf("Expected %s to be parsed as available", want)
		}
	}
	if codecs["srt"] {
		t.Error("Subtitle encoders should not be listed")
	}
	if codecs["Video"] || codecs["="] {
		t.Error("Legend lines should be skipped")
	}
}

func TestGetAvailableCodecs_ReturnsCopy(t *testing.T) {
	provider := NewStaticCodecProvider([]string{"mpeg4"}, nil)

	codecs1 := provider.GetAvailableCodecs()
	codecs2 := provider.GetAvailableCodecs()

	codecs1["modification_test"] = true

	if _, exists := codecs2["modification_test"]; exists {
		t.Error("GetAvailableCodecs() doesn't return independent copies")
	}
	if provider.IsCodecAvailable("modification_test") {
		t.Error("Internal codec cache was modified")
	}
}

func TestGetFallbackCodec_WithAvailableCodec(t *testing.T) {
	provider := NewStaticCodecProvider([]string{"libx264", "mpeg4"}, nil)

	result, err := provider.GetFallbackCodec("mpeg4")
	if err != nil {
		t.Fatalf("GetFallbackCodec failed: %v", err)
	}
	if result != "mpeg4" {
		t.Errorf("Expected mpeg4, got %s", result)
	}
}

func TestGetFallbackCodec_WithUnavailableCodec(t *testing.T) {
	provider := NewStaticCodecProvider([]string{"libopenh264"}, nil)

	result, err := provider.GetFallbackCodec("libx264")
	if err != nil {
		t.Fatalf("Expected fallback for libx264: %v", err)
	}
	if result != "libopenh264" {
		t.Errorf("Expected libopenh264 fallback, got %s", result)
	}
}

func TestGetFallbackCodec_NoneAvailable(t *testing.T) {
	provider := NewStaticCodecProvider(nil, nil)

	if _, err := provider.GetFallbackCodec("libx265"); err == nil {
		t.Error("Expected error when no codec in the chain is available")
	}
}

func TestGetFallbackCodec_UndefinedCodec(t *testing.T) {
	provider := NewStaticCodecProvider(nil, nil)

	_, err := provider.GetFallbackCodec("nonexistent_codec_with_no_fallback")
	if err == nil {
		t.Fatal("Expected error for codec with no fallback defined")
	}
	if !strings.Contains(err.Error(), "no fallback is defined") {
		t.Errorf("Unexpected error message: %s", err.Error())
	}
}

func TestFFmpegCodecProvider_Consistency(t *testing.T) {
	provider := NewFFmpegCodecProvider(nil)

	if provider.IsCodecAvailable("definitely_nonexistent_codec_12345") {
		t.Error("IsCodecAvailable should return false for non-existent codec")
	}

	codecs := provider.GetAvailableCodecs()
	t.Logf("Found %d available codecs", len(codecs))
	for codecName, isAvailable := range codecs {
		if provider.IsCodecAvailable(codecName) != isAvailable {
			t.Errorf("IsCodecAvailable('%s') inconsistent with GetAvailableCodecs result", codecName)
		}
	}
}

func TestCodecToFileExtension(t *testing.T) {
	tests := map[string]string{
		"mp4v": ".mp4",
		"MP4V": ".mp4",
		"avc1": ".mp4",
		"MJPG": ".avi",
		"XVID": ".avi",
		"VP80": ".webm",
		"ABCD": ".avi",
	}
	for codec, want := range tests {
		if got := CodecToFileExtension(codec); got != want {
			t.Errorf("CodecToFileExtension(%q) = %q, want %q", codec, got, want)
		}
	}
}

func TestClipFileName(t *testing.T) {
	savedAt := time.Unix(1718000000, 999_000_000)
	if got := ClipFileName("Happy", savedAt, "mp4v"); got != "Happy1718000000.mp4" {
		t.Errorf("Unexpected file name: %s", got)
	}
	if got := ClipFileName("Engaged", savedAt, "MJPG"); got != "Engaged1718000000.avi" {
		t.Errorf("Unexpected file name: %s", got)
	}
}

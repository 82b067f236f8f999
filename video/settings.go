package video

// Saved clips always use these parameters
const (
	ClipCodec     = "mp4v"
	ClipFrameRate = 10.0
)

type EncodingSettings struct {
	Codec     string  // FourCC passed to the OpenCV writer, e.g. "mp4v"
	FrameRate float64 // Frame rate stored in the clip
}

// ClipEncodingSettings returns the fixed clip format
func ClipEncodingSettings() EncodingSettings {
	return EncodingSettings{
		Codec:     ClipCodec,
		FrameRate: ClipFrameRate,
	}
}

package common

import (
	"fmt"
	"strings"
	"time"
)

// CodecToFileExtension maps a capture fourcc to the container extension it is written in
func CodecToFileExtension(codec string) string {
	codec = strings.ToUpper(codec)
	switch codec {
	case "MP4V", "H264", "AVC1", "X264":
		return ".mp4"
	case "MJPG", "XVID", "DIVX", "YUYV":
		return ".avi" // MJPG and raw formats are typically stored in AVI containers
	case "VP80", "VP90":
		return ".webm"
	default:
		return ".avi"
	}
}

// ClipFileName builds the dataset file name for a clip: the label followed by the
// Unix timestamp in seconds, e.g. "Happy1718000000.mp4"
func ClipFileName(label string, savedAt time.Time, codec string) string {
	return fmt.Sprintf("%s%d%s", label, savedAt.Unix(), CodecToFileExtension(codec))
}

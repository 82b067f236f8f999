package ui

import (
	"fmt"
	"image"
	"image/color"

	"gocv.io/x/gocv"

	"github.com/yeti47/fer-collector/session"
)

// OverlayLine is one row of text drawn over the video
type OverlayLine struct {
	Text    string
	IsError bool
}

var (
	colorText   = color.RGBA{R: 0, G: 0, B: 0, A: 0}
	colorError  = color.RGBA{R: 255, G: 0, B: 0, A: 0}
	colorBanner = color.RGBA{R: 255, G: 255, B: 255, A: 0}
	colorAccent = color.RGBA{R: 0, G: 200, B: 0, A: 0}
)

const (
	fontScale   = 0.6
	lineHeight  = 24
	textPadding = 8
)

// OverlayLines builds the text shown above the frame: caption, session state, upcoming label,
// settings and the status message
func OverlayLines(snap session.Snapshot) []OverlayLine {
	var state string
	switch snap.State {
	case session.StateIdleDisplay:
		state = "Not collecting"
	default:
		state = fmt.Sprintf("Collecting (%s)  next class: %s [%d/%d]",
			snap.State, snap.Label, snap.LabelIndex+1, snap.Category.Len())
	}

	lines := []OverlayLine{
		{Text: state},
		{Text: fmt.Sprintf("Category: %s  Duration: %d s  Output: %s", snap.Category, snap.DurationSeconds, snap.OutputDir)},
	}
	if snap.BufferedFrames > 0 {
		lines = append(lines, OverlayLine{Text: fmt.Sprintf("Recorded frames: %d", snap.BufferedFrames)})
	}
	if snap.Status.Text != "" {
		lines = append(lines, OverlayLine{Text: snap.Status.Text, IsError: snap.Status.IsError})
	}
	return lines
}

// drawOverlay renders caption centered near the top, the info lines on a banner at the top left
// and the key reference at the bottom
func drawOverlay(img *gocv.Mat, caption string, lines []OverlayLine) {
	bannerHeight := textPadding*2 + lineHeight*len(lines)
	gocv.Rectangle(img, image.Rect(0, 0, img.Cols(), bannerHeight), colorBanner, -1)

	for i, line := range lines {
		c := colorText
		if line.IsError {
			c = colorError
		}
		origin := image.Pt(textPadding, textPadding+lineHeight*(i+1)-6)
		gocv.PutText(img, line.Text, origin, gocv.FontHersheySimplex, fontScale, c, 1)
	}

	if caption != "" {
		size := gocv.GetTextSize(caption, gocv.FontHersheySimplex, 1.0, 2)
		origin := image.Pt((img.Cols()-size.X)/2, bannerHeight+lineHeight+textPadding*2)
		gocv.PutText(img, caption, origin, gocv.FontHersheySimplex, 1.0, colorAccent, 2)
	}

	gocv.PutText(img, KeyHelp, image.Pt(textPadding, img.Rows()-textPadding),
		gocv.FontHersheySimplex, 0.45, colorBanner, 1)
}

// Package labels holds the fixed class lists clips are recorded for.
package labels

import (
	"fmt"
	"strings"
)

// Category selects which label set a collection session cycles through
type Category int

const (
	Emotions Category = iota
	Engagement
)

var emotionLabels = []string{
	"Neutral",
	"Calm",
	"Happy",
	"Sad",
	"Angry",
	"Fear",
	"Disgust",
	"Surprise",
}

var engagementLabels = []string{"Distracted", "Engaged"}

// Categories lists every category in display order
var Categories = []Category{Emotions, Engagement}

func (c Category) String() string {
	switch c {
	case Emotions:
		return "Emotions"
	case Engagement:
		return "Engagement"
	default:
		return fmt.Sprintf("Category(%d)", int(c))
	}
}

// Parse converts a category name (case-insensitive) into a Category
func Parse(name string) (Category, error) {
	switch strings.ToLower(strings.TrimSpace(name)) {
	case "emotions", "emotion":
		return Emotions, nil
	case "engagement":
		return Engagement, nil
	default:
		return Emotions, fmt.Errorf("unknown label category: %q", name)
	}
}

// Labels returns a copy of the category's ordered label list
func (c Category) Labels() []string {
	var src []string
	switch c {
	case Engagement:
		src = engagementLabels
	default:
		src = emotionLabels
	}
	out := make([]string, len(src))
	copy(out, src)
	return out
}

// Len returns the number of labels in the category
func (c Category) Len() int {
	if c == Engagement {
		return len(engagementLabels)
	}
	return len(emotionLabels)
}

// Normalize maps any index onto a valid position in the category's list
func (c Category) Normalize(index int) int {
	n := c.Len()
	index %= n
	if index < 0 {
		index += n
	}
	return index
}

// Label returns the label at index after normalization
func (c Category) Label(index int) string {
	return c.Labels()[c.Normalize(index)]
}

// Next returns the category following c, wrapping around
func (c Category) Next() Category {
	for i, cat := range Categories {
		if cat == c {
			return Categories[(i+1)%len(Categories)]
		}
	}
	return Emotions
}

// Package session implements the capture workflow: the Session record with its
// state transitions and the Controller that runs countdowns and background workers.
package session

import (
	"fmt"
	"strings"

	"github.com/google/uuid"

	"github.com/yeti47/fer-collector/config"
	"github.com/yeti47/fer-collector/labels"
	"github.com/yeti47/fer-collector/recording"
)

// CountdownSeconds is the fixed delay between pressing record and the first captured frame
const CountdownSeconds = 3

const (
	statusNothingToPlay = "Error! Nothing to playback!"
	statusNothingToSave = "Error! Nothing to save!"
	statusSaving        = "Saving video..."
)

// Status is the transient message line shown to the operator
type Status struct {
	Text    string
	IsError bool
}

// Session is the complete mutable state of the collector.
// It is not safe for concurrent use; the Controller serializes access.
type Session struct {
	id              string
	state           State
	category        labels.Category
	labelIndex      int
	durationSeconds int
	outputDir       string
	buffer          *recording.FrameBuffer
	status          Status
}

// New creates an idle session with the given initial settings
func New(category labels.Category, durationSeconds int, outputDir string) (*Session, error) {
	if err := validateDuration(durationSeconds); err != nil {
		return nil, err
	}
	return &Session{
		state:           StateIdleDisplay,
		category:        category,
		durationSeconds: durationSeconds,
		outputDir:       outputDir,
		buffer:          recording.NewFrameBuffer(),
	}, nil
}

func validateDuration(seconds int) error {
	if seconds < config.MinClipDurationSeconds || seconds > config.MaxClipDurationSeconds {
		return fmt.Errorf("%w: %d s (allowed %d-%d)", ErrInvalidDuration, seconds,
			config.MinClipDurationSeconds, config.MaxClipDurationSeconds)
	}
	return nil
}

func (s *Session) State() State                   { return s.state }
func (s *Session) Controls() Controls             { return ControlsFor(s.state) }
func (s *Session) Collecting() bool               { return s.state != StateIdleDisplay }
func (s *Session) Category() labels.Category      { return s.category }
func (s *Session) LabelIndex() int                { return s.labelIndex }
func (s *Session) DurationSeconds() int           { return s.durationSeconds }
func (s *Session) OutputDir() string              { return s.outputDir }
func (s *Session) Status() Status                 { return s.status }
func (s *Session) Buffer() *recording.FrameBuffer { return s.buffer }

// ID identifies the current collection session; empty while idle
func (s *Session) ID() string { return s.id }

// CurrentLabel is the class the next clip is recorded for
func (s *Session) CurrentLabel() string {
	s.labelIndex = s.category.Normalize(s.labelIndex)
	return s.category.Label(s.labelIndex)
}

func (s *Session) SetStatus(text string, isError bool) {
	s.status = Status{Text: text, IsError: isError}
}

func (s *Session) ClearStatus() {
	s.status = Status{}
}

// SetCategory switches label sets. The cursor is re-normalized for the new list.
func (s *Session) SetCategory(category labels.Category) error {
	if !s.Controls().SettingsEditable {
		return ErrSettingsLocked
	}
	s.category = category
	s.labelIndex = category.Normalize(s.labelIndex)
	return nil
}

func (s *Session) SetDuration(seconds int) error {
	if !s.Controls().SettingsEditable {
		return ErrSettingsLocked
	}
	if err := validateDuration(seconds); err != nil {
		return err
	}
	s.durationSeconds = seconds
	return nil
}

func (s *Session) SetOutputDir(dir string) error {
	if !s.Controls().SettingsEditable {
		return ErrSettingsLocked
	}
	if strings.TrimSpace(dir) == "" {
		return fmt.Errorf("output directory must not be empty")
	}
	s.outputDir = dir
	return nil
}

// ToggleCollection starts or stops a collection session.
// Starting resets the label cursor; stopping drops any unsaved recording.
func (s *Session) ToggleCollection() error {
	switch s.state {
	case StateIdleDisplay:
		s.state = StateCollectingIdle
		s.labelIndex = 0
		s.id = uuid.NewString()
		s.ClearStatus()
	case StateCollectingIdle:
		s.state = StateIdleDisplay
		s.labelIndex = 0
		s.id = ""
		s.buffer.Clear()
		s.ClearStatus()
	default:
		return invalidTransition("toggling collection", s.state)
	}
	return nil
}

// BeginCountdown clears the previous recording and enters the pre-recording countdown
func (s *Session) BeginCountdown() error {
	if !s.Controls().Record {
		return invalidTransition("recording", s.state)
	}
	s.buffer.Clear()
	s.state = StateCountdown
	s.SetStatus(countdownStatus("begin", CountdownSeconds), false)
	return nil
}

// BeginRecording ends the countdown
func (s *Session) BeginRecording() error {
	if s.state != StateCountdown {
		return invalidTransition("starting capture", s.state)
	}
	s.state = StateRecording
	s.SetStatus(countdownStatus("stop", s.durationSeconds), false)
	return nil
}

// FinishRecording returns to waiting with the captured frames kept in the buffer
func (s *Session) FinishRecording() error {
	if s.state != StateRecording {
		return invalidTransition("finishing capture", s.state)
	}
	s.state = StateCollectingIdle
	s.ClearStatus()
	return nil
}

// AbortRecording leaves the countdown or recording without keeping any frames
func (s *Session) AbortRecording(reason string) error {
	if s.state != StateCountdown && s.state != StateRecording {
		return invalidTransition("aborting capture", s.state)
	}
	s.buffer.Clear()
	s.state = StateCollectingIdle
	if reason != "" {
		s.SetStatus(reason, true)
	} else {
		s.ClearStatus()
	}
	return nil
}

// BeginPlayback starts replaying the buffer. With nothing recorded it only sets an error status.
func (s *Session) BeginPlayback() error {
	if !s.Controls().Play {
		return invalidTransition("playback", s.state)
	}
	if s.buffer.Len() == 0 {
		s.SetStatus(statusNothingToPlay, true)
		return ErrEmptyBuffer
	}
	s.state = StatePlayback
	s.ClearStatus()
	return nil
}

func (s *Session) FinishPlayback() error {
	if s.state != StatePlayback {
		return invalidTransition("finishing playback", s.state)
	}
	s.state = StateCollectingIdle
	return nil
}

// BeginSave enters the saving state. With nothing recorded it only sets an error status.
func (s *Session) BeginSave() error {
	if !s.Controls().Save {
		return invalidTransition("saving", s.state)
	}
	if s.buffer.Len() == 0 {
		s.SetStatus(statusNothingToSave, true)
		return ErrEmptyBuffer
	}
	s.state = StateSaving
	s.SetStatus(statusSaving, false)
	return nil
}

// FinishSave completes a save. Only a successful save clears the buffer and advances the label cursor.
func (s *Session) FinishSave(saveErr error) error {
	if s.state != StateSaving {
		return invalidTransition("finishing save", s.state)
	}
	s.state = StateCollectingIdle
	if saveErr != nil {
		s.SetStatus(fmt.Sprintf("Error! Could not save video: %v", saveErr), true)
		return nil
	}
	s.buffer.Clear()
	s.labelIndex = s.category.Normalize(s.labelIndex + 1)
	s.ClearStatus()
	return nil
}

// Close releases any buffered frames
func (s *Session) Close() {
	s.buffer.Clear()
}

// Snapshot is a read-only copy of the session for rendering
type Snapshot struct {
	SessionID       string
	State           State
	Controls        Controls
	Category        labels.Category
	LabelIndex      int
	Label           string
	DurationSeconds int
	OutputDir       string
	BufferedFrames  int
	Status          Status
}

func (s *Session) Snapshot() Snapshot {
	return Snapshot{
		SessionID:       s.id,
		State:           s.state,
		Controls:        s.Controls(),
		Category:        s.category,
		LabelIndex:      s.labelIndex,
		Label:           s.CurrentLabel(),
		DurationSeconds: s.durationSeconds,
		OutputDir:       s.outputDir,
		BufferedFrames:  s.buffer.Len(),
		Status:          s.status,
	}
}

func countdownStatus(verb string, seconds int) string {
	return fmt.Sprintf("Recording will %s in %d s", verb, seconds)
}

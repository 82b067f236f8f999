package ui

import (
	"errors"
	"fmt"

	"github.com/yeti47/fer-collector/session"
)

// Action is an operator command bound to a key
type Action int

const (
	ActionNone Action = iota
	ActionToggleCollection
	ActionRecord
	ActionPlay
	ActionSave
	ActionCycleCategory
	ActionDurationUp
	ActionDurationDown
	ActionQuit
)

const keyEscape = 27

var keyBindings = map[int]Action{
	' ':       ActionToggleCollection,
	'r':       ActionRecord,
	'p':       ActionPlay,
	's':       ActionSave,
	'c':       ActionCycleCategory,
	'+':       ActionDurationUp,
	'=':       ActionDurationUp,
	'-':       ActionDurationDown,
	'q':       ActionQuit,
	keyEscape: ActionQuit,
}

// ActionForKey maps a key code from WaitKey to its action. Letters are case-insensitive.
func ActionForKey(key int) Action {
	if key < 0 {
		return ActionNone
	}
	key &= 0xFF
	if key >= 'A' && key <= 'Z' {
		key += 'a' - 'A'
	}
	return keyBindings[key]
}

// KeyHelp is the one-line key reference drawn at the bottom of the window
const KeyHelp = "[space] collect  [r] record  [p] play  [s] save  [c] category  [+/-] duration  [q] quit"

// Commands is the part of the session controller the key bindings drive
type Commands interface {
	ToggleCollection() error
	BeginRecording() error
	PlayVideo() error
	SaveVideo() error
	CycleCategory() error
	AdjustDuration(delta int) error
	ReportStatus(text string, isError bool) error
}

// Dispatch runs the command for action. quit is true for ActionQuit.
// A rejected command is reported on the status line; the returned error is for logging.
func Dispatch(commands Commands, action Action) (quit bool, err error) {
	switch action {
	case ActionNone:
		return false, nil
	case ActionQuit:
		return true, nil
	case ActionToggleCollection:
		err = commands.ToggleCollection()
	case ActionRecord:
		err = commands.BeginRecording()
	case ActionPlay:
		err = commands.PlayVideo()
	case ActionSave:
		err = commands.SaveVideo()
	case ActionCycleCategory:
		err = commands.CycleCategory()
	case ActionDurationUp:
		err = commands.AdjustDuration(1)
	case ActionDurationDown:
		err = commands.AdjustDuration(-1)
	default:
		return false, fmt.Errorf("unknown action %d", action)
	}

	if msg := rejectionMessage(err); msg != "" {
		if reportErr := commands.ReportStatus(msg, false); reportErr != nil {
			return false, reportErr
		}
	}
	return false, err
}

// rejectionMessage is the status text for a refused command.
// Empty buffers already set their own red status.
func rejectionMessage(err error) string {
	switch {
	case err == nil, errors.Is(err, session.ErrEmptyBuffer), errors.Is(err, session.ErrStopped):
		return ""
	case errors.Is(err, session.ErrInvalidTransition), errors.Is(err, session.ErrSettingsLocked),
		errors.Is(err, session.ErrInvalidDuration):
		return capitalize(err.Error())
	default:
		return ""
	}
}

func capitalize(s string) string {
	if s == "" || s[0] < 'a' || s[0] > 'z' {
		return s
	}
	return string(s[0]-'a'+'A') + s[1:]
}

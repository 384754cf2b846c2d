package editor

import (
	"context"
	"fmt"
)

// Kind classifies a user-visible message.
type Kind int

const (
	KindInfo Kind = iota
	KindWarning
	KindError
)

func (k Kind) String() string {
	switch k {
	case KindInfo:
		return "info"
	case KindWarning:
		return "warning"
	case KindError:
		return "error"
	default:
		return fmt.Sprintf("Kind(%d)", int(k))
	}
}

// Action is what a file dialog is asked for.
type Action int

const (
	ActionOpen Action = iota + 1
	ActionSave
)

func (a Action) String() string {
	switch a {
	case ActionOpen:
		return "open"
	case ActionSave:
		return "save"
	default:
		return fmt.Sprintf("Action(%d)", int(a))
	}
}

// DialogOptions describes a file picker request.
type DialogOptions struct {
	Action Action
	Title  string
	// DefaultPath pre-fills the picker, e.g. the last file opened or saved.
	DefaultPath string
	// Extensions restricts the selectable files, without the dot.
	Extensions []string
}

// Dialog is the user-facing collaborator of a [Session]: a file picker and
// a message sink. Implementations live in the front end.
type Dialog interface {
	// Confirm asks the user for a path. ok is false when the user cancels.
	Confirm(ctx context.Context, opts DialogOptions) (path string, ok bool, err error)
	// Notify shows a message.
	Notify(message string, kind Kind)
}

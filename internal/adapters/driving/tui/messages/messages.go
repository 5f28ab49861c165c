// Package messages defines Bubbletea message types for the TUI.
// Messages represent events and commands that flow through the Elm architecture.
package messages

import (
	"github.com/custodia-labs/vox/internal/core/domain"
)

// AnswerReceived carries the result of a question back to the model.
type AnswerReceived struct {
	Question string
	Answer   *domain.Answer
	Err      error
}

// ListenFinished carries a transcribed voice question.
type ListenFinished struct {
	Text string
	Err  error
}

// SpeechFinished signals that an answer was spoken.
type SpeechFinished struct {
	Err error
}

// ViewChanged is sent when navigating between views.
type ViewChanged struct {
	View ViewType
}

// ViewType identifies which view is currently active.
type ViewType int

const (
	// ViewMenu is the main navigation menu.
	ViewMenu ViewType = iota
	// ViewChat is the question and answer view.
	ViewChat
	// ViewHistory lists stored conversations.
	ViewHistory
	// ViewIndex describes the vector index.
	ViewIndex
	// ViewHelp is the help/keybindings view.
	ViewHelp
)

// String returns the string representation of the view type.
func (v ViewType) String() string {
	switch v {
	case ViewMenu:
		return "menu"
	case ViewChat:
		return "chat"
	case ViewHistory:
		return "history"
	case ViewIndex:
		return "index"
	case ViewHelp:
		return "help"
	default:
		return "unknown"
	}
}

// ErrorOccurred signals that an error happened.
type ErrorOccurred struct {
	Err error
}

// Quit signals the application should exit.
type Quit struct{}

// SessionsLoaded carries the stored conversations.
type SessionsLoaded struct {
	Sessions []domain.SessionSummary
	Err      error
}

// TurnsLoaded carries the turns of one stored conversation.
type TurnsLoaded struct {
	SessionID string
	Turns     []domain.Turn
	Err       error
}

// IndexLoaded carries the description of the persisted index.
type IndexLoaded struct {
	Info *domain.IndexInfo
	Err  error
}

// IndexRebuilt signals a rebuild finished.
type IndexRebuilt struct {
	Report *domain.BuildReport
	Err    error
}

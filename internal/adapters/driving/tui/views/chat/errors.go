package chat

import "errors"

// Error definitions for the chat view.
var (
	// ErrNoAssistant indicates that no conversation was provided.
	ErrNoAssistant = errors.New("assistant service is required")

	// ErrNoVoice indicates that no voice service was provided.
	ErrNoVoice = errors.New("voice is not configured")
)

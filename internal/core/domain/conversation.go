package domain

import "time"

// Turn is one completed exchange in a conversation.
// Both fields are always set: failed turns are never recorded.
type Turn struct {
	// Question is the user's question as asked.
	Question string

	// Answer is the language model's reply.
	Answer string

	// AskedAt is when the turn was recorded.
	AskedAt time.Time
}

// Answer is the result of one retrieval-augmented question.
type Answer struct {
	// Text is the language model's reply.
	Text string

	// Question is the question that was sent to retrieval.
	// Differs from the asked question when condensing is enabled.
	Question string

	// Sources are the chunks the reply was grounded on, best first.
	Sources []RetrievedChunk
}

// TranscriptEntry is a persisted turn, tagged with its session.
type TranscriptEntry struct {
	SessionID string
	Turn
}

// SessionSummary describes a stored conversation.
type SessionSummary struct {
	ID        string
	StartedAt time.Time
	Turns     int
}

package domain

import (
	"sort"
	"strings"
	"time"
)

// DefaultVoiceName is used when no voice, or an unknown voice, is selected.
const DefaultVoiceName = "Alice"

// Voice is a named text-to-speech voice.
type Voice struct {
	// Name is the display name used for selection.
	Name string

	// ID is the provider's voice identifier.
	ID string
}

// voiceCatalogue maps display names to ElevenLabs voice IDs.
var voiceCatalogue = map[string]string{
	"Alice":  "Xb7hH8MSUJpSbSDYk0k2",
	"Aria":   "9BWtsMINqrJLrRacOk9x",
	"Bill":   "pqHfZKP75CvOlQylNhV4",
	"Brian":  "nPczCjzI2devNBz1zQrb",
	"Callum": "N2lVS1w4EtoT3dr4eOWO",
}

// AllVoices returns the catalogue sorted by name.
func AllVoices() []Voice {
	voices := make([]Voice, 0, len(voiceCatalogue))
	for name, id := range voiceCatalogue {
		voices = append(voices, Voice{Name: name, ID: id})
	}
	sort.Slice(voices, func(i, j int) bool { return voices[i].Name < voices[j].Name })
	return voices
}

// LookupVoice finds a voice by name, case-insensitively.
func LookupVoice(name string) (Voice, bool) {
	for n, id := range voiceCatalogue {
		if strings.EqualFold(n, strings.TrimSpace(name)) {
			return Voice{Name: n, ID: id}, true
		}
	}
	return Voice{}, false
}

// DefaultVoice returns the fallback voice.
func DefaultVoice() Voice {
	return Voice{Name: DefaultVoiceName, ID: voiceCatalogue[DefaultVoiceName]}
}

// ResolveVoice returns the named voice, or the default voice and false
// when the name is empty or unknown.
func ResolveVoice(name string) (Voice, bool) {
	if v, ok := LookupVoice(name); ok {
		return v, true
	}
	return DefaultVoice(), false
}

// AudioClip is a recorded audio file.
type AudioClip struct {
	// Path is the WAV file location.
	Path string

	// SampleRate is samples per second.
	SampleRate int

	// Channels is the channel count (1 for mono).
	Channels int

	// Duration is the requested recording length.
	Duration time.Duration
}

// Recording bounds for voice capture, in seconds.
const (
	MinRecordSeconds     = 1
	MaxRecordSeconds     = 10
	DefaultRecordSeconds = 5
	DefaultSampleRate    = 44100
)

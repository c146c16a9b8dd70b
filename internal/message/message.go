// Package message defines the core data types flowing through the jervis
// pipeline.
package message

// Source tags where an utterance came from.
type Source string

const (
	// SourceTyped marks text entered manually by the user.
	SourceTyped Source = "typed"

	// SourceTranscribed marks text produced by the audio ingestion
	// pipeline.
	SourceTranscribed Source = "transcribed"
)

// Utterance is one unit of user input text, regardless of origin.
// It is immutable once created.
type Utterance struct {
	// Text is the raw input as the user produced it.
	Text string `json:"text"`

	// Source records how the text entered the system.
	Source Source `json:"source"`
}

// Typed wraps manually entered text as an utterance.
func Typed(text string) Utterance {
	return Utterance{Text: text, Source: SourceTyped}
}

// Transcribed wraps transcription output as an utterance.
func Transcribed(text string) Utterance {
	return Utterance{Text: text, Source: SourceTranscribed}
}

// Result is the wire response of the command surface: the command as the
// assistant understood it, plus the response text.
type Result struct {
	Command  string `json:"command"`
	Response string `json:"response"`
}

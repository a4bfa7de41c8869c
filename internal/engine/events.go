// Package engine is the conversation core: it receives normalized chat
// events from a transport, walks each chat through the multi-step
// search dialogues and renders menus and results back through the
// Messenger. It knows nothing about any concrete chat platform.
package engine

import "time"

// Kind classifies an incoming chat event.
type Kind int

const (
	KindCommand Kind = iota
	KindText
	KindCallback
)

func (k Kind) String() string {
	switch k {
	case KindCommand:
		return "command"
	case KindText:
		return "text"
	default:
		return "callback"
	}
}

// Event is one normalized update from the transport.
type Event struct {
	Kind      Kind
	ChatID    int64
	MessageID int

	// Command is set for KindCommand, without the leading slash.
	Command string
	// Text is set for KindText.
	Text string
	// Data is set for KindCallback.
	Data string

	Time time.Time
}

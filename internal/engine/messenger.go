package engine

import "context"

// Button is one inline keyboard button. Data is the callback token the
// engine receives back when the button is pressed.
type Button struct {
	Text string
	Data string
}

// Keyboard is an inline keyboard, row-major.
type Keyboard [][]Button

// Messenger is the outbound side of a chat transport.
type Messenger interface {
	// Send delivers a plain text message.
	Send(ctx context.Context, chatID int64, text string) error

	// SendKeyboard delivers a message with an inline keyboard and
	// returns the sent message's id so the keyboard can be cleared or
	// the message deleted later.
	SendKeyboard(ctx context.Context, chatID int64, text string, kb Keyboard) (int, error)

	// ClearKeyboard removes the inline keyboard from a sent message,
	// leaving its text in place.
	ClearKeyboard(ctx context.Context, chatID int64, messageID int) error

	// Delete removes a sent message.
	Delete(ctx context.Context, chatID int64, messageID int) error

	// SendAlbum delivers a group of photos by URL.
	SendAlbum(ctx context.Context, chatID int64, urls []string) error
}

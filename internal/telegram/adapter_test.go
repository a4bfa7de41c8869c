package telegram

import (
	"testing"

	"github.com/stretchr/testify/assert"
	tele "gopkg.in/telebot.v4"

	"github.com/stayscout/stayscout/internal/engine"
)

func TestInlineKeyboard(t *testing.T) {
	kb := engine.Keyboard{
		{{Text: "Yes", Data: "photo:yes"}, {Text: "No", Data: "photo:no"}},
		{{Text: "Cancel", Data: "cancel"}},
	}

	rows := inlineKeyboard(kb)

	assert.Equal(t, [][]tele.InlineButton{
		{{Text: "Yes", Data: "photo:yes"}, {Text: "No", Data: "photo:no"}},
		{{Text: "Cancel", Data: "cancel"}},
	}, rows)
}

func TestStoredMessage(t *testing.T) {
	msg := stored(42, 1001)

	assert.Equal(t, "1001", msg.MessageID)
	assert.Equal(t, int64(42), msg.ChatID)
}

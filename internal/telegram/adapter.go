// Package telegram adapts the conversation engine to the Telegram Bot
// API. It is the only package that knows about telebot; the engine sees
// normalized events and a Messenger.
package telegram

import (
	"context"
	"strconv"
	"strings"
	"time"

	"go.uber.org/zap"
	tele "gopkg.in/telebot.v4"

	"github.com/stayscout/stayscout/internal/engine"
)

// commands the bot announces and routes. Each becomes one engine
// command event.
var commands = []string{"start", "help", "reg", "lowprice", "highprice", "bestdeal", "history"}

// Bot bridges telebot updates into engine events and implements
// engine.Messenger for the outbound direction.
type Bot struct {
	bot *tele.Bot
	log *zap.Logger

	ctx    context.Context
	cancel context.CancelFunc
}

// New connects to the Bot API. pollTimeout bounds each long-poll cycle.
func New(token string, pollTimeout time.Duration, log *zap.Logger) (*Bot, error) {
	if log == nil {
		log = zap.NewNop()
	}

	b := &Bot{log: log}
	bot, err := tele.NewBot(tele.Settings{
		Token:  token,
		Poller: &tele.LongPoller{Timeout: pollTimeout},
		OnError: func(err error, c tele.Context) {
			log.Error("telegram update failed", zap.Error(err))
		},
	})
	if err != nil {
		return nil, err
	}
	b.bot = bot
	return b, nil
}

// Attach registers the update handlers that feed the engine.
func (b *Bot) Attach(eng *engine.Engine) {
	for _, cmd := range commands {
		b.bot.Handle("/"+cmd, func(c tele.Context) error {
			eng.Dispatch(b.ctx, engine.Event{
				Kind:      engine.KindCommand,
				ChatID:    c.Chat().ID,
				MessageID: c.Message().ID,
				Command:   cmd,
				Time:      time.Now(),
			})
			return nil
		})
	}

	b.bot.Handle(tele.OnText, func(c tele.Context) error {
		eng.Dispatch(b.ctx, engine.Event{
			Kind:      engine.KindText,
			ChatID:    c.Chat().ID,
			MessageID: c.Message().ID,
			Text:      c.Text(),
			Time:      time.Now(),
		})
		return nil
	})

	b.bot.Handle(tele.OnCallback, func(c tele.Context) error {
		// Telegram shows a spinner on the button until the callback
		// is acknowledged.
		defer func() {
			if err := c.Respond(&tele.CallbackResponse{}); err != nil {
				b.log.Debug("callback ack failed", zap.Error(err))
			}
		}()

		eng.Dispatch(b.ctx, engine.Event{
			Kind:      engine.KindCallback,
			ChatID:    c.Chat().ID,
			MessageID: c.Message().ID,
			Data:      strings.TrimPrefix(c.Callback().Data, "\f"),
			Time:      time.Now(),
		})
		return nil
	})
}

// Start begins long polling and blocks until Stop is called.
func (b *Bot) Start(ctx context.Context) {
	b.ctx, b.cancel = context.WithCancel(ctx)
	b.log.Info("telegram bot started")
	b.bot.Start()
}

// Stop halts polling and cancels in-flight handlers' context.
func (b *Bot) Stop() {
	if b.cancel != nil {
		b.cancel()
	}
	b.bot.Stop()
}

// Send implements engine.Messenger.
func (b *Bot) Send(ctx context.Context, chatID int64, text string) error {
	_, err := b.bot.Send(tele.ChatID(chatID), text)
	return err
}

// SendKeyboard implements engine.Messenger.
func (b *Bot) SendKeyboard(ctx context.Context, chatID int64, text string, kb engine.Keyboard) (int, error) {
	msg, err := b.bot.Send(tele.ChatID(chatID), text, &tele.ReplyMarkup{
		InlineKeyboard: inlineKeyboard(kb),
	})
	if err != nil {
		return 0, err
	}
	return msg.ID, nil
}

// ClearKeyboard implements engine.Messenger.
func (b *Bot) ClearKeyboard(ctx context.Context, chatID int64, messageID int) error {
	_, err := b.bot.EditReplyMarkup(stored(chatID, messageID), nil)
	return err
}

// Delete implements engine.Messenger.
func (b *Bot) Delete(ctx context.Context, chatID int64, messageID int) error {
	return b.bot.Delete(stored(chatID, messageID))
}

// SendAlbum implements engine.Messenger.
func (b *Bot) SendAlbum(ctx context.Context, chatID int64, urls []string) error {
	album := make(tele.Album, 0, len(urls))
	for _, u := range urls {
		album = append(album, &tele.Photo{File: tele.FromURL(u)})
	}
	_, err := b.bot.SendAlbum(tele.ChatID(chatID), album)
	return err
}

func inlineKeyboard(kb engine.Keyboard) [][]tele.InlineButton {
	rows := make([][]tele.InlineButton, len(kb))
	for i, row := range kb {
		rows[i] = make([]tele.InlineButton, len(row))
		for j, btn := range row {
			rows[i][j] = tele.InlineButton{Text: btn.Text, Data: btn.Data}
		}
	}
	return rows
}

func stored(chatID int64, messageID int) tele.StoredMessage {
	return tele.StoredMessage{
		MessageID: strconv.Itoa(messageID),
		ChatID:    chatID,
	}
}

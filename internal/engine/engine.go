package engine

import (
	"context"
	"time"

	"go.uber.org/zap"

	"github.com/stayscout/stayscout/internal/history"
	"github.com/stayscout/stayscout/internal/hotels"
	"github.com/stayscout/stayscout/internal/search"
	"github.com/stayscout/stayscout/pkg/observability"
	"github.com/stayscout/stayscout/pkg/session"
)

// Searcher is the slice of the search orchestrator the engine needs.
type Searcher interface {
	FindCities(ctx context.Context, query string) ([]hotels.Destination, error)
	Run(ctx context.Context, q search.Query) ([]search.Hotel, error)
}

// Config wires an Engine's collaborators.
type Config struct {
	Store     *session.Store
	History   *history.Log
	Searcher  Searcher
	Messenger Messenger
	Logger    *zap.Logger
	MaxHotels int
	MaxPhotos int
}

// Engine drives the conversation state machine for every chat.
type Engine struct {
	store     *session.Store
	history   *history.Log
	searcher  Searcher
	msg       Messenger
	log       *zap.Logger
	maxHotels int
	maxPhotos int
	now       func() time.Time
}

// New creates an engine.
func New(cfg Config) *Engine {
	log := cfg.Logger
	if log == nil {
		log = zap.NewNop()
	}
	maxHotels := cfg.MaxHotels
	if maxHotels == 0 {
		maxHotels = 5
	}
	maxPhotos := cfg.MaxPhotos
	if maxPhotos == 0 {
		maxPhotos = 5
	}
	return &Engine{
		store:     cfg.Store,
		history:   cfg.History,
		searcher:  cfg.Searcher,
		msg:       cfg.Messenger,
		log:       log,
		maxHotels: maxHotels,
		maxPhotos: maxPhotos,
		now:       time.Now,
	}
}

// Dispatch handles one event. Events for the same chat are serialized
// on the chat's lock; a panic in a handler is contained to the event.
func (e *Engine) Dispatch(ctx context.Context, ev Event) {
	start := time.Now()
	defer func() {
		if r := recover(); r != nil {
			e.log.Error("recovered from handler panic",
				zap.Int64("chat", ev.ChatID),
				zap.Stringer("kind", ev.Kind),
				zap.Any("panic", r))
		}
		observability.RecordUpdate(ev.Kind.String(), time.Since(start))
	}()

	st := e.store.Get(ev.ChatID)
	observability.SetActiveChats(e.store.Len())

	st.Lock()
	defer st.Unlock()

	var err error
	switch ev.Kind {
	case KindCommand:
		err = e.handleCommand(ctx, st, ev)
	case KindText:
		err = e.handleText(ctx, st, ev)
	case KindCallback:
		err = e.handleCallback(ctx, st, ev)
	}
	if err != nil {
		e.log.Error("event handling failed",
			zap.Int64("chat", ev.ChatID),
			zap.Stringer("kind", ev.Kind),
			zap.Error(err))
	}
}

// handleCommand routes a slash command. Any command interrupts whatever
// the chat was in the middle of: the pending step is dropped and an
// unfinished search attempt is abandoned without a history entry.
func (e *Engine) handleCommand(ctx context.Context, st *session.State, ev Event) error {
	st.ClearStep()
	e.abandonSearch(st, ev.ChatID)
	e.closeMenu(ctx, ev.ChatID, st)

	switch ev.Command {
	case "start":
		return e.msg.Send(ctx, ev.ChatID, greetingText)
	case "help":
		return e.msg.Send(ctx, ev.ChatID, helpText)
	case "reg":
		return e.renderCriteria(ctx, ev.ChatID, st)
	case "lowprice":
		return e.beginSearch(ctx, st, ev.ChatID, session.ModeLowPrice)
	case "highprice":
		return e.beginSearch(ctx, st, ev.ChatID, session.ModeHighPrice)
	case "bestdeal":
		return e.beginSearch(ctx, st, ev.ChatID, session.ModeBestDeal)
	case "history":
		return e.beginHistory(ctx, st, ev.ChatID)
	default:
		return e.msg.Send(ctx, ev.ChatID, "I don't know that command. Try /help.")
	}
}

// handleText feeds free text to the registered continuation, if any.
func (e *Engine) handleText(ctx context.Context, st *session.State, ev Event) error {
	step := st.TakeStep()
	if step == nil {
		return e.msg.Send(ctx, ev.ChatID, "Not sure what you mean. /help lists what I can do.")
	}
	return step(ctx, ev.Text)
}

// abandonSearch drops an in-flight search attempt and its pending
// history entry.
func (e *Engine) abandonSearch(st *session.State, chatID int64) {
	if st.Search == nil {
		return
	}
	e.history.DiscardPending(chatID)
	st.Search = nil
}

// closeMenu removes the menu currently on screen, if any. Messages past
// Telegram's deletion window can still have their keyboard edited away,
// so a failed delete falls back to stripping the buttons.
func (e *Engine) closeMenu(ctx context.Context, chatID int64, st *session.State) {
	if st.LastMenuID == 0 {
		return
	}
	if err := e.msg.Delete(ctx, chatID, st.LastMenuID); err != nil {
		e.log.Debug("menu delete failed", zap.Int64("chat", chatID), zap.Error(err))
		if err := e.msg.ClearKeyboard(ctx, chatID, st.LastMenuID); err != nil {
			e.log.Debug("keyboard clear failed", zap.Int64("chat", chatID), zap.Error(err))
		}
	}
	st.LastMenuID = 0
}

// showMenu replaces the menu on screen with a new one.
func (e *Engine) showMenu(ctx context.Context, chatID int64, st *session.State, text string, kb Keyboard) error {
	e.closeMenu(ctx, chatID, st)
	id, err := e.msg.SendKeyboard(ctx, chatID, text, kb)
	if err != nil {
		return err
	}
	st.LastMenuID = id
	return nil
}

const greetingText = `Hi! I find hotels for you.

Set your stay dates and rooms with /reg, then run a search:
/lowprice - cheapest hotels in a city
/highprice - most expensive hotels in a city
/bestdeal - balance price against distance from the centre
/history - your past searches

/help shows this list again.`

const helpText = `/reg - set stay dates, rooms and guests
/lowprice - cheapest hotels in a city
/highprice - most expensive hotels in a city
/bestdeal - price and distance filters, best matches first
/history - your past searches and their results`

package engine

import (
	"context"
	"strconv"
	"strings"

	"go.uber.org/zap"

	"github.com/stayscout/stayscout/pkg/session"
)

// handleCallback routes an inline button press. Tokens are short
// colon-separated paths baked into the buttons the engine rendered.
// A press always supersedes whatever free-text step was pending.
// Tokens from stale menus that no longer apply are dropped silently.
func (e *Engine) handleCallback(ctx context.Context, st *session.State, ev Event) error {
	st.ClearStep()

	parts := strings.Split(ev.Data, ":")
	switch parts[0] {
	case "dates":
		if len(parts) == 2 {
			return e.askDate(ctx, ev.ChatID, st, parts[1] == "in")
		}

	case "room":
		return e.roomCallback(ctx, st, ev, parts[1:])

	case "adults":
		if i, ok := index(parts, 1); ok {
			return e.askAdults(ctx, ev.ChatID, st, i)
		}

	case "child":
		return e.childCallback(ctx, st, ev, parts[1:])

	case "criteria":
		if len(parts) == 2 && parts[1] == "reset" {
			st.ResetBooking()
			return e.renderCriteria(ctx, ev.ChatID, st)
		}
		if len(parts) == 2 && parts[1] == "done" {
			e.closeMenu(ctx, ev.ChatID, st)
			return e.msg.Send(ctx, ev.ChatID, "Saved. Run /lowprice, /highprice or /bestdeal when you're ready.")
		}

	case "city":
		i, ok := index(parts, 1)
		if !ok || st.Search == nil || i >= len(st.Search.Choices) {
			return nil
		}
		choice := st.Search.Choices[i]
		e.closeMenu(ctx, ev.ChatID, st)
		return e.selectCity(ctx, ev.ChatID, st, choice.ID, choice.Name)

	case "deal":
		return e.dealCallback(ctx, st, ev, parts[1:])

	case "count":
		if st.Search != nil && len(parts) == 2 && parts[1] == "retry" {
			return e.askHotelCount(ctx, ev.ChatID, st)
		}

	case "photo":
		if st.Search == nil || len(parts) != 2 {
			return nil
		}
		switch parts[1] {
		case "yes", "retry":
			return e.askPhotoCount(ctx, ev.ChatID, st)
		case "no":
			st.Search.PhotoCount = 0
			return e.runSearch(ctx, ev.ChatID, st)
		}

	case "results":
		if st.Search == nil || len(parts) != 2 || parts[1] != "retry" {
			return nil
		}
		return e.runSearch(ctx, ev.ChatID, st)

	case "cancel":
		e.closeMenu(ctx, ev.ChatID, st)
		e.abandonSearch(st, ev.ChatID)
		return e.msg.Send(ctx, ev.ChatID, "Okay, cancelled.")

	case "history":
		if len(parts) == 2 {
			return e.renderHistory(ctx, ev.ChatID, st, parts[1] == "photos")
		}
	}

	e.log.Debug("unhandled callback", zap.Int64("chat", ev.ChatID), zap.String("data", ev.Data))
	return nil
}

func (e *Engine) roomCallback(ctx context.Context, st *session.State, ev Event, parts []string) error {
	switch {
	case len(parts) == 1 && parts[0] == "add":
		if err := st.Booking.AddRoom(); err != nil {
			if err := e.msg.Send(ctx, ev.ChatID, validationMessage(err)); err != nil {
				return err
			}
		}
		return e.renderCriteria(ctx, ev.ChatID, st)

	case len(parts) == 1 && parts[0] == "back":
		return e.renderCriteria(ctx, ev.ChatID, st)

	case len(parts) == 2 && parts[0] == "del":
		if i, ok := index(parts, 1); ok {
			if err := st.Booking.RemoveRoom(i); err != nil {
				if err := e.msg.Send(ctx, ev.ChatID, validationMessage(err)); err != nil {
					return err
				}
			}
		}
		return e.renderCriteria(ctx, ev.ChatID, st)

	default:
		if i, ok := index(parts, 0); ok {
			return e.renderRoom(ctx, ev.ChatID, st, i)
		}
	}
	return nil
}

func (e *Engine) childCallback(ctx context.Context, st *session.State, ev Event, parts []string) error {
	switch {
	case len(parts) == 2 && parts[0] == "add":
		i, ok := index(parts, 1)
		if !ok {
			return nil
		}
		if err := st.Booking.AddChild(i); err != nil {
			if err := e.msg.Send(ctx, ev.ChatID, validationMessage(err)); err != nil {
				return err
			}
			return e.renderRoom(ctx, ev.ChatID, st, i)
		}
		return e.askChildAge(ctx, ev.ChatID, st, i, len(st.Booking.Rooms[i].ChildAges)-1)

	case len(parts) == 3 && parts[0] == "del":
		i, iok := index(parts, 1)
		j, jok := index(parts, 2)
		if iok && jok {
			if err := st.Booking.RemoveChild(i, j); err != nil {
				if err := e.msg.Send(ctx, ev.ChatID, validationMessage(err)); err != nil {
					return err
				}
			}
			return e.renderRoom(ctx, ev.ChatID, st, i)
		}

	case len(parts) == 2:
		i, iok := index(parts, 0)
		j, jok := index(parts, 1)
		if iok && jok {
			return e.askChildAge(ctx, ev.ChatID, st, i, j)
		}
	}
	return nil
}

func (e *Engine) dealCallback(ctx context.Context, st *session.State, ev Event, parts []string) error {
	if st.Search == nil {
		return nil
	}
	switch {
	case len(parts) == 2 && (parts[0] == "price" || parts[0] == "dist"):
		return e.askBound(ctx, ev.ChatID, st, parts[0] == "dist", parts[1] == "max")

	case len(parts) == 1 && parts[0] == "sort":
		st.Filters.Sort = st.Filters.Sort.Next()
		return e.renderDeal(ctx, ev.ChatID, st)

	case len(parts) == 1 && parts[0] == "done":
		return e.askHotelCount(ctx, ev.ChatID, st)
	}
	return nil
}

// index parses parts[i] as a non-negative integer.
func index(parts []string, i int) (int, bool) {
	if i >= len(parts) {
		return 0, false
	}
	n, err := strconv.Atoi(parts[i])
	if err != nil || n < 0 {
		return 0, false
	}
	return n, true
}

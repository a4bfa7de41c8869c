package engine

import (
	"context"
	"fmt"
	"strconv"
	"strings"
	"time"

	"github.com/stayscout/stayscout/pkg/session"
)

// renderCriteria shows the stay summary menu opened by /reg: the two
// date buttons, one button per room (two per row), and the add, reset
// and done actions. The add button disappears once the room or guest
// cap is reached.
func (e *Engine) renderCriteria(ctx context.Context, chatID int64, st *session.State) error {
	b := &st.Booking

	var sb strings.Builder
	sb.WriteString("Your stay:\n")
	fmt.Fprintf(&sb, "Check-in: %s\n", formatDate(b.CheckIn))
	fmt.Fprintf(&sb, "Check-out: %s\n", formatDate(b.CheckOut))
	fmt.Fprintf(&sb, "Rooms: %d, guests: %d", len(b.Rooms), b.Occupants())
	if b.Occupants() >= session.MaxOccupants {
		fmt.Fprintf(&sb, "\nGuest limit of %d reached.", session.MaxOccupants)
	}

	kb := Keyboard{
		{{Text: "Check-in", Data: "dates:in"}, {Text: "Check-out", Data: "dates:out"}},
	}
	var row []Button
	for i, r := range b.Rooms {
		row = append(row, Button{Text: roomLabel(i, r), Data: fmt.Sprintf("room:%d", i)})
		if len(row) == 2 {
			kb = append(kb, row)
			row = nil
		}
	}
	if len(row) > 0 {
		kb = append(kb, row)
	}
	if len(b.Rooms) < session.MaxRooms && b.Occupants() < session.MaxOccupants {
		kb = append(kb, []Button{{Text: "Add room", Data: "room:add"}})
	}
	kb = append(kb, []Button{{Text: "Start over", Data: "criteria:reset"}, {Text: "Done", Data: "criteria:done"}})

	return e.showMenu(ctx, chatID, st, sb.String(), kb)
}

func roomLabel(i int, r session.Room) string {
	label := fmt.Sprintf("Room %d: %d adults", i+1, r.Adults)
	if n := len(r.ChildAges); n > 0 {
		label += fmt.Sprintf(", %d children", n)
	}
	return label
}

// renderRoom shows the occupancy editor for one room.
func (e *Engine) renderRoom(ctx context.Context, chatID int64, st *session.State, i int) error {
	if i < 0 || i >= len(st.Booking.Rooms) {
		return e.renderCriteria(ctx, chatID, st)
	}
	r := st.Booking.Rooms[i]

	kb := Keyboard{
		{{Text: fmt.Sprintf("Adults: %d", r.Adults), Data: fmt.Sprintf("adults:%d", i)}},
	}
	for j, age := range r.ChildAges {
		kb = append(kb, []Button{
			{Text: fmt.Sprintf("Child %d: age %d", j+1, age), Data: fmt.Sprintf("child:%d:%d", i, j)},
			{Text: "Remove", Data: fmt.Sprintf("child:del:%d:%d", i, j)},
		})
	}
	if len(r.ChildAges) < session.MaxChildrenPerRoom && st.Booking.Occupants() < session.MaxOccupants {
		kb = append(kb, []Button{{Text: "Add child", Data: fmt.Sprintf("child:add:%d", i)}})
	}
	if len(st.Booking.Rooms) > 1 {
		kb = append(kb, []Button{{Text: "Remove room", Data: fmt.Sprintf("room:del:%d", i)}})
	}
	kb = append(kb, []Button{{Text: "Back", Data: "room:back"}})

	return e.showMenu(ctx, chatID, st, fmt.Sprintf("Room %d", i+1), kb)
}

// askDate prompts for one stay date and registers the parsing step.
// checkIn selects which of the two dates is being set.
func (e *Engine) askDate(ctx context.Context, chatID int64, st *session.State, checkIn bool) error {
	which := "check-out"
	if checkIn {
		which = "check-in"
	}
	e.closeMenu(ctx, chatID, st)
	if err := e.msg.Send(ctx, chatID, fmt.Sprintf("Enter the %s date as dd.mm.yyyy.", which)); err != nil {
		return err
	}

	var step session.Continuation
	step = func(ctx context.Context, text string) error {
		d, err := time.ParseInLocation(session.DateLayout, strings.TrimSpace(text), time.Local)
		if err != nil {
			st.RegisterStep(step)
			return e.msg.Send(ctx, chatID, "I couldn't read that date. Use dd.mm.yyyy, for example 24.12.2026.")
		}
		today := e.now()
		if checkIn {
			err = st.Booking.SetCheckIn(d, today)
		} else {
			err = st.Booking.SetCheckOut(d, today)
		}
		if err != nil {
			st.RegisterStep(step)
			return e.msg.Send(ctx, chatID, validationMessage(err))
		}
		return e.renderCriteria(ctx, chatID, st)
	}
	st.RegisterStep(step)
	return nil
}

// askAdults prompts for the adult count of room i.
func (e *Engine) askAdults(ctx context.Context, chatID int64, st *session.State, i int) error {
	e.closeMenu(ctx, chatID, st)
	if err := e.msg.Send(ctx, chatID, fmt.Sprintf("How many adults stay in room %d?", i+1)); err != nil {
		return err
	}

	var step session.Continuation
	step = func(ctx context.Context, text string) error {
		n, err := strconv.Atoi(strings.TrimSpace(text))
		if err != nil {
			st.RegisterStep(step)
			return e.msg.Send(ctx, chatID, "Please send a number.")
		}
		if err := st.Booking.SetAdults(i, n); err != nil {
			st.RegisterStep(step)
			return e.msg.Send(ctx, chatID, validationMessage(err))
		}
		return e.renderRoom(ctx, chatID, st, i)
	}
	st.RegisterStep(step)
	return nil
}

// askChildAge prompts for the age of child j in room i. The prompt
// carries a button to drop the child instead of answering; pressing it
// supersedes the pending step like any other button press.
func (e *Engine) askChildAge(ctx context.Context, chatID int64, st *session.State, i, j int) error {
	prompt := fmt.Sprintf("How old is child %d in room %d? (0-%d)", j+1, i+1, session.MaxChildAge)
	kb := Keyboard{{{Text: "Remove this child", Data: fmt.Sprintf("child:del:%d:%d", i, j)}}}
	if err := e.showMenu(ctx, chatID, st, prompt, kb); err != nil {
		return err
	}

	var step session.Continuation
	step = func(ctx context.Context, text string) error {
		age, err := strconv.Atoi(strings.TrimSpace(text))
		if err != nil {
			st.RegisterStep(step)
			return e.msg.Send(ctx, chatID, "Please send a number.")
		}
		if err := st.Booking.SetChildAge(i, j, age); err != nil {
			st.RegisterStep(step)
			return e.msg.Send(ctx, chatID, validationMessage(err))
		}
		return e.renderRoom(ctx, chatID, st, i)
	}
	st.RegisterStep(step)
	return nil
}

func formatDate(t *time.Time) string {
	if t == nil {
		return "not set"
	}
	return t.Format(session.DateLayout)
}

package engine

import (
	"context"
	"fmt"
	"strconv"
	"strings"

	"go.uber.org/zap"

	"github.com/stayscout/stayscout/internal/search"
	"github.com/stayscout/stayscout/pkg/session"
)

// beginSearch starts a search attempt for the given mode. The stay
// criteria must be complete first; search state is created only after
// that gate so an aborted prompt leaves nothing behind.
func (e *Engine) beginSearch(ctx context.Context, st *session.State, chatID int64, mode session.Mode) error {
	if !st.Booking.DatesSet() {
		return e.msg.Send(ctx, chatID, "Set your stay dates and rooms first with /reg, then run the search again.")
	}
	st.Search = &session.SearchSettings{Mode: mode}
	if err := e.msg.Send(ctx, chatID, "Which city are you going to?"); err != nil {
		return err
	}
	st.RegisterStep(e.cityStep(chatID, st))
	return nil
}

// cityStep resolves the typed city name. No match or a lookup failure
// re-asks; several matches become a disambiguation menu.
func (e *Engine) cityStep(chatID int64, st *session.State) session.Continuation {
	var step session.Continuation
	step = func(ctx context.Context, text string) error {
		if st.Search == nil {
			return nil
		}
		cities, err := e.searcher.FindCities(ctx, strings.TrimSpace(text))
		if err != nil {
			e.log.Warn("city lookup failed", zap.Int64("chat", chatID), zap.Error(err))
			st.RegisterStep(step)
			return e.msg.Send(ctx, chatID, "I couldn't reach the hotel service just now. Send the city name again.")
		}
		if len(cities) == 0 {
			st.RegisterStep(step)
			return e.msg.Send(ctx, chatID, "I couldn't find that city. Try a different spelling.")
		}
		if len(cities) == 1 {
			return e.selectCity(ctx, chatID, st, cities[0].ID, cities[0].DisplayName)
		}

		st.Search.Choices = st.Search.Choices[:0]
		var kb Keyboard
		for i, c := range cities {
			st.Search.Choices = append(st.Search.Choices, session.CityChoice{ID: c.ID, Name: c.DisplayName})
			kb = append(kb, []Button{{Text: c.DisplayName, Data: fmt.Sprintf("city:%d", i)}})
		}
		return e.showMenu(ctx, chatID, st, "Which of these did you mean?", kb)
	}
	return step
}

// selectCity fixes the destination and opens a pending history entry
// for the attempt.
func (e *Engine) selectCity(ctx context.Context, chatID int64, st *session.State, id, name string) error {
	s := st.Search
	s.DestinationID = id
	s.City = name
	s.Choices = nil
	s.HistoryID = e.history.Append(chatID, string(s.Mode), name, e.now())

	if s.Mode == session.ModeBestDeal {
		return e.renderDeal(ctx, chatID, st)
	}
	return e.askHotelCount(ctx, chatID, st)
}

// renderDeal shows the best-deal filter menu.
func (e *Engine) renderDeal(ctx context.Context, chatID int64, st *session.State) error {
	f := st.Filters

	var sb strings.Builder
	sb.WriteString("Best deal filters:\n")
	fmt.Fprintf(&sb, "Price per night: %s\n", formatBand(f.Price, ""))
	fmt.Fprintf(&sb, "Distance from centre: %s\n", formatBand(f.Distance, " km"))
	sb.WriteString("Sorted by:")
	for _, p := range []session.SortPolicy{session.SortPriceAndDistance, session.SortPrice, session.SortDistance} {
		mark := " "
		if p == f.Sort {
			mark = "✓"
		}
		fmt.Fprintf(&sb, "\n%s %s", mark, p)
	}

	kb := Keyboard{
		{{Text: "Min price", Data: "deal:price:min"}, {Text: "Max price", Data: "deal:price:max"}},
		{{Text: "Min distance", Data: "deal:dist:min"}, {Text: "Max distance", Data: "deal:dist:max"}},
		{{Text: fmt.Sprintf("Sorting: %s", f.Sort), Data: "deal:sort"}},
		{{Text: "Search", Data: "deal:done"}},
	}
	return e.showMenu(ctx, chatID, st, sb.String(), kb)
}

// promptRetry reports a failed answer on a search prompt and offers to
// repeat it or abandon the attempt. The step stays registered, so
// typing a corrected answer works too.
func (e *Engine) promptRetry(ctx context.Context, chatID int64, st *session.State, text, retryData string) error {
	kb := Keyboard{{
		{Text: "Try again", Data: retryData},
		{Text: "Cancel", Data: "cancel"},
	}}
	return e.showMenu(ctx, chatID, st, text, kb)
}

// askBound prompts for one best-deal bound. distance and max select
// which bound of which band the answer lands in.
func (e *Engine) askBound(ctx context.Context, chatID int64, st *session.State, distance, max bool) error {
	what := "price"
	unit := ""
	retry := "deal:price:"
	if distance {
		what = "distance from the centre"
		unit = " in kilometres"
		retry = "deal:dist:"
	}
	side := "lowest"
	if max {
		side = "highest"
		retry += "max"
	} else {
		retry += "min"
	}
	e.closeMenu(ctx, chatID, st)
	if err := e.msg.Send(ctx, chatID, fmt.Sprintf("Send the %s %s%s.", side, what, unit)); err != nil {
		return err
	}

	var step session.Continuation
	step = func(ctx context.Context, text string) error {
		v, err := strconv.ParseFloat(strings.TrimSpace(text), 64)
		if err != nil {
			st.RegisterStep(step)
			return e.promptRetry(ctx, chatID, st, "Please send a number.", retry)
		}
		band := &st.Filters.Price
		if distance {
			band = &st.Filters.Distance
		}
		if max {
			err = band.SetMax(v)
		} else {
			err = band.SetMin(v)
		}
		if err != nil {
			st.RegisterStep(step)
			return e.promptRetry(ctx, chatID, st, validationMessage(err), retry)
		}
		return e.renderDeal(ctx, chatID, st)
	}
	st.RegisterStep(step)
	return nil
}

// askHotelCount prompts for how many results to show.
func (e *Engine) askHotelCount(ctx context.Context, chatID int64, st *session.State) error {
	e.closeMenu(ctx, chatID, st)
	prompt := fmt.Sprintf("How many hotels should I show? (1-%d)", e.maxHotels)
	if err := e.msg.Send(ctx, chatID, prompt); err != nil {
		return err
	}

	var step session.Continuation
	step = func(ctx context.Context, text string) error {
		if st.Search == nil {
			return nil
		}
		n, err := strconv.Atoi(strings.TrimSpace(text))
		if err != nil || n < 1 || n > e.maxHotels {
			st.RegisterStep(step)
			return e.promptRetry(ctx, chatID, st,
				fmt.Sprintf("Send a number between 1 and %d.", e.maxHotels), "count:retry")
		}
		st.Search.HotelCount = n
		return e.askPhotos(ctx, chatID, st)
	}
	st.RegisterStep(step)
	return nil
}

// askPhotos asks whether to include photos in the results.
func (e *Engine) askPhotos(ctx context.Context, chatID int64, st *session.State) error {
	kb := Keyboard{{
		{Text: "Yes", Data: "photo:yes"},
		{Text: "No", Data: "photo:no"},
	}}
	return e.showMenu(ctx, chatID, st, "Should I include photos?", kb)
}

// askPhotoCount prompts for how many photos per hotel.
func (e *Engine) askPhotoCount(ctx context.Context, chatID int64, st *session.State) error {
	e.closeMenu(ctx, chatID, st)
	prompt := fmt.Sprintf("How many photos per hotel? (1-%d)", e.maxPhotos)
	if err := e.msg.Send(ctx, chatID, prompt); err != nil {
		return err
	}

	var step session.Continuation
	step = func(ctx context.Context, text string) error {
		if st.Search == nil {
			return nil
		}
		n, err := strconv.Atoi(strings.TrimSpace(text))
		if err != nil || n < 1 || n > e.maxPhotos {
			st.RegisterStep(step)
			return e.promptRetry(ctx, chatID, st,
				fmt.Sprintf("Send a number between 1 and %d.", e.maxPhotos), "photo:retry")
		}
		st.Search.PhotoCount = n
		return e.runSearch(ctx, chatID, st)
	}
	st.RegisterStep(step)
	return nil
}

// runSearch executes the fully collected attempt. On failure the
// attempt stays alive behind a retry menu; on success results land in
// history and the attempt is closed.
func (e *Engine) runSearch(ctx context.Context, chatID int64, st *session.State) error {
	s := st.Search
	e.closeMenu(ctx, chatID, st)

	q := search.Query{
		Mode:          s.Mode,
		DestinationID: s.DestinationID,
		Booking:       st.Booking.Clone(),
		Filters:       st.Filters,
		HotelCount:    s.HotelCount,
		PhotoCount:    s.PhotoCount,
	}
	if err := e.msg.Send(ctx, chatID, fmt.Sprintf("Looking for hotels in %s...", s.City)); err != nil {
		return err
	}

	results, err := e.searcher.Run(ctx, q)
	if err != nil {
		e.log.Error("search failed",
			zap.Int64("chat", chatID),
			zap.String("mode", string(s.Mode)),
			zap.Error(err))
		kb := Keyboard{{
			{Text: "Try again", Data: "results:retry"},
			{Text: "Cancel", Data: "cancel"},
		}}
		return e.showMenu(ctx, chatID, st, "The search failed on my side. Try again?", kb)
	}

	if len(results) == 0 {
		e.history.DiscardPending(chatID)
		st.Search = nil
		return e.msg.Send(ctx, chatID, "Nothing matched your criteria. Loosen them and try again.")
	}

	e.history.AttachResults(chatID, s.HistoryID, results)
	st.Search = nil
	return e.renderResults(ctx, chatID, results, s.PhotoCount > 0)
}

// renderResults sends one message per hotel, with its photo album when
// photos were requested.
func (e *Engine) renderResults(ctx context.Context, chatID int64, results []search.Hotel, withPhotos bool) error {
	for _, h := range results {
		var sb strings.Builder
		sb.WriteString(h.Name)
		if h.Address != "" {
			fmt.Fprintf(&sb, "\nAddress: %s", h.Address)
		}
		fmt.Fprintf(&sb, "\nDistance from centre: %.2f km", h.DistanceKm)
		fmt.Fprintf(&sb, "\nPrice: %s", h.Price)

		if err := e.msg.Send(ctx, chatID, sb.String()); err != nil {
			return err
		}
		if withPhotos && len(h.PhotoURLs) > 0 {
			if err := e.msg.SendAlbum(ctx, chatID, h.PhotoURLs); err != nil {
				return err
			}
		}
	}
	return nil
}

// beginHistory opens the past-searches flow.
func (e *Engine) beginHistory(ctx context.Context, st *session.State, chatID int64) error {
	if len(e.history.List(chatID)) == 0 {
		return e.msg.Send(ctx, chatID, "You haven't searched for anything yet.")
	}
	kb := Keyboard{{
		{Text: "With photos", Data: "history:photos"},
		{Text: "Without photos", Data: "history:plain"},
	}}
	return e.showMenu(ctx, chatID, st, "Show your past searches with photos?", kb)
}

// renderHistory replays every completed search for the chat.
func (e *Engine) renderHistory(ctx context.Context, chatID int64, st *session.State, withPhotos bool) error {
	e.closeMenu(ctx, chatID, st)
	for _, entry := range e.history.List(chatID) {
		header := fmt.Sprintf("/%s in %s on %s",
			entry.Mode, entry.City, entry.When.Format("02.01.2006 15:04"))
		if err := e.msg.Send(ctx, chatID, header); err != nil {
			return err
		}
		if err := e.renderResults(ctx, chatID, entry.Results, withPhotos); err != nil {
			return err
		}
	}
	return nil
}

func formatBand(b session.Band, unit string) string {
	switch {
	case b.Min == nil && b.Max == nil:
		return "any"
	case b.Min == nil:
		return fmt.Sprintf("up to %g%s", *b.Max, unit)
	case b.Max == nil:
		return fmt.Sprintf("from %g%s", *b.Min, unit)
	default:
		return fmt.Sprintf("%g to %g%s", *b.Min, *b.Max, unit)
	}
}

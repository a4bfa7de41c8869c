package search

import (
	"context"

	"golang.org/x/sync/errgroup"

	"github.com/stayscout/stayscout/internal/hotels"
)

// pagedSource walks one server-side ordering of a property search,
// applying a client-side filter to each fetched page. A source is
// exhausted once the service returns a short page; offset advances by
// the full page size regardless of how many items the filter kept.
type pagedSource struct {
	fetch    func(ctx context.Context, offset int) ([]hotels.Property, error)
	keep     func(hotels.Property) bool
	pageSize int

	buf       []hotels.Property
	offset    int
	exhausted bool
}

func (s *pagedSource) refill(ctx context.Context) error {
	if s.exhausted {
		return nil
	}
	page, err := s.fetch(ctx, s.offset)
	if err != nil {
		return err
	}
	s.offset += s.pageSize
	if len(page) < s.pageSize {
		s.exhausted = true
	}
	for _, p := range page {
		if s.keep == nil || s.keep(p) {
			s.buf = append(s.buf, p)
		}
	}
	return nil
}

// drained reports that the source can yield nothing more.
func (s *pagedSource) drained() bool {
	return len(s.buf) == 0 && s.exhausted
}

// collectOrdered takes the first n surviving items from a single
// ordering, fetching pages on demand.
func collectOrdered(ctx context.Context, src *pagedSource, n int) ([]hotels.Property, error) {
	var out []hotels.Property
	for len(out) < n {
		if len(src.buf) == 0 {
			if src.exhausted {
				break
			}
			if err := src.refill(ctx); err != nil {
				return nil, err
			}
			continue
		}
		out = append(out, src.buf[0])
		src.buf = src.buf[1:]
	}
	return out, nil
}

// Item marks used by the intersection merge.
const (
	markSeen     = 1
	markAccepted = 2
)

// collectIntersection merges two orderings of the same result set into
// up to n items ranked by combined position. The streams alternate
// turns, price first. On its turn a stream consumes buffered items: an
// item no stream has produced yet is only marked, an item the other
// stream already produced is accepted and ends the turn, an item
// already accepted is skipped. A stream whose buffer runs out yields
// the turn and refills on its next one, so pages are fetched only when
// a stream actually needs more input. When one stream drains, the
// survivor keeps taking turns until n items are accepted or it drains
// too.
func collectIntersection(ctx context.Context, byPrice, byDistance *pagedSource, n int) ([]hotels.Property, error) {
	g, gctx := errgroup.WithContext(ctx)
	g.Go(func() error { return byPrice.refill(gctx) })
	g.Go(func() error { return byDistance.refill(gctx) })
	if err := g.Wait(); err != nil {
		return nil, err
	}

	streams := [2]*pagedSource{byPrice, byDistance}
	marks := make(map[string]int)
	var out []hotels.Property

	turn := 0
	for len(out) < n {
		cur := streams[turn]
		if cur.drained() {
			if streams[1-turn].drained() {
				break
			}
			turn = 1 - turn
			continue
		}
		if err := cur.takeTurn(ctx, marks, &out); err != nil {
			return nil, err
		}
		turn = 1 - turn
	}
	return out, nil
}

// takeTurn consumes the source's buffer until it accepts one item or
// the buffer empties. An empty buffer is refilled once before the pop
// loop starts.
func (s *pagedSource) takeTurn(ctx context.Context, marks map[string]int, out *[]hotels.Property) error {
	if len(s.buf) == 0 {
		if err := s.refill(ctx); err != nil {
			return err
		}
	}
	for len(s.buf) > 0 {
		p := s.buf[0]
		s.buf = s.buf[1:]
		switch marks[p.ID] {
		case 0:
			marks[p.ID] = markSeen
		case markSeen:
			marks[p.ID] = markAccepted
			*out = append(*out, p)
			return nil
		default:
			// accepted via the other stream already
		}
	}
	return nil
}

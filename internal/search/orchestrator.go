// Package search turns a chat's collected criteria into a ranked hotel
// list. It owns paging against the hotel-search service, the best-deal
// two-stream aggregation and the detail enrichment of final results.
package search

import (
	"context"
	"fmt"
	"math"
	"math/rand"
	"sort"
	"time"

	"go.uber.org/zap"
	"golang.org/x/sync/errgroup"

	"github.com/stayscout/stayscout/internal/hotels"
	"github.com/stayscout/stayscout/pkg/observability"
	"github.com/stayscout/stayscout/pkg/session"
)

// The service reports distances in miles; guests see kilometres.
const milesPerKm = 0.621371

// Price bounds sent when the guest has not narrowed the band.
const (
	defaultPriceMin = 1
	defaultPriceMax = 999999
)

// Hotel is one enriched result shown to the guest.
type Hotel struct {
	ID         string
	Name       string
	Price      string
	DistanceKm float64
	Address    string
	PhotoURLs  []string
}

// Query is everything a search run needs, captured from session state at
// dispatch time so the run never touches live state.
type Query struct {
	Mode          session.Mode
	DestinationID string
	Booking       session.Booking
	Filters       session.Filters
	HotelCount    int
	PhotoCount    int
}

// Orchestrator runs searches against the hotel-search service.
type Orchestrator struct {
	api      hotels.API
	log      *zap.Logger
	pageSize int
	shuffle  func(n int, swap func(i, j int))
}

// Option configures an Orchestrator.
type Option func(*Orchestrator)

// WithPageSize overrides the page size used when walking result pages.
func WithPageSize(n int) Option {
	return func(o *Orchestrator) { o.pageSize = n }
}

// WithShuffle overrides the photo sampling shuffle, for tests.
func WithShuffle(fn func(n int, swap func(i, j int))) Option {
	return func(o *Orchestrator) { o.shuffle = fn }
}

// New creates an orchestrator on top of the given API client.
func New(api hotels.API, log *zap.Logger, opts ...Option) *Orchestrator {
	if log == nil {
		log = zap.NewNop()
	}
	o := &Orchestrator{
		api:      api,
		log:      log,
		pageSize: 200,
		shuffle:  rand.Shuffle,
	}
	for _, opt := range opts {
		opt(o)
	}
	return o
}

// FindCities resolves a free-text destination to candidate cities.
func (o *Orchestrator) FindCities(ctx context.Context, query string) ([]hotels.Destination, error) {
	all, err := o.api.SearchDestinations(ctx, query)
	if err != nil {
		return nil, fmt.Errorf("destination lookup: %w", err)
	}

	var cities []hotels.Destination
	for _, d := range all {
		if d.Kind == hotels.KindCity {
			cities = append(cities, d)
		}
	}
	return cities, nil
}

// Run executes the query and returns up to HotelCount enriched results.
func (o *Orchestrator) Run(ctx context.Context, q Query) ([]Hotel, error) {
	start := time.Now()

	props, err := o.collect(ctx, q)
	if err != nil {
		observability.RecordSearch(string(q.Mode), "error", time.Since(start))
		return nil, err
	}

	results, err := o.enrich(ctx, props, q.PhotoCount)
	if err != nil {
		observability.RecordSearch(string(q.Mode), "error", time.Since(start))
		return nil, err
	}

	observability.RecordSearch(string(q.Mode), "ok", time.Since(start))
	o.log.Info("search completed",
		zap.String("mode", string(q.Mode)),
		zap.String("destination", q.DestinationID),
		zap.Int("results", len(results)),
		zap.Duration("took", time.Since(start)))
	return results, nil
}

func (o *Orchestrator) collect(ctx context.Context, q Query) ([]hotels.Property, error) {
	switch q.Mode {
	case session.ModeLowPrice:
		return o.collectCheapest(ctx, q)
	case session.ModeHighPrice:
		return o.collectPriciest(ctx, q)
	case session.ModeBestDeal:
		return o.collectBestDeal(ctx, q)
	default:
		return nil, fmt.Errorf("unknown search mode %q", q.Mode)
	}
}

// collectCheapest asks for the first page in ascending price order; the
// service's own ordering is the result.
func (o *Orchestrator) collectCheapest(ctx context.Context, q Query) ([]hotels.Property, error) {
	req := o.requestFor(q, hotels.SortPriceAsc, 0, q.HotelCount)
	props, err := o.api.SearchProperties(ctx, req)
	if err != nil {
		return nil, err
	}
	if len(props) > q.HotelCount {
		props = props[:q.HotelCount]
	}
	return props, nil
}

// collectPriciest asks for one full page in ascending price order and
// keeps its tail, most expensive first. The stable sort guards against
// pages the service did not order strictly; ties keep their ascending
// position before the reversal.
func (o *Orchestrator) collectPriciest(ctx context.Context, q Query) ([]hotels.Property, error) {
	req := o.requestFor(q, hotels.SortPriceAsc, 0, o.pageSize)
	all, err := o.api.SearchProperties(ctx, req)
	if err != nil {
		return nil, err
	}

	sort.SliceStable(all, func(i, j int) bool {
		return all[i].PriceAmount < all[j].PriceAmount
	})
	if len(all) > q.HotelCount {
		all = all[len(all)-q.HotelCount:]
	}
	for i, j := 0, len(all)-1; i < j; i, j = i+1, j-1 {
		all[i], all[j] = all[j], all[i]
	}
	return all, nil
}

// collectBestDeal reads the service in the orderings named by the sort
// policy and applies the guest's distance band, which the service cannot
// filter on.
func (o *Orchestrator) collectBestDeal(ctx context.Context, q Query) ([]hotels.Property, error) {
	keep := func(p hotels.Property) bool {
		return q.Filters.Distance.Contains(p.DistanceMiles / milesPerKm)
	}
	source := func(order hotels.SortOrder) *pagedSource {
		return &pagedSource{
			pageSize: o.pageSize,
			keep:     keep,
			fetch: func(ctx context.Context, offset int) ([]hotels.Property, error) {
				return o.api.SearchProperties(ctx, o.requestFor(q, order, offset, o.pageSize))
			},
		}
	}

	switch q.Filters.Sort {
	case session.SortPrice:
		return collectOrdered(ctx, source(hotels.SortPriceAsc), q.HotelCount)
	case session.SortDistance:
		return collectOrdered(ctx, source(hotels.SortDistanceAsc), q.HotelCount)
	default:
		return collectIntersection(ctx,
			source(hotels.SortPriceAsc), source(hotels.SortDistanceAsc), q.HotelCount)
	}
}

func (o *Orchestrator) requestFor(q Query, order hotels.SortOrder, offset, pageSize int) hotels.PropertyRequest {
	band := hotels.PriceBand{Min: defaultPriceMin, Max: defaultPriceMax}
	if q.Filters.Price.Min != nil {
		band.Min = int(*q.Filters.Price.Min)
	}
	if q.Filters.Price.Max != nil {
		band.Max = int(*q.Filters.Price.Max)
	}

	rooms := make([]hotels.RoomRequest, len(q.Booking.Rooms))
	for i, r := range q.Booking.Rooms {
		rooms[i] = hotels.RoomRequest{Adults: r.Adults, ChildAges: r.ChildAges}
	}

	return hotels.PropertyRequest{
		DestinationID: q.DestinationID,
		CheckIn:       wireDate(q.Booking.CheckIn),
		CheckOut:      wireDate(q.Booking.CheckOut),
		Rooms:         rooms,
		StartIndex:    offset,
		PageSize:      pageSize,
		Sort:          order,
		Price:         band,
	}
}

func wireDate(t *time.Time) hotels.Date {
	if t == nil {
		return hotels.Date{}
	}
	return hotels.Date{Day: t.Day(), Month: int(t.Month()), Year: t.Year()}
}

// enrich fetches each property's detail for the address and, when the
// guest asked for photos, samples the gallery without replacement.
func (o *Orchestrator) enrich(ctx context.Context, props []hotels.Property, photoCount int) ([]Hotel, error) {
	results := make([]Hotel, len(props))

	g, gctx := errgroup.WithContext(ctx)
	for i, p := range props {
		i, p := i, p
		g.Go(func() error {
			detail, err := o.api.PropertyDetail(gctx, p.ID)
			if err != nil {
				return fmt.Errorf("detail for %s: %w", p.ID, err)
			}
			results[i] = Hotel{
				ID:         p.ID,
				Name:       p.Name,
				Price:      p.PriceFormatted,
				DistanceKm: roundKm(p.DistanceMiles / milesPerKm),
				Address:    detail.Address,
			}
			if photoCount > 0 {
				results[i].PhotoURLs = o.samplePhotos(detail.GalleryURLs, photoCount)
			}
			return nil
		})
	}
	if err := g.Wait(); err != nil {
		return nil, err
	}
	return results, nil
}

func (o *Orchestrator) samplePhotos(urls []string, n int) []string {
	if len(urls) == 0 {
		return nil
	}
	pool := append([]string(nil), urls...)
	o.shuffle(len(pool), func(i, j int) { pool[i], pool[j] = pool[j], pool[i] })
	if len(pool) > n {
		pool = pool[:n]
	}
	return pool
}

func roundKm(km float64) float64 {
	return math.Round(km*100) / 100
}

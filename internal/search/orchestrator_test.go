package search

import (
	"context"
	"errors"
	"fmt"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/stayscout/stayscout/internal/hotels"
	"github.com/stayscout/stayscout/pkg/session"
)

// fakeAPI serves property pages by slicing one fixed list per ordering,
// so a request past the end yields a short or empty page exactly like
// the real service.
type fakeAPI struct {
	destinations []hotels.Destination
	lists        map[hotels.SortOrder][]hotels.Property
	details      map[string]hotels.Detail

	requests  []hotels.PropertyRequest
	searchErr error
	detailErr error
}

func (f *fakeAPI) SearchDestinations(ctx context.Context, query string) ([]hotels.Destination, error) {
	return f.destinations, f.searchErr
}

func (f *fakeAPI) SearchProperties(ctx context.Context, req hotels.PropertyRequest) ([]hotels.Property, error) {
	f.requests = append(f.requests, req)
	if f.searchErr != nil {
		return nil, f.searchErr
	}
	list := f.lists[req.Sort]
	if req.StartIndex >= len(list) {
		return nil, nil
	}
	end := req.StartIndex + req.PageSize
	if end > len(list) {
		end = len(list)
	}
	return list[req.StartIndex:end], nil
}

func (f *fakeAPI) PropertyDetail(ctx context.Context, id string) (hotels.Detail, error) {
	if f.detailErr != nil {
		return hotels.Detail{}, f.detailErr
	}
	if d, ok := f.details[id]; ok {
		return d, nil
	}
	return hotels.Detail{Address: "addr-" + id}, nil
}

func prop(id string, price, miles float64) hotels.Property {
	return hotels.Property{
		ID:             id,
		Name:           "Hotel " + id,
		PriceFormatted: fmt.Sprintf("$%.0f", price),
		PriceAmount:    price,
		DistanceMiles:  miles,
	}
}

func baseQuery(mode session.Mode, n int) Query {
	checkIn := time.Date(2026, 12, 24, 0, 0, 0, 0, time.UTC)
	checkOut := time.Date(2026, 12, 28, 0, 0, 0, 0, time.UTC)
	return Query{
		Mode:          mode,
		DestinationID: "100",
		Booking: session.Booking{
			CheckIn:  &checkIn,
			CheckOut: &checkOut,
			Rooms:    []session.Room{{Adults: 2}},
		},
		HotelCount: n,
	}
}

func ids(results []Hotel) []string {
	out := make([]string, len(results))
	for i, h := range results {
		out[i] = h.ID
	}
	return out
}

func TestFindCitiesKeepsOnlyCities(t *testing.T) {
	api := &fakeAPI{destinations: []hotels.Destination{
		{ID: "1", DisplayName: "Paris, France", Kind: "CITY"},
		{ID: "2", DisplayName: "CDG Airport", Kind: "AIRPORT"},
		{ID: "3", DisplayName: "Paris, Texas", Kind: "CITY"},
	}}
	o := New(api, nil)

	got, err := o.FindCities(context.Background(), "paris")
	require.NoError(t, err)

	require.Len(t, got, 2)
	assert.Equal(t, "1", got[0].ID)
	assert.Equal(t, "3", got[1].ID)
}

func TestRunLowPrice(t *testing.T) {
	api := &fakeAPI{
		lists: map[hotels.SortOrder][]hotels.Property{
			hotels.SortPriceAsc: {
				prop("a", 10, 0.621371),
				prop("b", 20, 1.242742),
				prop("c", 30, 3),
			},
		},
	}
	o := New(api, nil)

	got, err := o.Run(context.Background(), baseQuery(session.ModeLowPrice, 2))
	require.NoError(t, err)
	assert.Equal(t, []string{"a", "b"}, ids(got))

	// A single page of exactly the requested size, cheapest first, with
	// the open price band.
	require.Len(t, api.requests, 1)
	req := api.requests[0]
	assert.Equal(t, hotels.SortPriceAsc, req.Sort)
	assert.Equal(t, 0, req.StartIndex)
	assert.Equal(t, 2, req.PageSize)
	assert.Equal(t, hotels.PriceBand{Min: 1, Max: 999999}, req.Price)
	assert.Equal(t, hotels.Date{Day: 24, Month: 12, Year: 2026}, req.CheckIn)

	// Enrichment converts miles to kilometres and adds the address.
	assert.Equal(t, 1.0, got[0].DistanceKm)
	assert.Equal(t, 2.0, got[1].DistanceKm)
	assert.Equal(t, "addr-a", got[0].Address)
	assert.Equal(t, "$10", got[0].Price)
}

func TestRunHighPriceTakesTheTail(t *testing.T) {
	api := &fakeAPI{
		lists: map[hotels.SortOrder][]hotels.Property{
			hotels.SortPriceAsc: {
				prop("a", 10, 1), prop("b", 20, 1),
				prop("c", 30, 1), prop("d", 40, 1),
				prop("e", 50, 1),
			},
		},
	}
	o := New(api, nil, WithPageSize(4))

	got, err := o.Run(context.Background(), baseQuery(session.ModeHighPrice, 2))
	require.NoError(t, err)

	// One full page is fetched; its tail comes back most expensive
	// first.
	assert.Equal(t, []string{"d", "c"}, ids(got))
	require.Len(t, api.requests, 1)
	assert.Equal(t, 0, api.requests[0].StartIndex)
	assert.Equal(t, 4, api.requests[0].PageSize)
}

func TestRunBestDealIntersection(t *testing.T) {
	api := &fakeAPI{
		lists: map[hotels.SortOrder][]hotels.Property{
			hotels.SortPriceAsc:    {prop("a", 10, 3), prop("b", 20, 2), prop("c", 30, 1)},
			hotels.SortDistanceAsc: {prop("c", 30, 1), prop("a", 10, 3), prop("b", 20, 2)},
		},
	}
	o := New(api, nil)

	q := baseQuery(session.ModeBestDeal, 2)
	q.Filters.Sort = session.SortPriceAndDistance

	got, err := o.Run(context.Background(), q)
	require.NoError(t, err)

	// The first accepted hotel is the one both orderings reach
	// soonest, then the runner-up.
	assert.Equal(t, []string{"c", "a"}, ids(got))
}

func TestRunBestDealAcceptsEachHotelOnce(t *testing.T) {
	api := &fakeAPI{
		lists: map[hotels.SortOrder][]hotels.Property{
			hotels.SortPriceAsc:    {prop("a", 10, 2), prop("b", 20, 1)},
			hotels.SortDistanceAsc: {prop("a", 10, 2), prop("b", 20, 1)},
		},
	}
	o := New(api, nil)

	q := baseQuery(session.ModeBestDeal, 5)
	got, err := o.Run(context.Background(), q)
	require.NoError(t, err)
	assert.Equal(t, []string{"a", "b"}, ids(got))
}

func TestRunBestDealDistanceBand(t *testing.T) {
	const milesFor = 0.621371 // miles in one kilometre

	api := &fakeAPI{
		lists: map[hotels.SortOrder][]hotels.Property{
			hotels.SortPriceAsc: {
				prop("near", 10, 2*milesFor),
				prop("far", 20, 6*milesFor),
				prop("edge", 30, 4.9*milesFor),
			},
		},
	}
	o := New(api, nil)

	q := baseQuery(session.ModeBestDeal, 10)
	q.Filters.Sort = session.SortPrice
	require.NoError(t, q.Filters.Distance.SetMax(5))

	got, err := o.Run(context.Background(), q)
	require.NoError(t, err)

	// 6 km is outside the band.
	assert.Equal(t, []string{"near", "edge"}, ids(got))
}

func TestRunBestDealPriceBandOnTheWire(t *testing.T) {
	api := &fakeAPI{
		lists: map[hotels.SortOrder][]hotels.Property{
			hotels.SortDistanceAsc: {prop("a", 60, 1)},
		},
	}
	o := New(api, nil)

	q := baseQuery(session.ModeBestDeal, 1)
	q.Filters.Sort = session.SortDistance
	require.NoError(t, q.Filters.Price.SetMin(50))
	require.NoError(t, q.Filters.Price.SetMax(200))

	_, err := o.Run(context.Background(), q)
	require.NoError(t, err)

	require.NotEmpty(t, api.requests)
	assert.Equal(t, hotels.PriceBand{Min: 50, Max: 200}, api.requests[0].Price)
	assert.Equal(t, hotels.SortDistanceAsc, api.requests[0].Sort)
}

func TestRunPhotoSampling(t *testing.T) {
	api := &fakeAPI{
		lists: map[hotels.SortOrder][]hotels.Property{
			hotels.SortPriceAsc: {prop("a", 10, 1)},
		},
		details: map[string]hotels.Detail{
			"a": {Address: "1 Main St", GalleryURLs: []string{"u1", "u2", "u3", "u4"}},
		},
	}
	// Identity shuffle keeps the sample deterministic.
	o := New(api, nil, WithShuffle(func(n int, swap func(i, j int)) {}))

	q := baseQuery(session.ModeLowPrice, 1)
	q.PhotoCount = 2

	got, err := o.Run(context.Background(), q)
	require.NoError(t, err)
	require.Len(t, got, 1)
	assert.Equal(t, []string{"u1", "u2"}, got[0].PhotoURLs)
}

func TestRunNoPhotosRequested(t *testing.T) {
	api := &fakeAPI{
		lists: map[hotels.SortOrder][]hotels.Property{
			hotels.SortPriceAsc: {prop("a", 10, 1)},
		},
		details: map[string]hotels.Detail{
			"a": {Address: "1 Main St", GalleryURLs: []string{"u1"}},
		},
	}
	o := New(api, nil)

	got, err := o.Run(context.Background(), baseQuery(session.ModeLowPrice, 1))
	require.NoError(t, err)
	require.Len(t, got, 1)
	assert.Empty(t, got[0].PhotoURLs)
	assert.Equal(t, "1 Main St", got[0].Address)
}

func TestRunPropagatesErrors(t *testing.T) {
	boom := errors.New("boom")

	api := &fakeAPI{searchErr: boom}
	o := New(api, nil)
	_, err := o.Run(context.Background(), baseQuery(session.ModeLowPrice, 1))
	assert.ErrorIs(t, err, boom)

	api = &fakeAPI{
		lists: map[hotels.SortOrder][]hotels.Property{
			hotels.SortPriceAsc: {prop("a", 10, 1)},
		},
		detailErr: boom,
	}
	o = New(api, nil)
	_, err = o.Run(context.Background(), baseQuery(session.ModeLowPrice, 1))
	assert.ErrorIs(t, err, boom)
}

func TestRunUnknownMode(t *testing.T) {
	o := New(&fakeAPI{}, nil)
	_, err := o.Run(context.Background(), baseQuery("weird", 1))
	assert.Error(t, err)
}

package search

import (
	"context"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/stayscout/stayscout/internal/hotels"
)

// sliceSource pages over a fixed list, recording the offset of every
// fetch it performs.
func sliceSource(list []hotels.Property, pageSize int, keep func(hotels.Property) bool, offsets *[]int) *pagedSource {
	return &pagedSource{
		pageSize: pageSize,
		keep:     keep,
		fetch: func(ctx context.Context, offset int) ([]hotels.Property, error) {
			*offsets = append(*offsets, offset)
			if offset >= len(list) {
				return nil, nil
			}
			end := offset + pageSize
			if end > len(list) {
				end = len(list)
			}
			return list[offset:end], nil
		},
	}
}

func props(ids ...string) []hotels.Property {
	out := make([]hotels.Property, len(ids))
	for i, id := range ids {
		out[i] = hotels.Property{ID: id}
	}
	return out
}

func TestCollectOrderedFetchesOnlyWhatItNeeds(t *testing.T) {
	var offsets []int
	src := sliceSource(props("a", "b", "c", "d", "e", "f"), 2, nil, &offsets)

	got, err := collectOrdered(context.Background(), src, 3)
	require.NoError(t, err)

	assert.Equal(t, props("a", "b", "c"), got)
	assert.Equal(t, []int{0, 2}, offsets)
}

func TestCollectOrderedSkipsFilteredPages(t *testing.T) {
	var offsets []int
	keep := func(p hotels.Property) bool { return p.ID != "a" && p.ID != "b" }
	src := sliceSource(props("a", "b", "c", "d"), 2, keep, &offsets)

	got, err := collectOrdered(context.Background(), src, 2)
	require.NoError(t, err)

	// The first page is filtered away entirely; the offset still
	// advances by the full page size.
	assert.Equal(t, props("c", "d"), got)
	assert.Equal(t, []int{0, 2}, offsets)
}

func TestCollectOrderedStopsOnShortPage(t *testing.T) {
	var offsets []int
	src := sliceSource(props("a", "b", "c"), 2, nil, &offsets)

	got, err := collectOrdered(context.Background(), src, 10)
	require.NoError(t, err)

	assert.Equal(t, props("a", "b", "c"), got)
	assert.Equal(t, []int{0, 2}, offsets)
}

func TestCollectIntersectionFetchesPagesLazily(t *testing.T) {
	var priceOffsets, distOffsets []int
	price := sliceSource(props("a", "b", "c", "d"), 2, nil, &priceOffsets)
	dist := sliceSource(props("d", "c", "b", "a"), 2, nil, &distOffsets)

	got, err := collectIntersection(context.Background(), price, dist, 2)
	require.NoError(t, err)

	// Neither stream finds a shared item in its first page; each
	// fetches its second page only when its own turn runs dry.
	assert.Equal(t, props("c", "b"), got)
	assert.Equal(t, []int{0, 2}, priceOffsets)
	assert.Equal(t, []int{0, 2}, distOffsets)
}

func TestCollectIntersectionSurvivorDrains(t *testing.T) {
	var priceOffsets, distOffsets []int
	price := sliceSource(props("a"), 2, nil, &priceOffsets)
	dist := sliceSource(props("x", "y", "a"), 10, nil, &distOffsets)

	got, err := collectIntersection(context.Background(), price, dist, 2)
	require.NoError(t, err)

	// Only one shared item exists; the merge returns what it can.
	assert.Equal(t, props("a"), got)
}

func TestCollectIntersectionDisjointStreams(t *testing.T) {
	var po, do []int
	price := sliceSource(props("a", "b"), 10, nil, &po)
	dist := sliceSource(props("x", "y"), 10, nil, &do)

	got, err := collectIntersection(context.Background(), price, dist, 3)
	require.NoError(t, err)
	assert.Empty(t, got)
}

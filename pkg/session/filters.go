package session

import "errors"

// SortPolicy selects how best-deal results are ordered.
type SortPolicy int

const (
	// SortPriceAndDistance interleaves the cheapest and the closest.
	SortPriceAndDistance SortPolicy = iota
	SortPrice
	SortDistance
)

// Next cycles to the following policy, wrapping around.
func (p SortPolicy) Next() SortPolicy {
	return (p + 1) % 3
}

func (p SortPolicy) String() string {
	switch p {
	case SortPrice:
		return "price"
	case SortDistance:
		return "distance"
	default:
		return "price and distance"
	}
}

var (
	ErrNegativeBound = errors.New("bound must not be negative")
	ErrBandOrder     = errors.New("minimum exceeds maximum")
)

// Band is an optional numeric range. A nil bound is open on that side.
type Band struct {
	Min *float64
	Max *float64
}

// SetMin sets the lower bound, validating against the upper one.
func (b *Band) SetMin(v float64) error {
	if v < 0 {
		return ErrNegativeBound
	}
	if b.Max != nil && v > *b.Max {
		return ErrBandOrder
	}
	b.Min = &v
	return nil
}

// SetMax sets the upper bound, validating against the lower one.
func (b *Band) SetMax(v float64) error {
	if v < 0 {
		return ErrNegativeBound
	}
	if b.Min != nil && v < *b.Min {
		return ErrBandOrder
	}
	b.Max = &v
	return nil
}

// Contains reports whether v falls inside the band. Unset bounds admit
// any value on their side.
func (b Band) Contains(v float64) bool {
	if b.Min != nil && v < *b.Min {
		return false
	}
	if b.Max != nil && v > *b.Max {
		return false
	}
	return true
}

// Filters are a chat's best-deal settings. Distance bounds are in
// kilometres from the destination centre.
type Filters struct {
	Price    Band
	Distance Band
	Sort     SortPolicy
}

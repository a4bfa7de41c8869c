package hotels

// KindCity is the destination kind callers keep when disambiguating a
// free-text city query.
const KindCity = "CITY"

// Destination is one candidate returned by a destination search.
type Destination struct {
	ID          string
	DisplayName string
	Kind        string
}

// SortOrder selects the service-side ordering of a property search.
type SortOrder string

const (
	SortPriceAsc    SortOrder = "PRICE_LOW_TO_HIGH"
	SortDistanceAsc SortOrder = "DISTANCE"
	SortClass       SortOrder = "PROPERTY_CLASS"
)

// RoomRequest describes one room's occupancy for a property search.
type RoomRequest struct {
	Adults    int
	ChildAges []int
}

// Date is a calendar date in the service's wire shape.
type Date struct {
	Day   int
	Month int
	Year  int
}

// PriceBand bounds the nightly price of returned properties.
type PriceBand struct {
	Min int
	Max int
}

// PropertyRequest is one page request against the property search.
type PropertyRequest struct {
	DestinationID string
	CheckIn       Date
	CheckOut      Date
	Rooms         []RoomRequest
	StartIndex    int
	PageSize      int
	Sort          SortOrder
	Price         PriceBand
}

// Property is one hotel in a search result page. DistanceMiles is the
// distance from the destination centre in the service's native unit.
type Property struct {
	ID             string
	Name           string
	PriceFormatted string
	PriceAmount    float64
	DistanceMiles  float64
}

// Detail is the per-property lookup result.
type Detail struct {
	Address     string
	GalleryURLs []string
}

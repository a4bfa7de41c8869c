// Package hotels is the HTTP client for the external hotel-search
// service. It exposes the three logical operations the assistant needs
// (destination search, paged property search, property detail) and hides
// the service's wire shapes behind flat Go types.
package hotels

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"net/url"
	"time"

	"go.uber.org/zap"

	"github.com/stayscout/stayscout/pkg/observability"
)

// API is the operation surface consumed by the search orchestrator.
type API interface {
	SearchDestinations(ctx context.Context, query string) ([]Destination, error)
	SearchProperties(ctx context.Context, req PropertyRequest) ([]Property, error)
	PropertyDetail(ctx context.Context, id string) (Detail, error)
}

// Config configures the client.
type Config struct {
	// APIKey authenticates requests.
	APIKey string
	// Host is the API host header value.
	Host string
	// BaseURL overrides the endpoint, mainly for tests.
	BaseURL string
	// HTTPClient overrides the default client.
	HTTPClient *http.Client
}

// Client implements API over HTTPS.
type Client struct {
	apiKey  string
	host    string
	baseURL string
	client  *http.Client
	log     *zap.Logger
}

// New creates a client. Missing optional fields get defaults.
func New(cfg Config, log *zap.Logger) (*Client, error) {
	if cfg.APIKey == "" {
		return nil, fmt.Errorf("hotels: API key is required")
	}
	if cfg.Host == "" {
		cfg.Host = "hotels4.p.rapidapi.com"
	}
	if cfg.BaseURL == "" {
		cfg.BaseURL = "https://" + cfg.Host
	}
	if cfg.HTTPClient == nil {
		cfg.HTTPClient = &http.Client{Timeout: 30 * time.Second}
	}
	if log == nil {
		log = zap.NewNop()
	}
	return &Client{
		apiKey:  cfg.APIKey,
		host:    cfg.Host,
		baseURL: cfg.BaseURL,
		client:  cfg.HTTPClient,
		log:     log.Named("hotels"),
	}, nil
}

// destinationsResponse mirrors the destination search wire shape.
type destinationsResponse struct {
	SR []struct {
		Type        string `json:"type"`
		GaiaID      string `json:"gaiaId"`
		RegionNames struct {
			DisplayName string `json:"displayName"`
		} `json:"regionNames"`
	} `json:"sr"`
}

// SearchDestinations resolves a free-text place query to candidates of
// all kinds; callers filter on Kind.
func (c *Client) SearchDestinations(ctx context.Context, query string) ([]Destination, error) {
	endpoint := c.baseURL + "/locations/v3/search?" + url.Values{"q": {query}}.Encode()

	body, err := c.do(ctx, http.MethodGet, "destinations", endpoint, nil)
	if err != nil {
		return nil, err
	}

	var parsed destinationsResponse
	if err := json.Unmarshal(body, &parsed); err != nil {
		return nil, fmt.Errorf("hotels: parse destinations response: %w", err)
	}

	out := make([]Destination, 0, len(parsed.SR))
	for _, r := range parsed.SR {
		out = append(out, Destination{
			ID:          r.GaiaID,
			DisplayName: r.RegionNames.DisplayName,
			Kind:        r.Type,
		})
	}
	return out, nil
}

// propertiesPayload mirrors the property search request wire shape.
type propertiesPayload struct {
	Destination struct {
		RegionID string `json:"regionId"`
	} `json:"destination"`
	CheckInDate  wireDate       `json:"checkInDate"`
	CheckOutDate wireDate       `json:"checkOutDate"`
	Rooms        []wireRoom     `json:"rooms"`
	StartIndex   int            `json:"resultsStartingIndex"`
	PageSize     int            `json:"resultsSize"`
	Sort         string         `json:"sort"`
	Filters      map[string]any `json:"filters"`
}

type wireDate struct {
	Day   int `json:"day"`
	Month int `json:"month"`
	Year  int `json:"year"`
}

type wireRoom struct {
	Adults   int        `json:"adults"`
	Children []wireMinor `json:"children"`
}

type wireMinor struct {
	Age int `json:"age"`
}

// propertiesResponse mirrors the property search response wire shape.
// Data is null when the service has nothing for the query.
type propertiesResponse struct {
	Data *struct {
		PropertySearch struct {
			Properties []struct {
				ID    string `json:"id"`
				Name  string `json:"name"`
				Price struct {
					Lead struct {
						Amount    float64 `json:"amount"`
						Formatted string  `json:"formatted"`
					} `json:"lead"`
				} `json:"price"`
				DestinationInfo struct {
					DistanceFromDestination struct {
						Value float64 `json:"value"`
					} `json:"distanceFromDestination"`
				} `json:"destinationInfo"`
			} `json:"properties"`
		} `json:"propertySearch"`
	} `json:"data"`
}

// SearchProperties fetches one page of a property search.
func (c *Client) SearchProperties(ctx context.Context, req PropertyRequest) ([]Property, error) {
	payload := propertiesPayload{
		CheckInDate:  wireDate(req.CheckIn),
		CheckOutDate: wireDate(req.CheckOut),
		StartIndex:   req.StartIndex,
		PageSize:     req.PageSize,
		Sort:         string(req.Sort),
		Filters: map[string]any{
			"price": map[string]int{"min": req.Price.Min, "max": req.Price.Max},
		},
	}
	payload.Destination.RegionID = req.DestinationID
	for _, room := range req.Rooms {
		wr := wireRoom{Adults: room.Adults, Children: make([]wireMinor, 0, len(room.ChildAges))}
		for _, age := range room.ChildAges {
			wr.Children = append(wr.Children, wireMinor{Age: age})
		}
		payload.Rooms = append(payload.Rooms, wr)
	}

	body, err := c.do(ctx, http.MethodPost, "properties", c.baseURL+"/properties/v2/list", payload)
	if err != nil {
		return nil, err
	}

	var parsed propertiesResponse
	if err := json.Unmarshal(body, &parsed); err != nil {
		return nil, fmt.Errorf("hotels: parse properties response: %w", err)
	}
	if parsed.Data == nil {
		return nil, nil
	}

	props := parsed.Data.PropertySearch.Properties
	out := make([]Property, 0, len(props))
	for _, p := range props {
		out = append(out, Property{
			ID:             p.ID,
			Name:           p.Name,
			PriceFormatted: p.Price.Lead.Formatted,
			PriceAmount:    p.Price.Lead.Amount,
			DistanceMiles:  p.DestinationInfo.DistanceFromDestination.Value,
		})
	}
	return out, nil
}

// detailResponse mirrors the property detail response wire shape.
type detailResponse struct {
	Data struct {
		PropertyInfo struct {
			Summary struct {
				Location struct {
					Address struct {
						AddressLine string `json:"addressLine"`
					} `json:"address"`
				} `json:"location"`
			} `json:"summary"`
			PropertyGallery struct {
				Images []struct {
					Image struct {
						URL string `json:"url"`
					} `json:"image"`
				} `json:"images"`
			} `json:"propertyGallery"`
		} `json:"propertyInfo"`
	} `json:"data"`
}

// PropertyDetail fetches the address and photo gallery of one property.
func (c *Client) PropertyDetail(ctx context.Context, id string) (Detail, error) {
	payload := map[string]string{"propertyId": id}

	body, err := c.do(ctx, http.MethodPost, "detail", c.baseURL+"/properties/v2/detail", payload)
	if err != nil {
		return Detail{}, err
	}

	var parsed detailResponse
	if err := json.Unmarshal(body, &parsed); err != nil {
		return Detail{}, fmt.Errorf("hotels: parse detail response: %w", err)
	}

	info := parsed.Data.PropertyInfo
	detail := Detail{Address: info.Summary.Location.Address.AddressLine}
	for _, img := range info.PropertyGallery.Images {
		if img.Image.URL != "" {
			detail.GalleryURLs = append(detail.GalleryURLs, img.Image.URL)
		}
	}
	return detail, nil
}

// do issues one request and returns the response body. Network errors,
// non-2xx statuses and unreadable bodies are reported uniformly; the
// caller treats any error as the service being unavailable.
func (c *Client) do(ctx context.Context, method, op, endpoint string, payload any) ([]byte, error) {
	var reqBody io.Reader
	if payload != nil {
		data, err := json.Marshal(payload)
		if err != nil {
			return nil, fmt.Errorf("hotels: marshal %s request: %w", op, err)
		}
		reqBody = bytes.NewReader(data)
	}

	req, err := http.NewRequestWithContext(ctx, method, endpoint, reqBody)
	if err != nil {
		return nil, fmt.Errorf("hotels: create %s request: %w", op, err)
	}
	if payload != nil {
		req.Header.Set("Content-Type", "application/json")
	}
	req.Header.Set("X-RapidAPI-Key", c.apiKey)
	req.Header.Set("X-RapidAPI-Host", c.host)

	start := time.Now()
	resp, err := c.client.Do(req)
	if err != nil {
		observability.RecordUpstreamRequest(op, "error", time.Since(start))
		return nil, fmt.Errorf("hotels: %s request: %w", op, err)
	}
	defer func() { _ = resp.Body.Close() }()

	body, err := io.ReadAll(resp.Body)
	if err != nil {
		observability.RecordUpstreamRequest(op, "error", time.Since(start))
		return nil, fmt.Errorf("hotels: read %s response: %w", op, err)
	}

	if resp.StatusCode < 200 || resp.StatusCode > 299 {
		observability.RecordUpstreamRequest(op, fmt.Sprintf("%d", resp.StatusCode), time.Since(start))
		c.log.Warn("upstream request failed",
			zap.String("op", op),
			zap.Int("status", resp.StatusCode),
		)
		return nil, fmt.Errorf("hotels: %s request: status %d", op, resp.StatusCode)
	}

	observability.RecordUpstreamRequest(op, "ok", time.Since(start))
	return body, nil
}

package ingest

import (
	"context"
	"fmt"
	"io"
	"math/rand"
	"net/http"
	"net/url"
	"strconv"
	"strings"
	"time"

	"gigradar/shared/go/models"
)

const (
	// DefaultTicketingBaseURL is the Ticketmaster Discovery v2 search endpoint.
	DefaultTicketingBaseURL = "https://app.ticketmaster.com/discovery/v2/events.json"

	defaultPageSize = 20
	defaultRetries  = 3

	userAgent = "gigradar-collector/1.0"
)

// APIError is a non-retryable response from the ticketing API.
type APIError struct {
	StatusCode int
	Body       string
}

func (e *APIError) Error() string {
	return fmt.Sprintf("ticketing api error %d: %s", e.StatusCode, e.Body)
}

// TicketmasterClient fetches event listings from the Ticketmaster Discovery
// API. Rate-limit responses are retried with exponential backoff plus
// jitter; exhausting the retries yields an empty result, not an error, so a
// burst of throttling never fails a whole import run.
type TicketmasterClient struct {
	apiKey     string
	baseURL    string
	pageSize   int
	retries    int
	httpClient *http.Client

	// sleep is replaced in tests to avoid real backoff waits.
	sleep func(time.Duration)
}

// NewTicketmasterClient creates a client. Empty baseURL and non-positive
// pageSize fall back to defaults.
func NewTicketmasterClient(apiKey, baseURL string, pageSize int) *TicketmasterClient {
	if baseURL == "" {
		baseURL = DefaultTicketingBaseURL
	}
	if pageSize <= 0 {
		pageSize = defaultPageSize
	}
	return &TicketmasterClient{
		apiKey:   apiKey,
		baseURL:  baseURL,
		pageSize: pageSize,
		retries:  defaultRetries,
		httpClient: &http.Client{
			Timeout: 15 * time.Second,
		},
		sleep: time.Sleep,
	}
}

type tmSearchResponse struct {
	Embedded struct {
		Events []tmEvent `json:"events"`
	} `json:"_embedded"`
}

type tmEvent struct {
	Name  string `json:"name"`
	Dates struct {
		Start struct {
			DateTime string `json:"dateTime"`
		} `json:"start"`
		Timezone string `json:"timezone"`
	} `json:"dates"`
	Embedded struct {
		Venues []tmVenue `json:"venues"`
	} `json:"_embedded"`
	Links struct {
		Self struct {
			Href string `json:"href"`
		} `json:"self"`
	} `json:"_links"`
}

type tmVenue struct {
	Name string `json:"name"`
	City struct {
		Name string `json:"name"`
	} `json:"city"`
	Country struct {
		Name string `json:"name"`
	} `json:"country"`
}

// ArtistEvents searches listings by artist keyword and returns them in the
// canonical record shape.
func (c *TicketmasterClient) ArtistEvents(ctx context.Context, artist string) ([]models.EventRecord, error) {
	if c.apiKey == "" {
		return nil, fmt.Errorf("ticketing api key is not set")
	}

	params := url.Values{}
	params.Set("apikey", c.apiKey)
	params.Set("keyword", artist)
	params.Set("size", strconv.Itoa(c.pageSize))
	reqURL := c.baseURL + "?" + params.Encode()

	for attempt := 0; attempt < c.retries; attempt++ {
		req, err := http.NewRequestWithContext(ctx, http.MethodGet, reqURL, nil)
		if err != nil {
			return nil, fmt.Errorf("create request: %w", err)
		}
		req.Header.Set("User-Agent", userAgent)

		resp, err := c.httpClient.Do(req)
		if err != nil {
			return nil, fmt.Errorf("send request: %w", err)
		}

		if resp.StatusCode == http.StatusTooManyRequests {
			resp.Body.Close()
			backoff := time.Duration(1<<attempt)*time.Second +
				time.Duration(200+rand.Intn(400))*time.Millisecond
			c.sleep(backoff)
			continue
		}

		if resp.StatusCode != http.StatusOK {
			body, _ := io.ReadAll(resp.Body)
			resp.Body.Close()
			return nil, &APIError{StatusCode: resp.StatusCode, Body: string(body)}
		}

		var result tmSearchResponse
		err = decodeJSON(resp.Body, &result)
		resp.Body.Close()
		if err != nil {
			return nil, fmt.Errorf("decode response: %w", err)
		}

		events := make([]models.EventRecord, 0, len(result.Embedded.Events))
		for _, e := range result.Embedded.Events {
			events = append(events, convertTicketEvent(e))
		}
		return events, nil
	}

	return nil, nil
}

// convertTicketEvent maps an API event into the shape the scraped feed
// uses: absent values become the "-" placeholder and the description holds
// "city, venue".
func convertTicketEvent(e tmEvent) models.EventRecord {
	var venue tmVenue
	if len(e.Embedded.Venues) > 0 {
		venue = e.Embedded.Venues[0]
	}

	return models.EventRecord{
		URL:         orDash(e.Links.Self.Href),
		Title:       orDash(e.Name),
		FullTitle:   orDash(e.Name),
		Description: fmt.Sprintf("%s, %s", orDash(venue.City.Name), orDash(venue.Name)),
		Venue:       orDash(venue.Name),
		City:        orDash(venue.City.Name),
		Date:        orDash(e.Dates.Start.DateTime),
		Price:       "-",
		Category:    "concert",
		Source:      "ticketmaster",
	}
}

func orDash(s string) string {
	if strings.TrimSpace(s) == "" {
		return "-"
	}
	return s
}

// Package encyclopedia looks up subjects through the Wikipedia
// (MediaWiki) API.
//
// The router only needs three outcomes from a lookup: a short plain-text
// summary, a not-found signal, or a disambiguation signal carrying
// alternative subject names. Everything else is a generic failure.
package encyclopedia

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"net/http"
	"net/url"
	"strconv"
	"strings"
	"time"
)

// DefaultEndpoint is the English Wikipedia action API.
const DefaultEndpoint = "https://en.wikipedia.org/w/api.php"

const defaultTimeout = 8 * time.Second

// ErrNotFound signals that no page exists for the subject.
var ErrNotFound = errors.New("encyclopedia: subject not found")

// DisambiguationError signals that the subject matches several pages.
type DisambiguationError struct {
	// Options lists alternative subject names, best match first.
	Options []string
}

func (e *DisambiguationError) Error() string {
	return fmt.Sprintf("encyclopedia: ambiguous subject (%d alternatives)", len(e.Options))
}

// Client queries the MediaWiki API.
type Client struct {
	endpoint string
	http     *http.Client
}

// NewClient builds a client for the given API endpoint. A nil httpClient
// gets a default with a bounded timeout so a slow lookup cannot starve a
// request handler.
func NewClient(endpoint string, httpClient *http.Client) *Client {
	if endpoint == "" {
		endpoint = DefaultEndpoint
	}
	if httpClient == nil {
		httpClient = &http.Client{Timeout: defaultTimeout}
	}
	return &Client{endpoint: endpoint, http: httpClient}
}

// Summary returns the plain-text intro of the page for subject, limited
// to at most sentences sentences. It returns ErrNotFound for unknown
// subjects and *DisambiguationError for ambiguous ones.
func (c *Client) Summary(ctx context.Context, subject string, sentences int) (string, error) {
	if sentences <= 0 {
		sentences = 3
	}

	q := url.Values{}
	q.Set("action", "query")
	q.Set("format", "json")
	q.Set("redirects", "1")
	q.Set("prop", "extracts|pageprops")
	q.Set("ppprop", "disambiguation")
	q.Set("explaintext", "1")
	q.Set("exintro", "1")
	q.Set("exsentences", strconv.Itoa(sentences))
	q.Set("titles", subject)

	var payload struct {
		Query struct {
			Pages map[string]struct {
				Title     string  `json:"title"`
				Missing   *string `json:"missing"`
				Extract   string  `json:"extract"`
				PageProps struct {
					Disambiguation *string `json:"disambiguation"`
				} `json:"pageprops"`
			} `json:"pages"`
		} `json:"query"`
	}
	if err := c.get(ctx, q, &payload); err != nil {
		return "", err
	}

	for _, page := range payload.Query.Pages {
		if page.Missing != nil {
			return "", ErrNotFound
		}
		if page.PageProps.Disambiguation != nil {
			options, err := c.alternatives(ctx, subject)
			if err != nil {
				// The disambiguation signal matters more than the
				// follow-up lookup; return it with what we have.
				options = nil
			}
			return "", &DisambiguationError{Options: options}
		}
		if extract := strings.TrimSpace(page.Extract); extract != "" {
			return extract, nil
		}
	}

	return "", ErrNotFound
}

// alternatives asks the opensearch endpoint for subjects similar to the
// query, used to populate disambiguation suggestions.
func (c *Client) alternatives(ctx context.Context, subject string) ([]string, error) {
	q := url.Values{}
	q.Set("action", "opensearch")
	q.Set("format", "json")
	q.Set("limit", "5")
	q.Set("search", subject)

	// opensearch responds with a positional array:
	// [query, [titles...], [descriptions...], [urls...]]
	var payload []json.RawMessage
	if err := c.get(ctx, q, &payload); err != nil {
		return nil, err
	}
	if len(payload) < 2 {
		return nil, fmt.Errorf("encyclopedia: malformed opensearch response")
	}

	var titles []string
	if err := json.Unmarshal(payload[1], &titles); err != nil {
		return nil, fmt.Errorf("encyclopedia: decoding opensearch titles: %w", err)
	}
	return titles, nil
}

func (c *Client) get(ctx context.Context, query url.Values, out any) error {
	req, err := http.NewRequestWithContext(ctx, http.MethodGet, c.endpoint+"?"+query.Encode(), nil)
	if err != nil {
		return fmt.Errorf("encyclopedia: building request: %w", err)
	}

	resp, err := c.http.Do(req)
	if err != nil {
		return fmt.Errorf("encyclopedia: request failed: %w", err)
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusOK {
		return fmt.Errorf("encyclopedia: unexpected status %d", resp.StatusCode)
	}
	if err := json.NewDecoder(resp.Body).Decode(out); err != nil {
		return fmt.Errorf("encyclopedia: decoding response: %w", err)
	}
	return nil
}

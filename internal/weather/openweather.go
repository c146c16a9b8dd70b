// Package weather fetches current conditions from the OpenWeatherMap
// API.
package weather

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"net/http"
	"net/url"
	"strconv"
	"time"
)

// DefaultEndpoint is the OpenWeatherMap current-weather API.
const DefaultEndpoint = "https://api.openweathermap.org/data/2.5/weather"

const defaultTimeout = 8 * time.Second

// ErrUnreachable wraps transport-level failures (network down, timeout,
// malformed response). The router turns it into a connectivity message.
var ErrUnreachable = errors.New("weather: service unreachable")

// NotFoundError carries the service's own error text for an unknown
// city, echoed back to the user.
type NotFoundError struct {
	Message string
}

func (e *NotFoundError) Error() string {
	return "weather: city not found: " + e.Message
}

// Report is the structured payload of a successful lookup.
type Report struct {
	Description string
	TempC       float64
	Humidity    int
}

// Client queries OpenWeatherMap.
type Client struct {
	apiKey   string
	endpoint string
	http     *http.Client
}

// NewClient builds a client. A nil httpClient gets a default with a
// bounded timeout.
func NewClient(apiKey, endpoint string, httpClient *http.Client) *Client {
	if endpoint == "" {
		endpoint = DefaultEndpoint
	}
	if httpClient == nil {
		httpClient = &http.Client{Timeout: defaultTimeout}
	}
	return &Client{apiKey: apiKey, endpoint: endpoint, http: httpClient}
}

// Current returns the current conditions for city (metric units).
func (c *Client) Current(ctx context.Context, city string) (*Report, error) {
	q := url.Values{}
	q.Set("appid", c.apiKey)
	q.Set("q", city)
	q.Set("units", "metric")

	req, err := http.NewRequestWithContext(ctx, http.MethodGet, c.endpoint+"?"+q.Encode(), nil)
	if err != nil {
		return nil, fmt.Errorf("weather: building request: %w", err)
	}

	resp, err := c.http.Do(req)
	if err != nil {
		return nil, fmt.Errorf("%w: %v", ErrUnreachable, err)
	}
	defer resp.Body.Close()

	// The API reports its status in the body: "cod" is a number on
	// success and a string on error.
	var payload struct {
		Cod     json.RawMessage `json:"cod"`
		Message string          `json:"message"`
		Weather []struct {
			Description string `json:"description"`
		} `json:"weather"`
		Main struct {
			Temp     float64 `json:"temp"`
			Humidity int     `json:"humidity"`
		} `json:"main"`
	}
	if err := json.NewDecoder(resp.Body).Decode(&payload); err != nil {
		return nil, fmt.Errorf("%w: decoding response: %v", ErrUnreachable, err)
	}

	if statusCode(payload.Cod) != http.StatusOK {
		return nil, &NotFoundError{Message: payload.Message}
	}

	report := &Report{
		TempC:    payload.Main.Temp,
		Humidity: payload.Main.Humidity,
	}
	if len(payload.Weather) > 0 {
		report.Description = payload.Weather[0].Description
	}
	return report, nil
}

// statusCode normalizes the API's "cod" field, which may be a JSON
// number or a quoted string.
func statusCode(raw json.RawMessage) int {
	s := string(raw)
	if len(s) >= 2 && s[0] == '"' {
		s = s[1 : len(s)-1]
	}
	code, err := strconv.Atoi(s)
	if err != nil {
		return 0
	}
	return code
}

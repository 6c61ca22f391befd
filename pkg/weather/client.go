// pkg/weather/client.go
// Client OpenWeather: geocoding (direct/reverse) + current conditions.

package weather

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"net/http"
	"net/url"
	"strconv"
	"strings"
	"time"
)

var (
	// ErrLocationNotFound: geocoding returned an empty match list.
	ErrLocationNotFound = errors.New("location not found")
	// ErrNoAPIKey: client built without a credential; no request is sent.
	ErrNoAPIKey = errors.New("weather api key not configured")
)

// StatusError is a non-success status reported by the provider, either as an
// HTTP status or as the "cod" field of the body.
type StatusError struct {
	Code    int
	Message string
}

func (e *StatusError) Error() string {
	if e.Message == "" {
		return fmt.Sprintf("weather api status %d", e.Code)
	}
	return fmt.Sprintf("weather api status %d: %s", e.Code, e.Message)
}

type Place struct {
	Name    string  `json:"name"`
	Country string  `json:"country"`
	Lat     float64 `json:"lat"`
	Lon     float64 `json:"lon"`
}

// Label renders "name, country" the way the dashboard displays it.
func (p Place) Label() string { return label(p.Name, p.Country) }

type Conditions struct {
	Temperature float64 // °C
	Humidity    float64 // %
	Rainfall    float64 // mm over the last hour, 0 when not reported
	Name        string
	Country     string
}

func (c Conditions) Label() string { return label(c.Name, c.Country) }

func label(name, country string) string {
	switch {
	case name == "":
		return country
	case country == "":
		return name
	}
	return name + ", " + country
}

type Client struct {
	APIKey  string
	BaseURL string
	HTTP    *http.Client
}

// NewClient buat client baru; baseURL kosong = https://api.openweathermap.org
func NewClient(apiKey, baseURL string, timeout time.Duration) *Client {
	if baseURL == "" {
		baseURL = "https://api.openweathermap.org"
	}
	if timeout <= 0 {
		timeout = 10 * time.Second
	}
	return &Client{
		APIKey:  apiKey,
		BaseURL: strings.TrimRight(baseURL, "/"),
		HTTP:    &http.Client{Timeout: timeout},
	}
}

// Geocode resolves a place name to its first match.
func (c *Client) Geocode(ctx context.Context, name string) (Place, error) {
	q := url.Values{}
	q.Set("q", name)
	q.Set("limit", "1")
	return c.place(ctx, "/geo/1.0/direct", q)
}

// ReverseGeocode resolves coordinates to the nearest named place.
func (c *Client) ReverseGeocode(ctx context.Context, lat, lon float64) (Place, error) {
	q := url.Values{}
	q.Set("lat", formatCoord(lat))
	q.Set("lon", formatCoord(lon))
	q.Set("limit", "1")
	return c.place(ctx, "/geo/1.0/reverse", q)
}

func (c *Client) place(ctx context.Context, path string, q url.Values) (Place, error) {
	var places []Place
	if err := c.getJSON(ctx, path, q, &places); err != nil {
		return Place{}, err
	}
	if len(places) == 0 {
		return Place{}, ErrLocationNotFound
	}
	return places[0], nil
}

type currentResponse struct {
	Cod     code   `json:"cod"`
	Message string `json:"message"`
	Name    string `json:"name"`
	Sys     struct {
		Country string `json:"country"`
	} `json:"sys"`
	Main struct {
		Temp     float64 `json:"temp"`
		Humidity float64 `json:"humidity"`
	} `json:"main"`
	Rain *struct {
		OneHour float64 `json:"1h"`
	} `json:"rain"`
}

// Current fetches current conditions (metric units) for the coordinates.
func (c *Client) Current(ctx context.Context, lat, lon float64) (Conditions, error) {
	q := url.Values{}
	q.Set("lat", formatCoord(lat))
	q.Set("lon", formatCoord(lon))
	q.Set("units", "metric")

	var out currentResponse
	if err := c.getJSON(ctx, "/data/2.5/weather", q, &out); err != nil {
		return Conditions{}, err
	}
	if out.Cod != http.StatusOK {
		msg := out.Message
		if msg == "" {
			msg = "failed to fetch weather data"
		}
		return Conditions{}, &StatusError{Code: int(out.Cod), Message: msg}
	}

	cond := Conditions{
		Temperature: out.Main.Temp,
		Humidity:    out.Main.Humidity,
		Name:        out.Name,
		Country:     out.Sys.Country,
	}
	if out.Rain != nil {
		cond.Rainfall = out.Rain.OneHour
	}
	return cond, nil
}

func (c *Client) getJSON(ctx context.Context, path string, q url.Values, v any) error {
	if c.APIKey == "" {
		return ErrNoAPIKey
	}
	q.Set("appid", c.APIKey)

	req, err := http.NewRequestWithContext(ctx, http.MethodGet, c.BaseURL+path+"?"+q.Encode(), nil)
	if err != nil {
		return fmt.Errorf("new request: %w", err)
	}
	req.Header.Set("Accept", "application/json")

	resp, err := c.HTTP.Do(req)
	if err != nil {
		return fmt.Errorf("http do: %w", err)
	}
	defer resp.Body.Close()

	body, err := io.ReadAll(resp.Body)
	if err != nil {
		return fmt.Errorf("read response: %w", err)
	}
	if resp.StatusCode != http.StatusOK {
		se := &StatusError{Code: resp.StatusCode}
		var e struct {
			Message string `json:"message"`
		}
		if json.Unmarshal(body, &e) == nil {
			se.Message = e.Message
		}
		return se
	}
	if err := json.Unmarshal(body, v); err != nil {
		return fmt.Errorf("decode response: %w", err)
	}
	return nil
}

// code accepts "cod" as either a number or a numeric string; OpenWeather
// sends both depending on the endpoint and error path.
type code int

func (c *code) UnmarshalJSON(b []byte) error {
	s := strings.Trim(string(b), `"`)
	if s == "" || s == "null" {
		*c = 0
		return nil
	}
	n, err := strconv.Atoi(s)
	if err != nil {
		return fmt.Errorf("cod: %w", err)
	}
	*c = code(n)
	return nil
}

func formatCoord(f float64) string {
	return strconv.FormatFloat(f, 'f', -1, 64)
}

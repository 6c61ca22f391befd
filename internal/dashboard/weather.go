// internal/dashboard/weather.go
// Akuisisi cuaca per sesi: deteksi lokasi perangkat, lookup nama tempat,
// dan mode fallback (offline) bila data live tidak tersedia.
package dashboard

import (
	"context"
	"errors"
	"log/slog"
	"math"
	"strings"
	"sync"

	"smart-farming/internal/farm"
	"smart-farming/internal/metrics"
	"smart-farming/internal/util"
	"smart-farming/pkg/weather"
)

// WeatherSource is the provider surface the acquirer consumes.
type WeatherSource interface {
	Geocode(ctx context.Context, name string) (weather.Place, error)
	ReverseGeocode(ctx context.Context, lat, lon float64) (weather.Place, error)
	Current(ctx context.Context, lat, lon float64) (weather.Conditions, error)
}

type Coordinates struct {
	Lat float64 `json:"lat"`
	Lon float64 `json:"lon"`
}

// Acquirer resolves WeatherReadings and hands each one to publish.
type Acquirer struct {
	src      WeatherSource
	fallback *weather.Fallback
	clock    util.Clock
	log      *slog.Logger
	publish  func(farm.WeatherReading)
	notes    *Notifier
	onState  func()

	mu       sync.Mutex
	inFlight bool
	location string // last place resolved successfully; empty until then
	current  *farm.WeatherReading
}

func (a *Acquirer) begin() error {
	a.mu.Lock()
	defer a.mu.Unlock()
	if a.inFlight {
		return util.Conflict("a weather request is already in progress")
	}
	a.inFlight = true
	return nil
}

func (a *Acquirer) end() {
	a.mu.Lock()
	a.inFlight = false
	a.mu.Unlock()
	a.onState()
}

// Busy reports whether a weather request is in flight.
func (a *Acquirer) Busy() bool {
	a.mu.Lock()
	defer a.mu.Unlock()
	return a.inFlight
}

// Current returns the reading in effect (nil before the first one).
func (a *Acquirer) Current() *farm.WeatherReading {
	a.mu.Lock()
	defer a.mu.Unlock()
	if a.current == nil {
		return nil
	}
	r := *a.current
	return &r
}

// Location returns the last successfully resolved place label.
func (a *Acquirer) Location() string {
	a.mu.Lock()
	defer a.mu.Unlock()
	return a.location
}

// Detect runs the initial acquisition. pos == nil means the device position is
// unavailable (unsupported or denied). Any failure ends in a fallback reading.
func (a *Acquirer) Detect(ctx context.Context, pos *Coordinates) (farm.WeatherReading, error) {
	if err := a.begin(); err != nil {
		return farm.WeatherReading{}, err
	}
	a.onState()
	defer a.end()

	if pos == nil {
		a.log.Info("device position unavailable, using fallback weather")
		return a.useFallback("Device location unavailable"), nil
	}

	place, err := a.src.ReverseGeocode(ctx, pos.Lat, pos.Lon)
	if err != nil {
		a.log.Warn("reverse geocoding failed", "lat", pos.Lat, "lon", pos.Lon, "error", err)
		return a.useFallback(describe(err)), nil
	}
	a.mu.Lock()
	a.location = place.Label()
	a.mu.Unlock()

	cond, err := a.src.Current(ctx, pos.Lat, pos.Lon)
	if err != nil {
		a.log.Warn("current conditions failed", "place", place.Label(), "error", err)
		return a.useFallback(describe(err)), nil
	}

	r := a.live(cond, place)
	a.store(r)
	return r, nil
}

// LookupPlace resolves a user-typed place name. On failure the returned error
// carries the descriptive message; the fallback reading is used only when no
// location was ever resolved.
func (a *Acquirer) LookupPlace(ctx context.Context, name string) (*farm.WeatherReading, error) {
	name = strings.TrimSpace(name)
	if name == "" {
		return a.Current(), util.BadInput("location name required")
	}
	if err := a.begin(); err != nil {
		return a.Current(), err
	}
	a.onState()
	defer a.end()

	r, err := a.lookup(ctx, name)
	if err != nil {
		msg := describe(err)
		a.log.Warn("weather lookup failed", "place", name, "error", err)
		a.notes.Notify("Error", msg, VariantDestructive)

		if a.Location() == "" {
			a.useFallbackQuiet()
		}
		if errors.Is(err, weather.ErrLocationNotFound) {
			return a.Current(), util.NotFound(msg)
		}
		return a.Current(), util.Upstream(msg)
	}

	a.mu.Lock()
	a.location = r.Location
	a.mu.Unlock()
	a.store(r)
	a.notes.Notify("Weather Updated", "Latest weather data fetched for "+r.Location, VariantDefault)
	return &r, nil
}

func (a *Acquirer) lookup(ctx context.Context, name string) (farm.WeatherReading, error) {
	place, err := a.src.Geocode(ctx, name)
	if err != nil {
		return farm.WeatherReading{}, err
	}
	cond, err := a.src.Current(ctx, place.Lat, place.Lon)
	if err != nil {
		return farm.WeatherReading{}, err
	}
	return a.live(cond, place), nil
}

func (a *Acquirer) live(cond weather.Conditions, place weather.Place) farm.WeatherReading {
	loc := cond.Label()
	if loc == "" {
		loc = place.Label()
	}
	return farm.WeatherReading{
		Temperature: roundHalfUp(cond.Temperature),
		Humidity:    cond.Humidity,
		Rainfall:    cond.Rainfall,
		Location:    loc,
		Source:      farm.SourceLive,
		FetchedAt:   a.clock.Now(),
	}
}

func (a *Acquirer) useFallback(reason string) farm.WeatherReading {
	r := a.useFallbackQuiet()
	a.notes.Notify("Offline weather", reason+"; showing fallback values for "+r.Location, VariantDefault)
	return r
}

func (a *Acquirer) useFallbackQuiet() farm.WeatherReading {
	cond := a.fallback.Conditions()
	r := farm.WeatherReading{
		Temperature: cond.Temperature,
		Humidity:    cond.Humidity,
		Rainfall:    cond.Rainfall,
		Location:    cond.Label(),
		Source:      farm.SourceFallback,
		FetchedAt:   a.clock.Now(),
	}
	a.store(r)
	return r
}

func (a *Acquirer) store(r farm.WeatherReading) {
	a.mu.Lock()
	a.current = &r
	a.mu.Unlock()
	metrics.WeatherReadings.WithLabelValues(string(r.Source)).Inc()
	a.publish(r)
}

// describe turns a weather error into the message shown to the user.
func describe(err error) string {
	var se *weather.StatusError
	switch {
	case errors.Is(err, weather.ErrLocationNotFound):
		return "Location not found"
	case errors.Is(err, weather.ErrNoAPIKey):
		return "Weather service is not configured"
	case errors.As(err, &se) && se.Message != "":
		return se.Message
	default:
		return "Failed to fetch weather data"
	}
}

func roundHalfUp(f float64) float64 {
	return math.Floor(f + 0.5)
}

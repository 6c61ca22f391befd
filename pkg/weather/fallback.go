// pkg/weather/fallback.go
package weather

import (
	"math/rand/v2"
	"sync"
	"time"
)

// Fallback bounds (inclusive lower, exclusive upper) used in offline mode.
const (
	FallbackTempMin     = 20
	FallbackTempMax     = 35
	FallbackHumidityMin = 50
	FallbackHumidityMax = 80
	FallbackRainMin     = 10
	FallbackRainMax     = 60
)

// Fallback synthesizes plausible conditions for a default region when no live
// reading can be obtained. Readings from it are always labelled as fallback by
// the caller and must never be shown as live data.
type Fallback struct {
	mu  sync.Mutex
	rng *rand.Rand
}

// NewFallback seeds from the clock; use NewFallbackWithSource in tests.
func NewFallback() *Fallback {
	now := uint64(time.Now().UnixNano())
	return NewFallbackWithSource(rand.NewPCG(now, now>>17|1))
}

func NewFallbackWithSource(src rand.Source) *Fallback {
	return &Fallback{rng: rand.New(src)}
}

// Conditions returns integer readings within the documented bounds for
// New Delhi, India.
func (f *Fallback) Conditions() Conditions {
	f.mu.Lock()
	defer f.mu.Unlock()
	return Conditions{
		Temperature: float64(FallbackTempMin + f.rng.IntN(FallbackTempMax-FallbackTempMin)),
		Humidity:    float64(FallbackHumidityMin + f.rng.IntN(FallbackHumidityMax-FallbackHumidityMin)),
		Rainfall:    float64(FallbackRainMin + f.rng.IntN(FallbackRainMax-FallbackRainMin)),
		Name:        "New Delhi",
		Country:     "India",
	}
}

// internal/farm/records.go
// Tipe data inti dashboard: input tanah/lingkungan, bacaan cuaca, hasil analisis.
package farm

import (
	"fmt"
	"math"
	"time"
)

type Season string

const (
	Kharif Season = "kharif"
	Rabi   Season = "rabi"
	Zaid   Season = "zaid"
)

func (s Season) Valid() bool {
	switch s {
	case Kharif, Rabi, Zaid:
		return true
	}
	return false
}

// InputRecord is the full set of soil/environmental parameters submitted for
// analysis. JSON keys match what the prediction services read.
type InputRecord struct {
	N           float64 `json:"N"`
	P           float64 `json:"P"`
	K           float64 `json:"K"`
	PH          float64 `json:"pH"`
	Temperature float64 `json:"temperature"`
	Humidity    float64 `json:"humidity"`
	Rainfall    float64 `json:"rainfall"`
	Season      Season  `json:"season"`
}

// DefaultInput is the record a new session starts with.
func DefaultInput() InputRecord {
	return InputRecord{
		N:           50,
		P:           50,
		K:           50,
		PH:          6.5,
		Temperature: 25,
		Humidity:    65,
		Rainfall:    80,
		Season:      Kharif,
	}
}

type WeatherSource string

const (
	SourceLive     WeatherSource = "live"
	SourceFallback WeatherSource = "fallback"
)

// WeatherReading adalah bacaan suhu/kelembapan/curah hujan. Location hanya untuk
// tampilan dan tidak pernah di-merge ke InputRecord.
type WeatherReading struct {
	Temperature float64       `json:"temperature"`
	Humidity    float64       `json:"humidity"`
	Rainfall    float64       `json:"rainfall"`
	Location    string        `json:"location,omitempty"`
	Source      WeatherSource `json:"source"`
	FetchedAt   time.Time     `json:"fetched_at"`
}

// MergeWeather overwrites temperature, humidity and rainfall only.
func MergeWeather(rec InputRecord, w WeatherReading) InputRecord {
	rec.Temperature = w.Temperature
	rec.Humidity = w.Humidity
	rec.Rainfall = w.Rainfall
	return rec
}

type Recommendation struct {
	Crops         []string  `json:"crops"`
	Probabilities []float64 `json:"probs"`
}

// Validate memastikan crops & probs sejajar dan tiap probabilitas di [0,1].
func (r Recommendation) Validate() error {
	if len(r.Crops) != len(r.Probabilities) {
		return fmt.Errorf("crops/probs length mismatch: %d vs %d", len(r.Crops), len(r.Probabilities))
	}
	for i, p := range r.Probabilities {
		if math.IsNaN(p) || p < 0 || p > 1 {
			return fmt.Errorf("probability %d out of range: %v", i, p)
		}
	}
	return nil
}

type Fertilizer struct {
	Nitrogen           float64 `json:"nitrogen"`
	Phosphorus         float64 `json:"phosphorus"`
	Potassium          float64 `json:"potassium"`
	RecommendationText string  `json:"recommendation_text,omitempty"`
}

// ResultsRecord is the aggregated output of the three analyses for one
// submission. It is only ever built whole.
type ResultsRecord struct {
	ID             string     `json:"id"`
	Crops          []string   `json:"crops"`
	Probabilities  []float64  `json:"probabilities"`
	PredictedYield float64    `json:"predicted_yield"`
	Fertilizer     Fertilizer `json:"fertilizer"`
	CompletedAt    time.Time  `json:"completed_at"`
}

// Clone returns a deep copy so callers can't mutate shared slices.
func (r *ResultsRecord) Clone() *ResultsRecord {
	if r == nil {
		return nil
	}
	out := *r
	out.Crops = append([]string(nil), r.Crops...)
	out.Probabilities = append([]float64(nil), r.Probabilities...)
	return &out
}

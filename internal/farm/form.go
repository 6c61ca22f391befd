// internal/farm/form.go
package farm

import (
	"math"
	"strconv"
	"strings"

	"smart-farming/internal/util"
)

// FieldSpec describes one editable form field. Min/Max are advisory only.
type FieldSpec struct {
	Name    string   `json:"name"`
	Label   string   `json:"label"`
	Numeric bool     `json:"numeric"`
	Min     float64  `json:"min,omitempty"`
	Max     float64  `json:"max,omitempty"`
	Step    float64  `json:"step,omitempty"`
	Options []string `json:"options,omitempty"`
}

var fieldSpecs = []FieldSpec{
	{Name: "N", Label: "Nitrogen (N)", Numeric: true, Min: 0, Max: 140, Step: 1},
	{Name: "P", Label: "Phosphorus (P)", Numeric: true, Min: 0, Max: 140, Step: 1},
	{Name: "K", Label: "Potassium (K)", Numeric: true, Min: 0, Max: 200, Step: 1},
	{Name: "pH", Label: "pH Level", Numeric: true, Min: 0, Max: 14, Step: 0.1},
	{Name: "temperature", Label: "Temperature (°C)", Numeric: true, Min: 0, Max: 45, Step: 1},
	{Name: "humidity", Label: "Humidity (%)", Numeric: true, Min: 0, Max: 100, Step: 1},
	{Name: "rainfall", Label: "Rainfall (mm)", Numeric: true, Min: 0, Max: 300, Step: 1},
	{Name: "season", Label: "Growing Season", Options: []string{string(Kharif), string(Rabi), string(Zaid)}},
}

// FieldSpecs returns a copy of the form field descriptions.
func FieldSpecs() []FieldSpec {
	out := make([]FieldSpec, len(fieldSpecs))
	copy(out, fieldSpecs)
	return out
}

// ApplyField returns rec with exactly one field replaced by raw.
// Numeric input that does not parse (or parses to NaN/Inf) becomes 0.
func ApplyField(rec InputRecord, field, raw string) (InputRecord, error) {
	switch field {
	case "N":
		rec.N = parseNumber(raw)
	case "P":
		rec.P = parseNumber(raw)
	case "K":
		rec.K = parseNumber(raw)
	case "pH":
		rec.PH = parseNumber(raw)
	case "temperature":
		rec.Temperature = parseNumber(raw)
	case "humidity":
		rec.Humidity = parseNumber(raw)
	case "rainfall":
		rec.Rainfall = parseNumber(raw)
	case "season":
		s := Season(strings.ToLower(strings.TrimSpace(raw)))
		if !s.Valid() {
			return rec, util.BadInput("unknown season: " + raw)
		}
		rec.Season = s
	default:
		return rec, util.BadInput("unknown field: " + field)
	}
	return rec, nil
}

func parseNumber(raw string) float64 {
	f, err := strconv.ParseFloat(strings.TrimSpace(raw), 64)
	if err != nil || math.IsNaN(f) || math.IsInf(f, 0) {
		return 0
	}
	return f
}

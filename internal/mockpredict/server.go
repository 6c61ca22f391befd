// internal/mockpredict/server.go
// Backend prediksi tiruan untuk pengembangan lokal. Jawaban /recommend dan
// /predict_yield adalah data kalengan (bukan model), ditandai header X-Mock.
package mockpredict

import (
	"context"
	"encoding/json"
	"fmt"
	"log/slog"
	"math"
	"math/rand/v2"
	"net/http"
	"sync"

	"github.com/go-chi/chi/v5"
	chimw "github.com/go-chi/chi/v5/middleware"

	"smart-farming/internal/farm"
	"smart-farming/pkg/weather"
)

const (
	baseYield   = 45.72
	yieldSpread = 5.0

	targetLevel  = 100.0 // kg/ha
	minDeficit   = 10.0
	fertNitrogen = "Nitrogen (kg/ha)"
	fertPhos     = "Phosphorus (kg/ha)"
	fertPotash   = "Potassium (kg/ha)"
)

var (
	cannedCrops = []string{"Rice", "Wheat", "Maize", "Cotton", "Sugarcane"}
	cannedProbs = []float64{0.87, 0.75, 0.68, 0.52, 0.45}
)

// Advisor menulis teks panduan pupuk (lihat internal/llm).
type Advisor interface {
	FertilizerAdvice(ctx context.Context, in farm.InputRecord, f farm.Fertilizer) (string, error)
}

// Conditions is the slice of the weather client /weather needs.
type Conditions interface {
	Current(ctx context.Context, lat, lon float64) (weather.Conditions, error)
}

type Server struct {
	Advisor Advisor    // opsional; nil = teks template
	Weather Conditions // opsional; nil = /weather error
	Log     *slog.Logger

	mu  sync.Mutex
	rng *rand.Rand
}

func New(advisor Advisor, wx Conditions, log *slog.Logger) *Server {
	if log == nil {
		log = slog.Default()
	}
	return &Server{
		Advisor: advisor,
		Weather: wx,
		Log:     log,
		rng:     rand.New(rand.NewPCG(rand.Uint64(), rand.Uint64())),
	}
}

func (s *Server) Routes() http.Handler {
	r := chi.NewRouter()
	r.Use(chimw.RequestID, chimw.Recoverer)

	r.Get("/", func(w http.ResponseWriter, r *http.Request) {
		w.Write([]byte("smart-farming mock predictor"))
	})
	r.Post("/recommend", s.recommend)
	r.Post("/predict_yield", s.predictYield)
	r.Post("/optimize_fertilizer", s.optimizeFertilizer)
	r.Post("/weather", s.weather)
	return r
}

func (s *Server) recommend(w http.ResponseWriter, r *http.Request) {
	in, ok := s.decode(w, r, "recommendation")
	if !ok {
		return
	}
	s.Log.Debug("recommend", "season", in.Season, "crops", cannedCrops)
	w.Header().Set("X-Mock", "true")
	writeJSON(w, http.StatusOK, map[string]any{"crops": cannedCrops, "probs": cannedProbs})
}

func (s *Server) predictYield(w http.ResponseWriter, r *http.Request) {
	if _, ok := s.decode(w, r, "yield prediction"); !ok {
		return
	}
	s.mu.Lock()
	y := baseYield + s.rng.Float64()*yieldSpread
	s.mu.Unlock()
	w.Header().Set("X-Mock", "true")
	writeJSON(w, http.StatusOK, map[string]any{"yield": y})
}

func (s *Server) optimizeFertilizer(w http.ResponseWriter, r *http.Request) {
	in, ok := s.decode(w, r, "fertilizer optimization")
	if !ok {
		return
	}
	f := Deficits(in)

	text := TemplateAdvice(in, f)
	if s.Advisor != nil {
		if t, err := s.Advisor.FertilizerAdvice(r.Context(), in, f); err != nil {
			s.Log.Warn("llm advice failed, using template", "error", err)
		} else if t != "" {
			text = t
		}
	}

	writeJSON(w, http.StatusOK, map[string]any{
		fertNitrogen:          f.Nitrogen,
		fertPhos:              f.Phosphorus,
		fertPotash:            f.Potassium,
		"recommendation_text": text,
	})
}

type coords struct {
	Lat *float64 `json:"lat"`
	Lon *float64 `json:"lon"`
}

func (s *Server) weather(w http.ResponseWriter, r *http.Request) {
	var c coords
	if err := json.NewDecoder(r.Body).Decode(&c); err != nil || c.Lat == nil || c.Lon == nil {
		writeErr(w, fmt.Errorf("lat and lon are required"))
		return
	}
	if s.Weather == nil {
		writeErr(w, weather.ErrNoAPIKey)
		return
	}
	cond, err := s.Weather.Current(r.Context(), *c.Lat, *c.Lon)
	if err != nil {
		s.Log.Error("weather lookup failed", "lat", *c.Lat, "lon", *c.Lon, "error", err)
		writeErr(w, err)
		return
	}
	writeJSON(w, http.StatusOK, map[string]any{
		"temperature": cond.Temperature,
		"humidity":    cond.Humidity,
		"rainfall":    cond.Rainfall,
	})
}

func (s *Server) decode(w http.ResponseWriter, r *http.Request, what string) (farm.InputRecord, bool) {
	var in farm.InputRecord
	if err := json.NewDecoder(r.Body).Decode(&in); err != nil {
		s.Log.Error("error in "+what, "error", err)
		writeErr(w, fmt.Errorf("invalid input: %w", err))
		return in, false
	}
	if in.Season == "" {
		in.Season = farm.Kharif
	}
	return in, true
}

// Deficits: max(0, 100-x) per nutrient, nol bila tidak lebih dari 10, dibulatkan ke bawah.
func Deficits(in farm.InputRecord) farm.Fertilizer {
	d := func(x float64) float64 {
		v := math.Max(0, targetLevel-x)
		if v <= minDeficit {
			return 0
		}
		return math.Trunc(v)
	}
	return farm.Fertilizer{Nitrogen: d(in.N), Phosphorus: d(in.P), Potassium: d(in.K)}
}

// TemplateAdvice dipakai bila LLM tidak dikonfigurasi atau gagal.
func TemplateAdvice(in farm.InputRecord, f farm.Fertilizer) string {
	if f.Nitrogen == 0 && f.Phosphorus == 0 && f.Potassium == 0 {
		return fmt.Sprintf("Soil N-P-K levels (%.0f-%.0f-%.0f) are adequate at pH %.1f. "+
			"No additional fertilizer is needed this season; retest before the next sowing.",
			in.N, in.P, in.K, in.PH)
	}
	text := fmt.Sprintf("Based on soil N-P-K levels of %.0f-%.0f-%.0f and pH %.1f, apply %.0f kg/ha nitrogen, "+
		"%.0f kg/ha phosphorus and %.0f kg/ha potassium. Split nitrogen into two or three doses across the growing period.",
		in.N, in.P, in.K, in.PH, f.Nitrogen, f.Phosphorus, f.Potassium)
	switch {
	case in.PH < 5.5:
		text += " The soil is acidic; consider liming before application."
	case in.PH > 8:
		text += " The soil is alkaline; gypsum or organic matter can improve nutrient uptake."
	}
	return text
}

func writeJSON(w http.ResponseWriter, status int, v any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	json.NewEncoder(w).Encode(v)
}

func writeErr(w http.ResponseWriter, err error) {
	writeJSON(w, http.StatusInternalServerError, map[string]string{"error": err.Error()})
}

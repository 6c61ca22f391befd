// internal/render/render.go
// Tampilan hasil: peringkat tanaman, tren hasil bulanan, rekomendasi pupuk.
// Semua fungsi murni; input kosong/nil menghasilkan nil, bukan panic.
package render

import (
	"fmt"
	"math"
	"sort"

	"smart-farming/internal/farm"
)

const TopCrops = 5

const DefaultGuidance = "Based on your soil analysis and crop selection, we recommend a balanced approach to fertilization. " +
	"Apply nitrogen-rich fertilizers early in the growing season to promote vegetative growth. " +
	"Phosphorus should be incorporated into the soil before planting to support root development. " +
	"Potassium can be applied in split doses throughout the growing season to enhance crop quality and disease resistance."

type RankedCrop struct {
	Name        string  `json:"name"`
	Probability float64 `json:"probability"`
	Percent     int     `json:"percent"`
}

// RankCrops pairs crops with probabilities, sorts descending (stable) and keeps
// at most limit entries. Extra entries on the longer slice are ignored.
func RankCrops(crops []string, probs []float64, limit int) []RankedCrop {
	n := min(len(crops), len(probs))
	if n == 0 {
		return nil
	}
	out := make([]RankedCrop, 0, n)
	for i := 0; i < n; i++ {
		out = append(out, RankedCrop{Name: crops[i], Probability: probs[i], Percent: percent(probs[i])})
	}
	sort.SliceStable(out, func(i, j int) bool { return out[i].Probability > out[j].Probability })
	if limit > 0 && len(out) > limit {
		out = out[:limit]
	}
	return out
}

func percent(p float64) int {
	return int(math.Floor(p*100 + 0.5))
}

type MonthPoint struct {
	Month string  `json:"month"`
	Yield float64 `json:"yield"`
}

// seasonalShape is a fixed multiplier per month applied to the single yield
// scalar; the curve is illustrative, not a per-month prediction.
var seasonalShape = [12]struct {
	month string
	mult  float64
}{
	{"Jan", 0.2}, {"Feb", 0.3}, {"Mar", 0.5}, {"Apr", 0.7},
	{"May", 0.8}, {"Jun", 0.9}, {"Jul", 0.95}, {"Aug", 1},
	{"Sep", 0.9}, {"Oct", 0.7}, {"Nov", 0.4}, {"Dec", 0.3},
}

func YieldTrend(yield float64) []MonthPoint {
	out := make([]MonthPoint, 0, len(seasonalShape))
	for _, s := range seasonalShape {
		out = append(out, MonthPoint{Month: s.month, Yield: yield * s.mult})
	}
	return out
}

func FormatYield(yield float64) string {
	return fmt.Sprintf("%.2f", yield)
}

type FertilizerView struct {
	Nitrogen   float64 `json:"nitrogen"`
	Phosphorus float64 `json:"phosphorus"`
	Potassium  float64 `json:"potassium"`
	Total      float64 `json:"total"`
	Guidance   string  `json:"guidance"`
}

func Fertilizer(f farm.Fertilizer) FertilizerView {
	g := f.RecommendationText
	if g == "" {
		g = DefaultGuidance
	}
	return FertilizerView{
		Nitrogen:   f.Nitrogen,
		Phosphorus: f.Phosphorus,
		Potassium:  f.Potassium,
		Total:      f.Nitrogen + f.Phosphorus + f.Potassium,
		Guidance:   g,
	}
}

// ResultsView is everything the dashboard renders for one ResultsRecord.
type ResultsView struct {
	ID          string         `json:"id"`
	Crops       []RankedCrop   `json:"crops"`
	Yield       float64        `json:"yield"`
	YieldText   string         `json:"yield_text"`
	YieldTrend  []MonthPoint   `json:"yield_trend"`
	Fertilizer  FertilizerView `json:"fertilizer"`
	CompletedAt string         `json:"completed_at"`
}

func View(r *farm.ResultsRecord) *ResultsView {
	if r == nil {
		return nil
	}
	return &ResultsView{
		ID:          r.ID,
		Crops:       RankCrops(r.Crops, r.Probabilities, TopCrops),
		Yield:       r.PredictedYield,
		YieldText:   FormatYield(r.PredictedYield),
		YieldTrend:  YieldTrend(r.PredictedYield),
		Fertilizer:  Fertilizer(r.Fertilizer),
		CompletedAt: r.CompletedAt.UTC().Format("2006-01-02T15:04:05Z07:00"),
	}
}

package mockpredict

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"smart-farming/internal/farm"
	"smart-farming/internal/predict"
	"smart-farming/pkg/weather"
)

type advisorFunc func(context.Context, farm.InputRecord, farm.Fertilizer) (string, error)

func (f advisorFunc) FertilizerAdvice(ctx context.Context, in farm.InputRecord, fert farm.Fertilizer) (string, error) {
	return f(ctx, in, fert)
}

type conditionsFunc func(float64, float64) (weather.Conditions, error)

func (f conditionsFunc) Current(_ context.Context, lat, lon float64) (weather.Conditions, error) {
	return f(lat, lon)
}

func newPredictClient(t *testing.T, s *Server) *predict.Client {
	srv := httptest.NewServer(s.Routes())
	t.Cleanup(srv.Close)
	return predict.NewClient(predict.Endpoints{
		Recommend:  srv.URL + "/recommend",
		Yield:      srv.URL + "/predict_yield",
		Fertilizer: srv.URL + "/optimize_fertilizer",
	}, 5*time.Second)
}

func TestDeficits(t *testing.T) {
	cases := []struct {
		n, p, k float64
		wantN   float64
		wantP   float64
		wantK   float64
	}{
		{50, 50, 50, 50, 50, 50},
		{95, 90, 89, 0, 0, 11},
		{120, 0, 10.5, 0, 100, 89},
	}
	for _, c := range cases {
		got := Deficits(farm.InputRecord{N: c.n, P: c.p, K: c.k})
		assert.Equal(t, farm.Fertilizer{Nitrogen: c.wantN, Phosphorus: c.wantP, Potassium: c.wantK}, got)
	}
}

func TestTemplateAdvice(t *testing.T) {
	in := farm.DefaultInput()
	text := TemplateAdvice(in, Deficits(in))
	assert.Contains(t, text, "50-50-50")
	assert.Contains(t, text, "pH 6.5")

	in.N, in.P, in.K = 100, 100, 100
	assert.Contains(t, TemplateAdvice(in, Deficits(in)), "No additional fertilizer")

	in.PH = 4.8
	in.N = 10
	assert.Contains(t, TemplateAdvice(in, Deficits(in)), "acidic")
}

func TestPredictClientAgainstMock(t *testing.T) {
	c := newPredictClient(t, New(nil, nil, nil))
	ctx := context.Background()
	in := farm.DefaultInput()

	rec, err := c.Recommend(ctx, in)
	require.NoError(t, err)
	assert.Equal(t, cannedCrops, rec.Crops)
	assert.Equal(t, cannedProbs, rec.Probabilities)

	y, err := c.PredictYield(ctx, in)
	require.NoError(t, err)
	assert.GreaterOrEqual(t, y, baseYield)
	assert.Less(t, y, baseYield+yieldSpread)

	f, err := c.OptimizeFertilizer(ctx, in)
	require.NoError(t, err)
	assert.Equal(t, 50.0, f.Nitrogen)
	assert.Contains(t, f.RecommendationText, "apply 50 kg/ha nitrogen")
}

func TestAdvisorTextUsedAndFallsBack(t *testing.T) {
	calls := 0
	s := New(advisorFunc(func(context.Context, farm.InputRecord, farm.Fertilizer) (string, error) {
		calls++
		if calls == 1 {
			return "Use compost.", nil
		}
		return "", errors.New("quota")
	}), nil, nil)
	c := newPredictClient(t, s)

	f, err := c.OptimizeFertilizer(context.Background(), farm.DefaultInput())
	require.NoError(t, err)
	assert.Equal(t, "Use compost.", f.RecommendationText)

	f, err = c.OptimizeFertilizer(context.Background(), farm.DefaultInput())
	require.NoError(t, err)
	assert.Contains(t, f.RecommendationText, "N-P-K")
}

func TestBadBodyIsServerError(t *testing.T) {
	srv := httptest.NewServer(New(nil, nil, nil).Routes())
	defer srv.Close()

	resp, err := http.Post(srv.URL+"/recommend", "application/json", bytes.NewBufferString("{"))
	require.NoError(t, err)
	defer resp.Body.Close()
	assert.Equal(t, http.StatusInternalServerError, resp.StatusCode)

	var body map[string]string
	require.NoError(t, json.NewDecoder(resp.Body).Decode(&body))
	assert.Contains(t, body["error"], "invalid input")
}

func TestWeatherEndpoint(t *testing.T) {
	s := New(nil, conditionsFunc(func(lat, lon float64) (weather.Conditions, error) {
		if lat == 0 {
			return weather.Conditions{}, &weather.StatusError{Code: 400, Message: "wrong latitude"}
		}
		return weather.Conditions{Temperature: 27.3, Humidity: 81, Rainfall: 0.4}, nil
	}), nil)
	srv := httptest.NewServer(s.Routes())
	defer srv.Close()

	post := func(body string) (int, map[string]any) {
		resp, err := http.Post(srv.URL+"/weather", "application/json", bytes.NewBufferString(body))
		require.NoError(t, err)
		defer resp.Body.Close()
		var out map[string]any
		require.NoError(t, json.NewDecoder(resp.Body).Decode(&out))
		return resp.StatusCode, out
	}

	code, out := post(`{"lat":19.1,"lon":72.9}`)
	assert.Equal(t, http.StatusOK, code)
	assert.Equal(t, 27.3, out["temperature"])
	assert.Equal(t, 0.4, out["rainfall"])

	code, out = post(`{"lat":0,"lon":1}`)
	assert.Equal(t, http.StatusInternalServerError, code)
	assert.Contains(t, out["error"], "wrong latitude")

	code, _ = post(`{}`)
	assert.Equal(t, http.StatusInternalServerError, code)
}

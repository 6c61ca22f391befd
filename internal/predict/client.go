// internal/predict/client.go
// Client HTTP untuk tiga layanan analisis: rekomendasi tanaman, prediksi hasil,
// optimasi pupuk. Semua menerima InputRecord sebagai body JSON (POST).

package predict

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"time"

	"smart-farming/internal/farm"
	"smart-farming/internal/metrics"
)

// StatusError is a non-2xx reply from a prediction service.
type StatusError struct {
	Service string
	Code    int
	Message string
}

func (e *StatusError) Error() string {
	if e.Message == "" {
		return fmt.Sprintf("%s: status %d", e.Service, e.Code)
	}
	return fmt.Sprintf("%s: status %d: %s", e.Service, e.Code, e.Message)
}

type Endpoints struct {
	Recommend  string
	Yield      string
	Fertilizer string
}

type Client struct {
	Endpoints Endpoints
	HTTP      *http.Client
}

// NewClient; timeout <= 0 means the 30s default.
func NewClient(ep Endpoints, timeout time.Duration) *Client {
	if timeout <= 0 {
		timeout = 30 * time.Second
	}
	return &Client{
		Endpoints: ep,
		HTTP:      &http.Client{Timeout: timeout},
	}
}

type yieldResponse struct {
	Yield *float64 `json:"yield"`
}

type fertilizerResponse struct {
	Nitrogen           float64 `json:"Nitrogen (kg/ha)"`
	Phosphorus         float64 `json:"Phosphorus (kg/ha)"`
	Potassium          float64 `json:"Potassium (kg/ha)"`
	RecommendationText string  `json:"recommendation_text,omitempty"`
}

func (c *Client) Recommend(ctx context.Context, in farm.InputRecord) (farm.Recommendation, error) {
	var out farm.Recommendation
	if err := c.post(ctx, "recommend", c.Endpoints.Recommend, in, &out); err != nil {
		return farm.Recommendation{}, err
	}
	if err := out.Validate(); err != nil {
		return farm.Recommendation{}, fmt.Errorf("recommend: %w", err)
	}
	return out, nil
}

func (c *Client) PredictYield(ctx context.Context, in farm.InputRecord) (float64, error) {
	var out yieldResponse
	if err := c.post(ctx, "predict_yield", c.Endpoints.Yield, in, &out); err != nil {
		return 0, err
	}
	if out.Yield == nil {
		return 0, fmt.Errorf("predict_yield: response has no yield")
	}
	return *out.Yield, nil
}

func (c *Client) OptimizeFertilizer(ctx context.Context, in farm.InputRecord) (farm.Fertilizer, error) {
	var out fertilizerResponse
	if err := c.post(ctx, "optimize_fertilizer", c.Endpoints.Fertilizer, in, &out); err != nil {
		return farm.Fertilizer{}, err
	}
	return farm.Fertilizer{
		Nitrogen:           out.Nitrogen,
		Phosphorus:         out.Phosphorus,
		Potassium:          out.Potassium,
		RecommendationText: out.RecommendationText,
	}, nil
}

func (c *Client) post(ctx context.Context, service, url string, in farm.InputRecord, v any) (err error) {
	start := time.Now()
	defer func() { metrics.ObserveRemoteCall(service, start, err) }()

	body, err := json.Marshal(in)
	if err != nil {
		return fmt.Errorf("%s: marshal request: %w", service, err)
	}

	req, err := http.NewRequestWithContext(ctx, http.MethodPost, url, bytes.NewReader(body))
	if err != nil {
		return fmt.Errorf("%s: new request: %w", service, err)
	}
	req.Header.Set("Content-Type", "application/json")

	resp, err := c.HTTP.Do(req)
	if err != nil {
		return fmt.Errorf("%s: http do: %w", service, err)
	}
	defer resp.Body.Close()

	if resp.StatusCode < 200 || resp.StatusCode > 299 {
		b, _ := io.ReadAll(io.LimitReader(resp.Body, 4096))
		se := &StatusError{Service: service, Code: resp.StatusCode}
		var e struct {
			Error string `json:"error"`
		}
		if json.Unmarshal(b, &e) == nil && e.Error != "" {
			se.Message = e.Error
		} else {
			se.Message = string(bytes.TrimSpace(b))
		}
		return se
	}

	if err := json.NewDecoder(resp.Body).Decode(v); err != nil {
		return fmt.Errorf("%s: decode response: %w", service, err)
	}
	return nil
}

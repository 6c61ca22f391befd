// internal/app/routes_test.go

package app_test

import (
	"bytes"
	"context"
	"database/sql"
	"encoding/json"
	"net/http"
	"net/http/cookiejar"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	_ "modernc.org/sqlite"

	apppkg "smart-farming/internal/app"
	"smart-farming/internal/config"
	"smart-farming/internal/middleware"
	"smart-farming/internal/mockpredict"
	"smart-farming/internal/predict"
	"smart-farming/pkg/weather"
)

func testConfig() *config.Config {
	c := &config.Config{AppName: "smart-farming", AppEnv: "test", AllowedOrigin: "*"}
	c.Session.Secret = "session-secret"
	c.Session.TTL = time.Hour
	c.Session.CookieName = "farm_session"
	c.Admin.JWTSecret = "admin-secret"
	c.Admin.User = "admin"
	return c
}

// fakeOpenWeather melayani geocoding + current weather untuk satu tempat ("Nashik").
func fakeOpenWeather(t *testing.T) *httptest.Server {
	mux := http.NewServeMux()
	mux.HandleFunc("/geo/1.0/direct", func(w http.ResponseWriter, r *http.Request) {
		if r.URL.Query().Get("q") != "Nashik" {
			w.Write([]byte(`[]`))
			return
		}
		w.Write([]byte(`[{"name":"Nashik","country":"IN","lat":20.0,"lon":73.8}]`))
	})
	mux.HandleFunc("/geo/1.0/reverse", func(w http.ResponseWriter, r *http.Request) {
		w.Write([]byte(`[{"name":"Nashik","country":"IN","lat":20.0,"lon":73.8}]`))
	})
	mux.HandleFunc("/data/2.5/weather", func(w http.ResponseWriter, r *http.Request) {
		w.Write([]byte(`{"cod":200,"name":"Nashik","sys":{"country":"IN"},"main":{"temp":26.5,"humidity":58},"rain":{"1h":1.2}}`))
	})
	srv := httptest.NewServer(mux)
	t.Cleanup(srv.Close)
	return srv
}

func newTestApp(t *testing.T, db *sql.DB) *apppkg.App {
	t.Helper()
	predictor := httptest.NewServer(mockpredict.New(nil, nil, nil).Routes())
	t.Cleanup(predictor.Close)
	wx := fakeOpenWeather(t)

	a, err := apppkg.New(context.Background(), testConfig(), apppkg.Deps{
		Analyzer: predict.NewClient(predict.Endpoints{
			Recommend:  predictor.URL + "/recommend",
			Yield:      predictor.URL + "/predict_yield",
			Fertilizer: predictor.URL + "/optimize_fertilizer",
		}, 5*time.Second),
		Weather: weather.NewClient("test-key", wx.URL, 5*time.Second),
		DB:      db,
	})
	require.NoError(t, err)
	return a
}

// Pastikan /admin/* diproteksi (tanpa auth tidak boleh 200)
func TestAdminRoutesProtected(t *testing.T) {
	a := newTestApp(t, nil)

	req := httptest.NewRequest(http.MethodGet, "/admin/sessions", nil)
	rec := httptest.NewRecorder()
	a.Router.ServeHTTP(rec, req)
	assert.Equal(t, http.StatusUnauthorized, rec.Code)

	tok, _, err := middleware.GenerateAdminToken("admin-secret", "admin")
	require.NoError(t, err)
	req = httptest.NewRequest(http.MethodGet, "/admin/sessions", nil)
	req.Header.Set("Authorization", "Bearer "+tok)
	rec = httptest.NewRecorder()
	a.Router.ServeHTTP(rec, req)
	assert.Equal(t, http.StatusOK, rec.Code)
}

// Sanity check: public endpoints tetap 200
func TestPublicRoutesHealthy(t *testing.T) {
	a := newTestApp(t, nil)
	for _, path := range []string{"/healthz", "/readyz", "/metrics"} {
		rec := httptest.NewRecorder()
		a.Router.ServeHTTP(rec, httptest.NewRequest(http.MethodGet, path, nil))
		assert.Equal(t, http.StatusOK, rec.Code, path)
		assert.NotEmpty(t, rec.Header().Get("X-Request-ID"), path)
	}
}

func TestPreflight(t *testing.T) {
	a := newTestApp(t, nil)
	rec := httptest.NewRecorder()
	a.Router.ServeHTTP(rec, httptest.NewRequest(http.MethodOptions, "/api/dashboard/analyze", nil))
	assert.Equal(t, http.StatusNoContent, rec.Code)
	assert.Equal(t, "*", rec.Header().Get("Access-Control-Allow-Origin"))
}

type client struct {
	t    *testing.T
	base string
	http *http.Client
}

func (c *client) call(method, path string, body any, out any) int {
	c.t.Helper()
	var buf bytes.Buffer
	if body != nil {
		require.NoError(c.t, json.NewEncoder(&buf).Encode(body))
	}
	req, err := http.NewRequest(method, c.base+path, &buf)
	require.NoError(c.t, err)
	req.Header.Set("Content-Type", "application/json")
	resp, err := c.http.Do(req)
	require.NoError(c.t, err)
	defer resp.Body.Close()
	if out != nil {
		require.NoError(c.t, json.NewDecoder(resp.Body).Decode(out))
	}
	return resp.StatusCode
}

type snapshot struct {
	SessionID string `json:"session_id"`
	Input     struct {
		N           float64 `json:"N"`
		PH          float64 `json:"pH"`
		Temperature float64 `json:"temperature"`
		Humidity    float64 `json:"humidity"`
		Rainfall    float64 `json:"rainfall"`
		Season      string  `json:"season"`
	} `json:"input"`
	Busy    bool `json:"busy"`
	Weather *struct {
		Source   string `json:"source"`
		Location string `json:"location"`
	} `json:"weather"`
	Results *struct {
		Crops []struct {
			Name    string `json:"name"`
			Percent int    `json:"percent"`
		} `json:"crops"`
		YieldTrend []struct {
			Month string `json:"month"`
		} `json:"yield_trend"`
		Fertilizer struct {
			Nitrogen float64 `json:"nitrogen"`
			Total    float64 `json:"total"`
			Guidance string  `json:"guidance"`
		} `json:"fertilizer"`
	} `json:"results"`
}

func TestDashboardFlow(t *testing.T) {
	db, err := sql.Open("sqlite", ":memory:")
	require.NoError(t, err)
	db.SetMaxOpenConns(1)
	defer db.Close()

	a := newTestApp(t, db)
	srv := httptest.NewServer(a.Router)
	defer srv.Close()

	jar, err := cookiejar.New(nil)
	require.NoError(t, err)
	c := &client{t: t, base: srv.URL, http: &http.Client{Jar: jar}}

	var snap snapshot
	require.Equal(t, http.StatusOK, c.call(http.MethodGet, "/api/dashboard", nil, &snap))
	sid := snap.SessionID
	require.NotEmpty(t, sid)
	assert.Equal(t, 50.0, snap.Input.N)
	assert.Equal(t, "kharif", snap.Input.Season)
	assert.Nil(t, snap.Results)
	assert.Nil(t, snap.Weather)

	// deteksi posisi perangkat
	require.Equal(t, http.StatusOK, c.call(http.MethodPost, "/api/dashboard/weather/detect",
		map[string]float64{"lat": 20.0, "lon": 73.8}, nil))

	// edit satu field
	require.Equal(t, http.StatusOK, c.call(http.MethodPatch, "/api/dashboard/input",
		map[string]string{"field": "N", "value": "30"}, nil))
	assert.Equal(t, http.StatusBadRequest, c.call(http.MethodPatch, "/api/dashboard/input",
		map[string]string{"field": "colour", "value": "red"}, nil))

	// tempat tidak dikenal: lingkungan tidak berubah karena lokasi sudah ada
	var placeResp map[string]any
	assert.Equal(t, http.StatusNotFound, c.call(http.MethodPost, "/api/dashboard/weather/place",
		map[string]string{"name": "Atlantis"}, &placeResp))
	assert.Equal(t, "Location not found", placeResp["error"])

	require.Equal(t, http.StatusOK, c.call(http.MethodGet, "/api/dashboard", nil, &snap))
	assert.Equal(t, sid, snap.SessionID, "cookie keeps the session")
	assert.Equal(t, 27.0, snap.Input.Temperature)
	assert.Equal(t, 58.0, snap.Input.Humidity)
	assert.Equal(t, 1.2, snap.Input.Rainfall)
	assert.Equal(t, 30.0, snap.Input.N)
	require.NotNil(t, snap.Weather)
	assert.Equal(t, "live", snap.Weather.Source)
	assert.Equal(t, "Nashik, IN", snap.Weather.Location)

	// submit
	require.Equal(t, http.StatusOK, c.call(http.MethodPost, "/api/dashboard/analyze", nil, nil))
	snap = snapshot{}
	require.Equal(t, http.StatusOK, c.call(http.MethodGet, "/api/dashboard", nil, &snap))
	require.NotNil(t, snap.Results)
	require.Len(t, snap.Results.Crops, 5)
	assert.Equal(t, "Rice", snap.Results.Crops[0].Name)
	assert.Equal(t, 87, snap.Results.Crops[0].Percent)
	assert.Len(t, snap.Results.YieldTrend, 12)
	assert.Equal(t, 70.0, snap.Results.Fertilizer.Nitrogen)
	assert.Equal(t, 170.0, snap.Results.Fertilizer.Total)
	assert.NotEmpty(t, snap.Results.Fertilizer.Guidance)

	var notes struct {
		Notifications []struct {
			Title string `json:"title"`
		} `json:"notifications"`
	}
	require.Equal(t, http.StatusOK, c.call(http.MethodGet, "/api/dashboard/notifications", nil, &notes))
	var titles []string
	for _, n := range notes.Notifications {
		titles = append(titles, n.Title)
	}
	assert.Contains(t, titles, "Analysis Complete")
	assert.Contains(t, titles, "Error")

	// log audit terisi
	tok, _, err := middleware.GenerateAdminToken("admin-secret", "admin")
	require.NoError(t, err)
	req, _ := http.NewRequest(http.MethodGet, srv.URL+"/admin/analyses", nil)
	req.Header.Set("Authorization", "Bearer "+tok)
	resp, err := http.DefaultClient.Do(req)
	require.NoError(t, err)
	defer resp.Body.Close()
	var analyses struct {
		Analyses []struct {
			SessionID string `json:"session_id"`
			TopCrop   string `json:"top_crop"`
		} `json:"analyses"`
	}
	require.NoError(t, json.NewDecoder(resp.Body).Decode(&analyses))
	require.Len(t, analyses.Analyses, 1)
	assert.Equal(t, sid, analyses.Analyses[0].SessionID)
	assert.Equal(t, "Rice", analyses.Analyses[0].TopCrop)
}

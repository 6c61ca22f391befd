// internal/handlers/http/dashboard_handler.go
// Endpoint dashboard per sesi: snapshot, edit form, submit analisis, cuaca,
// dan feed notifikasi (list + SSE).
package http

import (
	"log/slog"
	"net/http"
	"strings"
	"time"

	"smart-farming/internal/dashboard"
	"smart-farming/internal/farm"
	"smart-farming/internal/middleware"
	"smart-farming/internal/render"
	"smart-farming/internal/util"
	"smart-farming/internal/util/sse"
)

type DashboardHandler struct {
	Sessions  *dashboard.Sessions
	Log       *slog.Logger
	PingEvery time.Duration // keep-alive SSE, default 15s
}

func (h *DashboardHandler) store(r *http.Request) *dashboard.Store {
	return h.Sessions.GetOrCreate(middleware.SessionIDFrom(r.Context()))
}

func (h *DashboardHandler) logger(r *http.Request) *slog.Logger {
	l := h.Log
	if l == nil {
		l = slog.Default()
	}
	return l.With("request_id", middleware.RequestIDFrom(r.Context()))
}

// GET /api/dashboard
func (h *DashboardHandler) Snapshot(w http.ResponseWriter, r *http.Request) {
	writeJSON(w, http.StatusOK, h.store(r).Snapshot())
}

// GET /api/dashboard/fields
func (h *DashboardHandler) Fields(w http.ResponseWriter, r *http.Request) {
	writeJSON(w, http.StatusOK, map[string]any{"fields": farm.FieldSpecs()})
}

type fieldReq struct {
	Field string `json:"field"`
	Value string `json:"value"`
}

// PATCH /api/dashboard/input
func (h *DashboardHandler) PatchInput(w http.ResponseWriter, r *http.Request) {
	var in fieldReq
	if err := decodeJSON(r, &in); err != nil {
		writeError(w, err)
		return
	}
	rec, err := h.store(r).SetField(strings.TrimSpace(in.Field), in.Value)
	if err != nil {
		writeError(w, err)
		return
	}
	writeJSON(w, http.StatusOK, map[string]any{"input": rec})
}

// POST /api/dashboard/analyze
func (h *DashboardHandler) Analyze(w http.ResponseWriter, r *http.Request) {
	st := h.store(r)
	res, err := st.Submit(r.Context())
	if err != nil {
		h.logger(r).Warn("analyze rejected", "session", st.ID(), "error", err)
		writeError(w, err)
		return
	}
	writeJSON(w, http.StatusOK, map[string]any{"results": render.View(res)})
}

type detectReq struct {
	Lat *float64 `json:"lat"`
	Lon *float64 `json:"lon"`
}

// POST /api/dashboard/weather/detect
// Body tanpa lat/lon berarti posisi perangkat tidak tersedia.
func (h *DashboardHandler) DetectWeather(w http.ResponseWriter, r *http.Request) {
	var in detectReq
	if err := decodeJSON(r, &in); err != nil {
		writeError(w, err)
		return
	}
	var pos *dashboard.Coordinates
	if in.Lat != nil && in.Lon != nil {
		pos = &dashboard.Coordinates{Lat: *in.Lat, Lon: *in.Lon}
	}
	st := h.store(r)
	reading, err := st.Weather().Detect(r.Context(), pos)
	if err != nil {
		writeError(w, err)
		return
	}
	writeJSON(w, http.StatusOK, map[string]any{"weather": reading, "input": st.Input()})
}

type placeReq struct {
	Name string `json:"name"`
}

// POST /api/dashboard/weather/place
// Saat gagal, body tetap membawa reading yang sedang berlaku.
func (h *DashboardHandler) LookupPlace(w http.ResponseWriter, r *http.Request) {
	var in placeReq
	if err := decodeJSON(r, &in); err != nil {
		writeError(w, err)
		return
	}
	st := h.store(r)
	reading, err := st.Weather().LookupPlace(r.Context(), in.Name)
	if err != nil {
		writeJSON(w, util.HTTPStatus(err), map[string]any{
			"error":   util.Message(err),
			"weather": reading,
			"input":   st.Input(),
		})
		return
	}
	writeJSON(w, http.StatusOK, map[string]any{"weather": reading, "input": st.Input()})
}

// GET /api/dashboard/notifications?since=RFC3339
func (h *DashboardHandler) Notifications(w http.ResponseWriter, r *http.Request) {
	var since time.Time
	if v := r.URL.Query().Get("since"); v != "" {
		t, err := time.Parse(time.RFC3339Nano, v)
		if err != nil {
			writeError(w, util.BadInput("since must be RFC3339"))
			return
		}
		since = t
	}
	writeJSON(w, http.StatusOK, map[string]any{"notifications": h.store(r).Notifier().List(since)})
}

// GET /api/dashboard/events (SSE)
func (h *DashboardHandler) Events(w http.ResponseWriter, r *http.Request) {
	flusher, ok := sse.Prepare(w)
	if !ok {
		http.Error(w, "stream unsupported", http.StatusInternalServerError)
		return
	}
	st := h.store(r)
	events, cancel := st.Notifier().Subscribe()
	defer cancel()

	every := h.PingEvery
	if every <= 0 {
		every = 15 * time.Second
	}
	ping := time.NewTicker(every)
	defer ping.Stop()

	// state awal supaya klien tidak perlu polling snapshot
	busy, wxBusy := st.Busy(), st.Weather().Busy()
	if err := sse.WriteEvent(w, flusher, "state", "", dashboard.Event{Type: "state", Busy: &busy, WeatherBusy: &wxBusy}); err != nil {
		return
	}

	for {
		select {
		case <-r.Context().Done():
			return
		case <-ping.C:
			if err := sse.Ping(w, flusher); err != nil {
				return
			}
		case ev, ok := <-events:
			if !ok {
				return
			}
			id := ""
			if ev.Notification != nil {
				id = ev.Notification.ID
			}
			if err := sse.WriteEvent(w, flusher, ev.Type, id, ev); err != nil {
				h.logger(r).Debug("sse write failed", "error", err)
				return
			}
		}
	}
}

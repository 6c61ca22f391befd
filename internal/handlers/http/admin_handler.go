// internal/handlers/http/admin_handler.go
package http

import (
	"context"
	"net/http"
	"strconv"

	"github.com/gorilla/mux"

	"smart-farming/internal/dashboard"
	mysqlrepo "smart-farming/internal/repositories/mysql"
	"smart-farming/internal/util"
)

type AnalysisLister interface {
	ListRecent(ctx context.Context, limit int) ([]mysqlrepo.Analysis, error)
}

type AdminHandler struct {
	Sessions *dashboard.Sessions
	Analyses AnalysisLister // nil bila DB tidak dikonfigurasi
}

func (h *AdminHandler) ListSessions(w http.ResponseWriter, r *http.Request) {
	list := h.Sessions.List()
	writeJSON(w, http.StatusOK, map[string]any{"sessions": list, "count": len(list)})
}

func (h *AdminHandler) DeleteSession(w http.ResponseWriter, r *http.Request) {
	id := mux.Vars(r)["id"]
	if !h.Sessions.Delete(id) {
		writeError(w, util.NotFound("session not found"))
		return
	}
	w.WriteHeader(http.StatusNoContent)
}

func (h *AdminHandler) ListAnalyses(w http.ResponseWriter, r *http.Request) {
	if h.Analyses == nil {
		writeError(w, util.NotFound("analysis log is not configured"))
		return
	}
	limit, _ := strconv.Atoi(r.URL.Query().Get("limit"))
	items, err := h.Analyses.ListRecent(r.Context(), limit)
	if err != nil {
		writeError(w, err)
		return
	}
	writeJSON(w, http.StatusOK, map[string]any{"analyses": items})
}

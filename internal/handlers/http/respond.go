// internal/handlers/http/respond.go
package http

import (
	"encoding/json"
	"errors"
	"io"
	"log/slog"
	"net/http"

	"smart-farming/internal/util"
)

type errorResp struct {
	Error string `json:"error"`
	Code  string `json:"code,omitempty"`
}

func writeJSON(w http.ResponseWriter, status int, v any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	if err := json.NewEncoder(w).Encode(v); err != nil {
		slog.Debug("write response failed", "error", err)
	}
}

// writeError memetakan AppError ke status HTTP; error lain jadi 500 tanpa detail.
func writeError(w http.ResponseWriter, err error) {
	var ae util.AppError
	code := "internal"
	if errors.As(err, &ae) {
		code = ae.Code
	}
	writeJSON(w, util.HTTPStatus(err), errorResp{Error: util.Message(err), Code: code})
}

// decodeJSON membaca body JSON kecil; body kosong dibiarkan (v tetap zero value).
func decodeJSON(r *http.Request, v any) error {
	dec := json.NewDecoder(io.LimitReader(r.Body, 64<<10))
	if err := dec.Decode(v); err != nil && !errors.Is(err, io.EOF) {
		return util.BadInput("invalid JSON body")
	}
	return nil
}

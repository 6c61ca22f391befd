// [FILE] internal/util/sse/sse.go
// Helper util untuk menulis SSE (notifikasi dashboard) secara aman.

package sse

import (
	"encoding/json"
	"fmt"
	"net/http"
)

// Prepare memasang header SSE + no-cache. ok=false jika writer tidak bisa di-flush.
func Prepare(w http.ResponseWriter) (http.Flusher, bool) {
	h := w.Header()
	h.Set("Content-Type", "text/event-stream")
	h.Set("Cache-Control", "no-cache")
	h.Set("Connection", "keep-alive")
	h.Set("X-Accel-Buffering", "no") // Nginx: disable buffering
	flusher, ok := w.(http.Flusher)
	return flusher, ok
}

// WriteEvent menulis satu event. String dikirim apa adanya, selain itu di-encode JSON.
func WriteEvent(w http.ResponseWriter, flusher http.Flusher, event, id string, v any) error {
	var payload string
	switch data := v.(type) {
	case string:
		payload = data
	default:
		b, err := json.Marshal(v)
		if err != nil {
			return err
		}
		payload = string(b)
	}
	if id != "" {
		if _, err := fmt.Fprintf(w, "id: %s\n", id); err != nil {
			return err
		}
	}
	if event != "" {
		if _, err := fmt.Fprintf(w, "event: %s\n", event); err != nil {
			return err
		}
	}
	if _, err := fmt.Fprintf(w, "data: %s\n\n", payload); err != nil {
		return err
	}
	if flusher != nil {
		flusher.Flush()
	}
	return nil
}

// Ping menulis komentar keep-alive supaya proxy tidak menutup koneksi idle.
func Ping(w http.ResponseWriter, flusher http.Flusher) error {
	if _, err := fmt.Fprint(w, ": ping\n\n"); err != nil {
		return err
	}
	if flusher != nil {
		flusher.Flush()
	}
	return nil
}

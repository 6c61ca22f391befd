// internal/dashboard/sessions.go
// Registri sesi dashboard: id sesi -> *Store, thread-safe, in-memory saja.

package dashboard

import (
	"context"
	"sort"
	"sync"
	"time"

	"smart-farming/internal/metrics"
)

// Sessions menyimpan peta id sesi -> Store. State hilang saat sesi kedaluwarsa
// atau proses restart.
type Sessions struct {
	deps Deps
	ttl  time.Duration

	mu   sync.RWMutex
	data map[string]*Store
}

func NewSessions(deps Deps, ttl time.Duration) *Sessions {
	return &Sessions{
		deps: deps.withDefaults(),
		ttl:  ttl,
		data: make(map[string]*Store),
	}
}

// Get mengambil Store berdasarkan id sesi dan memperbarui waktu akses terakhir.
func (s *Sessions) Get(id string) (*Store, bool) {
	s.mu.RLock()
	st, ok := s.data[id]
	s.mu.RUnlock()
	if ok {
		st.touch()
	}
	return st, ok
}

// GetOrCreate mengembalikan Store untuk id; dibuat baru jika belum ada.
func (s *Sessions) GetOrCreate(id string) *Store {
	if st, ok := s.Get(id); ok {
		return st
	}
	s.mu.Lock()
	defer s.mu.Unlock()
	if st, ok := s.data[id]; ok {
		return st
	}
	st := NewStore(id, s.deps)
	s.data[id] = st
	metrics.Sessions.Set(float64(len(s.data)))
	return st
}

func (s *Sessions) Delete(id string) bool {
	s.mu.Lock()
	defer s.mu.Unlock()
	if _, ok := s.data[id]; !ok {
		return false
	}
	delete(s.data, id)
	metrics.Sessions.Set(float64(len(s.data)))
	return true
}

type SessionInfo struct {
	ID       string    `json:"id"`
	LastSeen time.Time `json:"last_seen"`
	Busy     bool      `json:"busy"`
}

// List returns session summaries, most recently seen first.
func (s *Sessions) List() []SessionInfo {
	s.mu.RLock()
	out := make([]SessionInfo, 0, len(s.data))
	for id, st := range s.data {
		seen, busy := st.idleSince()
		out = append(out, SessionInfo{ID: id, LastSeen: seen, Busy: busy})
	}
	s.mu.RUnlock()
	sort.Slice(out, func(i, j int) bool { return out[i].LastSeen.After(out[j].LastSeen) })
	return out
}

func (s *Sessions) Len() int {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return len(s.data)
}

// Sweep removes sessions idle longer than the TTL. Busy sessions are kept.
func (s *Sessions) Sweep() int {
	if s.ttl <= 0 {
		return 0
	}
	cutoff := s.deps.Clock.Now().Add(-s.ttl)

	s.mu.Lock()
	defer s.mu.Unlock()
	n := 0
	for id, st := range s.data {
		seen, busy := st.idleSince()
		if !busy && seen.Before(cutoff) {
			delete(s.data, id)
			n++
		}
	}
	metrics.Sessions.Set(float64(len(s.data)))
	return n
}

// Run sweeps periodically until ctx is done.
func (s *Sessions) Run(ctx context.Context, every time.Duration) {
	t := time.NewTicker(every)
	defer t.Stop()
	for {
		select {
		case <-ctx.Done():
			return
		case <-t.C:
			if n := s.Sweep(); n > 0 {
				s.deps.Logger.Info("expired dashboard sessions", "count", n)
			}
		}
	}
}

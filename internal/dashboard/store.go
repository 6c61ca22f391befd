// internal/dashboard/store.go
// Store menampung state satu sesi dashboard (input, hasil, busy flag) sebagai
// satu-satunya sumber kebenaran, dengan entry point mutasi yang eksplisit.
package dashboard

import (
	"context"
	"log/slog"
	"sync"
	"time"

	"golang.org/x/sync/errgroup"

	"smart-farming/internal/farm"
	"smart-farming/internal/metrics"
	"smart-farming/internal/render"
	"smart-farming/internal/util"
	"smart-farming/pkg/weather"
)

const (
	msgAnalysisDone   = "Your farming recommendations are now available."
	msgAnalysisFailed = "Could not retrieve farming recommendations. Please try again."
)

// Analyzer is the remote analysis surface (see internal/predict).
type Analyzer interface {
	Recommend(ctx context.Context, in farm.InputRecord) (farm.Recommendation, error)
	PredictYield(ctx context.Context, in farm.InputRecord) (float64, error)
	OptimizeFertilizer(ctx context.Context, in farm.InputRecord) (farm.Fertilizer, error)
}

// Recorder receives every successful analysis (audit only, never read back).
type Recorder interface {
	Record(ctx context.Context, sessionID string, in farm.InputRecord, r *farm.ResultsRecord) error
}

type Deps struct {
	Analyzer Analyzer
	Weather  WeatherSource
	Fallback *weather.Fallback
	Recorder Recorder // opsional
	Clock    util.Clock
	Logger   *slog.Logger
}

func (d Deps) withDefaults() Deps {
	if d.Clock == nil {
		d.Clock = util.RealClock{}
	}
	if d.Logger == nil {
		d.Logger = slog.Default()
	}
	if d.Fallback == nil {
		d.Fallback = weather.NewFallback()
	}
	return d
}

type Store struct {
	id    string
	deps  Deps
	log   *slog.Logger
	notes *Notifier
	wx    *Acquirer

	mu       sync.Mutex
	input    farm.InputRecord
	results  *farm.ResultsRecord
	busy     bool
	lastSeen time.Time
}

func NewStore(id string, deps Deps) *Store {
	deps = deps.withDefaults()
	s := &Store{
		id:       id,
		deps:     deps,
		log:      deps.Logger.With("session", id),
		notes:    NewNotifier(deps.Clock),
		input:    farm.DefaultInput(),
		lastSeen: deps.Clock.Now(),
	}
	s.wx = &Acquirer{
		src:      deps.Weather,
		fallback: deps.Fallback,
		clock:    deps.Clock,
		log:      s.log.With("component", "weather"),
		publish:  s.MergeWeather,
		notes:    s.notes,
		onState:  s.broadcastState,
	}
	return s
}

func (s *Store) ID() string          { return s.id }
func (s *Store) Notifier() *Notifier { return s.notes }
func (s *Store) Weather() *Acquirer  { return s.wx }

func (s *Store) Input() farm.InputRecord {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.input
}

func (s *Store) Results() *farm.ResultsRecord {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.results.Clone()
}

func (s *Store) Busy() bool {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.busy
}

// SetField replaces exactly one InputRecord field (see farm.ApplyField).
func (s *Store) SetField(field, raw string) (farm.InputRecord, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	next, err := farm.ApplyField(s.input, field, raw)
	if err != nil {
		return s.input, err
	}
	s.input = next
	return next, nil
}

// MergeWeather overwrites the environmental fields with the reading.
func (s *Store) MergeWeather(r farm.WeatherReading) {
	s.mu.Lock()
	s.input = farm.MergeWeather(s.input, r)
	s.mu.Unlock()
}

func (s *Store) touch() {
	now := s.deps.Clock.Now()
	s.mu.Lock()
	s.lastSeen = now
	s.mu.Unlock()
}

func (s *Store) idleSince() (time.Time, bool) {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.lastSeen, s.busy
}

// Snapshot is the rendered view of a session. Results is nil while busy so the
// busy indicator and the results never show together.
type Snapshot struct {
	SessionID   string               `json:"session_id"`
	Input       farm.InputRecord     `json:"input"`
	Busy        bool                 `json:"busy"`
	Weather     *farm.WeatherReading `json:"weather"`
	WeatherBusy bool                 `json:"weather_busy"`
	Location    string               `json:"location,omitempty"`
	Results     *render.ResultsView  `json:"results"`
}

func (s *Store) Snapshot() Snapshot {
	s.mu.Lock()
	snap := Snapshot{
		SessionID: s.id,
		Input:     s.input,
		Busy:      s.busy,
	}
	if !s.busy {
		snap.Results = render.View(s.results)
	}
	s.mu.Unlock()

	snap.Weather = s.wx.Current()
	snap.WeatherBusy = s.wx.Busy()
	snap.Location = s.wx.Location()
	return snap
}

func (s *Store) broadcastState() {
	s.notes.State(s.Busy(), s.wx.Busy())
}

// Submit runs the three analyses concurrently over a snapshot of the input.
// Results are replaced only when all three succeed; busy is cleared on every
// path. A second Submit while one is running is rejected.
func (s *Store) Submit(ctx context.Context) (*farm.ResultsRecord, error) {
	// lepas dari pembatalan request HTTP; batas waktu ada di transport client
	ctx = context.WithoutCancel(ctx)

	in, results, err := s.analyze(ctx)
	if err != nil {
		return nil, err
	}

	if s.deps.Recorder != nil {
		if err := s.deps.Recorder.Record(ctx, s.id, in, results.Clone()); err != nil {
			s.log.Warn("record analysis failed", "results_id", results.ID, "error", err)
		}
	}
	return results.Clone(), nil
}

func (s *Store) analyze(ctx context.Context) (farm.InputRecord, *farm.ResultsRecord, error) {
	s.mu.Lock()
	if s.busy {
		s.mu.Unlock()
		metrics.Submissions.WithLabelValues("rejected").Inc()
		return farm.InputRecord{}, nil, util.Conflict("analysis already running")
	}
	s.busy = true
	in := s.input
	s.mu.Unlock()

	metrics.InFlight.Inc()
	s.broadcastState()
	defer func() {
		s.mu.Lock()
		s.busy = false
		s.mu.Unlock()
		metrics.InFlight.Dec()
		s.broadcastState()
	}()

	var (
		rec  farm.Recommendation
		yld  float64
		fert farm.Fertilizer
		g    errgroup.Group
	)
	g.Go(func() (err error) {
		rec, err = s.deps.Analyzer.Recommend(ctx, in)
		return err
	})
	g.Go(func() (err error) {
		yld, err = s.deps.Analyzer.PredictYield(ctx, in)
		return err
	})
	g.Go(func() (err error) {
		fert, err = s.deps.Analyzer.OptimizeFertilizer(ctx, in)
		return err
	})

	if err := g.Wait(); err != nil {
		s.log.Error("analysis failed", "error", err)
		metrics.Submissions.WithLabelValues("failed").Inc()
		s.notes.Notify("Error", msgAnalysisFailed, VariantDestructive)
		return in, nil, util.Upstream(msgAnalysisFailed)
	}

	results := &farm.ResultsRecord{
		ID:             util.NewID(),
		Crops:          rec.Crops,
		Probabilities:  rec.Probabilities,
		PredictedYield: yld,
		Fertilizer:     fert,
		CompletedAt:    s.deps.Clock.Now(),
	}

	s.mu.Lock()
	s.results = results
	s.mu.Unlock()

	metrics.Submissions.WithLabelValues("ok").Inc()
	s.log.Info("analysis complete", "results_id", results.ID, "crops", len(results.Crops), "yield", yld)
	s.notes.Notify("Analysis Complete", msgAnalysisDone, VariantDefault)
	return in, results, nil
}

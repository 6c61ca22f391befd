// repositories/mysql/analysis_repo.go
// Log audit analisis yang berhasil (append-only, tidak pernah dibaca balik ke sesi)

package mysql

import (
	"context"
	"database/sql"
	"encoding/json"
	"fmt"
	"time"

	"smart-farming/internal/farm"
)

const analysisSchema = `CREATE TABLE IF NOT EXISTS farm_analyses (
	id              VARCHAR(64) PRIMARY KEY,
	session_id      VARCHAR(64) NOT NULL,
	input_json      TEXT NOT NULL,
	crops_json      TEXT NOT NULL,
	predicted_yield DOUBLE NOT NULL,
	nitrogen        DOUBLE NOT NULL,
	phosphorus      DOUBLE NOT NULL,
	potassium       DOUBLE NOT NULL,
	top_crop        VARCHAR(128) NOT NULL,
	created_at      BIGINT NOT NULL
)`

type Analysis struct {
	ID             string           `json:"id"`
	SessionID      string           `json:"session_id"`
	Input          farm.InputRecord `json:"input"`
	Crops          []string         `json:"crops"`
	TopCrop        string           `json:"top_crop"`
	PredictedYield float64          `json:"predicted_yield"`
	Nitrogen       float64          `json:"nitrogen"`
	Phosphorus     float64          `json:"phosphorus"`
	Potassium      float64          `json:"potassium"`
	CreatedAt      time.Time        `json:"created_at"`
}

type AnalysisRepo struct{ DB *sql.DB }

func (r *AnalysisRepo) EnsureSchema(ctx context.Context) error {
	ctx, cancel := withTimeout(ctx, 10*time.Second)
	defer cancel()
	if _, err := r.DB.ExecContext(ctx, analysisSchema); err != nil {
		return fmt.Errorf("ensure farm_analyses: %w", err)
	}
	return nil
}

// Record implements dashboard.Recorder.
func (r *AnalysisRepo) Record(ctx context.Context, sessionID string, in farm.InputRecord, res *farm.ResultsRecord) error {
	if res == nil {
		return nil
	}
	inJSON, err := json.Marshal(in)
	if err != nil {
		return err
	}
	cropsJSON, err := json.Marshal(res.Crops)
	if err != nil {
		return err
	}
	top := ""
	if best := topCrop(res.Crops, res.Probabilities); best >= 0 {
		top = res.Crops[best]
	}

	ctx, cancel := withTimeout(ctx, 5*time.Second)
	defer cancel()
	q := `INSERT INTO farm_analyses
		(id, session_id, input_json, crops_json, predicted_yield, nitrogen, phosphorus, potassium, top_crop, created_at)
		VALUES (` + placeholders(10) + `)`
	_, err = r.DB.ExecContext(ctx, q,
		res.ID, sessionID, string(inJSON), string(cropsJSON), res.PredictedYield,
		res.Fertilizer.Nitrogen, res.Fertilizer.Phosphorus, res.Fertilizer.Potassium,
		top, res.CompletedAt.UnixMilli(),
	)
	if err != nil {
		return fmt.Errorf("insert farm_analyses: %w", err)
	}
	return nil
}

// ListRecent returns the newest analyses first. limit is clamped to 1..200.
func (r *AnalysisRepo) ListRecent(ctx context.Context, limit int) ([]Analysis, error) {
	if limit <= 0 || limit > 200 {
		limit = 50
	}
	ctx, cancel := withTimeout(ctx, 5*time.Second)
	defer cancel()

	rows, err := r.DB.QueryContext(ctx, `
		SELECT id, session_id, input_json, crops_json, predicted_yield,
		       nitrogen, phosphorus, potassium, top_crop, created_at
		FROM farm_analyses
		ORDER BY created_at DESC, id
		LIMIT ?`, limit)
	if err != nil {
		return nil, fmt.Errorf("query farm_analyses: %w", err)
	}
	defer rows.Close()

	out := make([]Analysis, 0, limit)
	for rows.Next() {
		var (
			a                 Analysis
			inJSON, cropsJSON string
			createdMs         int64
		)
		if err := rows.Scan(&a.ID, &a.SessionID, &inJSON, &cropsJSON, &a.PredictedYield,
			&a.Nitrogen, &a.Phosphorus, &a.Potassium, &a.TopCrop, &createdMs); err != nil {
			return nil, err
		}
		if err := json.Unmarshal([]byte(inJSON), &a.Input); err != nil {
			return nil, fmt.Errorf("decode input_json %s: %w", a.ID, err)
		}
		if err := json.Unmarshal([]byte(cropsJSON), &a.Crops); err != nil {
			return nil, fmt.Errorf("decode crops_json %s: %w", a.ID, err)
		}
		a.CreatedAt = time.UnixMilli(createdMs).UTC()
		out = append(out, a)
	}
	return out, rows.Err()
}

func topCrop(crops []string, probs []float64) int {
	best := -1
	for i := range crops {
		if i >= len(probs) {
			break
		}
		if best < 0 || probs[i] > probs[best] {
			best = i
		}
	}
	return best
}

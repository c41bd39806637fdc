package metrics

import (
	"context"
	"database/sql"
	"fmt"
	"time"
)

// GenerationRun records the outcome of a single menu generation.
type GenerationRun struct {
	PriceSource  string
	Success      bool
	NumDays      int
	RecycledDays int
	TotalCost    float64
	Latency      time.Duration
	Timestamp    time.Time
}

// Store handles persistence of generation runs to SQLite.
type Store struct {
	db *sql.DB
}

// NewStore initializes the Store with an existing database connection.
func NewStore(db *sql.DB) *Store {
	return &Store{db: db}
}

// Record saves a run to the database.
func (s *Store) Record(ctx context.Context, r GenerationRun) error {
	ts := r.Timestamp
	if ts.IsZero() {
		ts = time.Now()
	}

	_, err := s.db.ExecContext(ctx, `
		INSERT INTO generation_runs (price_source, success, num_days, recycled_days, total_cost, latency_ms, timestamp)
		VALUES (?, ?, ?, ?, ?, ?, ?)`,
		r.PriceSource, r.Success, r.NumDays, r.RecycledDays, r.TotalCost, r.Latency.Milliseconds(), ts.UTC())
	if err != nil {
		return fmt.Errorf("failed to record generation run: %w", err)
	}
	return nil
}

// DailyRuns summarizes the runs of a single day.
type DailyRuns struct {
	Date         string
	Total        int
	Succeeded    int
	AvgLatencyMS int64
	AvgCost      float64
}

// GetDailyRuns retrieves per-day run totals for the last N days, newest first.
func (s *Store) GetDailyRuns(ctx context.Context, days int) ([]DailyRuns, error) {
	since := time.Now().UTC().AddDate(0, 0, -days)
	rows, err := s.db.QueryContext(ctx, `
		SELECT substr(timestamp, 1, 10) AS day,
		       COUNT(*),
		       SUM(CASE WHEN success THEN 1 ELSE 0 END),
		       AVG(latency_ms),
		       AVG(CASE WHEN success THEN total_cost END)
		FROM generation_runs
		WHERE timestamp >= ?
		GROUP BY day
		ORDER BY day DESC`, since)
	if err != nil {
		return nil, fmt.Errorf("failed to query daily runs: %w", err)
	}
	defer rows.Close()

	var results []DailyRuns
	for rows.Next() {
		var d DailyRuns
		var latency, cost sql.NullFloat64
		if err := rows.Scan(&d.Date, &d.Total, &d.Succeeded, &latency, &cost); err != nil {
			return nil, fmt.Errorf("failed to scan daily runs: %w", err)
		}
		if latency.Valid {
			d.AvgLatencyMS = int64(latency.Float64)
		}
		if cost.Valid {
			d.AvgCost = cost.Float64
		}
		results = append(results, d)
	}
	return results, rows.Err()
}

// Cleanup removes records older than the specified number of days.
func (s *Store) Cleanup(ctx context.Context, olderThanDays int) (int64, error) {
	threshold := time.Now().UTC().AddDate(0, 0, -olderThanDays)
	res, err := s.db.ExecContext(ctx, `DELETE FROM generation_runs WHERE timestamp < ?`, threshold)
	if err != nil {
		return 0, fmt.Errorf("failed to clean up generation runs: %w", err)
	}
	return res.RowsAffected()
}

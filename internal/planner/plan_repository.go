package planner

import (
	"context"
	"database/sql"
	"encoding/json"
	"errors"
	"fmt"
	"time"
)

// StoredMenu is a generated menu saved for a user.
type StoredMenu struct {
	ID        int64
	UserID    string
	Result    MenuResult
	CreatedAt time.Time
}

// PlanRepository is a database-backed repository for generated menus.
type PlanRepository struct {
	db *sql.DB
}

// NewPlanRepository creates a new PlanRepository.
func NewPlanRepository(d *sql.DB) *PlanRepository {
	return &PlanRepository{db: d}
}

// Save stores a menu and returns its id.
func (r *PlanRepository) Save(ctx context.Context, userID string, res MenuResult) (int64, error) {
	data, err := json.Marshal(res)
	if err != nil {
		return 0, fmt.Errorf("failed to marshal menu: %w", err)
	}

	out, err := r.db.ExecContext(ctx,
		`INSERT INTO menus (user_id, price_source, total_cost, num_days, plan_data, created_at) VALUES (?, ?, ?, ?, ?, ?)`,
		userID, res.PriceSource, res.TotalCost, len(res.Days), string(data), time.Now().UTC())
	if err != nil {
		return 0, fmt.Errorf("failed to insert menu for user %s: %w", userID, err)
	}
	return out.LastInsertId()
}

// ListRecentByUserID retrieves the N most recent menus of a user, newest first.
func (r *PlanRepository) ListRecentByUserID(ctx context.Context, userID string, limit int) ([]StoredMenu, error) {
	rows, err := r.db.QueryContext(ctx,
		`SELECT id, user_id, plan_data, created_at FROM menus WHERE user_id = ? ORDER BY id DESC LIMIT ?`,
		userID, limit)
	if err != nil {
		return nil, fmt.Errorf("failed to list recent menus for user %s: %w", userID, err)
	}
	defer rows.Close()

	var menus []StoredMenu
	for rows.Next() {
		var m StoredMenu
		var data string
		if err := rows.Scan(&m.ID, &m.UserID, &data, &m.CreatedAt); err != nil {
			return nil, fmt.Errorf("failed to scan menu: %w", err)
		}
		if err := json.Unmarshal([]byte(data), &m.Result); err != nil {
			return nil, fmt.Errorf("failed to unmarshal menu %d: %w", m.ID, err)
		}
		menus = append(menus, m)
	}
	return menus, rows.Err()
}

// Latest returns the newest menu of a user, or nil if there is none.
func (r *PlanRepository) Latest(ctx context.Context, userID string) (*StoredMenu, error) {
	menus, err := r.ListRecentByUserID(ctx, userID, 1)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, nil
		}
		return nil, err
	}
	if len(menus) == 0 {
		return nil, nil
	}
	return &menus[0], nil
}

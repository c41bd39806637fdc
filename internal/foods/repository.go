package foods

import (
	"context"
	"database/sql"
	"encoding/json"
	"errors"
	"fmt"
	"log"
	"sort"
	"strings"
	"time"

	"menu-optimizer/internal/catalog"
)

// ErrNotFound is returned when a food id is unknown.
var ErrNotFound = errors.New("food not found")

// Repository is a database-backed repository for food records and their
// per-source prices.
type Repository struct {
	db *sql.DB
}

// NewRepository creates a new Repository.
func NewRepository(d *sql.DB) *Repository {
	return &Repository{db: d}
}

const selectFoods = `SELECT id, name, protein, calories, carbs, fat, category, allowed_meals, active_price_source FROM foods`

// List returns every food in insertion order, with its available prices.
func (r *Repository) List(ctx context.Context) ([]catalog.RawFood, error) {
	rows, err := r.db.QueryContext(ctx, selectFoods+` ORDER BY rowid`)
	if err != nil {
		return nil, fmt.Errorf("failed to list foods: %w", err)
	}
	defer rows.Close()

	var out []catalog.RawFood
	index := make(map[string]int)
	for rows.Next() {
		f, err := scanFood(rows)
		if err != nil {
			return nil, err
		}
		index[f.ID] = len(out)
		out = append(out, f)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("failed to iterate foods: %w", err)
	}

	prices, err := r.db.QueryContext(ctx, `SELECT food_id, source, price FROM food_prices WHERE price IS NOT NULL AND price > 0`)
	if err != nil {
		return nil, fmt.Errorf("failed to list food prices: %w", err)
	}
	defer prices.Close()

	for prices.Next() {
		var foodID, source string
		var price float64
		if err := prices.Scan(&foodID, &source, &price); err != nil {
			return nil, fmt.Errorf("failed to scan food price: %w", err)
		}
		if i, ok := index[foodID]; ok {
			out[i].Prices[source] = price
		}
	}
	return out, prices.Err()
}

// Get returns a single food by id.
func (r *Repository) Get(ctx context.Context, id string) (*catalog.RawFood, error) {
	f, err := scanFood(r.db.QueryRowContext(ctx, selectFoods+` WHERE id = ?`, id))
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, ErrNotFound
		}
		return nil, err
	}

	rows, err := r.db.QueryContext(ctx, `SELECT source, price FROM food_prices WHERE food_id = ? AND price IS NOT NULL AND price > 0`, id)
	if err != nil {
		return nil, fmt.Errorf("failed to get prices for food %s: %w", id, err)
	}
	defer rows.Close()
	for rows.Next() {
		var source string
		var price float64
		if err := rows.Scan(&source, &price); err != nil {
			return nil, fmt.Errorf("failed to scan food price: %w", err)
		}
		f.Prices[source] = price
	}
	return &f, rows.Err()
}

// Upsert inserts or replaces a food and all of its prices. A record with a
// single explicit price and no price map is stored as a manual price.
func (r *Repository) Upsert(ctx context.Context, f catalog.RawFood) error {
	id := f.Key()
	if id == "" {
		return fmt.Errorf("food record without id or name")
	}
	if _, err := catalog.ParseCategory(f.Category); err != nil {
		return fmt.Errorf("food %s: %w", id, err)
	}

	tx, err := r.db.BeginTx(ctx, nil)
	if err != nil {
		return fmt.Errorf("failed to begin transaction: %w", err)
	}
	defer tx.Rollback()

	if err := upsertFood(ctx, tx, id, f); err != nil {
		return err
	}
	if _, err := tx.ExecContext(ctx, `DELETE FROM food_prices WHERE food_id = ?`, id); err != nil {
		return fmt.Errorf("failed to clear prices of food %s: %w", id, err)
	}

	prices := f.Prices
	if len(prices) == 0 && f.Price != nil {
		prices = map[string]float64{catalog.ManualSource: *f.Price}
	}
	now := time.Now().UTC()
	for source, price := range prices {
		if err := upsertPrice(ctx, tx, id, source, price, now); err != nil {
			return err
		}
	}
	return tx.Commit()
}

// Delete removes a food and its prices.
func (r *Repository) Delete(ctx context.Context, id string) error {
	tx, err := r.db.BeginTx(ctx, nil)
	if err != nil {
		return fmt.Errorf("failed to begin transaction: %w", err)
	}
	defer tx.Rollback()

	if _, err := tx.ExecContext(ctx, `DELETE FROM food_prices WHERE food_id = ?`, id); err != nil {
		return fmt.Errorf("failed to delete prices of food %s: %w", id, err)
	}
	res, err := tx.ExecContext(ctx, `DELETE FROM foods WHERE id = ?`, id)
	if err != nil {
		return fmt.Errorf("failed to delete food %s: %w", id, err)
	}
	if n, _ := res.RowsAffected(); n == 0 {
		return ErrNotFound
	}
	return tx.Commit()
}

// SetPrices stores a refreshed price snapshot: prices[foodID][source]. A
// price <= 0 is stored as unavailable. Unknown food ids are skipped.
func (r *Repository) SetPrices(ctx context.Context, prices map[string]map[string]float64, at time.Time) (int, error) {
	tx, err := r.db.BeginTx(ctx, nil)
	if err != nil {
		return 0, fmt.Errorf("failed to begin transaction: %w", err)
	}
	defer tx.Rollback()

	ids := make([]string, 0, len(prices))
	for id := range prices {
		ids = append(ids, id)
	}
	sort.Strings(ids)

	updated := 0
	for _, id := range ids {
		var exists int
		if err := tx.QueryRowContext(ctx, `SELECT COUNT(*) FROM foods WHERE id = ?`, id).Scan(&exists); err != nil {
			return 0, fmt.Errorf("failed to look up food %s: %w", id, err)
		}
		if exists == 0 {
			log.Printf("Skipping prices for unknown food %s", id)
			continue
		}
		for source, price := range prices[id] {
			if err := upsertPrice(ctx, tx, id, source, price, at.UTC()); err != nil {
				return 0, err
			}
			updated++
		}
	}
	if err := tx.Commit(); err != nil {
		return 0, fmt.Errorf("failed to commit prices: %w", err)
	}
	return updated, nil
}

// SetActiveSource changes the price source a food is priced from.
func (r *Repository) SetActiveSource(ctx context.Context, id, source string) error {
	res, err := r.db.ExecContext(ctx, `UPDATE foods SET active_price_source = ?, updated_at = ? WHERE id = ?`, source, time.Now().UTC(), id)
	if err != nil {
		return fmt.Errorf("failed to set active source of food %s: %w", id, err)
	}
	if n, _ := res.RowsAffected(); n == 0 {
		return ErrNotFound
	}
	return nil
}

// Count returns the number of stored foods.
func (r *Repository) Count(ctx context.Context) (int, error) {
	var n int
	if err := r.db.QueryRowContext(ctx, `SELECT COUNT(*) FROM foods`).Scan(&n); err != nil {
		return 0, fmt.Errorf("failed to count foods: %w", err)
	}
	return n, nil
}

// SeedDefaults stores the default catalog when the table is empty and
// reports how many foods were inserted.
func (r *Repository) SeedDefaults(ctx context.Context) (int, error) {
	n, err := r.Count(ctx)
	if err != nil {
		return 0, err
	}
	if n > 0 {
		return 0, nil
	}

	defaults := DefaultFoods()
	for _, f := range defaults {
		if err := r.Upsert(ctx, f); err != nil {
			return 0, fmt.Errorf("failed to seed food %s: %w", f.ID, err)
		}
	}
	log.Printf("Seeded %d default foods", len(defaults))
	return len(defaults), nil
}

// LastPriceUpdate returns the newest refresh time of any non-manual price.
// ok is false when no source has ever been refreshed.
func (r *Repository) LastPriceUpdate(ctx context.Context) (t time.Time, ok bool, err error) {
	var raw sql.NullString
	err = r.db.QueryRowContext(ctx,
		`SELECT MAX(updated_at) FROM food_prices WHERE source != ?`, catalog.ManualSource).Scan(&raw)
	if err != nil {
		return time.Time{}, false, fmt.Errorf("failed to read last price update: %w", err)
	}
	if !raw.Valid || raw.String == "" {
		return time.Time{}, false, nil
	}
	t, err = parseTimestamp(raw.String)
	if err != nil {
		return time.Time{}, false, err
	}
	return t, true, nil
}

type rowScanner interface {
	Scan(dest ...any) error
}

func scanFood(row rowScanner) (catalog.RawFood, error) {
	var f catalog.RawFood
	var meals string
	err := row.Scan(&f.ID, &f.Name, &f.Protein, &f.Calories, &f.Carbs, &f.Fat, &f.Category, &meals, &f.ActivePriceSource)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return f, err
		}
		return f, fmt.Errorf("failed to scan food: %w", err)
	}
	if err := json.Unmarshal([]byte(meals), &f.AllowedMeals); err != nil {
		return f, fmt.Errorf("failed to decode allowed meals of food %s: %w", f.ID, err)
	}
	f.Prices = make(map[string]float64)
	return f, nil
}

func upsertFood(ctx context.Context, tx *sql.Tx, id string, f catalog.RawFood) error {
	meals := f.AllowedMeals
	if meals == nil {
		meals = []string{}
	}
	data, err := json.Marshal(meals)
	if err != nil {
		return fmt.Errorf("failed to encode allowed meals of food %s: %w", id, err)
	}

	source := strings.TrimSpace(f.ActivePriceSource)
	if source == "" {
		source = catalog.ManualSource
	}

	now := time.Now().UTC()
	_, err = tx.ExecContext(ctx, `
		INSERT INTO foods (id, name, protein, calories, carbs, fat, category, allowed_meals, active_price_source, created_at, updated_at)
		VALUES (?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?)
		ON CONFLICT(id) DO UPDATE SET
			name = excluded.name,
			protein = excluded.protein,
			calories = excluded.calories,
			carbs = excluded.carbs,
			fat = excluded.fat,
			category = excluded.category,
			allowed_meals = excluded.allowed_meals,
			active_price_source = excluded.active_price_source,
			updated_at = excluded.updated_at`,
		id, f.Name, f.Protein, f.Calories, f.Carbs, f.Fat, f.Category, string(data), source, now, now)
	if err != nil {
		return fmt.Errorf("failed to upsert food %s: %w", id, err)
	}
	return nil
}

func upsertPrice(ctx context.Context, tx *sql.Tx, id, source string, price float64, at time.Time) error {
	var value sql.NullFloat64
	if price > 0 {
		value = sql.NullFloat64{Float64: price, Valid: true}
	}
	_, err := tx.ExecContext(ctx, `
		INSERT INTO food_prices (food_id, source, price, updated_at) VALUES (?, ?, ?, ?)
		ON CONFLICT(food_id, source) DO UPDATE SET price = excluded.price, updated_at = excluded.updated_at`,
		id, source, value, at)
	if err != nil {
		return fmt.Errorf("failed to store %s price of food %s: %w", source, id, err)
	}
	return nil
}

var timestampLayouts = []string{
	"2006-01-02 15:04:05.999999999-07:00",
	"2006-01-02 15:04:05.999999999 -0700 MST",
	"2006-01-02 15:04:05",
	time.RFC3339Nano,
}

func parseTimestamp(s string) (time.Time, error) {
	for _, layout := range timestampLayouts {
		if t, err := time.Parse(layout, s); err == nil {
			return t, nil
		}
	}
	return time.Time{}, fmt.Errorf("unrecognized timestamp %q", s)
}

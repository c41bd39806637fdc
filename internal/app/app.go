package app

import (
	"context"
	"errors"
	"fmt"
	"log"
	"path/filepath"
	"time"

	"menu-optimizer/internal/catalog"
	"menu-optimizer/internal/config"
	"menu-optimizer/internal/database"
	"menu-optimizer/internal/export"
	"menu-optimizer/internal/foods"
	"menu-optimizer/internal/metrics"
	"menu-optimizer/internal/milp"
	"menu-optimizer/internal/planner"
	"menu-optimizer/internal/pricing"
	"menu-optimizer/internal/shopping"
	"menu-optimizer/internal/storage"
)

// ErrNoMenu is returned when a user has no stored menu yet.
var ErrNoMenu = errors.New("no menu has been generated yet")

const (
	snapshotName      = "prices"
	snapshotsKept     = 14
	selectorWorkers   = 4
	recentMenusListed = 5
)

// App holds the application's dependencies.
type App struct {
	cfg        *config.Config
	foodRepo   *foods.Repository
	planRepo   *planner.PlanRepository
	runStore   *metrics.Store
	collectors *metrics.Collectors
	generator  *planner.Generator
	targets    planner.Targets
	updater    *pricing.Updater
	foodStore  *storage.FoodStore
}

// NewApp creates and initializes a new App instance. collectors may be nil.
func NewApp(
	cfg *config.Config,
	db *database.DB,
	policy *config.Policy,
	updater *pricing.Updater,
	collectors *metrics.Collectors,
) (*App, error) {
	enginePolicy, targets, err := EnginePolicy(policy)
	if err != nil {
		return nil, err
	}

	foodStore, err := storage.NewFoodStore(filepath.Join(cfg.DataPath, "snapshots"))
	if err != nil {
		return nil, err
	}

	generator := planner.NewGenerator(milp.NewSolver(milp.Options{NodeLimit: cfg.SolverNodeLimit}))
	generator.Policy = enginePolicy
	generator.Seed = cfg.MenuSeed
	if collectors != nil {
		generator.Observer = collectors
	}

	return &App{
		cfg:        cfg,
		foodRepo:   foods.NewRepository(db.SQL),
		planRepo:   planner.NewPlanRepository(db.SQL),
		runStore:   metrics.NewStore(db.SQL),
		collectors: collectors,
		generator:  generator,
		targets:    targets,
		updater:    updater,
		foodStore:  foodStore,
	}, nil
}

// DefaultTargets returns the targets used when a request names none.
func (a *App) DefaultTargets() planner.Targets {
	return a.targets
}

// Seed stores the default food catalog into an empty database.
func (a *App) Seed(ctx context.Context) (int, error) {
	return a.foodRepo.SeedDefaults(ctx)
}

// MenuRequest describes one menu generation.
type MenuRequest struct {
	Targets planner.Targets
	// Sources to compare. Empty means the configured price sources.
	Sources []string
	Shuffle bool
}

// GenerateMenu runs the price selector over the stored foods, records the
// run and saves a successful menu for userID. The returned MenuResult is
// always usable; the error carries the typed failure when there is one.
func (a *App) GenerateMenu(ctx context.Context, userID string, req MenuRequest) (planner.MenuResult, error) {
	sources := req.Sources
	if len(sources) == 0 {
		sources = a.cfg.PriceSources
	}

	records, err := a.foodRepo.List(ctx)
	if err != nil {
		return planner.MenuResult{Success: false, Message: err.Error(), Targets: req.Targets}, err
	}
	log.Printf("Generating a %d-day menu for %s from %d foods across %v", req.Targets.NumDays, userID, len(records), sources)

	// Each request gets its own generator so Shuffle never leaks across runs.
	g := *a.generator
	g.Shuffle = req.Shuffle

	start := time.Now()
	res, selectErr := planner.NewSelector(&g, selectorWorkers).Select(ctx, records, req.Targets, sources)
	run := metrics.GenerationRun{
		PriceSource:  res.PriceSource,
		Success:      res.Success,
		NumDays:      req.Targets.NumDays,
		RecycledDays: res.RecycledDays,
		TotalCost:    res.TotalCost,
		Latency:      time.Since(start),
	}
	if err := a.runStore.Record(ctx, run); err != nil {
		log.Printf("Warning: failed to record generation run: %v", err)
	}
	if a.collectors != nil {
		a.collectors.ObserveRun(run)
	}

	if res.Success {
		if _, err := a.planRepo.Save(ctx, userID, res); err != nil {
			log.Printf("Warning: failed to save menu for %s: %v", userID, err)
		}
	}
	return res, selectErr
}

// UpdatePrices refreshes every stored food across the updater's sources,
// persists the new prices and writes a price snapshot file.
func (a *App) UpdatePrices(ctx context.Context) (int, error) {
	if a.updater == nil {
		return 0, fmt.Errorf("no price updater configured")
	}

	all, err := a.foodRepo.List(ctx)
	if err != nil {
		return 0, err
	}

	prices, err := a.updater.Refresh(ctx, all)
	if err != nil {
		return 0, fmt.Errorf("failed to refresh prices: %w", err)
	}

	now := time.Now()
	n, err := a.foodRepo.SetPrices(ctx, prices, now)
	if err != nil {
		return 0, err
	}

	if _, err := a.foodStore.SaveSnapshot(snapshotName, storage.PriceSnapshot{TakenAt: now, Prices: prices}); err != nil {
		log.Printf("Warning: failed to save price snapshot: %v", err)
	} else if removed, err := a.foodStore.RemoveStaleVersions(snapshotName, snapshotsKept); err != nil {
		log.Printf("Warning: failed to clean up price snapshots: %v", err)
	} else if removed > 0 {
		log.Printf("Removed %d stale price snapshots", removed)
	}

	log.Printf("Updated %d prices for %d foods from %v", n, len(all), a.updater.Sources())
	return n, nil
}

// LastPriceUpdate returns the time of the newest scraped price.
func (a *App) LastPriceUpdate(ctx context.Context) (time.Time, bool, error) {
	return a.foodRepo.LastPriceUpdate(ctx)
}

// ImportFoods upserts every food of a JSON file written by ExportFoods.
func (a *App) ImportFoods(ctx context.Context, path string) (int, error) {
	records, err := storage.ImportFoods(path)
	if err != nil {
		return 0, err
	}
	for _, f := range records {
		if err := a.foodRepo.Upsert(ctx, f); err != nil {
			return 0, fmt.Errorf("failed to import food %s: %w", f.Key(), err)
		}
	}
	log.Printf("Imported %d foods from %s", len(records), path)
	return len(records), nil
}

// ExportFoods writes every stored food to a JSON file.
func (a *App) ExportFoods(ctx context.Context, path string) (int, error) {
	all, err := a.foodRepo.List(ctx)
	if err != nil {
		return 0, err
	}
	if err := storage.ExportFoods(path, all); err != nil {
		return 0, err
	}
	return len(all), nil
}

// LatestMenu returns the newest stored menu of userID, or ErrNoMenu.
func (a *App) LatestMenu(ctx context.Context, userID string) (planner.MenuResult, error) {
	stored, err := a.planRepo.Latest(ctx, userID)
	if err != nil {
		return planner.MenuResult{}, err
	}
	if stored == nil {
		return planner.MenuResult{}, ErrNoMenu
	}
	return stored.Result, nil
}

// RecentMenus lists the latest menus of userID, newest first.
func (a *App) RecentMenus(ctx context.Context, userID string) ([]planner.StoredMenu, error) {
	return a.planRepo.ListRecentByUserID(ctx, userID, recentMenusListed)
}

// ShoppingList builds the shopping list of a menu, priced with the
// snapshot of the source the menu was chosen from.
func (a *App) ShoppingList(ctx context.Context, res planner.MenuResult) (shopping.List, error) {
	var cat *catalog.Catalog
	if res.PriceSource != "" {
		records, err := a.foodRepo.List(ctx)
		if err != nil {
			return shopping.List{}, err
		}
		if snapshot := catalog.ForSource(records, res.PriceSource); len(snapshot) > 0 {
			if c, err := catalog.Load(snapshot); err == nil {
				cat = c
			} else {
				log.Printf("Warning: shopping list left unpriced: %v", err)
			}
		}
	}
	return shopping.Build(res, cat), nil
}

// SaveMenuWorkbook writes a menu to an .xlsx file.
func SaveMenuWorkbook(res planner.MenuResult, path string) error {
	f, err := export.MenuWorkbook(res)
	if err != nil {
		return err
	}
	defer f.Close()
	if err := f.SaveAs(path); err != nil {
		return fmt.Errorf("failed to save menu workbook: %w", err)
	}
	return nil
}

// SaveShoppingWorkbook writes a shopping list to an .xlsx file.
func SaveShoppingWorkbook(list shopping.List, path string) error {
	f, err := export.ShoppingWorkbook(list)
	if err != nil {
		return err
	}
	defer f.Close()
	if err := f.SaveAs(path); err != nil {
		return fmt.Errorf("failed to save shopping workbook: %w", err)
	}
	return nil
}

// DailyRuns returns the per-day generation history.
func (a *App) DailyRuns(ctx context.Context, days int) ([]metrics.DailyRuns, error) {
	return a.runStore.GetDailyRuns(ctx, days)
}

// CleanupRuns removes generation runs older than days.
func (a *App) CleanupRuns(ctx context.Context, days int) (int64, error) {
	return a.runStore.Cleanup(ctx, days)
}

package main

import (
	"context"
	"errors"
	"flag"
	"fmt"
	"log"
	"os"
	"strings"

	"github.com/joho/godotenv"

	"menu-optimizer/internal/app"
	"menu-optimizer/internal/catalog"
	"menu-optimizer/internal/config"
	"menu-optimizer/internal/database"
	"menu-optimizer/internal/planner"
	"menu-optimizer/internal/pricing"
)

func main() {
	_ = godotenv.Load()
	ctx := context.Background()

	if len(os.Args) < 2 {
		printUsage()
		os.Exit(1)
	}

	cfg, err := config.NewFromEnv()
	if err != nil {
		log.Fatalf("Failed to load configuration: %v", err)
	}

	policy, err := config.LoadPolicy(cfg.PolicyFile)
	if err != nil {
		log.Fatalf("Failed to load policy: %v", err)
	}

	db, err := database.NewDB(cfg.DatabasePath)
	if err != nil {
		log.Fatalf("Failed to initialize database: %v", err)
	}
	defer db.Close()

	updater := pricing.NewUpdater(pricing.SourcesByName(cfg.PriceSources), 0)
	application, err := app.NewApp(cfg, db, policy, updater, nil)
	if err != nil {
		log.Fatalf("Failed to initialize application: %v", err)
	}

	switch os.Args[1] {
	case "seed":
		n, err := application.Seed(ctx)
		if err != nil {
			log.Fatalf("Seeding failed: %v", err)
		}
		if n == 0 {
			fmt.Println("Database already holds foods, nothing seeded.")
		} else {
			fmt.Printf("Seeded %d default foods.\n", n)
		}
	case "generate":
		runGenerate(ctx, application, os.Args[2:])
	case "update-prices":
		n, err := application.UpdatePrices(ctx)
		if err != nil {
			log.Fatalf("Price update failed: %v", err)
		}
		fmt.Printf("Stored %d prices from %s.\n", n, strings.Join(updater.Sources(), ", "))
	case "import-foods":
		if len(os.Args) < 3 {
			log.Fatal("Usage: menu-optimizer import-foods <file>")
		}
		n, err := application.ImportFoods(ctx, os.Args[2])
		if err != nil {
			log.Fatalf("Import failed: %v", err)
		}
		fmt.Printf("Imported %d foods.\n", n)
	case "export-foods":
		if len(os.Args) < 3 {
			log.Fatal("Usage: menu-optimizer export-foods <file>")
		}
		n, err := application.ExportFoods(ctx, os.Args[2])
		if err != nil {
			log.Fatalf("Export failed: %v", err)
		}
		fmt.Printf("Exported %d foods to %s.\n", n, os.Args[2])
	case "shopping":
		runShopping(ctx, application, os.Args[2:])
	case "metrics-cleanup":
		cleanupCmd := flag.NewFlagSet("metrics-cleanup", flag.ExitOnError)
		days := cleanupCmd.Int("days", 30, "Keep records for the last N days")
		cleanupCmd.Parse(os.Args[2:])

		affected, err := application.CleanupRuns(ctx, *days)
		if err != nil {
			log.Fatalf("Cleanup failed: %v", err)
		}
		fmt.Printf("Successfully removed %d old generation runs.\n", affected)
	default:
		fmt.Printf("Unknown command: %s\n", os.Args[1])
		printUsage()
		os.Exit(1)
	}
}

func runGenerate(ctx context.Context, application *app.App, args []string) {
	t := application.DefaultTargets()

	cmd := flag.NewFlagSet("generate", flag.ExitOnError)
	cmd.IntVar(&t.NumDays, "days", t.NumDays, "Number of days to plan")
	cmd.Float64Var(&t.MinProtein, "min-protein", t.MinProtein, "Daily minimum protein (g)")
	cmd.Float64Var(&t.MaxProtein, "max-protein", t.MaxProtein, "Daily maximum protein (g)")
	cmd.Float64Var(&t.MinCalories, "min-calories", t.MinCalories, "Daily minimum calories")
	cmd.Float64Var(&t.MaxCalories, "max-calories", t.MaxCalories, "Daily maximum calories")
	cmd.Float64Var(&t.MinCarbs, "min-carbs", t.MinCarbs, "Daily minimum carbs (g), informational")
	cmd.Float64Var(&t.MaxCarbs, "max-carbs", t.MaxCarbs, "Daily maximum carbs (g)")
	cmd.Float64Var(&t.MinFat, "min-fat", t.MinFat, "Daily minimum fat (g)")
	cmd.Float64Var(&t.MaxFat, "max-fat", t.MaxFat, "Daily maximum fat (g)")
	sources := cmd.String("sources", "", "Comma separated price sources (default PRICE_SOURCES)")
	user := cmd.String("user", "cli", "User the menu is saved for")
	xlsx := cmd.String("xlsx", "", "Write the menu to this .xlsx file")
	shuffle := cmd.Bool("shuffle", false, "Shuffle the generated days")
	cmd.Parse(args)

	req := app.MenuRequest{Targets: t, Shuffle: *shuffle}
	for _, s := range strings.Split(*sources, ",") {
		if s = strings.TrimSpace(s); s != "" {
			req.Sources = append(req.Sources, s)
		}
	}

	res, err := application.GenerateMenu(ctx, *user, req)
	if err != nil {
		var invalid *planner.ValidationError
		if errors.As(err, &invalid) {
			log.Fatalf("Invalid targets: %v", err)
		}
		log.Fatalf("Menu generation failed: %v", err)
	}

	printMenu(res)

	if *xlsx != "" {
		if err := app.SaveMenuWorkbook(res, *xlsx); err != nil {
			log.Fatalf("Failed to write workbook: %v", err)
		}
		fmt.Printf("\nMenu written to %s\n", *xlsx)
	}
}

func runShopping(ctx context.Context, application *app.App, args []string) {
	cmd := flag.NewFlagSet("shopping", flag.ExitOnError)
	user := cmd.String("user", "cli", "User whose last menu is listed")
	xlsx := cmd.String("xlsx", "", "Write the shopping list to this .xlsx file")
	cmd.Parse(args)

	res, err := application.LatestMenu(ctx, *user)
	if err != nil {
		log.Fatalf("Failed to load menu: %v", err)
	}
	list, err := application.ShoppingList(ctx, res)
	if err != nil {
		log.Fatalf("Failed to build shopping list: %v", err)
	}

	fmt.Printf("=== SHOPPING LIST (%d days) ===\n", list.Days)
	for _, it := range list.Items {
		fmt.Printf("- %-30s %8.0fg", it.Name, it.Grams)
		if it.Cost > 0 {
			fmt.Printf("  %8.2f", it.Cost)
		}
		fmt.Println()
	}
	if list.TotalCost > 0 {
		fmt.Printf("\nTotal: %.2f\n", list.TotalCost)
	}

	if *xlsx != "" {
		if err := app.SaveShoppingWorkbook(list, *xlsx); err != nil {
			log.Fatalf("Failed to write workbook: %v", err)
		}
		fmt.Printf("\nShopping list written to %s\n", *xlsx)
	}
}

func printMenu(res planner.MenuResult) {
	fmt.Printf("=== %d-DAY MENU (prices: %s) ===\n", len(res.Days), res.PriceSource)
	for i, day := range res.Days {
		fmt.Printf("\nDay %d", i+1)
		if day.Recycled {
			fmt.Printf(" (repeats day %d)", day.SourceDay)
		}
		fmt.Println()
		for _, slot := range catalog.Slots {
			for _, p := range day.Meal(slot) {
				fmt.Printf("  %-10s %-30s %6.0fg\n", slot, p.Name, p.Grams)
			}
		}
		fmt.Printf("  %.0f kcal | protein %.1fg | carbs %.1fg | fat %.1fg | cost %.2f\n",
			day.Totals.Calories, day.Totals.Protein, day.Totals.Carbs, day.Totals.Fat, day.Cost)
	}

	fmt.Printf("\nTotal cost: %.2f (%.2f per day)\n", res.TotalCost, res.AvgDailyCost)
	for source, cost := range res.SourceCosts {
		fmt.Printf("  %-12s %.2f\n", source, cost)
	}
}

func printUsage() {
	fmt.Println("Usage: menu-optimizer <command> [arguments]")
	fmt.Println("\nCommands:")
	fmt.Println("  seed               Store the default food catalog in an empty database")
	fmt.Println("  generate           Generate the cheapest menu meeting the nutrition targets")
	fmt.Println("  update-prices      Refresh food prices from the configured shops")
	fmt.Println("  import-foods       Import foods from a JSON file")
	fmt.Println("  export-foods       Export foods to a JSON file")
	fmt.Println("  shopping           Print the shopping list of the last menu")
	fmt.Println("  metrics-cleanup    Remove old generation runs")
}

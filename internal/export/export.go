package export

import (
	"fmt"
	"strings"

	"github.com/xuri/excelize/v2"

	"menu-optimizer/internal/catalog"
	"menu-optimizer/internal/planner"
	"menu-optimizer/internal/shopping"
)

// SummarySheet is the first sheet of a menu workbook.
const SummarySheet = "Daily summary"

// ShoppingSheet is the only sheet of a shopping list workbook.
const ShoppingSheet = "Shopping list"

// DaySheet names the sheet of the 1-based day n.
func DaySheet(n int) string {
	return fmt.Sprintf("Day %d", n)
}

func headerStyle(f *excelize.File) (int, error) {
	return f.NewStyle(&excelize.Style{
		Font:      &excelize.Font{Bold: true},
		Fill:      excelize.Fill{Type: "pattern", Color: []string{"#E2E8F0"}, Pattern: 1},
		Alignment: &excelize.Alignment{Horizontal: "center"},
	})
}

func writeRow(f *excelize.File, sheet string, row int, values ...interface{}) {
	for i, v := range values {
		cell, _ := excelize.CoordinatesToCellName(i+1, row)
		f.SetCellValue(sheet, cell, v)
	}
}

// MenuWorkbook writes a successful menu to a workbook: a summary sheet with
// one row per day, followed by one sheet per day listing its portions.
func MenuWorkbook(res planner.MenuResult) (*excelize.File, error) {
	if !res.Success {
		return nil, fmt.Errorf("cannot export an unsuccessful menu: %s", res.Message)
	}

	f := excelize.NewFile()
	f.SetSheetName("Sheet1", SummarySheet)

	style, err := headerStyle(f)
	if err != nil {
		f.Close()
		return nil, fmt.Errorf("failed to create header style: %w", err)
	}

	writeRow(f, SummarySheet, 1, "Day", "Calories", "Protein (g)", "Carbs (g)", "Fat (g)", "Cost", "Repeats day")
	f.SetRowStyle(SummarySheet, 1, 1, style)
	for i, day := range res.Days {
		values := []interface{}{i + 1, day.Totals.Calories, day.Totals.Protein, day.Totals.Carbs, day.Totals.Fat, day.Cost}
		if day.Recycled {
			values = append(values, day.SourceDay)
		}
		writeRow(f, SummarySheet, i+2, values...)
	}
	footer := len(res.Days) + 3
	writeRow(f, SummarySheet, footer, "Total cost", res.TotalCost)
	writeRow(f, SummarySheet, footer+1, "Average daily cost", res.AvgDailyCost)
	if res.PriceSource != "" {
		writeRow(f, SummarySheet, footer+2, "Price source", res.PriceSource)
	}
	f.SetColWidth(SummarySheet, "A", "A", 20)
	f.SetColWidth(SummarySheet, "B", "G", 14)

	for i, day := range res.Days {
		sheet := DaySheet(i + 1)
		if _, err := f.NewSheet(sheet); err != nil {
			f.Close()
			return nil, fmt.Errorf("failed to create sheet %s: %w", sheet, err)
		}
		writeRow(f, sheet, 1, "Meal", "Food", "Grams")
		f.SetRowStyle(sheet, 1, 1, style)

		row := 2
		for _, slot := range catalog.Slots {
			for _, p := range day.Meal(slot) {
				writeRow(f, sheet, row, titleCase(slot.String()), p.Name, p.Grams)
				row++
			}
		}
		f.SetColWidth(sheet, "A", "A", 12)
		f.SetColWidth(sheet, "B", "B", 30)
	}

	return f, nil
}

// ShoppingWorkbook writes a shopping list to a single-sheet workbook.
func ShoppingWorkbook(list shopping.List) (*excelize.File, error) {
	f := excelize.NewFile()
	f.SetSheetName("Sheet1", ShoppingSheet)

	style, err := headerStyle(f)
	if err != nil {
		f.Close()
		return nil, fmt.Errorf("failed to create header style: %w", err)
	}

	writeRow(f, ShoppingSheet, 1, "Food", "Grams", "Cost")
	f.SetRowStyle(ShoppingSheet, 1, 1, style)
	for i, it := range list.Items {
		writeRow(f, ShoppingSheet, i+2, it.Name, it.Grams, it.Cost)
	}
	writeRow(f, ShoppingSheet, len(list.Items)+2, "Total", list.TotalGrams, list.TotalCost)

	f.SetColWidth(ShoppingSheet, "A", "A", 30)
	f.SetColWidth(ShoppingSheet, "B", "C", 14)
	return f, nil
}

func titleCase(s string) string {
	if s == "" {
		return s
	}
	return strings.ToUpper(s[:1]) + s[1:]
}

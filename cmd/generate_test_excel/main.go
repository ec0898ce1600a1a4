package main

import (
	"fmt"
	"masterlist-web/internal/models"
	"masterlist-web/internal/service"
	"os"
	"path/filepath"
)

const outputDir = "./storage/samples"

func main() {
	if err := os.MkdirAll(outputDir, 0o755); err != nil {
		fmt.Printf("Error creating output directory: %v\n", err)
		return
	}

	excel := service.NewExcelService()

	// Item rows: the last three break the uniqueness, buffer and uom rules
	items := [][]interface{}{
		{1001, "Steel Bolt M8", 1, "Zinc plated bolt", "sell", "nos", 10, 50, nil, nil, nil, nil, nil, "FALSE", ""},
		{1002, "Steel Sheet 2mm", 1, "Cold rolled sheet", "purchase", "kgs", 100, 500, nil, nil, nil, nil, nil, "TRUE", "metal"},
		{1003, "Washer M8", 1, "", "component", "nos", nil, nil, nil, nil, nil, nil, nil, "FALSE", ""},
		{1004, "Bracket Assembly", 1, "Welded bracket", "sell", "nos", 5, 20, nil, nil, nil, nil, nil, "FALSE", ""},
		{1005, "Steel Bolt M8", 1, "Duplicate name", "sell", "nos", 10, 50, nil, nil, nil, nil, nil, "FALSE", ""},
		{1006, "Copper Wire", 1, "", "purchase", "kgs", 50, 10, nil, nil, nil, nil, nil, "TRUE", "copper"},
		{1007, "Paint Can", 1, "", "purchase", "litre", 1, 2, nil, nil, nil, nil, nil, "FALSE", ""},
	}
	itemsPath := filepath.Join(outputDir, "items_sample.xlsx")
	if err := excel.WriteRows(itemsPath, "Items", models.ItemSchema.Headers(), items); err != nil {
		fmt.Printf("Error writing items sample: %v\n", err)
		return
	}
	fmt.Printf("✓ Item sample created: %s (%d rows)\n", itemsPath, len(items))

	// BoM rows reference the items above; the last three break the pair,
	// quantity and self-reference rules
	boms := [][]interface{}{
		{1, 1004, 1003, 4},
		{2, 1004, 1002, 2},
		{3, 1001, 1003, 1},
		{4, 1004, 1003, 6},
		{5, 1004, 1001, 150},
		{6, 1003, 1003, 1},
	}
	bomPath := filepath.Join(outputDir, "bom_sample.xlsx")
	if err := excel.WriteRows(bomPath, "Bill of Materials", models.BoMSchema.Headers(), boms); err != nil {
		fmt.Printf("Error writing bom sample: %v\n", err)
		return
	}
	fmt.Printf("✓ BoM sample created: %s (%d rows)\n", bomPath, len(boms))

	fmt.Println("\nUpload the item sample first, then the BoM sample with items_session set to its code.")
}

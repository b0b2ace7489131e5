package main

import (
	"fmt"
	"log"
	"os"
	"path/filepath"
	"time"

	"expired/internal/importer"
	"expired/internal/model"
)

// Writes sample import files relative to today.
// pantry.gz holds long-lived goods, fridge.gz covers the expired and expiring-soon buckets.
func main() {
	dataDir := "data/products"

	if err := os.MkdirAll(dataDir, 0755); err != nil {
		log.Fatalf("Failed to create directory: %v", err)
	}

	today := time.Now()
	day := func(offset int) string {
		return today.AddDate(0, 0, offset).Format(model.DateLayout)
	}

	files := map[string][]model.ProductRequest{
		"pantry.gz": {
			{Title: "Rice", ExpiryDate: day(240), Memo: "top shelf"},
			{Title: "Pasta", ExpiryDate: day(180)},
			{Title: "Tinned tomatoes", ExpiryDate: day(400)},
			{Title: "Crackers", ExpiryDate: day(6), Memo: "opened"},
		},
		"fridge.gz": {
			{Title: "Milk", ExpiryDate: day(-1), Memo: "door"},
			{Title: "Yoghurt", ExpiryDate: day(0)},
			{Title: "Eggs", ExpiryDate: day(4)},
			{Title: "Cheddar", ExpiryDate: day(30), Memo: "wrapped in foil"},
			{Title: "Ham", ExpiryDate: day(-5)},
		},
	}

	for filename, records := range files {
		filePath := filepath.Join(dataDir, filename)

		if err := writeFile(filePath, records); err != nil {
			log.Fatalf("Failed to create %s: %v", filename, err)
		}

		fmt.Printf("Created %s with %d products\n", filePath, len(records))
	}

	fmt.Println("\nSample product files created successfully!")
	fmt.Println("Import them with:")
	fmt.Println("  expired import data/products/pantry.gz data/products/fridge.gz")
}

func writeFile(filePath string, records []model.ProductRequest) error {
	file, err := os.Create(filePath)
	if err != nil {
		return fmt.Errorf("failed to create file: %w", err)
	}
	defer file.Close()

	return importer.EncodeRecords(file, records)
}

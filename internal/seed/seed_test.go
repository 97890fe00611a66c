package seed

import (
	"os"
	"path/filepath"
	"testing"

	"negotiatord/internal/store"
)

const fixture = `[
  {
    "id": "sku-1",
    "name": "Handwoven Scarf",
    "anchor_price": 1000,
    "cost_price": 500,
    "min_margin": 0.1,
    "target_margin": 0.3
  }
]`

func TestLoadFromFile_SeedsEmptyCatalogue(t *testing.T) {
	t.Parallel()
	dir := t.TempDir()
	fixturePath := filepath.Join(dir, "products.json")
	if err := os.WriteFile(fixturePath, []byte(fixture), 0o600); err != nil {
		t.Fatalf("write fixture: %v", err)
	}

	cat, err := store.OpenCatalogueStore(dir)
	if err != nil {
		t.Fatalf("OpenCatalogueStore: %v", err)
	}

	products, err := LoadFromFile(fixturePath, cat)
	if err != nil {
		t.Fatalf("LoadFromFile: %v", err)
	}
	if len(products) != 1 || products["sku-1"].Name != "Handwoven Scarf" {
		t.Fatalf("unexpected products: %+v", products)
	}

	persisted, err := cat.Load()
	if err != nil {
		t.Fatalf("Load: %v", err)
	}
	if len(persisted) != 1 {
		t.Fatalf("want seed persisted to catalogue store, got %+v", persisted)
	}
}

func TestLoadFromFile_ExistingCatalogueWins(t *testing.T) {
	t.Parallel()
	dir := t.TempDir()
	fixturePath := filepath.Join(dir, "products.json")
	if err := os.WriteFile(fixturePath, []byte(fixture), 0o600); err != nil {
		t.Fatalf("write fixture: %v", err)
	}

	cat, err := store.OpenCatalogueStore(dir)
	if err != nil {
		t.Fatalf("OpenCatalogueStore: %v", err)
	}
	if _, err := LoadFromFile(fixturePath, cat); err != nil {
		t.Fatalf("first load: %v", err)
	}

	// Simulate an admin edit after the first seed load.
	persisted, _ := cat.Load()
	edited := persisted["sku-1"]
	edited.Name = "Renamed Scarf"
	persisted["sku-1"] = edited
	if err := cat.Save(persisted); err != nil {
		t.Fatalf("save edit: %v", err)
	}

	products, err := LoadFromFile(fixturePath, cat)
	if err != nil {
		t.Fatalf("second load: %v", err)
	}
	if products["sku-1"].Name != "Renamed Scarf" {
		t.Fatalf("want admin edit preserved, got %+v", products["sku-1"])
	}
}

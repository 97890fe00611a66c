// Package seed loads the initial product catalogue fixture on first boot.
package seed

import (
	"encoding/json"
	"fmt"
	"os"

	"negotiatord/internal/negotiation"
	"negotiatord/internal/store"
)

// LoadFromFile reads a JSON array of products from path and, if the
// catalogue store has no catalogue file yet, persists them as the starting
// catalogue.
// Returns the effective catalogue either way (existing catalogue wins over
// the fixture, so re-running a seed load never clobbers admin edits).
func LoadFromFile(path string, cat *store.CatalogueStore) (map[string]negotiation.Product, error) {
	existing, err := cat.Load()
	if err != nil {
		return nil, fmt.Errorf("load catalogue: %w", err)
	}
	if existing != nil {
		return existing, nil
	}

	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("read seed file: %w", err)
	}

	var products []negotiation.Product
	if err := json.Unmarshal(data, &products); err != nil {
		return nil, fmt.Errorf("unmarshal seed file: %w", err)
	}

	out := make(map[string]negotiation.Product, len(products))
	for _, p := range products {
		if err := p.Validate(); err != nil {
			return nil, fmt.Errorf("seed product %s: %w", p.ID, err)
		}
		out[p.ID] = p
	}

	if err := cat.Save(out); err != nil {
		return nil, fmt.Errorf("save seeded catalogue: %w", err)
	}
	return out, nil
}

package menu

import (
	"encoding/json"
	"fmt"
	"os"

	"github.com/shopspring/decimal"
)

// Item is a single drink on the menu.
type Item struct {
	Name        string          `json:"name"`
	Price       decimal.Decimal `json:"price"`
	Ingredients []string        `json:"ingredients,omitempty"`
}

// Category groups items; some categories carry a flat price of their own.
type Category struct {
	Name  string           `json:"name"`
	Price *decimal.Decimal `json:"price,omitempty"`
	Items []Item           `json:"items"`
}

// Menu is the full read-only catalog.
type Menu struct {
	Categories []Category `json:"categories"`
}

// Provider serves the catalog from a static JSON file. The file is the
// source of truth and is re-read per call; there is no mutation path.
type Provider struct {
	path string
}

// NewProvider creates a Provider reading from the given file path.
func NewProvider(path string) *Provider {
	return &Provider{path: path}
}

// Menu loads and parses the catalog file.
func (p *Provider) Menu() (*Menu, error) {
	data, err := os.ReadFile(p.path)
	if err != nil {
		return nil, fmt.Errorf("read menu file: %w", err)
	}
	var m Menu
	if err := json.Unmarshal(data, &m); err != nil {
		return nil, fmt.Errorf("parse menu file: %w", err)
	}
	return &m, nil
}

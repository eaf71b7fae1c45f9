package catalog

import (
	"errors"

	"github.com/shopspring/decimal"
)

var (
	// ErrNetwork marks catalog fetch failures: transport errors, non-2xx
	// statuses and undecodable bodies.
	ErrNetwork = errors.New("catalog fetch failed")
	// ErrProductNotFound is returned when an id is not in the catalog.
	ErrProductNotFound = errors.New("product not found")
)

// Product mirrors one entry of the catalog endpoint.
type Product struct {
	ID          int             `json:"id"`
	Name        string          `json:"name"`
	Price       decimal.Decimal `json:"price"`
	Image       string          `json:"image"`
	Description string          `json:"description"`
	Featured    bool            `json:"featured"`
}

// Find returns the product with the given id.
func Find(products []Product, id int) (Product, error) {
	for _, p := range products {
		if p.ID == id {
			return p, nil
		}
	}
	return Product{}, ErrProductNotFound
}

// Featured returns the featured subset, preserving order.
func Featured(products []Product) []Product {
	var out []Product
	for _, p := range products {
		if p.Featured {
			out = append(out, p)
		}
	}
	return out
}

// FormatPrice renders a price with two decimals and a dollar sign.
func FormatPrice(price decimal.Decimal) string {
	return "$" + price.StringFixed(2)
}

// Fallback is the built-in catalog used when the endpoint is unusable.
func Fallback() []Product {
	return []Product{
		{
			ID:          1,
			Name:        "Aurora Desk Lamp",
			Price:       decimal.RequireFromString("24.99"),
			Image:       "images/lamp.jpg",
			Description: "Warm dimmable LED lamp with a brushed aluminium arm.",
			Featured:    true,
		},
		{
			ID:          2,
			Name:        "Nimbus Wireless Headphones",
			Price:       decimal.RequireFromString("79.99"),
			Image:       "images/headphones.jpg",
			Description: "Over-ear headphones with 30 hours of battery life.",
			Featured:    true,
		},
		{
			ID:          3,
			Name:        "Terra Ceramic Mug",
			Price:       decimal.RequireFromString("12.50"),
			Image:       "images/mug.jpg",
			Description: "Hand-glazed stoneware mug, 350 ml.",
		},
		{
			ID:          4,
			Name:        "Drift Canvas Backpack",
			Price:       decimal.RequireFromString("49.00"),
			Image:       "images/backpack.jpg",
			Description: "Water-resistant canvas backpack with a padded laptop sleeve.",
		},
		{
			ID:          5,
			Name:        "Pulse Fitness Tracker",
			Price:       decimal.RequireFromString("59.95"),
			Image:       "images/tracker.jpg",
			Description: "Heart rate, sleep and step tracking in a slim band.",
		},
	}
}

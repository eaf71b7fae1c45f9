// Package cart holds the cart model and its two stores: LocalStore, which
// keeps the cart in a durable storage slot, and SyncStore, which mirrors a
// remote document through a push subscription.
package cart

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"sort"
	"strconv"

	"github.com/shopspring/decimal"

	"github.com/five82/storefront/internal/catalog"
)

// ErrNotAuthenticated is returned by synchronized writes attempted before
// the session identity is ready.
var ErrNotAuthenticated = errors.New("not authenticated")

// Line is one product in the cart. Name, Price and Image are copied from
// the catalog when the product is first added.
type Line struct {
	ID       int             `json:"id"`
	Name     string          `json:"name"`
	Price    decimal.Decimal `json:"price"`
	Image    string          `json:"image"`
	Quantity int             `json:"quantity"`
}

// Subtotal is price times quantity.
func (l Line) Subtotal() decimal.Decimal {
	return l.Price.Mul(decimal.NewFromInt(int64(l.Quantity)))
}

// Catalog resolves product ids for snapshotting into new lines.
type Catalog interface {
	Product(id int) (catalog.Product, error)
}

// Store is the surface both cart variants expose to the page controller.
type Store interface {
	Add(ctx context.Context, id int) error
	Remove(ctx context.Context, id int) error
	Clear(ctx context.Context) error
}

// Add returns a copy of lines with product p added: the matching line's
// quantity grows by one, or a new quantity-1 line is appended.
func Add(lines []Line, p catalog.Product) []Line {
	out := Clone(lines)
	for i := range out {
		if out[i].ID == p.ID {
			out[i].Quantity++
			return out
		}
	}
	return append(out, Line{
		ID:       p.ID,
		Name:     p.Name,
		Price:    p.Price,
		Image:    p.Image,
		Quantity: 1,
	})
}

// Remove returns a copy of lines without the line for id.
func Remove(lines []Line, id int) []Line {
	out := make([]Line, 0, len(lines))
	for _, l := range lines {
		if l.ID != id {
			out = append(out, l)
		}
	}
	return out
}

// Total sums price times quantity across lines.
func Total(lines []Line) decimal.Decimal {
	total := decimal.Zero
	for _, l := range lines {
		total = total.Add(l.Subtotal())
	}
	return total
}

// Count sums quantities, for the cart badge.
func Count(lines []Line) int {
	n := 0
	for _, l := range lines {
		n += l.Quantity
	}
	return n
}

// Clone copies lines so callers can mutate the result freely.
func Clone(lines []Line) []Line {
	if len(lines) == 0 {
		return nil
	}
	out := make([]Line, len(lines))
	copy(out, lines)
	return out
}

// EncodeDocument renders lines as the remote document: an object keyed by
// the product id.
func EncodeDocument(lines []Line) ([]byte, error) {
	doc := make(map[string]Line, len(lines))
	for _, l := range lines {
		doc[strconv.Itoa(l.ID)] = l
	}
	data, err := json.Marshal(doc)
	if err != nil {
		return nil, fmt.Errorf("encode cart document: %w", err)
	}
	return data, nil
}

// DecodeDocument parses a remote document into lines ordered by id. Lines
// with a non-positive quantity are dropped.
func DecodeDocument(data []byte) ([]Line, error) {
	var doc map[string]Line
	if err := json.Unmarshal(data, &doc); err != nil {
		return nil, fmt.Errorf("decode cart document: %w", err)
	}
	lines := make([]Line, 0, len(doc))
	for key, l := range doc {
		if l.ID == 0 {
			if id, err := strconv.Atoi(key); err == nil {
				l.ID = id
			}
		}
		if l.Quantity < 1 {
			continue
		}
		lines = append(lines, l)
	}
	sort.Slice(lines, func(i, j int) bool { return lines[i].ID < lines[j].ID })
	return lines, nil
}

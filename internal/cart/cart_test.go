package cart

import (
	"testing"

	"github.com/shopspring/decimal"

	"github.com/five82/storefront/internal/catalog"
)

type fixedCatalog []catalog.Product

func (c fixedCatalog) Product(id int) (catalog.Product, error) {
	return catalog.Find(c, id)
}

func testCatalog() fixedCatalog {
	return fixedCatalog(catalog.Fallback())
}

func TestAdd_SameProductTwiceMergesLines(t *testing.T) {
	p := testCatalog()[0]
	lines := Add(Add(nil, p), p)
	if len(lines) != 1 {
		t.Fatalf("len(lines) = %d, want 1", len(lines))
	}
	if lines[0].Quantity != 2 {
		t.Fatalf("Quantity = %d, want 2", lines[0].Quantity)
	}
	if lines[0].Name != p.Name || !lines[0].Price.Equal(p.Price) || lines[0].Image != p.Image {
		t.Fatalf("line snapshot = %#v, want fields copied from product", lines[0])
	}
}

func TestAdd_DoesNotMutateInput(t *testing.T) {
	p := testCatalog()[1]
	before := Add(nil, p)
	after := Add(before, p)
	if before[0].Quantity != 1 || after[0].Quantity != 2 {
		t.Fatalf("quantities = %d/%d, want input untouched", before[0].Quantity, after[0].Quantity)
	}
}

func TestRemove_AbsentIDLeavesCartUnchanged(t *testing.T) {
	c := testCatalog()
	lines := Add(Add(nil, c[0]), c[2])
	got := Remove(lines, 99)
	if len(got) != 2 || got[0].ID != 1 || got[1].ID != 3 {
		t.Fatalf("Remove(99) = %#v, want cart unchanged", got)
	}
	got = Remove(lines, 1)
	if len(got) != 1 || got[0].ID != 3 {
		t.Fatalf("Remove(1) = %#v, want only id 3", got)
	}
}

func TestTotal_FixedInputs(t *testing.T) {
	lines := []Line{
		{ID: 1, Price: decimal.RequireFromString("24.99"), Quantity: 1},
		{ID: 2, Price: decimal.RequireFromString("79.99"), Quantity: 2},
	}
	if got := Total(lines); !got.Equal(decimal.RequireFromString("184.97")) {
		t.Fatalf("Total = %s, want 184.97", got)
	}
	if got := Count(lines); got != 3 {
		t.Fatalf("Count = %d, want 3", got)
	}
	if got := Total(nil); !got.IsZero() {
		t.Fatalf("Total(nil) = %s, want 0", got)
	}
}

func TestDocument_KeyedByProductID(t *testing.T) {
	c := testCatalog()
	lines := Add(Add(Add(nil, c[1]), c[0]), c[1])

	data, err := EncodeDocument(lines)
	if err != nil {
		t.Fatalf("EncodeDocument returned error: %v", err)
	}
	decoded, err := DecodeDocument(data)
	if err != nil {
		t.Fatalf("DecodeDocument returned error: %v", err)
	}
	if len(decoded) != 2 || decoded[0].ID != 1 || decoded[1].ID != 2 || decoded[1].Quantity != 2 {
		t.Fatalf("decoded = %#v, want ids 1 and 2 with quantity 1 and 2", decoded)
	}
}

func TestDecodeDocument_DropsInvalidQuantityAndFillsID(t *testing.T) {
	decoded, err := DecodeDocument([]byte(`{"4":{"name":"Pack","price":"49.00","quantity":1},"5":{"id":5,"quantity":0}}`))
	if err != nil {
		t.Fatalf("DecodeDocument returned error: %v", err)
	}
	if len(decoded) != 1 || decoded[0].ID != 4 {
		t.Fatalf("decoded = %#v, want only id 4", decoded)
	}
	if _, err := DecodeDocument([]byte("[]")); err == nil {
		t.Fatalf("DecodeDocument accepted an array")
	}
}


package render

import (
	"fmt"
	"strconv"
	"strings"

	"github.com/five82/storefront/internal/cart"
	"github.com/five82/storefront/internal/catalog"
)

// ActionKind is what selecting a row does.
type ActionKind int

const (
	ActionNone ActionKind = iota
	ActionOpen
	ActionAdd
	ActionRemove
)

func (k ActionKind) String() string {
	switch k {
	case ActionOpen:
		return "open"
	case ActionAdd:
		return "add"
	case ActionRemove:
		return "remove"
	default:
		return "none"
	}
}

// Action is attached to a row and carried out by the UI.
type Action struct {
	Kind      ActionKind
	ProductID int
}

// Control identifies a persistent page control.
type Control string

// ControlCheckout is the cart page's checkout control.
const ControlCheckout Control = "checkout"

// Row is one selectable line of a fragment.
type Row struct {
	Text   string
	Detail string
	Action Action
}

// Fragment is a rendered page body.
type Fragment struct {
	Title    string
	Rows     []Row
	Footer   []string
	Controls []Control
	Empty    string
	NotFound bool
}

// Actions returns the actionable rows' actions in display order.
func (f Fragment) Actions() []Action {
	var out []Action
	for _, r := range f.Rows {
		if r.Action.Kind != ActionNone {
			out = append(out, r.Action)
		}
	}
	return out
}

// HasAction reports whether any row carries an action of kind k.
func (f Fragment) HasAction(k ActionKind) bool {
	for _, r := range f.Rows {
		if r.Action.Kind == k {
			return true
		}
	}
	return false
}

// ProductCard renders the one-line summary of a product.
func ProductCard(p catalog.Product) string {
	return fmt.Sprintf("%s  %s", p.Name, catalog.FormatPrice(p.Price))
}

// Home lists the featured products.
func Home(products []catalog.Product) Fragment {
	f := Fragment{Title: "Featured", Empty: "No featured products right now."}
	for _, p := range catalog.Featured(products) {
		f.Rows = append(f.Rows, Row{
			Text:   ProductCard(p),
			Detail: p.Description,
			Action: Action{Kind: ActionOpen, ProductID: p.ID},
		})
	}
	return f
}

// Catalog lists every product.
func Catalog(products []catalog.Product) Fragment {
	f := Fragment{Title: "All products", Empty: "The catalog is empty."}
	for _, p := range products {
		f.Rows = append(f.Rows, Row{
			Text:   ProductCard(p),
			Detail: p.Description,
			Action: Action{Kind: ActionOpen, ProductID: p.ID},
		})
	}
	return f
}

// Detail renders one product with an add-to-cart row. A missing or unknown
// id yields a not-found fragment with no rows.
func Detail(products []catalog.Product, id int, hasID bool) Fragment {
	notFound := Fragment{
		Title:    "Product not found",
		Empty:    "We couldn't find that product.",
		NotFound: true,
	}
	if !hasID {
		return notFound
	}
	p, err := catalog.Find(products, id)
	if err != nil {
		return notFound
	}
	return Fragment{
		Title: p.Name,
		Rows: []Row{
			{Text: catalog.FormatPrice(p.Price), Detail: p.Description},
			{Text: "Add to cart", Action: Action{Kind: ActionAdd, ProductID: p.ID}},
		},
		Footer: []string{"Image: " + p.Image},
	}
}

// Cart renders the cart lines with remove actions, the total and the
// checkout control. An empty cart has no checkout control.
func Cart(lines []cart.Line) Fragment {
	f := Fragment{Title: "Your cart", Empty: "Your cart is empty."}
	if len(lines) == 0 {
		return f
	}
	for _, l := range lines {
		f.Rows = append(f.Rows, Row{
			Text:   fmt.Sprintf("%s x%d", l.Name, l.Quantity),
			Detail: catalog.FormatPrice(l.Subtotal()),
			Action: Action{Kind: ActionRemove, ProductID: l.ID},
		})
	}
	f.Footer = []string{
		fmt.Sprintf("Items: %d", cart.Count(lines)),
		"Total: " + catalog.FormatPrice(cart.Total(lines)),
	}
	f.Controls = []Control{ControlCheckout}
	return f
}

// AccountInfo is what the account page shows.
type AccountInfo struct {
	Identity     string
	State        string
	Synchronized bool
	CartCount    int
}

// Account renders the identity summary.
func Account(info AccountInfo) Fragment {
	identity := info.Identity
	if identity == "" {
		identity = "not signed in"
	}
	mode := "local"
	if info.Synchronized {
		mode = "synchronized"
	}
	return Fragment{
		Title: "Account",
		Rows: []Row{
			{Text: "Identity", Detail: identity},
			{Text: "Session", Detail: strings.ToLower(info.State)},
			{Text: "Cart storage", Detail: mode},
			{Text: "Items in cart", Detail: strconv.Itoa(info.CartCount)},
		},
	}
}

// Package page resolves which storefront page to show from a location
// string such as "product-details.html?id=3". The kind is resolved once at
// startup; callers switch over it exhaustively.
package page

import (
	"net/url"
	"path"
	"strconv"
	"strings"
)

// Kind enumerates the storefront pages.
type Kind int

const (
	KindUnknown Kind = iota
	KindHome
	KindProducts
	KindDetails
	KindCart
	KindAccount
)

func (k Kind) String() string {
	switch k {
	case KindHome:
		return "home"
	case KindProducts:
		return "products"
	case KindDetails:
		return "product-details"
	case KindCart:
		return "cart"
	case KindAccount:
		return "account"
	default:
		return "unknown"
	}
}

// Page is a resolved location. ProductID is meaningful for KindDetails
// only when HasID is set.
type Page struct {
	Kind      Kind
	ProductID int
	HasID     bool
}

// Resolve maps a location to a Page. The last path segment decides the
// kind, with or without an .html suffix; an empty path is the home page.
func Resolve(location string) Page {
	trimmed := strings.TrimSpace(location)
	u, err := url.Parse(trimmed)
	if err != nil {
		return Page{Kind: KindUnknown}
	}

	name := strings.ToLower(path.Base(u.Path))
	name = strings.TrimSuffix(name, ".html")

	switch name {
	case "", ".", "/", "index", "home":
		return Page{Kind: KindHome}
	case "products":
		return Page{Kind: KindProducts}
	case "product-details":
		p := Page{Kind: KindDetails}
		if raw := u.Query().Get("id"); raw != "" {
			if id, err := strconv.Atoi(raw); err == nil {
				p.ProductID = id
				p.HasID = true
			}
		}
		return p
	case "cart":
		return Page{Kind: KindCart}
	case "account":
		return Page{Kind: KindAccount}
	default:
		return Page{Kind: KindUnknown}
	}
}

// Details returns the detail page for a product.
func Details(id int) Page {
	return Page{Kind: KindDetails, ProductID: id, HasID: true}
}

// Location renders p back into a location string.
func (p Page) Location() string {
	switch p.Kind {
	case KindDetails:
		if p.HasID {
			return "product-details.html?id=" + strconv.Itoa(p.ProductID)
		}
		return "product-details.html"
	case KindUnknown:
		return ""
	default:
		return p.Kind.String() + ".html"
	}
}

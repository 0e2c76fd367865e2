package payments

import (
	"strings"
)

// Package is a purchasable credit bundle.
type Package struct {
	ID       string `json:"id"`
	Name     string `json:"name"`
	Credits  int64  `json:"credits"`
	PriceCts int64  `json:"price_cents"`
	Currency string `json:"currency"`
}

var catalog = []Package{
	{ID: "starter", Name: "Starter Pack", Credits: 100, PriceCts: 999, Currency: "usd"},
	{ID: "pro", Name: "Pro Pack", Credits: 500, PriceCts: 3999, Currency: "usd"},
	{ID: "enterprise", Name: "Enterprise Pack", Credits: 2000, PriceCts: 12999, Currency: "usd"},
}

// Packages returns the purchasable bundles in display order.
func Packages() []Package {
	out := make([]Package, len(catalog))
	copy(out, catalog)
	return out
}

// FindPackage looks a bundle up by id.
func FindPackage(id string) (Package, bool) {
	needle := strings.ToLower(strings.TrimSpace(id))
	for _, p := range catalog {
		if p.ID == needle {
			return p, true
		}
	}
	return Package{}, false
}

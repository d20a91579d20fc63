package storefront

import (
	"strings"

	"gitlab.connectwisedev.com/storefront-client/models"
)

// DefaultMaxPrice is the price ceiling applied when a Filter leaves MaxPrice at zero
const DefaultMaxPrice = 100000

// Filter narrows the catalog. Zero values match everything.
type Filter struct {
	Category string
	MaxPrice float64
	Size     string
	Search   string
	Featured bool // only featured products when set
}

// Products returns a copy of the whole catalog
func (c *Controller) Products() []models.Product {
	c.mu.Lock()
	defer c.mu.Unlock()
	return append([]models.Product{}, c.products...)
}

// FeaturedProducts returns the products flagged as featured
func (c *Controller) FeaturedProducts() []models.Product {
	c.mu.Lock()
	defer c.mu.Unlock()
	featured := []models.Product{}
	for _, p := range c.products {
		if p.Featured {
			featured = append(featured, p)
		}
	}
	return featured
}

// Product looks a product up by id in the current catalog
func (c *Controller) Product(id int64) (models.Product, bool) {
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.productLocked(id)
}

func (c *Controller) productLocked(id int64) (models.Product, bool) {
	for _, p := range c.products {
		if p.ID == id {
			return p, true
		}
	}
	return models.Product{}, false
}

// FilterProducts returns the products matching every criterion of f.
// The catalog itself is never modified.
func (c *Controller) FilterProducts(f Filter) []models.Product {
	maxPrice := f.MaxPrice
	if maxPrice <= 0 {
		maxPrice = DefaultMaxPrice
	}
	search := strings.ToLower(f.Search)

	c.mu.Lock()
	defer c.mu.Unlock()

	filtered := []models.Product{}
	for _, p := range c.products {
		if f.Featured && !p.Featured {
			continue
		}
		if f.Category != "" && p.Category != f.Category {
			continue
		}
		if p.Price > maxPrice {
			continue
		}
		if f.Size != "" && !strings.Contains(p.Size, f.Size) {
			continue
		}
		if search != "" && !strings.Contains(strings.ToLower(p.Name), search) {
			continue
		}
		filtered = append(filtered, p)
	}
	return filtered
}

package storefront

import (
	"context"
	"log"

	"github.com/shopspring/decimal"

	"gitlab.connectwisedev.com/storefront-client/models"
)

// PlaceholderImageURL is used for products created without an image
const PlaceholderImageURL = "https://via.placeholder.com/300"

// Stats feeds the admin dashboard
type Stats struct {
	TotalProducts int             `json:"totalProducts"`
	TotalOrders   int             `json:"totalOrders"`
	TotalUsers    int             `json:"totalUsers"`
	TotalRevenue  decimal.Decimal `json:"totalRevenue"`
}

// AdminStats counts catalog products and, when the API answers, orders, users and revenue.
// Order and user listing failures are logged and leave those counters at zero.
func (c *Controller) AdminStats(ctx context.Context) (Stats, error) {
	if !c.IsAdmin() {
		return Stats{}, ErrForbidden
	}

	c.mu.Lock()
	stats := Stats{TotalProducts: len(c.products), TotalRevenue: decimal.Zero}
	c.mu.Unlock()

	if orders, err := c.backend.GetAllOrders(ctx); err != nil {
		log.Printf("Error loading orders for admin stats: %v", err)
	} else {
		stats.TotalOrders = len(orders)
		for _, o := range orders {
			stats.TotalRevenue = stats.TotalRevenue.Add(decimal.NewFromFloat(o.TotalAmount))
		}
	}

	if users, err := c.backend.GetAllUsers(ctx); err != nil {
		log.Printf("Error loading users for admin stats: %v", err)
	} else {
		stats.TotalUsers = len(users)
	}

	return stats, nil
}

// AdminCreateProduct creates a product and refreshes the catalog
func (c *Controller) AdminCreateProduct(ctx context.Context, input models.ProductInput) (err error) {
	if !c.IsAdmin() {
		return ErrForbidden
	}
	ctx, span := tracer.Start(ctx, "storefront.AdminCreateProduct")
	defer func() { endSpan(span, err) }()

	if input.ImageURL == "" {
		input.ImageURL = PlaceholderImageURL
	}
	if _, err := c.backend.CreateProduct(ctx, input); err != nil {
		return err
	}
	c.afterAdminWrite(ctx, "Product added")
	return nil
}

// AdminUpdateProduct replaces a product and refreshes the catalog
func (c *Controller) AdminUpdateProduct(ctx context.Context, id int64, input models.ProductInput) (err error) {
	if !c.IsAdmin() {
		return ErrForbidden
	}
	ctx, span := tracer.Start(ctx, "storefront.AdminUpdateProduct")
	defer func() { endSpan(span, err) }()

	if input.ImageURL == "" {
		input.ImageURL = PlaceholderImageURL
	}
	if _, err := c.backend.UpdateProduct(ctx, id, input); err != nil {
		return err
	}
	c.afterAdminWrite(ctx, "Product updated")
	return nil
}

// AdminDeleteProduct deletes a product and refreshes the catalog
func (c *Controller) AdminDeleteProduct(ctx context.Context, id int64) (err error) {
	if !c.IsAdmin() {
		return ErrForbidden
	}
	ctx, span := tracer.Start(ctx, "storefront.AdminDeleteProduct")
	defer func() { endSpan(span, err) }()

	if _, err := c.backend.DeleteProduct(ctx, id); err != nil {
		return err
	}
	c.afterAdminWrite(ctx, "Product deleted")
	return nil
}

// afterAdminWrite reloads the catalog; the write already succeeded, so a failed reload is only logged
func (c *Controller) afterAdminWrite(ctx context.Context, message string) {
	c.notifier.Notify(NoticeSuccess, message)
	if err := c.RefreshCatalog(ctx); err != nil {
		log.Printf("Catalog refresh after admin write failed: %v", err)
	}
	c.notifier.Render(ViewAdmin)
}

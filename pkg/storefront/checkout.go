package storefront

import (
	"context"
	"fmt"
	"log"

	"github.com/shopspring/decimal"

	"gitlab.connectwisedev.com/storefront-client/models"
	"gitlab.connectwisedev.com/storefront-client/pkg/storage"
)

// Checkout submits the cart as an order for the session user. Unit prices
// come from the catalog at checkout time; lines whose product is unknown are
// left out. On success the lines that were checked out leave the cart; lines
// added while the order was in flight stay.
func (c *Controller) Checkout(ctx context.Context) (order *models.Order, err error) {
	c.mu.Lock()
	if c.user == nil {
		c.mu.Unlock()
		c.notifier.Notify(NoticeError, ErrAuthRequired.Error())
		c.notifier.Render(ViewLogin)
		return nil, ErrAuthRequired
	}
	if len(c.cart) == 0 {
		c.mu.Unlock()
		c.notifier.Notify(NoticeError, ErrEmptyCart.Error())
		return nil, ErrEmptyCart
	}
	order = c.buildOrderLocked()
	checkedOut := append([]models.CartLine(nil), c.cart...)
	c.mu.Unlock()

	ctx, span := tracer.Start(ctx, "storefront.Checkout")
	defer func() { endSpan(span, err) }()

	if _, err := c.backend.CreateOrder(ctx, *order); err != nil {
		c.notifier.Notify(NoticeError, "Order failed: "+err.Error())
		return nil, err
	}

	c.mu.Lock()
	c.cart = consumeLines(c.cart, checkedOut)
	remaining := append([]models.CartLine{}, c.cart...)
	c.mu.Unlock()
	// The order exists server-side, so the checked-out lines stay gone even if this write fails.
	if err := storage.SetJSON(ctx, c.scopes.Durable, storage.KeyCart, remaining); err != nil {
		log.Printf("Error persisting cart after order %s: %v", order.Reference, err)
	}

	c.notifier.Render(ViewCart)
	c.notifier.Notify(NoticeSuccess, fmt.Sprintf("Order created! Total: %.2f FCFA", order.TotalAmount))
	return order, nil
}

func (c *Controller) buildOrderLocked() *models.Order {
	now := c.now()
	total := decimal.Zero
	items := []models.OrderItem{}

	for _, l := range c.cart {
		p, ok := c.productLocked(l.ProductID)
		if !ok {
			continue
		}
		total = total.Add(decimal.NewFromFloat(p.Price).Mul(decimal.NewFromInt(int64(l.Quantity))))
		items = append(items, models.OrderItem{
			ProductID: l.ProductID,
			Quantity:  l.Quantity,
			UnitPrice: p.Price,
		})
	}

	return &models.Order{
		Reference:   fmt.Sprintf("CMD-%d", now.UnixMilli()),
		OrderDate:   now.Format("2006-01-02"),
		Status:      models.OrderStatusPending,
		TotalAmount: total.InexactFloat64(),
		CustomerID:  c.user.ID,
		Items:       items,
	}
}

type lineKey struct {
	productID int64
	size      string
}

// consumeLines subtracts the checked-out quantities from cart, keeping
// whatever was added on top of them.
func consumeLines(cart, checkedOut []models.CartLine) []models.CartLine {
	owed := make(map[lineKey]int, len(checkedOut))
	for _, l := range checkedOut {
		owed[lineKey{l.ProductID, l.Size}] += l.Quantity
	}

	kept := []models.CartLine{}
	for _, l := range cart {
		k := lineKey{l.ProductID, l.Size}
		take := min(owed[k], l.Quantity)
		owed[k] -= take
		if l.Quantity -= take; l.Quantity > 0 {
			kept = append(kept, l)
		}
	}
	return kept
}

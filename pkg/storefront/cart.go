package storefront

import (
	"context"

	"github.com/go-faster/errors"
	"github.com/shopspring/decimal"

	"gitlab.connectwisedev.com/storefront-client/models"
	"gitlab.connectwisedev.com/storefront-client/pkg/storage"
)

// CartViewLine is a cart line resolved against the catalog
type CartViewLine struct {
	Product   models.Product  `json:"product"`
	Size      string          `json:"size"`
	Quantity  int             `json:"quantity"`
	LineTotal decimal.Decimal `json:"lineTotal"`
}

// CartView is the render-ready cart: unresolved lines are skipped
type CartView struct {
	Lines []CartViewLine  `json:"lines"`
	Total decimal.Decimal `json:"total"`
	Count int             `json:"count"`
}

// Cart returns a copy of the cart lines in order
func (c *Controller) Cart() []models.CartLine {
	c.mu.Lock()
	defer c.mu.Unlock()
	return append([]models.CartLine(nil), c.cart...)
}

// CartCount is the sum of line quantities
func (c *Controller) CartCount() int {
	c.mu.Lock()
	defer c.mu.Unlock()
	n := 0
	for _, l := range c.cart {
		n += l.Quantity
	}
	return n
}

// AddToCart adds quantity units of (productID, size). An existing line for the
// same pair is incremented instead of duplicated.
func (c *Controller) AddToCart(ctx context.Context, productID int64, size string, quantity int) error {
	if quantity < 1 {
		return ErrInvalidQuantity
	}

	err := c.mutateCart(ctx, func(cart []models.CartLine) []models.CartLine {
		for i := range cart {
			if cart[i].Matches(productID, size) {
				cart[i].Quantity += quantity
				return cart
			}
		}
		return append(cart, models.CartLine{ProductID: productID, Size: size, Quantity: quantity})
	})
	if err != nil {
		c.notifier.Notify(NoticeError, "Could not add the product to the cart")
		return err
	}

	c.notifier.Notify(NoticeSuccess, "Product added to cart")
	return nil
}

// AddToCartDefaultSize adds quantity units in the product's first listed size
func (c *Controller) AddToCartDefaultSize(ctx context.Context, productID int64, quantity int) error {
	p, ok := c.Product(productID)
	if !ok {
		return ErrProductNotFound
	}
	sizes := p.Sizes()
	if len(sizes) == 0 {
		return errors.Wrapf(ErrProductNotFound, "product %d has no sizes", productID)
	}
	return c.AddToCart(ctx, productID, sizes[0], quantity)
}

// UpdateCartLineQuantity sets the quantity of the (productID, size) line;
// a quantity of zero or less removes the line.
func (c *Controller) UpdateCartLineQuantity(ctx context.Context, productID int64, size string, quantity int) error {
	if quantity <= 0 {
		return c.RemoveCartLine(ctx, productID, size)
	}

	found := false
	err := c.mutateCart(ctx, func(cart []models.CartLine) []models.CartLine {
		for i := range cart {
			if cart[i].Matches(productID, size) {
				cart[i].Quantity = quantity
				found = true
				break
			}
		}
		return cart
	})
	if err != nil {
		return err
	}
	if !found {
		return ErrCartLineNotFound
	}
	return nil
}

// RemoveCartLine drops every line for (productID, size)
func (c *Controller) RemoveCartLine(ctx context.Context, productID int64, size string) error {
	err := c.mutateCart(ctx, func(cart []models.CartLine) []models.CartLine {
		kept := cart[:0]
		for _, l := range cart {
			if !l.Matches(productID, size) {
				kept = append(kept, l)
			}
		}
		return kept
	})
	if err != nil {
		return err
	}
	c.notifier.Notify(NoticeInfo, "Product removed from cart")
	return nil
}

// ComputeCartTotal sums price × quantity over lines whose product is in the
// current catalog. It is never cached.
func (c *Controller) ComputeCartTotal() decimal.Decimal {
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.cartTotalLocked()
}

// CartView resolves the cart against the current catalog
func (c *Controller) CartView() CartView {
	c.mu.Lock()
	defer c.mu.Unlock()

	view := CartView{Lines: []CartViewLine{}, Total: decimal.Zero}
	for _, l := range c.cart {
		view.Count += l.Quantity
		p, ok := c.productLocked(l.ProductID)
		if !ok {
			continue
		}
		lineTotal := decimal.NewFromFloat(p.Price).Mul(decimal.NewFromInt(int64(l.Quantity)))
		view.Lines = append(view.Lines, CartViewLine{Product: p, Size: l.Size, Quantity: l.Quantity, LineTotal: lineTotal})
		view.Total = view.Total.Add(lineTotal)
	}
	return view
}

func (c *Controller) cartTotalLocked() decimal.Decimal {
	total := decimal.Zero
	for _, l := range c.cart {
		p, ok := c.productLocked(l.ProductID)
		if !ok {
			continue
		}
		total = total.Add(decimal.NewFromFloat(p.Price).Mul(decimal.NewFromInt(int64(l.Quantity))))
	}
	return total
}

// mutateCart applies fn to a copy of the cart, persists the result and only
// then swaps it in, so a failed write leaves the cart untouched.
func (c *Controller) mutateCart(ctx context.Context, fn func([]models.CartLine) []models.CartLine) error {
	c.mu.Lock()
	next := fn(append([]models.CartLine(nil), c.cart...))
	if next == nil {
		next = []models.CartLine{}
	}
	if err := storage.SetJSON(ctx, c.scopes.Durable, storage.KeyCart, next); err != nil {
		c.mu.Unlock()
		return errors.Wrap(err, "persist cart")
	}
	c.cart = next
	c.mu.Unlock()

	c.notifier.Render(ViewCart)
	return nil
}

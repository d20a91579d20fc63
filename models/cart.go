package models

// CartLine is one (product, size, quantity) entry of the shopping cart.
// ProductID is not guaranteed to resolve against the current catalog.
type CartLine struct {
	ProductID int64  `json:"productId"`
	Size      string `json:"size"`
	Quantity  int    `json:"quantity"`
}

// Matches reports whether the line is identified by the given pair
func (l CartLine) Matches(productID int64, size string) bool {
	return l.ProductID == productID && l.Size == size
}

package models

// OrderStatusPending is the initial status of every order placed by the storefront
const OrderStatusPending = "En attente"

// Order is the order payload sent to, and returned by, the commerce API
type Order struct {
	Reference   string      `json:"reference"`
	OrderDate   string      `json:"orderDate"` // YYYY-MM-DD
	Status      string      `json:"status"`
	TotalAmount float64     `json:"totalAmount"`
	CustomerID  int64       `json:"customerId"`
	Items       []OrderItem `json:"items"`
}

// OrderItem is one line of an order; UnitPrice is taken from the catalog at checkout time
type OrderItem struct {
	ProductID int64   `json:"productId"`
	Quantity  int     `json:"quantity"`
	UnitPrice float64 `json:"unitPrice"`
}

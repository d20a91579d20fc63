package api

import (
	"context"
	"fmt"
	"net/http"

	"gitlab.connectwisedev.com/storefront-client/models"
)

// Logical paths of the commerce API. They are literal: the server routes
// contain spaces and accented letters, and only spaces are encoded.
const (
	PathCreateUser    = "/users/creerutilisateur"
	PathListUsers     = "/users/recuperetouslesutilisateur"
	PathLogin         = "/auth/login"
	PathListProducts  = "/products/listertoutlesproduit"
	PathGetProduct    = "/products/obtenirunproduitparsonid/"
	PathCreateProduct = "/products/creerproduit"
	PathUpdateProduct = "/products/mettre à jour un produit/"
	PathDeleteProduct = "/products/supprimerunproduit/"
	PathOrders        = "/commandes"
)

// CreateUser registers a new customer. The reply may be structured or a bare success string.
func (c *Client) CreateUser(ctx context.Context, user models.Registration) (Result, error) {
	return c.Request(ctx, PathCreateUser, RequestOptions{Method: http.MethodPost, Body: user})
}

// GetAllUsers lists every account; the server only answers admins
func (c *Client) GetAllUsers(ctx context.Context) ([]models.User, error) {
	res, err := c.Request(ctx, PathListUsers, RequestOptions{})
	if err != nil {
		return nil, err
	}
	var users []models.User
	if err := decodeResult(res, &users); err != nil {
		return nil, err
	}
	return users, nil
}

// Login authenticates. The reply may be structured or a bare success string.
func (c *Client) Login(ctx context.Context, credentials models.Credentials) (Result, error) {
	return c.Request(ctx, PathLogin, RequestOptions{Method: http.MethodPost, Body: credentials})
}

// GetAllProducts fetches the full catalog
func (c *Client) GetAllProducts(ctx context.Context) ([]models.Product, error) {
	res, err := c.Request(ctx, PathListProducts, RequestOptions{})
	if err != nil {
		return nil, err
	}
	var products []models.Product
	if err := decodeResult(res, &products); err != nil {
		return nil, err
	}
	return products, nil
}

// GetProduct fetches one product
func (c *Client) GetProduct(ctx context.Context, id int64) (*models.Product, error) {
	res, err := c.Request(ctx, fmt.Sprintf("%s%d", PathGetProduct, id), RequestOptions{})
	if err != nil {
		return nil, err
	}
	var product models.Product
	if err := decodeResult(res, &product); err != nil {
		return nil, err
	}
	return &product, nil
}

func (c *Client) CreateProduct(ctx context.Context, product models.ProductInput) (Result, error) {
	return c.Request(ctx, PathCreateProduct, RequestOptions{Method: http.MethodPost, Body: product})
}

func (c *Client) UpdateProduct(ctx context.Context, id int64, product models.ProductInput) (Result, error) {
	return c.Request(ctx, fmt.Sprintf("%s%d", PathUpdateProduct, id), RequestOptions{Method: http.MethodPut, Body: product})
}

func (c *Client) DeleteProduct(ctx context.Context, id int64) (Result, error) {
	return c.Request(ctx, fmt.Sprintf("%s%d", PathDeleteProduct, id), RequestOptions{Method: http.MethodDelete})
}

// CreateOrder submits an order; a successful reply carries at least the reference
func (c *Client) CreateOrder(ctx context.Context, order models.Order) (Result, error) {
	return c.Request(ctx, PathOrders, RequestOptions{Method: http.MethodPost, Body: order})
}

func (c *Client) GetAllOrders(ctx context.Context) ([]models.Order, error) {
	res, err := c.Request(ctx, PathOrders, RequestOptions{})
	if err != nil {
		return nil, err
	}
	var orders []models.Order
	if err := decodeResult(res, &orders); err != nil {
		return nil, err
	}
	return orders, nil
}

func (c *Client) GetOrder(ctx context.Context, reference string) (*models.Order, error) {
	res, err := c.Request(ctx, PathOrders+"/"+reference, RequestOptions{})
	if err != nil {
		return nil, err
	}
	var order models.Order
	if err := decodeResult(res, &order); err != nil {
		return nil, err
	}
	return &order, nil
}

func (c *Client) DeleteOrder(ctx context.Context, reference string) (Result, error) {
	return c.Request(ctx, PathOrders+"/"+reference, RequestOptions{Method: http.MethodDelete})
}

// decodeResult turns an unexpected response shape into an access-layer failure
func decodeResult(res Result, v any) error {
	if err := res.Decode(v); err != nil {
		return &Error{Status: http.StatusOK, StatusText: http.StatusText(http.StatusOK), Message: err.Error(), Err: err}
	}
	return nil
}

// Package storefront owns the state of one shopper session: the
// authenticated user and token, the catalog last fetched from the commerce
// API and the cart. Presentation code calls its operations as command
// handlers and is told what to re-render through a Notifier.
package storefront

import (
	"context"
	"log"
	"sync"
	"time"

	"github.com/go-faster/errors"
	"go.opentelemetry.io/otel"
	"go.opentelemetry.io/otel/codes"
	"go.opentelemetry.io/otel/trace"

	"gitlab.connectwisedev.com/storefront-client/models"
	"gitlab.connectwisedev.com/storefront-client/pkg/api"
	"gitlab.connectwisedev.com/storefront-client/pkg/storage"
)

var tracer = otel.Tracer("gitlab.connectwisedev.com/storefront-client/pkg/storefront")

// Backend is the part of the access layer the controller drives. *api.Client implements it.
type Backend interface {
	Login(ctx context.Context, credentials models.Credentials) (api.Result, error)
	CreateUser(ctx context.Context, user models.Registration) (api.Result, error)
	GetAllProducts(ctx context.Context) ([]models.Product, error)
	CreateOrder(ctx context.Context, order models.Order) (api.Result, error)
	GetAllOrders(ctx context.Context) ([]models.Order, error)
	GetAllUsers(ctx context.Context) ([]models.User, error)
	CreateProduct(ctx context.Context, product models.ProductInput) (api.Result, error)
	UpdateProduct(ctx context.Context, id int64, product models.ProductInput) (api.Result, error)
	DeleteProduct(ctx context.Context, id int64) (api.Result, error)
	SetToken(ctx context.Context, token string) error
	StoredToken(ctx context.Context) (string, bool, error)
}

// CatalogCache is an optional second-level store for the catalog. *cache.CatalogCache implements it.
type CatalogCache interface {
	Load(ctx context.Context) ([]models.Product, error)
	Store(ctx context.Context, products []models.Product) error
}

// Controller is the application state of one shopper session
type Controller struct {
	backend  Backend
	scopes   storage.Scopes
	notifier Notifier
	catalog  CatalogCache
	now      func() time.Time

	mu       sync.Mutex
	user     *models.User
	products []models.Product
	cart     []models.CartLine
}

// Option customizes a Controller
type Option func(*Controller)

func WithNotifier(n Notifier) Option {
	return func(c *Controller) { c.notifier = n }
}

// WithCatalogCache mirrors each fetched catalog into cc and falls back to it
// when the first fetch fails.
func WithCatalogCache(cc CatalogCache) Option {
	return func(c *Controller) { c.catalog = cc }
}

// WithClock replaces time.Now for order references and dates
func WithClock(now func() time.Time) Option {
	return func(c *Controller) { c.now = now }
}

// New returns an anonymous controller with an empty cart. Call Initialize to load persisted state.
func New(backend Backend, scopes storage.Scopes, opts ...Option) *Controller {
	c := &Controller{
		backend:  backend,
		scopes:   scopes,
		notifier: nopNotifier{},
		now:      time.Now,
		cart:     []models.CartLine{},
	}
	for _, opt := range opts {
		opt(c)
	}
	return c
}

// Initialize loads the cart and the session from storage, then fetches the
// catalog. Storage problems are logged and leave the defaults in place; a
// catalog failure is returned tagged with ErrCatalogUnavailable.
func (c *Controller) Initialize(ctx context.Context) error {
	c.loadCart(ctx)
	c.restoreSession(ctx)
	return c.RefreshCatalog(ctx)
}

func (c *Controller) loadCart(ctx context.Context) {
	var lines []models.CartLine
	if _, err := storage.GetJSON(ctx, c.scopes.Durable, storage.KeyCart, &lines); err != nil {
		log.Printf("Error loading cart, starting empty: %v", err)
		lines = nil
	}

	cart := make([]models.CartLine, 0, len(lines))
	for _, l := range lines {
		if l.Quantity > 0 {
			cart = append(cart, l)
		}
	}

	c.mu.Lock()
	c.cart = cart
	c.mu.Unlock()
	c.notifier.Render(ViewCart)
}

func (c *Controller) restoreSession(ctx context.Context) {
	token, ok, err := c.backend.StoredToken(ctx)
	if err != nil {
		log.Printf("Error reading stored token, staying anonymous: %v", err)
		return
	}
	if !ok || token == "" {
		return
	}

	var user models.User
	found, err := storage.GetJSON(ctx, c.scopes.Session, storage.KeyCurrentUser, &user)
	if err != nil {
		log.Printf("Error reading stored user, staying anonymous: %v", err)
		return
	}
	if !found {
		return
	}

	if err := c.backend.SetToken(ctx, token); err != nil {
		log.Printf("Error restoring token, staying anonymous: %v", err)
		return
	}

	c.mu.Lock()
	c.user = &user
	c.mu.Unlock()

	c.notifier.Render(ViewSession)
	if user.IsAdmin() {
		c.notifier.Render(ViewAdmin)
	}
}

// RefreshCatalog replaces the catalog with a full fetch. On failure the
// previous catalog stays in place (or, if there is none yet, the cached one
// is used) and the error is returned tagged with ErrCatalogUnavailable.
func (c *Controller) RefreshCatalog(ctx context.Context) (err error) {
	ctx, span := tracer.Start(ctx, "storefront.RefreshCatalog")
	defer func() { endSpan(span, err) }()

	products, err := c.backend.GetAllProducts(ctx)
	if err != nil {
		c.fallbackToCache(ctx)
		c.notifier.Notify(NoticeError, "Failed to load products")
		return tag(ErrCatalogUnavailable, err)
	}
	if products == nil {
		products = []models.Product{}
	}

	c.mu.Lock()
	c.products = products
	c.mu.Unlock()

	if c.catalog != nil {
		if err := c.catalog.Store(ctx, products); err != nil {
			log.Printf("Failed to populate catalog cache: %v", err)
		}
	}

	c.notifier.Render(ViewCatalog)
	return nil
}

func (c *Controller) fallbackToCache(ctx context.Context) {
	if c.catalog == nil {
		return
	}
	c.mu.Lock()
	empty := c.products == nil
	c.mu.Unlock()
	if !empty {
		return
	}

	cached, err := c.catalog.Load(ctx)
	if err != nil {
		log.Printf("Catalog cache fallback failed: %v", err)
		return
	}

	c.mu.Lock()
	if c.products == nil {
		c.products = cached
	}
	c.mu.Unlock()
	log.Printf("Serving %d products from catalog cache after fetch failure.", len(cached))
	c.notifier.Render(ViewCatalog)
}

// Session returns a copy of the authenticated user, or nil when anonymous
func (c *Controller) Session() *models.User {
	c.mu.Lock()
	defer c.mu.Unlock()
	if c.user == nil {
		return nil
	}
	u := *c.user
	return &u
}

// IsAdmin reports whether the session user has the admin role
func (c *Controller) IsAdmin() bool {
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.user.IsAdmin()
}

// Logout clears the token and the user together, in memory and in storage
func (c *Controller) Logout(ctx context.Context) error {
	if err := c.backend.SetToken(ctx, ""); err != nil {
		return errors.Wrap(err, "clear token")
	}
	if err := c.scopes.Session.Delete(ctx, storage.KeyCurrentUser); err != nil {
		log.Printf("Error removing stored user: %v", err)
	}

	c.mu.Lock()
	c.user = nil
	c.mu.Unlock()

	c.notifier.Render(ViewSession)
	c.notifier.Notify(NoticeInfo, "You have been logged out")
	return nil
}

func endSpan(span trace.Span, err error) {
	if err != nil {
		span.RecordError(err)
		span.SetStatus(codes.Error, err.Error())
	}
	span.End()
}

// Package web binds browser requests to storefront controllers, one
// controller per shopper session identified by a cookie.
package web

import (
	"errors"
	"net/http"
	"strconv"

	"github.com/gin-gonic/gin"

	"gitlab.connectwisedev.com/storefront-client/models"
	"gitlab.connectwisedev.com/storefront-client/pkg/api"
	"gitlab.connectwisedev.com/storefront-client/pkg/storefront"
)

const (
	SessionCookie = "storefront_session"
	sessionKey    = "storefront.session"
	cookieMaxAge  = 30 * 24 * 60 * 60
)

// NewRouter returns the gin engine serving the storefront JSON API
func NewRouter(sessions *Sessions) *gin.Engine {
	router := gin.New()
	router.Use(gin.Recovery())

	router.GET("/health", func(c *gin.Context) {
		c.JSON(http.StatusOK, gin.H{"status": "ok", "sessions": sessions.Len()})
	})

	h := &handler{}
	g := router.Group("/api", withSession(sessions))

	g.GET("/products", h.listProducts)
	g.GET("/products/featured", h.featuredProducts)
	g.POST("/catalog/refresh", h.refreshCatalog)

	g.POST("/login", h.login)
	g.POST("/register", h.register)
	g.POST("/logout", h.logout)
	g.GET("/session", h.currentSession)
	g.GET("/notifications", h.notifications)

	g.GET("/cart", h.getCart)
	g.POST("/cart", h.addToCart)
	g.PATCH("/cart", h.updateCartLine)
	g.DELETE("/cart", h.removeCartLine)
	g.POST("/checkout", h.checkout)

	admin := g.Group("/admin")
	admin.GET("/stats", h.adminStats)
	admin.POST("/products", h.adminCreateProduct)
	admin.PUT("/products/:id", h.adminUpdateProduct)
	admin.DELETE("/products/:id", h.adminDeleteProduct)

	return router
}

func withSession(sessions *Sessions) gin.HandlerFunc {
	return func(c *gin.Context) {
		cookie, _ := c.Cookie(SessionCookie)
		id, sess := sessions.Get(c.Request.Context(), cookie)
		if id != cookie {
			c.SetSameSite(http.SameSiteLaxMode)
			c.SetCookie(SessionCookie, id, cookieMaxAge, "/", "", false, true)
		}
		c.Set(sessionKey, sess)
		c.Next()
	}
}

func sessionOf(c *gin.Context) *session {
	return c.MustGet(sessionKey).(*session)
}

func controllerOf(c *gin.Context) *storefront.Controller {
	return sessionOf(c).controller
}

// fail maps a controller or access-layer error to a status and a JSON body
func fail(c *gin.Context, err error) {
	status := http.StatusInternalServerError
	var apiErr *api.Error
	switch {
	case errors.Is(err, storefront.ErrAuthRequired), errors.Is(err, storefront.ErrAuthFailed):
		status = http.StatusUnauthorized
	case errors.Is(err, storefront.ErrForbidden):
		status = http.StatusForbidden
	case errors.Is(err, storefront.ErrProductNotFound), errors.Is(err, storefront.ErrCartLineNotFound):
		status = http.StatusNotFound
	case errors.Is(err, storefront.ErrInvalidQuantity), errors.Is(err, storefront.ErrEmptyCart):
		status = http.StatusBadRequest
	case errors.Is(err, storefront.ErrCatalogUnavailable), errors.As(err, &apiErr):
		status = http.StatusBadGateway
	}
	c.JSON(status, gin.H{"error": err.Error()})
}

func badRequest(c *gin.Context, err error) {
	c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
}

func productID(c *gin.Context) (int64, bool) {
	id, err := strconv.ParseInt(c.Param("id"), 10, 64)
	if err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "invalid product id"})
		return 0, false
	}
	return id, true
}

// sessionView is what the browser needs to render the account area
type sessionView struct {
	Authenticated bool         `json:"authenticated"`
	Admin         bool         `json:"admin"`
	User          *models.User `json:"user,omitempty"`
}

func newSessionView(user *models.User) sessionView {
	return sessionView{Authenticated: user != nil, Admin: user.IsAdmin(), User: user}
}

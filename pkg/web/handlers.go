package web

import (
	"net/http"
	"strconv"

	"github.com/gin-gonic/gin"

	"gitlab.connectwisedev.com/storefront-client/models"
	"gitlab.connectwisedev.com/storefront-client/pkg/storefront"
)

type handler struct{}

type cartLineRequest struct {
	ProductID int64  `json:"productId" binding:"required"`
	Size      string `json:"size"`
	Quantity  int    `json:"quantity"`
}

func (h *handler) listProducts(c *gin.Context) {
	filter := storefront.Filter{
		Category: c.Query("category"),
		Size:     c.Query("size"),
		Search:   c.Query("q"),
	}
	if v := c.Query("maxPrice"); v != "" {
		maxPrice, err := strconv.ParseFloat(v, 64)
		if err != nil {
			c.JSON(http.StatusBadRequest, gin.H{"error": "invalid maxPrice"})
			return
		}
		filter.MaxPrice = maxPrice
	}
	if v := c.Query("featured"); v != "" {
		featured, err := strconv.ParseBool(v)
		if err != nil {
			c.JSON(http.StatusBadRequest, gin.H{"error": "invalid featured"})
			return
		}
		filter.Featured = featured
	}
	c.JSON(http.StatusOK, gin.H{"products": controllerOf(c).FilterProducts(filter)})
}

func (h *handler) featuredProducts(c *gin.Context) {
	c.JSON(http.StatusOK, gin.H{"products": controllerOf(c).FeaturedProducts()})
}

func (h *handler) refreshCatalog(c *gin.Context) {
	ctrl := controllerOf(c)
	if err := ctrl.RefreshCatalog(c.Request.Context()); err != nil {
		fail(c, err)
		return
	}
	c.JSON(http.StatusOK, gin.H{"count": len(ctrl.Products())})
}

func (h *handler) login(c *gin.Context) {
	var credentials models.Credentials
	if err := c.ShouldBindJSON(&credentials); err != nil {
		badRequest(c, err)
		return
	}
	user, err := controllerOf(c).Authenticate(c.Request.Context(), credentials)
	if err != nil {
		fail(c, err)
		return
	}
	c.JSON(http.StatusOK, newSessionView(user))
}

func (h *handler) register(c *gin.Context) {
	var registration models.Registration
	if err := c.ShouldBindJSON(&registration); err != nil {
		badRequest(c, err)
		return
	}
	user, err := controllerOf(c).Register(c.Request.Context(), registration)
	if err != nil {
		fail(c, err)
		return
	}
	c.JSON(http.StatusCreated, newSessionView(user))
}

func (h *handler) logout(c *gin.Context) {
	if err := controllerOf(c).Logout(c.Request.Context()); err != nil {
		fail(c, err)
		return
	}
	c.Status(http.StatusNoContent)
}

func (h *handler) currentSession(c *gin.Context) {
	c.JSON(http.StatusOK, newSessionView(controllerOf(c).Session()))
}

func (h *handler) notifications(c *gin.Context) {
	notices, views := sessionOf(c).inbox.Drain()
	c.JSON(http.StatusOK, gin.H{"notices": notices, "render": views})
}

func (h *handler) getCart(c *gin.Context) {
	c.JSON(http.StatusOK, controllerOf(c).CartView())
}

func (h *handler) addToCart(c *gin.Context) {
	var req cartLineRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		badRequest(c, err)
		return
	}
	ctrl := controllerOf(c)

	if req.Quantity == 0 {
		req.Quantity = 1
	}
	var err error
	if req.Size == "" {
		err = ctrl.AddToCartDefaultSize(c.Request.Context(), req.ProductID, req.Quantity)
	} else {
		err = ctrl.AddToCart(c.Request.Context(), req.ProductID, req.Size, req.Quantity)
	}
	if err != nil {
		fail(c, err)
		return
	}
	c.JSON(http.StatusOK, ctrl.CartView())
}

func (h *handler) updateCartLine(c *gin.Context) {
	var req cartLineRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		badRequest(c, err)
		return
	}
	ctrl := controllerOf(c)
	if err := ctrl.UpdateCartLineQuantity(c.Request.Context(), req.ProductID, req.Size, req.Quantity); err != nil {
		fail(c, err)
		return
	}
	c.JSON(http.StatusOK, ctrl.CartView())
}

func (h *handler) removeCartLine(c *gin.Context) {
	var req cartLineRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		badRequest(c, err)
		return
	}
	ctrl := controllerOf(c)
	if err := ctrl.RemoveCartLine(c.Request.Context(), req.ProductID, req.Size); err != nil {
		fail(c, err)
		return
	}
	c.JSON(http.StatusOK, ctrl.CartView())
}

func (h *handler) checkout(c *gin.Context) {
	order, err := controllerOf(c).Checkout(c.Request.Context())
	if err != nil {
		fail(c, err)
		return
	}
	c.JSON(http.StatusCreated, order)
}

func (h *handler) adminStats(c *gin.Context) {
	stats, err := controllerOf(c).AdminStats(c.Request.Context())
	if err != nil {
		fail(c, err)
		return
	}
	c.JSON(http.StatusOK, stats)
}

func (h *handler) adminCreateProduct(c *gin.Context) {
	var input models.ProductInput
	if err := c.ShouldBindJSON(&input); err != nil {
		badRequest(c, err)
		return
	}
	if err := controllerOf(c).AdminCreateProduct(c.Request.Context(), input); err != nil {
		fail(c, err)
		return
	}
	c.Status(http.StatusCreated)
}

func (h *handler) adminUpdateProduct(c *gin.Context) {
	id, ok := productID(c)
	if !ok {
		return
	}
	var input models.ProductInput
	if err := c.ShouldBindJSON(&input); err != nil {
		badRequest(c, err)
		return
	}
	if err := controllerOf(c).AdminUpdateProduct(c.Request.Context(), id, input); err != nil {
		fail(c, err)
		return
	}
	c.Status(http.StatusNoContent)
}

func (h *handler) adminDeleteProduct(c *gin.Context) {
	id, ok := productID(c)
	if !ok {
		return
	}
	if err := controllerOf(c).AdminDeleteProduct(c.Request.Context(), id); err != nil {
		fail(c, err)
		return
	}
	c.Status(http.StatusNoContent)
}

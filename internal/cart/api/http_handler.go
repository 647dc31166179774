package api

import (
	"errors"
	"net/http"
	"strings"

	"github.com/gin-gonic/gin"
	"github.com/google/uuid"
	"github.com/ridloal/fashion-dropship-store/internal/cart/domain"
	"github.com/ridloal/fashion-dropship-store/internal/cart/service"
	orderApi "github.com/ridloal/fashion-dropship-store/internal/order/api"
	"github.com/ridloal/fashion-dropship-store/internal/platform/httpx"
	"github.com/ridloal/fashion-dropship-store/internal/platform/logger"
	pRepo "github.com/ridloal/fashion-dropship-store/internal/product/repository"
	userApi "github.com/ridloal/fashion-dropship-store/internal/user/api"
)

const (
	HeaderSessionID = "X-Session-ID"

	CodeCartError          = "CART_ERROR"
	CodeCartItemNotFound   = "CART_ITEM_NOT_FOUND"
	CodeCartEmpty          = "CART_EMPTY"
	CodeProductNotFound    = "PRODUCT_NOT_FOUND"
	CodeProductUnavailable = "PRODUCT_UNAVAILABLE"
	CodeInsufficientStock  = "INSUFFICIENT_STOCK"
)

type CartHandler struct {
	cartService service.CartService
}

func NewCartHandler(cs service.CartService) *CartHandler {
	return &CartHandler{cartService: cs}
}

// RegisterRoutes mounts /cart. optionalAuth attaches the user to carts and orders when a token is sent.
func (h *CartHandler) RegisterRoutes(router *gin.RouterGroup, optionalAuth ...gin.HandlerFunc) {
	cartRoutes := router.Group("/cart", optionalAuth...)
	cartRoutes.Use(Session())
	{
		cartRoutes.GET("", h.GetCart)
		cartRoutes.DELETE("", h.Clear)
		cartRoutes.POST("/items", h.AddItem)
		cartRoutes.PATCH("/items/:itemId", h.UpdateItem)
		cartRoutes.DELETE("/items/:itemId", h.RemoveItem)
		cartRoutes.POST("/checkout", h.Checkout)
	}
}

// Session reads X-Session-ID or issues a new one, and echoes it on the response.
func Session() gin.HandlerFunc {
	return func(c *gin.Context) {
		sid := strings.TrimSpace(c.GetHeader(HeaderSessionID))
		if sid == "" {
			sid = "session_" + uuid.NewString()
		}
		c.Set(HeaderSessionID, sid)
		c.Header(HeaderSessionID, sid)
		c.Next()
	}
}

func sessionID(c *gin.Context) string {
	return c.GetString(HeaderSessionID)
}

func writeError(c *gin.Context, op string, err error) {
	switch {
	case errors.Is(err, service.ErrInvalidItem):
		httpx.Fail(c, http.StatusBadRequest, httpx.CodeInvalidRequest, err.Error())
	case errors.Is(err, pRepo.ErrProductNotFound):
		httpx.Fail(c, http.StatusNotFound, CodeProductNotFound, "Product not found")
	case errors.Is(err, service.ErrProductUnavailable):
		httpx.Fail(c, http.StatusBadRequest, CodeProductUnavailable, err.Error())
	case errors.Is(err, service.ErrInsufficientStock):
		httpx.Fail(c, http.StatusConflict, CodeInsufficientStock, err.Error())
	case errors.Is(err, service.ErrCartItemNotFound):
		httpx.Fail(c, http.StatusNotFound, CodeCartItemNotFound, "Cart item not found")
	default:
		logger.Error(op+" Hdl: service error", err)
		httpx.Fail(c, http.StatusInternalServerError, CodeCartError, "Failed to update cart")
	}
}

func (h *CartHandler) GetCart(c *gin.Context) {
	cart, err := h.cartService.GetCart(c.Request.Context(), sessionID(c))
	if err != nil {
		logger.Error("GetCart Hdl: service error", err)
		httpx.Fail(c, http.StatusInternalServerError, CodeCartError, "Failed to fetch cart")
		return
	}
	httpx.OK(c, http.StatusOK, cart)
}

func (h *CartHandler) AddItem(c *gin.Context) {
	var req domain.AddItemRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		httpx.Fail(c, http.StatusBadRequest, httpx.CodeInvalidRequest, "Invalid request payload: "+err.Error())
		return
	}
	cart, err := h.cartService.AddItem(c.Request.Context(), sessionID(c), userApi.UserID(c), req)
	if err != nil {
		writeError(c, "AddItem", err)
		return
	}
	httpx.OKMessage(c, http.StatusOK, "Item added to cart", cart)
}

func (h *CartHandler) UpdateItem(c *gin.Context) {
	var req domain.UpdateItemRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		httpx.Fail(c, http.StatusBadRequest, httpx.CodeInvalidRequest, "Invalid request payload: "+err.Error())
		return
	}
	cart, err := h.cartService.UpdateItem(c.Request.Context(), sessionID(c), c.Param("itemId"), *req.Quantity)
	if err != nil {
		writeError(c, "UpdateItem", err)
		return
	}
	httpx.OK(c, http.StatusOK, cart)
}

func (h *CartHandler) RemoveItem(c *gin.Context) {
	cart, err := h.cartService.RemoveItem(c.Request.Context(), sessionID(c), c.Param("itemId"))
	if err != nil {
		writeError(c, "RemoveItem", err)
		return
	}
	httpx.OK(c, http.StatusOK, cart)
}

func (h *CartHandler) Clear(c *gin.Context) {
	if err := h.cartService.Clear(c.Request.Context(), sessionID(c)); err != nil {
		logger.Error("ClearCart Hdl: service error", err)
		httpx.Fail(c, http.StatusInternalServerError, CodeCartError, "Failed to clear cart")
		return
	}
	httpx.OKMessage(c, http.StatusOK, "Cart cleared", nil)
}

func (h *CartHandler) Checkout(c *gin.Context) {
	var req domain.CheckoutRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		httpx.Fail(c, http.StatusBadRequest, httpx.CodeInvalidRequest, "Invalid request payload: "+err.Error())
		return
	}
	order, err := h.cartService.Checkout(c.Request.Context(), sessionID(c), userApi.UserID(c), req)
	if err != nil {
		if errors.Is(err, service.ErrCartEmpty) {
			httpx.Fail(c, http.StatusBadRequest, CodeCartEmpty, "Cart is empty")
			return
		}
		orderApi.WriteCreateError(c, err)
		return
	}
	httpx.OKMessage(c, http.StatusCreated, "Order created", order)
}

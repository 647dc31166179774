package api

import (
	"errors"
	"net/http"

	"github.com/gin-gonic/gin"
	"github.com/ridloal/fashion-dropship-store/internal/order/domain"
	"github.com/ridloal/fashion-dropship-store/internal/order/repository"
	"github.com/ridloal/fashion-dropship-store/internal/order/service"
	"github.com/ridloal/fashion-dropship-store/internal/platform/httpx"
	"github.com/ridloal/fashion-dropship-store/internal/platform/logger"
	pRepo "github.com/ridloal/fashion-dropship-store/internal/product/repository"
	userApi "github.com/ridloal/fashion-dropship-store/internal/user/api"
	uDomain "github.com/ridloal/fashion-dropship-store/internal/user/domain"
)

const (
	CodeOrderNotFound      = "ORDER_NOT_FOUND"
	CodeOrderError         = "ORDER_ERROR"
	CodeOrdersError        = "ORDERS_ERROR"
	CodeInsufficientStock  = "INSUFFICIENT_STOCK"
	CodeProductNotFound    = "PRODUCT_NOT_FOUND"
	CodeProductUnavailable = "PRODUCT_UNAVAILABLE"
	CodeInvalidTransition  = "INVALID_STATUS_TRANSITION"
	CodeAnalyticsError     = "ANALYTICS_ERROR"
)

// Guards are the auth middlewares the order routes need.
type Guards struct {
	Optional gin.HandlerFunc
	Required gin.HandlerFunc
	Admin    gin.HandlerFunc
}

type OrderHandler struct {
	orderService service.OrderService
}

func NewOrderHandler(os service.OrderService) *OrderHandler {
	return &OrderHandler{orderService: os}
}

func (h *OrderHandler) RegisterRoutes(router *gin.RouterGroup, g Guards) {
	orderRoutes := router.Group("/orders")
	{
		orderRoutes.POST("", g.Optional, h.CreateOrder)
		orderRoutes.GET("/:id", g.Optional, h.GetOrder)
		orderRoutes.PATCH("/:id/status", g.Admin, h.UpdateStatus)
	}
	router.GET("/auth/me/orders", g.Required, h.ListMyOrders)
	router.GET("/admin/analytics", g.Admin, h.Analytics)
}

// WriteCreateError maps CreateOrder failures onto the response. Cart checkout shares it.
func WriteCreateError(c *gin.Context, err error) {
	switch {
	case errors.Is(err, service.ErrInvalidOrder):
		httpx.Fail(c, http.StatusBadRequest, httpx.CodeInvalidRequest, err.Error())
	case errors.Is(err, pRepo.ErrProductNotFound):
		httpx.Fail(c, http.StatusNotFound, CodeProductNotFound, "Product not found")
	case errors.Is(err, service.ErrProductUnavailable):
		httpx.Fail(c, http.StatusBadRequest, CodeProductUnavailable, err.Error())
	case errors.Is(err, service.ErrStockReservationFailed):
		httpx.Fail(c, http.StatusConflict, CodeInsufficientStock, err.Error()) // 409 Conflict
	default:
		logger.Error("CreateOrder Hdl: unhandled service error", err)
		httpx.Fail(c, http.StatusInternalServerError, CodeOrderError, "Failed to create order")
	}
}

func (h *OrderHandler) CreateOrder(c *gin.Context) {
	var req domain.CreateOrderRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		logger.Warn("CreateOrder Hdl: bad request: %v", err)
		httpx.Fail(c, http.StatusBadRequest, httpx.CodeInvalidRequest, "Invalid request payload: "+err.Error())
		return
	}
	req.UserID = userApi.UserID(c) // kosong untuk guest checkout

	order, err := h.orderService.CreateOrder(c.Request.Context(), req)
	if err != nil {
		WriteCreateError(c, err)
		return
	}
	httpx.OKMessage(c, http.StatusCreated, "Order created", order)
}

// canView hides other customers' orders behind a 404.
func canView(c *gin.Context, o *domain.Order) bool {
	if o.UserID == "" {
		return true
	}
	if uDomain.Role(c.GetString(userApi.ContextRole)) == uDomain.RoleAdmin {
		return true
	}
	return userApi.UserID(c) == o.UserID
}

func (h *OrderHandler) GetOrder(c *gin.Context) {
	order, err := h.orderService.GetOrder(c.Request.Context(), c.Param("id"))
	if err != nil {
		if errors.Is(err, repository.ErrOrderNotFound) {
			httpx.Fail(c, http.StatusNotFound, CodeOrderNotFound, "Order not found")
			return
		}
		logger.Error("GetOrder Hdl: service error", err)
		httpx.Fail(c, http.StatusInternalServerError, CodeOrderError, "Failed to fetch order")
		return
	}
	if !canView(c, order) {
		httpx.Fail(c, http.StatusNotFound, CodeOrderNotFound, "Order not found")
		return
	}
	httpx.OK(c, http.StatusOK, order)
}

func (h *OrderHandler) ListMyOrders(c *gin.Context) {
	orders, err := h.orderService.ListUserOrders(c.Request.Context(), userApi.UserID(c))
	if err != nil {
		logger.Error("ListMyOrders Hdl: service error", err)
		httpx.Fail(c, http.StatusInternalServerError, CodeOrdersError, "Failed to fetch orders")
		return
	}
	httpx.OK(c, http.StatusOK, orders)
}

func (h *OrderHandler) UpdateStatus(c *gin.Context) {
	var req domain.UpdateStatusRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		httpx.Fail(c, http.StatusBadRequest, httpx.CodeInvalidRequest, "Invalid request payload: "+err.Error())
		return
	}

	order, err := h.orderService.UpdateStatus(c.Request.Context(), c.Param("id"), req.Status)
	if err != nil {
		switch {
		case errors.Is(err, repository.ErrOrderNotFound):
			httpx.Fail(c, http.StatusNotFound, CodeOrderNotFound, "Order not found")
		case errors.Is(err, service.ErrInvalidTransition):
			httpx.Fail(c, http.StatusConflict, CodeInvalidTransition, err.Error())
		default:
			logger.Error("UpdateStatus Hdl: service error", err)
			httpx.Fail(c, http.StatusInternalServerError, CodeOrderError, "Failed to update order status")
		}
		return
	}
	httpx.OKMessage(c, http.StatusOK, "Order status updated", order)
}

func (h *OrderHandler) Analytics(c *gin.Context) {
	res, err := h.orderService.SalesAnalytics(c.Request.Context())
	if err != nil {
		logger.Error("Analytics Hdl: service error", err)
		httpx.Fail(c, http.StatusInternalServerError, CodeAnalyticsError, "Failed to compute analytics")
		return
	}
	httpx.OK(c, http.StatusOK, res)
}

package api

import (
	"errors"
	"net/http"
	"strconv"

	"github.com/gin-gonic/gin"
	"github.com/ridloal/fashion-dropship-store/internal/platform/httpx"
	"github.com/ridloal/fashion-dropship-store/internal/platform/logger"
	"github.com/ridloal/fashion-dropship-store/internal/supplier/domain"
	"github.com/ridloal/fashion-dropship-store/internal/supplier/repository"
	"github.com/ridloal/fashion-dropship-store/internal/supplier/service"
)

const (
	CodeSupplierError           = "SUPPLIER_ERROR"
	CodeSupplierProductNotFound = "SUPPLIER_PRODUCT_NOT_FOUND"
	CodeSupplierOrderNotFound   = "SUPPLIER_ORDER_NOT_FOUND"
	CodeWebhookError            = "WEBHOOK_ERROR"
	CodeInventorySyncError      = "INVENTORY_SYNC_ERROR"
	CodeMetricsError            = "METRICS_ERROR"
)

type SupplierHandler struct {
	supplierService service.SupplierService
}

func NewSupplierHandler(ss service.SupplierService) *SupplierHandler {
	return &SupplierHandler{supplierService: ss}
}

// RegisterRoutes mounts /supplier. Sync and metrics sit behind the admin middleware.
func (h *SupplierHandler) RegisterRoutes(router *gin.RouterGroup, admin ...gin.HandlerFunc) {
	supplierRoutes := router.Group("/supplier")
	{
		supplierRoutes.GET("/products", h.ListProducts)
		supplierRoutes.GET("/products/:id", h.GetProduct)
		supplierRoutes.GET("/products/:id/availability", h.CheckAvailability)
		supplierRoutes.GET("/orders/:id", h.GetOrder)
		supplierRoutes.POST("/webhooks", h.Webhook)
		supplierRoutes.POST("/shipping-quote", h.ShippingQuote)

		adminRoutes := supplierRoutes.Group("", admin...)
		adminRoutes.POST("/inventory/sync", h.SyncInventory)
		adminRoutes.GET("/metrics", h.Metrics)
	}
}

func (h *SupplierHandler) ListProducts(c *gin.Context) {
	products, err := h.supplierService.ListProducts(c.Request.Context())
	if err != nil {
		logger.Error("Supplier ListProducts Hdl: service error", err)
		httpx.Fail(c, http.StatusInternalServerError, CodeSupplierError, "Failed to fetch supplier products")
		return
	}
	httpx.OK(c, http.StatusOK, products)
}

func (h *SupplierHandler) GetProduct(c *gin.Context) {
	product, err := h.supplierService.GetProduct(c.Request.Context(), c.Param("id"))
	if err != nil {
		if errors.Is(err, repository.ErrSupplierProductNotFound) {
			httpx.Fail(c, http.StatusNotFound, CodeSupplierProductNotFound, "Supplier product not found")
			return
		}
		logger.Error("Supplier GetProduct Hdl: service error", err)
		httpx.Fail(c, http.StatusInternalServerError, CodeSupplierError, "Failed to fetch supplier product")
		return
	}
	httpx.OK(c, http.StatusOK, product)
}

func (h *SupplierHandler) CheckAvailability(c *gin.Context) {
	quantity := 1
	if q := c.Query("quantity"); q != "" {
		n, err := strconv.Atoi(q)
		if err != nil || n <= 0 {
			httpx.Fail(c, http.StatusBadRequest, httpx.CodeInvalidRequest, "quantity must be a positive integer")
			return
		}
		quantity = n
	}

	availability, err := h.supplierService.CheckAvailability(c.Request.Context(), c.Param("id"), quantity)
	if err != nil {
		logger.Error("Supplier CheckAvailability Hdl: service error", err)
		httpx.Fail(c, http.StatusInternalServerError, CodeSupplierError, "Failed to check availability")
		return
	}
	httpx.OK(c, http.StatusOK, availability)
}

func (h *SupplierHandler) GetOrder(c *gin.Context) {
	order, err := h.supplierService.GetOrder(c.Request.Context(), c.Param("id"))
	if err != nil {
		if errors.Is(err, repository.ErrSupplierOrderNotFound) {
			httpx.Fail(c, http.StatusNotFound, CodeSupplierOrderNotFound, "Supplier order not found")
			return
		}
		logger.Error("Supplier GetOrder Hdl: service error", err)
		httpx.Fail(c, http.StatusInternalServerError, CodeSupplierError, "Failed to fetch supplier order")
		return
	}
	httpx.OK(c, http.StatusOK, order)
}

func (h *SupplierHandler) Webhook(c *gin.Context) {
	var event domain.WebhookEvent
	if err := c.ShouldBindJSON(&event); err != nil {
		httpx.Fail(c, http.StatusBadRequest, httpx.CodeInvalidRequest, "Invalid webhook payload: "+err.Error())
		return
	}

	res, err := h.supplierService.HandleWebhook(c.Request.Context(), event)
	if err != nil {
		if errors.Is(err, service.ErrInvalidWebhook) {
			httpx.Fail(c, http.StatusBadRequest, CodeWebhookError, err.Error())
			return
		}
		logger.Error("Supplier Webhook Hdl: service error", err, map[string]interface{}{"type": event.Type, "event_id": event.ID})
		httpx.Fail(c, http.StatusInternalServerError, CodeWebhookError, "Failed to process webhook")
		return
	}
	httpx.OK(c, http.StatusOK, res)
}

func (h *SupplierHandler) ShippingQuote(c *gin.Context) {
	var req domain.ShippingQuoteRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		httpx.Fail(c, http.StatusBadRequest, httpx.CodeInvalidRequest, "Invalid request payload: "+err.Error())
		return
	}

	quote, err := h.supplierService.CalculateShipping(c.Request.Context(), req.Items, req.Country)
	if err != nil {
		logger.Error("Supplier ShippingQuote Hdl: service error", err)
		httpx.Fail(c, http.StatusInternalServerError, CodeSupplierError, "Failed to calculate shipping")
		return
	}
	httpx.OK(c, http.StatusOK, quote)
}

func (h *SupplierHandler) SyncInventory(c *gin.Context) {
	res, err := h.supplierService.SyncInventory(c.Request.Context())
	if err != nil {
		logger.Error("Supplier SyncInventory Hdl: service error", err)
		httpx.Fail(c, http.StatusInternalServerError, CodeInventorySyncError, "Unable to sync inventory with supplier")
		return
	}
	httpx.OKMessage(c, http.StatusOK, "Inventory synced", res)
}

func (h *SupplierHandler) Metrics(c *gin.Context) {
	metrics, err := h.supplierService.Metrics(c.Request.Context())
	if err != nil {
		logger.Error("Supplier Metrics Hdl: service error", err)
		httpx.Fail(c, http.StatusInternalServerError, CodeMetricsError, "Failed to fetch supplier metrics")
		return
	}
	httpx.OK(c, http.StatusOK, metrics)
}

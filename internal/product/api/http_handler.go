package api

import (
	"errors"
	"net/http"
	"strconv"

	"github.com/gin-gonic/gin"
	"github.com/ridloal/fashion-dropship-store/internal/platform/httpx"
	"github.com/ridloal/fashion-dropship-store/internal/platform/logger"
	"github.com/ridloal/fashion-dropship-store/internal/product/domain"
	"github.com/ridloal/fashion-dropship-store/internal/product/repository"
	"github.com/ridloal/fashion-dropship-store/internal/product/service"
)

const (
	CodeProductsError      = "PRODUCTS_ERROR"
	CodeProductNotFound    = "PRODUCT_NOT_FOUND"
	CodeProductError       = "PRODUCT_ERROR"
	CodeCreateProductError = "CREATE_PRODUCT_ERROR"
	CodeUpdateProductError = "UPDATE_PRODUCT_ERROR"
	CodeDeleteProductError = "DELETE_PRODUCT_ERROR"
)

type ProductHandler struct {
	productService service.ProductService
}

func NewProductHandler(ps service.ProductService) *ProductHandler {
	return &ProductHandler{productService: ps}
}

// RegisterRoutes mounts /products. Write routes are wrapped with the given admin middleware.
func (h *ProductHandler) RegisterRoutes(router *gin.RouterGroup, admin ...gin.HandlerFunc) {
	productRoutes := router.Group("/products")
	{
		productRoutes.GET("", h.ListProducts)
		productRoutes.GET("/featured", h.FeaturedProducts)
		productRoutes.GET("/best-sellers", h.BestSellers)
		productRoutes.GET("/:id", h.GetProduct)

		write := productRoutes.Group("", admin...)
		write.POST("", h.CreateProduct)
		write.PUT("/:id", h.UpdateProduct)
		write.DELETE("/:id", h.DeleteProduct)
	}
}

func atoiDefault(s string, def int) int {
	if v, err := strconv.Atoi(s); err == nil {
		return v
	}
	return def
}

func (h *ProductHandler) ListProducts(c *gin.Context) {
	page, limit := service.NormalizePage(atoiDefault(c.Query("page"), 1), atoiDefault(c.Query("limit"), service.DefaultPageSize))
	q := domain.ListQuery{
		Category: domain.Category(c.Query("category")),
		Search:   c.Query("search"),
		Featured: c.Query("featured") == "true",
		Offset:   (page - 1) * limit,
		Limit:    limit,
	}

	res, err := h.productService.ListProducts(c.Request.Context(), q)
	if err != nil {
		logger.Error("ListProducts Hdl: service error", err)
		httpx.Fail(c, http.StatusInternalServerError, CodeProductsError, "Failed to fetch products")
		return
	}
	httpx.OKPage(c, res.Products, httpx.NewPagination(page, limit, res.Total))
}

func (h *ProductHandler) FeaturedProducts(c *gin.Context) {
	products, err := h.productService.FeaturedProducts(c.Request.Context())
	if err != nil {
		logger.Error("FeaturedProducts Hdl: service error", err)
		httpx.Fail(c, http.StatusInternalServerError, CodeProductsError, "Failed to fetch products")
		return
	}
	httpx.OK(c, http.StatusOK, products)
}

func (h *ProductHandler) BestSellers(c *gin.Context) {
	products, err := h.productService.BestSellers(c.Request.Context())
	if err != nil {
		logger.Error("BestSellers Hdl: service error", err)
		httpx.Fail(c, http.StatusInternalServerError, CodeProductsError, "Failed to fetch products")
		return
	}
	httpx.OK(c, http.StatusOK, products)
}

func (h *ProductHandler) GetProduct(c *gin.Context) {
	productID := c.Param("id")
	product, err := h.productService.GetProductDetails(c.Request.Context(), productID)
	if err != nil {
		if errors.Is(err, repository.ErrProductNotFound) {
			httpx.Fail(c, http.StatusNotFound, CodeProductNotFound, "Product not found")
			return
		}
		logger.Error("GetProduct Hdl: service error", err)
		httpx.Fail(c, http.StatusInternalServerError, CodeProductError, "Failed to fetch product details")
		return
	}
	httpx.OK(c, http.StatusOK, product)
}

func (h *ProductHandler) CreateProduct(c *gin.Context) {
	var req domain.CreateProductRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		httpx.Fail(c, http.StatusBadRequest, httpx.CodeInvalidRequest, "Invalid request payload: "+err.Error())
		return
	}

	product, err := h.productService.CreateProduct(c.Request.Context(), req)
	if err != nil {
		if errors.Is(err, service.ErrInvalidProduct) {
			httpx.Fail(c, http.StatusBadRequest, httpx.CodeInvalidRequest, err.Error())
			return
		}
		logger.Error("CreateProduct Hdl: service error", err)
		httpx.Fail(c, http.StatusInternalServerError, CodeCreateProductError, "Failed to create product")
		return
	}
	httpx.OKMessage(c, http.StatusCreated, "Product created", product)
}

func (h *ProductHandler) UpdateProduct(c *gin.Context) {
	var req domain.UpdateProductRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		httpx.Fail(c, http.StatusBadRequest, httpx.CodeInvalidRequest, "Invalid request payload: "+err.Error())
		return
	}

	product, err := h.productService.UpdateProduct(c.Request.Context(), c.Param("id"), req)
	if err != nil {
		switch {
		case errors.Is(err, repository.ErrProductNotFound):
			httpx.Fail(c, http.StatusNotFound, CodeProductNotFound, "Product not found")
		case errors.Is(err, service.ErrInvalidProduct):
			httpx.Fail(c, http.StatusBadRequest, httpx.CodeInvalidRequest, err.Error())
		default:
			logger.Error("UpdateProduct Hdl: service error", err)
			httpx.Fail(c, http.StatusInternalServerError, CodeUpdateProductError, "Failed to update product")
		}
		return
	}
	httpx.OKMessage(c, http.StatusOK, "Product updated", product)
}

func (h *ProductHandler) DeleteProduct(c *gin.Context) {
	err := h.productService.DeleteProduct(c.Request.Context(), c.Param("id"))
	if err != nil {
		if errors.Is(err, repository.ErrProductNotFound) {
			httpx.Fail(c, http.StatusNotFound, CodeProductNotFound, "Product not found")
			return
		}
		logger.Error("DeleteProduct Hdl: service error", err)
		httpx.Fail(c, http.StatusInternalServerError, CodeDeleteProductError, "Failed to delete product")
		return
	}
	httpx.OKMessage(c, http.StatusOK, "Product deleted", nil)
}

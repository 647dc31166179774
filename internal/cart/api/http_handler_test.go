package api

import (
	"bytes"
	"context"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/ridloal/fashion-dropship-store/internal/cart/domain"
	"github.com/ridloal/fashion-dropship-store/internal/cart/repository"
	"github.com/ridloal/fashion-dropship-store/internal/cart/service"
	oDomain "github.com/ridloal/fashion-dropship-store/internal/order/domain"
	oRepo "github.com/ridloal/fashion-dropship-store/internal/order/repository"
	oService "github.com/ridloal/fashion-dropship-store/internal/order/service"
	"github.com/ridloal/fashion-dropship-store/internal/platform/events"
	"github.com/ridloal/fashion-dropship-store/internal/platform/httpx"
	"github.com/ridloal/fashion-dropship-store/internal/platform/money"
	pDomain "github.com/ridloal/fashion-dropship-store/internal/product/domain"
	pRepo "github.com/ridloal/fashion-dropship-store/internal/product/repository"
	pService "github.com/ridloal/fashion-dropship-store/internal/product/service"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

type envelope struct {
	Success bool             `json:"success"`
	Data    json.RawMessage  `json:"data"`
	Error   *httpx.ErrorBody `json:"error"`
}

func setup(t *testing.T) (*gin.Engine, pRepo.ProductRepository, []pDomain.Product) {
	t.Helper()
	gin.SetMode(gin.TestMode)
	ctx := context.Background()

	productRepo := pRepo.NewMemoryProductRepository()
	_, err := pRepo.Seed(ctx, productRepo)
	require.NoError(t, err)
	products, err := productRepo.ListActiveProducts(ctx)
	require.NoError(t, err)

	catalog := pService.NewProductService(productRepo)
	orders := oService.NewOrderService(oRepo.NewMemoryOrderRepository(), catalog, nil, events.NewLogPublisher(), money.DefaultRules(), time.Hour)
	carts := service.NewCartService(repository.NewMemoryCartRepository(), catalog, orders, money.DefaultRules())

	router := httpx.NewRouter()
	NewCartHandler(carts).RegisterRoutes(router.Group("/api"))
	return router, productRepo, products
}

func do(t *testing.T, router *gin.Engine, method, path, session string, body interface{}) (*httptest.ResponseRecorder, envelope) {
	t.Helper()
	var buf bytes.Buffer
	if body != nil {
		require.NoError(t, json.NewEncoder(&buf).Encode(body))
	}
	req := httptest.NewRequest(method, path, &buf)
	req.Header.Set("Content-Type", "application/json")
	if session != "" {
		req.Header.Set(HeaderSessionID, session)
	}
	w := httptest.NewRecorder()
	router.ServeHTTP(w, req)

	var env envelope
	require.NoError(t, json.Unmarshal(w.Body.Bytes(), &env), w.Body.String())
	return w, env
}

func TestCartHandler_SessionHeader(t *testing.T) {
	router, _, _ := setup(t)

	w, _ := do(t, router, http.MethodGet, "/api/cart", "", nil)
	assert.Regexp(t, `^session_[0-9a-f-]{36}$`, w.Header().Get(HeaderSessionID))

	w, _ = do(t, router, http.MethodGet, "/api/cart", "session_abc", nil)
	assert.Equal(t, "session_abc", w.Header().Get(HeaderSessionID))
}

func TestCartHandler_Flow(t *testing.T) {
	router, productRepo, products := setup(t)
	jeans := products[3] // 95.99, stock 38
	sid := "session_flow"

	w, env := do(t, router, http.MethodPost, "/api/cart/items", sid, map[string]interface{}{
		"productId": jeans.ID, "size": "M", "color": "Black", "quantity": 1,
	})
	require.Equal(t, http.StatusOK, w.Code, env.Error)
	var cart domain.Cart
	require.NoError(t, json.Unmarshal(env.Data, &cart))
	require.Len(t, cart.Items, 1)
	assert.Equal(t, "95.99", cart.Subtotal.StringFixed(2))

	t.Run("Too many is 409", func(t *testing.T) {
		w, env := do(t, router, http.MethodPatch, "/api/cart/items/"+cart.Items[0].ID, sid, map[string]int{"quantity": 500})
		assert.Equal(t, http.StatusConflict, w.Code)
		assert.Equal(t, CodeInsufficientStock, env.Error.Code)
	})

	t.Run("Unknown item is 404", func(t *testing.T) {
		w, env := do(t, router, http.MethodDelete, "/api/cart/items/ci_missing", sid, nil)
		assert.Equal(t, http.StatusNotFound, w.Code)
		assert.Equal(t, CodeCartItemNotFound, env.Error.Code)
	})

	t.Run("Checkout reserves stock and empties cart", func(t *testing.T) {
		w, env := do(t, router, http.MethodPost, "/api/cart/checkout", sid, map[string]interface{}{
			"paymentMethod": "authorize_net",
			"shippingAddress": map[string]string{
				"firstName": "Ana", "lastName": "Lee", "address1": "1 Main St",
				"city": "Austin", "state": "TX", "zipCode": "73301", "country": "US",
			},
		})
		require.Equal(t, http.StatusCreated, w.Code, env.Error)
		var order oDomain.Order
		require.NoError(t, json.Unmarshal(env.Data, &order))
		assert.Equal(t, oDomain.MethodAuthorizeNet, order.PaymentMethod)

		p, err := productRepo.GetProductByID(context.Background(), jeans.ID)
		require.NoError(t, err)
		assert.Equal(t, jeans.Stock-1, p.Stock)

		_, env = do(t, router, http.MethodGet, "/api/cart", sid, nil)
		var after domain.Cart
		require.NoError(t, json.Unmarshal(env.Data, &after))
		assert.Empty(t, after.Items)
	})

	t.Run("Checkout of empty cart is 400", func(t *testing.T) {
		w, env := do(t, router, http.MethodPost, "/api/cart/checkout", sid, map[string]interface{}{
			"paymentMethod": "paypal",
			"shippingAddress": map[string]string{
				"firstName": "Ana", "lastName": "Lee", "address1": "1 Main St",
				"city": "Austin", "state": "TX", "zipCode": "73301", "country": "US",
			},
		})
		assert.Equal(t, http.StatusBadRequest, w.Code)
		assert.Equal(t, CodeCartEmpty, env.Error.Code)
	})
}

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
	"github.com/ridloal/fashion-dropship-store/internal/order/domain"
	"github.com/ridloal/fashion-dropship-store/internal/order/repository"
	"github.com/ridloal/fashion-dropship-store/internal/order/service"
	"github.com/ridloal/fashion-dropship-store/internal/platform/events"
	"github.com/ridloal/fashion-dropship-store/internal/platform/httpx"
	"github.com/ridloal/fashion-dropship-store/internal/platform/money"
	pDomain "github.com/ridloal/fashion-dropship-store/internal/product/domain"
	pRepo "github.com/ridloal/fashion-dropship-store/internal/product/repository"
	pService "github.com/ridloal/fashion-dropship-store/internal/product/service"
	userApi "github.com/ridloal/fashion-dropship-store/internal/user/api"
	uDomain "github.com/ridloal/fashion-dropship-store/internal/user/domain"
	uRepo "github.com/ridloal/fashion-dropship-store/internal/user/repository"
	uService "github.com/ridloal/fashion-dropship-store/internal/user/service"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

type envelope struct {
	Success bool             `json:"success"`
	Data    json.RawMessage  `json:"data"`
	Message string           `json:"message"`
	Error   *httpx.ErrorBody `json:"error"`
}

type fixture struct {
	router     *gin.Engine
	products   []pDomain.Product
	userToken  string
	adminToken string
}

func setup(t *testing.T) *fixture {
	t.Helper()
	gin.SetMode(gin.TestMode)
	ctx := context.Background()

	productRepo := pRepo.NewMemoryProductRepository()
	_, err := pRepo.Seed(ctx, productRepo)
	require.NoError(t, err)
	products, err := productRepo.ListActiveProducts(ctx)
	require.NoError(t, err)

	users := uService.NewUserService(uRepo.NewMemoryUserRepository(), "test-secret", time.Hour)
	_, err = users.Register(ctx, uDomain.RegisterRequest{Email: "jane@example.com", Name: "Jane", Password: "password123"})
	require.NoError(t, err)
	_, err = users.EnsureAdmin(ctx, "admin@example.com", "change-me-admin")
	require.NoError(t, err)
	userLogin, err := users.Login(ctx, uDomain.LoginRequest{Email: "jane@example.com", Password: "password123"})
	require.NoError(t, err)
	adminLogin, err := users.Login(ctx, uDomain.LoginRequest{Email: "admin@example.com", Password: "change-me-admin"})
	require.NoError(t, err)

	orders := service.NewOrderService(repository.NewMemoryOrderRepository(), pService.NewProductService(productRepo), nil,
		events.NewLogPublisher(), money.DefaultRules(), time.Hour)
	auth := userApi.NewAuthMiddleware(users)

	router := httpx.NewRouter()
	NewOrderHandler(orders).RegisterRoutes(router.Group("/api"), Guards{
		Optional: auth.OptionalAuth(),
		Required: auth.RequireAuth(),
		Admin:    auth.RequireRole(uDomain.RoleAdmin),
	})
	return &fixture{router: router, products: products, userToken: userLogin.Token, adminToken: adminLogin.Token}
}

func (f *fixture) do(t *testing.T, method, path, token string, body interface{}) (*httptest.ResponseRecorder, envelope) {
	t.Helper()
	var buf bytes.Buffer
	if body != nil {
		require.NoError(t, json.NewEncoder(&buf).Encode(body))
	}
	req := httptest.NewRequest(method, path, &buf)
	req.Header.Set("Content-Type", "application/json")
	if token != "" {
		req.Header.Set("Authorization", "Bearer "+token)
	}
	w := httptest.NewRecorder()
	f.router.ServeHTTP(w, req)

	var env envelope
	require.NoError(t, json.Unmarshal(w.Body.Bytes(), &env), w.Body.String())
	return w, env
}

func orderBody(productID string, qty int) map[string]interface{} {
	return map[string]interface{}{
		"items":         []map[string]interface{}{{"productId": productID, "size": "M", "color": "Classic Black", "quantity": qty}},
		"paymentMethod": "stripe_card",
		"shippingAddress": map[string]string{
			"firstName": "Ana", "lastName": "Lee", "address1": "1 Main St",
			"city": "Austin", "state": "TX", "zipCode": "73301", "country": "US",
		},
	}
}

func TestOrderHandler_CreateAndGet(t *testing.T) {
	f := setup(t)
	lbd := f.products[1] // Little Black Dress, 79.99

	w, env := f.do(t, http.MethodPost, "/api/orders", f.userToken, orderBody(lbd.ID, 1))
	require.Equal(t, http.StatusCreated, w.Code, env.Error)
	var order domain.Order
	require.NoError(t, json.Unmarshal(env.Data, &order))
	assert.Equal(t, "79.99", order.Subtotal.StringFixed(2))
	assert.Equal(t, "0.00", order.Shipping.StringFixed(2)) // di atas ambang gratis ongkir
	assert.NotEmpty(t, order.UserID)

	t.Run("Owner can read", func(t *testing.T) {
		w, _ := f.do(t, http.MethodGet, "/api/orders/"+order.ID, f.userToken, nil)
		assert.Equal(t, http.StatusOK, w.Code)
	})

	t.Run("Anonymous caller gets 404 for a customer order", func(t *testing.T) {
		w, env := f.do(t, http.MethodGet, "/api/orders/"+order.ID, "", nil)
		assert.Equal(t, http.StatusNotFound, w.Code)
		assert.Equal(t, CodeOrderNotFound, env.Error.Code)
	})

	t.Run("Missing order is 404 ORDER_NOT_FOUND", func(t *testing.T) {
		w, env := f.do(t, http.MethodGet, "/api/orders/order_missing", "", nil)
		assert.Equal(t, http.StatusNotFound, w.Code)
		assert.False(t, env.Success)
		assert.Equal(t, CodeOrderNotFound, env.Error.Code)
	})

	t.Run("My orders", func(t *testing.T) {
		w, env := f.do(t, http.MethodGet, "/api/auth/me/orders", f.userToken, nil)
		assert.Equal(t, http.StatusOK, w.Code)
		var orders []domain.Order
		require.NoError(t, json.Unmarshal(env.Data, &orders))
		assert.Len(t, orders, 1)
	})
}

func TestOrderHandler_CreateErrors(t *testing.T) {
	f := setup(t)

	t.Run("Insufficient stock is 409", func(t *testing.T) {
		w, env := f.do(t, http.MethodPost, "/api/orders", "", orderBody(f.products[1].ID, 10000))
		assert.Equal(t, http.StatusConflict, w.Code)
		assert.Equal(t, CodeInsufficientStock, env.Error.Code)
	})

	t.Run("Unknown product is 404", func(t *testing.T) {
		w, env := f.do(t, http.MethodPost, "/api/orders", "", orderBody("prod_nope", 1))
		assert.Equal(t, http.StatusNotFound, w.Code)
		assert.Equal(t, CodeProductNotFound, env.Error.Code)
	})

	t.Run("Missing address is 400", func(t *testing.T) {
		body := orderBody(f.products[1].ID, 1)
		delete(body, "shippingAddress")
		w, env := f.do(t, http.MethodPost, "/api/orders", "", body)
		assert.Equal(t, http.StatusBadRequest, w.Code)
		assert.Equal(t, httpx.CodeInvalidRequest, env.Error.Code)
	})
}

func TestOrderHandler_AdminRoutes(t *testing.T) {
	f := setup(t)
	_, env := f.do(t, http.MethodPost, "/api/orders", "", orderBody(f.products[1].ID, 1))
	var order domain.Order
	require.NoError(t, json.Unmarshal(env.Data, &order))
	statusPath := "/api/orders/" + order.ID + "/status"

	t.Run("Customer cannot change status", func(t *testing.T) {
		w, _ := f.do(t, http.MethodPatch, statusPath, f.userToken, map[string]string{"status": "confirmed"})
		assert.Equal(t, http.StatusForbidden, w.Code)
	})

	t.Run("Invalid transition is 409", func(t *testing.T) {
		w, env := f.do(t, http.MethodPatch, statusPath, f.adminToken, map[string]string{"status": "delivered"})
		assert.Equal(t, http.StatusConflict, w.Code)
		assert.Equal(t, CodeInvalidTransition, env.Error.Code)
	})

	t.Run("Walk to delivered and see analytics", func(t *testing.T) {
		for _, s := range []string{"confirmed", "shipped", "delivered"} {
			w, env := f.do(t, http.MethodPatch, statusPath, f.adminToken, map[string]string{"status": s})
			require.Equal(t, http.StatusOK, w.Code, env.Error)
		}

		w, env := f.do(t, http.MethodGet, "/api/admin/analytics", f.adminToken, nil)
		require.Equal(t, http.StatusOK, w.Code)
		var res domain.SalesAnalytics
		require.NoError(t, json.Unmarshal(env.Data, &res))
		assert.Equal(t, 1, res.TotalOrders)
		assert.True(t, res.TotalRevenue.Equal(order.Total))
	})
}

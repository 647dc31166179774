package service

import (
	"context"
	"errors"
	"fmt"
	"strings"
	"sync"
	"time"

	"github.com/google/uuid"
	"github.com/ridloal/fashion-dropship-store/internal/cart/domain"
	"github.com/ridloal/fashion-dropship-store/internal/cart/repository"
	oDomain "github.com/ridloal/fashion-dropship-store/internal/order/domain"
	"github.com/ridloal/fashion-dropship-store/internal/platform/logger"
	"github.com/ridloal/fashion-dropship-store/internal/platform/money"
	pDomain "github.com/ridloal/fashion-dropship-store/internal/product/domain"
	"github.com/shopspring/decimal"
)

var (
	ErrInvalidItem        = errors.New("invalid cart item")
	ErrProductUnavailable = errors.New("product unavailable")
	ErrInsufficientStock  = errors.New("not enough stock")
	ErrCartItemNotFound   = errors.New("cart item not found")
	ErrCartEmpty          = errors.New("cart is empty")
)

type Catalog interface {
	GetProductDetails(ctx context.Context, productID string) (*pDomain.Product, error)
}

// OrderPlacer turns a checked-out cart into an order.
type OrderPlacer interface {
	CreateOrder(ctx context.Context, req oDomain.CreateOrderRequest) (*oDomain.Order, error)
}

type CartService interface {
	GetCart(ctx context.Context, sessionID string) (*domain.Cart, error)
	AddItem(ctx context.Context, sessionID, userID string, req domain.AddItemRequest) (*domain.Cart, error)
	UpdateItem(ctx context.Context, sessionID, itemID string, quantity int) (*domain.Cart, error)
	RemoveItem(ctx context.Context, sessionID, itemID string) (*domain.Cart, error)
	Clear(ctx context.Context, sessionID string) error
	Checkout(ctx context.Context, sessionID, userID string, req domain.CheckoutRequest) (*oDomain.Order, error)
}

type cartServiceImpl struct {
	repo    repository.CartRepository
	catalog Catalog
	orders  OrderPlacer
	pricing money.Rules

	mu sync.Mutex // serialises read-modify-write per process
}

func NewCartService(repo repository.CartRepository, catalog Catalog, orders OrderPlacer, pricing money.Rules) CartService {
	return &cartServiceImpl{repo: repo, catalog: catalog, orders: orders, pricing: pricing}
}

func (s *cartServiceImpl) load(ctx context.Context, sessionID string) (*domain.Cart, error) {
	cart, err := s.repo.GetCart(ctx, sessionID)
	if errors.Is(err, repository.ErrCartNotFound) {
		now := time.Now().UTC()
		return &domain.Cart{
			ID:        "cart_" + strings.ReplaceAll(uuid.NewString(), "-", ""),
			SessionID: sessionID,
			Items:     []domain.CartItem{},
			CreatedAt: now,
			UpdatedAt: now,
		}, nil
	}
	return cart, err
}

func (s *cartServiceImpl) summarize(cart *domain.Cart) {
	subtotal := decimal.Zero
	for _, it := range cart.Items {
		subtotal = subtotal.Add(it.Price.Mul(decimal.NewFromInt(int64(it.Quantity))))
	}
	if len(cart.Items) == 0 {
		cart.Subtotal, cart.Tax, cart.Shipping, cart.Total = decimal.Zero, decimal.Zero, decimal.Zero, decimal.Zero
		return
	}
	t := s.pricing.Totals(subtotal)
	cart.Subtotal, cart.Tax, cart.Shipping, cart.Total = t.Subtotal, t.Tax, t.Shipping, t.Total
}

func (s *cartServiceImpl) save(ctx context.Context, cart *domain.Cart) (*domain.Cart, error) {
	s.summarize(cart)
	cart.UpdatedAt = time.Now().UTC()
	if err := s.repo.SaveCart(ctx, cart); err != nil {
		return nil, err
	}
	return cart, nil
}

func (s *cartServiceImpl) GetCart(ctx context.Context, sessionID string) (*domain.Cart, error) {
	cart, err := s.load(ctx, sessionID)
	if err != nil {
		return nil, err
	}
	s.summarize(cart)
	return cart, nil
}

func validateVariant(p *pDomain.Product, size, color string) error {
	if !p.IsActive {
		return fmt.Errorf("%w: %s is no longer sold", ErrProductUnavailable, p.ID)
	}
	if size == "" && len(p.Sizes) > 0 {
		return fmt.Errorf("%w: size is required", ErrInvalidItem)
	}
	if size != "" && !p.SizeAvailable(pDomain.Size(size)) {
		return fmt.Errorf("%w: size %s is not available", ErrProductUnavailable, size)
	}
	if color == "" && len(p.Colors) > 0 {
		return fmt.Errorf("%w: color is required", ErrInvalidItem)
	}
	if color != "" && !p.ColorAvailable(color) {
		return fmt.Errorf("%w: color %s is not available", ErrProductUnavailable, color)
	}
	return nil
}

func (s *cartServiceImpl) AddItem(ctx context.Context, sessionID, userID string, req domain.AddItemRequest) (*domain.Cart, error) {
	if req.Quantity <= 0 {
		return nil, fmt.Errorf("%w: quantity must be greater than zero", ErrInvalidItem)
	}
	p, err := s.catalog.GetProductDetails(ctx, req.ProductID)
	if err != nil {
		return nil, err
	}
	if err := validateVariant(p, req.Size, req.Color); err != nil {
		return nil, err
	}

	s.mu.Lock()
	defer s.mu.Unlock()

	cart, err := s.load(ctx, sessionID)
	if err != nil {
		return nil, err
	}
	if userID != "" {
		cart.UserID = userID
	}

	idx := -1
	for i, it := range cart.Items {
		if it.SameLine(req.ProductID, req.Size, req.Color) {
			idx = i
			break
		}
	}
	wanted := req.Quantity
	if idx >= 0 {
		wanted += cart.Items[idx].Quantity
	}
	if wanted > p.Stock {
		return nil, fmt.Errorf("%w: %d requested, %d in stock", ErrInsufficientStock, wanted, p.Stock)
	}

	if idx >= 0 {
		cart.Items[idx].Quantity = wanted
		cart.Items[idx].Price = p.Price
		cart.Items[idx].Product = *p
	} else {
		cart.Items = append(cart.Items, domain.CartItem{
			ID:        "ci_" + strings.ReplaceAll(uuid.NewString(), "-", "")[:12],
			ProductID: p.ID,
			Product:   *p,
			Size:      req.Size,
			Color:     req.Color,
			Quantity:  req.Quantity,
			Price:     p.Price,
		})
	}
	return s.save(ctx, cart)
}

func (s *cartServiceImpl) UpdateItem(ctx context.Context, sessionID, itemID string, quantity int) (*domain.Cart, error) {
	if quantity < 0 {
		return nil, fmt.Errorf("%w: quantity must not be negative", ErrInvalidItem)
	}
	if quantity == 0 {
		return s.RemoveItem(ctx, sessionID, itemID)
	}

	s.mu.Lock()
	defer s.mu.Unlock()

	cart, err := s.load(ctx, sessionID)
	if err != nil {
		return nil, err
	}
	for i := range cart.Items {
		if cart.Items[i].ID != itemID {
			continue
		}
		p, err := s.catalog.GetProductDetails(ctx, cart.Items[i].ProductID)
		if err != nil {
			return nil, err
		}
		if quantity > p.Stock {
			return nil, fmt.Errorf("%w: %d requested, %d in stock", ErrInsufficientStock, quantity, p.Stock)
		}
		cart.Items[i].Quantity = quantity
		cart.Items[i].Price = p.Price
		return s.save(ctx, cart)
	}
	return nil, ErrCartItemNotFound
}

func (s *cartServiceImpl) RemoveItem(ctx context.Context, sessionID, itemID string) (*domain.Cart, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	cart, err := s.load(ctx, sessionID)
	if err != nil {
		return nil, err
	}
	for i := range cart.Items {
		if cart.Items[i].ID == itemID {
			cart.Items = append(cart.Items[:i], cart.Items[i+1:]...)
			return s.save(ctx, cart)
		}
	}
	return nil, ErrCartItemNotFound
}

func (s *cartServiceImpl) Clear(ctx context.Context, sessionID string) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.repo.DeleteCart(ctx, sessionID)
}

// Checkout places an order for the cart contents. The cart is emptied only once the order exists.
func (s *cartServiceImpl) Checkout(ctx context.Context, sessionID, userID string, req domain.CheckoutRequest) (*oDomain.Order, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	cart, err := s.load(ctx, sessionID)
	if err != nil {
		return nil, err
	}
	if len(cart.Items) == 0 {
		return nil, ErrCartEmpty
	}
	if userID == "" {
		userID = cart.UserID
	}

	orderReq := oDomain.CreateOrderRequest{
		UserID:          userID,
		PaymentMethod:   req.PaymentMethod,
		ShippingAddress: req.ShippingAddress,
		BillingAddress:  req.BillingAddress,
		Notes:           req.Notes,
	}
	for _, it := range cart.Items {
		orderReq.Items = append(orderReq.Items, oDomain.CreateOrderItemRequest{
			ProductID: it.ProductID,
			Size:      it.Size,
			Color:     it.Color,
			Quantity:  it.Quantity,
		})
	}

	order, err := s.orders.CreateOrder(ctx, orderReq)
	if err != nil {
		return nil, err
	}
	if err := s.repo.DeleteCart(ctx, sessionID); err != nil {
		logger.Error("Checkout: order "+order.ID+" created but cart not cleared", err)
	}
	logger.Info("Cart %s checked out as order %s", cart.ID, order.ID)
	return order, nil
}

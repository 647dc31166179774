package service

import (
	"context"
	"errors"
	"fmt"
	"math"
	"sort"
	"strings"
	"sync" // Untuk Fan-out Fan-in pattern

	"github.com/ridloal/fashion-dropship-store/internal/platform/logger"
	"github.com/ridloal/fashion-dropship-store/internal/product/domain"
	"github.com/ridloal/fashion-dropship-store/internal/product/repository"
)

const (
	DefaultPageSize  = 20
	MaxPageSize      = 100
	// MaxPage keeps (page-1)*limit inside an int32 OFFSET.
	MaxPage          = math.MaxInt32 / MaxPageSize
	featuredLimit    = 8
	bestSellersLimit = 12
)

var (
	ErrInvalidProduct  = errors.New("invalid product")
	ErrInvalidQuantity = errors.New("quantity must be greater than zero")
)

type ProductService interface {
	ListProducts(ctx context.Context, q domain.ListQuery) (*domain.ListResult, error)
	GetProductDetails(ctx context.Context, productID string) (*domain.Product, error)
	FeaturedProducts(ctx context.Context) ([]domain.Product, error)
	BestSellers(ctx context.Context) ([]domain.Product, error)

	CreateProduct(ctx context.Context, req domain.CreateProductRequest) (*domain.Product, error)
	UpdateProduct(ctx context.Context, productID string, req domain.UpdateProductRequest) (*domain.Product, error)
	DeleteProduct(ctx context.Context, productID string) error

	// Dipakai order service saat checkout
	ReserveStock(ctx context.Context, productID string, quantity int) error
	ReleaseStock(ctx context.Context, productID string, quantity int) error
	ApplySupplierStock(ctx context.Context, levels []domain.StockLevel) int
}

type productServiceImpl struct {
	repo repository.ProductRepository
}

func NewProductService(repo repository.ProductRepository) ProductService {
	return &productServiceImpl{repo: repo}
}

// NormalizePage applies the listing defaults: page starts at 1, limit 20, capped at 100.
func NormalizePage(page, limit int) (int, int) {
	if page < 1 {
		page = 1
	}
	if page > MaxPage {
		page = MaxPage
	}
	if limit < 1 {
		limit = DefaultPageSize
	}
	if limit > MaxPageSize {
		limit = MaxPageSize
	}
	return page, limit
}

func (s *productServiceImpl) ListProducts(ctx context.Context, q domain.ListQuery) (*domain.ListResult, error) {
	if q.Limit <= 0 {
		q.Limit = DefaultPageSize
	}
	if q.Offset < 0 {
		q.Offset = 0
	}
	q.Category = domain.Category(strings.ToLower(string(q.Category)))
	return s.repo.ListProducts(ctx, q)
}

func (s *productServiceImpl) GetProductDetails(ctx context.Context, productID string) (*domain.Product, error) {
	return s.repo.GetProductByID(ctx, productID)
}

func (s *productServiceImpl) FeaturedProducts(ctx context.Context) ([]domain.Product, error) {
	products, err := s.repo.ListActiveProducts(ctx)
	if err != nil {
		return nil, err
	}
	featured := make([]domain.Product, 0, featuredLimit)
	for _, p := range products {
		if p.IsFeatured {
			featured = append(featured, p)
		}
		if len(featured) == featuredLimit {
			break
		}
	}
	return featured, nil
}

func (s *productServiceImpl) BestSellers(ctx context.Context) ([]domain.Product, error) {
	products, err := s.repo.ListActiveProducts(ctx)
	if err != nil {
		return nil, err
	}
	sort.SliceStable(products, func(i, j int) bool {
		return products[i].ReviewCount > products[j].ReviewCount
	})
	if len(products) > bestSellersLimit {
		products = products[:bestSellersLimit]
	}
	return products, nil
}

func validateProduct(p *domain.Product) error {
	switch {
	case strings.TrimSpace(p.Name) == "":
		return fmt.Errorf("%w: name is required", ErrInvalidProduct)
	case !p.Category.Valid():
		return fmt.Errorf("%w: unknown category %q", ErrInvalidProduct, p.Category)
	case !p.Price.IsPositive():
		return fmt.Errorf("%w: price must be greater than zero", ErrInvalidProduct)
	case p.CompareAtPrice != nil && p.CompareAtPrice.IsNegative():
		return fmt.Errorf("%w: compareAtPrice must not be negative", ErrInvalidProduct)
	case p.Stock < 0:
		return fmt.Errorf("%w: stock must not be negative", ErrInvalidProduct)
	}
	return nil
}

func (s *productServiceImpl) CreateProduct(ctx context.Context, req domain.CreateProductRequest) (*domain.Product, error) {
	p := &domain.Product{
		ID:                repository.NewProductID(),
		Name:              strings.TrimSpace(req.Name),
		Description:       req.Description,
		Category:          req.Category,
		Subcategory:       req.Subcategory,
		Price:             req.Price,
		CompareAtPrice:    req.CompareAtPrice,
		Images:            req.Images,
		Sizes:             req.Sizes,
		Colors:            req.Colors,
		Materials:         req.Materials,
		Care:              req.Care,
		Stock:             req.Stock,
		SupplierProductID: req.SupplierProductID,
		SupplierSKU:       req.SupplierSKU,
		IsActive:          true,
		IsFeatured:        req.IsFeatured,
	}
	if err := validateProduct(p); err != nil {
		return nil, err
	}
	if err := s.repo.CreateProduct(ctx, p); err != nil {
		logger.Error("Svc.CreateProduct: repo error", err, nil)
		return nil, err
	}
	logger.Info("Product %s created (%s)", p.ID, p.Name)
	return p, nil
}

func (s *productServiceImpl) UpdateProduct(ctx context.Context, productID string, req domain.UpdateProductRequest) (*domain.Product, error) {
	p, err := s.repo.GetProductByID(ctx, productID)
	if err != nil {
		return nil, err
	}

	if req.Name != nil {
		p.Name = strings.TrimSpace(*req.Name)
	}
	if req.Description != nil {
		p.Description = *req.Description
	}
	if req.Category != nil {
		p.Category = *req.Category
	}
	if req.Subcategory != nil {
		p.Subcategory = *req.Subcategory
	}
	if req.Price != nil {
		p.Price = *req.Price
	}
	if req.CompareAtPrice != nil {
		p.CompareAtPrice = req.CompareAtPrice
	}
	if req.Images != nil {
		p.Images = req.Images
	}
	if req.Sizes != nil {
		p.Sizes = req.Sizes
	}
	if req.Colors != nil {
		p.Colors = req.Colors
	}
	if req.Materials != nil {
		p.Materials = req.Materials
	}
	if req.Care != nil {
		p.Care = req.Care
	}
	if req.Stock != nil {
		p.Stock = *req.Stock
	}
	if req.IsActive != nil {
		p.IsActive = *req.IsActive
	}
	if req.IsFeatured != nil {
		p.IsFeatured = *req.IsFeatured
	}

	if err := validateProduct(p); err != nil {
		return nil, err
	}
	if err := s.repo.UpdateProduct(ctx, p); err != nil {
		return nil, err
	}
	// Stok ditulis terpisah supaya reservasi yang terjadi di antara read dan write tidak tertimpa
	if req.Stock != nil {
		stock, err := s.repo.SetStock(ctx, p.ID, *req.Stock)
		if err != nil {
			return nil, err
		}
		p.Stock = stock
	}
	return p, nil
}

// DeleteProduct hides the product from the storefront. Orders keep referencing it.
func (s *productServiceImpl) DeleteProduct(ctx context.Context, productID string) error {
	p, err := s.repo.GetProductByID(ctx, productID)
	if err != nil {
		return err
	}
	if !p.IsActive {
		return nil
	}
	p.IsActive = false
	p.IsFeatured = false
	return s.repo.UpdateProduct(ctx, p)
}

func (s *productServiceImpl) ReserveStock(ctx context.Context, productID string, quantity int) error {
	if quantity <= 0 {
		return ErrInvalidQuantity
	}
	left, err := s.repo.AdjustStock(ctx, productID, -quantity)
	if err != nil {
		if errors.Is(err, repository.ErrInsufficientStock) {
			return fmt.Errorf("%w: product %s has %d, requested %d", repository.ErrInsufficientStock, productID, left, quantity)
		}
		return err
	}
	logger.Debug("Reserved %d of %s, %d left", quantity, productID, left)
	return nil
}

func (s *productServiceImpl) ReleaseStock(ctx context.Context, productID string, quantity int) error {
	if quantity <= 0 {
		return ErrInvalidQuantity
	}
	_, err := s.repo.AdjustStock(ctx, productID, quantity)
	return err
}

// ApplySupplierStock copies supplier stock onto storefront products and returns how many were updated.
func (s *productServiceImpl) ApplySupplierStock(ctx context.Context, levels []domain.StockLevel) int {
	// Fan-out: satu goroutine per level stok
	var wg sync.WaitGroup
	type result struct {
		supplierID string
		updated    int
		err        error
	}
	resultsChan := make(chan result, len(levels))

	for _, lvl := range levels {
		wg.Add(1)
		go func(l domain.StockLevel) {
			defer wg.Done()
			n, err := s.repo.SetStockBySupplierID(ctx, l.SupplierProductID, l.Stock)
			resultsChan <- result{supplierID: l.SupplierProductID, updated: n, err: err}
		}(lvl)
	}

	wg.Wait()
	close(resultsChan)

	// Fan-in: kumpulkan hasil
	total := 0
	for res := range resultsChan {
		if res.err != nil {
			logger.Error("ApplySupplierStock: failed to update products for supplier product "+res.supplierID, res.err, nil)
			continue
		}
		total += res.updated
	}
	return total
}

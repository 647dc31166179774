package repository

import (
	"context"
	"sync"
	"testing"

	"github.com/ridloal/fashion-dropship-store/internal/product/domain"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func seededRepo(t *testing.T) ProductRepository {
	t.Helper()
	repo := NewMemoryProductRepository()
	n, err := Seed(context.Background(), repo)
	require.NoError(t, err)
	require.Equal(t, 4, n)
	return repo
}

func TestMemoryProductRepository_ListProducts(t *testing.T) {
	ctx := context.Background()
	repo := seededRepo(t)

	t.Run("Category filter", func(t *testing.T) {
		res, err := repo.ListProducts(ctx, domain.ListQuery{Category: domain.CategoryDresses, Limit: 20})
		require.NoError(t, err)
		assert.Equal(t, 2, res.Total)
		assert.Len(t, res.Products, 2)
	})

	t.Run("Search is case-insensitive over name and description", func(t *testing.T) {
		res, _ := repo.ListProducts(ctx, domain.ListQuery{Search: "SILK", Limit: 20})
		assert.Equal(t, 1, res.Total)
		assert.Equal(t, "Silk Blend Button-Up Blouse", res.Products[0].Name)

		res, _ = repo.ListProducts(ctx, domain.ListQuery{Search: "denim", Limit: 20})
		assert.Equal(t, 1, res.Total)
	})

	t.Run("Total counted before pagination", func(t *testing.T) {
		res, _ := repo.ListProducts(ctx, domain.ListQuery{Offset: 2, Limit: 1})
		assert.Equal(t, 4, res.Total)
		assert.Len(t, res.Products, 1)
		assert.Equal(t, "Silk Blend Button-Up Blouse", res.Products[0].Name)
	})

	t.Run("Offset beyond total", func(t *testing.T) {
		res, _ := repo.ListProducts(ctx, domain.ListQuery{Offset: 40, Limit: 20})
		assert.Equal(t, 4, res.Total)
		assert.Empty(t, res.Products)
	})

	t.Run("Inactive products are hidden", func(t *testing.T) {
		all, _ := repo.ListActiveProducts(ctx)
		p := all[0]
		p.IsActive = false
		require.NoError(t, repo.UpdateProduct(ctx, &p))

		res, _ := repo.ListProducts(ctx, domain.ListQuery{Limit: 20})
		assert.Equal(t, 3, res.Total)
	})
}

func TestMemoryProductRepository_Stock(t *testing.T) {
	ctx := context.Background()
	repo := seededRepo(t)
	all, _ := repo.ListActiveProducts(ctx)
	dress := all[0] // stock 45

	t.Run("Stock never goes negative", func(t *testing.T) {
		left, err := repo.AdjustStock(ctx, dress.ID, -46)
		assert.ErrorIs(t, err, ErrInsufficientStock)
		assert.Equal(t, 45, left)
	})

	t.Run("Unknown product", func(t *testing.T) {
		_, err := repo.AdjustStock(ctx, "prod_missing", 1)
		assert.ErrorIs(t, err, ErrProductNotFound)
	})

	t.Run("Concurrent reservations keep the invariant", func(t *testing.T) {
		var wg sync.WaitGroup
		for i := 0; i < 60; i++ {
			wg.Add(1)
			go func() {
				defer wg.Done()
				_, _ = repo.AdjustStock(ctx, dress.ID, -1)
			}()
		}
		wg.Wait()
		p, err := repo.GetProductByID(ctx, dress.ID)
		require.NoError(t, err)
		assert.Equal(t, 0, p.Stock)
	})

	t.Run("Supplier stock sync clamps at zero", func(t *testing.T) {
		n, err := repo.SetStockBySupplierID(ctx, "SP_TOP_003", -3)
		require.NoError(t, err)
		assert.Equal(t, 1, n)
		res, _ := repo.ListProducts(ctx, domain.ListQuery{Search: "blouse", Limit: 1})
		assert.Equal(t, 0, res.Products[0].Stock)
	})
}

func TestMemoryProductRepository_UpdateKeepsStock(t *testing.T) {
	ctx := context.Background()
	repo := seededRepo(t)
	all, _ := repo.ListActiveProducts(ctx)

	stale, err := repo.GetProductByID(ctx, all[0].ID)
	require.NoError(t, err)
	_, err = repo.AdjustStock(ctx, stale.ID, -3)
	require.NoError(t, err)

	stale.Name = "Floral Summer Dress (Restock)"
	require.NoError(t, repo.UpdateProduct(ctx, stale))
	assert.Equal(t, 42, stale.Stock)

	got, _ := repo.GetProductByID(ctx, stale.ID)
	assert.Equal(t, "Floral Summer Dress (Restock)", got.Name)
	assert.Equal(t, 42, got.Stock)

	t.Run("SetStock writes the absolute value", func(t *testing.T) {
		left, err := repo.SetStock(ctx, stale.ID, 10)
		require.NoError(t, err)
		assert.Equal(t, 10, left)

		_, err = repo.SetStock(ctx, stale.ID, -1)
		assert.ErrorIs(t, err, ErrInsufficientStock)

		_, err = repo.SetStock(ctx, "prod_missing", 1)
		assert.ErrorIs(t, err, ErrProductNotFound)
	})

	t.Run("Unknown product", func(t *testing.T) {
		assert.ErrorIs(t, repo.UpdateProduct(ctx, &domain.Product{ID: "prod_missing"}), ErrProductNotFound)
	})
}

func TestMemoryProductRepository_ReturnsCopies(t *testing.T) {
	ctx := context.Background()
	repo := seededRepo(t)
	all, _ := repo.ListActiveProducts(ctx)

	got, _ := repo.GetProductByID(ctx, all[0].ID)
	got.Colors[0].Name = "mutated"

	again, _ := repo.GetProductByID(ctx, all[0].ID)
	assert.Equal(t, "Rose Garden", again.Colors[0].Name)
}

package repository

import (
	"context"
	"fmt"
	"strings"

	"github.com/google/uuid"
	"github.com/ridloal/fashion-dropship-store/internal/product/domain"
	"github.com/shopspring/decimal"
)

const imageBase = "https://storage.googleapis.com/workspace-0f70711f-8b4e-4d94-86f1-2a93ccde5887/image/"

func NewProductID() string {
	return "prod_" + strings.ReplaceAll(uuid.NewString(), "-", "")
}

func price(s string) decimal.Decimal { return decimal.RequireFromString(s) }

func pricePtr(s string) *decimal.Decimal {
	d := price(s)
	return &d
}

func allSizes(unavailable ...domain.Size) []domain.SizeOption {
	out := make([]domain.SizeOption, 0, 5)
	for _, s := range []domain.Size{domain.SizeXS, domain.SizeS, domain.SizeM, domain.SizeL, domain.SizeXL} {
		available := true
		for _, u := range unavailable {
			if u == s {
				available = false
			}
		}
		out = append(out, domain.SizeOption{Size: s, Available: available})
	}
	return out
}

// SeedProducts returns the launch catalog of best-selling pieces.
func SeedProducts() []domain.Product {
	return []domain.Product{
		{
			Name:           "Floral Midi Wrap Dress",
			Description:    "Elegant wrap dress featuring a beautiful floral print, perfect for both casual and formal occasions. Made from lightweight, breathable fabric with a flattering wrap silhouette.",
			Category:       domain.CategoryDresses,
			Subcategory:    "midi-dresses",
			Price:          price("89.99"),
			CompareAtPrice: pricePtr("129.99"),
			Images: []domain.Image{
				{ID: "1", URL: imageBase + "ca3e42b7-dd4b-4566-98b1-aaecca347b78.png", Alt: "Floral Midi Wrap Dress - Front View", IsMain: true, Order: 1},
				{ID: "2", URL: imageBase + "8461279b-4033-4c81-9600-a489427573a7.png", Alt: "Floral Midi Wrap Dress - Side View", Order: 2},
			},
			Sizes: allSizes(domain.SizeXL),
			Colors: []domain.ColorOption{
				{Name: "Rose Garden", Hex: "#F8BBD9", Available: true},
				{Name: "Ocean Blue", Hex: "#4A90E2", Available: true},
				{Name: "Sage Green", Hex: "#87A96B", Available: true},
			},
			Materials:         []string{"95% Polyester", "5% Spandex"},
			Care:              []string{"Machine wash cold", "Hang dry", "Low iron if needed"},
			Stock:             45,
			SupplierProductID: "SP_DRESS_001",
			SupplierSKU:       "FMD-WRP-001",
			IsActive:          true,
			IsFeatured:        true,
			Rating:            4.8,
			ReviewCount:       127,
		},
		{
			Name:           "Little Black Dress - Classic Fit",
			Description:    "Timeless little black dress with a classic A-line silhouette. Perfect for dinner dates, cocktail parties, or professional events. Features subtle texture and comfortable stretch.",
			Category:       domain.CategoryDresses,
			Subcategory:    "cocktail-dresses",
			Price:          price("79.99"),
			CompareAtPrice: pricePtr("119.99"),
			Images: []domain.Image{
				{ID: "3", URL: imageBase + "37dc7068-5243-4187-a160-01efe97dceb4.png", Alt: "Little Black Dress - Classic Fit", IsMain: true, Order: 1},
				{ID: "4", URL: imageBase + "1db039b4-11a9-44b8-89bd-7099e8dda9c6.png", Alt: "Little Black Dress - Back View", Order: 2},
			},
			Sizes:             allSizes(),
			Colors:            []domain.ColorOption{{Name: "Classic Black", Hex: "#000000", Available: true}},
			Materials:         []string{"92% Polyester", "8% Elastane"},
			Care:              []string{"Machine wash cold", "Tumble dry low", "Steam or iron on low"},
			Stock:             67,
			SupplierProductID: "SP_DRESS_002",
			SupplierSKU:       "LBD-CLS-002",
			IsActive:          true,
			IsFeatured:        true,
			Rating:            4.9,
			ReviewCount:       203,
		},
		{
			Name:           "Silk Blend Button-Up Blouse",
			Description:    "Luxurious silk blend blouse with mother-of-pearl buttons and subtle sheen. Perfect for office wear or elevated casual looks. Features a relaxed fit with elegant drape.",
			Category:       domain.CategoryTops,
			Subcategory:    "blouses",
			Price:          price("69.99"),
			CompareAtPrice: pricePtr("99.99"),
			Images: []domain.Image{
				{ID: "5", URL: imageBase + "ed3d54c9-ea9b-44d4-a946-b1b99a6e3408.png", Alt: "Silk Blend Button-Up Blouse", IsMain: true, Order: 1},
				{ID: "6", URL: imageBase + "d958344a-9698-4315-83cd-d75fa45530e6.png", Alt: "Silk Blouse - Detail View", Order: 2},
			},
			Sizes: allSizes(),
			Colors: []domain.ColorOption{
				{Name: "Ivory", Hex: "#F8F8F0", Available: true},
				{Name: "Dusty Rose", Hex: "#D4A5A5", Available: true},
				{Name: "Navy", Hex: "#1B263B", Available: true},
			},
			Materials:         []string{"70% Silk", "30% Polyester"},
			Care:              []string{"Dry clean recommended", "Or hand wash cold", "Lay flat to dry"},
			Stock:             52,
			SupplierProductID: "SP_TOP_003",
			SupplierSKU:       "SLK-BTN-003",
			IsActive:          true,
			IsFeatured:        true,
			Rating:            4.7,
			ReviewCount:       89,
		},
		{
			Name:           "High-Waisted Wide Leg Jeans",
			Description:    "Vintage-inspired high-waisted jeans with wide leg silhouette. Made from premium stretch denim for comfort and style. Perfect for creating effortlessly chic looks.",
			Category:       domain.CategoryBottoms,
			Subcategory:    "jeans",
			Price:          price("95.99"),
			CompareAtPrice: pricePtr("135.99"),
			Images: []domain.Image{
				{ID: "7", URL: imageBase + "6d92a513-74d2-4093-9e93-7bd41b804c71.png", Alt: "High-Waisted Wide Leg Jeans", IsMain: true, Order: 1},
			},
			Sizes: allSizes(),
			Colors: []domain.ColorOption{
				{Name: "Classic Blue", Hex: "#4F7CAC", Available: true},
				{Name: "Black", Hex: "#2C2C2C", Available: true},
			},
			Materials:         []string{"98% Cotton", "2% Elastane"},
			Care:              []string{"Machine wash cold", "Tumble dry low", "Iron on medium heat"},
			Stock:             38,
			SupplierProductID: "SP_BOTTOM_004",
			SupplierSKU:       "HW-WL-004",
			IsActive:          true,
			IsFeatured:        true,
			Rating:            4.6,
			ReviewCount:       156,
		},
	}
}

// Seed inserts the launch catalog when the repository is empty.
func Seed(ctx context.Context, repo ProductRepository) (int, error) {
	existing, err := repo.ListActiveProducts(ctx)
	if err != nil {
		return 0, fmt.Errorf("seed: list products: %w", err)
	}
	if len(existing) > 0 {
		return 0, nil
	}
	seeded := 0
	for _, p := range SeedProducts() {
		p := p
		p.ID = NewProductID()
		if err := repo.CreateProduct(ctx, &p); err != nil {
			return seeded, fmt.Errorf("seed: create %s: %w", p.Name, err)
		}
		seeded++
	}
	return seeded, nil
}

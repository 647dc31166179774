package repository

import (
	"github.com/ridloal/fashion-dropship-store/internal/supplier/domain"
	"github.com/shopspring/decimal"
)

const imageBase = "https://storage.googleapis.com/workspace-0f70711f-8b4e-4d94-86f1-2a93ccde5887/image/"

var standardSizes = []string{"XS", "S", "M", "L", "XL"}

// DefaultCatalog is the supplier's starting product list. Storefront products reference these ids.
func DefaultCatalog() []domain.Product {
	return []domain.Product{
		{
			ID:          "SP_DRESS_001",
			SKU:         "FMD-WRP-001",
			Name:        "Floral Midi Wrap Dress",
			Description: "Elegant wrap dress featuring a beautiful floral print, perfect for both casual and formal occasions.",
			Category:    "Dresses",
			Price:       decimal.RequireFromString("45.00"),
			Stock:       150,
			Images: []string{
				imageBase + "ca3e42b7-dd4b-4566-98b1-aaecca347b78.png",
				imageBase + "8461279b-4033-4c81-9600-a489427573a7.png",
			},
			Attributes: domain.Attributes{
				Sizes:    standardSizes,
				Colors:   []string{"Rose Garden", "Ocean Blue", "Sage Green"},
				Material: "95% Polyester, 5% Spandex",
				Care:     "Machine wash cold, hang dry",
			},
			Shipping: domain.ShippingInfo{Weight: 0.8, Dimensions: domain.Dimensions{Length: 12, Width: 8, Height: 2}},
		},
		{
			ID:          "SP_DRESS_002",
			SKU:         "LBD-CLS-002",
			Name:        "Little Black Dress - Classic Fit",
			Description: "Timeless little black dress with a classic A-line silhouette.",
			Category:    "Dresses",
			Price:       decimal.RequireFromString("38.00"),
			Stock:       200,
			Images: []string{
				imageBase + "37dc7068-5243-4187-a160-01efe97dceb4.png",
				imageBase + "1db039b4-11a9-44b8-89bd-7099e8dda9c6.png",
			},
			Attributes: domain.Attributes{
				Sizes:    standardSizes,
				Colors:   []string{"Black"},
				Material: "92% Polyester, 8% Elastane",
				Care:     "Machine wash cold, tumble dry low",
			},
			Shipping: domain.ShippingInfo{Weight: 0.7, Dimensions: domain.Dimensions{Length: 11, Width: 8, Height: 2}},
		},
		{
			ID:          "SP_TOP_003",
			SKU:         "SLK-BTN-003",
			Name:        "Silk Blend Button-Up Blouse",
			Description: "Luxurious silk blend blouse with mother-of-pearl buttons and subtle sheen.",
			Category:    "Tops",
			Price:       decimal.RequireFromString("32.00"),
			Stock:       180,
			Images: []string{
				imageBase + "ed3d54c9-ea9b-44d4-a946-b1b99a6e3408.png",
				imageBase + "d958344a-9698-4315-83cd-d75fa45530e6.png",
			},
			Attributes: domain.Attributes{
				Sizes:    standardSizes,
				Colors:   []string{"Ivory", "Dusty Rose", "Navy"},
				Material: "70% Silk, 30% Polyester",
				Care:     "Dry clean recommended or hand wash cold",
			},
			Shipping: domain.ShippingInfo{Weight: 0.4, Dimensions: domain.Dimensions{Length: 10, Width: 8, Height: 1}},
		},
		{
			ID:          "SP_BOTTOM_004",
			SKU:         "HW-WL-004",
			Name:        "High-Waisted Wide Leg Jeans",
			Description: "Vintage-inspired high-waisted jeans with wide leg silhouette.",
			Category:    "Bottoms",
			Price:       decimal.RequireFromString("42.00"),
			Stock:       120,
			Images:      []string{imageBase + "6d92a513-74d2-4093-9e93-7bd41b804c71.png"},
			Attributes: domain.Attributes{
				Sizes:    standardSizes,
				Colors:   []string{"Classic Blue", "Black"},
				Material: "98% Cotton, 2% Elastane",
				Care:     "Machine wash cold, tumble dry low",
			},
			Shipping: domain.ShippingInfo{Weight: 1.2, Dimensions: domain.Dimensions{Length: 14, Width: 10, Height: 3}},
		},
	}
}

package domain

import (
	"time"

	"github.com/shopspring/decimal"
)

type Category string

const (
	CategoryDresses     Category = "dresses"
	CategoryTops        Category = "tops"
	CategoryBottoms     Category = "bottoms"
	CategoryOuterwear   Category = "outerwear"
	CategoryActivewear  Category = "activewear"
	CategoryAccessories Category = "accessories"
)

var categories = map[Category]bool{
	CategoryDresses: true, CategoryTops: true, CategoryBottoms: true,
	CategoryOuterwear: true, CategoryActivewear: true, CategoryAccessories: true,
}

func (c Category) Valid() bool { return categories[c] }

type Size string

const (
	SizeXS  Size = "XS"
	SizeS   Size = "S"
	SizeM   Size = "M"
	SizeL   Size = "L"
	SizeXL  Size = "XL"
	SizeXXL Size = "XXL"
)

type Image struct {
	ID     string `json:"id"`
	URL    string `json:"url"`
	Alt    string `json:"alt"`
	IsMain bool   `json:"isMain"`
	Order  int    `json:"order"`
}

type Measurements struct {
	Bust   *float64 `json:"bust,omitempty"`
	Waist  *float64 `json:"waist,omitempty"`
	Hips   *float64 `json:"hips,omitempty"`
	Length *float64 `json:"length,omitempty"`
}

type SizeOption struct {
	Size         Size          `json:"size"`
	Available    bool          `json:"available"`
	Measurements *Measurements `json:"measurements,omitempty"`
}

type ColorOption struct {
	Name      string `json:"name"`
	Hex       string `json:"hex"`
	Available bool   `json:"available"`
}

// Product harga disimpan sebagai decimal supaya tidak ada rounding error.
type Product struct {
	ID                string           `json:"id"`
	Name              string           `json:"name"`
	Description       string           `json:"description"`
	Category          Category         `json:"category"`
	Subcategory       string           `json:"subcategory"`
	Price             decimal.Decimal  `json:"price"`
	CompareAtPrice    *decimal.Decimal `json:"compareAtPrice,omitempty"`
	Images            []Image          `json:"images"`
	Sizes             []SizeOption     `json:"sizes"`
	Colors            []ColorOption    `json:"colors"`
	Materials         []string         `json:"materials"`
	Care              []string         `json:"care"`
	Stock             int              `json:"stock"`
	SupplierProductID string           `json:"supplierProductId"`
	SupplierSKU       string           `json:"supplierSku"`
	IsActive          bool             `json:"isActive"`
	IsFeatured        bool             `json:"isFeatured"`
	Rating            float64          `json:"rating"`
	ReviewCount       int              `json:"reviewCount"`
	CreatedAt         time.Time        `json:"createdAt"`
	UpdatedAt         time.Time        `json:"updatedAt"`
}

// MainImage returns the image flagged as main, or the first one.
func (p *Product) MainImage() string {
	for _, img := range p.Images {
		if img.IsMain {
			return img.URL
		}
	}
	if len(p.Images) > 0 {
		return p.Images[0].URL
	}
	return ""
}

func (p *Product) SizeAvailable(size Size) bool {
	for _, s := range p.Sizes {
		if s.Size == size {
			return s.Available
		}
	}
	return false
}

func (p *Product) ColorAvailable(name string) bool {
	for _, c := range p.Colors {
		if c.Name == name {
			return c.Available
		}
	}
	return false
}

// Clone returns a deep copy so callers never share slices with the store.
func (p Product) Clone() Product {
	out := p
	out.Images = append([]Image(nil), p.Images...)
	out.Sizes = append([]SizeOption(nil), p.Sizes...)
	out.Colors = append([]ColorOption(nil), p.Colors...)
	out.Materials = append([]string(nil), p.Materials...)
	out.Care = append([]string(nil), p.Care...)
	if p.CompareAtPrice != nil {
		v := *p.CompareAtPrice
		out.CompareAtPrice = &v
	}
	return out
}

// ListQuery filter untuk listing produk.
type ListQuery struct {
	Category Category
	Search   string
	Featured bool
	Offset   int
	Limit    int
}

type ListResult struct {
	Products []Product
	Total    int
}

type CreateProductRequest struct {
	Name              string           `json:"name" binding:"required"`
	Description       string           `json:"description"`
	Category          Category         `json:"category" binding:"required"`
	Subcategory       string           `json:"subcategory"`
	Price             decimal.Decimal  `json:"price"`
	CompareAtPrice    *decimal.Decimal `json:"compareAtPrice"`
	Images            []Image          `json:"images"`
	Sizes             []SizeOption     `json:"sizes"`
	Colors            []ColorOption    `json:"colors"`
	Materials         []string         `json:"materials"`
	Care              []string         `json:"care"`
	Stock             int              `json:"stock" binding:"gte=0"`
	SupplierProductID string           `json:"supplierProductId"`
	SupplierSKU       string           `json:"supplierSku"`
	IsFeatured        bool             `json:"isFeatured"`
}

// UpdateProductRequest: field nil berarti tidak diubah.
type UpdateProductRequest struct {
	Name           *string          `json:"name"`
	Description    *string          `json:"description"`
	Category       *Category        `json:"category"`
	Subcategory    *string          `json:"subcategory"`
	Price          *decimal.Decimal `json:"price"`
	CompareAtPrice *decimal.Decimal `json:"compareAtPrice"`
	Images         []Image          `json:"images"`
	Sizes          []SizeOption     `json:"sizes"`
	Colors         []ColorOption    `json:"colors"`
	Materials      []string         `json:"materials"`
	Care           []string         `json:"care"`
	Stock          *int             `json:"stock"`
	IsActive       *bool            `json:"isActive"`
	IsFeatured     *bool            `json:"isFeatured"`
}

// StockLevel is a supplier-side stock figure keyed by supplier product id.
type StockLevel struct {
	SupplierProductID string
	Stock             int
}

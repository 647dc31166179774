package money

import (
	"crypto/rand"
	"fmt"
	"math/big"
	"strings"
	"time"

	"github.com/shopspring/decimal"
)

var (
	DefaultTaxRate          = decimal.RequireFromString("0.08")
	DefaultFreeShippingFrom = decimal.NewFromInt(75)
	DefaultFlatShipping     = decimal.RequireFromString("9.99")

	hundred = decimal.NewFromInt(100)
)

const alnumUpper = "ABCDEFGHIJKLMNOPQRSTUVWXYZ0123456789"

// Rules holds the storefront pricing parameters.
type Rules struct {
	TaxRate               decimal.Decimal
	FreeShippingThreshold decimal.Decimal
	FlatShippingRate      decimal.Decimal
}

func DefaultRules() Rules {
	return Rules{
		TaxRate:               DefaultTaxRate,
		FreeShippingThreshold: DefaultFreeShippingFrom,
		FlatShippingRate:      DefaultFlatShipping,
	}
}

func NewRules(taxRate, freeShippingThreshold, flatShipping float64) Rules {
	return Rules{
		TaxRate:               decimal.NewFromFloat(taxRate),
		FreeShippingThreshold: decimal.NewFromFloat(freeShippingThreshold),
		FlatShippingRate:      decimal.NewFromFloat(flatShipping),
	}
}

// Totals is the price breakdown of a cart or order.
type Totals struct {
	Subtotal decimal.Decimal `json:"subtotal"`
	Tax      decimal.Decimal `json:"tax"`
	Shipping decimal.Decimal `json:"shipping"`
	Total    decimal.Decimal `json:"total"`
}

func (r Rules) Tax(subtotal decimal.Decimal) decimal.Decimal {
	return CalculateTax(subtotal, r.TaxRate)
}

func (r Rules) Shipping(subtotal decimal.Decimal) decimal.Decimal {
	return CalculateShipping(subtotal, r.FreeShippingThreshold, r.FlatShippingRate)
}

func (r Rules) Totals(subtotal decimal.Decimal) Totals {
	subtotal = subtotal.Round(2)
	tax := r.Tax(subtotal)
	shipping := r.Shipping(subtotal)
	return Totals{
		Subtotal: subtotal,
		Tax:      tax,
		Shipping: shipping,
		Total:    subtotal.Add(tax).Add(shipping).Round(2),
	}
}

func CalculateTax(subtotal, rate decimal.Decimal) decimal.Decimal {
	return subtotal.Mul(rate).Round(2)
}

// CalculateShipping is free from the threshold upwards, flat below it.
func CalculateShipping(subtotal, threshold, flat decimal.Decimal) decimal.Decimal {
	if subtotal.GreaterThanOrEqual(threshold) {
		return decimal.Zero
	}
	return flat
}

// FormatPrice renders a USD amount such as "$1,289.50".
func FormatPrice(amount decimal.Decimal) string {
	sign := ""
	if amount.IsNegative() {
		sign = "-"
		amount = amount.Neg()
	}
	fixed := amount.StringFixed(2)
	whole, frac, _ := strings.Cut(fixed, ".")

	var b strings.Builder
	for i, r := range whole {
		if i > 0 && (len(whole)-i)%3 == 0 {
			b.WriteByte(',')
		}
		b.WriteRune(r)
	}
	return fmt.Sprintf("%s$%s.%s", sign, b.String(), frac)
}

func ToCents(amount decimal.Decimal) int64 {
	return amount.Mul(hundred).Round(0).IntPart()
}

func FromCents(cents int64) decimal.Decimal {
	return decimal.New(cents, -2)
}

// GenerateOrderNumber returns "ORD-<unix millis>-<4 chars>".
func GenerateOrderNumber(now time.Time) string {
	return fmt.Sprintf("ORD-%d-%s", now.UnixMilli(), RandomCode(4))
}

// RandomCode returns n characters from [A-Z0-9].
func RandomCode(n int) string {
	max := big.NewInt(int64(len(alnumUpper)))
	out := make([]byte, n)
	for i := range out {
		idx, err := rand.Int(rand.Reader, max)
		if err != nil {
			idx = big.NewInt(int64(time.Now().UnixNano() % int64(len(alnumUpper))))
		}
		out[i] = alnumUpper[idx.Int64()]
	}
	return string(out)
}

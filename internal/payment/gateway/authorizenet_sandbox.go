package gateway

import (
	"context"
	"fmt"
	"strconv"
	"strings"
	"time"

	"github.com/ridloal/fashion-dropship-store/internal/payment/domain"
	"github.com/ridloal/fashion-dropship-store/internal/platform/logger"
	"github.com/ridloal/fashion-dropship-store/internal/platform/money"
	"github.com/shopspring/decimal"
)

const authorizeNetApproved = "1"

// Authorize.Net test card that is always declined.
const declinedTestCard = "4000000000000002"

type authorizeNetSandbox struct {
	now func() time.Time
}

// NewAuthorizeNetSandbox validates cards locally and approves every well-formed charge.
func NewAuthorizeNetSandbox() AuthorizeNetGateway {
	return &authorizeNetSandbox{now: time.Now}
}

func (g *authorizeNetSandbox) Charge(_ context.Context, orderID string, amount decimal.Decimal, card domain.CardData) (*domain.AuthorizeNetResponse, error) {
	if !amount.IsPositive() {
		return nil, ErrInvalidAmount
	}
	number := digitsOnly(card.CardNumber)
	if len(number) < 13 || len(number) > 19 || !LuhnValid(number) {
		return nil, fmt.Errorf("%w: card number is invalid", ErrInvalidCard)
	}
	month, year, err := ParseExpiry(card.ExpirationDate)
	if err != nil {
		return nil, err
	}
	if Expired(month, year, g.now()) {
		return nil, fmt.Errorf("%w: card has expired", ErrInvalidCard)
	}
	if code := strings.TrimSpace(card.CardCode); code != "" {
		if _, err := strconv.Atoi(code); err != nil || len(code) < 3 || len(code) > 4 {
			return nil, fmt.Errorf("%w: card code is invalid", ErrInvalidCard)
		}
	}
	if number == declinedTestCard {
		return nil, fmt.Errorf("%w: this transaction has been declined", ErrDeclined)
	}

	res := &domain.AuthorizeNetResponse{
		ResponseCode:  authorizeNetApproved,
		AuthCode:      money.RandomCode(6),
		AVSResultCode: "Y",
		CVVResultCode: "P",
		TransID:       transID(g.now()),
		AccountNumber: "XXXX" + number[len(number)-4:],
		AccountType:   cardBrand(number),
		Amount:        amount.Round(2),
		Messages:      []domain.AuthorizeNetMessage{{Code: "1", Description: "This transaction has been approved."}},
	}
	logger.Info("Authorize.Net sandbox: approved %s for order %s (%s)", res.TransID, orderID, res.AccountNumber)
	return res, nil
}

func transID(now time.Time) string {
	return fmt.Sprintf("%011d", now.UnixNano()%100000000000)
}

func digitsOnly(s string) string {
	var b strings.Builder
	for _, r := range s {
		switch {
		case r >= '0' && r <= '9':
			b.WriteRune(r)
		case r == ' ' || r == '-':
		default:
			return ""
		}
	}
	return b.String()
}

// LuhnValid reports whether a digit string passes the Luhn checksum.
func LuhnValid(number string) bool {
	if number == "" {
		return false
	}
	sum := 0
	double := false
	for i := len(number) - 1; i >= 0; i-- {
		d := int(number[i] - '0')
		if d < 0 || d > 9 {
			return false
		}
		if double {
			d *= 2
			if d > 9 {
				d -= 9
			}
		}
		sum += d
		double = !double
	}
	return sum%10 == 0
}

// ParseExpiry accepts MM/YY, MMYY, MM/YYYY and YYYY-MM.
func ParseExpiry(s string) (month, year int, err error) {
	s = strings.TrimSpace(s)
	var mm, yy string
	switch {
	case len(s) == 7 && s[4] == '-':
		yy, mm = s[:4], s[5:]
	case len(s) == 5 && s[2] == '/':
		mm, yy = s[:2], s[3:]
	case len(s) == 7 && s[2] == '/':
		mm, yy = s[:2], s[3:]
	case len(s) == 4:
		mm, yy = s[:2], s[2:]
	default:
		return 0, 0, fmt.Errorf("%w: expiration date %q", ErrInvalidCard, s)
	}
	month, err1 := strconv.Atoi(mm)
	year, err2 := strconv.Atoi(yy)
	if err1 != nil || err2 != nil || month < 1 || month > 12 {
		return 0, 0, fmt.Errorf("%w: expiration date %q", ErrInvalidCard, s)
	}
	if len(yy) == 2 {
		year += 2000
	}
	return month, year, nil
}

// Expired reports whether a card valid through the end of month/year has lapsed at now.
func Expired(month, year int, now time.Time) bool {
	firstOfNext := time.Date(year, time.Month(month)+1, 1, 0, 0, 0, 0, time.UTC)
	return !now.UTC().Before(firstOfNext)
}

func cardBrand(number string) string {
	switch {
	case strings.HasPrefix(number, "4"):
		return "Visa"
	case strings.HasPrefix(number, "34"), strings.HasPrefix(number, "37"):
		return "AmericanExpress"
	case strings.HasPrefix(number, "5"), strings.HasPrefix(number, "2"):
		return "MasterCard"
	case strings.HasPrefix(number, "6"):
		return "Discover"
	}
	return "Unknown"
}

package portfolio

import (
	"context"
	"sort"

	"brokerage_system/internal/quote"
	"brokerage_system/internal/storage"

	"github.com/shopspring/decimal"
	"github.com/sirupsen/logrus"
)

// Position is one line of the portfolio view.
type Position struct {
	Symbol           string          `json:"symbol"`            // Ticker symbol
	Name             string          `json:"name"`              // Company display name
	Shares           int64           `json:"shares"`            // Net quantity held
	Price            decimal.Decimal `json:"price"`             // Current market price
	Value            decimal.Decimal `json:"value"`             // Shares x price
	PriceUnavailable bool            `json:"price_unavailable"` // Oracle could not resolve the symbol
}

// View is the current-value snapshot of a user's portfolio.
type View struct {
	Cash       decimal.Decimal `json:"cash"`        // Cash balance
	GrandTotal decimal.Decimal `json:"grand_total"` // Cash plus market value of all priced positions
	Positions  []Position      `json:"positions"`   // One line per held symbol
}

// Valuator derives the portfolio view from held positions plus live prices.
type Valuator struct {
	store  storage.Store
	oracle quote.Oracle
}

// NewValuator creates a valuator over a store and a price oracle.
func NewValuator(store storage.Store, oracle quote.Oracle) *Valuator {
	return &Valuator{store: store, oracle: oracle}
}

// View computes the portfolio for a user. A held symbol the oracle can
// no longer resolve degrades to a price-unavailable line contributing
// nothing to the grand total, rather than failing the whole view.
func (v *Valuator) View(ctx context.Context, userID uint) (View, error) {
	user, err := v.store.UserByID(ctx, userID)
	if err != nil {
		return View{}, err
	}
	holdings, err := v.store.HoldingsBySymbol(ctx, userID)
	if err != nil {
		return View{}, err
	}

	symbols := make([]string, 0, len(holdings))
	for sym := range holdings {
		symbols = append(symbols, sym)
	}
	sort.Strings(symbols) // Stable line order for display

	grandTotal := user.Cash
	positions := make([]Position, 0, len(symbols))
	for _, sym := range symbols {
		pos := Position{Symbol: sym, Name: sym, Shares: holdings[sym]}
		// Display name comes from the lazily-populated companies table
		if company, err := v.store.CompanyBySymbol(ctx, sym); err == nil {
			pos.Name = company.Name
		}
		q, err := v.oracle.Lookup(ctx, sym)
		if err != nil {
			logrus.WithFields(logrus.Fields{
				"user_id": userID,
				"symbol":  sym,
				"error":   err.Error(),
			}).Warn("Portfolio line price unavailable")
			pos.PriceUnavailable = true
			positions = append(positions, pos)
			continue
		}
		pos.Price = q.Price
		pos.Value = q.Price.Mul(decimal.NewFromInt(pos.Shares))
		grandTotal = grandTotal.Add(pos.Value)
		positions = append(positions, pos)
	}

	return View{Cash: user.Cash, GrandTotal: grandTotal, Positions: positions}, nil
}

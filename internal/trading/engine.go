package trading

import (
	"context"
	"regexp"
	"strings"
	"time"

	"brokerage_system/internal/domain"
	"brokerage_system/internal/quote"
	"brokerage_system/internal/storage"

	"github.com/shopspring/decimal"
)

// Ticker symbols are exactly 4 alphabetic characters.
var symbolPattern = regexp.MustCompile(`^[A-Za-z]{4}$`)

// NormalizeSymbol validates the ticker format and uppercases it.
func NormalizeSymbol(symbol string) (string, error) {
	if !symbolPattern.MatchString(symbol) {
		return "", domain.Validation("symbol", "must be exactly 4 letters")
	}
	return strings.ToUpper(symbol), nil
}

// BuyRequest is a validated buy order.
type BuyRequest struct {
	Symbol string `json:"symbol" binding:"required"`       // Ticker symbol
	Shares int64  `json:"shares" binding:"required,gt=0"`  // Number of shares, positive integer
}

// SellRequest is a validated sell order.
type SellRequest struct {
	Symbol string `json:"symbol" binding:"required"`       // Ticker symbol
	Shares int64  `json:"shares" binding:"required,gt=0"`  // Number of shares, positive integer
}

// Execution reports a completed trade back to the caller.
type Execution struct {
	Symbol   string          `json:"symbol"`   // Traded symbol
	Activity string          `json:"activity"` // Purchase or Sale
	Shares   int64           `json:"shares"`   // Unsigned share count
	Price    decimal.Decimal `json:"price"`    // Unit price at execution
	Total    decimal.Decimal `json:"total"`    // Shares x price
	Cash     decimal.Decimal `json:"cash"`     // Balance after the trade
}

// Engine validates and atomically executes buy and sell orders. The
// ledger append and the cash debit/credit always commit together.
type Engine struct {
	store  storage.Store
	oracle quote.Oracle
}

// NewEngine creates a trading engine over a store and a price oracle.
func NewEngine(store storage.Store, oracle quote.Oracle) *Engine {
	return &Engine{store: store, oracle: oracle}
}

// Quote validates the symbol and returns its current quote.
func (e *Engine) Quote(ctx context.Context, symbol string) (quote.Quote, error) {
	sym, err := NormalizeSymbol(symbol)
	if err != nil {
		return quote.Quote{}, err
	}
	return e.oracle.Lookup(ctx, sym)
}

// Buy executes a purchase at the current quoted price. Fails with
// ErrInsufficientFunds when the cost exceeds the user's cash; a failed
// order leaves no ledger or cash mutation.
func (e *Engine) Buy(ctx context.Context, userID uint, req BuyRequest) (Execution, error) {
	sym, err := NormalizeSymbol(req.Symbol)
	if err != nil {
		return Execution{}, err
	}
	if req.Shares <= 0 {
		return Execution{}, domain.Validation("shares", "must be a positive number")
	}
	q, err := e.oracle.Lookup(ctx, sym)
	if err != nil {
		return Execution{}, err
	}
	cost := q.Price.Mul(decimal.NewFromInt(req.Shares))

	var exec Execution
	err = e.store.InTx(ctx, func(tx storage.Store) error {
		// Re-read inside the transaction: the funds check and the debit
		// must see the same balance.
		user, err := tx.UserByID(ctx, userID)
		if err != nil {
			return err
		}
		if user.Cash.LessThan(cost) {
			return domain.ErrInsufficientFunds
		}
		entry := domain.LedgerEntry{
			UserID:   userID,
			Date:     time.Now().Truncate(time.Second),
			Activity: domain.ActivityPurchase,
			Symbol:   sym,
			Price:    q.Price,
			Qty:      req.Shares,
		}
		if err := tx.AppendTrade(ctx, entry); err != nil {
			return err
		}
		// Lazy company upsert the first time a symbol is traded
		if err := tx.UpsertCompany(ctx, domain.Company{Symbol: sym, Name: q.Name}); err != nil {
			return err
		}
		if err := tx.AddCash(ctx, userID, cost.Neg()); err != nil {
			return err
		}
		exec = Execution{
			Symbol:   sym,
			Activity: domain.ActivityPurchase,
			Shares:   req.Shares,
			Price:    q.Price,
			Total:    cost,
			Cash:     user.Cash.Sub(cost),
		}
		return nil
	})
	if err != nil {
		return Execution{}, err
	}
	return exec, nil
}

// Sell executes a sale at the current quoted price. Fails with
// ErrInsufficientShares when the user holds fewer shares than
// requested; a failed order leaves no ledger or cash mutation.
func (e *Engine) Sell(ctx context.Context, userID uint, req SellRequest) (Execution, error) {
	sym, err := NormalizeSymbol(req.Symbol)
	if err != nil {
		return Execution{}, err
	}
	if req.Shares <= 0 {
		return Execution{}, domain.Validation("shares", "must be a positive number")
	}
	q, err := e.oracle.Lookup(ctx, sym)
	if err != nil {
		return Execution{}, err
	}
	proceeds := q.Price.Mul(decimal.NewFromInt(req.Shares))

	var exec Execution
	err = e.store.InTx(ctx, func(tx storage.Store) error {
		// The user read locks the row, serializing concurrent sells so
		// two of them cannot both pass the holding check.
		user, err := tx.UserByID(ctx, userID)
		if err != nil {
			return err
		}
		held, err := tx.Holding(ctx, userID, sym)
		if err != nil {
			return err
		}
		if held < req.Shares {
			return domain.ErrInsufficientShares
		}
		entry := domain.LedgerEntry{
			UserID:   userID,
			Date:     time.Now().Truncate(time.Second),
			Activity: domain.ActivitySale,
			Symbol:   sym,
			Price:    q.Price,
			Qty:      -req.Shares,
		}
		if err := tx.AppendTrade(ctx, entry); err != nil {
			return err
		}
		if err := tx.AddCash(ctx, userID, proceeds); err != nil {
			return err
		}
		exec = Execution{
			Symbol:   sym,
			Activity: domain.ActivitySale,
			Shares:   req.Shares,
			Price:    q.Price,
			Total:    proceeds,
			Cash:     user.Cash.Add(proceeds),
		}
		return nil
	})
	if err != nil {
		return Execution{}, err
	}
	return exec, nil
}

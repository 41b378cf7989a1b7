package testutils

import (
	"context"
	"sync"

	"brokerage_system/internal/domain"
	"brokerage_system/internal/quote"

	"github.com/shopspring/decimal"
)

// StubOracle is an in-memory price oracle for tests. Symbols absent
// from Quotes resolve to domain.ErrSymbolNotFound; setting Err makes
// every lookup fail with it.
type StubOracle struct {
	Mu      sync.Mutex
	Quotes  map[string]quote.Quote
	Err     error
	Lookups int // number of Lookup calls observed
}

// NewStubOracle creates an oracle preloaded with the given quotes.
func NewStubOracle(quotes map[string]quote.Quote) *StubOracle {
	if quotes == nil {
		quotes = make(map[string]quote.Quote)
	}
	return &StubOracle{Quotes: quotes}
}

// SetPrice upserts a quote for a symbol.
func (o *StubOracle) SetPrice(symbol, name, price string) {
	o.Mu.Lock()
	defer o.Mu.Unlock()
	o.Quotes[symbol] = quote.Quote{
		Symbol: symbol,
		Name:   name,
		Price:  decimal.RequireFromString(price),
	}
}

func (o *StubOracle) Lookup(ctx context.Context, symbol string) (quote.Quote, error) {
	o.Mu.Lock()
	defer o.Mu.Unlock()
	o.Lookups++
	if o.Err != nil {
		return quote.Quote{}, o.Err
	}
	q, ok := o.Quotes[symbol]
	if !ok {
		return quote.Quote{}, domain.ErrSymbolNotFound
	}
	return q, nil
}

package portfolio_test

import (
	"context"
	"testing"
	"time"

	"brokerage_system/internal/domain"
	"brokerage_system/internal/portfolio"
	"brokerage_system/internal/storage/memory"
	"brokerage_system/internal/testutils"

	"github.com/shopspring/decimal"
)

func seedTrade(t *testing.T, store *memory.Store, userID uint, symbol, price string, qty int64) {
	t.Helper()
	activity := domain.ActivityPurchase
	if qty < 0 {
		activity = domain.ActivitySale
	}
	err := store.AppendTrade(context.Background(), domain.LedgerEntry{
		UserID:   userID,
		Date:     time.Now().Truncate(time.Second),
		Activity: activity,
		Symbol:   symbol,
		Price:    decimal.RequireFromString(price),
		Qty:      qty,
	})
	if err != nil {
		t.Fatalf("seed trade: %v", err)
	}
}

func TestViewGrandTotal(t *testing.T) {
	ctx := context.Background()
	store := memory.NewStore()
	user, err := store.CreateUser(ctx, domain.User{Username: "alice", Hash: "x", Cash: decimal.RequireFromString("50.00")})
	if err != nil {
		t.Fatalf("create user: %v", err)
	}
	seedTrade(t, store, user.ID, "AAPL", "5.00", 10)
	seedTrade(t, store, user.ID, "MSFT", "300.00", 2)
	_ = store.UpsertCompany(ctx, domain.Company{Symbol: "AAPL", Name: "Apple Inc"})
	_ = store.UpsertCompany(ctx, domain.Company{Symbol: "MSFT", Name: "Microsoft Corporation"})

	oracle := testutils.NewStubOracle(nil)
	oracle.SetPrice("AAPL", "Apple Inc", "6.00")
	oracle.SetPrice("MSFT", "Microsoft Corporation", "310.00")

	view, err := portfolio.NewValuator(store, oracle).View(ctx, user.ID)
	if err != nil {
		t.Fatalf("view: %v", err)
	}
	if len(view.Positions) != 2 {
		t.Fatalf("positions: want 2, got %d", len(view.Positions))
	}
	// Sorted by symbol
	if view.Positions[0].Symbol != "AAPL" || view.Positions[1].Symbol != "MSFT" {
		t.Errorf("position order: got %s, %s", view.Positions[0].Symbol, view.Positions[1].Symbol)
	}
	if view.Positions[0].Name != "Apple Inc" {
		t.Errorf("company name: got %q", view.Positions[0].Name)
	}
	// Lines valued at the live price, not the execution price
	if !view.Positions[0].Value.Equal(decimal.RequireFromString("60.00")) {
		t.Errorf("AAPL line value: want 60.00, got %s", view.Positions[0].Value)
	}
	// 50 cash + 60 AAPL + 620 MSFT
	if !view.GrandTotal.Equal(decimal.RequireFromString("730.00")) {
		t.Errorf("grand total: want 730.00, got %s", view.GrandTotal)
	}
}

// A held symbol the oracle can no longer resolve degrades to a
// price-unavailable line instead of failing the whole view.
func TestViewDegradesUnresolvableSymbol(t *testing.T) {
	ctx := context.Background()
	store := memory.NewStore()
	user, _ := store.CreateUser(ctx, domain.User{Username: "alice", Hash: "x", Cash: decimal.RequireFromString("100.00")})
	seedTrade(t, store, user.ID, "AAPL", "5.00", 10)
	seedTrade(t, store, user.ID, "GONE", "2.00", 4) // delisted since purchase

	oracle := testutils.NewStubOracle(nil)
	oracle.SetPrice("AAPL", "Apple Inc", "5.00")

	view, err := portfolio.NewValuator(store, oracle).View(ctx, user.ID)
	if err != nil {
		t.Fatalf("view: %v", err)
	}
	if len(view.Positions) != 2 {
		t.Fatalf("positions: want 2, got %d", len(view.Positions))
	}
	var gone *portfolio.Position
	for i := range view.Positions {
		if view.Positions[i].Symbol == "GONE" {
			gone = &view.Positions[i]
		}
	}
	if gone == nil {
		t.Fatal("GONE line missing from view")
	}
	if !gone.PriceUnavailable {
		t.Error("GONE line should be flagged price-unavailable")
	}
	// 100 cash + 50 AAPL, nothing for GONE
	if !view.GrandTotal.Equal(decimal.RequireFromString("150.00")) {
		t.Errorf("grand total: want 150.00, got %s", view.GrandTotal)
	}
}

func TestViewOmitsZeroNetHoldings(t *testing.T) {
	ctx := context.Background()
	store := memory.NewStore()
	user, _ := store.CreateUser(ctx, domain.User{Username: "alice", Hash: "x", Cash: decimal.RequireFromString("10.00")})
	seedTrade(t, store, user.ID, "AAPL", "5.00", 3)
	seedTrade(t, store, user.ID, "AAPL", "6.00", -3)

	oracle := testutils.NewStubOracle(nil)
	oracle.SetPrice("AAPL", "Apple Inc", "7.00")

	view, err := portfolio.NewValuator(store, oracle).View(ctx, user.ID)
	if err != nil {
		t.Fatalf("view: %v", err)
	}
	if len(view.Positions) != 0 {
		t.Errorf("zero-net holding shown: %+v", view.Positions)
	}
	if !view.GrandTotal.Equal(decimal.RequireFromString("10.00")) {
		t.Errorf("grand total: want 10.00, got %s", view.GrandTotal)
	}
}

package trading_test

import (
	"context"
	"errors"
	"testing"

	"brokerage_system/internal/domain"
	"brokerage_system/internal/storage/memory"
	"brokerage_system/internal/testutils"
	"brokerage_system/internal/trading"

	"github.com/shopspring/decimal"
)

func newUser(t *testing.T, store *memory.Store, cash string) domain.User {
	t.Helper()
	user, err := store.CreateUser(context.Background(), domain.User{
		Username: "alice",
		Hash:     "irrelevant",
		Cash:     decimal.RequireFromString(cash),
	})
	if err != nil {
		t.Fatalf("create user: %v", err)
	}
	return user
}

func TestBuyThenSell(t *testing.T) {
	ctx := context.Background()
	store := memory.NewStore()
	oracle := testutils.NewStubOracle(nil)
	oracle.SetPrice("AAPL", "Apple Inc", "5.00")
	engine := trading.NewEngine(store, oracle)

	user := newUser(t, store, "100.00")

	exec, err := engine.Buy(ctx, user.ID, trading.BuyRequest{Symbol: "aapl", Shares: 10})
	if err != nil {
		t.Fatalf("buy: %v", err)
	}
	if exec.Symbol != "AAPL" {
		t.Errorf("symbol not normalized: got %q", exec.Symbol)
	}
	if !exec.Cash.Equal(decimal.RequireFromString("50.00")) {
		t.Errorf("cash after buy: want 50.00, got %s", exec.Cash)
	}

	held, err := store.Holding(ctx, user.ID, "AAPL")
	if err != nil {
		t.Fatalf("holding: %v", err)
	}
	if held != 10 {
		t.Errorf("holding after buy: want 10, got %d", held)
	}

	// The company is upserted lazily on first purchase
	company, err := store.CompanyBySymbol(ctx, "AAPL")
	if err != nil {
		t.Fatalf("company: %v", err)
	}
	if company.Name != "Apple Inc" {
		t.Errorf("company name: want Apple Inc, got %q", company.Name)
	}

	// Price moves before the sale
	oracle.SetPrice("AAPL", "Apple Inc", "6.00")

	exec, err = engine.Sell(ctx, user.ID, trading.SellRequest{Symbol: "AAPL", Shares: 4})
	if err != nil {
		t.Fatalf("sell: %v", err)
	}
	if !exec.Cash.Equal(decimal.RequireFromString("74.00")) {
		t.Errorf("cash after sell: want 74.00, got %s", exec.Cash)
	}

	held, _ = store.Holding(ctx, user.ID, "AAPL")
	if held != 6 {
		t.Errorf("holding after sell: want 6, got %d", held)
	}

	history, err := store.History(ctx, user.ID)
	if err != nil {
		t.Fatalf("history: %v", err)
	}
	if len(history) != 2 {
		t.Fatalf("history length: want 2, got %d", len(history))
	}
	if history[0].Activity != domain.ActivityPurchase || history[0].Qty != 10 {
		t.Errorf("first entry: want Purchase +10, got %s %d", history[0].Activity, history[0].Qty)
	}
	if history[1].Activity != domain.ActivitySale || history[1].Qty != -4 {
		t.Errorf("second entry: want Sale -4, got %s %d", history[1].Activity, history[1].Qty)
	}
}

func TestBuyInsufficientFunds(t *testing.T) {
	ctx := context.Background()
	store := memory.NewStore()
	oracle := testutils.NewStubOracle(nil)
	oracle.SetPrice("AAPL", "Apple Inc", "5.00")
	engine := trading.NewEngine(store, oracle)

	user := newUser(t, store, "10.00")

	_, err := engine.Buy(ctx, user.ID, trading.BuyRequest{Symbol: "AAPL", Shares: 3})
	if !errors.Is(err, domain.ErrInsufficientFunds) {
		t.Fatalf("want ErrInsufficientFunds, got %v", err)
	}

	// A rejected order must leave no ledger or cash mutation
	history, _ := store.History(ctx, user.ID)
	if len(history) != 0 {
		t.Errorf("ledger mutated by failed buy: %d entries", len(history))
	}
	after, _ := store.UserByID(ctx, user.ID)
	if !after.Cash.Equal(decimal.RequireFromString("10.00")) {
		t.Errorf("cash mutated by failed buy: %s", after.Cash)
	}
}

func TestSellInsufficientShares(t *testing.T) {
	ctx := context.Background()
	store := memory.NewStore()
	oracle := testutils.NewStubOracle(nil)
	oracle.SetPrice("AAPL", "Apple Inc", "5.00")
	engine := trading.NewEngine(store, oracle)

	user := newUser(t, store, "100.00")

	if _, err := engine.Buy(ctx, user.ID, trading.BuyRequest{Symbol: "AAPL", Shares: 2}); err != nil {
		t.Fatalf("buy: %v", err)
	}
	_, err := engine.Sell(ctx, user.ID, trading.SellRequest{Symbol: "AAPL", Shares: 5})
	if !errors.Is(err, domain.ErrInsufficientShares) {
		t.Fatalf("want ErrInsufficientShares, got %v", err)
	}

	history, _ := store.History(ctx, user.ID)
	if len(history) != 1 {
		t.Errorf("ledger mutated by failed sell: %d entries", len(history))
	}
	after, _ := store.UserByID(ctx, user.ID)
	if !after.Cash.Equal(decimal.RequireFromString("90.00")) {
		t.Errorf("cash mutated by failed sell: %s", after.Cash)
	}
}

func TestBuyUnknownSymbol(t *testing.T) {
	store := memory.NewStore()
	engine := trading.NewEngine(store, testutils.NewStubOracle(nil))
	user := newUser(t, store, "100.00")

	_, err := engine.Buy(context.Background(), user.ID, trading.BuyRequest{Symbol: "ZZZZ", Shares: 1})
	if !errors.Is(err, domain.ErrSymbolNotFound) {
		t.Fatalf("want ErrSymbolNotFound, got %v", err)
	}
}

func TestSymbolValidation(t *testing.T) {
	cases := []struct {
		in    string
		want  string
		valid bool
	}{
		{"AAPL", "AAPL", true},
		{"aapl", "AAPL", true},
		{"AB", "", false},
		{"ABCDE", "", false},
		{"AB12", "", false},
		{"", "", false},
	}
	for _, tc := range cases {
		got, err := trading.NormalizeSymbol(tc.in)
		if tc.valid {
			if err != nil {
				t.Errorf("NormalizeSymbol(%q): unexpected error %v", tc.in, err)
			} else if got != tc.want {
				t.Errorf("NormalizeSymbol(%q): want %q, got %q", tc.in, tc.want, got)
			}
			continue
		}
		var vErr *domain.ValidationError
		if !errors.As(err, &vErr) {
			t.Errorf("NormalizeSymbol(%q): want ValidationError, got %v", tc.in, err)
		}
	}
}

func TestNonPositiveShares(t *testing.T) {
	store := memory.NewStore()
	oracle := testutils.NewStubOracle(nil)
	oracle.SetPrice("AAPL", "Apple Inc", "5.00")
	engine := trading.NewEngine(store, oracle)
	user := newUser(t, store, "100.00")

	var vErr *domain.ValidationError
	if _, err := engine.Buy(context.Background(), user.ID, trading.BuyRequest{Symbol: "AAPL", Shares: 0}); !errors.As(err, &vErr) {
		t.Errorf("buy 0 shares: want ValidationError, got %v", err)
	}
	if _, err := engine.Sell(context.Background(), user.ID, trading.SellRequest{Symbol: "AAPL", Shares: -2}); !errors.As(err, &vErr) {
		t.Errorf("sell -2 shares: want ValidationError, got %v", err)
	}
}

// TestCashReconciliation replays a mixed operation sequence and checks
// the denormalized balance equals initial cash plus top-ups minus
// purchase costs plus sale proceeds recomputed from the event log.
func TestCashReconciliation(t *testing.T) {
	ctx := context.Background()
	store := memory.NewStore()
	oracle := testutils.NewStubOracle(nil)
	oracle.SetPrice("AAPL", "Apple Inc", "12.34")
	oracle.SetPrice("MSFT", "Microsoft Corporation", "301.50")
	engine := trading.NewEngine(store, oracle)

	user := newUser(t, store, "10000.00")

	ops := []func() error{
		func() error { _, err := engine.Buy(ctx, user.ID, trading.BuyRequest{Symbol: "AAPL", Shares: 40}); return err },
		func() error { _, err := engine.Buy(ctx, user.ID, trading.BuyRequest{Symbol: "MSFT", Shares: 7}); return err },
		func() error { _, err := engine.Sell(ctx, user.ID, trading.SellRequest{Symbol: "AAPL", Shares: 15}); return err },
		func() error { _, err := engine.Buy(ctx, user.ID, trading.BuyRequest{Symbol: "AAPL", Shares: 3}); return err },
		func() error { _, err := engine.Sell(ctx, user.ID, trading.SellRequest{Symbol: "MSFT", Shares: 7}); return err },
	}
	for i, op := range ops {
		if err := op(); err != nil {
			t.Fatalf("op %d: %v", i, err)
		}
	}

	// Replay the ledger
	expected := decimal.RequireFromString("10000.00")
	history, err := store.History(ctx, user.ID)
	if err != nil {
		t.Fatalf("history: %v", err)
	}
	for _, e := range history {
		// Signed qty makes purchase cost negative and sale proceeds positive
		expected = expected.Sub(e.Price.Mul(decimal.NewFromInt(e.Qty)))
	}

	after, _ := store.UserByID(ctx, user.ID)
	if !after.Cash.Equal(expected) {
		t.Errorf("balance not reconcilable: ledger says %s, user row says %s", expected, after.Cash)
	}
}

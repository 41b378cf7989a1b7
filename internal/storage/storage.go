package storage

import (
	"context"
	"errors"

	"brokerage_system/internal/domain"

	"github.com/shopspring/decimal"
)

// ErrNotFound indicates a record does not exist.
var ErrNotFound = errors.New("record not found")

// ErrDuplicate indicates a uniqueness conflict.
var ErrDuplicate = errors.New("record already exists")

// Store captures persistence for users, companies and the append-only
// ledger. The ledger methods are pure record-keepers: validation is the
// caller's responsibility, and no entry is ever mutated or removed.
type Store interface {
	// Users
	CreateUser(ctx context.Context, user domain.User) (domain.User, error)
	UserByID(ctx context.Context, id uint) (domain.User, error)
	UserByUsername(ctx context.Context, username string) (domain.User, error)
	UpdatePasswordHash(ctx context.Context, id uint, hash string) error
	// AddCash applies a signed delta to the denormalized balance.
	AddCash(ctx context.Context, id uint, delta decimal.Decimal) error

	// Companies
	UpsertCompany(ctx context.Context, company domain.Company) error
	CompanyBySymbol(ctx context.Context, symbol string) (domain.Company, error)

	// Ledger
	AppendTrade(ctx context.Context, entry domain.LedgerEntry) error
	AppendCashEvent(ctx context.Context, event domain.CashEvent) error
	HoldingsBySymbol(ctx context.Context, userID uint) (map[string]int64, error)
	Holding(ctx context.Context, userID uint, symbol string) (int64, error)
	History(ctx context.Context, userID uint) ([]domain.LedgerEntry, error)
	CashHistory(ctx context.Context, userID uint) ([]domain.CashEvent, error)

	// Admin listings, paginated
	ListUsers(ctx context.Context, offset, limit int) ([]domain.User, error)
	CountUsers(ctx context.Context) (int64, error)
	ListTrades(ctx context.Context, offset, limit int) ([]domain.LedgerEntry, error)
	CountTrades(ctx context.Context) (int64, error)

	// InTx runs fn atomically: either every write inside fn is
	// persisted, or none is. Writers for the same user are serialized
	// through this scope.
	InTx(ctx context.Context, fn func(tx Store) error) error
}

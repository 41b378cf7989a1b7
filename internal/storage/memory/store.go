package memory

import (
	"context"
	"strings"
	"sync"

	"brokerage_system/internal/domain"
	"brokerage_system/internal/storage"

	"github.com/shopspring/decimal"
)

// Ensure Store satisfies the storage.Store interface at compile time.
var _ storage.Store = (*Store)(nil)

// Store is an in-memory implementation of storage.Store, used by tests
// and local development. A single mutex serializes writers, which also
// provides the InTx atomicity guarantee.
type Store struct {
	mu         sync.Mutex
	inTx       bool // set on the transactional view, which must not re-lock
	users      map[uint]domain.User
	companies  map[string]domain.Company
	trades     []domain.LedgerEntry
	cashEvents []domain.CashEvent
	nextUserID uint
	nextRowID  uint
}

// NewStore creates an empty in-memory store.
func NewStore() *Store {
	return &Store{
		users:      make(map[uint]domain.User),
		companies:  make(map[string]domain.Company),
		nextUserID: 1,
		nextRowID:  1,
	}
}

func (s *Store) lock() func() {
	if s.inTx {
		return func() {}
	}
	s.mu.Lock()
	return s.mu.Unlock
}

// CreateUser inserts a new user, enforcing username uniqueness.
func (s *Store) CreateUser(ctx context.Context, user domain.User) (domain.User, error) {
	defer s.lock()()
	for _, u := range s.users {
		if strings.EqualFold(u.Username, user.Username) {
			return domain.User{}, storage.ErrDuplicate
		}
	}
	user.ID = s.nextUserID
	s.nextUserID++
	s.users[user.ID] = user
	return user, nil
}

// UserByID fetches a user by id.
func (s *Store) UserByID(ctx context.Context, id uint) (domain.User, error) {
	defer s.lock()()
	user, ok := s.users[id]
	if !ok {
		return domain.User{}, storage.ErrNotFound
	}
	return user, nil
}

// UserByUsername fetches a user by username.
func (s *Store) UserByUsername(ctx context.Context, username string) (domain.User, error) {
	defer s.lock()()
	for _, u := range s.users {
		if u.Username == username {
			return u, nil
		}
	}
	return domain.User{}, storage.ErrNotFound
}

// UpdatePasswordHash replaces the stored hash.
func (s *Store) UpdatePasswordHash(ctx context.Context, id uint, hash string) error {
	defer s.lock()()
	user, ok := s.users[id]
	if !ok {
		return storage.ErrNotFound
	}
	user.Hash = hash
	s.users[id] = user
	return nil
}

// AddCash applies a signed delta to the user's balance.
func (s *Store) AddCash(ctx context.Context, id uint, delta decimal.Decimal) error {
	defer s.lock()()
	user, ok := s.users[id]
	if !ok {
		return storage.ErrNotFound
	}
	user.Cash = user.Cash.Add(delta)
	s.users[id] = user
	return nil
}

// UpsertCompany inserts the company if unseen, leaving existing rows untouched.
func (s *Store) UpsertCompany(ctx context.Context, company domain.Company) error {
	defer s.lock()()
	if _, ok := s.companies[company.Symbol]; !ok {
		s.companies[company.Symbol] = company
	}
	return nil
}

// CompanyBySymbol fetches a company by symbol.
func (s *Store) CompanyBySymbol(ctx context.Context, symbol string) (domain.Company, error) {
	defer s.lock()()
	company, ok := s.companies[symbol]
	if !ok {
		return domain.Company{}, storage.ErrNotFound
	}
	return company, nil
}

// AppendTrade writes one ledger entry.
func (s *Store) AppendTrade(ctx context.Context, entry domain.LedgerEntry) error {
	defer s.lock()()
	entry.ID = s.nextRowID
	s.nextRowID++
	s.trades = append(s.trades, entry)
	return nil
}

// AppendCashEvent writes one cash event.
func (s *Store) AppendCashEvent(ctx context.Context, event domain.CashEvent) error {
	defer s.lock()()
	event.ID = s.nextRowID
	s.nextRowID++
	s.cashEvents = append(s.cashEvents, event)
	return nil
}

// HoldingsBySymbol returns net quantity per symbol, omitting zero-net rows.
func (s *Store) HoldingsBySymbol(ctx context.Context, userID uint) (map[string]int64, error) {
	defer s.lock()()
	sums := make(map[string]int64)
	for _, e := range s.trades {
		if e.UserID == userID {
			sums[e.Symbol] += e.Qty
		}
	}
	for symbol, qty := range sums {
		if qty == 0 {
			delete(sums, symbol)
		}
	}
	return sums, nil
}

// Holding returns the net quantity for one symbol, 0 if none.
func (s *Store) Holding(ctx context.Context, userID uint, symbol string) (int64, error) {
	defer s.lock()()
	var qty int64
	for _, e := range s.trades {
		if e.UserID == userID && e.Symbol == symbol {
			qty += e.Qty
		}
	}
	return qty, nil
}

// History returns every ledger entry for a user in insertion order.
func (s *Store) History(ctx context.Context, userID uint) ([]domain.LedgerEntry, error) {
	defer s.lock()()
	var entries []domain.LedgerEntry
	for _, e := range s.trades {
		if e.UserID == userID {
			entries = append(entries, e)
		}
	}
	return entries, nil
}

// CashHistory returns every cash event for a user in insertion order.
func (s *Store) CashHistory(ctx context.Context, userID uint) ([]domain.CashEvent, error) {
	defer s.lock()()
	var events []domain.CashEvent
	for _, e := range s.cashEvents {
		if e.UserID == userID {
			events = append(events, e)
		}
	}
	return events, nil
}

// ListUsers returns a page of users ordered by id.
func (s *Store) ListUsers(ctx context.Context, offset, limit int) ([]domain.User, error) {
	defer s.lock()()
	var users []domain.User
	for id := uint(1); id < s.nextUserID; id++ {
		if u, ok := s.users[id]; ok {
			users = append(users, u)
		}
	}
	return page(users, offset, limit), nil
}

// CountUsers returns the total number of users.
func (s *Store) CountUsers(ctx context.Context) (int64, error) {
	defer s.lock()()
	return int64(len(s.users)), nil
}

// ListTrades returns a page of ledger entries across all users, newest first.
func (s *Store) ListTrades(ctx context.Context, offset, limit int) ([]domain.LedgerEntry, error) {
	defer s.lock()()
	reversed := make([]domain.LedgerEntry, 0, len(s.trades))
	for i := len(s.trades) - 1; i >= 0; i-- {
		reversed = append(reversed, s.trades[i])
	}
	return page(reversed, offset, limit), nil
}

// CountTrades returns the total number of ledger entries.
func (s *Store) CountTrades(ctx context.Context) (int64, error) {
	defer s.lock()()
	return int64(len(s.trades)), nil
}

// InTx serializes fn under the store mutex. On error the pre-tx state
// is restored so a failed transaction leaves no partial writes.
func (s *Store) InTx(ctx context.Context, fn func(tx storage.Store) error) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	snapshot := s.clone()
	tx := &Store{
		inTx:       true,
		users:      s.users,
		companies:  s.companies,
		trades:     s.trades,
		cashEvents: s.cashEvents,
		nextUserID: s.nextUserID,
		nextRowID:  s.nextRowID,
	}
	if err := fn(tx); err != nil {
		s.users = snapshot.users
		s.companies = snapshot.companies
		s.trades = snapshot.trades
		s.cashEvents = snapshot.cashEvents
		s.nextUserID = snapshot.nextUserID
		s.nextRowID = snapshot.nextRowID
		return err
	}
	// Appends inside the tx may have reallocated the slices.
	s.users = tx.users
	s.companies = tx.companies
	s.trades = tx.trades
	s.cashEvents = tx.cashEvents
	s.nextUserID = tx.nextUserID
	s.nextRowID = tx.nextRowID
	return nil
}

func (s *Store) clone() *Store {
	users := make(map[uint]domain.User, len(s.users))
	for id, u := range s.users {
		users[id] = u
	}
	companies := make(map[string]domain.Company, len(s.companies))
	for sym, c := range s.companies {
		companies[sym] = c
	}
	return &Store{
		users:      users,
		companies:  companies,
		trades:     append([]domain.LedgerEntry(nil), s.trades...),
		cashEvents: append([]domain.CashEvent(nil), s.cashEvents...),
		nextUserID: s.nextUserID,
		nextRowID:  s.nextRowID,
	}
}

func page[T any](items []T, offset, limit int) []T {
	if offset >= len(items) {
		return nil
	}
	end := offset + limit
	if end > len(items) {
		end = len(items)
	}
	return items[offset:end]
}

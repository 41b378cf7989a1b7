package mysql

import (
	"context"
	"errors"

	"brokerage_system/internal/domain"
	"brokerage_system/internal/storage"

	"github.com/shopspring/decimal"
	"gorm.io/driver/mysql"
	"gorm.io/gorm"
	"gorm.io/gorm/clause"
)

// Ensure Store satisfies the storage.Store interface at compile time.
var _ storage.Store = (*Store)(nil)

// Store provides MySQL-backed persistence via GORM.
type Store struct {
	db      *gorm.DB
	locking bool // true inside InTx: user reads take a row lock
}

// Open connects to MySQL and returns a Store.
func Open(dsn string) (*Store, error) {
	db, err := gorm.Open(mysql.Open(dsn), &gorm.Config{TranslateError: true})
	if err != nil {
		return nil, err
	}
	return &Store{db: db}, nil
}

// New wraps an existing GORM handle.
func New(db *gorm.DB) *Store {
	return &Store{db: db}
}

// CreateUser inserts a new user row.
func (s *Store) CreateUser(ctx context.Context, user domain.User) (domain.User, error) {
	if err := s.db.WithContext(ctx).Create(&user).Error; err != nil {
		// Unique index on username
		if errors.Is(err, gorm.ErrDuplicatedKey) {
			return domain.User{}, storage.ErrDuplicate
		}
		return domain.User{}, err
	}
	return user, nil
}

// UserByID fetches a user by primary key. Inside InTx the row is
// locked FOR UPDATE so concurrent trades for the same user serialize.
func (s *Store) UserByID(ctx context.Context, id uint) (domain.User, error) {
	q := s.db.WithContext(ctx)
	if s.locking {
		q = q.Clauses(clause.Locking{Strength: "UPDATE"})
	}
	var user domain.User
	if err := q.First(&user, id).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return domain.User{}, storage.ErrNotFound
		}
		return domain.User{}, err
	}
	return user, nil
}

// UserByUsername fetches a user by unique username.
func (s *Store) UserByUsername(ctx context.Context, username string) (domain.User, error) {
	var user domain.User
	if err := s.db.WithContext(ctx).Where("username = ?", username).First(&user).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return domain.User{}, storage.ErrNotFound
		}
		return domain.User{}, err
	}
	return user, nil
}

// UpdatePasswordHash replaces the stored hash for a user.
func (s *Store) UpdatePasswordHash(ctx context.Context, id uint, hash string) error {
	res := s.db.WithContext(ctx).Model(&domain.User{}).Where("id = ?", id).Update("hash", hash)
	if res.Error != nil {
		return res.Error
	}
	if res.RowsAffected == 0 {
		return storage.ErrNotFound
	}
	return nil
}

// AddCash applies a signed delta to the denormalized balance.
func (s *Store) AddCash(ctx context.Context, id uint, delta decimal.Decimal) error {
	res := s.db.WithContext(ctx).Model(&domain.User{}).Where("id = ?", id).
		Update("cash", gorm.Expr("cash + ?", delta))
	if res.Error != nil {
		return res.Error
	}
	if res.RowsAffected == 0 {
		return storage.ErrNotFound
	}
	return nil
}

// UpsertCompany inserts the company if its symbol is unseen. Existing
// rows are left untouched: the display name is immutable after the
// first trade.
func (s *Store) UpsertCompany(ctx context.Context, company domain.Company) error {
	return s.db.WithContext(ctx).
		Clauses(clause.OnConflict{DoNothing: true}).
		Create(&company).Error
}

// CompanyBySymbol fetches a company by ticker symbol.
func (s *Store) CompanyBySymbol(ctx context.Context, symbol string) (domain.Company, error) {
	var company domain.Company
	if err := s.db.WithContext(ctx).Where("symbol = ?", symbol).First(&company).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return domain.Company{}, storage.ErrNotFound
		}
		return domain.Company{}, err
	}
	return company, nil
}

// AppendTrade writes one ledger entry. Record-keeper only, no validation.
func (s *Store) AppendTrade(ctx context.Context, entry domain.LedgerEntry) error {
	return s.db.WithContext(ctx).Create(&entry).Error
}

// AppendCashEvent writes one cash event.
func (s *Store) AppendCashEvent(ctx context.Context, event domain.CashEvent) error {
	return s.db.WithContext(ctx).Create(&event).Error
}

// holdingRow is the scan target for the grouped holdings query.
type holdingRow struct {
	Symbol string
	Qty    int64
}

// HoldingsBySymbol returns net quantity per symbol, omitting zero-net rows.
func (s *Store) HoldingsBySymbol(ctx context.Context, userID uint) (map[string]int64, error) {
	var rows []holdingRow
	err := s.db.WithContext(ctx).Model(&domain.LedgerEntry{}).
		Select("symbol, SUM(qty) AS qty").
		Where("user_id = ?", userID).
		Group("symbol").
		Having("SUM(qty) <> 0").
		Scan(&rows).Error
	if err != nil {
		return nil, err
	}
	holdings := make(map[string]int64, len(rows))
	for _, r := range rows {
		holdings[r.Symbol] = r.Qty
	}
	return holdings, nil
}

// Holding returns the net quantity for one symbol, 0 if none.
func (s *Store) Holding(ctx context.Context, userID uint, symbol string) (int64, error) {
	var qty int64
	err := s.db.WithContext(ctx).Model(&domain.LedgerEntry{}).
		Select("COALESCE(SUM(qty), 0)").
		Where("user_id = ? AND symbol = ?", userID, symbol).
		Scan(&qty).Error
	return qty, err
}

// History returns every ledger entry for a user, oldest first.
func (s *Store) History(ctx context.Context, userID uint) ([]domain.LedgerEntry, error) {
	var entries []domain.LedgerEntry
	err := s.db.WithContext(ctx).
		Where("user_id = ?", userID).
		Order("id asc").
		Find(&entries).Error
	return entries, err
}

// CashHistory returns every cash event for a user, oldest first.
func (s *Store) CashHistory(ctx context.Context, userID uint) ([]domain.CashEvent, error) {
	var events []domain.CashEvent
	err := s.db.WithContext(ctx).
		Where("user_id = ?", userID).
		Order("id asc").
		Find(&events).Error
	return events, err
}

// ListUsers returns a page of users.
func (s *Store) ListUsers(ctx context.Context, offset, limit int) ([]domain.User, error) {
	var users []domain.User
	err := s.db.WithContext(ctx).Order("id asc").Offset(offset).Limit(limit).Find(&users).Error
	return users, err
}

// CountUsers returns the total number of users.
func (s *Store) CountUsers(ctx context.Context) (int64, error) {
	var total int64
	err := s.db.WithContext(ctx).Model(&domain.User{}).Count(&total).Error
	return total, err
}

// ListTrades returns a page of ledger entries across all users, newest first.
func (s *Store) ListTrades(ctx context.Context, offset, limit int) ([]domain.LedgerEntry, error) {
	var entries []domain.LedgerEntry
	err := s.db.WithContext(ctx).Order("id desc").Offset(offset).Limit(limit).Find(&entries).Error
	return entries, err
}

// CountTrades returns the total number of ledger entries.
func (s *Store) CountTrades(ctx context.Context) (int64, error) {
	var total int64
	err := s.db.WithContext(ctx).Model(&domain.LedgerEntry{}).Count(&total).Error
	return total, err
}

// InTx runs fn inside one database transaction. User reads performed
// through the transactional store lock the row FOR UPDATE.
func (s *Store) InTx(ctx context.Context, fn func(tx storage.Store) error) error {
	return s.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		return fn(&Store{db: tx, locking: true})
	})
}

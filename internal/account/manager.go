package account

import (
	"context"
	"errors"
	"regexp"
	"strings"
	"time"

	"brokerage_system/internal/domain"
	"brokerage_system/internal/storage"

	"github.com/shopspring/decimal"
	"golang.org/x/crypto/bcrypt"
)

// minPasswordLen is the minimum accepted password length.
const minPasswordLen = 6

// Usernames are alphabetic only, stored lowercase.
var usernamePattern = regexp.MustCompile(`^[A-Za-z]+$`)

// RegisterRequest carries a registration form.
type RegisterRequest struct {
	Username     string `json:"username" binding:"required"`     // Desired username
	Password     string `json:"password" binding:"required"`     // Plaintext password, hashed before storage
	Confirmation string `json:"confirmation" binding:"required"` // Must match Password
}

// ChangePasswordRequest carries a password change form.
type ChangePasswordRequest struct {
	OldPassword  string `json:"old_password" binding:"required"` // Current password
	NewPassword  string `json:"new_password" binding:"required"` // Replacement password
	Confirmation string `json:"confirmation" binding:"required"` // Must match NewPassword
}

// Manager handles registration, authentication, password changes and
// cash top-ups.
type Manager struct {
	store storage.Store
}

// NewManager creates an account manager over a store.
func NewManager(store storage.Store) *Manager {
	return &Manager{store: store}
}

func checkPassword(password, confirmation string) error {
	if len(password) < minPasswordLen {
		return domain.Validation("password", "must be at least 6 characters")
	}
	if password != confirmation {
		return domain.Validation("confirmation", "passwords are not the same")
	}
	return nil
}

// Register creates a new user with a hashed password and zero cash.
func (m *Manager) Register(ctx context.Context, req RegisterRequest) (domain.User, error) {
	if !usernamePattern.MatchString(req.Username) {
		return domain.User{}, domain.Validation("username", "must be alphabetic only")
	}
	if err := checkPassword(req.Password, req.Confirmation); err != nil {
		return domain.User{}, err
	}
	hash, err := bcrypt.GenerateFromPassword([]byte(req.Password), bcrypt.DefaultCost)
	if err != nil {
		return domain.User{}, err
	}
	user := domain.User{
		Username: strings.ToLower(req.Username),
		Hash:     string(hash),
		Cash:     decimal.Zero,
	}
	created, err := m.store.CreateUser(ctx, user)
	if errors.Is(err, storage.ErrDuplicate) {
		return domain.User{}, domain.ErrUsernameTaken
	}
	if err != nil {
		return domain.User{}, err
	}
	return created, nil
}

// Authenticate verifies a username/password pair. Unknown usernames and
// hash mismatches return the same error so the response does not leak
// which one failed.
func (m *Manager) Authenticate(ctx context.Context, username, password string) (domain.User, error) {
	user, err := m.store.UserByUsername(ctx, strings.ToLower(username))
	if errors.Is(err, storage.ErrNotFound) {
		return domain.User{}, domain.ErrInvalidCredentials
	}
	if err != nil {
		return domain.User{}, err
	}
	if err := bcrypt.CompareHashAndPassword([]byte(user.Hash), []byte(password)); err != nil {
		return domain.User{}, domain.ErrInvalidCredentials
	}
	return user, nil
}

// ChangePassword verifies the old password against the stored hash and
// replaces it with a hash of the new one.
func (m *Manager) ChangePassword(ctx context.Context, userID uint, req ChangePasswordRequest) error {
	user, err := m.store.UserByID(ctx, userID)
	if err != nil {
		return err
	}
	if err := bcrypt.CompareHashAndPassword([]byte(user.Hash), []byte(req.OldPassword)); err != nil {
		return domain.ErrInvalidCredentials
	}
	if err := checkPassword(req.NewPassword, req.Confirmation); err != nil {
		return err
	}
	hash, err := bcrypt.GenerateFromPassword([]byte(req.NewPassword), bcrypt.DefaultCost)
	if err != nil {
		return err
	}
	return m.store.UpdatePasswordHash(ctx, userID, string(hash))
}

// TopUp credits a positive integer amount to the user's balance,
// appending the audit cash event in the same transaction.
func (m *Manager) TopUp(ctx context.Context, userID uint, amount int64) (decimal.Decimal, error) {
	if amount <= 0 {
		return decimal.Zero, domain.Validation("amount", "must be a positive amount")
	}
	inflow := decimal.NewFromInt(amount)

	var balance decimal.Decimal
	err := m.store.InTx(ctx, func(tx storage.Store) error {
		user, err := tx.UserByID(ctx, userID)
		if err != nil {
			return err
		}
		event := domain.CashEvent{
			UserID:   userID,
			Date:     time.Now().Truncate(time.Second),
			Activity: domain.ActivityTopUp,
			Amount:   inflow,
		}
		if err := tx.AppendCashEvent(ctx, event); err != nil {
			return err
		}
		if err := tx.AddCash(ctx, userID, inflow); err != nil {
			return err
		}
		balance = user.Cash.Add(inflow)
		return nil
	})
	if err != nil {
		return decimal.Zero, err
	}
	return balance, nil
}

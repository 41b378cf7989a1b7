package domain

import (
	"time"

	"github.com/shopspring/decimal"
)

// User Model
type User struct {
	ID        uint            `gorm:"primaryKey" json:"id"`                    // Primary key
	Username  string          `gorm:"unique;not null" json:"username"`         // Unique username
	Hash      string          `gorm:"not null" json:"-"`                       // Opaque password hash, never the plaintext
	Cash      decimal.Decimal `gorm:"type:decimal(20,2);not null" json:"cash"` // Denormalized cash balance, reconcilable from the event log
	Role      string          `gorm:"default:user" json:"role"`                // Role: user or admin
	CreatedAt time.Time       `json:"created_at"`                              // Timestamp of registration
}

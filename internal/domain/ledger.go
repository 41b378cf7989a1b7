package domain

import (
	"time"

	"github.com/shopspring/decimal"
)

// Trade activity kinds recorded in the ledger.
const (
	ActivityPurchase = "Purchase" // Shares acquired, positive qty
	ActivitySale     = "Sale"     // Shares disposed, negative qty
	ActivityTopUp    = "Top up"   // Cash inflow event
)

// LedgerEntry is one append-only trade record. Entries are never
// mutated or deleted; holdings are the sum of Qty per (user, symbol).
type LedgerEntry struct {
	ID       uint            `gorm:"primaryKey" json:"id"`                     // Primary key
	UserID   uint            `gorm:"index;not null" json:"user_id"`            // Owning user
	Date     time.Time       `gorm:"not null" json:"date"`                     // Execution time, second precision
	Activity string          `gorm:"not null" json:"activity"`                 // Purchase or Sale
	Symbol   string          `gorm:"index;size:4;not null" json:"symbol"`      // Ticker symbol, uppercase
	Price    decimal.Decimal `gorm:"type:decimal(20,2);not null" json:"price"` // Unit price at execution time
	Qty      int64           `gorm:"not null" json:"qty"`                      // Signed quantity: positive acquired, negative disposed
}

// TableName maps trade entries onto the history table.
func (LedgerEntry) TableName() string { return "history" }

// CashEvent is one append-only cash inflow record, kept for audit.
type CashEvent struct {
	ID       uint            `gorm:"primaryKey" json:"id"`                      // Primary key
	UserID   uint            `gorm:"index;not null" json:"user_id"`             // Owning user
	Date     time.Time       `gorm:"not null" json:"date"`                      // Event time, second precision
	Activity string          `gorm:"not null" json:"activity"`                  // Top up
	Amount   decimal.Decimal `gorm:"type:decimal(20,2);not null" json:"amount"` // Positive inflow amount
}

// TableName maps cash events onto the cash_account table.
func (CashEvent) TableName() string { return "cash_account" }

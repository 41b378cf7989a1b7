package domain

// Company Model
type Company struct {
	Symbol string `gorm:"primaryKey;size:4" json:"symbol"` // Ticker symbol, uppercase, unique key
	Name   string `gorm:"not null" json:"name"`            // Display name, immutable after first upsert
}

package main

import (
	"brokerage_system/internal/config" // Configuration
	"brokerage_system/internal/db"     // Database migration
)

// Main entry point for migration
func main() {
	cfg := config.LoadConfig() // Load configuration
	db.Migrate(cfg.DSN())
}

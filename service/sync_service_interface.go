package service

import (
	"context"

	"quick-quote/models"
)

// SyncServiceInterface defines the contract for refreshing the startup configuration
type SyncServiceInterface interface {
	// Current returns the configuration new sessions start with
	Current() models.EffectiveConfig
	// Sync re-reads the configured workbook and swaps it in. On error the
	// current configuration is kept.
	Sync(ctx context.Context) (SyncResult, error)
}

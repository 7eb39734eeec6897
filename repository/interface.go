package repository

import (
	"context"

	"quick-quote/models"
)

// QuoteRepositoryInterface defines the contract for saved quote operations
type QuoteRepositoryInterface interface {
	Save(ctx context.Context, quote models.SavedQuote) (int64, error)
	GetByID(ctx context.Context, id int64) (*models.SavedQuote, error)
	ListRecent(ctx context.Context, limit int) ([]models.SavedQuote, error)
}

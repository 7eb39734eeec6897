package repository

import (
	"context"
	"database/sql"
	"encoding/json"
	"errors"
	"fmt"

	apperrors "quick-quote/errors"
	"quick-quote/logger"
	"quick-quote/models"
)

const (
	defaultListLimit = 20
	maxListLimit     = 100
)

// QuoteRepository handles database operations for saved quotes
type QuoteRepository struct {
	db *sql.DB
}

// NewQuoteRepository creates a new QuoteRepository
func NewQuoteRepository(conn *sql.DB) *QuoteRepository {
	return &QuoteRepository{db: conn}
}

// Ensure QuoteRepository implements QuoteRepositoryInterface
var _ QuoteRepositoryInterface = (*QuoteRepository)(nil)

// Save inserts a quote and returns its id
func (r *QuoteRepository) Save(ctx context.Context, quote models.SavedQuote) (int64, error) {
	job, err := json.Marshal(quote.Job)
	if err != nil {
		return 0, fmt.Errorf("failed to marshal job details: %w", err)
	}
	responses, err := json.Marshal(quote.Responses)
	if err != nil {
		return 0, fmt.Errorf("failed to marshal responses: %w", err)
	}
	result, err := json.Marshal(quote.Result)
	if err != nil {
		return 0, fmt.Errorf("failed to marshal result: %w", err)
	}

	query := `
		INSERT INTO saved_quotes (session_id, customer_email, job_details, responses, result, final_total)
		VALUES ($1, $2, $3, $4, $5, $6)
		RETURNING id
	`
	var id int64
	err = r.db.QueryRowContext(ctx, query,
		quote.SessionID, quote.CustomerEmail, job, responses, result, quote.Result.FinalTotal,
	).Scan(&id)
	if err != nil {
		return 0, apperrors.NewDatabaseError(err)
	}

	logger.GetLogger().Infow("💾 Save: quote stored", "id", id, "session_id", quote.SessionID, "final_total", quote.Result.FinalTotal)
	return id, nil
}

// GetByID loads one saved quote
func (r *QuoteRepository) GetByID(ctx context.Context, id int64) (*models.SavedQuote, error) {
	query := `
		SELECT id, session_id, customer_email, job_details, responses, result, created_at
		FROM saved_quotes
		WHERE id = $1
	`
	quote, err := scanQuote(r.db.QueryRowContext(ctx, query, id))
	if errors.Is(err, sql.ErrNoRows) {
		return nil, apperrors.NotFound("Quote", id)
	}
	if err != nil {
		return nil, apperrors.NewDatabaseError(err)
	}
	return quote, nil
}

// ListRecent returns the newest quotes first. limit is clamped to [1, 100]
// and defaults to 20.
func (r *QuoteRepository) ListRecent(ctx context.Context, limit int) ([]models.SavedQuote, error) {
	if limit <= 0 {
		limit = defaultListLimit
	}
	if limit > maxListLimit {
		limit = maxListLimit
	}

	query := `
		SELECT id, session_id, customer_email, job_details, responses, result, created_at
		FROM saved_quotes
		ORDER BY created_at DESC, id DESC
		LIMIT $1
	`
	rows, err := r.db.QueryContext(ctx, query, limit)
	if err != nil {
		return nil, apperrors.NewDatabaseError(err)
	}
	defer rows.Close()

	quotes := []models.SavedQuote{}
	for rows.Next() {
		q, err := scanQuote(rows)
		if err != nil {
			return nil, apperrors.NewDatabaseError(err)
		}
		quotes = append(quotes, *q)
	}
	if err := rows.Err(); err != nil {
		return nil, apperrors.NewDatabaseError(err)
	}
	return quotes, nil
}

type rowScanner interface {
	Scan(dest ...interface{}) error
}

func scanQuote(row rowScanner) (*models.SavedQuote, error) {
	var q models.SavedQuote
	var job, responses, result []byte
	if err := row.Scan(&q.ID, &q.SessionID, &q.CustomerEmail, &job, &responses, &result, &q.CreatedAt); err != nil {
		return nil, err
	}
	if err := json.Unmarshal(job, &q.Job); err != nil {
		return nil, fmt.Errorf("failed to unmarshal job details: %w", err)
	}
	if err := json.Unmarshal(responses, &q.Responses); err != nil {
		return nil, fmt.Errorf("failed to unmarshal responses: %w", err)
	}
	if err := json.Unmarshal(result, &q.Result); err != nil {
		return nil, fmt.Errorf("failed to unmarshal result: %w", err)
	}
	return &q, nil
}

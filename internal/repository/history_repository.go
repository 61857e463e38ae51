package repository

import (
	"context"
	"fmt"
	"time"

	"github.com/google/uuid"
	"github.com/jmoiron/sqlx"

	"github.com/Vokurcak68/Flyer-app-sub000/internal/models"
)

// HistoryRepository appends to the flyer edit log.
type HistoryRepository struct {
	db *sqlx.DB
}

// NewHistoryRepository constructs the repository.
func NewHistoryRepository(db *sqlx.DB) *HistoryRepository {
	return &HistoryRepository{db: db}
}

// Append writes one log entry. The log is append-only; there is no update path.
func (r *HistoryRepository) Append(ctx context.Context, entry *models.EditHistory) error {
	if entry.ID == "" {
		entry.ID = uuid.NewString()
	}
	if entry.CreatedAt.IsZero() {
		entry.CreatedAt = time.Now().UTC()
	}
	if _, err := r.db.NamedExecContext(ctx,
		`INSERT INTO edit_history (id, flyer_id, actor_id, action_type, details, created_at)
		 VALUES (:id, :flyer_id, :actor_id, :action_type, :details, :created_at)`,
		entry); err != nil {
		return fmt.Errorf("append edit history: %w", err)
	}
	return nil
}

// ListByFlyer returns log entries newest first.
func (r *HistoryRepository) ListByFlyer(ctx context.Context, flyerID string, limit int) ([]models.EditHistory, error) {
	if limit <= 0 || limit > 500 {
		limit = 100
	}
	var entries []models.EditHistory
	if err := r.db.SelectContext(ctx, &entries,
		`SELECT id, flyer_id, actor_id, action_type, details, created_at
		 FROM edit_history WHERE flyer_id = $1 ORDER BY created_at DESC LIMIT $2`,
		flyerID, limit); err != nil {
		return nil, fmt.Errorf("list edit history: %w", err)
	}
	return entries, nil
}

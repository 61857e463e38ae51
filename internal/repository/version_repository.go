package repository

import (
	"context"
	"fmt"
	"time"

	"github.com/google/uuid"
	"github.com/jmoiron/sqlx"

	"github.com/Vokurcak68/Flyer-app-sub000/internal/models"
)

// VersionRepository stores immutable flyer snapshots.
type VersionRepository struct {
	db *sqlx.DB
}

// NewVersionRepository constructs the repository.
func NewVersionRepository(db *sqlx.DB) *VersionRepository {
	return &VersionRepository{db: db}
}

// Create inserts a snapshot with the next version number for the flyer.
func (r *VersionRepository) Create(ctx context.Context, version *models.FlyerVersion) error {
	if version.ID == "" {
		version.ID = uuid.NewString()
	}
	if version.CreatedAt.IsZero() {
		version.CreatedAt = time.Now().UTC()
	}
	if version.VersionNumber == 0 {
		var next int
		if err := r.db.GetContext(ctx, &next,
			`SELECT COALESCE(MAX(version_number), 0) + 1 FROM flyer_versions WHERE flyer_id = $1`,
			version.FlyerID); err != nil {
			return fmt.Errorf("next version number: %w", err)
		}
		version.VersionNumber = next
	}
	if _, err := r.db.NamedExecContext(ctx,
		`INSERT INTO flyer_versions (id, flyer_id, version_number, payload, author_id, description, created_at)
		 VALUES (:id, :flyer_id, :version_number, :payload, :author_id, :description, :created_at)`,
		version); err != nil {
		return fmt.Errorf("create flyer version: %w", err)
	}
	return nil
}

// ListByFlyer returns snapshot metadata newest first, payload included.
func (r *VersionRepository) ListByFlyer(ctx context.Context, flyerID string) ([]models.FlyerVersion, error) {
	var versions []models.FlyerVersion
	if err := r.db.SelectContext(ctx, &versions,
		`SELECT id, flyer_id, version_number, payload, author_id, description, created_at
		 FROM flyer_versions WHERE flyer_id = $1 ORDER BY version_number DESC`,
		flyerID); err != nil {
		return nil, fmt.Errorf("list flyer versions: %w", err)
	}
	return versions, nil
}

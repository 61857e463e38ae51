package repository

import (
	"context"
	"database/sql"
	"fmt"
	"time"

	"github.com/google/uuid"
	"github.com/jmoiron/sqlx"

	"github.com/Vokurcak68/Flyer-app-sub000/internal/models"
)

// flyerColumns excludes the PDF binary so list and detail reads never drag
// the artifact across the wire. Use GetPDF for the download path.
const flyerColumns = `id, supplier_id, name, action_id, action_name, valid_from, valid_to, status,
       completion_percentage, rejection_reason, auto_save_version, end_user_authored,
       last_edited_at, published_at, created_at, updated_at`

// FlyerRepository persists flyers with their page/slot graph.
type FlyerRepository struct {
	db *sqlx.DB
}

// NewFlyerRepository constructs the repository.
func NewFlyerRepository(db *sqlx.DB) *FlyerRepository {
	return &FlyerRepository{db: db}
}

// Create inserts a fresh draft flyer without pages.
func (r *FlyerRepository) Create(ctx context.Context, flyer *models.Flyer) error {
	if flyer.ID == "" {
		flyer.ID = uuid.NewString()
	}
	now := time.Now().UTC()
	if flyer.CreatedAt.IsZero() {
		flyer.CreatedAt = now
	}
	flyer.UpdatedAt = now
	if flyer.LastEditedAt.IsZero() {
		flyer.LastEditedAt = now
	}
	if flyer.Status == "" {
		flyer.Status = models.FlyerStatusDraft
	}
	const query = `INSERT INTO flyers
	(id, supplier_id, name, action_id, action_name, valid_from, valid_to, status,
	 completion_percentage, rejection_reason, auto_save_version, end_user_authored,
	 last_edited_at, published_at, created_at, updated_at)
	VALUES (:id, :supplier_id, :name, :action_id, :action_name, :valid_from, :valid_to, :status,
	 :completion_percentage, :rejection_reason, :auto_save_version, :end_user_authored,
	 :last_edited_at, :published_at, :created_at, :updated_at)`
	if _, err := r.db.NamedExecContext(ctx, query, flyer); err != nil {
		return fmt.Errorf("create flyer: %w", err)
	}
	return nil
}

// GetByID loads one flyer with its full page/slot graph, pages sorted by
// page number and slots by position.
func (r *FlyerRepository) GetByID(ctx context.Context, id string) (*models.Flyer, error) {
	return loadFlyerGraph(ctx, r.db, id)
}

func loadFlyerGraph(ctx context.Context, q sqlx.QueryerContext, id string) (*models.Flyer, error) {
	var flyer models.Flyer
	if err := sqlx.GetContext(ctx, q, &flyer, `SELECT `+flyerColumns+` FROM flyers WHERE id = $1`, id); err != nil {
		return nil, err
	}
	if err := loadPages(ctx, q, &flyer); err != nil {
		return nil, err
	}
	return &flyer, nil
}

func loadPages(ctx context.Context, q sqlx.QueryerContext, flyer *models.Flyer) error {
	var pages []models.Page
	if err := sqlx.SelectContext(ctx, q, &pages,
		`SELECT id, flyer_id, page_number, footer_promo_id FROM flyer_pages WHERE flyer_id = $1 ORDER BY page_number`,
		flyer.ID); err != nil {
		return fmt.Errorf("load pages: %w", err)
	}
	var slots []models.Slot
	if err := sqlx.SelectContext(ctx, q, &slots,
		`SELECT s.id, s.page_id, s.position, s.slot_type, s.product_id, s.promo_id, s.promo_size
		 FROM flyer_slots s
		 JOIN flyer_pages p ON p.id = s.page_id
		 WHERE p.flyer_id = $1
		 ORDER BY p.page_number, s.position`,
		flyer.ID); err != nil {
		return fmt.Errorf("load slots: %w", err)
	}
	byPage := make(map[string][]models.Slot, len(pages))
	for _, slot := range slots {
		byPage[slot.PageID] = append(byPage[slot.PageID], slot)
	}
	for i := range pages {
		pages[i].Slots = byPage[pages[i].ID]
	}
	flyer.Pages = pages
	return nil
}

// ListBySupplier returns lightweight flyer rows owned by the supplier.
func (r *FlyerRepository) ListBySupplier(ctx context.Context, supplierID string) ([]models.Flyer, error) {
	var flyers []models.Flyer
	if err := r.db.SelectContext(ctx, &flyers,
		`SELECT `+flyerColumns+` FROM flyers WHERE supplier_id = $1 ORDER BY last_edited_at DESC`,
		supplierID); err != nil {
		return nil, fmt.Errorf("list flyers: %w", err)
	}
	return flyers, nil
}

// ListActive returns all currently active flyers, newest publication first.
func (r *FlyerRepository) ListActive(ctx context.Context) ([]models.Flyer, error) {
	var flyers []models.Flyer
	if err := r.db.SelectContext(ctx, &flyers,
		`SELECT `+flyerColumns+` FROM flyers WHERE status = $1 ORDER BY published_at DESC NULLS LAST`,
		models.FlyerStatusActive); err != nil {
		return nil, fmt.Errorf("list active flyers: %w", err)
	}
	return flyers, nil
}

// ActiveValidToSharingProducts returns the valid_to dates of other active
// flyers that reference any of the given products. Used to clamp end-user
// flyer validity.
func (r *FlyerRepository) ActiveValidToSharingProducts(ctx context.Context, excludeFlyerID string, productIDs []string) ([]time.Time, error) {
	if len(productIDs) == 0 {
		return nil, nil
	}
	query, args, err := sqlx.In(
		`SELECT DISTINCT f.valid_to
		 FROM flyers f
		 JOIN flyer_pages p ON p.flyer_id = f.id
		 JOIN flyer_slots s ON s.page_id = p.id
		 WHERE f.status = ? AND f.id <> ? AND f.valid_to IS NOT NULL AND s.product_id IN (?)`,
		models.FlyerStatusActive, excludeFlyerID, productIDs)
	if err != nil {
		return nil, fmt.Errorf("build shared-product query: %w", err)
	}
	var dates []time.Time
	if err := r.db.SelectContext(ctx, &dates, r.db.Rebind(query), args...); err != nil {
		return nil, fmt.Errorf("shared-product valid_to: %w", err)
	}
	return dates, nil
}

// ProductInActiveFlyer reports whether the product is placed in any active
// flyer, which is what grants end users the right to reuse it.
func (r *FlyerRepository) ProductInActiveFlyer(ctx context.Context, productID string) (bool, error) {
	var exists bool
	err := r.db.GetContext(ctx, &exists,
		`SELECT EXISTS (
			SELECT 1 FROM flyers f
			JOIN flyer_pages p ON p.flyer_id = f.id
			JOIN flyer_slots s ON s.page_id = p.id
			WHERE f.status = $1 AND s.product_id = $2)`,
		models.FlyerStatusActive, productID)
	if err != nil {
		return false, fmt.Errorf("product in active flyer: %w", err)
	}
	return exists, nil
}

// mutate runs fn inside a transaction holding a row lock on the flyer, so
// concurrent writers to the same flyer are serialized.
func (r *FlyerRepository) mutate(ctx context.Context, flyerID string, fn func(tx *sqlx.Tx) error) error {
	tx, err := r.db.BeginTxx(ctx, nil)
	if err != nil {
		return fmt.Errorf("begin tx: %w", err)
	}
	defer tx.Rollback() //nolint:errcheck

	var locked string
	if err := tx.GetContext(ctx, &locked, `SELECT id FROM flyers WHERE id = $1 FOR UPDATE`, flyerID); err != nil {
		return err
	}
	if err := fn(tx); err != nil {
		return err
	}
	return tx.Commit()
}

func touchFlyer(ctx context.Context, tx *sqlx.Tx, flyerID string, completion int) error {
	_, err := tx.ExecContext(ctx,
		`UPDATE flyers SET completion_percentage = $2, last_edited_at = $3, updated_at = $3 WHERE id = $1`,
		flyerID, completion, time.Now().UTC())
	if err != nil {
		return fmt.Errorf("touch flyer: %w", err)
	}
	return nil
}

// FlyerMutation is the write produced by one locked read-modify cycle.
// Exactly one of the write fields is expected to be set.
type FlyerMutation struct {
	Meta         bool
	InsertPage   *models.Page
	DeletePageID string
	Slots        []models.Slot
	ReplaceAll   bool
	Pages        []models.Page
	Completion   int
}

// Mutate locks the flyer row, re-loads the page/slot graph under that lock,
// hands it to fn for validation, and applies the returned write in the same
// transaction. Guards inside fn therefore see the state the write lands on,
// which is what keeps a product in at most one slot under concurrent edits.
func (r *FlyerRepository) Mutate(ctx context.Context, flyerID string, fn func(flyer *models.Flyer) (*FlyerMutation, error)) error {
	tx, err := r.db.BeginTxx(ctx, nil)
	if err != nil {
		return fmt.Errorf("begin tx: %w", err)
	}
	defer tx.Rollback() //nolint:errcheck

	var locked string
	if err := tx.GetContext(ctx, &locked, `SELECT id FROM flyers WHERE id = $1 FOR UPDATE`, flyerID); err != nil {
		return err
	}
	flyer, err := loadFlyerGraph(ctx, tx, flyerID)
	if err != nil {
		return err
	}
	mutation, err := fn(flyer)
	if err != nil {
		return err
	}
	if mutation != nil {
		if err := applyMutation(ctx, tx, flyer, mutation); err != nil {
			return err
		}
	}
	return tx.Commit()
}

func applyMutation(ctx context.Context, tx *sqlx.Tx, flyer *models.Flyer, m *FlyerMutation) error {
	switch {
	case m.Meta:
		return updateMetaTx(ctx, tx, flyer)
	case m.InsertPage != nil:
		if err := insertPageTx(ctx, tx, flyer.ID, m.InsertPage); err != nil {
			return err
		}
	case m.DeletePageID != "":
		if err := deletePageTx(ctx, tx, flyer.ID, m.DeletePageID); err != nil {
			return err
		}
	case m.ReplaceAll:
		if err := replacePagesTx(ctx, tx, flyer.ID, m.Pages); err != nil {
			return err
		}
	case len(m.Slots) > 0:
		for i := range m.Slots {
			if _, err := tx.NamedExecContext(ctx,
				`UPDATE flyer_slots SET slot_type = :slot_type, product_id = :product_id,
				 promo_id = :promo_id, promo_size = :promo_size WHERE id = :id`,
				m.Slots[i]); err != nil {
				return fmt.Errorf("update slot: %w", err)
			}
		}
	}
	return touchFlyer(ctx, tx, flyer.ID, m.Completion)
}

func insertPageTx(ctx context.Context, tx *sqlx.Tx, flyerID string, page *models.Page) error {
	page.FlyerID = flyerID
	if _, err := tx.NamedExecContext(ctx,
		`INSERT INTO flyer_pages (id, flyer_id, page_number, footer_promo_id)
		 VALUES (:id, :flyer_id, :page_number, :footer_promo_id)`, page); err != nil {
		return fmt.Errorf("insert page: %w", err)
	}
	for i := range page.Slots {
		page.Slots[i].PageID = page.ID
		if _, err := tx.NamedExecContext(ctx,
			`INSERT INTO flyer_slots (id, page_id, position, slot_type, product_id, promo_id, promo_size)
			 VALUES (:id, :page_id, :position, :slot_type, :product_id, :promo_id, :promo_size)`,
			page.Slots[i]); err != nil {
			return fmt.Errorf("insert slot: %w", err)
		}
	}
	return nil
}

func deletePageTx(ctx context.Context, tx *sqlx.Tx, flyerID, pageID string) error {
	if _, err := tx.ExecContext(ctx, `DELETE FROM flyer_slots WHERE page_id = $1`, pageID); err != nil {
		return fmt.Errorf("delete slots: %w", err)
	}
	result, err := tx.ExecContext(ctx, `DELETE FROM flyer_pages WHERE id = $1 AND flyer_id = $2`, pageID, flyerID)
	if err != nil {
		return fmt.Errorf("delete page: %w", err)
	}
	rows, err := result.RowsAffected()
	if err != nil {
		return fmt.Errorf("check deleted page rows: %w", err)
	}
	if rows == 0 {
		return sql.ErrNoRows
	}
	return nil
}

func replacePagesTx(ctx context.Context, tx *sqlx.Tx, flyerID string, pages []models.Page) error {
	if _, err := tx.ExecContext(ctx,
		`DELETE FROM flyer_slots WHERE page_id IN (SELECT id FROM flyer_pages WHERE flyer_id = $1)`,
		flyerID); err != nil {
		return fmt.Errorf("purge slots: %w", err)
	}
	if _, err := tx.ExecContext(ctx, `DELETE FROM flyer_pages WHERE flyer_id = $1`, flyerID); err != nil {
		return fmt.Errorf("purge pages: %w", err)
	}
	for i := range pages {
		if err := insertPageTx(ctx, tx, flyerID, &pages[i]); err != nil {
			return err
		}
	}
	return nil
}

func updateMetaTx(ctx context.Context, tx *sqlx.Tx, flyer *models.Flyer) error {
	flyer.UpdatedAt = time.Now().UTC()
	flyer.LastEditedAt = flyer.UpdatedAt
	const query = `UPDATE flyers SET name = :name, action_id = :action_id, action_name = :action_name,
	 valid_from = :valid_from, valid_to = :valid_to, completion_percentage = :completion_percentage,
	 last_edited_at = :last_edited_at, updated_at = :updated_at WHERE id = :id`
	if _, err := tx.NamedExecContext(ctx, query, flyer); err != nil {
		return fmt.Errorf("update flyer meta: %w", err)
	}
	return nil
}

// StatusChange bundles the mutable columns of a lifecycle transition.
type StatusChange struct {
	FlyerID         string
	Status          models.FlyerStatus
	RejectionReason *string
	PublishedAt     *time.Time
	ValidTo         *time.Time
}

// SetStatus applies one lifecycle transition.
func (r *FlyerRepository) SetStatus(ctx context.Context, change StatusChange) error {
	return r.mutate(ctx, change.FlyerID, func(tx *sqlx.Tx) error {
		query := `UPDATE flyers SET status = :status, rejection_reason = :rejection_reason, updated_at = :updated_at`
		args := map[string]interface{}{
			"id":               change.FlyerID,
			"status":           change.Status,
			"rejection_reason": change.RejectionReason,
			"updated_at":       time.Now().UTC(),
		}
		if change.PublishedAt != nil {
			query += `, published_at = :published_at`
			args["published_at"] = change.PublishedAt
		}
		if change.ValidTo != nil {
			query += `, valid_to = :valid_to`
			args["valid_to"] = change.ValidTo
		}
		query += ` WHERE id = :id`
		if _, err := tx.NamedExecContext(ctx, query, args); err != nil {
			return fmt.Errorf("set flyer status: %w", err)
		}
		return nil
	})
}

// SavePDF stores the generated artifact on the flyer row.
func (r *FlyerRepository) SavePDF(ctx context.Context, flyerID string, data []byte, mime string) error {
	if _, err := r.db.ExecContext(ctx,
		`UPDATE flyers SET pdf_data = $2, pdf_mime = $3, updated_at = $4 WHERE id = $1`,
		flyerID, data, mime, time.Now().UTC()); err != nil {
		return fmt.Errorf("save flyer pdf: %w", err)
	}
	return nil
}

// GetPDF fetches only the stored artifact.
func (r *FlyerRepository) GetPDF(ctx context.Context, flyerID string) ([]byte, string, error) {
	var row struct {
		Data []byte  `db:"pdf_data"`
		Mime *string `db:"pdf_mime"`
	}
	if err := r.db.GetContext(ctx, &row, `SELECT pdf_data, pdf_mime FROM flyers WHERE id = $1`, flyerID); err != nil {
		return nil, "", err
	}
	mime := "application/pdf"
	if row.Mime != nil {
		mime = *row.Mime
	}
	return row.Data, mime, nil
}

// BumpAutoSave increments the optimistic autosave counter and returns it.
func (r *FlyerRepository) BumpAutoSave(ctx context.Context, flyerID string) (int64, error) {
	var version int64
	if err := r.db.GetContext(ctx, &version,
		`UPDATE flyers SET auto_save_version = auto_save_version + 1, updated_at = $2
		 WHERE id = $1 RETURNING auto_save_version`,
		flyerID, time.Now().UTC()); err != nil {
		return 0, fmt.Errorf("bump autosave version: %w", err)
	}
	return version, nil
}

// ExpireActiveBefore transitions every active flyer whose validity ended
// before the boundary. Idempotent; returns the number of rows moved.
func (r *FlyerRepository) ExpireActiveBefore(ctx context.Context, boundary time.Time) (int64, error) {
	result, err := r.db.ExecContext(ctx,
		`UPDATE flyers SET status = $1, updated_at = $3 WHERE status = $2 AND valid_to < $4`,
		models.FlyerStatusExpired, models.FlyerStatusActive, time.Now().UTC(), boundary)
	if err != nil {
		return 0, fmt.Errorf("expire flyers: %w", err)
	}
	rows, err := result.RowsAffected()
	if err != nil {
		return 0, fmt.Errorf("check expired rows: %w", err)
	}
	return rows, nil
}

// Delete removes a flyer and its owned graph.
func (r *FlyerRepository) Delete(ctx context.Context, flyerID string) error {
	return r.mutate(ctx, flyerID, func(tx *sqlx.Tx) error {
		if _, err := tx.ExecContext(ctx,
			`DELETE FROM flyer_slots WHERE page_id IN (SELECT id FROM flyer_pages WHERE flyer_id = $1)`,
			flyerID); err != nil {
			return fmt.Errorf("delete slots: %w", err)
		}
		if _, err := tx.ExecContext(ctx, `DELETE FROM flyer_pages WHERE flyer_id = $1`, flyerID); err != nil {
			return fmt.Errorf("delete pages: %w", err)
		}
		if _, err := tx.ExecContext(ctx, `DELETE FROM flyers WHERE id = $1`, flyerID); err != nil {
			return fmt.Errorf("delete flyer: %w", err)
		}
		return nil
	})
}

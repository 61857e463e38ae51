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

// ApprovalRepository persists approval workflows and reviewer verdicts.
type ApprovalRepository struct {
	db *sqlx.DB
}

// NewApprovalRepository constructs the repository.
func NewApprovalRepository(db *sqlx.DB) *ApprovalRepository {
	return &ApprovalRepository{db: db}
}

// PurgeForFlyer removes any previous workflow and approval rows before a
// resubmission creates fresh ones.
func (r *ApprovalRepository) PurgeForFlyer(ctx context.Context, flyerID string) error {
	if _, err := r.db.ExecContext(ctx, `DELETE FROM approvals WHERE flyer_id = $1`, flyerID); err != nil {
		return fmt.Errorf("purge approvals: %w", err)
	}
	if _, err := r.db.ExecContext(ctx, `DELETE FROM approval_workflows WHERE flyer_id = $1`, flyerID); err != nil {
		return fmt.Errorf("purge approval workflows: %w", err)
	}
	return nil
}

// CreateWorkflow opens a new workflow with the next sequence number for the
// flyer.
func (r *ApprovalRepository) CreateWorkflow(ctx context.Context, flyerID string) (*models.ApprovalWorkflow, error) {
	var seq int
	if err := r.db.GetContext(ctx, &seq,
		`SELECT COALESCE(MAX(sequence_number), 0) + 1 FROM approval_workflows WHERE flyer_id = $1`,
		flyerID); err != nil {
		return nil, fmt.Errorf("next workflow sequence: %w", err)
	}
	workflow := &models.ApprovalWorkflow{
		ID:             uuid.NewString(),
		FlyerID:        flyerID,
		SequenceNumber: seq,
		CreatedAt:      time.Now().UTC(),
	}
	if _, err := r.db.NamedExecContext(ctx,
		`INSERT INTO approval_workflows (id, flyer_id, sequence_number, created_at)
		 VALUES (:id, :flyer_id, :sequence_number, :created_at)`, workflow); err != nil {
		return nil, fmt.Errorf("create approval workflow: %w", err)
	}
	return workflow, nil
}

// CreateApproval adds one pending reviewer row to a workflow.
func (r *ApprovalRepository) CreateApproval(ctx context.Context, approval *models.Approval) error {
	if approval.ID == "" {
		approval.ID = uuid.NewString()
	}
	if approval.Status == "" {
		approval.Status = models.ApprovalStatusPending
	}
	if approval.CreatedAt.IsZero() {
		approval.CreatedAt = time.Now().UTC()
	}
	if _, err := r.db.NamedExecContext(ctx,
		`INSERT INTO approvals (id, workflow_id, flyer_id, reviewer_id, reviewer_role, status, pre_approved, comment, decided_at, created_at)
		 VALUES (:id, :workflow_id, :flyer_id, :reviewer_id, :reviewer_role, :status, :pre_approved, :comment, :decided_at, :created_at)`,
		approval); err != nil {
		return fmt.Errorf("create approval: %w", err)
	}
	return nil
}

// ListByFlyer returns the approval rows of the flyer's current workflow.
func (r *ApprovalRepository) ListByFlyer(ctx context.Context, flyerID string) ([]models.Approval, error) {
	var approvals []models.Approval
	if err := r.db.SelectContext(ctx, &approvals,
		`SELECT id, workflow_id, flyer_id, reviewer_id, reviewer_role, status, pre_approved, comment, decided_at, created_at
		 FROM approvals WHERE flyer_id = $1 ORDER BY created_at`,
		flyerID); err != nil {
		return nil, fmt.Errorf("list approvals: %w", err)
	}
	return approvals, nil
}

// GetByFlyerAndReviewer fetches the reviewer's pending row for a flyer.
func (r *ApprovalRepository) GetByFlyerAndReviewer(ctx context.Context, flyerID, reviewerID string) (*models.Approval, error) {
	var approval models.Approval
	if err := r.db.GetContext(ctx, &approval,
		`SELECT id, workflow_id, flyer_id, reviewer_id, reviewer_role, status, pre_approved, comment, decided_at, created_at
		 FROM approvals WHERE flyer_id = $1 AND reviewer_id = $2`,
		flyerID, reviewerID); err != nil {
		return nil, err
	}
	return &approval, nil
}

// RecordDecision persists a reviewer verdict on a still-pending row.
func (r *ApprovalRepository) RecordDecision(ctx context.Context, approval *models.Approval) error {
	result, err := r.db.NamedExecContext(ctx,
		`UPDATE approvals SET status = :status, pre_approved = :pre_approved, comment = :comment, decided_at = :decided_at
		 WHERE id = :id AND status = 'PENDING'`,
		approval)
	if err != nil {
		return fmt.Errorf("record approval decision: %w", err)
	}
	rows, err := result.RowsAffected()
	if err != nil {
		return fmt.Errorf("check decision rows: %w", err)
	}
	if rows == 0 {
		return sql.ErrNoRows
	}
	return nil
}

// CountUndecidedApprovers returns how many full-approver rows are still pending.
func (r *ApprovalRepository) CountUndecidedApprovers(ctx context.Context, flyerID string) (int, error) {
	var count int
	if err := r.db.GetContext(ctx, &count,
		`SELECT COUNT(*) FROM approvals WHERE flyer_id = $1 AND reviewer_role = $2 AND status = $3`,
		flyerID, models.RoleApprover, models.ApprovalStatusPending); err != nil {
		return 0, fmt.Errorf("count pending approvers: %w", err)
	}
	return count, nil
}

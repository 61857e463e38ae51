package models

import "time"

// ApprovalStatus captures a reviewer's decision state.
type ApprovalStatus string

const (
	ApprovalStatusPending  ApprovalStatus = "PENDING"
	ApprovalStatusApproved ApprovalStatus = "APPROVED"
	ApprovalStatusRejected ApprovalStatus = "REJECTED"
)

// ApprovalWorkflow groups the approval rows created for one submission.
type ApprovalWorkflow struct {
	ID             string    `db:"id" json:"id"`
	FlyerID        string    `db:"flyer_id" json:"flyerId"`
	SequenceNumber int       `db:"sequence_number" json:"sequenceNumber"`
	CreatedAt      time.Time `db:"created_at" json:"createdAt"`
}

// Approval is one reviewer's pending or decided verdict on a submitted flyer.
// Pre-approvers record a first-pass verdict before full approvers decide.
type Approval struct {
	ID           string         `db:"id" json:"id"`
	WorkflowID   string         `db:"workflow_id" json:"workflowId"`
	FlyerID      string         `db:"flyer_id" json:"flyerId"`
	ReviewerID   string         `db:"reviewer_id" json:"reviewerId"`
	ReviewerRole UserRole       `db:"reviewer_role" json:"reviewerRole"`
	Status       ApprovalStatus `db:"status" json:"status"`
	PreApproved  *bool          `db:"pre_approved" json:"preApproved,omitempty"`
	Comment      *string        `db:"comment" json:"comment,omitempty"`
	DecidedAt    *time.Time     `db:"decided_at" json:"decidedAt,omitempty"`
	CreatedAt    time.Time      `db:"created_at" json:"createdAt"`
}

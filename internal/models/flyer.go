package models

import "time"

// FlyerStatus enumerates the lifecycle states of a flyer.
type FlyerStatus string

const (
	FlyerStatusDraft           FlyerStatus = "DRAFT"
	FlyerStatusPendingApproval FlyerStatus = "PENDING_APPROVAL"
	FlyerStatusApproved        FlyerStatus = "APPROVED"
	FlyerStatusRejected        FlyerStatus = "REJECTED"
	FlyerStatusActive          FlyerStatus = "ACTIVE"
	FlyerStatusExpired         FlyerStatus = "EXPIRED"
)

// Flyer is the root promotional document aggregate.
type Flyer struct {
	ID                   string      `db:"id" json:"id"`
	SupplierID           string      `db:"supplier_id" json:"supplierId"`
	Name                 string      `db:"name" json:"name"`
	ActionID             *int64      `db:"action_id" json:"actionId,omitempty"`
	ActionName           *string     `db:"action_name" json:"actionName,omitempty"`
	ValidFrom            *time.Time  `db:"valid_from" json:"validFrom,omitempty"`
	ValidTo              *time.Time  `db:"valid_to" json:"validTo,omitempty"`
	Status               FlyerStatus `db:"status" json:"status"`
	CompletionPercentage int         `db:"completion_percentage" json:"completionPercentage"`
	RejectionReason      *string     `db:"rejection_reason" json:"rejectionReason,omitempty"`
	AutoSaveVersion      int64       `db:"auto_save_version" json:"autoSaveVersion"`
	EndUserAuthored      bool        `db:"end_user_authored" json:"endUserAuthored"`
	PDFData              []byte      `db:"pdf_data" json:"-"`
	PDFMime              *string     `db:"pdf_mime" json:"-"`
	LastEditedAt         time.Time   `db:"last_edited_at" json:"lastEditedAt"`
	PublishedAt          *time.Time  `db:"published_at" json:"publishedAt,omitempty"`
	CreatedAt            time.Time   `db:"created_at" json:"createdAt"`
	UpdatedAt            time.Time   `db:"updated_at" json:"updatedAt"`

	Pages []Page `db:"-" json:"pages,omitempty"`
}

// IsEditable reports whether structural or metadata mutations are allowed.
// A rejected flyer behaves like a draft: the supplier fixes it and resubmits.
func (f *Flyer) IsEditable() bool {
	return f.Status == FlyerStatusDraft || f.Status == FlyerStatusRejected
}

// ProductIDs collects referenced product ids in page/slot order.
func (f *Flyer) ProductIDs() []string {
	var ids []string
	for _, page := range f.Pages {
		for _, slot := range page.Slots {
			if slot.SlotType == SlotTypeProduct && slot.ProductID != nil {
				ids = append(ids, *slot.ProductID)
			}
		}
	}
	return ids
}

// HasProduct reports whether the product already occupies any slot of the flyer.
func (f *Flyer) HasProduct(productID string) bool {
	for _, id := range f.ProductIDs() {
		if id == productID {
			return true
		}
	}
	return false
}

// Pagination contains pagination metadata returned in list responses.
type Pagination struct {
	Page       int `json:"page"`
	PageSize   int `json:"page_size"`
	TotalCount int `json:"total_count"`
}

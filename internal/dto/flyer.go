package dto

import (
	"time"

	"github.com/Vokurcak68/Flyer-app-sub000/internal/grid"
	"github.com/Vokurcak68/Flyer-app-sub000/internal/models"
)

// CreateFlyerRequest opens a new empty draft.
type CreateFlyerRequest struct {
	Name string `json:"name" binding:"required,min=1,max=200" validate:"required,min=1,max=200"`
}

// UpdateFlyerRequest changes flyer metadata. Dates are accepted as RFC3339.
type UpdateFlyerRequest struct {
	Name       *string    `json:"name,omitempty" binding:"omitempty,min=1,max=200" validate:"omitempty,min=1,max=200"`
	ActionID   *int64     `json:"actionId,omitempty"`
	ActionName *string    `json:"actionName,omitempty"`
	ValidFrom  *time.Time `json:"validFrom,omitempty"`
	ValidTo    *time.Time `json:"validTo,omitempty"`
}

// AddPageRequest appends a page with the given number.
type AddPageRequest struct {
	PageNumber int `json:"pageNumber" binding:"required,min=1"`
}

// AddProductRequest places a product into one slot.
type AddProductRequest struct {
	Position  int    `json:"position" binding:"min=0,max=7"`
	ProductID string `json:"productId" binding:"required,uuid"`
}

// UpdatePositionRequest swaps the slot's contents with the slot at the target
// position on the same page.
type UpdatePositionRequest struct {
	NewPosition int `json:"newPosition" binding:"min=0,max=7"`
}

// SlotInput is one editor-supplied slot entry in a bulk save.
type SlotInput struct {
	Position  int             `json:"position"`
	SlotType  models.SlotType `json:"slotType"`
	ProductID *string         `json:"productId,omitempty"`
	PromoID   *string         `json:"promoId,omitempty"`
	PromoSize *grid.PromoSize `json:"promoSize,omitempty"`
}

// PageInput is one editor-supplied page in a bulk save.
type PageInput struct {
	PageNumber    int         `json:"pageNumber" binding:"required,min=1"`
	FooterPromoID *string     `json:"footerPromoId,omitempty"`
	Slots         []SlotInput `json:"slots"`
}

// SyncPagesRequest replaces the entire page set of a flyer.
type SyncPagesRequest struct {
	Pages []PageInput `json:"pages" binding:"required,dive"`
}

// DecisionRequest records a reviewer verdict.
type DecisionRequest struct {
	Decision string `json:"decision" binding:"required,oneof=approve pre_approve reject" validate:"required,oneof=approve pre_approve reject"`
	Comment  string `json:"comment,omitempty"`
}

// SlotView is the dense read-side representation of one grid position.
// Unoccupied positions come back as {slotType: EMPTY}.
type SlotView struct {
	ID        string          `json:"id,omitempty"`
	Position  int             `json:"position"`
	SlotType  models.SlotType `json:"slotType"`
	Product   *ProductView    `json:"product,omitempty"`
	Promo     *PromoView      `json:"promo,omitempty"`
	PromoSize *grid.PromoSize `json:"promoSize,omitempty"`
}

// ProductView enriches a placed product with presentation fields.
type ProductView struct {
	ID            string   `json:"id"`
	Name          string   `json:"name"`
	EAN           string   `json:"ean"`
	Price         float64  `json:"price"`
	OriginalPrice *float64 `json:"originalPrice,omitempty"`
	BrandName     string   `json:"brandName,omitempty"`
	BrandColor    string   `json:"brandColor,omitempty"`
	IconURLs      []string `json:"iconUrls,omitempty"`
}

// PromoView enriches a placed promo image.
type PromoView struct {
	ID       string         `json:"id"`
	Name     string         `json:"name"`
	Size     grid.PromoSize `json:"size"`
	FillDate bool           `json:"fillDate"`
}

// PageView is one page with its dense 8-element slot array.
type PageView struct {
	ID          string     `json:"id"`
	PageNumber  int        `json:"pageNumber"`
	FooterPromo *PromoView `json:"footerPromo,omitempty"`
	Slots       []SlotView `json:"slots"`
}

// FlyerView is the full detail representation returned to editors.
type FlyerView struct {
	ID                   string             `json:"id"`
	SupplierID           string             `json:"supplierId"`
	Name                 string             `json:"name"`
	ActionID             *int64             `json:"actionId,omitempty"`
	ActionName           *string            `json:"actionName,omitempty"`
	ValidFrom            *time.Time         `json:"validFrom,omitempty"`
	ValidTo              *time.Time         `json:"validTo,omitempty"`
	Status               models.FlyerStatus `json:"status"`
	CompletionPercentage int                `json:"completionPercentage"`
	RejectionReason      *string            `json:"rejectionReason,omitempty"`
	AutoSaveVersion      int64              `json:"autoSaveVersion"`
	LastEditedAt         time.Time          `json:"lastEditedAt"`
	PublishedAt          *time.Time         `json:"publishedAt,omitempty"`
	HasPDF               bool               `json:"hasPdf"`
	Pages                []PageView         `json:"pages"`
}

// FlyerSummary is the lightweight listing row (no pages, no binaries).
type FlyerSummary struct {
	ID                   string             `json:"id"`
	SupplierID           string             `json:"supplierId"`
	Name                 string             `json:"name"`
	ActionName           *string            `json:"actionName,omitempty"`
	ValidFrom            *time.Time         `json:"validFrom,omitempty"`
	ValidTo              *time.Time         `json:"validTo,omitempty"`
	Status               models.FlyerStatus `json:"status"`
	CompletionPercentage int                `json:"completionPercentage"`
	LastEditedAt         time.Time          `json:"lastEditedAt"`
}

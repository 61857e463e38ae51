package models

import (
	"time"

	"github.com/Vokurcak68/Flyer-app-sub000/internal/grid"
)

// PromoImage is a marketing graphic placeable into 1..8 grid cells or the
// page-1 footer band, per its fixed size class.
type PromoImage struct {
	ID         string         `db:"id" json:"id"`
	SupplierID *string        `db:"supplier_id" json:"supplierId,omitempty"`
	BrandID    *string        `db:"brand_id" json:"brandId,omitempty"`
	Name       string         `db:"name" json:"name"`
	Size       grid.PromoSize `db:"size" json:"size"`
	FillDate   bool           `db:"fill_date" json:"fillDate"`
	Image      []byte         `db:"image" json:"-"`
	ImageMime  *string        `db:"image_mime" json:"-"`
	CreatedAt  time.Time      `db:"created_at" json:"createdAt"`
}

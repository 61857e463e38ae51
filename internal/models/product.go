package models

import "time"

// Brand groups products and promos for display and sharing rights.
type Brand struct {
	ID    string `db:"id" json:"id"`
	Name  string `db:"name" json:"name"`
	Color string `db:"color" json:"color"`
}

// Product is a supplier-owned retail item placeable into flyer slots.
type Product struct {
	ID            string    `db:"id" json:"id"`
	SupplierID    string    `db:"supplier_id" json:"supplierId"`
	BrandID       *string   `db:"brand_id" json:"brandId,omitempty"`
	Name          string    `db:"name" json:"name"`
	EAN           string    `db:"ean" json:"ean"`
	Price         float64   `db:"price" json:"price"`
	OriginalPrice *float64  `db:"original_price" json:"originalPrice,omitempty"`
	Image         []byte    `db:"image" json:"-"`
	ImageMime     *string   `db:"image_mime" json:"-"`
	CreatedAt     time.Time `db:"created_at" json:"createdAt"`

	BrandName  *string       `db:"brand_name" json:"brandName,omitempty"`
	BrandColor *string       `db:"brand_color" json:"brandColor,omitempty"`
	Icons      []ProductIcon `db:"-" json:"icons,omitempty"`
}

// HasEnergyClassIcon reports whether at least one icon carries the mandatory
// energy-efficiency label flag.
func (p *Product) HasEnergyClassIcon() bool {
	for _, icon := range p.Icons {
		if icon.IsEnergyClass {
			return true
		}
	}
	return false
}

// ProductIcon is a small badge attached to a product (energy label, award, ...).
type ProductIcon struct {
	ID            string  `db:"id" json:"id"`
	ProductID     string  `db:"product_id" json:"productId"`
	Name          string  `db:"name" json:"name"`
	IsEnergyClass bool    `db:"is_energy_class" json:"isEnergyClass"`
	ImageURL      *string `db:"image_url" json:"imageUrl,omitempty"`
}

// ProductValidationError is one ERP-reported inconsistency for a product.
type ProductValidationError struct {
	ProductID   string   `json:"productId"`
	ProductName string   `json:"productName"`
	EANCode     string   `json:"eanCode"`
	Errors      []string `json:"errors"`
}

// Action is an external marketing-campaign reference from the ERP.
type Action struct {
	ID        int64      `json:"id"`
	Name      string     `json:"name"`
	ValidFrom *time.Time `json:"validFrom,omitempty"`
	ValidTo   *time.Time `json:"validTo,omitempty"`
}

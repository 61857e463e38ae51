package models

import "github.com/Vokurcak68/Flyer-app-sub000/internal/grid"

// SlotType describes what occupies a grid slot.
type SlotType string

const (
	SlotTypeEmpty   SlotType = "EMPTY"
	SlotTypeProduct SlotType = "PRODUCT"
	SlotTypePromo   SlotType = "PROMO"
)

// Page is one fixed 8-slot sheet of a flyer. Only page 1 may carry a footer
// promo.
type Page struct {
	ID            string  `db:"id" json:"id"`
	FlyerID       string  `db:"flyer_id" json:"flyerId"`
	PageNumber    int     `db:"page_number" json:"pageNumber"`
	FooterPromoID *string `db:"footer_promo_id" json:"footerPromoId,omitempty"`

	Slots []Slot `db:"-" json:"slots"`
}

// Slot is one grid cell. A slot row exists for every position 0..7 even when
// logically empty.
type Slot struct {
	ID        string          `db:"id" json:"id"`
	PageID    string          `db:"page_id" json:"pageId"`
	Position  int             `db:"position" json:"position"`
	SlotType  SlotType        `db:"slot_type" json:"slotType"`
	ProductID *string         `db:"product_id" json:"productId,omitempty"`
	PromoID   *string         `db:"promo_id" json:"promoId,omitempty"`
	PromoSize *grid.PromoSize `db:"promo_size" json:"promoSize,omitempty"`
}

// Clear resets the slot to empty, dropping both product and promo references.
func (s *Slot) Clear() {
	s.SlotType = SlotTypeEmpty
	s.ProductID = nil
	s.PromoID = nil
	s.PromoSize = nil
}

// EmptySlots builds the 8 empty slot rows for a freshly created page.
func EmptySlots(pageID string, newID func() string) []Slot {
	slots := make([]Slot, grid.SlotsPerPage)
	for pos := 0; pos < grid.SlotsPerPage; pos++ {
		slots[pos] = Slot{
			ID:       newID(),
			PageID:   pageID,
			Position: pos,
			SlotType: SlotTypeEmpty,
		}
	}
	return slots
}

// SlotAt returns the slot row at the given position, or nil.
func (p *Page) SlotAt(position int) *Slot {
	for i := range p.Slots {
		if p.Slots[i].Position == position {
			return &p.Slots[i]
		}
	}
	return nil
}

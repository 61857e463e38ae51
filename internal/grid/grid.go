// Package grid models the fixed 2x4 slot layout shared by the flyer editor
// and the PDF renderer. Positions run row-major, top-left = 0.
package grid

// Grid geometry constants.
const (
	Columns      = 2
	Rows         = 4
	SlotsPerPage = Columns * Rows
)

// PromoSize classifies how many grid cells a promo image occupies.
type PromoSize string

const (
	PromoSingle     PromoSize = "single"
	PromoHorizontal PromoSize = "horizontal"
	PromoSquare     PromoSize = "square"
	PromoFullPage   PromoSize = "full_page"
	PromoHeader2x1  PromoSize = "header_2x1"
	PromoHeader2x2  PromoSize = "header_2x2"
	PromoFooter     PromoSize = "footer"
)

// Valid reports whether the size is one of the known classes.
func (s PromoSize) Valid() bool {
	switch s {
	case PromoSingle, PromoHorizontal, PromoSquare, PromoFullPage,
		PromoHeader2x1, PromoHeader2x2, PromoFooter:
		return true
	}
	return false
}

// IsHeader reports whether the size belongs to the page-1 header band.
func (s PromoSize) IsHeader() bool {
	return s == PromoHeader2x1 || s == PromoHeader2x2
}

// IsFooter reports whether the promo targets the page-1 footer band instead
// of a grid slot.
func (s PromoSize) IsFooter() bool {
	return s == PromoFooter
}

// ValidPosition reports whether pos addresses one of the 8 grid cells.
func ValidPosition(pos int) bool {
	return pos >= 0 && pos < SlotsPerPage
}

// HeaderPlacementAllowed reports whether a header-sized promo may anchor at
// the given position on the given page. Header promos exist only at anchors
// 0 and 1 of page 1.
func HeaderPlacementAllowed(pageNumber, anchor int) bool {
	return pageNumber == 1 && (anchor == 0 || anchor == 1)
}

// SpannedPositions returns every grid position the promo visually occupies
// from its anchor. Footer promos occupy no grid position at all.
func SpannedPositions(anchor int, size PromoSize) []int {
	switch size {
	case PromoHorizontal, PromoHeader2x1:
		return []int{anchor, anchor + 1}
	case PromoSquare, PromoHeader2x2:
		return []int{anchor, anchor + 1, anchor + 2, anchor + 3}
	case PromoFullPage:
		all := make([]int, SlotsPerPage)
		for i := range all {
			all[i] = i
		}
		return all
	case PromoFooter:
		return nil
	default:
		return []int{anchor}
	}
}

// RenderDimensions computes the visual width and height of a promo given the
// base cell dimensions. Horizontal and larger sizes double the width; square
// covers two rows and full_page all four.
func RenderDimensions(size PromoSize, baseSlotWidth, baseSlotHeight float64) (float64, float64) {
	switch size {
	case PromoHorizontal, PromoHeader2x1:
		return baseSlotWidth * Columns, baseSlotHeight
	case PromoSquare, PromoHeader2x2:
		return baseSlotWidth * Columns, baseSlotHeight * 2
	case PromoFullPage:
		return baseSlotWidth * Columns, baseSlotHeight * Rows
	default:
		return baseSlotWidth, baseSlotHeight
	}
}

// ClaimedSet tracks grid positions already covered by a multi-slot promo so
// iteration over 0..7 can skip them.
type ClaimedSet map[int]struct{}

// NewClaimedSet returns an empty set.
func NewClaimedSet() ClaimedSet {
	return make(ClaimedSet)
}

// Claim marks every spanned position of a promo anchored at anchor.
func (c ClaimedSet) Claim(anchor int, size PromoSize) {
	for _, pos := range SpannedPositions(anchor, size) {
		c[pos] = struct{}{}
	}
}

// Has reports whether the position is already covered.
func (c ClaimedSet) Has(pos int) bool {
	_, ok := c[pos]
	return ok
}

package grid

import (
	"testing"

	"github.com/stretchr/testify/require"
)

func TestSpannedPositions(t *testing.T) {
	require.Equal(t, []int{3}, SpannedPositions(3, PromoSingle))
	require.Equal(t, []int{0, 1}, SpannedPositions(0, PromoHorizontal))
	require.Equal(t, []int{2, 3, 4, 5}, SpannedPositions(2, PromoSquare))
	require.Equal(t, []int{0, 1, 2, 3, 4, 5, 6, 7}, SpannedPositions(0, PromoFullPage))
	// full_page ignores the anchor entirely
	require.Equal(t, []int{0, 1, 2, 3, 4, 5, 6, 7}, SpannedPositions(5, PromoFullPage))
	require.Equal(t, []int{0, 1}, SpannedPositions(0, PromoHeader2x1))
	require.Equal(t, []int{1, 2, 3, 4}, SpannedPositions(1, PromoHeader2x2))
	require.Nil(t, SpannedPositions(0, PromoFooter))
}

func TestRenderDimensions(t *testing.T) {
	w, h := RenderDimensions(PromoSingle, 100, 50)
	require.Equal(t, 100.0, w)
	require.Equal(t, 50.0, h)

	w, h = RenderDimensions(PromoHorizontal, 100, 50)
	require.Equal(t, 200.0, w)
	require.Equal(t, 50.0, h)

	w, h = RenderDimensions(PromoSquare, 100, 50)
	require.Equal(t, 200.0, w)
	require.Equal(t, 100.0, h)

	w, h = RenderDimensions(PromoFullPage, 100, 50)
	require.Equal(t, 200.0, w)
	require.Equal(t, 200.0, h)
}

func TestHeaderPlacementAllowed(t *testing.T) {
	require.True(t, HeaderPlacementAllowed(1, 0))
	require.True(t, HeaderPlacementAllowed(1, 1))
	require.False(t, HeaderPlacementAllowed(1, 2))
	require.False(t, HeaderPlacementAllowed(2, 0))
}

func TestClaimedSetSkipsCoveredPositions(t *testing.T) {
	claimed := NewClaimedSet()
	claimed.Claim(0, PromoSquare)

	var skipped []int
	for pos := 0; pos < SlotsPerPage; pos++ {
		if claimed.Has(pos) {
			skipped = append(skipped, pos)
		}
	}
	require.Equal(t, []int{0, 1, 2, 3}, skipped)
}

func TestPromoSizeValid(t *testing.T) {
	require.True(t, PromoFooter.Valid())
	require.True(t, PromoHeader2x2.Valid())
	require.False(t, PromoSize("banner").Valid())
	require.True(t, PromoFooter.IsFooter())
	require.True(t, PromoHeader2x1.IsHeader())
	require.False(t, PromoSquare.IsHeader())
}

func TestValidPosition(t *testing.T) {
	require.True(t, ValidPosition(0))
	require.True(t, ValidPosition(7))
	require.False(t, ValidPosition(-1))
	require.False(t, ValidPosition(8))
}

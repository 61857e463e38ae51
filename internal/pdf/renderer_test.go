package pdf

import (
	"bytes"
	"image"
	"image/color"
	"image/png"
	"testing"
	"time"

	"github.com/stretchr/testify/require"
)

func pngBytes(t *testing.T) []byte {
	t.Helper()
	img := image.NewRGBA(image.Rect(0, 0, 4, 4))
	for x := 0; x < 4; x++ {
		for y := 0; y < 4; y++ {
			img.Set(x, y, color.RGBA{R: 200, G: 30, B: 30, A: 255})
		}
	}
	buf := &bytes.Buffer{}
	require.NoError(t, png.Encode(buf, img))
	return buf.Bytes()
}

func floatPtr(f float64) *float64 { return &f }

func TestRenderEmptyDocument(t *testing.T) {
	r := NewRenderer("", nil)

	data, err := r.Render(&Document{Name: "Empty"})
	require.NoError(t, err)
	require.True(t, bytes.HasPrefix(data, []byte("%PDF")), "output must be a pdf document")
}

func TestRenderProductPages(t *testing.T) {
	r := NewRenderer("", nil)
	validTo := time.Date(2024, 6, 30, 0, 0, 0, 0, time.UTC)

	doc := &Document{
		Name:    "Summer Sale",
		ValidTo: &validTo,
		Pages: []Page{
			{
				PageNumber:  1,
				FooterPromo: &Promo{Name: "Footer", FillDate: true, Image: pngBytes(t)},
				Slots: []Slot{
					{Position: 0, Product: &Product{Name: "Washing Machine XL 9000 with a very long marketing name", Price: 8999.90, OriginalPrice: floatPtr(10999.00), Image: pngBytes(t)}},
					{Position: 3, Product: &Product{Name: "Fridge", Price: 12490.00}},
				},
			},
			{
				PageNumber: 2,
				Slots: []Slot{
					{Position: 1, Product: &Product{Name: "Kettle", Price: 499.00}},
				},
			},
		},
	}

	data, err := r.Render(doc)
	require.NoError(t, err)
	require.True(t, bytes.HasPrefix(data, []byte("%PDF")))
	require.Greater(t, len(data), 1000)
}

func TestRenderSkipsBrokenImage(t *testing.T) {
	r := NewRenderer("", nil)

	doc := &Document{
		Name: "Broken",
		Pages: []Page{{
			PageNumber: 1,
			Slots: []Slot{
				{Position: 0, Product: &Product{Name: "Washing Machine", Price: 100, Image: []byte("not an image")}},
				{Position: 1, Product: &Product{Name: "Fridge", Price: 200, Image: pngBytes(t)}},
			},
		}},
	}

	data, err := r.Render(doc)
	require.NoError(t, err, "a broken image must not poison the document")
	require.True(t, bytes.HasPrefix(data, []byte("%PDF")))
}

func TestRenderPromoSpansClaimPositions(t *testing.T) {
	r := NewRenderer("", nil)

	doc := &Document{
		Name: "Promo",
		Pages: []Page{{
			PageNumber: 1,
			Slots: []Slot{
				{Position: 0, Promo: &Promo{Name: "Square", Size: "square", Image: pngBytes(t)}},
				{Position: 3, Product: &Product{Name: "Overlapped", Price: 1}},
			},
		}},
	}

	data, err := r.Render(doc)
	require.NoError(t, err)
	require.True(t, bytes.HasPrefix(data, []byte("%PDF")))
}

func TestNewRendererFontFallback(t *testing.T) {
	r := NewRenderer(t.TempDir(), nil)
	require.Equal(t, "Helvetica", r.fontFamily)
	require.Empty(t, r.fontPath)
}

func TestFormatPrice(t *testing.T) {
	require.Equal(t, "199.90 Kč", formatPrice(199.9))
	require.Equal(t, "12490.00 Kč", formatPrice(12490))
}

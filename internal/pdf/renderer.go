// Package pdf renders a fully resolved flyer onto fixed A4 pages. It consumes
// in-memory data only; loading products, promos, and images is the caller's
// concern.
package pdf

import (
	"bytes"
	"fmt"
	"image"
	_ "image/jpeg"
	_ "image/png"
	"os"
	"path/filepath"
	"strings"
	"time"

	"github.com/jung-kurt/gofpdf"
	"go.uber.org/zap"

	"github.com/Vokurcak68/Flyer-app-sub000/internal/grid"
)

// A4 portrait geometry in points. Page 1 reserves a footer band at the
// bottom, shrinking its slot rows.
const (
	PageWidth    = 595.0
	PageHeight   = 842.0
	FooterHeight = 57.0

	slotPadding    = 6.0
	textBlockLines = 3
	lineHeight     = 14.0
)

// Document is the resolved render input for one flyer.
type Document struct {
	Name      string
	ValidFrom *time.Time
	ValidTo   *time.Time
	Pages     []Page
}

// Page carries one page's resolved slots in position order.
type Page struct {
	PageNumber  int
	FooterPromo *Promo
	Slots       []Slot
}

// Slot is one resolved grid cell. Empty cells have neither field set.
type Slot struct {
	Position int
	Product  *Product
	Promo    *Promo
}

// Product carries the fields rendered into a product cell.
type Product struct {
	Name          string
	Price         float64
	OriginalPrice *float64
	Image         []byte
}

// Promo carries a promo graphic and its size class.
type Promo struct {
	Name     string
	Size     grid.PromoSize
	FillDate bool
	Image    []byte
}

// Renderer produces the PDF artifact.
type Renderer struct {
	fontFamily string
	fontPath   string
	logger     *zap.Logger
}

// NewRenderer constructs a renderer. When fontDir holds a flyer.ttf the
// document uses it; otherwise the built-in Helvetica is used.
func NewRenderer(fontDir string, logger *zap.Logger) *Renderer {
	if logger == nil {
		logger = zap.NewNop()
	}
	r := &Renderer{fontFamily: "Helvetica", logger: logger}
	if fontDir != "" {
		path := filepath.Join(fontDir, "flyer.ttf")
		if _, err := os.Stat(path); err == nil {
			r.fontFamily = "flyer"
			r.fontPath = path
		} else {
			logger.Warn("flyer font not found, falling back to Helvetica", zap.String("path", path))
		}
	}
	return r
}

// Render lays the document out onto A4 pages and returns the PDF bytes.
// Undecodable images are logged and skipped; only document-level failures
// return an error.
func (r *Renderer) Render(doc *Document) ([]byte, error) {
	pdf := gofpdf.New("P", "pt", "A4", "")
	pdf.SetMargins(0, 0, 0)
	pdf.SetAutoPageBreak(false, 0)
	if r.fontPath != "" {
		pdf.AddUTF8Font(r.fontFamily, "", r.fontPath)
		pdf.AddUTF8Font(r.fontFamily, "B", r.fontPath)
	}

	imageSeq := 0
	for i := range doc.Pages {
		r.renderPage(pdf, doc, &doc.Pages[i], &imageSeq)
	}
	if len(doc.Pages) == 0 {
		pdf.AddPage()
	}

	buf := &bytes.Buffer{}
	if err := pdf.Output(buf); err != nil {
		return nil, fmt.Errorf("render flyer pdf: %w", err)
	}
	return buf.Bytes(), nil
}

func (r *Renderer) renderPage(pdf *gofpdf.Fpdf, doc *Document, page *Page, imageSeq *int) {
	pdf.AddPage()

	slotWidth := PageWidth / grid.Columns
	gridHeight := PageHeight
	if page.PageNumber == 1 {
		gridHeight -= FooterHeight
	}
	slotHeight := gridHeight / grid.Rows

	claimed := grid.NewClaimedSet()
	byPosition := make(map[int]*Slot, len(page.Slots))
	for i := range page.Slots {
		byPosition[page.Slots[i].Position] = &page.Slots[i]
	}

	for pos := 0; pos < grid.SlotsPerPage; pos++ {
		if claimed.Has(pos) {
			continue
		}
		slot := byPosition[pos]
		if slot == nil {
			continue
		}
		x := float64(pos%grid.Columns) * slotWidth
		y := float64(pos/grid.Columns) * slotHeight

		switch {
		case slot.Product != nil:
			r.renderProduct(pdf, slot.Product, x, y, slotWidth, slotHeight, imageSeq)
		case slot.Promo != nil:
			w, h := grid.RenderDimensions(slot.Promo.Size, slotWidth, slotHeight)
			r.renderImage(pdf, slot.Promo.Image, x, y, w, h, imageSeq)
			claimed.Claim(pos, slot.Promo.Size)
		}
	}

	if page.PageNumber == 1 && page.FooterPromo != nil {
		r.renderFooter(pdf, doc, page.FooterPromo, imageSeq)
	}
}

func (r *Renderer) renderProduct(pdf *gofpdf.Fpdf, product *Product, x, y, w, h float64, imageSeq *int) {
	textHeight := textBlockLines * lineHeight
	imageHeight := h - textHeight - 2*slotPadding
	if len(product.Image) > 0 && imageHeight > 0 {
		r.renderImage(pdf, product.Image, x+slotPadding, y+slotPadding, w-2*slotPadding, imageHeight, imageSeq)
	}

	textTop := y + h - textHeight
	pdf.SetFont(r.fontFamily, "B", 11)
	pdf.SetTextColor(0, 0, 0)
	lines := pdf.SplitText(product.Name, w-2*slotPadding)
	if len(lines) > 2 {
		lines = lines[:2]
		lines[1] += "…"
	}
	for i, line := range lines {
		pdf.SetXY(x+slotPadding, textTop+float64(i)*lineHeight)
		pdf.CellFormat(w-2*slotPadding, lineHeight, line, "", 0, "L", false, 0, "")
	}

	priceTop := textTop + 2*lineHeight
	if product.OriginalPrice != nil {
		pdf.SetFont(r.fontFamily, "", 8)
		pdf.SetTextColor(120, 120, 120)
		original := formatPrice(*product.OriginalPrice)
		pdf.SetXY(x+slotPadding, priceTop)
		pdf.CellFormat(w/2-slotPadding, lineHeight, original, "", 0, "L", false, 0, "")
		strikeWidth := pdf.GetStringWidth(original)
		pdf.SetDrawColor(120, 120, 120)
		pdf.Line(x+slotPadding, priceTop+lineHeight/2, x+slotPadding+strikeWidth, priceTop+lineHeight/2)
	}
	pdf.SetFont(r.fontFamily, "B", 14)
	pdf.SetTextColor(200, 30, 30)
	pdf.SetXY(x+slotPadding, priceTop)
	pdf.CellFormat(w-2*slotPadding, lineHeight, formatPrice(product.Price), "", 0, "R", false, 0, "")
}

func (r *Renderer) renderFooter(pdf *gofpdf.Fpdf, doc *Document, promo *Promo, imageSeq *int) {
	y := PageHeight - FooterHeight
	r.renderImage(pdf, promo.Image, 0, y, PageWidth, FooterHeight, imageSeq)

	if promo.FillDate && doc.ValidTo != nil {
		pdf.SetFont(r.fontFamily, "B", 16)
		pdf.SetTextColor(255, 255, 255)
		date := doc.ValidTo.Format("02.01.2006")
		width := pdf.GetStringWidth(date)
		pdf.SetXY(PageWidth-width-20, y+(FooterHeight-lineHeight)/2)
		pdf.CellFormat(width, lineHeight, date, "", 0, "R", false, 0, "")
	}
}

// renderImage embeds one raster image scaled to exactly fill the target box.
// A broken image is logged and skipped so the rest of the page still renders.
func (r *Renderer) renderImage(pdf *gofpdf.Fpdf, data []byte, x, y, w, h float64, imageSeq *int) {
	if len(data) == 0 {
		return
	}
	_, format, err := image.DecodeConfig(bytes.NewReader(data))
	if err != nil {
		r.logger.Warn("skipping undecodable image", zap.Error(err))
		return
	}
	imageType := strings.ToUpper(format)
	if imageType == "JPEG" {
		imageType = "JPG"
	}

	*imageSeq++
	name := fmt.Sprintf("img-%d", *imageSeq)
	pdf.RegisterImageOptionsReader(name, gofpdf.ImageOptions{ImageType: imageType}, bytes.NewReader(data))
	if pdf.Err() {
		r.logger.Warn("skipping unembeddable image", zap.String("image", name), zap.String("error", pdf.Error().Error()))
		pdf.ClearError()
		return
	}
	pdf.ImageOptions(name, x, y, w, h, false, gofpdf.ImageOptions{ImageType: imageType}, 0, "")
}

func formatPrice(price float64) string {
	return fmt.Sprintf("%.2f Kč", price)
}

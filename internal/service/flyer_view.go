package service

import (
	"context"
	"sort"

	"github.com/Vokurcak68/Flyer-app-sub000/internal/dto"
	"github.com/Vokurcak68/Flyer-app-sub000/internal/grid"
	"github.com/Vokurcak68/Flyer-app-sub000/internal/models"
	appErrors "github.com/Vokurcak68/Flyer-app-sub000/pkg/errors"
)

// buildView produces the dense detail representation: every page carries
// exactly 8 slot entries ordered by position, with unoccupied positions
// rendered as EMPTY, enriched with product and promo presentation data.
func (s *FlyerService) buildView(ctx context.Context, flyer *models.Flyer) (*dto.FlyerView, error) {
	productIDs := flyer.ProductIDs()
	promoIDs := collectPromoIDs(flyer)

	products, err := s.catalog.ProductsByIDs(ctx, productIDs)
	if err != nil {
		return nil, appErrors.Wrap(err, appErrors.ErrInternal.Code, appErrors.ErrInternal.Status, "failed to load flyer products")
	}
	promos, err := s.catalog.PromosByIDs(ctx, promoIDs)
	if err != nil {
		return nil, appErrors.Wrap(err, appErrors.ErrInternal.Code, appErrors.ErrInternal.Status, "failed to load flyer promos")
	}

	view := &dto.FlyerView{
		ID:                   flyer.ID,
		SupplierID:           flyer.SupplierID,
		Name:                 flyer.Name,
		ActionID:             flyer.ActionID,
		ActionName:           flyer.ActionName,
		ValidFrom:            flyer.ValidFrom,
		ValidTo:              flyer.ValidTo,
		Status:               flyer.Status,
		CompletionPercentage: flyer.CompletionPercentage,
		RejectionReason:      flyer.RejectionReason,
		AutoSaveVersion:      flyer.AutoSaveVersion,
		LastEditedAt:         flyer.LastEditedAt,
		PublishedAt:          flyer.PublishedAt,
		HasPDF:               flyer.PDFMime != nil,
		Pages:                make([]dto.PageView, 0, len(flyer.Pages)),
	}

	pages := make([]models.Page, len(flyer.Pages))
	copy(pages, flyer.Pages)
	sort.Slice(pages, func(i, j int) bool { return pages[i].PageNumber < pages[j].PageNumber })

	for i := range pages {
		view.Pages = append(view.Pages, buildPageView(&pages[i], products, promos))
	}
	return view, nil
}

func buildPageView(page *models.Page, products map[string]models.Product, promos map[string]models.PromoImage) dto.PageView {
	pv := dto.PageView{
		ID:         page.ID,
		PageNumber: page.PageNumber,
		Slots:      make([]dto.SlotView, grid.SlotsPerPage),
	}
	if page.FooterPromoID != nil {
		if promo, ok := promos[*page.FooterPromoID]; ok {
			pv.FooterPromo = promoView(&promo)
		}
	}
	for pos := 0; pos < grid.SlotsPerPage; pos++ {
		pv.Slots[pos] = dto.SlotView{Position: pos, SlotType: models.SlotTypeEmpty}
	}
	for i := range page.Slots {
		slot := &page.Slots[i]
		if !grid.ValidPosition(slot.Position) {
			continue
		}
		sv := dto.SlotView{
			ID:       slot.ID,
			Position: slot.Position,
			SlotType: slot.SlotType,
		}
		switch slot.SlotType {
		case models.SlotTypeProduct:
			if slot.ProductID != nil {
				if product, ok := products[*slot.ProductID]; ok {
					sv.Product = productView(&product)
				}
			}
		case models.SlotTypePromo:
			sv.PromoSize = slot.PromoSize
			if slot.PromoID != nil {
				if promo, ok := promos[*slot.PromoID]; ok {
					sv.Promo = promoView(&promo)
				}
			}
		}
		pv.Slots[slot.Position] = sv
	}
	return pv
}

func productView(product *models.Product) *dto.ProductView {
	pv := &dto.ProductView{
		ID:            product.ID,
		Name:          product.Name,
		EAN:           product.EAN,
		Price:         product.Price,
		OriginalPrice: product.OriginalPrice,
	}
	if product.BrandName != nil {
		pv.BrandName = *product.BrandName
	}
	if product.BrandColor != nil {
		pv.BrandColor = *product.BrandColor
	}
	for _, icon := range product.Icons {
		if icon.ImageURL != nil {
			pv.IconURLs = append(pv.IconURLs, *icon.ImageURL)
		}
	}
	return pv
}

func promoView(promo *models.PromoImage) *dto.PromoView {
	return &dto.PromoView{
		ID:       promo.ID,
		Name:     promo.Name,
		Size:     promo.Size,
		FillDate: promo.FillDate,
	}
}

func collectPromoIDs(flyer *models.Flyer) []string {
	seen := make(map[string]struct{})
	var ids []string
	add := func(id *string) {
		if id == nil {
			return
		}
		if _, ok := seen[*id]; ok {
			return
		}
		seen[*id] = struct{}{}
		ids = append(ids, *id)
	}
	for i := range flyer.Pages {
		add(flyer.Pages[i].FooterPromoID)
		for j := range flyer.Pages[i].Slots {
			if flyer.Pages[i].Slots[j].SlotType == models.SlotTypePromo {
				add(flyer.Pages[i].Slots[j].PromoID)
			}
		}
	}
	return ids
}

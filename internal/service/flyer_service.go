package service

import (
	"context"
	"database/sql"
	"encoding/json"
	"errors"
	"fmt"
	"math"
	"time"

	"github.com/go-playground/validator/v10"
	"github.com/google/uuid"
	"go.uber.org/zap"

	"github.com/Vokurcak68/Flyer-app-sub000/internal/dto"
	"github.com/Vokurcak68/Flyer-app-sub000/internal/grid"
	"github.com/Vokurcak68/Flyer-app-sub000/internal/models"
	"github.com/Vokurcak68/Flyer-app-sub000/internal/repository"
	appErrors "github.com/Vokurcak68/Flyer-app-sub000/pkg/errors"
)

const activeFlyersCacheKey = "flyers:active"

type flyerStore interface {
	Create(ctx context.Context, flyer *models.Flyer) error
	GetByID(ctx context.Context, id string) (*models.Flyer, error)
	ListBySupplier(ctx context.Context, supplierID string) ([]models.Flyer, error)
	ListActive(ctx context.Context) ([]models.Flyer, error)
	ActiveValidToSharingProducts(ctx context.Context, excludeFlyerID string, productIDs []string) ([]time.Time, error)
	ProductInActiveFlyer(ctx context.Context, productID string) (bool, error)
	Mutate(ctx context.Context, flyerID string, fn func(flyer *models.Flyer) (*repository.FlyerMutation, error)) error
	SetStatus(ctx context.Context, change repository.StatusChange) error
	SavePDF(ctx context.Context, flyerID string, data []byte, mime string) error
	GetPDF(ctx context.Context, flyerID string) ([]byte, string, error)
	BumpAutoSave(ctx context.Context, flyerID string) (int64, error)
	ExpireActiveBefore(ctx context.Context, boundary time.Time) (int64, error)
	Delete(ctx context.Context, flyerID string) error
}

type catalogStore interface {
	ProductByID(ctx context.Context, id string) (*models.Product, error)
	ProductsByIDs(ctx context.Context, ids []string) (map[string]models.Product, error)
	ProductImagesByIDs(ctx context.Context, ids []string) (map[string]models.Product, error)
	PromoByID(ctx context.Context, id string) (*models.PromoImage, error)
	PromosByIDs(ctx context.Context, ids []string) (map[string]models.PromoImage, error)
	PromoImagesByIDs(ctx context.Context, ids []string) (map[string]models.PromoImage, error)
	SupplierSharesBrand(ctx context.Context, supplierID, brandID string) (bool, error)
}

type historyStore interface {
	Append(ctx context.Context, entry *models.EditHistory) error
}

type listingCache interface {
	Get(ctx context.Context, key string, dest interface{}) error
	Set(ctx context.Context, key string, value interface{}, ttl time.Duration) error
	Delete(ctx context.Context, key string) error
}

// FlyerService owns flyer composition: page and slot mutation rules,
// validation gates, the dense read-side transform, and listings.
type FlyerService struct {
	flyers    flyerStore
	catalog   catalogStore
	history   historyStore
	cache     listingCache
	metrics   *MetricsService
	validator *validator.Validate
	logger    *zap.Logger
	cacheTTL  time.Duration
	now       func() time.Time
	newID     func() string
}

// FlyerServiceOption configures the service.
type FlyerServiceOption func(*FlyerService)

// WithClock overrides the time source; expiry math becomes deterministic in tests.
func WithClock(now func() time.Time) FlyerServiceOption {
	return func(s *FlyerService) {
		if now != nil {
			s.now = now
		}
	}
}

// WithListingCache attaches a cache for the active-flyer listing.
func WithListingCache(cache listingCache, ttl time.Duration) FlyerServiceOption {
	return func(s *FlyerService) {
		s.cache = cache
		if ttl > 0 {
			s.cacheTTL = ttl
		}
	}
}

// WithMetrics attaches Prometheus instrumentation.
func WithMetrics(metrics *MetricsService) FlyerServiceOption {
	return func(s *FlyerService) {
		s.metrics = metrics
	}
}

// NewFlyerService constructs the service.
func NewFlyerService(flyers flyerStore, catalog catalogStore, history historyStore, logger *zap.Logger, opts ...FlyerServiceOption) *FlyerService {
	if logger == nil {
		logger = zap.NewNop()
	}
	svc := &FlyerService{
		flyers:    flyers,
		catalog:   catalog,
		history:   history,
		validator: validator.New(),
		logger:    logger,
		cacheTTL:  5 * time.Minute,
		now:       func() time.Time { return time.Now().UTC() },
		newID:     uuid.NewString,
	}
	for _, opt := range opts {
		if opt != nil {
			opt(svc)
		}
	}
	return svc
}

// Create opens an empty draft owned by the caller.
func (s *FlyerService) Create(ctx context.Context, actor *models.JWTClaims, req dto.CreateFlyerRequest) (*models.Flyer, error) {
	if actor == nil {
		return nil, appErrors.ErrUnauthorized
	}
	if err := s.validator.Struct(req); err != nil {
		return nil, appErrors.Wrap(err, appErrors.ErrValidation.Code, appErrors.ErrValidation.Status, "invalid flyer payload")
	}
	flyer := &models.Flyer{
		ID:              s.newID(),
		SupplierID:      actor.UserID,
		Name:            req.Name,
		Status:          models.FlyerStatusDraft,
		EndUserAuthored: actor.Role == models.RoleEndUser,
		LastEditedAt:    s.now(),
		CreatedAt:       s.now(),
	}
	flyer.CompletionPercentage = CompletionScore(flyer)
	if err := s.flyers.Create(ctx, flyer); err != nil {
		return nil, appErrors.Wrap(err, appErrors.ErrInternal.Code, appErrors.ErrInternal.Status, "failed to create flyer")
	}
	s.logEdit(ctx, flyer.ID, actor.UserID, models.EditActionCreate, map[string]interface{}{"name": flyer.Name})
	return flyer, nil
}

// Get returns the full detail view with the dense 8-slot expansion.
func (s *FlyerService) Get(ctx context.Context, actor *models.JWTClaims, id string) (*dto.FlyerView, error) {
	flyer, err := s.loadFlyer(ctx, id)
	if err != nil {
		return nil, err
	}
	if !canView(actor, flyer) {
		return nil, appErrors.ErrForbidden
	}
	return s.buildView(ctx, flyer)
}

// ListOwn returns the caller's flyers as lightweight summaries. The expiry
// sweep runs first so no stale active row is served.
func (s *FlyerService) ListOwn(ctx context.Context, actor *models.JWTClaims) ([]dto.FlyerSummary, error) {
	if actor == nil {
		return nil, appErrors.ErrUnauthorized
	}
	if err := s.Sweep(ctx); err != nil {
		s.logger.Warn("expiry sweep before listing failed", zap.Error(err))
	}
	flyers, err := s.flyers.ListBySupplier(ctx, actor.UserID)
	if err != nil {
		return nil, appErrors.Wrap(err, appErrors.ErrInternal.Code, appErrors.ErrInternal.Status, "failed to list flyers")
	}
	return summaries(flyers), nil
}

// ListActive returns every active flyer, cache-backed. Returns whether the
// payload was served from cache.
func (s *FlyerService) ListActive(ctx context.Context) ([]dto.FlyerSummary, bool, error) {
	if err := s.Sweep(ctx); err != nil {
		s.logger.Warn("expiry sweep before listing failed", zap.Error(err))
	}
	if s.cache != nil {
		var cached []dto.FlyerSummary
		if err := s.cache.Get(ctx, activeFlyersCacheKey, &cached); err == nil {
			s.metrics.RecordCacheOperation(true)
			return cached, true, nil
		}
		s.metrics.RecordCacheOperation(false)
	}
	flyers, err := s.flyers.ListActive(ctx)
	if err != nil {
		return nil, false, appErrors.Wrap(err, appErrors.ErrInternal.Code, appErrors.ErrInternal.Status, "failed to list active flyers")
	}
	result := summaries(flyers)
	if s.cache != nil {
		if err := s.cache.Set(ctx, activeFlyersCacheKey, result, s.cacheTTL); err != nil {
			s.logger.Warn("failed to cache active flyers", zap.Error(err))
		}
	}
	return result, false, nil
}

// Sweep transitions every active flyer whose validity window ended before
// the start of today (UTC). Idempotent; safe to call before any listing.
func (s *FlyerService) Sweep(ctx context.Context) error {
	today := s.now().Truncate(24 * time.Hour)
	moved, err := s.flyers.ExpireActiveBefore(ctx, today)
	if err != nil {
		return err
	}
	if moved > 0 {
		s.metrics.AddSweptFlyers(moved)
		s.invalidateActiveCache(ctx)
		s.logger.Info("expired flyers swept", zap.Int64("count", moved))
	}
	return nil
}

// RunSweeper runs the expiry sweep on a ticker until ctx is cancelled.
// Complements the on-access sweep so the active set also self-corrects
// during idle periods.
func (s *FlyerService) RunSweeper(ctx context.Context, interval time.Duration) {
	if interval <= 0 {
		interval = 10 * time.Minute
	}
	ticker := time.NewTicker(interval)
	defer ticker.Stop()
	for {
		select {
		case <-ctx.Done():
			return
		case <-ticker.C:
			if err := s.Sweep(ctx); err != nil {
				s.logger.Warn("background expiry sweep failed", zap.Error(err))
			}
		}
	}
}

// UpdateMeta changes name, action reference, and validity dates. For
// end-user flyers the validTo is clamped so a derivative flyer never
// outlives the source flyers of its products.
func (s *FlyerService) UpdateMeta(ctx context.Context, actor *models.JWTClaims, id string, req dto.UpdateFlyerRequest) (*models.Flyer, error) {
	if err := s.validator.Struct(req); err != nil {
		return nil, appErrors.Wrap(err, appErrors.ErrValidation.Code, appErrors.ErrValidation.Status, "invalid flyer payload")
	}
	var updated *models.Flyer
	err := s.mutateOwnedEditable(ctx, actor, id, "failed to update flyer", func(flyer *models.Flyer) (*repository.FlyerMutation, error) {
		if req.Name != nil {
			flyer.Name = *req.Name
		}
		if req.ActionID != nil {
			flyer.ActionID = req.ActionID
		}
		if req.ActionName != nil {
			flyer.ActionName = req.ActionName
		}
		if req.ValidFrom != nil {
			flyer.ValidFrom = req.ValidFrom
		}
		if req.ValidTo != nil {
			flyer.ValidTo = req.ValidTo
		}
		if flyer.EndUserAuthored && flyer.ValidTo != nil {
			clamped, err := s.clampValidTo(ctx, flyer)
			if err != nil {
				return nil, err
			}
			flyer.ValidTo = clamped
		}
		flyer.CompletionPercentage = CompletionScore(flyer)
		updated = flyer
		return &repository.FlyerMutation{Meta: true, Completion: flyer.CompletionPercentage}, nil
	})
	if err != nil {
		return nil, err
	}
	s.logEdit(ctx, updated.ID, actor.UserID, models.EditActionUpdateInfo, map[string]interface{}{"name": updated.Name})
	return updated, nil
}

// clampValidTo bounds the validity end by the minimum validTo among other
// active flyers sharing any referenced product.
func (s *FlyerService) clampValidTo(ctx context.Context, flyer *models.Flyer) (*time.Time, error) {
	productIDs := flyer.ProductIDs()
	if len(productIDs) == 0 {
		return flyer.ValidTo, nil
	}
	dates, err := s.flyers.ActiveValidToSharingProducts(ctx, flyer.ID, productIDs)
	if err != nil {
		return nil, appErrors.Wrap(err, appErrors.ErrInternal.Code, appErrors.ErrInternal.Status, "failed to resolve shared validity")
	}
	clamped := *flyer.ValidTo
	for _, d := range dates {
		if d.Before(clamped) {
			clamped = d
		}
	}
	return &clamped, nil
}

// Delete removes a flyer; drafts and rejected flyers only.
func (s *FlyerService) Delete(ctx context.Context, actor *models.JWTClaims, id string) error {
	flyer, err := s.loadFlyer(ctx, id)
	if err != nil {
		return err
	}
	if actor == nil || (actor.UserID != flyer.SupplierID && actor.Role != models.RoleAdmin) {
		return appErrors.ErrForbidden
	}
	if !flyer.IsEditable() {
		return appErrors.Clone(appErrors.ErrInvalidState, "only draft flyers can be deleted")
	}
	if err := s.flyers.Delete(ctx, id); err != nil {
		return appErrors.Wrap(err, appErrors.ErrInternal.Code, appErrors.ErrInternal.Status, "failed to delete flyer")
	}
	return nil
}

// AddPage creates a page with 8 empty slots pre-populated.
func (s *FlyerService) AddPage(ctx context.Context, actor *models.JWTClaims, flyerID string, pageNumber int) (*models.Page, error) {
	var page *models.Page
	err := s.mutateOwnedEditable(ctx, actor, flyerID, "failed to add page", func(flyer *models.Flyer) (*repository.FlyerMutation, error) {
		for _, existing := range flyer.Pages {
			if existing.PageNumber == pageNumber {
				return nil, appErrors.Clone(appErrors.ErrDomainRule, fmt.Sprintf("page %d already exists", pageNumber))
			}
		}
		page = &models.Page{
			ID:         s.newID(),
			FlyerID:    flyerID,
			PageNumber: pageNumber,
		}
		page.Slots = models.EmptySlots(page.ID, s.newID)
		flyer.Pages = append(flyer.Pages, *page)
		return &repository.FlyerMutation{InsertPage: page, Completion: CompletionScore(flyer)}, nil
	})
	if err != nil {
		return nil, err
	}
	s.logEdit(ctx, flyerID, actor.UserID, models.EditActionAddPage, map[string]interface{}{"pageNumber": pageNumber})
	return page, nil
}

// RemovePage deletes a page and its slots. Removing page 1 loses the footer
// capability; the editor warns, this layer does not block it.
func (s *FlyerService) RemovePage(ctx context.Context, actor *models.JWTClaims, flyerID, pageID string) error {
	var removedNumber int
	err := s.mutateOwnedEditable(ctx, actor, flyerID, "failed to remove page", func(flyer *models.Flyer) (*repository.FlyerMutation, error) {
		var removed *models.Page
		remaining := make([]models.Page, 0, len(flyer.Pages))
		for i := range flyer.Pages {
			if flyer.Pages[i].ID == pageID {
				removed = &flyer.Pages[i]
				continue
			}
			remaining = append(remaining, flyer.Pages[i])
		}
		if removed == nil {
			return nil, appErrors.Clone(appErrors.ErrNotFound, "page not found")
		}
		removedNumber = removed.PageNumber
		flyer.Pages = remaining
		return &repository.FlyerMutation{DeletePageID: pageID, Completion: CompletionScore(flyer)}, nil
	})
	if err != nil {
		return err
	}
	s.logEdit(ctx, flyerID, actor.UserID, models.EditActionRemovePage, map[string]interface{}{"pageNumber": removedNumber})
	return nil
}

// AddProduct places a product into one empty slot. Guards run in order:
// position bounds, slot emptiness, product existence and rights, the
// energy-label gate, then flyer-wide uniqueness.
func (s *FlyerService) AddProduct(ctx context.Context, actor *models.JWTClaims, flyerID, pageID string, position int, productID string) error {
	err := s.mutateOwnedEditable(ctx, actor, flyerID, "failed to place product", func(flyer *models.Flyer) (*repository.FlyerMutation, error) {
		if !grid.ValidPosition(position) {
			return nil, appErrors.Clone(appErrors.ErrDomainRule, fmt.Sprintf("invalid slot position %d", position))
		}
		var page *models.Page
		for i := range flyer.Pages {
			if flyer.Pages[i].ID == pageID {
				page = &flyer.Pages[i]
				break
			}
		}
		if page == nil {
			return nil, appErrors.Clone(appErrors.ErrNotFound, "page not found")
		}
		slot := page.SlotAt(position)
		if slot == nil {
			return nil, appErrors.Clone(appErrors.ErrNotFound, "slot not found")
		}
		if slot.SlotType != models.SlotTypeEmpty {
			return nil, appErrors.Clone(appErrors.ErrDomainRule, "target slot is not empty")
		}
		product, err := s.catalog.ProductByID(ctx, productID)
		if err != nil {
			if errors.Is(err, sql.ErrNoRows) {
				return nil, appErrors.Clone(appErrors.ErrNotFound, "product not found")
			}
			return nil, appErrors.Wrap(err, appErrors.ErrInternal.Code, appErrors.ErrInternal.Status, "failed to load product")
		}
		if err := s.checkProductRights(ctx, actor, product); err != nil {
			return nil, err
		}
		if !product.HasEnergyClassIcon() {
			return nil, appErrors.Clone(appErrors.ErrDomainRule, fmt.Sprintf("product %q has no energy class label", product.Name))
		}
		if flyer.HasProduct(productID) {
			return nil, appErrors.Clone(appErrors.ErrDomainRule, fmt.Sprintf("product %q is already placed in this flyer", product.Name))
		}
		slot.SlotType = models.SlotTypeProduct
		slot.ProductID = &productID
		slot.PromoID = nil
		slot.PromoSize = nil
		return &repository.FlyerMutation{Slots: []models.Slot{*slot}, Completion: CompletionScore(flyer)}, nil
	})
	if err != nil {
		return err
	}
	s.logEdit(ctx, flyerID, actor.UserID, models.EditActionAddProduct, map[string]interface{}{
		"pageId": pageID, "position": position, "productId": productID,
	})
	return nil
}

// checkProductRights enforces who may place a product: suppliers only their
// own, end users anything already published in an active flyer.
func (s *FlyerService) checkProductRights(ctx context.Context, actor *models.JWTClaims, product *models.Product) error {
	if actor.Role == models.RoleEndUser {
		published, err := s.flyers.ProductInActiveFlyer(ctx, product.ID)
		if err != nil {
			return appErrors.Wrap(err, appErrors.ErrInternal.Code, appErrors.ErrInternal.Status, "failed to check product publication")
		}
		if !published {
			return appErrors.Clone(appErrors.ErrForbidden, "product is not part of any active flyer")
		}
		return nil
	}
	if product.SupplierID != actor.UserID {
		return appErrors.Clone(appErrors.ErrForbidden, "product belongs to another supplier")
	}
	return nil
}

// checkPromoRights enforces who may place a promo image: the owning supplier,
// a supplier sharing the promo's brand, or any end user.
func (s *FlyerService) checkPromoRights(ctx context.Context, actor *models.JWTClaims, promo *models.PromoImage) error {
	if actor.Role == models.RoleEndUser {
		return nil
	}
	if promo.SupplierID != nil && *promo.SupplierID == actor.UserID {
		return nil
	}
	if promo.BrandID != nil {
		shared, err := s.catalog.SupplierSharesBrand(ctx, actor.UserID, *promo.BrandID)
		if err != nil {
			return appErrors.Wrap(err, appErrors.ErrInternal.Code, appErrors.ErrInternal.Status, "failed to check brand sharing")
		}
		if shared {
			return nil
		}
	}
	return appErrors.Clone(appErrors.ErrForbidden, "no rights to this promo image")
}

// RemoveSlot resets a slot to empty regardless of prior content.
func (s *FlyerService) RemoveSlot(ctx context.Context, actor *models.JWTClaims, flyerID, slotID string) error {
	err := s.mutateOwnedEditable(ctx, actor, flyerID, "failed to clear slot", func(flyer *models.Flyer) (*repository.FlyerMutation, error) {
		slot := findSlot(flyer, slotID)
		if slot == nil {
			return nil, appErrors.Clone(appErrors.ErrNotFound, "slot not found")
		}
		slot.Clear()
		return &repository.FlyerMutation{Slots: []models.Slot{*slot}, Completion: CompletionScore(flyer)}, nil
	})
	if err != nil {
		return err
	}
	s.logEdit(ctx, flyerID, actor.UserID, models.EditActionRemoveProduct, map[string]interface{}{"slotId": slotID})
	return nil
}

// SwapPosition exchanges the full contents of two slots on the same page.
// A true swap: nothing is ever lost or duplicated.
func (s *FlyerService) SwapPosition(ctx context.Context, actor *models.JWTClaims, flyerID, slotID string, newPosition int) error {
	swapped := false
	err := s.mutateOwnedEditable(ctx, actor, flyerID, "failed to swap slots", func(flyer *models.Flyer) (*repository.FlyerMutation, error) {
		if !grid.ValidPosition(newPosition) {
			return nil, appErrors.Clone(appErrors.ErrDomainRule, fmt.Sprintf("invalid slot position %d", newPosition))
		}
		var source *models.Slot
		var page *models.Page
		for i := range flyer.Pages {
			if slot := findSlotInPage(&flyer.Pages[i], slotID); slot != nil {
				source = slot
				page = &flyer.Pages[i]
				break
			}
		}
		if source == nil {
			return nil, appErrors.Clone(appErrors.ErrNotFound, "slot not found")
		}
		target := page.SlotAt(newPosition)
		if target == nil {
			return nil, appErrors.Clone(appErrors.ErrNotFound, "target slot not found")
		}
		if source.ID == target.ID {
			return nil, nil
		}
		source.SlotType, target.SlotType = target.SlotType, source.SlotType
		source.ProductID, target.ProductID = target.ProductID, source.ProductID
		source.PromoID, target.PromoID = target.PromoID, source.PromoID
		source.PromoSize, target.PromoSize = target.PromoSize, source.PromoSize
		swapped = true
		return &repository.FlyerMutation{Slots: []models.Slot{*source, *target}, Completion: CompletionScore(flyer)}, nil
	})
	if err != nil || !swapped {
		return err
	}
	s.logEdit(ctx, flyerID, actor.UserID, models.EditActionReorder, map[string]interface{}{
		"slotId": slotID, "newPosition": newPosition,
	})
	return nil
}

// SyncPages replaces the whole page set from the editor's save. Individual
// slot entries that fail a placement rule are silently dropped; only a
// missing energy-class label fails the entire save.
func (s *FlyerService) SyncPages(ctx context.Context, actor *models.JWTClaims, flyerID string, req dto.SyncPagesRequest) (*dto.FlyerView, error) {
	var synced *models.Flyer
	err := s.mutateOwnedEditable(ctx, actor, flyerID, "failed to sync pages", func(flyer *models.Flyer) (*repository.FlyerMutation, error) {
		pages, err := s.resolvePages(ctx, actor, req.Pages)
		if err != nil {
			return nil, err
		}
		flyer.Pages = pages
		synced = flyer
		return &repository.FlyerMutation{ReplaceAll: true, Pages: pages, Completion: CompletionScore(flyer)}, nil
	})
	if err != nil {
		return nil, err
	}
	s.logEdit(ctx, flyerID, actor.UserID, models.EditActionSyncPages, map[string]interface{}{"pages": len(synced.Pages)})
	return s.buildView(ctx, synced)
}

// Autosave runs the same bulk save and bumps the optimistic autosave counter.
func (s *FlyerService) Autosave(ctx context.Context, actor *models.JWTClaims, flyerID string, req dto.SyncPagesRequest) (int64, error) {
	if _, err := s.SyncPages(ctx, actor, flyerID, req); err != nil {
		return 0, err
	}
	version, err := s.flyers.BumpAutoSave(ctx, flyerID)
	if err != nil {
		return 0, appErrors.Wrap(err, appErrors.ErrInternal.Code, appErrors.ErrInternal.Status, "failed to bump autosave version")
	}
	return version, nil
}

// resolvePages builds the new page graph from editor input, applying the
// placement rules. Invalid entries are skipped; the energy-label gate is the
// single fatal rule in this path.
func (s *FlyerService) resolvePages(ctx context.Context, actor *models.JWTClaims, inputs []dto.PageInput) ([]models.Page, error) {
	seenPages := make(map[int]struct{}, len(inputs))
	seenProducts := make(map[string]struct{})
	pages := make([]models.Page, 0, len(inputs))

	for _, input := range inputs {
		if input.PageNumber < 1 {
			continue
		}
		if _, dup := seenPages[input.PageNumber]; dup {
			continue
		}
		seenPages[input.PageNumber] = struct{}{}

		page := models.Page{
			ID:         s.newID(),
			PageNumber: input.PageNumber,
		}
		page.Slots = models.EmptySlots(page.ID, s.newID)

		if input.FooterPromoID != nil && input.PageNumber == 1 {
			if promo, err := s.resolveFooterPromo(ctx, actor, *input.FooterPromoID); err != nil {
				return nil, err
			} else if promo != nil {
				page.FooterPromoID = &promo.ID
			}
		}

		entries := input.Slots
		if len(entries) > grid.SlotsPerPage {
			entries = entries[:grid.SlotsPerPage]
		}
		for _, entry := range entries {
			if err := s.resolveSlotEntry(ctx, actor, &page, entry, seenProducts); err != nil {
				return nil, err
			}
		}
		pages = append(pages, page)
	}
	return pages, nil
}

func (s *FlyerService) resolveFooterPromo(ctx context.Context, actor *models.JWTClaims, promoID string) (*models.PromoImage, error) {
	promo, err := s.catalog.PromoByID(ctx, promoID)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, nil
		}
		return nil, appErrors.Wrap(err, appErrors.ErrInternal.Code, appErrors.ErrInternal.Status, "failed to load promo")
	}
	if !promo.Size.IsFooter() {
		return nil, nil
	}
	if err := s.checkPromoRights(ctx, actor, promo); err != nil {
		var appErr *appErrors.Error
		if errors.As(err, &appErr) && appErr.Code == appErrors.ErrForbidden.Code {
			return nil, nil
		}
		return nil, err
	}
	return promo, nil
}

// resolveSlotEntry applies one editor slot entry onto the page. Returns an
// error only for the energy-label gate or infrastructure failures; every
// other rejection leaves the slot unplaced.
func (s *FlyerService) resolveSlotEntry(ctx context.Context, actor *models.JWTClaims, page *models.Page, entry dto.SlotInput, seenProducts map[string]struct{}) error {
	if !grid.ValidPosition(entry.Position) {
		return nil
	}
	slot := page.SlotAt(entry.Position)
	if slot == nil || slot.SlotType != models.SlotTypeEmpty {
		return nil
	}

	switch entry.SlotType {
	case models.SlotTypeProduct:
		if entry.ProductID == nil {
			return nil
		}
		product, err := s.catalog.ProductByID(ctx, *entry.ProductID)
		if err != nil {
			if errors.Is(err, sql.ErrNoRows) {
				return nil
			}
			return appErrors.Wrap(err, appErrors.ErrInternal.Code, appErrors.ErrInternal.Status, "failed to load product")
		}
		if !product.HasEnergyClassIcon() {
			// The one fatal rule in bulk sync; everything else is skipped.
			return appErrors.Clone(appErrors.ErrDomainRule, fmt.Sprintf("product %q has no energy class label", product.Name))
		}
		if err := s.checkProductRights(ctx, actor, product); err != nil {
			var appErr *appErrors.Error
			if errors.As(err, &appErr) && appErr.Code == appErrors.ErrForbidden.Code {
				return nil
			}
			return err
		}
		if _, dup := seenProducts[product.ID]; dup {
			return nil
		}
		seenProducts[product.ID] = struct{}{}
		slot.SlotType = models.SlotTypeProduct
		slot.ProductID = entry.ProductID

	case models.SlotTypePromo:
		if entry.PromoID == nil {
			return nil
		}
		promo, err := s.catalog.PromoByID(ctx, *entry.PromoID)
		if err != nil {
			if errors.Is(err, sql.ErrNoRows) {
				return nil
			}
			return appErrors.Wrap(err, appErrors.ErrInternal.Code, appErrors.ErrInternal.Status, "failed to load promo")
		}
		if promo.Size.IsFooter() {
			// Footer promos never occupy a grid slot.
			return nil
		}
		if promo.Size.IsHeader() && !grid.HeaderPlacementAllowed(page.PageNumber, entry.Position) {
			return nil
		}
		if err := s.checkPromoRights(ctx, actor, promo); err != nil {
			var appErr *appErrors.Error
			if errors.As(err, &appErr) && appErr.Code == appErrors.ErrForbidden.Code {
				return nil
			}
			return err
		}
		size := promo.Size
		slot.SlotType = models.SlotTypePromo
		slot.PromoID = entry.PromoID
		slot.PromoSize = &size
	}
	return nil
}

// CompletionScore derives a 0..100 progress score from flyer content: name
// and both dates 10 points each, pages up to 30, placed products up to 40.
func CompletionScore(flyer *models.Flyer) int {
	score := 0.0
	if flyer.Name != "" {
		score += 10
	}
	if flyer.ValidFrom != nil {
		score += 10
	}
	if flyer.ValidTo != nil {
		score += 10
	}
	pageScore := float64(len(flyer.Pages)) / 2 * 30
	if pageScore > 30 {
		pageScore = 30
	}
	productScore := float64(len(flyer.ProductIDs())) / 8 * 40
	if productScore > 40 {
		productScore = 40
	}
	return int(math.Round(score + pageScore + productScore))
}

// GetPDF returns the stored artifact for download.
func (s *FlyerService) GetPDF(ctx context.Context, actor *models.JWTClaims, id string) ([]byte, string, error) {
	flyer, err := s.loadFlyer(ctx, id)
	if err != nil {
		return nil, "", err
	}
	if !canView(actor, flyer) {
		return nil, "", appErrors.ErrForbidden
	}
	data, mime, err := s.flyers.GetPDF(ctx, id)
	if err != nil {
		return nil, "", appErrors.Wrap(err, appErrors.ErrInternal.Code, appErrors.ErrInternal.Status, "failed to load flyer pdf")
	}
	if len(data) == 0 {
		return nil, "", appErrors.Clone(appErrors.ErrNotFound, "flyer has no generated pdf")
	}
	return data, mime, nil
}

func (s *FlyerService) invalidateActiveCache(ctx context.Context) {
	if s.cache == nil {
		return
	}
	if err := s.cache.Delete(ctx, activeFlyersCacheKey); err != nil {
		s.logger.Warn("failed to invalidate active flyer cache", zap.Error(err))
	}
}

func (s *FlyerService) loadFlyer(ctx context.Context, id string) (*models.Flyer, error) {
	flyer, err := s.flyers.GetByID(ctx, id)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, appErrors.Clone(appErrors.ErrNotFound, "flyer not found")
		}
		return nil, appErrors.Wrap(err, appErrors.ErrInternal.Code, appErrors.ErrInternal.Status, "failed to load flyer")
	}
	return flyer, nil
}

// mutateOwnedEditable runs fn against the flyer graph loaded under the
// per-flyer row lock, so the ownership and state guards, fn's own validation,
// and the resulting write all see the same state.
func (s *FlyerService) mutateOwnedEditable(ctx context.Context, actor *models.JWTClaims, id, failMsg string, fn func(flyer *models.Flyer) (*repository.FlyerMutation, error)) error {
	if actor == nil {
		return appErrors.ErrUnauthorized
	}
	err := s.flyers.Mutate(ctx, id, func(flyer *models.Flyer) (*repository.FlyerMutation, error) {
		if flyer.SupplierID != actor.UserID {
			return nil, appErrors.ErrForbidden
		}
		if !flyer.IsEditable() {
			return nil, appErrors.Clone(appErrors.ErrInvalidState, "flyer can only be edited while in draft")
		}
		return fn(flyer)
	})
	if err == nil {
		return nil
	}
	if errors.Is(err, sql.ErrNoRows) {
		return appErrors.Clone(appErrors.ErrNotFound, "flyer not found")
	}
	var appErr *appErrors.Error
	if errors.As(err, &appErr) {
		return err
	}
	return appErrors.Wrap(err, appErrors.ErrInternal.Code, appErrors.ErrInternal.Status, failMsg)
}

func (s *FlyerService) logEdit(ctx context.Context, flyerID, actorID string, action models.EditAction, details map[string]interface{}) {
	if s.history == nil {
		return
	}
	payload, _ := json.Marshal(details)
	entry := &models.EditHistory{
		FlyerID:    flyerID,
		ActorID:    actorID,
		ActionType: action,
		Details:    payload,
		CreatedAt:  s.now(),
	}
	if err := s.history.Append(ctx, entry); err != nil {
		s.logger.Warn("failed to append edit history", zap.Error(err))
	}
}

func canView(actor *models.JWTClaims, flyer *models.Flyer) bool {
	if actor == nil {
		return false
	}
	switch actor.Role {
	case models.RoleAdmin, models.RoleApprover, models.RolePreApprover:
		return true
	}
	if actor.UserID == flyer.SupplierID {
		return true
	}
	return flyer.Status == models.FlyerStatusActive
}

func findSlot(flyer *models.Flyer, slotID string) *models.Slot {
	for i := range flyer.Pages {
		if slot := findSlotInPage(&flyer.Pages[i], slotID); slot != nil {
			return slot
		}
	}
	return nil
}

func findSlotInPage(page *models.Page, slotID string) *models.Slot {
	for i := range page.Slots {
		if page.Slots[i].ID == slotID {
			return &page.Slots[i]
		}
	}
	return nil
}

func summaries(flyers []models.Flyer) []dto.FlyerSummary {
	result := make([]dto.FlyerSummary, 0, len(flyers))
	for _, flyer := range flyers {
		result = append(result, dto.FlyerSummary{
			ID:                   flyer.ID,
			SupplierID:           flyer.SupplierID,
			Name:                 flyer.Name,
			ActionName:           flyer.ActionName,
			ValidFrom:            flyer.ValidFrom,
			ValidTo:              flyer.ValidTo,
			Status:               flyer.Status,
			CompletionPercentage: flyer.CompletionPercentage,
			LastEditedAt:         flyer.LastEditedAt,
		})
	}
	return result
}

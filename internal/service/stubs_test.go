package service

import (
	"context"
	"database/sql"
	"encoding/json"
	"fmt"
	"sync"
	"time"

	"github.com/Vokurcak68/Flyer-app-sub000/internal/models"
	"github.com/Vokurcak68/Flyer-app-sub000/internal/pdf"
	"github.com/Vokurcak68/Flyer-app-sub000/internal/repository"
	"github.com/Vokurcak68/Flyer-app-sub000/pkg/jobs"
)

type flyerStoreStub struct {
	mu              sync.Mutex
	flyers          map[string]*models.Flyer
	sharedValidTos  []time.Time
	activeProducts  map[string]bool
	pdfData         map[string][]byte
	pdfMime         map[string]string
	autoSave        map[string]int64
	statusChanges   []repository.StatusChange
	expireBoundary  time.Time
	expireMoved     int64
	listActiveCalls int
}

func newFlyerStoreStub() *flyerStoreStub {
	return &flyerStoreStub{
		flyers:         make(map[string]*models.Flyer),
		activeProducts: make(map[string]bool),
		pdfData:        make(map[string][]byte),
		pdfMime:        make(map[string]string),
		autoSave:       make(map[string]int64),
	}
}

func cloneFlyer(f *models.Flyer) *models.Flyer {
	clone := *f
	clone.Pages = make([]models.Page, len(f.Pages))
	for i, page := range f.Pages {
		cloned := page
		cloned.Slots = append([]models.Slot(nil), page.Slots...)
		clone.Pages[i] = cloned
	}
	return &clone
}

func (s *flyerStoreStub) Create(ctx context.Context, flyer *models.Flyer) error {
	s.flyers[flyer.ID] = cloneFlyer(flyer)
	return nil
}

func (s *flyerStoreStub) GetByID(ctx context.Context, id string) (*models.Flyer, error) {
	flyer, ok := s.flyers[id]
	if !ok {
		return nil, sql.ErrNoRows
	}
	return cloneFlyer(flyer), nil
}

func (s *flyerStoreStub) ListBySupplier(ctx context.Context, supplierID string) ([]models.Flyer, error) {
	var result []models.Flyer
	for _, flyer := range s.flyers {
		if flyer.SupplierID == supplierID {
			result = append(result, *cloneFlyer(flyer))
		}
	}
	return result, nil
}

func (s *flyerStoreStub) ListActive(ctx context.Context) ([]models.Flyer, error) {
	s.listActiveCalls++
	var result []models.Flyer
	for _, flyer := range s.flyers {
		if flyer.Status == models.FlyerStatusActive {
			result = append(result, *cloneFlyer(flyer))
		}
	}
	return result, nil
}

func (s *flyerStoreStub) ActiveValidToSharingProducts(ctx context.Context, excludeFlyerID string, productIDs []string) ([]time.Time, error) {
	return s.sharedValidTos, nil
}

func (s *flyerStoreStub) ProductInActiveFlyer(ctx context.Context, productID string) (bool, error) {
	return s.activeProducts[productID], nil
}

// Mutate mirrors the repository contract: the whole read-validate-write
// cycle runs under one lock, and the state fn mutated becomes the new
// stored state only when fn succeeds.
func (s *flyerStoreStub) Mutate(ctx context.Context, flyerID string, fn func(flyer *models.Flyer) (*repository.FlyerMutation, error)) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	stored, ok := s.flyers[flyerID]
	if !ok {
		return sql.ErrNoRows
	}
	flyer := cloneFlyer(stored)
	mutation, err := fn(flyer)
	if err != nil {
		return err
	}
	if mutation == nil {
		return nil
	}
	flyer.CompletionPercentage = mutation.Completion
	s.flyers[flyerID] = cloneFlyer(flyer)
	return nil
}

func (s *flyerStoreStub) SetStatus(ctx context.Context, change repository.StatusChange) error {
	flyer, ok := s.flyers[change.FlyerID]
	if !ok {
		return sql.ErrNoRows
	}
	s.statusChanges = append(s.statusChanges, change)
	flyer.Status = change.Status
	flyer.RejectionReason = change.RejectionReason
	if change.PublishedAt != nil {
		flyer.PublishedAt = change.PublishedAt
	}
	if change.ValidTo != nil {
		flyer.ValidTo = change.ValidTo
	}
	return nil
}

func (s *flyerStoreStub) SavePDF(ctx context.Context, flyerID string, data []byte, mime string) error {
	s.pdfData[flyerID] = data
	s.pdfMime[flyerID] = mime
	if flyer, ok := s.flyers[flyerID]; ok {
		flyer.PDFMime = &mime
	}
	return nil
}

func (s *flyerStoreStub) GetPDF(ctx context.Context, flyerID string) ([]byte, string, error) {
	data, ok := s.pdfData[flyerID]
	if !ok {
		return nil, "application/pdf", nil
	}
	return data, s.pdfMime[flyerID], nil
}

func (s *flyerStoreStub) BumpAutoSave(ctx context.Context, flyerID string) (int64, error) {
	s.autoSave[flyerID]++
	return s.autoSave[flyerID], nil
}

func (s *flyerStoreStub) ExpireActiveBefore(ctx context.Context, boundary time.Time) (int64, error) {
	s.expireBoundary = boundary
	moved := int64(0)
	for _, flyer := range s.flyers {
		if flyer.Status == models.FlyerStatusActive && flyer.ValidTo != nil && flyer.ValidTo.Before(boundary) {
			flyer.Status = models.FlyerStatusExpired
			moved++
		}
	}
	s.expireMoved = moved
	return moved, nil
}

func (s *flyerStoreStub) Delete(ctx context.Context, flyerID string) error {
	if _, ok := s.flyers[flyerID]; !ok {
		return sql.ErrNoRows
	}
	delete(s.flyers, flyerID)
	return nil
}

type catalogStub struct {
	products map[string]models.Product
	promos   map[string]models.PromoImage
	brands   map[string]map[string]bool
}

func newCatalogStub() *catalogStub {
	return &catalogStub{
		products: make(map[string]models.Product),
		promos:   make(map[string]models.PromoImage),
		brands:   make(map[string]map[string]bool),
	}
}

func (s *catalogStub) ProductByID(ctx context.Context, id string) (*models.Product, error) {
	product, ok := s.products[id]
	if !ok {
		return nil, sql.ErrNoRows
	}
	return &product, nil
}

func (s *catalogStub) ProductsByIDs(ctx context.Context, ids []string) (map[string]models.Product, error) {
	result := make(map[string]models.Product, len(ids))
	for _, id := range ids {
		if product, ok := s.products[id]; ok {
			result[id] = product
		}
	}
	return result, nil
}

func (s *catalogStub) ProductImagesByIDs(ctx context.Context, ids []string) (map[string]models.Product, error) {
	return s.ProductsByIDs(ctx, ids)
}

func (s *catalogStub) PromoByID(ctx context.Context, id string) (*models.PromoImage, error) {
	promo, ok := s.promos[id]
	if !ok {
		return nil, sql.ErrNoRows
	}
	return &promo, nil
}

func (s *catalogStub) PromosByIDs(ctx context.Context, ids []string) (map[string]models.PromoImage, error) {
	result := make(map[string]models.PromoImage, len(ids))
	for _, id := range ids {
		if promo, ok := s.promos[id]; ok {
			result[id] = promo
		}
	}
	return result, nil
}

func (s *catalogStub) PromoImagesByIDs(ctx context.Context, ids []string) (map[string]models.PromoImage, error) {
	return s.PromosByIDs(ctx, ids)
}

func (s *catalogStub) SupplierSharesBrand(ctx context.Context, supplierID, brandID string) (bool, error) {
	return s.brands[supplierID][brandID], nil
}

type historyStub struct {
	entries []*models.EditHistory
}

func (s *historyStub) Append(ctx context.Context, entry *models.EditHistory) error {
	s.entries = append(s.entries, entry)
	return nil
}

func (s *historyStub) ListByFlyer(ctx context.Context, flyerID string, limit int) ([]models.EditHistory, error) {
	var result []models.EditHistory
	for _, entry := range s.entries {
		if entry.FlyerID == flyerID {
			result = append(result, *entry)
		}
	}
	return result, nil
}

func (s *historyStub) actions() []models.EditAction {
	result := make([]models.EditAction, 0, len(s.entries))
	for _, entry := range s.entries {
		result = append(result, entry.ActionType)
	}
	return result
}

type cacheStub struct {
	values map[string][]byte
	hits   int
	sets   int
}

func newCacheStub() *cacheStub {
	return &cacheStub{values: make(map[string][]byte)}
}

func (s *cacheStub) Get(ctx context.Context, key string, dest interface{}) error {
	raw, ok := s.values[key]
	if !ok {
		return sql.ErrNoRows
	}
	s.hits++
	return json.Unmarshal(raw, dest)
}

func (s *cacheStub) Set(ctx context.Context, key string, value interface{}, ttl time.Duration) error {
	raw, err := json.Marshal(value)
	if err != nil {
		return err
	}
	s.values[key] = raw
	s.sets++
	return nil
}

func (s *cacheStub) Delete(ctx context.Context, key string) error {
	delete(s.values, key)
	return nil
}

type approvalStoreStub struct {
	workflows []*models.ApprovalWorkflow
	approvals map[string]*models.Approval
	purged    []string
}

func newApprovalStoreStub() *approvalStoreStub {
	return &approvalStoreStub{approvals: make(map[string]*models.Approval)}
}

func (s *approvalStoreStub) PurgeForFlyer(ctx context.Context, flyerID string) error {
	s.purged = append(s.purged, flyerID)
	for id, approval := range s.approvals {
		if approval.FlyerID == flyerID {
			delete(s.approvals, id)
		}
	}
	return nil
}

func (s *approvalStoreStub) CreateWorkflow(ctx context.Context, flyerID string) (*models.ApprovalWorkflow, error) {
	workflow := &models.ApprovalWorkflow{
		ID:             fmt.Sprintf("wf-%d", len(s.workflows)+1),
		FlyerID:        flyerID,
		SequenceNumber: len(s.workflows) + 1,
	}
	s.workflows = append(s.workflows, workflow)
	return workflow, nil
}

func (s *approvalStoreStub) CreateApproval(ctx context.Context, approval *models.Approval) error {
	if approval.ID == "" {
		approval.ID = fmt.Sprintf("appr-%d", len(s.approvals)+1)
	}
	clone := *approval
	s.approvals[approval.ID] = &clone
	return nil
}

func (s *approvalStoreStub) ListByFlyer(ctx context.Context, flyerID string) ([]models.Approval, error) {
	var result []models.Approval
	for _, approval := range s.approvals {
		if approval.FlyerID == flyerID {
			result = append(result, *approval)
		}
	}
	return result, nil
}

func (s *approvalStoreStub) GetByFlyerAndReviewer(ctx context.Context, flyerID, reviewerID string) (*models.Approval, error) {
	for _, approval := range s.approvals {
		if approval.FlyerID == flyerID && approval.ReviewerID == reviewerID {
			clone := *approval
			return &clone, nil
		}
	}
	return nil, sql.ErrNoRows
}

func (s *approvalStoreStub) RecordDecision(ctx context.Context, approval *models.Approval) error {
	stored, ok := s.approvals[approval.ID]
	if !ok || stored.Status != models.ApprovalStatusPending {
		return sql.ErrNoRows
	}
	stored.Status = approval.Status
	stored.PreApproved = approval.PreApproved
	stored.Comment = approval.Comment
	stored.DecidedAt = approval.DecidedAt
	return nil
}

func (s *approvalStoreStub) CountUndecidedApprovers(ctx context.Context, flyerID string) (int, error) {
	count := 0
	for _, approval := range s.approvals {
		if approval.FlyerID == flyerID &&
			approval.ReviewerRole == models.RoleApprover &&
			approval.Status == models.ApprovalStatusPending {
			count++
		}
	}
	return count, nil
}

type versionStoreStub struct {
	versions []*models.FlyerVersion
}

func (s *versionStoreStub) Create(ctx context.Context, version *models.FlyerVersion) error {
	if version.VersionNumber == 0 {
		next := 1
		for _, existing := range s.versions {
			if existing.FlyerID == version.FlyerID {
				next++
			}
		}
		version.VersionNumber = next
	}
	clone := *version
	s.versions = append(s.versions, &clone)
	return nil
}

func (s *versionStoreStub) ListByFlyer(ctx context.Context, flyerID string) ([]models.FlyerVersion, error) {
	var result []models.FlyerVersion
	for _, version := range s.versions {
		if version.FlyerID == flyerID {
			result = append(result, *version)
		}
	}
	return result, nil
}

type reviewerStoreStub struct {
	reviewers []models.Reviewer
}

func (s *reviewerStoreStub) ListReviewers(ctx context.Context, roles ...models.UserRole) ([]models.Reviewer, error) {
	allowed := make(map[models.UserRole]struct{}, len(roles))
	for _, role := range roles {
		allowed[role] = struct{}{}
	}
	var result []models.Reviewer
	for _, reviewer := range s.reviewers {
		if _, ok := allowed[reviewer.Role]; ok {
			result = append(result, reviewer)
		}
	}
	return result, nil
}

type erpStub struct {
	findings    []models.ProductValidationError
	err         error
	actions     []models.Action
	gotActionID int64
	gotProducts []models.Product
}

func (s *erpStub) ValidateFlyerProducts(ctx context.Context, actionID int64, products []models.Product) ([]models.ProductValidationError, error) {
	s.gotActionID = actionID
	s.gotProducts = products
	return s.findings, s.err
}

func (s *erpStub) ListActions(ctx context.Context) ([]models.Action, error) {
	return s.actions, nil
}

type rendererStub struct {
	rendered *pdf.Document
	err      error
}

func (s *rendererStub) Render(doc *pdf.Document) ([]byte, error) {
	s.rendered = doc
	if s.err != nil {
		return nil, s.err
	}
	return []byte("%PDF-1.4 stub"), nil
}

type queueStub struct {
	enqueued []jobs.Job
	err      error
}

func (s *queueStub) Enqueue(job jobs.Job) error {
	if s.err != nil {
		return s.err
	}
	s.enqueued = append(s.enqueued, job)
	return nil
}

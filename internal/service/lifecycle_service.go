package service

import (
	"context"
	"database/sql"
	"encoding/json"
	"errors"
	"fmt"
	"sort"
	"strings"
	"time"

	"github.com/go-playground/validator/v10"
	"github.com/google/uuid"
	"go.uber.org/zap"

	"github.com/Vokurcak68/Flyer-app-sub000/internal/dto"
	"github.com/Vokurcak68/Flyer-app-sub000/internal/models"
	"github.com/Vokurcak68/Flyer-app-sub000/internal/notify"
	"github.com/Vokurcak68/Flyer-app-sub000/internal/pdf"
	"github.com/Vokurcak68/Flyer-app-sub000/internal/repository"
	appErrors "github.com/Vokurcak68/Flyer-app-sub000/pkg/errors"
	"github.com/Vokurcak68/Flyer-app-sub000/pkg/jobs"
)

// JobTypeFlyerSubmitted tags reviewer notification jobs on the mail queue.
const JobTypeFlyerSubmitted = "flyer_submitted"

type approvalStore interface {
	PurgeForFlyer(ctx context.Context, flyerID string) error
	CreateWorkflow(ctx context.Context, flyerID string) (*models.ApprovalWorkflow, error)
	CreateApproval(ctx context.Context, approval *models.Approval) error
	ListByFlyer(ctx context.Context, flyerID string) ([]models.Approval, error)
	GetByFlyerAndReviewer(ctx context.Context, flyerID, reviewerID string) (*models.Approval, error)
	RecordDecision(ctx context.Context, approval *models.Approval) error
	CountUndecidedApprovers(ctx context.Context, flyerID string) (int, error)
}

type versionStore interface {
	Create(ctx context.Context, version *models.FlyerVersion) error
	ListByFlyer(ctx context.Context, flyerID string) ([]models.FlyerVersion, error)
}

type historyLog interface {
	Append(ctx context.Context, entry *models.EditHistory) error
	ListByFlyer(ctx context.Context, flyerID string, limit int) ([]models.EditHistory, error)
}

type reviewerStore interface {
	ListReviewers(ctx context.Context, roles ...models.UserRole) ([]models.Reviewer, error)
}

type erpGateway interface {
	ValidateFlyerProducts(ctx context.Context, actionID int64, products []models.Product) ([]models.ProductValidationError, error)
	ListActions(ctx context.Context) ([]models.Action, error)
}

type documentRenderer interface {
	Render(doc *pdf.Document) ([]byte, error)
}

type jobDispatcher interface {
	Enqueue(job jobs.Job) error
}

// LifecycleService drives the flyer state machine: submission with its
// validation gates, reviewer decisions, activation, and expiry.
type LifecycleService struct {
	flyers      flyerStore
	catalog     catalogStore
	approvals   approvalStore
	versions    versionStore
	history     historyLog
	reviewers   reviewerStore
	erp         erpGateway
	renderer    documentRenderer
	mailQueue   jobDispatcher
	cache       listingCache
	metrics     *MetricsService
	validator   *validator.Validate
	approvalURL string
	logger      *zap.Logger
	now         func() time.Time
}

// LifecycleDeps bundles the collaborators of the lifecycle service.
type LifecycleDeps struct {
	Flyers      flyerStore
	Catalog     catalogStore
	Approvals   approvalStore
	Versions    versionStore
	History     historyLog
	Reviewers   reviewerStore
	ERP         erpGateway
	Renderer    documentRenderer
	MailQueue   jobDispatcher
	Cache       listingCache
	Metrics     *MetricsService
	ApprovalURL string
	Logger      *zap.Logger
	Now         func() time.Time
}

// NewLifecycleService constructs the service.
func NewLifecycleService(deps LifecycleDeps) *LifecycleService {
	if deps.Logger == nil {
		deps.Logger = zap.NewNop()
	}
	if deps.Now == nil {
		deps.Now = func() time.Time { return time.Now().UTC() }
	}
	return &LifecycleService{
		flyers:      deps.Flyers,
		catalog:     deps.Catalog,
		approvals:   deps.Approvals,
		versions:    deps.Versions,
		history:     deps.History,
		reviewers:   deps.Reviewers,
		erp:         deps.ERP,
		renderer:    deps.Renderer,
		mailQueue:   deps.MailQueue,
		cache:       deps.Cache,
		metrics:     deps.Metrics,
		validator:   validator.New(),
		approvalURL: deps.ApprovalURL,
		logger:      deps.Logger,
		now:         deps.Now,
	}
}

// Submit runs the full submission pass: precondition checks, duplicate-EAN
// scan, external product validation, version snapshot, PDF render, status
// transition, and approval fan-out. Reviewer notification is best-effort.
func (s *LifecycleService) Submit(ctx context.Context, actor *models.JWTClaims, flyerID string) (*models.Flyer, error) {
	if actor == nil {
		return nil, appErrors.ErrUnauthorized
	}
	flyer, err := s.loadFlyer(ctx, flyerID)
	if err != nil {
		return nil, err
	}
	if flyer.SupplierID != actor.UserID {
		return nil, appErrors.ErrForbidden
	}
	if !flyer.IsEditable() {
		return nil, appErrors.Clone(appErrors.ErrInvalidState, "flyer can only be submitted from draft")
	}
	if details := submitPreconditions(flyer); len(details) > 0 {
		return nil, appErrors.WithDetails(appErrors.Clone(appErrors.ErrValidation, "flyer is not ready for submission"), details)
	}

	products, err := s.orderedProducts(ctx, flyer)
	if err != nil {
		return nil, err
	}
	if err := checkDuplicateEANs(products); err != nil {
		return nil, err
	}
	findings, err := s.erp.ValidateFlyerProducts(ctx, *flyer.ActionID, products)
	if err != nil {
		return nil, appErrors.Wrap(err, appErrors.ErrInternal.Code, appErrors.ErrInternal.Status, "product validation is unavailable")
	}
	if len(findings) > 0 {
		return nil, appErrors.WithDetails(appErrors.Clone(appErrors.ErrValidation, "product validation failed"), erpDetails(findings))
	}

	if err := s.snapshot(ctx, actor, flyer); err != nil {
		return nil, err
	}
	if err := s.renderAndStorePDF(ctx, flyer); err != nil {
		return nil, err
	}

	if err := s.flyers.SetStatus(ctx, repository.StatusChange{
		FlyerID: flyer.ID,
		Status:  models.FlyerStatusPendingApproval,
	}); err != nil {
		return nil, appErrors.Wrap(err, appErrors.ErrInternal.Code, appErrors.ErrInternal.Status, "failed to submit flyer")
	}
	flyer.Status = models.FlyerStatusPendingApproval
	flyer.RejectionReason = nil

	if err := s.fanOutApprovals(ctx, actor, flyer); err != nil {
		return nil, err
	}
	s.logEdit(ctx, flyer.ID, actor.UserID, models.EditActionSubmit, nil)
	return flyer, nil
}

func submitPreconditions(flyer *models.Flyer) []appErrors.ValidationDetail {
	var details []appErrors.ValidationDetail
	if flyer.ActionID == nil || flyer.ActionName == nil {
		details = append(details, appErrors.ValidationDetail{Field: "action", Message: "an action must be assigned before submission"})
	}
	if flyer.ValidFrom == nil {
		details = append(details, appErrors.ValidationDetail{Field: "validFrom", Message: "validity start date must be set"})
	}
	if flyer.ValidTo == nil {
		details = append(details, appErrors.ValidationDetail{Field: "validTo", Message: "validity end date must be set"})
	}
	if len(flyer.Pages) == 0 {
		details = append(details, appErrors.ValidationDetail{Field: "pages", Message: "flyer must contain at least one page"})
	}
	return details
}

// orderedProducts resolves the flyer's distinct products in page/slot order.
func (s *LifecycleService) orderedProducts(ctx context.Context, flyer *models.Flyer) ([]models.Product, error) {
	ids := orderedProductIDs(flyer)
	loaded, err := s.catalog.ProductsByIDs(ctx, ids)
	if err != nil {
		return nil, appErrors.Wrap(err, appErrors.ErrInternal.Code, appErrors.ErrInternal.Status, "failed to load flyer products")
	}
	products := make([]models.Product, 0, len(ids))
	for _, id := range ids {
		if product, ok := loaded[id]; ok {
			products = append(products, product)
		}
	}
	return products, nil
}

func orderedProductIDs(flyer *models.Flyer) []string {
	pages := make([]models.Page, len(flyer.Pages))
	copy(pages, flyer.Pages)
	sort.Slice(pages, func(i, j int) bool { return pages[i].PageNumber < pages[j].PageNumber })

	seen := make(map[string]struct{})
	var ids []string
	for i := range pages {
		slots := make([]models.Slot, len(pages[i].Slots))
		copy(slots, pages[i].Slots)
		sort.Slice(slots, func(a, b int) bool { return slots[a].Position < slots[b].Position })
		for _, slot := range slots {
			if slot.SlotType != models.SlotTypeProduct || slot.ProductID == nil {
				continue
			}
			if _, ok := seen[*slot.ProductID]; ok {
				continue
			}
			seen[*slot.ProductID] = struct{}{}
			ids = append(ids, *slot.ProductID)
		}
	}
	return ids
}

// checkDuplicateEANs rejects the first EAN collision found in scan order,
// naming both conflicting products.
func checkDuplicateEANs(products []models.Product) error {
	seen := make(map[string]models.Product, len(products))
	for _, product := range products {
		if product.EAN == "" {
			continue
		}
		if first, ok := seen[product.EAN]; ok {
			return appErrors.WithDetails(
				appErrors.Clone(appErrors.ErrValidation, fmt.Sprintf("products %q and %q share EAN %s", first.Name, product.Name, product.EAN)),
				[]appErrors.ValidationDetail{
					{ProductID: first.ID, ProductName: first.Name, EAN: first.EAN, Message: "duplicate EAN"},
					{ProductID: product.ID, ProductName: product.Name, EAN: product.EAN, Message: "duplicate EAN"},
				})
		}
		seen[product.EAN] = product
	}
	return nil
}

func erpDetails(findings []models.ProductValidationError) []appErrors.ValidationDetail {
	details := make([]appErrors.ValidationDetail, 0, len(findings))
	for _, finding := range findings {
		details = append(details, appErrors.ValidationDetail{
			ProductID:   finding.ProductID,
			ProductName: finding.ProductName,
			EAN:         finding.EANCode,
			Message:     strings.Join(finding.Errors, "; "),
		})
	}
	return details
}

type versionPayload struct {
	Name       string        `json:"name"`
	ActionID   *int64        `json:"actionId,omitempty"`
	ActionName *string       `json:"actionName,omitempty"`
	ValidFrom  *time.Time    `json:"validFrom,omitempty"`
	ValidTo    *time.Time    `json:"validTo,omitempty"`
	Pages      []models.Page `json:"pages"`
}

func (s *LifecycleService) snapshot(ctx context.Context, actor *models.JWTClaims, flyer *models.Flyer) error {
	payload, err := json.Marshal(versionPayload{
		Name:       flyer.Name,
		ActionID:   flyer.ActionID,
		ActionName: flyer.ActionName,
		ValidFrom:  flyer.ValidFrom,
		ValidTo:    flyer.ValidTo,
		Pages:      flyer.Pages,
	})
	if err != nil {
		return appErrors.Wrap(err, appErrors.ErrInternal.Code, appErrors.ErrInternal.Status, "failed to encode version snapshot")
	}
	version := &models.FlyerVersion{
		FlyerID:     flyer.ID,
		Payload:     payload,
		AuthorID:    actor.UserID,
		Description: "Submitted for verification",
		CreatedAt:   s.now(),
	}
	if err := s.versions.Create(ctx, version); err != nil {
		return appErrors.Wrap(err, appErrors.ErrInternal.Code, appErrors.ErrInternal.Status, "failed to create version snapshot")
	}
	return nil
}

func (s *LifecycleService) renderAndStorePDF(ctx context.Context, flyer *models.Flyer) error {
	doc, err := s.buildDocument(ctx, flyer)
	if err != nil {
		return err
	}
	started := time.Now()
	data, err := s.renderer.Render(doc)
	if err != nil {
		return appErrors.Wrap(err, appErrors.ErrInternal.Code, appErrors.ErrInternal.Status, "failed to render flyer pdf")
	}
	s.metrics.ObserveRender(time.Since(started))
	if err := s.flyers.SavePDF(ctx, flyer.ID, data, "application/pdf"); err != nil {
		return appErrors.Wrap(err, appErrors.ErrInternal.Code, appErrors.ErrInternal.Status, "failed to store flyer pdf")
	}
	return nil
}

// buildDocument resolves the flyer graph into the renderer's input, this
// time including image binaries.
func (s *LifecycleService) buildDocument(ctx context.Context, flyer *models.Flyer) (*pdf.Document, error) {
	products, err := s.catalog.ProductImagesByIDs(ctx, flyer.ProductIDs())
	if err != nil {
		return nil, appErrors.Wrap(err, appErrors.ErrInternal.Code, appErrors.ErrInternal.Status, "failed to load product images")
	}
	promos, err := s.catalog.PromoImagesByIDs(ctx, collectPromoIDs(flyer))
	if err != nil {
		return nil, appErrors.Wrap(err, appErrors.ErrInternal.Code, appErrors.ErrInternal.Status, "failed to load promo images")
	}

	doc := &pdf.Document{
		Name:      flyer.Name,
		ValidFrom: flyer.ValidFrom,
		ValidTo:   flyer.ValidTo,
		Pages:     make([]pdf.Page, 0, len(flyer.Pages)),
	}
	pages := make([]models.Page, len(flyer.Pages))
	copy(pages, flyer.Pages)
	sort.Slice(pages, func(i, j int) bool { return pages[i].PageNumber < pages[j].PageNumber })

	for i := range pages {
		page := pdf.Page{PageNumber: pages[i].PageNumber}
		if pages[i].FooterPromoID != nil {
			if promo, ok := promos[*pages[i].FooterPromoID]; ok {
				page.FooterPromo = &pdf.Promo{Name: promo.Name, Size: promo.Size, FillDate: promo.FillDate, Image: promo.Image}
			}
		}
		slots := make([]models.Slot, len(pages[i].Slots))
		copy(slots, pages[i].Slots)
		sort.Slice(slots, func(a, b int) bool { return slots[a].Position < slots[b].Position })
		for _, slot := range slots {
			resolved := pdf.Slot{Position: slot.Position}
			switch {
			case slot.SlotType == models.SlotTypeProduct && slot.ProductID != nil:
				if product, ok := products[*slot.ProductID]; ok {
					resolved.Product = &pdf.Product{
						Name:          product.Name,
						Price:         product.Price,
						OriginalPrice: product.OriginalPrice,
						Image:         product.Image,
					}
				}
			case slot.SlotType == models.SlotTypePromo && slot.PromoID != nil:
				if promo, ok := promos[*slot.PromoID]; ok {
					resolved.Promo = &pdf.Promo{Name: promo.Name, Size: promo.Size, FillDate: promo.FillDate, Image: promo.Image}
				}
			default:
				continue
			}
			page.Slots = append(page.Slots, resolved)
		}
		doc.Pages = append(doc.Pages, page)
	}
	return doc, nil
}

// fanOutApprovals rebuilds the approval workflow and notifies every reviewer.
// A failed notification for one reviewer never aborts the others.
func (s *LifecycleService) fanOutApprovals(ctx context.Context, actor *models.JWTClaims, flyer *models.Flyer) error {
	if err := s.approvals.PurgeForFlyer(ctx, flyer.ID); err != nil {
		return appErrors.Wrap(err, appErrors.ErrInternal.Code, appErrors.ErrInternal.Status, "failed to reset approval workflow")
	}
	workflow, err := s.approvals.CreateWorkflow(ctx, flyer.ID)
	if err != nil {
		return appErrors.Wrap(err, appErrors.ErrInternal.Code, appErrors.ErrInternal.Status, "failed to create approval workflow")
	}
	reviewers, err := s.reviewers.ListReviewers(ctx, models.RoleApprover, models.RolePreApprover)
	if err != nil {
		return appErrors.Wrap(err, appErrors.ErrInternal.Code, appErrors.ErrInternal.Status, "failed to list reviewers")
	}

	for _, reviewer := range reviewers {
		approval := &models.Approval{
			WorkflowID:   workflow.ID,
			FlyerID:      flyer.ID,
			ReviewerID:   reviewer.ID,
			ReviewerRole: reviewer.Role,
			Status:       models.ApprovalStatusPending,
			CreatedAt:    s.now(),
		}
		if err := s.approvals.CreateApproval(ctx, approval); err != nil {
			return appErrors.Wrap(err, appErrors.ErrInternal.Code, appErrors.ErrInternal.Status, "failed to create approval")
		}
		s.notifyReviewer(reviewer, flyer, actor.FullName)
	}
	return nil
}

func (s *LifecycleService) notifyReviewer(reviewer models.Reviewer, flyer *models.Flyer, supplierName string) {
	if s.mailQueue == nil {
		return
	}
	job := jobs.Job{
		ID:   uuid.NewString(),
		Type: JobTypeFlyerSubmitted,
		Payload: notify.SubmittedMail{
			ReviewerEmail: reviewer.Email,
			ReviewerName:  reviewer.FullName,
			FlyerName:     flyer.Name,
			SupplierName:  supplierName,
			ApprovalURL:   fmt.Sprintf("%s/%s", strings.TrimRight(s.approvalURL, "/"), flyer.ID),
			IsPreApproval: reviewer.Role == models.RolePreApprover,
		},
	}
	if err := s.mailQueue.Enqueue(job); err != nil {
		s.logger.Warn("failed to enqueue reviewer notification",
			zap.String("reviewer", reviewer.Email),
			zap.String("flyer_id", flyer.ID),
			zap.Error(err))
	}
}

// Decide records one reviewer verdict and advances the flyer when the
// workflow concludes: any rejection moves it to rejected, approval by every
// full approver activates it.
func (s *LifecycleService) Decide(ctx context.Context, actor *models.JWTClaims, flyerID string, req dto.DecisionRequest) (*models.Approval, error) {
	if actor == nil {
		return nil, appErrors.ErrUnauthorized
	}
	if err := s.validator.Struct(req); err != nil {
		return nil, appErrors.Wrap(err, appErrors.ErrValidation.Code, appErrors.ErrValidation.Status, "invalid decision payload")
	}
	flyer, err := s.loadFlyer(ctx, flyerID)
	if err != nil {
		return nil, err
	}
	if flyer.Status != models.FlyerStatusPendingApproval {
		return nil, appErrors.Clone(appErrors.ErrInvalidState, "flyer is not awaiting approval")
	}
	approval, err := s.approvals.GetByFlyerAndReviewer(ctx, flyerID, actor.UserID)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, appErrors.Clone(appErrors.ErrForbidden, "no approval is assigned to you for this flyer")
		}
		return nil, appErrors.Wrap(err, appErrors.ErrInternal.Code, appErrors.ErrInternal.Status, "failed to load approval")
	}
	if approval.Status != models.ApprovalStatusPending {
		return nil, appErrors.Clone(appErrors.ErrConflict, "decision already recorded")
	}

	decidedAt := s.now()
	approval.DecidedAt = &decidedAt
	if req.Comment != "" {
		comment := req.Comment
		approval.Comment = &comment
	}

	switch req.Decision {
	case "pre_approve":
		if approval.ReviewerRole != models.RolePreApprover {
			return nil, appErrors.Clone(appErrors.ErrForbidden, "only pre-approvers may pre-approve")
		}
		pre := true
		approval.Status = models.ApprovalStatusApproved
		approval.PreApproved = &pre
	case "approve":
		if approval.ReviewerRole != models.RoleApprover {
			return nil, appErrors.Clone(appErrors.ErrForbidden, "only approvers may give final approval")
		}
		approval.Status = models.ApprovalStatusApproved
	case "reject":
		approval.Status = models.ApprovalStatusRejected
	default:
		return nil, appErrors.Clone(appErrors.ErrValidation, "unknown decision")
	}

	if err := s.approvals.RecordDecision(ctx, approval); err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, appErrors.Clone(appErrors.ErrConflict, "decision already recorded")
		}
		return nil, appErrors.Wrap(err, appErrors.ErrInternal.Code, appErrors.ErrInternal.Status, "failed to record decision")
	}

	switch approval.Status {
	case models.ApprovalStatusRejected:
		if err := s.markRejected(ctx, flyer, approval.Comment); err != nil {
			return nil, err
		}
	case models.ApprovalStatusApproved:
		if approval.PreApproved == nil {
			if err := s.maybeApprove(ctx, flyer); err != nil {
				return nil, err
			}
		}
	}
	return approval, nil
}

func (s *LifecycleService) markRejected(ctx context.Context, flyer *models.Flyer, comment *string) error {
	if err := s.flyers.SetStatus(ctx, repository.StatusChange{
		FlyerID:         flyer.ID,
		Status:          models.FlyerStatusRejected,
		RejectionReason: comment,
	}); err != nil {
		return appErrors.Wrap(err, appErrors.ErrInternal.Code, appErrors.ErrInternal.Status, "failed to reject flyer")
	}
	flyer.Status = models.FlyerStatusRejected
	flyer.RejectionReason = comment
	return nil
}

// maybeApprove activates the flyer once no full approver is still undecided.
func (s *LifecycleService) maybeApprove(ctx context.Context, flyer *models.Flyer) error {
	pending, err := s.approvals.CountUndecidedApprovers(ctx, flyer.ID)
	if err != nil {
		return appErrors.Wrap(err, appErrors.ErrInternal.Code, appErrors.ErrInternal.Status, "failed to count pending approvers")
	}
	if pending > 0 {
		return nil
	}
	if err := s.flyers.SetStatus(ctx, repository.StatusChange{
		FlyerID: flyer.ID,
		Status:  models.FlyerStatusApproved,
	}); err != nil {
		return appErrors.Wrap(err, appErrors.ErrInternal.Code, appErrors.ErrInternal.Status, "failed to approve flyer")
	}
	flyer.Status = models.FlyerStatusApproved
	return s.Activate(ctx, flyer)
}

// Activate publishes an approved flyer.
func (s *LifecycleService) Activate(ctx context.Context, flyer *models.Flyer) error {
	if flyer.Status != models.FlyerStatusApproved {
		return appErrors.Clone(appErrors.ErrInvalidState, "only approved flyers can be activated")
	}
	publishedAt := s.now()
	if err := s.flyers.SetStatus(ctx, repository.StatusChange{
		FlyerID:     flyer.ID,
		Status:      models.FlyerStatusActive,
		PublishedAt: &publishedAt,
	}); err != nil {
		return appErrors.Wrap(err, appErrors.ErrInternal.Code, appErrors.ErrInternal.Status, "failed to activate flyer")
	}
	flyer.Status = models.FlyerStatusActive
	flyer.PublishedAt = &publishedAt
	s.invalidateActiveCache(ctx)
	return nil
}

// Expire manually ends an active flyer. The validity end is pulled back to
// the last millisecond of yesterday so window queries exclude it at once.
func (s *LifecycleService) Expire(ctx context.Context, actor *models.JWTClaims, flyerID string) (*models.Flyer, error) {
	if actor == nil {
		return nil, appErrors.ErrUnauthorized
	}
	flyer, err := s.loadFlyer(ctx, flyerID)
	if err != nil {
		return nil, err
	}
	if actor.UserID != flyer.SupplierID && actor.Role != models.RoleAdmin {
		return nil, appErrors.ErrForbidden
	}
	if flyer.Status != models.FlyerStatusActive {
		return nil, appErrors.Clone(appErrors.ErrInvalidState, "only active flyers can be expired")
	}

	endOfYesterday := s.now().Truncate(24 * time.Hour).Add(-time.Millisecond)
	if err := s.flyers.SetStatus(ctx, repository.StatusChange{
		FlyerID: flyer.ID,
		Status:  models.FlyerStatusExpired,
		ValidTo: &endOfYesterday,
	}); err != nil {
		return nil, appErrors.Wrap(err, appErrors.ErrInternal.Code, appErrors.ErrInternal.Status, "failed to expire flyer")
	}
	flyer.Status = models.FlyerStatusExpired
	flyer.ValidTo = &endOfYesterday
	s.invalidateActiveCache(ctx)
	s.logEdit(ctx, flyer.ID, actor.UserID, models.EditActionExpire, nil)
	return flyer, nil
}

// Approvals lists the reviewer rows of a flyer.
func (s *LifecycleService) Approvals(ctx context.Context, actor *models.JWTClaims, flyerID string) ([]models.Approval, error) {
	flyer, err := s.loadFlyer(ctx, flyerID)
	if err != nil {
		return nil, err
	}
	if !canView(actor, flyer) {
		return nil, appErrors.ErrForbidden
	}
	approvals, err := s.approvals.ListByFlyer(ctx, flyerID)
	if err != nil {
		return nil, appErrors.Wrap(err, appErrors.ErrInternal.Code, appErrors.ErrInternal.Status, "failed to list approvals")
	}
	return approvals, nil
}

// Versions lists the flyer's immutable snapshots, newest first.
func (s *LifecycleService) Versions(ctx context.Context, actor *models.JWTClaims, flyerID string) ([]models.FlyerVersion, error) {
	flyer, err := s.loadFlyer(ctx, flyerID)
	if err != nil {
		return nil, err
	}
	if !canView(actor, flyer) {
		return nil, appErrors.ErrForbidden
	}
	versions, err := s.versions.ListByFlyer(ctx, flyerID)
	if err != nil {
		return nil, appErrors.Wrap(err, appErrors.ErrInternal.Code, appErrors.ErrInternal.Status, "failed to list versions")
	}
	return versions, nil
}

// History lists the edit log, newest first.
func (s *LifecycleService) History(ctx context.Context, actor *models.JWTClaims, flyerID string, limit int) ([]models.EditHistory, error) {
	flyer, err := s.loadFlyer(ctx, flyerID)
	if err != nil {
		return nil, err
	}
	if !canView(actor, flyer) {
		return nil, appErrors.ErrForbidden
	}
	entries, err := s.history.ListByFlyer(ctx, flyerID, limit)
	if err != nil {
		return nil, appErrors.Wrap(err, appErrors.ErrInternal.Code, appErrors.ErrInternal.Status, "failed to list edit history")
	}
	return entries, nil
}

// Actions proxies the marketing campaign list from the ERP.
func (s *LifecycleService) Actions(ctx context.Context) ([]models.Action, error) {
	actions, err := s.erp.ListActions(ctx)
	if err != nil {
		return nil, appErrors.Wrap(err, appErrors.ErrInternal.Code, appErrors.ErrInternal.Status, "failed to list actions")
	}
	return actions, nil
}

func (s *LifecycleService) loadFlyer(ctx context.Context, id string) (*models.Flyer, error) {
	flyer, err := s.flyers.GetByID(ctx, id)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, appErrors.Clone(appErrors.ErrNotFound, "flyer not found")
		}
		return nil, appErrors.Wrap(err, appErrors.ErrInternal.Code, appErrors.ErrInternal.Status, "failed to load flyer")
	}
	return flyer, nil
}

func (s *LifecycleService) invalidateActiveCache(ctx context.Context) {
	if s.cache == nil {
		return
	}
	if err := s.cache.Delete(ctx, activeFlyersCacheKey); err != nil {
		s.logger.Warn("failed to invalidate active flyer cache", zap.Error(err))
	}
}

func (s *LifecycleService) logEdit(ctx context.Context, flyerID, actorID string, action models.EditAction, details map[string]interface{}) {
	if s.history == nil {
		return
	}
	var payload []byte
	if details != nil {
		payload, _ = json.Marshal(details)
	}
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

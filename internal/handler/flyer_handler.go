package handler

import (
	"context"
	"fmt"
	"net/http"

	"github.com/gin-gonic/gin"

	"github.com/Vokurcak68/Flyer-app-sub000/internal/dto"
	"github.com/Vokurcak68/Flyer-app-sub000/internal/middleware"
	"github.com/Vokurcak68/Flyer-app-sub000/internal/models"
	appErrors "github.com/Vokurcak68/Flyer-app-sub000/pkg/errors"
	"github.com/Vokurcak68/Flyer-app-sub000/pkg/response"
)

type flyerService interface {
	Create(ctx context.Context, actor *models.JWTClaims, req dto.CreateFlyerRequest) (*models.Flyer, error)
	Get(ctx context.Context, actor *models.JWTClaims, id string) (*dto.FlyerView, error)
	ListOwn(ctx context.Context, actor *models.JWTClaims) ([]dto.FlyerSummary, error)
	ListActive(ctx context.Context) ([]dto.FlyerSummary, bool, error)
	UpdateMeta(ctx context.Context, actor *models.JWTClaims, id string, req dto.UpdateFlyerRequest) (*models.Flyer, error)
	Delete(ctx context.Context, actor *models.JWTClaims, id string) error
	AddPage(ctx context.Context, actor *models.JWTClaims, flyerID string, pageNumber int) (*models.Page, error)
	RemovePage(ctx context.Context, actor *models.JWTClaims, flyerID, pageID string) error
	AddProduct(ctx context.Context, actor *models.JWTClaims, flyerID, pageID string, position int, productID string) error
	RemoveSlot(ctx context.Context, actor *models.JWTClaims, flyerID, slotID string) error
	SwapPosition(ctx context.Context, actor *models.JWTClaims, flyerID, slotID string, newPosition int) error
	SyncPages(ctx context.Context, actor *models.JWTClaims, flyerID string, req dto.SyncPagesRequest) (*dto.FlyerView, error)
	Autosave(ctx context.Context, actor *models.JWTClaims, flyerID string, req dto.SyncPagesRequest) (int64, error)
	GetPDF(ctx context.Context, actor *models.JWTClaims, id string) ([]byte, string, error)
}

// FlyerHandler exposes REST endpoints for flyer composition and listings.
type FlyerHandler struct {
	service flyerService
}

// NewFlyerHandler constructs the handler.
func NewFlyerHandler(service flyerService) *FlyerHandler {
	return &FlyerHandler{service: service}
}

// Create godoc
// @Summary Create an empty draft flyer
// @Tags Flyers
// @Accept json
// @Produce json
// @Param payload body dto.CreateFlyerRequest true "Flyer payload"
// @Success 201 {object} response.Envelope
// @Router /flyers [post]
func (h *FlyerHandler) Create(c *gin.Context) {
	var req dto.CreateFlyerRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		response.Error(c, appErrors.Clone(appErrors.ErrValidation, "invalid flyer payload"))
		return
	}
	flyer, err := h.service.Create(c.Request.Context(), claimsFromContext(c), req)
	if err != nil {
		response.Error(c, err)
		return
	}
	response.Created(c, flyer)
}

// List godoc
// @Summary List the caller's flyers
// @Tags Flyers
// @Produce json
// @Success 200 {object} response.Envelope
// @Router /flyers [get]
func (h *FlyerHandler) List(c *gin.Context) {
	flyers, err := h.service.ListOwn(c.Request.Context(), claimsFromContext(c))
	if err != nil {
		response.Error(c, err)
		return
	}
	response.JSON(c, http.StatusOK, flyers, nil)
}

// ListActive godoc
// @Summary List all active flyers
// @Tags Flyers
// @Produce json
// @Success 200 {object} response.Envelope
// @Router /flyers/active [get]
func (h *FlyerHandler) ListActive(c *gin.Context) {
	flyers, cached, err := h.service.ListActive(c.Request.Context())
	if err != nil {
		response.Error(c, err)
		return
	}
	middleware.SetCacheHit(c, cached)
	response.JSON(c, http.StatusOK, flyers, nil, middleware.ExtractMeta(c))
}

// Get godoc
// @Summary Get flyer detail with the dense slot expansion
// @Tags Flyers
// @Produce json
// @Param id path string true "Flyer ID"
// @Success 200 {object} response.Envelope
// @Router /flyers/{id} [get]
func (h *FlyerHandler) Get(c *gin.Context) {
	view, err := h.service.Get(c.Request.Context(), claimsFromContext(c), c.Param("id"))
	if err != nil {
		response.Error(c, err)
		return
	}
	response.JSON(c, http.StatusOK, view, nil)
}

// Update godoc
// @Summary Update flyer metadata
// @Tags Flyers
// @Accept json
// @Produce json
// @Param id path string true "Flyer ID"
// @Param payload body dto.UpdateFlyerRequest true "Metadata changes"
// @Success 200 {object} response.Envelope
// @Router /flyers/{id} [put]
func (h *FlyerHandler) Update(c *gin.Context) {
	var req dto.UpdateFlyerRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		response.Error(c, appErrors.Clone(appErrors.ErrValidation, "invalid flyer payload"))
		return
	}
	flyer, err := h.service.UpdateMeta(c.Request.Context(), claimsFromContext(c), c.Param("id"), req)
	if err != nil {
		response.Error(c, err)
		return
	}
	response.JSON(c, http.StatusOK, flyer, nil)
}

// Delete godoc
// @Summary Delete a draft flyer
// @Tags Flyers
// @Param id path string true "Flyer ID"
// @Success 204
// @Router /flyers/{id} [delete]
func (h *FlyerHandler) Delete(c *gin.Context) {
	if err := h.service.Delete(c.Request.Context(), claimsFromContext(c), c.Param("id")); err != nil {
		response.Error(c, err)
		return
	}
	response.NoContent(c)
}

// AddPage godoc
// @Summary Add a page to a flyer
// @Tags Flyers
// @Accept json
// @Produce json
// @Param id path string true "Flyer ID"
// @Param payload body dto.AddPageRequest true "Page payload"
// @Success 201 {object} response.Envelope
// @Router /flyers/{id}/pages [post]
func (h *FlyerHandler) AddPage(c *gin.Context) {
	var req dto.AddPageRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		response.Error(c, appErrors.Clone(appErrors.ErrValidation, "invalid page payload"))
		return
	}
	page, err := h.service.AddPage(c.Request.Context(), claimsFromContext(c), c.Param("id"), req.PageNumber)
	if err != nil {
		response.Error(c, err)
		return
	}
	response.Created(c, page)
}

// RemovePage godoc
// @Summary Remove a page from a flyer
// @Tags Flyers
// @Param id path string true "Flyer ID"
// @Param pageID path string true "Page ID"
// @Success 204
// @Router /flyers/{id}/pages/{pageID} [delete]
func (h *FlyerHandler) RemovePage(c *gin.Context) {
	if err := h.service.RemovePage(c.Request.Context(), claimsFromContext(c), c.Param("id"), c.Param("pageID")); err != nil {
		response.Error(c, err)
		return
	}
	response.NoContent(c)
}

// AddProduct godoc
// @Summary Place a product into an empty slot
// @Tags Flyers
// @Accept json
// @Produce json
// @Param id path string true "Flyer ID"
// @Param pageID path string true "Page ID"
// @Param payload body dto.AddProductRequest true "Placement payload"
// @Success 200 {object} response.Envelope
// @Router /flyers/{id}/pages/{pageID}/products [post]
func (h *FlyerHandler) AddProduct(c *gin.Context) {
	var req dto.AddProductRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		response.Error(c, appErrors.Clone(appErrors.ErrValidation, "invalid placement payload"))
		return
	}
	if err := h.service.AddProduct(c.Request.Context(), claimsFromContext(c), c.Param("id"), c.Param("pageID"), req.Position, req.ProductID); err != nil {
		response.Error(c, err)
		return
	}
	response.JSON(c, http.StatusOK, gin.H{"placed": true}, nil)
}

// RemoveSlot godoc
// @Summary Reset a slot to empty
// @Tags Flyers
// @Param id path string true "Flyer ID"
// @Param slotID path string true "Slot ID"
// @Success 204
// @Router /flyers/{id}/slots/{slotID} [delete]
func (h *FlyerHandler) RemoveSlot(c *gin.Context) {
	if err := h.service.RemoveSlot(c.Request.Context(), claimsFromContext(c), c.Param("id"), c.Param("slotID")); err != nil {
		response.Error(c, err)
		return
	}
	response.NoContent(c)
}

// SwapPosition godoc
// @Summary Swap a slot's contents with another position on the same page
// @Tags Flyers
// @Accept json
// @Produce json
// @Param id path string true "Flyer ID"
// @Param slotID path string true "Slot ID"
// @Param payload body dto.UpdatePositionRequest true "Target position"
// @Success 200 {object} response.Envelope
// @Router /flyers/{id}/slots/{slotID}/position [put]
func (h *FlyerHandler) SwapPosition(c *gin.Context) {
	var req dto.UpdatePositionRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		response.Error(c, appErrors.Clone(appErrors.ErrValidation, "invalid position payload"))
		return
	}
	if err := h.service.SwapPosition(c.Request.Context(), claimsFromContext(c), c.Param("id"), c.Param("slotID"), req.NewPosition); err != nil {
		response.Error(c, err)
		return
	}
	response.JSON(c, http.StatusOK, gin.H{"moved": true}, nil)
}

// SyncPages godoc
// @Summary Replace the flyer's entire page set
// @Tags Flyers
// @Accept json
// @Produce json
// @Param id path string true "Flyer ID"
// @Param payload body dto.SyncPagesRequest true "Full page set"
// @Success 200 {object} response.Envelope
// @Router /flyers/{id}/pages/sync [put]
func (h *FlyerHandler) SyncPages(c *gin.Context) {
	var req dto.SyncPagesRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		response.Error(c, appErrors.Clone(appErrors.ErrValidation, "invalid pages payload"))
		return
	}
	view, err := h.service.SyncPages(c.Request.Context(), claimsFromContext(c), c.Param("id"), req)
	if err != nil {
		response.Error(c, err)
		return
	}
	response.JSON(c, http.StatusOK, view, nil)
}

// Autosave godoc
// @Summary Autosave the flyer's page set
// @Tags Flyers
// @Accept json
// @Produce json
// @Param id path string true "Flyer ID"
// @Param payload body dto.SyncPagesRequest true "Full page set"
// @Success 200 {object} response.Envelope
// @Router /flyers/{id}/autosave [put]
func (h *FlyerHandler) Autosave(c *gin.Context) {
	var req dto.SyncPagesRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		response.Error(c, appErrors.Clone(appErrors.ErrValidation, "invalid pages payload"))
		return
	}
	version, err := h.service.Autosave(c.Request.Context(), claimsFromContext(c), c.Param("id"), req)
	if err != nil {
		response.Error(c, err)
		return
	}
	response.JSON(c, http.StatusOK, gin.H{"autoSaveVersion": version}, nil)
}

// DownloadPDF godoc
// @Summary Download the generated flyer PDF
// @Tags Flyers
// @Produce application/pdf
// @Param id path string true "Flyer ID"
// @Success 200 {file} binary
// @Router /flyers/{id}/pdf [get]
func (h *FlyerHandler) DownloadPDF(c *gin.Context) {
	data, mime, err := h.service.GetPDF(c.Request.Context(), claimsFromContext(c), c.Param("id"))
	if err != nil {
		response.Error(c, err)
		return
	}
	c.Header("Content-Disposition", fmt.Sprintf("attachment; filename=%q", "flyer-"+c.Param("id")+".pdf"))
	c.Data(http.StatusOK, mime, data)
}

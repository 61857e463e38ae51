package handler

import (
	"context"
	"net/http"
	"strconv"

	"github.com/gin-gonic/gin"

	"github.com/Vokurcak68/Flyer-app-sub000/internal/dto"
	"github.com/Vokurcak68/Flyer-app-sub000/internal/models"
	appErrors "github.com/Vokurcak68/Flyer-app-sub000/pkg/errors"
	"github.com/Vokurcak68/Flyer-app-sub000/pkg/response"
)

type lifecycleService interface {
	Submit(ctx context.Context, actor *models.JWTClaims, flyerID string) (*models.Flyer, error)
	Decide(ctx context.Context, actor *models.JWTClaims, flyerID string, req dto.DecisionRequest) (*models.Approval, error)
	Expire(ctx context.Context, actor *models.JWTClaims, flyerID string) (*models.Flyer, error)
	Approvals(ctx context.Context, actor *models.JWTClaims, flyerID string) ([]models.Approval, error)
	Versions(ctx context.Context, actor *models.JWTClaims, flyerID string) ([]models.FlyerVersion, error)
	History(ctx context.Context, actor *models.JWTClaims, flyerID string, limit int) ([]models.EditHistory, error)
	Actions(ctx context.Context) ([]models.Action, error)
}

// LifecycleHandler exposes submission, review, and expiry endpoints.
type LifecycleHandler struct {
	service lifecycleService
}

// NewLifecycleHandler constructs the handler.
func NewLifecycleHandler(service lifecycleService) *LifecycleHandler {
	return &LifecycleHandler{service: service}
}

// Submit godoc
// @Summary Submit a flyer for approval
// @Tags Lifecycle
// @Produce json
// @Param id path string true "Flyer ID"
// @Success 200 {object} response.Envelope
// @Router /flyers/{id}/submit [post]
func (h *LifecycleHandler) Submit(c *gin.Context) {
	flyer, err := h.service.Submit(c.Request.Context(), claimsFromContext(c), c.Param("id"))
	if err != nil {
		response.Error(c, err)
		return
	}
	response.JSON(c, http.StatusOK, flyer, nil)
}

// Decide godoc
// @Summary Record a reviewer decision
// @Tags Lifecycle
// @Accept json
// @Produce json
// @Param id path string true "Flyer ID"
// @Param payload body dto.DecisionRequest true "Decision"
// @Success 200 {object} response.Envelope
// @Router /flyers/{id}/approvals/decision [post]
func (h *LifecycleHandler) Decide(c *gin.Context) {
	var req dto.DecisionRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		response.Error(c, appErrors.Clone(appErrors.ErrValidation, "invalid decision payload"))
		return
	}
	approval, err := h.service.Decide(c.Request.Context(), claimsFromContext(c), c.Param("id"), req)
	if err != nil {
		response.Error(c, err)
		return
	}
	response.JSON(c, http.StatusOK, approval, nil)
}

// Expire godoc
// @Summary Manually expire an active flyer
// @Tags Lifecycle
// @Produce json
// @Param id path string true "Flyer ID"
// @Success 200 {object} response.Envelope
// @Router /flyers/{id}/expire [post]
func (h *LifecycleHandler) Expire(c *gin.Context) {
	flyer, err := h.service.Expire(c.Request.Context(), claimsFromContext(c), c.Param("id"))
	if err != nil {
		response.Error(c, err)
		return
	}
	response.JSON(c, http.StatusOK, flyer, nil)
}

// Approvals godoc
// @Summary List a flyer's approval rows
// @Tags Lifecycle
// @Produce json
// @Param id path string true "Flyer ID"
// @Success 200 {object} response.Envelope
// @Router /flyers/{id}/approvals [get]
func (h *LifecycleHandler) Approvals(c *gin.Context) {
	approvals, err := h.service.Approvals(c.Request.Context(), claimsFromContext(c), c.Param("id"))
	if err != nil {
		response.Error(c, err)
		return
	}
	response.JSON(c, http.StatusOK, approvals, nil)
}

// Versions godoc
// @Summary List a flyer's version snapshots
// @Tags Lifecycle
// @Produce json
// @Param id path string true "Flyer ID"
// @Success 200 {object} response.Envelope
// @Router /flyers/{id}/versions [get]
func (h *LifecycleHandler) Versions(c *gin.Context) {
	versions, err := h.service.Versions(c.Request.Context(), claimsFromContext(c), c.Param("id"))
	if err != nil {
		response.Error(c, err)
		return
	}
	response.JSON(c, http.StatusOK, versions, nil)
}

// History godoc
// @Summary List a flyer's edit history
// @Tags Lifecycle
// @Produce json
// @Param id path string true "Flyer ID"
// @Param limit query int false "Maximum entries"
// @Success 200 {object} response.Envelope
// @Router /flyers/{id}/history [get]
func (h *LifecycleHandler) History(c *gin.Context) {
	limit, _ := strconv.Atoi(c.DefaultQuery("limit", "100"))
	entries, err := h.service.History(c.Request.Context(), claimsFromContext(c), c.Param("id"), limit)
	if err != nil {
		response.Error(c, err)
		return
	}
	response.JSON(c, http.StatusOK, entries, nil)
}

// Actions godoc
// @Summary List marketing actions from the ERP
// @Tags Actions
// @Produce json
// @Success 200 {object} response.Envelope
// @Router /actions [get]
func (h *LifecycleHandler) Actions(c *gin.Context) {
	actions, err := h.service.Actions(c.Request.Context())
	if err != nil {
		response.Error(c, err)
		return
	}
	response.JSON(c, http.StatusOK, actions, nil)
}

package handler

import (
	"bytes"
	"context"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/gin-gonic/gin"
	"github.com/stretchr/testify/require"

	"github.com/Vokurcak68/Flyer-app-sub000/internal/dto"
	"github.com/Vokurcak68/Flyer-app-sub000/internal/middleware"
	"github.com/Vokurcak68/Flyer-app-sub000/internal/models"
	appErrors "github.com/Vokurcak68/Flyer-app-sub000/pkg/errors"
	"github.com/Vokurcak68/Flyer-app-sub000/pkg/response"
)

type flyerServiceMock struct {
	createResp  *models.Flyer
	getResp     *dto.FlyerView
	getErr      error
	listActive  []dto.FlyerSummary
	cached      bool
	autosaveVer int64
	pdfData     []byte
	pdfErr      error
}

func (m *flyerServiceMock) Create(ctx context.Context, actor *models.JWTClaims, req dto.CreateFlyerRequest) (*models.Flyer, error) {
	return m.createResp, nil
}

func (m *flyerServiceMock) Get(ctx context.Context, actor *models.JWTClaims, id string) (*dto.FlyerView, error) {
	if m.getErr != nil {
		return nil, m.getErr
	}
	return m.getResp, nil
}

func (m *flyerServiceMock) ListOwn(ctx context.Context, actor *models.JWTClaims) ([]dto.FlyerSummary, error) {
	return nil, nil
}

func (m *flyerServiceMock) ListActive(ctx context.Context) ([]dto.FlyerSummary, bool, error) {
	return m.listActive, m.cached, nil
}

func (m *flyerServiceMock) UpdateMeta(ctx context.Context, actor *models.JWTClaims, id string, req dto.UpdateFlyerRequest) (*models.Flyer, error) {
	return m.createResp, nil
}

func (m *flyerServiceMock) Delete(ctx context.Context, actor *models.JWTClaims, id string) error {
	return nil
}

func (m *flyerServiceMock) AddPage(ctx context.Context, actor *models.JWTClaims, flyerID string, pageNumber int) (*models.Page, error) {
	return &models.Page{PageNumber: pageNumber}, nil
}

func (m *flyerServiceMock) RemovePage(ctx context.Context, actor *models.JWTClaims, flyerID, pageID string) error {
	return nil
}

func (m *flyerServiceMock) AddProduct(ctx context.Context, actor *models.JWTClaims, flyerID, pageID string, position int, productID string) error {
	return nil
}

func (m *flyerServiceMock) RemoveSlot(ctx context.Context, actor *models.JWTClaims, flyerID, slotID string) error {
	return nil
}

func (m *flyerServiceMock) SwapPosition(ctx context.Context, actor *models.JWTClaims, flyerID, slotID string, newPosition int) error {
	return nil
}

func (m *flyerServiceMock) SyncPages(ctx context.Context, actor *models.JWTClaims, flyerID string, req dto.SyncPagesRequest) (*dto.FlyerView, error) {
	return m.getResp, nil
}

func (m *flyerServiceMock) Autosave(ctx context.Context, actor *models.JWTClaims, flyerID string, req dto.SyncPagesRequest) (int64, error) {
	return m.autosaveVer, nil
}

func (m *flyerServiceMock) GetPDF(ctx context.Context, actor *models.JWTClaims, id string) ([]byte, string, error) {
	if m.pdfErr != nil {
		return nil, "", m.pdfErr
	}
	return m.pdfData, "application/pdf", nil
}

func testContext(t *testing.T, method, path string, body []byte) (*gin.Context, *httptest.ResponseRecorder) {
	t.Helper()
	gin.SetMode(gin.TestMode)
	w := httptest.NewRecorder()
	c, _ := gin.CreateTestContext(w)
	req, err := http.NewRequest(method, path, bytes.NewReader(body))
	require.NoError(t, err)
	req.Header.Set("Content-Type", "application/json")
	c.Request = req
	c.Set(middleware.ContextUserKey, &models.JWTClaims{UserID: "sup-1", Role: models.RoleSupplier})
	return c, w
}

func TestFlyerHandlerCreate(t *testing.T) {
	handler := NewFlyerHandler(&flyerServiceMock{
		createResp: &models.Flyer{ID: "f1", Name: "Summer Sale", Status: models.FlyerStatusDraft},
	})
	body, _ := json.Marshal(dto.CreateFlyerRequest{Name: "Summer Sale"})
	c, w := testContext(t, http.MethodPost, "/flyers", body)

	handler.Create(c)
	require.Equal(t, http.StatusCreated, w.Code)

	var envelope response.Envelope
	require.NoError(t, json.Unmarshal(w.Body.Bytes(), &envelope))
	require.Nil(t, envelope.Error)
	require.NotNil(t, envelope.Data)
}

func TestFlyerHandlerCreateInvalidBody(t *testing.T) {
	handler := NewFlyerHandler(&flyerServiceMock{})
	c, w := testContext(t, http.MethodPost, "/flyers", []byte(`{"name":""}`))

	handler.Create(c)
	require.Equal(t, http.StatusBadRequest, w.Code)
}

func TestFlyerHandlerGetForbidden(t *testing.T) {
	handler := NewFlyerHandler(&flyerServiceMock{getErr: appErrors.ErrForbidden})
	c, w := testContext(t, http.MethodGet, "/flyers/f1", nil)
	c.Params = gin.Params{{Key: "id", Value: "f1"}}

	handler.Get(c)
	require.Equal(t, http.StatusForbidden, w.Code)

	var envelope response.Envelope
	require.NoError(t, json.Unmarshal(w.Body.Bytes(), &envelope))
	require.NotNil(t, envelope.Error)
	require.Equal(t, appErrors.ErrForbidden.Code, envelope.Error.Code)
}

func TestFlyerHandlerListActiveReportsCacheHit(t *testing.T) {
	handler := NewFlyerHandler(&flyerServiceMock{
		listActive: []dto.FlyerSummary{{ID: "f1", Name: "Summer Sale"}},
		cached:     true,
	})
	c, w := testContext(t, http.MethodGet, "/flyers/active", nil)

	handler.ListActive(c)
	require.Equal(t, http.StatusOK, w.Code)

	var envelope response.Envelope
	require.NoError(t, json.Unmarshal(w.Body.Bytes(), &envelope))
	require.Equal(t, true, envelope.Meta["cache_hit"])
}

func TestFlyerHandlerAutosave(t *testing.T) {
	handler := NewFlyerHandler(&flyerServiceMock{autosaveVer: 12})
	body, _ := json.Marshal(dto.SyncPagesRequest{Pages: []dto.PageInput{{PageNumber: 1}}})
	c, w := testContext(t, http.MethodPut, "/flyers/f1/autosave", body)
	c.Params = gin.Params{{Key: "id", Value: "f1"}}

	handler.Autosave(c)
	require.Equal(t, http.StatusOK, w.Code)

	var envelope response.Envelope
	require.NoError(t, json.Unmarshal(w.Body.Bytes(), &envelope))
	data, ok := envelope.Data.(map[string]interface{})
	require.True(t, ok)
	require.EqualValues(t, 12, data["autoSaveVersion"])
}

func TestFlyerHandlerDownloadPDF(t *testing.T) {
	handler := NewFlyerHandler(&flyerServiceMock{pdfData: []byte("%PDF-1.4")})
	c, w := testContext(t, http.MethodGet, "/flyers/f1/pdf", nil)
	c.Params = gin.Params{{Key: "id", Value: "f1"}}

	handler.DownloadPDF(c)
	require.Equal(t, http.StatusOK, w.Code)
	require.Equal(t, "application/pdf", w.Header().Get("Content-Type"))
	require.Contains(t, w.Header().Get("Content-Disposition"), "flyer-f1.pdf")
	require.Equal(t, "%PDF-1.4", w.Body.String())
}

func TestFlyerHandlerDownloadPDFMissing(t *testing.T) {
	handler := NewFlyerHandler(&flyerServiceMock{pdfErr: appErrors.Clone(appErrors.ErrNotFound, "flyer has no generated pdf")})
	c, w := testContext(t, http.MethodGet, "/flyers/f1/pdf", nil)
	c.Params = gin.Params{{Key: "id", Value: "f1"}}

	handler.DownloadPDF(c)
	require.Equal(t, http.StatusNotFound, w.Code)
}

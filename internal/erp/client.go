// Package erp talks to the external product-truth system. Flyer submission
// sends the referenced products there for price and EAN consistency checks;
// the actions list is proxied from the same system.
package erp

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"net/http"
	"time"

	"go.uber.org/zap"

	"github.com/Vokurcak68/Flyer-app-sub000/internal/models"
	"github.com/Vokurcak68/Flyer-app-sub000/pkg/config"
)

// Client is an HTTP client for the ERP gateway.
type Client struct {
	baseURL string
	apiKey  string
	http    *http.Client
	logger  *zap.Logger
}

// NewClient constructs the client from configuration.
func NewClient(cfg config.ERPConfig, logger *zap.Logger) *Client {
	if logger == nil {
		logger = zap.NewNop()
	}
	timeout := cfg.Timeout
	if timeout <= 0 {
		timeout = 15 * time.Second
	}
	return &Client{
		baseURL: cfg.BaseURL,
		apiKey:  cfg.APIKey,
		http:    &http.Client{Timeout: timeout},
		logger:  logger,
	}
}

type validateRequest struct {
	ActionID int64             `json:"actionId"`
	Products []validateProduct `json:"products"`
}

type validateProduct struct {
	ID    string  `json:"id"`
	Name  string  `json:"name"`
	EAN   string  `json:"ean"`
	Price float64 `json:"price"`
}

type validateResponse struct {
	Errors []models.ProductValidationError `json:"errors"`
}

// ValidateFlyerProducts sends the distinct referenced products plus the
// action id for consistency checking. Returned validation errors are
// business findings, not transport failures.
func (c *Client) ValidateFlyerProducts(ctx context.Context, actionID int64, products []models.Product) ([]models.ProductValidationError, error) {
	payload := validateRequest{ActionID: actionID, Products: make([]validateProduct, 0, len(products))}
	for _, p := range products {
		payload.Products = append(payload.Products, validateProduct{
			ID:    p.ID,
			Name:  p.Name,
			EAN:   p.EAN,
			Price: p.Price,
		})
	}

	var result validateResponse
	if err := c.do(ctx, http.MethodPost, "/api/flyer-products/validate", payload, &result); err != nil {
		return nil, err
	}
	return result.Errors, nil
}

type actionsResponse struct {
	Actions []models.Action `json:"actions"`
}

// ListActions returns the marketing campaigns a flyer can be attached to.
func (c *Client) ListActions(ctx context.Context) ([]models.Action, error) {
	var result actionsResponse
	if err := c.do(ctx, http.MethodGet, "/api/actions", nil, &result); err != nil {
		return nil, err
	}
	return result.Actions, nil
}

func (c *Client) do(ctx context.Context, method, path string, body, dest interface{}) error {
	var reader *bytes.Reader
	if body != nil {
		encoded, err := json.Marshal(body)
		if err != nil {
			return fmt.Errorf("encode erp request: %w", err)
		}
		reader = bytes.NewReader(encoded)
	} else {
		reader = bytes.NewReader(nil)
	}

	req, err := http.NewRequestWithContext(ctx, method, c.baseURL+path, reader)
	if err != nil {
		return fmt.Errorf("build erp request: %w", err)
	}
	req.Header.Set("Content-Type", "application/json")
	req.Header.Set("Accept", "application/json")
	if c.apiKey != "" {
		req.Header.Set("X-API-Key", c.apiKey)
	}

	resp, err := c.http.Do(req)
	if err != nil {
		return fmt.Errorf("erp request %s %s: %w", method, path, err)
	}
	defer resp.Body.Close()

	if resp.StatusCode < 200 || resp.StatusCode >= 300 {
		c.logger.Warn("erp returned non-2xx",
			zap.String("path", path),
			zap.Int("status", resp.StatusCode))
		return fmt.Errorf("erp request %s %s: status %d", method, path, resp.StatusCode)
	}
	if dest == nil {
		return nil
	}
	if err := json.NewDecoder(resp.Body).Decode(dest); err != nil {
		return fmt.Errorf("decode erp response: %w", err)
	}
	return nil
}

// Package notify delivers reviewer e-mails through the external mail
// gateway. Delivery is best-effort per recipient; callers isolate failures.
package notify

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"net/http"
	"time"

	"go.uber.org/zap"

	"github.com/Vokurcak68/Flyer-app-sub000/pkg/config"
)

// SubmittedMail is the payload for one "flyer submitted" reviewer e-mail.
type SubmittedMail struct {
	ReviewerEmail string `json:"reviewerEmail"`
	ReviewerName  string `json:"reviewerName"`
	FlyerName     string `json:"flyerName"`
	SupplierName  string `json:"supplierName"`
	ApprovalURL   string `json:"approvalUrl"`
	IsPreApproval bool   `json:"isPreApproval"`
}

// Mailer posts mail requests to the gateway.
type Mailer struct {
	baseURL string
	from    string
	http    *http.Client
	logger  *zap.Logger
}

// NewMailer constructs the mailer from configuration.
func NewMailer(cfg config.NotifyConfig, logger *zap.Logger) *Mailer {
	if logger == nil {
		logger = zap.NewNop()
	}
	timeout := cfg.Timeout
	if timeout <= 0 {
		timeout = 10 * time.Second
	}
	return &Mailer{
		baseURL: cfg.BaseURL,
		from:    cfg.FromAddress,
		http:    &http.Client{Timeout: timeout},
		logger:  logger,
	}
}

type mailRequest struct {
	From     string        `json:"from"`
	To       string        `json:"to"`
	Subject  string        `json:"subject"`
	Template string        `json:"template"`
	Data     SubmittedMail `json:"data"`
}

// SendFlyerSubmitted mails one reviewer that a flyer awaits their decision.
func (m *Mailer) SendFlyerSubmitted(ctx context.Context, mail SubmittedMail) error {
	subject := fmt.Sprintf("Flyer %q awaits your approval", mail.FlyerName)
	template := "flyer-submitted"
	if mail.IsPreApproval {
		template = "flyer-submitted-preapproval"
	}
	payload := mailRequest{
		From:     m.from,
		To:       mail.ReviewerEmail,
		Subject:  subject,
		Template: template,
		Data:     mail,
	}

	encoded, err := json.Marshal(payload)
	if err != nil {
		return fmt.Errorf("encode mail request: %w", err)
	}
	req, err := http.NewRequestWithContext(ctx, http.MethodPost, m.baseURL+"/api/mail/send", bytes.NewReader(encoded))
	if err != nil {
		return fmt.Errorf("build mail request: %w", err)
	}
	req.Header.Set("Content-Type", "application/json")

	resp, err := m.http.Do(req)
	if err != nil {
		return fmt.Errorf("send mail to %s: %w", mail.ReviewerEmail, err)
	}
	defer resp.Body.Close()

	if resp.StatusCode < 200 || resp.StatusCode >= 300 {
		return fmt.Errorf("mail gateway status %d for %s", resp.StatusCode, mail.ReviewerEmail)
	}
	m.logger.Debug("reviewer notified",
		zap.String("reviewer", mail.ReviewerEmail),
		zap.String("flyer", mail.FlyerName))
	return nil
}

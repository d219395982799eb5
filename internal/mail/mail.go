// Package mail dispatches templated transactional email through the Mailtrap
// send API. Dispatch always happens after the surrounding database
// transaction has committed; a failed send is reported to the caller, never
// used to roll back a persisted invoice.
package mail

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"time"

	"github.com/sethvargo/go-retry"
	"go.uber.org/zap"

	"github.com/scopedno/energidesk/internal/config"
	"github.com/scopedno/energidesk/internal/i18n"
	"github.com/scopedno/energidesk/internal/models"
)

// Dispatcher is what the invoice orchestrator depends on; tests swap in a
// fake.
type Dispatcher interface {
	SendInvoiceNotice(ctx context.Context, inv *models.Invoice) error
	SendReminder(ctx context.Context, inv *models.Invoice) error
}

type Address struct {
	Email string `json:"email"`
	Name  string `json:"name,omitempty"`
}

type sendRequest struct {
	From              Address        `json:"from"`
	To                []Address      `json:"to"`
	TemplateUUID      string         `json:"template_uuid"`
	TemplateVariables map[string]any `json:"template_variables"`
}

type Client struct {
	http *http.Client
	cfg  config.Config
	log  *zap.Logger
}

func NewClient(cfg config.Config, log *zap.Logger) *Client {
	return &Client{
		http: &http.Client{Timeout: 10 * time.Second},
		cfg:  cfg,
		log:  log,
	}
}

// SendInvoiceNotice sends the creation/edit notification. The sender is the
// invoice's snapshotted from-fields, not the live user profile.
func (c *Client) SendInvoiceNotice(ctx context.Context, inv *models.Invoice) error {
	req := sendRequest{
		From:         Address{Email: inv.FromEmail, Name: inv.FromName},
		To:           []Address{{Email: inv.ClientEmail}},
		TemplateUUID: c.cfg.InvoiceTemplateUUID,
		TemplateVariables: map[string]any{
			"clientName":    inv.ClientName,
			"invoiceNumber": inv.InvoiceNumber,
			"date":          i18n.FormatDate(inv.Date, i18n.StyleShort),
			"dueDate":       i18n.FormatDate(inv.DueDate, i18n.StyleShort),
			"senderName":    inv.FromName,
			"senderEmail":   inv.FromEmail,
			"senderCompany": inv.FromCompany,
			"totalAmount":   i18n.FormatCurrency(inv.TotalInclVat, inv.Currency),
			"invoiceLink":   c.invoiceLink(inv.ID),
		},
	}
	return c.send(ctx, req)
}

// SendReminder sends the payment reminder, which uses a distinct template
// with its own variable set.
func (c *Client) SendReminder(ctx context.Context, inv *models.Invoice) error {
	req := sendRequest{
		From:         Address{Email: inv.FromEmail, Name: inv.FromName},
		To:           []Address{{Email: inv.ClientEmail}},
		TemplateUUID: c.cfg.ReminderTemplateUUID,
		TemplateVariables: map[string]any{
			"client_name":          inv.ClientName,
			"company_info_name":    inv.FromCompany,
			"company_info_address": inv.FromAddress,
			"company_info_email":   inv.FromEmail,
			"invoice_number":       inv.InvoiceNumber,
			"date":                 i18n.FormatDate(inv.Date, i18n.StyleShort),
			"due_date":             i18n.FormatDate(inv.DueDate, i18n.StyleShort),
			"total_amount":         inv.TotalInclVat,
			"currency":             inv.Currency,
			"invoice_link":         c.invoiceLink(inv.ID),
		},
	}
	return c.send(ctx, req)
}

func (c *Client) invoiceLink(invoiceID string) string {
	return c.cfg.AppBaseURL + "/api/invoice/" + invoiceID
}

// send posts the payload with a bounded retry: at most one retry on network
// or 5xx failures, logged on exhaustion. 4xx responses fail immediately.
func (c *Client) send(ctx context.Context, payload sendRequest) error {
	body, err := json.Marshal(payload)
	if err != nil {
		return fmt.Errorf("encode mail payload: %w", err)
	}
	backoff := retry.WithMaxRetries(1, retry.NewConstant(500*time.Millisecond))
	err = retry.Do(ctx, backoff, func(ctx context.Context) error {
		req, err := http.NewRequestWithContext(ctx, http.MethodPost, c.cfg.MailtrapBaseURL+"/api/send", bytes.NewReader(body))
		if err != nil {
			return err
		}
		req.Header.Set("Content-Type", "application/json")
		req.Header.Set("Api-Token", c.cfg.MailtrapToken)
		resp, err := c.http.Do(req)
		if err != nil {
			return retry.RetryableError(err)
		}
		defer resp.Body.Close()
		if resp.StatusCode >= 500 {
			return retry.RetryableError(fmt.Errorf("mail api status %d", resp.StatusCode))
		}
		if resp.StatusCode >= 400 {
			detail, _ := io.ReadAll(io.LimitReader(resp.Body, 512))
			return fmt.Errorf("mail api status %d: %s", resp.StatusCode, detail)
		}
		return nil
	})
	if err != nil {
		c.log.Warn("mail dispatch failed", zap.String("template", payload.TemplateUUID), zap.Error(err))
		return fmt.Errorf("send mail: %w", err)
	}
	return nil
}

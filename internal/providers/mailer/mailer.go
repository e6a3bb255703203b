package mailer

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"net/http"
	"time"

	"boards-backend/internal/config"

	"go.uber.org/zap"
)

// Message is a single outbound notification.
type Message struct {
	To      []string `json:"to"`
	Subject string   `json:"subject"`
	Body    string   `json:"body"`
}

type Client struct {
	baseURL string
	httpc   *http.Client
	logger  *zap.SugaredLogger
}

func NewClient(cfg *config.Config, logger *zap.Logger) *Client {
	return &Client{
		baseURL: cfg.MailerBaseURL(),
		httpc:   &http.Client{Timeout: 10 * time.Second},
		logger:  logger.Sugar(),
	}
}

// Send posts the message to the mail service. A transport error, a malformed
// payload and an unsuccessful envelope are all delivery failures.
func (c *Client) Send(ctx context.Context, msg *Message) error {
	payload := &bytes.Buffer{}
	if err := json.NewEncoder(payload).Encode(msg); err != nil {
		return err
	}

	req, err := http.NewRequestWithContext(ctx, http.MethodPost, c.baseURL+"/", payload)
	if err != nil {
		return err
	}
	req.Header.Set("Content-Type", "application/json")

	resp, err := c.httpc.Do(req)
	if err != nil {
		return fmt.Errorf("error sending mail: %w", err)
	}
	defer resp.Body.Close()

	var result struct {
		Success bool   `json:"success"`
		Message string `json:"message"`
	}
	if err := json.NewDecoder(resp.Body).Decode(&result); err != nil {
		return fmt.Errorf("malformed response from mailer: %w", err)
	}
	if !result.Success {
		return fmt.Errorf("mailer rejected the message: %s", result.Message)
	}

	c.logger.Debugw("Mail dispatched", "subject", msg.Subject, "recipients", len(msg.To))
	return nil
}

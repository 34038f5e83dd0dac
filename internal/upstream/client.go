// Package upstream is the client for the construction-management cloud API.
package upstream

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"net/url"
	"strings"
	"time"

	"github.com/fieldsync/backend/internal/models"
	"github.com/google/uuid"
	"go.uber.org/zap"
)

// Client communicates with the construction-management cloud API. Transport
// failures are wrapped as "upstream unavailable" so callers can treat them
// uniformly as a cache-fallback trigger.
type Client struct {
	baseURL    string
	apiKey     string
	httpClient *http.Client
	log        *zap.Logger
}

func NewClient(baseURL, apiKey string, timeoutMS int, log *zap.Logger) *Client {
	if timeoutMS <= 0 {
		timeoutMS = 15000
	}
	return &Client{
		baseURL: strings.TrimRight(baseURL, "/"),
		apiKey:  apiKey,
		httpClient: &http.Client{
			Timeout: time.Duration(timeoutMS) * time.Millisecond,
		},
		log: log,
	}
}

func (c *Client) do(req *http.Request) (*http.Response, error) {
	if c.apiKey != "" {
		req.Header.Set("X-API-Key", c.apiKey)
	}
	resp, err := c.httpClient.Do(req)
	if err != nil {
		return nil, fmt.Errorf("upstream unavailable: %w", err)
	}
	return resp, nil
}

func (c *Client) getJSON(ctx context.Context, rawURL string, out any) error {
	req, err := http.NewRequestWithContext(ctx, http.MethodGet, rawURL, nil)
	if err != nil {
		return err
	}

	resp, err := c.do(req)
	if err != nil {
		return err
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusOK {
		body, _ := io.ReadAll(resp.Body)
		return fmt.Errorf("upstream returned %d: %s", resp.StatusCode, string(body))
	}

	return json.NewDecoder(resp.Body).Decode(out)
}

func (c *Client) sendJSON(ctx context.Context, method, rawURL string, in, out any) error {
	var body io.Reader
	if in != nil {
		data, err := json.Marshal(in)
		if err != nil {
			return err
		}
		body = bytes.NewReader(data)
	}

	req, err := http.NewRequestWithContext(ctx, method, rawURL, body)
	if err != nil {
		return err
	}
	if in != nil {
		req.Header.Set("Content-Type", "application/json")
	}

	resp, err := c.do(req)
	if err != nil {
		return err
	}
	defer resp.Body.Close()

	if resp.StatusCode < 200 || resp.StatusCode >= 300 {
		b, _ := io.ReadAll(resp.Body)
		return fmt.Errorf("upstream returned %d: %s", resp.StatusCode, string(b))
	}

	if out != nil {
		return json.NewDecoder(resp.Body).Decode(out)
	}
	return nil
}

// GetAuditLogs fetches audit logs, optionally filtered by resource type.
func (c *Client) GetAuditLogs(ctx context.Context, resourceType string) ([]models.AuditLog, error) {
	u := c.baseURL + "/api/audit-logs"
	if resourceType != "" {
		u += "?resource_type=" + url.QueryEscape(resourceType)
	}
	var logs []models.AuditLog
	if err := c.getJSON(ctx, u, &logs); err != nil {
		return nil, err
	}
	return logs, nil
}

func (c *Client) GetClient(ctx context.Context, id uuid.UUID) (*models.Client, error) {
	var client models.Client
	if err := c.getJSON(ctx, fmt.Sprintf("%s/api/clients/%s", c.baseURL, id), &client); err != nil {
		return nil, err
	}
	return &client, nil
}

// GetClients fetches clients, optionally filtered by status.
func (c *Client) GetClients(ctx context.Context, status string) ([]models.Client, error) {
	u := c.baseURL + "/api/clients"
	if status != "" {
		u += "?status=" + url.QueryEscape(status)
	}
	var clients []models.Client
	if err := c.getJSON(ctx, u, &clients); err != nil {
		return nil, err
	}
	return clients, nil
}

func (c *Client) CreateClient(ctx context.Context, client *models.Client) (*models.Client, error) {
	var created models.Client
	if err := c.sendJSON(ctx, http.MethodPost, c.baseURL+"/api/clients", client, &created); err != nil {
		return nil, err
	}
	return &created, nil
}

func (c *Client) UpdateClient(ctx context.Context, client *models.Client) (*models.Client, error) {
	var updated models.Client
	u := fmt.Sprintf("%s/api/clients/%s", c.baseURL, client.ID)
	if err := c.sendJSON(ctx, http.MethodPut, u, client, &updated); err != nil {
		return nil, err
	}
	return &updated, nil
}

func (c *Client) DeleteClient(ctx context.Context, id uuid.UUID) error {
	return c.sendJSON(ctx, http.MethodDelete, fmt.Sprintf("%s/api/clients/%s", c.baseURL, id), nil, nil)
}

// UpdateDailyLog submits a queued daily-log update to the upstream API.
func (c *Client) UpdateDailyLog(ctx context.Context, payload models.DailyLogUpdatePayload) error {
	u := fmt.Sprintf("%s/api/daily-logs/%s", c.baseURL, url.PathEscape(payload.DailyLogID))
	return c.sendJSON(ctx, http.MethodPut, u, payload, nil)
}

// DownloadDocument streams a document blob into w and reports the content
// type and the number of bytes written.
func (c *Client) DownloadDocument(ctx context.Context, fileID string, w io.Writer) (string, int64, error) {
	u := fmt.Sprintf("%s/api/documents/%s/content", c.baseURL, url.PathEscape(fileID))
	req, err := http.NewRequestWithContext(ctx, http.MethodGet, u, nil)
	if err != nil {
		return "", 0, err
	}

	resp, err := c.do(req)
	if err != nil {
		return "", 0, err
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusOK {
		body, _ := io.ReadAll(resp.Body)
		return "", 0, fmt.Errorf("upstream returned %d: %s", resp.StatusCode, string(body))
	}

	n, err := io.Copy(w, resp.Body)
	if err != nil {
		return "", n, fmt.Errorf("upstream unavailable: %w", err)
	}
	return resp.Header.Get("Content-Type"), n, nil
}

// Package client provides the HTTP client for the homewatch API. It
// implements the lifecycle controller's Provider interface, so the terminal
// watcher (and any other consumer) synchronizes against a real server the
// same way tests synchronize against fakes.
package client

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

	"github.com/njnj03/homewatch/pkg/models"
)

// DefaultTimeout bounds each request when the caller does not set one.
const DefaultTimeout = 15 * time.Second

// Client is the homewatch API client.
type Client struct {
	baseURL    string
	httpClient *http.Client
}

// Options configures a Client.
type Options struct {
	// BaseURL is the server root, e.g. "http://localhost:8125".
	BaseURL string
	Timeout time.Duration
}

// New creates a new API client.
func New(opts Options) (*Client, error) {
	if opts.BaseURL == "" {
		return nil, fmt.Errorf("server URL is required")
	}
	timeout := opts.Timeout
	if timeout <= 0 {
		timeout = DefaultTimeout
	}
	return &Client{
		baseURL:    strings.TrimSuffix(opts.BaseURL, "/"),
		httpClient: &http.Client{Timeout: timeout},
	}, nil
}

// APIError represents an error response from the API. It carries the
// server's detail string, or the HTTP status when no detail is present.
type APIError struct {
	Message    string `json:"message"`
	ErrorType  string `json:"error_type,omitempty"`
	StatusCode int    `json:"-"`
}

func (e *APIError) Error() string {
	if e.ErrorType != "" {
		return fmt.Sprintf("%s: %s", e.ErrorType, e.Message)
	}
	return e.Message
}

type envelope struct {
	Status string          `json:"status"`
	Data   json.RawMessage `json:"data"`
}

// doJSON performs a request and decodes the success envelope's data field
// into result.
func (c *Client) doJSON(ctx context.Context, method, path string, query url.Values, body, result any) error {
	reqURL, err := url.Parse(c.baseURL + path)
	if err != nil {
		return fmt.Errorf("invalid URL: %w", err)
	}
	if query != nil {
		reqURL.RawQuery = query.Encode()
	}

	var reqBody io.Reader
	if body != nil {
		data, err := json.Marshal(body)
		if err != nil {
			return fmt.Errorf("failed to marshal request body: %w", err)
		}
		reqBody = bytes.NewReader(data)
	}

	req, err := http.NewRequestWithContext(ctx, method, reqURL.String(), reqBody)
	if err != nil {
		return fmt.Errorf("failed to create request: %w", err)
	}
	req.Header.Set("Content-Type", "application/json")
	req.Header.Set("Accept", "application/json")
	req.Header.Set("User-Agent", "homewatch-cli/1.0")

	resp, err := c.httpClient.Do(req)
	if err != nil {
		return fmt.Errorf("request failed: %w", err)
	}
	defer resp.Body.Close()

	if resp.StatusCode == http.StatusNoContent {
		return nil
	}

	respBody, err := io.ReadAll(resp.Body)
	if err != nil {
		return fmt.Errorf("failed to read response body: %w", err)
	}

	if resp.StatusCode >= 400 {
		var env envelope
		if err := json.Unmarshal(respBody, &env); err == nil && len(env.Data) > 0 {
			var apiErr APIError
			if err := json.Unmarshal(env.Data, &apiErr); err == nil && apiErr.Message != "" {
				apiErr.StatusCode = resp.StatusCode
				return &apiErr
			}
		}
		return &APIError{
			Message:    http.StatusText(resp.StatusCode),
			StatusCode: resp.StatusCode,
		}
	}

	if result != nil {
		var env envelope
		if err := json.Unmarshal(respBody, &env); err != nil {
			return fmt.Errorf("failed to decode response: %w", err)
		}
		if err := json.Unmarshal(env.Data, result); err != nil {
			return fmt.Errorf("failed to decode response data: %w", err)
		}
	}
	return nil
}

// ListAlerts fetches alerts matching the given filters.
func (c *Client) ListAlerts(ctx context.Context, params models.ListAlertsParams) (*models.AlertList, error) {
	query := url.Values{}
	if params.Severity != "" {
		query.Set("severity", string(params.Severity))
	}
	if params.Status != "" {
		query.Set("status", string(params.Status))
	}
	if params.HouseID != "" {
		query.Set("house_id", string(params.HouseID))
	}
	if params.Limit > 0 {
		query.Set("limit", fmt.Sprintf("%d", params.Limit))
	}
	if params.Offset > 0 {
		query.Set("offset", fmt.Sprintf("%d", params.Offset))
	}

	var list models.AlertList
	if err := c.doJSON(ctx, http.MethodGet, "/api/v1/alerts", query, nil, &list); err != nil {
		return nil, err
	}
	return &list, nil
}

// GetAlert fetches a single alert.
func (c *Client) GetAlert(ctx context.Context, id models.AlertID) (*models.Alert, error) {
	var alert models.Alert
	if err := c.doJSON(ctx, http.MethodGet, "/api/v1/alerts/"+url.PathEscape(string(id)), nil, nil, &alert); err != nil {
		return nil, err
	}
	return &alert, nil
}

func (c *Client) transition(ctx context.Context, id models.AlertID, op string, notes string) (*models.Alert, error) {
	var alert models.Alert
	path := "/api/v1/alerts/" + url.PathEscape(string(id)) + "/" + op
	req := models.TransitionRequest{Notes: notes}
	if err := c.doJSON(ctx, http.MethodPost, path, nil, req, &alert); err != nil {
		return nil, err
	}
	return &alert, nil
}

// AcknowledgeAlert acknowledges an active alert.
func (c *Client) AcknowledgeAlert(ctx context.Context, id models.AlertID, notes string) (*models.Alert, error) {
	return c.transition(ctx, id, "acknowledge", notes)
}

// ResolveAlert resolves an active or acknowledged alert.
func (c *Client) ResolveAlert(ctx context.Context, id models.AlertID, notes string) (*models.Alert, error) {
	return c.transition(ctx, id, "resolve", notes)
}

// DismissAlert dismisses an active or acknowledged alert.
func (c *Client) DismissAlert(ctx context.Context, id models.AlertID, notes string) (*models.Alert, error) {
	return c.transition(ctx, id, "dismiss", notes)
}

// ListHouses fetches every house.
func (c *Client) ListHouses(ctx context.Context) ([]*models.House, error) {
	var data struct {
		Houses []*models.House `json:"houses"`
	}
	if err := c.doJSON(ctx, http.MethodGet, "/api/v1/houses", nil, nil, &data); err != nil {
		return nil, err
	}
	return data.Houses, nil
}

// ListDevices fetches devices, optionally scoped to one house.
func (c *Client) ListDevices(ctx context.Context, houseID models.HouseID) ([]*models.Device, error) {
	var query url.Values
	if houseID != "" {
		query = url.Values{"house_id": []string{string(houseID)}}
	}
	var data struct {
		Devices []*models.Device `json:"devices"`
	}
	if err := c.doJSON(ctx, http.MethodGet, "/api/v1/devices", query, nil, &data); err != nil {
		return nil, err
	}
	return data.Devices, nil
}

// DashboardMetrics fetches the overview counters.
func (c *Client) DashboardMetrics(ctx context.Context) (*models.DashboardMetrics, error) {
	var m models.DashboardMetrics
	if err := c.doJSON(ctx, http.MethodGet, "/api/v1/metrics", nil, nil, &m); err != nil {
		return nil, err
	}
	return &m, nil
}

// ListModels fetches the model registry.
func (c *Client) ListModels(ctx context.Context) (*models.ModelList, error) {
	var list models.ModelList
	if err := c.doJSON(ctx, http.MethodGet, "/api/v1/models", nil, nil, &list); err != nil {
		return nil, err
	}
	return &list, nil
}

// CreateModel registers a new model.
func (c *Client) CreateModel(ctx context.Context, req *models.CreateModelRequest) (*models.Model, error) {
	var model models.Model
	if err := c.doJSON(ctx, http.MethodPost, "/api/v1/models", nil, req, &model); err != nil {
		return nil, err
	}
	return &model, nil
}

// UpdateModel updates a model record.
func (c *Client) UpdateModel(ctx context.Context, id models.ModelID, req *models.UpdateModelRequest) (*models.Model, error) {
	var model models.Model
	if err := c.doJSON(ctx, http.MethodPut, fmt.Sprintf("/api/v1/models/%d", id), nil, req, &model); err != nil {
		return nil, err
	}
	return &model, nil
}

// DeleteModel removes a model record.
func (c *Client) DeleteModel(ctx context.Context, id models.ModelID) error {
	return c.doJSON(ctx, http.MethodDelete, fmt.Sprintf("/api/v1/models/%d", id), nil, nil, nil)
}

// ActivateModel makes the given model the single active one.
func (c *Client) ActivateModel(ctx context.Context, id models.ModelID) error {
	return c.doJSON(ctx, http.MethodPost, fmt.Sprintf("/api/v1/models/%d/activate", id), nil, nil, nil)
}

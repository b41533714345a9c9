package apiclient

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"net/http"
	"net/url"
	"strconv"
	"strings"
	"time"

	"github.com/google/uuid"

	"puppetmask/internal/api"
	"puppetmask/internal/services"
	"puppetmask/internal/storage"
	"puppetmask/internal/storage/history"
)

const (
	defaultTimeout  = 90 * time.Second
	requestIDHeader = "X-Request-ID"
	maxErrorBody    = 4 << 10
)

var _ storage.Service = (*Client)(nil)

// Client talks to the daemon HTTP API.
type Client struct {
	base  *url.URL
	token string
	http  *http.Client
}

// Option customizes a Client.
type Option func(*Client)

// WithHTTPClient swaps the underlying HTTP client (used in tests).
func WithHTTPClient(hc *http.Client) Option {
	return func(c *Client) {
		if hc != nil {
			c.http = hc
		}
	}
}

// New builds a client for baseURL. A bare host:port is treated as http.
func New(baseURL, token string, opts ...Option) (*Client, error) {
	raw := strings.TrimSpace(baseURL)
	if raw == "" {
		return nil, services.Wrap(services.ErrConfiguration, "apiclient", "new", "server url is empty", nil)
	}
	if !strings.Contains(raw, "://") {
		raw = "http://" + raw
	}
	base, err := url.Parse(raw)
	if err != nil {
		return nil, services.Wrap(services.ErrConfiguration, "apiclient", "new", "invalid server url", err)
	}
	base.Path = ""
	base.RawQuery = ""
	base.Fragment = ""
	c := &Client{
		base:  base,
		token: strings.TrimSpace(token),
		http:  &http.Client{Timeout: defaultTimeout},
	}
	for _, opt := range opts {
		opt(c)
	}
	return c, nil
}

// BaseURL returns the daemon address.
func (c *Client) BaseURL() string { return c.base.String() }

// ListPuppets calls GET /api/puppets.
func (c *Client) ListPuppets(ctx context.Context) ([]storage.Puppet, error) {
	var payload []api.Puppet
	if _, err := c.do(ctx, http.MethodGet, "/api/puppets", nil, &payload); err != nil {
		return nil, err
	}
	return api.ToPuppets(payload), nil
}

// FetchFrame calls GET /api/puppets/{id}/frame and decodes the data URL.
func (c *Client) FetchFrame(ctx context.Context, puppetID string) ([]byte, error) {
	var payload api.FrameResponse
	if _, err := c.do(ctx, http.MethodGet, puppetPath(puppetID, "frame"), nil, &payload); err != nil {
		return nil, err
	}
	data, err := api.DecodeDataURL(payload.FrameData)
	if err != nil {
		return nil, services.Wrap(services.ErrFrameLoad, "apiclient", "decode frame", puppetID, err)
	}
	return data, nil
}

// FetchExistingMask calls GET /api/puppets/{id}/existing-mask.
func (c *Client) FetchExistingMask(ctx context.Context, puppetID string) ([]byte, bool, error) {
	var payload api.ExistingMaskResponse
	status, err := c.do(ctx, http.MethodGet, puppetPath(puppetID, "existing-mask"), nil, &payload)
	if err != nil {
		return nil, false, err
	}
	if status == http.StatusNoContent {
		return nil, false, nil
	}
	data, err := api.DecodeDataURL(payload.MaskData)
	if err != nil {
		return nil, false, services.Wrap(services.ErrMaskLoad, "apiclient", "decode mask", puppetID, err)
	}
	return data, true, nil
}

// SaveMask calls POST /api/puppets/{id}/mask.
func (c *Client) SaveMask(ctx context.Context, puppetID string, png []byte) (storage.SaveResult, error) {
	body := api.SaveMaskRequest{MaskData: api.EncodeDataURL(api.PNGMediaType, png)}
	var payload api.SaveMaskResponse
	if _, err := c.do(ctx, http.MethodPost, puppetPath(puppetID, "mask"), body, &payload); err != nil {
		return storage.SaveResult{}, err
	}
	return storage.SaveResult{Success: payload.Success, Location: payload.URL}, nil
}

// MaskStatus calls GET /api/puppets/{id}/mask.
func (c *Client) MaskStatus(ctx context.Context, puppetID string) (storage.MaskStatus, error) {
	var payload api.MaskStatusResponse
	if _, err := c.do(ctx, http.MethodGet, puppetPath(puppetID, "mask"), nil, &payload); err != nil {
		return storage.MaskStatus{}, err
	}
	status, err := api.ToMaskStatus(payload)
	if err != nil {
		return storage.MaskStatus{}, services.Wrap(services.ErrTransient, "apiclient", "mask status", puppetID, err)
	}
	return status, nil
}

// History calls GET /api/puppets/{id}/mask/history.
func (c *Client) History(ctx context.Context, puppetID string, limit int) ([]history.Entry, error) {
	path := puppetPath(puppetID, "mask/history")
	if limit > 0 {
		path += "?limit=" + strconv.Itoa(limit)
	}
	var payload api.HistoryResponse
	if _, err := c.do(ctx, http.MethodGet, path, nil, &payload); err != nil {
		return nil, err
	}
	return api.ToHistory(puppetID, payload)
}

// Status calls GET /api/status.
func (c *Client) Status(ctx context.Context) (api.DaemonStatus, error) {
	var payload api.DaemonStatus
	_, err := c.do(ctx, http.MethodGet, "/api/status", nil, &payload)
	return payload, err
}

func (c *Client) do(ctx context.Context, method, path string, body, out any) (int, error) {
	ref, err := url.Parse(path)
	if err != nil {
		return 0, services.Wrap(services.ErrValidation, "apiclient", method, path, err)
	}
	endpoint := c.base.ResolveReference(ref)

	var reader io.Reader
	if body != nil {
		encoded, err := json.Marshal(body)
		if err != nil {
			return 0, services.Wrap(services.ErrValidation, "apiclient", "encode request", path, err)
		}
		reader = bytes.NewReader(encoded)
	}
	req, err := http.NewRequestWithContext(ctx, method, endpoint.String(), reader)
	if err != nil {
		return 0, services.Wrap(services.ErrValidation, "apiclient", method, path, err)
	}
	req.Header.Set("Accept", "application/json")
	req.Header.Set(requestIDHeader, requestID(ctx))
	if body != nil {
		req.Header.Set("Content-Type", "application/json")
	}
	if c.token != "" {
		req.Header.Set("Authorization", "Bearer "+c.token)
	}

	resp, err := c.http.Do(req)
	if err != nil {
		if errors.Is(err, context.DeadlineExceeded) {
			return 0, services.Wrap(services.ErrTimeout, "apiclient", method, path, err)
		}
		return 0, services.Wrap(services.ErrTransient, "apiclient", method, path, err)
	}
	defer resp.Body.Close()

	if resp.StatusCode >= 300 {
		return resp.StatusCode, statusError(method, path, resp)
	}
	if resp.StatusCode == http.StatusNoContent || out == nil {
		return resp.StatusCode, nil
	}
	if err := json.NewDecoder(resp.Body).Decode(out); err != nil {
		return resp.StatusCode, services.Wrap(services.ErrTransient, "apiclient", "decode response", path, err)
	}
	return resp.StatusCode, nil
}

func statusError(method, path string, resp *http.Response) error {
	raw, _ := io.ReadAll(io.LimitReader(resp.Body, maxErrorBody))
	message := strings.TrimSpace(string(raw))
	var payload api.ErrorResponse
	if json.Unmarshal(raw, &payload) == nil && payload.Error != "" {
		message = payload.Error
	}
	detail := fmt.Sprintf("status %d: %s", resp.StatusCode, message)

	var marker error
	switch resp.StatusCode {
	case http.StatusBadRequest, http.StatusRequestEntityTooLarge:
		marker = services.ErrValidation
	case http.StatusUnauthorized, http.StatusForbidden:
		marker = services.ErrConfiguration
	case http.StatusNotFound:
		marker = services.ErrNotFound
	case http.StatusBadGateway:
		marker = services.ErrExternalTool
	case http.StatusGatewayTimeout:
		marker = services.ErrTimeout
	default:
		marker = services.ErrTransient
	}
	return services.Wrap(marker, "apiclient", method+" "+path, detail, nil)
}

func puppetPath(puppetID, suffix string) string {
	return "/api/puppets/" + url.PathEscape(puppetID) + "/" + suffix
}

func requestID(ctx context.Context) string {
	if id, ok := services.RequestIDFromContext(ctx); ok && id != "" {
		return id
	}
	return uuid.NewString()
}

package repository

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"mime/multipart"
	"net/http"
	"net/url"
	"strings"
	"time"

	"go.uber.org/zap"

	"github.com/noah-isme/coaching-portal/pkg/config"
	appErrors "github.com/noah-isme/coaching-portal/pkg/errors"
)

const tokenPath = "/token"

// backendObserver receives timing for every backend round trip.
type backendObserver interface {
	ObserveBackendCall(operation string, status int, duration time.Duration)
}

// BackendClient is the single gateway to the coaching REST API. Every call
// takes the caller's bearer token explicitly; an empty token sends no
// Authorization header.
type BackendClient struct {
	baseURL string
	client  *http.Client
	metrics backendObserver
	logger  *zap.Logger
}

// NewBackendClient constructs a client for the configured backend.
func NewBackendClient(cfg config.BackendConfig, metrics backendObserver, logger *zap.Logger) *BackendClient {
	if logger == nil {
		logger = zap.NewNop()
	}
	timeout := cfg.Timeout
	if timeout <= 0 {
		timeout = 15 * time.Second
	}
	return &BackendClient{
		baseURL: strings.TrimRight(cfg.BaseURL, "/"),
		client:  &http.Client{Timeout: timeout},
		metrics: metrics,
		logger:  logger,
	}
}

// call describes one backend request.
type call struct {
	op          string
	method      string
	path        string
	token       string
	query       url.Values
	body        io.Reader
	contentType string
}

func jsonCall(op, method, path, token string, payload interface{}) (call, error) {
	c := call{op: op, method: method, path: path, token: token}
	if payload == nil {
		return c, nil
	}
	raw, err := json.Marshal(payload)
	if err != nil {
		return c, fmt.Errorf("encode %s payload: %w", op, err)
	}
	c.body = bytes.NewReader(raw)
	c.contentType = "application/json"
	return c, nil
}

// Get issues a GET and decodes the JSON body into dest.
func (c *BackendClient) Get(ctx context.Context, op, token, path string, query url.Values, dest interface{}) error {
	return c.do(ctx, call{op: op, method: http.MethodGet, path: path, token: token, query: query}, dest)
}

// PostJSON issues a POST with a JSON body.
func (c *BackendClient) PostJSON(ctx context.Context, op, token, path string, payload, dest interface{}) error {
	req, err := jsonCall(op, http.MethodPost, path, token, payload)
	if err != nil {
		return err
	}
	return c.do(ctx, req, dest)
}

// PostQuery issues a POST whose parameters travel in the query string.
func (c *BackendClient) PostQuery(ctx context.Context, op, token, path string, query url.Values, dest interface{}) error {
	return c.do(ctx, call{op: op, method: http.MethodPost, path: path, token: token, query: query}, dest)
}

// PostForm issues a form-encoded POST.
func (c *BackendClient) PostForm(ctx context.Context, op, token, path string, form url.Values, dest interface{}) error {
	return c.do(ctx, call{
		op:          op,
		method:      http.MethodPost,
		path:        path,
		token:       token,
		body:        strings.NewReader(form.Encode()),
		contentType: "application/x-www-form-urlencoded",
	}, dest)
}

// PostFile uploads a single file as multipart form field `field`.
func (c *BackendClient) PostFile(ctx context.Context, op, token, path, field, filename string, content io.Reader, dest interface{}) error {
	buf := &bytes.Buffer{}
	writer := multipart.NewWriter(buf)
	part, err := writer.CreateFormFile(field, filename)
	if err != nil {
		return fmt.Errorf("create form file: %w", err)
	}
	if _, err := io.Copy(part, content); err != nil {
		return fmt.Errorf("copy upload: %w", err)
	}
	if err := writer.Close(); err != nil {
		return fmt.Errorf("close multipart: %w", err)
	}
	return c.do(ctx, call{
		op:          op,
		method:      http.MethodPost,
		path:        path,
		token:       token,
		body:        buf,
		contentType: writer.FormDataContentType(),
	}, dest)
}

// Delete issues a DELETE.
func (c *BackendClient) Delete(ctx context.Context, op, token, path string) error {
	return c.do(ctx, call{op: op, method: http.MethodDelete, path: path, token: token}, nil)
}

// Download streams a binary body. The caller closes the returned reader.
func (c *BackendClient) Download(ctx context.Context, op, token, path string) (io.ReadCloser, string, error) {
	resp, err := c.send(ctx, call{op: op, method: http.MethodGet, path: path, token: token})
	if err != nil {
		return nil, "", err
	}
	return resp.Body, resp.Header.Get("Content-Type"), nil
}

func (c *BackendClient) do(ctx context.Context, req call, dest interface{}) error {
	resp, err := c.send(ctx, req)
	if err != nil {
		return err
	}
	defer resp.Body.Close()

	if dest == nil {
		_, _ = io.Copy(io.Discard, resp.Body)
		return nil
	}
	if err := json.NewDecoder(resp.Body).Decode(dest); err != nil {
		if errors.Is(err, io.EOF) {
			return nil
		}
		return appErrors.Wrap(fmt.Errorf("decode %s: %w", req.op, err), appErrors.ErrUpstream.Code, appErrors.ErrUpstream.Status, "unexpected response from backend")
	}
	return nil
}

// send performs the round trip and converts any non-2xx status into a typed
// error. On success the caller owns the response body.
func (c *BackendClient) send(ctx context.Context, req call) (*http.Response, error) {
	target := c.baseURL + req.path
	if len(req.query) > 0 {
		target += "?" + req.query.Encode()
	}

	httpReq, err := http.NewRequestWithContext(ctx, req.method, target, req.body)
	if err != nil {
		return nil, appErrors.Wrap(err, appErrors.ErrInternal.Code, appErrors.ErrInternal.Status, "build backend request")
	}
	httpReq.Header.Set("Accept", "application/json")
	if req.contentType != "" {
		httpReq.Header.Set("Content-Type", req.contentType)
	}
	if req.token != "" {
		httpReq.Header.Set("Authorization", "Bearer "+req.token)
	}

	start := time.Now()
	resp, err := c.client.Do(httpReq)
	duration := time.Since(start)
	if err != nil {
		c.observe(req.op, 0, duration)
		c.logger.Warn("backend request failed",
			zap.String("operation", req.op),
			zap.String("method", req.method),
			zap.String("path", req.path),
			zap.Error(err),
		)
		return nil, appErrors.Wrap(err, appErrors.ErrTransport.Code, appErrors.ErrTransport.Status, "Unable to reach the server. Please try again.")
	}
	c.observe(req.op, resp.StatusCode, duration)

	if resp.StatusCode >= 200 && resp.StatusCode < 300 {
		return resp, nil
	}

	defer resp.Body.Close()
	raw, _ := io.ReadAll(io.LimitReader(resp.Body, 64<<10))
	detail := extractDetail(raw)
	cause := fmt.Errorf("%s %s: status %d", req.method, req.path, resp.StatusCode)

	c.logger.Debug("backend returned error status",
		zap.String("operation", req.op),
		zap.Int("status", resp.StatusCode),
		zap.String("detail", detail),
	)

	return nil, mapStatus(req.path, resp.StatusCode, detail, cause)
}

func (c *BackendClient) observe(op string, status int, duration time.Duration) {
	if c.metrics != nil {
		c.metrics.ObserveBackendCall(op, status, duration)
	}
}

func mapStatus(path string, status int, detail string, cause error) *appErrors.Error {
	var base *appErrors.Error
	switch {
	case status == http.StatusUnauthorized && path == tokenPath:
		// the credential exchange owns its own failure message
		return appErrors.Wrap(cause, appErrors.ErrInvalidCredentials.Code, appErrors.ErrInvalidCredentials.Status, appErrors.ErrInvalidCredentials.Message)
	case status == http.StatusUnauthorized:
		base = appErrors.ErrSessionExpired
	case status == http.StatusForbidden:
		base = appErrors.ErrForbidden
	case status == http.StatusNotFound:
		base = appErrors.ErrNotFound
	case status == http.StatusBadRequest || status == http.StatusUnprocessableEntity:
		base = appErrors.ErrValidation
	default:
		base = appErrors.ErrUpstream
	}
	message := base.Message
	if detail != "" {
		message = detail
	}
	return appErrors.Wrap(cause, base.Code, base.Status, message)
}

// extractDetail pulls a human readable message out of a FastAPI style error
// body. `detail` is either a string or a list of {loc, msg} objects.
func extractDetail(raw []byte) string {
	var body struct {
		Detail json.RawMessage `json:"detail"`
	}
	if err := json.Unmarshal(raw, &body); err != nil || len(body.Detail) == 0 {
		return ""
	}

	var text string
	if err := json.Unmarshal(body.Detail, &text); err == nil {
		return text
	}

	var items []struct {
		Loc []interface{} `json:"loc"`
		Msg string        `json:"msg"`
	}
	if err := json.Unmarshal(body.Detail, &items); err != nil {
		return ""
	}
	parts := make([]string, 0, len(items))
	for _, item := range items {
		if item.Msg == "" {
			continue
		}
		if len(item.Loc) > 0 {
			parts = append(parts, fmt.Sprintf("%v: %s", item.Loc[len(item.Loc)-1], item.Msg))
			continue
		}
		parts = append(parts, item.Msg)
	}
	return strings.Join(parts, "; ")
}

// Package backend talks to the hosted record-storage-and-auth service.
package backend

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

	"go.uber.org/zap"

	"github.com/BuzzLyutic/planner-web/internal/metrics"
	"github.com/BuzzLyutic/planner-web/internal/model"
)

var (
	ErrUnauthorized = errors.New("unauthorized")
	ErrNotFound     = errors.New("not found")
	ErrValidation   = errors.New("validation error")
)

// API is what the rest of the app needs from the backend.
type API interface {
	AuthWithPassword(ctx context.Context, identity, password string) (string, model.User, error)
	List(ctx context.Context, token string, kind model.Kind, page, perPage int) (model.ListResult, error)
	Create(ctx context.Context, token string, kind model.Kind, fields model.Fields) (model.Record, error)
	Update(ctx context.Context, token string, kind model.Kind, id string, fields model.Fields) (model.Record, error)
}

// APIError is the error body returned by the backend
type APIError struct {
	Status  int                    `json:"-"`
	Code    int                    `json:"code"`
	Message string                 `json:"message"`
	Data    map[string]interface{} `json:"data"`
}

func (e *APIError) Error() string {
	if e.Message == "" {
		return fmt.Sprintf("backend error: status %d", e.Status)
	}
	return fmt.Sprintf("backend error: status %d: %s", e.Status, e.Message)
}

func (e *APIError) Unwrap() error {
	switch e.Status {
	case http.StatusUnauthorized, http.StatusForbidden:
		return ErrUnauthorized
	case http.StatusNotFound:
		return ErrNotFound
	case http.StatusBadRequest:
		return ErrValidation
	}
	return nil
}

type Client struct {
	baseURL        string
	authCollection string
	timeout        time.Duration
	httpClient     *http.Client
	logger         *zap.Logger
}

func NewClient(baseURL, authCollection string, timeout time.Duration, logger *zap.Logger) *Client {
	return NewWithHTTPClient(baseURL, authCollection, timeout, &http.Client{}, logger)
}

// NewWithHTTPClient is used by tests to point the client at an httptest server.
func NewWithHTTPClient(baseURL, authCollection string, timeout time.Duration, hc *http.Client, logger *zap.Logger) *Client {
	return &Client{
		baseURL:        strings.TrimRight(baseURL, "/"),
		authCollection: authCollection,
		timeout:        timeout,
		httpClient:     hc,
		logger:         logger,
	}
}

type authRequest struct {
	Identity string `json:"identity"`
	Password string `json:"password"`
}

type authResponse struct {
	Token  string     `json:"token"`
	Record model.User `json:"record"`
}

func (c *Client) AuthWithPassword(ctx context.Context, identity, password string) (string, model.User, error) {
	var out authResponse
	path := fmt.Sprintf("/api/collections/%s/auth-with-password", url.PathEscape(c.authCollection))
	err := c.do(ctx, "auth", c.authCollection, http.MethodPost, path, "", authRequest{Identity: identity, Password: password}, &out)
	if err != nil {
		return "", model.User{}, err
	}
	if out.Token == "" {
		return "", model.User{}, fmt.Errorf("auth: empty token: %w", ErrUnauthorized)
	}
	return out.Token, out.Record, nil
}

func (c *Client) List(ctx context.Context, token string, kind model.Kind, page, perPage int) (model.ListResult, error) {
	q := url.Values{}
	q.Set("page", strconv.Itoa(page))
	q.Set("perPage", strconv.Itoa(perPage))
	// Старые сверху: новая запись дописывается в конец и после refresh остаётся там же
	q.Set("sort", "created")

	var out model.ListResult
	err := c.do(ctx, "list", string(kind), http.MethodGet, recordsPath(kind)+"?"+q.Encode(), token, nil, &out)
	if out.Items == nil {
		out.Items = []model.Record{}
	}
	return out, err
}

func (c *Client) Create(ctx context.Context, token string, kind model.Kind, fields model.Fields) (model.Record, error) {
	var out model.Record
	err := c.do(ctx, "create", string(kind), http.MethodPost, recordsPath(kind), token, fields, &out)
	return out, err
}

func (c *Client) Update(ctx context.Context, token string, kind model.Kind, id string, fields model.Fields) (model.Record, error) {
	var out model.Record
	path := recordsPath(kind) + "/" + url.PathEscape(id)
	err := c.do(ctx, "update", string(kind), http.MethodPatch, path, token, fields, &out)
	return out, err
}

func recordsPath(kind model.Kind) string {
	return fmt.Sprintf("/api/collections/%s/records", url.PathEscape(string(kind)))
}

func (c *Client) do(ctx context.Context, op, collection, method, path, token string, in, out interface{}) (err error) {
	start := time.Now()
	defer func() {
		metrics.ObserveBackendCall(collection, op, err, time.Since(start))
	}()

	if c.timeout > 0 {
		var cancel context.CancelFunc
		ctx, cancel = context.WithTimeout(ctx, c.timeout)
		defer cancel()
	}

	var body io.Reader
	if in != nil {
		buf, err := json.Marshal(in)
		if err != nil {
			return fmt.Errorf("%s %s: encode: %w", op, collection, err)
		}
		body = bytes.NewReader(buf)
	}

	req, err := http.NewRequestWithContext(ctx, method, c.baseURL+path, body)
	if err != nil {
		return fmt.Errorf("%s %s: %w", op, collection, err)
	}
	req.Header.Set("Accept", "application/json")
	if in != nil {
		req.Header.Set("Content-Type", "application/json")
	}
	if token != "" {
		req.Header.Set("Authorization", "Bearer "+token)
	}

	resp, err := c.httpClient.Do(req)
	if err != nil {
		return fmt.Errorf("%s %s: %w", op, collection, err)
	}
	defer resp.Body.Close()

	if resp.StatusCode >= 300 {
		apiErr := &APIError{Status: resp.StatusCode}
		raw, _ := io.ReadAll(io.LimitReader(resp.Body, 64<<10))
		_ = json.Unmarshal(raw, apiErr)
		c.logger.Debug("backend error response",
			zap.String("op", op),
			zap.String("collection", collection),
			zap.Int("status", resp.StatusCode),
			zap.String("message", apiErr.Message),
		)
		return fmt.Errorf("%s %s: %w", op, collection, apiErr)
	}

	if out == nil {
		return nil
	}
	if err := json.NewDecoder(resp.Body).Decode(out); err != nil {
		return fmt.Errorf("%s %s: decode: %w", op, collection, err)
	}
	return nil
}

// Package apiclient is the single boundary to the platform API. Every list
// fetch and mutation in this codebase goes through it; all expected failure
// modes (transport errors, non-2xx statuses, malformed JSON, server-reported
// validation errors, missing auth token) are normalized into an Envelope with
// Success=false so callers never branch on raw errors.
package apiclient

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"net/url"
	"sort"
	"strings"
	"time"

	"github.com/pkg/errors"
	"github.com/sirupsen/logrus"
	"github.com/tidwall/gjson"

	"github.com/propscale/broker-admin/pkg/composables"
	"github.com/propscale/broker-admin/pkg/schema"
)

// Envelope is the uniform platform response shape.
type Envelope struct {
	Success            bool                `json:"success"`
	Message            string              `json:"message,omitempty"`
	Data               json.RawMessage     `json:"data,omitempty"`
	Errors             map[string][]string `json:"errors,omitempty"`
	Pagination         *schema.Pagination  `json:"pagination,omitempty"`
	TableColumnsConfig schema.Columns      `json:"table_columns_config,omitempty"`
	FiltersConfig      schema.Filters      `json:"filters_config,omitempty"`
	FormConfig         *schema.FormConfig  `json:"form_config,omitempty"`

	// StatusCode of the upstream response; zero when the request never left.
	StatusCode int `json:"-"`
}

// Unauthorized reports whether the platform rejected the bearer token.
func (e *Envelope) Unauthorized() bool {
	return e.StatusCode == http.StatusUnauthorized || e.StatusCode == http.StatusForbidden
}

// DecodeData unmarshals the envelope's data payload into v.
func (e *Envelope) DecodeData(v any) error {
	if len(e.Data) == 0 {
		return errors.New("envelope has no data")
	}
	return errors.Wrap(json.Unmarshal(e.Data, v), "decode envelope data")
}

// Rows decodes the data payload as a list of server-shaped records.
func (e *Envelope) Rows() ([]schema.Row, error) {
	var rows []schema.Row
	if err := e.DecodeData(&rows); err != nil {
		return nil, err
	}
	return rows, nil
}

// DataAt probes the untyped data payload with a gjson path.
func (e *Envelope) DataAt(path string) gjson.Result {
	return gjson.GetBytes(e.Data, path)
}

// ErrorSummary merges the top-level message with any field validation errors
// into a single user-facing string. Used by generic actions that have no form
// to map field errors onto.
func (e *Envelope) ErrorSummary() string {
	if len(e.Errors) == 0 {
		return e.Message
	}
	fields := make([]string, 0, len(e.Errors))
	for field := range e.Errors {
		fields = append(fields, field)
	}
	sort.Strings(fields)

	parts := make([]string, 0, len(fields)+1)
	if e.Message != "" {
		parts = append(parts, e.Message)
	}
	for _, field := range fields {
		parts = append(parts, fmt.Sprintf("%s: %s", field, strings.Join(e.Errors[field], "; ")))
	}
	return strings.Join(parts, " — ")
}

type Client struct {
	baseURL string
	http    *http.Client
	logger  *logrus.Logger
}

func New(baseURL string, timeout time.Duration, logger *logrus.Logger) *Client {
	return &Client{
		baseURL: strings.TrimRight(baseURL, "/"),
		http:    &http.Client{Timeout: timeout},
		logger:  logger,
	}
}

func (c *Client) Get(ctx context.Context, path string, query url.Values) *Envelope {
	return c.do(ctx, http.MethodGet, path, query, nil)
}

func (c *Client) Post(ctx context.Context, path string, body any) *Envelope {
	return c.do(ctx, http.MethodPost, path, nil, body)
}

func (c *Client) PostQuery(ctx context.Context, path string, query url.Values, body any) *Envelope {
	return c.do(ctx, http.MethodPost, path, query, body)
}

func (c *Client) Put(ctx context.Context, path string, body any) *Envelope {
	return c.do(ctx, http.MethodPut, path, nil, body)
}

func (c *Client) Patch(ctx context.Context, path string, body any) *Envelope {
	return c.do(ctx, http.MethodPatch, path, nil, body)
}

func (c *Client) Delete(ctx context.Context, path string) *Envelope {
	return c.do(ctx, http.MethodDelete, path, nil, nil)
}

func (c *Client) do(ctx context.Context, method, path string, query url.Values, body any) *Envelope {
	token, err := composables.UseToken(ctx)
	if err != nil {
		env := failure("Authentication token missing")
		env.StatusCode = http.StatusUnauthorized
		return env
	}

	fullURL := c.baseURL + "/" + strings.TrimLeft(path, "/")
	if len(query) > 0 {
		fullURL += "?" + query.Encode()
	}

	var reqBody io.Reader
	if body != nil {
		encoded, err := json.Marshal(body)
		if err != nil {
			c.logger.WithError(err).WithField("path", path).Error("apiclient: failed to encode request body")
			return failure("Invalid request payload")
		}
		reqBody = bytes.NewReader(encoded)
	}

	req, err := http.NewRequestWithContext(ctx, method, fullURL, reqBody)
	if err != nil {
		c.logger.WithError(err).WithField("path", path).Error("apiclient: failed to build request")
		return failure("Invalid request")
	}
	req.Header.Set("Accept", "application/json")
	req.Header.Set("Authorization", "Bearer "+token)
	if body != nil {
		req.Header.Set("Content-Type", "application/json")
	}

	resp, err := c.http.Do(req)
	if err != nil {
		c.logger.WithError(err).WithFields(logrus.Fields{
			"method": method,
			"path":   path,
		}).Error("apiclient: transport failure")
		return failure("Could not reach the server. Please try again.")
	}
	defer func() {
		_ = resp.Body.Close()
	}()

	raw, err := io.ReadAll(resp.Body)
	if err != nil {
		c.logger.WithError(err).WithField("path", path).Error("apiclient: failed to read response body")
		env := failure("Could not read server response")
		env.StatusCode = resp.StatusCode
		return env
	}

	env := &Envelope{StatusCode: resp.StatusCode}
	if err := json.Unmarshal(raw, env); err != nil {
		c.logger.WithError(err).WithFields(logrus.Fields{
			"path":   path,
			"status": resp.StatusCode,
		}).Error("apiclient: malformed JSON response")
		env = failure("Invalid response from server")
		env.StatusCode = resp.StatusCode
		return env
	}

	if resp.StatusCode < 200 || resp.StatusCode >= 300 {
		env.Success = false
		if env.Message == "" {
			env.Message = fmt.Sprintf("Request failed with status %d", resp.StatusCode)
		}
	}
	return env
}

func failure(message string) *Envelope {
	return &Envelope{Success: false, Message: message}
}

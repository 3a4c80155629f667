package service

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

	"booking-router/core/errors"
	"booking-router/core/logger"
	"booking-router/core/metrics"
)

// apiClient issues JSON requests against one provider and turns non-2xx
// responses into provider errors carrying the response body.
type apiClient struct {
	provider  string
	component string
	baseURL   string
	client    *http.Client
}

func newAPIClient(provider, component, baseURL string, timeout time.Duration) *apiClient {
	return &apiClient{
		provider:  provider,
		component: component,
		baseURL:   strings.TrimRight(baseURL, "/"),
		client:    &http.Client{Timeout: timeout},
	}
}

type request struct {
	op      string
	method  string
	path    string
	query   url.Values
	headers map[string]string
	body    any
	form    url.Values
}

func (c *apiClient) do(ctx context.Context, r request, out any) (err error) {
	started := time.Now()
	defer func() { metrics.ObserveProviderCall(c.provider, r.op, started, err) }()

	endpoint := c.baseURL + r.path
	if len(r.query) > 0 {
		endpoint += "?" + r.query.Encode()
	}

	var body io.Reader
	contentType := ""
	switch {
	case r.form != nil:
		body = strings.NewReader(r.form.Encode())
		contentType = "application/x-www-form-urlencoded"
	case r.body != nil:
		payload, mErr := json.Marshal(r.body)
		if mErr != nil {
			return errors.NewAppError(errors.ErrInternalServer, "failed to encode request", mErr)
		}
		body = bytes.NewReader(payload)
		contentType = "application/json"
	}

	req, err := http.NewRequestWithContext(ctx, r.method, endpoint, body)
	if err != nil {
		logger.Error(c.component+":"+r.op+":NewRequest:Error", "error", err)
		return errors.NewAppError(errors.ErrInternalServer, "failed to create request", err)
	}
	req.Header.Set("Accept", "application/json")
	if contentType != "" {
		req.Header.Set("Content-Type", contentType)
	}
	for k, v := range r.headers {
		req.Header.Set(k, v)
	}

	resp, err := c.client.Do(req)
	if err != nil {
		logger.Error(c.component+":"+r.op+":DoRequest:Error", "error", err)
		return errors.NewAppError(errors.ErrProviderRequest, fmt.Sprintf("%s request failed", c.provider), err)
	}
	defer resp.Body.Close()

	raw, err := io.ReadAll(resp.Body)
	if err != nil {
		logger.Error(c.component+":"+r.op+":ReadBody:Error", "error", err)
		return errors.NewAppError(errors.ErrProviderRequest, "failed to read response", err)
	}

	if resp.StatusCode < 200 || resp.StatusCode >= 300 {
		logger.Error(c.component+":"+r.op+":APIError", "status", resp.StatusCode, "body", string(raw))
		return errors.NewAppError(errors.ErrProviderRequest,
			fmt.Sprintf("%s API error: %d", c.provider, resp.StatusCode), nil).WithDetails(errorBody(raw))
	}

	if out == nil || len(raw) == 0 {
		return nil
	}
	if err := json.Unmarshal(raw, out); err != nil {
		logger.Error(c.component+":"+r.op+":Unmarshal:Error", "error", err)
		return errors.NewAppError(errors.ErrProviderRequest, "failed to parse response", err)
	}
	return nil
}

// errorBody keeps a JSON error body structured and falls back to the raw text.
func errorBody(raw []byte) any {
	var parsed any
	if err := json.Unmarshal(raw, &parsed); err == nil {
		return parsed
	}
	return string(raw)
}

func bearer(token string) string {
	return "Bearer " + token
}

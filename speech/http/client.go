package http

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"strings"
	"time"

	"go.opentelemetry.io/contrib/instrumentation/net/http/otelhttp"
)

// serviceError is the body the speech and animation services send on failure.
type serviceError struct {
	Error string `json:"error"`
}

type client struct {
	baseURL string
	http    *http.Client
}

func (c *client) postJSON(ctx context.Context, path string, in any, out any) (int, error) {
	body, err := json.Marshal(in)
	if err != nil {
		return 0, err
	}

	req, err := http.NewRequestWithContext(ctx, http.MethodPost, c.baseURL+path, bytes.NewReader(body))
	if err != nil {
		return 0, err
	}
	req.Header.Set("Content-Type", "application/json")

	return c.do(req, out)
}

func (c *client) getJSON(ctx context.Context, path string, out any) (int, error) {
	req, err := http.NewRequestWithContext(ctx, http.MethodGet, c.baseURL+path, nil)
	if err != nil {
		return 0, err
	}

	return c.do(req, out)
}

func (c *client) do(req *http.Request, out any) (int, error) {
	rsp, err := c.http.Do(req)
	if err != nil {
		return 0, err
	}
	defer rsp.Body.Close()

	raw, err := io.ReadAll(rsp.Body)
	if err != nil {
		return rsp.StatusCode, err
	}

	if rsp.StatusCode != http.StatusOK {
		var se serviceError
		if err := json.Unmarshal(raw, &se); err == nil && len(se.Error) > 0 {
			return rsp.StatusCode, fmt.Errorf("%s", se.Error)
		}
		return rsp.StatusCode, fmt.Errorf("unexpected status %d", rsp.StatusCode)
	}

	if out == nil {
		return rsp.StatusCode, nil
	}

	return rsp.StatusCode, json.Unmarshal(raw, out)
}

func newClient(baseURL string, timeout time.Duration) *client {
	return &client{
		baseURL: strings.TrimRight(baseURL, "/"),
		http: &http.Client{
			Transport: otelhttp.NewTransport(http.DefaultTransport),
			Timeout:   timeout,
		},
	}
}

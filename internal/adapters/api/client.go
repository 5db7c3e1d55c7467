// Package api is the thin authenticated HTTP wrapper over the IntelliScan
// backend. One request per user action; no retries, no caching.
package api

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"mime"
	"mime/multipart"
	"net/http"
	"strings"
	"sync"

	"github.com/bnema/intelliscan-cli/internal/domain"
)

const (
	sessionCookieName    = "access_token"
	maxJSONResponseBytes = 1 << 20
	maxBlobResponseBytes = 1 << 28
)

type Client struct {
	baseURL string
	http    *http.Client

	mu         sync.RWMutex
	credential string
}

func NewClient(baseURL string, httpClient *http.Client) *Client {
	if httpClient == nil {
		httpClient = http.DefaultClient
	}

	return &Client{
		baseURL: strings.TrimRight(baseURL, "/"),
		http:    httpClient,
	}
}

// Credential returns the current session cookie value, captured from the last
// auth response.
func (c *Client) Credential() string {
	c.mu.RLock()
	defer c.mu.RUnlock()
	return c.credential
}

func (c *Client) SetCredential(credential string) {
	c.mu.Lock()
	c.credential = credential
	c.mu.Unlock()
}

// APIError is a backend rejection decoded from the response body.
type APIError struct {
	StatusCode int
	Detail     string
}

func (e *APIError) Error() string {
	if e.Detail != "" {
		return e.Detail
	}
	return fmt.Sprintf("backend returned status %d", e.StatusCode)
}

func (c *Client) do(req *http.Request) (*http.Response, error) {
	if credential := c.Credential(); credential != "" {
		req.AddCookie(&http.Cookie{Name: sessionCookieName, Value: credential})
	}

	resp, err := c.http.Do(req)
	if err != nil {
		return nil, err
	}

	// The backend manages the session through Set-Cookie on auth responses;
	// mirror the browser's cookie store.
	for _, cookie := range resp.Cookies() {
		if cookie.Name == sessionCookieName {
			c.SetCredential(cookie.Value)
		}
	}

	return resp, nil
}

func (c *Client) getJSON(ctx context.Context, path string, out any) error {
	req, err := http.NewRequestWithContext(ctx, http.MethodGet, c.baseURL+path, nil)
	if err != nil {
		return fmt.Errorf("create request: %w", err)
	}

	return c.roundTripJSON(req, out)
}

func (c *Client) deleteJSON(ctx context.Context, path string) error {
	req, err := http.NewRequestWithContext(ctx, http.MethodDelete, c.baseURL+path, nil)
	if err != nil {
		return fmt.Errorf("create request: %w", err)
	}

	return c.roundTripJSON(req, nil)
}

func (c *Client) postJSON(ctx context.Context, path string, body, out any) error {
	payload, err := json.Marshal(body)
	if err != nil {
		return fmt.Errorf("encode request body: %w", err)
	}

	req, err := http.NewRequestWithContext(ctx, http.MethodPost, c.baseURL+path, bytes.NewReader(payload))
	if err != nil {
		return fmt.Errorf("create request: %w", err)
	}
	req.Header.Set("Content-Type", "application/json")

	return c.roundTripJSON(req, out)
}

func (c *Client) roundTripJSON(req *http.Request, out any) error {
	resp, err := c.do(req)
	if err != nil {
		return err
	}
	defer func() { _ = resp.Body.Close() }()

	if !successStatus(resp.StatusCode) {
		return decodeError(resp)
	}
	if out == nil {
		return nil
	}

	if err := json.NewDecoder(io.LimitReader(resp.Body, maxJSONResponseBytes)).Decode(out); err != nil {
		return fmt.Errorf("decode response: %w", err)
	}

	return nil
}

// filePart is one file attached to a multipart request.
type filePart struct {
	Field string
	Name  string
	Data  []byte
}

func (c *Client) newMultipartRequest(ctx context.Context, path string, fields map[string]string, parts []filePart) (*http.Request, error) {
	body := &bytes.Buffer{}
	writer := multipart.NewWriter(body)

	for key, value := range fields {
		if err := writer.WriteField(key, value); err != nil {
			return nil, fmt.Errorf("write multipart field %q: %w", key, err)
		}
	}
	for _, part := range parts {
		fw, err := writer.CreateFormFile(part.Field, part.Name)
		if err != nil {
			return nil, fmt.Errorf("create multipart file %q: %w", part.Name, err)
		}
		if _, err := fw.Write(part.Data); err != nil {
			return nil, fmt.Errorf("write multipart file %q: %w", part.Name, err)
		}
	}
	if err := writer.Close(); err != nil {
		return nil, fmt.Errorf("finalize multipart body: %w", err)
	}

	req, err := http.NewRequestWithContext(ctx, http.MethodPost, c.baseURL+path, body)
	if err != nil {
		return nil, fmt.Errorf("create request: %w", err)
	}
	req.Header.Set("Content-Type", writer.FormDataContentType())

	return req, nil
}

func (c *Client) postMultipart(ctx context.Context, path string, fields map[string]string, parts []filePart, out any) error {
	req, err := c.newMultipartRequest(ctx, path, fields, parts)
	if err != nil {
		return err
	}

	return c.roundTripJSON(req, out)
}

// postMultipartText posts files and returns the raw response body, used for
// endpoints answering with plain text such as SVG markup.
func (c *Client) postMultipartText(ctx context.Context, path string, fields map[string]string, parts []filePart) (string, error) {
	req, err := c.newMultipartRequest(ctx, path, fields, parts)
	if err != nil {
		return "", err
	}

	resp, err := c.do(req)
	if err != nil {
		return "", err
	}
	defer func() { _ = resp.Body.Close() }()

	if !successStatus(resp.StatusCode) {
		return "", decodeError(resp)
	}

	data, err := io.ReadAll(io.LimitReader(resp.Body, maxBlobResponseBytes))
	if err != nil {
		return "", fmt.Errorf("read response body: %w", err)
	}

	return string(data), nil
}

// postMultipartBlob posts files and downloads the resulting blob, carrying
// the Content-Disposition filename along.
func (c *Client) postMultipartBlob(ctx context.Context, path string, fields map[string]string, parts []filePart) (domain.FilePayload, error) {
	req, err := c.newMultipartRequest(ctx, path, fields, parts)
	if err != nil {
		return domain.FilePayload{}, err
	}

	return c.downloadBlob(req)
}

func (c *Client) postJSONBlob(ctx context.Context, path string, body any) (domain.FilePayload, error) {
	payload, err := json.Marshal(body)
	if err != nil {
		return domain.FilePayload{}, fmt.Errorf("encode request body: %w", err)
	}

	req, err := http.NewRequestWithContext(ctx, http.MethodPost, c.baseURL+path, bytes.NewReader(payload))
	if err != nil {
		return domain.FilePayload{}, fmt.Errorf("create request: %w", err)
	}
	req.Header.Set("Content-Type", "application/json")

	return c.downloadBlob(req)
}

func (c *Client) downloadBlob(req *http.Request) (domain.FilePayload, error) {
	resp, err := c.do(req)
	if err != nil {
		return domain.FilePayload{}, err
	}
	defer func() { _ = resp.Body.Close() }()

	if !successStatus(resp.StatusCode) {
		return domain.FilePayload{}, decodeError(resp)
	}

	data, err := io.ReadAll(io.LimitReader(resp.Body, maxBlobResponseBytes))
	if err != nil {
		return domain.FilePayload{}, fmt.Errorf("read response body: %w", err)
	}

	return domain.FilePayload{
		Filename:    dispositionFilename(resp.Header.Get("Content-Disposition")),
		ContentType: resp.Header.Get("Content-Type"),
		Data:        data,
	}, nil
}

func dispositionFilename(header string) string {
	if header == "" {
		return ""
	}

	_, params, err := mime.ParseMediaType(header)
	if err != nil {
		return ""
	}

	return params["filename"]
}

func successStatus(code int) bool {
	return code >= http.StatusOK && code < http.StatusMultipleChoices
}

func decodeError(resp *http.Response) error {
	apiErr := &APIError{StatusCode: resp.StatusCode}

	data, err := io.ReadAll(io.LimitReader(resp.Body, maxJSONResponseBytes))
	if err != nil {
		return apiErr
	}

	// FastAPI-style {"detail": "..."} bodies; detail may also be a
	// structured validation payload, which we keep verbatim.
	var body struct {
		Detail json.RawMessage `json:"detail"`
	}
	if err := json.Unmarshal(data, &body); err == nil && len(body.Detail) > 0 {
		var detail string
		if err := json.Unmarshal(body.Detail, &detail); err == nil {
			apiErr.Detail = detail
		} else {
			apiErr.Detail = string(body.Detail)
		}
	}

	return apiErr
}

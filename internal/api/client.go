// Package api is a typed client for the HomeRent REST API.
package api

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"mime/multipart"
	"net/http"
	"net/textproto"
	"net/url"
	"strings"
	"time"

	"github.com/sirupsen/logrus"
)

// TokenSource supplies the bearer token for authenticated calls
type TokenSource interface {
	Token() string
}

// StaticToken is a fixed bearer token
type StaticToken string

// Token implements TokenSource
func (t StaticToken) Token() string { return string(t) }

// Client calls the remote API. It is safe for concurrent use.
type Client struct {
	baseURL string
	http    *http.Client
	tokens  TokenSource
	logger  logrus.FieldLogger
}

// NewClient creates a client for baseURL. A zero timeout leaves requests
// bounded only by their context.
func NewClient(baseURL string, timeout time.Duration, logger logrus.FieldLogger) *Client {
	if logger == nil {
		l := logrus.New()
		l.SetOutput(io.Discard)
		logger = l
	}
	return &Client{
		baseURL: strings.TrimRight(baseURL, "/"),
		http:    &http.Client{Timeout: timeout},
		logger:  logger,
	}
}

// WithAuth returns a copy of the client that sends tokens from ts
func (c *Client) WithAuth(ts TokenSource) *Client {
	clone := *c
	clone.tokens = ts
	return &clone
}

// BaseURL returns the API origin
func (c *Client) BaseURL() string {
	return c.baseURL
}

// errorBody is the JSON shape of API error responses
type errorBody struct {
	Message        string `json:"message"`
	Error          string `json:"error"`
	Code           string `json:"code"`
	BookingID      string `json:"bookingId"`
	PaymentID      string `json:"paymentId"`
	ActiveTicketID string `json:"activeTicketId"`
}

func (c *Client) get(ctx context.Context, path string, query url.Values, out interface{}) error {
	return c.do(ctx, http.MethodGet, path, query, nil, out)
}

func (c *Client) post(ctx context.Context, path string, body, out interface{}) error {
	return c.do(ctx, http.MethodPost, path, nil, body, out)
}

func (c *Client) put(ctx context.Context, path string, body, out interface{}) error {
	return c.do(ctx, http.MethodPut, path, nil, body, out)
}

func (c *Client) delete(ctx context.Context, path string, out interface{}) error {
	return c.do(ctx, http.MethodDelete, path, nil, nil, out)
}

func (c *Client) do(ctx context.Context, method, path string, query url.Values, body, out interface{}) error {
	var reader io.Reader
	if body != nil {
		payload, err := json.Marshal(body)
		if err != nil {
			return fmt.Errorf("failed to marshal %s %s request: %w", method, path, err)
		}
		reader = bytes.NewReader(payload)
	}

	endpoint := c.baseURL + path
	if len(query) > 0 {
		endpoint += "?" + query.Encode()
	}

	req, err := http.NewRequestWithContext(ctx, method, endpoint, reader)
	if err != nil {
		return fmt.Errorf("failed to create %s %s request: %w", method, path, err)
	}
	if body != nil {
		req.Header.Set("Content-Type", "application/json")
	}

	return c.send(req, path, out)
}

// UploadFile is one file in a multipart upload
type UploadFile struct {
	Name        string
	ContentType string
	Content     io.Reader
}

func (c *Client) upload(ctx context.Context, path, field string, files []UploadFile, out interface{}) error {
	var buf bytes.Buffer
	mw := multipart.NewWriter(&buf)

	for _, f := range files {
		h := make(textproto.MIMEHeader)
		h.Set("Content-Disposition", fmt.Sprintf(`form-data; name=%q; filename=%q`, field, f.Name))
		contentType := f.ContentType
		if contentType == "" {
			contentType = "application/octet-stream"
		}
		h.Set("Content-Type", contentType)

		part, err := mw.CreatePart(h)
		if err != nil {
			return fmt.Errorf("failed to create multipart part: %w", err)
		}
		if _, err := io.Copy(part, f.Content); err != nil {
			return fmt.Errorf("failed to read %s: %w", f.Name, err)
		}
	}
	if err := mw.Close(); err != nil {
		return fmt.Errorf("failed to finish multipart body: %w", err)
	}

	req, err := http.NewRequestWithContext(ctx, http.MethodPost, c.baseURL+path, &buf)
	if err != nil {
		return fmt.Errorf("failed to create upload request: %w", err)
	}
	req.Header.Set("Content-Type", mw.FormDataContentType())

	return c.send(req, path, out)
}

func (c *Client) send(req *http.Request, path string, out interface{}) error {
	req.Header.Set("Accept", "application/json")
	if c.tokens != nil {
		if token := c.tokens.Token(); token != "" {
			req.Header.Set("Authorization", "Bearer "+token)
		}
	}

	start := time.Now()
	resp, err := c.http.Do(req)
	if err != nil {
		c.logger.WithFields(logrus.Fields{
			"method": req.Method,
			"path":   path,
		}).WithError(err).Warn("API request failed")
		return &NetworkError{Op: req.Method + " " + path, Err: err}
	}
	defer resp.Body.Close()

	respBody, err := io.ReadAll(resp.Body)
	if err != nil {
		return &NetworkError{Op: "read " + path, Err: err}
	}

	c.logger.WithFields(logrus.Fields{
		"method":  req.Method,
		"path":    path,
		"status":  resp.StatusCode,
		"latency": time.Since(start).String(),
	}).Debug("API request")

	if resp.StatusCode < 200 || resp.StatusCode >= 300 {
		return decodeError(req.Method, path, resp.StatusCode, respBody)
	}

	if out == nil || len(bytes.TrimSpace(respBody)) == 0 {
		return nil
	}
	if err := json.Unmarshal(respBody, out); err != nil {
		return fmt.Errorf("failed to parse %s response: %w", path, err)
	}
	return nil
}

func decodeError(method, path string, status int, body []byte) error {
	apiErr := &APIError{Status: status, Method: method, Path: path}

	var eb errorBody
	if err := json.Unmarshal(body, &eb); err == nil {
		apiErr.Code = eb.Code
		apiErr.Message = eb.Message
		if apiErr.Message == "" {
			apiErr.Message = eb.Error
		}
		apiErr.BookingID = eb.BookingID
		apiErr.PaymentID = eb.PaymentID
		apiErr.ActiveTicketID = eb.ActiveTicketID
	}
	if apiErr.Message == "" {
		apiErr.Message = http.StatusText(status)
	}
	return apiErr
}

// MessageResponse is the body of endpoints that only acknowledge
type MessageResponse struct {
	Message string `json:"message"`
}

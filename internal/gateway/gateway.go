// Package gateway is the single path for every request the client sends.
// It attaches credentials, unwraps the server's response envelope, and
// classifies failures into the client error taxonomy.
package gateway

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"mime/multipart"
	"net/http"
	"os"
	"path/filepath"
	"time"

	"go.uber.org/zap"

	"tutorlens/internal/domain"
)

// DefaultTimeout applies when a request does not carry its own.
const DefaultTimeout = 10 * time.Second

// Envelope is the uniform wrapper returned by every server endpoint.
// Code 0 is success, 401 is authentication expiry, anything else is a
// business error described by Message.
type Envelope struct {
	Code    int             `json:"code"`
	Message string          `json:"message"`
	Data    json.RawMessage `json:"data"`
}

// Request describes one outbound call. Path is relative to the base URL.
type Request struct {
	Method  string
	Path    string
	Body    any
	Header  map[string]string
	Timeout time.Duration
}

// Sessions is the slice of the session store the gateway needs: the
// current token for outbound credentials, and invalidation on expiry.
type Sessions interface {
	Current() domain.Session
	Clear()
}

// Gateway builds, sends, and unwraps API requests. It never retries.
type Gateway struct {
	base     string
	timeout  time.Duration
	client   *http.Client
	sessions Sessions
	log      *zap.Logger
}

// New returns a gateway for the given base URL. timeout applies to every
// request that does not carry its own; zero selects DefaultTimeout.
func New(base string, timeout time.Duration, sessions Sessions, log *zap.Logger) *Gateway {
	if timeout <= 0 {
		timeout = DefaultTimeout
	}
	if log == nil {
		log = zap.NewNop()
	}
	return &Gateway{
		base:     base,
		timeout:  timeout,
		client:   &http.Client{},
		sessions: sessions,
		log:      log,
	}
}

// Send performs one request and returns the unwrapped envelope.
func (g *Gateway) Send(ctx context.Context, req Request) (*Envelope, error) {
	timeout := req.Timeout
	if timeout <= 0 {
		timeout = g.timeout
	}
	ctx, cancel := context.WithTimeout(ctx, timeout)
	defer cancel()

	var body io.Reader
	if req.Body != nil {
		encoded, err := json.Marshal(req.Body)
		if err != nil {
			return nil, fmt.Errorf("failed to encode request body: %w", err)
		}
		body = bytes.NewReader(encoded)
	}

	httpReq, err := http.NewRequestWithContext(ctx, req.Method, g.base+req.Path, body)
	if err != nil {
		return nil, fmt.Errorf("failed to build request: %w", err)
	}
	g.applyHeaders(httpReq, req.Header)

	return g.roundTrip(httpReq, req.Method, req.Path)
}

// Get issues a GET request and decodes the envelope data into out.
func (g *Gateway) Get(ctx context.Context, path string, out any) error {
	return g.call(ctx, http.MethodGet, path, nil, out)
}

// Post issues a POST request and decodes the envelope data into out.
func (g *Gateway) Post(ctx context.Context, path string, body any, out any) error {
	return g.call(ctx, http.MethodPost, path, body, out)
}

// Put issues a PUT request and decodes the envelope data into out.
func (g *Gateway) Put(ctx context.Context, path string, body any, out any) error {
	return g.call(ctx, http.MethodPut, path, body, out)
}

// Delete issues a DELETE request and decodes the envelope data into out.
func (g *Gateway) Delete(ctx context.Context, path string, out any) error {
	return g.call(ctx, http.MethodDelete, path, nil, out)
}

// Upload sends a local file as a multipart form under the given field name
// and unwraps the envelope like any other request.
func (g *Gateway) Upload(ctx context.Context, path string, field string, filePath string, out any) error {
	file, err := os.Open(filePath)
	if err != nil {
		return &NetworkError{Err: fmt.Errorf("failed to open %s: %w", filePath, err)}
	}
	defer file.Close()

	var buf bytes.Buffer
	writer := multipart.NewWriter(&buf)
	part, err := writer.CreateFormFile(field, filepath.Base(filePath))
	if err != nil {
		return fmt.Errorf("failed to build multipart form: %w", err)
	}
	if _, err := io.Copy(part, file); err != nil {
		return fmt.Errorf("failed to read %s: %w", filePath, err)
	}
	if err := writer.Close(); err != nil {
		return fmt.Errorf("failed to finish multipart form: %w", err)
	}

	ctx, cancel := context.WithTimeout(ctx, g.timeout)
	defer cancel()

	httpReq, err := http.NewRequestWithContext(ctx, http.MethodPost, g.base+path, &buf)
	if err != nil {
		return fmt.Errorf("failed to build upload request: %w", err)
	}
	g.applyHeaders(httpReq, map[string]string{"Content-Type": writer.FormDataContentType()})

	env, err := g.roundTrip(httpReq, http.MethodPost, path)
	if err != nil {
		return err
	}
	return decodeData(env, out)
}

func (g *Gateway) call(ctx context.Context, method string, path string, body any, out any) error {
	env, err := g.Send(ctx, Request{Method: method, Path: path, Body: body})
	if err != nil {
		return err
	}
	return decodeData(env, out)
}

func (g *Gateway) applyHeaders(req *http.Request, extra map[string]string) {
	req.Header.Set("Content-Type", "application/json")
	if session := g.sessions.Current(); session.Token != "" {
		req.Header.Set("Authorization", "Bearer "+session.Token)
	}
	for key, value := range extra {
		req.Header.Set(key, value)
	}
}

func (g *Gateway) roundTrip(req *http.Request, method string, path string) (*Envelope, error) {
	resp, err := g.client.Do(req)
	if err != nil {
		g.log.Warn("request transport failed",
			zap.String("method", method),
			zap.String("path", path),
			zap.Error(err))
		return nil, &NetworkError{Err: err}
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusOK {
		g.log.Warn("request returned non-200 status",
			zap.String("method", method),
			zap.String("path", path),
			zap.Int("status", resp.StatusCode))
		return nil, &NetworkError{Status: resp.StatusCode}
	}

	var env Envelope
	if err := json.NewDecoder(resp.Body).Decode(&env); err != nil {
		return nil, &NetworkError{Err: fmt.Errorf("failed to decode response envelope: %w", err)}
	}

	switch env.Code {
	case 0:
		return &env, nil
	case 401:
		g.log.Info("session expired, clearing credentials",
			zap.String("method", method),
			zap.String("path", path))
		g.sessions.Clear()
		return nil, ErrSessionExpired
	default:
		return nil, &BusinessError{Code: env.Code, Message: env.Message}
	}
}

func decodeData(env *Envelope, out any) error {
	if out == nil || len(env.Data) == 0 {
		return nil
	}
	if err := json.Unmarshal(env.Data, out); err != nil {
		return fmt.Errorf("failed to decode response data: %w", err)
	}
	return nil
}

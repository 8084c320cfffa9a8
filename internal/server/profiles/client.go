// Package profiles is the outbound client of the user service, used during
// registration to create the profile record that mirrors a new credential.
package profiles

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"net/http"
	"strings"
	"time"

	"go.opentelemetry.io/otel"
	"go.opentelemetry.io/otel/attribute"
	"go.opentelemetry.io/otel/codes"
	"go.opentelemetry.io/otel/propagation"
	"go.opentelemetry.io/otel/trace"
)

const (
	createPath           = "/user-profiles/"
	internalHeader       = "X-Internal-Request"
	unreachableMessage   = "user service unavailable"
	maxErrorBodyBytes    = 64 << 10
	instrumentationScope = "github.com/dmitrijs2005/noteauth/internal/server/profiles"
)

// Profile is the payload the user service expects.
type Profile struct {
	ID    string `json:"id"`
	Email string `json:"email"`
}

// Client creates remote profiles.
type Client interface {
	CreateProfile(ctx context.Context, p Profile) error
}

// RemoteError describes a failed profile call. Unreachable is set when no
// response was received at all.
type RemoteError struct {
	StatusCode  int
	Message     string
	Unreachable bool
	Err         error
}

func (e *RemoteError) Error() string {
	if e.Unreachable {
		return fmt.Sprintf("%s: %v", e.Message, e.Err)
	}
	return fmt.Sprintf("user service responded %d: %s", e.StatusCode, e.Message)
}

func (e *RemoteError) Unwrap() error { return e.Err }

// Temporary reports whether retrying could succeed.
func (e *RemoteError) Temporary() bool {
	return e.Unreachable || e.StatusCode >= 500
}

// HTTPClient talks to the user service over HTTP/JSON.
type HTTPClient struct {
	baseURL string
	http    *http.Client
	tracer  trace.Tracer
}

func NewHTTPClient(baseURL string, timeout time.Duration) *HTTPClient {
	return &HTTPClient{
		baseURL: strings.TrimRight(baseURL, "/"),
		http:    &http.Client{Timeout: timeout},
		tracer:  otel.Tracer(instrumentationScope),
	}
}

func (c *HTTPClient) CreateProfile(ctx context.Context, p Profile) (err error) {
	ctx, span := c.tracer.Start(ctx, "profiles.CreateProfile",
		trace.WithSpanKind(trace.SpanKindClient),
		trace.WithAttributes(attribute.String("credential.id", p.ID)),
	)
	defer func() {
		if err != nil {
			span.RecordError(err)
			span.SetStatus(codes.Error, "create profile failed")
		}
		span.End()
	}()

	body, err := json.Marshal(p)
	if err != nil {
		return fmt.Errorf("encode profile: %w", err)
	}

	req, err := http.NewRequestWithContext(ctx, http.MethodPost, c.baseURL+createPath, bytes.NewReader(body))
	if err != nil {
		return fmt.Errorf("build request: %w", err)
	}
	req.Header.Set("Content-Type", "application/json")
	req.Header.Set(internalHeader, "true")
	otel.GetTextMapPropagator().Inject(ctx, propagation.HeaderCarrier(req.Header))

	resp, err := c.http.Do(req)
	if err != nil {
		return &RemoteError{Unreachable: true, Message: unreachableMessage, Err: err}
	}
	defer resp.Body.Close()

	span.SetAttributes(attribute.Int("http.response.status_code", resp.StatusCode))

	if resp.StatusCode >= 200 && resp.StatusCode < 300 {
		_, _ = io.Copy(io.Discard, resp.Body)
		return nil
	}

	return &RemoteError{StatusCode: resp.StatusCode, Message: remoteMessage(resp)}
}

// remoteMessage extracts {"message": ...} from the error body, falling back
// to the status text.
func remoteMessage(resp *http.Response) string {
	var envelope struct {
		Message string `json:"message"`
	}
	b, err := io.ReadAll(io.LimitReader(resp.Body, maxErrorBodyBytes))
	if err == nil && json.Unmarshal(b, &envelope) == nil && envelope.Message != "" {
		return envelope.Message
	}
	if text := http.StatusText(resp.StatusCode); text != "" {
		return text
	}
	return fmt.Sprintf("status %d", resp.StatusCode)
}

// AsRemoteError is a convenience around errors.As.
func AsRemoteError(err error) (*RemoteError, bool) {
	var re *RemoteError
	ok := errors.As(err, &re)
	return re, ok
}

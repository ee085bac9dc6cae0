package scholar

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

	"go.uber.org/zap"

	"github.com/scholarstream/scholarstream-core/internal/domain/application"
	"github.com/scholarstream/scholarstream-core/internal/domain/profile"
	"github.com/scholarstream/scholarstream-core/internal/domain/shared"
	"github.com/scholarstream/scholarstream-core/pkg/circuitbreaker"
	"github.com/scholarstream/scholarstream-core/pkg/retry"
)

// ══════════════════════════════════════════════════════════════════════════════
// ERRORS
// ══════════════════════════════════════════════════════════════════════════════

// APIError is an error body returned by the backend of record with a 4xx/5xx
// status. 4xx responses are authoritative rejections; 5xx are transient.
type APIError struct {
	StatusCode int
	Code       string
	Message    string
}

// Error implements the error interface.
func (e *APIError) Error() string {
	if e.Code != "" {
		return fmt.Sprintf("scholar: api error %d (%s): %s", e.StatusCode, e.Code, e.Message)
	}
	return fmt.Sprintf("scholar: api error %d: %s", e.StatusCode, e.Message)
}

// IsRejection reports whether the error is an authoritative backend rejection
// (as opposed to a transient failure worth retrying or degrading over).
func IsRejection(err error) bool {
	var apiErr *APIError
	return errors.As(err, &apiErr) && apiErr.StatusCode >= 400 && apiErr.StatusCode < 500
}

// IsUnavailable reports whether the error indicates the backend is down or
// unreachable, which the onboarding flow degrades gracefully over.
func IsUnavailable(err error) bool {
	if err == nil {
		return false
	}
	if errors.Is(err, circuitbreaker.ErrCircuitOpen) || errors.Is(err, circuitbreaker.ErrTooManyRequests) {
		return true
	}
	var apiErr *APIError
	if errors.As(err, &apiErr) {
		return apiErr.StatusCode >= 500
	}
	// Network-level failures.
	msg := err.Error()
	for _, probe := range []string{"timeout", "connection refused", "no such host", "reset", "EOF"} {
		if strings.Contains(msg, probe) {
			return true
		}
	}
	return false
}

// classify wraps backend errors with the domain sentinels so callers can
// branch with errors.Is without importing this package: authoritative
// rejections carry shared.ErrRejected, outages shared.ErrServiceUnavailable.
func classify(err error) error {
	switch {
	case err == nil:
		return nil
	case IsRejection(err):
		return fmt.Errorf("%w: %w", shared.ErrRejected, err)
	case IsUnavailable(err):
		return fmt.Errorf("%w: %w", shared.ErrServiceUnavailable, err)
	default:
		return err
	}
}

// ══════════════════════════════════════════════════════════════════════════════
// CLIENT
// ══════════════════════════════════════════════════════════════════════════════

// Config contains configuration for the backend-of-record client.
type Config struct {
	// BaseURL of the scholarship backend API.
	BaseURL string

	// APIKey for deployments that require one; empty disables the header.
	APIKey string

	// Timeout is the HTTP request timeout.
	Timeout time.Duration

	// Logger for structured logging.
	Logger *zap.Logger
}

// DefaultConfig returns sensible defaults.
func DefaultConfig(baseURL string) Config {
	return Config{
		BaseURL: baseURL,
		Timeout: 30 * time.Second,
	}
}

// Client talks to the scholarship backend of record over HTTP/JSON.
// Reads retry transient failures; writes (discovery, delete) are sent once -
// the onboarding flow degrades on failure and deletes surface the error, so
// neither may be silently replayed.
type Client struct {
	config     Config
	httpClient *http.Client
	logger     *zap.Logger
	retrier    *retry.Retrier
	breaker    *circuitbreaker.CircuitBreaker
	mapper     *Mapper
}

// NewClient creates a new backend-of-record client.
func NewClient(config Config) *Client {
	if config.Logger == nil {
		config.Logger = zap.NewNop()
	}
	if config.Timeout <= 0 {
		config.Timeout = 30 * time.Second
	}

	return &Client{
		config: config,
		httpClient: &http.Client{
			Timeout: config.Timeout,
		},
		logger:  config.Logger,
		retrier: retry.BackendRetrier(),
		breaker: circuitbreaker.New("scholar-backend",
			circuitbreaker.WithIsFailure(func(err error) bool {
				// Authoritative rejections are the backend working correctly.
				return !IsRejection(err)
			}),
		),
		mapper: NewMapper(),
	}
}

// ─────────────────────────────────────────────────────────────────────────────
// Discovery
// ─────────────────────────────────────────────────────────────────────────────

// DiscoverScholarships submits the flattened profile and returns once the
// backend acknowledges the request. Matching keeps computing after the ack;
// the caller never waits for results here.
func (c *Client) DiscoverScholarships(ctx context.Context, userID string, draft *profile.ProfileDraft) error {
	payload := c.mapper.FlattenProfile(draft)
	if err := ValidatePayload(payload); err != nil {
		return err
	}

	req := DiscoverRequest{UserID: userID, Profile: payload}
	var ack AckDTO
	err := c.breaker.Execute(ctx, func(ctx context.Context) error {
		return c.doRequest(ctx, http.MethodPost, "/api/v1/scholarships/discover", req, &ack)
	})
	if err != nil {
		return classify(err)
	}

	c.logger.Info("discovery request acknowledged",
		zap.String("user_id", userID),
		zap.String("request_id", ack.RequestID))
	return nil
}

// ─────────────────────────────────────────────────────────────────────────────
// Applications
// ─────────────────────────────────────────────────────────────────────────────

// GetUserApplications fetches the full application collection and the
// backend's precomputed stats. Transient failures are retried.
func (c *Client) GetUserApplications(ctx context.Context, userID string) ([]application.Record, application.PortfolioStats, error) {
	var resp ApplicationsResponseDTO
	err := c.breaker.Execute(ctx, func(ctx context.Context) error {
		return c.retrier.Do(ctx, func(ctx context.Context) error {
			err := c.doRequest(ctx, http.MethodGet, "/api/v1/users/"+userID+"/applications", nil, &resp)
			if err != nil && IsUnavailable(err) {
				return retry.Retryable(err)
			}
			return err
		})
	})
	if err != nil {
		return nil, application.PortfolioStats{}, classify(err)
	}

	records, dropped := c.mapper.RecordsFromResponse(&resp)
	for _, dropErr := range dropped {
		c.logger.Warn("dropped invalid application record", zap.Error(dropErr))
	}
	return records, c.mapper.StatsFromDTO(resp.Stats), nil
}

// DeleteApplication asks the backend to delete a draft application. The
// backend is authoritative: a rejection (e.g. the record is no longer draft)
// comes back as an APIError and is never retried.
func (c *Client) DeleteApplication(ctx context.Context, applicationID string) error {
	return classify(c.breaker.Execute(ctx, func(ctx context.Context) error {
		return c.doRequest(ctx, http.MethodDelete, "/api/v1/applications/"+applicationID, nil, nil)
	}))
}

// IsHealthy checks if the backend is reachable.
func (c *Client) IsHealthy(ctx context.Context) bool {
	return c.doRequest(ctx, http.MethodGet, "/health", nil, nil) == nil
}

// ─────────────────────────────────────────────────────────────────────────────
// Transport
// ─────────────────────────────────────────────────────────────────────────────

// doRequest performs a single HTTP request against the backend.
func (c *Client) doRequest(ctx context.Context, method, path string, body interface{}, result interface{}) error {
	fullURL := c.config.BaseURL + path

	var bodyReader io.Reader
	if body != nil {
		jsonBody, err := json.Marshal(body)
		if err != nil {
			return fmt.Errorf("marshal body: %w", err)
		}
		bodyReader = bytes.NewReader(jsonBody)
	}

	req, err := http.NewRequestWithContext(ctx, method, fullURL, bodyReader)
	if err != nil {
		return fmt.Errorf("create request: %w", err)
	}

	req.Header.Set("Content-Type", "application/json")
	req.Header.Set("Accept", "application/json")
	if c.config.APIKey != "" {
		req.Header.Set("Authorization", "Bearer "+c.config.APIKey)
	}

	c.logger.Debug("backend request", zap.String("method", method), zap.String("path", path))

	resp, err := c.httpClient.Do(req)
	if err != nil {
		return fmt.Errorf("http request: %w", err)
	}
	defer resp.Body.Close()

	respBody, err := io.ReadAll(resp.Body)
	if err != nil {
		return fmt.Errorf("read response: %w", err)
	}

	if resp.StatusCode >= 400 {
		apiErr := &APIError{StatusCode: resp.StatusCode, Message: http.StatusText(resp.StatusCode)}
		var dto APIErrorDTO
		if jsonErr := json.Unmarshal(respBody, &dto); jsonErr == nil && dto.Message != "" {
			apiErr.Code = dto.Code
			apiErr.Message = dto.Message
		}
		return apiErr
	}

	if result != nil && len(respBody) > 0 {
		if err := json.Unmarshal(respBody, result); err != nil {
			return fmt.Errorf("unmarshal response: %w", err)
		}
	}
	return nil
}

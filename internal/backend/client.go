package backend

import (
	"context"
	"errors"
	"fmt"
	"io"
	"net/http"
	"net/url"
	"strings"
	"time"

	"github.com/cozy-creator/tf-adapter/internal/adapter"
	"go.uber.org/zap"
)

var ErrInvalidBaseURL = errors.New("invalid backend url")

// Client posts prediction requests to the TensorFlow Serving REST API.
type Client struct {
	predictURL string
	httpClient *http.Client
	logger     *zap.Logger
}

type ClientOption func(*Client)

func WithHTTPClient(httpClient *http.Client) ClientOption {
	return func(c *Client) {
		c.httpClient = httpClient
	}
}

func WithLogger(logger *zap.Logger) ClientOption {
	return func(c *Client) {
		c.logger = logger
	}
}

func NewClient(baseURL, model string, timeout time.Duration, opts ...ClientOption) (*Client, error) {
	u, err := url.Parse(baseURL)
	if err != nil {
		return nil, fmt.Errorf("%w: %w", ErrInvalidBaseURL, err)
	}
	if (u.Scheme != "http" && u.Scheme != "https") || u.Host == "" {
		return nil, fmt.Errorf("%w: %q", ErrInvalidBaseURL, baseURL)
	}
	if model == "" {
		return nil, errors.New("model name is required")
	}

	client := &Client{
		predictURL: PredictURL(baseURL, model),
		httpClient: &http.Client{Timeout: timeout},
		logger:     zap.NewNop(),
	}

	for _, opt := range opts {
		opt(client)
	}

	return client, nil
}

// PredictURL returns <baseURL>/v1/models/<model>:predict.
func PredictURL(baseURL, model string) string {
	return fmt.Sprintf("%s/v1/models/%s:predict", strings.TrimRight(baseURL, "/"), url.PathEscape(model))
}

func (c *Client) PredictURL() string {
	return c.predictURL
}

// Predict sends body as JSON. Any HTTP status is returned as a response;
// only transport failures produce an error.
func (c *Client) Predict(ctx context.Context, body string) (adapter.BackendResponse, error) {
	req, err := http.NewRequestWithContext(ctx, http.MethodPost, c.predictURL, strings.NewReader(body))
	if err != nil {
		return adapter.BackendResponse{}, fmt.Errorf("failed to create http request: %w", err)
	}
	req.Header.Set("Content-Type", "application/json")

	start := time.Now()
	resp, err := c.httpClient.Do(req)
	if err != nil {
		return adapter.BackendResponse{}, fmt.Errorf("failed to make http request: %w", err)
	}
	defer resp.Body.Close()

	data, err := io.ReadAll(resp.Body)
	if err != nil {
		return adapter.BackendResponse{}, fmt.Errorf("failed to read response body: %w", err)
	}

	c.logger.Debug("prediction request finished",
		zap.String("url", c.predictURL),
		zap.Int("status_code", resp.StatusCode),
		zap.Int("response_bytes", len(data)),
		zap.Duration("elapsed", time.Since(start)),
	)

	return adapter.BackendResponse{StatusCode: resp.StatusCode, Body: data}, nil
}

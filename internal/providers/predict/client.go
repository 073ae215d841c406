package predict

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"time"

	"github.com/sandevgo/medgraph/internal/config"
	"github.com/sandevgo/medgraph/internal/core"
	"github.com/sandevgo/medgraph/pkg/log"
	"github.com/sandevgo/medgraph/pkg/retry"
)

// PredictionError normalizes failures from the external model service.
type PredictionError struct {
	Model  string
	Status int
	Msg    string
}

func (e *PredictionError) Error() string {
	return fmt.Sprintf("prediction %s failed (http %d): %s", e.Model, e.Status, e.Msg)
}

// Client forwards validated feature sets to an external HTTP prediction
// service. Response fields pass through unmodified.
type Client struct {
	client  *http.Client
	baseURL string
	retrier *retry.Retrier
}

func NewClient(cfg *config.PredictConfig, retrier *retry.Retrier) *Client {
	return &Client{
		client: &http.Client{
			Timeout: time.Duration(cfg.TimeoutSec) * time.Second,
		},
		baseURL: cfg.BaseURL,
		retrier: retrier,
	}
}

// Predict posts the feature payload to /models/{model}/predict and returns
// the raw response body. Client errors are permanent; server and transport
// errors are retried per policy.
func (c *Client) Predict(ctx context.Context, model string, features map[string]any) (string, error) {
	payload, err := json.Marshal(features)
	if err != nil {
		return "", fmt.Errorf("failed to marshal features: %w", err)
	}

	var body string
	err = c.retrier.Do(ctx, func(ctx context.Context) error {
		url := fmt.Sprintf("%s/models/%s/predict", c.baseURL, model)
		req, err := http.NewRequestWithContext(ctx, http.MethodPost, url, bytes.NewReader(payload))
		if err != nil {
			return retry.Permanent(fmt.Errorf("failed to create request: %w", err))
		}
		req.Header.Set("Content-Type", "application/json")
		req.Header.Set("User-Agent", core.UserAgent)

		resp, err := c.client.Do(req)
		if err != nil {
			return fmt.Errorf("prediction request failed: %w", err)
		}
		defer resp.Body.Close()

		data, err := io.ReadAll(io.LimitReader(resp.Body, 1<<20))
		if err != nil {
			return fmt.Errorf("failed to read prediction response: %w", err)
		}

		switch {
		case resp.StatusCode >= 500 || resp.StatusCode == http.StatusTooManyRequests:
			return &PredictionError{Model: model, Status: resp.StatusCode, Msg: string(data)}
		case resp.StatusCode >= 400:
			return retry.Permanent(&PredictionError{Model: model, Status: resp.StatusCode, Msg: string(data)})
		}

		body = string(data)
		return nil
	})
	if err != nil {
		return "", err
	}

	log.FromCtx(ctx).Debug().Str("model", model).Msg("prediction completed")
	return body, nil
}

// Ping reports reachability for the health endpoint.
func (c *Client) Ping(ctx context.Context) error {
	req, err := http.NewRequestWithContext(ctx, http.MethodGet, c.baseURL+"/health", nil)
	if err != nil {
		return err
	}
	resp, err := c.client.Do(req)
	if err != nil {
		return err
	}
	defer resp.Body.Close()
	if resp.StatusCode >= 500 {
		return fmt.Errorf("prediction service unhealthy: http %d", resp.StatusCode)
	}
	return nil
}

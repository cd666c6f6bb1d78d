package retrain

import (
	"context"
	"fmt"
	"time"

	"AstroPulse/pkg/config"
	xhttp "AstroPulse/pkg/http"
)

// HTTPClient talks to the Python ML sidecar that owns model training.
type HTTPClient struct {
	baseURL  string
	client   *xhttp.Client
	attempts int
}

func NewHTTPClient(cfg *config.Config) *HTTPClient {
	timeout := cfg.Retrain.Timeout
	if timeout <= 0 {
		timeout = 30 * time.Second
	}
	return &HTTPClient{
		baseURL:  cfg.Retrain.ServiceURL,
		client:   xhttp.NewClient(xhttp.WithTimeout(timeout)),
		attempts: cfg.Retrain.Attempts,
	}
}

type retrainReq struct {
	Symbol string `json:"symbol"`
	From   string `json:"from"`
	To     string `json:"to"`
}

type retrainResp struct {
	JobID  string `json:"job_id"`
	Status string `json:"status"`
}

// Retrain asks the sidecar to retrain the model for symbol over the given
// range. Transient errors are retried with a simple backoff.
func (c *HTTPClient) Retrain(ctx context.Context, symbol string, from, to time.Time) (string, error) {
	if c.baseURL == "" {
		return "", fmt.Errorf("retrain service url not configured")
	}

	req := retrainReq{
		Symbol: symbol,
		From:   from.UTC().Format(time.RFC3339),
		To:     to.UTC().Format(time.RFC3339),
	}

	var resp retrainResp
	var err error
	for i := 1; i <= max(1, c.attempts); i++ {
		err = c.client.SendAndParse(ctx, &xhttp.RequestOptions{
			Method: xhttp.MethodPost,
			URL:    c.baseURL + "/models/retrain",
			Headers: map[string]string{
				"Content-Type": "application/json",
			},
			Body: req,
		}, &resp)
		if err == nil {
			return resp.JobID, nil
		}
		select {
		case <-time.After(time.Duration(i) * 200 * time.Millisecond):
		case <-ctx.Done():
			return "", ctx.Err()
		}
	}
	return "", fmt.Errorf("post retrain: %w", err)
}

// Package forecast provides the client for the external ML prediction
// service. The service runs four forecasting models per domain and returns
// their outputs plus a comparison block; everything behind POST /predict is
// opaque to this client.
package forecast

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"net/url"
	"path"
	"time"

	"github.com/redis/go-redis/v9"
	"go.uber.org/zap"

	"github.com/carbonlens/carbon-engine/pkg/apperrors"
	"github.com/carbonlens/carbon-engine/pkg/models"
)

// DefaultTimeout bounds prediction calls when no timeout is configured, so a
// slow service cannot hold a request slot indefinitely.
const DefaultTimeout = 8 * time.Second

// Client calls the prediction service over HTTP. Successful responses are
// cached in Redis (optional) keyed by domain and input; the service's models
// are deterministic per input, so short-TTL reuse is safe.
type Client struct {
	baseURL    string
	httpClient *http.Client
	cache      *redis.Client
	cacheTTL   time.Duration
	logger     *zap.Logger
}

// NewClient creates a prediction service client. cache may be nil to disable
// response caching.
func NewClient(baseURL string, timeout time.Duration, cache *redis.Client, cacheTTL time.Duration, logger *zap.Logger) *Client {
	if timeout <= 0 {
		timeout = DefaultTimeout
	}
	return &Client{
		baseURL:    baseURL,
		httpClient: &http.Client{Timeout: timeout},
		cache:      cache,
		cacheTTL:   cacheTTL,
		logger:     logger.Named("forecast"),
	}
}

// wireResponse mirrors the service payload. Model fields are pointers so a
// missing output is distinguishable from zero; any missing model fails the
// whole result, never a partial ensemble.
type wireResponse struct {
	Predictions struct {
		Linear       *float64 `json:"linear"`
		RandomForest *float64 `json:"random_forest"`
		XGBoost      *float64 `json:"xgboost"`
		Neural       *float64 `json:"neural"`
		Ensemble     *float64 `json:"ensemble"`
	} `json:"predictions"`
	Comparison *struct {
		LinearChange       *float64 `json:"linear_change"`
		RandomForestChange *float64 `json:"random_forest_change"`
		XGBoostChange      *float64 `json:"xgboost_change"`
		NeuralChange       *float64 `json:"neural_change"`
	} `json:"comparison"`
}

// Predict posts the raw input value to POST {base}/predict/{domain}. The
// service performs its own scaling, so the input is not the computed
// footprint. Every failure mode (network, timeout, non-2xx, malformed or
// incomplete payload) maps to apperrors.ErrPredictionUnavailable.
func (c *Client) Predict(ctx context.Context, domain models.Domain, input float64) (*models.PredictionResult, error) {
	cacheKey := fmt.Sprintf("forecast:%s:%g", domain, input)
	if cached := c.cacheGet(ctx, cacheKey); cached != nil {
		return cached, nil
	}

	endpoint, err := buildURL(c.baseURL, "predict", string(domain))
	if err != nil {
		return nil, fmt.Errorf("%w: invalid service URL: %v", apperrors.ErrPredictionUnavailable, err)
	}

	body, err := json.Marshal(map[string]float64{"input": input})
	if err != nil {
		return nil, fmt.Errorf("%w: failed to encode request: %v", apperrors.ErrPredictionUnavailable, err)
	}

	req, err := http.NewRequestWithContext(ctx, http.MethodPost, endpoint, bytes.NewReader(body))
	if err != nil {
		return nil, fmt.Errorf("%w: failed to create request: %v", apperrors.ErrPredictionUnavailable, err)
	}
	req.Header.Set("Content-Type", "application/json")
	req.Header.Set("Accept", "application/json")

	resp, err := c.httpClient.Do(req)
	if err != nil {
		return nil, fmt.Errorf("%w: %v", apperrors.ErrPredictionUnavailable, err)
	}
	defer resp.Body.Close()

	respBody, err := io.ReadAll(resp.Body)
	if err != nil {
		return nil, fmt.Errorf("%w: failed to read response: %v", apperrors.ErrPredictionUnavailable, err)
	}

	if resp.StatusCode < 200 || resp.StatusCode > 299 {
		c.logger.Error("Prediction service returned error",
			zap.String("domain", string(domain)),
			zap.Int("status", resp.StatusCode),
			zap.ByteString("body", respBody))
		return nil, fmt.Errorf("%w: service returned status %d", apperrors.ErrPredictionUnavailable, resp.StatusCode)
	}

	var wire wireResponse
	if err := json.Unmarshal(respBody, &wire); err != nil {
		return nil, fmt.Errorf("%w: malformed response: %v", apperrors.ErrPredictionUnavailable, err)
	}

	result, err := wire.toResult()
	if err != nil {
		return nil, err
	}

	c.cacheSet(ctx, cacheKey, result)
	return result, nil
}

func (w *wireResponse) toResult() (*models.PredictionResult, error) {
	p := w.Predictions
	if p.Linear == nil || p.RandomForest == nil || p.XGBoost == nil || p.Neural == nil {
		return nil, fmt.Errorf("%w: response missing model predictions", apperrors.ErrPredictionUnavailable)
	}

	result := &models.PredictionResult{
		Predictions: models.PredictionSet{
			Linear:       *p.Linear,
			RandomForest: *p.RandomForest,
			XGBoost:      *p.XGBoost,
			Neural:       *p.Neural,
		},
	}
	if p.Ensemble != nil {
		result.Predictions.Ensemble = *p.Ensemble
	}

	// A partial comparison block is treated as absent; the orchestrator
	// derives it locally instead.
	if c := w.Comparison; c != nil &&
		c.LinearChange != nil && c.RandomForestChange != nil &&
		c.XGBoostChange != nil && c.NeuralChange != nil {
		result.Comparison = &models.ComparisonSet{
			LinearChange:       *c.LinearChange,
			RandomForestChange: *c.RandomForestChange,
			XGBoostChange:      *c.XGBoostChange,
			NeuralChange:       *c.NeuralChange,
		}
	}

	return result, nil
}

// Health probes GET {base}/health. No response or a non-2xx status means the
// service is unavailable; callers use this to short-circuit with a clear
// "service down" answer instead of failing a calculation.
func (c *Client) Health(ctx context.Context) error {
	endpoint, err := buildURL(c.baseURL, "health")
	if err != nil {
		return fmt.Errorf("%w: invalid service URL: %v", apperrors.ErrPredictionUnavailable, err)
	}

	req, err := http.NewRequestWithContext(ctx, http.MethodGet, endpoint, nil)
	if err != nil {
		return fmt.Errorf("%w: failed to create request: %v", apperrors.ErrPredictionUnavailable, err)
	}

	resp, err := c.httpClient.Do(req)
	if err != nil {
		return fmt.Errorf("%w: %v", apperrors.ErrPredictionUnavailable, err)
	}
	defer resp.Body.Close()
	_, _ = io.Copy(io.Discard, resp.Body)

	if resp.StatusCode < 200 || resp.StatusCode > 299 {
		return fmt.Errorf("%w: health check returned status %d", apperrors.ErrPredictionUnavailable, resp.StatusCode)
	}
	return nil
}

// cacheGet returns a cached result or nil. Cache outages are logged and
// treated as misses.
func (c *Client) cacheGet(ctx context.Context, key string) *models.PredictionResult {
	if c.cache == nil {
		return nil
	}

	data, err := c.cache.Get(ctx, key).Bytes()
	if err != nil {
		if err != redis.Nil {
			c.logger.Debug("Forecast cache read failed", zap.Error(err))
		}
		return nil
	}

	var result models.PredictionResult
	if err := json.Unmarshal(data, &result); err != nil {
		c.logger.Debug("Forecast cache entry corrupt, ignoring", zap.String("key", key))
		return nil
	}
	return &result
}

func (c *Client) cacheSet(ctx context.Context, key string, result *models.PredictionResult) {
	if c.cache == nil || c.cacheTTL <= 0 {
		return
	}

	data, err := json.Marshal(result)
	if err != nil {
		return
	}
	if err := c.cache.Set(ctx, key, data, c.cacheTTL).Err(); err != nil {
		c.logger.Debug("Forecast cache write failed", zap.Error(err))
	}
}

// buildURL constructs a URL by parsing the base and joining path segments.
func buildURL(baseURL string, pathSegments ...string) (string, error) {
	u, err := url.Parse(baseURL)
	if err != nil {
		return "", fmt.Errorf("invalid base URL: %w", err)
	}

	segments := append([]string{u.Path}, pathSegments...)
	u.Path = path.Join(segments...)

	return u.String(), nil
}

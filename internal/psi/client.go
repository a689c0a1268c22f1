// Package psi - клиент Google PageSpeed Insights v5. Альтернативный
// источник данных: поле CrUX с откатом на лабораторный прогон Lighthouse.
package psi

import (
	"context"
	"errors"
	"fmt"
	"io"
	"net/http"
	"net/url"
	"time"

	"go.uber.org/zap"

	"github.com/kazakovdmitriy/go-pagespeed-audit/internal/model"
	"github.com/kazakovdmitriy/go-pagespeed-audit/internal/retry"
)

const apiEndpoint = "https://www.googleapis.com/pagespeedonline/v5/runPagespeed"

// Client выполняет запросы к PageSpeed API
type Client struct {
	apiKey     string
	httpClient *http.Client
	logger     *zap.Logger
}

// NewClient создает клиент PageSpeed API
func NewClient(apiKey string, timeout time.Duration, logger *zap.Logger) *Client {
	return &Client{
		apiKey: apiKey,
		httpClient: &http.Client{
			Timeout: timeout,
		},
		logger: logger,
	}
}

type statusError struct {
	code int
}

func (e *statusError) Error() string {
	return fmt.Sprintf("pagespeed api returned status %d", e.code)
}

// Run запрашивает аудит URL для стратегии mobile или desktop.
// Транспортные ошибки и 5xx/429 повторяются по фиксированному
// расписанию, клиентские ошибки API возвращаются сразу.
func (c *Client) Run(ctx context.Context, pageURL, strategy string) (*model.MetricBundle, error) {
	query := url.Values{}
	query.Set("url", pageURL)
	query.Set("strategy", strategy)
	query.Set("category", "performance")
	query.Set("key", c.apiKey)

	requestURL := apiEndpoint + "?" + query.Encode()

	var body []byte

	cfg := retry.RetryConfig{
		MaxRetries:    2,
		IsRetryableFn: isRetryable,
	}

	err := retry.Do(ctx, cfg, func() error {
		req, err := http.NewRequestWithContext(ctx, http.MethodGet, requestURL, nil)
		if err != nil {
			return err
		}

		resp, err := c.httpClient.Do(req)
		if err != nil {
			return err
		}
		defer resp.Body.Close()

		if resp.StatusCode != http.StatusOK {
			io.Copy(io.Discard, resp.Body)
			return &statusError{code: resp.StatusCode}
		}

		body, err = io.ReadAll(resp.Body)
		return err
	})
	if err != nil {
		c.logger.Error("pagespeed api request failed",
			zap.String("url", pageURL),
			zap.String("strategy", strategy),
			zap.Error(err),
		)
		return nil, fmt.Errorf("pagespeed api request for %s: %w", pageURL, err)
	}

	bundle, err := Extract(body)
	if err != nil {
		return nil, fmt.Errorf("pagespeed response for %s: %w", pageURL, err)
	}

	c.logger.Debug("pagespeed api response extracted",
		zap.String("url", pageURL),
		zap.String("strategy", strategy),
		zap.String("source", bundle.Source),
	)
	return bundle, nil
}

func isRetryable(err error) bool {
	var se *statusError
	if errors.As(err, &se) {
		return se.code >= http.StatusInternalServerError || se.code == http.StatusTooManyRequests
	}
	// Транспортные ошибки повторяемы, ошибки разбора - нет
	return true
}

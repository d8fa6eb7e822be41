package store

import (
	"compress/gzip"
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"net/http"
	"net/url"
	"time"

	"github.com/cenkalti/backoff/v4"
	"go.uber.org/zap"

	"github.com/spigell/momster-match/internal/utils"
)

const (
	contentType     = "application/json"
	contentEncoding = "gzip"
	maxErrorBody    = 512
)

// StatusError is a non-2xx reply from PostgREST.
type StatusError struct {
	Code int
	Body string
}

func (e *StatusError) Error() string {
	if e.Body == "" {
		return fmt.Sprintf("bad status: %d", e.Code)
	}
	return fmt.Sprintf("bad status: %d: %s", e.Code, e.Body)
}

// getJSON fetches table rows into target. Transport errors and 5xx replies are
// retried with exponential backoff, anything else is returned at once.
func (c *Client) getJSON(ctx context.Context, table string, q url.Values, target any) error {
	endpoint := fmt.Sprintf("%s/%s", c.APIURL, table)
	attempt := 0

	op := func() error {
		attempt++

		req, err := http.NewRequestWithContext(ctx, http.MethodGet, endpoint, nil)
		if err != nil {
			return backoff.Permanent(err)
		}
		req = c.setHeaders(req)
		req.URL.RawQuery = q.Encode()

		data, status, err := c.do(req)
		if err != nil {
			c.logger.Warn("store request failed", zap.String("table", table), zap.Int("attempt", attempt), zap.Error(err))
			return err
		}

		if status < 200 || status >= 300 {
			statusErr := &StatusError{Code: status, Body: utils.TruncateForLog(string(data), maxErrorBody)}
			if status >= http.StatusInternalServerError {
				c.logger.Warn("store returned server error", zap.String("table", table), zap.Int("attempt", attempt), zap.Int("status", status))
				return statusErr
			}
			return backoff.Permanent(statusErr)
		}

		if err := json.Unmarshal(data, target); err != nil {
			return backoff.Permanent(fmt.Errorf("decode %s rows: %w", table, err))
		}
		return nil
	}

	if err := backoff.Retry(op, c.backOff(ctx)); err != nil {
		return fmt.Errorf("query %s: %w", table, err)
	}
	return nil
}

func (c *Client) backOff(ctx context.Context) backoff.BackOff {
	expo := backoff.NewExponentialBackOff()
	expo.InitialInterval = c.retryInterval
	expo.MaxInterval = 10 * c.retryInterval
	expo.MaxElapsedTime = time.Minute

	return backoff.WithContext(backoff.WithMaxRetries(expo, c.maxRetries), ctx)
}

func (c *Client) do(req *http.Request) ([]byte, int, error) {
	c.logger.Debug("make request", zap.String("url", req.URL.String()))

	resp, err := c.HTTPClient.Do(req)
	if err != nil {
		return nil, 0, err
	}
	defer resp.Body.Close()

	var reader io.Reader = resp.Body
	if resp.Header.Get("Content-Encoding") == "gzip" {
		gz, err := gzip.NewReader(resp.Body)
		if err != nil {
			return nil, resp.StatusCode, err
		}
		defer gz.Close()
		reader = gz
	}

	data, err := io.ReadAll(reader)
	if err != nil {
		return nil, resp.StatusCode, err
	}

	return data, resp.StatusCode, nil
}

func (c *Client) setHeaders(req *http.Request) *http.Request {
	req.Header.Set("apikey", c.apiKey)
	req.Header.Set("Authorization", fmt.Sprintf("Bearer %s", c.apiKey))
	req.Header.Set("User-Agent", c.UserAgent)
	req.Header.Set("Accept", contentType)
	req.Header.Set("Accept-Encoding", contentEncoding)

	return req
}

func isStatus(err error, code int) bool {
	var statusErr *StatusError
	return errors.As(err, &statusErr) && statusErr.Code == code
}

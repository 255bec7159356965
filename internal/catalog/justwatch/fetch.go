package justwatch

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"iter"
	"log/slog"
	"net/http"
	"net/url"
	"strconv"
	"time"

	"github.com/Digital-Shane/cinemabot/internal/catalog"
	"github.com/Digital-Shane/cinemabot/internal/metrics"
)

type searchRequest struct {
	Query    string `json:"query"`
	Page     int    `json:"page"`
	PageSize int    `json:"page_size"`
}

type searchResponse struct {
	Items []json.RawMessage `json:"items"`
}

// BaseSearch streams the candidates for query in catalog order.
func (c *Client) BaseSearch(ctx context.Context, query string) iter.Seq2[catalog.BaseMovie, error] {
	return catalog.Candidates(ctx, func(ctx context.Context) ([]json.RawMessage, error) {
		body := searchRequest{Query: query, Page: 1, PageSize: c.pageSize}
		data, err := c.do(ctx, "search", http.MethodPost, "/content/titles/"+c.locale+"/popular", body)
		if err != nil {
			return nil, err
		}

		var resp searchResponse
		if err := json.Unmarshal(data, &resp); err != nil {
			return nil, fmt.Errorf("search response: %w: %v", catalog.ErrMalformed, err)
		}
		c.logger.Debug("search completed",
			slog.String("query", query),
			slog.Int("items", len(resp.Items)),
		)
		return resp.Items, nil
	})
}

// MovieDetails fetches the full record for id and kind.
func (c *Client) MovieDetails(ctx context.Context, id int, kind string) (*catalog.Movie, error) {
	path := "/content/titles/" + url.PathEscape(kind) + "/" + strconv.Itoa(id) + "/locale/" + c.locale
	data, err := c.do(ctx, "title", http.MethodGet, path, nil)
	if err != nil {
		return nil, err
	}
	return catalog.ParseMovie(data, id)
}

func (c *Client) fetchProviders(ctx context.Context) (*catalog.Directory, error) {
	data, err := c.do(ctx, "providers", http.MethodGet, "/content/providers/locale/"+c.locale, nil)
	if err != nil {
		return nil, err
	}
	return catalog.ParseDirectory(data)
}

// do performs one API call through the dispatcher and rate limiter and
// records its outcome.
func (c *Client) do(ctx context.Context, operation, method, path string, body any) ([]byte, error) {
	var payload []byte
	err := c.dispatcher.Do(ctx, func(ctx context.Context) error {
		if err := c.limiter.Wait(ctx); err != nil {
			return err
		}

		start := time.Now()
		data, err := c.roundTrip(ctx, method, path, body)
		metrics.CatalogRequestsTotal.WithLabelValues(catalogName, operation, statusLabel(err)).Inc()
		metrics.CatalogRequestDuration.WithLabelValues(catalogName, operation).Observe(time.Since(start).Seconds())
		if err != nil {
			c.logger.Warn("catalog request failed",
				slog.String("operation", operation),
				slog.String("path", path),
				slog.String("error", err.Error()),
			)
			return err
		}
		payload = data
		return nil
	})
	return payload, err
}

func (c *Client) roundTrip(ctx context.Context, method, path string, body any) ([]byte, error) {
	req, err := c.buildRequest(ctx, method, path, body)
	if err != nil {
		return nil, err
	}

	resp, err := c.http.Do(req)
	if err != nil {
		return nil, mapError(err)
	}
	defer resp.Body.Close()

	data, err := io.ReadAll(io.LimitReader(resp.Body, maxResponseBytes))
	if err != nil {
		return nil, mapError(err)
	}
	if resp.StatusCode < 200 || resp.StatusCode > 299 {
		return nil, statusError(resp.StatusCode, data)
	}
	return data, nil
}

// buildRequest constructs an HTTP request with common headers applied.
func (c *Client) buildRequest(ctx context.Context, method, path string, body any) (*http.Request, error) {
	var reader io.Reader
	if body != nil {
		encoded, err := json.Marshal(body)
		if err != nil {
			return nil, fmt.Errorf("encode request body: %w", err)
		}
		reader = bytes.NewReader(encoded)
	}

	req, err := http.NewRequestWithContext(ctx, method, c.baseURL+path, reader)
	if err != nil {
		return nil, err
	}
	req.Header.Set("Accept", "application/json")
	req.Header.Set("User-Agent", c.userAgent)
	if body != nil {
		req.Header.Set("Content-Type", "application/json")
	}
	return req, nil
}

// mapError maps transport failures to catalog errors. Context errors pass
// through untouched so callers can recognise cancellation.
func mapError(err error) error {
	if err == nil {
		return nil
	}
	if errors.Is(err, context.Canceled) || errors.Is(err, context.DeadlineExceeded) {
		return err
	}
	return &catalog.CatalogError{
		Catalog: catalogName,
		Code:    catalog.CodeUnavailable,
		Message: "request failed: " + err.Error(),
		Retry:   true,
	}
}

// statusError maps a non-2xx response to a catalog error.
func statusError(status int, body []byte) error {
	snippet := string(bytes.TrimSpace(body))
	if len(snippet) > 200 {
		snippet = snippet[:200]
	}

	ce := &catalog.CatalogError{
		Catalog: catalogName,
		Status:  status,
		Message: http.StatusText(status),
	}
	if snippet != "" {
		ce.Message += ": " + snippet
	}

	switch {
	case status == http.StatusNotFound:
		ce.Code = catalog.CodeNotFound
	case status == http.StatusTooManyRequests:
		ce.Code = catalog.CodeRateLimited
		ce.Retry = true
	case status >= 500:
		ce.Code = catalog.CodeUnavailable
		ce.Retry = true
	default:
		ce.Code = catalog.CodeHTTP
	}
	return ce
}

func statusLabel(err error) string {
	if err == nil {
		return "ok"
	}
	var ce *catalog.CatalogError
	if errors.As(err, &ce) {
		return ce.Code
	}
	if errors.Is(err, context.Canceled) || errors.Is(err, context.DeadlineExceeded) {
		return "CANCELED"
	}
	return catalog.CodeUnknown
}

// Package justwatch implements the catalog backed by the JustWatch content API.
package justwatch

import (
	"context"
	"fmt"
	"log/slog"
	"net/http"
	"strings"
	"time"

	"github.com/Digital-Shane/cinemabot/internal/catalog"
	"go.opentelemetry.io/contrib/instrumentation/net/http/otelhttp"
	"golang.org/x/time/rate"
)

const (
	catalogName = "justwatch"

	DefaultBaseURL = "https://apis.justwatch.com"
	DefaultLocale  = "ru_RU"

	defaultPageSize          = 30
	defaultTimeout           = 15 * time.Second
	defaultRequestsPerSecond = 5
	defaultUserAgent         = "cinemabot/1.0"
	maxResponseBytes         = 8 << 20
)

// Config describes how to reach the JustWatch API.
type Config struct {
	BaseURL           string
	Locale            string // e.g. "ru_RU", "en_US"
	PageSize          int
	Timeout           time.Duration
	MaxConcurrent     int
	RequestsPerSecond float64
	UserAgent         string
	Client            *http.Client
	Logger            *slog.Logger
}

// Client implements catalog.Catalog for JustWatch
type Client struct {
	baseURL   string
	locale    string
	pageSize  int
	userAgent string

	http       *http.Client
	limiter    *rate.Limiter
	dispatcher *catalog.Dispatcher
	providers  *catalog.Directory
	logger     *slog.Logger
}

var _ catalog.Catalog = (*Client)(nil)

// New creates a client and loads the provider directory. The directory is
// fetched exactly once; a failure here means the client cannot be used.
func New(ctx context.Context, cfg Config) (*Client, error) {
	baseURL := strings.TrimSpace(cfg.BaseURL)
	if baseURL == "" {
		baseURL = DefaultBaseURL
	}
	locale := strings.TrimSpace(cfg.Locale)
	if locale == "" {
		locale = DefaultLocale
	}
	pageSize := cfg.PageSize
	if pageSize <= 0 {
		pageSize = defaultPageSize
	}
	timeout := cfg.Timeout
	if timeout <= 0 {
		timeout = defaultTimeout
	}
	rps := cfg.RequestsPerSecond
	if rps <= 0 {
		rps = defaultRequestsPerSecond
	}
	userAgent := strings.TrimSpace(cfg.UserAgent)
	if userAgent == "" {
		userAgent = defaultUserAgent
	}
	httpClient := cfg.Client
	if httpClient == nil {
		httpClient = &http.Client{Timeout: timeout, Transport: otelhttp.NewTransport(http.DefaultTransport)}
	}
	logger := cfg.Logger
	if logger == nil {
		logger = slog.Default()
	}

	c := &Client{
		baseURL:    strings.TrimRight(baseURL, "/"),
		locale:     locale,
		pageSize:   pageSize,
		userAgent:  userAgent,
		http:       httpClient,
		limiter:    rate.NewLimiter(rate.Limit(rps), max(1, int(rps))),
		dispatcher: catalog.NewDispatcher(cfg.MaxConcurrent, timeout),
		logger:     logger.With(slog.String("catalog", catalogName)),
	}

	providers, err := c.fetchProviders(ctx)
	if err != nil {
		return nil, fmt.Errorf("load provider directory: %w", err)
	}
	c.providers = providers

	c.logger.Info("catalog client initialized",
		slog.String("baseURL", c.baseURL),
		slog.String("locale", c.locale),
		slog.Int("providers", providers.Len()),
	)
	return c, nil
}

// Factory opens a JustWatch client from registry options.
func Factory(ctx context.Context, opts catalog.Options) (catalog.Catalog, error) {
	cfg := Config{
		BaseURL:           opts.String("base_url", DefaultBaseURL),
		Locale:            opts.String("locale", DefaultLocale),
		PageSize:          opts.Int("page_size", defaultPageSize),
		Timeout:           opts.Duration("timeout", defaultTimeout),
		MaxConcurrent:     opts.Int("max_concurrent", catalog.DefaultMaxConcurrent),
		RequestsPerSecond: opts.Float("requests_per_second", defaultRequestsPerSecond),
		UserAgent:         opts.String("user_agent", defaultUserAgent),
		Logger:            opts.Logger,
	}
	if hc, ok := opts.Settings["http_client"].(*http.Client); ok {
		cfg.Client = hc
	}
	return New(ctx, cfg)
}

// Providers exposes the provider directory loaded at construction.
func (c *Client) Providers() *catalog.Directory {
	return c.providers
}

// ProviderName returns the display name of a streaming provider.
func (c *Client) ProviderName(providerID int) (string, bool) {
	return c.providers.Name(c.logger, providerID)
}

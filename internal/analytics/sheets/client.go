package sheets

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"net/http"
	"strings"
	"sync"
	"time"

	"github.com/jekabolt/shop-metrics/internal/entity"
	gerr "github.com/jekabolt/shop-metrics/internal/errors"
	"github.com/shopspring/decimal"
	"github.com/sony/gobreaker"
	"google.golang.org/api/googleapi"
	"google.golang.org/api/option"
	sheetsapi "google.golang.org/api/sheets/v4"
)

// Config holds Google Sheets client configuration.
type Config struct {
	Enabled          bool   `mapstructure:"enabled"`
	APIKey           string `mapstructure:"api_key"`
	CredentialsJSON  string `mapstructure:"credentials_json"` // path to service account JSON file, or raw JSON
	DefaultSheetName string `mapstructure:"default_sheet_name"`
	// SampleFallback serves two demo rows (today and yesterday) when the source is
	// enabled but no credentials are configured. A disabled source never serves them.
	SampleFallback bool          `mapstructure:"sample_fallback"`
	Timeout        time.Duration `mapstructure:"timeout"`
	// BreakerMaxFailures consecutive upstream failures open the circuit for BreakerCooldown.
	BreakerMaxFailures uint32        `mapstructure:"breaker_max_failures"`
	BreakerCooldown    time.Duration `mapstructure:"breaker_cooldown"`
	Timezone           string        `mapstructure:"timezone"`
}

const defaultSheetName = "Sales Data"

// Client reads daily metric rows from Google Sheets.
type Client struct {
	mu       sync.RWMutex
	service  *sheetsapi.Service
	baseOpts []option.ClientOption

	cfg     Config
	breaker *gobreaker.CircuitBreaker
	loc     *time.Location
	now     func() time.Time
}

// NewClient creates a new Sheets client. Extra opts are applied to every
// underlying service, including ones rebuilt by SetAPIKey.
func NewClient(ctx context.Context, cfg *Config, opts ...option.ClientOption) (*Client, error) {
	if cfg == nil {
		cfg = &Config{}
	}
	c := &Client{
		cfg:      *cfg,
		baseOpts: opts,
		loc:      time.UTC,
		now:      time.Now,
	}
	if c.cfg.DefaultSheetName == "" {
		c.cfg.DefaultSheetName = defaultSheetName
	}
	if c.cfg.Timeout <= 0 {
		c.cfg.Timeout = 15 * time.Second
	}
	if c.cfg.Timezone != "" {
		loc, err := time.LoadLocation(c.cfg.Timezone)
		if err != nil {
			return nil, fmt.Errorf("bad sheets timezone %q: %w", c.cfg.Timezone, err)
		}
		c.loc = loc
	}
	c.breaker = newBreaker(c.cfg)

	if !c.cfg.Enabled {
		slog.Default().InfoContext(ctx, "google sheets source disabled")
		return c, nil
	}

	var authOpts []option.ClientOption
	switch {
	case c.cfg.CredentialsJSON != "":
		if strings.HasPrefix(strings.TrimSpace(c.cfg.CredentialsJSON), "{") {
			authOpts = append(authOpts, option.WithCredentialsJSON([]byte(c.cfg.CredentialsJSON)))
		} else {
			authOpts = append(authOpts, option.WithCredentialsFile(c.cfg.CredentialsJSON))
		}
	case c.cfg.APIKey != "":
		authOpts = append(authOpts, option.WithAPIKey(c.cfg.APIKey))
	case len(opts) == 0:
		slog.Default().WarnContext(ctx, "google sheets enabled without credentials",
			slog.Bool("sample_fallback", c.cfg.SampleFallback))
		return c, nil
	}

	service, err := sheetsapi.NewService(ctx, append(authOpts, opts...)...)
	if err != nil {
		return nil, fmt.Errorf("failed to create sheets service: %w", err)
	}
	c.service = service
	slog.Default().InfoContext(ctx, "google sheets client initialized")
	return c, nil
}

func newBreaker(cfg Config) *gobreaker.CircuitBreaker {
	maxFailures := cfg.BreakerMaxFailures
	if maxFailures == 0 {
		maxFailures = 5
	}
	cooldown := cfg.BreakerCooldown
	if cooldown <= 0 {
		cooldown = 30 * time.Second
	}
	return gobreaker.NewCircuitBreaker(gobreaker.Settings{
		Name:        "google-sheets",
		MaxRequests: 1,
		Timeout:     cooldown,
		ReadyToTrip: func(counts gobreaker.Counts) bool {
			return counts.ConsecutiveFailures >= maxFailures
		},
		OnStateChange: func(name string, from, to gobreaker.State) {
			slog.Default().Warn("circuit breaker state changed",
				slog.String("name", name),
				slog.String("from", from.String()),
				slog.String("to", to.String()),
			)
		},
	})
}

// SetAPIKey replaces the credentials with an API key and enables the client.
func (c *Client) SetAPIKey(ctx context.Context, key string) error {
	service, err := sheetsapi.NewService(ctx, append([]option.ClientOption{option.WithAPIKey(key)}, c.baseOpts...)...)
	if err != nil {
		return fmt.Errorf("failed to create sheets service: %w", err)
	}
	c.mu.Lock()
	c.service = service
	c.cfg.Enabled = true
	c.cfg.APIKey = key
	c.mu.Unlock()
	slog.Default().InfoContext(ctx, "google sheets api key installed")
	return nil
}

// Connected reports whether the client can reach the Sheets API.
func (c *Client) Connected() bool {
	c.mu.RLock()
	defer c.mu.RUnlock()
	return c.cfg.Enabled && c.service != nil
}

// FetchMetricRows reads the whole tab and normalizes it into records for shopId.
// An empty sheetName falls back to the configured default tab.
func (c *Client) FetchMetricRows(ctx context.Context, shopId int, spreadsheetId, sheetName string) ([]entity.MetricRecordInsert, error) {
	c.mu.RLock()
	service, enabled := c.service, c.cfg.Enabled
	c.mu.RUnlock()

	if service == nil {
		if !enabled {
			return nil, fmt.Errorf("%w: google sheets disabled", gerr.UpstreamUnavailable)
		}
		if c.cfg.SampleFallback {
			return c.sampleRows(shopId), nil
		}
		return nil, fmt.Errorf("%w: google sheets credentials missing", gerr.UpstreamUnavailable)
	}
	if spreadsheetId == "" {
		return nil, gerr.SheetNotConfigured
	}
	if sheetName == "" {
		sheetName = c.cfg.DefaultSheetName
	}

	values, err := c.getValues(ctx, service, spreadsheetId, sheetName)
	if err != nil {
		return nil, err
	}
	rows, err := ParseRows(values, shopId, c.loc)
	if err != nil {
		return nil, fmt.Errorf("%w: %s: %v", gerr.SheetUnreadable, spreadsheetId, err)
	}
	return rows, nil
}

type fetchResult struct {
	values [][]interface{}
	err    error
}

func (c *Client) getValues(ctx context.Context, service *sheetsapi.Service, spreadsheetId, sheetName string) ([][]interface{}, error) {
	ctx, cancel := context.WithTimeout(ctx, c.cfg.Timeout)
	defer cancel()

	out, err := c.breaker.Execute(func() (interface{}, error) {
		resp, err := service.Spreadsheets.Values.Get(spreadsheetId, quoteSheetName(sheetName)).
			ValueRenderOption("FORMATTED_VALUE").
			Context(ctx).
			Do()
		if err != nil {
			if !isUpstreamFault(err) {
				// the caller's fault, keep the breaker closed
				return fetchResult{err: err}, nil
			}
			return nil, err
		}
		return fetchResult{values: resp.Values}, nil
	})
	if err != nil {
		return nil, fmt.Errorf("%w: %s: %v", gerr.UpstreamUnavailable, spreadsheetId, err)
	}
	res := out.(fetchResult)
	if res.err != nil {
		return nil, fmt.Errorf("%w: %s: %v", gerr.SheetUnreadable, spreadsheetId, res.err)
	}
	return res.values, nil
}

// isUpstreamFault separates outages (5xx, throttling, transport errors) from
// requests Google rejected because of the spreadsheet id, range or permissions.
func isUpstreamFault(err error) bool {
	var apiErr *googleapi.Error
	if errors.As(err, &apiErr) {
		return apiErr.Code >= http.StatusInternalServerError || apiErr.Code == http.StatusTooManyRequests
	}
	return true
}

func quoteSheetName(name string) string {
	return "'" + strings.ReplaceAll(name, "'", "''") + "'"
}

func (c *Client) sampleRows(shopId int) []entity.MetricRecordInsert {
	today := entity.DateOf(c.now().In(c.loc))
	row := func(date time.Time, revenue, cost, profit string) entity.MetricRecordInsert {
		return entity.MetricRecordInsert{
			ShopId:        shopId,
			Date:          date,
			Revenue:       decimal.RequireFromString(revenue),
			Orders:        16,
			TotalPurchase: decimal.RequireFromString(cost),
			Profit:        decimal.RequireFromString(profit),
			ROI:           decimal.RequireFromString("66.67"),
		}
	}
	return []entity.MetricRecordInsert{
		row(today, "344.13", "206.48", "137.65"),
		row(today.AddDate(0, 0, -1), "385.02", "231.01", "154.01"),
	}
}

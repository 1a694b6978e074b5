package connector

import (
	"context"
	"time"

	"github.com/hejijunhao/fwdigest/internal/model"
)

// Default per-endpoint timeouts.
const (
	DefaultConnectTimeout = 5 * time.Second
	DefaultReadTimeout    = 60 * time.Second
)

// Connector defines the interface every appliance client must implement.
type Connector interface {
	// Name returns the appliance name used in outcomes and artifacts.
	Name() string

	// FetchPage retrieves one page of logs of the given category for window.
	// insertOnly asks the appliance to pre-filter events to inserts; it is an
	// optimisation and the decoder still filters by action.
	// FetchPage never panics on transport faults; every failure is reported
	// in PageResult.Err.
	FetchPage(ctx context.Context, category model.Category, window model.TimeWindow, insertOnly bool) model.PageResult

	// Close releases pooled connections.
	Close() error
}

// Endpoint describes one monitored appliance.
type Endpoint struct {
	Name     string
	Provider string
	Host     string
	Port     int
	BaseURL  string // overrides https://Host:Port when set
	APIKey   string

	// InsecureSkipVerify disables TLS certificate verification. Appliances
	// commonly ship self-signed certificates; enabling this trades
	// authenticity of the management API for reachability.
	InsecureSkipVerify bool

	ConnectTimeout time.Duration
	ReadTimeout    time.Duration
	Retries        int
}

// WithDefaults returns a copy of e with zero timeouts replaced by the defaults.
func (e Endpoint) WithDefaults() Endpoint {
	if e.ConnectTimeout == 0 {
		e.ConnectTimeout = DefaultConnectTimeout
	}
	if e.ReadTimeout == 0 {
		e.ReadTimeout = DefaultReadTimeout
	}
	return e
}

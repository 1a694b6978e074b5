// Package ngfw implements the connector for the Barracuda CloudGen Firewall
// REST log API.
package ngfw

import (
	"context"
	"fmt"
	"log/slog"
	"net"
	"strconv"

	"github.com/hejijunhao/fwdigest/internal/connector"
	"github.com/hejijunhao/fwdigest/internal/connector/httpclient"
	"github.com/hejijunhao/fwdigest/internal/model"
)

const (
	apiVersion = "v1"
	threatFile = "box_Firewall_threat"
	eventFile  = "box_Event_eventS"
)

func init() {
	connector.Register(connector.DefaultProvider, func(ep connector.Endpoint) (connector.Connector, error) {
		return New(ep)
	})
}

// Connector fetches log pages from one firewall. Its HTTP client keeps a
// pooled transport for the lifetime of the connector.
type Connector struct {
	name   string
	client *httpclient.Client
}

// filterRequest is the body of a log filter query.
type filterRequest struct {
	From   string  `json:"from"`
	To     string  `json:"to"`
	Filter *filter `json:"filter,omitempty"`
}

type filter struct {
	CaseSensitive     bool               `json:"caseSensitive"`
	MatchAll          bool               `json:"matchAll"`
	MessageConditions []messageCondition `json:"messageConditions"`
}

type messageCondition struct {
	Exclude bool   `json:"exclude"`
	Query   string `json:"query"`
}

// insertOnlyFilter restricts event results to insert-type events.
var insertOnlyFilter = &filter{
	CaseSensitive:     true,
	MatchAll:          true,
	MessageConditions: []messageCondition{{Exclude: false, Query: "Insert Event"}},
}

// New creates a Connector for ep.
func New(ep connector.Endpoint) (*Connector, error) {
	if ep.Name == "" {
		return nil, fmt.Errorf("ngfw connector: endpoint name is required")
	}
	baseURL := ep.BaseURL
	if baseURL == "" {
		if ep.Host == "" {
			return nil, fmt.Errorf("ngfw connector: %s: host is required", ep.Name)
		}
		baseURL = "https://" + net.JoinHostPort(ep.Host, strconv.Itoa(ep.Port))
	}
	if ep.InsecureSkipVerify {
		slog.Warn("TLS certificate verification disabled", "appliance", ep.Name, "url", baseURL)
	}

	client := httpclient.New(baseURL, ep.APIKey,
		httpclient.WithConnectTimeout(ep.ConnectTimeout),
		httpclient.WithReadTimeout(ep.ReadTimeout),
		httpclient.WithInsecureSkipVerify(ep.InsecureSkipVerify),
		httpclient.WithRetries(ep.Retries),
	)
	return &Connector{name: ep.Name, client: client}, nil
}

// Name implements connector.Connector.
func (c *Connector) Name() string { return c.name }

// Close implements connector.Connector.
func (c *Connector) Close() error { return c.client.Close() }

// FetchPage implements connector.Connector.
func (c *Connector) FetchPage(ctx context.Context, category model.Category, window model.TimeWindow, insertOnly bool) model.PageResult {
	path, err := logPath(category)
	if err != nil {
		return model.PageResult{Err: err}
	}

	req := filterRequest{From: window.FromString(), To: window.ToString()}
	if category == model.Event && insertOnly {
		req.Filter = insertOnlyFilter
	}

	var page model.Page
	status, err := c.client.PostJSON(ctx, path, req, &page)
	if err != nil {
		return model.PageResult{StatusCode: status, Err: fmt.Errorf("ngfw %s: %w", category, err)}
	}
	return model.PageResult{StatusCode: status, Page: page}
}

func logPath(category model.Category) (string, error) {
	var file string
	switch category {
	case model.Threat:
		file = threatFile
	case model.Event:
		file = eventFile
	default:
		return "", fmt.Errorf("ngfw: unsupported category %v", category)
	}
	return "/rest/log/" + apiVersion + "/files/" + file + "/filter", nil
}

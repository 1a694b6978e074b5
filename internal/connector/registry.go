package connector

import (
	"fmt"
	"sort"
)

// DefaultProvider is used when an endpoint does not name a provider.
const DefaultProvider = "ngfw"

// Constructor builds a Connector for one endpoint.
type Constructor func(ep Endpoint) (Connector, error)

var registry = map[string]Constructor{}

// Register adds a connector constructor under the given provider name.
func Register(name string, ctor Constructor) {
	registry[name] = ctor
}

// Get returns the connector constructor for the given provider name.
func Get(name string) (Constructor, error) {
	if name == "" {
		name = DefaultProvider
	}
	ctor, ok := registry[name]
	if !ok {
		return nil, fmt.Errorf("unknown connector provider: %s", name)
	}
	return ctor, nil
}

// Providers returns the names of all registered connector providers, sorted.
func Providers() []string {
	names := make([]string, 0, len(registry))
	for name := range registry {
		names = append(names, name)
	}
	sort.Strings(names)
	return names
}

// Build constructs a connector for every endpoint, in order. On error the
// connectors already built are closed.
func Build(endpoints []Endpoint) ([]Connector, error) {
	conns := make([]Connector, 0, len(endpoints))
	for _, ep := range endpoints {
		c, err := build(ep)
		if err != nil {
			for _, built := range conns {
				built.Close()
			}
			return nil, fmt.Errorf("endpoint %s: %w", ep.Name, err)
		}
		conns = append(conns, c)
	}
	return conns, nil
}

func build(ep Endpoint) (Connector, error) {
	ctor, err := Get(ep.Provider)
	if err != nil {
		return nil, err
	}
	return ctor(ep.WithDefaults())
}

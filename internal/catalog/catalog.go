// Package catalog resolves the numeric event ids embedded in box event logs
// to their canonical names.
package catalog

import (
	"fmt"
	"log/slog"
	"os"
	"strconv"
	"strings"

	lru "github.com/hashicorp/golang-lru/v2"
	"gopkg.in/yaml.v3"
)

// UnknownName is the placeholder name returned for ids not in the catalog.
const UnknownName = "Unknown"

const warnedCap = 256

// Entry is a resolved catalog entry.
type Entry struct {
	ID   string
	Name string
}

// Lookuper resolves an event id. Implementations must be total: unknown ids
// resolve to a placeholder entry rather than an error.
type Lookuper interface {
	Lookup(id string) Entry
}

// Catalog is an in-memory id → name table. Safe for concurrent use once built.
type Catalog struct {
	names  map[int]string
	warned *lru.Cache[string, struct{}]
}

// New builds a Catalog from a map of ids to names.
func New(names map[int]string) *Catalog {
	// lru.New only fails for a non-positive size.
	warned, _ := lru.New[string, struct{}](warnedCap)
	c := &Catalog{names: make(map[int]string, len(names)), warned: warned}
	for id, name := range names {
		c.names[id] = name
	}
	return c
}

// Empty returns a Catalog that resolves every id to the placeholder.
func Empty() *Catalog { return New(nil) }

type file struct {
	Events map[int]string `yaml:"events"`
}

// Load reads a YAML catalog of the form:
//
//	events:
//	  2020: Config Change
//	  4101: Session Started
func Load(path string) (*Catalog, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("catalog: %w", err)
	}
	var f file
	if err := yaml.Unmarshal(data, &f); err != nil {
		return nil, fmt.Errorf("catalog: parse %s: %w", path, err)
	}
	return New(f.Events), nil
}

// Len returns the number of known ids.
func (c *Catalog) Len() int { return len(c.names) }

// Lookup resolves id. Surrounding whitespace and leading zeros are ignored.
// Unknown or non-numeric ids keep the raw (trimmed) id and get UnknownName.
// Each unknown id is logged once per catalog, bounded by an LRU.
func (c *Catalog) Lookup(id string) Entry {
	id = strings.TrimSpace(id)
	n, err := strconv.Atoi(id)
	if err == nil {
		if name, ok := c.names[n]; ok {
			return Entry{ID: strconv.Itoa(n), Name: name}
		}
	}
	if ok, _ := c.warned.ContainsOrAdd(id, struct{}{}); !ok {
		slog.Debug("event id not in catalog", "event_id", id)
	}
	return Entry{ID: id, Name: UnknownName}
}

package config

import (
	"errors"
	"fmt"
	"os"
	"strconv"
	"strings"
	"time"

	"gopkg.in/yaml.v3"

	"github.com/hejijunhao/fwdigest/internal/connector"
)

// Version is the fwdigest release.
const Version = "0.4.0"

// Config holds all fwdigest configuration.
type Config struct {
	LogLevel    string        `yaml:"log_level"`
	LogFormat   string        `yaml:"log_format"` // "text" or "json"
	Delta       time.Duration `yaml:"delta"`
	OutputDir   string        `yaml:"output_dir"`
	InsertOnly  bool          `yaml:"insert_only"`
	Catalog     string        `yaml:"catalog"`
	MetricsFile string        `yaml:"metrics_file"`

	Firewalls Firewalls `yaml:"firewalls"`

	Email   *EmailConfig   `yaml:"email"`
	NATS    *NATSConfig    `yaml:"nats"`
	Webhook *WebhookConfig `yaml:"webhook"`
}

// Firewall is one appliance entry. Name comes from its key in the file.
type Firewall struct {
	Name               string        `yaml:"-"`
	Provider           string        `yaml:"provider"`
	Host               string        `yaml:"host"`
	Port               int           `yaml:"port"`
	APIKey             string        `yaml:"apikey"`
	InsecureSkipVerify bool          `yaml:"insecure_skip_verify"`
	ConnectTimeout     time.Duration `yaml:"connect_timeout"`
	ReadTimeout        time.Duration `yaml:"read_timeout"`
	Retries            int           `yaml:"retries"`
}

// Firewalls keeps appliances in file order.
type Firewalls []Firewall

// UnmarshalYAML decodes a name-keyed mapping, preserving key order.
func (f *Firewalls) UnmarshalYAML(node *yaml.Node) error {
	if node.Kind != yaml.MappingNode {
		return fmt.Errorf("line %d: firewalls must be a mapping of name to settings", node.Line)
	}
	out := make(Firewalls, 0, len(node.Content)/2)
	seen := make(map[string]bool)
	for i := 0; i+1 < len(node.Content); i += 2 {
		key, val := node.Content[i], node.Content[i+1]
		if seen[key.Value] {
			return fmt.Errorf("line %d: duplicate firewall %q", key.Line, key.Value)
		}
		seen[key.Value] = true

		var fw Firewall
		if err := val.Decode(&fw); err != nil {
			return fmt.Errorf("firewall %q: %w", key.Value, err)
		}
		fw.Name = key.Value
		out = append(out, fw)
	}
	*f = out
	return nil
}

// EmailConfig holds SMTP digest settings.
type EmailConfig struct {
	Host     string   `yaml:"host"`
	Port     int      `yaml:"port"`
	Username string   `yaml:"username"`
	Password string   `yaml:"password"`
	From     string   `yaml:"from"`
	To       []string `yaml:"to"`
	StartTLS bool     `yaml:"starttls"`

	// TLSPolicy is "none", "opportunistic" or "mandatory". Empty follows
	// StartTLS. Port 465 always uses implicit TLS.
	TLSPolicy          string `yaml:"tls_policy"`
	InsecureSkipVerify bool   `yaml:"insecure_skip_verify"`
}

// NATSConfig holds digest publishing settings.
type NATSConfig struct {
	URL     string `yaml:"url"`
	Subject string `yaml:"subject"`
}

// WebhookConfig holds batch webhook settings.
type WebhookConfig struct {
	URL     string            `yaml:"url"`
	Headers map[string]string `yaml:"headers"`
}

// Default returns the configuration used for keys absent from the file.
func Default() Config {
	return Config{
		LogLevel:   "info",
		LogFormat:  "text",
		Delta:      24 * time.Hour,
		OutputDir:  "logs",
		InsertOnly: true,
	}
}

// Load reads the YAML file at path, then applies environment overrides.
func Load(path string) (Config, error) {
	cfg := Default()
	data, err := os.ReadFile(path)
	if err != nil {
		return Config{}, fmt.Errorf("config: %w", err)
	}
	if err := yaml.Unmarshal(data, &cfg); err != nil {
		return Config{}, fmt.Errorf("config: parse %s: %w", path, err)
	}
	if err := cfg.applyEnv(); err != nil {
		return Config{}, err
	}
	return cfg, nil
}

func (c *Config) applyEnv() error {
	c.LogLevel = getenv("FWDIGEST_LOG_LEVEL", c.LogLevel)
	c.LogFormat = getenv("FWDIGEST_LOG_FORMAT", c.LogFormat)
	c.OutputDir = getenv("FWDIGEST_OUTPUT_DIR", c.OutputDir)
	c.MetricsFile = getenv("FWDIGEST_METRICS_FILE", c.MetricsFile)

	d, err := getenvDuration("FWDIGEST_DELTA", c.Delta)
	if err != nil {
		return err
	}
	c.Delta = d

	if c.Email != nil {
		c.Email.Password = getenv("FWDIGEST_SMTP_PASSWORD", c.Email.Password)
	}
	if url := os.Getenv("FWDIGEST_NATS_URL"); url != "" {
		if c.NATS == nil {
			c.NATS = &NATSConfig{}
		}
		c.NATS.URL = url
	}
	return nil
}

// Validate checks the configuration for errors. Returns all problems at once.
func (c Config) Validate() error {
	var errs []error

	switch strings.ToLower(c.LogLevel) {
	case "debug", "info", "warn", "warning", "error":
	default:
		errs = append(errs, fmt.Errorf("log_level must be debug, info, warn or error, got %q", c.LogLevel))
	}
	switch c.LogFormat {
	case "text", "json":
	default:
		errs = append(errs, fmt.Errorf("log_format must be text or json, got %q", c.LogFormat))
	}
	if c.Delta <= 0 {
		errs = append(errs, fmt.Errorf("delta must be positive, got %s", c.Delta))
	}
	if c.OutputDir == "" {
		errs = append(errs, errors.New("output_dir is required"))
	}

	if len(c.Firewalls) == 0 {
		errs = append(errs, errors.New("at least one firewall is required"))
	}
	for _, fw := range c.Firewalls {
		errs = append(errs, fw.validate()...)
	}

	if e := c.Email; e != nil {
		if e.Host == "" {
			errs = append(errs, errors.New("email.host is required"))
		}
		if e.Port < 0 || e.Port > 65535 {
			errs = append(errs, fmt.Errorf("email.port out of range: %d", e.Port))
		}
		if len(e.To) == 0 {
			errs = append(errs, errors.New("email.to needs at least one recipient"))
		}
		switch strings.ToLower(e.TLSPolicy) {
		case "", "none", "opportunistic", "mandatory":
		default:
			errs = append(errs, fmt.Errorf("email.tls_policy must be none, opportunistic or mandatory, got %q", e.TLSPolicy))
		}
	}
	if c.NATS != nil && c.NATS.URL == "" {
		errs = append(errs, errors.New("nats.url is required"))
	}
	if c.Webhook != nil && c.Webhook.URL == "" {
		errs = append(errs, errors.New("webhook.url is required"))
	}

	return errors.Join(errs...)
}

func (fw Firewall) validate() []error {
	var errs []error
	if fw.Host == "" {
		errs = append(errs, fmt.Errorf("firewall %s: host is required", fw.Name))
	}
	if fw.Port < 1 || fw.Port > 65535 {
		errs = append(errs, fmt.Errorf("firewall %s: port out of range: %d", fw.Name, fw.Port))
	}
	if fw.APIKey == "" {
		errs = append(errs, fmt.Errorf("firewall %s: apikey is required", fw.Name))
	}
	if fw.ConnectTimeout < 0 || fw.ReadTimeout < 0 {
		errs = append(errs, fmt.Errorf("firewall %s: timeouts must not be negative", fw.Name))
	}
	if fw.Retries < 0 {
		errs = append(errs, fmt.Errorf("firewall %s: retries must not be negative", fw.Name))
	}
	return errs
}

// Endpoints converts the firewall entries to connector endpoints, in order.
func (c Config) Endpoints() []connector.Endpoint {
	eps := make([]connector.Endpoint, len(c.Firewalls))
	for i, fw := range c.Firewalls {
		eps[i] = connector.Endpoint{
			Name:               fw.Name,
			Provider:           fw.Provider,
			Host:               fw.Host,
			Port:               fw.Port,
			APIKey:             fw.APIKey,
			InsecureSkipVerify: fw.InsecureSkipVerify,
			ConnectTimeout:     fw.ConnectTimeout,
			ReadTimeout:        fw.ReadTimeout,
			Retries:            fw.Retries,
		}.WithDefaults()
	}
	return eps
}

func getenv(key, fallback string) string {
	if v := os.Getenv(key); v != "" {
		return v
	}
	return fallback
}

func getenvDuration(key string, fallback time.Duration) (time.Duration, error) {
	v := os.Getenv(key)
	if v == "" {
		return fallback, nil
	}
	d, err := time.ParseDuration(v)
	if err != nil {
		// Plain integers are hours.
		h, herr := strconv.Atoi(v)
		if herr != nil {
			return 0, fmt.Errorf("config: %s: %w", key, err)
		}
		d = time.Duration(h) * time.Hour
	}
	return d, nil
}

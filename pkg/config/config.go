// Package config holds the explicit configuration passed to the session
// manager, the CLI and the demo server. Values come from defaults, an optional
// YAML file and MCP_* environment variables, in that order.
package config

import (
	"fmt"
	"net/url"
	"os"
	"strconv"
	"strings"
	"time"

	"github.com/pkg/errors"
	"go.uber.org/multierr"
	"gopkg.in/yaml.v3"
)

// Defaults.
const (
	DefaultServerURL          = "http://localhost:8000"
	DefaultConnectPath        = "/connect"
	DefaultHealthPath         = "/health"
	DefaultTimeout            = 30 * time.Second
	DefaultEndpointTimeout    = 10 * time.Second
	DefaultProtocolVersion    = "2024-11-05"
	DefaultClientName         = "sse-mcp-client"
	DefaultClientVersion      = "1.0.0"
	DefaultNotificationPrefix = "notifications/"
	DefaultLogLevel           = "info"
	DefaultListenAddr         = ":8000"
)

// Config is the complete configuration file.
type Config struct {
	Session Session `yaml:"session"`
	Logging Logging `yaml:"logging"`
	Server  Server  `yaml:"server"`
}

// Session configures one client session.
type Session struct {
	ServerURL   string `yaml:"server_url"`
	ConnectPath string `yaml:"connect_path"`
	HealthPath  string `yaml:"health_path"`

	// Timeout bounds every non-streaming HTTP round trip.
	Timeout time.Duration `yaml:"timeout"`
	// EndpointTimeout bounds the wait for the endpoint event after the stream opens.
	EndpointTimeout time.Duration `yaml:"endpoint_timeout"`
	// RequestTimeout bounds the wait for a response delivered on the stream.
	// Zero means Timeout.
	RequestTimeout time.Duration `yaml:"request_timeout"`

	ProtocolVersion    string `yaml:"protocol_version"`
	ClientName         string `yaml:"client_name"`
	ClientVersion      string `yaml:"client_version"`
	NotificationPrefix string `yaml:"notification_prefix"`
}

// Logging configures the zap logger.
type Logging struct {
	Level       string `yaml:"level"`
	Development bool   `yaml:"development"`
}

// Server configures the demo calculator server.
type Server struct {
	ListenAddr string `yaml:"listen_addr"`
	// BaseURL is advertised in endpoint events. Empty means derive it from the request.
	BaseURL string `yaml:"base_url"`
}

// Default returns a configuration with every default applied.
func Default() Config {
	var cfg Config
	cfg.ApplyDefaults()
	return cfg
}

// DefaultSession returns session settings for serverURL with defaults applied.
func DefaultSession(serverURL string) Session {
	s := Session{ServerURL: serverURL}
	s.ApplyDefaults()
	return s
}

// Load reads a YAML file, applies MCP_* environment overrides and defaults,
// and validates the result. An empty path skips the file.
func Load(path string) (Config, error) {
	var cfg Config

	if path != "" {
		data, err := os.ReadFile(path)
		if err != nil {
			return Config{}, errors.Wrap(err, "failed to read config file")
		}
		if err := yaml.Unmarshal(data, &cfg); err != nil {
			return Config{}, errors.Wrap(err, "failed to parse config file")
		}
	}

	if err := cfg.ApplyEnv(os.LookupEnv); err != nil {
		return Config{}, err
	}
	cfg.ApplyDefaults()

	if err := cfg.Validate(); err != nil {
		return Config{}, err
	}
	return cfg, nil
}

// LookupFunc resolves an environment variable.
type LookupFunc func(key string) (string, bool)

// ApplyEnv overlays MCP_* variables resolved through lookup.
func (c *Config) ApplyEnv(lookup LookupFunc) error {
	var errs error

	str := func(key string, dst *string) {
		if v, ok := lookup(key); ok && v != "" {
			*dst = v
		}
	}
	dur := func(key string, dst *time.Duration) {
		v, ok := lookup(key)
		if !ok || v == "" {
			return
		}
		d, err := parseDuration(v)
		if err != nil {
			errs = multierr.Append(errs, fmt.Errorf("%s: %w", key, err))
			return
		}
		*dst = d
	}

	str("MCP_SERVER_URL", &c.Session.ServerURL)
	str("MCP_CONNECT_PATH", &c.Session.ConnectPath)
	str("MCP_HEALTH_PATH", &c.Session.HealthPath)
	dur("MCP_TIMEOUT", &c.Session.Timeout)
	dur("MCP_ENDPOINT_TIMEOUT", &c.Session.EndpointTimeout)
	dur("MCP_REQUEST_TIMEOUT", &c.Session.RequestTimeout)
	str("MCP_NOTIFICATION_PREFIX", &c.Session.NotificationPrefix)
	str("MCP_LOG_LEVEL", &c.Logging.Level)
	str("MCP_LISTEN_ADDR", &c.Server.ListenAddr)
	str("MCP_BASE_URL", &c.Server.BaseURL)

	if v, ok := lookup("MCP_LOG_DEVELOPMENT"); ok && v != "" {
		b, err := strconv.ParseBool(v)
		if err != nil {
			errs = multierr.Append(errs, fmt.Errorf("MCP_LOG_DEVELOPMENT: %w", err))
		} else {
			c.Logging.Development = b
		}
	}

	return errs
}

// parseDuration accepts Go durations ("30s") and bare seconds ("30").
func parseDuration(v string) (time.Duration, error) {
	if secs, err := strconv.Atoi(v); err == nil {
		return time.Duration(secs) * time.Second, nil
	}
	return time.ParseDuration(v)
}

// ApplyDefaults fills zero values.
func (c *Config) ApplyDefaults() {
	c.Session.ApplyDefaults()
	if c.Logging.Level == "" {
		c.Logging.Level = DefaultLogLevel
	}
	if c.Server.ListenAddr == "" {
		c.Server.ListenAddr = DefaultListenAddr
	}
}

// ApplyDefaults fills zero values.
func (s *Session) ApplyDefaults() {
	if s.ServerURL == "" {
		s.ServerURL = DefaultServerURL
	}
	s.ServerURL = strings.TrimRight(s.ServerURL, "/")
	if s.ConnectPath == "" {
		s.ConnectPath = DefaultConnectPath
	}
	if s.HealthPath == "" {
		s.HealthPath = DefaultHealthPath
	}
	if s.Timeout == 0 {
		s.Timeout = DefaultTimeout
	}
	if s.EndpointTimeout == 0 {
		s.EndpointTimeout = DefaultEndpointTimeout
	}
	if s.RequestTimeout == 0 {
		s.RequestTimeout = s.Timeout
	}
	if s.ProtocolVersion == "" {
		s.ProtocolVersion = DefaultProtocolVersion
	}
	if s.ClientName == "" {
		s.ClientName = DefaultClientName
	}
	if s.ClientVersion == "" {
		s.ClientVersion = DefaultClientVersion
	}
	if s.NotificationPrefix == "" {
		s.NotificationPrefix = DefaultNotificationPrefix
	}
}

// Validate checks the whole configuration.
func (c *Config) Validate() error {
	errs := c.Session.Validate()

	switch c.Logging.Level {
	case "debug", "info", "warn", "error":
	default:
		errs = multierr.Append(errs, fmt.Errorf("logging.level %q is not one of debug, info, warn, error", c.Logging.Level))
	}

	if c.Server.BaseURL != "" {
		if _, err := url.ParseRequestURI(c.Server.BaseURL); err != nil {
			errs = multierr.Append(errs, errors.Wrap(err, "server.base_url is invalid"))
		}
	}
	return errs
}

// Validate checks the session settings.
func (s *Session) Validate() error {
	var errs error

	u, err := url.Parse(s.ServerURL)
	if err != nil {
		errs = multierr.Append(errs, errors.Wrap(err, "session.server_url is invalid"))
	} else if (u.Scheme != "http" && u.Scheme != "https") || u.Host == "" {
		errs = multierr.Append(errs, fmt.Errorf("session.server_url %q must be an absolute http(s) URL", s.ServerURL))
	}

	for name, p := range map[string]string{"session.connect_path": s.ConnectPath, "session.health_path": s.HealthPath} {
		if !strings.HasPrefix(p, "/") {
			errs = multierr.Append(errs, fmt.Errorf("%s %q must start with /", name, p))
		}
	}

	if s.Timeout < 0 || s.EndpointTimeout < 0 || s.RequestTimeout < 0 {
		errs = multierr.Append(errs, errors.New("session timeouts must not be negative"))
	}
	return errs
}

// ConnectURL is the stream URL.
func (s Session) ConnectURL() string {
	return s.ServerURL + s.ConnectPath
}

// HealthURL is the liveness probe URL.
func (s Session) HealthURL() string {
	return s.ServerURL + s.HealthPath
}

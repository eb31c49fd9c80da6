package config

import (
	"encoding/json"
	"fmt"
	"net/url"
	"os"
	"path/filepath"

	"github.com/kelseyhightower/envconfig"
	"sigs.k8s.io/yaml"

	"github.com/emizp/IFCAtom/internal/util"
)

type Config struct {
	// ServiceUrl is the base URL of the processing pipeline
	ServiceUrl string `json:"service-url,omitempty" envconfig:"IFCATOM_SERVICE_URL" default:"http://localhost:5000"`
	// DataDir holds the session database and downloaded artifacts
	DataDir string `json:"data-dir,omitempty" envconfig:"IFCATOM_DATA_DIR" default:""`
	// PollInterval is the interval between two status polls of the same job
	PollInterval util.Duration `json:"poll-interval,omitempty" envconfig:"IFCATOM_POLL_INTERVAL" default:"5s"`
	// RequestTimeout bounds every single pipeline request
	RequestTimeout util.Duration `json:"request-timeout,omitempty" envconfig:"IFCATOM_REQUEST_TIMEOUT" default:"30s"`
	// LogLevel can be "debug", "info", "warn", "error"; anything else is treated as "info"
	LogLevel string `json:"log-level,omitempty" envconfig:"IFCATOM_LOG_LEVEL" default:"info"`
	// MetricsAddress, when set, exposes poller metrics while watching jobs
	MetricsAddress string `json:"metrics-address,omitempty" envconfig:"IFCATOM_METRICS_ADDRESS" default:""`
}

// New builds a Config from the built-in defaults overlaid with the
// IFCATOM_* environment variables.
func New() (*Config, error) {
	cfg := new(Config)
	if err := envconfig.Process("", cfg); err != nil {
		return nil, err
	}
	if cfg.DataDir == "" {
		home, err := os.UserHomeDir()
		if err != nil {
			return nil, fmt.Errorf("resolving home directory: %w", err)
		}
		cfg.DataDir = filepath.Join(home, ".ifcatom")
	}
	return cfg, nil
}

// ParseConfigFile overlays the YAML config file on top of the current
// values.
func (cfg *Config) ParseConfigFile(cfgFile string) error {
	contents, err := os.ReadFile(cfgFile)
	if err != nil {
		return fmt.Errorf("reading config file: %w", err)
	}
	if err := yaml.Unmarshal(contents, cfg); err != nil {
		return fmt.Errorf("unmarshalling config file: %w", err)
	}
	return nil
}

// Validate checks that the required fields are set and usable.
func (cfg *Config) Validate() error {
	if cfg.ServiceUrl == "" {
		return fmt.Errorf("service-url is required")
	}
	if _, err := url.ParseRequestURI(cfg.ServiceUrl); err != nil {
		return fmt.Errorf("service-url: %w", err)
	}
	if cfg.DataDir == "" {
		return fmt.Errorf("data-dir is required")
	}
	if cfg.PollInterval.Duration <= 0 {
		return fmt.Errorf("poll-interval must be positive")
	}
	if cfg.RequestTimeout.Duration <= 0 {
		return fmt.Errorf("request-timeout must be positive")
	}
	return nil
}

func (cfg *Config) String() string {
	contents, err := json.Marshal(cfg)
	if err != nil {
		return "<error>"
	}
	return string(contents)
}

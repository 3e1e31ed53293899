package config

import (
	"errors"
	"fmt"
	"net/url"

	"github.com/rs/zerolog"
)

type Logging struct {
	Level  string `koanf:"level" json:"level,omitempty"`
	Pretty bool   `koanf:"pretty" json:"pretty,omitempty"`
}

func (l Logging) validate() []error {
	var errs []error
	if _, err := zerolog.ParseLevel(l.Level); err != nil {
		errs = append(errs, fmt.Errorf("level: invalid log level %q: %w", l.Level, err))
	}
	return errs
}

var loggingDefault = Logging{
	Level: "info",
}

type Paths struct {
	WorkDir     string `koanf:"work_dir" json:"work_dir,omitempty"`
	ComposeFile string `koanf:"compose_file" json:"compose_file,omitempty"`
	EnvFile     string `koanf:"env_file" json:"env_file,omitempty"`
	EnvTemplate string `koanf:"env_template" json:"env_template,omitempty"`
}

func (p Paths) validate() []error {
	var errs []error
	if p.ComposeFile == "" {
		errs = append(errs, errors.New("compose_file cannot be empty"))
	}
	if p.EnvFile == "" {
		errs = append(errs, errors.New("env_file cannot be empty"))
	}
	return errs
}

var pathsDefault = Paths{
	WorkDir:     ".",
	ComposeFile: "docker-compose.yml",
	EnvFile:     ".env",
	EnvTemplate: ".env.example",
}

type Remote struct {
	BaseURL        string   `koanf:"base_url" json:"base_url,omitempty"`
	TimeoutSeconds int      `koanf:"timeout_seconds" json:"timeout_seconds,omitempty"`
	Files          []string `koanf:"files" json:"files,omitempty"`
}

func (r Remote) validate() []error {
	var errs []error
	u, err := url.Parse(r.BaseURL)
	if err != nil {
		errs = append(errs, fmt.Errorf("base_url: %w", err))
	} else if u.Scheme != "http" && u.Scheme != "https" {
		errs = append(errs, fmt.Errorf("base_url: unsupported scheme %q", u.Scheme))
	}
	if r.TimeoutSeconds < 1 {
		errs = append(errs, fmt.Errorf("timeout_seconds: must be at least 1, got %d", r.TimeoutSeconds))
	}
	return errs
}

var remoteDefault = Remote{
	BaseURL:        "https://raw.githubusercontent.com/stackup-sh/stack-templates/main",
	TimeoutSeconds: 30,
	Files: []string{
		"migration/complete_setup.sql",
		"migration/reset_db.sql",
	},
}

type Services struct {
	UIPort         int    `koanf:"ui_port" json:"ui_port,omitempty"`
	APIPort        int    `koanf:"api_port" json:"api_port,omitempty"`
	MCPPort        int    `koanf:"mcp_port" json:"mcp_port,omitempty"`
	DatabasePort   int    `koanf:"database_port" json:"database_port,omitempty"`
	DashboardPort  int    `koanf:"dashboard_port" json:"dashboard_port,omitempty"`
	DatastorePort  int    `koanf:"datastore_port" json:"datastore_port,omitempty"`
	ServiceRoleKey string `koanf:"service_role_key" json:"service_role_key,omitempty"`
	ProbePath      string `koanf:"probe_path" json:"probe_path,omitempty"`
}

func (s Services) validate() []error {
	var errs []error
	ports := map[string]int{
		"ui_port":        s.UIPort,
		"api_port":       s.APIPort,
		"mcp_port":       s.MCPPort,
		"database_port":  s.DatabasePort,
		"dashboard_port": s.DashboardPort,
		"datastore_port": s.DatastorePort,
	}
	for name, port := range ports {
		if port < 1 || port > 65535 {
			errs = append(errs, fmt.Errorf("%s: invalid port %d", name, port))
		}
	}
	if s.ProbePath == "" {
		errs = append(errs, errors.New("probe_path cannot be empty"))
	}
	return errs
}

var servicesDefault = Services{
	UIPort:        3737,
	APIPort:       8181,
	MCPPort:       8051,
	DatabasePort:  5432,
	DashboardPort: 54323,
	DatastorePort: 54321,
	ProbePath:     "/rest/v1/sources?limit=1",
}

type Poll struct {
	MaxAttempts     int `koanf:"max_attempts" json:"max_attempts,omitempty"`
	IntervalSeconds int `koanf:"interval_seconds" json:"interval_seconds,omitempty"`
	TimeoutSeconds  int `koanf:"timeout_seconds" json:"timeout_seconds,omitempty"`
}

func (p Poll) validate() []error {
	var errs []error
	if p.MaxAttempts < 1 {
		errs = append(errs, fmt.Errorf("max_attempts: must be at least 1, got %d", p.MaxAttempts))
	}
	if p.IntervalSeconds < 1 {
		errs = append(errs, fmt.Errorf("interval_seconds: must be at least 1, got %d", p.IntervalSeconds))
	}
	if p.TimeoutSeconds < 1 {
		errs = append(errs, fmt.Errorf("timeout_seconds: must be at least 1, got %d", p.TimeoutSeconds))
	}
	return errs
}

var pollDefault = Poll{
	MaxAttempts:     30,
	IntervalSeconds: 2,
	TimeoutSeconds:  5,
}

type Config struct {
	Paths    Paths    `koanf:"paths" json:"paths,omitzero"`
	Remote   Remote   `koanf:"remote" json:"remote,omitzero"`
	Services Services `koanf:"services" json:"services,omitzero"`
	Poll     Poll     `koanf:"poll" json:"poll,omitzero"`
	Logging  Logging  `koanf:"logging" json:"logging,omitzero"`
}

func (c Config) Validate() error {
	var errs []error
	for _, err := range c.Paths.validate() {
		errs = append(errs, fmt.Errorf("paths.%w", err))
	}
	for _, err := range c.Remote.validate() {
		errs = append(errs, fmt.Errorf("remote.%w", err))
	}
	for _, err := range c.Services.validate() {
		errs = append(errs, fmt.Errorf("services.%w", err))
	}
	for _, err := range c.Poll.validate() {
		errs = append(errs, fmt.Errorf("poll.%w", err))
	}
	for _, err := range c.Logging.validate() {
		errs = append(errs, fmt.Errorf("logging.%w", err))
	}
	return errors.Join(errs...)
}

func DefaultConfig() Config {
	return Config{
		Paths:    pathsDefault,
		Remote:   remoteDefault,
		Services: servicesDefault,
		Poll:     pollDefault,
		Logging:  loggingDefault,
	}
}

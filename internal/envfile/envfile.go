// Package envfile reads the operator's dotenv-style environment file. The
// stack's compose definition sources the same file, so values found here take
// precedence over built-in defaults when building service addresses.
package envfile

import (
	"fmt"
	"strconv"

	"github.com/spf13/afero"
	"gopkg.in/ini.v1"

	"github.com/stackup-sh/stackup/internal/config"
)

// Keys recognized in the env file. These mirror the variables the compose
// definition consumes.
const (
	KeyUIPort         = "UI_PORT"
	KeyAPIPort        = "API_PORT"
	KeyMCPPort        = "MCP_PORT"
	KeyDatabasePort   = "DB_PORT"
	KeyDashboardPort  = "DASHBOARD_PORT"
	KeyDatastorePort  = "DATASTORE_PORT"
	KeyServiceRoleKey = "SERVICE_ROLE_KEY"
)

// Load parses the env file at path into a key/value map. Dotenv files are
// sectionless key=value pairs, which ini handles in its default section.
func Load(fs afero.Fs, path string) (map[string]string, error) {
	raw, err := afero.ReadFile(fs, path)
	if err != nil {
		return nil, fmt.Errorf("failed to read env file %q: %w", path, err)
	}

	f, err := ini.Load(raw)
	if err != nil {
		return nil, fmt.Errorf("failed to parse env file %q: %w", path, err)
	}

	vars := map[string]string{}
	for _, key := range f.Section(ini.DefaultSection).Keys() {
		vars[key.Name()] = key.Value()
	}
	return vars, nil
}

// CopyTemplate copies the env template to dest, creating the initial env file
// for a fresh checkout.
func CopyTemplate(fs afero.Fs, template, dest string) error {
	raw, err := afero.ReadFile(fs, template)
	if err != nil {
		return fmt.Errorf("failed to read env template %q: %w", template, err)
	}
	if err := afero.WriteFile(fs, dest, raw, 0o644); err != nil {
		return fmt.Errorf("failed to write env file %q: %w", dest, err)
	}
	return nil
}

// Apply overlays env file values onto the service configuration. Keys absent
// from the env file leave the configured defaults in place.
func Apply(vars map[string]string, services config.Services) config.Services {
	services.UIPort = intValue(vars, KeyUIPort, services.UIPort)
	services.APIPort = intValue(vars, KeyAPIPort, services.APIPort)
	services.MCPPort = intValue(vars, KeyMCPPort, services.MCPPort)
	services.DatabasePort = intValue(vars, KeyDatabasePort, services.DatabasePort)
	services.DashboardPort = intValue(vars, KeyDashboardPort, services.DashboardPort)
	services.DatastorePort = intValue(vars, KeyDatastorePort, services.DatastorePort)
	if v, ok := vars[KeyServiceRoleKey]; ok && v != "" {
		services.ServiceRoleKey = v
	}
	return services
}

func intValue(vars map[string]string, key string, fallback int) int {
	v, ok := vars[key]
	if !ok || v == "" {
		return fallback
	}
	parsed, err := strconv.Atoi(v)
	if err != nil {
		return fallback
	}
	return parsed
}

// Package migrate infers whether the database schema has been applied by
// probing the datastore's REST interface. It never runs migrations itself;
// when the schema is missing it tells the operator how to apply it.
package migrate

import (
	"context"
	"fmt"
	"net/http"
	"strings"
	"time"

	"github.com/rs/zerolog"

	"github.com/stackup-sh/stackup/internal/config"
)

type State string

const (
	StateConfigured      State = "configured"
	StateMigrationNeeded State = "migration_needed"
)

// StatusUnreachable is the sentinel status recorded when the probe request
// never produced an HTTP response.
const StatusUnreachable = 0

type Result struct {
	State      State
	StatusCode int
}

type Prober struct {
	client         *http.Client
	probeURL       string
	dashboardURL   string
	serviceRoleKey string
	migrationFile  string
	logger         zerolog.Logger
}

func NewProber(cfg config.Config, logger zerolog.Logger) *Prober {
	return &Prober{
		client: &http.Client{
			Timeout: time.Duration(cfg.Poll.TimeoutSeconds) * time.Second,
		},
		probeURL:       fmt.Sprintf("http://localhost:%d%s", cfg.Services.DatastorePort, cfg.Services.ProbePath),
		dashboardURL:   fmt.Sprintf("http://localhost:%d", cfg.Services.DashboardPort),
		serviceRoleKey: cfg.Services.ServiceRoleKey,
		migrationFile:  firstMigrationFile(cfg.Remote.Files),
		logger:         logger,
	}
}

// Probe issues a single authenticated GET against the datastore REST
// endpoint. Only a 200 proves the schema exists; every other outcome,
// including an unreachable datastore, means the migration still has to run.
func (p *Prober) Probe(ctx context.Context) Result {
	req, err := http.NewRequestWithContext(ctx, http.MethodGet, p.probeURL, nil)
	if err != nil {
		p.logger.Warn().Err(err).Msg("failed to build migration probe request")
		return Result{State: StateMigrationNeeded, StatusCode: StatusUnreachable}
	}
	req.Header.Set("apikey", p.serviceRoleKey)
	req.Header.Set("Authorization", "Bearer "+p.serviceRoleKey)

	resp, err := p.client.Do(req)
	if err != nil {
		p.logger.Debug().Err(err).Msg("migration probe request failed")
		return Result{State: StateMigrationNeeded, StatusCode: StatusUnreachable}
	}
	defer resp.Body.Close()

	if resp.StatusCode == http.StatusOK {
		p.logger.Info().Msg("database schema is configured")
		return Result{State: StateConfigured, StatusCode: resp.StatusCode}
	}

	p.logger.Warn().
		Int("status", resp.StatusCode).
		Msg("database schema not found, migration required")
	return Result{State: StateMigrationNeeded, StatusCode: resp.StatusCode}
}

// Instructions returns the manual remediation steps for an unmigrated
// database.
func (p *Prober) Instructions() []string {
	return []string{
		fmt.Sprintf("1. Open the dashboard SQL editor at %s", p.dashboardURL),
		fmt.Sprintf("2. Paste the contents of %s and run it", p.migrationFile),
		"3. Re-run 'stackup status' to confirm the schema is in place",
	}
}

func firstMigrationFile(files []string) string {
	for _, f := range files {
		if strings.HasSuffix(f, ".sql") {
			return f
		}
	}
	return "migration/complete_setup.sql"
}

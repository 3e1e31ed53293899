// Package bootstrap runs the single-pass deployment pipeline:
// preflight, fetch, stack start, health poll, migration probe, report.
// Only preflight failures are fatal; every later stage degrades to an
// operator warning so a half-started stack can still be inspected.
package bootstrap

import (
	"context"
	"fmt"
	"io"
	"os"
	"path/filepath"

	"github.com/rs/zerolog"
	"github.com/samber/do"
	"github.com/spf13/afero"

	"github.com/stackup-sh/stackup/internal/compose"
	"github.com/stackup-sh/stackup/internal/config"
	"github.com/stackup-sh/stackup/internal/docker"
	"github.com/stackup-sh/stackup/internal/envfile"
	"github.com/stackup-sh/stackup/internal/fetch"
	"github.com/stackup-sh/stackup/internal/health"
	"github.com/stackup-sh/stackup/internal/migrate"
	"github.com/stackup-sh/stackup/internal/preflight"
)

type App struct {
	cfg     config.Config
	logger  zerolog.Logger
	fs      afero.Fs
	checker *preflight.Checker
	fetcher *fetch.Fetcher
	stack   *compose.Controller
	poller  *health.Poller
	docker  *docker.Docker
	out     io.Writer
}

func NewApp(i *do.Injector) (*App, error) {
	cfg, err := do.Invoke[config.Config](i)
	if err != nil {
		return nil, err
	}
	logger, err := do.Invoke[zerolog.Logger](i)
	if err != nil {
		return nil, err
	}
	fs, err := do.Invoke[afero.Fs](i)
	if err != nil {
		return nil, err
	}
	checker, err := do.Invoke[*preflight.Checker](i)
	if err != nil {
		return nil, err
	}
	fetcher, err := do.Invoke[*fetch.Fetcher](i)
	if err != nil {
		return nil, err
	}
	stack, err := do.Invoke[*compose.Controller](i)
	if err != nil {
		return nil, err
	}
	poller, err := do.Invoke[*health.Poller](i)
	if err != nil {
		return nil, err
	}
	cli, err := do.Invoke[*docker.Docker](i)
	if err != nil {
		return nil, err
	}
	return &App{
		cfg:     cfg,
		logger:  logger,
		fs:      fs,
		checker: checker,
		fetcher: fetcher,
		stack:   stack,
		poller:  poller,
		docker:  cli,
		out:     os.Stdout,
	}, nil
}

// SetOutput redirects the operator report, used by tests.
func (a *App) SetOutput(w io.Writer) {
	a.out = w
}

// Up runs the full bootstrap pipeline. The returned error is non-nil only
// for fatal preflight failures.
func (a *App) Up(ctx context.Context) error {
	if err := a.checker.Run(ctx); err != nil {
		return err
	}

	cfg := a.effectiveConfig()

	report := &Report{
		Fetches: a.fetcher.EnsureAll(ctx, cfg.Remote.Files),
	}

	if services, err := a.stack.Services(); err != nil {
		a.logger.Warn().Err(err).Msg("failed to read service list from compose definition")
	} else {
		a.logger.Info().Strs("services", services).Msg("restarting stack")
	}
	a.stack.Down(ctx)
	if err := a.stack.Up(ctx); err != nil {
		a.logger.Warn().Err(err).Msg("stack failed to start cleanly, checking service health anyway")
	}

	report.Services = a.poller.Poll(ctx, health.Endpoints(cfg.Services))

	prober := migrate.NewProber(cfg, a.logger)
	result := prober.Probe(ctx)
	report.Migration = &result
	if result.State == migrate.StateMigrationNeeded {
		report.Instructions = prober.Instructions()
	}

	report.Render(a.out)
	return nil
}

// Down tears down the stack. Nothing to tear down is not an error.
func (a *App) Down(ctx context.Context) error {
	if err := a.checker.Run(ctx); err != nil {
		return err
	}
	a.stack.Down(ctx)
	a.logger.Info().Msg("stack is down")
	return nil
}

// Status polls a presumed-running stack and reports without touching its
// lifecycle.
func (a *App) Status(ctx context.Context) error {
	if err := a.checker.Run(ctx); err != nil {
		return err
	}

	cfg := a.effectiveConfig()

	report := &Report{
		Services:   a.poller.Poll(ctx, health.Endpoints(cfg.Services)),
		Containers: a.containerStatuses(ctx),
	}

	prober := migrate.NewProber(cfg, a.logger)
	result := prober.Probe(ctx)
	report.Migration = &result
	if result.State == migrate.StateMigrationNeeded {
		report.Instructions = prober.Instructions()
	}

	report.Render(a.out)
	return nil
}

// effectiveConfig overlays env file values onto the loaded configuration.
// The env file may have just been created by preflight, so this runs after
// the checker, not at config load time.
func (a *App) effectiveConfig() config.Config {
	cfg := a.cfg
	envPath := filepath.Join(cfg.Paths.WorkDir, cfg.Paths.EnvFile)
	exists, err := afero.Exists(a.fs, envPath)
	if err != nil || !exists {
		return cfg
	}
	vars, err := envfile.Load(a.fs, envPath)
	if err != nil {
		a.logger.Warn().Err(err).Msg("failed to read env file, using configured defaults")
		return cfg
	}
	cfg.Services = envfile.Apply(vars, cfg.Services)
	return cfg
}

func (a *App) containerStatuses(ctx context.Context) []ContainerStatus {
	containers, err := a.docker.ProjectContainers(ctx, a.stack.ProjectName())
	if err != nil {
		a.logger.Warn().Err(err).Msg("failed to list stack containers")
		return nil
	}
	statuses := make([]ContainerStatus, 0, len(containers))
	for _, c := range containers {
		service := c.Labels[docker.ComposeServiceLabel]
		if service == "" && len(c.Names) > 0 {
			service = c.Names[0]
		}
		statuses = append(statuses, ContainerStatus{
			Service: service,
			State:   fmt.Sprintf("%s (%s)", c.State, c.Status),
		})
	}
	return statuses
}

// Package preflight validates the local environment before any stack
// operation runs. Docker and the compose definition are hard requirements; a
// missing env file is remediated by copying the checked-in template.
package preflight

import (
	"context"
	"errors"
	"fmt"
	"path/filepath"

	"github.com/docker/docker/api/types/system"
	"github.com/rs/zerolog"
	"github.com/spf13/afero"

	"github.com/stackup-sh/stackup/internal/config"
	"github.com/stackup-sh/stackup/internal/envfile"
)

var (
	ErrDockerUnavailable  = errors.New("docker daemon is not reachable")
	ErrComposeFileMissing = errors.New("compose definition file is missing")
)

// Daemon is the slice of the docker client the checker needs.
type Daemon interface {
	Ping(ctx context.Context) error
	Info(ctx context.Context) (system.Info, error)
}

type Checker struct {
	fs     afero.Fs
	docker Daemon
	cfg    config.Config
	logger zerolog.Logger
}

func NewChecker(cfg config.Config, fs afero.Fs, docker Daemon, logger zerolog.Logger) *Checker {
	return &Checker{
		fs:     fs,
		docker: docker,
		cfg:    cfg,
		logger: logger,
	}
}

// Run performs all preflight checks in order. A returned error is fatal and
// must stop the bootstrap before any network or compose activity. The local
// compose-file check comes first so a bad working directory aborts before the
// daemon is ever contacted.
func (c *Checker) Run(ctx context.Context) error {
	if err := c.checkComposeFile(); err != nil {
		return err
	}
	if err := c.checkDocker(ctx); err != nil {
		return err
	}
	c.ensureEnvFile()
	return nil
}

func (c *Checker) checkDocker(ctx context.Context) error {
	if err := c.docker.Ping(ctx); err != nil {
		return fmt.Errorf("%w: %s", ErrDockerUnavailable, err)
	}
	info, err := c.docker.Info(ctx)
	if err != nil {
		c.logger.Debug().Err(err).Msg("failed to get docker info")
		return nil
	}
	c.logger.Debug().
		Str("server_version", info.ServerVersion).
		Int("containers_running", info.ContainersRunning).
		Msg("docker daemon is reachable")
	return nil
}

func (c *Checker) checkComposeFile() error {
	path := filepath.Join(c.cfg.Paths.WorkDir, c.cfg.Paths.ComposeFile)
	exists, err := afero.Exists(c.fs, path)
	if err != nil {
		return fmt.Errorf("failed to check for compose file %q: %w", path, err)
	}
	if !exists {
		return fmt.Errorf("%w: %s", ErrComposeFileMissing, path)
	}
	return nil
}

// ensureEnvFile copies the template into place when the env file is absent.
// Both being missing is only a warning: the compose defaults still apply.
func (c *Checker) ensureEnvFile() {
	envPath := filepath.Join(c.cfg.Paths.WorkDir, c.cfg.Paths.EnvFile)
	exists, err := afero.Exists(c.fs, envPath)
	if err != nil {
		c.logger.Warn().Err(err).Msg("failed to check for env file")
		return
	}
	if exists {
		return
	}

	templatePath := filepath.Join(c.cfg.Paths.WorkDir, c.cfg.Paths.EnvTemplate)
	if err := envfile.CopyTemplate(c.fs, templatePath, envPath); err != nil {
		c.logger.Warn().Err(err).Msg("env file and template are both missing, using defaults")
		return
	}
	c.logger.Info().
		Str("template", templatePath).
		Str("env_file", envPath).
		Msg("created env file from template")
}

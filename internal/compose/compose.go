// Package compose drives the docker compose CLI for full-stack lifecycle
// operations. The stack is always managed as a whole: teardown and
// build-and-start cover every service in the definition file.
package compose

import (
	"context"
	"fmt"
	"path/filepath"
	"sort"
	"strings"
	"unicode"

	"github.com/goccy/go-yaml"
	"github.com/rs/zerolog"
	"github.com/spf13/afero"

	"github.com/stackup-sh/stackup/internal/config"
	"github.com/stackup-sh/stackup/internal/exec"
)

type Controller struct {
	runner      exec.CmdRunner
	fs          afero.Fs
	workDir     string
	composeFile string
	logger      zerolog.Logger
}

func NewController(cfg config.Config, fs afero.Fs, runner exec.CmdRunner, logger zerolog.Logger) *Controller {
	return &Controller{
		runner:      runner,
		fs:          fs,
		workDir:     cfg.Paths.WorkDir,
		composeFile: cfg.Paths.ComposeFile,
		logger:      logger,
	}
}

func (c *Controller) composeArgs(args ...string) []string {
	base := []string{"compose", "-f", c.composePath()}
	return append(base, args...)
}

func (c *Controller) composePath() string {
	return filepath.Join(c.workDir, c.composeFile)
}

// Down tears down any previously running stack. Errors are swallowed so that
// a fresh environment with nothing to tear down doesn't fail the bootstrap.
func (c *Controller) Down(ctx context.Context) {
	output, err := c.runner(ctx, "docker", c.composeArgs("down")...)
	if err != nil {
		c.logger.Warn().
			Err(err).
			Str("output", strings.TrimSpace(output)).
			Msg("compose down failed, assuming no previous stack")
	}
}

// Up builds and starts every service in the stack in detached mode.
func (c *Controller) Up(ctx context.Context) error {
	output, err := c.runner(ctx, "docker", c.composeArgs("up", "-d", "--build")...)
	if err != nil {
		return fmt.Errorf("failed to start stack: %w: %s", err, strings.TrimSpace(output))
	}
	return nil
}

// Services parses the compose definition and returns its service names,
// sorted for stable output.
func (c *Controller) Services() ([]string, error) {
	raw, err := afero.ReadFile(c.fs, c.composePath())
	if err != nil {
		return nil, fmt.Errorf("failed to read compose file %q: %w", c.composePath(), err)
	}

	var def struct {
		Services map[string]any `yaml:"services"`
	}
	if err := yaml.Unmarshal(raw, &def); err != nil {
		return nil, fmt.Errorf("failed to parse compose file %q: %w", c.composePath(), err)
	}

	names := make([]string, 0, len(def.Services))
	for name := range def.Services {
		names = append(names, name)
	}
	sort.Strings(names)
	return names, nil
}

// ProjectName mirrors how docker compose derives the default project name
// from the working directory.
func (c *Controller) ProjectName() string {
	abs, err := filepath.Abs(c.workDir)
	if err != nil {
		abs = c.workDir
	}
	return NormalizeProjectName(filepath.Base(abs))
}

// NormalizeProjectName lowercases the name and strips characters compose
// rejects in project names.
func NormalizeProjectName(name string) string {
	var b strings.Builder
	for _, r := range strings.ToLower(name) {
		if unicode.IsLower(r) || unicode.IsDigit(r) || r == '-' || r == '_' {
			b.WriteRune(r)
		}
	}
	return strings.TrimLeft(b.String(), "-_")
}

package preflight_test

import (
	"context"
	"errors"
	"testing"

	"github.com/docker/docker/api/types/system"
	"github.com/spf13/afero"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/stackup-sh/stackup/internal/config"
	"github.com/stackup-sh/stackup/internal/preflight"
	"github.com/stackup-sh/stackup/internal/testutils"
)

type fakeDaemon struct {
	pingErr error
	pings   int
	infos   int
}

func (f *fakeDaemon) Ping(ctx context.Context) error {
	f.pings++
	return f.pingErr
}

func (f *fakeDaemon) Info(ctx context.Context) (system.Info, error) {
	f.infos++
	return system.Info{ServerVersion: "27.1.1"}, nil
}

func testConfig() config.Config {
	cfg := config.DefaultConfig()
	cfg.Paths.WorkDir = "/stack"
	return cfg
}

func TestRun(t *testing.T) {
	t.Run("docker unreachable is fatal", func(t *testing.T) {
		fs := afero.NewMemMapFs()
		require.NoError(t, afero.WriteFile(fs, "/stack/docker-compose.yml", []byte("services: {}\n"), 0o644))

		daemon := &fakeDaemon{pingErr: errors.New("connection refused")}
		checker := preflight.NewChecker(testConfig(), fs, daemon, testutils.Logger(t))

		err := checker.Run(context.Background())
		assert.ErrorIs(t, err, preflight.ErrDockerUnavailable)
		// An unreachable daemon is never interrogated further.
		assert.Zero(t, daemon.infos)
	})

	t.Run("missing compose file is fatal before the daemon is contacted", func(t *testing.T) {
		fs := afero.NewMemMapFs()
		daemon := &fakeDaemon{}
		checker := preflight.NewChecker(testConfig(), fs, daemon, testutils.Logger(t))

		err := checker.Run(context.Background())
		assert.ErrorIs(t, err, preflight.ErrComposeFileMissing)
		assert.Zero(t, daemon.pings)
		assert.Zero(t, daemon.infos)
	})

	t.Run("daemon info is collected after a successful ping", func(t *testing.T) {
		fs := afero.NewMemMapFs()
		require.NoError(t, afero.WriteFile(fs, "/stack/docker-compose.yml", []byte("services: {}\n"), 0o644))

		daemon := &fakeDaemon{}
		checker := preflight.NewChecker(testConfig(), fs, daemon, testutils.Logger(t))

		require.NoError(t, checker.Run(context.Background()))
		assert.Equal(t, 1, daemon.pings)
		assert.Equal(t, 1, daemon.infos)
	})

	t.Run("missing env file is remediated from template", func(t *testing.T) {
		fs := afero.NewMemMapFs()
		require.NoError(t, afero.WriteFile(fs, "/stack/docker-compose.yml", []byte("services: {}\n"), 0o644))
		require.NoError(t, afero.WriteFile(fs, "/stack/.env.example", []byte("UI_PORT=3737\n"), 0o644))

		checker := preflight.NewChecker(testConfig(), fs, &fakeDaemon{}, testutils.Logger(t))
		require.NoError(t, checker.Run(context.Background()))

		raw, err := afero.ReadFile(fs, "/stack/.env")
		require.NoError(t, err)
		assert.Equal(t, "UI_PORT=3737\n", string(raw))
	})

	t.Run("missing env file and template is non-fatal", func(t *testing.T) {
		fs := afero.NewMemMapFs()
		require.NoError(t, afero.WriteFile(fs, "/stack/docker-compose.yml", []byte("services: {}\n"), 0o644))

		checker := preflight.NewChecker(testConfig(), fs, &fakeDaemon{}, testutils.Logger(t))
		assert.NoError(t, checker.Run(context.Background()))

		exists, err := afero.Exists(fs, "/stack/.env")
		require.NoError(t, err)
		assert.False(t, exists)
	})

	t.Run("existing env file is left alone", func(t *testing.T) {
		fs := afero.NewMemMapFs()
		require.NoError(t, afero.WriteFile(fs, "/stack/docker-compose.yml", []byte("services: {}\n"), 0o644))
		require.NoError(t, afero.WriteFile(fs, "/stack/.env", []byte("UI_PORT=4000\n"), 0o644))
		require.NoError(t, afero.WriteFile(fs, "/stack/.env.example", []byte("UI_PORT=3737\n"), 0o644))

		checker := preflight.NewChecker(testConfig(), fs, &fakeDaemon{}, testutils.Logger(t))
		require.NoError(t, checker.Run(context.Background()))

		raw, err := afero.ReadFile(fs, "/stack/.env")
		require.NoError(t, err)
		assert.Equal(t, "UI_PORT=4000\n", string(raw))
	})
}

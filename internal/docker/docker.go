package docker

import (
	"context"
	"errors"
	"fmt"

	"github.com/docker/docker/api/types"
	"github.com/docker/docker/api/types/container"
	"github.com/docker/docker/api/types/filters"
	"github.com/docker/docker/api/types/system"
	"github.com/docker/docker/client"
	"github.com/samber/do"
)

var ErrNotFound = errors.New("not found error")

var _ do.Shutdownable = (*Docker)(nil)

// ComposeProjectLabel is set by docker compose on every container it manages.
const ComposeProjectLabel = "com.docker.compose.project"

// ComposeServiceLabel holds the compose service name of a container.
const ComposeServiceLabel = "com.docker.compose.service"

type Docker struct {
	client *client.Client
}

func NewDocker() (*Docker, error) {
	cli, err := client.NewClientWithOpts(client.FromEnv, client.WithAPIVersionNegotiation())
	if err != nil {
		return nil, fmt.Errorf("failed to create docker client: %w", err)
	}
	return &Docker{client: cli}, nil
}

// Ping checks that the docker daemon is reachable.
func (d *Docker) Ping(ctx context.Context) error {
	if _, err := d.client.Ping(ctx); err != nil {
		return fmt.Errorf("failed to ping docker daemon: %w", err)
	}
	return nil
}

func (d *Docker) Info(ctx context.Context) (system.Info, error) {
	info, err := d.client.Info(ctx)
	if err != nil {
		return system.Info{}, fmt.Errorf("failed to get docker info: %w", err)
	}
	return info, nil
}

func (d *Docker) ContainerList(ctx context.Context, opts container.ListOptions) ([]types.Container, error) {
	containers, err := d.client.ContainerList(ctx, opts)
	if err != nil {
		return nil, fmt.Errorf("failed to list containers: %w", errTranslate(err))
	}
	return containers, nil
}

// ProjectContainers returns the containers belonging to the given compose
// project, including stopped ones.
func (d *Docker) ProjectContainers(ctx context.Context, project string) ([]types.Container, error) {
	containers, err := d.ContainerList(ctx, container.ListOptions{
		All: true,
		Filters: filters.NewArgs(
			filters.Arg("label", ComposeProjectLabel+"="+project),
		),
	})
	if err != nil {
		return nil, fmt.Errorf("failed to list project containers: %w", err)
	}
	return containers, nil
}

func (d *Docker) Shutdown() error {
	if err := d.client.Close(); err != nil {
		return fmt.Errorf("failed to close docker client: %w", err)
	}
	return nil
}

// The docker errors are annoying to check further up in the stack since they
// rely on type checks. Wrapping them in our own errors makes it easier for
// callers to explicitly handle specific errors.
func errTranslate(err error) error {
	if client.IsErrNotFound(err) {
		return fmt.Errorf("%w: %s", ErrNotFound, err.Error())
	}
	return err
}

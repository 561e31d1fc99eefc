package container

import (
	"context"
	"encoding/json"
	"fmt"
	"io"

	dockerContainer "github.com/docker/docker/api/types/container"
	"github.com/docker/docker/api/types/filters"
	"github.com/docker/docker/client"
)

// DockerAPI implements Engine against the Docker Engine API.
type DockerAPI struct {
	cli *client.Client
}

// NewDockerAPI connects using DOCKER_HOST and the related environment.
func NewDockerAPI() (*DockerAPI, error) {
	cli, err := client.NewClientWithOpts(client.FromEnv, client.WithAPIVersionNegotiation())
	if err != nil {
		return nil, fmt.Errorf("failed to create docker client: %w", err)
	}
	return &DockerAPI{cli: cli}, nil
}

func (d *DockerAPI) ContainerState(ctx context.Context, id string) (string, bool, error) {
	list, err := d.cli.ContainerList(ctx, dockerContainer.ListOptions{
		All:     true,
		Filters: filters.NewArgs(filters.Arg("id", id)),
	})
	if err != nil {
		return "", false, fmt.Errorf("failed to list containers: %w", err)
	}
	if len(list) == 0 {
		return "", false, nil
	}
	return string(list[0].State), true, nil
}

func (d *DockerAPI) StartContainer(ctx context.Context, id string) error {
	if err := d.cli.ContainerStart(ctx, id, dockerContainer.StartOptions{}); err != nil {
		return fmt.Errorf("failed to start container: %w", err)
	}
	return nil
}

func (d *DockerAPI) StopContainer(ctx context.Context, id string) error {
	if err := d.cli.ContainerStop(ctx, id, dockerContainer.StopOptions{}); err != nil {
		return fmt.Errorf("failed to stop container: %w", err)
	}
	return nil
}

func (d *DockerAPI) RemoveContainer(ctx context.Context, id string) error {
	if err := d.cli.ContainerRemove(ctx, id, dockerContainer.RemoveOptions{}); err != nil {
		return fmt.Errorf("failed to remove container: %w", err)
	}
	return nil
}

// InspectContainer writes the inspect document as a one element JSON array,
// matching `docker inspect`.
func (d *DockerAPI) InspectContainer(ctx context.Context, id string, w io.Writer) error {
	info, err := d.cli.ContainerInspect(ctx, id)
	if err != nil {
		return fmt.Errorf("failed to inspect container: %w", err)
	}
	return writeInspect(w, []any{info})
}

func writeInspect(w io.Writer, v any) error {
	enc := json.NewEncoder(w)
	enc.SetIndent("", "    ")
	return enc.Encode(v)
}

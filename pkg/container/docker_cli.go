package container

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"os/exec"
	"strings"

	devcerrors "github.com/devc/devc/pkg/errors"
	"github.com/devc/devc/pkg/logging"
)

// DockerCLI implements Engine by running the docker command line client.
type DockerCLI struct {
	binary string
	stderr io.Writer
}

// NewDockerCLI returns an engine that runs binary. Diagnostics of inspect
// go to stderr.
func NewDockerCLI(binary string, stderr io.Writer) *DockerCLI {
	return &DockerCLI{binary: binary, stderr: stderr}
}

// psEntry is one line of `docker ps --format json`.
type psEntry struct {
	ID    string `json:"ID"`
	State string `json:"State"`
}

func (d *DockerCLI) command(ctx context.Context, args ...string) *exec.Cmd {
	cmd := exec.CommandContext(ctx, d.binary, args...)
	logging.FromContext(ctx).Debug("running command", logging.WithField("cmd", strings.Join(cmd.Args, " ")))
	return cmd
}

func (d *DockerCLI) output(ctx context.Context, args ...string) ([]byte, error) {
	cmd := d.command(ctx, args...)
	var stderr bytes.Buffer
	cmd.Stderr = &stderr

	out, err := cmd.Output()
	if err != nil {
		return nil, fmt.Errorf("%s %s: %w: %s", d.binary, args[0], err, strings.TrimSpace(stderr.String()))
	}
	return out, nil
}

// ContainerState looks the container up with `docker ps -a -f id=<id>`.
func (d *DockerCLI) ContainerState(ctx context.Context, id string) (string, bool, error) {
	out, err := d.output(ctx, "ps", "-a", "-f", "id="+id, "--format", "json")
	if err != nil {
		return "", false, err
	}

	logging.FromContext(ctx).Debug("got result from docker ps", logging.WithField("output", strings.TrimSpace(string(out))))

	line := firstLine(out)
	if line == "" {
		return "", false, nil
	}

	var entry psEntry
	if err := json.Unmarshal([]byte(line), &entry); err != nil {
		return "", false, devcerrors.Wrap(devcerrors.KindUnexpectedEngineState, err,
			"malformed output from %s ps", d.binary)
	}
	if entry.State == "" {
		return "", false, devcerrors.New(devcerrors.KindUnexpectedEngineState,
			"%s ps output has no State field: %s", d.binary, line)
	}

	return entry.State, true, nil
}

func (d *DockerCLI) StartContainer(ctx context.Context, id string) error {
	_, err := d.output(ctx, "start", id)
	return err
}

func (d *DockerCLI) StopContainer(ctx context.Context, id string) error {
	_, err := d.output(ctx, "stop", id)
	return err
}

func (d *DockerCLI) RemoveContainer(ctx context.Context, id string) error {
	_, err := d.output(ctx, "rm", id)
	return err
}

// InspectContainer streams `docker inspect <id>` to w.
func (d *DockerCLI) InspectContainer(ctx context.Context, id string, w io.Writer) error {
	cmd := d.command(ctx, "inspect", id)
	cmd.Stdout = w
	cmd.Stderr = d.stderr
	if err := cmd.Run(); err != nil {
		return fmt.Errorf("%s inspect: %w", d.binary, err)
	}
	return nil
}

func firstLine(out []byte) string {
	for _, line := range strings.Split(string(out), "\n") {
		if line = strings.TrimSpace(line); line != "" {
			return line
		}
	}
	return ""
}

package container

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"io"
	"os/exec"
	"strings"

	devcerrors "github.com/devc/devc/pkg/errors"
	"github.com/devc/devc/pkg/logging"
)

// DevcontainerCLI implements Builder with the devcontainer command line tool.
type DevcontainerCLI struct {
	binary string
	stderr io.Writer
}

// NewDevcontainerCLI returns a builder that runs binary. Build output of up
// is passed through to stderr.
func NewDevcontainerCLI(binary string, stderr io.Writer) *DevcontainerCLI {
	return &DevcontainerCLI{binary: binary, stderr: stderr}
}

// upResult is the JSON document `devcontainer up` prints last on stdout.
type upResult struct {
	Outcome     string `json:"outcome"`
	ContainerID string `json:"containerId"`
	Message     string `json:"message"`
	Description string `json:"description"`
}

func (d *DevcontainerCLI) Up(ctx context.Context, workspace string) (string, error) {
	cmd := exec.CommandContext(ctx, d.binary, "up", "--workspace-folder", workspace)
	logging.FromContext(ctx).Debug("running command", logging.WithField("cmd", strings.Join(cmd.Args, " ")))

	var stdout bytes.Buffer
	cmd.Stdout = &stdout
	cmd.Stderr = d.stderr
	runErr := cmd.Run()

	line := lastLine(stdout.Bytes())
	var res upResult
	if err := json.Unmarshal([]byte(line), &res); err != nil {
		if runErr != nil {
			return "", devcerrors.Wrap(devcerrors.KindBuildFailure, runErr, "%s up failed", d.binary)
		}
		return "", devcerrors.Wrap(devcerrors.KindBuildFailure, err, "unexpected output from %s up", d.binary)
	}

	if res.Outcome != "success" {
		msg := strings.TrimSpace(res.Message + " " + res.Description)
		return "", devcerrors.New(devcerrors.KindBuildFailure, "%s up reported %q: %s", d.binary, res.Outcome, msg)
	}
	if runErr != nil {
		return "", devcerrors.Wrap(devcerrors.KindBuildFailure, runErr, "%s up failed", d.binary)
	}
	if res.ContainerID == "" {
		return "", devcerrors.New(devcerrors.KindBuildFailure, "%s up did not report a container id", d.binary)
	}

	return res.ContainerID, nil
}

// Exec runs argv through `devcontainer exec`. A non-zero exit of argv is
// returned as the exit code with a nil error.
func (d *DevcontainerCLI) Exec(ctx context.Context, workspace string, argv []string, streams Streams) (int, error) {
	args := append([]string{"exec", "--workspace-folder", workspace}, argv...)
	cmd := exec.CommandContext(ctx, d.binary, args...)
	logging.FromContext(ctx).Debug("running command", logging.WithField("cmd", strings.Join(cmd.Args, " ")))

	cmd.Stdin = streams.Stdin
	cmd.Stdout = streams.Stdout
	cmd.Stderr = streams.Stderr

	err := cmd.Run()
	var exitErr *exec.ExitError
	switch {
	case err == nil:
		return 0, nil
	case errors.As(err, &exitErr):
		return exitErr.ExitCode(), nil
	default:
		return -1, err
	}
}

func lastLine(out []byte) string {
	lines := strings.Split(string(out), "\n")
	for i := len(lines) - 1; i >= 0; i-- {
		if line := strings.TrimSpace(lines[i]); line != "" {
			return line
		}
	}
	return ""
}

package cli

import (
	"github.com/devc/devc/pkg/color"
	"github.com/devc/devc/pkg/container"
	devcerrors "github.com/devc/devc/pkg/errors"
	"github.com/spf13/cobra"
)

func (f *LazyCommandFactory) runUp(cmd *cobra.Command, args []string) error {
	prev, err := f.Manager.EnsureUp(cmd.Context())
	if err != nil {
		return err
	}

	out := cmd.OutOrStdout()
	switch prev {
	case container.StatusUp:
		color.Fprintf(out, "Dev container is already running\n")
	case container.StatusStopped:
		color.Successf(out, "✓ Dev container started")
	default:
		color.Successf(out, "✓ Dev container created")
	}
	return nil
}

func (f *LazyCommandFactory) runStop(cmd *cobra.Command, args []string) error {
	prev, err := f.Manager.Stop(cmd.Context())
	if err != nil {
		return err
	}

	out := cmd.OutOrStdout()
	switch prev {
	case container.StatusUp:
		color.Successf(out, "✓ Dev container stopped")
	case container.StatusStopped:
		color.Fprintf(out, "Dev container is already stopped\n")
	default:
		color.Fprintf(out, "No dev container to stop\n")
	}
	return nil
}

func (f *LazyCommandFactory) runDown(cmd *cobra.Command, args []string) error {
	prev, err := f.Manager.Down(cmd.Context())
	if err != nil {
		return err
	}

	if prev == container.StatusDown {
		color.Fprintf(cmd.OutOrStdout(), "No dev container to remove\n")
		return nil
	}
	color.Successf(cmd.OutOrStdout(), "✓ Dev container removed")
	return nil
}

func (f *LazyCommandFactory) runStatus(cmd *cobra.Command, args []string) error {
	ctx := cmd.Context()
	status, id, err := f.Manager.Status(ctx)
	if err != nil {
		return err
	}

	out := cmd.OutOrStdout()
	switch status {
	case container.StatusUp:
		color.Fprintf(out, "{bold}Status:{reset}    {green}%s{reset}\n", status)
	case container.StatusStopped:
		color.Fprintf(out, "{bold}Status:{reset}    {yellow}%s{reset}\n", status)
	default:
		color.Fprintf(out, "{bold}Status:{reset}    {red}%s{reset}\n", status)
	}
	if id != "" {
		color.Fprintf(out, "{bold}Container:{reset} %s\n", id)
	}

	report, err := f.Manager.Check(ctx)
	if err != nil {
		return err
	}
	for _, msg := range report.Messages() {
		color.Warningf(cmd.ErrOrStderr(), "%s", msg)
	}
	return nil
}

func (f *LazyCommandFactory) runExec(cmd *cobra.Command, args []string) error {
	code, err := f.Manager.Exec(cmd.Context(), args, container.Streams{
		Stdin:  cmd.InOrStdin(),
		Stdout: cmd.OutOrStdout(),
		Stderr: cmd.ErrOrStderr(),
	})
	if err != nil {
		return err
	}
	if code != 0 {
		return &devcerrors.ExitError{Code: code}
	}
	return nil
}

func (f *LazyCommandFactory) runInspect(cmd *cobra.Command, args []string) error {
	return f.Manager.Inspect(cmd.Context(), cmd.OutOrStdout())
}

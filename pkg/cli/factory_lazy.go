package cli

import (
	"context"
	"fmt"
	"os"
	"sync"

	"github.com/devc/devc/pkg/config"
	"github.com/devc/devc/pkg/container"
	"github.com/devc/devc/pkg/devcontainer"
	"github.com/devc/devc/pkg/logging"
	"github.com/devc/devc/pkg/project"
	"github.com/spf13/cobra"
	"github.com/spf13/viper"
)

// Version is set at build time with -ldflags "-X github.com/devc/devc/pkg/cli.Version=..."
var Version = "dev"

// LazyCommandFactory creates CLI commands with lazy dependency initialization
type LazyCommandFactory struct {
	Viper   *viper.Viper
	RunID   string
	Config  *config.Config
	Manager LifecycleManager

	once        sync.Once
	initError   error
	initializer func(ctx context.Context) error // For testing
}

// NewLazyCommandFactory creates a factory that delays initialization until a
// command that needs the project actually runs.
func NewLazyCommandFactory(v *viper.Viper) *LazyCommandFactory {
	f := &LazyCommandFactory{
		Viper: v,
		RunID: logging.NewRunID(),
	}
	f.initializer = f.defaultInitializer
	return f
}

func (f *LazyCommandFactory) defaultInitializer(ctx context.Context) error {
	cfg, err := config.Load(f.Viper)
	if err != nil {
		return err
	}

	logger, err := logging.NewLogger(logging.Config{
		Level:  cfg.EffectiveLogLevel(),
		Format: cfg.LogFormat,
		Output: "stderr",
		File:   cfg.LogFile,
		RunID:  f.RunID,
	})
	if err != nil {
		return fmt.Errorf("failed to set up logging: %w", err)
	}
	logging.SetDefault(logger)

	store, err := project.NewStore(cfg.Home, cfg.ProjectDir)
	if err != nil {
		return err
	}
	logger.Debug("resolved project",
		logging.WithField("path", store.ProjectPath()),
		logging.WithField("identity", string(store.Identity())))

	engine, err := container.NewEngine(ctx, cfg, os.Stderr)
	if err != nil {
		return fmt.Errorf("failed to set up %s engine: %w", cfg.Engine, err)
	}
	builder := container.NewDevcontainerCLI(cfg.DevcontainerBinary, os.Stderr)

	f.Config = cfg
	f.Manager = container.NewManager(engine, builder, store, devcontainer.NewFiles(store.ProjectPath()))
	return nil
}

// ensureInitialized performs lazy initialization
func (f *LazyCommandFactory) ensureInitialized(ctx context.Context) error {
	f.once.Do(func() {
		if f.initializer != nil {
			f.initError = f.initializer(ctx)
		}
	})
	return f.initError
}

// run wraps a handler so it only runs after initialization.
func (f *LazyCommandFactory) run(handler func(cmd *cobra.Command, args []string) error) func(*cobra.Command, []string) error {
	return func(cmd *cobra.Command, args []string) error {
		if err := f.ensureInitialized(cmd.Context()); err != nil {
			return err
		}
		return handler(cmd, args)
	}
}

// RootCmd returns the devc command with every subcommand attached
func (f *LazyCommandFactory) RootCmd() *cobra.Command {
	root := &cobra.Command{
		Use:   "devc",
		Short: "Manage the dev container of the current project",
		Long: `devc wraps the devcontainer CLI and the container engine to keep one
dev container per project directory.

The project is taken from PROJECT_DIR and state lives under DEVC_HOME.
Running devc without a subcommand opens bash in the container.`,
		Args:          cobra.NoArgs,
		SilenceErrors: true,
		SilenceUsage:  true,
		RunE: f.run(func(cmd *cobra.Command, args []string) error {
			return f.runExec(cmd, []string{"bash"})
		}),
	}

	root.PersistentFlags().BoolP("verbose", "v", false, "Log debug output to stderr")
	_ = f.Viper.BindPFlag("verbose", root.PersistentFlags().Lookup("verbose"))

	root.AddGroup(
		&cobra.Group{ID: "lifecycle", Title: "Lifecycle Commands:"},
		&cobra.Group{ID: "working", Title: "Working Commands:"},
	)
	root.AddCommand(
		f.UpCmd(),
		f.StopCmd(),
		f.DownCmd(),
		f.StatusCmd(),
		f.ExecCmd(),
		f.InspectCmd(),
		f.VersionCmd(),
	)
	return root
}

// UpCmd returns the up command
func (f *LazyCommandFactory) UpCmd() *cobra.Command {
	return &cobra.Command{
		Use:     "up",
		Short:   "Build or start the dev container",
		GroupID: "lifecycle",
		Long: `Brings the project's dev container up.

A devcontainer.json is generated from devc-generate.yml when needed. A missing
container is built, a stopped one is started. A container built from a
different devcontainer.json is refused until it is removed with 'devc down'.`,
		Args: cobra.NoArgs,
		RunE: f.run(f.runUp),
	}
}

// StopCmd returns the stop command
func (f *LazyCommandFactory) StopCmd() *cobra.Command {
	return &cobra.Command{
		Use:     "stop",
		Short:   "Stop the dev container",
		GroupID: "lifecycle",
		Args:    cobra.NoArgs,
		RunE:    f.run(f.runStop),
	}
}

// DownCmd returns the down command
func (f *LazyCommandFactory) DownCmd() *cobra.Command {
	return &cobra.Command{
		Use:     "down",
		Short:   "Stop and remove the dev container",
		GroupID: "lifecycle",
		Args:    cobra.NoArgs,
		RunE:    f.run(f.runDown),
	}
}

// StatusCmd returns the status command
func (f *LazyCommandFactory) StatusCmd() *cobra.Command {
	return &cobra.Command{
		Use:     "status",
		Short:   "Show the dev container status and pending config changes",
		GroupID: "lifecycle",
		Args:    cobra.NoArgs,
		RunE:    f.run(f.runStatus),
	}
}

// ExecCmd returns the exec command
func (f *LazyCommandFactory) ExecCmd() *cobra.Command {
	cmd := &cobra.Command{
		Use:     "exec <command> [args...]",
		Short:   "Run a command in the dev container",
		GroupID: "working",
		Long: `Brings the dev container up and runs a command in it.

Flags after the command name are passed to the command. The exit code of the
command becomes the exit code of devc.`,
		Example: `  devc exec make test
  devc exec ls -la /workspaces`,
		Args: cobra.MinimumNArgs(1),
		RunE: f.run(f.runExec),
	}
	cmd.Flags().SetInterspersed(false)
	return cmd
}

// InspectCmd returns the inspect command
func (f *LazyCommandFactory) InspectCmd() *cobra.Command {
	return &cobra.Command{
		Use:     "inspect",
		Short:   "Print the container engine's description of the dev container",
		GroupID: "working",
		Args:    cobra.NoArgs,
		RunE:    f.run(f.runInspect),
	}
}

// VersionCmd returns the version command. It needs no configuration.
func (f *LazyCommandFactory) VersionCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "version",
		Short: "Print the devc version",
		Args:  cobra.NoArgs,
		Run: func(cmd *cobra.Command, args []string) {
			fmt.Fprintf(cmd.OutOrStdout(), "devc %s\n", Version)
		},
	}
}

package cli

import (
	"context"
	"io"

	"github.com/devc/devc/pkg/container"
	"github.com/devc/devc/pkg/devcontainer"
)

// LifecycleManager defines the dev container operations the commands drive
type LifecycleManager interface {
	Status(ctx context.Context) (container.Status, string, error)
	EnsureUp(ctx context.Context) (container.Status, error)
	Stop(ctx context.Context) (container.Status, error)
	Down(ctx context.Context) (container.Status, error)
	Exec(ctx context.Context, argv []string, streams container.Streams) (int, error)
	Inspect(ctx context.Context, w io.Writer) error
	Check(ctx context.Context) (*devcontainer.Report, error)
}

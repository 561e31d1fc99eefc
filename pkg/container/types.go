package container

import (
	"context"
	"io"
)

// Status is the reconciled state of the project's dev container.
type Status string

const (
	// StatusDown means no container is cached or the engine no longer knows it.
	StatusDown    Status = "down"
	StatusStopped Status = "stopped"
	StatusUp      Status = "up"
)

// Container states reported by the engine that devc understands.
const (
	EngineStateRunning = "running"
	EngineStateExited  = "exited"
)

// Engine drives the container engine for a container handle.
type Engine interface {
	// ContainerState returns the engine's state for id, or found=false when
	// the engine does not know the container.
	ContainerState(ctx context.Context, id string) (state string, found bool, err error)
	StartContainer(ctx context.Context, id string) error
	StopContainer(ctx context.Context, id string) error
	RemoveContainer(ctx context.Context, id string) error
	// InspectContainer writes the engine's full description of id to w.
	InspectContainer(ctx context.Context, id string, w io.Writer) error
}

// Builder drives the devcontainer CLI for a workspace folder.
type Builder interface {
	// Up builds and starts a container and returns its handle.
	Up(ctx context.Context, workspace string) (string, error)
	// Exec runs argv in the workspace's container and returns its exit code.
	Exec(ctx context.Context, workspace string, argv []string, streams Streams) (int, error)
}

// Streams are connected to a command run in the container.
type Streams struct {
	Stdin  io.Reader
	Stdout io.Writer
	Stderr io.Writer
}

//go:build podman

package container

import (
	"context"
	"fmt"
	"io"

	"github.com/containers/podman/v5/pkg/bindings"
	"github.com/containers/podman/v5/pkg/bindings/containers"
)

// Podman implements Engine against the Podman API socket.
type Podman struct {
	conn context.Context
}

// NewPodman connects to the Podman service at uri, for example
// unix:///run/user/1000/podman/podman.sock.
func NewPodman(ctx context.Context, uri string) (Engine, error) {
	conn, err := bindings.NewConnection(ctx, uri)
	if err != nil {
		return nil, fmt.Errorf("failed to connect to podman at %s: %w", uri, err)
	}
	return &Podman{conn: conn}, nil
}

// connFor carries the deadline of ctx onto the connection context the
// bindings expect.
func (p *Podman) connFor(ctx context.Context) (context.Context, context.CancelFunc) {
	if deadline, ok := ctx.Deadline(); ok {
		return context.WithDeadline(p.conn, deadline)
	}
	return context.WithCancel(p.conn)
}

func (p *Podman) ContainerState(ctx context.Context, id string) (string, bool, error) {
	conn, cancel := p.connFor(ctx)
	defer cancel()

	all := true
	list, err := containers.List(conn, &containers.ListOptions{
		All:     &all,
		Filters: map[string][]string{"id": {id}},
	})
	if err != nil {
		return "", false, fmt.Errorf("failed to list containers: %w", err)
	}
	if len(list) == 0 {
		return "", false, nil
	}
	return list[0].State, true, nil
}

func (p *Podman) StartContainer(ctx context.Context, id string) error {
	conn, cancel := p.connFor(ctx)
	defer cancel()
	return containers.Start(conn, id, nil)
}

func (p *Podman) StopContainer(ctx context.Context, id string) error {
	conn, cancel := p.connFor(ctx)
	defer cancel()

	timeout := uint(10)
	return containers.Stop(conn, id, &containers.StopOptions{
		Timeout: &timeout,
	})
}

func (p *Podman) RemoveContainer(ctx context.Context, id string) error {
	conn, cancel := p.connFor(ctx)
	defer cancel()

	_, err := containers.Remove(conn, id, nil)
	return err
}

func (p *Podman) InspectContainer(ctx context.Context, id string, w io.Writer) error {
	conn, cancel := p.connFor(ctx)
	defer cancel()

	data, err := containers.Inspect(conn, id, nil)
	if err != nil {
		return fmt.Errorf("failed to inspect container: %w", err)
	}
	return writeInspect(w, []any{data})
}

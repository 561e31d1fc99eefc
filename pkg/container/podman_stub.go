//go:build !podman

package container

import (
	"context"
	"errors"
)

// NewPodman is unavailable unless devc is built with -tags podman.
func NewPodman(ctx context.Context, uri string) (Engine, error) {
	return nil, errors.New("podman engine not compiled in; rebuild with -tags podman")
}

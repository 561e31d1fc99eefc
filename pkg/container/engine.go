package container

import (
	"context"
	"fmt"
	"io"
	"time"

	"github.com/devc/devc/pkg/config"
)

// NewEngine returns the engine selected by cfg.Engine, bounded by
// cfg.EngineTimeout when it is set.
func NewEngine(ctx context.Context, cfg *config.Config, stderr io.Writer) (Engine, error) {
	var (
		engine Engine
		err    error
	)

	switch cfg.Engine {
	case config.EngineDocker, "":
		engine = NewDockerCLI(cfg.DockerBinary, stderr)
	case config.EngineDockerAPI:
		engine, err = NewDockerAPI()
	case config.EnginePodman:
		engine, err = NewPodman(ctx, cfg.PodmanSocket)
	default:
		return nil, fmt.Errorf("unknown engine %q", cfg.Engine)
	}
	if err != nil {
		return nil, err
	}

	return WithTimeout(engine, cfg.EngineTimeout), nil
}

// WithTimeout bounds every engine call by d. A zero d returns e unchanged.
func WithTimeout(e Engine, d time.Duration) Engine {
	if d <= 0 {
		return e
	}
	return &timeoutEngine{engine: e, timeout: d}
}

type timeoutEngine struct {
	engine  Engine
	timeout time.Duration
}

func (t *timeoutEngine) ContainerState(ctx context.Context, id string) (string, bool, error) {
	ctx, cancel := context.WithTimeout(ctx, t.timeout)
	defer cancel()
	return t.engine.ContainerState(ctx, id)
}

func (t *timeoutEngine) StartContainer(ctx context.Context, id string) error {
	ctx, cancel := context.WithTimeout(ctx, t.timeout)
	defer cancel()
	return t.engine.StartContainer(ctx, id)
}

func (t *timeoutEngine) StopContainer(ctx context.Context, id string) error {
	ctx, cancel := context.WithTimeout(ctx, t.timeout)
	defer cancel()
	return t.engine.StopContainer(ctx, id)
}

func (t *timeoutEngine) RemoveContainer(ctx context.Context, id string) error {
	ctx, cancel := context.WithTimeout(ctx, t.timeout)
	defer cancel()
	return t.engine.RemoveContainer(ctx, id)
}

func (t *timeoutEngine) InspectContainer(ctx context.Context, id string, w io.Writer) error {
	ctx, cancel := context.WithTimeout(ctx, t.timeout)
	defer cancel()
	return t.engine.InspectContainer(ctx, id, w)
}

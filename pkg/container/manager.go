package container

import (
	"context"
	"errors"
	"fmt"
	"io"
	"log/slog"

	"github.com/devc/devc/pkg/cleanup"
	"github.com/devc/devc/pkg/devcontainer"
	devcerrors "github.com/devc/devc/pkg/errors"
	"github.com/devc/devc/pkg/fingerprint"
	"github.com/devc/devc/pkg/logging"
	"github.com/devc/devc/pkg/project"
)

// ErrNoContainer is returned by Inspect when the project has no container.
var ErrNoContainer = errors.New("no running dev container found")

// StateStore is the per-project state the manager reads and writes.
type StateStore interface {
	Read(ctx context.Context) (*project.State, error)
	Update(ctx context.Context, fn func(*project.State) error) error
	GetValue(ctx context.Context, key project.Key) (string, error)
	SetValue(ctx context.Context, key project.Key, value string) error
}

// Manager drives the dev container of one project through its lifecycle.
type Manager struct {
	engine  Engine
	builder Builder
	store   StateStore
	files   devcontainer.Files
	logger  *slog.Logger
}

// NewManager creates a new container manager
func NewManager(engine Engine, builder Builder, store StateStore, files devcontainer.Files) *Manager {
	return &Manager{
		engine:  engine,
		builder: builder,
		store:   store,
		files:   files,
		logger:  logging.Default(),
	}
}

// Status reconciles the cached container handle with the engine and
// returns the container status along with the handle.
func (m *Manager) Status(ctx context.Context) (Status, string, error) {
	id, err := m.store.GetValue(ctx, project.KeyContainerID)
	if err != nil {
		return "", "", err
	}
	if id == "" {
		m.logger.Debug("no cached container id")
		return StatusDown, "", nil
	}

	state, found, err := m.engine.ContainerState(ctx, id)
	if err != nil {
		return "", "", fmt.Errorf("failed to query container %s: %w", id, err)
	}
	if !found {
		m.logger.Debug("cached container no longer exists", logging.WithField("container", id))
		if err := m.store.SetValue(ctx, project.KeyContainerID, ""); err != nil {
			return "", "", err
		}
		return StatusDown, "", nil
	}

	switch state {
	case EngineStateRunning:
		return StatusUp, id, nil
	case EngineStateExited:
		return StatusStopped, id, nil
	default:
		return "", "", devcerrors.New(devcerrors.KindUnexpectedEngineState,
			"container %s is in unexpected state %q", id, state)
	}
}

// EnsureUp brings the container to up, building it if needed. It returns
// the status the container had before.
func (m *Manager) EnsureUp(ctx context.Context) (Status, error) {
	if err := devcontainer.Ensure(ctx, m.files, m.store); err != nil {
		return "", err
	}

	status, id, err := m.Status(ctx)
	if err != nil {
		return "", err
	}

	switch status {
	case StatusUp:
		return status, m.checkDrift(ctx, "The running dev container was built from a different devcontainer.json. Run 'devc down' and then 'devc up' to apply the changes.")
	case StatusStopped:
		if err := m.checkDrift(ctx, "The stopped dev container was built from a different devcontainer.json. Run 'devc down' and then 'devc up' to apply the changes."); err != nil {
			return status, err
		}
		m.logger.Debug("starting container", logging.WithField("container", id))
		if err := m.engine.StartContainer(ctx, id); err != nil {
			return status, fmt.Errorf("failed to start container %s: %w", id, err)
		}
		return status, nil
	default:
		return status, m.create(ctx)
	}
}

func (m *Manager) checkDrift(ctx context.Context, msg string) error {
	specFP, err := m.files.SpecFingerprint()
	if err != nil {
		return err
	}
	st, err := m.store.Read(ctx)
	if err != nil {
		return err
	}
	if fingerprint.DetectDrift(specFP, fingerprint.Fingerprint(st.ContainerSpecHash)) {
		return devcerrors.New(devcerrors.KindConfigDrift, "%s", msg)
	}
	return nil
}

// create builds a new container. The generation fingerprint holds the
// in-progress marker until the new handle is recorded.
func (m *Manager) create(ctx context.Context) (err error) {
	specFP, err := m.files.SpecFingerprint()
	if err != nil {
		return err
	}
	genFP, err := m.files.GenerateFingerprint()
	if err != nil {
		return err
	}

	if !genFP.IsAbsent() {
		if err := m.store.SetValue(ctx, project.KeyDevcGenerateHash, project.GeneratingMarker); err != nil {
			return err
		}
	}

	m.logger.Debug("building container", logging.WithField("workspace", m.files.ProjectDir))
	id, err := m.builder.Up(ctx, m.files.ProjectDir)
	if err != nil {
		if devcerrors.KindOf(err) == devcerrors.KindUnknown {
			return devcerrors.Wrap(devcerrors.KindBuildFailure, err, "failed to build dev container")
		}
		return err
	}

	cleaner := cleanup.New(m.logger)
	cleaner.Add("remove container", func(ctx context.Context) error {
		if err := m.engine.StopContainer(ctx, id); err != nil {
			m.logger.Warn("failed to stop container", logging.WithField("container", id), logging.WithError(err))
		}
		return m.engine.RemoveContainer(ctx, id)
	})
	defer cleaner.RunOnError(ctx, &err)

	err = m.store.Update(ctx, func(st *project.State) error {
		st.ContainerID = id
		st.ContainerSpecHash = string(specFP)
		if !genFP.IsAbsent() {
			st.DevcGenerateHash = string(genFP)
		}
		return nil
	})
	if err != nil {
		return fmt.Errorf("failed to record container %s: %w", id, err)
	}

	m.logger.Debug("container created", logging.WithField("container", id))
	return nil
}

// Stop stops a running container. It returns the status the container had
// before.
func (m *Manager) Stop(ctx context.Context) (Status, error) {
	status, id, err := m.Status(ctx)
	if err != nil {
		return "", err
	}
	if status != StatusUp {
		return status, nil
	}

	if err := m.engine.StopContainer(ctx, id); err != nil {
		return status, fmt.Errorf("failed to stop container %s: %w", id, err)
	}
	return status, nil
}

// Down stops and removes the container and forgets its handle. It returns
// the status the container had before.
func (m *Manager) Down(ctx context.Context) (Status, error) {
	status, id, err := m.Status(ctx)
	if err != nil {
		return "", err
	}
	if status == StatusDown {
		return status, nil
	}

	if status == StatusUp {
		if err := m.engine.StopContainer(ctx, id); err != nil {
			return status, fmt.Errorf("failed to stop container %s: %w", id, err)
		}
	}
	if err := m.engine.RemoveContainer(ctx, id); err != nil {
		return status, fmt.Errorf("failed to remove container %s: %w", id, err)
	}
	if err := m.store.SetValue(ctx, project.KeyContainerID, ""); err != nil {
		return status, err
	}
	return status, nil
}

// Exec brings the container up and runs argv in it, returning argv's exit
// code.
func (m *Manager) Exec(ctx context.Context, argv []string, streams Streams) (int, error) {
	if len(argv) == 0 {
		return -1, errors.New("no command given")
	}
	if _, err := m.EnsureUp(ctx); err != nil {
		return -1, err
	}

	code, err := m.builder.Exec(ctx, m.files.ProjectDir, argv, streams)
	if err != nil {
		return -1, fmt.Errorf("failed to run %s: %w", argv[0], err)
	}
	return code, nil
}

// Inspect writes the engine's description of the container to w.
func (m *Manager) Inspect(ctx context.Context, w io.Writer) error {
	status, id, err := m.Status(ctx)
	if err != nil {
		return err
	}
	if status == StatusDown {
		return ErrNoContainer
	}
	return m.engine.InspectContainer(ctx, id, w)
}

// Check reports spec changes without touching state.
func (m *Manager) Check(ctx context.Context) (*devcontainer.Report, error) {
	return devcontainer.Check(ctx, m.files, m.store)
}

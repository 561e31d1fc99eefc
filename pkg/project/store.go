// Package project maps a project directory to its persisted devc state.
//
// Every read and every write is its own locked transaction. A read-modify-write
// (SetValue, Update) is a read followed by a separate write, so two concurrent
// invocations can both read before either writes; the last write wins. Locks
// never wait: a held lock fails the command instead.
package project

import (
	"context"
	"errors"
	"fmt"
	"os"
	"path/filepath"

	devcerrors "github.com/devc/devc/pkg/errors"
	"github.com/devc/devc/pkg/logging"
	"github.com/moby/sys/atomicwriter"
	"gopkg.in/yaml.v3"
)

const (
	stateFilename = "state.yml"
	lockSuffix    = ".lock"
)

// Store persists the State of a single project.
type Store struct {
	projectPath string
	identity    Identity
	dir         string
	statePath   string
	lockPath    string
}

// NewStore opens the state store for projectDir under the devc home directory.
// Nothing is created on disk until the first read or write.
func NewStore(home, projectDir string) (*Store, error) {
	canonical, err := Canonicalize(projectDir)
	if err != nil {
		return nil, err
	}

	id := IdentityFor(canonical)
	dir := filepath.Join(home, "project", string(id))
	statePath := filepath.Join(dir, stateFilename)

	return &Store{
		projectPath: canonical,
		identity:    id,
		dir:         dir,
		statePath:   statePath,
		lockPath:    statePath + lockSuffix,
	}, nil
}

// ProjectPath returns the canonical project directory.
func (s *Store) ProjectPath() string {
	return s.projectPath
}

// Identity returns the project identity.
func (s *Store) Identity() Identity {
	return s.identity
}

// StatePath returns the path of the state file.
func (s *Store) StatePath() string {
	return s.statePath
}

// Read loads the state under a shared lock. A project without a state file
// gets a fresh record holding only its path.
func (s *Store) Read(ctx context.Context) (*State, error) {
	unlock, err := s.lock(lockShared)
	if err != nil {
		return nil, err
	}
	defer unlock()

	data, err := os.ReadFile(s.statePath)
	if errors.Is(err, os.ErrNotExist) {
		return &State{ProjectPath: s.projectPath}, nil
	}
	if err != nil {
		return nil, fmt.Errorf("failed to read state file: %w", err)
	}

	var st State
	if err := yaml.Unmarshal(data, &st); err != nil {
		return nil, devcerrors.Wrap(devcerrors.KindStateCorruption, err,
			"state file %s is not valid YAML", s.statePath)
	}

	if st.ProjectPath != s.projectPath {
		return nil, devcerrors.New(devcerrors.KindStateCorruption,
			"project path mismatch in %s. Expected: %s, Found: %s", s.statePath, s.projectPath, st.ProjectPath)
	}

	return &st, nil
}

// Write persists the full record under an exclusive lock.
func (s *Store) Write(ctx context.Context, st *State) error {
	if st.ProjectPath != s.projectPath {
		return devcerrors.New(devcerrors.KindStateCorruption,
			"refusing to write state for %s into %s", st.ProjectPath, s.statePath)
	}

	unlock, err := s.lock(lockExclusive)
	if err != nil {
		return err
	}
	defer unlock()

	data, err := yaml.Marshal(st)
	if err != nil {
		return fmt.Errorf("failed to encode state: %w", err)
	}

	if err := atomicwriter.WriteFile(s.statePath, data, 0o644); err != nil {
		return fmt.Errorf("failed to write state file: %w", err)
	}

	return nil
}

// GetValue reads a single key.
func (s *Store) GetValue(ctx context.Context, key Key) (string, error) {
	st, err := s.Read(ctx)
	if err != nil {
		return "", err
	}

	value, err := st.Get(key)
	if err != nil {
		return "", err
	}

	logging.FromContext(ctx).Debug("read project state",
		logging.WithField("key", string(key)),
		logging.WithField("value", value))
	return value, nil
}

// SetValue reads the record, sets key and writes it back.
func (s *Store) SetValue(ctx context.Context, key Key, value string) error {
	return s.Update(ctx, func(st *State) error {
		logging.FromContext(ctx).Debug("writing project state",
			logging.WithField("key", string(key)),
			logging.WithField("value", value))
		return st.Set(key, value)
	})
}

// Update reads the record, applies fn and writes it back.
func (s *Store) Update(ctx context.Context, fn func(*State) error) error {
	st, err := s.Read(ctx)
	if err != nil {
		return err
	}
	if err := fn(st); err != nil {
		return err
	}
	return s.Write(ctx, st)
}

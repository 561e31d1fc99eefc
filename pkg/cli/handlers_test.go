package cli

import (
	"bytes"
	"context"
	"errors"
	"io"
	"testing"

	"github.com/devc/devc/pkg/config"
	"github.com/devc/devc/pkg/container"
	"github.com/devc/devc/pkg/devcontainer"
	devcerrors "github.com/devc/devc/pkg/errors"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/mock"
	"github.com/stretchr/testify/require"
)

// MockLifecycleManager mocks the LifecycleManager interface
type MockLifecycleManager struct {
	mock.Mock
}

func (m *MockLifecycleManager) Status(ctx context.Context) (container.Status, string, error) {
	args := m.Called(ctx)
	return args.Get(0).(container.Status), args.String(1), args.Error(2)
}

func (m *MockLifecycleManager) EnsureUp(ctx context.Context) (container.Status, error) {
	args := m.Called(ctx)
	return args.Get(0).(container.Status), args.Error(1)
}

func (m *MockLifecycleManager) Stop(ctx context.Context) (container.Status, error) {
	args := m.Called(ctx)
	return args.Get(0).(container.Status), args.Error(1)
}

func (m *MockLifecycleManager) Down(ctx context.Context) (container.Status, error) {
	args := m.Called(ctx)
	return args.Get(0).(container.Status), args.Error(1)
}

func (m *MockLifecycleManager) Exec(ctx context.Context, argv []string, streams container.Streams) (int, error) {
	args := m.Called(ctx, argv, streams)
	return args.Int(0), args.Error(1)
}

func (m *MockLifecycleManager) Inspect(ctx context.Context, w io.Writer) error {
	args := m.Called(ctx, w)
	return args.Error(0)
}

func (m *MockLifecycleManager) Check(ctx context.Context) (*devcontainer.Report, error) {
	args := m.Called(ctx)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*devcontainer.Report), args.Error(1)
}

func newTestFactory(mgr LifecycleManager) *LazyCommandFactory {
	f := NewLazyCommandFactory(config.NewViper())
	f.initializer = func(context.Context) error {
		f.Config = config.DefaultConfig()
		f.Manager = mgr
		return nil
	}
	return f
}

func execute(t *testing.T, f *LazyCommandFactory, args ...string) (string, string, error) {
	t.Helper()
	root := f.RootCmd()
	var stdout, stderr bytes.Buffer
	root.SetOut(&stdout)
	root.SetErr(&stderr)
	root.SetIn(&bytes.Buffer{})
	root.SetArgs(args)
	err := root.ExecuteContext(context.Background())
	return stdout.String(), stderr.String(), err
}

func TestUpCommand(t *testing.T) {
	tests := []struct {
		name string
		prev container.Status
		want string
	}{
		{name: "created", prev: container.StatusDown, want: "Dev container created"},
		{name: "started", prev: container.StatusStopped, want: "Dev container started"},
		{name: "running", prev: container.StatusUp, want: "already running"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			mgr := new(MockLifecycleManager)
			mgr.On("EnsureUp", mock.Anything).Return(tt.prev, nil)

			out, _, err := execute(t, newTestFactory(mgr), "up")
			require.NoError(t, err)
			assert.Contains(t, out, tt.want)
			mgr.AssertExpectations(t)
		})
	}
}

func TestUpCommandPropagatesDrift(t *testing.T) {
	mgr := new(MockLifecycleManager)
	mgr.On("EnsureUp", mock.Anything).
		Return(container.StatusUp, devcerrors.New(devcerrors.KindConfigDrift, "rebuild needed"))

	_, _, err := execute(t, newTestFactory(mgr), "up")
	assert.ErrorIs(t, err, devcerrors.ErrConfigDrift)
	assert.Equal(t, 1, devcerrors.ExitCode(err))
}

func TestStopCommand(t *testing.T) {
	tests := []struct {
		prev container.Status
		want string
	}{
		{prev: container.StatusUp, want: "Dev container stopped"},
		{prev: container.StatusStopped, want: "already stopped"},
		{prev: container.StatusDown, want: "No dev container to stop"},
	}

	for _, tt := range tests {
		t.Run(string(tt.prev), func(t *testing.T) {
			mgr := new(MockLifecycleManager)
			mgr.On("Stop", mock.Anything).Return(tt.prev, nil)

			out, _, err := execute(t, newTestFactory(mgr), "stop")
			require.NoError(t, err)
			assert.Contains(t, out, tt.want)
		})
	}
}

func TestDownCommand(t *testing.T) {
	mgr := new(MockLifecycleManager)
	mgr.On("Down", mock.Anything).Return(container.StatusStopped, nil).Once()

	out, _, err := execute(t, newTestFactory(mgr), "down")
	require.NoError(t, err)
	assert.Contains(t, out, "Dev container removed")

	mgr = new(MockLifecycleManager)
	mgr.On("Down", mock.Anything).Return(container.StatusDown, nil).Once()

	out, _, err = execute(t, newTestFactory(mgr), "down")
	require.NoError(t, err)
	assert.Contains(t, out, "No dev container to remove")
}

func TestExecCommand(t *testing.T) {
	t.Run("passes flags through to the command", func(t *testing.T) {
		mgr := new(MockLifecycleManager)
		mgr.On("Exec", mock.Anything, []string{"ls", "-la", "--color"}, mock.Anything).Return(0, nil)

		_, _, err := execute(t, newTestFactory(mgr), "exec", "ls", "-la", "--color")
		require.NoError(t, err)
		mgr.AssertExpectations(t)
	})

	t.Run("returns inner exit code", func(t *testing.T) {
		mgr := new(MockLifecycleManager)
		mgr.On("Exec", mock.Anything, []string{"false"}, mock.Anything).Return(3, nil)

		_, _, err := execute(t, newTestFactory(mgr), "exec", "false")
		require.Error(t, err)
		assert.Equal(t, 3, devcerrors.ExitCode(err))
	})

	t.Run("requires a command", func(t *testing.T) {
		mgr := new(MockLifecycleManager)

		_, _, err := execute(t, newTestFactory(mgr), "exec")
		assert.Error(t, err)
		mgr.AssertNotCalled(t, "Exec", mock.Anything, mock.Anything, mock.Anything)
	})
}

func TestRootRunsBash(t *testing.T) {
	mgr := new(MockLifecycleManager)
	mgr.On("Exec", mock.Anything, []string{"bash"}, mock.Anything).Return(0, nil)

	_, _, err := execute(t, newTestFactory(mgr))
	require.NoError(t, err)
	mgr.AssertExpectations(t)
}

func TestInspectCommand(t *testing.T) {
	mgr := new(MockLifecycleManager)
	mgr.On("Inspect", mock.Anything, mock.Anything).Return(container.ErrNoContainer)

	_, _, err := execute(t, newTestFactory(mgr), "inspect")
	assert.ErrorIs(t, err, container.ErrNoContainer)
	assert.Equal(t, 1, devcerrors.ExitCode(err))
}

func TestStatusCommand(t *testing.T) {
	mgr := new(MockLifecycleManager)
	mgr.On("Status", mock.Anything).Return(container.StatusStopped, "c1", nil)
	mgr.On("Check", mock.Anything).Return(&devcontainer.Report{ContainerDrift: true}, nil)

	out, errOut, err := execute(t, newTestFactory(mgr), "status")
	require.NoError(t, err)
	assert.Contains(t, out, "stopped")
	assert.Contains(t, out, "c1")
	assert.Contains(t, errOut, "different devcontainer.json")
}

func TestLazyCommandFactory(t *testing.T) {
	t.Run("help and version work without configuration", func(t *testing.T) {
		f := NewLazyCommandFactory(config.NewViper())
		f.initializer = func(context.Context) error {
			return errors.New("should not initialize")
		}

		out, _, err := execute(t, f, "--help")
		require.NoError(t, err)
		assert.Contains(t, out, "Lifecycle Commands:")

		out, _, err = execute(t, f, "version")
		require.NoError(t, err)
		assert.Contains(t, out, "devc "+Version)
	})

	t.Run("initialization error is returned", func(t *testing.T) {
		f := NewLazyCommandFactory(config.NewViper())
		f.initializer = func(context.Context) error {
			return devcerrors.New(devcerrors.KindConfigurationMissing, "environment variable DEVC_HOME is not set")
		}

		_, _, err := execute(t, f, "up")
		assert.ErrorIs(t, err, devcerrors.ErrConfigurationMissing)
	})

	t.Run("initialization happens only once", func(t *testing.T) {
		mgr := new(MockLifecycleManager)
		mgr.On("EnsureUp", mock.Anything).Return(container.StatusUp, nil)
		mgr.On("Stop", mock.Anything).Return(container.StatusUp, nil)

		count := 0
		f := NewLazyCommandFactory(config.NewViper())
		f.initializer = func(context.Context) error {
			count++
			f.Manager = mgr
			return nil
		}

		_, _, err := execute(t, f, "up")
		require.NoError(t, err)
		_, _, err = execute(t, f, "stop")
		require.NoError(t, err)
		assert.Equal(t, 1, count)
	})

	t.Run("missing environment", func(t *testing.T) {
		t.Setenv("DEVC_HOME", "")
		t.Setenv("PROJECT_DIR", "")

		_, _, err := execute(t, NewLazyCommandFactory(config.NewViper()), "status")
		assert.ErrorIs(t, err, devcerrors.ErrConfigurationMissing)
	})

	t.Run("verbose flag is bound", func(t *testing.T) {
		mgr := new(MockLifecycleManager)
		mgr.On("Stop", mock.Anything).Return(container.StatusDown, nil)
		f := newTestFactory(mgr)

		_, _, err := execute(t, f, "-v", "stop")
		require.NoError(t, err)
		assert.True(t, f.Viper.GetBool("verbose"))
	})
}

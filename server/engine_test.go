package server

import (
	"context"
	"errors"
	"os"
	"sync"
	"syscall"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"conference/logging"
)

// fakeServer 记录生命周期调用顺序
type fakeServer struct {
	mu    sync.Mutex
	steps []string

	loadErr  error
	setupErr error
	bgErr    error
	runErr   error
	stopErr  error

	// runUntilCancel 为 true 时 Run 阻塞到 ctx 取消
	runUntilCancel bool
	bgCancelled    chan struct{}
}

func (s *fakeServer) record(step string) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.steps = append(s.steps, step)
}

func (s *fakeServer) Steps() []string {
	s.mu.Lock()
	defer s.mu.Unlock()
	return append([]string(nil), s.steps...)
}

func (s *fakeServer) Name() string { return "fake" }

func (s *fakeServer) LoadConfig() error {
	s.record("LoadConfig")
	return s.loadErr
}

func (s *fakeServer) SetupDependencies(ctx context.Context) error {
	s.record("SetupDependencies")
	if _, ok := ctx.Deadline(); !ok {
		return errors.New("setup without deadline")
	}
	return s.setupErr
}

func (s *fakeServer) StartBackgroundTasks(ctx context.Context) error {
	s.record("StartBackgroundTasks")
	if s.bgCancelled != nil {
		go func() {
			<-ctx.Done()
			close(s.bgCancelled)
		}()
	}
	return s.bgErr
}

func (s *fakeServer) Run(ctx context.Context) error {
	s.record("Run")
	if s.runUntilCancel {
		<-ctx.Done()
	}
	return s.runErr
}

func (s *fakeServer) Shutdown(ctx context.Context) error {
	s.record("Shutdown")
	return s.stopErr
}

func quietEngine(s IServer, opts ...Option) *Engine {
	return NewEngine(s, append([]Option{WithLogger(logging.NewNoopLogger())}, opts...)...)
}

func TestEngine_RunReturns(t *testing.T) {
	s := &fakeServer{}
	var hooks []string
	e := quietEngine(s,
		WithBeforeStart(func(context.Context) error { hooks = append(hooks, "before"); return nil }),
		WithAfterStop(func(context.Context) error { hooks = append(hooks, "after"); return nil }),
	)
	assert.Equal(t, StatePending, e.State())

	require.NoError(t, e.Start())
	assert.Equal(t, []string{"LoadConfig", "SetupDependencies", "StartBackgroundTasks", "Run", "Shutdown"}, s.Steps())
	assert.Equal(t, []string{"before", "after"}, hooks)
	assert.Equal(t, StateStopped, e.State())
}

func TestEngine_Signal(t *testing.T) {
	sig := make(chan os.Signal, 1)
	s := &fakeServer{runUntilCancel: true, bgCancelled: make(chan struct{})}
	e := quietEngine(s, WithSignals(sig))

	done := make(chan error, 1)
	go func() { done <- e.Start() }()
	sig <- syscall.SIGTERM

	select {
	case err := <-done:
		require.NoError(t, err)
	case <-time.After(2 * time.Second):
		t.Fatal("engine did not stop on signal")
	}
	select {
	case <-s.bgCancelled:
	case <-time.After(time.Second):
		t.Fatal("background context not cancelled")
	}
	assert.Equal(t, "Shutdown", s.Steps()[len(s.Steps())-1])
	assert.Equal(t, StateStopped, e.State())
}

func TestEngine_Errors(t *testing.T) {
	boom := errors.New("boom")
	cases := []struct {
		name   string
		server *fakeServer
		steps  []string
	}{
		{"load", &fakeServer{loadErr: boom}, []string{"LoadConfig"}},
		{"setup", &fakeServer{setupErr: boom}, []string{"LoadConfig", "SetupDependencies"}},
		{"background", &fakeServer{bgErr: boom}, []string{"LoadConfig", "SetupDependencies", "StartBackgroundTasks"}},
		{"run", &fakeServer{runErr: boom}, []string{"LoadConfig", "SetupDependencies", "StartBackgroundTasks", "Run", "Shutdown"}},
		{"shutdown", &fakeServer{stopErr: boom}, []string{"LoadConfig", "SetupDependencies", "StartBackgroundTasks", "Run", "Shutdown"}},
	}
	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			e := quietEngine(tc.server)
			err := e.Start()
			require.Error(t, err)
			assert.ErrorIs(t, err, boom)
			assert.Equal(t, tc.steps, tc.server.Steps())
			assert.Equal(t, StateError, e.State())
		})
	}
}

func TestEngine_BeforeStartHookFails(t *testing.T) {
	s := &fakeServer{}
	e := quietEngine(s, WithBeforeStart(func(context.Context) error { return errors.New("hook") }))
	require.Error(t, e.Start())
	assert.Equal(t, []string{"LoadConfig", "SetupDependencies"}, s.Steps())
}

func TestEngine_Options(t *testing.T) {
	e := quietEngine(&fakeServer{}, WithVersion("1.2.3"), WithStartupTimeout(time.Second), WithShutdownTimeout(2*time.Second))
	assert.Equal(t, "fake", e.options.Name)
	assert.Equal(t, "1.2.3", e.options.Version)
	assert.Equal(t, time.Second, e.options.StartupTimeout)
	assert.Equal(t, 2*time.Second, e.options.ShutdownTimeout)
	assert.Equal(t, "Running", StateRunning.String())
	assert.Equal(t, "Unknown", State(99).String())
}

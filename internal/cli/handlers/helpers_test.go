package handlers

import (
	"bytes"
	"context"
	"path/filepath"
	"strings"
	"sync"
	"testing"
	"time"

	"github.com/xolan/haven/internal/cli"
	"github.com/xolan/haven/internal/config"
	"github.com/xolan/haven/internal/identity"
	"github.com/xolan/haven/internal/service"
	"github.com/xolan/haven/internal/storage"
)

var monday = time.Date(2024, time.March, 4, 9, 0, 0, 0, time.UTC)

// testClock ticks one second per call so created_date ordering is deterministic.
type testClock struct {
	mu sync.Mutex
	t  time.Time
}

func (c *testClock) Now() time.Time {
	c.mu.Lock()
	defer c.mu.Unlock()
	t := c.t
	c.t = c.t.Add(time.Second)
	return t
}

func (c *testClock) Set(t time.Time) {
	c.mu.Lock()
	defer c.mu.Unlock()
	c.t = t
}

type testEnv struct {
	deps     *cli.Deps
	stdout   *bytes.Buffer
	stderr   *bytes.Buffer
	exitCode *int
	store    storage.Store
	clock    *testClock
	dir      string
}

// newTestEnv wires deps around a JSONL store in a temp dir, acting as
// ada@example.com in UTC.
func newTestEnv(t *testing.T, opts ...func(*service.Options)) *testEnv {
	t.Helper()
	dir := t.TempDir()
	clock := &testClock{t: monday}

	store, err := storage.NewJSONLStore(filepath.Join(dir, "data"), storage.WithClock(clock.Now))
	if err != nil {
		t.Fatalf("NewJSONLStore() error = %v", err)
	}
	t.Cleanup(func() { _ = store.Close() })

	cfg := config.DefaultConfig()
	cfg.Timezone = "UTC"

	o := service.Options{
		Store:      store,
		Identity:   identity.Static{User: &identity.User{Email: "ada@example.com", DisplayName: "Ada"}},
		Config:     cfg,
		ConfigPath: filepath.Join(dir, config.ConfigFile),
		Now:        clock.Now,
	}
	for _, opt := range opts {
		opt(&o)
	}
	services := service.NewServicesWith(o)

	stdout := &bytes.Buffer{}
	stderr := &bytes.Buffer{}
	exitCode := 0

	deps := &cli.Deps{
		Stdout:   stdout,
		Stderr:   stderr,
		Stdin:    strings.NewReader(""),
		Exit:     func(code int) { exitCode = code },
		Services: services,
		Config:   o.Config,
		Now:      services.Now,
	}

	return &testEnv{
		deps:     deps,
		stdout:   stdout,
		stderr:   stderr,
		exitCode: &exitCode,
		store:    store,
		clock:    clock,
		dir:      dir,
	}
}

func setupTestDeps(t *testing.T) (*cli.Deps, *bytes.Buffer, *bytes.Buffer, *int) {
	t.Helper()
	e := newTestEnv(t)
	return e.deps, e.stdout, e.stderr, e.exitCode
}

// setupBrokenConfigDeps points the config file into a directory that does not exist
func setupBrokenConfigDeps(t *testing.T) (*cli.Deps, *bytes.Buffer, *bytes.Buffer, *int) {
	t.Helper()
	missing := filepath.Join(t.TempDir(), "missing", "dir", config.ConfigFile)
	e := newTestEnv(t, func(o *service.Options) { o.ConfigPath = missing })
	return e.deps, e.stdout, e.stderr, e.exitCode
}

// canceled returns a context whose store calls fail.
func canceled() context.Context {
	ctx, cancel := context.WithCancel(context.Background())
	cancel()
	return ctx
}

// reset clears captured output between steps of a test.
func (e *testEnv) reset() {
	e.stdout.Reset()
	e.stderr.Reset()
	*e.exitCode = 0
}

func (e *testEnv) requireSuccess(t *testing.T) {
	t.Helper()
	if *e.exitCode != 0 {
		t.Fatalf("exit code = %d, stderr = %q", *e.exitCode, e.stderr.String())
	}
}

func (e *testEnv) requireFailure(t *testing.T, stderrContains ...string) {
	t.Helper()
	if *e.exitCode != 1 {
		t.Fatalf("exit code = %d, want 1 (stdout = %q)", *e.exitCode, e.stdout.String())
	}
	for _, want := range stderrContains {
		if !strings.Contains(e.stderr.String(), want) {
			t.Errorf("stderr missing %q, got %q", want, e.stderr.String())
		}
	}
}

func (e *testEnv) requireStdout(t *testing.T, wants ...string) {
	t.Helper()
	for _, want := range wants {
		if !strings.Contains(e.stdout.String(), want) {
			t.Errorf("stdout missing %q, got:\n%s", want, e.stdout.String())
		}
	}
}

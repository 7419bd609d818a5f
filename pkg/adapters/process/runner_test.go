package process_test

import (
	"bufio"
	"context"
	"fmt"
	"io"
	"net"
	"os"
	"path/filepath"
	"runtime"
	"strconv"
	"strings"
	"sync"
	"testing"
	"time"

	"github.com/aretw0/qpilot/pkg/adapters/process"
	"github.com/aretw0/qpilot/pkg/adapters/socket"
	"github.com/aretw0/qpilot/pkg/ports"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func needsShell(t *testing.T) {
	t.Helper()
	if runtime.GOOS == "windows" {
		t.Skip("needs a POSIX shell")
	}
}

// serveFrames answers every length-prefixed frame on the first accepted
// connection with {"ok": true}, standing in for a probe.
func serveFrames(ln net.Listener) {
	go func() {
		conn, err := ln.Accept()
		if err != nil {
			return
		}
		defer conn.Close()
		r := bufio.NewReader(conn)
		for {
			header, err := r.ReadString('\n')
			if err != nil {
				return
			}
			n, err := strconv.Atoi(strings.TrimSpace(header))
			if err != nil {
				return
			}
			if _, err := io.ReadFull(r, make([]byte, n)); err != nil {
				return
			}
			reply := []byte(`{"ok":true}`)
			if _, err := fmt.Fprintf(conn, "%d\n%s", len(reply), reply); err != nil {
				return
			}
		}
	}()
}

type fakeLocker struct {
	mu   sync.Mutex
	key  string
	ttl  time.Duration
	held bool
	err  error
}

func (f *fakeLocker) Lock(ctx context.Context, key string, ttl time.Duration) (ports.UnlockFunc, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	if f.err != nil {
		return nil, f.err
	}
	f.key, f.ttl, f.held = key, ttl, true
	return func(ctx context.Context) error {
		f.mu.Lock()
		defer f.mu.Unlock()
		f.held = false
		return nil
	}, nil
}

func TestStart_SetsTheActivationEnvironment(t *testing.T) {
	needsShell(t)

	app, err := process.Start(context.Background(), "sh",
		process.WithArgs("-c", `echo "$QPILOT_ACTIVATION $QPILOT_PORT $EXTRA_FLAG"`),
		process.WithEnv("EXTRA_FLAG", "on"),
	)
	require.NoError(t, err)
	defer app.Close()

	require.NoError(t, app.Wait(context.Background()))
	assert.Equal(t, fmt.Sprintf("1 %d on\n", app.Port()), app.Stdout())
}

func TestStart_RunsInTheGivenDirectory(t *testing.T) {
	needsShell(t)

	dir := t.TempDir()
	require.NoError(t, os.WriteFile(filepath.Join(dir, "marker.txt"), []byte("x"), 0o644))

	app, err := process.Start(context.Background(), "sh",
		process.WithArgs("-c", "ls"),
		process.WithDir(dir),
	)
	require.NoError(t, err)
	defer app.Close()

	require.NoError(t, app.Wait(context.Background()))
	assert.Contains(t, app.Stdout(), "marker.txt")
}

func TestStart_UnknownCommand(t *testing.T) {
	_, err := process.Start(context.Background(), "/definitely/not/an/application")
	require.Error(t, err)
	assert.Contains(t, err.Error(), "launching")
}

func TestConnect_DialsTheProbe(t *testing.T) {
	needsShell(t)

	// The "probe" is a local listener on the pinned port; the application
	// itself just has to stay alive.
	ln, err := net.Listen("tcp", "127.0.0.1:0")
	require.NoError(t, err)
	t.Cleanup(func() { ln.Close() })
	serveFrames(ln)
	port := ln.Addr().(*net.TCPAddr).Port

	app, err := process.Start(context.Background(), "sleep",
		process.WithArgs("5"),
		process.WithPort(port),
	)
	require.NoError(t, err)
	defer app.Close()

	ch, err := app.Connect(context.Background())
	require.NoError(t, err)
	defer ch.Close()

	reply, err := ch.Send(context.Background(), "list_commands", nil)
	require.NoError(t, err)
	assert.Equal(t, true, reply["ok"])
	assert.Equal(t, app.Addr(), ch.Addr())
}

func TestConnect_ReportsAnEarlyExitInsteadOfTheDialTimeout(t *testing.T) {
	needsShell(t)

	app, err := process.Start(context.Background(), "sh",
		process.WithArgs("-c", "echo boom >&2; exit 3"),
	)
	require.NoError(t, err)
	defer app.Close()

	require.Error(t, app.Wait(context.Background()))

	_, err = app.Connect(context.Background(), socket.WithDialTimeout(300*time.Millisecond))
	require.Error(t, err)
	assert.Contains(t, err.Error(), "application exited")
	assert.Contains(t, err.Error(), "boom")
}

func TestClose_StopsTheApplication(t *testing.T) {
	needsShell(t)

	app, err := process.Start(context.Background(), "sleep", process.WithArgs("30"))
	require.NoError(t, err)

	start := time.Now()
	require.NoError(t, app.Close())
	assert.Less(t, time.Since(start), 10*time.Second)

	// The application was interrupted, so its exit status is an error.
	assert.Error(t, app.Wait(context.Background()))
	assert.NoError(t, app.Close())
}

func TestStart_LockLifecycle(t *testing.T) {
	needsShell(t)

	locker := &fakeLocker{}
	app, err := process.Start(context.Background(), "sleep",
		process.WithArgs("30"),
		process.WithLock(locker, "display:0", time.Minute),
	)
	require.NoError(t, err)

	locker.mu.Lock()
	assert.Equal(t, "display:0", locker.key)
	assert.Equal(t, time.Minute, locker.ttl)
	assert.True(t, locker.held)
	locker.mu.Unlock()

	require.NoError(t, app.Close())

	locker.mu.Lock()
	assert.False(t, locker.held, "Close must release the lock")
	locker.mu.Unlock()
}

func TestStart_FailedLockAbortsTheLaunch(t *testing.T) {
	locker := &fakeLocker{err: fmt.Errorf("lock service down")}

	_, err := process.Start(context.Background(), "sleep",
		process.WithArgs("1"),
		process.WithLock(locker, "display:0", time.Minute),
	)
	require.Error(t, err)
	assert.Contains(t, err.Error(), "lock service down")
}

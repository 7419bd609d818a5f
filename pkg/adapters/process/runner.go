// Package process launches the application under test with its probe
// activated.
//
// The probe library embedded in the application stays dormant until the
// activation environment is present: QPILOT_ACTIVATION=1 switches it on
// and QPILOT_PORT names the TCP port it must listen on. Start wires both
// in, captures the application's output, and hands out the address for
// Connect to dial.
package process

import (
	"bytes"
	"context"
	"fmt"
	"io"
	"log/slog"
	"net"
	"os"
	"os/exec"
	"strconv"
	"sync"
	"time"

	"github.com/aretw0/qpilot/pkg/adapters/socket"
	"github.com/aretw0/qpilot/pkg/ports"
)

// killGrace is how long Close waits between the polite interrupt and the
// hard kill.
const killGrace = 3 * time.Second

type config struct {
	args    []string
	env     map[string]string
	dir     string
	port    int
	stdout  io.Writer
	stderr  io.Writer
	logger  *slog.Logger
	locker  ports.Locker
	lockKey string
	lockTTL time.Duration
}

// Option configures Start.
type Option func(*config)

// WithArgs sets the command line arguments of the application.
func WithArgs(args ...string) Option {
	return func(c *config) {
		c.args = args
	}
}

// WithEnv adds one environment variable to the application, on top of
// the inherited environment.
func WithEnv(key, value string) Option {
	return func(c *config) {
		c.env[key] = value
	}
}

// WithDir sets the working directory of the application.
func WithDir(dir string) Option {
	return func(c *config) {
		c.dir = dir
	}
}

// WithPort pins the probe port instead of picking a free one.
func WithPort(port int) Option {
	return func(c *config) {
		c.port = port
	}
}

// WithStdout redirects the application's stdout. The Stdout accessor
// only sees captured output, so redirecting disables it.
func WithStdout(w io.Writer) Option {
	return func(c *config) {
		c.stdout = w
	}
}

// WithStderr redirects the application's stderr, like WithStdout.
func WithStderr(w io.Writer) Option {
	return func(c *config) {
		c.stderr = w
	}
}

// WithLogger sets a structured logger for lifecycle events.
func WithLogger(logger *slog.Logger) Option {
	return func(c *config) {
		c.logger = logger
	}
}

// WithLock makes Start acquire a lock on key before launching and Close
// release it once the application is down. Jobs contending for one
// exclusive resource, a display or a license server for instance, name
// it by key.
func WithLock(locker ports.Locker, key string, ttl time.Duration) Option {
	return func(c *config) {
		c.locker = locker
		c.lockKey = key
		c.lockTTL = ttl
	}
}

// App is one launched application under test.
type App struct {
	cmd    *exec.Cmd
	port   int
	logger *slog.Logger

	stdout *lockedBuffer
	stderr *lockedBuffer

	unlock ports.UnlockFunc

	done    chan struct{}
	exitErr error

	closeOnce sync.Once
	closeErr  error
}

// Start launches command with the probe activation environment set. The
// application keeps running after ctx ends; ctx only scopes the launch
// and the lock acquisition.
func Start(ctx context.Context, command string, opts ...Option) (*App, error) {
	cfg := config{
		env:    map[string]string{},
		logger: slog.New(slog.NewJSONHandler(io.Discard, nil)),
	}
	for _, opt := range opts {
		opt(&cfg)
	}

	port := cfg.port
	if port == 0 {
		var err error
		if port, err = freePort(); err != nil {
			return nil, fmt.Errorf("picking a probe port: %w", err)
		}
	}

	a := &App{
		port:   port,
		logger: cfg.logger.With("command", command, "port", port),
		done:   make(chan struct{}),
	}

	if cfg.locker != nil {
		unlock, err := cfg.locker.Lock(ctx, cfg.lockKey, cfg.lockTTL)
		if err != nil {
			return nil, err
		}
		a.unlock = unlock
	}

	cmd := exec.Command(command, cfg.args...)
	cmd.Dir = cfg.dir

	env := cmd.Environ()
	for k, v := range cfg.env {
		env = append(env, k+"="+v)
	}
	// The activation variables win over anything the caller set.
	env = append(env,
		"QPILOT_ACTIVATION=1",
		"QPILOT_PORT="+strconv.Itoa(port),
	)
	cmd.Env = env

	if cfg.stdout != nil {
		cmd.Stdout = cfg.stdout
	} else {
		a.stdout = &lockedBuffer{}
		cmd.Stdout = a.stdout
	}
	if cfg.stderr != nil {
		cmd.Stderr = cfg.stderr
	} else {
		a.stderr = &lockedBuffer{}
		cmd.Stderr = a.stderr
	}

	if err := cmd.Start(); err != nil {
		_ = a.releaseLock()
		return nil, fmt.Errorf("launching %s: %w", command, err)
	}
	a.cmd = cmd
	a.logger.Debug("application started", "pid", cmd.Process.Pid)

	go func() {
		a.exitErr = cmd.Wait()
		close(a.done)
	}()
	return a, nil
}

// Port returns the probe port the application was told to listen on.
func (a *App) Port() int { return a.port }

// Addr returns the probe address for Connect or socket.Dial.
func (a *App) Addr() string {
	return net.JoinHostPort("127.0.0.1", strconv.Itoa(a.port))
}

// Connect dials the application's probe, waiting for it to come up. When
// the application exits before the probe listens, the launch failure is
// reported instead of the dial timeout.
func (a *App) Connect(ctx context.Context, opts ...socket.Option) (*socket.Channel, error) {
	ch, err := socket.Dial(ctx, a.Addr(), opts...)
	if err != nil {
		select {
		case <-a.done:
			return nil, fmt.Errorf("application exited before its probe came up: %w; stderr: %s",
				a.exitErr, a.Stderr())
		default:
		}
		return nil, err
	}
	return ch, nil
}

// Wait blocks until the application exits and returns its exit error.
func (a *App) Wait(ctx context.Context) error {
	select {
	case <-ctx.Done():
		return ctx.Err()
	case <-a.done:
		return a.exitErr
	}
}

// Stdout returns the output captured so far. Empty when WithStdout
// redirected it.
func (a *App) Stdout() string {
	if a.stdout == nil {
		return ""
	}
	return a.stdout.String()
}

// Stderr returns the error output captured so far. Empty when WithStderr
// redirected it.
func (a *App) Stderr() string {
	if a.stderr == nil {
		return ""
	}
	return a.stderr.String()
}

// Close terminates the application and releases the lock, if one was
// taken. The application gets an interrupt first and a kill after the
// grace period. Calling Close again is a no-op.
func (a *App) Close() error {
	a.closeOnce.Do(func() {
		select {
		case <-a.done:
		default:
			if err := a.cmd.Process.Signal(os.Interrupt); err != nil {
				_ = a.cmd.Process.Kill()
			}
			select {
			case <-a.done:
			case <-time.After(killGrace):
				_ = a.cmd.Process.Kill()
				<-a.done
			}
		}
		a.logger.Debug("application stopped", "err", a.exitErr)
		a.closeErr = a.releaseLock()
	})
	return a.closeErr
}

func (a *App) releaseLock() error {
	if a.unlock == nil {
		return nil
	}
	ctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer cancel()
	return a.unlock(ctx)
}

// freePort reserves an ephemeral port and frees it again for the
// application to bind.
func freePort() (int, error) {
	ln, err := net.Listen("tcp", "127.0.0.1:0")
	if err != nil {
		return 0, err
	}
	defer ln.Close()
	return ln.Addr().(*net.TCPAddr).Port, nil
}

// lockedBuffer makes the output buffers safe to read while the
// application is still writing them.
type lockedBuffer struct {
	mu sync.Mutex
	b  bytes.Buffer
}

func (l *lockedBuffer) Write(p []byte) (int, error) {
	l.mu.Lock()
	defer l.mu.Unlock()
	return l.b.Write(p)
}

func (l *lockedBuffer) String() string {
	l.mu.Lock()
	defer l.mu.Unlock()
	return l.b.String()
}

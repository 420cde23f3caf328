// Package supervise starts and stops server subprocesses across CLI
// invocations. There is no daemon: a tracking file records the pid of
// every process steward started, and liveness is re-checked against the
// OS on every read. Stale records are cleared lazily.
package supervise

import (
	"errors"
	"fmt"
	"io"
	"os"
	"os/exec"
	"sort"
	"strings"
	"syscall"
	"time"

	"go.uber.org/zap"

	"github.com/mesh-intelligence/steward/internal/fsio"
	"github.com/mesh-intelligence/steward/internal/paths"
	"github.com/mesh-intelligence/steward/internal/server"
	"github.com/mesh-intelligence/steward/pkg/types"
)

const (
	// startGrace is how long a process must survive before start is
	// considered successful. Misconfigured commands usually die instantly.
	startGrace = 1 * time.Second
	// stopGrace is how long a process gets to exit after SIGTERM before
	// SIGKILL.
	stopGrace = 5 * time.Second
	// stopPoll is the interval at which the supervisor re-checks liveness
	// while waiting for a graceful exit.
	stopPoll = 100 * time.Millisecond
)

// Supervisor starts and stops server processes recorded in the tracking
// file.
type Supervisor struct {
	paths   paths.Paths
	servers *server.Manager
	log     *zap.Logger

	// stdins holds the write ends of started servers' stdin pipes so the
	// runtime cannot finalize and close them while this process lives.
	stdins []io.WriteCloser
}

// New builds a Supervisor over the given server store.
func New(p paths.Paths, servers *server.Manager, log *zap.Logger) *Supervisor {
	return &Supervisor{paths: p, servers: servers, log: log}
}

// loadTracking reads the tracking file; missing means nothing tracked.
func (s *Supervisor) loadTracking() (map[string]types.ProcessRecord, error) {
	tracked := map[string]types.ProcessRecord{}
	err := fsio.ReadJSON(s.paths.TrackingFile(), &tracked)
	if os.IsNotExist(err) {
		return tracked, nil
	}
	if err != nil {
		return nil, err
	}
	return tracked, nil
}

func (s *Supervisor) saveTracking(tracked map[string]types.ProcessRecord) error {
	return fsio.WriteJSON(s.paths.TrackingFile(), tracked)
}

// alive reports whether pid refers to a live process. Signal 0 probes
// without delivering; EPERM still means the process exists.
func alive(pid int) bool {
	if pid <= 0 {
		return false
	}
	err := syscall.Kill(pid, 0)
	return err == nil || errors.Is(err, syscall.EPERM)
}

// Running returns the pid for name if steward started it and it is still
// alive. A stale record is cleared as a side effect.
func (s *Supervisor) Running(name string) (int, bool, error) {
	tracked, err := s.loadTracking()
	if err != nil {
		return 0, false, err
	}
	rec, ok := tracked[name]
	if !ok {
		return 0, false, nil
	}
	if !alive(rec.PID) {
		delete(tracked, name)
		if err := s.saveTracking(tracked); err != nil {
			return 0, false, err
		}
		return 0, false, nil
	}
	return rec.PID, true, nil
}

// Start launches the named server's command, holding its stdin open the
// way a stdio client would. The start is reported as failed if the
// process exits within the grace window.
func (s *Supervisor) Start(name string) (types.Result, error) {
	f, err := s.servers.Load()
	if err != nil {
		return types.Result{}, err
	}
	entry, ok := f.Servers[name]
	if !ok {
		return types.Fail(fmt.Sprintf("server %q not found", name)), nil
	}
	if !entry.Enabled {
		return types.Fail(fmt.Sprintf("server %q is disabled; enable it first", name)), nil
	}
	if entry.Command == "" {
		return types.Fail(fmt.Sprintf("server %q has no command (url-only entries are not started)", name)), nil
	}
	if pid, running, err := s.Running(name); err != nil {
		return types.Result{}, err
	} else if running {
		return types.OK(fmt.Sprintf("server %q already running (pid %d)", name, pid)), nil
	}

	cmd := exec.Command(entry.Command, entry.Args...)
	// Stdio servers exit on stdin EOF, so hold the write end open. The
	// pipe stays open until this CLI process exits.
	stdin, err := cmd.StdinPipe()
	if err != nil {
		return types.Result{}, fmt.Errorf("opening stdin pipe: %w", err)
	}
	if err := cmd.Start(); err != nil {
		stdin.Close()
		return types.Fail(fmt.Sprintf("failed to start %q: %v", name, err)), nil
	}
	s.stdins = append(s.stdins, stdin)

	done := make(chan error, 1)
	go func() { done <- cmd.Wait() }()

	select {
	case waitErr := <-done:
		code := cmd.ProcessState.ExitCode()
		s.log.Warn("server exited during start grace",
			zap.String("server", name), zap.Int("exit_code", code), zap.Error(waitErr))
		return types.Fail(fmt.Sprintf("server %q exited immediately (exit code %d)", name, code)), nil
	case <-time.After(startGrace):
	}

	tracked, err := s.loadTracking()
	if err != nil {
		return types.Result{}, err
	}
	tracked[name] = types.ProcessRecord{PID: cmd.Process.Pid, StartedAt: time.Now().UTC()}
	if err := s.saveTracking(tracked); err != nil {
		return types.Result{}, err
	}
	s.log.Info("server started", zap.String("server", name), zap.Int("pid", cmd.Process.Pid))
	return types.OK(fmt.Sprintf("started server %q (pid %d)", name, cmd.Process.Pid)), nil
}

// Stop terminates the named server: SIGTERM, a grace window, then SIGKILL.
// Only processes steward started can be stopped; there is no pid to act
// on otherwise.
func (s *Supervisor) Stop(name string) (types.Result, error) {
	tracked, err := s.loadTracking()
	if err != nil {
		return types.Result{}, err
	}
	rec, ok := tracked[name]
	if !ok {
		return types.Fail(fmt.Sprintf("server %q was never started by steward", name)), nil
	}
	if !alive(rec.PID) {
		delete(tracked, name)
		if err := s.saveTracking(tracked); err != nil {
			return types.Result{}, err
		}
		return types.OK(fmt.Sprintf("server %q was not running (stale record cleared)", name)), nil
	}

	if err := syscall.Kill(rec.PID, syscall.SIGTERM); err != nil && !errors.Is(err, syscall.ESRCH) {
		return types.Result{}, fmt.Errorf("signaling pid %d: %w", rec.PID, err)
	}
	deadline := time.Now().Add(stopGrace)
	forced := false
	for alive(rec.PID) {
		if time.Now().After(deadline) {
			_ = syscall.Kill(rec.PID, syscall.SIGKILL)
			forced = true
			break
		}
		time.Sleep(stopPoll)
	}

	delete(tracked, name)
	if err := s.saveTracking(tracked); err != nil {
		return types.Result{}, err
	}
	s.log.Info("server stopped", zap.String("server", name),
		zap.Int("pid", rec.PID), zap.Bool("forced", forced))
	if forced {
		return types.OK(fmt.Sprintf("stopped server %q (pid %d, killed after %s)", name, rec.PID, stopGrace)), nil
	}
	return types.OK(fmt.Sprintf("stopped server %q (pid %d)", name, rec.PID)), nil
}

// StopAll stops every tracked server and reports per-server outcomes.
func (s *Supervisor) StopAll() ([]string, error) {
	tracked, err := s.loadTracking()
	if err != nil {
		return nil, err
	}
	names := make([]string, 0, len(tracked))
	for name := range tracked {
		names = append(names, name)
	}
	sort.Strings(names)

	var lines []string
	for _, name := range names {
		res, err := s.Stop(name)
		if err != nil {
			return nil, err
		}
		lines = append(lines, res.Message)
	}
	return lines, nil
}

// Reload stops everything tracked and starts every enabled entry marked
// auto_start. Individual start failures are collected, not fatal.
func (s *Supervisor) Reload() (types.Result, error) {
	stopped, err := s.StopAll()
	if err != nil {
		return types.Result{}, err
	}

	f, err := s.servers.Load()
	if err != nil {
		return types.Result{}, err
	}
	var started, failed []string
	for _, name := range f.Names() {
		entry := f.Servers[name]
		if !entry.Enabled || !entry.AutoStart || entry.Command == "" {
			continue
		}
		res, err := s.Start(name)
		if err != nil {
			return types.Result{}, err
		}
		if res.Success {
			started = append(started, name)
		} else {
			failed = append(failed, fmt.Sprintf("%s: %s", name, res.Message))
		}
	}

	msg := fmt.Sprintf("reloaded: %d stopped, %d started", len(stopped), len(started))
	if len(failed) > 0 {
		return types.Fail(msg + "; failures: " + strings.Join(failed, "; ")), nil
	}
	return types.OK(msg), nil
}

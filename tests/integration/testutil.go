// Package integration provides CLI integration tests for steward.
package integration

import (
	"bytes"
	"os"
	"os/exec"
	"path/filepath"
	"testing"
)

var (
	// stewardBin is the path to the built steward binary.
	stewardBin string
	// buildErr captures any build error.
	buildErr error
)

// BuildError wraps a build error with output.
type BuildError struct {
	Err    error
	Output string
}

func (e *BuildError) Error() string {
	return e.Err.Error() + ": " + e.Output
}

// FindProjectRoot finds the project root by walking up and looking for go.mod.
func FindProjectRoot() (string, error) {
	dir, err := os.Getwd()
	if err != nil {
		return "", err
	}
	for {
		if _, err := os.Stat(filepath.Join(dir, "go.mod")); err == nil {
			return dir, nil
		}
		parent := filepath.Dir(dir)
		if parent == dir {
			return "", os.ErrNotExist
		}
		dir = parent
	}
}

// TestEnv provides an isolated test environment with its own config, host,
// and state directories.
type TestEnv struct {
	t         *testing.T
	TempDir   string
	ConfigDir string
	HostDir   string
	BaseDir   string
}

// NewTestEnv creates a new isolated test environment.
func NewTestEnv(t *testing.T) *TestEnv {
	t.Helper()

	if buildErr != nil {
		t.Fatalf("failed to build steward: %v", buildErr)
	}
	if stewardBin == "" {
		t.Fatal("steward binary not built (stewardBin is empty)")
	}

	tempDir := t.TempDir()
	env := &TestEnv{
		t:         t,
		TempDir:   tempDir,
		ConfigDir: filepath.Join(tempDir, "config"),
		HostDir:   filepath.Join(tempDir, "agent"),
		BaseDir:   filepath.Join(tempDir, "agent", "steward"),
	}
	if err := os.MkdirAll(env.HostDir, 0o755); err != nil {
		t.Fatalf("failed to create host dir: %v", err)
	}
	return env
}

// CmdResult holds the result of a steward command execution.
type CmdResult struct {
	Stdout   string
	Stderr   string
	ExitCode int
}

// RunSteward executes the steward CLI with the given arguments.
func (e *TestEnv) RunSteward(args ...string) CmdResult {
	e.t.Helper()

	allArgs := append([]string{
		"--config-dir", e.ConfigDir,
		"--host-dir", e.HostDir,
		"--base-dir", e.BaseDir,
	}, args...)
	cmd := exec.Command(stewardBin, allArgs...)

	var stdout, stderr bytes.Buffer
	cmd.Stdout = &stdout
	cmd.Stderr = &stderr

	err := cmd.Run()
	exitCode := 0
	if err != nil {
		if exitErr, ok := err.(*exec.ExitError); ok {
			exitCode = exitErr.ExitCode()
		} else {
			e.t.Fatalf("failed to run steward: %v", err)
		}
	}
	return CmdResult{
		Stdout:   stdout.String(),
		Stderr:   stderr.String(),
		ExitCode: exitCode,
	}
}

// MustRunSteward executes the steward CLI and fails the test on non-zero
// exit.
func (e *TestEnv) MustRunSteward(args ...string) CmdResult {
	e.t.Helper()
	result := e.RunSteward(args...)
	if result.ExitCode != 0 {
		e.t.Fatalf("steward %v failed with exit code %d:\nstdout: %s\nstderr: %s",
			args, result.ExitCode, result.Stdout, result.Stderr)
	}
	return result
}

// WriteHookScript creates a hook script under the host hooks dir and
// returns its path.
func (e *TestEnv) WriteHookScript(name, content string) string {
	e.t.Helper()
	dir := filepath.Join(e.HostDir, "hooks")
	if err := os.MkdirAll(dir, 0o755); err != nil {
		e.t.Fatalf("failed to create hooks dir: %v", err)
	}
	path := filepath.Join(dir, name)
	if err := os.WriteFile(path, []byte(content), 0o755); err != nil {
		e.t.Fatalf("failed to write hook script: %v", err)
	}
	return path
}

// WriteCapability creates a capability directory with a descriptor file.
func (e *TestEnv) WriteCapability(id string) {
	e.t.Helper()
	dir := filepath.Join(e.HostDir, "capabilities", id)
	if err := os.MkdirAll(dir, 0o755); err != nil {
		e.t.Fatalf("failed to create capability dir: %v", err)
	}
	if err := os.WriteFile(filepath.Join(dir, "CAPABILITY.md"), []byte("# "+id), 0o644); err != nil {
		e.t.Fatalf("failed to write capability descriptor: %v", err)
	}
}

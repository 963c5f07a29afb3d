//go:build e2e

// cli_harness_test.go provides a test harness for E2E testing of the logo CLI.
//
// The CLIHarness builds the logo binary once per test and runs `logo serve`
// and `logo client` as real processes talking over loopback TCP.
package integration

import (
	"bufio"
	"bytes"
	"context"
	"io"
	"os"
	"os/exec"
	"path/filepath"
	"regexp"
	"strings"
	"testing"
	"time"

	"github.com/stretchr/testify/require"
)

// CLIHarness manages a logo CLI binary for E2E testing.
type CLIHarness struct {
	// BinaryPath is the path to the built logo binary.
	BinaryPath string

	// WorkDir is the working directory commands run in. It has no logo.yaml
	// unless a test writes one.
	WorkDir string

	t *testing.T
}

// CLIResult contains the output from a CLI command execution.
type CLIResult struct {
	Stdout   string
	Stderr   string
	ExitCode int
	Err      error
}

// Success returns true if the command completed with exit code 0.
func (r *CLIResult) Success() bool {
	return r.ExitCode == 0 && r.Err == nil
}

// ServerProcess is a running `logo serve`.
type ServerProcess struct {
	Addr   string
	cmd    *exec.Cmd
	stderr *bytes.Buffer
}

var listenAddrPattern = regexp.MustCompile(`listening \| addr=(\S+) transport=tcp`)

// NewCLIHarness builds the logo binary and creates a test workspace.
func NewCLIHarness(t *testing.T) *CLIHarness {
	t.Helper()

	projectRoot := findProjectRootForHarness(t)
	require.NotEmpty(t, projectRoot, "could not find project root (directory containing go.mod)")

	tmpDir := t.TempDir()
	binaryPath := filepath.Join(tmpDir, "logo")

	cmd := exec.Command("go", "build", "-o", binaryPath, "./cmd/logo")
	cmd.Dir = projectRoot
	output, err := cmd.CombinedOutput()
	require.NoError(t, err, "failed to build logo binary: %s", output)

	workDir := filepath.Join(tmpDir, "workspace")
	require.NoError(t, os.MkdirAll(workDir, 0o755))

	return &CLIHarness{
		BinaryPath: binaryPath,
		WorkDir:    workDir,
		t:          t,
	}
}

// WriteConfig writes logo.yaml into the workspace.
func (h *CLIHarness) WriteConfig(content string) {
	h.t.Helper()
	require.NoError(h.t, os.WriteFile(filepath.Join(h.WorkDir, "logo.yaml"), []byte(content), 0o644))
}

// Run executes a logo command with stdin and a 30 second timeout.
func (h *CLIHarness) Run(stdin string, args ...string) *CLIResult {
	h.t.Helper()

	ctx, cancel := context.WithTimeout(context.Background(), 30*time.Second)
	defer cancel()

	cmd := exec.CommandContext(ctx, h.BinaryPath, args...)
	cmd.Dir = h.WorkDir
	cmd.Stdin = strings.NewReader(stdin)

	var stdout, stderr bytes.Buffer
	cmd.Stdout = &stdout
	cmd.Stderr = &stderr

	err := cmd.Run()

	result := &CLIResult{
		Stdout: stdout.String(),
		Stderr: stderr.String(),
	}
	if err != nil {
		result.Err = err
		if exitErr, ok := err.(*exec.ExitError); ok {
			result.ExitCode = exitErr.ExitCode()
		} else {
			result.ExitCode = -1
		}
	}
	return result
}

// StartServer runs `logo serve` on a free loopback port and waits until it
// reports its listen address. The server is interrupted when the test ends.
func (h *CLIHarness) StartServer(args ...string) *ServerProcess {
	h.t.Helper()

	args = append([]string{"serve", "--host", "127.0.0.1", "--port", "0"}, args...)
	cmd := exec.Command(h.BinaryPath, args...)
	cmd.Dir = h.WorkDir

	pipe, err := cmd.StderrPipe()
	require.NoError(h.t, err)
	require.NoError(h.t, cmd.Start())

	proc := &ServerProcess{cmd: cmd, stderr: &bytes.Buffer{}}
	addrCh := make(chan string, 1)
	go func() {
		scanner := bufio.NewScanner(pipe)
		for scanner.Scan() {
			line := scanner.Text()
			proc.stderr.WriteString(line + "\n")
			if m := listenAddrPattern.FindStringSubmatch(line); m != nil {
				addrCh <- m[1]
				break
			}
		}
		io.Copy(io.Discard, pipe)
	}()

	select {
	case proc.Addr = <-addrCh:
	case <-time.After(10 * time.Second):
		cmd.Process.Kill()
		h.t.Fatalf("server did not report a listen address")
	}

	h.t.Cleanup(func() {
		cmd.Process.Signal(os.Interrupt)
		done := make(chan error, 1)
		go func() { done <- cmd.Wait() }()
		select {
		case <-done:
		case <-time.After(5 * time.Second):
			cmd.Process.Kill()
			h.t.Errorf("server did not exit after interrupt")
		}
	})
	return proc
}

// findProjectRootForHarness walks up from the current directory to the
// directory containing go.mod.
func findProjectRootForHarness(t *testing.T) string {
	t.Helper()

	dir, err := os.Getwd()
	require.NoError(t, err, "failed to get working directory")

	for {
		if _, err := os.Stat(filepath.Join(dir, "go.mod")); err == nil {
			return dir
		}
		parent := filepath.Dir(dir)
		if parent == dir {
			return ""
		}
		dir = parent
	}
}

// RequireSuccess fails the test if the command result indicates failure.
func (h *CLIHarness) RequireSuccess(result *CLIResult, msg string) {
	h.t.Helper()
	if !result.Success() {
		h.t.Fatalf("%s: exit=%d err=%v\nstdout: %s\nstderr: %s",
			msg, result.ExitCode, result.Err, result.Stdout, result.Stderr)
	}
}

// RequireFailure fails the test if the command result indicates success.
func (h *CLIHarness) RequireFailure(result *CLIResult, msg string) {
	h.t.Helper()
	if result.Success() {
		h.t.Fatalf("%s: command succeeded unexpectedly\nstdout: %s\nstderr: %s",
			msg, result.Stdout, result.Stderr)
	}
}

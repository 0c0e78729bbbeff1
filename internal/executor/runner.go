package executor

import (
	"fmt"
	"io"
	"log/slog"
	"os"
	"os/exec"
)

// DefaultShell is used when no shell is configured
const DefaultShell = "sh"

// Runner starts shell commands without waiting for them.
type Runner struct {
	shell  string
	logger *slog.Logger

	// Stdout and Stderr receive the output of launched commands. They
	// default to the daemon's own streams.
	Stdout io.Writer
	Stderr io.Writer
	// Env is the environment of launched commands; nil inherits the
	// daemon's environment.
	Env []string
}

// NewRunner creates a runner for the given shell
func NewRunner(shell string, logger *slog.Logger) *Runner {
	if shell == "" {
		shell = DefaultShell
	}
	if logger == nil {
		logger = slog.Default()
	}
	return &Runner{
		shell:  shell,
		logger: logger,
		Stdout: os.Stdout,
		Stderr: os.Stderr,
	}
}

// Shell returns the shell commands are run with
func (r *Runner) Shell() string {
	return r.shell
}

// Check verifies that the shell can be found
func (r *Runner) Check() error {
	if _, err := exec.LookPath(r.shell); err != nil {
		return fmt.Errorf("shell %q is not usable: %w", r.shell, err)
	}
	return nil
}

// Run starts command and returns without waiting for it to finish
func (r *Runner) Run(command string) error {
	cmd := exec.Command(r.shell, "-c", command)
	cmd.Stdout = r.Stdout
	cmd.Stderr = r.Stderr
	cmd.Env = r.Env

	if err := cmd.Start(); err != nil {
		return fmt.Errorf("failed to start command: %w", err)
	}

	go func() {
		if err := cmd.Wait(); err != nil {
			r.logger.Debug("command exited", "command", command, "error", err)
		}
	}()
	return nil
}

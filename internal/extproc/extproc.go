package extproc

import (
	"bufio"
	"bytes"
	"context"
	"errors"
	"fmt"
	"os"
	"os/exec"
	"path/filepath"
	"strings"
	"syscall"
	"time"

	"golang.org/x/sys/unix"

	"podboost/internal/services"
)

const (
	defaultGrace = 5 * time.Second
	pollInterval = time.Second

	maxScanTokenSize = 4 * 1024 * 1024
	stderrTailBytes  = 1024
)

// Command describes an external program invocation.
type Command struct {
	Binary string
	Args   []string
	Dir    string
	// Env entries are appended to the current process environment.
	Env []string
}

// Result captures the outcome of a completed or terminated run.
// ExitCode is -1 when the process was terminated before exiting on its own.
type Result struct {
	Stdout   string
	Stderr   string
	ExitCode int
	Duration time.Duration
	TimedOut bool
}

// Option adjusts run behavior.
type Option func(*runOptions)

type runOptions struct {
	timeout  time.Duration
	grace    time.Duration
	onStdout func(string)
}

// WithTimeout bounds the run. Zero or negative means no deadline beyond the
// caller's context.
func WithTimeout(d time.Duration) Option {
	return func(o *runOptions) {
		o.timeout = d
	}
}

// WithGrace sets how long a terminated process may linger between SIGTERM
// and SIGKILL. The default is five seconds.
func WithGrace(d time.Duration) Option {
	return func(o *runOptions) {
		if d > 0 {
			o.grace = d
		}
	}
}

// WithStdoutLine streams stdout line by line to fn while still capturing it
// in the result. Intended for progress output; lines longer than the scan
// limit abort the stream.
func WithStdoutLine(fn func(string)) Option {
	return func(o *runOptions) {
		o.onStdout = fn
	}
}

// Run executes the command and waits for it to finish, the context to end,
// or the timeout to expire, whichever comes first.
func Run(ctx context.Context, command Command, opts ...Option) (Result, error) {
	options := runOptions{grace: defaultGrace}
	for _, opt := range opts {
		opt(&options)
	}

	result := Result{ExitCode: -1}
	binary := strings.TrimSpace(command.Binary)
	if binary == "" {
		return result, services.Wrap(services.ErrValidation, "extproc", "run", "Command binary required", nil)
	}
	operation := "run " + filepath.Base(binary)

	runCtx := ctx
	if options.timeout > 0 {
		var cancel context.CancelFunc
		runCtx, cancel = context.WithTimeout(ctx, options.timeout)
		defer cancel()
	}

	cmd := exec.Command(binary, command.Args...) //nolint:gosec
	cmd.Dir = command.Dir
	if len(command.Env) > 0 {
		cmd.Env = append(os.Environ(), command.Env...)
	}
	// Own process group so termination reaches children too.
	cmd.SysProcAttr = &syscall.SysProcAttr{Setpgid: true}
	cmd.WaitDelay = options.grace + 2*time.Second

	var stdoutBuf, stderrBuf bytes.Buffer
	cmd.Stderr = &stderrBuf

	scanDone := make(chan struct{})
	if options.onStdout == nil {
		cmd.Stdout = &stdoutBuf
		close(scanDone)
	} else {
		pipe, err := cmd.StdoutPipe()
		if err != nil {
			return result, services.Wrap(services.ErrExternalTool, "extproc", operation, "Failed to open stdout pipe", err)
		}
		go func() {
			defer close(scanDone)
			scanner := bufio.NewScanner(pipe)
			scanner.Buffer(make([]byte, 64*1024), maxScanTokenSize)
			for scanner.Scan() {
				line := scanner.Text()
				stdoutBuf.WriteString(line)
				stdoutBuf.WriteByte('\n')
				options.onStdout(line)
			}
		}()
	}

	started := time.Now()
	if err := cmd.Start(); err != nil {
		result.Duration = time.Since(started)
		return result, services.Wrap(services.ErrExternalTool, "extproc", operation, fmt.Sprintf("Failed to start %s", binary), err)
	}

	waitCh := make(chan error, 1)
	go func() {
		<-scanDone
		waitCh <- cmd.Wait()
	}()

	var waitErr error
	var interrupted bool
	select {
	case waitErr = <-waitCh:
	case <-runCtx.Done():
		interrupted = true
		waitErr = terminate(cmd, waitCh, options.grace)
	}

	result.Duration = time.Since(started)
	result.Stdout = stdoutBuf.String()
	result.Stderr = stderrBuf.String()

	if interrupted {
		cause := context.Cause(runCtx)
		if errors.Is(cause, context.DeadlineExceeded) {
			result.TimedOut = true
			timeout := options.timeout
			if timeout <= 0 {
				timeout = result.Duration.Truncate(time.Millisecond)
			}
			return result, services.Wrap(services.ErrTimeout, "extproc", operation,
				fmt.Sprintf("%s did not finish within %s", filepath.Base(binary), timeout), cause)
		}
		return result, cause
	}

	if waitErr != nil {
		var exitErr *exec.ExitError
		if errors.As(waitErr, &exitErr) {
			result.ExitCode = exitErr.ExitCode()
			return result, services.Wrap(services.ErrExternalTool, "extproc", operation,
				fmt.Sprintf("%s exited with status %d%s", filepath.Base(binary), result.ExitCode, stderrTail(result.Stderr)), waitErr)
		}
		return result, services.Wrap(services.ErrExternalTool, "extproc", operation,
			fmt.Sprintf("%s failed", filepath.Base(binary)), waitErr)
	}

	result.ExitCode = 0
	return result, nil
}

// terminate escalates from SIGTERM to SIGKILL, polling for exit once per
// second within the grace window. Always drains waitCh so the process is
// reaped.
func terminate(cmd *exec.Cmd, waitCh <-chan error, grace time.Duration) error {
	if cmd.Process == nil {
		return <-waitCh
	}
	pgid := cmd.Process.Pid
	_ = unix.Kill(-pgid, unix.SIGTERM)

	deadline := time.Now().Add(grace)
	for {
		remaining := time.Until(deadline)
		if remaining <= 0 {
			break
		}
		wait := pollInterval
		if wait > remaining {
			wait = remaining
		}
		select {
		case err := <-waitCh:
			return err
		case <-time.After(wait):
		}
	}

	_ = unix.Kill(-pgid, unix.SIGKILL)
	return <-waitCh
}

func stderrTail(stderr string) string {
	stderr = strings.TrimSpace(stderr)
	if stderr == "" {
		return ""
	}
	if len(stderr) > stderrTailBytes {
		stderr = stderr[len(stderr)-stderrTailBytes:]
	}
	if idx := strings.LastIndex(stderr, "\n"); idx >= 0 {
		stderr = strings.TrimSpace(stderr[idx+1:])
	}
	if stderr == "" {
		return ""
	}
	return ": " + stderr
}

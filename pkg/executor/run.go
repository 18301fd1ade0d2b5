package executor

import (
	"bytes"
	"context"
	"errors"
	"io"
	"os/exec"
	"runtime"
	"sync"
	"time"
)

// CommandResult is the raw outcome of one subprocess run.
type CommandResult struct {
	// ExitCode is the process exit status, -1 when the process was
	// killed or never completed.
	ExitCode int

	// Combined is the interleaved stdout+stderr stream.
	Combined string

	// Stdout is the stdout stream alone, retained for out-file capture.
	Stdout string

	Duration time.Duration

	// TimedOut is set when the timeout killed the process.
	TimedOut bool
}

// lockedBuffer serializes writes from the stdout and stderr pipes so the
// combined stream preserves arrival order.
type lockedBuffer struct {
	mu  sync.Mutex
	buf bytes.Buffer
}

func (b *lockedBuffer) Write(p []byte) (int, error) {
	b.mu.Lock()
	defer b.mu.Unlock()
	return b.buf.Write(p)
}

func (b *lockedBuffer) String() string {
	b.mu.Lock()
	defer b.mu.Unlock()
	return b.buf.String()
}

// runShell executes command through the platform shell in workdir.
// timeoutSecs of zero disables the deadline. A non-zero exit status is a
// normal result, not an error; the returned error means the command could
// not be run at all.
func runShell(command, workdir string, timeoutSecs int) (CommandResult, error) {
	ctx := context.Background()
	cancel := func() {}
	if timeoutSecs > 0 {
		ctx, cancel = context.WithTimeout(ctx, time.Duration(timeoutSecs)*time.Second)
	}
	defer cancel()

	shell, flag := "sh", "-c"
	if runtime.GOOS == "windows" {
		shell, flag = "cmd", "/C"
	}

	cmd := exec.CommandContext(ctx, shell, flag, command)
	cmd.Dir = workdir
	// Bounds the stream drain when the command leaves children holding
	// the pipes, so a backgrounded process cannot stall the run.
	cmd.WaitDelay = 2 * time.Second

	combined := &lockedBuffer{}
	var stdout bytes.Buffer
	cmd.Stdout = io.MultiWriter(&stdout, combined)
	cmd.Stderr = combined

	start := time.Now()
	err := cmd.Run()
	res := CommandResult{
		Combined: combined.String(),
		Stdout:   stdout.String(),
		Duration: time.Since(start),
	}

	if ctx.Err() == context.DeadlineExceeded {
		res.TimedOut = true
		res.ExitCode = -1
		return res, nil
	}

	if err != nil {
		var exitErr *exec.ExitError
		switch {
		case errors.As(err, &exitErr):
			res.ExitCode = exitErr.ExitCode()
			return res, nil
		case errors.Is(err, exec.ErrWaitDelay):
			res.ExitCode = cmd.ProcessState.ExitCode()
			return res, nil
		}
		res.ExitCode = -1
		return res, err
	}

	res.ExitCode = 0
	return res, nil
}

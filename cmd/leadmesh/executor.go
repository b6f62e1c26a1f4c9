package main

import (
	"bytes"
	"context"
	"fmt"
	"os"
	"os/exec"
	"path/filepath"
	"time"

	"github.com/hupe1980/leadmesh/tool"
)

// localExecutor runs model-written code as a python3 subprocess with a hard
// timeout. The process inherits nothing beyond a scratch working directory;
// callers wanting isolation should substitute a sandboxed executor.
type localExecutor struct {
	timeout time.Duration
}

func newLocalExecutor() tool.CodeExecutor {
	return &localExecutor{timeout: 60 * time.Second}
}

// Execute implements tool.CodeExecutor.
func (e *localExecutor) Execute(ctx context.Context, code string) (string, error) {
	dir, err := os.MkdirTemp("", "leadmesh-exec-*")
	if err != nil {
		return "", fmt.Errorf("failed to create scratch dir: %w", err)
	}
	defer os.RemoveAll(dir)

	script := filepath.Join(dir, "main.py")
	if err := os.WriteFile(script, []byte(code), 0o600); err != nil {
		return "", fmt.Errorf("failed to write script: %w", err)
	}

	ctx, cancel := context.WithTimeout(ctx, e.timeout)
	defer cancel()

	cmd := exec.CommandContext(ctx, "python3", script)
	cmd.Dir = dir

	var output bytes.Buffer
	cmd.Stdout = &output
	cmd.Stderr = &output

	if err := cmd.Run(); err != nil {
		if ctx.Err() == context.DeadlineExceeded {
			return output.String(), fmt.Errorf("execution timed out after %s", e.timeout)
		}
		return output.String(), fmt.Errorf("execution failed: %w", err)
	}

	return output.String(), nil
}

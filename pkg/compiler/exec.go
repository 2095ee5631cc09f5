package compiler

import (
	"bytes"
	"context"
	"fmt"
	"os/exec"
	"strings"
)

// Exec runs an external command once per unit. The unit's source is written
// to the command's stdin and its stdout becomes the artifact.
//
// The command line is run through "sh -c" after placeholder expansion:
//
//	{unit}       fully qualified unit name
//	{namespace}  dotted namespace ("" for the root namespace)
//	{path}       source file path, single-quoted
type Exec struct {
	Command string
	Dir     string   // working directory, "" for the current one
	Env     []string // extra environment entries appended to os.Environ
}

// NewExec returns an Exec compiler for command.
func NewExec(command string) *Exec { return &Exec{Command: command} }

// ExitError reports a command that ran and exited non-zero.
type ExitError struct {
	Command  string
	ExitCode int
	Stderr   []byte
}

func (e *ExitError) Error() string {
	msg := strings.TrimSpace(string(e.Stderr))
	if msg == "" {
		return fmt.Sprintf("%q exited with status %d", e.Command, e.ExitCode)
	}
	return fmt.Sprintf("%q exited with status %d: %s", e.Command, e.ExitCode, msg)
}

// Compile runs the command for in.
func (e *Exec) Compile(ctx context.Context, in Input) ([]byte, error) {
	if strings.TrimSpace(e.Command) == "" {
		return nil, fmt.Errorf("compiler command is empty")
	}
	line := e.Expand(in)

	cmd := exec.CommandContext(ctx, "sh", "-c", line)
	cmd.Dir = e.Dir
	if len(e.Env) > 0 {
		cmd.Env = append(cmd.Environ(), e.Env...)
	}
	cmd.Stdin = bytes.NewReader(in.Source)

	var stdout, stderr bytes.Buffer
	cmd.Stdout = &stdout
	cmd.Stderr = &stderr

	if err := cmd.Run(); err != nil {
		if ctx.Err() != nil {
			return nil, ctx.Err()
		}
		if exitErr, ok := err.(*exec.ExitError); ok {
			return nil, &ExitError{Command: line, ExitCode: exitErr.ExitCode(), Stderr: stderr.Bytes()}
		}
		return nil, fmt.Errorf("run %q: %w", line, err)
	}
	return stdout.Bytes(), nil
}

// Expand substitutes the placeholders in the command template.
func (e *Exec) Expand(in Input) string {
	r := strings.NewReplacer(
		"{unit}", in.Name.String(),
		"{namespace}", in.Namespace,
		"{path}", shellQuote(in.Path),
	)
	return r.Replace(e.Command)
}

// ID includes the command so that changing it invalidates cached artifacts.
func (e *Exec) ID() string { return "exec:" + e.Command }

func shellQuote(s string) string {
	return "'" + strings.ReplaceAll(s, "'", `'\''`) + "'"
}

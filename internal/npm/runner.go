package npm

import (
	"context"
	"fmt"
	"os/exec"
	"regexp"
	"strings"

	"github.com/shinji-kodama/npm-otp-publish/internal/model"
)

// Command describes a single subprocess invocation.
type Command struct {
	// Name is the executable to run (normally "npm").
	Name string

	// Args are the command-line arguments, not including Name.
	Args []string

	// Dir is the working directory. Empty means the current directory.
	Dir string

	// Env replaces the process environment when non-nil. A nil Env makes
	// the child inherit the parent's environment.
	Env []string

	// Secrets are values that must never appear in logs or error
	// messages. String replaces each occurrence with "***".
	Secrets []string
}

// String renders the command for log and error messages with secrets masked.
func (c Command) String() string {
	s := strings.TrimSpace(c.Name + " " + strings.Join(c.Args, " "))
	for _, secret := range c.Secrets {
		if secret != "" {
			s = strings.ReplaceAll(s, secret, "***")
		}
	}
	return s
}

// Runner executes a Command and returns its standard output.
// Implementations must include stderr in the returned error so that
// callers can recognize npm error codes.
type Runner interface {
	Run(ctx context.Context, cmd Command) (string, error)
}

// ExecRunner runs commands with os/exec.
type ExecRunner struct{}

// Run executes cmd and returns its stdout. On a non-zero exit it returns a
// model.CLIError with ExitRegistryError whose message contains stderr.
func (ExecRunner) Run(ctx context.Context, cmd Command) (string, error) {
	// #nosec G204: the executable and arguments are assembled internally
	c := exec.CommandContext(ctx, cmd.Name, cmd.Args...)
	c.Dir = cmd.Dir
	if cmd.Env != nil {
		c.Env = cmd.Env
	}

	var stdout, stderr strings.Builder
	c.Stdout = &stdout
	c.Stderr = &stderr

	if err := c.Run(); err != nil {
		stderrStr := strings.TrimSpace(stderr.String())
		message := fmt.Sprintf("%s failed", cmd)
		if stderrStr != "" {
			message = fmt.Sprintf("%s: %s", message, stderrStr)
		}
		return "", model.WrapCLIError(model.ExitRegistryError, message, err)
	}

	return stdout.String(), nil
}

// notFoundPattern matches the npm error code printed for a package or
// version that does not exist in the registry. Older npm prints
// "npm ERR! code E404", newer prints "npm error code E404".
var notFoundPattern = regexp.MustCompile(`code E404`)

// IsNotFound reports whether err is npm's registry not-found failure.
func IsNotFound(err error) bool {
	return err != nil && notFoundPattern.MatchString(err.Error())
}

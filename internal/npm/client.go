package npm

import (
	"context"
	"fmt"
	"io"
	"strings"

	"github.com/charmbracelet/log"
)

// DefaultRegistryHost is the host whose auth token is configured.
const DefaultRegistryHost = "registry.npmjs.org"

// defaultBinary is the npm executable looked up on PATH.
const defaultBinary = "npm"

// Client runs npm commands in a package directory.
type Client struct {
	runner Runner
	binary string
	dir    string
	logger *log.Logger
}

// NewClient creates a Client that runs npm in dir using runner.
// A nil runner defaults to ExecRunner; a nil logger discards output.
func NewClient(runner Runner, dir string, logger *log.Logger) *Client {
	if runner == nil {
		runner = ExecRunner{}
	}
	if logger == nil {
		logger = log.New(io.Discard)
	}
	return &Client{
		runner: runner,
		binary: defaultBinary,
		dir:    dir,
		logger: logger,
	}
}

// run executes npm with args in the client's directory.
func (c *Client) run(ctx context.Context, args []string, env []string, secrets ...string) (string, error) {
	cmd := Command{
		Name:    c.binary,
		Args:    args,
		Dir:     c.dir,
		Env:     env,
		Secrets: secrets,
	}
	c.logger.Debug("running command", "cmd", cmd.String(), "dir", c.dir)
	return c.runner.Run(ctx, cmd)
}

// Version returns the output of `npm -v`, trimmed.
func (c *Client) Version(ctx context.Context) (string, error) {
	out, err := c.run(ctx, []string{"-v"}, nil)
	if err != nil {
		return "", err
	}
	return strings.TrimSpace(out), nil
}

// View queries the registry with `npm view <spec> --json`.
//
// spec is a bare package name or "name@version"; an empty spec views the
// package described by the local package.json. A package or version that
// does not exist yields (nil, nil). Every other failure is returned
// unchanged so that network and auth problems abort the run.
func (c *Client) View(ctx context.Context, spec string) (*Metadata, error) {
	args := []string{"view"}
	if spec != "" {
		args = append(args, spec)
	}
	args = append(args, "--json")

	out, err := c.run(ctx, args, nil)
	if err != nil {
		if IsNotFound(err) {
			c.logger.Debug("package not found in registry", "spec", spec)
			return nil, nil
		}
		return nil, err
	}

	meta, err := parseMetadata(out)
	if err != nil {
		return nil, fmt.Errorf("npm view %s: %w", spec, err)
	}
	return meta, nil
}

// SetAuthToken writes the registry auth token into the npm user config.
// Every later npm command in the same environment is authenticated.
func (c *Client) SetAuthToken(ctx context.Context, token string) error {
	entry := fmt.Sprintf("//%s/:_authToken=%s", DefaultRegistryHost, token)
	_, err := c.run(ctx, []string{"config", "set", entry}, nil, token)
	return err
}

// PackDryRun runs `npm pack --dry-run` and returns its output. npm writes
// the tarball listing to stderr, so the output is usually short; it is
// only used for diagnostics.
func (c *Client) PackDryRun(ctx context.Context) (string, error) {
	return c.run(ctx, []string{"pack", "--dry-run"}, nil)
}

// Publish runs `npm publish`, prefixed with `--otp <otp>` when otp is
// non-empty, followed by flags. A nil env inherits the process environment.
func (c *Client) Publish(ctx context.Context, otp string, flags []string, env []string) error {
	args := []string{"publish"}
	if otp != "" {
		args = append(args, "--otp", otp)
	}
	args = append(args, flags...)

	if _, err := c.run(ctx, args, env, otp); err != nil {
		return err
	}
	return nil
}

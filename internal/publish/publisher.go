package publish

import (
	"context"
	"io"
	"strings"

	"github.com/charmbracelet/log"

	"github.com/shinji-kodama/npm-otp-publish/internal/model"
)

// Registry is the set of npm operations the publish workflow performs.
// npm.Client implements it.
type Registry interface {
	Viewer
	Version(ctx context.Context) (string, error)
	SetAuthToken(ctx context.Context, token string) error
	PackDryRun(ctx context.Context) (string, error)
	Publish(ctx context.Context, otp string, flags []string, env []string) error
}

// OTPSource issues one-time passwords. otp.Fetcher implements it.
type OTPSource interface {
	Fetch(ctx context.Context, baseURL, token string) (string, error)
}

// Result describes the outcome of a publish run.
type Result struct {
	// Package is the name and version that was considered.
	Package model.PackageIdentity `json:"package"`

	// Flags are the assembled npm publish flags.
	Flags []string `json:"flags"`

	// Published is true when npm publish ran and succeeded.
	Published bool `json:"published"`

	// Skipped is true when the version was already in the registry.
	Skipped bool `json:"skipped"`

	// UsedOTP is true when an OTP was fetched and passed to npm.
	UsedOTP bool `json:"usedOtp"`
}

// Publisher runs the publish workflow.
type Publisher struct {
	registry Registry
	otp      OTPSource
	gate     *Gate
	environ  map[string]string
	logger   *log.Logger
}

// NewPublisher creates a Publisher.
//
// environ is the environment the provenance passthrough list is filtered
// from; the Publisher never reads the process environment itself.
func NewPublisher(registry Registry, otp OTPSource, environ map[string]string, logger *log.Logger) *Publisher {
	if logger == nil {
		logger = log.New(io.Discard)
	}
	return &Publisher{
		registry: registry,
		otp:      otp,
		gate:     NewGate(registry, logger),
		environ:  environ,
		logger:   logger,
	}
}

// validate applies every configuration rule before any external call.
func validate(name string, cfg *model.PublishConfig) error {
	if err := cfg.Validate(); err != nil {
		return err
	}
	return model.ValidateAccessForName(name, cfg.Access)
}

// Check validates cfg, configures registry auth and reports whether
// cfg.Version of the named package still needs publishing. Nothing is
// published.
func (p *Publisher) Check(ctx context.Context, name string, cfg *model.PublishConfig) (bool, error) {
	if err := validate(name, cfg); err != nil {
		return false, err
	}
	if err := p.registry.SetAuthToken(ctx, cfg.NPMToken); err != nil {
		return false, err
	}
	return p.gate.IsEligible(ctx, name, cfg.Version)
}

// Run publishes cfg.Version of the named package.
//
// An already-published version is not an error: Run returns a Result with
// Skipped set and performs no publish. The auth token is configured in
// either case.
func (p *Publisher) Run(ctx context.Context, name string, cfg *model.PublishConfig) (*Result, error) {
	// Step 1: Reject invalid configuration before touching npm or the network.
	if err := validate(name, cfg); err != nil {
		return nil, err
	}

	result := &Result{
		Package: model.PackageIdentity{Name: name, Version: cfg.Version},
	}

	npmVersion, err := p.registry.Version(ctx)
	if err != nil {
		return nil, err
	}
	p.logger.Info("using npm", "version", npmVersion)

	// Step 2: Authenticate. Later npm commands in this environment rely on it.
	if err := p.registry.SetAuthToken(ctx, cfg.NPMToken); err != nil {
		return nil, err
	}

	// Step 3: Assemble flags and, for provenance, the restricted environment.
	result.Flags = BuildFlags(FlagOptionsFrom(cfg))

	var env []string
	if cfg.Provenance {
		allow := cfg.EnvPassthrough
		if len(allow) == 0 {
			allow = DefaultProvenanceEnv
		}
		env = FilterEnv(p.environ, allow)
		p.logger.Debug("provenance environment", "keys", envKeys(env))
	}

	// Step 4: Skip versions that are already in the registry.
	eligible, err := p.gate.IsEligible(ctx, name, cfg.Version)
	if err != nil {
		return nil, err
	}
	if !eligible {
		p.logger.Info("skipping publish", "package", result.Package.Spec())
		result.Skipped = true
		return result, nil
	}

	// Step 5: Dry-run packaging, for the log only.
	packOutput, err := p.registry.PackDryRun(ctx)
	if err != nil {
		return nil, err
	}
	if out := strings.TrimSpace(packOutput); out != "" {
		p.logger.Debug("npm pack --dry-run", "output", out)
	}

	// Step 6: Publish, with an OTP when a provider token is configured.
	otp := ""
	if cfg.HasOTP() {
		otp, err = p.otp.Fetch(ctx, cfg.OTPURL, cfg.OTPToken)
		if err != nil {
			return nil, err
		}
		result.UsedOTP = true
	} else {
		p.logger.Info("no otp token configured, publishing without otp")
	}

	if err := p.registry.Publish(ctx, otp, result.Flags, env); err != nil {
		return nil, err
	}

	result.Published = true
	p.logger.Info("published", "package", result.Package.Spec(), "tag", cfg.Tag)
	return result, nil
}

// envKeys returns only the keys of KEY=VALUE pairs so values stay out of logs.
func envKeys(env []string) []string {
	keys := make([]string, 0, len(env))
	for _, entry := range env {
		key, _, _ := strings.Cut(entry, "=")
		keys = append(keys, key)
	}
	return keys
}

package publish

import (
	"context"
	"errors"

	"github.com/shinji-kodama/npm-otp-publish/internal/npm"
)

// fakeRegistry is an in-memory Registry. published maps a bare package
// name to the versions the registry holds.
type fakeRegistry struct {
	published  map[string][]string
	viewErr    error
	publishErr error

	authTokens []string
	views      []string
	packs      int
	publishes  []publishCall
	calls      []string
}

// publishCall records the arguments of one Publish invocation.
type publishCall struct {
	otp   string
	flags []string
	env   []string
}

func (f *fakeRegistry) View(_ context.Context, spec string) (*npm.Metadata, error) {
	f.calls = append(f.calls, "view")
	f.views = append(f.views, spec)
	if f.viewErr != nil {
		return nil, f.viewErr
	}

	name, version := splitSpec(spec)
	versions, ok := f.published[name]
	if !ok {
		return nil, nil
	}
	if version == "" {
		return &npm.Metadata{Name: name, Version: versions[len(versions)-1], Versions: versions}, nil
	}
	for _, v := range versions {
		if v == version {
			return &npm.Metadata{Name: name, Version: v}, nil
		}
	}
	return nil, nil
}

func (f *fakeRegistry) Version(context.Context) (string, error) {
	f.calls = append(f.calls, "version")
	return "10.0.0", nil
}

func (f *fakeRegistry) SetAuthToken(_ context.Context, token string) error {
	f.calls = append(f.calls, "auth")
	f.authTokens = append(f.authTokens, token)
	return nil
}

func (f *fakeRegistry) PackDryRun(context.Context) (string, error) {
	f.calls = append(f.calls, "pack")
	f.packs++
	return "tarball contents", nil
}

func (f *fakeRegistry) Publish(_ context.Context, otp string, flags []string, env []string) error {
	f.calls = append(f.calls, "publish")
	if f.publishErr != nil {
		return f.publishErr
	}
	f.publishes = append(f.publishes, publishCall{otp: otp, flags: flags, env: env})
	return nil
}

// splitSpec splits "name@version" while keeping the leading "@" of scoped
// names.
func splitSpec(spec string) (string, string) {
	for i := len(spec) - 1; i > 0; i-- {
		if spec[i] == '@' {
			return spec[:i], spec[i+1:]
		}
	}
	return spec, ""
}

// fakeOTP returns a fixed OTP and records requests.
type fakeOTP struct {
	otp      string
	err      error
	requests []string
}

func (f *fakeOTP) Fetch(_ context.Context, baseURL, token string) (string, error) {
	f.requests = append(f.requests, baseURL+token)
	if f.err != nil {
		return "", f.err
	}
	return f.otp, nil
}

var errBoom = errors.New("boom")

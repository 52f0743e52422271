package model

import (
	"errors"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

// TestIsPackageNameScoped verifies that only "@scope/name" forms with a
// non-empty scope and name are treated as scoped.
func TestIsPackageNameScoped(t *testing.T) {
	tests := []struct {
		name     string
		expected bool
	}{
		{"@nearform/package", true},
		{"@nearform/some-package", true},
		{"@some-scope/package", true},
		{"@some-scope/some-package", true},
		{"nearform-some-package", false},
		{"nearform/@some-package", false},
		{"@some-scope-package", false},
		{"some-scope/some-package", false},
		{"@/package", false},
		{"@scope/", false},
		{"", false},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.Equal(t, tt.expected, IsPackageNameScoped(tt.name))
		})
	}
}

// TestPackageIdentity_Spec checks the npm "name@version" rendering.
func TestPackageIdentity_Spec(t *testing.T) {
	assert.Equal(t, "@scope/pkg@1.2.3", PackageIdentity{Name: "@scope/pkg", Version: "1.2.3"}.Spec())
	assert.Equal(t, "pkg", PackageIdentity{Name: "pkg"}.Spec())
}

// TestParseAccessLevel verifies string-to-access conversion,
// including case normalization and error cases.
func TestParseAccessLevel(t *testing.T) {
	tests := []struct {
		input    string
		expected AccessLevel
		hasError bool
	}{
		{"public", AccessPublic, false},
		{"restricted", AccessRestricted, false},
		{"Public", AccessPublic, false},
		{" RESTRICTED ", AccessRestricted, false},
		{"", AccessUnset, false},
		{"private", "", true},
	}

	for _, tt := range tests {
		t.Run(tt.input, func(t *testing.T) {
			result, err := ParseAccessLevel(tt.input)
			if tt.hasError {
				assert.Error(t, err)
			} else {
				require.NoError(t, err)
				assert.Equal(t, tt.expected, result)
			}
		})
	}
}

// TestNormalizeVersion checks that git-tag style versions are accepted.
func TestNormalizeVersion(t *testing.T) {
	assert.Equal(t, "1.2.3", NormalizeVersion("v1.2.3"))
	assert.Equal(t, "1.2.3", NormalizeVersion(" 1.2.3\n"))
	assert.Equal(t, "1.0.0-beta.1", NormalizeVersion("1.0.0-beta.1"))
}

func TestIsFullVersion(t *testing.T) {
	tests := []struct {
		version string
		want    bool
	}{
		{"1.2.3", true},
		{"1.2.3-beta.1", true},
		{"1.2.3+sha.abc", true},
		{"1", false},
		{"1.2", false},
		{"1.2-beta", false},
		{"01.2.3", false},
		{"", false},
	}

	for _, tt := range tests {
		t.Run(tt.version, func(t *testing.T) {
			assert.Equal(t, tt.want, IsFullVersion(tt.version))
		})
	}
}

// validConfig returns a PublishConfig that passes Validate.
func validConfig() PublishConfig {
	return PublishConfig{
		NPMToken: "npm-token",
		Tag:      DefaultTag,
		Version:  "1.0.0",
		Dir:      ".",
	}
}

// TestPublishConfig_Validate covers every rejection rule plus the accepted
// combinations of provenance and access.
func TestPublishConfig_Validate(t *testing.T) {
	tests := []struct {
		name    string
		mutate  func(c *PublishConfig)
		wantErr string
	}{
		{name: "valid minimal", mutate: func(c *PublishConfig) {}},
		{
			name:   "provenance with public access",
			mutate: func(c *PublishConfig) { c.Provenance = true; c.Access = AccessPublic },
		},
		{
			name:   "provenance with unset access",
			mutate: func(c *PublishConfig) { c.Provenance = true },
		},
		{
			name:   "restricted without provenance",
			mutate: func(c *PublishConfig) { c.Access = AccessRestricted },
		},
		{
			name:   "otp token and url",
			mutate: func(c *PublishConfig) { c.OTPToken = "t"; c.OTPURL = "https://otp.example.com/" },
		},
		{
			name:    "missing npm token",
			mutate:  func(c *PublishConfig) { c.NPMToken = "" },
			wantErr: "npm token is required",
		},
		{
			name:    "missing version",
			mutate:  func(c *PublishConfig) { c.Version = "" },
			wantErr: "version is required",
		},
		{
			name:    "invalid version",
			mutate:  func(c *PublishConfig) { c.Version = "one.two" },
			wantErr: "invalid version",
		},
		{
			name:    "major only shorthand",
			mutate:  func(c *PublishConfig) { c.Version = "1" },
			wantErr: "invalid version",
		},
		{
			name:    "major minor shorthand",
			mutate:  func(c *PublishConfig) { c.Version = "1.0" },
			wantErr: "invalid version",
		},
		{
			name:   "prerelease with build metadata",
			mutate: func(c *PublishConfig) { c.Version = "1.0.0-rc.1+build.5" },
		},
		{
			name:    "empty tag",
			mutate:  func(c *PublishConfig) { c.Tag = "" },
			wantErr: "distribution tag",
		},
		{
			name:    "invalid access",
			mutate:  func(c *PublishConfig) { c.Access = AccessLevel("private") },
			wantErr: "invalid access level",
		},
		{
			name:    "provenance with restricted access",
			mutate:  func(c *PublishConfig) { c.Provenance = true; c.Access = AccessRestricted },
			wantErr: "provenance requires public access",
		},
		{
			name:    "otp token without url",
			mutate:  func(c *PublishConfig) { c.OTPToken = "t" },
			wantErr: "otp url is required",
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			cfg := validConfig()
			tt.mutate(&cfg)

			err := cfg.Validate()
			if tt.wantErr == "" {
				assert.NoError(t, err)
				return
			}

			require.Error(t, err)
			assert.Contains(t, err.Error(), tt.wantErr)

			var cliErr *CLIError
			require.True(t, errors.As(err, &cliErr))
			assert.Equal(t, ExitInvalidConfig, cliErr.Code)
		})
	}
}

// TestValidateAccessForName verifies that restricted access is only allowed
// for scoped package names.
func TestValidateAccessForName(t *testing.T) {
	assert.NoError(t, ValidateAccessForName("@scope/pkg", AccessRestricted))
	assert.NoError(t, ValidateAccessForName("pkg", AccessPublic))
	assert.NoError(t, ValidateAccessForName("pkg", AccessUnset))
	assert.Error(t, ValidateAccessForName("pkg", AccessRestricted))
}

// TestCLIError_Error verifies the error message format with and without
// an underlying error.
func TestCLIError_Error(t *testing.T) {
	t.Run("without underlying error", func(t *testing.T) {
		err := NewCLIError(ExitInvalidConfig, "bad config")
		assert.Equal(t, "bad config", err.Error())
		assert.Equal(t, ExitInvalidConfig, err.Code)
	})

	t.Run("with underlying error", func(t *testing.T) {
		inner := errors.New("exit status 1")
		err := WrapCLIError(ExitRegistryError, "npm publish failed", inner)
		assert.Equal(t, "npm publish failed: exit status 1", err.Error())
		assert.ErrorIs(t, err, inner)
	})
}

// TestPublishConfig_HasOTP checks that the OTP step is keyed on the token.
func TestPublishConfig_HasOTP(t *testing.T) {
	cfg := validConfig()
	assert.False(t, cfg.HasOTP())
	cfg.OTPToken = "token"
	assert.True(t, cfg.HasOTP())
}

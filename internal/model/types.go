// Package model defines the domain types for the npm-otp-publish CLI.
//
// All values in this package are transient: they are built once per run
// from the caller's configuration, the local package.json, or the
// registry's response, and are never persisted.
package model

import (
	"fmt"
	"regexp"
	"strings"

	"golang.org/x/mod/semver"
)

// DefaultTag is the distribution tag used when the caller does not set one.
const DefaultTag = "latest"

// PackageIdentity names a single package version.
// It is read from the local manifest or from the registry's response and
// is never modified after it is read.
type PackageIdentity struct {
	// Name is the full package name, including the scope if any
	// (e.g., "@nearform/package").
	Name string `json:"name"`

	// Version is the semantic version string without a leading "v".
	Version string `json:"version"`
}

// Spec returns the "name@version" form understood by npm. If Version is
// empty only the bare name is returned.
func (p PackageIdentity) Spec() string {
	if p.Version == "" {
		return p.Name
	}
	return p.Name + "@" + p.Version
}

// AccessLevel is the npm publish access level.
type AccessLevel string

const (
	// AccessUnset means no --access flag is passed and npm applies its default.
	AccessUnset AccessLevel = ""

	// AccessPublic makes the package installable by anyone.
	AccessPublic AccessLevel = "public"

	// AccessRestricted limits the package to the scope's members.
	// Only scoped packages can be restricted.
	AccessRestricted AccessLevel = "restricted"
)

// String returns the string representation of AccessLevel.
func (a AccessLevel) String() string {
	return string(a)
}

// IsValid checks whether the AccessLevel is one of the predefined values.
// AccessUnset is valid.
func (a AccessLevel) IsValid() bool {
	switch a {
	case AccessUnset, AccessPublic, AccessRestricted:
		return true
	default:
		return false
	}
}

// ParseAccessLevel converts a string to an AccessLevel. The comparison is
// case-insensitive and surrounding whitespace is ignored.
func ParseAccessLevel(s string) (AccessLevel, error) {
	access := AccessLevel(strings.ToLower(strings.TrimSpace(s)))
	if !access.IsValid() {
		return "", fmt.Errorf("invalid access level: %q (valid: public, restricted)", s)
	}
	return access, nil
}

// scopedNameRegex matches "@<scope>/<name>" with a non-empty scope and name.
var scopedNameRegex = regexp.MustCompile(`^@[^/]+/.+`)

// IsPackageNameScoped reports whether an npm package name has a scope
// ("@some-scope/package-name") and can therefore be published privately.
func IsPackageNameScoped(name string) bool {
	return scopedNameRegex.MatchString(name)
}

// PublishConfig holds everything needed for one publish run.
// It is constructed once by the config package and not mutated afterwards.
type PublishConfig struct {
	// NPMToken is written into the npm user config as the registry auth token.
	NPMToken string `json:"-"`

	// OTPToken is the token appended to OTPURL to obtain a one-time password.
	// When empty, publish runs without --otp.
	OTPToken string `json:"-"`

	// OTPURL is the base URL of the OTP provider. The token is appended
	// verbatim, so the URL normally ends with "/".
	OTPURL string `json:"otpUrl,omitempty"`

	// Tag is the distribution tag (e.g., "latest", "next").
	Tag string `json:"tag"`

	// Version is the version being published.
	Version string `json:"version"`

	// Provenance requests a provenance attestation (npm publish --provenance).
	Provenance bool `json:"provenance"`

	// Access is the optional access level.
	Access AccessLevel `json:"access,omitempty"`

	// Dir is the package directory that holds package.json. npm commands
	// run with this directory as their working directory.
	Dir string `json:"dir"`

	// EnvPassthrough lists the environment variables handed to npm publish
	// when provenance is requested. All others are withheld.
	EnvPassthrough []string `json:"envPassthrough,omitempty"`
}

// HasOTP reports whether an OTP must be fetched before publishing.
func (c *PublishConfig) HasOTP() bool {
	return c.OTPToken != ""
}

// NormalizeVersion strips surrounding whitespace and a leading "v" so that
// git tags such as "v1.2.3" can be passed as the version.
func NormalizeVersion(version string) string {
	return strings.TrimPrefix(strings.TrimSpace(version), "v")
}

// IsFullVersion reports whether version is a complete MAJOR.MINOR.PATCH
// semantic version, with optional prerelease and build metadata. Shorthands
// such as "1" or "1.2" are rejected because npm resolves them as ranges.
func IsFullVersion(version string) bool {
	v := "v" + version
	if !semver.IsValid(v) {
		return false
	}
	core, _, _ := strings.Cut(v, "+")
	return semver.Canonical(v) == core
}

// Validate checks the configuration before any subprocess or network call
// is made.
//
// Provenance attestations are only issued for public packages, so
// Provenance combined with AccessRestricted is rejected here rather than
// failing later inside npm.
func (c *PublishConfig) Validate() error {
	if c.NPMToken == "" {
		return NewCLIError(ExitInvalidConfig, "npm token is required")
	}
	if c.Version == "" {
		return NewCLIError(ExitInvalidConfig, "version is required")
	}
	if !IsFullVersion(c.Version) {
		return NewCLIError(ExitInvalidConfig,
			fmt.Sprintf("invalid version %q: must be a full semantic version (e.g., 1.2.3)", c.Version))
	}
	if c.Tag == "" {
		return NewCLIError(ExitInvalidConfig, "distribution tag must not be empty")
	}
	if !c.Access.IsValid() {
		return NewCLIError(ExitInvalidConfig,
			fmt.Sprintf("invalid access level %q (valid: public, restricted)", c.Access))
	}
	if c.Provenance && c.Access == AccessRestricted {
		return NewCLIError(ExitInvalidConfig,
			"provenance requires public access: remove --provenance or use --access public")
	}
	if c.OTPToken != "" && c.OTPURL == "" {
		return NewCLIError(ExitInvalidConfig, "otp url is required when an otp token is set")
	}
	return nil
}

// ValidateAccessForName rejects restricted access for unscoped packages,
// which npm can only publish publicly.
func ValidateAccessForName(name string, access AccessLevel) error {
	if access == AccessRestricted && !IsPackageNameScoped(name) {
		return NewCLIError(ExitInvalidConfig,
			fmt.Sprintf("package %q is not scoped and cannot be published with restricted access", name))
	}
	return nil
}

// ExitCode defines the process exit codes of the CLI so that CI steps
// can tell failure kinds apart.
type ExitCode int

const (
	// ExitSuccess indicates the command completed successfully. A skipped
	// publish of an already-published version is also a success.
	ExitSuccess ExitCode = 0

	// ExitGeneralError indicates an unspecified error occurred.
	ExitGeneralError ExitCode = 1

	// ExitManifestNotFound indicates package.json was not found in the
	// package directory.
	ExitManifestNotFound ExitCode = 2

	// ExitInvalidConfig indicates the publish configuration was rejected
	// before any external call was made.
	ExitInvalidConfig ExitCode = 3

	// ExitRegistryError indicates an npm command failed for a reason other
	// than "not found" (network, auth, publish rejection).
	ExitRegistryError ExitCode = 4

	// ExitOTPError indicates the OTP provider could not be reached or
	// returned an unusable response.
	ExitOTPError ExitCode = 5

	// ExitParseError indicates a response or file had an unexpected shape.
	ExitParseError ExitCode = 6
)

// CLIError is a custom error type that carries an exit code.
// This allows the CLI layer to translate domain errors into
// appropriate process exit codes.
type CLIError struct {
	// Code is the exit code to return to the OS.
	Code ExitCode

	// Message is the human-readable error description.
	Message string

	// Err is the underlying error, if any.
	Err error
}

// Error satisfies the error interface. It returns the human-readable
// error message, optionally including the underlying error.
func (e *CLIError) Error() string {
	if e.Err != nil {
		return fmt.Sprintf("%s: %v", e.Message, e.Err)
	}
	return e.Message
}

// Unwrap returns the underlying error for use with errors.Is/errors.As.
func (e *CLIError) Unwrap() error {
	return e.Err
}

// NewCLIError creates a new CLIError with the given exit code and message.
func NewCLIError(code ExitCode, message string) *CLIError {
	return &CLIError{Code: code, Message: message}
}

// WrapCLIError creates a new CLIError that wraps an existing error.
func WrapCLIError(code ExitCode, message string, err error) *CLIError {
	return &CLIError{Code: code, Message: message, Err: err}
}

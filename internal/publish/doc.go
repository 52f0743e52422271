// Package publish implements the publish workflow of npm-otp-publish.
//
// The workflow is strictly sequential:
//
//	validate → npm config set → build flags → eligibility → pack --dry-run → [otp] → npm publish
//
// BuildFlags and FilterEnv are pure functions. Gate decides whether a
// version still needs publishing, which makes re-running a partially
// failed release safe. Publisher ties the steps together over the
// Registry and OTPSource interfaces, implemented in production by
// npm.Client and otp.Fetcher.
package publish

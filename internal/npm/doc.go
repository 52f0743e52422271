// Package npm provides the registry integration layer for npm-otp-publish.
//
// Registry operations are performed via os/exec calls to the npm binary,
// rather than by talking to the registry's HTTP API directly. This approach:
//   - Reuses the authentication, proxy and registry settings of the CI job
//   - Produces the same provenance attestation npm itself would
//   - Keeps the "not found" contract tied to npm's E404 error code
//
// The Client type covers view, config set, pack and publish. Runner is the
// subprocess seam; ExecRunner is the production implementation.
package npm

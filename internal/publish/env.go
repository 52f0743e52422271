package publish

import (
	"sort"
	"strings"
)

// DefaultProvenanceEnv lists the variables npm reads to request and
// describe a provenance attestation on GitHub Actions, plus what it needs
// to locate itself and the user config holding the auth token.
var DefaultProvenanceEnv = []string{
	"GITHUB_ACTIONS",
	"ACTIONS_ID_TOKEN_REQUEST_URL",
	"ACTIONS_ID_TOKEN_REQUEST_TOKEN",
	"GITHUB_WORKFLOW_REF",
	"GITHUB_SERVER_URL",
	"GITHUB_REPOSITORY",
	"GITHUB_REPOSITORY_ID",
	"GITHUB_REPOSITORY_OWNER_ID",
	"GITHUB_EVENT_NAME",
	"GITHUB_REF",
	"GITHUB_SHA",
	"GITHUB_RUN_ID",
	"GITHUB_RUN_ATTEMPT",
	"RUNNER_ENVIRONMENT",
	"NPM_CONFIG_USERCONFIG",
	"PATH",
	"HOME",
}

// FilterEnv returns the KEY=VALUE pairs of source whose keys are in allow,
// sorted by key. Keys absent from source are skipped. The result is never
// nil, so it always replaces the child environment.
func FilterEnv(source map[string]string, allow []string) []string {
	keys := make([]string, 0, len(allow))
	seen := make(map[string]bool, len(allow))
	for _, key := range allow {
		if seen[key] {
			continue
		}
		seen[key] = true
		if _, ok := source[key]; ok {
			keys = append(keys, key)
		}
	}
	sort.Strings(keys)

	env := make([]string, 0, len(keys))
	for _, key := range keys {
		env = append(env, key+"="+source[key])
	}
	return env
}

// EnvMap converts os.Environ-style KEY=VALUE entries into a map. Entries
// without "=" are ignored; later duplicates win.
func EnvMap(environ []string) map[string]string {
	m := make(map[string]string, len(environ))
	for _, entry := range environ {
		key, value, ok := strings.Cut(entry, "=")
		if !ok || key == "" {
			continue
		}
		m[key] = value
	}
	return m
}

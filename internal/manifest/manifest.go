// Package manifest reads the local package.json of the package being
// published.
//
// package.json is treated as read-only. Comments and trailing commas are
// stripped with github.com/tidwall/jsonc before decoding, so hand-edited
// manifests that npm tolerates are accepted here too.
package manifest

import (
	"encoding/json"
	"fmt"
	"os"
	"path/filepath"
	"strings"

	"github.com/tidwall/jsonc"

	"github.com/shinji-kodama/npm-otp-publish/internal/model"
)

// FileName is the manifest file name inside a package directory.
const FileName = "package.json"

// rawManifest is the subset of package.json fields the publisher reads.
type rawManifest struct {
	Name    string `json:"name"`
	Version string `json:"version"`
	Private bool   `json:"private"`
}

// Manifest is the parsed local package description.
type Manifest struct {
	// Path is the absolute path of the package.json that was read.
	Path string `json:"path"`

	// Identity is the package name and the version recorded locally.
	Identity model.PackageIdentity `json:"identity"`

	// Private mirrors the "private" field; npm refuses to publish such
	// packages.
	Private bool `json:"private"`
}

// Read loads <dir>/package.json.
//
// Returns a CLIError with ExitManifestNotFound if the file does not exist,
// and ExitParseError if it cannot be decoded or has no name.
func Read(dir string) (*Manifest, error) {
	path, err := filepath.Abs(filepath.Join(dir, FileName))
	if err != nil {
		return nil, fmt.Errorf("failed to resolve manifest path: %w", err)
	}

	data, err := os.ReadFile(path)
	if err != nil {
		if os.IsNotExist(err) {
			return nil, model.WrapCLIError(
				model.ExitManifestNotFound,
				fmt.Sprintf("package.json not found: %s", path),
				err,
			)
		}
		return nil, fmt.Errorf("failed to read package.json: %w", err)
	}

	var raw rawManifest
	if err := json.Unmarshal(jsonc.ToJSON(data), &raw); err != nil {
		return nil, model.WrapCLIError(
			model.ExitParseError,
			fmt.Sprintf("failed to parse %s", path),
			err,
		)
	}

	name := strings.TrimSpace(raw.Name)
	if name == "" {
		return nil, model.NewCLIError(
			model.ExitParseError,
			fmt.Sprintf("%s has no \"name\" field", path),
		)
	}

	return &Manifest{
		Path:     path,
		Identity: model.PackageIdentity{Name: name, Version: strings.TrimSpace(raw.Version)},
		Private:  raw.Private,
	}, nil
}

// IsScoped reports whether the local package name carries an npm scope.
func (m *Manifest) IsScoped() bool {
	return model.IsPackageNameScoped(m.Identity.Name)
}

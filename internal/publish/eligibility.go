package publish

import (
	"context"
	"io"

	"github.com/charmbracelet/log"

	"github.com/shinji-kodama/npm-otp-publish/internal/model"
	"github.com/shinji-kodama/npm-otp-publish/internal/npm"
)

// Viewer queries registry metadata. A nil Metadata with a nil error means
// the package or version does not exist.
type Viewer interface {
	View(ctx context.Context, spec string) (*npm.Metadata, error)
}

// Gate decides whether a version still has to be published.
type Gate struct {
	viewer Viewer
	logger *log.Logger
}

// NewGate creates a Gate backed by viewer.
func NewGate(viewer Viewer, logger *log.Logger) *Gate {
	if logger == nil {
		logger = log.New(io.Discard)
	}
	return &Gate{viewer: viewer, logger: logger}
}

// IsEligible reports whether version of the named package is not yet in
// the registry.
//
// The package is first looked up by bare name; if it was never published
// the version is eligible. Otherwise "name@version" is looked up
// explicitly, because npm only consults the remote registry for an exact
// name and version and could otherwise answer from the local package.json.
// A release that failed after publishing is re-run safely: the second
// lookup finds the version and the publish is skipped.
func (g *Gate) IsEligible(ctx context.Context, name, version string) (bool, error) {
	pkg, err := g.viewer.View(ctx, name)
	if err != nil {
		return false, err
	}
	if pkg == nil {
		g.logger.Info("package has never been published", "package", name)
		return true, nil
	}

	// The registry's canonical name is used for the version lookup.
	spec := model.PackageIdentity{Name: pkg.Name, Version: version}.Spec()
	published, err := g.viewer.View(ctx, spec)
	if err != nil {
		return false, err
	}
	if published == nil {
		g.logger.Info("version not yet published", "spec", spec)
		return true, nil
	}

	g.logger.Info("version already published", "spec", spec)
	return false, nil
}

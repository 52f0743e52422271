// Package cli: publish.go implements the "npm-otp-publish publish" command.
//
// The publish command reads the local package.json, resolves the publish
// configuration from flags, environment and config file, and runs the
// publish workflow. Re-running it for a version that is already in the
// registry is a successful no-op.
package cli

import (
	"context"
	"fmt"
	"io"
	"os"
	"strings"

	"github.com/spf13/cobra"

	"github.com/shinji-kodama/npm-otp-publish/internal/config"
	"github.com/shinji-kodama/npm-otp-publish/internal/manifest"
	"github.com/shinji-kodama/npm-otp-publish/internal/model"
	"github.com/shinji-kodama/npm-otp-publish/internal/npm"
	"github.com/shinji-kodama/npm-otp-publish/internal/otp"
	"github.com/shinji-kodama/npm-otp-publish/internal/publish"
)

// NewPublishCommand creates the "publish" cobra command.
// It is called from NewRootCommand to register as a subcommand.
func NewPublishCommand() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "publish",
		Short: "Publish the package unless this version is already published",
		Long: `Publish the package in --dir to the npm registry.

Every flag can also be set with an NPM_OTP_PUBLISH_* environment variable
(e.g., NPM_OTP_PUBLISH_NPM_TOKEN) or in the --config YAML file.

Examples:
  npm-otp-publish publish --version 1.2.3 --npm-token "$NPM_TOKEN"
  npm-otp-publish publish --version 1.2.3 --tag next --access public --provenance
  npm-otp-publish publish --version 1.2.3 --otp-url https://otp.example.com/api/generate/ --otp-token "$OPTIC_TOKEN"`,

		Args: cobra.NoArgs,

		RunE: func(cmd *cobra.Command, args []string) error {
			return runPublish(cmd.Context(), cmd)
		},
	}

	config.RegisterFlags(cmd.Flags())

	return cmd
}

// prepare resolves the configuration and reads the local manifest. No
// subprocess or network call is made.
func prepare(cmd *cobra.Command) (*model.PublishConfig, *manifest.Manifest, error) {
	cfg, err := config.Load(config.LoadOptions{
		ConfigFilePath: configFile,
		Flags:          cmd.Flags(),
		Environ:        os.Environ(),
	})
	if err != nil {
		return nil, nil, err
	}

	m, err := manifest.Read(cfg.Dir)
	if err != nil {
		return nil, nil, err
	}
	logger.Debug("read local manifest", "path", m.Path, "name", m.Identity.Name)

	if m.Private {
		return nil, nil, model.NewCLIError(model.ExitInvalidConfig,
			fmt.Sprintf("%s is marked private and cannot be published", m.Identity.Name))
	}
	if cfg.Version != "" && m.Identity.Version != "" && m.Identity.Version != cfg.Version {
		logger.Warn("local package.json version differs from the version being published",
			"local", m.Identity.Version, "version", cfg.Version)
	}

	return cfg, m, nil
}

// newPublisher wires the production npm client and OTP fetcher.
func newPublisher(cfg *model.PublishConfig) *publish.Publisher {
	client := npm.NewClient(npm.ExecRunner{}, cfg.Dir, logger)
	fetcher := otp.NewFetcher(nil, logger)
	return publish.NewPublisher(client, fetcher, publish.EnvMap(os.Environ()), logger)
}

// runPublish is the main logic function for the publish command.
func runPublish(ctx context.Context, cmd *cobra.Command) error {
	cfg, m, err := prepare(cmd)
	if err != nil {
		return err
	}

	result, err := newPublisher(cfg).Run(ctx, m.Identity.Name, cfg)
	if err != nil {
		return err
	}

	return printPublishResult(cmd.OutOrStdout(), result)
}

// printPublishResult outputs the publish outcome in text or JSON format.
func printPublishResult(w io.Writer, result *publish.Result) error {
	if IsJSONOutput() {
		return printJSON(w, result)
	}

	var err error
	switch {
	case result.Skipped:
		_, err = fmt.Fprintf(w, "✓ %s is already published, nothing to do\n", result.Package.Spec())
	case result.Published:
		_, err = fmt.Fprintf(w, "✓ Published %s (%s)\n", result.Package.Spec(), FormatFlags(result.Flags))
	}
	return err
}

// FormatFlags renders publish flags for display. The OTP is never part of
// the assembled flags, so they can be shown as-is.
//
// Example:
//
//	["--tag", "latest", "--provenance"] → "--tag latest --provenance"
//	[]                                  → "-"
func FormatFlags(flags []string) string {
	if len(flags) == 0 {
		return "-"
	}
	return strings.Join(flags, " ")
}

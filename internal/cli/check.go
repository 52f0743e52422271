package cli

import (
	"context"
	"fmt"
	"io"

	"github.com/spf13/cobra"

	"github.com/shinji-kodama/npm-otp-publish/internal/config"
	"github.com/shinji-kodama/npm-otp-publish/internal/model"
)

// NewCheckCommand creates the "check" cobra command, which reports whether
// a version still needs publishing without publishing it.
func NewCheckCommand() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "check",
		Short: "Report whether the version still needs publishing",
		Long: `Validate the publish configuration, authenticate npm and report
whether --version of the package in --dir is already in the registry.

Like publish, check writes the npm token into the npm user config
(//registry.npmjs.org/:_authToken) so that private packages can be
queried. The token stays configured after the command exits.

Examples:
  npm-otp-publish check --version 1.2.3 --npm-token "$NPM_TOKEN"
  npm-otp-publish check --version 1.2.3 --json`,

		Args: cobra.NoArgs,

		RunE: func(cmd *cobra.Command, args []string) error {
			return runCheck(cmd.Context(), cmd)
		},
	}

	config.RegisterFlags(cmd.Flags())

	return cmd
}

// checkResultJSON is the JSON output of the check command.
type checkResultJSON struct {
	Package  model.PackageIdentity `json:"package"`
	Eligible bool                  `json:"eligible"`
}

func runCheck(ctx context.Context, cmd *cobra.Command) error {
	cfg, m, err := prepare(cmd)
	if err != nil {
		return err
	}

	eligible, err := newPublisher(cfg).Check(ctx, m.Identity.Name, cfg)
	if err != nil {
		return err
	}

	return printCheckResult(cmd.OutOrStdout(), checkResultJSON{
		Package:  model.PackageIdentity{Name: m.Identity.Name, Version: cfg.Version},
		Eligible: eligible,
	})
}

func printCheckResult(w io.Writer, result checkResultJSON) error {
	if IsJSONOutput() {
		return printJSON(w, result)
	}

	state := "already published"
	if result.Eligible {
		state = "not published yet"
	}
	_, err := fmt.Fprintf(w, "%s: %s\n", result.Package.Spec(), state)
	return err
}

package cli

import (
	"context"
	"fmt"
	"io"
	"sort"
	"strings"

	"github.com/spf13/cobra"

	"github.com/shinji-kodama/npm-otp-publish/internal/manifest"
	"github.com/shinji-kodama/npm-otp-publish/internal/npm"
)

// infoFlags holds the flag values for the info command.
type infoFlags struct {
	// dir is the package directory containing package.json.
	dir string
}

// NewInfoCommand creates the "info" cobra command. It shows the local
// package identity next to what the registry currently holds.
func NewInfoCommand() *cobra.Command {
	flags := &infoFlags{}

	cmd := &cobra.Command{
		Use:   "info",
		Short: "Show local and published package information",
		Long: `Show the name and version from the local package.json, whether the
name is scoped, and the registry's view of the package.

Examples:
  npm-otp-publish info
  npm-otp-publish info --dir packages/core --json`,

		Args: cobra.NoArgs,

		RunE: func(cmd *cobra.Command, args []string) error {
			return runInfo(cmd.Context(), cmd.OutOrStdout(), flags)
		},
	}

	cmd.Flags().StringVar(&flags.dir, "dir", ".", "package directory containing package.json")

	return cmd
}

// infoJSON is the JSON output structure of the info command.
type infoJSON struct {
	Local     *manifest.Manifest `json:"local"`
	Scoped    bool               `json:"scoped"`
	Published *npm.Metadata      `json:"published"`
}

func runInfo(ctx context.Context, w io.Writer, flags *infoFlags) error {
	m, err := manifest.Read(flags.dir)
	if err != nil {
		return err
	}

	client := npm.NewClient(npm.ExecRunner{}, flags.dir, logger)
	published, err := client.View(ctx, m.Identity.Name)
	if err != nil {
		return err
	}

	info := infoJSON{Local: m, Scoped: m.IsScoped(), Published: published}
	if IsJSONOutput() {
		return printJSON(w, info)
	}
	_, err = fmt.Fprint(w, formatInfo(info))
	return err
}

// formatInfo renders the info command's text output.
//
// Example:
//
//	Name:       @nearform/package
//	Local:      1.1.0
//	Scoped:     yes
//	Published:  1.0.0
//	Dist-tags:  latest=1.0.0
func formatInfo(info infoJSON) string {
	var b strings.Builder

	scoped := "no"
	if info.Scoped {
		scoped = "yes"
	}
	local := info.Local.Identity.Version
	if local == "" {
		local = "-"
	}

	fmt.Fprintf(&b, "%-11s %s\n", "Name:", info.Local.Identity.Name)
	fmt.Fprintf(&b, "%-11s %s\n", "Local:", local)
	fmt.Fprintf(&b, "%-11s %s\n", "Scoped:", scoped)

	if info.Published == nil {
		fmt.Fprintf(&b, "%-11s %s\n", "Published:", "not published")
		return b.String()
	}

	fmt.Fprintf(&b, "%-11s %s\n", "Published:", info.Published.Version)
	fmt.Fprintf(&b, "%-11s %s\n", "Dist-tags:", formatDistTags(info.Published.DistTags))
	return b.String()
}

// formatDistTags renders tags as "tag=version" pairs sorted by tag.
func formatDistTags(tags map[string]string) string {
	if len(tags) == 0 {
		return "-"
	}
	names := make([]string, 0, len(tags))
	for name := range tags {
		names = append(names, name)
	}
	sort.Strings(names)

	pairs := make([]string, 0, len(names))
	for _, name := range names {
		pairs = append(pairs, name+"="+tags[name])
	}
	return strings.Join(pairs, ", ")
}

package publish

import "github.com/shinji-kodama/npm-otp-publish/internal/model"

// FlagOptions is the complete set of inputs that influence npm publish
// flags. Every caller goes through BuildFlags, so the flag rules live in
// one place.
type FlagOptions struct {
	Tag        string
	Access     model.AccessLevel
	Provenance bool
}

// FlagOptionsFrom extracts the flag inputs from a publish configuration.
func FlagOptionsFrom(cfg *model.PublishConfig) FlagOptions {
	return FlagOptions{
		Tag:        cfg.Tag,
		Access:     cfg.Access,
		Provenance: cfg.Provenance,
	}
}

// BuildFlags returns the npm publish flags in a fixed order:
// --tag, then --access when set, then --provenance when requested.
//
// The provenance/access combination is not checked here; see
// model.PublishConfig.Validate.
func BuildFlags(opts FlagOptions) []string {
	flags := []string{"--tag", opts.Tag}
	if opts.Access != model.AccessUnset {
		flags = append(flags, "--access", opts.Access.String())
	}
	if opts.Provenance {
		flags = append(flags, "--provenance")
	}
	return flags
}

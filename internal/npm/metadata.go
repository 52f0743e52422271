package npm

import (
	"strings"

	"github.com/tidwall/gjson"

	"github.com/shinji-kodama/npm-otp-publish/internal/model"
)

// Metadata is the subset of `npm view --json` output the publisher needs.
type Metadata struct {
	// Name is the registry's canonical package name.
	Name string `json:"name"`

	// Version is the version the view resolved to. For a bare-name query
	// this is the version behind the "latest" tag.
	Version string `json:"version"`

	// DistTags maps distribution tags to versions.
	DistTags map[string]string `json:"distTags,omitempty"`

	// Versions lists every published version, when npm includes them.
	Versions []string `json:"versions,omitempty"`

	// Raw is the JSON document the fields were extracted from.
	Raw string `json:"-"`
}

// Identity returns the name/version pair of the metadata.
func (m *Metadata) Identity() model.PackageIdentity {
	return model.PackageIdentity{Name: m.Name, Version: m.Version}
}

// parseMetadata converts `npm view --json` output into Metadata.
//
// Empty output means "not found": npm < 8.13 prints nothing for a missing
// version instead of failing with E404. When the spec matched several
// versions npm prints an array, and the last (highest) entry is used.
func parseMetadata(output string) (*Metadata, error) {
	output = strings.TrimSpace(output)
	if output == "" {
		return nil, nil
	}

	if !gjson.Valid(output) {
		return nil, model.NewCLIError(model.ExitParseError,
			"unexpected npm view output: not valid JSON")
	}

	doc := gjson.Parse(output)
	if doc.IsArray() {
		items := doc.Array()
		if len(items) == 0 {
			return nil, nil
		}
		doc = items[len(items)-1]
	}

	if !doc.IsObject() {
		return nil, model.NewCLIError(model.ExitParseError,
			"unexpected npm view output: expected a JSON object")
	}

	name := doc.Get("name").String()
	if name == "" {
		return nil, model.NewCLIError(model.ExitParseError,
			"unexpected npm view output: missing package name")
	}

	meta := &Metadata{
		Name:    name,
		Version: doc.Get("version").String(),
		Raw:     doc.Raw,
	}

	if tags := doc.Get("dist-tags"); tags.IsObject() {
		meta.DistTags = make(map[string]string)
		tags.ForEach(func(key, value gjson.Result) bool {
			meta.DistTags[key.String()] = value.String()
			return true
		})
	}

	// "versions" is an array for bare-name views and a plain string when
	// only one version exists.
	versions := doc.Get("versions")
	switch {
	case versions.IsArray():
		for _, v := range versions.Array() {
			meta.Versions = append(meta.Versions, v.String())
		}
	case versions.Exists():
		meta.Versions = []string{versions.String()}
	}

	return meta, nil
}

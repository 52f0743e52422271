// Package config builds the PublishConfig for a run.
//
// Values are layered with github.com/spf13/viper, highest precedence first:
//
//	command-line flags > NPM_OTP_PUBLISH_* environment > YAML config file > defaults
//
// The environment is passed in by the caller rather than read from the
// process, so only the prefixed variables the caller hands over can
// influence the configuration. The YAML file is decoded with gopkg.in/yaml.v3
// and merged into viper as a plain map.
package config

import (
	"fmt"
	"os"
	"strings"

	"github.com/spf13/pflag"
	"github.com/spf13/viper"
	"gopkg.in/yaml.v3"

	"github.com/shinji-kodama/npm-otp-publish/internal/model"
)

// EnvPrefix is the prefix of environment variables read as configuration.
// NPM_OTP_PUBLISH_NPM_TOKEN sets "npm-token", and so on.
const EnvPrefix = "NPM_OTP_PUBLISH"

// Configuration keys. Flags, environment variables and YAML keys share
// these names.
const (
	KeyNPMToken       = "npm-token"
	KeyOTPToken       = "otp-token"
	KeyOTPURL         = "otp-url"
	KeyTag            = "tag"
	KeyVersion        = "version"
	KeyProvenance     = "provenance"
	KeyAccess         = "access"
	KeyDir            = "dir"
	KeyEnvPassthrough = "env-passthrough"
)

// keys lists every configuration key.
var keys = []string{
	KeyNPMToken,
	KeyOTPToken,
	KeyOTPURL,
	KeyTag,
	KeyVersion,
	KeyProvenance,
	KeyAccess,
	KeyDir,
	KeyEnvPassthrough,
}

// LoadOptions controls where configuration is read from.
type LoadOptions struct {
	// ConfigFilePath is an optional YAML file. Empty means no file.
	ConfigFilePath string

	// Flags holds the parsed command-line flags registered with
	// RegisterFlags. Only flags the user actually set override other layers.
	Flags *pflag.FlagSet

	// Environ is an os.Environ-style list. Only NPM_OTP_PUBLISH_* entries
	// are used.
	Environ []string
}

// RegisterFlags adds the publish configuration flags to fs.
func RegisterFlags(fs *pflag.FlagSet) {
	fs.String(KeyNPMToken, "", "npm automation token written to the npm user config")
	fs.String(KeyOTPToken, "", "token for the OTP provider; enables publishing with --otp")
	fs.String(KeyOTPURL, "", "base URL of the OTP provider; the token is appended")
	fs.String(KeyTag, model.DefaultTag, "distribution tag to publish under")
	fs.String(KeyVersion, "", "version being published (a leading \"v\" is ignored)")
	fs.Bool(KeyProvenance, false, "publish with a provenance attestation")
	fs.String(KeyAccess, "", "access level: public or restricted")
	fs.String(KeyDir, ".", "package directory containing package.json")
	fs.StringSlice(KeyEnvPassthrough, nil,
		"environment variables passed to npm publish when --provenance is set")
}

// Load resolves the configuration layers into a PublishConfig.
//
// Load only decodes values; the publish policy is checked by
// model.PublishConfig.Validate.
func Load(opts LoadOptions) (*model.PublishConfig, error) {
	v := viper.New()

	v.SetDefault(KeyTag, model.DefaultTag)
	v.SetDefault(KeyDir, ".")

	// Lowest explicit layer: the YAML file.
	if opts.ConfigFilePath != "" {
		fileValues, err := readYAML(opts.ConfigFilePath)
		if err != nil {
			return nil, err
		}
		if err := v.MergeConfigMap(fileValues); err != nil {
			return nil, model.WrapCLIError(model.ExitInvalidConfig,
				fmt.Sprintf("failed to load config file %s", opts.ConfigFilePath), err)
		}
	}

	// Environment overrides the file.
	if envValues := envLayer(opts.Environ); len(envValues) > 0 {
		if err := v.MergeConfigMap(envValues); err != nil {
			return nil, model.WrapCLIError(model.ExitInvalidConfig,
				"failed to load environment configuration", err)
		}
	}

	// Flags override everything.
	if opts.Flags != nil {
		for _, key := range keys {
			if f := opts.Flags.Lookup(key); f != nil {
				if err := v.BindPFlag(key, f); err != nil {
					return nil, fmt.Errorf("failed to bind flag %q: %w", key, err)
				}
			}
		}
	}

	access, err := model.ParseAccessLevel(v.GetString(KeyAccess))
	if err != nil {
		return nil, model.WrapCLIError(model.ExitInvalidConfig, "invalid configuration", err)
	}

	return &model.PublishConfig{
		NPMToken:       strings.TrimSpace(v.GetString(KeyNPMToken)),
		OTPToken:       strings.TrimSpace(v.GetString(KeyOTPToken)),
		OTPURL:         strings.TrimSpace(v.GetString(KeyOTPURL)),
		Tag:            strings.TrimSpace(v.GetString(KeyTag)),
		Version:        model.NormalizeVersion(v.GetString(KeyVersion)),
		Provenance:     v.GetBool(KeyProvenance),
		Access:         access,
		Dir:            v.GetString(KeyDir),
		EnvPassthrough: cleanList(v.GetStringSlice(KeyEnvPassthrough)),
	}, nil
}

// readYAML decodes a YAML config file into a map keyed by configuration key.
func readYAML(path string) (map[string]any, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		if os.IsNotExist(err) {
			return nil, model.WrapCLIError(model.ExitInvalidConfig,
				fmt.Sprintf("config file not found: %s", path), err)
		}
		return nil, fmt.Errorf("failed to read config file: %w", err)
	}

	values := map[string]any{}
	if err := yaml.Unmarshal(data, &values); err != nil {
		return nil, model.WrapCLIError(model.ExitInvalidConfig,
			fmt.Sprintf("failed to parse config file %s", path), err)
	}

	for key := range values {
		if !isKnownKey(key) {
			return nil, model.NewCLIError(model.ExitInvalidConfig,
				fmt.Sprintf("unknown key %q in config file %s", key, path))
		}
	}
	return values, nil
}

// envLayer extracts NPM_OTP_PUBLISH_* entries from environ.
func envLayer(environ []string) map[string]any {
	values := map[string]any{}
	for _, entry := range environ {
		name, value, ok := strings.Cut(entry, "=")
		if !ok {
			continue
		}
		key, ok := envNameToKey(name)
		if !ok {
			continue
		}
		if key == KeyEnvPassthrough {
			values[key] = strings.Split(value, ",")
			continue
		}
		values[key] = value
	}
	return values
}

// EnvName returns the environment variable name for a configuration key.
func EnvName(key string) string {
	return EnvPrefix + "_" + strings.ToUpper(strings.ReplaceAll(key, "-", "_"))
}

// envNameToKey maps an environment variable name back to a key.
func envNameToKey(name string) (string, bool) {
	for _, key := range keys {
		if EnvName(key) == name {
			return key, true
		}
	}
	return "", false
}

func isKnownKey(key string) bool {
	for _, k := range keys {
		if k == key {
			return true
		}
	}
	return false
}

// cleanList trims entries and drops empty ones.
func cleanList(items []string) []string {
	var out []string
	for _, item := range items {
		if item = strings.TrimSpace(item); item != "" {
			out = append(out, item)
		}
	}
	return out
}

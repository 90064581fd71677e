// Package config loads tsconvert settings by layering defaults, an
// optional YAML file, TSCONVERT_ environment variables, and
// command-line flags, later layers winning.
package config

import (
	"fmt"
	"os"
	"strings"

	kjson "github.com/knadh/koanf/parsers/json"
	"github.com/knadh/koanf/parsers/yaml"
	"github.com/knadh/koanf/providers/env"
	"github.com/knadh/koanf/providers/file"
	"github.com/knadh/koanf/providers/posflag"
	"github.com/knadh/koanf/providers/structs"
	"github.com/knadh/koanf/v2"
	"github.com/spf13/pflag"
)

// EnvPrefix is stripped from the environment variables read by Load.
// A double underscore descends into a section, so TSCONVERT_VCF__PLOIDY
// sets vcf.ploidy.
const EnvPrefix = "TSCONVERT_"

// DefaultFile is the config file read when none is named explicitly.
// A tsconvert.json sibling works too; the parser follows the
// extension.
const DefaultFile = "tsconvert.yaml"

// Config holds the runtime settings of the tsconvert CLI.
type Config struct {
	LogLevel  string `koanf:"log_level"`
	Precision int    `koanf:"precision"`
	VCF       VCF    `koanf:"vcf"`
}

// VCF holds the settings of the VCF encoder.
type VCF struct {
	Ploidy int    `koanf:"ploidy"`
	Contig string `koanf:"contig"`
}

func defaults() Config {
	return Config{
		LogLevel:  "info",
		Precision: 14,
		VCF:       VCF{Ploidy: 1, Contig: "1"},
	}
}

// FindFile returns the config file to read when the user names none:
// $TSCONVERT_CONFIG if set, otherwise ./tsconvert.yaml or
// ./tsconvert.json if present, otherwise nothing.
func FindFile() string {
	if path := os.Getenv(EnvPrefix + "CONFIG"); path != "" {
		return path
	}
	for _, path := range []string{DefaultFile, "tsconvert.json"} {
		if _, err := os.Stat(path); err == nil {
			return path
		}
	}
	return ""
}

// Load builds the configuration. path names the YAML file to layer
// over the defaults; empty means no file. flags, when non-nil,
// contributes the values of explicitly set flags as the final layer.
func Load(path string, flags *pflag.FlagSet) (*Config, error) {
	k := koanf.New(".")
	if err := k.Load(structs.Provider(defaults(), "koanf"), nil); err != nil {
		return nil, fmt.Errorf("config defaults: %w", err)
	}

	if path != "" {
		if err := k.Load(file.Provider(path), parserFor(path)); err != nil {
			return nil, fmt.Errorf("config file %s: %w", path, err)
		}
	}

	if err := k.Load(env.Provider(EnvPrefix, ".", envToKey), nil); err != nil {
		return nil, fmt.Errorf("config environment: %w", err)
	}

	if flags != nil {
		provider := posflag.ProviderWithValue(flags, ".", k, flagToKey)
		if err := k.Load(provider, nil); err != nil {
			return nil, fmt.Errorf("config flags: %w", err)
		}
	}

	var cfg Config
	if err := k.Unmarshal("", &cfg); err != nil {
		return nil, fmt.Errorf("config: %w", err)
	}
	return &cfg, nil
}

func parserFor(path string) koanf.Parser {
	if strings.HasSuffix(path, ".json") {
		return kjson.Parser()
	}
	return yaml.Parser()
}

func envToKey(name string) string {
	key := strings.ToLower(strings.TrimPrefix(name, EnvPrefix))
	if key == "config" {
		// Consumed by FindFile, not a setting.
		return ""
	}
	return strings.ReplaceAll(key, "__", ".")
}

// flagToKey maps flag names onto config keys. The VCF flags live in
// the vcf section; the rest map dash to underscore.
func flagToKey(key, value string) (string, any) {
	switch key {
	case "ploidy":
		return "vcf.ploidy", value
	case "contig":
		return "vcf.contig", value
	case "config":
		return "", value
	}
	return strings.ReplaceAll(key, "-", "_"), value
}

// Package config provides the Viper-backed settings for recomb-gvcf: a
// YAML file at ~/.recomb-gvcf.yaml, env-var overrides, and
// viper.SetDefault-seeded defaults, unmarshaled into a typed struct
// instead of read ad hoc via viper.Get at call sites.
package config

import (
	"errors"
	"io/fs"
	"os"
	"path/filepath"

	"github.com/spf13/viper"

	"github.com/maize-genetics/recomb-gvcf/internal/corerr"
)

const envPrefix = "RECOMB_GVCF"

// Config holds every setting of the config file. The recombine
// subcommand reads PhaseAWorkers (unless --phase-a-workers is given) and
// both recombine and mutate read AuditDBPath; ReferenceFASTA,
// MutateWorkers and LogLevel are loaded and shown by `config` but no
// subcommand reads them.
type Config struct {
	ReferenceFASTA string `mapstructure:"reference_fasta"`
	AuditDBPath    string `mapstructure:"audit_db_path"`
	PhaseAWorkers  int    `mapstructure:"phase_a_workers"`
	MutateWorkers  int    `mapstructure:"mutate_workers"`
	LogLevel       string `mapstructure:"log_level"`
}

func setDefaults(v *viper.Viper) {
	v.SetDefault("reference_fasta", "")
	v.SetDefault("audit_db_path", defaultAuditDBPath())
	v.SetDefault("phase_a_workers", 1)
	v.SetDefault("mutate_workers", 1)
	v.SetDefault("log_level", "info")
}

func defaultAuditDBPath() string {
	home, err := os.UserHomeDir()
	if err != nil {
		return "recomb-gvcf.duckdb"
	}
	return filepath.Join(home, ".recomb-gvcf.duckdb")
}

// OpenViper wires a fresh *viper.Viper against explicitPath if given,
// else ~/.recomb-gvcf.yaml, with defaults seeded and RECOMB_GVCF_-prefixed
// environment overrides applied. A missing config file is not an error.
// The `config show/get/set` subcommands use this directly so that a read
// and a subsequent write target the same file; Load wraps it for callers
// that just want the typed settings.
func OpenViper(explicitPath string) (*viper.Viper, error) {
	v := viper.New()
	setDefaults(v)

	if explicitPath != "" {
		v.SetConfigFile(explicitPath)
	} else {
		home, err := os.UserHomeDir()
		if err != nil {
			return nil, corerr.IO("config", err)
		}
		v.AddConfigPath(home)
		v.SetConfigName(".recomb-gvcf")
		v.SetConfigType("yaml")
	}

	v.SetEnvPrefix(envPrefix)
	v.AutomaticEnv()

	if err := v.ReadInConfig(); err != nil {
		if _, ok := err.(viper.ConfigFileNotFoundError); !ok && !errors.Is(err, fs.ErrNotExist) {
			return nil, corerr.IO("config", err)
		}
	}

	return v, nil
}

// Load returns the typed Config settings, applying the same precedence
// as OpenViper.
func Load(explicitPath string) (*Config, error) {
	v, err := OpenViper(explicitPath)
	if err != nil {
		return nil, err
	}

	var cfg Config
	if err := v.Unmarshal(&cfg); err != nil {
		return nil, corerr.Malformed("config", 0, err)
	}
	return &cfg, nil
}

// ConfigFilePath returns the path Viper would read/write for the
// show/get/set subcommands when no explicit path is given.
func ConfigFilePath() (string, error) {
	home, err := os.UserHomeDir()
	if err != nil {
		return "", corerr.IO("config", err)
	}
	return filepath.Join(home, ".recomb-gvcf.yaml"), nil
}

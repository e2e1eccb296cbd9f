// Package config loads filedrecipes settings from file, environment and flags.
package config

import (
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"strings"
	"time"

	"github.com/spf13/viper"

	"github.com/ochairo/filedrecipes/internal/domain/interfaces"
)

// EnvPrefix is prepended to every environment override, FILEDRECIPES_LOG_LEVEL for log.level
const EnvPrefix = "FILEDRECIPES"

// Keys
const (
	KeyFile              = "file"
	KeyLogLevel          = "log.level"
	KeyViewPause         = "view.pause"
	KeySigningPublicKey  = "signing.public_key"
	KeySigningPrivateKey = "signing.private_key"
	KeySigningPassphrase = "signing.passphrase"
	KeySigningRequire    = "signing.require"
	KeyWatchDebounce     = "watch.debounce"
)

// Config is the resolved configuration
type Config struct {
	File     string
	LogLevel string
	View     ViewConfig
	Signing  SigningConfig
	Watch    WatchConfig

	// Source is the config file that was read, empty when none was found
	Source string
}

// ViewConfig controls the terminal view
type ViewConfig struct {
	Pause bool
}

// SigningConfig names the OpenPGP key files
type SigningConfig struct {
	PublicKey  string
	PrivateKey string
	Passphrase string
	// Require refuses to load a recipe file without a valid signature
	Require bool
}

// WatchConfig controls the file watcher
type WatchConfig struct {
	Debounce time.Duration
}

// New returns a viper instance with defaults and environment binding set.
// Callers bind flags onto it before calling Load.
func New() *viper.Viper {
	v := viper.New()
	v.SetConfigType("yaml")

	v.SetDefault(KeyFile, "recipes.txt")
	v.SetDefault(KeyLogLevel, "info")
	v.SetDefault(KeyViewPause, true)
	v.SetDefault(KeySigningPublicKey, "")
	v.SetDefault(KeySigningPrivateKey, "")
	v.SetDefault(KeySigningPassphrase, "")
	v.SetDefault(KeySigningRequire, false)
	v.SetDefault(KeyWatchDebounce, 200*time.Millisecond)

	v.SetEnvPrefix(EnvPrefix)
	v.SetEnvKeyReplacer(strings.NewReplacer(".", "_"))
	v.AutomaticEnv()
	return v
}

// SearchPaths returns the config file locations tried when none is given
func SearchPaths() []string {
	paths := []string{"filedrecipes.yml"}
	if home, err := os.UserHomeDir(); err == nil {
		paths = append(paths, filepath.Join(home, ".config", "filedrecipes", "config.yml"))
	}
	return paths
}

// Load reads configFile, or the first existing file from SearchPaths when
// configFile is empty, and resolves the final configuration.
// A missing explicit configFile is an error; missing search paths are not.
func Load(v *viper.Viper, configFile string) (*Config, error) {
	source := configFile
	if source == "" {
		for _, candidate := range SearchPaths() {
			if _, err := os.Stat(candidate); err == nil {
				source = candidate
				break
			}
		}
	}

	if source != "" {
		v.SetConfigFile(source)
		if err := v.ReadInConfig(); err != nil {
			return nil, fmt.Errorf("failed to read config %s: %w", source, err)
		}
	}

	cfg := &Config{
		File:     v.GetString(KeyFile),
		LogLevel: v.GetString(KeyLogLevel),
		View: ViewConfig{
			Pause: v.GetBool(KeyViewPause),
		},
		Signing: SigningConfig{
			PublicKey:  v.GetString(KeySigningPublicKey),
			PrivateKey: v.GetString(KeySigningPrivateKey),
			Passphrase: v.GetString(KeySigningPassphrase),
			Require:    v.GetBool(KeySigningRequire),
		},
		Watch: WatchConfig{
			Debounce: v.GetDuration(KeyWatchDebounce),
		},
		Source: source,
	}
	return cfg, nil
}

// Validate reports every invalid setting
func (c *Config) Validate() error {
	var errs []error

	if strings.TrimSpace(c.File) == "" {
		errs = append(errs, fmt.Errorf("%s: must not be empty", KeyFile))
	}
	if _, err := interfaces.ParseLevel(c.LogLevel); err != nil {
		errs = append(errs, fmt.Errorf("%s: %w", KeyLogLevel, err))
	}
	if c.Signing.Require && c.Signing.PublicKey == "" && c.Signing.PrivateKey == "" {
		errs = append(errs, fmt.Errorf("%s: requires %s or %s", KeySigningRequire, KeySigningPublicKey, KeySigningPrivateKey))
	}
	if c.Watch.Debounce <= 0 {
		errs = append(errs, fmt.Errorf("%s: must be positive, got %s", KeyWatchDebounce, c.Watch.Debounce))
	}

	return errors.Join(errs...)
}

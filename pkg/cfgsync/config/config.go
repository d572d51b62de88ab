// Package config loads cfgsync settings from a YAML file, CFGSYNC_*
// environment variables and command line flags, locates the backup root
// for the configured storage engine and reads the application catalog.
package config

import (
	"os"
	"path/filepath"
	"strings"

	"github.com/cockroachdb/errors"
	"github.com/spf13/viper"
)

// StorageEngine names where the synchronised backup folder lives.
type StorageEngine string

const (
	EngineDropbox     StorageEngine = "dropbox"
	EngineGoogleDrive StorageEngine = "google_drive"
	EngineFileSystem  StorageEngine = "file_system"
)

const (
	// EnvPrefix prefixes every environment override.
	EnvPrefix = "CFGSYNC"
	// DefaultDirectory is created inside the storage folder.
	DefaultDirectory = "Mackup"

	configName = ".cfgsync"
)

// Config is the complete cfgsync configuration.
type Config struct {
	Home                 string        `mapstructure:"home"`
	Storage              StorageConfig `mapstructure:"storage"`
	ApplicationsDir      string        `mapstructure:"applications_dir"`
	ApplicationsToSync   []string      `mapstructure:"applications_to_sync"`
	ApplicationsToIgnore []string      `mapstructure:"applications_to_ignore"`
	DryRun               bool          `mapstructure:"dry_run"`
	Verbose              bool          `mapstructure:"verbose"`
	LogLevel             string        `mapstructure:"log_level"`
}

// StorageConfig selects the storage engine.
type StorageConfig struct {
	Engine    StorageEngine `mapstructure:"engine"`
	Path      string        `mapstructure:"path"`
	Directory string        `mapstructure:"directory"`
}

// Load reads configuration into v. An explicit cfgFile must exist; the
// default $HOME/.cfgsync.yaml is optional. Flags must already be bound
// on v by the caller.
func Load(v *viper.Viper, cfgFile string) (*Config, error) {
	userHome, err := os.UserHomeDir()
	if err != nil {
		userHome = ""
	}

	v.SetDefault("home", userHome)
	v.SetDefault("storage.engine", string(EngineDropbox))
	v.SetDefault("storage.path", "")
	v.SetDefault("storage.directory", DefaultDirectory)
	v.SetDefault("applications_dir", "")
	v.SetDefault("applications_to_sync", []string{})
	v.SetDefault("applications_to_ignore", []string{})
	v.SetDefault("dry_run", false)
	v.SetDefault("verbose", false)
	v.SetDefault("log_level", "warn")

	v.SetEnvPrefix(EnvPrefix)
	v.SetEnvKeyReplacer(strings.NewReplacer(".", "_"))
	v.AutomaticEnv()

	v.SetConfigType("yaml")
	if cfgFile != "" {
		v.SetConfigFile(os.ExpandEnv(cfgFile))
	} else {
		v.SetConfigName(configName)
		if userHome != "" {
			v.AddConfigPath(userHome)
		}
	}

	if err := v.ReadInConfig(); err != nil {
		var notFound viper.ConfigFileNotFoundError
		if cfgFile != "" || !errors.As(err, &notFound) {
			return nil, errors.Wrap(err, "failed to read config file")
		}
	}

	var cfg Config
	if err := v.Unmarshal(&cfg); err != nil {
		return nil, errors.Wrap(err, "failed to parse config")
	}

	cfg.expandEnv()
	if err := cfg.Validate(); err != nil {
		return nil, errors.Wrap(err, "invalid configuration")
	}
	return &cfg, nil
}

func (c *Config) expandEnv() {
	c.Home = expandHome(os.ExpandEnv(c.Home), c.Home)
	c.Storage.Path = expandHome(os.ExpandEnv(c.Storage.Path), c.Home)
	c.ApplicationsDir = expandHome(os.ExpandEnv(c.ApplicationsDir), c.Home)
}

func expandHome(path, home string) string {
	if path == "~" {
		return home
	}
	if strings.HasPrefix(path, "~/") {
		return filepath.Join(home, path[2:])
	}
	return path
}

// Validate checks the configuration for errors.
func (c *Config) Validate() error {
	if c.Home == "" {
		return errors.New("home is required")
	}
	if !filepath.IsAbs(c.Home) {
		return errors.Newf("home must be an absolute path: %s", c.Home)
	}

	switch c.Storage.Engine {
	case EngineDropbox, EngineGoogleDrive:
	case EngineFileSystem:
		if c.Storage.Path == "" {
			return errors.New("storage.path is required for the file_system engine")
		}
	default:
		return errors.Newf("invalid storage.engine: %s (must be dropbox, google_drive or file_system)", c.Storage.Engine)
	}

	if c.Storage.Directory == "" || filepath.IsAbs(c.Storage.Directory) {
		return errors.Newf("storage.directory must be a relative path: %q", c.Storage.Directory)
	}
	return nil
}

// BackupRoot returns the absolute folder backups are written to.
func (c *Config) BackupRoot() (string, error) {
	var folder string
	var err error

	switch c.Storage.Engine {
	case EngineDropbox:
		folder, err = DropboxFolder(c.Home)
	case EngineGoogleDrive:
		folder, err = GoogleDriveFolder(c.Home)
	case EngineFileSystem:
		folder = c.Storage.Path
		if !filepath.IsAbs(folder) {
			folder = filepath.Join(c.Home, folder)
		}
	default:
		err = errors.Newf("invalid storage.engine: %s", c.Storage.Engine)
	}
	if err != nil {
		return "", err
	}
	return filepath.Join(folder, c.Storage.Directory), nil
}

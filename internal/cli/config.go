package cli

import (
	"errors"
	"fmt"
	"os"
	"path/filepath"

	"github.com/spf13/cobra"
	"github.com/spf13/viper"
	"gopkg.in/yaml.v3"

	"github.com/tpsoftworks/todo/internal/logging"
	"github.com/tpsoftworks/todo/internal/paths"
	"github.com/tpsoftworks/todo/pkg/todo"
	"github.com/tpsoftworks/todo/pkg/types"
)

const (
	configFileName = "config"
	configFileType = "yaml"
	configFileExt  = "config.yaml"

	cfgKeyBackend  = "backend"
	cfgKeyDataDir  = "data_dir"
	cfgKeyBackup   = "backup"
	cfgKeyLogLevel = "log_level"
)

// defaultConfigYAML is the content written to config.yaml on first run.
const defaultConfigYAML = `# todo configuration

# Storage backend: file, memory or sqlite
backend: file

# Copy an old-format database aside before upgrading it
backup: true

# Data directory (optional; overridable by --data-dir)
# data_dir:

# Log level (optional; overrides -v): debug, info, warn or error
# log_level:
`

// loadConfig reads config.yaml from configDir using Viper. It creates the
// directory and a default config.yaml on first run. TODO_BACKEND and
// TODO_LOG_LEVEL override the file.
func loadConfig(configDir string) (*viper.Viper, error) {
	if err := os.MkdirAll(configDir, 0o755); err != nil {
		return nil, fmt.Errorf("ensure config dir: %w", err)
	}
	if err := ensureDefaultConfigFile(configDir); err != nil {
		return nil, fmt.Errorf("ensure default config: %w", err)
	}

	defaults := types.DefaultConfig()
	v := viper.New()
	v.SetDefault(cfgKeyBackend, defaults.Backend)
	v.SetDefault(cfgKeyBackup, defaults.Backup)
	v.SetDefault(cfgKeyDataDir, "")
	v.SetDefault(cfgKeyLogLevel, "")
	v.SetConfigName(configFileName)
	v.SetConfigType(configFileType)
	v.AddConfigPath(configDir)
	_ = v.BindEnv(cfgKeyBackend, "TODO_BACKEND")
	_ = v.BindEnv(cfgKeyLogLevel, "TODO_LOG_LEVEL")

	if err := v.ReadInConfig(); err != nil {
		var notFound viper.ConfigFileNotFoundError
		if errors.As(err, &notFound) {
			return v, nil
		}
		return nil, fmt.Errorf("read config: %w", err)
	}
	return v, nil
}

// ensureDefaultConfigFile creates a default config.yaml if the file does not
// exist in the config directory.
func ensureDefaultConfigFile(configDir string) error {
	path := filepath.Join(configDir, configFileExt)

	_, err := os.Stat(path)
	if err == nil {
		return nil
	}
	if !os.IsNotExist(err) {
		return fmt.Errorf("stat config file: %w", err)
	}
	return os.WriteFile(path, []byte(defaultConfigYAML), 0o644)
}

// decodeConfig converts the loaded settings into a validated Config.
func decodeConfig(v *viper.Viper) (types.Config, error) {
	var cfg types.Config
	if err := v.Unmarshal(&cfg); err != nil {
		return types.Config{}, fmt.Errorf("decode config: %w", err)
	}
	if err := cfg.Validate(); err != nil {
		return types.Config{}, fmt.Errorf("config %s: %w", v.ConfigFileUsed(), err)
	}
	return cfg, nil
}

// settings loads the configuration and sets up logging for a command.
// The returned Config has DataDir resolved.
func (a *app) settings(cmd *cobra.Command) (types.Config, error) {
	configDir, err := paths.ResolveConfigDir(a.flags.configDir)
	if err != nil {
		return types.Config{}, sysErr("resolve config dir: %w", err)
	}
	v, err := loadConfig(configDir)
	if err != nil {
		return types.Config{}, sysErr("%w", err)
	}
	cfg, err := decodeConfig(v)
	if err != nil {
		return types.Config{}, err
	}

	level := logging.LevelForVerbosity(a.flags.verbose)
	level = logging.ParseLevel(cfg.LogLevel, level)
	a.logger = logging.New(cmd.ErrOrStderr(), level)

	project := ""
	if !a.flags.global {
		project = a.projectDataDir()
	}
	dataDir, err := paths.ResolveDataDir(a.flags.dataDir, cfg.DataDir, project)
	if err != nil {
		return types.Config{}, sysErr("resolve data dir: %w", err)
	}
	cfg.DataDir = dataDir
	a.logger.Debug("resolved directories", "config_dir", configDir, "data_dir", dataDir, "backend", cfg.Backend)
	return cfg, nil
}

// projectDataDir returns the project-local data directory when the
// working directory is inside a git project that has one.
func (a *app) projectDataDir() string {
	wd, err := a.getwd()
	if err != nil {
		return ""
	}
	root, ok := a.projectRoot(wd)
	if !ok {
		return ""
	}
	local, _ := paths.ProjectDataDir(root)
	return local
}

// openDatabase opens the database selected by configuration and flags.
// The caller must Close it.
func (a *app) openDatabase(cmd *cobra.Command) (types.Database, error) {
	cfg, err := a.settings(cmd)
	if err != nil {
		return nil, err
	}
	return a.open(cfg)
}

func (a *app) open(cfg types.Config) (types.Database, error) {
	db, err := todo.Open(cfg, a.logger)
	if err != nil {
		if isConfigError(err) {
			return nil, err
		}
		return nil, sysErr("open database: %w", err)
	}
	return db, nil
}

func isConfigError(err error) bool {
	return errors.Is(err, types.ErrBackendEmpty) ||
		errors.Is(err, types.ErrBackendUnknown) ||
		errors.Is(err, types.ErrLogLevelUnknown)
}

func newConfigCmd(a *app) *cobra.Command {
	return &cobra.Command{
		Use:   "config",
		Short: "Print the effective configuration",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			cfg, err := a.settings(cmd)
			if err != nil {
				return err
			}
			if a.flags.jsonMode {
				return writeJSON(cmd.OutOrStdout(), cfg)
			}
			out, err := yaml.Marshal(&cfg)
			if err != nil {
				return fmt.Errorf("marshal config: %w", err)
			}
			_, err = cmd.OutOrStdout().Write(out)
			return err
		},
	}
}

package cli

import (
	"fmt"
	"os"
	"path/filepath"

	"github.com/spf13/viper"
	"gopkg.in/yaml.v3"

	"github.com/mesh-intelligence/kanban/internal/paths"
	"github.com/mesh-intelligence/kanban/pkg/types"
)

// Config keys read from config.yaml.
const (
	cfgKeyBackend       = "backend"
	cfgKeyDataDir       = "data_dir"
	cfgKeyBlobKey       = "blob_key"
	cfgKeySyncStrategy  = "sync_strategy"
	cfgKeyBatchSize     = "batch_size"
	cfgKeyBatchInterval = "batch_interval"
	cfgKeyRedisURL      = "redis_url"
	cfgKeyRedisPrefix   = "redis_prefix"
	cfgKeyAzureConn     = "azure_connection_string"
	cfgKeyAzureTable    = "azure_table"
	cfgKeyLogLevel      = "log_level"
	cfgKeyListenAddr    = "listen_addr"
	cfgKeyPipeline      = "pipeline"
)

const (
	defaultBackend    = types.BackendSQLite
	defaultLogLevel   = "info"
	defaultListenAddr = "127.0.0.1:8080"
)

// defaultConfig is written to config.yaml the first time a config directory
// is used.
type defaultConfig struct {
	Backend      string        `yaml:"backend"`
	SyncStrategy string        `yaml:"sync_strategy"`
	LogLevel     string        `yaml:"log_level"`
	ListenAddr   string        `yaml:"listen_addr"`
	Pipeline     []types.Stage `yaml:"pipeline"`
}

// settings is everything the commands need from config.yaml and the flags.
type settings struct {
	board      types.Config
	logLevel   string
	listenAddr string
}

// loadConfig reads config.yaml from configDir, creating the directory and a
// default file first if they are missing.
func loadConfig(configDir string) (*viper.Viper, error) {
	if err := os.MkdirAll(configDir, 0o755); err != nil {
		return nil, fmt.Errorf("create config dir: %w", err)
	}
	if err := ensureDefaultConfigFile(configDir); err != nil {
		return nil, fmt.Errorf("write default config: %w", err)
	}

	v := viper.New()
	v.SetDefault(cfgKeyBackend, defaultBackend)
	v.SetDefault(cfgKeyLogLevel, defaultLogLevel)
	v.SetDefault(cfgKeyListenAddr, defaultListenAddr)
	v.SetConfigFile(filepath.Join(configDir, paths.ConfigFile))
	v.SetConfigType("yaml")

	if err := v.ReadInConfig(); err != nil {
		return nil, fmt.Errorf("read config: %w", err)
	}
	return v, nil
}

func ensureDefaultConfigFile(configDir string) error {
	path := filepath.Join(configDir, paths.ConfigFile)
	if _, err := os.Stat(path); err == nil {
		return nil
	} else if !os.IsNotExist(err) {
		return err
	}

	data, err := yaml.Marshal(defaultConfig{
		Backend:      defaultBackend,
		SyncStrategy: types.SyncImmediate,
		LogLevel:     defaultLogLevel,
		ListenAddr:   defaultListenAddr,
		Pipeline:     types.DefaultPipeline().Stages,
	})
	if err != nil {
		return err
	}
	header := []byte("# kanban configuration\n# backends: memory, file, sqlite, redis, aztables\n")
	return os.WriteFile(path, append(header, data...), 0o644)
}

// readSettings maps viper values onto settings. dataDirFlag overrides
// data_dir; the result is validated.
func readSettings(v *viper.Viper, dataDirFlag string) (settings, error) {
	dataDir, err := paths.ResolveDataDir(dataDirFlag, v.GetString(cfgKeyDataDir))
	if err != nil {
		return settings{}, fmt.Errorf("resolve data dir: %w", err)
	}

	cfg := types.Config{
		Backend:               v.GetString(cfgKeyBackend),
		DataDir:               dataDir,
		Key:                   v.GetString(cfgKeyBlobKey),
		SyncStrategy:          v.GetString(cfgKeySyncStrategy),
		BatchSize:             v.GetInt(cfgKeyBatchSize),
		BatchInterval:         v.GetInt(cfgKeyBatchInterval),
		RedisURL:              v.GetString(cfgKeyRedisURL),
		RedisPrefix:           v.GetString(cfgKeyRedisPrefix),
		AzureConnectionString: v.GetString(cfgKeyAzureConn),
		AzureTable:            v.GetString(cfgKeyAzureTable),
	}
	if v.IsSet(cfgKeyPipeline) {
		if err := v.UnmarshalKey(cfgKeyPipeline, &cfg.Pipeline.Stages); err != nil {
			return settings{}, fmt.Errorf("read pipeline: %w", err)
		}
	}
	if err := cfg.Validate(); err != nil {
		return settings{}, fmt.Errorf("config: %w", err)
	}

	return settings{
		board:      cfg,
		logLevel:   v.GetString(cfgKeyLogLevel),
		listenAddr: v.GetString(cfgKeyListenAddr),
	}, nil
}

package types

import (
	"errors"
	"time"
)

// Config selects a blob store backend and the persistence parameters the
// store applies on top of it.
type Config struct {
	Backend string `json:"backend" yaml:"backend"`
	DataDir string `json:"data_dir" yaml:"data_dir"`

	// Key names the blob the board is stored under.
	Key string `json:"blob_key,omitempty" yaml:"blob_key,omitempty"`

	SyncStrategy  string `json:"sync_strategy,omitempty" yaml:"sync_strategy,omitempty"`
	BatchSize     int    `json:"batch_size,omitempty" yaml:"batch_size,omitempty"`
	BatchInterval int    `json:"batch_interval,omitempty" yaml:"batch_interval,omitempty"` // seconds

	RedisURL    string `json:"redis_url,omitempty" yaml:"redis_url,omitempty"`
	RedisPrefix string `json:"redis_prefix,omitempty" yaml:"redis_prefix,omitempty"`

	AzureConnectionString string `json:"azure_connection_string,omitempty" yaml:"azure_connection_string,omitempty"`
	AzureTable            string `json:"azure_table,omitempty" yaml:"azure_table,omitempty"`

	Pipeline Pipeline `json:"pipeline,omitempty" yaml:"pipeline,omitempty"`
}

// Supported backend names.
const (
	BackendMemory      = "memory"
	BackendFile        = "file"
	BackendSQLite      = "sqlite"
	BackendRedis       = "redis"
	BackendAzureTables = "aztables"
)

// Sync strategies control when the board is written back to the blob store.
const (
	SyncImmediate = "immediate"
	SyncOnClose   = "on_close"
	SyncBatch     = "batch"
)

// Defaults applied by the Get* accessors.
const (
	DefaultKey           = "kanbanState"
	DefaultBatchSize     = 10
	DefaultBatchInterval = 5
	DefaultRedisPrefix   = "kanban:"
	DefaultAzureTable    = "kanban"
)

// Config validation errors.
var (
	ErrBackendEmpty          = errors.New("backend must not be empty")
	ErrBackendUnknown        = errors.New("unknown backend")
	ErrSyncStrategyUnknown   = errors.New("unknown sync strategy")
	ErrBatchSizeInvalid      = errors.New("batch size must be positive")
	ErrBatchIntervalInvalid  = errors.New("batch interval must be positive")
	ErrRedisURLEmpty         = errors.New("redis backend requires redis_url")
	ErrConnectionStringEmpty = errors.New("aztables backend requires azure_connection_string")
)

var knownBackends = map[string]bool{
	BackendMemory:      true,
	BackendFile:        true,
	BackendSQLite:      true,
	BackendRedis:       true,
	BackendAzureTables: true,
}

var knownSyncStrategies = map[string]bool{
	SyncImmediate: true,
	SyncOnClose:   true,
	SyncBatch:     true,
}

// Validate checks that the Config is well-formed and returns one of the
// sentinel errors above on failure.
func (c Config) Validate() error {
	if c.Backend == "" {
		return ErrBackendEmpty
	}
	if !knownBackends[c.Backend] {
		return ErrBackendUnknown
	}
	if c.SyncStrategy != "" && !knownSyncStrategies[c.SyncStrategy] {
		return ErrSyncStrategyUnknown
	}
	if c.BatchSize < 0 {
		return ErrBatchSizeInvalid
	}
	if c.BatchInterval < 0 {
		return ErrBatchIntervalInvalid
	}
	switch c.Backend {
	case BackendRedis:
		if c.RedisURL == "" {
			return ErrRedisURLEmpty
		}
	case BackendAzureTables:
		if c.AzureConnectionString == "" {
			return ErrConnectionStringEmpty
		}
	}
	if len(c.Pipeline.Stages) > 0 {
		return c.Pipeline.Validate()
	}
	return nil
}

// GetKey returns the blob key, defaulting to DefaultKey.
func (c Config) GetKey() string {
	if c.Key == "" {
		return DefaultKey
	}
	return c.Key
}

// GetSyncStrategy returns the sync strategy, defaulting to SyncImmediate.
func (c Config) GetSyncStrategy() string {
	if c.SyncStrategy == "" {
		return SyncImmediate
	}
	return c.SyncStrategy
}

// GetBatchSize returns the batch size, defaulting to DefaultBatchSize.
func (c Config) GetBatchSize() int {
	if c.BatchSize <= 0 {
		return DefaultBatchSize
	}
	return c.BatchSize
}

// GetBatchInterval returns the batch flush interval.
func (c Config) GetBatchInterval() time.Duration {
	if c.BatchInterval <= 0 {
		return DefaultBatchInterval * time.Second
	}
	return time.Duration(c.BatchInterval) * time.Second
}

// GetRedisPrefix returns the key prefix for the redis backend.
func (c Config) GetRedisPrefix() string {
	if c.RedisPrefix == "" {
		return DefaultRedisPrefix
	}
	return c.RedisPrefix
}

// GetAzureTable returns the table name for the aztables backend.
func (c Config) GetAzureTable() string {
	if c.AzureTable == "" {
		return DefaultAzureTable
	}
	return c.AzureTable
}

// GetPipeline returns the configured pipeline, or DefaultPipeline when none
// is configured.
func (c Config) GetPipeline() Pipeline {
	if len(c.Pipeline.Stages) == 0 {
		return DefaultPipeline()
	}
	return c.Pipeline
}

package config

import "time"

// Config holds all application configuration.
// It organizes settings into logical groups for better maintainability.
type Config struct {
	Server     ServerConfig     `mapstructure:"server"     validate:"required"`
	Auth       AuthConfig       `mapstructure:"auth"       validate:"required"`
	Storage    StorageConfig    `mapstructure:"storage"    validate:"required"`
	Database   DatabaseConfig   `mapstructure:"database"`
	Processing ProcessingConfig `mapstructure:"processing" validate:"required"`
	Pagination PaginationConfig `mapstructure:"pagination" validate:"required"`
}

// ServerConfig contains all server-related configuration settings.
type ServerConfig struct {
	Port            int           `mapstructure:"port"             validate:"required,gt=0,lt=65536"`
	LogLevel        string        `mapstructure:"log_level"        validate:"required,oneof=debug info warn error"`
	ReadTimeout     time.Duration `mapstructure:"read_timeout"     validate:"gte=0"`
	WriteTimeout    time.Duration `mapstructure:"write_timeout"    validate:"gte=0"`
	ShutdownTimeout time.Duration `mapstructure:"shutdown_timeout" validate:"gt=0"`
	MetricsEnabled  bool          `mapstructure:"metrics_enabled"`
	// MaxUploadBytes bounds the size of a submission request body.
	MaxUploadBytes int64 `mapstructure:"max_upload_bytes" validate:"gt=0"`
}

// AuthConfig contains the shared-secret credentials accepted by the API.
type AuthConfig struct {
	// APIKey is compared against the x-api-key header.
	APIKey string `mapstructure:"api_key" validate:"required_without=APIKeyHash"`
	// APIKeyHash is a bcrypt hash of the API key; it takes precedence over APIKey.
	APIKeyHash string `mapstructure:"api_key_hash"`
	// JWTSecret enables Bearer tokens signed with HS256 when set.
	JWTSecret string `mapstructure:"jwt_secret" validate:"omitempty,min=32"`
}

// StorageConfig selects the submission backend and fixture locations.
type StorageConfig struct {
	Backend      string `mapstructure:"backend"        validate:"required,oneof=snapshot postgres"`
	FixturesDir  string `mapstructure:"fixtures_dir"   validate:"required"`
	TasksFile    string `mapstructure:"tasks_file"     validate:"required"`
	CatalogFile  string `mapstructure:"catalog_file"   validate:"required"`
	SnapshotPath string `mapstructure:"snapshot_path"  validate:"required"`
}

// DatabaseConfig contains all database-related configuration settings.
// It is only required when the postgres backend is selected.
type DatabaseConfig struct {
	URL             string        `mapstructure:"url"               validate:"omitempty,url"`
	MaxOpenConns    int           `mapstructure:"max_open_conns"    validate:"gte=0"`
	MaxIdleConns    int           `mapstructure:"max_idle_conns"    validate:"gte=0"`
	ConnMaxLifetime time.Duration `mapstructure:"conn_max_lifetime" validate:"gte=0"`
}

// ProcessingConfig controls the simulated recognition pipeline.
type ProcessingConfig struct {
	CompletionDelay time.Duration `mapstructure:"completion_delay" validate:"gte=0"`
	// StaggerInterval is added per item index when a batch is submitted.
	StaggerInterval time.Duration `mapstructure:"stagger_interval" validate:"gte=0"`
	ResultItems     int           `mapstructure:"result_items"     validate:"gt=0,lte=100"`
	WorkerCount     int           `mapstructure:"worker_count"     validate:"gt=0"`
	QueueSize       int           `mapstructure:"queue_size"       validate:"gt=0"`
	CallbackTimeout time.Duration `mapstructure:"callback_timeout" validate:"gt=0"`
	// RecoverPending re-arms completions for submissions left pending by a previous run.
	RecoverPending bool `mapstructure:"recover_pending"`
}

// PaginationConfig sets the defaults applied to task listings.
type PaginationConfig struct {
	DefaultLimit int `mapstructure:"default_limit" validate:"gt=0,ltefield=MaxLimit"`
	MaxLimit     int `mapstructure:"max_limit"     validate:"gt=0"`
}

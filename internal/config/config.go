package config

import (
	"fmt"
	"strings"
	"time"

	"github.com/rs/zerolog"
	"github.com/spf13/viper"
	"github.com/wb-go/wbf/zlog"

	"github.com/aliskhannn/photowatermark/internal/fonts"
	"github.com/aliskhannn/photowatermark/internal/model"
)

// Storage drivers.
const (
	DriverLocal = "local"
	DriverMinIO = "minio"
)

// Config holds the main configuration for the application.
type Config struct {
	Server    Server    `mapstructure:"server"`
	Database  Database  `mapstructure:"database"`
	Storage   Storage   `mapstructure:"storage"`
	Kafka     Kafka     `mapstructure:"kafka"`
	Retry     Retry     `mapstructure:"retry"`
	Fonts     Fonts     `mapstructure:"fonts"`
	Export    Export    `mapstructure:"export"`
	Templates Templates `mapstructure:"templates"`
	Log       Log       `mapstructure:"log"`
}

// Server holds HTTP server-related configuration.
type Server struct {
	HTTPPort string `mapstructure:"http_port"` // HTTP port to listen on
}

// Database holds database master and slave configuration.
// When disabled, templates are kept in the file named by Templates.Path.
type Database struct {
	Enabled bool           `mapstructure:"enabled"`
	Master  DatabaseNode   `mapstructure:"master"`
	Slaves  []DatabaseNode `mapstructure:"slaves"`

	MaxOpenConns    int           `mapstructure:"max_open_conns"`
	MaxIdleConns    int           `mapstructure:"max_idle_conns"`
	ConnMaxLifetime time.Duration `mapstructure:"conn_max_lifetime"`
}

// DatabaseNode holds connection parameters for a single database node.
type DatabaseNode struct {
	Host    string `mapstructure:"host"`
	Port    string `mapstructure:"port"`
	User    string `mapstructure:"user"`
	Pass    string `mapstructure:"pass"`
	Name    string `mapstructure:"name"`
	SSLMode string `mapstructure:"ssl_mode"`
}

// Storage selects where exported files are written.
// The local driver writes to the export output directory; the minio driver
// uses it as the object key prefix inside BucketName.
type Storage struct {
	Driver     string `mapstructure:"driver"`
	Endpoint   string `mapstructure:"endpoint"`
	AccessKey  string `mapstructure:"access_key"`
	SecretKey  string `mapstructure:"secret_key"`
	BucketName string `mapstructure:"bucket_name"`
	UseSSL     bool   `mapstructure:"use_ssl"`
}

// Kafka holds configuration for the export job queue.
type Kafka struct {
	Enabled bool     `mapstructure:"enabled"`
	GroupID string   `mapstructure:"group_id"` // Consumer group ID
	Topic   string   `mapstructure:"topic"`    // Kafka topic name
	Brokers []string `mapstructure:"brokers"`  // List of Kafka broker addresses
}

// Retry defines retry policy configuration.
type Retry struct {
	Attempts int           `mapstructure:"attempts"` // Number of retry attempts
	Delay    time.Duration `mapstructure:"delay"`    // Initial delay between retries
	Backoff  float64       `mapstructure:"backoff"`  // Backoff multiplier for delays
}

// Fonts lists font directories searched before the OS defaults.
type Fonts struct {
	Dirs      []string `mapstructure:"dirs"`
	UseSystem bool     `mapstructure:"use_system"` // also search the OS font directories
}

// Export holds the defaults applied to export requests.
type Export struct {
	OutputDir string `mapstructure:"output_dir"`
	Format    string `mapstructure:"format"`
	Quality   int    `mapstructure:"quality"`
	Prefix    string `mapstructure:"prefix"`
	Suffix    string `mapstructure:"suffix"`
}

// Templates configures the file-backed template store.
type Templates struct {
	Path string `mapstructure:"path"`
}

// Log configures the global log level.
type Log struct {
	Level string `mapstructure:"level"`
}

// DSN returns the PostgreSQL DSN string for connecting to this database node.
func (n DatabaseNode) DSN() string {
	return fmt.Sprintf(
		"postgres://%s:%s@%s:%s/%s?sslmode=%s",
		n.User, n.Pass, n.Host, n.Port, n.Name, n.SSLMode,
	)
}

// SearchDirs returns the configured font directories followed by the OS
// font directories when UseSystem is set.
func (f Fonts) SearchDirs() []string {
	dirs := append([]string(nil), f.Dirs...)
	if f.UseSystem {
		dirs = append(dirs, fonts.DefaultDirs()...)
	}
	return dirs
}

// Spec converts the export defaults into an ExportSpec without resizing.
func (e Export) Spec() (model.ExportSpec, error) {
	format, err := model.ParseFormat(e.Format)
	if err != nil {
		return model.ExportSpec{}, err
	}

	return model.ExportSpec{
		Format:    format,
		Quality:   model.ClampInt(e.Quality, 0, 100),
		Resize:    model.NoResize(),
		Prefix:    e.Prefix,
		Suffix:    e.Suffix,
		OutputDir: e.OutputDir,
	}, nil
}

// ApplyLevel sets the global zerolog level. An empty level keeps the current one.
func (l Log) ApplyLevel() error {
	if l.Level == "" {
		return nil
	}

	level, err := zerolog.ParseLevel(strings.ToLower(l.Level))
	if err != nil {
		return fmt.Errorf("invalid log level %q: %w", l.Level, err)
	}
	zerolog.SetGlobalLevel(level)

	return nil
}

func setDefaults(v *viper.Viper) {
	v.SetDefault("server.http_port", "8080")
	v.SetDefault("storage.driver", DriverLocal)
	v.SetDefault("retry.attempts", 3)
	v.SetDefault("retry.delay", time.Second)
	v.SetDefault("retry.backoff", 2.0)
	v.SetDefault("fonts.use_system", true)
	v.SetDefault("export.output_dir", "./output")
	v.SetDefault("export.format", string(model.JPEG))
	v.SetDefault("export.quality", 95)
	v.SetDefault("export.suffix", model.DefaultSuffix)
	v.SetDefault("templates.path", "./config/templates.json")
	v.SetDefault("log.level", "info")
}

// bindEnv binds critical environment variables to Viper keys.
func bindEnv(v *viper.Viper) error {
	bindings := map[string]string{
		"database.master.host": "DB_HOST",
		"database.master.port": "DB_PORT",
		"database.master.user": "DB_USER",
		"database.master.pass": "DB_PASSWORD",
		"database.master.name": "DB_NAME",
		"storage.access_key":   "MINIO_ACCESS_KEY",
		"storage.secret_key":   "MINIO_SECRET_KEY",
	}

	for key, env := range bindings {
		if err := v.BindEnv(key, env); err != nil {
			return fmt.Errorf("failed to bind env %s: %w", env, err)
		}
	}

	return nil
}

// Load reads the configuration file at path. Missing keys take their defaults.
func Load(path string) (*Config, error) {
	v := viper.New()
	v.SetConfigFile(path)
	v.SetConfigType("yaml")
	v.AutomaticEnv()
	setDefaults(v)

	if err := v.ReadInConfig(); err != nil {
		return nil, fmt.Errorf("failed to read config: %w", err)
	}

	if err := bindEnv(v); err != nil {
		return nil, err
	}

	var cfg Config
	if err := v.Unmarshal(&cfg); err != nil {
		return nil, fmt.Errorf("failed to unmarshal config: %w", err)
	}

	switch cfg.Storage.Driver {
	case DriverLocal, DriverMinIO:
	default:
		return nil, fmt.Errorf("unknown storage driver %q", cfg.Storage.Driver)
	}

	return &cfg, nil
}

// MustLoad loads the configuration from the specified file path.
// It panics if the configuration file cannot be loaded or unmarshaled.
func MustLoad(path string) *Config {
	cfg, err := Load(path)
	if err != nil {
		zlog.Logger.Panic().Err(err).Msg("failed to load config")
	}

	return cfg
}

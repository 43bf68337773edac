package main

import (
	"fmt"
	"io"
	"log/slog"
	"os"
	"strings"
	"time"

	"github.com/go-playground/validator/v10"
	"gopkg.in/yaml.v3"
)

const (
	StorageDriverBolt   = "bolt"
	StorageDriverBadger = "badger"
	StorageDriverMemory = "memory"
)

const (
	DefaultListen         = ":8080"
	DefaultDocumentId     = "spreadsheet-state"
	DefaultSyncChannel    = "spreadsheet-sync"
	DefaultGridColumns    = 10
	DefaultGridRows       = 10
	DefaultQueueSize      = 64
	DefaultStoragePath    = "spreadsheet.db"
	DefaultStorageTimeout = 5 * time.Second
)

type Config struct {
	Listen     string          `yaml:"listen" validate:"required"`
	DocumentId string          `yaml:"document_id" validate:"required"`
	Grid       GridConfig      `yaml:"grid"`
	Storage    StorageConfig   `yaml:"storage"`
	Sync       SyncConfig      `yaml:"sync"`
	Evaluator  EvaluatorConfig `yaml:"evaluator"`
	Log        LogConfig       `yaml:"log"`
}

// GridConfig is fixed for the lifetime of a view
type GridConfig struct {
	Columns []string `yaml:"columns" validate:"required,min=1,dive,required,alpha"`
	Rows    int      `yaml:"rows" validate:"min=1,max=100000"`
}

type StorageConfig struct {
	Driver  string        `yaml:"driver" validate:"oneof=bolt badger memory"`
	Path    string        `yaml:"path" validate:"required_unless=Driver memory"`
	Timeout time.Duration `yaml:"timeout" validate:"gt=0"`
}

type SyncConfig struct {
	Channel    string `yaml:"channel" validate:"required"`
	RelayUrl   string `yaml:"relay_url" validate:"omitempty,url"`
	ServeRelay bool   `yaml:"serve_relay"`
	QueueSize  int    `yaml:"queue_size" validate:"min=1"`
}

type EvaluatorConfig struct {
	MaxDepth  int `yaml:"max_depth" validate:"min=1"`
	QueueSize int `yaml:"queue_size" validate:"min=1"`
}

type LogConfig struct {
	Level  string `yaml:"level" validate:"oneof=debug info warn error DEBUG INFO WARN ERROR"`
	Format string `yaml:"format" validate:"oneof=text json"`
}

func DefaultConfig() *Config {
	return &Config{
		Listen:     DefaultListen,
		DocumentId: DefaultDocumentId,
		Grid: GridConfig{
			Columns: ColumnLabels(DefaultGridColumns),
			Rows:    DefaultGridRows,
		},
		Storage: StorageConfig{
			Driver:  StorageDriverBolt,
			Path:    DefaultStoragePath,
			Timeout: DefaultStorageTimeout,
		},
		Sync: SyncConfig{
			Channel:   DefaultSyncChannel,
			QueueSize: DefaultQueueSize,
		},
		Evaluator: EvaluatorConfig{
			MaxDepth:  DefaultMaxFormulaDepth,
			QueueSize: DefaultQueueSize,
		},
		Log: LogConfig{
			Level:  "info",
			Format: "text",
		},
	}
}

// LoadConfig reads the optional YAML file over the defaults, then applies environment overrides
func LoadConfig(path string) (*Config, error) {
	config := DefaultConfig()

	if path != "" {
		data, err := os.ReadFile(path)
		if err != nil {
			return nil, fmt.Errorf("read config %s: %w", path, err)
		}

		if err = yaml.Unmarshal(data, config); err != nil {
			return nil, fmt.Errorf("parse config %s: %w", path, err)
		}
	}

	config.applyEnv()

	if err := config.Validate(); err != nil {
		return nil, err
	}

	return config, nil
}

func (c *Config) applyEnv() {
	if value := os.Getenv("DATABASE_FILEPATH"); value != "" {
		c.Storage.Path = value
	}

	if value := os.Getenv("LISTEN_ADDR"); value != "" {
		c.Listen = value
	}

	if value := os.Getenv("RELAY_URL"); value != "" {
		c.Sync.RelayUrl = value
	}
}

func (c *Config) Validate() error {
	for index, column := range c.Grid.Columns {
		c.Grid.Columns[index] = strings.ToUpper(column)
	}

	if err := validator.New(validator.WithRequiredStructEnabled()).Struct(c); err != nil {
		return fmt.Errorf("invalid config: %w", err)
	}

	return nil
}

// ColumnLabels returns A, B, ..., Z, AA, AB, ... for the first count columns
func ColumnLabels(count int) []string {
	labels := make([]string, 0, count)

	for index := 0; index < count; index++ {
		label := ""
		for n := index + 1; n > 0; n = (n - 1) / 26 {
			label = string(rune('A'+(n-1)%26)) + label
		}
		labels = append(labels, label)
	}

	return labels
}

func NewLogger(config LogConfig, w io.Writer) (*slog.Logger, error) {
	var level slog.Level
	if err := level.UnmarshalText([]byte(config.Level)); err != nil {
		return nil, fmt.Errorf("log level %q: %w", config.Level, err)
	}

	options := &slog.HandlerOptions{Level: level}

	if config.Format == "json" {
		return slog.New(slog.NewJSONHandler(w, options)), nil
	}

	return slog.New(slog.NewTextHandler(w, options)), nil
}

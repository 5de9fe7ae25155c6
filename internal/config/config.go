// Package config loads taskflow settings from config.yaml and TASKFLOW_*
// environment variables.
package config

import (
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"strings"
	"time"

	"github.com/go-playground/validator/v10"
	"github.com/spf13/viper"
)

// Auth modes
const (
	AuthSimulated = "simulated"
	AuthLocal     = "local"
)

// DefaultCategories are offered by the task form
var DefaultCategories = []string{"Personnel", "Travail", "Santé", "Éducation", "Loisirs", "Finances", "Famille"}

// Config is the resolved application configuration
type Config struct {
	DataDir string      `mapstructure:"data_dir" validate:"required"`
	Log     LogConfig   `mapstructure:"log"`
	Auth    AuthConfig  `mapstructure:"auth"`
	Tasks   TasksConfig `mapstructure:"tasks"`

	// File is the config file that was read, empty when none existed
	File string `mapstructure:"-"`
}

type LogConfig struct {
	Level string `mapstructure:"level" validate:"oneof=debug info warn error"`
	File  string `mapstructure:"file"`
}

type AuthConfig struct {
	Mode       string        `mapstructure:"mode" validate:"oneof=simulated local"`
	Delay      time.Duration `mapstructure:"delay" validate:"gte=0"`
	BcryptCost int           `mapstructure:"bcrypt_cost" validate:"gte=4,lte=31"`
}

type TasksConfig struct {
	DefaultCategory string   `mapstructure:"default_category" validate:"required"`
	Categories      []string `mapstructure:"categories" validate:"min=1,dive,required"`
}

// DBPath is the SQLite file holding the slots
func (c *Config) DBPath() string {
	return filepath.Join(c.DataDir, "taskflow.db")
}

// LogPath is where the JSON log is written
func (c *Config) LogPath() string {
	if c.Log.File != "" {
		return c.Log.File
	}
	return filepath.Join(c.DataDir, "taskflow.log")
}

// Load reads configuration. When file is empty the default location is
// searched and a missing file yields defaults.
func Load(file string) (*Config, error) {
	v := viper.New()
	setDefaults(v)

	v.SetEnvPrefix("TASKFLOW")
	v.SetEnvKeyReplacer(strings.NewReplacer(".", "_"))
	v.AutomaticEnv()

	if file != "" {
		v.SetConfigFile(file)
	} else {
		v.SetConfigName("config")
		v.SetConfigType("yaml")
		v.AddConfigPath(Dir())
	}

	if err := v.ReadInConfig(); err != nil {
		var notFound viper.ConfigFileNotFoundError
		if file != "" || !errors.As(err, &notFound) {
			return nil, fmt.Errorf("reading config: %w", err)
		}
	}

	var cfg Config
	if err := v.Unmarshal(&cfg); err != nil {
		return nil, fmt.Errorf("decoding config: %w", err)
	}
	cfg.File = v.ConfigFileUsed()
	cfg.Tasks.DefaultCategory = strings.TrimSpace(cfg.Tasks.DefaultCategory)

	if err := cfg.Validate(); err != nil {
		return nil, err
	}
	return &cfg, nil
}

func setDefaults(v *viper.Viper) {
	v.SetDefault("data_dir", DataDir())
	v.SetDefault("log.level", "info")
	v.SetDefault("log.file", "")
	v.SetDefault("auth.mode", AuthSimulated)
	v.SetDefault("auth.delay", time.Second)
	v.SetDefault("auth.bcrypt_cost", 10)
	v.SetDefault("tasks.default_category", DefaultCategories[0])
	v.SetDefault("tasks.categories", DefaultCategories)
}

var validate = validator.New()

// Validate checks every field and reports the first problem by its config key
func (c *Config) Validate() error {
	err := validate.Struct(c)
	if err == nil {
		return nil
	}
	var fieldErrs validator.ValidationErrors
	if !errors.As(err, &fieldErrs) {
		return fmt.Errorf("invalid config: %w", err)
	}
	fe := fieldErrs[0]
	return fmt.Errorf("invalid config: %s fails %q (got %v)", keyOf(fe.Namespace()), fe.Tag(), fe.Value())
}

var keys = map[string]string{
	"Config.DataDir":               "data_dir",
	"Config.Log.Level":             "log.level",
	"Config.Auth.Mode":             "auth.mode",
	"Config.Auth.Delay":            "auth.delay",
	"Config.Auth.BcryptCost":       "auth.bcrypt_cost",
	"Config.Tasks.DefaultCategory": "tasks.default_category",
	"Config.Tasks.Categories":      "tasks.categories",
}

func keyOf(namespace string) string {
	if k, ok := keys[namespace]; ok {
		return k
	}
	if strings.HasPrefix(namespace, "Config.Tasks.Categories[") {
		return "tasks.categories"
	}
	return namespace
}

// Dir returns the directory searched for config.yaml
func Dir() string {
	if xdg := os.Getenv("XDG_CONFIG_HOME"); xdg != "" {
		return filepath.Join(xdg, "taskflow")
	}
	if home, err := os.UserHomeDir(); err == nil {
		return filepath.Join(home, ".config", "taskflow")
	}
	return "."
}

// DataDir returns the default data directory
func DataDir() string {
	if xdg := os.Getenv("XDG_DATA_HOME"); xdg != "" {
		return filepath.Join(xdg, "taskflow")
	}
	if home, err := os.UserHomeDir(); err == nil {
		return filepath.Join(home, ".local", "share", "taskflow")
	}
	return "."
}

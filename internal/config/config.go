package config

import (
	"errors"
	"fmt"
	"runtime"
	"strings"

	"github.com/spf13/viper"
)

type Config struct {
	Host         string   `mapstructure:"host"`
	Port         int      `mapstructure:"port"`
	AllowOrigins []string `mapstructure:"allow_origins"`
	LogLevel     string   `mapstructure:"log_level"`
	MaxUploadMB  int      `mapstructure:"max_upload_mb"`
	LogFile      string   `mapstructure:"log_file"`
	MatchWorkers int      `mapstructure:"match_workers"`
	RunStore     string   `mapstructure:"run_store"`
}

// Load — дефолты, затем необязательный listmatch.yaml, затем переменные окружения
// (HOST, PORT, LOG_LEVEL, RUN_STORE, ...). Окружение главнее файла.
func Load() (Config, error) {
	v := viper.New()
	v.SetConfigName("listmatch")
	v.SetConfigType("yaml")
	v.AddConfigPath(".")
	v.AddConfigPath("./config")
	v.AutomaticEnv()

	setDefaults(v)

	if err := v.ReadInConfig(); err != nil {
		if _, ok := err.(viper.ConfigFileNotFoundError); !ok {
			return Config{}, fmt.Errorf("read config file: %w", err)
		}
	}

	var cfg Config
	if err := v.Unmarshal(&cfg); err != nil {
		return Config{}, fmt.Errorf("decode config: %w", err)
	}
	cfg.AllowOrigins = splitOrigins(cfg.AllowOrigins)
	if cfg.MatchWorkers <= 0 {
		cfg.MatchWorkers = runtime.NumCPU()
	}
	if err := validate(cfg); err != nil {
		return Config{}, fmt.Errorf("invalid configuration: %w", err)
	}
	return cfg, nil
}

func setDefaults(v *viper.Viper) {
	v.SetDefault("host", "127.0.0.1")
	v.SetDefault("port", 8082)
	v.SetDefault("allow_origins", []string{"*"})
	v.SetDefault("log_level", "info")
	v.SetDefault("max_upload_mb", 256)
	v.SetDefault("log_file", "logs/listmatch.log")
	v.SetDefault("match_workers", 0)
	v.SetDefault("run_store", "data/runs.db")
}

func validate(c Config) error {
	if c.Port <= 0 || c.Port > 65535 {
		return fmt.Errorf("port out of range: %d", c.Port)
	}
	if c.MaxUploadMB <= 0 {
		return errors.New("max_upload_mb must be positive")
	}
	if len(c.AllowOrigins) == 0 {
		return errors.New("allow_origins is empty")
	}
	return nil
}

// ALLOW_ORIGINS приходит одной строкой "a,b" — режем сами.
func splitOrigins(in []string) []string {
	var out []string
	for _, s := range in {
		for _, o := range strings.Split(s, ",") {
			if o = strings.TrimSpace(o); o != "" {
				out = append(out, o)
			}
		}
	}
	return out
}

func (c Config) Addr() string { return fmt.Sprintf("%s:%d", c.Host, c.Port) }

// MaxUploadBytes — лимит тела запроса для middleware.LimitBytes.
func (c Config) MaxUploadBytes() int64 { return int64(c.MaxUploadMB) << 20 }

package config

import (
	"fmt"
	"strings"
	"sync"

	"github.com/spf13/viper"
)

// DefaultJWTSecret is only acceptable during development. Startup refuses to
// run with it in release mode.
const DefaultJWTSecret = "change-me-in-prod"

type ServerConfig struct {
	Address string `mapstructure:"address"`
	Port    int    `mapstructure:"port"`
	Mode    string `mapstructure:"mode"`
}

type DatabaseConfig struct {
	Path    string `mapstructure:"path"`
	LogMode bool   `mapstructure:"log_mode"`
}

type JWTConfig struct {
	Secret        string `mapstructure:"secret"`
	ExpireMinutes int    `mapstructure:"expire_minutes"`
}

type SecurityConfig struct {
	BcryptCost int `mapstructure:"bcrypt_cost"`
}

type AppSubConfig struct {
	StaticDir string `mapstructure:"static_dir"`
}

type Config struct {
	Server   ServerConfig   `mapstructure:"server"`
	Database DatabaseConfig `mapstructure:"database"`
	JWT      JWTConfig      `mapstructure:"jwt"`
	Security SecurityConfig `mapstructure:"security"`
	App      AppSubConfig   `mapstructure:"app"`
}

var (
	appConfig *Config
	once      sync.Once
)

// Load loads configuration from the given file path (e.g. "config.yaml").
// If path is empty, it looks for "config.yaml" in the working directory and
// falls back to defaults when no file exists. Environment variables with the
// FT_ prefix override file values, e.g. FT_JWT_SECRET.
func Load(path string) (*Config, error) {
	var err error
	once.Do(func() {
		v := viper.New()

		v.SetDefault("server.address", "0.0.0.0")
		v.SetDefault("server.port", 8000)
		v.SetDefault("server.mode", "debug")
		v.SetDefault("database.path", "./data/finance.db")
		v.SetDefault("database.log_mode", false)
		v.SetDefault("jwt.secret", DefaultJWTSecret)
		v.SetDefault("jwt.expire_minutes", 30)
		v.SetDefault("security.bcrypt_cost", 12)
		v.SetDefault("app.static_dir", "")

		explicit := path != ""
		if explicit {
			v.SetConfigFile(path)
		} else {
			v.SetConfigName("config")
			v.SetConfigType("yaml")
			v.AddConfigPath(".")
		}

		v.SetEnvPrefix("FT")
		v.SetEnvKeyReplacer(strings.NewReplacer(".", "_"))
		v.AutomaticEnv()

		if readErr := v.ReadInConfig(); readErr != nil {
			// a missing implicit config file is fine, defaults apply
			if _, notFound := readErr.(viper.ConfigFileNotFoundError); explicit || !notFound {
				err = fmt.Errorf("read config: %w", readErr)
				return
			}
		}

		var c Config
		if err = v.Unmarshal(&c); err != nil {
			err = fmt.Errorf("unmarshal config: %w", err)
			return
		}

		appConfig = &c
	})

	if err != nil {
		return nil, err
	}
	return appConfig, nil
}

// Get returns the loaded global configuration.
// Call Load() once at application startup.
func Get() *Config {
	return appConfig
}

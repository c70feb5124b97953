package config

import (
	"fmt"
	"strings"

	"github.com/spf13/viper"
)

// LoadConfig loads configuration from file using viper.
// CLI flags > environment > config file > defaults precedence; flag
// overrides are applied by the cmd layer after this returns.
func LoadConfig(configPath string) (*Config, error) {
	v := viper.New()

	// Set defaults matching DefaultConfig
	v.SetDefault("engine.path_cache_size", 512)
	v.SetDefault("engine.max_conditions", 64)
	v.SetDefault("engine.max_records", 10000)
	v.SetDefault("engine.output", "json")

	// Bind environment variables with RPT_ prefix
	v.SetEnvPrefix("RPT")
	v.SetEnvKeyReplacer(strings.NewReplacer(".", "_"))
	v.AutomaticEnv()

	// Load config file if provided
	if configPath != "" {
		v.SetConfigFile(configPath)
		if err := v.ReadInConfig(); err != nil {
			return nil, fmt.Errorf("failed to read config file: %w", err)
		}
	}

	cfg := &Config{
		PathCacheSize: v.GetInt("engine.path_cache_size"),
		MaxConditions: v.GetInt("engine.max_conditions"),
		MaxRecords:    v.GetInt("engine.max_records"),
		Output:        v.GetString("engine.output"),
	}

	if err := cfg.Validate(); err != nil {
		return nil, err
	}

	return cfg, nil
}

// Copyright (c) 2026 Blog Team
// Blog - REST blog back end
// This source code is licensed under the MIT license found in the LICENSE file.

// Package config loads blog.yaml, BLOG_* environment variables and command
// line flags into a Config.
package config

import (
	"fmt"
	"os"
	"path/filepath"
	"runtime"
	"slices"
	"strings"

	"github.com/goccy/go-yaml"
	"github.com/spf13/cobra"
	"github.com/spf13/viper"
)

// GetConfigPath returns the full path for the configuration file.
func GetConfigPath(system bool) (string, error) {
	var configDir string
	var err error

	if system {
		// System-wide configuration paths
		switch runtime.GOOS {
		case "windows":
			configDir = filepath.Join(os.Getenv("ProgramData"), "Blog")
		default: // Linux, macOS, etc.
			configDir = "/etc/blog"
		}
	} else {
		// User-specific configuration paths
		configDir, err = os.UserConfigDir()
		if err != nil {
			return "", fmt.Errorf("could not get user config directory: %w", err)
		}
		configDir = filepath.Join(configDir, "blog")
	}

	return filepath.Join(configDir, "blog.yaml"), nil
}

// LoadConfig merges, from lowest to highest precedence: defaults, blog.yaml
// (or the explicit file), BLOG_* environment variables and the flags of cmd.
func LoadConfig[T any](cmd *cobra.Command, defaults map[string]any, explicitPath *string) (T, error) {
	var c T
	v := viper.New()

	// 1. Set defaults
	for key, value := range defaults {
		v.SetDefault(key, value)
	}

	// 2. Set up file search paths
	v.SetConfigName("blog")
	v.SetConfigType("yaml")

	// 3. An explicit --config file wins over the search paths.
	if explicitPath != nil && *explicitPath != "" {
		v.SetConfigFile(*explicitPath)
	}

	if userConfigPath, err := GetConfigPath(false); err == nil {
		v.AddConfigPath(filepath.Dir(userConfigPath))
	}
	if systemConfigPath, err := GetConfigPath(true); err == nil {
		v.AddConfigPath(filepath.Dir(systemConfigPath))
	}
	v.AddConfigPath(".") // Look for blog.yaml in current dir

	// 4. Read in the primary config file.
	if err := v.ReadInConfig(); err != nil {
		// It's okay if the file is not found, but other errors are fatal.
		if _, ok := err.(viper.ConfigFileNotFoundError); !ok {
			return c, err
		}
	}

	// 5. Read from environment variables
	v.AutomaticEnv()
	v.AllowEmptyEnv(true)
	v.SetEnvPrefix("blog")
	v.SetEnvKeyReplacer(strings.NewReplacer(".", "_"))

	// 6. Flags
	if cmd != nil {
		if err := v.BindPFlags(cmd.Flags()); err != nil {
			return c, err
		}
	}

	if err := v.Unmarshal(&c); err != nil {
		return c, err
	}

	return c, nil
}

// WriteConfigFile writes c as YAML to the user or system config path.
func WriteConfigFile[T any](c *T, system bool) error {
	path, err := GetConfigPath(system)
	if err != nil {
		return err
	}

	data, err := yaml.Marshal(c)
	if err != nil {
		return err
	}

	// Create directory if it doesn't exist
	configDir := filepath.Dir(path)
	if err := os.MkdirAll(configDir, 0755); err != nil {
		return fmt.Errorf("could not create config directory %s: %w", configDir, err)
	}

	// 0600: the file holds the database DSN.
	return os.WriteFile(path, data, 0600)
}

// Validate checks values that the rest of the program cannot recover from.
func (c Config) Validate() error {
	if !slices.Contains([]string{"sqlite", "postgres", "mysql"}, c.Database.Type) {
		return fmt.Errorf("unsupported database.type %q (want sqlite, postgres or mysql)", c.Database.Type)
	}
	if strings.TrimSpace(c.Database.Dsn) == "" {
		return fmt.Errorf("database.dsn must not be empty")
	}
	switch c.Session.Backend {
	case "database":
	case "redis":
		if c.Redis.Address == "" {
			return fmt.Errorf("redis.address is required when session.backend is redis")
		}
	default:
		return fmt.Errorf("unsupported session.backend %q (want database or redis)", c.Session.Backend)
	}
	if c.Session.TTL <= 0 || c.Session.RememberTTL <= 0 {
		return fmt.Errorf("session.ttl and session.remember_ttl must be positive")
	}
	if len(c.Events.Brokers) > 0 && c.Events.Topic == "" {
		return fmt.Errorf("events.topic is required when events.brokers is set")
	}
	return nil
}

// Copyright (c) 2026 Blog Team
// Blog - REST blog back end
// This source code is licensed under the MIT license found in the LICENSE file.

package config

import "time"

// Config is the full application configuration.
type Config struct {
	Database struct {
		Type string `mapstructure:"type" yaml:"type"`
		Dsn  string `mapstructure:"dsn" yaml:"dsn"`
	} `mapstructure:"database" yaml:"database"`

	HTTP struct {
		Address string `mapstructure:"address" yaml:"address"`
		Debug   bool   `mapstructure:"debug" yaml:"debug"`
		// SecureCookies marks the session cookie Secure; enable behind TLS.
		SecureCookies bool `mapstructure:"secure_cookies" yaml:"secure_cookies"`
	} `mapstructure:"http" yaml:"http"`

	Session struct {
		// Backend is "database" or "redis".
		Backend      string        `mapstructure:"backend" yaml:"backend"`
		TTL          time.Duration `mapstructure:"ttl" yaml:"ttl"`
		RememberTTL  time.Duration `mapstructure:"remember_ttl" yaml:"remember_ttl"`
		ReapInterval time.Duration `mapstructure:"reap_interval" yaml:"reap_interval"`
	} `mapstructure:"session" yaml:"session"`

	Redis struct {
		Address string `mapstructure:"address" yaml:"address"`
		Prefix  string `mapstructure:"prefix" yaml:"prefix"`
	} `mapstructure:"redis" yaml:"redis"`

	Events struct {
		Brokers []string `mapstructure:"brokers" yaml:"brokers"`
		Topic   string   `mapstructure:"topic" yaml:"topic"`
	} `mapstructure:"events" yaml:"events"`

	Security struct {
		BcryptCost int `mapstructure:"bcrypt_cost" yaml:"bcrypt_cost"`
	} `mapstructure:"security" yaml:"security"`

	Language string `mapstructure:"language" yaml:"language"`

	Log struct {
		Level string `mapstructure:"level" yaml:"level"`
	} `mapstructure:"log" yaml:"log"`
}

// Defaults returns the built-in value of every configuration key.
func Defaults() map[string]any {
	return map[string]any{
		"database.type":         "sqlite",
		"database.dsn":          "file:blog.db?_pragma=foreign_keys(1)&_pragma=busy_timeout(5000)",
		"http.address":          ":8080",
		"http.debug":            false,
		"http.secure_cookies":   false,
		"session.backend":       "database",
		"session.ttl":           "24h",
		"session.remember_ttl":  "168h",
		"session.reap_interval": "10m",
		"redis.address":         "",
		"redis.prefix":          "blog:",
		"events.brokers":        []string{},
		"events.topic":          "blog.events",
		"security.bcrypt_cost":  10,
		"language":              "en",
		"log.level":             "info",
	}
}

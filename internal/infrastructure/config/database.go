package config

import (
	"fmt"
	"time"
)

// DatabaseConfig selects the store for site-graph snapshots and match
// journals. A local sqlite file is the default; a shared postgres lets several
// runs reuse one graph cache.
type DatabaseConfig struct {
	Type string `mapstructure:"type" validate:"required,oneof=postgres sqlite"`

	// Path is the sqlite file, or ":memory:" for a store that dies with the process
	Path string `mapstructure:"path" validate:"required_if=Type sqlite"`

	// URL replaces the postgres fields below when set
	URL      string `mapstructure:"url"`
	Host     string `mapstructure:"host"`
	Port     int    `mapstructure:"port" validate:"omitempty,min=1,max=65535"`
	User     string `mapstructure:"user"`
	Password string `mapstructure:"password"`
	Name     string `mapstructure:"name"`
	SSLMode  string `mapstructure:"sslmode" validate:"omitempty,oneof=disable require verify-ca verify-full"`

	Pool PoolConfig `mapstructure:"pool"`
}

// PoolConfig only applies to postgres; sqlite always runs on one connection
type PoolConfig struct {
	MaxOpen     int           `mapstructure:"max_open" validate:"min=1"`
	MaxIdle     int           `mapstructure:"max_idle" validate:"min=1,ltefield=MaxOpen"`
	MaxLifetime time.Duration `mapstructure:"max_lifetime" validate:"min=0"`
}

// DSN is the connection string handed to the gorm dialector of Type
func (d DatabaseConfig) DSN() string {
	switch d.Type {
	case "sqlite":
		if d.Path == "" {
			return ":memory:"
		}
		return d.Path
	case "postgres":
		if d.URL != "" {
			return d.URL
		}
		return fmt.Sprintf("host=%s port=%d user=%s password=%s dbname=%s sslmode=%s",
			d.Host, d.Port, d.User, d.Password, d.Name, d.SSLMode)
	default:
		return ""
	}
}

// Ephemeral reports whether nothing written survives the process, in which
// case a graph cache is pointless
func (d DatabaseConfig) Ephemeral() bool {
	return d.Type == "sqlite" && d.DSN() == ":memory:"
}

package db

import (
	"fmt"
	"os"

	"go.uber.org/zap"
)

const (
	DriverMySQL    = "mysql"
	DriverPostgres = "postgres"
	DriverSQLite   = "sqlite"
)

type Config struct {
	Driver string
	DSN    string
}

// LoadConfig reads DB_DRIVER and DATABASE_URL. The driver defaults to mysql.
func LoadConfig() (*Config, error) {
	dsn := os.Getenv("DATABASE_URL")
	if dsn == "" {
		return nil, fmt.Errorf("DATABASE_URL environment variable not set")
	}
	driver := os.Getenv("DB_DRIVER")
	if driver == "" {
		driver = DriverMySQL
	}
	switch driver {
	case DriverMySQL, DriverPostgres, DriverSQLite:
	default:
		return nil, fmt.Errorf("unsupported DB_DRIVER %q", driver)
	}
	return &Config{Driver: driver, DSN: dsn}, nil
}

func (c *Config) Print(logger *zap.Logger) {
	logger.Info("database config", zap.String("driver", c.Driver))
}

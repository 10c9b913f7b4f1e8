package utils

import (
	"fmt"
	"strings"
	"time"
)

// DSNParams параметры подключения к PostgreSQL
type DSNParams struct {
	Host           string
	Port           int
	User           string
	Password       string
	Database       string
	SSLMode        string
	PoolSize       int
	ConnectTimeout time.Duration
}

// PostgresDSN собирает строку подключения в формате key=value для pgxpool
func PostgresDSN(p DSNParams) (string, error) {
	switch {
	case p.Host == "":
		return "", fmt.Errorf("postgres dsn: host is required")
	case p.Port <= 0 || p.Port > 65535:
		return "", fmt.Errorf("postgres dsn: invalid port %d", p.Port)
	case p.User == "":
		return "", fmt.Errorf("postgres dsn: user is required")
	case p.Password == "":
		return "", fmt.Errorf("postgres dsn: password is required")
	case p.Database == "":
		return "", fmt.Errorf("postgres dsn: database is required")
	case p.SSLMode == "":
		return "", fmt.Errorf("postgres dsn: ssl mode is required")
	}

	parts := []string{
		"host=" + p.Host,
		fmt.Sprintf("port=%d", p.Port),
		"user=" + p.User,
		"password=" + p.Password,
		"dbname=" + p.Database,
		"sslmode=" + p.SSLMode,
	}
	if p.ConnectTimeout > 0 {
		parts = append(parts, fmt.Sprintf("connect_timeout=%d", int(p.ConnectTimeout.Seconds())))
	}
	if p.PoolSize > 0 {
		parts = append(parts, fmt.Sprintf("pool_max_conns=%d", p.PoolSize))
	}
	return strings.Join(parts, " "), nil
}

package database

import (
	"fmt"
	"net/url"

	"github.com/coinboard/coinboard/internal/config"
)

// BuildConnString renders a pgx connection URL from a DBConfig that has been
// through defaulting and validation, so every field is populated. The
// password is URL-encoded to survive special characters.
func BuildConnString(cfg config.DBConfig) string {
	return fmt.Sprintf(
		"postgres://%s:%s@%s:%d/%s?sslmode=%s",
		cfg.User,
		url.QueryEscape(cfg.Password),
		cfg.Host,
		cfg.Port,
		cfg.Name,
		cfg.SSLMode,
	)
}

package utils

import (
	"io"

	"github.com/MrSnakeDoc/addressbook/internal/logger"
)

// CloseLogged closes c and logs a failure at warn level.
// Use in defers where the error cannot be returned.
func CloseLogged(log logger.Logger, what string, c io.Closer) {
	if err := c.Close(); err != nil {
		log.Warn("failed to close", logger.String("resource", what), logger.Error(err))
	}
}

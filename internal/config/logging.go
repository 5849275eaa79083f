package config

import (
	"os"

	"github.com/sirupsen/logrus"
)

// NewLogger builds the JSON logger the service uses everywhere. An
// unparseable level falls back to info rather than failing startup.
func NewLogger(level string) *logrus.Logger {
	logger := logrus.New()
	logger.SetFormatter(&logrus.JSONFormatter{})
	logger.SetOutput(os.Stdout)

	parsed, err := logrus.ParseLevel(level)
	if err != nil {
		parsed = logrus.InfoLevel
	}
	logger.SetLevel(parsed)

	return logger
}

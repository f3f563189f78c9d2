package logger

import (
	"labtrace-service/internal/app/config"
	"os"

	"github.com/sirupsen/logrus"
)

// NewLogrusLogger builds the plain logger used by drivers and startup code.
// Request-scoped logging goes through zap instead.
func NewLogrusLogger(internalConfig *config.InternalConfig) *logrus.Logger {
	log := logrus.New()
	if internalConfig.App.Env == "production" {
		log.SetFormatter(&logrus.JSONFormatter{})
		file, err := os.OpenFile("logrus.log", os.O_CREATE|os.O_WRONLY|os.O_APPEND, 0666)
		if err != nil {
			log.Info("Failed to log to file, using default stderr")
		} else {
			log.SetOutput(file)
		}
	} else {
		log.SetFormatter(&logrus.TextFormatter{})
	}
	return log
}

// Package logging builds the logrus loggers shared by repositories and services.
package logging

import (
	"sync"

	"github.com/sirupsen/logrus"
)

var (
	mu    sync.RWMutex
	level = logrus.InfoLevel
)

// SetLevel changes the level of loggers created afterwards and of the standard logger.
func SetLevel(name string) error {
	lvl, err := logrus.ParseLevel(name)
	if err != nil {
		return err
	}
	mu.Lock()
	level = lvl
	mu.Unlock()
	logrus.SetLevel(lvl)
	return nil
}

func New() *logrus.Logger {
	logger := logrus.New()
	logger.SetFormatter(&logrus.TextFormatter{
		FullTimestamp:   true,
		TimestampFormat: "2006-01-02 15:04:05",
	})
	mu.RLock()
	logger.SetLevel(level)
	mu.RUnlock()
	return logger
}

// OrNew returns logger, or a fresh one when it is nil.
func OrNew(logger *logrus.Logger) *logrus.Logger {
	if logger != nil {
		return logger
	}
	return New()
}

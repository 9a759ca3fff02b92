// Package logging configures the JSON logger shared by the API and exposes
// the per-request entry stored on the Gin context.
package logging

import (
	"io"
	"os"

	"github.com/gin-gonic/gin"
	"github.com/sirupsen/logrus"
)

const contextKey = "logger"

// New creates a JSON logger at the given level (default info).
func New(level string) *logrus.Logger {
	return NewWithOutput(level, os.Stdout)
}

func NewWithOutput(level string, out io.Writer) *logrus.Logger {
	log := logrus.New()
	log.SetFormatter(&logrus.JSONFormatter{
		TimestampFormat: "2006-01-02T15:04:05.000Z07:00",
	})
	log.SetOutput(out)

	lvl, err := logrus.ParseLevel(level)
	if err != nil || level == "" {
		lvl = logrus.InfoLevel
	}
	log.SetLevel(lvl)
	return log
}

// Attach stores the request-scoped entry on the context.
func Attach(c *gin.Context, entry *logrus.Entry) {
	c.Set(contextKey, entry)
}

// FromContext returns the request-scoped entry, or one on the standard
// logger when none was attached.
func FromContext(c *gin.Context) *logrus.Entry {
	if v, ok := c.Get(contextKey); ok {
		if entry, ok := v.(*logrus.Entry); ok {
			return entry
		}
	}
	return logrus.NewEntry(logrus.StandardLogger())
}

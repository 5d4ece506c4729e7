package logger

import (
	"os"

	"github.com/sirupsen/logrus"
)

// Log is the application logger. It is usable before InitLogger runs.
var Log = logrus.New()

// InitLogger configures Log and the logrus standard logger, which the
// repositories and services log through, with the same settings.
func InitLogger(level string) {
	lvl, err := logrus.ParseLevel(level)
	if err != nil {
		lvl = logrus.InfoLevel
	}

	for _, l := range []*logrus.Logger{Log, logrus.StandardLogger()} {
		// Output to stdout instead of the default stderr
		l.SetOutput(os.Stdout)

		// Set JSON formatter for structured logging
		l.SetFormatter(&logrus.JSONFormatter{})

		l.SetLevel(lvl)
	}

	if err != nil {
		Log.WithField("level", level).Warn("Unknown log level, using info")
	}
}

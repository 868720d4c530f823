package logging

import (
	"io"
	"os"

	"github.com/sirupsen/logrus"
)

// New returns a JSON logger writing to out at the named level. Unknown
// levels fall back to info.
func New(level string, out io.Writer) *logrus.Logger {
	if out == nil {
		out = os.Stdout
	}

	log := logrus.New()
	log.SetOutput(out)
	log.SetFormatter(&logrus.JSONFormatter{})

	lvl, err := logrus.ParseLevel(level)
	if err != nil {
		lvl = logrus.InfoLevel
		log.WithField("level", level).Warn("unknown log level, using info")
	}
	log.SetLevel(lvl)

	return log
}

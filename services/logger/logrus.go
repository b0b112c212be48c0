package logsvc

import (
	"io"
	"strings"

	"github.com/sirupsen/logrus"

	"github.com/trezcool/schooldash/core"
)

// NewLogrus builds the local logger: JSON in QA and PROD, text elsewhere.
func NewLogrus(out io.Writer, conf *core.Config) *logrus.Logger {
	log := logrus.New()
	log.SetOutput(out)

	level, err := logrus.ParseLevel(strings.ToLower(conf.LogLevel))
	if err != nil {
		log.Warnf("invalid log level %q, defaulting to info", conf.LogLevel)
		level = logrus.InfoLevel
	}
	log.SetLevel(level)

	switch conf.Env {
	case "QA", "PROD":
		log.SetFormatter(&logrus.JSONFormatter{TimestampFormat: "2006-01-02T15:04:05.000Z07:00"})
	default:
		log.SetFormatter(&logrus.TextFormatter{FullTimestamp: true, TimestampFormat: "2006-01-02 15:04:05"})
	}
	return log
}

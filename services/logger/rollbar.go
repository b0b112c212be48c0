package logsvc

import (
	"strconv"

	"github.com/rollbar/rollbar-go"
	"github.com/rollbar/rollbar-go/errors"
	"github.com/sirupsen/logrus"

	"github.com/trezcool/schooldash/core"
	"github.com/trezcool/schooldash/core/user"
)

// RollbarLogger reports to rollbar and writes to a local logrus logger.
type RollbarLogger struct {
	log *logrus.Logger
}

var _ core.Logger = (*RollbarLogger)(nil)

func NewRollbarLogger(log *logrus.Logger, conf *core.Config) *RollbarLogger {
	rollbar.SetToken(conf.RollbarToken)
	rollbar.SetEnvironment(conf.Env)
	rollbar.SetServerHost(conf.Server.Host)
	rollbar.SetCodeVersion(conf.Build)
	rollbar.SetStackTracer(errors.StackTracer)
	return &RollbarLogger{log: log}
}

func (l RollbarLogger) Enable(enabled bool) {
	rollbar.SetEnabled(enabled)
}

// expected fmt: msg | error, map[string]interface{}, user.Identity
func (l RollbarLogger) prepare(msg string, args []interface{}) (rbArgs []interface{}, fields logrus.Fields) {
	var idSet bool
	rbArgs = make([]interface{}, 0, len(args)+1)
	rbArgs = append(rbArgs, msg)
	fields = make(logrus.Fields)
	for _, arg := range args {
		switch a := arg.(type) {
		case user.Identity:
			if !idSet { // only set one person
				rollbar.SetPerson(strconv.Itoa(a.UserID), a.Username, "")
				fields["user"] = a.Username
				idSet = true
			}
			continue
		case error:
			fields[logrus.ErrorKey] = a
		case map[string]interface{}:
			for k, v := range a {
				fields[k] = v
			}
		}
		rbArgs = append(rbArgs, arg)
	}
	if !idSet {
		rollbar.ClearPerson()
	}
	return rbArgs, fields
}

func (l RollbarLogger) Debug(msg string, args ...interface{}) {
	rbArgs, fields := l.prepare(msg, args)
	rollbar.Debug(rbArgs...)
	l.log.WithFields(fields).Debug(msg)
}

func (l RollbarLogger) Info(msg string, args ...interface{}) {
	rbArgs, fields := l.prepare(msg, args)
	rollbar.Info(rbArgs...)
	l.log.WithFields(fields).Info(msg)
}

func (l RollbarLogger) Warn(msg string, args ...interface{}) {
	rbArgs, fields := l.prepare(msg, args)
	rollbar.Warning(rbArgs...)
	l.log.WithFields(fields).Warn(msg)
}

func (l RollbarLogger) Error(msg string, args ...interface{}) {
	rbArgs, fields := l.prepare(msg, args)
	rollbar.Error(rbArgs...)
	l.log.WithFields(fields).Error(msg)
}

func (l RollbarLogger) Fatal(msg string, args ...interface{}) {
	rbArgs, fields := l.prepare(msg, args)
	rollbar.Critical(rbArgs...)
	rollbar.Wait()
	l.log.WithFields(fields).Fatal(msg)
}

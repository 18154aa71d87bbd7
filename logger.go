// Copyright 2016 The gmysql Authors. All rights reserved.
//
// This Source Code Form is subject to the terms of the Mozilla Public
// License, v. 2.0. If a copy of the MPL was not distributed with this file,
// You can obtain one at http://mozilla.org/MPL/2.0/.

package mysqlwire

import (
	"errors"

	"github.com/sirupsen/logrus"
)

// Logger is used to log connection-fatal errors the session detects. The
// core logs each fatal error exactly once, at the point it's detected; it
// never retries.
type Logger interface {
	Print(v ...interface{})
}

// logrusLogger adapts a *logrus.Logger to Logger.
type logrusLogger struct {
	l *logrus.Logger
}

func (l logrusLogger) Print(v ...interface{}) {
	l.l.Error(v...)
}

func newDefaultLogger() Logger {
	l := logrus.New()
	l.SetFormatter(&logrus.TextFormatter{FullTimestamp: true})
	return logrusLogger{l: l}
}

var pkgLogger = newDefaultLogger()

// SetLogger overrides the package-wide default logger used by sessions that
// were not given an explicit Config.Logger.
func SetLogger(logger Logger) error {
	if logger == nil {
		return errors.New("mysqlwire: logger is nil")
	}
	pkgLogger = logger
	return nil
}

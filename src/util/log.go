package util

import "github.com/sirupsen/logrus"

// Log is the package-level structured logger every compiler component logs
// through. Defaults to warn level so a library consumer gets a quiet compile
// by default; a host program can turn up verbosity with
// Log.SetLevel(logrus.DebugLevel).
var Log = newLogger()

func newLogger() *logrus.Logger {
	l := logrus.New()
	l.SetLevel(logrus.WarnLevel)
	l.SetFormatter(&logrus.TextFormatter{FullTimestamp: false})
	return l
}

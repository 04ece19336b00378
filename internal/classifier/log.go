package classifier

import "github.com/sirupsen/logrus"

var logger = logrus.StandardLogger()

// SetLogger replaces the logger used by package-level helpers. Call it before
// serving requests.
func SetLogger(l *logrus.Logger) {
	if l != nil {
		logger = l
	}
}

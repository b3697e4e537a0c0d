package task

import "github.com/sirupsen/logrus"

var (
	log = logrus.WithField("module", "task")
)

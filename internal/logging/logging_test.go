package logging

import (
	"bytes"
	"testing"

	"github.com/sirupsen/logrus"
	"github.com/stretchr/testify/assert"
)

func TestNewLoggerLevels(t *testing.T) {
	tests := map[string]logrus.Level{
		"debug": logrus.DebugLevel,
		"info":  logrus.InfoLevel,
		"warn":  logrus.WarnLevel,
		"error": logrus.ErrorLevel,
		"loud":  logrus.InfoLevel,
		"":      logrus.InfoLevel,
	}
	for name, want := range tests {
		assert.Equal(t, want, NewLogger(name).Level, name)
	}
}

func TestFormatter(t *testing.T) {
	var buf bytes.Buffer
	log := NewLogger("debug")
	log.Out = &buf

	log.Info("Running version: 1.0")
	log.WithFields(logrus.Fields{"temp": -35, "chemistry": "alkaline"}).Warn("Out of range")
	log.Debug("details")

	assert.Equal(t,
		"[INFO] Running version: 1.0\n"+
			"[WARNING] Out of range chemistry=alkaline temp=-35\n"+
			"[DEBUG] details\n",
		buf.String())
}

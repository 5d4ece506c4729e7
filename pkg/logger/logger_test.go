package logger

import (
	"testing"

	"github.com/sirupsen/logrus"
	"github.com/stretchr/testify/assert"
)

func TestInitLogger(t *testing.T) {
	defer InitLogger("info")

	InitLogger("debug")
	assert.Equal(t, logrus.DebugLevel, Log.GetLevel())
	assert.Equal(t, logrus.DebugLevel, logrus.GetLevel())
	assert.IsType(t, &logrus.JSONFormatter{}, Log.Formatter)

	InitLogger("loud")
	assert.Equal(t, logrus.InfoLevel, Log.GetLevel())
}

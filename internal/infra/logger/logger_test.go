package logger

import (
	"testing"

	"birthday_notification_bot/internal/infra/config"

	"github.com/sirupsen/logrus"
	"github.com/stretchr/testify/assert"
)

func TestNewFormatter(t *testing.T) {
	assert.IsType(t, &logrus.JSONFormatter{}, newFormatter("production"))
	assert.IsType(t, &logrus.JSONFormatter{}, newFormatter("staging"))
	assert.IsType(t, &logrus.TextFormatter{}, newFormatter("development"))
}

func TestInitFallsBackToInfo(t *testing.T) {
	Init(&config.AppConfig{LogLevel: "loud", Environment: "development"})
	assert.Equal(t, logrus.InfoLevel, Log.GetLevel())

	Init(&config.AppConfig{LogLevel: "DEBUG", Environment: "development"})
	assert.Equal(t, logrus.DebugLevel, Log.GetLevel())
}

func TestComponent(t *testing.T) {
	assert.Equal(t, "scheduler", Component("scheduler").Data["component"])
}

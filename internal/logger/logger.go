package logger

import (
	"github.com/sirupsen/logrus"
)

var Log *logrus.Logger

// Init инициализирует структурированный логгер.
// В development используется текстовый формат, в остальных окружениях JSON.
func Init(env string) {
	Log = logrus.New()

	level := logrus.InfoLevel
	if env == "development" {
		level = logrus.DebugLevel
	}
	Log.SetLevel(level)

	if env == "development" {
		Log.SetFormatter(&logrus.TextFormatter{FullTimestamp: true})
		return
	}
	Log.SetFormatter(&logrus.JSONFormatter{})
}

// L возвращает логгер, даже если Init ещё не вызывался (например, в тестах).
func L() *logrus.Logger {
	if Log == nil {
		Log = logrus.New()
	}
	return Log
}

// Errorf нужен для goroutine.RecoveryHandler.
type adapter struct{}

func (adapter) Errorf(format string, args ...interface{}) {
	L().Errorf(format, args...)
}

// Recovery возвращает адаптер логгера для обработчика паник.
func Recovery() interface {
	Errorf(format string, args ...interface{})
} {
	return adapter{}
}

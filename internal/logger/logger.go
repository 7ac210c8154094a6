package logger

import (
	"io"

	"github.com/sirupsen/logrus"
)

var Log *logrus.Logger

// Init инициализирует структурированный логгер.
func Init(level string) {
	Log = logrus.New()

	lvl, err := logrus.ParseLevel(level)
	if err != nil {
		lvl = logrus.InfoLevel
	}
	Log.SetLevel(lvl)

	// Используем JSON формат для production, text для development
	Log.SetFormatter(&logrus.JSONFormatter{})
}

// SetTextFormatter устанавливает текстовый формат логов (для development).
func SetTextFormatter() {
	if Log != nil {
		Log.SetFormatter(&logrus.TextFormatter{
			FullTimestamp: true,
		})
	}
}

// SetOutput перенаправляет вывод (CLI пишет логи в stderr, чтобы не мешать stdout).
func SetOutput(w io.Writer) {
	if Log != nil {
		Log.SetOutput(w)
	}
}

// Entry возвращает запись с полями, даже если логгер ещё не инициализирован.
func Entry(fields logrus.Fields) *logrus.Entry {
	if Log == nil {
		return logrus.NewEntry(logrus.StandardLogger()).WithFields(fields)
	}
	return Log.WithFields(fields)
}

package logger

import (
	"github.com/sirupsen/logrus"
)

// Log: общий логгер приложения. До Init пишет в текстовом формате с уровнем Info.
var Log = logrus.New()

// Init настраивает уровень и формат логов: JSON в production, текст в development.
func Init(level, env string) {
	lvl, err := logrus.ParseLevel(level)
	if err != nil {
		lvl = logrus.InfoLevel
	}
	Log.SetLevel(lvl)

	if env == "production" {
		Log.SetFormatter(&logrus.JSONFormatter{})
		return
	}

	Log.SetFormatter(&logrus.TextFormatter{
		FullTimestamp: true,
	})
}

package logger

import (
	"fmt"
	"log/slog"
	"os"
)

type Loggers struct {
	InfoLogger  *slog.Logger
	ErrorLogger *slog.Logger
}

func SetupLogger(level string) (*Loggers, error) {
	var lvl slog.Level
	switch level {
	case "debug":
		lvl = slog.LevelDebug
	case "info":
		lvl = slog.LevelInfo
	case "warn":
		lvl = slog.LevelWarn
	case "error":
		lvl = slog.LevelError
	default:
		return nil, fmt.Errorf("unknown log level: %q", level)
	}

	infoHandler := slog.NewJSONHandler(os.Stdout, &slog.HandlerOptions{Level: lvl})
	errorHandler := slog.NewJSONHandler(os.Stderr, &slog.HandlerOptions{Level: lvl})

	return &Loggers{
		InfoLogger:  slog.New(infoHandler),
		ErrorLogger: slog.New(errorHandler),
	}, nil
}

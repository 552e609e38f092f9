package logger

import (
	"log/slog"
	"os"
)

func Init() {
	slog.SetDefault(slog.New(slog.NewJSONHandler(os.Stdout, nil)))
}

func attrs(fields map[string]any) []any {
	args := make([]any, 0, len(fields)*2)
	for k, v := range fields {
		args = append(args, k, v)
	}
	return args
}

func Info(msg string, fields map[string]any) {
	slog.Info(msg, attrs(fields)...)
}

func Warn(msg string, fields map[string]any) {
	slog.Warn(msg, attrs(fields)...)
}

func Error(msg string, fields map[string]any) {
	slog.Error(msg, attrs(fields)...)
}

func Fatal(msg string, fields map[string]any) {
	slog.Error(msg, attrs(fields)...)
	os.Exit(1)
}

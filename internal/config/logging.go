package config

import (
	"io"
	"log/slog"
	"path/filepath"
)

// NewLogger builds the text logger used by the binaries.
func NewLogger(w io.Writer, general GeneralConfig) *slog.Logger {
	handler := slog.NewTextHandler(w, &slog.HandlerOptions{
		AddSource:   general.Level() == slog.LevelDebug,
		Level:       general.Level(),
		ReplaceAttr: replaceAttr,
	})
	return slog.New(handler)
}

func replaceAttr(groups []string, a slog.Attr) slog.Attr {
	if a.Key == slog.SourceKey {
		if source, ok := a.Value.Any().(*slog.Source); ok {
			source.File = filepath.Base(source.File)
			return slog.Any(a.Key, source)
		}
	}
	return a
}

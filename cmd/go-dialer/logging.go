package main

import (
	"fmt"
	"io"
	"log/slog"
	"os"
	"path/filepath"

	"github.com/tartampluch/go-dialer/internal/config"
)

// initLogger installs a JSON slog handler writing to stdout and, when the
// cache directory is usable, to a log file truncated on each start.
// The returned func closes that file.
func initLogger(debug bool) func() {
	out := io.Writer(os.Stdout)
	closer := func() {}

	if path, err := logFilePath(); err == nil {
		f, err := os.OpenFile(path, os.O_TRUNC|os.O_CREATE|os.O_WRONLY, config.FilePermUserRW)
		if err != nil {
			fmt.Fprintf(os.Stderr, config.MsgLogWarning, config.ErrLogFile, path, err)
		} else {
			out = io.MultiWriter(os.Stdout, f)
			closer = func() { _ = f.Close() }
		}
	}

	level := slog.LevelInfo
	if debug {
		level = slog.LevelDebug
	}
	slog.SetDefault(slog.New(slog.NewJSONHandler(out, &slog.HandlerOptions{
		Level:     level,
		AddSource: debug,
	})))
	return closer
}

func logFilePath() (string, error) {
	cache, err := os.UserCacheDir()
	if err != nil {
		return "", fmt.Errorf("%s: %w", config.ErrCacheDir, err)
	}
	dir := filepath.Join(cache, config.AppID)
	if err := os.MkdirAll(dir, config.DirPermUserRWX); err != nil {
		return "", fmt.Errorf("%s: %w", config.ErrCreateDir, err)
	}
	return filepath.Join(dir, config.LogFileName), nil
}

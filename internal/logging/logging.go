// Package logging routes logrus output to a dated file. A TUI owns the
// terminal, so nothing may ever log to stderr while the interface runs.
package logging

import (
	"fmt"
	"io"
	"os"
	"path/filepath"
	"time"

	"github.com/adrg/xdg"
	"github.com/sirupsen/logrus"
)

const appName = "marquee"

// Setup redirects logrus to a per-day log file under the XDG state dir and
// applies the configured level. The returned closer flushes the file.
func Setup(level string) (io.Closer, error) {
	filename := fmt.Sprintf("%s.log", time.Now().Format("2006-01-02"))
	path, err := xdg.StateFile(filepath.Join(appName, filename))
	if err != nil {
		return nil, fmt.Errorf("resolve log path: %w", err)
	}

	f, err := os.OpenFile(path, os.O_WRONLY|os.O_CREATE|os.O_APPEND, 0o644)
	if err != nil {
		return nil, fmt.Errorf("open log file: %w", err)
	}

	logrus.SetOutput(f)
	logrus.SetFormatter(&logrus.TextFormatter{FullTimestamp: true})

	parsed, err := logrus.ParseLevel(level)
	if err != nil {
		parsed = logrus.InfoLevel
	}
	logrus.SetLevel(parsed)

	return f, nil
}

// Package logging builds the structured logger shared by echo and the
// services.
package logging

import (
	"fmt"
	"io"
	"log/syslog"
	"os"
	"path/filepath"
	"strings"

	"github.com/labstack/gommon/log"

	"github.com/iliyamo/movie-listing/internal/config"
)

// ParseLevel maps debug|info|warn|error|off to a gommon level; anything
// else is INFO.
func ParseLevel(s string) log.Lvl {
	switch strings.ToLower(strings.TrimSpace(s)) {
	case "debug":
		return log.DEBUG
	case "warn", "warning":
		return log.WARN
	case "error":
		return log.ERROR
	case "off":
		return log.OFF
	}
	return log.INFO
}

type multiCloser []io.Closer

func (m multiCloser) Close() error {
	var first error
	for _, c := range m {
		if err := c.Close(); err != nil && first == nil {
			first = err
		}
	}
	return first
}

// New returns a logger writing to stdout and, when configured, to
// Papertrail over UDP syslog. Without Papertrail a LOG_FILE, if set, is
// appended to instead. The returned closer releases those sinks.
func New(prefix string, cfg config.Config) (*log.Logger, io.Closer, error) {
	l := log.New(prefix)
	l.SetLevel(ParseLevel(cfg.LogLevel))

	writers := []io.Writer{os.Stdout}
	var closers multiCloser
	switch {
	case cfg.PapertrailHost != "" && cfg.PapertrailPort != "":
		addr := fmt.Sprintf("%s:%s", cfg.PapertrailHost, cfg.PapertrailPort)
		w, err := syslog.Dial("udp", addr, syslog.LOG_INFO|syslog.LOG_USER, prefix)
		if err != nil {
			return nil, nil, fmt.Errorf("papertrail: %w", err)
		}
		writers = append(writers, w)
		closers = append(closers, w)
	case cfg.LogFile != "":
		if dir := filepath.Dir(cfg.LogFile); dir != "." {
			if err := os.MkdirAll(dir, 0o755); err != nil {
				return nil, nil, fmt.Errorf("log dir: %w", err)
			}
		}
		f, err := os.OpenFile(cfg.LogFile, os.O_CREATE|os.O_APPEND|os.O_WRONLY, 0o644)
		if err != nil {
			return nil, nil, fmt.Errorf("log file: %w", err)
		}
		writers = append(writers, f)
		closers = append(closers, f)
	}
	l.SetOutput(io.MultiWriter(writers...))
	return l, closers, nil
}

// Package logging provides the output channel every venvsync component
// writes its diagnostics to.
package logging

import (
	"fmt"
	"io"
	"log/slog"
	"os"
	"path/filepath"
	"sync"

	"github.com/indaco/venvsync/internal/core"
)

// Channel is a process-wide log sink. The underlying logger is built on
// first use and lives until Close.
type Channel struct {
	name    string
	writer  io.Writer
	file    string
	level   slog.Level
	noTime  bool
	once    sync.Once
	logger  *slog.Logger
	closer  io.Closer
	openErr error
}

// Option configures a Channel.
type Option func(*Channel)

// WithWriter replaces stderr as the primary destination.
func WithWriter(w io.Writer) Option {
	return func(c *Channel) { c.writer = w }
}

// WithFile additionally appends every record to path. An empty path is
// ignored.
func WithFile(path string) Option {
	return func(c *Channel) { c.file = path }
}

// WithLevel sets the minimum level written.
func WithLevel(level slog.Level) Option {
	return func(c *Channel) { c.level = level }
}

// WithoutTime drops the time attribute, which keeps test output stable.
func WithoutTime() Option {
	return func(c *Channel) { c.noTime = true }
}

// New creates a Channel named name. Nothing is opened until the first
// record is written.
func New(name string, opts ...Option) *Channel {
	c := &Channel{name: name, writer: os.Stderr, level: slog.LevelInfo}
	for _, opt := range opts {
		opt(c)
	}
	return c
}

// Discard returns a Channel that drops everything.
func Discard() *Channel {
	return New("discard", WithWriter(io.Discard))
}

// Logger returns the underlying slog logger, creating it if needed.
func (c *Channel) Logger() *slog.Logger {
	c.once.Do(c.init)
	return c.logger
}

func (c *Channel) init() {
	w := c.writer
	if c.file != "" {
		f, err := openAppend(c.file)
		if err != nil {
			c.openErr = err
		} else {
			c.closer = f
			w = io.MultiWriter(c.writer, f)
		}
	}

	opts := &slog.HandlerOptions{Level: c.level}
	if c.noTime {
		opts.ReplaceAttr = func(groups []string, a slog.Attr) slog.Attr {
			if len(groups) == 0 && a.Key == slog.TimeKey {
				return slog.Attr{}
			}
			return a
		}
	}
	c.logger = slog.New(slog.NewTextHandler(w, opts)).With(slog.String("channel", c.name))

	if c.openErr != nil {
		c.logger.Warn("log file unavailable, logging to stderr only", "error", c.openErr)
	}
}

func openAppend(path string) (*os.File, error) {
	if err := os.MkdirAll(filepath.Dir(path), core.PermDir); err != nil {
		return nil, fmt.Errorf("failed to create log directory: %w", err)
	}
	f, err := os.OpenFile(path, os.O_CREATE|os.O_APPEND|os.O_WRONLY, core.PermOwnerRW)
	if err != nil {
		return nil, fmt.Errorf("failed to open log file %q: %w", path, err)
	}
	return f, nil
}

// FileError reports why the log file could not be opened, if it was not.
func (c *Channel) FileError() error {
	c.once.Do(c.init)
	return c.openErr
}

func (c *Channel) Debug(msg string, args ...any) { c.Logger().Debug(msg, args...) }
func (c *Channel) Info(msg string, args ...any)  { c.Logger().Info(msg, args...) }
func (c *Channel) Warn(msg string, args ...any)  { c.Logger().Warn(msg, args...) }
func (c *Channel) Error(msg string, args ...any) { c.Logger().Error(msg, args...) }

// Close releases the log file. The Channel must not be used afterwards.
func (c *Channel) Close() error {
	if c.closer == nil {
		return nil
	}
	err := c.closer.Close()
	c.closer = nil
	return err
}

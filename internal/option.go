package internal

import (
	"io"
	"log/slog"

	"github.com/starford/doclint/internal/checks"
	"github.com/starford/doclint/internal/docs"
	"github.com/starford/doclint/internal/storage"
)

// Option is a functional option for configuring the application.
type Option func(*application)

type application struct {
	config *Config
	out    io.Writer // reports
	logOut io.Writer // structured logs

	logger  *slog.Logger
	store   *storage.FS
	oracle  *docs.Oracle
	closure *docs.Closure
	checks  *checks.Service
}

// WithConfig sets the application configuration.
func WithConfig(cfg *Config) Option {
	return func(a *application) {
		a.config = cfg
	}
}

// WithOutput sets the writer reports are printed to. Defaults to stdout.
func WithOutput(w io.Writer) Option {
	return func(a *application) {
		a.out = w
	}
}

// WithLogOutput sets the writer logs are written to. Defaults to stderr.
func WithLogOutput(w io.Writer) Option {
	return func(a *application) {
		a.logOut = w
	}
}

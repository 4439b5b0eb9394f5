package logger

import (
	"log/slog"

	"github.com/jguyet/wallet-compose-interest-tracker/internal/app/port"
)

// slogAdapter implements port.Logger on top of the global slog logger.
// A non-empty component is attached to every record.
type slogAdapter struct {
	component string
}

// NewSlogAdapter returns a port.Logger writing through the package-level functions.
func NewSlogAdapter() port.Logger {
	return &slogAdapter{}
}

// Named returns a port.Logger that tags records with component.
func Named(component string) port.Logger {
	return &slogAdapter{component: component}
}

func (a *slogAdapter) args(args []any) []any {
	if a.component == "" {
		return args
	}
	return append([]any{slog.String("component", a.component)}, args...)
}

func (a *slogAdapter) Debug(msg string, args ...any) { Debug(msg, a.args(args)...) }

func (a *slogAdapter) Info(msg string, args ...any) { Info(msg, a.args(args)...) }

func (a *slogAdapter) Warn(msg string, args ...any) { Warn(msg, a.args(args)...) }

func (a *slogAdapter) Error(msg string, args ...any) { Error(msg, a.args(args)...) }

// Nop discards everything. Useful in tests.
type Nop struct{}

func (Nop) Debug(string, ...any) {}
func (Nop) Info(string, ...any)  {}
func (Nop) Warn(string, ...any)  {}
func (Nop) Error(string, ...any) {}

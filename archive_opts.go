package zipmem

import "log/slog"

// Option configures an Archive.
type Option func(*Archive)

// WithLogger enables structured logging of parse and serialize events.
// By default logs are discarded.
func WithLogger(logger *slog.Logger) Option {
	return func(a *Archive) {
		a.logger = logger
	}
}

package notify

import "log/slog"

// SlogSink renders toasts as structured log lines. The console's watch
// mode uses it so toasts land in the same stream as everything else.
type SlogSink struct {
	Logger *slog.Logger
}

// Show implements the Sink interface.
func (s SlogSink) Show(t Toast) {
	logger := s.Logger
	if logger == nil {
		logger = slog.Default()
	}
	logger.Info("toast",
		slog.String("level", string(t.Level)),
		slog.String("title", t.Title),
		slog.String("body", t.Body),
	)
}

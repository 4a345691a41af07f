// Package notify is the terminal's toast side channel: success and error
// notifications pushed to connected UI pages, fire-and-forget.
package notify

import "log/slog"

// Notifier emits user-facing notifications. Implementations must never
// block the caller; delivery is best-effort.
type Notifier interface {
	ShowSuccess(message string)
	ShowError(message string)
}

// LogNotifier writes notifications to the structured log. Used as a
// fallback when no UI page is connected, and in tests.
type LogNotifier struct{}

func NewLogNotifier() *LogNotifier {
	return &LogNotifier{}
}

func (n *LogNotifier) ShowSuccess(message string) {
	slog.Info("notification", slog.String("level", "success"), slog.String("message", message))
}

func (n *LogNotifier) ShowError(message string) {
	slog.Warn("notification", slog.String("level", "error"), slog.String("message", message))
}

package notify

import "log"

// Notifier is the seam to whatever user-facing surface hosts this library.
// The core emits intents; it never renders UI itself.
type Notifier interface {
	// Warn surfaces a non-fatal warning (e.g. provider throttling advice).
	Warn(msg string)
	// PromptConfigure asks the user to fix provider configuration, such as a
	// missing API key. reason is a short human-readable explanation.
	PromptConfigure(provider, reason string)
}

// LogNotifier writes notifications to a standard logger.
type LogNotifier struct {
	Log *log.Logger
}

func (n *LogNotifier) logger() *log.Logger {
	if n.Log != nil {
		return n.Log
	}
	return log.Default()
}

func (n *LogNotifier) Warn(msg string) {
	n.logger().Printf("warn: %s", msg)
}

func (n *LogNotifier) PromptConfigure(provider, reason string) {
	n.logger().Printf("action needed: configure %s (%s)", provider, reason)
}

// Nop discards all notifications.
type Nop struct{}

func (Nop) Warn(string) {}

func (Nop) PromptConfigure(string, string) {}

package notify

import (
	"log/slog"
)

// Notifier posts operation outcomes to a Queue and mirrors failures to the
// log.
type Notifier struct {
	queue  *Queue
	logger *slog.Logger
}

func NewNotifier(q *Queue, logger *slog.Logger) *Notifier {
	if logger == nil {
		logger = slog.Default()
	}
	return &Notifier{queue: q, logger: logger}
}

// ReportError posts "Failed to <operation>: <reason>" at error severity.
func (n *Notifier) ReportError(operation string, err error) int64 {
	msg := "Failed to " + operation
	if err != nil {
		msg += ": " + err.Error()
	}

	n.logger.Error("operation failed", "operation", operation, "error", err)
	return n.queue.Add(msg, SeverityError)
}

// ReportSuccess posts msg at success severity.
func (n *Notifier) ReportSuccess(msg string) int64 {
	return n.queue.Add(msg, SeveritySuccess)
}

// Info posts msg at info severity.
func (n *Notifier) Info(msg string) int64 {
	return n.queue.Add(msg, SeverityInfo)
}

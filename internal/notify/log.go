package notify

import (
	"context"

	"go.uber.org/zap"
)

// LogNotifier implements Notifier by writing messages to the log.
type LogNotifier struct {
	logger *zap.Logger
}

func NewLogNotifier(logger *zap.Logger) *LogNotifier {
	return &LogNotifier{logger: logger.With(zap.String("component", "notify"))}
}

func (n *LogNotifier) Publish(_ context.Context, message string) error {
	n.logger.Info("notification", zap.String("message", message))
	return nil
}

package workers

import (
	"context"
	"log/slog"

	"chat-notify/contract"
	"chat-notify/domain/notif"
	"chat-notify/errors"
	"chat-notify/observability"
)

// NotifyWorker drains the change feed sequentially: one record is
// translated and fully published before the next one is read, which
// preserves the store's per-channel ordering. It is the only publisher
// against the registry.
//
// A record that cannot be translated is logged and skipped; losing the
// feed itself ends Run with an error so the supervisor reopens a fresh
// session after the restart delay.
type NotifyWorker struct {
	log        *slog.Logger
	feed       contract.Feed
	registry   contract.IRegistry
	monitoring *observability.MonitoringManager
}

func NewNotifyWorker(log *slog.Logger, feed contract.Feed,
	registry contract.IRegistry, monitoring *observability.MonitoringManager) *NotifyWorker {
	return &NotifyWorker{log: log, feed: feed, registry: registry, monitoring: monitoring}
}

func (w *NotifyWorker) Run(ctx context.Context) error {
	records, err := w.feed.Listen(ctx, notif.ChannelChatChange, notif.ChannelMessageAdded)
	if err != nil {
		return err
	}

	w.log.Info("Listening for store notifications",
		"channels", []string{notif.ChannelChatChange, notif.ChannelMessageAdded})
	w.monitoring.SetFeedUp(true)
	defer w.monitoring.SetFeedUp(false)

	for {
		select {
		case <-ctx.Done():
			return nil
		case record, ok := <-records:
			if !ok {
				return errors.ErrFeedClosed
			}
			w.handle(record)
		}
	}
}

func (w *NotifyWorker) handle(record notif.ChangeRecord) {
	w.monitoring.IncrReceived()

	notification, err := notif.Translate(record)
	if err != nil {
		// Recoverable: one bad record must not stop the feed.
		w.log.Warn("Skipping notification record",
			"channel", record.Channel, "error", err)
		w.monitoring.IncrSkipped()
		return
	}

	// One immutable event value shared across all recipients.
	for userID := range notification.UserIDs {
		w.log.Debug("Publishing event", "user_id", userID, "kind", notification.Event.Kind())
		w.registry.Publish(userID, notification.Event)
		w.monitoring.IncrPublished()
	}
}

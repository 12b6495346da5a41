// Package feed subscribes to the store's notification channels.
package feed

import (
	"context"
	"fmt"
	"log/slog"
	"time"

	"chat-notify/domain/notif"

	"github.com/lib/pq"
)

// PG listens on Postgres NOTIFY channels. Loss of the underlying
// connection closes the record stream: one Listen call is one session,
// and the worker consuming it is expected to run supervised so a new
// session gets opened after the restart delay. Events emitted while no
// session is up are gone; there is no offset or replay log.
type PG struct {
	log          *slog.Logger
	dsn          string
	minReconnect time.Duration
	maxReconnect time.Duration
}

func NewPG(log *slog.Logger, dsn string, minReconnect, maxReconnect time.Duration) *PG {
	return &PG{log: log, dsn: dsn, minReconnect: minReconnect, maxReconnect: maxReconnect}
}

// Listen opens one LISTEN session covering all given channels and
// yields records in the order the store emitted them per channel. The
// returned channel is closed on context cancel or connection loss.
func (f *PG) Listen(ctx context.Context, channels ...string) (<-chan notif.ChangeRecord, error) {
	// A lost connection is surfaced as end-of-stream rather than
	// letting pq silently resubscribe, so the consumer knows a gap
	// happened.
	problems := make(chan error, 1)
	listener := pq.NewListener(f.dsn, f.minReconnect, f.maxReconnect,
		func(ev pq.ListenerEventType, err error) {
			switch ev {
			case pq.ListenerEventDisconnected, pq.ListenerEventConnectionAttemptFailed:
				select {
				case problems <- err:
				default:
				}
			}
		})

	for _, channel := range channels {
		if err := listener.Listen(channel); err != nil {
			_ = listener.Close()
			return nil, fmt.Errorf("listen on %q: %w", channel, err)
		}
	}

	out := make(chan notif.ChangeRecord)
	go func() {
		defer close(out)
		defer func() { _ = listener.Close() }()

		for {
			select {
			case <-ctx.Done():
				return
			case err := <-problems:
				f.log.Error("Change feed connection lost", "error", err)
				return
			case n, ok := <-listener.Notify:
				if !ok {
					f.log.Warn("Change feed notification channel closed")
					return
				}
				if n == nil {
					// pq sends nil after an internal reconnect.
					continue
				}
				record := notif.ChangeRecord{Channel: n.Channel, Payload: n.Extra}
				select {
				case out <- record:
				case <-ctx.Done():
					return
				}
			}
		}
	}()

	return out, nil
}

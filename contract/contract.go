//go:generate go run go.uber.org/mock/mockgen -source=contract.go -destination=../mocks/mock_contract.go -package=mocks
package contract

import (
	"context"
	"reflect"

	"chat-notify/domain"
	"chat-notify/domain/event"
	"chat-notify/domain/notif"
	"chat-notify/runtime"
)

type ISupervisor interface {
	Add(worker ...Worker) ISupervisor
	Run(ctx context.Context)
	Start(ctx context.Context, worker Worker)
	Stop()
}

type WorkerName string

// Worker doesn't protect itself
// Can be silly, focused
type Worker interface {
	Run(ctx context.Context) error
}

// GetWorkerName uses reflection to retrieve the type name of the worker.
// This is used for logging and supervision purposes during worker initialization
// or lifecycle events, avoiding the need for manual naming in the Worker interface.
func GetWorkerName(w Worker) string {
	if w == nil {
		return "NilWorker"
	}
	t := reflect.TypeOf(w)
	for t.Kind() == reflect.Ptr {
		t = t.Elem()
	}
	return t.Name()
}

// Feed yields the store's raw change notifications. The returned
// channel preserves per-channel emission order and closes when the
// underlying connection is lost; a Feed is not restartable, callers
// open a fresh one instead.
type Feed interface {
	Listen(ctx context.Context, channels ...string) (<-chan notif.ChangeRecord, error)
}

// IRegistry is the fan-out surface shared by the publisher worker and
// the per-connection gateway tasks.
type IRegistry interface {
	Subscribe(userID domain.UserID) *runtime.Subscription
	Publish(userID domain.UserID, evt event.AppEvent)
	Len() int
	Dropped() uint64
}

// TokenVerifier validates a bearer credential and resolves the caller.
// Credential issuance lives with the chat server, not here.
type TokenVerifier interface {
	Verify(token string) (domain.UserID, error)
}

package workers

import (
	"context"
	"fmt"
	"log/slog"
	"sync"
	"time"

	"chat-notify/contract"
	"chat-notify/errors"
	"chat-notify/observability"
)

const defaultRestartInterval = 200 * time.Millisecond

// Supervisor owns the hub's background tasks.
// Runs each worker in a goroutine, recovers panics, restarts workers
// that fail, and shuts everything down when the parent context ends.
// Restarts are reported to monitoring so a dying change-feed worker is
// visible from the stats endpoint instead of silently vanishing.
type Supervisor struct {
	Cancel     context.CancelFunc
	wg         *sync.WaitGroup
	log        *slog.Logger
	monitoring *observability.MonitoringManager
	interval   time.Duration
	workers    []contract.Worker
}

func NewSupervisor(log *slog.Logger, monitoring *observability.MonitoringManager,
	restartInterval time.Duration) *Supervisor {
	if restartInterval <= 0 {
		restartInterval = defaultRestartInterval
	}
	return &Supervisor{
		wg:         &sync.WaitGroup{},
		log:        log,
		monitoring: monitoring,
		interval:   restartInterval,
	}
}

func (s *Supervisor) Add(worker ...contract.Worker) contract.ISupervisor {
	s.workers = append(s.workers, worker...)
	return s
}

// Run supervises every added worker until the parent context is
// canceled or all workers have finished cleanly.
func (s *Supervisor) Run(ctx context.Context) {
	supervisedCtx, cancel := context.WithCancel(ctx)
	s.Cancel = cancel
	defer s.Cancel()

	for _, worker := range s.workers {
		s.Start(supervisedCtx, worker)
	}
	s.wg.Wait()
}

// Start runs one worker under supervision. A panic or error in the
// worker restarts it after the configured delay; a nil return retires
// it. A failing worker never takes the supervisor down with it.
func (s *Supervisor) Start(ctx context.Context, worker contract.Worker) {
	s.wg.Add(1)
	workerName := contract.GetWorkerName(worker)

	go func() {
		defer s.wg.Done()

		for {
			if ctx.Err() != nil {
				s.log.Info(fmt.Sprintf("Stopping : %s", workerName))
				return
			}

			err := func() (err error) {
				defer func() {
					if r := recover(); r != nil {
						s.log.Error("Worker panicked", "name", workerName, "panic", r)
						err = errors.ErrWorkerPanic
					}
				}()
				return worker.Run(ctx)
			}()

			if err == nil {
				// Terminated properly, never restart !
				s.log.Info(fmt.Sprintf("Worker finished : %s", workerName))
				return
			}

			if ctx.Err() != nil {
				s.log.Info("Worker stopped (context canceled)", "name", workerName)
				return
			}

			s.log.Warn("Worker crashed, restarting", "name", workerName, "error", err)
			if s.monitoring != nil {
				s.monitoring.WorkerRestarted()
			}
			select {
			case <-ctx.Done():
				// Context canceled: priority stop, skip the restart delay.
				return
			case <-time.After(s.interval):
				// Delay elapsed and context is still active.
			}
		}
	}()
}

// Stop cancels every supervised goroutine. Run keeps waiting for them
// to drain before returning.
func (s *Supervisor) Stop() {
	if s.Cancel != nil {
		s.Cancel()
	}
}

package workers

import (
	"context"
	"fmt"
	"log/slog"
	"sync"

	"webrelay/contract"
	"webrelay/errors"
)

// Supervisor Own a context and a Cancel function
// Run each unit in a goroutine
// Check panics and errors
// Shutdown properly if parent context is canceled
// Wait for the end of all goroutines via WaitGroup
//
// The two relay units are independent failure domains: a crash in one must
// never take down the other. A crashed unit is NOT restarted; it stays down
// until the process is relaunched.
type Supervisor struct {
	Cancel  context.CancelFunc // To stop the context
	wg      *sync.WaitGroup    // Wait for the end of goroutines
	log     *slog.Logger
	workers []contract.Worker
}

func NewSupervisor(log *slog.Logger) *Supervisor {
	return &Supervisor{wg: &sync.WaitGroup{}, log: log}
}

// Run Create a local cancellation trigger tied to the parent ctx
//
//	// If the parent (main) cancels, we Cancel.
//	// If WE call s.Cancel(), only our children Cancel.
func (s *Supervisor) Run(ctx context.Context) {
	supervisedCtx, cancel := context.WithCancel(ctx)
	s.Cancel = cancel
	// Safety: ensure resources are cleaned up when Run exits
	defer s.Cancel()

	for _, worker := range s.workers {
		s.Start(supervisedCtx, worker)
	}
	s.wg.Wait()
}

func (s *Supervisor) Add(worker ...contract.Worker) contract.ISupervisor {
	s.workers = append(s.workers, worker...)
	return s
}

// Start runs a unit under supervision.
// The unit is executed in a dedicated goroutine. If its Run method panics,
// the supervisor recovers and records the crash; the sibling units keep
// running and the supervisor itself stays alive until all of them return.
func (s *Supervisor) Start(ctx context.Context, worker contract.Worker) {
	s.wg.Add(1)
	workerName := contract.GetWorkerName(worker)

	go func() {
		defer s.wg.Done()

		err := func() (err error) {
			defer func() {
				if r := recover(); r != nil {
					err = errors.ErrWorkerPanic
				}
			}()
			return worker.Run(ctx)
		}()

		switch {
		case err == nil:
			// Terminated properly
			s.log.Info(fmt.Sprintf("Worker finished : %s", workerName))
		case ctx.Err() != nil:
			s.log.Info("Worker stopped (context canceled)", "name", workerName)
		default:
			s.log.Error("Worker crashed, staying down", "name", workerName, "error", err)
		}
	}()
}

// Stop Cancel all goroutines listening channel for Ctx.Done
// Supervisor will wait for all goroutines to finish
func (s *Supervisor) Stop() {
	if s.Cancel != nil {
		s.Cancel()
	}
}

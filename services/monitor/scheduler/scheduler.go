package scheduler

import (
	"context"
	"errors"
	"sync"
	"time"

	logger "github.com/multiversx/mx-chain-logger-go"
)

var log = logger.GetOrCreate("scheduler")

// scheduler drives periodic collection and evaluation ticks. Its lifecycle is
// explicit and owned by the caller: no package-level timer state exists. Ticks run
// serially and a tick that outlasts the interval causes the pending tick to be
// skipped, not queued.
type scheduler struct {
	interval  time.Duration
	handler   func(ctx context.Context)
	mutCancel sync.Mutex
	cancel    func()
	wg        sync.WaitGroup
}

// NewScheduler creates a new scheduler calling the provided handler at every tick
func NewScheduler(handler func(ctx context.Context), interval time.Duration) (*scheduler, error) {
	if handler == nil {
		return nil, errors.New("nil tick handler")
	}
	if interval <= 0 {
		return nil, errors.New("invalid tick interval")
	}

	return &scheduler{
		interval: interval,
		handler:  handler,
	}, nil
}

// Start launches the periodic loop. Starting an already-started scheduler is a
// no-op. The first tick runs immediately.
func (s *scheduler) Start() {
	s.mutCancel.Lock()
	defer s.mutCancel.Unlock()

	if s.cancel != nil {
		return
	}

	var ctx context.Context
	ctx, s.cancel = context.WithCancel(context.Background())

	s.wg.Add(1)
	go s.run(ctx)
}

func (s *scheduler) run(ctx context.Context) {
	defer s.wg.Done()

	ticker := time.NewTicker(s.interval)
	defer ticker.Stop()

	s.executeTick(ctx)

	for {
		select {
		case <-ctx.Done():
			return
		case <-ticker.C:
			s.executeTick(ctx)

			// a tick that took longer than the interval leaves at most one pending
			// tick in the channel: drain it so work does not pile up
			select {
			case <-ticker.C:
				log.Debug("tick outlasted the interval, skipping the pending tick", "interval", s.interval)
			default:
			}
		}
	}
}

// executeTick calls the handler, recovering any panic so a single failing cycle
// does not stop future ticks
func (s *scheduler) executeTick(ctx context.Context) {
	defer func() {
		r := recover()
		if r != nil {
			log.Error("tick panicked", "reason", r)
		}
	}()

	s.handler(ctx)
}

// Close stops the periodic loop and waits for an in-flight tick to finish.
// Closing an already-closed or never-started scheduler is a no-op.
func (s *scheduler) Close() error {
	s.mutCancel.Lock()
	defer s.mutCancel.Unlock()

	if s.cancel == nil {
		return nil
	}

	s.cancel()
	s.cancel = nil
	s.wg.Wait()

	return nil
}

// IsInterfaceNil returns true if the value under the interface is nil
func (s *scheduler) IsInterfaceNil() bool {
	return s == nil
}

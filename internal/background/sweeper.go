package background

import (
	"context"
	"log/slog"
	"time"

	"github.com/stockroom-labs/stockroom/internal/admission"
)

// Sweeper periodically evicts idle client records from the admission
// controller so abandoned identifiers do not accumulate for the process
// lifetime.
type Sweeper struct {
	controller *admission.Controller
	logger     *slog.Logger
	interval   time.Duration
	stopCh     chan struct{}
}

// NewSweeper creates a sweeper for the given controller
func NewSweeper(controller *admission.Controller, logger *slog.Logger, interval time.Duration) *Sweeper {
	return &Sweeper{
		controller: controller,
		logger:     logger,
		interval:   interval,
		stopCh:     make(chan struct{}),
	}
}

// Start runs the periodic sweep until Stop is called or ctx is cancelled
func (s *Sweeper) Start(ctx context.Context) {
	ticker := time.NewTicker(s.interval)
	defer ticker.Stop()

	for {
		select {
		case <-ticker.C:
			s.runSweep()
		case <-s.stopCh:
			s.logger.Info("admission sweeper stopped")
			return
		case <-ctx.Done():
			s.logger.Info("admission sweeper context cancelled")
			return
		}
	}
}

func (s *Sweeper) runSweep() {
	evicted := s.controller.Sweep(time.Now())
	if evicted > 0 {
		s.logger.Info("evicted idle admission records",
			slog.Int("evicted", evicted),
			slog.Int("remaining", s.controller.Size()))
	}
}

// Stop signals the sweeper to stop
func (s *Sweeper) Stop() {
	close(s.stopCh)
}

package service

import (
	"context"
	"log/slog"
	"time"

	"github.com/AvallenSolutions/kindredcollective/internal/kindred/store"
)

// HousekeepingService periodically purges rows nothing can redeem any more:
// expired unaccepted organisation invites and expired never-used invite links.
type HousekeepingService struct {
	Store    store.Store
	Logger   *slog.Logger
	Interval time.Duration

	stop chan struct{}
	done chan struct{}
}

const defaultHousekeepingInterval = time.Hour

// NewHousekeepingService builds a sweep loop over the given store.
func NewHousekeepingService(st store.Store, logger *slog.Logger, interval time.Duration) *HousekeepingService {
	return &HousekeepingService{
		Store:    st,
		Logger:   logger,
		Interval: interval,
	}
}

// Start launches the background sweep loop. Call Stop to terminate it.
func (s *HousekeepingService) Start() {
	if s.Interval <= 0 {
		s.Interval = defaultHousekeepingInterval
	}
	s.stop = make(chan struct{})
	s.done = make(chan struct{})
	go s.run()
}

// Stop terminates the sweep loop and waits for the in-flight sweep to finish.
func (s *HousekeepingService) Stop() {
	if s.stop == nil {
		return
	}
	close(s.stop)
	<-s.done
}

func (s *HousekeepingService) run() {
	defer close(s.done)

	ticker := time.NewTicker(s.Interval)
	defer ticker.Stop()

	// One sweep at startup so a restart doesn't wait a full interval.
	s.sweep()

	for {
		select {
		case <-ticker.C:
			s.sweep()
		case <-s.stop:
			return
		}
	}
}

func (s *HousekeepingService) sweep() {
	ctx, cancel := context.WithTimeout(context.Background(), 30*time.Second)
	defer cancel()

	if err := s.Store.OrganisationInvites().DeleteExpiredUnaccepted(ctx); err != nil {
		s.Logger.Error("housekeeping: failed to purge expired organisation invites",
			slog.Any("error", err),
		)
	}
	if err := s.Store.InviteLinks().DeleteExpiredUnused(ctx); err != nil {
		s.Logger.Error("housekeeping: failed to purge expired invite links",
			slog.Any("error", err),
		)
	}
}

package services

import (
	"log"
	"time"
)

// Sweeper periodically runs the subscription expiry pass in-process, for
// deployments without an external cron hitting the cron endpoint.
type Sweeper struct {
	subscriptions *SubscriptionService
	interval      time.Duration
	stop          chan struct{}
	done          chan struct{}
}

func NewSweeper(subscriptions *SubscriptionService, interval time.Duration) *Sweeper {
	return &Sweeper{
		subscriptions: subscriptions,
		interval:      interval,
		stop:          make(chan struct{}),
		done:          make(chan struct{}),
	}
}

func (s *Sweeper) Start() {
	go s.run()
	log.Printf("subscription sweeper started (interval %s)", s.interval)
}

func (s *Sweeper) Stop() {
	close(s.stop)
	<-s.done
}

func (s *Sweeper) run() {
	defer close(s.done)
	ticker := time.NewTicker(s.interval)
	defer ticker.Stop()

	for {
		select {
		case <-s.stop:
			return
		case <-ticker.C:
			expired, err := s.subscriptions.ExpireSweep(time.Now())
			if err != nil {
				log.Printf("sweeper: expiry pass failed: %v", err)
				continue
			}
			if expired > 0 {
				log.Printf("sweeper: deactivated %d expired subscriptions", expired)
			}
		}
	}
}

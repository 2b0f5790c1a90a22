package trash

import (
	"context"
	"log"
	"time"
)

// SweeperActorID marks sweeper-originated writes on the bus.
const SweeperActorID = "SYSTEM"

// Sweeper periodically purges trashed items whose retention window has
// elapsed. It is opt-in; by default expired items stay listed until a
// terminal purges them by hand.
type Sweeper struct {
	service  *Service
	interval time.Duration
}

func NewSweeper(service *Service, interval time.Duration) *Sweeper {
	return &Sweeper{service: service, interval: interval}
}

func (s *Sweeper) Run(ctx context.Context) {
	ticker := time.NewTicker(s.interval)
	defer ticker.Stop()
	for {
		select {
		case <-ctx.Done():
			return
		case <-ticker.C:
			n, err := s.service.SweepExpired(SweeperActorID)
			if err != nil {
				log.Printf("trash: sweep: %v", err)
				continue
			}
			if n > 0 {
				log.Printf("trash: purged %d expired item(s)", n)
			}
		}
	}
}

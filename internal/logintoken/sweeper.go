package logintoken

import (
	"context"
	"log/slog"
	"time"

	"rentcar-backoffice/internal/logintoken/repository"
)

// Sweeper periodically deactivates expired login tokens so that stale rows do
// not stay honored forever if a client never logs out.
type Sweeper struct {
	repo     repository.Repository
	interval time.Duration
	logger   *slog.Logger
	nowF     func() time.Time
}

func NewSweeper(repo repository.Repository, interval time.Duration, logger *slog.Logger) *Sweeper {
	if interval <= 0 {
		interval = 5 * time.Minute
	}
	return &Sweeper{
		repo:     repo,
		interval: interval,
		logger:   logger,
		nowF:     func() time.Time { return time.Now().UTC() },
	}
}

// Run sweeps once immediately and then on every tick until ctx is canceled.
func (s *Sweeper) Run(ctx context.Context) {
	s.sweep(ctx)
	ticker := time.NewTicker(s.interval)
	defer ticker.Stop()
	for {
		select {
		case <-ctx.Done():
			return
		case <-ticker.C:
			s.sweep(ctx)
		}
	}
}

func (s *Sweeper) sweep(ctx context.Context) {
	n, err := s.repo.DeactivateExpired(ctx, s.nowF())
	if err != nil {
		s.logger.Error("login token sweep failed", "error", err)
		return
	}
	if n > 0 {
		s.logger.Info("deactivated expired login tokens", "count", n)
	}
}

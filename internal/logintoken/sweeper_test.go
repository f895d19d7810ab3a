package logintoken

import (
	"context"
	"io"
	"log/slog"
	"sync"
	"testing"
	"time"

	"rentcar-backoffice/internal/logintoken/domain"
)

type fakeTokenRepo struct {
	mu     sync.Mutex
	tokens map[string]*domain.LoginToken
	sweeps int
}

func newFakeTokenRepo() *fakeTokenRepo {
	return &fakeTokenRepo{tokens: make(map[string]*domain.LoginToken)}
}

func (f *fakeTokenRepo) Create(_ context.Context, t *domain.LoginToken) error {
	f.mu.Lock()
	defer f.mu.Unlock()
	cp := *t
	f.tokens[t.JTI] = &cp
	return nil
}

func (f *fakeTokenRepo) GetActiveByJTI(_ context.Context, jti string, now time.Time) (*domain.LoginToken, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	t, ok := f.tokens[jti]
	if !ok || !t.IsActive || !t.ExpiresAt.After(now) {
		return nil, nil
	}
	cp := *t
	return &cp, nil
}

func (f *fakeTokenRepo) DeactivateByJTI(_ context.Context, jti string) error {
	f.mu.Lock()
	defer f.mu.Unlock()
	if t, ok := f.tokens[jti]; ok {
		t.IsActive = false
	}
	return nil
}

func (f *fakeTokenRepo) DeactivateAllByUser(_ context.Context, userID string) error {
	f.mu.Lock()
	defer f.mu.Unlock()
	for _, t := range f.tokens {
		if t.UserID == userID {
			t.IsActive = false
		}
	}
	return nil
}

func (f *fakeTokenRepo) DeactivateExpired(_ context.Context, now time.Time) (int64, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.sweeps++
	var n int64
	for _, t := range f.tokens {
		if t.IsActive && !t.ExpiresAt.After(now) {
			t.IsActive = false
			n++
		}
	}
	return n, nil
}

func TestSweeperDeactivatesExpiredTokens(t *testing.T) {
	repo := newFakeTokenRepo()
	now := time.Now().UTC()
	_ = repo.Create(context.Background(), &domain.LoginToken{
		ID: "t1", UserID: "u1", JTI: "expired", IsActive: true,
		ExpiresAt: now.Add(-time.Minute), CreatedAt: now.Add(-2 * time.Hour),
	})
	_ = repo.Create(context.Background(), &domain.LoginToken{
		ID: "t2", UserID: "u1", JTI: "live", IsActive: true,
		ExpiresAt: now.Add(time.Hour), CreatedAt: now,
	})

	s := NewSweeper(repo, time.Hour, slog.New(slog.NewTextHandler(io.Discard, nil)))
	s.sweep(context.Background())

	if got, _ := repo.GetActiveByJTI(context.Background(), "expired", now); got != nil {
		t.Fatalf("expected expired token to be deactivated, got %+v", got)
	}
	if got, _ := repo.GetActiveByJTI(context.Background(), "live", now); got == nil {
		t.Fatal("expected live token to stay active")
	}
}

func TestSweeperRunStopsOnCancel(t *testing.T) {
	repo := newFakeTokenRepo()
	s := NewSweeper(repo, 10*time.Millisecond, slog.New(slog.NewTextHandler(io.Discard, nil)))

	ctx, cancel := context.WithCancel(context.Background())
	done := make(chan struct{})
	go func() {
		s.Run(ctx)
		close(done)
	}()

	time.Sleep(35 * time.Millisecond)
	cancel()
	select {
	case <-done:
	case <-time.After(time.Second):
		t.Fatal("sweeper did not stop after cancel")
	}

	repo.mu.Lock()
	sweeps := repo.sweeps
	repo.mu.Unlock()
	if sweeps < 2 {
		t.Fatalf("expected at least 2 sweeps, got %d", sweeps)
	}
}

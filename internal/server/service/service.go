package service

import (
	"context"
	"errors"
	"fmt"
	"sync"
	"time"

	"chessduel/internal/server/game"
	"chessduel/internal/server/storage"

	"go.uber.org/zap"
)

const (
	DefaultTokenTTL    = 7 * 24 * time.Hour
	CleanupJobInterval = 1 * time.Hour
)

// Config wires the optional persistence layers and identity secret
type Config struct {
	TokenSecret []byte
	TokenTTL    time.Duration
	Store       *storage.Store         // sqlite audit log, nil disables
	Snapshots   *storage.SnapshotStore // badger game snapshots, nil disables
	Logger      *zap.Logger
}

// Service owns the live games and coordinates identity, waiting and storage
type Service struct {
	games     map[string]*game.Game
	mu        sync.RWMutex
	store     *storage.Store
	snapshots *storage.SnapshotStore
	secret    []byte
	tokenTTL  time.Duration
	waiter    *WaitRegistry
	log       *zap.Logger
}

// New creates a service instance with optional storage
func New(cfg Config) *Service {
	log := cfg.Logger
	if log == nil {
		log = zap.NewNop()
	}
	ttl := cfg.TokenTTL
	if ttl <= 0 {
		ttl = DefaultTokenTTL
	}
	return &Service{
		games:     make(map[string]*game.Game),
		store:     cfg.Store,
		snapshots: cfg.Snapshots,
		secret:    cfg.TokenSecret,
		tokenTTL:  ttl,
		waiter:    NewWaitRegistry(),
		log:       log.Named("service"),
	}
}

// GetStorageHealth returns the audit log status
func (s *Service) GetStorageHealth() string {
	if s.store == nil {
		return "disabled"
	}
	if s.store.IsHealthy() {
		return "ok"
	}
	return "degraded"
}

// GetSnapshotHealth reports whether game snapshots are kept
func (s *Service) GetSnapshotHealth() string {
	if s.snapshots == nil {
		return "disabled"
	}
	return "ok"
}

// RegisterWait registers a client to wait for game state changes
func (s *Service) RegisterWait(ctx context.Context, gameID string, moveCount int) <-chan struct{} {
	return s.waiter.RegisterWait(ctx, gameID, moveCount)
}

// Waiting returns the number of long-poll waiters registered on a game
func (s *Service) Waiting(gameID string) int {
	return s.waiter.Waiting(gameID)
}

// RunCleanupJob periodically prunes identities whose tokens have expired
func (s *Service) RunCleanupJob(ctx context.Context, interval time.Duration) {
	ticker := time.NewTicker(interval)
	defer ticker.Stop()

	for {
		select {
		case <-ctx.Done():
			return
		case <-ticker.C:
			s.cleanupExpired()
		}
	}
}

func (s *Service) cleanupExpired() {
	if s.store == nil {
		return
	}
	deleted, err := s.store.DeleteExpiredPlayers(time.Now().Add(-s.tokenTTL))
	if err != nil {
		s.log.Warn("cleanup: failed to delete expired players", zap.Error(err))
		return
	}
	if deleted > 0 {
		s.log.Info("cleanup: deleted expired players", zap.Int64("count", deleted))
	}
}

// Shutdown gracefully shuts down the service
func (s *Service) Shutdown(timeout time.Duration) error {
	var errs []error

	if err := s.waiter.Shutdown(timeout); err != nil {
		errs = append(errs, fmt.Errorf("wait registry: %w", err))
	}

	s.mu.Lock()
	defer s.mu.Unlock()

	// Final snapshot of every live game
	if s.snapshots != nil {
		for id, g := range s.games {
			if err := s.snapshots.Save(id, g.Record()); err != nil {
				errs = append(errs, fmt.Errorf("snapshot %s: %w", id, err))
			}
		}
		if err := s.snapshots.Close(); err != nil {
			errs = append(errs, fmt.Errorf("snapshots: %w", err))
		}
	}

	s.games = make(map[string]*game.Game)

	if s.store != nil {
		if err := s.store.Close(); err != nil {
			errs = append(errs, fmt.Errorf("storage: %w", err))
		}
	}

	return errors.Join(errs...)
}

package service

import (
	"encoding/json"
	"errors"
	"fmt"
	"time"

	"chessduel/internal/server/game"
	"chessduel/internal/server/rules"
	"chessduel/internal/server/storage"

	"github.com/google/uuid"
	"go.uber.org/zap"
)

var ErrGameNotFound = errors.New("game not found")

// GenerateGameID creates a new unique game ID
func (s *Service) GenerateGameID() string {
	s.mu.RLock()
	defer s.mu.RUnlock()

	for {
		id := uuid.New().String()
		if _, exists := s.games[id]; !exists {
			return id
		}
	}
}

// CreateGame registers a new game in the starting position
func (s *Service) CreateGame(id string) (*game.Game, error) {
	s.mu.Lock()
	if _, exists := s.games[id]; exists {
		s.mu.Unlock()
		return nil, fmt.Errorf("game %s already exists", id)
	}
	g := game.New(id)
	s.games[id] = g
	s.mu.Unlock()

	if s.store != nil {
		s.store.RecordNewGame(storage.GameRecord{
			GameID:     id,
			InitialFEN: g.InitialFEN(),
			CreatedUTC: g.CreatedAt(),
		})
	}
	s.saveSnapshot(g)

	s.log.Info("game created", zap.String("gameId", id))
	return g, nil
}

// GetGame retrieves a game by ID
func (s *Service) GetGame(gameID string) (*game.Game, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	g, ok := s.games[gameID]
	if !ok {
		return nil, fmt.Errorf("%w: %s", ErrGameNotFound, gameID)
	}
	return g, nil
}

// GameCount returns the number of live games
func (s *Service) GameCount() int {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return len(s.games)
}

// JoinGame seats playerID and wakes pollers so they see the new seating
func (s *Service) JoinGame(gameID, playerID string, color rules.Color) (*game.Game, error) {
	g, err := s.GetGame(gameID)
	if err != nil {
		return nil, err
	}
	if err := g.Join(playerID, color); err != nil {
		return g, err
	}

	if s.store != nil {
		s.store.RecordSeat(gameID, color.String(), playerID)
	}
	s.saveSnapshot(g)
	s.waiter.BroadcastGame(gameID)

	s.log.Info("player seated",
		zap.String("gameId", gameID),
		zap.String("playerId", playerID),
		zap.String("color", color.Name()))
	return g, nil
}

// ApplyMove executes a move and, on success, records it and notifies
// waiting clients. Rule rejections are returned unchanged.
func (s *Service) ApplyMove(gameID, playerID string, m rules.Move) (*game.Game, error) {
	g, err := s.GetGame(gameID)
	if err != nil {
		return nil, err
	}

	snap, err := g.Apply(playerID, m)
	if err != nil {
		return g, err
	}
	moveCount := g.MoveCount()

	if s.store != nil {
		s.store.RecordMove(storage.MoveRecord{
			GameID:       gameID,
			MoveNumber:   moveCount,
			Notation:     snap.Move,
			FENAfterMove: snap.FEN,
			PlayerColor:  snap.Mover.String(),
			MoveTimeUTC:  snap.At,
		})
	}
	s.saveSnapshot(g)
	s.waiter.NotifyGame(gameID, moveCount)

	if state := g.State(); state.IsOver() {
		s.log.Info("game finished", zap.String("gameId", gameID), zap.Stringer("state", state))
	}
	return g, nil
}

// DeleteGame removes a game from memory and the snapshot store. The audit
// log keeps its rows.
func (s *Service) DeleteGame(gameID string) error {
	s.mu.Lock()
	if _, ok := s.games[gameID]; !ok {
		s.mu.Unlock()
		return fmt.Errorf("%w: %s", ErrGameNotFound, gameID)
	}
	delete(s.games, gameID)
	s.mu.Unlock()

	s.waiter.RemoveGame(gameID)

	if s.snapshots != nil {
		if err := s.snapshots.Delete(gameID); err != nil {
			s.log.Warn("snapshot delete failed", zap.String("gameId", gameID), zap.Error(err))
		}
	}
	return nil
}

// RestoreGames loads every stored snapshot into memory and returns how many
// games were resumed
func (s *Service) RestoreGames() (int, error) {
	if s.snapshots == nil {
		return 0, nil
	}

	restored := 0
	err := s.snapshots.Each(func(gameID string, raw []byte) error {
		var rec game.Record
		if err := json.Unmarshal(raw, &rec); err != nil {
			return fmt.Errorf("decode: %w", err)
		}
		g, err := game.Restore(rec)
		if err != nil {
			return err
		}

		s.mu.Lock()
		s.games[gameID] = g
		s.mu.Unlock()
		restored++
		return nil
	})
	if err != nil {
		return restored, fmt.Errorf("restore games: %w", err)
	}

	s.log.Info("games restored", zap.Int("count", restored))
	return restored, nil
}

func (s *Service) saveSnapshot(g *game.Game) {
	if s.snapshots == nil {
		return
	}
	start := time.Now()
	if err := s.snapshots.Save(g.ID(), g.Record()); err != nil {
		s.log.Warn("snapshot save failed", zap.String("gameId", g.ID()), zap.Error(err))
		return
	}
	s.log.Debug("snapshot saved", zap.String("gameId", g.ID()), zap.Duration("took", time.Since(start)))
}

package service

import (
	"errors"
	"fmt"
	"time"

	"chessduel/internal/server/storage"

	"github.com/google/uuid"
	"github.com/lixenwraith/auth"
)

// Identity is a freshly issued player id with its signed token
type Identity struct {
	PlayerID  string
	Token     string
	ExpiresAt time.Time
}

var ErrNoSecret = errors.New("token secret not configured")

// IssuePlayer creates a new anonymous player identity. The token carries
// the id as its subject and is what clients present in the playerid cookie
// or as a bearer token.
func (s *Service) IssuePlayer() (Identity, error) {
	if len(s.secret) == 0 {
		return Identity{}, ErrNoSecret
	}

	playerID := uuid.New().String()
	now := time.Now().UTC()
	claims := map[string]any{
		"kind": "player",
	}
	token, err := auth.GenerateHS256Token(s.secret, playerID, claims, s.tokenTTL)
	if err != nil {
		return Identity{}, fmt.Errorf("sign player token: %w", err)
	}

	if s.store != nil {
		s.store.RecordPlayer(storage.PlayerRecord{PlayerID: playerID, IssuedUTC: now})
	}

	return Identity{
		PlayerID:  playerID,
		Token:     token,
		ExpiresAt: now.Add(s.tokenTTL),
	}, nil
}

// ValidateToken verifies a player token and returns the player id with claims
func (s *Service) ValidateToken(token string) (string, map[string]any, error) {
	if len(s.secret) == 0 {
		return "", nil, ErrNoSecret
	}
	return auth.ValidateHS256Token(s.secret, token)
}

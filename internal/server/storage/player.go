package storage

import (
	"database/sql"
	"fmt"
	"time"
)

// RecordPlayer asynchronously logs an issued identity
func (s *Store) RecordPlayer(record PlayerRecord) {
	s.enqueue("player", func(tx *sql.Tx) error {
		_, err := tx.Exec(`INSERT OR IGNORE INTO players (player_id, issued_utc) VALUES (?, ?)`,
			record.PlayerID, record.IssuedUTC)
		return err
	})
}

// CountPlayers returns the number of logged identities
func (s *Store) CountPlayers() (int, error) {
	var n int
	if err := s.db.QueryRow(`SELECT COUNT(*) FROM players`).Scan(&n); err != nil {
		return 0, fmt.Errorf("count players: %w", err)
	}
	return n, nil
}

// DeleteExpiredPlayers removes identities issued before cutoff. Their tokens
// no longer validate, so the rows are dead weight.
func (s *Store) DeleteExpiredPlayers(cutoff time.Time) (int64, error) {
	result, err := s.db.Exec(`DELETE FROM players WHERE issued_utc < ?`, cutoff.UTC())
	if err != nil {
		return 0, err
	}
	return result.RowsAffected()
}

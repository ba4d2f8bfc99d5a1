package services

import (
	"context"
	"database/sql"
	"fmt"
	"strconv"

	"github.com/beachrally/tournament-server/brackets"
)

// runInTx wraps fn in a transaction, rolling back on error or panic. A nil
// db runs fn directly, without transactional guarantees.
func runInTx(ctx context.Context, db *sql.DB, fn func(tx *sql.Tx) error) error {
	if db == nil {
		return fn(nil)
	}
	tx, err := db.BeginTx(ctx, nil)
	if err != nil {
		return fmt.Errorf("failed to begin transaction: %w", err)
	}
	defer func() {
		if p := recover(); p != nil {
			_ = tx.Rollback()
			panic(p)
		}
	}()

	if err := fn(tx); err != nil {
		if rbErr := tx.Rollback(); rbErr != nil {
			return fmt.Errorf("%w (rollback also failed: %v)", err, rbErr)
		}
		return err
	}
	if err := tx.Commit(); err != nil {
		return fmt.Errorf("failed to commit transaction: %w", err)
	}
	return nil
}

// broadcastToRoom pushes a websocket event to a tournament's room. A nil hub
// is a no-op, so services stay usable without live updates.
func broadcastToRoom(hub *brackets.Hub, tournamentID int, msgType string, payload interface{}) {
	if hub == nil {
		return
	}
	room := strconv.Itoa(tournamentID)
	hub.BroadcastToRoom(room, brackets.WebSocketMessage{
		Type:    msgType,
		Payload: payload,
		RoomID:  room,
	})
}

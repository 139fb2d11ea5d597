package repository

import (
	"context"
	"database/sql"
	"fmt"
	"time"

	"github.com/google/uuid"

	"chat-widget/backend/internal/model"
)

type sqliteRepository struct {
	db *sql.DB
}

// NewSQLiteRepository keeps history rows in the `history` table created by
// database.InitDB.
func NewSQLiteRepository(db *sql.DB) HistoryStore {
	return &sqliteRepository{db: db}
}

func (r *sqliteRepository) Load(ctx context.Context, key string) ([]model.ChatMessage, error) {
	query := "SELECT role, content FROM history WHERE conversation_key = ? ORDER BY seq ASC"
	rows, err := r.db.QueryContext(ctx, query, key)
	if err != nil {
		return nil, fmt.Errorf("could not load history: %w", err)
	}
	defer rows.Close()

	history := []model.ChatMessage{}
	for rows.Next() {
		var msg model.ChatMessage
		if err := rows.Scan(&msg.Role, &msg.Content); err != nil {
			return nil, fmt.Errorf("could not scan history row: %w", err)
		}
		history = append(history, msg)
	}
	return history, rows.Err()
}

// Append inserts the messages and trims the conversation in one transaction.
func (r *sqliteRepository) Append(ctx context.Context, key string, limit int, msgs ...model.ChatMessage) error {
	if len(msgs) == 0 {
		return nil
	}

	tx, err := r.db.BeginTx(ctx, nil)
	if err != nil {
		return fmt.Errorf("could not begin transaction: %w", err)
	}
	// Ensure transaction is rolled back on error
	defer tx.Rollback()

	insertQuery := "INSERT INTO history (id, conversation_key, role, content, created_at) VALUES (?, ?, ?, ?, ?)"
	now := time.Now().UTC()
	for _, msg := range msgs {
		if _, err := tx.ExecContext(ctx, insertQuery, uuid.NewString(), key, string(msg.Role), msg.Content, now); err != nil {
			return fmt.Errorf("could not insert history entry: %w", err)
		}
	}

	if limit > 0 {
		trimQuery := `
			DELETE FROM history
			WHERE conversation_key = ? AND seq NOT IN (
				SELECT seq FROM history WHERE conversation_key = ? ORDER BY seq DESC LIMIT ?
			)
		`
		if _, err := tx.ExecContext(ctx, trimQuery, key, key, limit); err != nil {
			return fmt.Errorf("could not trim history: %w", err)
		}
	}

	return tx.Commit()
}

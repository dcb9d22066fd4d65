package repository

import (
	"context"
	"database/sql"
	"fmt"

	"github.com/rs/zerolog"
)

const friendshipAccepted = "ACCEPTED"

type FriendshipRepository struct {
	db     *sql.DB
	logger zerolog.Logger
}

func NewFriendshipRepository(db *sql.DB, logger zerolog.Logger) *FriendshipRepository {
	return &FriendshipRepository{db: db, logger: logger}
}

// FriendIDs returns the accepted friends of userID, whichever side of the
// friendship they are on.
func (r *FriendshipRepository) FriendIDs(ctx context.Context, userID string) ([]string, error) {
	const query = `
		SELECT CASE WHEN requester_id = ? THEN addressee_id ELSE requester_id END
		FROM friendships
		WHERE (requester_id = ? OR addressee_id = ?) AND status = ?`

	rows, err := r.db.QueryContext(ctx, query, userID, userID, userID, friendshipAccepted)
	if err != nil {
		return nil, fmt.Errorf("failed to query friend ids: %w", err)
	}
	defer rows.Close()

	var ids []string
	for rows.Next() {
		var id string
		if err := rows.Scan(&id); err != nil {
			return nil, fmt.Errorf("failed to scan friend id: %w", err)
		}
		ids = append(ids, id)
	}
	return ids, rows.Err()
}

package repository

import (
	"context"
	"database/sql"
	"fmt"

	"crux-tracker/internal/domain"

	"github.com/rs/zerolog"
)

type UserRepository struct {
	db     *sql.DB
	logger zerolog.Logger
}

func NewUserRepository(db *sql.DB, logger zerolog.Logger) *UserRepository {
	return &UserRepository{db: db, logger: logger}
}

// DisplayByIDs returns the name/avatar pair for each known user ID. Unknown
// IDs are simply absent from the result.
func (r *UserRepository) DisplayByIDs(ctx context.Context, userIDs []string) (map[string]domain.UserDisplay, error) {
	displays := make(map[string]domain.UserDisplay, len(userIDs))
	if len(userIDs) == 0 {
		return displays, nil
	}

	query := fmt.Sprintf(
		`SELECT id, name, avatar FROM users WHERE id IN (%s)`, placeholders(len(userIDs)))
	args := make([]any, len(userIDs))
	for i, id := range userIDs {
		args[i] = id
	}

	rows, err := r.db.QueryContext(ctx, query, args...)
	if err != nil {
		return nil, fmt.Errorf("failed to query user displays: %w", err)
	}
	defer rows.Close()

	for rows.Next() {
		var d domain.UserDisplay
		if err := rows.Scan(&d.UserID, &d.Name, &d.Avatar); err != nil {
			return nil, fmt.Errorf("failed to scan user display: %w", err)
		}
		displays[d.UserID] = d
	}
	return displays, rows.Err()
}

package repository

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"strings"
	"time"

	"crux-tracker/internal/domain"

	"github.com/rs/zerolog"
)

var (
	ErrValidationNotFound = errors.New("validation not found")
	ErrValidationExists   = errors.New("validation already exists")
)

type ValidationRepository struct {
	db     *sql.DB
	logger zerolog.Logger
}

func NewValidationRepository(db *sql.DB, logger zerolog.Logger) *ValidationRepository {
	return &ValidationRepository{db: db, logger: logger}
}

// RouteStatsSince returns per-route aggregates over completed validations
// newer than since, in a single grouped query.
func (r *ValidationRepository) RouteStatsSince(ctx context.Context, since time.Time) ([]domain.RouteStat, error) {
	const query = `
		SELECT
			route_id,
			COUNT(*) AS success_count,
			AVG(attempts) AS avg_attempts,
			CAST(SUM(CASE WHEN is_flashed = 1 THEN 1 ELSE 0 END) AS REAL) / COUNT(*) AS flash_rate
		FROM validations
		WHERE status = ? AND validated_at >= ?
		GROUP BY route_id`

	rows, err := r.db.QueryContext(ctx, query, domain.StatusCompleted, since)
	if err != nil {
		return nil, fmt.Errorf("failed to query route stats: %w", err)
	}
	defer rows.Close()

	var stats []domain.RouteStat
	for rows.Next() {
		var stat domain.RouteStat
		if err := rows.Scan(&stat.RouteID, &stat.SuccessCount, &stat.AvgAttempts, &stat.FlashRate); err != nil {
			return nil, fmt.Errorf("failed to scan route stat: %w", err)
		}
		stats = append(stats, stat)
	}
	return stats, rows.Err()
}

// ListCompletedSince returns completed validations newer than since, joined
// with each route's grade. When userIDs is non-empty the result is
// restricted to those users.
func (r *ValidationRepository) ListCompletedSince(ctx context.Context, since time.Time, userIDs []string) ([]domain.CompletionRow, error) {
	query := `
		SELECT v.user_id, v.route_id, rt.difficulty, v.attempts, v.is_flashed, v.validated_at
		FROM validations v
		INNER JOIN routes rt ON rt.id = v.route_id
		WHERE v.status = ? AND v.validated_at >= ?`
	args := []any{domain.StatusCompleted, since}

	if len(userIDs) > 0 {
		query += fmt.Sprintf(" AND v.user_id IN (%s)", placeholders(len(userIDs)))
		for _, id := range userIDs {
			args = append(args, id)
		}
	}
	query += " ORDER BY v.user_id, v.validated_at"

	rows, err := r.db.QueryContext(ctx, query, args...)
	if err != nil {
		return nil, fmt.Errorf("failed to query completions: %w", err)
	}
	defer rows.Close()

	var completions []domain.CompletionRow
	for rows.Next() {
		var row domain.CompletionRow
		if err := rows.Scan(&row.UserID, &row.RouteID, &row.Grade, &row.Attempts, &row.IsFlashed, &row.ValidatedAt); err != nil {
			return nil, fmt.Errorf("failed to scan completion: %w", err)
		}
		completions = append(completions, row)
	}
	return completions, rows.Err()
}

// UserCompletionDetail is a completed validation joined with its route's
// display fields, used for the per-user breakdown.
type UserCompletionDetail struct {
	RouteID     string
	RouteName   string
	Grade       domain.Grade
	Sector      string
	Attempts    int
	IsFlashed   bool
	ValidatedAt time.Time
}

// ListUserCompletedSince returns one user's completed validations newer than
// since, newest first, with route detail.
func (r *ValidationRepository) ListUserCompletedSince(ctx context.Context, userID string, since time.Time) ([]UserCompletionDetail, error) {
	const query = `
		SELECT v.route_id, rt.name, rt.difficulty, rt.sector, v.attempts, v.is_flashed, v.validated_at
		FROM validations v
		INNER JOIN routes rt ON rt.id = v.route_id
		WHERE v.user_id = ? AND v.status = ? AND v.validated_at >= ?
		ORDER BY v.validated_at DESC`

	rows, err := r.db.QueryContext(ctx, query, userID, domain.StatusCompleted, since)
	if err != nil {
		return nil, fmt.Errorf("failed to query user completions: %w", err)
	}
	defer rows.Close()

	var details []UserCompletionDetail
	for rows.Next() {
		var d UserCompletionDetail
		if err := rows.Scan(&d.RouteID, &d.RouteName, &d.Grade, &d.Sector, &d.Attempts, &d.IsFlashed, &d.ValidatedAt); err != nil {
			return nil, fmt.Errorf("failed to scan user completion: %w", err)
		}
		details = append(details, d)
	}
	return details, rows.Err()
}

func (r *ValidationRepository) GetByUserRoute(ctx context.Context, userID, routeID string) (*domain.Validation, error) {
	const query = `
		SELECT id, user_id, route_id, status, attempts, is_flashed, is_favorite,
			personal_note, validated_at, created_at, updated_at
		FROM validations
		WHERE user_id = ? AND route_id = ?`

	var v domain.Validation
	err := r.db.QueryRowContext(ctx, query, userID, routeID).Scan(
		&v.ID, &v.UserID, &v.RouteID, &v.Status, &v.Attempts, &v.IsFlashed,
		&v.IsFavorite, &v.PersonalNote, &v.ValidatedAt, &v.CreatedAt, &v.UpdatedAt,
	)
	if err == sql.ErrNoRows {
		return nil, ErrValidationNotFound
	}
	if err != nil {
		return nil, fmt.Errorf("failed to get validation: %w", err)
	}
	return &v, nil
}

func (r *ValidationRepository) Create(ctx context.Context, v *domain.Validation) error {
	const query = `
		INSERT INTO validations (id, user_id, route_id, status, attempts, is_flashed,
			is_favorite, personal_note, validated_at, created_at, updated_at)
		VALUES (?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?)`

	_, err := r.db.ExecContext(ctx, query,
		v.ID, v.UserID, v.RouteID, v.Status, v.Attempts, v.IsFlashed,
		v.IsFavorite, v.PersonalNote, v.ValidatedAt, v.CreatedAt, v.UpdatedAt,
	)
	if err != nil {
		if strings.Contains(err.Error(), "UNIQUE constraint failed") {
			return ErrValidationExists
		}
		return fmt.Errorf("failed to create validation: %w", err)
	}
	return nil
}

func (r *ValidationRepository) Update(ctx context.Context, v *domain.Validation) error {
	const query = `
		UPDATE validations
		SET status = ?, attempts = ?, is_flashed = ?, is_favorite = ?,
			personal_note = ?, validated_at = ?, updated_at = ?
		WHERE user_id = ? AND route_id = ?`

	res, err := r.db.ExecContext(ctx, query,
		v.Status, v.Attempts, v.IsFlashed, v.IsFavorite,
		v.PersonalNote, v.ValidatedAt, v.UpdatedAt,
		v.UserID, v.RouteID,
	)
	if err != nil {
		return fmt.Errorf("failed to update validation: %w", err)
	}
	affected, err := res.RowsAffected()
	if err != nil {
		return fmt.Errorf("failed to read affected rows: %w", err)
	}
	if affected == 0 {
		return ErrValidationNotFound
	}
	return nil
}

func (r *ValidationRepository) Delete(ctx context.Context, userID, routeID string) error {
	res, err := r.db.ExecContext(ctx,
		`DELETE FROM validations WHERE user_id = ? AND route_id = ?`, userID, routeID)
	if err != nil {
		return fmt.Errorf("failed to delete validation: %w", err)
	}
	affected, err := res.RowsAffected()
	if err != nil {
		return fmt.Errorf("failed to read affected rows: %w", err)
	}
	if affected == 0 {
		return ErrValidationNotFound
	}
	return nil
}

func placeholders(n int) string {
	return strings.TrimSuffix(strings.Repeat("?,", n), ",")
}

package service

import (
	"context"
	"time"

	"crux-tracker/internal/constants"
	"crux-tracker/internal/domain"

	gonanoid "github.com/matoous/go-nanoid/v2"
	"github.com/rs/zerolog"
)

// ValidationCreateInput is a new completion record for one user/route pair.
type ValidationCreateInput struct {
	UserID       string
	RouteID      string
	Status       domain.ValidationStatus
	Attempts     int
	PersonalNote string
	IsFavorite   bool
}

// ValidationUpdateInput carries the mutable fields; nil means unchanged.
type ValidationUpdateInput struct {
	Status       *domain.ValidationStatus
	Attempts     *int
	PersonalNote *string
	IsFavorite   *bool
}

// ValidationService is the mutation path for completion events. Every write
// invalidates the derived caches before returning.
type ValidationService struct {
	store       ValidationStore
	invalidator Invalidator
	logger      zerolog.Logger
}

func NewValidationService(store ValidationStore, invalidator Invalidator, logger zerolog.Logger) *ValidationService {
	return &ValidationService{store: store, invalidator: invalidator, logger: logger}
}

// Create records a new validation. Defaults: in-progress status, one
// attempt. A flash is exactly a single-attempt completion, so the flag is
// derived from the attempt count, never trusted from the caller.
func (s *ValidationService) Create(ctx context.Context, in ValidationCreateInput) (*domain.Validation, error) {
	ctx, cancel := context.WithTimeout(ctx, constants.DatabaseTimeout)
	defer cancel()

	id, err := gonanoid.New()
	if err != nil {
		return nil, err
	}

	status := in.Status
	if status == "" {
		status = domain.StatusInProgress
	}
	attempts := in.Attempts
	if attempts <= 0 {
		attempts = 1
	}

	now := time.Now()
	v := &domain.Validation{
		ID:           id,
		UserID:       in.UserID,
		RouteID:      in.RouteID,
		Status:       status,
		Attempts:     attempts,
		IsFlashed:    attempts == 1,
		IsFavorite:   in.IsFavorite,
		PersonalNote: in.PersonalNote,
		ValidatedAt:  now,
		CreatedAt:    now,
		UpdatedAt:    now,
	}

	if err := s.store.Create(ctx, v); err != nil {
		s.logger.Error().Err(err).Str("user_id", in.UserID).Str("route_id", in.RouteID).Msg("failed to create validation")
		return nil, err
	}

	s.invalidator.InvalidateDerivedCaches()

	s.logger.Info().
		Str("user_id", v.UserID).
		Str("route_id", v.RouteID).
		Str("status", string(v.Status)).
		Int("attempts", v.Attempts).
		Msg("validation created")
	return v, nil
}

// Update applies partial changes to an existing validation.
func (s *ValidationService) Update(ctx context.Context, userID, routeID string, in ValidationUpdateInput) (*domain.Validation, error) {
	ctx, cancel := context.WithTimeout(ctx, constants.DatabaseTimeout)
	defer cancel()

	v, err := s.store.GetByUserRoute(ctx, userID, routeID)
	if err != nil {
		return nil, err
	}

	if in.Status != nil {
		v.Status = *in.Status
	}
	if in.Attempts != nil && *in.Attempts > 0 {
		v.Attempts = *in.Attempts
	}
	if in.PersonalNote != nil {
		v.PersonalNote = *in.PersonalNote
	}
	if in.IsFavorite != nil {
		v.IsFavorite = *in.IsFavorite
	}
	v.IsFlashed = v.Attempts == 1
	v.UpdatedAt = time.Now()

	if err := s.store.Update(ctx, v); err != nil {
		s.logger.Error().Err(err).Str("user_id", userID).Str("route_id", routeID).Msg("failed to update validation")
		return nil, err
	}

	s.invalidator.InvalidateDerivedCaches()

	s.logger.Info().Str("user_id", userID).Str("route_id", routeID).Msg("validation updated")
	return v, nil
}

// Delete removes a validation.
func (s *ValidationService) Delete(ctx context.Context, userID, routeID string) error {
	ctx, cancel := context.WithTimeout(ctx, constants.DatabaseTimeout)
	defer cancel()

	if err := s.store.Delete(ctx, userID, routeID); err != nil {
		s.logger.Error().Err(err).Str("user_id", userID).Str("route_id", routeID).Msg("failed to delete validation")
		return err
	}

	s.invalidator.InvalidateDerivedCaches()

	s.logger.Info().Str("user_id", userID).Str("route_id", routeID).Msg("validation deleted")
	return nil
}

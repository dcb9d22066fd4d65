package service

import (
	"context"
	"testing"

	"crux-tracker/internal/domain"
	"crux-tracker/internal/repository"

	"github.com/rs/zerolog"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

type stubStore struct {
	byKey map[string]*domain.Validation
}

func newStubStore() *stubStore {
	return &stubStore{byKey: make(map[string]*domain.Validation)}
}

func (s *stubStore) key(userID, routeID string) string { return userID + "/" + routeID }

func (s *stubStore) GetByUserRoute(_ context.Context, userID, routeID string) (*domain.Validation, error) {
	v, ok := s.byKey[s.key(userID, routeID)]
	if !ok {
		return nil, repository.ErrValidationNotFound
	}
	copied := *v
	return &copied, nil
}

func (s *stubStore) Create(_ context.Context, v *domain.Validation) error {
	k := s.key(v.UserID, v.RouteID)
	if _, ok := s.byKey[k]; ok {
		return repository.ErrValidationExists
	}
	copied := *v
	s.byKey[k] = &copied
	return nil
}

func (s *stubStore) Update(_ context.Context, v *domain.Validation) error {
	k := s.key(v.UserID, v.RouteID)
	if _, ok := s.byKey[k]; !ok {
		return repository.ErrValidationNotFound
	}
	copied := *v
	s.byKey[k] = &copied
	return nil
}

func (s *stubStore) Delete(_ context.Context, userID, routeID string) error {
	k := s.key(userID, routeID)
	if _, ok := s.byKey[k]; !ok {
		return repository.ErrValidationNotFound
	}
	delete(s.byKey, k)
	return nil
}

type countingInvalidator struct {
	calls int
}

func (c *countingInvalidator) InvalidateDerivedCaches() { c.calls++ }

func TestCreateValidationDefaults(t *testing.T) {
	store := newStubStore()
	inv := &countingInvalidator{}
	svc := NewValidationService(store, inv, zerolog.Nop())

	v, err := svc.Create(context.Background(), ValidationCreateInput{UserID: "alice", RouteID: "r1"})
	require.NoError(t, err)

	assert.NotEmpty(t, v.ID)
	assert.Equal(t, domain.StatusInProgress, v.Status)
	assert.Equal(t, 1, v.Attempts)
	assert.True(t, v.IsFlashed, "a single attempt is a flash")
	assert.Equal(t, 1, inv.calls, "create must invalidate derived caches")
}

func TestCreateValidationDerivesFlash(t *testing.T) {
	store := newStubStore()
	svc := NewValidationService(store, &countingInvalidator{}, zerolog.Nop())

	v, err := svc.Create(context.Background(), ValidationCreateInput{
		UserID:   "alice",
		RouteID:  "r1",
		Status:   domain.StatusCompleted,
		Attempts: 3,
	})
	require.NoError(t, err)
	assert.False(t, v.IsFlashed)
}

func TestCreateValidationDuplicate(t *testing.T) {
	store := newStubStore()
	inv := &countingInvalidator{}
	svc := NewValidationService(store, inv, zerolog.Nop())

	_, err := svc.Create(context.Background(), ValidationCreateInput{UserID: "alice", RouteID: "r1"})
	require.NoError(t, err)

	_, err = svc.Create(context.Background(), ValidationCreateInput{UserID: "alice", RouteID: "r1"})
	assert.ErrorIs(t, err, repository.ErrValidationExists)
	assert.Equal(t, 1, inv.calls, "failed create must not invalidate")
}

func TestUpdateValidation(t *testing.T) {
	store := newStubStore()
	inv := &countingInvalidator{}
	svc := NewValidationService(store, inv, zerolog.Nop())

	_, err := svc.Create(context.Background(), ValidationCreateInput{UserID: "alice", RouteID: "r1"})
	require.NoError(t, err)

	completed := domain.StatusCompleted
	attempts := 5
	v, err := svc.Update(context.Background(), "alice", "r1", ValidationUpdateInput{
		Status:   &completed,
		Attempts: &attempts,
	})
	require.NoError(t, err)

	assert.Equal(t, domain.StatusCompleted, v.Status)
	assert.Equal(t, 5, v.Attempts)
	assert.False(t, v.IsFlashed, "five attempts is not a flash anymore")
	assert.Equal(t, 2, inv.calls)
}

func TestUpdateValidationNotFound(t *testing.T) {
	svc := NewValidationService(newStubStore(), &countingInvalidator{}, zerolog.Nop())

	completed := domain.StatusCompleted
	_, err := svc.Update(context.Background(), "alice", "r1", ValidationUpdateInput{Status: &completed})
	assert.ErrorIs(t, err, repository.ErrValidationNotFound)
}

func TestDeleteValidation(t *testing.T) {
	store := newStubStore()
	inv := &countingInvalidator{}
	svc := NewValidationService(store, inv, zerolog.Nop())

	_, err := svc.Create(context.Background(), ValidationCreateInput{UserID: "alice", RouteID: "r1"})
	require.NoError(t, err)

	require.NoError(t, svc.Delete(context.Background(), "alice", "r1"))
	assert.Equal(t, 2, inv.calls)

	err = svc.Delete(context.Background(), "alice", "r1")
	assert.ErrorIs(t, err, repository.ErrValidationNotFound)
	assert.Equal(t, 2, inv.calls, "failed delete must not invalidate")
}

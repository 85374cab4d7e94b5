package auth

import (
	"context"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

type memoryRepo struct {
	nextID int64
	byMail map[string]User
}

func newMemoryRepo() *memoryRepo {
	return &memoryRepo{nextID: 1, byMail: make(map[string]User)}
}

func (m *memoryRepo) Create(_ context.Context, u User) (User, error) {
	if _, ok := m.byMail[u.Email]; ok {
		return User{}, ErrDuplicateEmail
	}
	u.ID = m.nextID
	m.nextID++
	m.byMail[u.Email] = u
	return u, nil
}

func (m *memoryRepo) FindByEmail(_ context.Context, email string) (User, error) {
	u, ok := m.byMail[email]
	if !ok {
		return User{}, ErrInvalidCredentials
	}
	return u, nil
}

func TestRegisterAndAuthenticate(t *testing.T) {
	svc := NewService(newMemoryRepo())

	user, err := svc.Register(context.Background(), "Owner", "Owner@Example.COM", "hunter2hunter2")
	require.NoError(t, err)
	assert.Equal(t, "owner@example.com", user.Email)
	assert.Equal(t, RoleAdmin, user.Role)
	assert.NotEqual(t, "hunter2hunter2", user.PasswordHash)

	got, err := svc.Authenticate(context.Background(), "owner@example.com", "hunter2hunter2")
	require.NoError(t, err)
	assert.Equal(t, user.ID, got.ID)

	_, err = svc.Authenticate(context.Background(), "owner@example.com", "wrong-password")
	assert.ErrorIs(t, err, ErrInvalidCredentials)

	_, err = svc.Authenticate(context.Background(), "nobody@example.com", "hunter2hunter2")
	assert.ErrorIs(t, err, ErrInvalidCredentials)
}

func TestRegisterDuplicateEmail(t *testing.T) {
	svc := NewService(newMemoryRepo())

	_, err := svc.Register(context.Background(), "A", "dup@example.com", "longenough")
	require.NoError(t, err)
	_, err = svc.Register(context.Background(), "B", "dup@example.com", "longenough")
	assert.ErrorIs(t, err, ErrDuplicateEmail)
}

func TestRegisterWeakPassword(t *testing.T) {
	svc := NewService(newMemoryRepo())
	_, err := svc.Register(context.Background(), "A", "a@example.com", "short")
	assert.ErrorIs(t, err, ErrWeakPassword)
}

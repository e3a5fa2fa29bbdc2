package sqlite

import (
	"context"
	"path/filepath"
	"testing"
	"time"

	"github.com/femundo/cms/internal/admin/domain"
	"github.com/femundo/cms/internal/admin/store"
	"github.com/stretchr/testify/require"
)

func newTestStore(t *testing.T) *Store {
	t.Helper()

	s, err := NewStore(filepath.Join(t.TempDir(), "admin.db"))
	require.NoError(t, err)
	t.Cleanup(func() { _ = s.Close() })

	require.NoError(t, s.ApplyMigrations())
	return s
}

func testUser(email string) domain.User {
	return domain.User{
		Email:        email,
		PasswordHash: "$2a$12$fakefakefakefakefakefakefakefakefakefakefakefakefakef",
		FullName:     "Test User",
		Role:         domain.RoleEditor,
		IsActive:     true,
	}
}

func TestUsersCreateAndGet(t *testing.T) {
	s := newTestStore(t)
	ctx := context.Background()

	u := testUser("admin@femundo.de")
	username := "admin.user"
	u.Username = &username
	u.AllowedModules = []string{"dashboard", "events"}

	id, err := s.Users().Create(ctx, u)
	require.NoError(t, err)
	require.Positive(t, id)

	byID, err := s.Users().GetByID(ctx, id)
	require.NoError(t, err)
	require.Equal(t, "admin@femundo.de", byID.Email)
	require.NotNil(t, byID.Username)
	require.Equal(t, "admin.user", *byID.Username)
	require.Equal(t, domain.RoleEditor, byID.Role)
	require.Equal(t, []string{"dashboard", "events"}, byID.AllowedModules)
	require.True(t, byID.IsActive)
	require.Nil(t, byID.LastLogin)
	require.False(t, byID.CreatedAt.IsZero())

	byEmail, err := s.Users().GetByEmail(ctx, "admin@femundo.de")
	require.NoError(t, err)
	require.Equal(t, id, byEmail.ID)

	byUsername, err := s.Users().GetByUsername(ctx, "admin.user")
	require.NoError(t, err)
	require.Equal(t, id, byUsername.ID)
}

func TestUsersGetMissing(t *testing.T) {
	s := newTestStore(t)
	ctx := context.Background()

	_, err := s.Users().GetByID(ctx, 999)
	require.ErrorIs(t, err, store.ErrNotFound)

	_, err = s.Users().GetByEmail(ctx, "nobody@femundo.de")
	require.ErrorIs(t, err, store.ErrNotFound)
}

func TestUsersDuplicateEmail(t *testing.T) {
	s := newTestStore(t)
	ctx := context.Background()

	_, err := s.Users().Create(ctx, testUser("dup@femundo.de"))
	require.NoError(t, err)

	_, err = s.Users().Create(ctx, testUser("dup@femundo.de"))
	require.ErrorIs(t, err, store.ErrAlreadyExists)
}

func TestUsersDuplicateUsername(t *testing.T) {
	s := newTestStore(t)
	ctx := context.Background()

	username := "taken"
	a := testUser("a@femundo.de")
	a.Username = &username
	_, err := s.Users().Create(ctx, a)
	require.NoError(t, err)

	b := testUser("b@femundo.de")
	b.Username = &username
	_, err = s.Users().Create(ctx, b)
	require.ErrorIs(t, err, store.ErrAlreadyExists)
}

func TestUsersNilUsernameNotUnique(t *testing.T) {
	s := newTestStore(t)
	ctx := context.Background()

	// Multiple rows without a username must coexist.
	_, err := s.Users().Create(ctx, testUser("first@femundo.de"))
	require.NoError(t, err)
	_, err = s.Users().Create(ctx, testUser("second@femundo.de"))
	require.NoError(t, err)
}

func TestUsersUpdate(t *testing.T) {
	s := newTestStore(t)
	ctx := context.Background()

	id, err := s.Users().Create(ctx, testUser("edit@femundo.de"))
	require.NoError(t, err)

	u, err := s.Users().GetByID(ctx, id)
	require.NoError(t, err)

	u.FullName = "Renamed"
	u.Role = domain.RoleAdmin
	u.AllowedModules = []string{"dashboard", "users", "settings"}
	require.NoError(t, s.Users().Update(ctx, u))

	got, err := s.Users().GetByID(ctx, id)
	require.NoError(t, err)
	require.Equal(t, "Renamed", got.FullName)
	require.Equal(t, domain.RoleAdmin, got.Role)
	require.Equal(t, []string{"dashboard", "users", "settings"}, got.AllowedModules)

	// Clearing the grant set stores NULL, not an empty array.
	got.AllowedModules = nil
	require.NoError(t, s.Users().Update(ctx, got))
	got, err = s.Users().GetByID(ctx, id)
	require.NoError(t, err)
	require.Nil(t, got.AllowedModules)
}

func TestUsersUpdateMissing(t *testing.T) {
	s := newTestStore(t)

	u := testUser("ghost@femundo.de")
	u.ID = 4242
	require.ErrorIs(t, s.Users().Update(context.Background(), u), store.ErrNotFound)
}

func TestUsersSetActive(t *testing.T) {
	s := newTestStore(t)
	ctx := context.Background()

	id, err := s.Users().Create(ctx, testUser("active@femundo.de"))
	require.NoError(t, err)

	require.NoError(t, s.Users().SetActive(ctx, id, false))
	got, err := s.Users().GetByID(ctx, id)
	require.NoError(t, err)
	require.False(t, got.IsActive)

	require.NoError(t, s.Users().SetActive(ctx, id, true))
	got, err = s.Users().GetByID(ctx, id)
	require.NoError(t, err)
	require.True(t, got.IsActive)
}

func TestUsersPasswordAndLastLogin(t *testing.T) {
	s := newTestStore(t)
	ctx := context.Background()

	id, err := s.Users().Create(ctx, testUser("pw@femundo.de"))
	require.NoError(t, err)

	require.NoError(t, s.Users().UpdatePasswordHash(ctx, id, "$2a$12$newhash"))
	require.NoError(t, s.Users().TouchLastLogin(ctx, id))

	got, err := s.Users().GetByID(ctx, id)
	require.NoError(t, err)
	require.Equal(t, "$2a$12$newhash", got.PasswordHash)
	require.NotNil(t, got.LastLogin)
	require.WithinDuration(t, time.Now().UTC(), *got.LastLogin, 5*time.Second)
}

func TestUsersTOTPLifecycle(t *testing.T) {
	s := newTestStore(t)
	ctx := context.Background()

	id, err := s.Users().Create(ctx, testUser("totp@femundo.de"))
	require.NoError(t, err)

	// Enabling without a pending secret must fail.
	require.ErrorIs(t, s.Users().EnableTOTP(ctx, id), store.ErrNotFound)

	require.NoError(t, s.Users().SetTOTPSecret(ctx, id, "JBSWY3DPEHPK3PXP"))
	got, err := s.Users().GetByID(ctx, id)
	require.NoError(t, err)
	require.NotNil(t, got.TOTPSecret)
	require.False(t, got.TOTPActive())

	require.NoError(t, s.Users().EnableTOTP(ctx, id))
	got, err = s.Users().GetByID(ctx, id)
	require.NoError(t, err)
	require.True(t, got.TOTPActive())

	// Clearing the secret disables the factor entirely.
	require.NoError(t, s.Users().SetTOTPSecret(ctx, id, ""))
	got, err = s.Users().GetByID(ctx, id)
	require.NoError(t, err)
	require.Nil(t, got.TOTPSecret)
	require.Nil(t, got.TOTPEnabledAt)
	require.False(t, got.TOTPActive())
}

func TestUsersList(t *testing.T) {
	s := newTestStore(t)
	ctx := context.Background()

	for _, email := range []string{"one@femundo.de", "two@femundo.de", "three@femundo.de"} {
		_, err := s.Users().Create(ctx, testUser(email))
		require.NoError(t, err)
	}

	users, err := s.Users().List(ctx)
	require.NoError(t, err)
	require.Len(t, users, 3)
}

func TestActivityAppendAndList(t *testing.T) {
	s := newTestStore(t)
	ctx := context.Background()

	id, err := s.Users().Create(ctx, testUser("audit@femundo.de"))
	require.NoError(t, err)

	entity := int64(7)
	require.NoError(t, s.Activity().Append(ctx, domain.ActivityEntry{
		UserID:     &id,
		Action:     "login",
		EntityType: "auth",
		IPAddress:  "203.0.113.9",
	}))
	require.NoError(t, s.Activity().Append(ctx, domain.ActivityEntry{
		UserID:     &id,
		Action:     "update",
		EntityType: "events",
		EntityID:   &entity,
		Details:    map[string]any{"title": "Sommerfest"},
	}))

	entries, err := s.Activity().ListRecent(ctx, 10)
	require.NoError(t, err)
	require.Len(t, entries, 2)

	// Newest first.
	require.Equal(t, "update", entries[0].Action)
	require.Equal(t, "events", entries[0].EntityType)
	require.NotNil(t, entries[0].EntityID)
	require.Equal(t, int64(7), *entries[0].EntityID)
	require.Equal(t, "Sommerfest", entries[0].Details["title"])

	require.Equal(t, "login", entries[1].Action)
	require.Equal(t, "203.0.113.9", entries[1].IPAddress)
	require.Nil(t, entries[1].Details)
}

func TestActivitySystemEntryNilUser(t *testing.T) {
	s := newTestStore(t)
	ctx := context.Background()

	require.NoError(t, s.Activity().Append(ctx, domain.ActivityEntry{
		Action:     "migrate",
		EntityType: "system",
	}))

	entries, err := s.Activity().ListRecent(ctx, 1)
	require.NoError(t, err)
	require.Len(t, entries, 1)
	require.Nil(t, entries[0].UserID)
}

func TestActivityListLimit(t *testing.T) {
	s := newTestStore(t)
	ctx := context.Background()

	for i := 0; i < 5; i++ {
		require.NoError(t, s.Activity().Append(ctx, domain.ActivityEntry{
			Action:     "login",
			EntityType: "auth",
		}))
	}

	entries, err := s.Activity().ListRecent(ctx, 3)
	require.NoError(t, err)
	require.Len(t, entries, 3)
}

func TestPing(t *testing.T) {
	s := newTestStore(t)
	require.NoError(t, s.Ping(context.Background()))
}

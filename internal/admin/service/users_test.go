package service

import (
	"context"
	"path/filepath"
	"testing"

	"github.com/femundo/cms/internal/admin/domain"
	"github.com/femundo/cms/internal/admin/store"
	"github.com/femundo/cms/internal/admin/store/drivers/sqlite"
	"github.com/stretchr/testify/require"
)

func newUserService(t *testing.T) (*UserService, store.Store) {
	t.Helper()

	st, err := sqlite.NewStore(filepath.Join(t.TempDir(), "admin.db"))
	require.NoError(t, err)
	t.Cleanup(func() { _ = st.Close() })
	require.NoError(t, st.ApplyMigrations())

	return &UserService{
		Store:    st,
		Activity: &ActivityService{Store: st},
	}, st
}

func superAdmin() domain.User {
	return domain.User{ID: 1, Email: "root@femundo.de", Role: domain.RoleSuperAdmin}
}

func admin() domain.User {
	return domain.User{ID: 2, Email: "admin@femundo.de", Role: domain.RoleAdmin}
}

const strongPassword = "Str0ng-Passw0rd!"

func TestCreateUser(t *testing.T) {
	svc, _ := newUserService(t)

	username := "neue.person"
	u, err := svc.Create(context.Background(), superAdmin(), CreateUserInput{
		Email:          "Neu@Femundo.DE",
		Username:       &username,
		Password:       strongPassword,
		FullName:       "Neue Person",
		Role:           domain.RoleEditor,
		AllowedModules: []string{"events", "gallery"},
	})
	require.NoError(t, err)
	require.Equal(t, "neu@femundo.de", u.Email)
	require.Equal(t, domain.RoleEditor, u.Role)
	require.True(t, u.IsActive)
	// The dashboard module is always pinned into an explicit grant.
	require.Equal(t, []string{"dashboard", "events", "gallery"}, u.AllowedModules)
}

func TestCreateUserDefaultsRole(t *testing.T) {
	svc, _ := newUserService(t)

	u, err := svc.Create(context.Background(), superAdmin(), CreateUserInput{
		Email:    "plain@femundo.de",
		Password: strongPassword,
		FullName: "Plain Person",
	})
	require.NoError(t, err)
	require.Equal(t, domain.RoleEditor, u.Role)
	require.Nil(t, u.AllowedModules)
}

func TestCreateUserPasswordPolicy(t *testing.T) {
	svc, _ := newUserService(t)
	ctx := context.Background()

	cases := []struct {
		name     string
		password string
	}{
		{"too short", "Sh0rt!pass"},
		{"no upper", "lowercase-0nly!!"},
		{"no lower", "UPPERCASE-0NLY!!"},
		{"no digit", "No-Digits-Here!!"},
		{"no special", "NoSpecials12345x"},
	}
	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			_, err := svc.Create(ctx, superAdmin(), CreateUserInput{
				Email:    "pw@femundo.de",
				Password: tc.password,
				FullName: "PW Test",
			})
			var ve *ValidationError
			require.ErrorAs(t, err, &ve)
		})
	}
}

func TestCreateUserUsernameValidation(t *testing.T) {
	svc, _ := newUserService(t)
	ctx := context.Background()

	for _, bad := range []string{"ab", "Has Space", "sehr!komisch", "ÜBER"} {
		username := bad
		_, err := svc.Create(ctx, superAdmin(), CreateUserInput{
			Email:    "u@femundo.de",
			Username: &username,
			Password: strongPassword,
			FullName: "U Test",
		})
		var ve *ValidationError
		require.ErrorAs(t, err, &ve, "username %q", bad)
	}
}

func TestCreateUserUnknownModule(t *testing.T) {
	svc, _ := newUserService(t)

	_, err := svc.Create(context.Background(), superAdmin(), CreateUserInput{
		Email:          "m@femundo.de",
		Password:       strongPassword,
		FullName:       "M Test",
		AllowedModules: []string{"dashboard", "nonsense"},
	})
	var ve *ValidationError
	require.ErrorAs(t, err, &ve)
	require.Contains(t, ve.Msg, "nonsense")
}

func TestCreateUserDuplicateEmail(t *testing.T) {
	svc, _ := newUserService(t)
	ctx := context.Background()

	_, err := svc.Create(ctx, superAdmin(), CreateUserInput{
		Email: "dup@femundo.de", Password: strongPassword, FullName: "One",
	})
	require.NoError(t, err)

	_, err = svc.Create(ctx, superAdmin(), CreateUserInput{
		Email: "dup@femundo.de", Password: strongPassword, FullName: "Two",
	})
	require.ErrorIs(t, err, store.ErrAlreadyExists)
}

func TestCreateSuperAdminRequiresSuperAdmin(t *testing.T) {
	svc, _ := newUserService(t)
	ctx := context.Background()

	_, err := svc.Create(ctx, admin(), CreateUserInput{
		Email: "boss@femundo.de", Password: strongPassword, FullName: "Boss",
		Role: domain.RoleSuperAdmin,
	})
	require.ErrorIs(t, err, ErrPermissionDenied)

	_, err = svc.Create(ctx, superAdmin(), CreateUserInput{
		Email: "boss@femundo.de", Password: strongPassword, FullName: "Boss",
		Role: domain.RoleSuperAdmin,
	})
	require.NoError(t, err)
}

func TestUpdateUser(t *testing.T) {
	svc, _ := newUserService(t)
	ctx := context.Background()

	created, err := svc.Create(ctx, superAdmin(), CreateUserInput{
		Email: "edit@femundo.de", Password: strongPassword, FullName: "Before",
	})
	require.NoError(t, err)

	name := "After"
	role := domain.RoleAdmin
	modules := []string{"events"}
	got, err := svc.Update(ctx, superAdmin(), created.ID, UpdateUserInput{
		FullName:       &name,
		Role:           &role,
		AllowedModules: modules,
		ModulesSet:     true,
	})
	require.NoError(t, err)
	require.Equal(t, "After", got.FullName)
	require.Equal(t, domain.RoleAdmin, got.Role)
	require.Equal(t, []string{"dashboard", "events"}, got.AllowedModules)
}

func TestUpdateClearExplicitGrant(t *testing.T) {
	svc, _ := newUserService(t)
	ctx := context.Background()

	created, err := svc.Create(ctx, superAdmin(), CreateUserInput{
		Email: "grant@femundo.de", Password: strongPassword, FullName: "Grant",
		AllowedModules: []string{"events"},
	})
	require.NoError(t, err)

	got, err := svc.Update(ctx, superAdmin(), created.ID, UpdateUserInput{
		AllowedModules: []string{},
		ModulesSet:     true,
	})
	require.NoError(t, err)
	require.Nil(t, got.AllowedModules)
}

func TestUpdateSuperAdminGuards(t *testing.T) {
	svc, _ := newUserService(t)
	ctx := context.Background()

	boss, err := svc.Create(ctx, superAdmin(), CreateUserInput{
		Email: "boss@femundo.de", Password: strongPassword, FullName: "Boss",
		Role: domain.RoleSuperAdmin,
	})
	require.NoError(t, err)

	// A plain admin may not edit a super admin account.
	name := "Hacked"
	_, err = svc.Update(ctx, admin(), boss.ID, UpdateUserInput{FullName: &name})
	require.ErrorIs(t, err, ErrPermissionDenied)

	// Nor promote anyone to super admin.
	victim, err := svc.Create(ctx, superAdmin(), CreateUserInput{
		Email: "victim@femundo.de", Password: strongPassword, FullName: "Victim",
	})
	require.NoError(t, err)

	role := domain.RoleSuperAdmin
	_, err = svc.Update(ctx, admin(), victim.ID, UpdateUserInput{Role: &role})
	require.ErrorIs(t, err, ErrPermissionDenied)
}

func TestUpdateCannotDeactivateSelf(t *testing.T) {
	svc, st := newUserService(t)
	ctx := context.Background()

	actor := superAdmin()
	id, err := st.Users().Create(ctx, domain.User{
		Email: actor.Email, PasswordHash: "x", FullName: "Root",
		Role: domain.RoleSuperAdmin, IsActive: true,
	})
	require.NoError(t, err)
	actor.ID = id

	inactive := false
	_, err = svc.Update(ctx, actor, id, UpdateUserInput{IsActive: &inactive})
	var ve *ValidationError
	require.ErrorAs(t, err, &ve)
}

func TestDeactivate(t *testing.T) {
	svc, st := newUserService(t)
	ctx := context.Background()

	created, err := svc.Create(ctx, superAdmin(), CreateUserInput{
		Email: "bye@femundo.de", Password: strongPassword, FullName: "Bye",
	})
	require.NoError(t, err)

	require.NoError(t, svc.Deactivate(ctx, superAdmin(), created.ID))

	// Soft delete: the row survives with is_active off.
	u, err := st.Users().GetByID(ctx, created.ID)
	require.NoError(t, err)
	require.False(t, u.IsActive)
}

func TestDeactivateSelfRefused(t *testing.T) {
	svc, _ := newUserService(t)

	actor := superAdmin()
	err := svc.Deactivate(context.Background(), actor, actor.ID)
	var ve *ValidationError
	require.ErrorAs(t, err, &ve)
}

func TestDeactivateRequiresSuperAdmin(t *testing.T) {
	svc, _ := newUserService(t)
	ctx := context.Background()

	// Even an ordinary editor target is off limits to a plain admin.
	created, err := svc.Create(ctx, superAdmin(), CreateUserInput{
		Email: "staff@femundo.de", Password: strongPassword, FullName: "Staff",
	})
	require.NoError(t, err)

	require.ErrorIs(t, svc.Deactivate(ctx, admin(), created.ID), ErrPermissionDenied)
}

func TestDeactivateSuperAdminRequiresSuperAdmin(t *testing.T) {
	svc, _ := newUserService(t)
	ctx := context.Background()

	boss, err := svc.Create(ctx, superAdmin(), CreateUserInput{
		Email: "boss@femundo.de", Password: strongPassword, FullName: "Boss",
		Role: domain.RoleSuperAdmin,
	})
	require.NoError(t, err)

	require.ErrorIs(t, svc.Deactivate(ctx, admin(), boss.ID), ErrPermissionDenied)
}

func TestDeactivateMissingUser(t *testing.T) {
	svc, _ := newUserService(t)
	require.ErrorIs(t,
		svc.Deactivate(context.Background(), superAdmin(), 9999),
		store.ErrNotFound)
}

func TestChangePassword(t *testing.T) {
	svc, st := newUserService(t)
	ctx := context.Background()

	created, err := svc.Create(ctx, superAdmin(), CreateUserInput{
		Email: "rotate@femundo.de", Password: strongPassword, FullName: "Rotate",
	})
	require.NoError(t, err)

	// Wrong current password.
	err = svc.ChangePassword(ctx, created.ID, "nope", "fresh-pass-1")
	require.ErrorIs(t, err, ErrInvalidCredentials)

	// New password fails the self-service policy.
	err = svc.ChangePassword(ctx, created.ID, strongPassword, "onlyletters")
	var ve *ValidationError
	require.ErrorAs(t, err, &ve)

	err = svc.ChangePassword(ctx, created.ID, strongPassword, "short1")
	require.ErrorAs(t, err, &ve)

	// Reusing the current password is refused.
	err = svc.ChangePassword(ctx, created.ID, strongPassword, strongPassword)
	require.ErrorAs(t, err, &ve)

	// Success; old hash replaced.
	before, err := st.Users().GetByID(ctx, created.ID)
	require.NoError(t, err)
	require.NoError(t, svc.ChangePassword(ctx, created.ID, strongPassword, "fresh-pass-1"))
	after, err := st.Users().GetByID(ctx, created.ID)
	require.NoError(t, err)
	require.NotEqual(t, before.PasswordHash, after.PasswordHash)
}

func TestAuditTrailForUserManagement(t *testing.T) {
	svc, st := newUserService(t)
	ctx := context.Background()

	created, err := svc.Create(ctx, superAdmin(), CreateUserInput{
		Email: "trail@femundo.de", Password: strongPassword, FullName: "Trail",
	})
	require.NoError(t, err)
	require.NoError(t, svc.Deactivate(ctx, superAdmin(), created.ID))

	entries, err := st.Activity().ListRecent(ctx, 10)
	require.NoError(t, err)
	require.Len(t, entries, 2)
	require.Equal(t, "deactivate", entries[0].Action)
	require.Equal(t, "create", entries[1].Action)
	require.Equal(t, "users", entries[0].EntityType)
}

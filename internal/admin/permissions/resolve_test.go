package permissions

import (
	"math/rand"
	"testing"

	"github.com/femundo/cms/internal/admin/domain"
	"github.com/stretchr/testify/require"
)

func TestResolveModules_SuperAdminTotality(t *testing.T) {
	all := AllModuleKeys()

	tests := []struct {
		name    string
		allowed []string
	}{
		{"nil grant", nil},
		{"empty grant", []string{}},
		{"restrictive grant", []string{"dashboard"}},
		{"garbage grant", []string{"nonsense"}},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			require.Equal(t, all, ResolveModules(domain.RoleSuperAdmin, tt.allowed))
		})
	}
}

func TestResolveModules_ExplicitGrantVerbatim(t *testing.T) {
	grant := []string{"dashboard", "events", "gallery"}
	got := ResolveModules(domain.RoleEditor, grant)
	require.Equal(t, grant, got)

	// The result is a copy, not an alias of the caller's slice.
	got[0] = "mutated"
	require.Equal(t, "dashboard", grant[0])
}

func TestResolveModules_RoleFallback(t *testing.T) {
	fullAdmin, _ := ProfileByKey(ProfileFullAdmin)
	contentEditor, _ := ProfileByKey(ProfileContentEditor)
	readOnly, _ := ProfileByKey(ProfileReadOnly)

	tests := []struct {
		name    string
		role    domain.Role
		allowed []string
		want    []string
	}{
		{"admin nil", domain.RoleAdmin, nil, fullAdmin.Modules},
		{"admin empty", domain.RoleAdmin, []string{}, fullAdmin.Modules},
		{"editor nil", domain.RoleEditor, nil, contentEditor.Modules},
		{"viewer nil", domain.RoleViewer, nil, readOnly.Modules},
		{"unknown role nil", domain.Role("intern"), nil, readOnly.Modules},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			require.Equal(t, tt.want, ResolveModules(tt.role, tt.allowed))
		})
	}
}

func TestCanAccess_ModuleGate(t *testing.T) {
	grant := []string{"dashboard", "events"}

	require.True(t, CanAccess(domain.RoleEditor, grant, "events"))
	require.True(t, CanAccess(domain.RoleEditor, grant, "dashboard"))
	require.False(t, CanAccess(domain.RoleEditor, grant, "users"))

	// super_admin passes any gate regardless of grants.
	require.True(t, CanAccess(domain.RoleSuperAdmin, grant, "users"))
	require.True(t, CanAccess(domain.RoleSuperAdmin, nil, "settings"))
}

func TestDetectProfile_ExactSet(t *testing.T) {
	for _, p := range Profiles {
		require.Equal(t, p.Key, DetectProfile(p.Modules), "profile %s should detect itself", p.Key)
	}
}

func TestDetectProfile_PermutationIndependent(t *testing.T) {
	rng := rand.New(rand.NewSource(1))
	for _, p := range Profiles {
		shuffled := append([]string(nil), p.Modules...)
		rng.Shuffle(len(shuffled), func(i, j int) {
			shuffled[i], shuffled[j] = shuffled[j], shuffled[i]
		})
		require.Equal(t, p.Key, DetectProfile(shuffled))
	}
}

func TestDetectProfile_Custom(t *testing.T) {
	tests := []struct {
		name    string
		modules []string
	}{
		{"empty", nil},
		{"subset of a profile", []string{"dashboard", "events"}},
		{"superset of read-only", []string{"dashboard", "settings"}},
		{"unknown keys", []string{"dashboard", "mystery"}},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			require.Equal(t, ProfileCustom, DetectProfile(tt.modules))
		})
	}
}

func TestNormalizeGrant(t *testing.T) {
	t.Run("nil stays nil", func(t *testing.T) {
		require.Nil(t, NormalizeGrant(nil))
	})

	t.Run("dashboard is forced in", func(t *testing.T) {
		got := NormalizeGrant([]string{"events", "gallery"})
		require.Equal(t, []string{"dashboard", "events", "gallery"}, got)
	})

	t.Run("dedupes", func(t *testing.T) {
		got := NormalizeGrant([]string{"dashboard", "events", "events", "dashboard"})
		require.Equal(t, []string{"dashboard", "events"}, got)
	})
}

func TestCatalogIntegrity(t *testing.T) {
	require.True(t, KnownModule(ModuleDashboard))
	require.False(t, KnownModule("bogus"))

	// Every profile references only catalogued modules and includes the
	// dashboard.
	for _, p := range Profiles {
		require.Contains(t, p.Modules, ModuleDashboard, "profile %s", p.Key)
		for _, m := range p.Modules {
			require.True(t, KnownModule(m), "profile %s references unknown module %s", p.Key, m)
		}
	}
}

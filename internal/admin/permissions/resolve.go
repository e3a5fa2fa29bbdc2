package permissions

import (
	"slices"

	"github.com/femundo/cms/internal/admin/domain"
)

// ResolveModules maps a role plus an optional explicit grant set to the
// effective modules a user may access.
//
//   - super_admin always gets the complete catalog; explicit grants are
//     never consulted for this role.
//   - A present, non-empty grant set is returned verbatim. Stored grant
//     sets are guaranteed to contain "dashboard" by the user-management
//     write path, so the resolver does not re-enforce it here.
//   - A nil or empty grant set means "not set" (never "no access"): the
//     role fallback applies.
func ResolveModules(role domain.Role, allowedModules []string) []string {
	if role == domain.RoleSuperAdmin {
		return AllModuleKeys()
	}

	if len(allowedModules) > 0 {
		return slices.Clone(allowedModules)
	}

	var key string
	switch role {
	case domain.RoleAdmin:
		key = ProfileFullAdmin
	case domain.RoleEditor:
		key = ProfileContentEditor
	default:
		key = ProfileReadOnly
	}
	p, _ := ProfileByKey(key)
	return slices.Clone(p.Modules)
}

// CanAccess reports whether a user with the given role and grant set may
// touch moduleKey.
func CanAccess(role domain.Role, allowedModules []string, moduleKey string) bool {
	return slices.Contains(ResolveModules(role, allowedModules), moduleKey)
}

// DetectProfile labels an arbitrary grant set: the key of the predefined
// profile whose module set it equals (order-independent), or "personalizado"
// when none matches.
func DetectProfile(modules []string) string {
	set := keySet(modules)
	for _, p := range Profiles {
		if len(set) != len(p.Modules) {
			continue
		}
		match := true
		for _, m := range p.Modules {
			if _, ok := set[m]; !ok {
				match = false
				break
			}
		}
		if match {
			return p.Key
		}
	}
	return ProfileCustom
}

// NormalizeGrant deduplicates a grant set and guarantees the dashboard
// module is present. The user-management write path runs every explicit
// grant set through this before storage.
func NormalizeGrant(modules []string) []string {
	if len(modules) == 0 {
		return nil
	}
	out := make([]string, 0, len(modules)+1)
	seen := make(map[string]struct{}, len(modules)+1)
	add := func(m string) {
		if _, ok := seen[m]; ok {
			return
		}
		seen[m] = struct{}{}
		out = append(out, m)
	}
	add(ModuleDashboard)
	for _, m := range modules {
		add(m)
	}
	return out
}

func keySet(modules []string) map[string]struct{} {
	set := make(map[string]struct{}, len(modules))
	for _, m := range modules {
		set[m] = struct{}{}
	}
	return set
}

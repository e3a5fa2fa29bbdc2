// Package permissions holds the static admin-module catalog, the predefined
// permission profiles, and the pure resolution functions mapping a user's
// role and grant set to the modules they may touch.
//
// The catalog and profiles are compiled-in constants, versioned with the
// code. They are not tenant data; runtime-editable profiles are explicitly
// not a requirement.
package permissions

// Module describes one feature area of the admin panel.
type Module struct {
	Key   string `json:"key"`
	Label string `json:"label"`
	Path  string `json:"path"`
	Icon  string `json:"icon"`
}

// ModuleDashboard is implicitly granted to every account and can never be
// removed from a grant set.
const ModuleDashboard = "dashboard"

// Catalog is the fixed list of admin modules, in sidebar order.
var Catalog = []Module{
	{Key: ModuleDashboard, Label: "Dashboard", Path: "/admin/dashboard", Icon: "fa-gauge-high"},
	{Key: "hero", Label: "Hero / Banner", Path: "/admin/hero", Icon: "fa-image"},
	{Key: "carousel", Label: "Carrusel", Path: "/admin/carousel", Icon: "fa-images"},
	{Key: "about", Label: "Acerca de", Path: "/admin/about", Icon: "fa-info-circle"},
	{Key: "stats", Label: "Estadísticas", Path: "/admin/stats", Icon: "fa-chart-bar"},
	{Key: "video", Label: "Video", Path: "/admin/video", Icon: "fa-video"},
	{Key: "events", Label: "Eventos", Path: "/admin/events", Icon: "fa-calendar"},
	{Key: "articles", Label: "Artículos", Path: "/admin/articles", Icon: "fa-newspaper"},
	{Key: "team", Label: "Equipo", Path: "/admin/team", Icon: "fa-users"},
	{Key: "gallery", Label: "Galería", Path: "/admin/gallery", Icon: "fa-photo-film"},
	{Key: "federations", Label: "Federaciones", Path: "/admin/federations", Icon: "fa-globe-americas"},
	{Key: "regulations", Label: "Reglamento", Path: "/admin/regulations", Icon: "fa-gavel"},
	{Key: "announcement", Label: "Anuncio", Path: "/admin/announcement", Icon: "fa-bullhorn"},
	{Key: "contact", Label: "Contacto", Path: "/admin/contact", Icon: "fa-envelope"},
	{Key: "navigation", Label: "Navegación", Path: "/admin/navigation", Icon: "fa-bars"},
	{Key: "footer", Label: "Footer", Path: "/admin/footer", Icon: "fa-shoe-prints"},
	{Key: "translations", Label: "Traducciones", Path: "/admin/translations", Icon: "fa-language"},
	{Key: "media", Label: "Archivos", Path: "/admin/media", Icon: "fa-folder-open"},
	{Key: "users", Label: "Usuarios", Path: "/admin/users", Icon: "fa-user-shield"},
	{Key: "settings", Label: "Configuración", Path: "/admin/settings", Icon: "fa-gear"},
}

// AllModuleKeys returns the keys of every module in catalog order.
func AllModuleKeys() []string {
	keys := make([]string, len(Catalog))
	for i, m := range Catalog {
		keys[i] = m.Key
	}
	return keys
}

// KnownModule reports whether key is in the catalog.
func KnownModule(key string) bool {
	for _, m := range Catalog {
		if m.Key == key {
			return true
		}
	}
	return false
}

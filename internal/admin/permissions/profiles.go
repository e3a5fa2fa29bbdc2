package permissions

// Profile is a predefined named grant set used to pre-fill new accounts and
// to label existing grant sets in the UI.
type Profile struct {
	Key         string   `json:"key"`
	Label       string   `json:"label"`
	Description string   `json:"description"`
	Modules     []string `json:"modules"`
}

// Profile keys. ProfileCustom is the sentinel for a grant set that matches
// no predefined profile.
const (
	ProfileFullAdmin     = "admin_completo"
	ProfileContentEditor = "editor_contenido"
	ProfileEventsEditor  = "editor_eventos"
	ProfileReadOnly      = "solo_lectura"
	ProfileCustom        = "personalizado"
)

// Profiles lists the predefined profiles in display order. The module sets
// are mutually distinct by construction, so DetectProfile's first match is
// the only match.
var Profiles = []Profile{
	{
		Key:         ProfileFullAdmin,
		Label:       "Administrador Completo",
		Description: "Acceso a todos los módulos",
		Modules:     AllModuleKeys(),
	},
	{
		Key:         ProfileContentEditor,
		Label:       "Editor de Contenido",
		Description: "Artículos, galería, eventos y secciones de contenido",
		Modules: []string{
			ModuleDashboard, "hero", "carousel", "about", "stats", "video",
			"events", "articles", "gallery", "announcement", "media",
		},
	},
	{
		Key:         ProfileEventsEditor,
		Label:       "Editor de Eventos",
		Description: "Solo eventos y galería",
		Modules:     []string{ModuleDashboard, "events", "gallery", "media"},
	},
	{
		Key:         ProfileReadOnly,
		Label:       "Solo Lectura",
		Description: "Solo puede ver el dashboard",
		Modules:     []string{ModuleDashboard},
	},
}

// ProfileByKey returns the predefined profile for key, if any.
func ProfileByKey(key string) (Profile, bool) {
	for _, p := range Profiles {
		if p.Key == key {
			return p, true
		}
	}
	return Profile{}, false
}

package agents

// Role is the closed set of squad roles. Unrecognised role names map to
// RoleUnknown, which has no rewards, no banter and a defensive default.
type Role uint8

const (
	RoleUnknown Role = iota
	RoleLongsight
	RoleLifebinder
	RoleSpecter
	RoleWhisper
	RoleArchivist
	RoleBrawler
	RoleArmsmaster
	RoleExplosivesExpert
)

// keywordRule maps any of its keywords, found in the lowercased scenario
// narrative, to an action. Rules are tried in order; the first match wins.
type keywordRule struct {
	Keywords []string
	Action   ActionKind
}

// roleProfile is the authored data behind a role.
type roleProfile struct {
	Name        string
	Description string
	Species     string // Canonical species for default squads
	Banter      []string
	Rules       []keywordRule
	Fallback    ActionKind
}

var roleProfiles = [...]roleProfile{
	RoleUnknown: {
		Name:        "",
		Description: "Unknown role",
		Species:     "Aetherborn",
		Fallback:    ActionDefend,
	},
	RoleLongsight: {
		Name:        "Longsight",
		Description: "Marksman from the Vyr'khai star-clans",
		Species:     "Vyr'khai",
		Banter: []string{
			"Vacuum steady. Pulse steadier.",
			"Line held. Regrets pending.",
			"One pulse—one ending—preferably not ours.",
		},
		Fallback: ActionDefend,
	},
	RoleLifebinder: {
		Name:        "Lifebinder",
		Description: "Medic-priest of the Lumenari bioconclave",
		Species:     "Lumenari",
		Banter: []string{
			"Biofield humming. Statistics declining.",
			"If it bleeds, I can stabilise it.",
			"Life prefers cooperation; let's oblige.",
		},
		Rules:    []keywordRule{{Keywords: []string{"ocean", "xenofauna", "magnetar"}, Action: ActionStabilise}},
		Fallback: ActionDefend,
	},
	RoleSpecter: {
		Name:        "Specter",
		Description: "Recon shade of the Zephryl drift",
		Species:     "Zephryl",
		Banter: []string{
			"Ghost-walk engaged. Doors where walls used to be.",
			"Paths mapped. Shadows compliant.",
			"Seen and unseen are tactical categories.",
		},
		Rules:    []keywordRule{{Keywords: []string{"pirate"}, Action: ActionAdvance}},
		Fallback: ActionDefend,
	},
	RoleWhisper: {
		Name:        "Whisper",
		Description: "Diplomat-chorus from the Mycelian hegemony",
		Species:     "Mycelian",
		Banter: []string{
			"Words first, wounds last.",
			"Lower the heat; raise the harmony.",
			"Consent acquired. Conflict retired.",
		},
		Rules:    []keywordRule{{Keywords: []string{"schism", "pirate"}, Action: ActionNegotiate}},
		Fallback: ActionDefend,
	},
	RoleArchivist: {
		Name:        "Archivist",
		Description: "Sentient archive node of the Ferroth lattice",
		Species:     "Ferroth",
		Banter: []string{
			"Recording. Remembering. History has teeth.",
			"Truth cached. Lies quarantined.",
			"Ethics subroutines purring. Do better.",
		},
		Rules:    []keywordRule{{Keywords: []string{"schism", "pirate"}, Action: ActionNegotiate}},
		Fallback: ActionDefend,
	},
	RoleBrawler: {
		Name:        "Brawler",
		Description: "Hand-to-hand combat specialist",
		Species:     "Aetherborn",
		Banter: []string{
			"Close quarters. Good.",
			"My hands are registered weapons.",
			"Less talk, more impact.",
		},
		Rules:    []keywordRule{{Keywords: []string{"xenofauna", "pirate"}, Action: ActionAdvance}},
		Fallback: ActionDefend,
	},
	RoleArmsmaster: {
		Name:        "Armsmaster",
		Description: "Weapons specialist",
		Species:     "Kinetari",
		Banter: []string{
			"Ordnance prepped.",
			"Picking the right tool for the job.",
			"Let the weapon do the talking.",
		},
		Rules:    []keywordRule{{Keywords: []string{"pirate", "magnetar"}, Action: ActionDefend}},
		Fallback: ActionAdvance,
	},
	RoleExplosivesExpert: {
		Name:        "Explosives Expert",
		Description: "Specialist in demolition and ordnance",
		Species:     "Verdan",
		Banter: []string{
			"Charge set. Stand clear.",
			"Demolitions are a delicate art.",
			"Making exits where there weren't any.",
		},
		Rules:    []keywordRule{{Keywords: []string{"pirate"}, Action: ActionAdvance}},
		Fallback: ActionDefend,
	},
}

// ParseRole resolves a role name. Unknown names yield RoleUnknown.
func ParseRole(name string) Role {
	for r := RoleLongsight; int(r) < len(roleProfiles); r++ {
		if roleProfiles[r].Name == name {
			return r
		}
	}
	return RoleUnknown
}

// Roles returns every known role in catalogue order.
func Roles() []Role {
	out := make([]Role, 0, len(roleProfiles)-1)
	for r := RoleLongsight; int(r) < len(roleProfiles); r++ {
		out = append(out, r)
	}
	return out
}

func (r Role) profile() *roleProfile {
	if int(r) < len(roleProfiles) {
		return &roleProfiles[r]
	}
	return &roleProfiles[RoleUnknown]
}

func (r Role) String() string {
	if r == RoleUnknown {
		return "Unknown"
	}
	return r.profile().Name
}

// Description returns the flavour text for the role.
func (r Role) Description() string { return r.profile().Description }

// CanonicalSpecies returns the species the role is usually fielded with.
func (r Role) CanonicalSpecies() string { return r.profile().Species }

// Banter returns the role's line set; nil for RoleUnknown.
func (r Role) Banter() []string { return r.profile().Banter }

package authz

// Capability names a single permission controlling visibility of, or access
// to, one action or view in the dashboard. The constants double as the wire
// keys the frontend consumes, so renaming one is a breaking API change.
type Capability string

const (
	CapViewMembers  Capability = "canViewMembers"
	CapCreateMember Capability = "canCreateMember"
	CapEditMember   Capability = "canEditMember"
	CapDeleteMember Capability = "canDeleteMember"

	CapViewTeams  Capability = "canViewTeams"
	CapCreateTeam Capability = "canCreateTeam"
	CapEditTeam   Capability = "canEditTeam"
	CapDeleteTeam Capability = "canDeleteTeam"

	CapViewFinance   Capability = "canViewFinance"
	CapCreateFinance Capability = "canCreateFinance"
	CapEditFinance   Capability = "canEditFinance"
	CapDeleteFinance Capability = "canDeleteFinance"

	CapViewInventory   Capability = "canViewInventory"
	CapCreateInventory Capability = "canCreateInventory"
	CapEditInventory   Capability = "canEditInventory"
	CapDeleteInventory Capability = "canDeleteInventory"

	CapViewFiles   Capability = "canViewFiles"
	CapUploadFiles Capability = "canUploadFiles"
	CapDeleteFiles Capability = "canDeleteFiles"

	CapViewCalendar Capability = "canViewCalendar"
	CapCreateEvent  Capability = "canCreateEvent"
	CapEditEvent    Capability = "canEditEvent"
	CapDeleteEvent  Capability = "canDeleteEvent"

	CapManageUsers Capability = "canManageUsers"
)

// Capabilities lists every capability key the catalog must define for every
// role. The catalog validation and the totality tests iterate this slice, so
// adding a capability here without touching every role entry fails fast.
func Capabilities() []Capability {
	return []Capability{
		CapViewMembers, CapCreateMember, CapEditMember, CapDeleteMember,
		CapViewTeams, CapCreateTeam, CapEditTeam, CapDeleteTeam,
		CapViewFinance, CapCreateFinance, CapEditFinance, CapDeleteFinance,
		CapViewInventory, CapCreateInventory, CapEditInventory, CapDeleteInventory,
		CapViewFiles, CapUploadFiles, CapDeleteFiles,
		CapViewCalendar, CapCreateEvent, CapEditEvent, CapDeleteEvent,
		CapManageUsers,
	}
}

// CapabilitySet maps every capability key to an explicit grant decision for
// one role. Sets handed out by the catalog are total: absent keys never occur.
type CapabilitySet map[Capability]bool

// Has reports whether the capability is granted. Missing keys resolve to
// false so a set built by hand still fails closed.
func (s CapabilitySet) Has(c Capability) bool {
	return s[c]
}

// Clone returns an independent copy of the set.
func (s CapabilitySet) Clone() CapabilitySet {
	out := make(CapabilitySet, len(s))
	for k, v := range s {
		out[k] = v
	}
	return out
}

package authz

import "fmt"

// catalog is the static role-to-capability table. Exactly one CapabilitySet
// exists per role and every set enumerates every capability key explicitly;
// ValidateCatalog enforces both at startup and in tests.
var catalog = map[Role]CapabilitySet{
	RoleAdmin: {
		CapViewMembers: true, CapCreateMember: true, CapEditMember: true, CapDeleteMember: true,
		CapViewTeams: true, CapCreateTeam: true, CapEditTeam: true, CapDeleteTeam: true,
		CapViewFinance: true, CapCreateFinance: true, CapEditFinance: true, CapDeleteFinance: true,
		CapViewInventory: true, CapCreateInventory: true, CapEditInventory: true, CapDeleteInventory: true,
		CapViewFiles: true, CapUploadFiles: true, CapDeleteFiles: true,
		CapViewCalendar: true, CapCreateEvent: true, CapEditEvent: true, CapDeleteEvent: true,
		CapManageUsers: true,
	},
	RoleTeamLeader: {
		CapViewMembers: true, CapCreateMember: true, CapEditMember: true, CapDeleteMember: false,
		CapViewTeams: true, CapCreateTeam: false, CapEditTeam: true, CapDeleteTeam: false,
		CapViewFinance: true, CapCreateFinance: true, CapEditFinance: true, CapDeleteFinance: false,
		CapViewInventory: true, CapCreateInventory: true, CapEditInventory: true, CapDeleteInventory: false,
		CapViewFiles: true, CapUploadFiles: true, CapDeleteFiles: false,
		CapViewCalendar: true, CapCreateEvent: true, CapEditEvent: true, CapDeleteEvent: true,
		CapManageUsers: false,
	},
	RoleAdvisor: {
		CapViewMembers: true, CapCreateMember: false, CapEditMember: false, CapDeleteMember: false,
		CapViewTeams: true, CapCreateTeam: false, CapEditTeam: false, CapDeleteTeam: false,
		CapViewFinance: true, CapCreateFinance: false, CapEditFinance: false, CapDeleteFinance: false,
		CapViewInventory: true, CapCreateInventory: false, CapEditInventory: false, CapDeleteInventory: false,
		CapViewFiles: true, CapUploadFiles: true, CapDeleteFiles: false,
		CapViewCalendar: true, CapCreateEvent: true, CapEditEvent: true, CapDeleteEvent: false,
		CapManageUsers: false,
	},
	RoleFinanceDirector: {
		CapViewMembers: true, CapCreateMember: false, CapEditMember: false, CapDeleteMember: false,
		CapViewTeams: true, CapCreateTeam: false, CapEditTeam: false, CapDeleteTeam: false,
		CapViewFinance: true, CapCreateFinance: true, CapEditFinance: true, CapDeleteFinance: true,
		CapViewInventory: true, CapCreateInventory: true, CapEditInventory: true, CapDeleteInventory: true,
		CapViewFiles: true, CapUploadFiles: true, CapDeleteFiles: false,
		CapViewCalendar: true, CapCreateEvent: false, CapEditEvent: false, CapDeleteEvent: false,
		CapManageUsers: false,
	},
	RoleMember: {
		CapViewMembers: true, CapCreateMember: false, CapEditMember: false, CapDeleteMember: false,
		CapViewTeams: true, CapCreateTeam: false, CapEditTeam: false, CapDeleteTeam: false,
		CapViewFinance: false, CapCreateFinance: false, CapEditFinance: false, CapDeleteFinance: false,
		CapViewInventory: true, CapCreateInventory: false, CapEditInventory: false, CapDeleteInventory: false,
		CapViewFiles: true, CapUploadFiles: false, CapDeleteFiles: false,
		CapViewCalendar: true, CapCreateEvent: false, CapEditEvent: false, CapDeleteEvent: false,
		CapManageUsers: false,
	},
}

// CapabilitiesFor returns the full capability set for a role. The lookup is
// pure and total: unknown roles resolve to an all-denied set rather than an
// error, and callers receive an independent copy.
func CapabilitiesFor(role Role) CapabilitySet {
	set, ok := catalog[role]
	if !ok {
		return AllDenied()
	}
	return set.Clone()
}

// AllDenied returns a total capability set with every grant false. It is the
// answer handed to unauthenticated callers.
func AllDenied() CapabilitySet {
	set := make(CapabilitySet, len(Capabilities()))
	for _, c := range Capabilities() {
		set[c] = false
	}
	return set
}

// ValidateCatalog verifies the static table is exhaustive: an entry for every
// role, an explicit decision for every capability key, and no keys outside
// the declared enumeration. Binaries call it before serving so a misspelled
// or missing entry aborts startup instead of silently resolving to false.
func ValidateCatalog() error {
	caps := Capabilities()
	for _, role := range Roles() {
		set, ok := catalog[role]
		if !ok {
			return fmt.Errorf("authz: catalog missing role %q", role)
		}
		for _, c := range caps {
			if _, ok := set[c]; !ok {
				return fmt.Errorf("authz: role %q missing capability %q", role, c)
			}
		}
		if len(set) != len(caps) {
			return fmt.Errorf("authz: role %q defines %d capabilities, catalog declares %d", role, len(set), len(caps))
		}
	}
	if len(catalog) != len(Roles()) {
		return fmt.Errorf("authz: catalog defines %d roles, enumeration declares %d", len(catalog), len(Roles()))
	}
	return nil
}

package authz

// Role identifies the organizational position of a principal. The set is
// closed: a principal's role is fixed for the lifetime of a session and
// changes only through out-of-band administration.
type Role string

const (
	RoleAdmin           Role = "admin"
	RoleTeamLeader      Role = "team_leader"
	RoleAdvisor         Role = "advisor"
	RoleFinanceDirector Role = "finance_director"
	RoleMember          Role = "member"
)

// Roles lists every known role in catalog order.
func Roles() []Role {
	return []Role{
		RoleAdmin,
		RoleTeamLeader,
		RoleAdvisor,
		RoleFinanceDirector,
		RoleMember,
	}
}

// Valid reports whether r is one of the known roles.
func (r Role) Valid() bool {
	switch r {
	case RoleAdmin, RoleTeamLeader, RoleAdvisor, RoleFinanceDirector, RoleMember:
		return true
	}
	return false
}

package models

// UserRole is the privilege level of an operator account.
type UserRole string

const (
	RoleOperator  UserRole = "operator"
	RolePowerUser UserRole = "poweruser"
	RoleAdmin     UserRole = "admin"
)

// Capability names an action the routing layer gates on.
type Capability string

const (
	CapViewStandings     Capability = "view_standings"
	CapViewTournaments   Capability = "view_tournaments"
	CapManageScores      Capability = "manage_scores"
	CapManageTournaments Capability = "manage_tournaments"
	CapManageUsers       Capability = "manage_users"
)

var roleCapabilities = map[UserRole][]Capability{
	RoleOperator:  {CapViewStandings, CapViewTournaments},
	RolePowerUser: {CapViewStandings, CapViewTournaments, CapManageScores},
	RoleAdmin: {
		CapViewStandings, CapViewTournaments, CapManageScores,
		CapManageTournaments, CapManageUsers,
	},
}

func (r UserRole) Valid() bool {
	_, ok := roleCapabilities[r]
	return ok
}

// Can reports whether the role grants the capability. Unknown roles grant nothing.
func (r UserRole) Can(c Capability) bool {
	for _, granted := range roleCapabilities[r] {
		if granted == c {
			return true
		}
	}
	return false
}

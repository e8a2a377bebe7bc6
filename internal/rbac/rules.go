package rbac

const (
	RoleAdmin        = "admin"
	RolePsychologist = "psychologist"
)

const (
	PermScoreCompute = "score:compute"
	PermSessionView  = "session:view"
	PermConfigView   = "config:view"
)

// RolePermissions is the default policy. Participants never log in; they
// only reach the public session routes.
var RolePermissions = map[string][]string{
	RolePsychologist: {
		PermScoreCompute,
		"session:*",
		PermConfigView,
	},
	RoleAdmin: {
		"*",
	},
}

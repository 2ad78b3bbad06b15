package constants

// Session and context keys
const (
	ContextKeyUserID = "user_id"
	SessionName      = "team_session"
)

// Context keys set by authorization middleware
const (
	ContextKeyTeam       = "team"
	ContextKeyMembership = "membership"
	ContextKeyTournament = "tournament"
)

// Pagination
const (
	MinPageSize     = 1
	DefaultPageSize = 20
	MaxPageSize     = 100
)

// Account rules
const (
	MinPasswordLength = 8
)

// Tournament rules
const (
	DefaultMaxOrganizers = 5
)

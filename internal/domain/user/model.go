package user

// Principal identifies the authenticated caller as verified by the external
// account service.
type Principal struct {
	UserID string
	Name   string
}

// Profile is the engine's own record of a user, kept for display names and
// deterministic name tie-breaks in rankings.
type Profile struct {
	UserID      string
	DisplayName string
}

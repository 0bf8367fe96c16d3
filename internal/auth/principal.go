package auth

// AnonymousSessionKey scopes Context and History operations when
// authentication is optional and absent.
const AnonymousSessionKey = "default"

// Principal is the outcome of the single authentication-resolution step
// every request goes through. It has exactly two shapes: authenticated
// with a user identity, or anonymous. Handlers consume it uniformly
// instead of re-checking auth conditions.
type Principal struct {
	Authenticated bool
	UserID        string
	Email         string
}

// Anonymous is the principal for requests without a valid credential.
var Anonymous = Principal{}

// SessionKey derives the storage scope for this principal.
func (p Principal) SessionKey() string {
	if p.Authenticated {
		return p.UserID
	}
	return AnonymousSessionKey
}

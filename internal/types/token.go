package types

// TokenClaims is the identity carried by an access token. The core
// never checks credentials itself; it only authorizes against these
// resolved claims.
type TokenClaims struct {
	UserID  uint
	IsAdmin bool
}

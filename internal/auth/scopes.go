package auth

const (
	ScopeOpenID         = "openid"
	ScopeProfile        = "profile"
	ScopeEmail          = "email"
	ScopeContractsRead  = "contracts:read"
	ScopeContractsWrite = "contracts:write"
)

// AllScopes defines the full set of scopes requested from the identity
// provider.
var AllScopes = []string{
	ScopeOpenID,
	ScopeProfile,
	ScopeEmail,
	ScopeContractsRead,
	ScopeContractsWrite,
}

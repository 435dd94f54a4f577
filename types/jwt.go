package types

import "github.com/golang-jwt/jwt/v5"

// Claims represents the JWT claims
type Claims struct {
	AccountID string `json:"account_id"`
	Role      string `json:"role"`
	// AuthTime is the unix time the password was last entered. Refreshing
	// keeps it, so it ages even while IssuedAt moves.
	AuthTime int64 `json:"auth_time"`
	jwt.RegisteredClaims
}

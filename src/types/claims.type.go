package types

import "github.com/golang-jwt/jwt/v5"

type Claims struct {
	Email string `json:"email"`
	Role  Role   `json:"role"`
	jwt.RegisteredClaims
}

// Principal is the authenticated identity handed to every core operation.
// The core trusts it as given; re-verification happens in the middleware.
type Principal struct {
	ID   uint
	Role Role
}

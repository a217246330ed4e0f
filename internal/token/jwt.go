package token

import (
	"github.com/golang-jwt/jwt/v5"
)

// JWTSigner signs claims as an HS256 JSON Web Token.
type JWTSigner struct{}

// Sign implements [Signer].
func (JWTSigner) Sign(claims Claims, secret string) (string, error) {
	tok := jwt.NewWithClaims(jwt.SigningMethodHS256, jwt.MapClaims{
		"iss":   claims.Issuer,
		"aud":   claims.Audience,
		"sub":   claims.Subject,
		"scope": claims.Scope,
		"exp":   jwt.NewNumericDate(claims.ExpiresAt),
	})
	return tok.SignedString([]byte(secret))
}

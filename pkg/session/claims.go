package session

import (
	"fmt"

	"github.com/golang-jwt/jwt/v4"
)

// Claims holds the identity fields commonly carried by the API's bearer tokens.
type Claims struct {
	Subject string
	Name    string
	Email   string
}

// Claims decodes the stored token without verifying it. It is only used for display;
// the server remains the authority on whether the token is valid.
func (s *Store) Claims() (Claims, error) {
	token, ok := s.Token()
	if !ok {
		return Claims{}, ErrNotAuthenticated
	}

	return ParseClaims(token)
}

// ParseClaims extracts Claims from an unverified JWT.
func ParseClaims(token string) (Claims, error) {
	mapClaims := jwt.MapClaims{}

	if _, _, err := jwt.NewParser().ParseUnverified(token, mapClaims); err != nil {
		return Claims{}, fmt.Errorf("error parsing token claims: %w", err)
	}

	claims := Claims{
		Subject: stringClaim(mapClaims, "sub"),
		Name:    stringClaim(mapClaims, "name"),
		Email:   stringClaim(mapClaims, "email"),
	}

	// the api signs tokens with {id: ...} rather than sub
	if claims.Subject == "" {
		claims.Subject = stringClaim(mapClaims, "id")
	}

	return claims, nil
}

func stringClaim(claims jwt.MapClaims, key string) string {
	if v, ok := claims[key].(string); ok {
		return v
	}

	return ""
}

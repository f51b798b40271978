package jwt

import (
	"fmt"
	"time"

	jwtv5 "github.com/golang-jwt/jwt/v5"
)

// Data es el bloque "data" del token. Roles y grupos son una foto al momento
// de emitir: la autorización siempre vuelve a consultar el store.
type Data struct {
	ID        string     `json:"id"`
	LastLogin *time.Time `json:"last_login"`
	Roles     []string   `json:"roles"`
	Groups    []string   `json:"groups"`
	Locale    string     `json:"locale"`
}

// Claims del token de sesión. "aud" viaja como string simple.
type Claims struct {
	Issuer    string             `json:"iss"`
	Audience  string             `json:"aud"`
	IssuedAt  *jwtv5.NumericDate `json:"iat"`
	NotBefore *jwtv5.NumericDate `json:"nbf"`
	ExpiresAt *jwtv5.NumericDate `json:"exp"`
	Data      Data               `json:"data"`
}

var _ jwtv5.Claims = (*Claims)(nil)

func (c *Claims) GetExpirationTime() (*jwtv5.NumericDate, error) { return c.ExpiresAt, nil }
func (c *Claims) GetIssuedAt() (*jwtv5.NumericDate, error)       { return c.IssuedAt, nil }
func (c *Claims) GetNotBefore() (*jwtv5.NumericDate, error)      { return c.NotBefore, nil }
func (c *Claims) GetIssuer() (string, error)                     { return c.Issuer, nil }
func (c *Claims) GetSubject() (string, error)                    { return "", nil }

func (c *Claims) GetAudience() (jwtv5.ClaimStrings, error) {
	if c.Audience == "" {
		return nil, nil
	}
	return jwtv5.ClaimStrings{c.Audience}, nil
}

// Validate lo invoca el parser después de exp/nbf/iss/aud.
func (c *Claims) Validate() error {
	switch {
	case c.IssuedAt == nil:
		return fmt.Errorf("%w: iat", ErrMissingClaim)
	case c.NotBefore == nil:
		return fmt.Errorf("%w: nbf", ErrMissingClaim)
	case c.Data.ID == "":
		return fmt.Errorf("%w: data.id", ErrMissingClaim)
	case c.Data.Locale == "":
		return fmt.Errorf("%w: data.locale", ErrMissingClaim)
	}
	return nil
}

// Clone devuelve una copia profunda.
func (c *Claims) Clone() *Claims {
	if c == nil {
		return nil
	}
	cp := *c
	if c.Data.LastLogin != nil {
		t := *c.Data.LastLogin
		cp.Data.LastLogin = &t
	}
	cp.Data.Roles = append([]string(nil), c.Data.Roles...)
	cp.Data.Groups = append([]string(nil), c.Data.Groups...)
	return &cp
}
